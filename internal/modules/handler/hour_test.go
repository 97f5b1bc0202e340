package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/modules/serializer"
	"github.com/taskflow-io/hourtrack/internal/modules/service"
	"go.uber.org/zap"
)

func TestHourHandler_LogHours(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	projectID := uuid.New()

	tests := []struct {
		name           string
		projectID      string
		body           string
		setup          func(*MockHourService)
		expectedStatus int
		expectedErrors []string
	}{
		{
			name:      "hours logged",
			projectID: projectID.String(),
			body:      `{"hours": 2.5, "description": "reading", "date": "2024-03-15"}`,
			setup: func(svc *MockHourService) {
				svc.On("Log", mock.Anything, service.LogHoursInput{
					UserID: user.ID, ProjectID: projectID, Hours: 2.5, Description: "reading", Date: "2024-03-15",
				}).Return(&service.LogHoursOutput{
					HourEntry: &model.HourEntry{ID: uuid.New(), Hours: 2.5},
					Project:   model.ProjectSummary{ID: projectID, TotalHours: 2.5},
				}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:      "daily cap reached",
			projectID: projectID.String(),
			body:      `{"hours": 5, "date": "2024-01-01"}`,
			setup: func(svc *MockHourService) {
				svc.On("Log", mock.Anything, mock.Anything).Return(nil, &service.Error{
					Kind:   service.ErrValidation,
					Fields: []string{"Cannot log 5 hours. Only 4.0 hours available for Mon Jan 01 2024"},
				})
			},
			expectedStatus: http.StatusBadRequest,
			expectedErrors: []string{"Cannot log 5 hours. Only 4.0 hours available for Mon Jan 01 2024"},
		},
		{
			name:           "malformed project id",
			projectID:      "not-a-uuid",
			body:           `{"hours": 1, "date": "2024-01-01"}`,
			setup:          func(*MockHourService) {},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "malformed body",
			projectID:      projectID.String(),
			body:           `{"hours": "lots"}`,
			setup:          func(*MockHourService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:      "project of another user",
			projectID: projectID.String(),
			body:      `{"hours": 1, "date": "2024-01-01"}`,
			setup: func(svc *MockHourService) {
				svc.On("Log", mock.Anything, mock.Anything).Return(nil, &service.Error{Kind: service.ErrNotFound, Msg: "project not found"})
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockHourService{}
			tt.setup(mockService)

			handler := NewHourHandler(mockService, &MockStatsService{}, zap.NewNop())
			router := setupRouter()
			router.POST("/projects/:project_id/hours", asUser(user, handler.LogHours))

			req := httptest.NewRequest("POST", "/projects/"+tt.projectID+"/hours", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedErrors != nil {
				var resp serializer.Response
				require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedErrors, resp.Errors)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestHourHandler_ListHours(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	projectID := uuid.New()

	tests := []struct {
		name           string
		query          string
		setup          func(*MockHourService)
		expectedStatus int
	}{
		{
			name:  "filters passed through",
			query: "?start_date=2024-03-01&end_date=2024-03-31&limit=10&project_id=" + projectID.String(),
			setup: func(svc *MockHourService) {
				svc.On("List", mock.Anything, service.ListHourEntriesInput{
					UserID: user.ID, ProjectID: &projectID, StartDate: "2024-03-01", EndDate: "2024-03-31", Limit: 10,
				}).Return([]*model.HourEntry{}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "limit out of range",
			query:          "?limit=5000",
			setup:          func(*MockHourService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad project filter",
			query:          "?project_id=nope",
			setup:          func(*MockHourService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "database failure",
			query: "",
			setup: func(svc *MockHourService) {
				svc.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockHourService{}
			tt.setup(mockService)

			handler := NewHourHandler(mockService, &MockStatsService{}, zap.NewNop())
			router := setupRouter()
			router.GET("/hours", asUser(user, handler.ListHours))

			req := httptest.NewRequest("GET", "/hours"+tt.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHourHandler_UpdateHourEntry(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	entryID := uuid.New()

	mockService := &MockHourService{}
	mockService.On("Update", mock.Anything, mock.MatchedBy(func(in service.UpdateHourEntryInput) bool {
		return in.UserID == user.ID && in.EntryID == entryID &&
			in.Hours != nil && *in.Hours == 5 && in.Description == nil && in.Date == nil
	})).Return(&model.HourEntry{ID: entryID, Hours: 5}, nil)

	handler := NewHourHandler(mockService, &MockStatsService{}, zap.NewNop())
	router := setupRouter()
	router.PUT("/hours/:entry_id", asUser(user, handler.UpdateHourEntry))

	req := httptest.NewRequest("PUT", "/hours/"+entryID.String(), bytes.NewBufferString(`{"hours": 5}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp serializer.Response
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hour entry updated successfully", resp.Msg)
	mockService.AssertExpectations(t)
}

func TestHourHandler_DeleteHourEntry(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	entryID := uuid.New()
	missingID := uuid.New()

	mockService := &MockHourService{}
	mockService.On("Delete", mock.Anything, user.ID, entryID).Return(&model.HourEntry{ID: entryID, UserID: user.ID, Hours: 3}, nil)
	mockService.On("Delete", mock.Anything, user.ID, missingID).Return(nil, &service.Error{Kind: service.ErrNotFound, Msg: "hour entry not found"})

	handler := NewHourHandler(mockService, &MockStatsService{}, zap.NewNop())
	router := setupRouter()
	router.DELETE("/hours/:entry_id", asUser(user, handler.DeleteHourEntry))

	tests := []struct {
		name           string
		id             string
		expectedStatus int
	}{
		{name: "echoes the deleted entry", id: entryID.String(), expectedStatus: http.StatusOK},
		{name: "missing entry", id: missingID.String(), expectedStatus: http.StatusNotFound},
		{name: "malformed id", id: "nope", expectedStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("DELETE", "/hours/"+tt.id, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}

	req := httptest.NewRequest("DELETE", "/hours/"+entryID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp struct {
		Msg  string `json:"msg"`
		Data struct {
			ID    string  `json:"id"`
			Hours float64 `json:"hours"`
		} `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Hour entry deleted successfully", resp.Msg)
	assert.Equal(t, entryID.String(), resp.Data.ID)
	assert.Equal(t, 3.0, resp.Data.Hours)
}

func TestHourHandler_GetHourStats(t *testing.T) {
	user := &model.User{ID: uuid.New()}

	tests := []struct {
		name           string
		query          string
		period         service.Period
		err            error
		expectedStatus int
	}{
		{name: "defaults to all", period: service.PeriodAll, expectedStatus: http.StatusOK},
		{name: "month", query: "?period=month", period: service.PeriodMonth, expectedStatus: http.StatusOK},
		{name: "unknown period", query: "?period=decade", period: "decade",
			err: &service.Error{Kind: service.ErrValidation, Msg: "Invalid period"}, expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := &MockStatsService{}
			if tt.err != nil {
				stats.On("HourStats", mock.Anything, user.ID, tt.period).Return(nil, tt.err)
			} else {
				stats.On("HourStats", mock.Anything, user.ID, tt.period).Return(&service.HourStats{Period: tt.period}, nil)
			}

			handler := NewHourHandler(&MockHourService{}, stats, zap.NewNop())
			router := setupRouter()
			router.GET("/hours/stats", asUser(user, handler.GetHourStats))

			req := httptest.NewRequest("GET", "/hours/stats"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			stats.AssertExpectations(t)
		})
	}
}

func TestHourHandler_ExportHours_Unavailable(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	mockService := &MockHourService{}
	mockService.On("Export", mock.Anything, mock.Anything).Return(nil, &service.Error{Kind: service.ErrUnavailable, Msg: "export storage is not configured"})

	handler := NewHourHandler(mockService, &MockStatsService{}, zap.NewNop())
	router := setupRouter()
	router.POST("/hours/export", asUser(user, handler.ExportHours))

	req := httptest.NewRequest("POST", "/hours/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
