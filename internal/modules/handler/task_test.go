package handler

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/modules/service"
	"go.uber.org/zap"
)

func TestTaskHandler_UpdateTask(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	taskID := uuid.New()

	tests := []struct {
		name           string
		taskID         string
		body           string
		setup          func(*MockTaskService)
		expectedStatus int
	}{
		{
			name:   "partial update",
			taskID: taskID.String(),
			body:   `{"status": "completed"}`,
			setup: func(svc *MockTaskService) {
				svc.On("Update", mock.Anything, taskID, mock.MatchedBy(func(in service.TaskInput) bool {
					return in.UserID == user.ID && in.Status != nil && *in.Status == "completed" && in.Title == nil
				})).Return(&model.Task{ID: taskID, Status: model.TaskCompleted}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "due date in the past",
			taskID: taskID.String(),
			body:   `{"due_date": "2000-01-01"}`,
			setup: func(svc *MockTaskService) {
				svc.On("Update", mock.Anything, taskID, mock.Anything).Return(nil, &service.Error{
					Kind: service.ErrValidation, Fields: []string{"Due date cannot be in the past"},
				})
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed id",
			taskID:         "123",
			body:           `{}`,
			setup:          func(*MockTaskService) {},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockTaskService{}
			tt.setup(mockService)

			handler := NewTaskHandler(mockService, zap.NewNop())
			router := setupRouter()
			router.PUT("/tasks/:task_id", asUser(user, handler.UpdateTask))

			req := httptest.NewRequest("PUT", "/tasks/"+tt.taskID, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_GetTaskStats(t *testing.T) {
	user := &model.User{ID: uuid.New()}
	mockService := &MockTaskService{}
	mockService.On("Stats", mock.Anything, user.ID).Return(&service.TaskStats{Total: 3, Todo: 1, InProgress: 1, Completed: 1}, nil)

	handler := NewTaskHandler(mockService, zap.NewNop())
	router := setupRouter()
	router.GET("/tasks/stats", asUser(user, handler.GetTaskStats))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/tasks/stats", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data map[string]int `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, map[string]int{"total": 3, "todo": 1, "in-progress": 1, "completed": 1}, resp.Data)
}
