package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/modules/service"
)

// MockHourService is a mock implementation of HourService
type MockHourService struct {
	mock.Mock
}

func (m *MockHourService) Log(ctx context.Context, in service.LogHoursInput) (*service.LogHoursOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LogHoursOutput), args.Error(1)
}

func (m *MockHourService) Update(ctx context.Context, in service.UpdateHourEntryInput) (*model.HourEntry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HourEntry), args.Error(1)
}

func (m *MockHourService) Delete(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*model.HourEntry, error) {
	args := m.Called(ctx, userID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HourEntry), args.Error(1)
}

func (m *MockHourService) Get(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*model.HourEntry, error) {
	args := m.Called(ctx, userID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HourEntry), args.Error(1)
}

func (m *MockHourService) List(ctx context.Context, in service.ListHourEntriesInput) ([]*model.HourEntry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.HourEntry), args.Error(1)
}

func (m *MockHourService) ListByProject(ctx context.Context, in service.ListHourEntriesInput) ([]*model.HourEntry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.HourEntry), args.Error(1)
}

func (m *MockHourService) Export(ctx context.Context, in service.ListHourEntriesInput) (*service.ExportHoursOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportHoursOutput), args.Error(1)
}

// MockStatsService is a mock implementation of StatsService
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) HourStats(ctx context.Context, userID uuid.UUID, period service.Period) (*service.HourStats, error) {
	args := m.Called(ctx, userID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HourStats), args.Error(1)
}

func (m *MockStatsService) ProjectStats(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) (*service.ProjectStats, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProjectStats), args.Error(1)
}

// MockProjectService is a mock implementation of ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, in service.CreateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, in service.ListProjectsInput) ([]*model.Project, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Project), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, in service.UpdateProjectInput) (*model.Project, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) error {
	args := m.Called(ctx, userID, projectID)
	return args.Error(0)
}

// MockTaskService is a mock implementation of TaskService
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, in service.TaskInput) (*model.Task, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Get(ctx context.Context, userID uuid.UUID, taskID uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) List(ctx context.Context, in service.ListTasksInput) ([]*model.Task, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, taskID uuid.UUID, in service.TaskInput) (*model.Task, error) {
	args := m.Called(ctx, taskID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, userID uuid.UUID, taskID uuid.UUID) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

func (m *MockTaskService) Stats(ctx context.Context, userID uuid.UUID) (*service.TaskStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TaskStats), args.Error(1)
}

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.CredentialsInput) (*service.AuthOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthOutput), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, in service.CredentialsInput) (*service.AuthOutput, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthOutput), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// asUser wraps h so it runs with user set in the context, as the auth middleware does.
func asUser(user *model.User, h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", user)
		h(c)
	}
}
