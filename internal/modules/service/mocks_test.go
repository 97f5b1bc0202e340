package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/taskflow-io/hourtrack/internal/infra/blob"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/modules/repo"
)

// MockHourEntryRepo is a mock implementation of HourEntryRepo
type MockHourEntryRepo struct {
	mock.Mock
}

func (m *MockHourEntryRepo) Create(ctx context.Context, e *model.HourEntry, guard repo.DayGuard) (*model.Project, error) {
	args := m.Called(ctx, e, guard)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockHourEntryRepo) Update(ctx context.Context, userID uuid.UUID, entryID uuid.UUID, patch repo.HourEntryPatch, guard repo.DayGuard) (*repo.UpdatedEntry, error) {
	args := m.Called(ctx, userID, entryID, patch, guard)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repo.UpdatedEntry), args.Error(1)
}

func (m *MockHourEntryRepo) Delete(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*model.HourEntry, *model.Project, error) {
	args := m.Called(ctx, userID, entryID)
	var (
		e *model.HourEntry
		p *model.Project
	)
	if v := args.Get(0); v != nil {
		e = v.(*model.HourEntry)
	}
	if v := args.Get(1); v != nil {
		p = v.(*model.Project)
	}
	return e, p, args.Error(2)
}

func (m *MockHourEntryRepo) Get(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*model.HourEntry, error) {
	args := m.Called(ctx, userID, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.HourEntry), args.Error(1)
}

func (m *MockHourEntryRepo) List(ctx context.Context, f repo.HourEntryFilter) ([]*model.HourEntry, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.HourEntry), args.Error(1)
}

func (m *MockHourEntryRepo) ListByProject(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) ([]*model.HourEntry, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.HourEntry), args.Error(1)
}

func (m *MockHourEntryRepo) SumByProject(ctx context.Context, userID uuid.UUID, since *time.Time) ([]repo.ProjectHours, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repo.ProjectHours), args.Error(1)
}

// MockProjectRepo is a mock implementation of ProjectRepo
type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) Get(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) List(ctx context.Context, f repo.ProjectFilter) ([]*model.Project, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Project), args.Error(1)
}

func (m *MockProjectRepo) Update(ctx context.Context, p *model.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepo) DeleteIfUnused(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID, projectID)
	return args.Get(0).(int64), args.Error(1)
}

// MockUserRepo is a mock implementation of UserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTaskRepo is a mock implementation of TaskRepo
type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) Create(ctx context.Context, t *model.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepo) Get(ctx context.Context, userID uuid.UUID, taskID uuid.UUID) (*model.Task, error) {
	args := m.Called(ctx, userID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockTaskRepo) List(ctx context.Context, f repo.TaskFilter) ([]*model.Task, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Task), args.Error(1)
}

func (m *MockTaskRepo) Update(ctx context.Context, t *model.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepo) Delete(ctx context.Context, userID uuid.UUID, taskID uuid.UUID) error {
	args := m.Called(ctx, userID, taskID)
	return args.Error(0)
}

func (m *MockTaskRepo) CountByStatus(ctx context.Context, userID uuid.UUID) (map[model.TaskStatus]int64, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[model.TaskStatus]int64), args.Error(1)
}

// MockStatsCache is a mock implementation of StatsCache
type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) Get(ctx context.Context, userID uuid.UUID, period string, dest any) (int64, bool, error) {
	args := m.Called(ctx, userID, period, dest)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *MockStatsCache) Set(ctx context.Context, userID uuid.UUID, gen int64, period string, v any) error {
	args := m.Called(ctx, userID, gen, period, v)
	return args.Error(0)
}

func (m *MockStatsCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJSON(ctx context.Context, v any) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

// MockBlobStore is a mock implementation of BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) UploadJSON(ctx context.Context, keyPrefix string, data any) (*blob.UploadedMeta, error) {
	args := m.Called(ctx, keyPrefix, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.UploadedMeta), args.Error(1)
}

func (m *MockBlobStore) PresignGet(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

// MockTokenIssuer is a mock implementation of TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Sign(userID uuid.UUID) (string, time.Time, error) {
	args := m.Called(userID)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenIssuer) Parse(raw string) (uuid.UUID, error) {
	args := m.Called(raw)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
