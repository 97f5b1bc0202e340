package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func entryOn(y int, m time.Month, d int, hours float64) *model.HourEntry {
	return &model.HourEntry{ID: uuid.New(), Hours: hours, Date: datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))}
}

func TestSummarizeHours(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	rows := []repo.ProjectHours{
		{ProjectID: a, ProjectName: "A", TargetHours: 10, TotalHours: 3.3, EntryCount: 3, AvgHours: 1.1},
		{ProjectID: b, ProjectName: "B", TargetHours: 3, TotalHours: 7.1, EntryCount: 2, AvgHours: 3.55},
		{ProjectID: c, ProjectName: "C", TargetHours: 0, TotalHours: 1, EntryCount: 1, AvgHours: 1},
	}

	got := summarizeHours(PeriodMonth, rows)

	assert.Equal(t, PeriodMonth, got.Period)
	assert.Equal(t, 11.4, got.Overall.TotalHours)
	assert.Equal(t, int64(6), got.Overall.TotalEntries)
	assert.Equal(t, 1.9, got.Overall.AvgHoursPerEntry)
	assert.Equal(t, 3, got.Overall.ProjectCount)

	require.Len(t, got.Projects, 3)
	assert.Equal(t, b, got.Projects[0].ProjectID)
	// not capped, one decimal
	assert.Equal(t, 236.7, got.Projects[0].ProgressPercentage)
	assert.Equal(t, 33.0, got.Projects[1].ProgressPercentage)
	assert.Equal(t, 0.0, got.Projects[2].ProgressPercentage)
}

func TestSummarizeHours_Empty(t *testing.T) {
	got := summarizeHours(PeriodAll, nil)
	assert.Equal(t, OverallHours{}, got.Overall)
	assert.NotNil(t, got.Projects)
}

func TestProjectStats(t *testing.T) {
	p := &model.Project{ID: uuid.New(), Name: "Go", TargetHours: 19, TotalHours: 9.5}
	// newest first
	entries := []*model.HourEntry{
		entryOn(2024, 3, 2, 1.5),
		entryOn(2024, 3, 2, 2),
		entryOn(2024, 2, 28, 3),
		entryOn(2024, 1, 5, 3),
	}

	got := projectStats(p, entries, 2)

	assert.Equal(t, 50, got.Project.ProgressPercentage)
	assert.Equal(t, 9.5, got.TimeTracking.TotalHours)
	assert.Equal(t, 3, got.TimeTracking.TotalDays)
	assert.Equal(t, 3.17, got.TimeTracking.AvgHoursPerDay)
	require.NotNil(t, got.TimeTracking.FirstLogDate)
	assert.Equal(t, "2024-01-05", *got.TimeTracking.FirstLogDate)
	assert.Equal(t, "2024-03-02", *got.TimeTracking.LastLogDate)
	assert.Equal(t, map[string]float64{"2024-01": 3, "2024-02": 3, "2024-03": 3.5}, got.Analytics.HoursByMonth)
	assert.Len(t, got.Analytics.RecentEntries, 2)
	assert.Equal(t, entries[0].ID, got.Analytics.RecentEntries[0].ID)
}

func TestProjectStats_NoEntries(t *testing.T) {
	got := projectStats(&model.Project{TargetHours: 0}, nil, 10)
	assert.Equal(t, 0, got.Project.ProgressPercentage)
	assert.Nil(t, got.TimeTracking.FirstLogDate)
	assert.Nil(t, got.TimeTracking.LastLogDate)
	assert.Zero(t, got.TimeTracking.AvgHoursPerDay)
	assert.Empty(t, got.Analytics.HoursByMonth)
	assert.NotNil(t, got.Analytics.RecentEntries)
}

func TestStatsService_HourStats_Cache(t *testing.T) {
	userID := uuid.New()
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	since := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	t.Run("miss computes and stores", func(t *testing.T) {
		hours := &MockHourEntryRepo{}
		hours.On("SumByProject", mock.Anything, userID, mock.MatchedBy(func(s *time.Time) bool {
			return s != nil && s.Equal(since)
		})).Return([]repo.ProjectHours{{ProjectID: uuid.New(), TargetHours: 10, TotalHours: 5, EntryCount: 1, AvgHours: 5}}, nil)

		cache := &MockStatsCache{}
		cache.On("Get", mock.Anything, userID, "month", mock.Anything).Return(int64(3), false, nil)
		cache.On("Set", mock.Anything, userID, int64(3), "month", mock.Anything).Return(nil)

		svc := NewStatsService(hours, &MockProjectRepo{}, zap.NewNop(), StatsOptions{Cache: cache}).(*statsService)
		svc.now = func() time.Time { return now }

		got, err := svc.HourStats(context.Background(), userID, PeriodMonth)
		require.NoError(t, err)
		assert.Equal(t, 50.0, got.Projects[0].ProgressPercentage)
		cache.AssertExpectations(t)
		hours.AssertExpectations(t)
	})

	t.Run("hit skips the database", func(t *testing.T) {
		hours := &MockHourEntryRepo{}
		cache := &MockStatsCache{}
		cache.On("Get", mock.Anything, userID, "all", mock.Anything).Return(int64(0), true, nil)

		svc := NewStatsService(hours, &MockProjectRepo{}, zap.NewNop(), StatsOptions{Cache: cache})
		_, err := svc.HourStats(context.Background(), userID, PeriodAll)
		require.NoError(t, err)
		hours.AssertNotCalled(t, "SumByProject", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("read error skips the write", func(t *testing.T) {
		hours := &MockHourEntryRepo{}
		hours.On("SumByProject", mock.Anything, userID, mock.Anything).Return([]repo.ProjectHours{}, nil)
		cache := &MockStatsCache{}
		cache.On("Get", mock.Anything, userID, "all", mock.Anything).Return(int64(0), false, errors.New("redis down"))

		svc := NewStatsService(hours, &MockProjectRepo{}, zap.NewNop(), StatsOptions{Cache: cache})
		_, err := svc.HourStats(context.Background(), userID, PeriodAll)
		require.NoError(t, err)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("week is never cached", func(t *testing.T) {
		hours := &MockHourEntryRepo{}
		hours.On("SumByProject", mock.Anything, userID, mock.Anything).Return([]repo.ProjectHours{}, nil)
		cache := &MockStatsCache{}

		svc := NewStatsService(hours, &MockProjectRepo{}, zap.NewNop(), StatsOptions{Cache: cache})
		_, err := svc.HourStats(context.Background(), userID, PeriodWeek)
		require.NoError(t, err)
		cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown period", func(t *testing.T) {
		svc := NewStatsService(&MockHourEntryRepo{}, &MockProjectRepo{}, zap.NewNop(), StatsOptions{})
		_, err := svc.HourStats(context.Background(), userID, "fortnight")
		assert.ErrorIs(t, err, ErrValidation)
	})
}
