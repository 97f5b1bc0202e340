package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/modules/repo"
	"github.com/taskflow-io/hourtrack/internal/pkg/utils"
	"go.uber.org/zap"
)

type StatsService interface {
	HourStats(ctx context.Context, userID uuid.UUID, period Period) (*HourStats, error)
	ProjectStats(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) (*ProjectStats, error)
}

type StatsOptions struct {
	Location      *time.Location
	Cache         StatsCache
	RecentEntries int
}

type statsService struct {
	hours    repo.HourEntryRepo
	projects repo.ProjectRepo
	log      *zap.Logger
	opts     StatsOptions
	now      func() time.Time
}

func NewStatsService(hours repo.HourEntryRepo, projects repo.ProjectRepo, log *zap.Logger, opts StatsOptions) StatsService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.RecentEntries <= 0 {
		opts.RecentEntries = 10
	}
	return &statsService{hours: hours, projects: projects, log: log, opts: opts, now: time.Now}
}

type HourStats struct {
	Period   Period             `json:"period"`
	Overall  OverallHours       `json:"overall"`
	Projects []ProjectHourStats `json:"projects"`
}

type OverallHours struct {
	TotalHours       float64 `json:"total_hours"`
	TotalEntries     int64   `json:"total_entries"`
	AvgHoursPerEntry float64 `json:"avg_hours_per_entry"`
	ProjectCount     int     `json:"project_count"`
}

type ProjectHourStats struct {
	ProjectID          uuid.UUID `json:"project_id"`
	ProjectName        string    `json:"project_name"`
	TargetHours        float64   `json:"target_hours"`
	TotalHours         float64   `json:"total_hours"`
	EntryCount         int64     `json:"entry_count"`
	AvgHoursPerEntry   float64   `json:"avg_hours_per_entry"`
	ProgressPercentage float64   `json:"progress_percentage"`
}

func (s *statsService) HourStats(ctx context.Context, userID uuid.UUID, period Period) (*HourStats, error) {
	if period == "" {
		period = PeriodAll
	}
	since, err := period.since(s.now(), s.opts.Location)
	if err != nil {
		return nil, err
	}

	// week is computed fresh on every call
	cacheable := s.opts.Cache != nil && period != PeriodWeek
	var gen int64
	if cacheable {
		var (
			cached HourStats
			hit    bool
		)
		gen, hit, err = s.opts.Cache.Get(ctx, userID, string(period), &cached)
		if err != nil {
			s.log.Sugar().Warnw("read hour stats cache", "user_id", userID, "period", period, "err", err)
			cacheable = false
		} else if hit {
			return &cached, nil
		}
	}

	rows, err := s.hours.SumByProject(ctx, userID, since)
	if err != nil {
		return nil, err
	}
	out := summarizeHours(period, rows)

	if cacheable {
		if err := s.opts.Cache.Set(ctx, userID, gen, string(period), out); err != nil {
			s.log.Sugar().Warnw("write hour stats cache", "user_id", userID, "period", period, "err", err)
		}
	}
	return out, nil
}

// summarizeHours turns per-project sums into the stats payload. Overall
// figures are accumulated in hundredths.
func summarizeHours(period Period, rows []repo.ProjectHours) *HourStats {
	out := &HourStats{Period: period, Projects: make([]ProjectHourStats, 0, len(rows))}

	var total int64
	for _, r := range rows {
		hours := utils.Round(r.TotalHours, 2)
		ps := ProjectHourStats{
			ProjectID:        r.ProjectID,
			ProjectName:      r.ProjectName,
			TargetHours:      r.TargetHours,
			TotalHours:       hours,
			EntryCount:       r.EntryCount,
			AvgHoursPerEntry: utils.Round(r.AvgHours, 2),
		}
		if r.TargetHours > 0 {
			ps.ProgressPercentage = utils.Round(r.TotalHours/r.TargetHours*100, 1)
		}
		out.Projects = append(out.Projects, ps)

		total += utils.Hundredths(hours)
		out.Overall.TotalEntries += r.EntryCount
	}
	sort.SliceStable(out.Projects, func(i, j int) bool {
		return out.Projects[i].TotalHours > out.Projects[j].TotalHours
	})

	out.Overall.TotalHours = float64(total) / 100
	out.Overall.ProjectCount = len(rows)
	if out.Overall.TotalEntries > 0 {
		out.Overall.AvgHoursPerEntry = utils.Round(out.Overall.TotalHours/float64(out.Overall.TotalEntries), 2)
	}
	return out
}

type ProjectStats struct {
	Project      model.ProjectSummary `json:"project"`
	TimeTracking TimeTracking         `json:"time_tracking"`
	Analytics    ProjectAnalytics     `json:"analytics"`
}

type TimeTracking struct {
	TotalHours     float64 `json:"total_hours"`
	TotalDays      int     `json:"total_days"`
	AvgHoursPerDay float64 `json:"avg_hours_per_day"`
	FirstLogDate   *string `json:"first_log_date"`
	LastLogDate    *string `json:"last_log_date"`
}

type ProjectAnalytics struct {
	HoursByMonth  map[string]float64 `json:"hours_by_month"`
	RecentEntries []*model.HourEntry `json:"recent_entries"`
}

func (s *statsService) ProjectStats(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) (*ProjectStats, error) {
	p, err := s.projects.Get(ctx, userID, projectID)
	if err != nil {
		return nil, mapNotFound(err, "project")
	}
	entries, err := s.hours.ListByProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	out := projectStats(p, entries, s.opts.RecentEntries)
	if utils.Hundredths(out.TimeTracking.TotalHours) != utils.Hundredths(p.TotalHours) {
		s.log.Sugar().Warnw("project total hours drift",
			"project_id", p.ID,
			"stored", p.TotalHours,
			"entries", out.TimeTracking.TotalHours,
		)
	}
	return out, nil
}

// projectStats expects entries newest first.
func projectStats(p *model.Project, entries []*model.HourEntry, recent int) *ProjectStats {
	out := &ProjectStats{
		Project: p.Summary(),
		Analytics: ProjectAnalytics{
			HoursByMonth:  map[string]float64{},
			RecentEntries: []*model.HourEntry{},
		},
	}

	var total int64
	days := map[string]struct{}{}
	months := map[string]int64{}
	for _, e := range entries {
		h := utils.Hundredths(e.Hours)
		total += h
		day := e.Day()
		days[day.Format(dayLayout)] = struct{}{}
		months[day.Format("2006-01")] += h
	}
	for m, h := range months {
		out.Analytics.HoursByMonth[m] = float64(h) / 100
	}

	tt := &out.TimeTracking
	tt.TotalHours = float64(total) / 100
	tt.TotalDays = len(days)
	if tt.TotalDays > 0 {
		tt.AvgHoursPerDay = utils.Round(tt.TotalHours/float64(tt.TotalDays), 2)
	}
	if n := len(entries); n > 0 {
		first := entries[n-1].Day().Format(dayLayout)
		last := entries[0].Day().Format(dayLayout)
		tt.FirstLogDate, tt.LastLogDate = &first, &last
	}

	if len(entries) > recent {
		entries = entries[:recent]
	}
	out.Analytics.RecentEntries = append(out.Analytics.RecentEntries, entries...)
	return out
}
