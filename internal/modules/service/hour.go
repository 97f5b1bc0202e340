package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskflow-io/hourtrack/internal/infra/blob"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	defaultListLimit        = 100
	defaultProjectListLimit = 50
	maxExportEntries        = 10000
)

// StatsCache keeps computed hour statistics per user and period. Get returns
// the generation it looked under; Set stores under that generation, and
// Invalidate moves the user to a new one.
type StatsCache interface {
	Get(ctx context.Context, userID uuid.UUID, period string, dest any) (gen int64, hit bool, err error)
	Set(ctx context.Context, userID uuid.UUID, gen int64, period string, v any) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, v any) error
}

type BlobStore interface {
	UploadJSON(ctx context.Context, keyPrefix string, data any) (*blob.UploadedMeta, error)
	PresignGet(ctx context.Context, key string, expire time.Duration) (string, error)
}

type HourService interface {
	Log(ctx context.Context, in LogHoursInput) (*LogHoursOutput, error)
	Update(ctx context.Context, in UpdateHourEntryInput) (*model.HourEntry, error)
	Delete(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*model.HourEntry, error)
	Get(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*model.HourEntry, error)
	List(ctx context.Context, in ListHourEntriesInput) ([]*model.HourEntry, error)
	ListByProject(ctx context.Context, in ListHourEntriesInput) ([]*model.HourEntry, error)
	Export(ctx context.Context, in ListHourEntriesInput) (*ExportHoursOutput, error)
}

// HourOptions carries the optional collaborators; nil members are skipped.
type HourOptions struct {
	Location      *time.Location
	Cache         StatsCache
	Events        EventPublisher
	Blob          BlobStore
	PresignExpire time.Duration
}

type hourService struct {
	hours    repo.HourEntryRepo
	projects repo.ProjectRepo
	log      *zap.Logger
	opts     HourOptions
	v        hourValidator
	now      func() time.Time
}

func NewHourService(hours repo.HourEntryRepo, projects repo.ProjectRepo, log *zap.Logger, opts HourOptions) HourService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PresignExpire <= 0 {
		opts.PresignExpire = 15 * time.Minute
	}
	s := &hourService{
		hours:    hours,
		projects: projects,
		log:      log,
		opts:     opts,
		now:      time.Now,
	}
	s.v = hourValidator{loc: opts.Location, now: func() time.Time { return s.now() }}
	return s
}

type LogHoursInput struct {
	UserID      uuid.UUID
	ProjectID   uuid.UUID
	Hours       float64
	Description string
	Date        string
}

type LogHoursOutput struct {
	HourEntry *model.HourEntry     `json:"hour_entry"`
	Project   model.ProjectSummary `json:"project"`
}

func (s *hourService) Log(ctx context.Context, in LogHoursInput) (*LogHoursOutput, error) {
	var fe fieldErrors
	s.v.checkHours(in.Hours, &fe)
	desc := strings.TrimSpace(in.Description)
	s.v.checkDescription(desc, &fe)
	day := s.v.checkDate(in.Date, &fe)
	if err := fe.err(); err != nil {
		return nil, err
	}

	entry := &model.HourEntry{
		UserID:      in.UserID,
		ProjectID:   in.ProjectID,
		Hours:       in.Hours,
		Description: desc,
		Date:        datatypes.Date(day),
	}
	project, err := s.hours.Create(ctx, entry, dailyCap)
	if err != nil {
		return nil, mapNotFound(err, "project")
	}

	s.log.Sugar().Infow("hours logged",
		"user_id", in.UserID,
		"project_id", project.ID,
		"entry_id", entry.ID,
		"hours", entry.Hours,
		"project_total", project.TotalHours,
	)
	s.afterChange(ctx, newHourEvent(HourEntryCreated, entry, entry.Hours, project))

	return &LogHoursOutput{HourEntry: entry, Project: project.Summary()}, nil
}

type UpdateHourEntryInput struct {
	UserID      uuid.UUID
	EntryID     uuid.UUID
	Hours       *float64
	Description *string
	Date        *string
}

func (s *hourService) Update(ctx context.Context, in UpdateHourEntryInput) (*model.HourEntry, error) {
	var (
		fe    fieldErrors
		patch repo.HourEntryPatch
	)
	if in.Hours != nil {
		s.v.checkHours(*in.Hours, &fe)
		patch.Hours = in.Hours
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		s.v.checkDescription(desc, &fe)
		patch.Description = &desc
	}
	if in.Date != nil {
		day := s.v.checkDate(*in.Date, &fe)
		patch.Date = &day
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	res, err := s.hours.Update(ctx, in.UserID, in.EntryID, patch, dailyCap)
	if err != nil {
		return nil, mapNotFound(err, "hour entry")
	}
	entry, project := res.Entry, res.Project

	delta := entry.Hours - res.OldHours
	if project != nil {
		s.log.Sugar().Infow("hour entry updated",
			"user_id", in.UserID,
			"entry_id", entry.ID,
			"delta", delta,
			"project_total", project.TotalHours,
		)
	}
	s.afterChange(ctx, newHourEvent(HourEntryUpdated, entry, delta, project))

	out, err := s.hours.Get(ctx, in.UserID, entry.ID)
	if err != nil {
		return nil, mapNotFound(err, "hour entry")
	}
	return out, nil
}

func (s *hourService) Delete(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*model.HourEntry, error) {
	entry, project, err := s.hours.Delete(ctx, userID, entryID)
	if err != nil {
		return nil, mapNotFound(err, "hour entry")
	}

	if project == nil {
		s.log.Sugar().Warnw("deleted hour entry of a missing project", "entry_id", entry.ID, "project_id", entry.ProjectID)
	} else {
		s.log.Sugar().Infow("hour entry deleted",
			"user_id", userID,
			"entry_id", entry.ID,
			"hours", entry.Hours,
			"project_total", project.TotalHours,
		)
	}
	s.afterChange(ctx, newHourEvent(HourEntryDeleted, entry, -entry.Hours, project))

	return entry, nil
}

func (s *hourService) Get(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*model.HourEntry, error) {
	e, err := s.hours.Get(ctx, userID, entryID)
	if err != nil {
		return nil, mapNotFound(err, "hour entry")
	}
	return e, nil
}

type ListHourEntriesInput struct {
	UserID    uuid.UUID
	ProjectID *uuid.UUID
	StartDate string
	EndDate   string
	Limit     int
}

func (s *hourService) filter(in ListHourEntriesInput, defaultLimit int) (repo.HourEntryFilter, error) {
	f := repo.HourEntryFilter{
		UserID:    in.UserID,
		ProjectID: in.ProjectID,
		Limit:     in.Limit,
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}

	var fe fieldErrors
	if in.StartDate != "" {
		day, err := parseDay(in.StartDate, s.opts.Location)
		if err != nil {
			fe.add("start_date: " + err.Error())
		} else {
			f.From = &day
		}
	}
	if in.EndDate != "" {
		day, err := parseDay(in.EndDate, s.opts.Location)
		if err != nil {
			fe.add("end_date: " + err.Error())
		} else {
			f.To = &day
		}
	}
	return f, fe.err()
}

func (s *hourService) List(ctx context.Context, in ListHourEntriesInput) ([]*model.HourEntry, error) {
	f, err := s.filter(in, defaultListLimit)
	if err != nil {
		return nil, err
	}
	return s.hours.List(ctx, f)
}

// ListByProject lists the entries of one of the user's projects, 50 by default.
func (s *hourService) ListByProject(ctx context.Context, in ListHourEntriesInput) ([]*model.HourEntry, error) {
	if in.ProjectID == nil {
		return nil, invalid("project id is required")
	}
	if _, err := s.projects.Get(ctx, in.UserID, *in.ProjectID); err != nil {
		return nil, mapNotFound(err, "project")
	}

	f, err := s.filter(in, defaultProjectListLimit)
	if err != nil {
		return nil, err
	}
	return s.hours.List(ctx, f)
}

type ExportHoursOutput struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Count     int       `json:"count"`
	ExpiresAt time.Time `json:"expires_at"`
}

type hourExport struct {
	UserID      uuid.UUID          `json:"user_id"`
	GeneratedAt time.Time          `json:"generated_at"`
	StartDate   string             `json:"start_date,omitempty"`
	EndDate     string             `json:"end_date,omitempty"`
	ProjectID   *uuid.UUID         `json:"project_id,omitempty"`
	TotalHours  float64            `json:"total_hours"`
	Entries     []*model.HourEntry `json:"entries"`
}

// Export writes the matching entries to blob storage and returns a pre-signed download URL.
func (s *hourService) Export(ctx context.Context, in ListHourEntriesInput) (*ExportHoursOutput, error) {
	if s.opts.Blob == nil {
		return nil, &Error{Kind: ErrUnavailable, Msg: "export storage is not configured"}
	}
	if in.Limit <= 0 || in.Limit > maxExportEntries {
		in.Limit = maxExportEntries
	}
	f, err := s.filter(in, maxExportEntries)
	if err != nil {
		return nil, err
	}
	entries, err := s.hours.List(ctx, f)
	if err != nil {
		return nil, err
	}

	var hundredths int64
	for _, e := range entries {
		hundredths += int64(e.Hours*100 + 0.5)
	}
	doc := hourExport{
		UserID:      in.UserID,
		GeneratedAt: s.now().UTC(),
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		ProjectID:   in.ProjectID,
		TotalHours:  float64(hundredths) / 100,
		Entries:     entries,
	}

	meta, err := s.opts.Blob.UploadJSON(ctx, fmt.Sprintf("exports/%s", in.UserID), doc)
	if err != nil {
		return nil, fmt.Errorf("upload export: %w", err)
	}
	url, err := s.opts.Blob.PresignGet(ctx, meta.Key, s.opts.PresignExpire)
	if err != nil {
		return nil, fmt.Errorf("presign export: %w", err)
	}

	s.log.Sugar().Infow("hour entries exported", "user_id", in.UserID, "key", meta.Key, "count", len(entries))
	return &ExportHoursOutput{
		Key:       meta.Key,
		URL:       url,
		Count:     len(entries),
		ExpiresAt: s.now().UTC().Add(s.opts.PresignExpire),
	}, nil
}

// afterChange runs once an entry mutation is committed. Failures here are
// logged only: the write already happened.
func (s *hourService) afterChange(ctx context.Context, ev HourEvent) {
	if s.opts.Cache != nil {
		if err := s.opts.Cache.Invalidate(ctx, ev.UserID); err != nil {
			s.log.Sugar().Warnw("invalidate hour stats cache", "user_id", ev.UserID, "err", err)
		}
	}
	if s.opts.Events != nil {
		ev.OccurredAt = s.now().UTC()
		if err := s.opts.Events.PublishJSON(ctx, ev); err != nil {
			s.log.Sugar().Warnw("publish hour entry event", "type", ev.Type, "entry_id", ev.EntryID, "err", err)
		}
	}
}
