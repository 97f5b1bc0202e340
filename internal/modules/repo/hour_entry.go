package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/pkg/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DayGuard decides whether entry may be written given the hours the same user
// already logged on the entry's day (the entry itself excluded).
type DayGuard func(entry *model.HourEntry, loggedThatDay float64) error

type HourEntryPatch struct {
	Hours       *float64
	Description *string
	Date        *time.Time
}

type HourEntryFilter struct {
	UserID    uuid.UUID
	ProjectID *uuid.UUID
	// inclusive calendar-day bounds
	From      *time.Time
	To        *time.Time
	Limit     int
}

// ProjectHours is one row of the per-project rollup.
type ProjectHours struct {
	ProjectID   uuid.UUID `gorm:"column:project_id"`
	ProjectName string    `gorm:"column:project_name"`
	TargetHours float64   `gorm:"column:target_hours"`
	TotalHours  float64   `gorm:"column:total_hours"`
	EntryCount  int64     `gorm:"column:entry_count"`
	AvgHours    float64   `gorm:"column:avg_hours"`
}

// UpdatedEntry is the outcome of an entry update. Project is set only when
// its total moved.
type UpdatedEntry struct {
	Entry    *model.HourEntry
	Project  *model.Project
	OldHours float64
}

type HourEntryRepo interface {
	Create(ctx context.Context, e *model.HourEntry, guard DayGuard) (*model.Project, error)
	Update(ctx context.Context, userID uuid.UUID, entryID uuid.UUID, patch HourEntryPatch, guard DayGuard) (*UpdatedEntry, error)
	Delete(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*model.HourEntry, *model.Project, error)
	Get(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*model.HourEntry, error)
	List(ctx context.Context, f HourEntryFilter) ([]*model.HourEntry, error)
	ListByProject(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) ([]*model.HourEntry, error)
	SumByProject(ctx context.Context, userID uuid.UUID, since *time.Time) ([]ProjectHours, error)
}

type hourEntryRepo struct{ db *gorm.DB }

func NewHourEntryRepo(db *gorm.DB) HourEntryRepo {
	return &hourEntryRepo{db: db}
}

// Create inserts the entry and adds its hours to the owning project in one transaction.
func (r *hourEntryRepo) Create(ctx context.Context, e *model.HourEntry, guard DayGuard) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("id = ? AND user_id = ?", e.ProjectID, e.UserID).First(&project).Error; err != nil {
			return err
		}

		if err := checkDay(tx, e, guard); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(e).Error; err != nil {
			return fmt.Errorf("create hour entry: %w", err)
		}

		return addProjectHours(tx, &project, e.Hours)
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Update applies patch to the entry and moves the project total by the hours delta.
// The returned project is nil when the total did not change.
func (r *hourEntryRepo) Update(ctx context.Context, userID uuid.UUID, entryID uuid.UUID, patch HourEntryPatch, guard DayGuard) (*UpdatedEntry, error) {
	var (
		entry    model.HourEntry
		project  *model.Project
		oldHours float64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
			return err
		}

		oldHours = entry.Hours
		if patch.Hours != nil {
			entry.Hours = *patch.Hours
		}
		if patch.Description != nil {
			entry.Description = *patch.Description
		}
		if patch.Date != nil {
			entry.Date = datatypes.Date(*patch.Date)
		}

		if patch.Hours != nil || patch.Date != nil {
			if err := checkDay(tx, &entry, guard); err != nil {
				return err
			}
		}

		if err := tx.Omit(clause.Associations).Save(&entry).Error; err != nil {
			return fmt.Errorf("save hour entry: %w", err)
		}

		delta := utils.Round(entry.Hours-oldHours, 2)
		if patch.Hours == nil || delta == 0 {
			return nil
		}

		var p model.Project
		err := forUpdate(tx).Where("id = ?", entry.ProjectID).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		project = &p
		return addProjectHours(tx, project, delta)
	})
	if err != nil {
		return nil, err
	}
	return &UpdatedEntry{Entry: &entry, Project: project, OldHours: oldHours}, nil
}

// Delete removes the entry and takes its hours off the project, floored at zero.
// A project that no longer exists does not block the delete.
func (r *hourEntryRepo) Delete(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*model.HourEntry, *model.Project, error) {
	var (
		entry   model.HourEntry
		project *model.Project
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error; err != nil {
			return err
		}

		var p model.Project
		err := forUpdate(tx).Where("id = ?", entry.ProjectID).First(&p).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
		case err != nil:
			return err
		default:
			project = &p
			if err := addProjectHours(tx, project, -entry.Hours); err != nil {
				return err
			}
		}

		if err := tx.Delete(&model.HourEntry{}, "id = ?", entry.ID).Error; err != nil {
			return fmt.Errorf("delete hour entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &entry, project, nil
}

func (r *hourEntryRepo) Get(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) (*model.HourEntry, error) {
	var e model.HourEntry
	err := r.db.WithContext(ctx).
		Preload("Project", selectProjectSummary).
		Where("id = ? AND user_id = ?", entryID, userID).
		First(&e).Error
	return &e, err
}

func (r *hourEntryRepo) List(ctx context.Context, f HourEntryFilter) ([]*model.HourEntry, error) {
	q := r.db.WithContext(ctx).Preload("Project", selectProjectSummary).Where("user_id = ?", f.UserID)
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.From != nil {
		q = q.Where("date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("date < ?", f.To.AddDate(0, 0, 1))
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var entries []*model.HourEntry
	return entries, q.Order("date DESC, created_at DESC").Find(&entries).Error
}

func (r *hourEntryRepo) ListByProject(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) ([]*model.HourEntry, error) {
	var entries []*model.HourEntry
	return entries, r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Order("date DESC, created_at DESC").
		Find(&entries).Error
}

// SumByProject groups the user's entries on or after since (all when nil) by project, largest total first.
func (r *hourEntryRepo) SumByProject(ctx context.Context, userID uuid.UUID, since *time.Time) ([]ProjectHours, error) {
	q := r.db.WithContext(ctx).
		Table("hour_entries AS h").
		Select("h.project_id AS project_id, p.name AS project_name, p.target_hours AS target_hours, " +
			"SUM(h.hours) AS total_hours, COUNT(*) AS entry_count, AVG(h.hours) AS avg_hours").
		Joins("JOIN projects AS p ON p.id = h.project_id").
		Where("h.user_id = ?", userID)
	if since != nil {
		q = q.Where("h.date >= ?", *since)
	}

	var rows []ProjectHours
	return rows, q.Group("h.project_id, p.name, p.target_hours").Order("total_hours DESC").Scan(&rows).Error
}

func selectProjectSummary(db *gorm.DB) *gorm.DB {
	return db.Select("id", "user_id", "name", "status", "target_hours", "total_hours")
}

// checkDay sums the hours the entry's user logged on the entry's day, excluding
// the entry itself, and hands the total to guard.
func checkDay(tx *gorm.DB, e *model.HourEntry, guard DayGuard) error {
	if guard == nil {
		return nil
	}
	if err := lockUserHours(tx, e.UserID); err != nil {
		return fmt.Errorf("lock user hours: %w", err)
	}

	start := e.Day()
	q := tx.Model(&model.HourEntry{}).
		Where("user_id = ? AND date >= ? AND date < ?", e.UserID, start, start.AddDate(0, 0, 1))
	if e.ID != uuid.Nil {
		q = q.Where("id <> ?", e.ID)
	}

	var logged float64
	if err := q.Select("COALESCE(SUM(hours), 0)").Scan(&logged).Error; err != nil {
		return fmt.Errorf("sum day hours: %w", err)
	}
	return guard(e, utils.Round(logged, 2))
}

func addProjectHours(tx *gorm.DB, p *model.Project, delta float64) error {
	total := utils.Round(p.TotalHours+delta, 2)
	if total < 0 {
		total = 0
	}
	if err := tx.Model(p).Update("total_hours", total).Error; err != nil {
		return fmt.Errorf("update project total hours: %w", err)
	}
	p.TotalHours = total
	return nil
}
