package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"gorm.io/gorm"
)

type ProjectRepo interface {
	Create(ctx context.Context, p *model.Project) error
	Get(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) (*model.Project, error)
	List(ctx context.Context, f ProjectFilter) ([]*model.Project, error)
	Update(ctx context.Context, p *model.Project) error
	DeleteIfUnused(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) (int64, error)
}

type ProjectFilter struct {
	UserID uuid.UUID
	Status model.ProjectStatus
	// column name, already whitelisted by the caller
	SortBy string
	Desc   bool
}

type projectRepo struct{ db *gorm.DB }

func NewProjectRepo(db *gorm.DB) ProjectRepo {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, p *model.Project) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *projectRepo) Get(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) (*model.Project, error) {
	var p model.Project
	return &p, r.db.WithContext(ctx).Where("id = ? AND user_id = ?", projectID, userID).First(&p).Error
}

func (r *projectRepo) List(ctx context.Context, f ProjectFilter) ([]*model.Project, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", f.UserID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}

	var projects []*model.Project
	return projects, q.Order(fmt.Sprintf("%s %s, id %s", sortBy, dir, dir)).Find(&projects).Error
}

// Update writes the user-editable columns only; total_hours belongs to the hour entry transactions.
func (r *projectRepo) Update(ctx context.Context, p *model.Project) error {
	res := r.db.WithContext(ctx).
		Model(p).
		Where("user_id = ?", p.UserID).
		Select("name", "description", "target_hours", "status", "completed_at", "updated_at").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteIfUnused deletes the project unless hour entries still reference it,
// in which case it returns their count and deletes nothing.
func (r *projectRepo) DeleteIfUnused(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) (int64, error) {
	var entries int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p model.Project
		if err := forUpdate(tx).Where("id = ? AND user_id = ?", projectID, userID).First(&p).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.HourEntry{}).Where("project_id = ?", projectID).Count(&entries).Error; err != nil {
			return fmt.Errorf("count hour entries: %w", err)
		}
		if entries > 0 {
			return nil
		}

		return tx.Delete(&p).Error
	})
	return entries, err
}
