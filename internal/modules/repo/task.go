package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"gorm.io/gorm"
)

type TaskRepo interface {
	Create(ctx context.Context, t *model.Task) error
	Get(ctx context.Context, userID uuid.UUID, taskID uuid.UUID) (*model.Task, error)
	List(ctx context.Context, f TaskFilter) ([]*model.Task, error)
	Update(ctx context.Context, t *model.Task) error
	Delete(ctx context.Context, userID uuid.UUID, taskID uuid.UUID) error
	CountByStatus(ctx context.Context, userID uuid.UUID) (map[model.TaskStatus]int64, error)
}

type TaskFilter struct {
	UserID   uuid.UUID
	Status   model.TaskStatus
	Priority model.TaskPriority
	SortBy   string
	Desc     bool
}

type taskRepo struct{ db *gorm.DB }

func NewTaskRepo(db *gorm.DB) TaskRepo {
	return &taskRepo{db: db}
}

func (r *taskRepo) Create(ctx context.Context, t *model.Task) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *taskRepo) Get(ctx context.Context, userID uuid.UUID, taskID uuid.UUID) (*model.Task, error) {
	var t model.Task
	return &t, r.db.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, userID).First(&t).Error
}

func (r *taskRepo) List(ctx context.Context, f TaskFilter) ([]*model.Task, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", f.UserID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	dir := "ASC"
	if f.Desc {
		dir = "DESC"
	}

	var tasks []*model.Task
	return tasks, q.Order(fmt.Sprintf("%s %s, id %s", sortBy, dir, dir)).Find(&tasks).Error
}

func (r *taskRepo) Update(ctx context.Context, t *model.Task) error {
	res := r.db.WithContext(ctx).
		Model(t).
		Where("user_id = ?", t.UserID).
		Select("title", "description", "status", "priority", "due_date", "completed_at", "updated_at").
		Updates(t)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, userID uuid.UUID, taskID uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", taskID, userID).Delete(&model.Task{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *taskRepo) CountByStatus(ctx context.Context, userID uuid.UUID) (map[model.TaskStatus]int64, error) {
	var rows []struct {
		Status model.TaskStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[model.TaskStatus]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
