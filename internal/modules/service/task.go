package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/modules/repo"
	"go.uber.org/zap"
)

type TaskService interface {
	Create(ctx context.Context, in TaskInput) (*model.Task, error)
	Get(ctx context.Context, userID uuid.UUID, taskID uuid.UUID) (*model.Task, error)
	List(ctx context.Context, in ListTasksInput) ([]*model.Task, error)
	Update(ctx context.Context, taskID uuid.UUID, in TaskInput) (*model.Task, error)
	Delete(ctx context.Context, userID uuid.UUID, taskID uuid.UUID) error
	Stats(ctx context.Context, userID uuid.UUID) (*TaskStats, error)
}

type taskService struct {
	r   repo.TaskRepo
	log *zap.Logger
	loc *time.Location
	now func() time.Time
}

func NewTaskService(r repo.TaskRepo, log *zap.Logger, loc *time.Location) TaskService {
	if loc == nil {
		loc = time.UTC
	}
	return &taskService{r: r, log: log, loc: loc, now: time.Now}
}

var taskSortColumns = map[string]string{
	"createdAt":  "created_at",
	"created_at": "created_at",
	"updatedAt":  "updated_at",
	"updated_at": "updated_at",
	"title":      "title",
	"status":     "status",
	"priority":   "priority",
	"dueDate":    "due_date",
	"due_date":   "due_date",
}

// TaskInput carries a create or a partial update; nil fields are left alone.
// An empty DueDate clears the due date.
type TaskInput struct {
	UserID      uuid.UUID
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *string
}

func (s *taskService) apply(t *model.Task, in TaskInput) error {
	var fe fieldErrors
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
		switch n := utf8.RuneCountInString(t.Title); {
		case n == 0:
			fe.add("Task title is required")
		case n > 100:
			fe.add("Title cannot exceed 100 characters")
		}
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
		if utf8.RuneCountInString(t.Description) > 500 {
			fe.add("Description cannot exceed 500 characters")
		}
	}
	if in.Priority != nil {
		p := model.TaskPriority(*in.Priority)
		if p.Valid() {
			t.Priority = p
		} else {
			fe.add("Priority must be: low, medium, or high")
		}
	}
	if in.Status != nil {
		st := model.TaskStatus(*in.Status)
		if st.Valid() {
			t.SetStatus(st, s.now().UTC())
		} else {
			fe.add("Status must be: todo, in-progress, or completed")
		}
	}
	if in.DueDate != nil {
		if *in.DueDate == "" {
			t.DueDate = nil
		} else if day, err := parseDay(*in.DueDate, s.loc); err != nil {
			fe.add(err.Error())
		} else if day.Before(civilDay(s.now(), s.loc)) {
			fe.add("Due date cannot be in the past")
		} else {
			t.DueDate = &day
		}
	}
	return fe.err()
}

func (s *taskService) Create(ctx context.Context, in TaskInput) (*model.Task, error) {
	if in.Title == nil {
		in.Title = new(string)
	}
	t := &model.Task{UserID: in.UserID, Status: model.TaskTodo, Priority: model.PriorityMedium}
	if err := s.apply(t, in); err != nil {
		return nil, err
	}
	if err := s.r.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.Sugar().Infow("task created", "user_id", in.UserID, "task_id", t.ID)
	return t, nil
}

func (s *taskService) Get(ctx context.Context, userID uuid.UUID, taskID uuid.UUID) (*model.Task, error) {
	t, err := s.r.Get(ctx, userID, taskID)
	if err != nil {
		return nil, mapNotFound(err, "task")
	}
	return t, nil
}

type ListTasksInput struct {
	UserID    uuid.UUID
	Status    string
	Priority  string
	SortBy    string
	SortOrder string
}

func (s *taskService) List(ctx context.Context, in ListTasksInput) ([]*model.Task, error) {
	f := repo.TaskFilter{
		UserID:   in.UserID,
		Status:   model.TaskStatus(in.Status),
		Priority: model.TaskPriority(in.Priority),
		Desc:     true,
	}

	var fe fieldErrors
	if f.Status != "" && !f.Status.Valid() {
		fe.add("Status must be: todo, in-progress, or completed")
	}
	if f.Priority != "" && !f.Priority.Valid() {
		fe.add("Priority must be: low, medium, or high")
	}
	if in.SortBy != "" {
		col, ok := taskSortColumns[in.SortBy]
		if !ok {
			fe.add("Unsupported sortBy " + in.SortBy)
		}
		f.SortBy = col
	}
	switch strings.ToLower(in.SortOrder) {
	case "", "desc":
	case "asc":
		f.Desc = false
	default:
		fe.add("order must be asc or desc")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}
	return s.r.List(ctx, f)
}

func (s *taskService) Update(ctx context.Context, taskID uuid.UUID, in TaskInput) (*model.Task, error) {
	t, err := s.r.Get(ctx, in.UserID, taskID)
	if err != nil {
		return nil, mapNotFound(err, "task")
	}
	if err := s.apply(t, in); err != nil {
		return nil, err
	}
	if err := s.r.Update(ctx, t); err != nil {
		return nil, mapNotFound(err, "task")
	}
	return t, nil
}

func (s *taskService) Delete(ctx context.Context, userID uuid.UUID, taskID uuid.UUID) error {
	if err := s.r.Delete(ctx, userID, taskID); err != nil {
		return mapNotFound(err, "task")
	}
	s.log.Sugar().Infow("task deleted", "user_id", userID, "task_id", taskID)
	return nil
}

type TaskStats struct {
	Total      int64 `json:"total"`
	Todo       int64 `json:"todo"`
	InProgress int64 `json:"in-progress"`
	Completed  int64 `json:"completed"`
}

func (s *taskService) Stats(ctx context.Context, userID uuid.UUID) (*TaskStats, error) {
	counts, err := s.r.CountByStatus(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := &TaskStats{
		Todo:       counts[model.TaskTodo],
		InProgress: counts[model.TaskInProgress],
		Completed:  counts[model.TaskCompleted],
	}
	out.Total = out.Todo + out.InProgress + out.Completed
	return out, nil
}
