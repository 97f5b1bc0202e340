package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index:ix_task_user_status,priority:1;index:ix_task_user_created,priority:1" json:"user_id"`
	Title       string       `gorm:"type:varchar(100);not null" json:"title"`
	Description string       `gorm:"type:varchar(500);not null;default:''" json:"description"`
	Status      TaskStatus   `gorm:"type:text;not null;default:'todo';check:status IN ('todo','in-progress','completed');index:ix_task_user_status,priority:2" json:"status"`
	Priority    TaskPriority `gorm:"type:text;not null;default:'medium';check:priority IN ('low','medium','high')" json:"priority"`
	DueDate     *time.Time   `json:"due_date"`
	CompletedAt *time.Time   `json:"completed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:ix_task_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Task <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// SetStatus mirrors Project.SetStatus for the completed state.
func (t *Task) SetStatus(s TaskStatus, now time.Time) {
	if t.Status == s {
		return
	}
	t.Status = s
	if s == TaskCompleted {
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
}
