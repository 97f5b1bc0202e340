package model

import (
	"math"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectAbandoned ProjectStatus = "abandoned"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectAbandoned:
		return true
	}
	return false
}

const (
	DefaultTargetHours = 100
	MinTargetHours     = 1
	MaxTargetHours     = 10000
)

type Project struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID     `gorm:"type:uuid;not null;index:ix_project_user_status,priority:1;index:ix_project_user_created,priority:1" json:"user_id"`
	Name        string        `gorm:"type:varchar(100);not null" json:"name"`
	Description string        `gorm:"type:varchar(500);not null;default:''" json:"description"`
	TargetHours float64       `gorm:"type:numeric(10,2);not null;default:100" json:"target_hours"`
	TotalHours  float64       `gorm:"type:numeric(12,2);not null;default:0;check:total_hours >= 0" json:"total_hours"`
	Status      ProjectStatus `gorm:"type:text;not null;default:'active';check:status IN ('active','completed','abandoned');index:ix_project_user_status,priority:2" json:"status"`
	CompletedAt *time.Time    `json:"completed_at"`

	CreatedAt time.Time `gorm:"autoCreateTime;index:ix_project_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Project <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (Project) TableName() string { return "projects" }

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProgressPercentage is totalHours/targetHours as a whole percentage capped at 100.
func (p Project) ProgressPercentage() int {
	if p.TargetHours == 0 {
		return 0
	}
	return int(math.Min(math.Round(p.TotalHours/p.TargetHours*100), 100))
}

func (p Project) IsTargetReached() bool {
	return p.TotalHours >= p.TargetHours
}

// SetStatus moves the project to s and keeps CompletedAt in step with it.
// Setting the current status changes nothing.
func (p *Project) SetStatus(s ProjectStatus, now time.Time) {
	if p.Status == s {
		return
	}
	p.Status = s
	if s == ProjectCompleted {
		p.CompletedAt = &now
	} else {
		p.CompletedAt = nil
	}
}

func (p Project) MarshalJSON() ([]byte, error) {
	type project Project
	return sonic.Marshal(struct {
		project
		ProgressPercentage int  `json:"progress_percentage"`
		IsTargetReached    bool `json:"is_target_reached"`
	}{
		project:            project(p),
		ProgressPercentage: p.ProgressPercentage(),
		IsTargetReached:    p.IsTargetReached(),
	})
}

// ProjectSummary is the slice of a project returned next to hour-log results.
type ProjectSummary struct {
	ID                 uuid.UUID     `json:"id"`
	Name               string        `json:"name"`
	Status             ProjectStatus `json:"status"`
	TargetHours        float64       `json:"target_hours"`
	TotalHours         float64       `json:"total_hours"`
	ProgressPercentage int           `json:"progress_percentage"`
	IsTargetReached    bool          `json:"is_target_reached"`
}

func (p Project) Summary() ProjectSummary {
	return ProjectSummary{
		ID:                 p.ID,
		Name:               p.Name,
		Status:             p.Status,
		TargetHours:        p.TargetHours,
		TotalHours:         p.TotalHours,
		ProgressPercentage: p.ProgressPercentage(),
		IsTargetReached:    p.IsTargetReached(),
	}
}
