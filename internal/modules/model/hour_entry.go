package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	MinEntryHours       = 0.1
	MaxEntryHours       = 24.0
	DailyHoursCap       = 24.0
	MaxEntryDescription = 300
)

type HourEntry struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:ix_hour_user_project,priority:1;index:ix_hour_user_date,priority:1" json:"user_id"`
	ProjectID   uuid.UUID      `gorm:"type:uuid;not null;index:ix_hour_user_project,priority:2;index:ix_hour_project_date,priority:1" json:"project_id"`
	Hours       float64        `gorm:"type:numeric(5,2);not null;check:hours > 0 AND hours <= 24" json:"hours"`
	Description string         `gorm:"type:varchar(300);not null;default:''" json:"description"`
	Date        datatypes.Date `gorm:"not null;index:ix_hour_user_date,priority:2,sort:desc;index:ix_hour_project_date,priority:2,sort:desc" swaggertype:"string" format:"date" json:"date"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// HourEntry <-> Project
	Project *Project `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE;" json:"project,omitempty"`

	// HourEntry <-> User
	User *User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;" json:"-"`
}

func (HourEntry) TableName() string { return "hour_entries" }

func (e *HourEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Day returns the calendar day of the entry as midnight UTC.
func (e HourEntry) Day() time.Time {
	return time.Time(e.Date)
}
