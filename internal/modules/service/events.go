package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/pkg/utils"
)

type HourEventType string

const (
	HourEntryCreated HourEventType = "hour_entry.created"
	HourEntryUpdated HourEventType = "hour_entry.updated"
	HourEntryDeleted HourEventType = "hour_entry.deleted"
)

// HourEvent is published after an hour entry change has been committed.
type HourEvent struct {
	Type              HourEventType `json:"type"`
	UserID            uuid.UUID     `json:"user_id"`
	ProjectID         uuid.UUID     `json:"project_id"`
	EntryID           uuid.UUID     `json:"entry_id"`
	Hours             float64       `json:"hours"`
	Delta             float64       `json:"delta"`
	ProjectTotalHours *float64      `json:"project_total_hours,omitempty"`
	Date              string        `json:"date"`
	OccurredAt        time.Time     `json:"occurred_at"`
}

func newHourEvent(t HourEventType, e *model.HourEntry, delta float64, p *model.Project) HourEvent {
	ev := HourEvent{
		Type:      t,
		UserID:    e.UserID,
		ProjectID: e.ProjectID,
		EntryID:   e.ID,
		Hours:     e.Hours,
		Delta:     utils.Round(delta, 2),
		Date:      e.Day().Format(dayLayout),
	}
	if p != nil {
		total := p.TotalHours
		ev.ProjectTotalHours = &total
	}
	return ev
}
