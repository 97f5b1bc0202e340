package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"github.com/taskflow-io/hourtrack/internal/pkg/utils"
)

// hourValidator holds the per-field rules of an hour entry. The daily cap
// needs the stored entries and runs inside the write transaction (dailyCap).
type hourValidator struct {
	loc *time.Location
	now func() time.Time
}

func (v hourValidator) checkHours(h float64, fe *fieldErrors) {
	switch {
	case h < model.MinEntryHours:
		fe.add("Hours must be at least 0.1")
	case h > model.MaxEntryHours:
		fe.add("Hours cannot exceed 24 per day")
	}
	if !utils.HasAtMostDecimals(h, 2) {
		fe.add("Hours can have at most 2 decimal places")
	}
}

func (v hourValidator) checkDescription(d string, fe *fieldErrors) {
	if utf8.RuneCountInString(d) > model.MaxEntryDescription {
		fe.add("Description cannot exceed 300 characters")
	}
}

// checkDate parses raw into a calendar day and rejects days after today.
func (v hourValidator) checkDate(raw string, fe *fieldErrors) time.Time {
	if strings.TrimSpace(raw) == "" {
		fe.add("Date is required")
		return time.Time{}
	}
	day, err := parseDay(raw, v.loc)
	if err != nil {
		fe.add(err.Error())
		return time.Time{}
	}
	if day.After(civilDay(v.now(), v.loc)) {
		fe.add("Date cannot be in the future")
	}
	return day
}

// dailyCap rejects an entry that would push its user's day above 24 hours.
func dailyCap(e *model.HourEntry, logged float64) error {
	if utils.Hundredths(logged)+utils.Hundredths(e.Hours) <= utils.Hundredths(model.DailyHoursCap) {
		return nil
	}
	available := model.DailyHoursCap - logged
	if available < 0 {
		available = 0
	}
	return invalid(fmt.Sprintf("Cannot log %s hours. Only %.1f hours available for %s",
		strconv.FormatFloat(e.Hours, 'f', -1, 64), available, e.Day().Format("Mon Jan 02 2006")))
}
