package service

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// civilDay returns the calendar day of t in loc as midnight UTC, the form
// hour entry dates are stored in.
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDay accepts "2006-01-02" or an RFC 3339 timestamp, which is read in loc.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(dayLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", s)
	}
	return civilDay(t, loc), nil
}

type Period string

const (
	PeriodAll   Period = "all"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// since returns the first calendar day covered by the period, nil for "all".
func (p Period) since(now time.Time, loc *time.Location) (*time.Time, error) {
	local := now.In(loc)
	var start time.Time
	switch p {
	case PeriodAll, "":
		return nil, nil
	case PeriodWeek:
		start = local.Add(-7 * 24 * time.Hour)
	case PeriodMonth:
		start = time.Date(local.Year(), local.Month()-1, local.Day(), 0, 0, 0, 0, loc)
	case PeriodYear:
		start = time.Date(local.Year()-1, local.Month(), local.Day(), 0, 0, 0, 0, loc)
	default:
		return nil, invalid("period must be one of: all, week, month, year")
	}
	day := civilDay(start, loc)
	// entry dates sit at midnight, so a week cut-off inside a day excludes that day
	if p == PeriodWeek {
		y, m, d := start.Date()
		if start.After(time.Date(y, m, d, 0, 0, 0, 0, loc)) {
			day = day.AddDate(0, 0, 1)
		}
	}
	return &day, nil
}
