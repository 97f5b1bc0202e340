package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow-io/hourtrack/internal/modules/model"
	"gorm.io/datatypes"
)

func TestDailyCap(t *testing.T) {
	day := datatypes.Date(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name   string
		logged float64
		hours  float64
		msg    string
	}{
		{name: "empty day", logged: 0, hours: 24},
		{name: "exactly the remaining hours", logged: 20, hours: 4},
		{name: "remaining with cents", logged: 23.99, hours: 0.01},
		{name: "one hundredth over", logged: 20, hours: 4.01, msg: "Cannot log 4.01 hours. Only 4.0 hours available for Fri Mar 15 2024"},
		{name: "day already full", logged: 24, hours: 0.1, msg: "Cannot log 0.1 hours. Only 0.0 hours available for Fri Mar 15 2024"},
		{name: "float sums stay exact", logged: 0.1 + 0.2 + 23.7, hours: 0, msg: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dailyCap(&model.HourEntry{Hours: tt.hours, Date: day}, tt.logged)
			if tt.msg == "" {
				assert.NoError(t, err)
				return
			}
			var se *Error
			require.True(t, errors.As(err, &se))
			assert.ErrorIs(t, err, ErrValidation)
			assert.Equal(t, []string{tt.msg}, se.Fields)
		})
	}
}

func TestHourValidator_CheckDate(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	// 23:30 UTC on the 15th is already the 16th in Paris
	now := time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		loc  *time.Location
		raw  string
		want time.Time
		errs []string
	}{
		{name: "today", loc: time.UTC, raw: "2024-03-15", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{name: "tomorrow", loc: time.UTC, raw: "2024-03-16", errs: []string{"Date cannot be in the future"}},
		{name: "tomorrow in UTC is today in Paris", loc: paris, raw: "2024-03-16", want: time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)},
		{name: "timestamp resolved in zone", loc: paris, raw: "2024-03-10T23:30:00Z", want: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
		{name: "missing", loc: time.UTC, raw: " ", errs: []string{"Date is required"}},
		{name: "garbage", loc: time.UTC, raw: "15/03/2024", errs: []string{`invalid date "15/03/2024", expected YYYY-MM-DD or RFC 3339`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := hourValidator{loc: tt.loc, now: func() time.Time { return now }}
			var fe fieldErrors
			got := v.checkDate(tt.raw, &fe)
			if tt.errs != nil {
				assert.Equal(t, tt.errs, []string(fe))
				return
			}
			assert.Empty(t, fe)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestHourValidator_CheckHours(t *testing.T) {
	v := hourValidator{loc: time.UTC, now: time.Now}
	tests := []struct {
		hours float64
		errs  int
	}{
		{0.1, 0}, {24, 0}, {7.25, 0}, {0.09, 1}, {24.01, 1}, {-1, 1}, {1.005, 1}, {0.001, 2},
	}
	for _, tt := range tests {
		var fe fieldErrors
		v.checkHours(tt.hours, &fe)
		assert.Len(t, fe, tt.errs, "hours %v", tt.hours)
	}
}

func TestPeriod_Since(t *testing.T) {
	now := time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		period Period
		want   *time.Time
		err    bool
	}{
		{period: PeriodAll},
		{period: ""},
		{period: PeriodWeek, want: ptr(time.Date(2024, 3, 25, 0, 0, 0, 0, time.UTC))},
		// Feb 31 normalizes to Mar 2
		{period: PeriodMonth, want: ptr(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))},
		{period: PeriodYear, want: ptr(time.Date(2023, 3, 31, 0, 0, 0, 0, time.UTC))},
		{period: "decade", err: true},
	}
	for _, tt := range tests {
		t.Run(string(tt.period), func(t *testing.T) {
			got, err := tt.period.since(now, time.UTC)
			if tt.err {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestPeriod_Since_WeekAtMidnight(t *testing.T) {
	now := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	got, err := PeriodWeek.since(now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC), *got)

	// 2024-03-15 14:30 in New York is 10:30 local, so 03-08 falls out
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	got, err = PeriodWeek.since(fixedNow, ny)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), *got)
}
