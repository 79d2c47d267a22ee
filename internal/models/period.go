package models

import (
	"errors"
	"time"
)

// ErrInvalidPeriod is returned for history periods other than day, week, month and all
var ErrInvalidPeriod = errors.New("invalid period")

// Period selects how far back a history query reaches
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// ParsePeriod validates a period string
func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodAll:
		return p, nil
	default:
		return "", ErrInvalidPeriod
	}
}

// Since returns the start of the window ending at now.
// PeriodAll returns the zero time, meaning no lower bound.
func (p Period) Since(now time.Time) time.Time {
	now = now.UTC()
	switch p {
	case PeriodDay:
		return now.Add(-24 * time.Hour)
	case PeriodWeek:
		return now.AddDate(0, 0, -7)
	case PeriodMonth:
		return now.AddDate(0, -1, 0)
	default:
		return time.Time{}
	}
}

// UsesDailyAverages reports whether the combined history route serves daily
// averages (month, all) rather than hourly snapshots (day, week) for this period
func (p Period) UsesDailyAverages() bool {
	return p == PeriodMonth || p == PeriodAll
}
