package models

import "time"

// DateLayout is the calendar day key used by daily averages
const DateLayout = "2006-01-02"

// HourStart truncates t to the top of its UTC hour
func HourStart(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// DayStart returns UTC midnight of the day containing t
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// UnixMilli converts a millisecond timestamp back to a UTC time
func UnixMilli(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// IsHourAligned reports whether ms falls exactly on a UTC hour boundary
func IsHourAligned(ms int64) bool {
	return ms%time.Hour.Milliseconds() == 0
}
