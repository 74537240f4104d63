package utils

import (
	"fmt"
	"time"
)

// AddMonths advances t by whole calendar months. Unlike time.AddDate, the day
// of month is clamped instead of normalized, so Jan 31 + 1 month is the last
// day of February rather than March 2/3.
func AddMonths(t time.Time, months int) time.Time {
	h, min, sec := t.Clock()
	anchor := time.Date(t.Year(), t.Month()+time.Month(months), 1, h, min, sec, t.Nanosecond(), t.Location())
	day := t.Day()
	if last := daysInMonth(anchor.Year(), anchor.Month()); day > last {
		day = last
	}
	return time.Date(anchor.Year(), anchor.Month(), day, h, min, sec, t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the following month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatRemaining renders a countdown like "2h 30m" or "45m". Negative
// durations render as "0m".
func FormatRemaining(d time.Duration) string {
	mins := int(d.Minutes())
	if mins < 0 {
		mins = 0
	}
	if h := mins / 60; h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins%60)
	}
	return fmt.Sprintf("%dm", mins)
}

// Overlaps reports whether [aFrom, aTo] and [bFrom, bTo] share at least one
// day. Ranges are inclusive on both ends.
func Overlaps(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !aFrom.After(bTo) && !aTo.Before(bFrom)
}
