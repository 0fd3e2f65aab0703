package heatmap

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// WeekStart is the first weekday of a grid column or row
type WeekStart string

const (
	Monday WeekStart = "monday"
	Sunday WeekStart = "sunday"
)

// ParseWeekStart accepts monday or sunday in any case.
func ParseWeekStart(s string) (WeekStart, error) {
	switch WeekStart(strings.ToLower(strings.TrimSpace(s))) {
	case Monday:
		return Monday, nil
	case Sunday:
		return Sunday, nil
	}
	return "", fmt.Errorf("unknown week_start_day %q (want monday or sunday)", s)
}

// WeekdayOffset is the position of t within its week, 0-6.
func WeekdayOffset(t time.Time, ws WeekStart) int {
	wd := int(t.Weekday())
	if ws == Sunday {
		return wd
	}
	return (wd + 6) % 7
}

// IsWeekStart reports whether t falls on the first day of a week.
func IsWeekStart(t time.Time, ws WeekStart) bool {
	return WeekdayOffset(t, ws) == 0
}

// DayLabels returns the seven weekday abbreviations in row order.
func DayLabels(ws WeekStart) []string {
	if ws == Sunday {
		return []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	}
	return []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
}

// ISOWeek returns the ISO-8601 week number of t. The date is moved to the
// Thursday of its own week, and that Thursday is measured against week 1 of
// its year, the week holding January 4th.
func ISOWeek(t time.Time) int {
	d := civil(t)

	idx := (int(d.Weekday()) + 6) % 7
	thursday := d.AddDate(0, 0, 3-idx)

	jan4 := time.Date(thursday.Year(), time.January, 4, 0, 0, 0, 0, time.UTC)
	jan4Idx := (int(jan4.Weekday()) + 6) % 7

	days := thursday.Sub(jan4).Hours() / 24
	return 1 + int(math.Round((days-3+float64(jan4Idx))/7))
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// civil drops the clock and zone so day arithmetic never crosses DST.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats a day as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
