package heatmap

import (
	"fmt"
	"sort"
	"time"

	"habitmap/internal/habit"
)

// MonthRow is one week of a monthly card
type MonthRow struct {
	Week  int    // ISO week of the row's first column
	Label string // W01..W53
	Cells []Cell // always seven
}

// MonthLayout is a week-numbered pixel grid for one month
type MonthLayout struct {
	Year      int
	Month     time.Month
	WeekStart WeekStart
	Title     string   // full month name
	Header    []string // eight columns, the first above the week labels
	Rows      []MonthRow
	Leading   int
	Max       float64
}

// Key returns the YYYY-MM key of the month.
func (l MonthLayout) Key() string {
	return fmt.Sprintf("%04d-%02d", l.Year, int(l.Month))
}

// Cells returns every day cell row-major, padding included.
func (l MonthLayout) Cells() []Cell {
	var out []Cell
	for _, r := range l.Rows {
		out = append(out, r.Cells...)
	}
	return out
}

// MonthGrid lays out one month as rows of seven days behind a week-number
// column. Rows = ceil((offset + days) / 7).
func MonthGrid(year int, month time.Month, ds habit.Dataset, ws WeekStart, scale Scale) MonthLayout {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := DaysIn(year, month)
	offset := WeekdayOffset(first, ws)
	rows := (offset + days + 6) / 7

	layout := MonthLayout{
		Year:      year,
		Month:     month,
		WeekStart: ws,
		Title:     month.String(),
		Header:    monthHeader(ws),
		Leading:   offset,
		Max:       scale.Normalizer(ds.Max),
	}

	for r := 0; r < rows; r++ {
		// the notional date may fall in the previous month
		rowStart := first.AddDate(0, 0, r*7-offset)
		week := ISOWeek(rowStart)
		row := MonthRow{Week: week, Label: fmt.Sprintf("W%02d", week)}

		for c := 0; c < 7; c++ {
			dayIndex := r*7 + c - offset + 1
			if dayIndex < 1 || dayIndex > days {
				row.Cells = append(row.Cells, Cell{State: Padding, Column: c + 1, Row: r})
				continue
			}
			day := time.Date(year, month, dayIndex, 0, 0, 0, 0, time.UTC)
			row.Cells = append(row.Cells, newCell(day, ds, scale, c+1, r))
		}
		layout.Rows = append(layout.Rows, row)
	}
	return layout
}

func monthHeader(ws WeekStart) []string {
	first := "M"
	if ws == Sunday {
		first = "S"
	}
	return []string{"", first, "", "", "", "", "", "S"}
}

// Months returns the YYYY-MM keys a monthly view should show. With
// AllMonths that is every month holding a record, ascending; with
// CurrentMonth only the month of now.
func Months(ds habit.Dataset, scope MonthScope, now time.Time) []string {
	if scope == CurrentMonth {
		return []string{now.Format("2006-01")}
	}

	seen := make(map[string]bool)
	var keys []string
	for date := range ds.Days {
		if len(date) < 7 {
			continue
		}
		key := date[:7]
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// MonthGrids builds one layout per key returned by Months. Keys that do not
// parse as YYYY-MM are skipped.
func MonthGrids(ds habit.Dataset, scope MonthScope, now time.Time, ws WeekStart, scale Scale) []MonthLayout {
	var out []MonthLayout
	for _, key := range Months(ds, scope, now) {
		t, err := time.Parse("2006-01", key)
		if err != nil {
			continue
		}
		out = append(out, MonthGrid(t.Year(), t.Month(), ds, ws, scale))
	}
	return out
}
