package heatmap

import (
	"time"

	"habitmap/internal/habit"
)

// CellState classifies a grid cell for styling and interaction
type CellState int

const (
	Padding   CellState = iota // outside the date range
	EmptyData                  // no record for the date
	ZeroData                   // a record whose aggregate is exactly 0
	HasData
)

func (s CellState) String() string {
	switch s {
	case Padding:
		return "padding"
	case EmptyData:
		return "empty-data"
	case ZeroData:
		return "zero-data"
	case HasData:
		return "has-data"
	}
	return "unknown"
}

// Cell is one day square of a grid
type Cell struct {
	Date      time.Time // zero for padding
	State     CellState
	Value     float64
	Intensity float64 // 0 unless State is HasData
	Record    *habit.DayRecord
	Column    int
	Row       int
}

// Key returns the YYYY-MM-DD key, or "" for padding.
func (c Cell) Key() string {
	if c.State == Padding {
		return ""
	}
	return DateKey(c.Date)
}

// Interactive reports whether hovering or clicking the cell does anything.
func (c Cell) Interactive() bool {
	return c.Record != nil && (c.State == HasData || c.State == ZeroData)
}

func newCell(day time.Time, ds habit.Dataset, scale Scale, col, row int) Cell {
	cell := Cell{Date: day, State: EmptyData, Column: col, Row: row}
	rec, ok := ds.Get(DateKey(day))
	if !ok || rec == nil {
		return cell
	}
	cell.Record = rec
	cell.Value = rec.AggregatedValue
	if rec.AggregatedValue == 0 {
		cell.State = ZeroData
		return cell
	}
	cell.State = HasData
	cell.Intensity = scale.Intensity(rec.AggregatedValue, ds.Max)
	return cell
}

// Week is one column of the yearly grid, top to bottom
type Week struct {
	Cells []Cell
}

// Start returns the first non-padding day of the column.
func (w Week) Start() time.Time {
	for _, c := range w.Cells {
		if c.State != Padding {
			return c.Date
		}
	}
	return time.Time{}
}

// YearLayout is the contribution grid of one calendar year
type YearLayout struct {
	Year        int
	WeekStart   WeekStart
	Weeks       []Week
	MonthLabels []string // one per column, "" keeps the column unlabeled
	DayLabels   []string // seven rows, text only on rows 0, 3 and 6
	Max         float64
	Leading     int // padding cells before Jan 1
}

// Cells returns every cell in column-major order.
func (l YearLayout) Cells() []Cell {
	var out []Cell
	for _, w := range l.Weeks {
		out = append(out, w.Cells...)
	}
	return out
}

// Find returns the cell for a date key.
func (l YearLayout) Find(key string) (Cell, bool) {
	for _, w := range l.Weeks {
		for _, c := range w.Cells {
			if c.State != Padding && DateKey(c.Date) == key {
				return c, true
			}
		}
	}
	return Cell{}, false
}

// YearGrid lays out January 1 to December 31 of year as week columns.
func YearGrid(year int, ds habit.Dataset, ws WeekStart, scale Scale) YearLayout {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	dec31 := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	layout := YearLayout{
		Year:      year,
		WeekStart: ws,
		DayLabels: sparseDayLabels(ws),
		Max:       scale.Normalizer(ds.Max),
		Leading:   WeekdayOffset(jan1, ws),
	}

	current := Week{}
	for i := 0; i < layout.Leading; i++ {
		current.Cells = append(current.Cells, Cell{State: Padding, Row: i})
	}

	col := 0
	for day := jan1; !day.After(dec31); day = day.AddDate(0, 0, 1) {
		if IsWeekStart(day, ws) && !day.Equal(jan1) {
			layout.Weeks = append(layout.Weeks, current)
			current = Week{}
			col++
		}
		current.Cells = append(current.Cells, newCell(day, ds, scale, col, WeekdayOffset(day, ws)))
	}
	layout.Weeks = append(layout.Weeks, current)

	layout.MonthLabels = monthLabels(layout.Weeks)
	return layout
}

// monthLabels folds over the columns left to right carrying the last
// labeled month. A column is labeled when it holds the 1st of a month later
// than the last label.
func monthLabels(weeks []Week) []string {
	labels := make([]string, len(weeks))
	last := time.Month(0)

	for i, w := range weeks {
		start := w.Start()
		if start.IsZero() {
			continue
		}

		var month time.Month
		switch {
		case i == 0:
			month = time.January
		case start.Day() == 1:
			month = start.Month()
		default:
			weekEnd := start.AddDate(0, 0, 6)
			if weekEnd.Day() <= 7 && weekEnd.Month() != start.Month() {
				month = weekEnd.Month()
			}
		}

		if month > last {
			labels[i] = month.String()[:3]
			last = month
		}
	}
	return labels
}

func sparseDayLabels(ws WeekStart) []string {
	all := DayLabels(ws)
	labels := make([]string, 7)
	for _, row := range []int{0, 3, 6} {
		labels[row] = all[row]
	}
	return labels
}
