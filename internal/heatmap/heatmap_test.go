package heatmap

import (
	"testing"
	"time"

	"habitmap/internal/habit"

	"github.com/google/go-cmp/cmp"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestISOWeek_Boundaries(t *testing.T) {
	tests := []struct {
		day  time.Time
		want int
	}{
		{date(2021, time.January, 1), 53},
		{date(2024, time.January, 1), 1},
		{date(2020, time.December, 31), 53},
		{date(2019, time.December, 30), 1},
		{date(2027, time.January, 3), 53},
		{date(2026, time.December, 31), 53},
		{date(2024, time.December, 30), 1},
	}
	for _, tt := range tests {
		if got := ISOWeek(tt.day); got != tt.want {
			t.Errorf("ISOWeek(%s): expected %d, got %d", DateKey(tt.day), tt.want, got)
		}
	}
}

func TestISOWeek_MatchesTimePackage(t *testing.T) {
	start := date(2015, time.January, 1)
	end := date(2035, time.December, 31)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		_, want := d.ISOWeek()
		if got := ISOWeek(d); got != want {
			t.Fatalf("ISOWeek(%s): expected %d, got %d", DateKey(d), want, got)
		}
	}
}

func TestISOWeek_IgnoresClockAndZone(t *testing.T) {
	loc := time.FixedZone("UTC-10", -10*3600)
	late := time.Date(2021, time.January, 3, 23, 30, 0, 0, loc)
	if got := ISOWeek(late); got != 53 {
		t.Errorf("expected 53 for the local date, got %d", got)
	}
}

func TestWeekdayOffset(t *testing.T) {
	sunday := date(2024, time.March, 17)
	if got := WeekdayOffset(sunday, Monday); got != 6 {
		t.Errorf("monday start: expected 6, got %d", got)
	}
	if got := WeekdayOffset(sunday, Sunday); got != 0 {
		t.Errorf("sunday start: expected 0, got %d", got)
	}
	monday := date(2024, time.March, 18)
	if got := WeekdayOffset(monday, Monday); got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
	if got := WeekdayOffset(monday, Sunday); got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestParseWeekStart(t *testing.T) {
	if ws, err := ParseWeekStart("SUNDAY"); err != nil || ws != Sunday {
		t.Errorf("expected sunday, got %q (%v)", ws, err)
	}
	if _, err := ParseWeekStart("tuesday"); err == nil {
		t.Error("expected error for tuesday")
	}
}

func TestDaysIn(t *testing.T) {
	if DaysIn(2024, time.February) != 29 || DaysIn(2023, time.February) != 28 || DaysIn(2024, time.December) != 31 {
		t.Error("unexpected month length")
	}
}

func daysInYear(year int) int {
	return int(date(year+1, time.January, 1).Sub(date(year, time.January, 1)).Hours() / 24)
}

func TestYearGrid_CellCounts(t *testing.T) {
	for year := 2020; year <= 2030; year++ {
		for _, ws := range []WeekStart{Monday, Sunday} {
			layout := YearGrid(year, habit.Aggregate(nil, habit.Sum), ws, DefaultScale())

			padding, days := 0, 0
			for _, c := range layout.Cells() {
				if c.State == Padding {
					padding++
				} else {
					days++
				}
			}
			if want := WeekdayOffset(date(year, time.January, 1), ws); padding != want {
				t.Errorf("%d/%s: expected %d padding cells, got %d", year, ws, want, padding)
			}
			if want := daysInYear(year); days != want {
				t.Errorf("%d/%s: expected %d days, got %d", year, ws, want, days)
			}
		}
	}
}

func TestYearGrid_ColumnsAlignRows(t *testing.T) {
	layout := YearGrid(2021, habit.Aggregate(nil, habit.Sum), Monday, DefaultScale())
	if layout.Leading != 4 {
		t.Fatalf("expected 4 leading cells for a Friday Jan 1, got %d", layout.Leading)
	}
	for col, w := range layout.Weeks {
		if len(w.Cells) > 7 {
			t.Fatalf("column %d has %d cells", col, len(w.Cells))
		}
		for i, c := range w.Cells {
			if c.Row != i {
				t.Errorf("column %d index %d: expected row %d, got %d", col, i, i, c.Row)
			}
			if c.State != Padding && c.Column != col {
				t.Errorf("%s: expected column %d, got %d", c.Key(), col, c.Column)
			}
		}
		if col > 0 && !IsWeekStart(w.Start(), Monday) {
			t.Errorf("column %d starts on %s", col, w.Start().Weekday())
		}
	}
}

func TestYearGrid_MonthLabels(t *testing.T) {
	want := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	for year := 2020; year <= 2030; year++ {
		for _, ws := range []WeekStart{Monday, Sunday} {
			layout := YearGrid(year, habit.Aggregate(nil, habit.Sum), ws, DefaultScale())
			if len(layout.MonthLabels) != len(layout.Weeks) {
				t.Fatalf("%d/%s: expected one label slot per column", year, ws)
			}

			var got []string
			for col, label := range layout.MonthLabels {
				if label == "" {
					continue
				}
				got = append(got, label)

				// the labeled column must contain the 1st of that month
				found := false
				for _, c := range layout.Weeks[col].Cells {
					if c.State != Padding && c.Date.Day() == 1 && c.Date.Month().String()[:3] == label {
						found = true
					}
				}
				if !found {
					t.Errorf("%d/%s: column %d labeled %s without its first day", year, ws, col, label)
				}
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("%d/%s labels mismatch (-want +got):\n%s", year, ws, diff)
			}
		}
	}
}

func TestYearGrid_DayLabels(t *testing.T) {
	got := YearGrid(2024, habit.Aggregate(nil, habit.Sum), Sunday, DefaultScale()).DayLabels
	want := []string{"Sun", "", "", "Wed", "", "", "Sat"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("day labels mismatch (-want +got):\n%s", diff)
	}
}

func TestYearGrid_SingleValue(t *testing.T) {
	ds := habit.Aggregate([]habit.Entry{{Date: "2024-03-15", Value: 5, SourceID: "/v/a.md"}}, habit.Sum)
	layout := YearGrid(2024, ds, Monday, DefaultScale())

	var withData []Cell
	for _, c := range layout.Cells() {
		if c.State == HasData {
			withData = append(withData, c)
		}
	}
	if len(withData) != 1 {
		t.Fatalf("expected exactly one cell with data, got %d", len(withData))
	}
	c := withData[0]
	if c.Key() != "2024-03-15" || c.Value != 5 {
		t.Errorf("expected 2024-03-15 = 5, got %s = %v", c.Key(), c.Value)
	}
	if layout.Max != 5 {
		t.Errorf("expected max 5, got %v", layout.Max)
	}
	if c.Intensity != 1 {
		t.Errorf("expected intensity 1, got %v", c.Intensity)
	}
	if !c.Interactive() {
		t.Error("expected data cell to be interactive")
	}
}

func TestYearGrid_CellStates(t *testing.T) {
	ds := habit.Aggregate([]habit.Entry{
		{Date: "2024-01-02", Value: 0},
		{Date: "2024-01-03", Value: 2},
	}, habit.Sum)
	layout := YearGrid(2024, ds, Sunday, DefaultScale())

	tests := []struct {
		key         string
		state       CellState
		interactive bool
	}{
		{"2024-01-01", EmptyData, false},
		{"2024-01-02", ZeroData, true},
		{"2024-01-03", HasData, true},
	}
	for _, tt := range tests {
		c, ok := layout.Find(tt.key)
		if !ok {
			t.Fatalf("cell %s not found", tt.key)
		}
		if c.State != tt.state {
			t.Errorf("%s: expected %s, got %s", tt.key, tt.state, c.State)
		}
		if c.Interactive() != tt.interactive {
			t.Errorf("%s: expected interactive=%v", tt.key, tt.interactive)
		}
	}

	first := layout.Weeks[0].Cells[0]
	if first.State != Padding || first.Interactive() || first.Key() != "" {
		t.Errorf("expected leading padding cell, got %+v", first)
	}
}

func TestMonthGrid_Rows(t *testing.T) {
	for _, ws := range []WeekStart{Monday, Sunday} {
		for year := 2023; year <= 2025; year++ {
			for m := time.January; m <= time.December; m++ {
				layout := MonthGrid(year, m, habit.Aggregate(nil, habit.Sum), ws, DefaultScale())
				first := date(year, m, 1)
				days := DaysIn(year, m)
				offset := WeekdayOffset(first, ws)

				if want := (offset + days + 6) / 7; len(layout.Rows) != want {
					t.Errorf("%s/%s: expected %d rows, got %d", layout.Key(), ws, want, len(layout.Rows))
				}

				next := first
				for i, c := range layout.Cells() {
					if c.State == Padding {
						if c.Record != nil || c.Value != 0 {
							t.Errorf("%s: padding cell %d carries a value", layout.Key(), i)
						}
						continue
					}
					if !c.Date.Equal(next) {
						t.Fatalf("%s/%s: expected %s at cell %d, got %s", layout.Key(), ws, DateKey(next), i, DateKey(c.Date))
					}
					next = next.AddDate(0, 0, 1)
				}
				if next.Month() == m {
					t.Errorf("%s: grid stopped at %s", layout.Key(), DateKey(next))
				}
				if layout.Leading != offset {
					t.Errorf("%s: expected %d leading, got %d", layout.Key(), offset, layout.Leading)
				}
			}
		}
	}
}

func TestMonthGrid_WeekLabels(t *testing.T) {
	march := MonthGrid(2024, time.March, habit.Aggregate(nil, habit.Sum), Monday, DefaultScale())
	var labels []string
	for _, r := range march.Rows {
		labels = append(labels, r.Label)
	}
	want := []string{"W09", "W10", "W11", "W12", "W13"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}

	jan := MonthGrid(2021, time.January, habit.Aggregate(nil, habit.Sum), Monday, DefaultScale())
	if jan.Rows[0].Label != "W53" {
		t.Errorf("expected row starting in December 2020 to be W53, got %s", jan.Rows[0].Label)
	}
}

func TestMonthGrid_Header(t *testing.T) {
	mon := MonthGrid(2024, time.May, habit.Aggregate(nil, habit.Sum), Monday, DefaultScale())
	if len(mon.Header) != 8 || mon.Header[1] != "M" || mon.Header[7] != "S" {
		t.Errorf("unexpected monday header %q", mon.Header)
	}
	sun := MonthGrid(2024, time.May, habit.Aggregate(nil, habit.Sum), Sunday, DefaultScale())
	if sun.Header[1] != "S" {
		t.Errorf("unexpected sunday header %q", sun.Header)
	}
	if mon.Title != "May" {
		t.Errorf("expected title May, got %q", mon.Title)
	}
}

func TestMonths(t *testing.T) {
	ds := habit.Aggregate([]habit.Entry{
		{Date: "2024-03-02", Value: 1},
		{Date: "2023-12-31", Value: 1},
		{Date: "2024-03-20", Value: 1},
	}, habit.Sum)

	if diff := cmp.Diff([]string{"2023-12", "2024-03"}, Months(ds, AllMonths, time.Now())); diff != "" {
		t.Errorf("months mismatch (-want +got):\n%s", diff)
	}
	now := date(2024, time.July, 4)
	if diff := cmp.Diff([]string{"2024-07"}, Months(ds, CurrentMonth, now)); diff != "" {
		t.Errorf("current month mismatch (-want +got):\n%s", diff)
	}

	grids := MonthGrids(ds, AllMonths, now, Monday, DefaultScale())
	if len(grids) != 2 || grids[0].Key() != "2023-12" || grids[1].Key() != "2024-03" {
		t.Errorf("unexpected grids %v", len(grids))
	}
}

func TestScale_Intensity(t *testing.T) {
	s := DefaultScale()

	if got := s.Intensity(10, 10); got != 1 {
		t.Errorf("expected 1 at max, got %v", got)
	}
	if got := s.Intensity(0.01, 10); got != DefaultFloor {
		t.Errorf("expected floor, got %v", got)
	}
	if got := s.Intensity(50, 10); got != 1 {
		t.Errorf("expected clamp to 1, got %v", got)
	}

	prev := 0.0
	for v := 0.0; v <= 12; v += 0.25 {
		got := s.Intensity(v, 10)
		if got < DefaultFloor || got > 1 {
			t.Fatalf("intensity %v out of range for %v", got, v)
		}
		if got < prev {
			t.Fatalf("intensity decreased at %v: %v < %v", v, got, prev)
		}
		prev = got
	}
}

func TestScale_Normalizer(t *testing.T) {
	tests := []struct {
		name  string
		scale Scale
		max   float64
		want  float64
	}{
		{"dataset", DefaultScale(), 8, 8},
		{"below one", DefaultScale(), 0.2, 1},
		{"fixed", Scale{Max: 20}, 8, 20},
	}
	for _, tt := range tests {
		if got := tt.scale.Normalizer(tt.max); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestScale_MinOffset(t *testing.T) {
	s := Scale{Floor: 0.2, Min: 2, Max: 12}
	if got := s.Intensity(7, 3); got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}
	if got := s.Intensity(1, 3); got != 0.2 {
		t.Errorf("expected floor 0.2, got %v", got)
	}
}
