package heatmap

import (
	"errors"
	"strings"
	"testing"
	"time"

	"habitmap/internal/habit"
	"habitmap/internal/heatmap"
	"habitmap/internal/render"
	"habitmap/internal/tui/messages"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

func fixedClock(date string) func() time.Time {
	t, _ := time.Parse(habit.DateLayout, date)
	return func() time.Time { return t }
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var testEntries = []habit.Entry{
	{Date: "2024-03-15", Value: 3, SourceID: "/vault/a.md", Label: "a"},
	{Date: "2024-03-15", Value: 7, SourceID: "/vault/b.md", Label: "b"},
	{Date: "2024-03-16", Value: 2, SourceID: "/vault/run.md", Label: "run"},
	{Date: "2024-03-20", Value: 0, SourceID: "/vault/rest.md", Label: "rest"},
}

func yearlyModel(t *testing.T, today string) Model {
	t.Helper()
	ds := habit.Aggregate(testEntries, habit.Sum)
	year := heatmap.YearGrid(2024, ds, heatmap.Monday, heatmap.DefaultScale())
	clock := fixedClock(today)
	m := New(render.Container{ID: "/vault/habits.md#0", Note: "/vault/habits.md", Line: 3}).WithClock(clock)
	m.SetFocused(true)
	m.SetResult(render.Result{
		Config:  heatmap.Config{ViewType: heatmap.Yearly},
		Dataset: ds,
		Year:    &year,
		Stats:   habit.Summarize(ds, clock()),
	})
	return m
}

func monthlyModel(t *testing.T, today string) Model {
	t.Helper()
	ds := habit.Aggregate(testEntries, habit.Sum)
	m := New(render.Container{ID: "c"}).WithClock(fixedClock(today))
	m.SetFocused(true)
	m.SetResult(render.Result{
		Config:  heatmap.Config{ViewType: heatmap.Monthly},
		Dataset: ds,
		Months:  heatmap.MonthGrids(ds, heatmap.AllMonths, time.Now(), heatmap.Monday, heatmap.DefaultScale()),
	})
	return m
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		m, _ = m.Update(key(k))
	}
	return m
}

func TestModel_InitialCursorIsToday(t *testing.T) {
	m := yearlyModel(t, "2024-03-16")
	if m.Cursor() != "2024-03-16" {
		t.Fatalf("expected cursor on today, got %q", m.Cursor())
	}
	p := m.Popup()
	if p == nil {
		t.Fatal("expected a popup on a data cell")
	}
	if p.Date != "2024-03-16" || p.Value != 2 || len(p.Entries) != 1 {
		t.Errorf("unexpected popup %+v", *p)
	}
}

func TestModel_InitialCursorFallsBackToLastData(t *testing.T) {
	m := yearlyModel(t, "2030-01-01")
	if m.Cursor() != "2024-03-20" {
		t.Errorf("expected cursor on the latest data cell, got %q", m.Cursor())
	}
}

func TestModel_PopupFollowsCursor(t *testing.T) {
	m := yearlyModel(t, "2024-03-16")

	// a week to the right has no data: the popup closes
	m = press(m, "l")
	if m.Cursor() != "2024-03-23" {
		t.Fatalf("expected 2024-03-23, got %s", m.Cursor())
	}
	if m.Popup() != nil {
		t.Error("expected no popup on an empty cell")
	}

	m = press(m, "h", "k")
	if m.Cursor() != "2024-03-15" {
		t.Fatalf("expected 2024-03-15, got %s", m.Cursor())
	}
	p := m.Popup()
	if p == nil {
		t.Fatal("expected popup")
	}
	if got := p.Lines(); !cmp.Equal(got, []string{"2024-03-15", "Value: 10.00", "2 entries", "  a  3", "  b  7"}) {
		t.Errorf("unexpected popup lines: %s", cmp.Diff([]string{"2024-03-15", "Value: 10.00", "2 entries", "  a  3", "  b  7"}, got))
	}
}

func TestModel_ZeroDataCellIsInteractive(t *testing.T) {
	m := yearlyModel(t, "2024-03-20")
	p := m.Popup()
	if p == nil {
		t.Fatal("expected a popup on a zero-data cell")
	}
	if p.Value != 0 || p.CountText() != "1 entry" {
		t.Errorf("unexpected popup %+v", *p)
	}
}

func TestModel_StaysInsideGrid(t *testing.T) {
	m := yearlyModel(t, "2024-01-01")
	m = press(m, "k", "h")
	if m.Cursor() != "2024-01-01" {
		t.Errorf("expected the cursor to stay on Jan 1, got %s", m.Cursor())
	}
	m = press(m, "G")
	if m.Cursor() != "2024-12-31" {
		t.Errorf("expected Dec 31, got %s", m.Cursor())
	}
}

func TestModel_DataJumps(t *testing.T) {
	m := yearlyModel(t, "2024-01-01")
	m = press(m, "n")
	if m.Cursor() != "2024-03-15" {
		t.Fatalf("expected first data cell, got %s", m.Cursor())
	}
	m = press(m, "n", "n", "n")
	if m.Cursor() != "2024-03-20" {
		t.Errorf("expected to stop on the last data cell, got %s", m.Cursor())
	}
	m = press(m, "p")
	if m.Cursor() != "2024-03-16" {
		t.Errorf("expected 2024-03-16, got %s", m.Cursor())
	}
}

func TestModel_Click(t *testing.T) {
	tests := []struct {
		name  string
		today string
		want  tea.Msg
	}{
		{"single note opens it", "2024-03-16", messages.OpenNoteMsg{Path: "/vault/run.md"}},
		{"several notes search", "2024-03-15", messages.SearchMsg{Query: `path:"/vault/a.md" OR path:"/vault/b.md"`}},
		{"zero value still opens", "2024-03-20", messages.OpenNoteMsg{Path: "/vault/rest.md"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := yearlyModel(t, tt.today)
			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			if cmd == nil {
				t.Fatal("expected a command")
			}
			if got := cmd(); got != tt.want {
				t.Errorf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestModel_ClickEmptyCellDoesNothing(t *testing.T) {
	m := yearlyModel(t, "2024-06-01")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("expected no command for a cell without data")
	}
}

func TestModel_UnfocusedIgnoresKeys(t *testing.T) {
	m := yearlyModel(t, "2024-03-16")
	m.SetFocused(false)
	m = press(m, "l")
	if m.Cursor() != "2024-03-16" {
		t.Errorf("expected cursor unchanged, got %s", m.Cursor())
	}
}

func TestModel_MonthlyNavigation(t *testing.T) {
	m := monthlyModel(t, "2024-03-16")
	m = press(m, "l")
	if m.Cursor() != "2024-03-17" {
		t.Errorf("expected a day step, got %s", m.Cursor())
	}
	m = press(m, "j")
	if m.Cursor() != "2024-03-24" {
		t.Errorf("expected a week step, got %s", m.Cursor())
	}
	// April is not shown
	m = press(m, "L")
	if m.Cursor() != "2024-03-24" {
		t.Errorf("expected cursor to stay in March, got %s", m.Cursor())
	}
}

func TestModel_CursorSurvivesRefresh(t *testing.T) {
	m := yearlyModel(t, "2024-03-16")
	m = press(m, "k")

	ds := habit.Aggregate(testEntries[:2], habit.Sum)
	year := heatmap.YearGrid(2024, ds, heatmap.Monday, heatmap.DefaultScale())
	m.SetResult(render.Result{Dataset: ds, Year: &year})
	if m.Cursor() != "2024-03-15" {
		t.Errorf("expected cursor kept, got %s", m.Cursor())
	}
	if m.Popup() == nil || m.Popup().Value != 10 {
		t.Errorf("expected the popup rebuilt from the new record")
	}
}

func TestRender_Error(t *testing.T) {
	out := Render(render.Result{Err: errors.New("line 1: missing colon")}, "", 0)
	if !strings.Contains(out, "Heatmap error: line 1: missing colon") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestRender_YearlyShape(t *testing.T) {
	m := yearlyModel(t, "2024-03-16")
	out := Render(m.Result(), "", 0)
	lines := strings.Split(out, "\n")
	// month header, seven day rows, stats
	if len(lines) != 9 {
		t.Fatalf("expected 9 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "Jan") || !strings.Contains(lines[0], "Dec") {
		t.Errorf("expected month labels, got %q", lines[0])
	}
	if !strings.Contains(out, "2 days") {
		t.Errorf("expected stats footer, got %q", lines[8])
	}
}

func TestRender_MonthlyWeekLabels(t *testing.T) {
	m := monthlyModel(t, "2024-03-16")
	out := Render(m.Result(), "", 0)
	for _, want := range []string{"March 2024", "W09", "W13"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHeatColor_Ramp(t *testing.T) {
	if HeatColor(heatmap.DefaultFloor) == HeatColor(1) {
		t.Error("expected distinct colors across the ramp")
	}
	if HeatColor(2) != HeatColor(1) {
		t.Error("expected intensities above 1 to clamp")
	}
}
