package heatmap

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"habitmap/internal/habit"
	"habitmap/internal/heatmap"
	"habitmap/internal/render"
	"habitmap/internal/tui/messages"
	"habitmap/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
)

// Model is the interactive view of one mounted heatmap container. The cursor
// plays the role of the mouse: resting on a data cell shows its popup and
// enter opens what the cell links to.
type Model struct {
	container render.Container
	result    render.Result
	loaded    bool
	cells     map[string]heatmap.Cell // non-padding cells by date key
	keys      []string                // chronological
	cursor    string
	popup     *Popup
	focused   bool
	width     int
	now       func() time.Time
}

// New creates the view for a container. It shows a placeholder until the
// first result arrives.
func New(c render.Container) Model {
	return Model{
		container: c,
		cells:     make(map[string]heatmap.Cell),
		now:       time.Now,
	}
}

// WithClock sets the clock used to place the cursor on today.
func (m Model) WithClock(now func() time.Time) Model {
	m.now = now
	return m
}

func (m Model) ID() string {
	return m.container.ID
}

func (m Model) Container() render.Container {
	return m.container
}

func (m Model) Result() render.Result {
	return m.result
}

// Loaded reports whether a result has been received.
func (m Model) Loaded() bool {
	return m.loaded
}

// Cursor returns the date key under the cursor, "" when there is no grid.
func (m Model) Cursor() string {
	return m.cursor
}

// Popup returns the open popup, nil when the cursor is not on a data cell.
func (m Model) Popup() *Popup {
	return m.popup
}

// SetContainer updates the container after its block moved or changed.
func (m *Model) SetContainer(c render.Container) {
	m.container = c
}

func (m *Model) SetFocused(focused bool) {
	m.focused = focused
}

func (m *Model) SetWidth(width int) {
	m.width = width
}

// SetResult replaces the drawn result. The cursor stays on its date when the
// new grid still has it.
func (m *Model) SetResult(res render.Result) {
	m.result = res
	m.loaded = true
	m.cells = make(map[string]heatmap.Cell)
	m.keys = nil

	var all []heatmap.Cell
	if res.Year != nil {
		all = res.Year.Cells()
	}
	for _, month := range res.Months {
		all = append(all, month.Cells()...)
	}
	for _, c := range all {
		if c.State == heatmap.Padding {
			continue
		}
		key := c.Key()
		if _, dup := m.cells[key]; !dup {
			m.keys = append(m.keys, key)
		}
		m.cells[key] = c
	}
	sort.Strings(m.keys)

	if _, ok := m.cells[m.cursor]; !ok {
		m.cursor = m.initialCursor()
	}
	m.moveTo(m.cursor)
}

func (m Model) initialCursor() string {
	if len(m.keys) == 0 {
		return ""
	}
	if today := heatmap.DateKey(m.now()); m.has(today) {
		return today
	}
	for i := len(m.keys) - 1; i >= 0; i-- {
		if m.cells[m.keys[i]].Interactive() {
			return m.keys[i]
		}
	}
	return m.keys[0]
}

func (m Model) has(key string) bool {
	_, ok := m.cells[key]
	return ok
}

// moveTo places the cursor and replaces the popup. Leaving a data cell
// closes it.
func (m *Model) moveTo(key string) {
	m.cursor = key
	m.popup = nil
	if c, ok := m.cells[key]; ok {
		m.popup = newPopup(c)
	}
}

func (m *Model) step(days int) {
	t, err := time.Parse(habit.DateLayout, m.cursor)
	if err != nil {
		return
	}
	if key := heatmap.DateKey(t.AddDate(0, 0, days)); m.has(key) {
		m.moveTo(key)
	}
}

func (m *Model) stepMonth(delta int) {
	t, err := time.Parse(habit.DateLayout, m.cursor)
	if err != nil {
		return
	}
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	if key := heatmap.DateKey(first); m.has(key) {
		m.moveTo(key)
	}
}

// stepData jumps to the nearest interactive cell in direction dir.
func (m *Model) stepData(dir int) {
	i := sort.SearchStrings(m.keys, m.cursor)
	for i += dir; i >= 0 && i < len(m.keys); i += dir {
		if m.cells[m.keys[i]].Interactive() {
			m.moveTo(m.keys[i])
			return
		}
	}
}

func (m Model) monthly() bool {
	return m.result.Year == nil
}

// Update handles navigation keys when the container has focus
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused || len(m.keys) == 0 {
		return m, nil
	}

	// the yearly grid runs weeks left to right, the monthly cards run days
	horizontal, vertical := 7, 1
	if m.monthly() {
		horizontal, vertical = 1, 7
	}

	switch key.String() {
	case "h", "left":
		m.step(-horizontal)
	case "l", "right":
		m.step(horizontal)
	case "k", "up":
		m.step(-vertical)
	case "j", "down":
		m.step(vertical)
	case "H":
		m.stepMonth(-1)
	case "L":
		m.stepMonth(1)
	case "n":
		m.stepData(1)
	case "p":
		m.stepData(-1)
	case "g":
		m.moveTo(m.keys[0])
	case "G":
		m.moveTo(m.keys[len(m.keys)-1])
	case "T":
		if today := heatmap.DateKey(m.now()); m.has(today) {
			m.moveTo(today)
		}
	case "enter":
		return m, m.click()
	}
	return m, nil
}

// click opens the single note behind the cell, or searches for all of them.
func (m Model) click() tea.Cmd {
	c, ok := m.cells[m.cursor]
	if !ok || !c.Interactive() {
		return nil
	}
	sources := c.Record.Sources()
	if len(sources) == 1 {
		return messages.OpenNote(sources[0])
	}
	return messages.Search(c.Record.SearchQuery())
}

// Title names the container by its note and line.
func (m Model) Title() string {
	if m.container.Note == "" {
		return m.container.ID
	}
	return fmt.Sprintf("%s:%d", filepath.Base(m.container.Note), m.container.Line)
}

// HintText returns the key hints for the status bar.
func (m Model) HintText() string {
	return "hjkl:move  n/p:next/prev data  H/L:month  enter:open"
}

// View renders the container frame, its grid and the popup
func (m Model) View() string {
	frame := theme.Panel
	if m.focused {
		frame = theme.PanelFocused
	}

	title := titleStyle.Render(m.Title())
	if m.loaded && !m.result.Failed() {
		title += "  " + labelStyle.Render(fmt.Sprintf("%s · %s", m.result.Config.ViewType, m.result.Dataset.Method))
	}

	body := labelStyle.Render("Rendering...")
	if m.loaded {
		cursor := ""
		if m.focused {
			cursor = m.cursor
		}
		body = Render(m.result, cursor, m.width-4)
	}

	content := title + "\n" + body
	if m.focused && m.popup != nil {
		content += "\n" + m.popup.View()
	}
	return frame.Render(content)
}
