package search

import (
	"context"
	"fmt"
	"strings"

	"habitmap/internal/logs"
	"habitmap/internal/notes"
	"habitmap/internal/tui/messages"
	"habitmap/internal/tui/shared"
	"habitmap/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

var (
	titleStyle    = theme.Title
	queryStyle    = lipgloss.NewStyle().Foreground(theme.Secondary)
	countStyle    = theme.Muted
	pathStyle     = theme.Path
	tagStyle      = theme.Tag
	selectedStyle = theme.Selected
	cursorStyle   = theme.Cursor
	emptyStyle    = lipgloss.NewStyle().Foreground(theme.TextMuted).Italic(true)
	errorStyle    = theme.Error
	filterLabel   = lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)
)

// Searcher runs a vault query
type Searcher interface {
	Search(ctx context.Context, query string) ([]notes.Note, error)
}

// ResultsMsg carries the notes matching a query
type ResultsMsg struct {
	Query string
	Notes []notes.Note
	Err   error
}

// Model lists the notes matching a query and narrows them with a fuzzy filter
type Model struct {
	searcher  Searcher
	query     string
	results   []notes.Note
	filtered  []int // indices into results
	selected  int
	input     textinput.Model
	filtering bool
	loading   bool
	err       error
	width     int
	height    int
}

// New creates an empty search panel
func New(s Searcher) Model {
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.CharLimit = 100
	ti.Width = 40

	return Model{searcher: s, input: ti}
}

// SetSize updates the view dimensions
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Query returns the vault query being shown
func (m Model) Query() string {
	return m.query
}

// IsTyping reports whether the filter input has focus
func (m Model) IsTyping() bool {
	return m.filtering
}

// Start resets the panel and runs query in the background.
func (m *Model) Start(query string) tea.Cmd {
	m.query = query
	m.results = nil
	m.filtered = nil
	m.selected = 0
	m.err = nil
	m.loading = true
	m.filtering = false
	m.input.SetValue("")
	m.input.Blur()

	s := m.searcher
	return func() tea.Msg {
		found, err := s.Search(context.Background(), query)
		return ResultsMsg{Query: query, Notes: found, Err: err}
	}
}

// Selected returns the note under the cursor
func (m Model) Selected() (notes.Note, bool) {
	if m.selected < 0 || m.selected >= len(m.filtered) {
		return notes.Note{}, false
	}
	return m.results[m.filtered[m.selected]], true
}

func (m *Model) applyFilter() {
	pattern := strings.TrimSpace(m.input.Value())
	if pattern == "" {
		m.filtered = make([]int, len(m.results))
		for i := range m.results {
			m.filtered[i] = i
		}
	} else {
		names := make([]string, len(m.results))
		for i, n := range m.results {
			names[i] = n.Title + " " + n.RelPath
		}
		matches := fuzzy.Find(pattern, names)
		m.filtered = make([]int, len(matches))
		for i, match := range matches {
			m.filtered[i] = match.Index
		}
	}
	if m.selected >= len(m.filtered) {
		m.selected = max(0, len(m.filtered)-1)
	}
}

// Update handles results and key events
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ResultsMsg:
		if msg.Query != m.query {
			// an older search finished after a newer one started
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		m.results = msg.Notes
		if msg.Err != nil {
			logs.Logger.Warnw("search failed", "query", msg.Query, "error", msg.Err)
		}
		m.applyFilter()
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.updateFilter(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m Model) updateFilter(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.input.SetValue("")
		m.input.Blur()
		m.applyFilter()
		return m, nil
	case "enter":
		m.filtering = false
		m.input.Blur()
		return m, nil
	case "up", "ctrl+p":
		if m.selected > 0 {
			m.selected--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.selected < len(m.filtered)-1 {
			m.selected++
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.selected < len(m.filtered)-1 {
			m.selected++
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
	case "g":
		m.selected = 0
	case "G":
		m.selected = max(0, len(m.filtered)-1)
	case "/":
		m.filtering = true
		m.input.Focus()
		return m, textinput.Blink
	case "enter":
		if n, ok := m.Selected(); ok {
			return m, messages.OpenNote(n.Path)
		}
	case "esc":
		return m, messages.SwitchView(messages.ViewHeatmap)
	}
	return m, nil
}

// HintText returns the raw hint string for the current mode.
func (m Model) HintText() string {
	if m.filtering {
		return "type to filter  enter:confirm  esc:clear"
	}
	return "j/k:navigate  /:filter  enter:open  esc:back  ?:help  q:quit"
}

// View renders the result list
func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Search") + "  " + queryStyle.Render(m.query) + "\n")

	switch {
	case m.loading:
		sb.WriteString(emptyStyle.Render("Searching..."))
	case m.err != nil:
		sb.WriteString(errorStyle.Render("Search failed: " + m.err.Error()))
	case len(m.results) == 0:
		sb.WriteString(emptyStyle.Render("No matching notes"))
	default:
		sb.WriteString(countStyle.Render(fmt.Sprintf("%d of %d notes", len(m.filtered), len(m.results))) + "\n\n")
		sb.WriteString(m.renderList())
	}

	if m.filtering || m.input.Value() != "" {
		sb.WriteString("\n\n" + filterLabel.Render("Filter: ") + m.input.View())
	}

	return shared.CenterWithBottomHints(sb.String(), countStyle.Render(m.HintText()), m.height)
}

func (m Model) renderList() string {
	visible := max(1, m.height-8)
	start := 0
	if m.selected >= visible {
		start = m.selected - visible + 1
	}
	end := min(start+visible, len(m.filtered))

	var lines []string
	for i := start; i < end; i++ {
		n := m.results[m.filtered[i]]
		line := n.Title + "  " + pathStyle.Render(n.RelPath)
		if len(n.Tags) > 0 {
			line += "  " + tagStyle.Render(strings.Join(n.Tags, " "))
		}
		if i == m.selected {
			lines = append(lines, cursorStyle.Render("> ")+selectedStyle.Render(n.Title)+"  "+pathStyle.Render(n.RelPath))
			continue
		}
		lines = append(lines, "  "+line)
	}
	return strings.Join(lines, "\n")
}
