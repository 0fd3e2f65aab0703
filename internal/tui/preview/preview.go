package preview

import (
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	"habitmap/internal/logs"
	"habitmap/internal/notes"
	"habitmap/internal/tui/messages"
	"habitmap/internal/tui/theme"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = theme.Title
	pathStyle  = theme.Path
	fieldStyle = theme.Muted
	errorStyle = theme.Error
	hintStyle  = theme.HelpHint
	frameStyle = lipgloss.NewStyle().PaddingLeft(1)
)

// Model shows one note rendered as markdown
type Model struct {
	note     notes.Note
	loaded   bool
	viewport viewport.Model
	err      error
	width    int
	height   int
}

// New creates an empty preview
func New() Model {
	return Model{viewport: viewport.New(0, 0)}
}

// SetSize updates the view dimensions and re-wraps the note
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(1, height-3)
	if m.loaded {
		m.render()
	}
}

// Path returns the previewed note path, "" when nothing is open
func (m Model) Path() string {
	if !m.loaded {
		return ""
	}
	return m.note.Path
}

// Open reads and renders the note at path.
func (m *Model) Open(path string) error {
	m.err = nil
	f, err := notes.FileFromPath(path)
	if err != nil {
		m.loaded = false
		m.err = err
		return err
	}
	content, err := os.ReadFile(f.Path)
	if err != nil {
		m.loaded = false
		m.err = fmt.Errorf("read note %s: %w", f.Path, err)
		return m.err
	}
	m.note = notes.Parse(f, content)
	m.loaded = true
	m.render()
	m.viewport.GotoTop()
	return nil
}

// Reload re-reads the open note, e.g. after the editor exits or the file
// changes on disk.
func (m *Model) Reload() error {
	if !m.loaded {
		return nil
	}
	return m.Open(m.note.Path)
}

func (m *Model) render() {
	body := m.note.Body
	wrap := max(20, m.width-4)

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err == nil {
		if out, rerr := r.Render(body); rerr == nil {
			body = out
		} else {
			err = rerr
		}
	}
	if err != nil {
		logs.Logger.Warnw("markdown render failed, showing raw note", "path", m.note.Path, "error", err)
	}
	m.viewport.SetContent(body)
}

// fieldLine lists frontmatter fields in key order.
func (m Model) fieldLine() string {
	if len(m.note.Frontmatter) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m.note.Frontmatter))
	for k := range m.note.Frontmatter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %v", k, m.note.Frontmatter[k])
	}
	return strings.Join(parts, "  ")
}

// Update handles scrolling and the editor key
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "backspace":
			return m, messages.SwitchView(messages.ViewHeatmap)
		case "e":
			if m.loaded {
				return m, EditCmd(m.note.Path)
			}
			return m, nil
		case "g":
			m.viewport.GotoTop()
			return m, nil
		case "G":
			m.viewport.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// EditCmd suspends the program and opens path in $EDITOR.
func EditCmd(path string) tea.Cmd {
	args := strings.Fields(os.Getenv("EDITOR"))
	if len(args) == 0 {
		args = []string{"vi"}
	}
	c := exec.Command(args[0], append(args[1:], path)...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return messages.EditorFinishedMsg{Path: path, Err: err}
	})
}

// HintText returns the key hints for the status bar.
func (m Model) HintText() string {
	return "j/k:scroll  e:edit  esc:back  ?:help  q:quit"
}

// View renders the note header and the scrolled body
func (m Model) View() string {
	if m.err != nil {
		return frameStyle.Render(errorStyle.Render("Cannot open note: " + m.err.Error()))
	}
	if !m.loaded {
		return frameStyle.Render(hintStyle.Render("No note open"))
	}

	header := titleStyle.Render(m.note.Title) + "  " + pathStyle.Render(m.note.Path)
	fields := fieldStyle.Render(m.fieldLine())
	scroll := hintStyle.Render(fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100))
	return lipgloss.JoinVertical(lipgloss.Left,
		frameStyle.Render(header+"  "+scroll),
		frameStyle.Render(fields),
		"",
		m.viewport.View(),
	)
}
