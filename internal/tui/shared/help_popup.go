package shared

import (
	"strings"

	"habitmap/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// HelpBind is one key and what it does
type HelpBind struct {
	Key  string
	Desc string
}

// HelpSection groups the binds of one view
type HelpSection struct {
	Title string
	Binds []HelpBind
}

const helpColumnGap = 4

var (
	helpKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary)
	helpDescStyle = lipgloss.NewStyle().Foreground(theme.Text)
)

// RenderHelpPopup draws the sections in a box placed in the middle of the
// screen. Sections sit side by side while they fit the width and stack
// otherwise.
func RenderHelpPopup(title string, sections []HelpSection, width, height int) string {
	keyWidth := 0
	for _, s := range sections {
		for _, b := range s.Binds {
			keyWidth = max(keyWidth, lipgloss.Width(b.Key))
		}
	}
	keyWidth += 2

	blocks := make([]string, len(sections))
	for i, s := range sections {
		var sb strings.Builder
		sb.WriteString(theme.Title.Render(s.Title))
		for _, b := range s.Binds {
			sb.WriteString("\n" + helpKeyStyle.Width(keyWidth).Render(b.Key) + helpDescStyle.Render(b.Desc))
		}
		blocks[i] = sb.String()
	}

	body := strings.Join(blocks, "\n\n")
	if cols := columns(blocks); lipgloss.Width(cols)+6 <= width {
		body = cols
	}

	content := theme.Title.Render(title) + "\n\n" + body + "\n\n" + theme.Muted.Render("Press any key to close")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, theme.ModalBox.Render(content))
}

// columns lays blocks out in two columns, filling the left one first
func columns(blocks []string) string {
	half := (len(blocks) + 1) / 2
	left := strings.Join(blocks[:half], "\n\n")
	right := strings.Join(blocks[half:], "\n\n")
	if right == "" {
		return left
	}
	gap := strings.Repeat(" ", helpColumnGap)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, gap, right)
}
