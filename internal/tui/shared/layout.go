package shared

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// CenterContent places content in the vertical middle of height lines.
// Content taller than height is returned unchanged.
func CenterContent(content string, height int) string {
	content = strings.TrimRight(content, "\n")
	if lipgloss.Height(content) >= height {
		return content
	}
	return lipgloss.PlaceVertical(height, lipgloss.Center, content)
}

// CenterWithBottomHints centers content in the space left above a hint
// block pinned to the last lines.
func CenterWithBottomHints(content, hints string, height int) string {
	content = strings.TrimRight(content, "\n")
	hints = strings.TrimRight(hints, "\n")

	body := height - lipgloss.Height(hints)
	if body <= lipgloss.Height(content) {
		if content == "" {
			return hints
		}
		return content + "\n" + hints
	}
	return lipgloss.PlaceVertical(body, lipgloss.Center, content) + "\n" + hints
}
