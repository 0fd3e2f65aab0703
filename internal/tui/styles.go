package tui

import (
	"habitmap/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = theme.Title

	// Status bar
	StatusBarStyle = theme.StatusBar

	// Help text
	HelpStyle = theme.HelpHint

	statusErrorStyle = lipgloss.NewStyle().Foreground(theme.Danger)
	statusInfoStyle  = lipgloss.NewStyle().Foreground(theme.Secondary)
	aggregationStyle = lipgloss.NewStyle().Bold(true).Foreground(theme.Accent)
)
