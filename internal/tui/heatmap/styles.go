package heatmap

import (
	"habitmap/internal/heatmap"
	"habitmap/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

const (
	cellGlyph   = "■"
	cursorGlyph = "▣"
	cellWidth   = 2 // glyph plus gap
	labelWidth  = 4
)

var (
	titleStyle      = theme.Subtitle
	labelStyle      = theme.Muted
	monthTitleStyle = theme.Title
	errorStyle      = theme.Error
	statsStyle      = theme.Muted

	emptyCellStyle = lipgloss.NewStyle().Foreground(theme.CellEmpty)
	zeroCellStyle  = lipgloss.NewStyle().Foreground(theme.CellZero)
	cursorStyle    = lipgloss.NewStyle().Bold(true)

	popupStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1)
	popupDateStyle  = lipgloss.NewStyle().Bold(true).Foreground(theme.TextBright)
	popupValueStyle = lipgloss.NewStyle().Foreground(theme.Success)
	popupCountStyle = theme.Muted
	popupNameStyle  = theme.Path
)

var heatLow, heatHigh colorful.Color

func init() {
	heatLow, _ = colorful.Hex(theme.HeatLow)
	heatHigh, _ = colorful.Hex(theme.HeatHigh)
}

// HeatColor blends the low and high ends of the ramp in Lab space.
func HeatColor(intensity float64) lipgloss.Color {
	if intensity < 0 {
		intensity = 0
	} else if intensity > 1 {
		intensity = 1
	}
	return lipgloss.Color(heatLow.BlendLab(heatHigh, intensity).Clamped().Hex())
}

func cellStyle(c heatmap.Cell) lipgloss.Style {
	switch c.State {
	case heatmap.ZeroData:
		return zeroCellStyle
	case heatmap.HasData:
		return lipgloss.NewStyle().Foreground(HeatColor(c.Intensity))
	}
	return emptyCellStyle
}
