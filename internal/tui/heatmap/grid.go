package heatmap

import (
	"fmt"
	"strconv"
	"strings"

	"habitmap/internal/habit"
	"habitmap/internal/heatmap"
	"habitmap/internal/render"

	"github.com/charmbracelet/lipgloss"
)

const (
	monthCardWidth  = labelWidth + 7*cellWidth
	monthCardGap    = 2
	defaultCardsRow = 3
)

// Render draws a render result as terminal text. cursor is the date key to
// highlight, "" for none. width limits how many month cards share a row;
// zero uses a fixed default.
func Render(res render.Result, cursor string, width int) string {
	if res.Failed() {
		return errorStyle.Render("Heatmap error: " + res.Err.Error())
	}

	var body string
	if res.Year != nil {
		body = renderYear(*res.Year, cursor)
	} else {
		body = renderMonths(res.Months, cursor, width)
	}
	return body + "\n" + statsStyle.Render(StatsLine(res.Stats))
}

// StatsLine summarizes a dataset in one line.
func StatsLine(st habit.Stats) string {
	return fmt.Sprintf("%d days · total %s · streak %d · longest %d",
		st.Days, strconv.FormatFloat(st.Total, 'f', -1, 64), st.CurrentStreak, st.LongestStreak)
}

func renderYear(l heatmap.YearLayout, cursor string) string {
	var sb strings.Builder

	// month labels are three runes over two-rune columns, so they spill right
	header := []rune(strings.Repeat(" ", len(l.MonthLabels)*cellWidth+1))
	for i, label := range l.MonthLabels {
		for j, r := range label {
			if pos := i*cellWidth + j; pos < len(header) {
				header[pos] = r
			}
		}
	}
	sb.WriteString(strings.Repeat(" ", labelWidth))
	sb.WriteString(labelStyle.Render(strings.TrimRight(string(header), " ")))
	sb.WriteString("\n")

	for row := 0; row < 7; row++ {
		label := ""
		if row < len(l.DayLabels) {
			label = l.DayLabels[row]
		}
		sb.WriteString(labelStyle.Render(pad(label, labelWidth)))
		for _, w := range l.Weeks {
			sb.WriteString(cellAtRow(w, row, cursor))
		}
		if row < 6 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func cellAtRow(w heatmap.Week, row int, cursor string) string {
	for _, c := range w.Cells {
		if c.Row == row {
			return cellView(c, cursor)
		}
	}
	return strings.Repeat(" ", cellWidth)
}

func renderMonths(months []heatmap.MonthLayout, cursor string, width int) string {
	if len(months) == 0 {
		return labelStyle.Render("No data")
	}

	perRow := defaultCardsRow
	if width > 0 {
		perRow = max(1, (width+monthCardGap)/(monthCardWidth+monthCardGap))
	}

	var rows []string
	for start := 0; start < len(months); start += perRow {
		end := min(start+perRow, len(months))
		var cards []string
		for i, m := range months[start:end] {
			card := monthCard(m, cursor)
			if i < end-start-1 {
				card = lipgloss.NewStyle().MarginRight(monthCardGap).Render(card)
			}
			cards = append(cards, card)
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return strings.Join(rows, "\n\n")
}

func monthCard(m heatmap.MonthLayout, cursor string) string {
	var sb strings.Builder
	sb.WriteString(monthTitleStyle.Render(fmt.Sprintf("%s %d", m.Title, m.Year)))
	sb.WriteString("\n")

	var header strings.Builder
	for i, h := range m.Header {
		if i == 0 {
			header.WriteString(pad(h, labelWidth))
			continue
		}
		header.WriteString(pad(h, cellWidth))
	}
	sb.WriteString(labelStyle.Render(header.String()))

	for _, row := range m.Rows {
		sb.WriteString("\n")
		sb.WriteString(labelStyle.Render(pad(row.Label, labelWidth)))
		for _, c := range row.Cells {
			sb.WriteString(cellView(c, cursor))
		}
	}
	return sb.String()
}

func cellView(c heatmap.Cell, cursor string) string {
	if c.State == heatmap.Padding {
		return strings.Repeat(" ", cellWidth)
	}
	style := cellStyle(c)
	glyph := cellGlyph
	if cursor != "" && c.Key() == cursor {
		glyph = cursorGlyph
		style = style.Inherit(cursorStyle)
	}
	return style.Render(glyph) + strings.Repeat(" ", cellWidth-1)
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
