package heatmap

import (
	"fmt"
	"strconv"
	"strings"

	"habitmap/internal/habit"
	"habitmap/internal/heatmap"
)

// Popup is the detail box shown for the data cell under the cursor
type Popup struct {
	Date    string
	Value   float64
	Entries []habit.Entry
}

func newPopup(c heatmap.Cell) *Popup {
	if !c.Interactive() {
		return nil
	}
	return &Popup{
		Date:    c.Key(),
		Value:   c.Record.AggregatedValue,
		Entries: append([]habit.Entry(nil), c.Record.Entries...),
	}
}

// CountText returns "1 entry" or "N entries".
func (p Popup) CountText() string {
	return habit.EntryCount(len(p.Entries))
}

// Lines returns the unstyled popup content.
func (p Popup) Lines() []string {
	lines := []string{
		p.Date,
		fmt.Sprintf("Value: %.2f", p.Value),
	}
	if len(p.Entries) == 0 {
		return lines
	}
	lines = append(lines, p.CountText())
	for _, e := range p.Entries {
		lines = append(lines, fmt.Sprintf("  %s  %s", e.Label, strconv.FormatFloat(e.Value, 'f', -1, 64)))
	}
	return lines
}

// View renders the popup box.
func (p Popup) View() string {
	var sb strings.Builder
	sb.WriteString(popupDateStyle.Render(p.Date) + "\n")
	sb.WriteString(popupValueStyle.Render(fmt.Sprintf("Value: %.2f", p.Value)))
	if len(p.Entries) > 0 {
		sb.WriteString("\n" + popupCountStyle.Render(p.CountText()))
		for _, e := range p.Entries {
			sb.WriteString("\n  " + popupNameStyle.Render(e.Label) + "  " + strconv.FormatFloat(e.Value, 'f', -1, 64))
		}
	}
	return popupStyle.Render(sb.String())
}
