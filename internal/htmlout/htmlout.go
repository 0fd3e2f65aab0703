package htmlout

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strconv"

	"habitmap/internal/habit"
	"habitmap/internal/heatmap"
	"habitmap/internal/render"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Options controls the emitted markup
type Options struct {
	Title      string
	Standalone bool // wrap in a full document with styles and the popup script
}

// Render writes a render result as HTML.
func Render(w io.Writer, res render.Result, opts Options) error {
	root := Build(res)
	if opts.Standalone {
		root = document(opts.Title, root)
	}
	return html.Render(w, root)
}

// RenderAll writes several results into one output, a widget each.
func RenderAll(w io.Writer, results []render.Result, opts Options) error {
	root := element(atom.Div, "sh-heatmaps")
	for _, res := range results {
		root.AppendChild(Build(res))
	}
	if opts.Standalone {
		root = document(opts.Title, root)
	}
	return html.Render(w, root)
}

// Build returns the widget node tree for a result. A failed result becomes
// a single error element.
func Build(res render.Result) *html.Node {
	if res.Failed() {
		div := element(atom.Div, "sh-error")
		div.AppendChild(textNode("Heatmap error: " + res.Err.Error()))
		return div
	}

	var widget *html.Node
	switch {
	case res.Year != nil:
		widget = yearly(*res.Year)
	default:
		widget = monthly(res.Months)
	}
	widget.AppendChild(stats(res.Stats))
	return widget
}

func yearly(l heatmap.YearLayout) *html.Node {
	container := element(atom.Div, "sh-heatmap sh-layout-yearly")
	setAttr(container, "data-year", strconv.Itoa(l.Year))

	header := element(atom.Div, "sh-month-header-row")
	header.AppendChild(element(atom.Div, "sh-month-header-spacer"))
	for _, label := range l.MonthLabels {
		cell := element(atom.Div, "sh-month-header-cell")
		if label != "" {
			cell.AppendChild(textNode(label))
		}
		header.AppendChild(cell)
	}
	container.AppendChild(header)

	grid := element(atom.Div, "sh-grid")
	days := element(atom.Div, "sh-day-labels")
	for _, label := range l.DayLabels {
		d := element(atom.Div, "sh-day-label")
		if label != "" {
			d.AppendChild(textNode(label))
		}
		days.AppendChild(d)
	}
	grid.AppendChild(days)

	for _, week := range l.Weeks {
		col := element(atom.Div, "sh-week-col")
		for _, c := range week.Cells {
			col.AppendChild(cell(c))
		}
		grid.AppendChild(col)
	}
	container.AppendChild(grid)
	return container
}

func monthly(months []heatmap.MonthLayout) *html.Node {
	container := element(atom.Div, "sh-heatmap sh-layout-monthly-pixels")
	for _, m := range months {
		card := element(atom.Div, "sh-pixel-month-card")
		setAttr(card, "data-month", m.Key())

		header := element(atom.Div, "sh-month-header-flex")
		title := element(atom.Div, "sh-pixel-month-title")
		title.AppendChild(textNode(fmt.Sprintf("%s %d", m.Title, m.Year)))
		header.AppendChild(title)

		labels := element(atom.Div, "sh-month-day-labels")
		labels.AppendChild(element(atom.Div, "sh-day-header-spacer"))
		for _, h := range m.Header[1:] {
			d := element(atom.Div, "sh-pixel-header")
			if h != "" {
				d.AppendChild(textNode(h))
			}
			labels.AppendChild(d)
		}
		header.AppendChild(labels)
		card.AppendChild(header)

		grid := element(atom.Div, "sh-pixel-grid-numbered")
		for _, row := range m.Rows {
			label := element(atom.Div, "sh-week-label")
			label.AppendChild(textNode(row.Label))
			grid.AppendChild(label)
			for _, c := range row.Cells {
				grid.AppendChild(cell(c))
			}
		}
		card.AppendChild(grid)
		container.AppendChild(card)
	}
	return container
}

func cell(c heatmap.Cell) *html.Node {
	switch c.State {
	case heatmap.Padding:
		return element(atom.Div, "sh-day-cell sh-empty")
	case heatmap.EmptyData:
		n := element(atom.Div, "sh-day-cell sh-empty-data")
		setAttr(n, "data-date", c.Key())
		setAttr(n, "title", c.Key()+": no data")
		return n
	}

	class := "sh-day-cell has-data"
	if c.State == heatmap.ZeroData {
		class = "sh-day-cell sh-zero-data"
	}
	n := element(atom.Div, class)
	value := formatValue(c.Value)
	setAttr(n, "data-date", c.Key())
	setAttr(n, "data-value", value)
	setAttr(n, "title", c.Key()+": "+value)
	if c.State == heatmap.HasData {
		setAttr(n, "style", fmt.Sprintf("opacity: %.2f", c.Intensity))
	}

	if c.Record == nil {
		return n
	}
	setAttr(n, "data-query", c.Record.SearchQuery())

	sources := c.Record.Sources()
	if len(sources) == 1 {
		link := element(atom.A, "sh-cell-link")
		setAttr(link, "href", fileURL(sources[0]))
		n.AppendChild(link)
	}
	n.AppendChild(popup(c.Key(), *c.Record))
	return n
}

// popup lists the contributing entries; the script shows one at a time.
func popup(date string, rec habit.DayRecord) *html.Node {
	p := element(atom.Div, "heatmap-hover-popup")
	setAttr(p, "hidden", "")

	head := element(atom.Div, "heatmap-popup-date")
	head.AppendChild(textNode(fmt.Sprintf("%s: %s (%s)", date, formatValue(rec.AggregatedValue), habit.EntryCount(len(rec.Entries)))))
	p.AppendChild(head)

	list := element(atom.Ul, "heatmap-popup-entries")
	for _, e := range rec.Entries {
		li := element(atom.Li, "")
		a := element(atom.A, "")
		setAttr(a, "href", fileURL(e.SourceID))
		a.AppendChild(textNode(e.Label))
		li.AppendChild(a)
		li.AppendChild(textNode(": " + formatValue(e.Value)))
		list.AppendChild(li)
	}
	p.AppendChild(list)
	return p
}

func stats(st habit.Stats) *html.Node {
	div := element(atom.Div, "sh-stats")
	div.AppendChild(textNode(fmt.Sprintf("%d days, total %s, current streak %d, longest streak %d",
		st.Days, formatValue(st.Total), st.CurrentStreak, st.LongestStreak)))
	return div
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

func element(a atom.Atom, class string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	if class != "" {
		setAttr(n, "class", class)
	}
	return n
}

func setAttr(n *html.Node, key, val string) {
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
