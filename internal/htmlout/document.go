package htmlout

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const stylesheet = `
:root { --sh-accent: #40c463; --sh-empty: #ebedf0; --sh-zero: #d0d7de; }
body { font-family: sans-serif; font-size: 12px; }
.sh-month-header-row, .sh-grid { display: flex; gap: 3px; }
.sh-month-header-spacer, .sh-day-labels { width: 28px; }
.sh-month-header-cell { width: 11px; }
.sh-week-col, .sh-day-labels { display: flex; flex-direction: column; gap: 3px; }
.sh-day-label { height: 11px; line-height: 11px; }
.sh-day-cell { position: relative; width: 11px; height: 11px; border-radius: 2px; }
.sh-empty { visibility: hidden; }
.sh-empty-data { background: var(--sh-empty); }
.sh-zero-data { background: var(--sh-zero); cursor: pointer; }
.has-data { background: var(--sh-accent); cursor: pointer; }
.sh-cell-link { position: absolute; inset: 0; }
.heatmap-hover-popup { position: absolute; top: 14px; left: 0; z-index: 10; min-width: 160px;
  padding: 6px; background: #fff; border: 1px solid #ccc; border-radius: 4px; opacity: 1; }
.sh-layout-monthly-pixels { display: flex; flex-wrap: wrap; gap: 16px; }
.sh-month-header-flex, .sh-month-day-labels { display: flex; gap: 3px; }
.sh-pixel-month-title { font-weight: bold; margin-right: 8px; }
.sh-pixel-grid-numbered { display: grid; grid-template-columns: 28px repeat(7, 11px); gap: 3px; }
.sh-day-header-spacer, .sh-week-label { width: 28px; }
.sh-pixel-header { width: 11px; }
.sh-error { color: #cf222e; }
.sh-stats { margin-top: 8px; color: #57606a; }
`

// one popup at a time: entering a cell closes the previous one
const script = `
(function () {
  var open = null;
  document.querySelectorAll('.sh-day-cell').forEach(function (cell) {
    var popup = cell.querySelector('.heatmap-hover-popup');
    cell.addEventListener('mouseenter', function () {
      if (open && open !== popup) { open.hidden = true; }
      open = popup;
      if (popup) { popup.hidden = false; }
    });
    cell.addEventListener('mouseleave', function () {
      if (popup) { popup.hidden = true; }
      if (open === popup) { open = null; }
    });
  });
})();
`

func document(title string, widget *html.Node) *html.Node {
	if title == "" {
		title = "Habit heatmap"
	}

	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := element(atom.Html, "")
	head := element(atom.Head, "")

	meta := element(atom.Meta, "")
	setAttr(meta, "charset", "utf-8")
	head.AppendChild(meta)

	t := element(atom.Title, "")
	t.AppendChild(textNode(title))
	head.AppendChild(t)

	style := element(atom.Style, "")
	style.AppendChild(textNode(stylesheet))
	head.AppendChild(style)
	root.AppendChild(head)

	body := element(atom.Body, "")
	h1 := element(atom.H1, "")
	h1.AppendChild(textNode(title))
	body.AppendChild(h1)
	body.AppendChild(widget)

	js := element(atom.Script, "")
	js.AppendChild(textNode(script))
	body.AppendChild(js)
	root.AppendChild(body)

	doc.AppendChild(root)
	return doc
}
