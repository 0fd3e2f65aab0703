package notes

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

var (
	datePattern   = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	inlineTagExpr = regexp.MustCompile(`(?:^|\s)#([\p{L}\p{N}_/-]*[\p{L}_/-][\p{L}\p{N}_/-]*)`)
)

// Parse builds a Note from a file and its raw content. Broken frontmatter is
// treated as absent rather than as an error.
func Parse(f File, content []byte) Note {
	fm, body := splitFrontmatter(content)

	note := Note{
		File:        f,
		Frontmatter: fm,
		Body:        string(body),
	}

	if title, ok := fm["title"].(string); ok && strings.TrimSpace(title) != "" {
		note.Title = strings.TrimSpace(title)
	}
	if note.Title == "" {
		note.Title = extractTitle(body)
	}
	if note.Title == "" {
		note.Title = titleFromFilename(f.BaseName)
	}

	note.Tags = collectTags(fm, body)
	return note
}

// splitFrontmatter separates a leading --- block from the body
func splitFrontmatter(content []byte) (map[string]any, []byte) {
	lines := bytes.Split(content, []byte("\n"))

	if len(lines) == 0 || !bytes.Equal(bytes.TrimSpace(lines[0]), []byte("---")) {
		return nil, content
	}

	var fmEnd int
	for i := 1; i < len(lines); i++ {
		if bytes.Equal(bytes.TrimSpace(lines[i]), []byte("---")) {
			fmEnd = i
			break
		}
	}

	if fmEnd == 0 {
		return nil, content
	}

	fmBytes := bytes.Join(lines[1:fmEnd], []byte("\n"))
	body := bytes.Join(lines[fmEnd+1:], []byte("\n"))

	var fm map[string]any
	if err := yaml.Unmarshal(fmBytes, &fm); err != nil {
		return nil, body
	}
	return fm, body
}

func extractTitle(markdown []byte) string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(markdown))

	var title string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			if n.(*ast.Heading).Level == 1 {
				title = string(n.Text(markdown))
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(title)
}

func titleFromFilename(name string) string {
	// Strip leading date pattern (e.g. "2026-02-14-")
	if loc := datePattern.FindStringIndex(name); loc != nil && loc[0] == 0 {
		after := strings.TrimPrefix(name[loc[1]:], "-")
		if after != "" {
			name = after
		}
	}

	name = strings.ReplaceAll(name, "-", " ")
	name = strings.ReplaceAll(name, "_", " ")

	if name == "" {
		return "Note"
	}
	return name
}

// collectTags merges frontmatter `tags` (list or comma separated string) with
// inline #tags from the body.
func collectTags(fm map[string]any, body []byte) []string {
	seen := make(map[string]bool)
	var tags []string
	add := func(t string) {
		t = strings.TrimSpace(t)
		t = strings.TrimPrefix(t, "#")
		if t == "" {
			return
		}
		t = "#" + t
		if seen[t] {
			return
		}
		seen[t] = true
		tags = append(tags, t)
	}

	switch raw := fm["tags"].(type) {
	case string:
		for _, t := range strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ' ' }) {
			add(t)
		}
	case []any:
		for _, t := range raw {
			add(fmt.Sprint(t))
		}
	}

	for _, m := range inlineTagExpr.FindAllSubmatch(body, -1) {
		add(string(m[1]))
	}
	return tags
}
