package blocks

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"habitmap/internal/logs"
	"habitmap/internal/notes"
	"habitmap/internal/render"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Language is the fenced code block info string that marks a heatmap
const Language = "heatmap-habit"

// Block is one heatmap code block found in a markdown document
type Block struct {
	Index  int    // position among the heatmap blocks of the document
	Line   int    // 1-based line of the opening fence
	Source string // block body without the fences
}

// ID builds a stable container id for a block inside a note.
func (b Block) ID(note string) string {
	return fmt.Sprintf("%s#%d", note, b.Index)
}

// Find returns the heatmap blocks of a markdown document in document order.
func Find(content []byte) []Block {
	doc := goldmark.DefaultParser().Parse(text.NewReader(content))

	var found []Block
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindFencedCodeBlock {
			return ast.WalkContinue, nil
		}
		fcb := n.(*ast.FencedCodeBlock)
		if !strings.EqualFold(string(fcb.Language(content)), Language) {
			return ast.WalkSkipChildren, nil
		}

		var body strings.Builder
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			body.Write(seg.Value(content))
		}

		found = append(found, Block{
			Index:  len(found),
			Line:   fenceLine(content, fcb),
			Source: body.String(),
		})
		return ast.WalkSkipChildren, nil
	})
	return found
}

// FindInFile reads a note and returns its heatmap blocks.
func FindInFile(path string) ([]Block, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Find(content), nil
}

// Containers returns one render container per heatmap block of a note.
func Containers(note string) ([]render.Container, error) {
	found, err := FindInFile(note)
	if err != nil {
		return nil, err
	}
	out := make([]render.Container, len(found))
	for i, b := range found {
		out[i] = render.Container{ID: b.ID(note), Source: b.Source, Note: note, Line: b.Line}
	}
	return out, nil
}

// Lister lists the notes of a vault
type Lister interface {
	List(ctx context.Context) ([]notes.File, error)
}

// Discover returns a container for every heatmap block in the vault, notes
// in listing order. Unreadable notes are skipped.
func Discover(ctx context.Context, l Lister) ([]render.Container, error) {
	files, err := l.List(ctx)
	if err != nil {
		return nil, err
	}

	var out []render.Container
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := Containers(f.Path)
		if err != nil {
			logs.Logger.Warnw("skipping note while discovering blocks", "path", f.Path, "error", err)
			continue
		}
		out = append(out, found...)
	}
	return out, nil
}

func fenceLine(content []byte, fcb *ast.FencedCodeBlock) int {
	if fcb.Info == nil {
		return 0
	}
	start := fcb.Info.Segment.Start
	if start > len(content) {
		return 0
	}
	return bytes.Count(content[:start], []byte("\n")) + 1
}
