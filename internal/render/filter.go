package render

import (
	"path"
	"strings"

	"habitmap/internal/notes"
)

// searchFilter narrows the vault to the notes a block cares about. A
// search_path starting with '#' selects notes by tag prefix, which needs the
// note content; anything else is a path prefix relative to the vault root.
type searchFilter struct {
	tag    string
	prefix string
}

func newSearchFilter(searchPath string) searchFilter {
	sp := strings.TrimSpace(searchPath)
	if strings.HasPrefix(sp, "#") {
		return searchFilter{tag: sp}
	}
	sp = strings.TrimPrefix(sp, "./")
	sp = strings.TrimPrefix(sp, "/")
	if sp != "" {
		sp = path.Clean(sp)
		if sp == "." {
			sp = ""
		}
	}
	return searchFilter{prefix: sp}
}

// byTag reports whether matching needs the parsed note.
func (f searchFilter) byTag() bool {
	return f.tag != ""
}

func (f searchFilter) matchFile(file notes.File) bool {
	if f.byTag() || f.prefix == "" {
		return true
	}
	return strings.HasPrefix(file.RelPath, f.prefix)
}

func (f searchFilter) matchNote(n notes.Note) bool {
	if !f.byTag() {
		return true
	}
	return n.HasTagPrefix(f.tag)
}
