package notes

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// File is a markdown note discovered in a vault, before it is read
type File struct {
	Path     string    // Absolute path to file
	RelPath  string    // Path relative to the vault root, slash separated
	BaseName string    // Filename without the .md extension
	Created  time.Time // Birth time when the filesystem records it, else mtime
}

// Note represents a markdown note that has been read and parsed
type Note struct {
	File
	Title       string         // From frontmatter `title`, first H1, or derived from filename
	Frontmatter map[string]any // nil when the note has no frontmatter block
	Body        string         // Content after the frontmatter block
	Tags        []string       // Normalized with a leading '#'
}

// InlineField looks up a `name:: value` field in the note body. Only the
// first occurrence counts.
func (n Note) InlineField(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	m := inlineFieldPattern(name).FindStringSubmatch(n.Body)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// compiled inline field patterns keyed by field name
var inlinePatterns sync.Map

func inlineFieldPattern(name string) *regexp.Regexp {
	if re, ok := inlinePatterns.Load(name); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile(`(?m)(?:^|[\s\[(])` + regexp.QuoteMeta(name) + `::[ \t]*([^\]\)\n]*)`)
	actual, _ := inlinePatterns.LoadOrStore(name, re)
	return actual.(*regexp.Regexp)
}

// HasTagPrefix reports whether any tag starts with prefix (which includes the '#').
func (n Note) HasTagPrefix(prefix string) bool {
	prefix = strings.ToLower(prefix)
	for _, t := range n.Tags {
		if strings.HasPrefix(strings.ToLower(t), prefix) {
			return true
		}
	}
	return false
}
