package notes

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Query is a parsed search expression. Clauses are OR-ed together:
//
//	path:"/abs/or/rel/path.md" OR tag:#habit OR running
type Query struct {
	Paths []string
	Tags  []string
	Terms []string
}

// ParseQuery splits a query on " OR " and classifies each clause
func ParseQuery(q string) Query {
	var query Query
	for _, clause := range strings.Split(q, " OR ") {
		clause = strings.TrimSpace(clause)
		if clause == "" {
			continue
		}
		switch {
		case strings.HasPrefix(clause, "path:"):
			query.Paths = append(query.Paths, unquote(strings.TrimPrefix(clause, "path:")))
		case strings.HasPrefix(clause, "tag:"):
			tag := unquote(strings.TrimPrefix(clause, "tag:"))
			if !strings.HasPrefix(tag, "#") {
				tag = "#" + tag
			}
			query.Tags = append(query.Tags, tag)
		default:
			query.Terms = append(query.Terms, strings.ToLower(unquote(clause)))
		}
	}
	return query
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return s
}

// IsEmpty reports whether the query has no clauses
func (q Query) IsEmpty() bool {
	return len(q.Paths) == 0 && len(q.Tags) == 0 && len(q.Terms) == 0
}

// NeedsContent reports whether matching requires reading the note
func (q Query) NeedsContent() bool {
	return len(q.Tags) > 0 || len(q.Terms) > 0
}

// MatchFile matches path clauses only
func (q Query) MatchFile(f File) bool {
	for _, p := range q.Paths {
		if p == f.Path || p == f.RelPath || filepath.ToSlash(p) == f.RelPath {
			return true
		}
	}
	return false
}

// Match reports whether any clause matches the note. An empty query
// matches everything.
func (q Query) Match(n Note) bool {
	if q.IsEmpty() || q.MatchFile(n.File) {
		return true
	}
	for _, t := range q.Tags {
		if n.HasTagPrefix(t) {
			return true
		}
	}
	for _, term := range q.Terms {
		if strings.Contains(strings.ToLower(n.Title), term) ||
			strings.Contains(strings.ToLower(n.RelPath), term) ||
			strings.Contains(strings.ToLower(n.Body), term) {
			return true
		}
	}
	return false
}
