package habit

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"habitmap/internal/notes"
)

// Sentinel date fields that read file metadata instead of frontmatter
const (
	FieldCreated  = "file.ctime"
	FieldFilename = "file.name"
)

// DateLayout is the canonical day key format
const DateLayout = "2006-01-02"

var (
	filenameDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

	// leading number of a value written with a unit, as in "5 km"
	leadingNumber = regexp.MustCompile(`^[\d.]+`)

	// accepted layouts for frontmatter and inline date fields, tried in order
	dateLayouts = []string{
		DateLayout,
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006/01/02",
	}
)

// Fields configures how a note is turned into an entry
type Fields struct {
	DateField    string
	ValueFields  []string // candidates in priority order
	DefaultValue *float64
}

// Extract resolves the date and value of a note. The second result is false
// when no date could be resolved; such notes are left out of the dataset.
func Extract(n notes.Note, f Fields) (Entry, bool) {
	date, ok := ResolveDate(n, f.DateField)
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Date:     date,
		Value:    ResolveValue(n, f.ValueFields, f.DefaultValue),
		SourceID: n.Path,
		Label:    n.BaseName,
	}, true
}

// ResolveDate returns the YYYY-MM-DD date for a note.
func ResolveDate(n notes.Note, field string) (string, bool) {
	switch field {
	case FieldCreated:
		if n.Created.IsZero() {
			return "", false
		}
		return n.Created.Format(DateLayout), true
	case FieldFilename:
		match := filenameDate.FindString(n.BaseName)
		if match == "" {
			return "", false
		}
		if _, err := time.Parse(DateLayout, match); err != nil {
			return "", false
		}
		return match, true
	}

	if raw, ok := n.Frontmatter[field]; ok && raw != nil {
		return parseDate(raw)
	}
	if raw, ok := n.InlineField(field); ok {
		return parseDate(raw)
	}
	return "", false
}

func parseDate(raw any) (string, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v.Format(DateLayout), true
	case string:
		s := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(DateLayout), true
			}
		}
	}
	return "", false
}

// ResolveValue walks the candidate fields in order. A positive number or a
// boolean true ends the scan. A zero is kept but a later positive candidate
// still wins, while a later zero never replaces an earlier positive because
// the scan has already stopped. With nothing better than zero the default
// value applies when one is configured.
func ResolveValue(n notes.Note, fields []string, def *float64) float64 {
	value := 0.0

scan:
	for _, field := range fields {
		raw, ok := lookupField(n, field)
		if !ok {
			continue
		}
		if b, isBool := raw.(bool); isBool {
			if b {
				value = 1
				break scan
			}
			continue
		}
		if num, isNum := toNumber(raw); isNum {
			value = num
			if value > 0 {
				break scan
			}
		}
	}

	if value == 0 && def != nil {
		value = *def
	}
	return value
}

// lookupField prefers frontmatter over inline fields. Inline values are text,
// so true/false are mapped to booleans here.
func lookupField(n notes.Note, field string) (any, bool) {
	if raw, ok := n.Frontmatter[field]; ok {
		if raw == nil {
			return nil, false
		}
		return raw, true
	}
	text, ok := n.InlineField(field)
	if !ok {
		return nil, false
	}
	switch strings.ToLower(text) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return text, true
}

func toNumber(raw any) (float64, bool) {
	switch v := raw.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case string:
		return parseNumber(v)
	}
	return 0, false
}

// parseNumber reads a whole number first, then the digits a value starts with.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	lead := leadingNumber.FindString(s)
	if lead == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(lead, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
