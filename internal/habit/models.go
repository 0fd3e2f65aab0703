package habit

import (
	"fmt"
	"sort"
	"strings"
)

// Method selects how same-day entries are combined
type Method string

const (
	Sum     Method = "sum"
	Average Method = "average"
)

// ParseMethod validates an aggregation name. Matching is case-insensitive.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case Sum:
		return Sum, nil
	case Average:
		return Average, nil
	}
	return "", fmt.Errorf("unknown aggregation %q (want sum or average)", s)
}

// Entry is one note's contribution to a day
type Entry struct {
	Date     string  // YYYY-MM-DD
	Value    float64 // resolved value, 0 when nothing matched
	SourceID string  // absolute path of the originating note
	Label    string  // display name, usually the base filename
}

// DayRecord groups the entries that share a date
type DayRecord struct {
	Date            string
	Entries         []Entry
	AggregatedValue float64
}

// Add appends an entry and recomputes the aggregate.
func (d *DayRecord) Add(e Entry, m Method) {
	d.Entries = append(d.Entries, e)
	d.AggregatedValue = Combine(d.Entries, m)
}

// EntryCount returns "1 entry" or "N entries".
func EntryCount(n int) string {
	if n == 1 {
		return "1 entry"
	}
	return fmt.Sprintf("%d entries", n)
}

// Sources returns the distinct source notes in arrival order.
func (d DayRecord) Sources() []string {
	seen := make(map[string]bool, len(d.Entries))
	var out []string
	for _, e := range d.Entries {
		if seen[e.SourceID] {
			continue
		}
		seen[e.SourceID] = true
		out = append(out, e.SourceID)
	}
	return out
}

// SearchQuery builds a query matching every contributing note by path.
func (d DayRecord) SearchQuery() string {
	sources := d.Sources()
	clauses := make([]string, len(sources))
	for i, s := range sources {
		clauses[i] = fmt.Sprintf("path:%q", s)
	}
	return strings.Join(clauses, " OR ")
}

// Dataset is the aggregated view of one render pass
type Dataset struct {
	Days   map[string]*DayRecord
	Max    float64 // largest aggregated value, never below 1
	Method Method
}

// Get returns the record for a YYYY-MM-DD key.
func (ds Dataset) Get(date string) (*DayRecord, bool) {
	rec, ok := ds.Days[date]
	return rec, ok
}

// Dates returns the record keys in chronological order.
func (ds Dataset) Dates() []string {
	dates := make([]string, 0, len(ds.Days))
	for d := range ds.Days {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Len returns the number of days with at least one entry
func (ds Dataset) Len() int {
	return len(ds.Days)
}
