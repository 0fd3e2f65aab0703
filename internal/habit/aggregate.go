package habit

import "time"

// Combine applies the aggregation method to a list of entries. An empty list
// and an unknown method both yield 0.
func Combine(entries []Entry, m Method) float64 {
	if len(entries) == 0 {
		return 0
	}

	total := 0.0
	for _, e := range entries {
		total += e.Value
	}

	switch m {
	case Sum:
		return total
	case Average:
		return total / float64(len(entries))
	default:
		return 0
	}
}

// Aggregate groups entries by date, keeping arrival order inside each day,
// and tracks the largest aggregated value. Max is at least 1 so that layout
// code can divide by it.
func Aggregate(entries []Entry, m Method) Dataset {
	ds := Dataset{
		Days:   make(map[string]*DayRecord),
		Method: m,
	}

	for _, e := range entries {
		rec, ok := ds.Days[e.Date]
		if !ok {
			rec = &DayRecord{Date: e.Date}
			ds.Days[e.Date] = rec
		}
		rec.Entries = append(rec.Entries, e)
	}

	ds.Max = 1
	for _, rec := range ds.Days {
		rec.AggregatedValue = Combine(rec.Entries, m)
		if rec.AggregatedValue > ds.Max {
			ds.Max = rec.AggregatedValue
		}
	}

	return ds
}

// Stats summarizes a dataset for footers and listings
type Stats struct {
	Days          int     // days with a positive value
	Total         float64 // sum of aggregated values
	CurrentStreak int     // consecutive positive days ending today or yesterday
	LongestStreak int
}

// Summarize computes Stats relative to today.
func Summarize(ds Dataset, today time.Time) Stats {
	var st Stats
	var prev time.Time
	run := 0

	for _, key := range ds.Dates() {
		rec := ds.Days[key]
		st.Total += rec.AggregatedValue
		if rec.AggregatedValue <= 0 {
			run = 0
			continue
		}
		day, err := time.Parse(DateLayout, key)
		if err != nil {
			continue
		}
		st.Days++
		if run > 0 && day.Equal(prev.AddDate(0, 0, 1)) {
			run++
		} else {
			run = 1
		}
		prev = day
		if run > st.LongestStreak {
			st.LongestStreak = run
		}
	}

	todayKey := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if run > 0 && (prev.Equal(todayKey) || prev.Equal(todayKey.AddDate(0, 0, -1))) {
		st.CurrentStreak = run
	}
	return st
}
