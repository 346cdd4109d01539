// Package series holds the canonical date-keyed return series and the
// derived slices every dashboard view is built from. Dates are ISO-8601
// calendar days; pct values are decimal fractions (0.01 == 1%).
package series

import (
	"sort"
	"time"
)

// DateFormat is the canonical day format. Lexicographic order on these
// strings is chronological order.
const DateFormat = "2006-01-02"

// Point is one daily return of the canonical series.
type Point struct {
	Date string  `json:"date"`
	Pct  float64 `json:"pct"`
}

// ValuePoint is one daily account value, used by allocation value paths.
type ValuePoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// ParseDate parses a canonical day string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateFormat, s)
}

// Day formats t as a canonical day string.
func Day(t time.Time) string { return t.UTC().Format(DateFormat) }

// Merge overlays updates onto base, keyed by date. Updates win on a date
// collision so a same-day refresh replaces the stored value. The result
// is date-ascending with unique dates; merging the same updates twice is
// identical to merging them once.
func Merge(base, updates []Point) []Point {
	m := make(map[string]float64, len(base)+len(updates))
	for _, p := range base {
		if p.Date == "" {
			continue
		}
		m[p.Date] = p.Pct
	}
	for _, p := range updates {
		if p.Date == "" {
			continue
		}
		m[p.Date] = p.Pct
	}

	out := make([]Point, 0, len(m))
	for d, pct := range m {
		out = append(out, Point{Date: d, Pct: pct})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
