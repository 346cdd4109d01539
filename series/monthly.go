package series

import "sort"

// MonthlyReturn is one calendar-month equity bucket.
type MonthlyReturn struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Pct   float64 `json:"pct"`
}

// Monthly groups daily equity samples into calendar-month buckets. A
// bucket's pct is last/first - 1 within the month, so a single-day month
// is 0. Buckets whose first equity is zero are skipped.
func Monthly(samples []Sample) []MonthlyReturn {
	type bucket struct {
		first, last float64
		firstDay    string
		lastDay     string
	}
	buckets := make(map[string]*bucket)
	for _, s := range samples {
		if len(s.Date) < 7 {
			continue
		}
		ym := s.Date[:7]
		b, ok := buckets[ym]
		if !ok {
			buckets[ym] = &bucket{first: s.Value, last: s.Value, firstDay: s.Date, lastDay: s.Date}
			continue
		}
		if s.Date < b.firstDay {
			b.first, b.firstDay = s.Value, s.Date
		}
		if s.Date > b.lastDay {
			b.last, b.lastDay = s.Value, s.Date
		}
	}

	keys := make([]string, 0, len(buckets))
	for ym := range buckets {
		keys = append(keys, ym)
	}
	sort.Strings(keys)

	out := make([]MonthlyReturn, 0, len(keys))
	for _, ym := range keys {
		b := buckets[ym]
		if b.first == 0 {
			continue
		}
		t, err := ParseDate(ym + "-01")
		if err != nil {
			continue
		}
		out = append(out, MonthlyReturn{
			Year:  t.Year(),
			Month: int(t.Month()),
			Pct:   b.last/b.first - 1,
		})
	}
	return out
}

// MonthlyFromReturns groups daily returns into calendar-month buckets by
// compounding, for series with no underlying equity values. A bucket's
// pct is the product of (1+r) over the month, minus one.
func MonthlyFromReturns(all []Point) []MonthlyReturn {
	buckets := make(map[string]float64)
	for _, p := range all {
		if len(p.Date) < 7 {
			continue
		}
		ym := p.Date[:7]
		g, ok := buckets[ym]
		if !ok {
			g = 1
		}
		buckets[ym] = g * (1 + p.Pct)
	}

	keys := make([]string, 0, len(buckets))
	for ym := range buckets {
		keys = append(keys, ym)
	}
	sort.Strings(keys)

	out := make([]MonthlyReturn, 0, len(keys))
	for _, ym := range keys {
		t, err := ParseDate(ym + "-01")
		if err != nil {
			continue
		}
		out = append(out, MonthlyReturn{
			Year:  t.Year(),
			Month: int(t.Month()),
			Pct:   buckets[ym] - 1,
		})
	}
	return out
}
