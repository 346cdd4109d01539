package series

import (
	"sort"
	"time"
)

// Observation is a timestamped value feeding the daily sampler, typically
// a ledger row's running balance at its effective time.
type Observation struct {
	Time  time.Time
	Value float64
}

// Sample is one equity value on a calendar date.
type Sample struct {
	Date  string
	Value float64
}

// SampleDaily collapses observations to one value per calendar date.
// When several observations fall on the same date the latest one wins.
// Observations without a timestamp are dropped. The result is
// date-ascending; sampling an already-daily sequence returns it unchanged.
func SampleDaily(obs []Observation) []Sample {
	type lastSeen struct {
		t time.Time
		v float64
	}
	byDay := make(map[string]lastSeen, len(obs))
	for _, o := range obs {
		if o.Time.IsZero() {
			continue
		}
		d := Day(o.Time)
		if cur, ok := byDay[d]; !ok || !o.Time.Before(cur.t) {
			byDay[d] = lastSeen{t: o.Time, v: o.Value}
		}
	}

	out := make([]Sample, 0, len(byDay))
	for d, ls := range byDay {
		out = append(out, Sample{Date: d, Value: ls.v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Returns computes day-over-day percentage returns from daily equity
// samples. The first sample has no return, and a day whose prior value
// is zero produces no point.
func Returns(samples []Sample) []Point {
	var out []Point
	for i := 1; i < len(samples); i++ {
		prev := samples[i-1].Value
		if prev == 0 {
			continue
		}
		out = append(out, Point{Date: samples[i].Date, Pct: samples[i].Value/prev - 1})
	}
	return out
}
