package series

import "time"

// WindowSet holds the standard trailing slices of a return series, each
// an ordered subsequence of the full series.
type WindowSet struct {
	Series1D  []Point `json:"series_1d"`
	Series1M  []Point `json:"series_1m"`
	Series3M  []Point `json:"series_3m"`
	Series6M  []Point `json:"series_6m"`
	Series1Y  []Point `json:"series_1y"`
	Series3Y  []Point `json:"series_3y"`
	SeriesYTD []Point `json:"series_ytd"`
}

// ValueWindowSet is the WindowSet shape over a value series.
type ValueWindowSet struct {
	Series1D  []ValuePoint `json:"series_1d"`
	Series1M  []ValuePoint `json:"series_1m"`
	Series3M  []ValuePoint `json:"series_3m"`
	Series6M  []ValuePoint `json:"series_6m"`
	Series1Y  []ValuePoint `json:"series_1y"`
	Series3Y  []ValuePoint `json:"series_3y"`
	SeriesYTD []ValuePoint `json:"series_ytd"`
}

type cutoffs struct {
	m1, m3, m6, y1, y3, ytd string
}

func cutoffsAt(now time.Time) cutoffs {
	today := now.UTC()
	return cutoffs{
		m1:  Day(today.AddDate(0, 0, -30)),
		m3:  Day(today.AddDate(0, 0, -90)),
		m6:  Day(today.AddDate(0, 0, -180)),
		y1:  Day(today.AddDate(0, 0, -365)),
		y3:  Day(today.AddDate(0, 0, -3*365)),
		ytd: Day(time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)),
	}
}

// from keeps points on or after the cutoff day (inclusive).
func from[P any](pts []P, day func(P) string, cutoff string) []P {
	out := make([]P, 0, len(pts))
	for _, p := range pts {
		if day(p) >= cutoff {
			out = append(out, p)
		}
	}
	return out
}

// last is the 1d window: exactly the most recent point, not a time cutoff.
func last[P any](pts []P) []P {
	if len(pts) == 0 {
		return []P{}
	}
	return pts[len(pts)-1:]
}

// Windows slices a full date-ascending return series at the standard
// cutoffs relative to now.
func Windows(all []Point, now time.Time) WindowSet {
	c := cutoffsAt(now)
	day := func(p Point) string { return p.Date }
	return WindowSet{
		Series1D:  last(all),
		Series1M:  from(all, day, c.m1),
		Series3M:  from(all, day, c.m3),
		Series6M:  from(all, day, c.m6),
		Series1Y:  from(all, day, c.y1),
		Series3Y:  from(all, day, c.y3),
		SeriesYTD: from(all, day, c.ytd),
	}
}

// ValueWindows is Windows over a value series.
func ValueWindows(all []ValuePoint, now time.Time) ValueWindowSet {
	c := cutoffsAt(now)
	day := func(p ValuePoint) string { return p.Date }
	return ValueWindowSet{
		Series1D:  last(all),
		Series1M:  from(all, day, c.m1),
		Series3M:  from(all, day, c.m3),
		Series6M:  from(all, day, c.m6),
		Series1Y:  from(all, day, c.y1),
		Series3Y:  from(all, day, c.y3),
		SeriesYTD: from(all, day, c.ytd),
	}
}
