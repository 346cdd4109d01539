package series

// CalendarReturn is one day's return in percent units, shaped for the
// dashboard's calendar view.
type CalendarReturn struct {
	Year  int     `json:"year"`
	Month int     `json:"month"`
	Day   int     `json:"day"`
	Pct   float64 `json:"pct"`
}

// Calendar converts a decimal-fraction return series into percent-unit
// calendar rows. Points with an unparseable date are dropped.
func Calendar(all []Point) []CalendarReturn {
	out := make([]CalendarReturn, 0, len(all))
	for _, p := range all {
		t, err := ParseDate(p.Date)
		if err != nil {
			continue
		}
		out = append(out, CalendarReturn{
			Year:  t.Year(),
			Month: int(t.Month()),
			Day:   t.Day(),
			Pct:   p.Pct * 100,
		})
	}
	return out
}
