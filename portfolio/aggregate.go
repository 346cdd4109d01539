package portfolio

import (
	"sort"

	"github.com/tsiemasilo-dev/algohive/series"
)

// SymbolReturns converts per-symbol date→close maps into per-symbol
// date→return maps (close/prevClose - 1 over consecutive trading days).
// A day whose previous close is zero produces no return; symbols with
// fewer than two closes produce nothing.
func SymbolReturns(closes map[string]map[string]float64) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(closes))
	for sym, byDate := range closes {
		if len(byDate) < 2 {
			continue
		}
		dates := make([]string, 0, len(byDate))
		for d := range byDate {
			dates = append(dates, d)
		}
		sort.Strings(dates)

		daily := make(map[string]float64)
		prev := byDate[dates[0]]
		for _, d := range dates[1:] {
			cur := byDate[d]
			if prev != 0 {
				daily[d] = cur/prev - 1
			}
			prev = cur
		}
		if len(daily) > 0 {
			out[sym] = daily
		}
	}
	return out
}

// Aggregate combines per-symbol daily return series into one portfolio
// series. For each date in the union of all symbols' dates the weights
// are renormalized over the symbols actually reporting that day, so a
// partial-data day is not diluted by silent symbols. A date where no
// weighted symbol reports is dropped entirely.
//
// The second return value is each weighted symbol's most recent daily
// return, in decimal fractions.
func Aggregate(weights map[string]float64, bySymbol map[string]map[string]float64) ([]series.Point, map[string]float64) {
	allDates := make(map[string]struct{})
	for _, byDate := range bySymbol {
		for d := range byDate {
			allDates[d] = struct{}{}
		}
	}
	if len(allDates) == 0 || len(weights) == 0 {
		return nil, map[string]float64{}
	}

	dates := make([]string, 0, len(allDates))
	for d := range allDates {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]series.Point, 0, len(dates))
	for _, d := range dates {
		num, den := 0.0, 0.0
		for sym, w := range weights {
			r, ok := bySymbol[sym][d]
			if !ok {
				continue
			}
			num += w * r
			den += w
		}
		if den <= 0 {
			continue
		}
		out = append(out, series.Point{Date: d, Pct: num / den})
	}

	lastDaily := make(map[string]float64)
	for sym := range weights {
		byDate := bySymbol[sym]
		lastDate := ""
		for d := range byDate {
			if d > lastDate {
				lastDate = d
			}
		}
		if lastDate != "" {
			lastDaily[sym] = byDate[lastDate]
		}
	}
	return out, lastDaily
}
