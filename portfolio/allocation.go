package portfolio

import (
	"math"

	"github.com/tsiemasilo-dev/algohive/series"
)

// Allocation is a demo account invested into one strategy from a start
// date.
type Allocation struct {
	ID             string
	StrategyID     string
	AmountInvested float64
	StartDate      string
}

// ValuePath compounds the invested amount through the strategy's daily
// returns from the allocation's start date through today. The path is
// rebuilt from scratch every run; values are rounded to cents.
func ValuePath(a Allocation, strategyReturns []series.Point, today string) []series.ValuePoint {
	var out []series.ValuePoint
	value := a.AmountInvested
	for _, p := range strategyReturns {
		if p.Date < a.StartDate || p.Date > today {
			continue
		}
		value *= 1 + p.Pct
		out = append(out, series.ValuePoint{
			Date:  p.Date,
			Value: math.Round(value*100) / 100,
		})
	}
	return out
}

// LatestReturn is the allocation's cumulative return in decimal
// fractions, nil when the invested amount is not positive.
func LatestReturn(invested, latestValue float64) *float64 {
	if invested <= 0 {
		return nil
	}
	r := latestValue/invested - 1
	return &r
}
