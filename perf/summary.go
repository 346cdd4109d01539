// Package perf derives a stateless performance snapshot from a daily
// return series. The snapshot is recomputed from scratch each run and
// never updated incrementally.
package perf

import (
	"math"
	"sort"
	"time"

	"github.com/tsiemasilo-dev/algohive/series"
)

// Classification thresholds. These are tuned policy, not structural
// invariants: risk level cuts on daily volatility in decimal fractions,
// stability tier cuts on the share of losing days in percent.
const (
	conservativeVol = 0.005
	balancedVol     = 0.012

	stableNegShare = 40.0
	mixedNegShare  = 55.0

	// typicalDayWindow is the trailing count of days whose mean absolute
	// return defines the "typical day" stability component.
	typicalDayWindow = 25
)

// Components are the inputs behind the stability score, kept for the
// dashboard's explanation panel. Percent units.
type Components struct {
	TypicalDayPct float64 `json:"typical_day_pct"`
	WorstDayPct   float64 `json:"worst_day_pct"`
	K             int     `json:"k"`
}

// Summary is the performance snapshot of a return series. All *_pct
// fields are percent units (9.0 == 9%); the input series stays in
// decimal fractions.
type Summary struct {
	RiskLevel           string     `json:"risk_level"`
	StabilityTier       string     `json:"stability_tier"`
	TotalDays           int        `json:"total_days"`
	BestDayPct          float64    `json:"best_day_pct"`
	BestDayDate         string     `json:"best_day_date"`
	WorstDayPct         float64    `json:"worst_day_pct"`
	WorstDayDate        string     `json:"worst_day_date"`
	DaysPositive        int        `json:"days_positive"`
	DaysNegative        int        `json:"days_negative"`
	PositiveDaysPct     float64    `json:"positive_days_pct"`
	NegativeDaysPct     float64    `json:"negative_days_pct"`
	AvgDailyReturnPct   float64    `json:"avg_daily_return_pct"`
	YTDReturnPct        float64    `json:"ytd_return_pct"`
	StabilityNumeric    float64    `json:"stability_numeric"`
	StabilityComponents Components `json:"stability_components"`
}

// Compute builds the snapshot from a full return series. Points with an
// unparseable date are skipped, and the rest are sorted by date so the
// trailing typical-day window is always the most recent days regardless
// of input order; ok is false when nothing usable remains.
func Compute(all []series.Point, now time.Time) (Summary, bool) {
	pts := make([]series.Point, 0, len(all))
	for _, p := range all {
		if _, err := series.ParseDate(p.Date); err != nil {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) == 0 {
		return Summary{}, false
	}
	sort.Slice(pts, func(i, j int) bool { return pts[i].Date < pts[j].Date })

	dates := make([]string, 0, len(pts))
	rets := make([]float64, 0, len(pts))
	for _, p := range pts {
		dates = append(dates, p.Date)
		rets = append(rets, p.Pct)
	}

	total := len(rets)
	bestIdx, worstIdx := 0, 0
	sum := 0.0
	positive, negative := 0, 0
	for i, r := range rets {
		if r > rets[bestIdx] {
			bestIdx = i
		}
		if r < rets[worstIdx] {
			worstIdx = i
		}
		sum += r
		if r > 0 {
			positive++
		} else if r < 0 {
			negative++
		}
	}

	mean := sum / float64(total)
	positivePct := float64(positive) / float64(total) * 100
	negativePct := float64(negative) / float64(total) * 100
	vol := stddev(rets, mean)

	ytdStart := series.Day(time.Date(now.UTC().Year(), time.January, 1, 0, 0, 0, 0, time.UTC))
	growth := 1.0
	for i, r := range rets {
		if dates[i] >= ytdStart {
			growth *= 1 + r
		}
	}

	tail := rets
	if len(tail) > typicalDayWindow {
		tail = tail[len(tail)-typicalDayWindow:]
	}
	typical := 0.0
	for _, r := range tail {
		typical += math.Abs(r)
	}
	typical /= float64(len(tail))

	stability := 80 - math.Min(vol*1000, 50) + (positivePct-negativePct)*0.1
	stability = math.Max(0, math.Min(100, stability))

	return Summary{
		RiskLevel:         riskLevel(vol),
		StabilityTier:     stabilityTier(negativePct),
		TotalDays:         total,
		BestDayPct:        rets[bestIdx] * 100,
		BestDayDate:       dates[bestIdx],
		WorstDayPct:       rets[worstIdx] * 100,
		WorstDayDate:      dates[worstIdx],
		DaysPositive:      positive,
		DaysNegative:      negative,
		PositiveDaysPct:   positivePct,
		NegativeDaysPct:   negativePct,
		AvgDailyReturnPct: mean * 100,
		YTDReturnPct:      (growth - 1) * 100,
		StabilityNumeric:  stability,
		StabilityComponents: Components{
			TypicalDayPct: typical * 100,
			WorstDayPct:   rets[worstIdx] * 100,
			K:             typicalDayWindow,
		},
	}, true
}

// stddev is the sample standard deviation; 0 with fewer than two points.
func stddev(rets []float64, mean float64) float64 {
	if len(rets) < 2 {
		return 0
	}
	var sq float64
	for _, r := range rets {
		d := r - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(rets)-1))
}

func riskLevel(vol float64) string {
	switch {
	case vol < conservativeVol:
		return "Conservative"
	case vol < balancedVol:
		return "Balanced"
	default:
		return "Aggressive"
	}
}

func stabilityTier(negativePct float64) string {
	switch {
	case negativePct < stableNegShare:
		return "Stable"
	case negativePct < mixedNegShare:
		return "Mixed"
	default:
		return "Volatile"
	}
}
