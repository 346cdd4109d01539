package perf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsiemasilo-dev/algohive/series"
)

var june = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

func TestComputeEmpty(t *testing.T) {
	t.Parallel()

	_, ok := Compute(nil, june)
	assert.False(t, ok)

	_, ok = Compute([]series.Point{{Date: "junk", Pct: 1}}, june)
	assert.False(t, ok)
}

func TestComputeYTDIsCompounded(t *testing.T) {
	t.Parallel()

	s, ok := Compute([]series.Point{
		{Date: "2024-02-01", Pct: 0.10},
		{Date: "2024-02-02", Pct: 0.10},
	}, june)
	require.True(t, ok)
	assert.InDelta(t, 21.0, s.YTDReturnPct, 1e-9, "1.1*1.1-1 = 21%%, not 20%%")
}

func TestComputeYTDExcludesPriorYears(t *testing.T) {
	t.Parallel()

	s, ok := Compute([]series.Point{
		{Date: "2023-12-29", Pct: 5.0}, // prior year, must not count
		{Date: "2024-03-01", Pct: 0.10},
	}, june)
	require.True(t, ok)
	assert.InDelta(t, 10.0, s.YTDReturnPct, 1e-9)
}

func TestComputeBestWorstAndCounts(t *testing.T) {
	t.Parallel()

	s, ok := Compute([]series.Point{
		{Date: "2024-01-02", Pct: 0.01},
		{Date: "2024-01-03", Pct: -0.04},
		{Date: "2024-01-04", Pct: 0.025},
		{Date: "2024-01-05", Pct: 0},
	}, june)
	require.True(t, ok)

	assert.Equal(t, 4, s.TotalDays)
	assert.Equal(t, "2024-01-04", s.BestDayDate)
	assert.InDelta(t, 2.5, s.BestDayPct, 1e-9)
	assert.Equal(t, "2024-01-03", s.WorstDayDate)
	assert.InDelta(t, -4.0, s.WorstDayPct, 1e-9)

	assert.Equal(t, 2, s.DaysPositive)
	assert.Equal(t, 1, s.DaysNegative)
	assert.InDelta(t, 50.0, s.PositiveDaysPct, 1e-9)
	assert.InDelta(t, 25.0, s.NegativeDaysPct, 1e-9)
	assert.InDelta(t, -0.125, s.AvgDailyReturnPct, 1e-9)

	assert.Equal(t, typicalDayWindow, s.StabilityComponents.K)
	assert.InDelta(t, s.WorstDayPct, s.StabilityComponents.WorstDayPct, 1e-9)
}

func TestComputeUnorderedInput(t *testing.T) {
	t.Parallel()

	// 26 consecutive days with the chronologically first point (a big
	// 50% day) arriving last in the slice. The k=25 typical-day tail
	// covers the most recent 25 days, so that point must stay out of it.
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	var pts []series.Point
	for i := 1; i <= 25; i++ {
		pts = append(pts, series.Point{Date: series.Day(start.AddDate(0, 0, i)), Pct: 0.01})
	}
	pts = append(pts, series.Point{Date: series.Day(start), Pct: 0.5})

	s, ok := Compute(pts, june)
	require.True(t, ok)

	assert.Equal(t, 26, s.TotalDays)
	assert.Equal(t, "2024-01-01", s.BestDayDate)
	assert.InDelta(t, 1.0, s.StabilityComponents.TypicalDayPct, 1e-9,
		"typical day reflects the trailing 25 days, not arrival order")
}

func TestComputeSingleDayHasZeroVolatility(t *testing.T) {
	t.Parallel()

	s, ok := Compute([]series.Point{{Date: "2024-01-02", Pct: 0.001}}, june)
	require.True(t, ok)
	assert.Equal(t, "Conservative", s.RiskLevel)
	assert.Equal(t, "Stable", s.StabilityTier)
}

func TestRiskLevelThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vol  float64
		want string
	}{
		{"low_vol", 0.004, "Conservative"},
		{"mid_vol", 0.008, "Balanced"},
		{"high_vol", 0.02, "Aggressive"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, riskLevel(tt.vol))
		})
	}
}

func TestStabilityTierThresholds(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Stable", stabilityTier(10))
	assert.Equal(t, "Mixed", stabilityTier(45))
	assert.Equal(t, "Volatile", stabilityTier(70))
}

func TestStabilityNumericClipped(t *testing.T) {
	t.Parallel()

	// Wild swings: volatility penalty saturates, score stays in [0,100].
	pts := []series.Point{
		{Date: "2024-01-02", Pct: 0.5},
		{Date: "2024-01-03", Pct: -0.5},
		{Date: "2024-01-04", Pct: 0.5},
		{Date: "2024-01-05", Pct: -0.5},
	}
	s, ok := Compute(pts, june)
	require.True(t, ok)
	assert.GreaterOrEqual(t, s.StabilityNumeric, 0.0)
	assert.LessOrEqual(t, s.StabilityNumeric, 100.0)
}
