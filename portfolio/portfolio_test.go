package portfolio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsiemasilo-dev/algohive/series"
)

func TestWeights(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		holdings []Holding
		want     map[string]float64
	}{
		{
			name: "renormalized",
			holdings: []Holding{
				{Symbol: "AAPL", WeightPct: 30},
				{Symbol: "MSFT", WeightPct: 20},
			},
			want: map[string]float64{"AAPL": 0.6, "MSFT": 0.4},
		},
		{
			name: "non_positive_dropped",
			holdings: []Holding{
				{Symbol: "AAPL", WeightPct: 50},
				{Symbol: "SHRT", WeightPct: -10},
				{Symbol: "ZERO", WeightPct: 0},
			},
			want: map[string]float64{"AAPL": 1},
		},
		{
			name: "duplicate_symbols_summed",
			holdings: []Holding{
				{Symbol: "AAPL", WeightPct: 25},
				{Symbol: "AAPL", WeightPct: 25},
				{Symbol: "MSFT", WeightPct: 50},
			},
			want: map[string]float64{"AAPL": 0.5, "MSFT": 0.5},
		},
		{
			name:     "all_zero_means_empty",
			holdings: []Holding{{Symbol: "AAPL", WeightPct: 0}},
			want:     map[string]float64{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Weights(tt.holdings)
			require.Len(t, got, len(tt.want))
			for sym, w := range tt.want {
				assert.InDelta(t, w, got[sym], 1e-9, sym)
			}
		})
	}
}

func TestSymbolReturns(t *testing.T) {
	t.Parallel()

	got := SymbolReturns(map[string]map[string]float64{
		"AAPL": {
			"2024-01-01": 100,
			"2024-01-02": 110,
			"2024-01-03": 99,
		},
		"ZERO": {
			"2024-01-01": 0,
			"2024-01-02": 10,
		},
		"LONE": {"2024-01-01": 50},
	})

	require.Contains(t, got, "AAPL")
	assert.InDelta(t, 0.10, got["AAPL"]["2024-01-02"], 1e-9)
	assert.InDelta(t, -0.10, got["AAPL"]["2024-01-03"], 1e-9)

	assert.NotContains(t, got, "ZERO", "a zero previous close yields no return")
	assert.NotContains(t, got, "LONE", "one close is not enough for a return")
}

func TestAggregateRenormalizesOverReportingSymbols(t *testing.T) {
	t.Parallel()

	weights := map[string]float64{"A": 0.6, "B": 0.4}
	bySymbol := map[string]map[string]float64{
		"A": {"2024-01-02": 0.02},
		"B": {"2024-01-03": 0.01},
	}

	pts, _ := Aggregate(weights, bySymbol)
	require.Len(t, pts, 2)

	assert.Equal(t, "2024-01-02", pts[0].Date)
	assert.InDelta(t, 0.02, pts[0].Pct, 1e-9,
		"only A reports: its return carries full weight, not 0.6*0.02")
	assert.InDelta(t, 0.01, pts[1].Pct, 1e-9)
}

func TestAggregateBothReporting(t *testing.T) {
	t.Parallel()

	weights := map[string]float64{"A": 0.6, "B": 0.4}
	bySymbol := map[string]map[string]float64{
		"A": {"2024-01-02": 0.02},
		"B": {"2024-01-02": -0.01},
	}

	pts, last := Aggregate(weights, bySymbol)
	require.Len(t, pts, 1)
	assert.InDelta(t, 0.6*0.02+0.4*-0.01, pts[0].Pct, 1e-9)
	assert.InDelta(t, 0.02, last["A"], 1e-9)
	assert.InDelta(t, -0.01, last["B"], 1e-9)
}

func TestAggregateDropsZeroWeightDates(t *testing.T) {
	t.Parallel()

	weights := map[string]float64{"A": 1}
	bySymbol := map[string]map[string]float64{
		"UNWEIGHTED": {"2024-01-02": 0.5},
	}

	pts, _ := Aggregate(weights, bySymbol)
	assert.Empty(t, pts, "a date with zero reporting weight is dropped, not zero-filled")
}

func TestAggregateEmptyInputs(t *testing.T) {
	t.Parallel()

	pts, last := Aggregate(nil, nil)
	assert.Empty(t, pts)
	assert.Empty(t, last)
}

func TestRefreshDailyChange(t *testing.T) {
	t.Parallel()

	holdings := []Holding{
		{Symbol: "AAPL", WeightPct: 60},
		{Symbol: "GONE", WeightPct: 40},
	}
	got := RefreshDailyChange(holdings, map[string]float64{"AAPL": 0.03})

	require.NotNil(t, got[0].DailyChangePct)
	assert.InDelta(t, 3.0, *got[0].DailyChangePct, 1e-9, "stored in percent units")
	assert.Nil(t, got[1].DailyChangePct)
}

func TestValuePath(t *testing.T) {
	t.Parallel()

	alloc := Allocation{ID: "al-1", AmountInvested: 1000, StartDate: "2024-01-02"}
	rets := []series.Point{
		{Date: "2024-01-01", Pct: 0.50}, // before start, skipped
		{Date: "2024-01-02", Pct: 0.10},
		{Date: "2024-01-03", Pct: -0.05},
	}

	path := ValuePath(alloc, rets, "2024-06-01")
	require.Len(t, path, 2)
	assert.Equal(t, series.ValuePoint{Date: "2024-01-02", Value: 1100}, path[0])
	assert.Equal(t, series.ValuePoint{Date: "2024-01-03", Value: 1045}, path[1])
}

func TestValuePathNothingInRange(t *testing.T) {
	t.Parallel()

	alloc := Allocation{AmountInvested: 1000, StartDate: "2024-05-01"}
	path := ValuePath(alloc, []series.Point{{Date: "2024-01-02", Pct: 0.1}}, "2024-06-01")
	assert.Empty(t, path)
}

func TestLatestReturn(t *testing.T) {
	t.Parallel()

	r := LatestReturn(1000, 1090)
	require.NotNil(t, r)
	assert.InDelta(t, 0.09, *r, 1e-9)

	assert.Nil(t, LatestReturn(0, 500))
}
