package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsiemasilo-dev/algohive/deal"
	"github.com/tsiemasilo-dev/algohive/marketdata"
	"github.com/tsiemasilo-dev/algohive/portfolio"
	"github.com/tsiemasilo-dev/algohive/series"
	"github.com/tsiemasilo-dev/algohive/store"
)

type fakeStore struct {
	strategies  []store.StrategyRow
	allocations []store.AllocationRow

	strategyMetrics   map[string]store.Metrics
	allocationMetrics map[string]store.AllocationMetrics
	runs              []store.Run

	listStrategiesErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		strategyMetrics:   make(map[string]store.Metrics),
		allocationMetrics: make(map[string]store.AllocationMetrics),
	}
}

func (f *fakeStore) ListStrategies() ([]store.StrategyRow, error) {
	return f.strategies, f.listStrategiesErr
}

func (f *fakeStore) GetStrategy(id string) (store.StrategyRow, error) {
	for _, row := range f.strategies {
		if row.StrategyID != id {
			continue
		}
		if m, ok := f.strategyMetrics[id]; ok {
			row.SeriesAll = m.SeriesAll
		}
		return row, nil
	}
	return store.StrategyRow{}, store.ErrNotFound
}

func (f *fakeStore) UpdateStrategyMetrics(id string, m store.Metrics) error {
	f.strategyMetrics[id] = m
	return nil
}

func (f *fakeStore) ListAllocations() ([]store.AllocationRow, error) {
	return f.allocations, nil
}

func (f *fakeStore) UpdateAllocationMetrics(id string, m store.AllocationMetrics) error {
	f.allocationMetrics[id] = m
	return nil
}

func (f *fakeStore) RecordRun(r store.Run) error {
	f.runs = append(f.runs, r)
	return nil
}

type fakeBars struct {
	bars     map[string][]marketdata.Bar
	lastFrom time.Time
	lastTo   time.Time
}

func (f *fakeBars) GetDailyBars(_ context.Context, symbols []string, from, to time.Time) (map[string][]marketdata.Bar, error) {
	f.lastFrom, f.lastTo = from, to
	out := make(map[string][]marketdata.Bar)
	for _, sym := range symbols {
		if strings.HasPrefix(sym, "BAD") {
			return nil, errors.New("symbol rejected")
		}
		if bars, ok := f.bars[sym]; ok {
			out[sym] = bars
		}
	}
	return out, nil
}

type fakeSession struct {
	records []deal.Record
	closed  *bool
}

func (s fakeSession) Fetch(_ context.Context, from, to time.Time) ([]deal.Record, error) {
	var out []deal.Record
	for _, r := range s.records {
		if !r.Time.Before(from) && r.Time.Before(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s fakeSession) Close() error {
	*s.closed = true
	return nil
}

type fakeFactory struct {
	records []deal.Record
	closed  bool
}

func (f *fakeFactory) Acquire(context.Context) (deal.Session, error) {
	return fakeSession{records: f.records, closed: &f.closed}, nil
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
}

func holdingsStrategy(id string, symbols ...string) store.StrategyRow {
	var holdings []portfolio.Holding
	for _, sym := range symbols {
		holdings = append(holdings, portfolio.Holding{Symbol: sym, WeightPct: 100})
	}
	return store.StrategyRow{StrategyID: id, DataSource: DataSourceBars, Holdings: holdings}
}

func dayBar(date string, close float64) marketdata.Bar {
	return marketdata.Bar{Time: date + "T05:00:00Z", Close: close}
}

func TestUpdateStrategyFromBars(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	bars := &fakeBars{bars: map[string][]marketdata.Bar{
		"AAPL": {
			dayBar("2024-06-05", 100),
			dayBar("2024-06-06", 110),
			dayBar("2024-06-07", 99),
		},
	}}
	e := New(st, bars, nil)
	e.Now = fixedNow

	row := holdingsStrategy("alpha", "AAPL")
	require.NoError(t, e.UpdateStrategy(context.Background(), row))

	m, ok := st.strategyMetrics["alpha"]
	require.True(t, ok)

	require.Len(t, m.SeriesAll, 2)
	assert.Equal(t, "2024-06-06", m.SeriesAll[0].Date)
	assert.InDelta(t, 0.10, m.SeriesAll[0].Pct, 1e-9)
	assert.Equal(t, "2024-06-07", m.SeriesAll[1].Date)
	assert.InDelta(t, -0.10, m.SeriesAll[1].Pct, 1e-9)

	assert.Equal(t, "2024-06-07", m.AsOfDate)
	require.Len(t, m.Windows.Series1D, 1)
	assert.Equal(t, "2024-06-07", m.Windows.Series1D[0].Date)
	require.NotNil(t, m.PerfSummary)

	require.Len(t, m.Holdings, 1)
	require.NotNil(t, m.Holdings[0].DailyChangePct)
	assert.InDelta(t, -10.0, *m.Holdings[0].DailyChangePct, 1e-9)

	require.Len(t, m.MonthlyReturns, 1)
	assert.InDelta(t, 1.10*0.90-1, m.MonthlyReturns[0].Pct, 1e-9)
}

func TestUpdateStrategyResumesFromLastStoredDate(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	bars := &fakeBars{bars: map[string][]marketdata.Bar{
		"AAPL": {
			dayBar("2024-06-05", 100),
			dayBar("2024-06-06", 110),
		},
	}}
	e := New(st, bars, nil)
	e.Now = fixedNow

	row := holdingsStrategy("alpha", "AAPL")
	row.SeriesAll = []series.Point{
		{Date: "2024-06-04", Pct: 0.02},
		{Date: "2024-06-05", Pct: 0.01},
	}
	require.NoError(t, e.UpdateStrategy(context.Background(), row))

	// fetch is anchored on the last stored date so its close seeds the
	// next day's return
	assert.Equal(t, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), bars.lastFrom)

	m := st.strategyMetrics["alpha"]
	require.Len(t, m.SeriesAll, 3)
	assert.Equal(t, "2024-06-04", m.SeriesAll[0].Date)
	assert.InDelta(t, 0.02, m.SeriesAll[0].Pct, 1e-9)
	assert.Equal(t, "2024-06-06", m.SeriesAll[2].Date)
	assert.InDelta(t, 0.10, m.SeriesAll[2].Pct, 1e-9)
}

func TestUpdateStrategyNoPositiveHoldingsSkips(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	e := New(st, &fakeBars{}, nil)
	e.Now = fixedNow

	row := store.StrategyRow{
		StrategyID: "empty",
		DataSource: DataSourceBars,
		Holdings:   []portfolio.Holding{{Symbol: "AAPL", WeightPct: 0}},
	}
	require.NoError(t, e.UpdateStrategy(context.Background(), row))
	assert.Empty(t, st.strategyMetrics)
}

func TestUpdateStrategyFromTerminal(t *testing.T) {
	t.Parallel()

	factory := &fakeFactory{records: []deal.Record{
		// before the window: fixes the starting balance
		{Ticket: 1, Time: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC), Entry: "BALANCE", Profit: 1000},
		// inside the window
		{Ticket: 2, PositionID: 42, Time: time.Date(2024, 5, 12, 10, 0, 0, 0, time.UTC),
			Symbol: "EURUSD", Entry: "IN", Side: "BUY", Price: 1.08, Volume: 1},
		{Ticket: 3, PositionID: 42, Time: time.Date(2024, 5, 13, 15, 0, 0, 0, time.UTC),
			Symbol: "EURUSD", Entry: "OUT", Side: "SELL", Price: 1.09, Volume: 1, Profit: 50},
		{Ticket: 4, Time: time.Date(2024, 5, 15, 9, 0, 0, 0, time.UTC), Entry: "BALANCE", Profit: 200},
	}}

	st := newFakeStore()
	e := New(st, &fakeBars{}, factory)
	e.Now = fixedNow
	e.LookbackDays = 30

	row := store.StrategyRow{StrategyID: "live", DataSource: DataSourceTerminal, Account: "ACC-1"}
	require.NoError(t, e.UpdateStrategy(context.Background(), row))
	assert.True(t, factory.closed, "session must be closed after the update")

	m, ok := st.strategyMetrics["live"]
	require.True(t, ok)

	// 1000 -> 1050 on the position close, -> 1250 on the deposit
	require.Len(t, m.SeriesAll, 2)
	assert.Equal(t, "2024-05-13", m.SeriesAll[0].Date)
	assert.InDelta(t, 0.05, m.SeriesAll[0].Pct, 1e-9)
	assert.Equal(t, "2024-05-15", m.SeriesAll[1].Date)
	assert.InDelta(t, 1250.0/1050.0-1, m.SeriesAll[1].Pct, 1e-9)

	assert.Equal(t, "2024-05-15", m.AsOfDate)
	require.Len(t, m.MonthlyReturns, 1)
	assert.InDelta(t, 0.25, m.MonthlyReturns[0].Pct, 1e-9)
}

func TestUpdateStrategyTerminalNotConfigured(t *testing.T) {
	t.Parallel()

	e := New(newFakeStore(), &fakeBars{}, nil)
	e.Now = fixedNow

	row := store.StrategyRow{StrategyID: "live", DataSource: DataSourceTerminal, Account: "ACC-1"}
	err := e.UpdateStrategy(context.Background(), row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "terminal source not configured")
}

func TestUpdateAllocation(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	st.strategies = []store.StrategyRow{{StrategyID: "alpha"}}
	st.strategyMetrics["alpha"] = store.Metrics{SeriesAll: []series.Point{
		{Date: "2024-06-05", Pct: 0.05},
		{Date: "2024-06-06", Pct: 0.10},
		{Date: "2024-06-07", Pct: -0.10},
	}}
	e := New(st, &fakeBars{}, nil)
	e.Now = fixedNow

	err := e.UpdateAllocation(store.AllocationRow{
		ID:             "demo-1",
		StrategyID:     "alpha",
		AmountInvested: 1000,
		StartDate:      "2024-06-06",
	})
	require.NoError(t, err)

	m, ok := st.allocationMetrics["demo-1"]
	require.True(t, ok)
	require.Len(t, m.SeriesAll, 2)
	assert.Equal(t, 1100.0, m.SeriesAll[0].Value)
	assert.Equal(t, 990.0, m.SeriesAll[1].Value)
	assert.Equal(t, 990.0, m.LatestValue)
	require.NotNil(t, m.LatestReturnPct)
	assert.InDelta(t, -0.01, *m.LatestReturnPct, 1e-9)
}

func TestUpdateAllocationUnknownStrategy(t *testing.T) {
	t.Parallel()

	e := New(newFakeStore(), &fakeBars{}, nil)
	e.Now = fixedNow

	err := e.UpdateAllocation(store.AllocationRow{ID: "demo-1", StrategyID: "ghost"})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRunOnceIsolatesFailures(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	st.strategies = []store.StrategyRow{
		holdingsStrategy("good", "AAPL"),
		holdingsStrategy("bad", "BADSYM"),
	}
	bars := &fakeBars{bars: map[string][]marketdata.Bar{
		"AAPL": {dayBar("2024-06-06", 100), dayBar("2024-06-07", 101)},
	}}
	e := New(st, bars, nil)
	e.Now = fixedNow

	run, err := e.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, run.StrategiesUpdated)
	assert.Equal(t, 1, run.Errors)
	assert.Len(t, run.RunID, 26)
	assert.False(t, run.FinishedAt.IsZero())

	_, ok := st.strategyMetrics["good"]
	assert.True(t, ok, "healthy strategy still updated")
	_, ok = st.strategyMetrics["bad"]
	assert.False(t, ok)

	require.Len(t, st.runs, 1)
	assert.Equal(t, run.RunID, st.runs[0].RunID)
}

func TestRunOnceListFailureAborts(t *testing.T) {
	t.Parallel()

	st := newFakeStore()
	st.listStrategiesErr = errors.New("db locked")
	e := New(st, &fakeBars{}, nil)
	e.Now = fixedNow

	_, err := e.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list strategies")
	assert.Empty(t, st.runs)
}

func TestRunStopsWhenContextDone(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := New(newFakeStore(), &fakeBars{}, nil)
	e.Now = fixedNow

	err := e.Run(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
