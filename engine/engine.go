// Package engine runs the metrics update passes: per-strategy series
// refresh, demo allocation revaluation, and the fixed-interval
// scheduler. Entities are processed sequentially; one entity failing is
// logged and counted, never fatal to the pass.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/tsiemasilo-dev/algohive/deal"
	"github.com/tsiemasilo-dev/algohive/ledger"
	"github.com/tsiemasilo-dev/algohive/marketdata"
	"github.com/tsiemasilo-dev/algohive/perf"
	"github.com/tsiemasilo-dev/algohive/portfolio"
	"github.com/tsiemasilo-dev/algohive/retry"
	"github.com/tsiemasilo-dev/algohive/series"
	"github.com/tsiemasilo-dev/algohive/store"
)

// Recognized values of a strategy's data_source column. Anything else
// falls back to the bars path.
const (
	DataSourceBars     = "bars"
	DataSourceTerminal = "terminal"
)

// DefaultLookbackDays bounds how far back the deal-history window and
// the initial bar fetch reach.
const DefaultLookbackDays = 3 * 365

// MetricsStore is the slice of the row store the engine needs.
type MetricsStore interface {
	ListStrategies() ([]store.StrategyRow, error)
	GetStrategy(id string) (store.StrategyRow, error)
	UpdateStrategyMetrics(id string, m store.Metrics) error
	ListAllocations() ([]store.AllocationRow, error)
	UpdateAllocationMetrics(id string, m store.AllocationMetrics) error
	RecordRun(r store.Run) error
}

// BarSource provides daily price bars for the holdings-weighted path.
type BarSource interface {
	GetDailyBars(ctx context.Context, symbols []string, from, to time.Time) (map[string][]marketdata.Bar, error)
}

// Engine wires the sources to the store and drives update passes.
type Engine struct {
	Store MetricsStore
	Bars  BarSource

	// Deals opens terminal sessions for the deal-history path. Nil
	// disables that path; terminal strategies then fail per entity.
	Deals deal.SessionFactory

	Retry        retry.Policy
	LookbackDays int
	Log          *slog.Logger
	Now          func() time.Time
}

// New returns an engine with default retry policy, lookback and clock.
func New(st MetricsStore, bars BarSource, deals deal.SessionFactory) *Engine {
	return &Engine{
		Store:        st,
		Bars:         bars,
		Deals:        deals,
		Retry:        retry.Default,
		LookbackDays: DefaultLookbackDays,
		Log:          slog.Default(),
		Now:          time.Now,
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *Engine) lookback() int {
	if e.LookbackDays > 0 {
		return e.LookbackDays
	}
	return DefaultLookbackDays
}

func (e *Engine) log() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}

// UpdateStrategy refreshes one strategy's series and derived metrics,
// routed by its data source.
func (e *Engine) UpdateStrategy(ctx context.Context, row store.StrategyRow) error {
	switch row.DataSource {
	case DataSourceTerminal:
		return e.updateFromTerminal(ctx, row)
	default:
		return e.updateFromBars(ctx, row)
	}
}

// updateFromBars is the holdings-weighted path: portfolio weights from
// the stored holdings, per-symbol daily returns from price bars, one
// weighted series merged into the persisted one.
func (e *Engine) updateFromBars(ctx context.Context, row store.StrategyRow) error {
	now := e.now()

	weights := portfolio.Weights(row.Holdings)
	if len(weights) == 0 {
		e.log().Info("no positive holdings, skipping", "strategy", row.StrategyID)
		return nil
	}

	bars, err := e.Bars.GetDailyBars(ctx, portfolio.Symbols(weights), e.barStart(row.SeriesAll, now), now)
	if err != nil {
		return fmt.Errorf("fetch bars: %w", err)
	}

	closes := marketdata.DailyCloses(bars)
	points, lastDaily := portfolio.Aggregate(weights, portfolio.SymbolReturns(closes))
	merged := series.Merge(row.SeriesAll, points)

	m := e.derive(merged, series.MonthlyFromReturns(merged), now)
	m.Holdings = portfolio.RefreshDailyChange(row.Holdings, lastDaily)
	if err := e.Store.UpdateStrategyMetrics(row.StrategyID, m); err != nil {
		return fmt.Errorf("store metrics: %w", err)
	}

	e.log().Info("strategy updated", "strategy", row.StrategyID,
		"source", DataSourceBars, "new_points", len(points), "asof", m.AsOfDate)
	return nil
}

// barStart picks the bar fetch start: the last stored date when the
// series has one (so its close anchors the next day's return), otherwise
// the full lookback window.
func (e *Engine) barStart(all []series.Point, now time.Time) time.Time {
	if len(all) > 0 {
		if t, err := series.ParseDate(all[len(all)-1].Date); err == nil {
			return t
		}
	}
	return now.AddDate(0, 0, -e.lookback())
}

// updateFromTerminal is the deal-history path: rebuild the equity ledger
// over the lookback window, sample it daily, and merge the resulting
// return series.
func (e *Engine) updateFromTerminal(ctx context.Context, row store.StrategyRow) error {
	now := e.now()
	windowStart := now.AddDate(0, 0, -e.lookback())

	start, rows, err := e.buildLedger(ctx, row.Account, windowStart, now)
	if err != nil {
		return err
	}

	obs := make([]series.Observation, 0, len(rows)+1)
	obs = append(obs, series.Observation{Time: windowStart, Value: start.InexactFloat64()})
	for _, r := range rows {
		obs = append(obs, series.Observation{Time: r.EffectiveTime(), Value: r.RunningBalance.InexactFloat64()})
	}
	samples := series.SampleDaily(obs)
	merged := series.Merge(row.SeriesAll, series.Returns(samples))

	m := e.derive(merged, series.Monthly(samples), now)
	m.Holdings = row.Holdings
	if err := e.Store.UpdateStrategyMetrics(row.StrategyID, m); err != nil {
		return fmt.Errorf("store metrics: %w", err)
	}

	e.log().Info("strategy updated", "strategy", row.StrategyID,
		"source", DataSourceTerminal, "ledger_rows", len(rows), "asof", m.AsOfDate)
	return nil
}

// Ledger rebuilds the account's equity ledger over the lookback window,
// for export. Returns the starting balance and the ordered rows.
func (e *Engine) Ledger(ctx context.Context, account string) (decimal.Decimal, []ledger.Row, error) {
	now := e.now()
	return e.buildLedger(ctx, account, now.AddDate(0, 0, -e.lookback()), now)
}

func (e *Engine) buildLedger(ctx context.Context, account string, windowStart, now time.Time) (decimal.Decimal, []ledger.Row, error) {
	if e.Deals == nil {
		return decimal.Decimal{}, nil, errors.New("terminal source not configured")
	}

	var (
		start decimal.Decimal
		rows  []ledger.Row
	)
	err := deal.WithSession(ctx, e.Deals, func(src deal.Source) error {
		rsrc := deal.RetryingSource{Source: src, Policy: e.Retry}

		// Everything strictly before the window fixes the starting balance.
		pre, err := rsrc.Fetch(ctx, time.Unix(0, 0).UTC(), windowStart)
		if err != nil {
			return fmt.Errorf("fetch pre-window deals: %w", err)
		}
		start = deal.NetSum(deal.Normalize(pre))

		raw, err := rsrc.Fetch(ctx, windowStart, now)
		if err != nil {
			return fmt.Errorf("fetch window deals: %w", err)
		}
		events := deal.Normalize(raw)

		matcher := ledger.NewMatcher(account)
		for _, ev := range events {
			matcher.Add(ev)
		}
		rows = ledger.Build(account, start, ledger.BalanceOps(events), matcher.Closed())
		return nil
	})
	if err != nil {
		return decimal.Decimal{}, nil, err
	}
	return start, rows, nil
}

// derive computes the stored payload from a full return series.
func (e *Engine) derive(all []series.Point, monthly []series.MonthlyReturn, now time.Time) store.Metrics {
	m := store.Metrics{
		SeriesAll:       all,
		Windows:         series.Windows(all, now),
		CalendarReturns: series.Calendar(all),
		MonthlyReturns:  monthly,
		UpdatedAt:       now,
	}
	if s, ok := perf.Compute(all, now); ok {
		m.PerfSummary = &s
	}
	if len(all) > 0 {
		m.AsOfDate = all[len(all)-1].Date
	}
	return m
}

// UpdateAllocation revalues one demo allocation against its strategy's
// current return series. The value path is rebuilt from scratch.
func (e *Engine) UpdateAllocation(a store.AllocationRow) error {
	now := e.now()

	strat, err := e.Store.GetStrategy(a.StrategyID)
	if err != nil {
		return fmt.Errorf("load strategy %s: %w", a.StrategyID, err)
	}

	alloc := portfolio.Allocation{
		ID:             a.ID,
		StrategyID:     a.StrategyID,
		AmountInvested: a.AmountInvested,
		StartDate:      a.StartDate,
	}
	path := portfolio.ValuePath(alloc, strat.SeriesAll, series.Day(now))

	latest := alloc.AmountInvested
	if len(path) > 0 {
		latest = path[len(path)-1].Value
	}

	err = e.Store.UpdateAllocationMetrics(a.ID, store.AllocationMetrics{
		SeriesAll:       path,
		Windows:         series.ValueWindows(path, now),
		LatestValue:     latest,
		LatestReturnPct: portfolio.LatestReturn(alloc.AmountInvested, latest),
		UpdatedAt:       now,
	})
	if err != nil {
		return fmt.Errorf("store allocation metrics: %w", err)
	}
	return nil
}

// RunOnce executes one full pass over every strategy and allocation and
// records an audit row. Per-entity failures are counted, not returned;
// only a failed strategy listing or a done context aborts the pass.
func (e *Engine) RunOnce(ctx context.Context) (store.Run, error) {
	run := store.Run{RunID: ulid.Make().String(), StartedAt: e.now()}

	strategies, err := e.Store.ListStrategies()
	if err != nil {
		return run, fmt.Errorf("list strategies: %w", err)
	}
	for _, row := range strategies {
		if ctx.Err() != nil {
			return run, ctx.Err()
		}
		if err := e.UpdateStrategy(ctx, row); err != nil {
			run.Errors++
			e.log().Error("strategy update failed", "strategy", row.StrategyID, "err", err)
			continue
		}
		run.StrategiesUpdated++
	}

	allocs, err := e.Store.ListAllocations()
	if err != nil {
		run.Errors++
		e.log().Error("list allocations failed", "err", err)
	}
	for _, a := range allocs {
		if ctx.Err() != nil {
			return run, ctx.Err()
		}
		if err := e.UpdateAllocation(a); err != nil {
			run.Errors++
			e.log().Error("allocation update failed", "allocation", a.ID, "err", err)
			continue
		}
		run.AllocationsUpdated++
	}

	run.FinishedAt = e.now()
	if err := e.Store.RecordRun(run); err != nil {
		e.log().Error("record run failed", "run", run.RunID, "err", err)
	}
	return run, nil
}

// Run executes passes on a fixed interval until the context is done.
// Passes do not overlap; the interval starts after a pass finishes.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	for {
		run, err := e.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			e.log().Error("pass failed", "err", err)
		} else {
			e.log().Info("pass complete", "run", run.RunID,
				"strategies", run.StrategiesUpdated,
				"allocations", run.AllocationsUpdated,
				"errors", run.Errors)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}
