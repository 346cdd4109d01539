package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tsiemasilo-dev/algohive/portfolio"
	"github.com/tsiemasilo-dev/algohive/series"
)

// AllocationRow mirrors one demo_allocations row.
type AllocationRow struct {
	ID              string
	StrategyID      string
	AmountInvested  float64
	StartDate       string
	SeriesAll       []series.ValuePoint
	Windows         series.ValueWindowSet
	LatestValue     *float64
	LatestReturnPct *float64
	UpdatedAt       time.Time
}

// AllocationMetrics is the derived payload for one allocation.
type AllocationMetrics struct {
	SeriesAll       []series.ValuePoint
	Windows         series.ValueWindowSet
	LatestValue     float64
	LatestReturnPct *float64
	UpdatedAt       time.Time
}

// UpsertAllocation creates or refreshes an allocation's identity fields.
func (s *Store) UpsertAllocation(a portfolio.Allocation) error {
	_, err := s.db.Exec(`
		INSERT INTO demo_allocations (id, strategy_id, amount_invested, start_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			strategy_id = excluded.strategy_id,
			amount_invested = excluded.amount_invested,
			start_date = excluded.start_date`,
		a.ID, a.StrategyID, a.AmountInvested, a.StartDate,
	)
	return err
}

const allocationColumns = `id, strategy_id, amount_invested, start_date,
	series_all, series_1d, series_1m, series_3m, series_6m, series_1y, series_3y, series_ytd,
	latest_value, latest_return_pct, updated_at`

// GetAllocation returns one allocation or ErrNotFound.
func (s *Store) GetAllocation(id string) (AllocationRow, error) {
	row := s.db.QueryRow(`SELECT `+allocationColumns+` FROM demo_allocations WHERE id = ?`, id)
	rec, err := scanAllocation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return AllocationRow{}, fmt.Errorf("allocation %q: %w", id, ErrNotFound)
	}
	return rec, err
}

// ListAllocations returns every allocation row, ordered by id.
func (s *Store) ListAllocations() ([]AllocationRow, error) {
	rows, err := s.db.Query(`SELECT ` + allocationColumns + ` FROM demo_allocations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AllocationRow
	for rows.Next() {
		rec, err := scanAllocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpdateAllocationMetrics writes the derived payload for one allocation.
// Updating an absent id is a no-op.
func (s *Store) UpdateAllocationMetrics(id string, m AllocationMetrics) error {
	var latestReturn any
	if m.LatestReturnPct != nil {
		latestReturn = *m.LatestReturnPct
	}
	_, err := s.db.Exec(`
		UPDATE demo_allocations SET
			series_all = ?,
			series_1d = ?, series_1m = ?, series_3m = ?, series_6m = ?,
			series_1y = ?, series_3y = ?, series_ytd = ?,
			latest_value = ?,
			latest_return_pct = ?,
			updated_at = ?
		WHERE id = ?`,
		toJSON(m.SeriesAll),
		toJSON(m.Windows.Series1D), toJSON(m.Windows.Series1M), toJSON(m.Windows.Series3M), toJSON(m.Windows.Series6M),
		toJSON(m.Windows.Series1Y), toJSON(m.Windows.Series3Y), toJSON(m.Windows.SeriesYTD),
		m.LatestValue,
		latestReturn,
		m.UpdatedAt,
		id,
	)
	return err
}

func scanAllocation(sc scanner) (AllocationRow, error) {
	var (
		rec                            AllocationRow
		all, d1, m1, m3, m6, y1, y3    string
		ytd                            string
		latestValue, latestReturn      sql.NullFloat64
		updated                        sql.NullTime
	)
	err := sc.Scan(&rec.ID, &rec.StrategyID, &rec.AmountInvested, &rec.StartDate,
		&all, &d1, &m1, &m3, &m6, &y1, &y3, &ytd,
		&latestValue, &latestReturn, &updated)
	if err != nil {
		return AllocationRow{}, err
	}

	rec.SeriesAll = fromJSON[[]series.ValuePoint](all)
	rec.Windows = series.ValueWindowSet{
		Series1D:  fromJSON[[]series.ValuePoint](d1),
		Series1M:  fromJSON[[]series.ValuePoint](m1),
		Series3M:  fromJSON[[]series.ValuePoint](m3),
		Series6M:  fromJSON[[]series.ValuePoint](m6),
		Series1Y:  fromJSON[[]series.ValuePoint](y1),
		Series3Y:  fromJSON[[]series.ValuePoint](y3),
		SeriesYTD: fromJSON[[]series.ValuePoint](ytd),
	}
	if latestValue.Valid {
		rec.LatestValue = &latestValue.Float64
	}
	if latestReturn.Valid {
		rec.LatestReturnPct = &latestReturn.Float64
	}
	if updated.Valid {
		rec.UpdatedAt = updated.Time
	}
	return rec, nil
}

// Run is one engine pass recorded for auditability.
type Run struct {
	RunID              string
	StartedAt          time.Time
	FinishedAt         time.Time
	StrategiesUpdated  int
	AllocationsUpdated int
	Errors             int
}

// RecordRun inserts one engine-pass audit row.
func (s *Store) RecordRun(r Run) error {
	_, err := s.db.Exec(`
		INSERT INTO engine_runs
		(run_id, started_at, finished_at, strategies_updated, allocations_updated, errors)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.RunID, r.StartedAt, r.FinishedAt, r.StrategiesUpdated, r.AllocationsUpdated, r.Errors,
	)
	return err
}

// ListRuns returns the most recent engine passes, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, started_at, finished_at, strategies_updated, allocations_updated, errors
		FROM engine_runs
		ORDER BY run_id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.RunID, &r.StartedAt, &r.FinishedAt,
			&r.StrategiesUpdated, &r.AllocationsUpdated, &r.Errors); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
