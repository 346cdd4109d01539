// Package store persists per-strategy metrics rows in SQLite. Each row
// is updated independently, last write wins; there are no transactional
// guarantees across rows.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/tsiemasilo-dev/algohive/perf"
	"github.com/tsiemasilo-dev/algohive/portfolio"
	"github.com/tsiemasilo-dev/algohive/series"
)

// ErrNotFound reports a missing row.
var ErrNotFound = errors.New("store: not found")

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// StrategyRow mirrors one strategy_metrics row with its JSON payloads
// decoded. A payload that fails to decode comes back empty rather than
// failing the read.
type StrategyRow struct {
	StrategyID      string
	Account         string
	DataSource      string
	Holdings        []portfolio.Holding
	SeriesAll       []series.Point
	Windows         series.WindowSet
	PerfSummary     *perf.Summary
	CalendarReturns []series.CalendarReturn
	MonthlyReturns  []series.MonthlyReturn
	AsOfDate        string
	UpdatedAt       time.Time
}

// Metrics is the derived payload written back after an update pass.
type Metrics struct {
	Holdings        []portfolio.Holding
	SeriesAll       []series.Point
	Windows         series.WindowSet
	PerfSummary     *perf.Summary
	CalendarReturns []series.CalendarReturn
	MonthlyReturns  []series.MonthlyReturn
	AsOfDate        string
	UpdatedAt       time.Time
}

// UpsertStrategy creates or refreshes a strategy's identity fields,
// leaving any previously computed metrics untouched.
func (s *Store) UpsertStrategy(id, account, dataSource string, holdings []portfolio.Holding) error {
	_, err := s.db.Exec(`
		INSERT INTO strategy_metrics (strategy_id, account, data_source, portfolio_holdings)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(strategy_id) DO UPDATE SET
			account = excluded.account,
			data_source = excluded.data_source,
			portfolio_holdings = excluded.portfolio_holdings`,
		id, account, dataSource, toJSON(holdings),
	)
	return err
}

const strategyColumns = `strategy_id, account, data_source, portfolio_holdings,
	series_all, series_1d, series_1m, series_3m, series_6m, series_1y, series_3y, series_ytd,
	perf_summary, calendar_returns, monthly_returns, asof_date, updated_at`

// GetStrategy returns one row or ErrNotFound.
func (s *Store) GetStrategy(id string) (StrategyRow, error) {
	row := s.db.QueryRow(`SELECT `+strategyColumns+` FROM strategy_metrics WHERE strategy_id = ?`, id)
	rec, err := scanStrategy(row)
	if errors.Is(err, sql.ErrNoRows) {
		return StrategyRow{}, fmt.Errorf("strategy %q: %w", id, ErrNotFound)
	}
	return rec, err
}

// ListStrategies returns every strategy row, ordered by id.
func (s *Store) ListStrategies() ([]StrategyRow, error) {
	rows, err := s.db.Query(`SELECT ` + strategyColumns + ` FROM strategy_metrics ORDER BY strategy_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StrategyRow
	for rows.Next() {
		rec, err := scanStrategy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpdateStrategyMetrics writes the derived payload for one strategy.
// Updating an absent id is a no-op.
func (s *Store) UpdateStrategyMetrics(id string, m Metrics) error {
	_, err := s.db.Exec(`
		UPDATE strategy_metrics SET
			portfolio_holdings = ?,
			series_all = ?,
			series_1d = ?, series_1m = ?, series_3m = ?, series_6m = ?,
			series_1y = ?, series_3y = ?, series_ytd = ?,
			perf_summary = ?,
			calendar_returns = ?,
			monthly_returns = ?,
			asof_date = ?,
			updated_at = ?
		WHERE strategy_id = ?`,
		toJSON(m.Holdings),
		toJSON(m.SeriesAll),
		toJSON(m.Windows.Series1D), toJSON(m.Windows.Series1M), toJSON(m.Windows.Series3M), toJSON(m.Windows.Series6M),
		toJSON(m.Windows.Series1Y), toJSON(m.Windows.Series3Y), toJSON(m.Windows.SeriesYTD),
		toJSON(m.PerfSummary),
		toJSON(m.CalendarReturns),
		toJSON(m.MonthlyReturns),
		m.AsOfDate,
		m.UpdatedAt,
		id,
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStrategy(sc scanner) (StrategyRow, error) {
	var (
		rec                                    StrategyRow
		holdings, all, d1, m1, m3, m6, y1, y3  string
		ytd, summary, calendar, monthly, asof  string
		updated                                sql.NullTime
	)
	err := sc.Scan(&rec.StrategyID, &rec.Account, &rec.DataSource, &holdings,
		&all, &d1, &m1, &m3, &m6, &y1, &y3, &ytd,
		&summary, &calendar, &monthly, &asof, &updated)
	if err != nil {
		return StrategyRow{}, err
	}

	rec.Holdings = fromJSON[[]portfolio.Holding](holdings)
	rec.SeriesAll = fromJSON[[]series.Point](all)
	rec.Windows = series.WindowSet{
		Series1D:  fromJSON[[]series.Point](d1),
		Series1M:  fromJSON[[]series.Point](m1),
		Series3M:  fromJSON[[]series.Point](m3),
		Series6M:  fromJSON[[]series.Point](m6),
		Series1Y:  fromJSON[[]series.Point](y1),
		Series3Y:  fromJSON[[]series.Point](y3),
		SeriesYTD: fromJSON[[]series.Point](ytd),
	}
	rec.PerfSummary = fromJSON[*perf.Summary](summary)
	rec.CalendarReturns = fromJSON[[]series.CalendarReturn](calendar)
	rec.MonthlyReturns = fromJSON[[]series.MonthlyReturn](monthly)
	rec.AsOfDate = asof
	if updated.Valid {
		rec.UpdatedAt = updated.Time
	}
	return rec, nil
}

func toJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// fromJSON decodes tolerantly: a malformed payload yields the zero value
// instead of failing the whole read, per the malformed-record policy.
func fromJSON[T any](s string) T {
	var v T
	if s != "" {
		_ = json.Unmarshal([]byte(s), &v)
	}
	return v
}
