package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tsiemasilo-dev/algohive/deal"
)

// Position accumulates the matched legs of one position id. Open fields
// come from the earliest opening leg, close fields from the latest
// closing leg; TotalProfit sums the net amount of every matched leg.
type Position struct {
	Account     string
	ID          int64
	Symbol      string
	Side        deal.Side
	Volume      float64
	OpenTime    time.Time
	OpenPrice   float64
	CloseTime   time.Time
	ClosePrice  float64
	TotalProfit decimal.Decimal
}

// Closed reports whether a closing leg has been seen. Open-only positions
// never reach the ledger.
func (p Position) Closed() bool { return !p.CloseTime.IsZero() }

// Matcher groups position-leg events by position id. Events may arrive
// in any order; the min/max comparisons make the result order-independent.
type Matcher struct {
	account   string
	positions map[int64]*Position
}

func NewMatcher(account string) *Matcher {
	return &Matcher{account: account, positions: make(map[int64]*Position)}
}

// Add folds one event into its position. Balance operations and events
// without a position id are ignored.
func (m *Matcher) Add(ev deal.Event) {
	if ev.IsBalance() || ev.PositionID == 0 {
		return
	}

	p, ok := m.positions[ev.PositionID]
	if !ok {
		p = &Position{Account: m.account, ID: ev.PositionID, Symbol: ev.Symbol}
		m.positions[ev.PositionID] = p
	}

	if ev.Opens() && (p.OpenTime.IsZero() || ev.Time.Before(p.OpenTime)) {
		p.OpenTime = ev.Time
		p.OpenPrice = ev.Price
		p.Volume = ev.Volume
		p.Side = ev.Side
	}
	if ev.Closes() && (p.CloseTime.IsZero() || ev.Time.After(p.CloseTime)) {
		p.CloseTime = ev.Time
		p.ClosePrice = ev.Price
	}
	p.TotalProfit = p.TotalProfit.Add(ev.NetAmount)
}

// Closed returns the positions with a known close time, ordered by close
// time then id.
func (m *Matcher) Closed() []Position {
	out := make([]Position, 0, len(m.positions))
	for _, p := range m.positions {
		if p.Closed() {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CloseTime.Equal(out[j].CloseTime) {
			return out[i].CloseTime.Before(out[j].CloseTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
