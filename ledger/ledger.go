package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tsiemasilo-dev/algohive/deal"
)

// BalanceOp is a cash operation applied directly to the account.
type BalanceOp struct {
	Ticket int64
	Time   time.Time
	Amount decimal.Decimal
}

// BalanceOps extracts the cash operations from a normalized event stream.
func BalanceOps(events []deal.Event) []BalanceOp {
	var ops []BalanceOp
	for _, ev := range events {
		if ev.IsBalance() {
			ops = append(ops, BalanceOp{Ticket: ev.Ticket, Time: ev.Time, Amount: ev.NetAmount})
		}
	}
	return ops
}

// Row is one emitted ledger line: either a balance operation or a closed
// position, with the account balance after applying it.
type Row struct {
	Account        string
	ID             int64
	Symbol         string
	Side           deal.Side
	Volume         float64
	OpenPrice      float64
	ClosePrice     float64
	OpenTime       time.Time
	CloseTime      time.Time
	NetPnl         decimal.Decimal
	RunningBalance decimal.Decimal
}

// EffectiveTime is the instant the row takes effect: the close time when
// known, otherwise the open time.
func (r Row) EffectiveTime() time.Time {
	if !r.CloseTime.IsZero() {
		return r.CloseTime
	}
	return r.OpenTime
}

// Build merges balance operations and closed positions into one
// chronological ledger. Rows are ordered by effective time; at an
// identical instant a balance operation sorts before a position close.
// RunningBalance is the strict prefix sum of NetPnl seeded by start.
func Build(account string, start decimal.Decimal, ops []BalanceOp, positions []Position) []Row {
	type entry struct {
		t   time.Time
		op  *BalanceOp
		pos *Position
	}

	entries := make([]entry, 0, len(ops)+len(positions))
	for i := range ops {
		entries = append(entries, entry{t: ops[i].Time, op: &ops[i]})
	}
	for i := range positions {
		entries = append(entries, entry{t: positions[i].CloseTime, pos: &positions[i]})
	}
	// Balance ops were appended first, so the stable sort keeps them
	// ahead of position closes at the same instant.
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].t.Before(entries[j].t) })

	rows := make([]Row, 0, len(entries))
	running := start
	for _, e := range entries {
		if e.op != nil {
			running = running.Add(e.op.Amount)
			rows = append(rows, Row{
				Account:        account,
				ID:             e.op.Ticket,
				CloseTime:      e.op.Time,
				NetPnl:         e.op.Amount,
				RunningBalance: running,
			})
			continue
		}
		p := e.pos
		running = running.Add(p.TotalProfit)
		rows = append(rows, Row{
			Account:        account,
			ID:             p.ID,
			Symbol:         p.Symbol,
			Side:           p.Side,
			Volume:         p.Volume,
			OpenPrice:      p.OpenPrice,
			ClosePrice:     p.ClosePrice,
			OpenTime:       p.OpenTime,
			CloseTime:      p.CloseTime,
			NetPnl:         p.TotalProfit,
			RunningBalance: running,
		})
	}
	return rows
}
