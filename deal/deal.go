package deal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry classifies how a deal record affects a position.
type Entry string

const (
	EntryIn      Entry = "IN"      // opening leg
	EntryOut     Entry = "OUT"     // closing leg
	EntryInOut   Entry = "INOUT"   // reversal: closes and reopens in one deal
	EntryOutBy   Entry = "OUT_BY"  // closed by an opposite position
	EntryBalance Entry = "BALANCE" // cash operation, no position
)

// Side is the direction of a position leg.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
	SideNone Side = ""
)

// Record is one raw deal as delivered by the terminal. Fields may be
// missing or zero; Normalize decides what survives.
type Record struct {
	Ticket     int64
	PositionID int64
	Time       time.Time
	Symbol     string
	Entry      string
	Side       string
	Price      float64
	Volume     float64
	Profit     float64
	Swap       float64
	Commission float64
}

// Event is a normalized deal record. NetAmount is the canonical
// profit + swap + commission sum for the deal.
type Event struct {
	Ticket     int64
	PositionID int64
	Time       time.Time
	Symbol     string
	Entry      Entry
	Side       Side
	Price      float64
	Volume     float64
	NetAmount  decimal.Decimal
}

// IsBalance reports whether the event is a cash operation.
func (e Event) IsBalance() bool { return e.Entry == EntryBalance }

// Opens reports whether the event can establish a position's open leg.
func (e Event) Opens() bool { return e.Entry == EntryIn || e.Entry == EntryInOut }

// Closes reports whether the event can establish a position's close leg.
func (e Event) Closes() bool {
	return e.Entry == EntryOut || e.Entry == EntryInOut || e.Entry == EntryOutBy
}

func parseEntry(s string) (Entry, bool) {
	switch Entry(s) {
	case EntryIn, EntryOut, EntryInOut, EntryOutBy, EntryBalance:
		return Entry(s), true
	}
	return "", false
}

func parseSide(s string) Side {
	switch Side(s) {
	case SideBuy, SideSell:
		return Side(s)
	}
	return SideNone
}

// Normalize converts raw records into typed events. Records without a
// timestamp or with an unrecognized entry kind are skipped. Position-leg
// records without a position id are dropped; balance operations carry no
// position id and are always kept.
func Normalize(records []Record) []Event {
	events := make([]Event, 0, len(records))
	for _, r := range records {
		if r.Time.IsZero() {
			continue
		}
		entry, ok := parseEntry(r.Entry)
		if !ok {
			continue
		}
		if entry != EntryBalance && r.PositionID == 0 {
			continue
		}
		events = append(events, Event{
			Ticket:     r.Ticket,
			PositionID: r.PositionID,
			Time:       r.Time,
			Symbol:     r.Symbol,
			Entry:      entry,
			Side:       parseSide(r.Side),
			Price:      r.Price,
			Volume:     r.Volume,
			NetAmount: decimal.NewFromFloat(r.Profit).
				Add(decimal.NewFromFloat(r.Swap)).
				Add(decimal.NewFromFloat(r.Commission)),
		})
	}
	return events
}

// NetSum returns the summed net amount over all events, balance
// operations included. It seeds the ledger's starting balance from
// pre-window history.
func NetSum(events []Event) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range events {
		sum = sum.Add(e.NetAmount)
	}
	return sum
}
