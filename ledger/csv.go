package ledger

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

var csvHeader = []string{
	"account", "id", "symbol", "side", "volume",
	"open_price", "close_price", "open_time", "close_time",
	"net_pnl", "running_balance",
}

// WriteCSV writes the ledger in its export layout: a header row, one
// synthetic STARTING_BALANCE row carrying the pre-window balance, then
// one row per ledger event in order.
func WriteCSV(w io.Writer, account string, start decimal.Decimal, rows []Row) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	if err := cw.Write([]string{
		account, "", "STARTING_BALANCE", "", "",
		"", "", "", "",
		"", start.String(),
	}); err != nil {
		return err
	}

	for _, r := range rows {
		if err := cw.Write([]string{
			r.Account,
			strconv.FormatInt(r.ID, 10),
			r.Symbol,
			string(r.Side),
			f(r.Volume),
			f(r.OpenPrice),
			f(r.ClosePrice),
			ts(r.OpenTime),
			ts(r.CloseTime),
			r.NetPnl.String(),
			r.RunningBalance.String(),
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
