// Package portfolio combines per-symbol return series into weighted
// strategy series and compounds allocation value paths from them.
package portfolio

// Holding is one portfolio constituent as stored on a strategy row.
// WeightPct is the raw weight percentage; DailyChangePct is percent
// units, nil when the symbol reported no data.
type Holding struct {
	Symbol         string   `json:"symbol"`
	Class          string   `json:"class,omitempty"`
	Price          float64  `json:"price,omitempty"`
	LongVolume     float64  `json:"long_volume,omitempty"`
	ShortVolume    float64  `json:"short_volume,omitempty"`
	NetVolume      float64  `json:"net_volume,omitempty"`
	Value          float64  `json:"value,omitempty"`
	WeightPct      float64  `json:"weight_pct"`
	DailyChangePct *float64 `json:"daily_change_pct"`
	UpdatedTS      string   `json:"updated_ts,omitempty"`
}

// Weights derives normalized weights from holdings. Raw weight
// percentages are summed per symbol, symbols without a positive weight
// are dropped, and the survivors are renormalized to sum to 1. An empty
// map means no aggregation is possible.
func Weights(holdings []Holding) map[string]float64 {
	raw := make(map[string]float64)
	total := 0.0
	for _, h := range holdings {
		if h.Symbol == "" || h.WeightPct <= 0 {
			continue
		}
		raw[h.Symbol] += h.WeightPct
		total += h.WeightPct
	}
	if total <= 0 {
		return map[string]float64{}
	}

	weights := make(map[string]float64, len(raw))
	for sym, w := range raw {
		weights[sym] = w / total
	}
	return weights
}

// Symbols lists the holdings' symbols with a positive weight.
func Symbols(weights map[string]float64) []string {
	out := make([]string, 0, len(weights))
	for sym := range weights {
		out = append(out, sym)
	}
	return out
}

// RefreshDailyChange rewrites each holding's DailyChangePct from the
// symbols' latest daily returns, converting decimal fractions to percent
// units. Symbols with no data get nil.
func RefreshDailyChange(holdings []Holding, lastDaily map[string]float64) []Holding {
	out := make([]Holding, len(holdings))
	for i, h := range holdings {
		if r, ok := lastDaily[h.Symbol]; ok {
			pct := r * 100
			h.DailyChangePct = &pct
		} else {
			h.DailyChangePct = nil
		}
		out[i] = h
	}
	return out
}
