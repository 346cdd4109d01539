// Package marketdata fetches daily price bars over HTTP. The endpoint is
// Alpaca-shaped: key/secret header auth and a multi-symbol bars query.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tsiemasilo-dev/algohive/retry"
)

// DefaultBaseURL is the hosted market data endpoint.
const DefaultBaseURL = "https://data.alpaca.markets"

// Bar is one daily OHLC bar in the API response.
type Bar struct {
	Time   string  `json:"t"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

type barsResponse struct {
	Bars map[string][]Bar `json:"bars"`
}

// Client is a daily-bars API client.
type Client struct {
	baseURL    string
	keyID      string
	secretKey  string
	httpClient *http.Client

	// Policy governs the retry ladder for GetDailyBars. The zero value
	// means retry.Default.
	Policy retry.Policy
}

// NewClient creates a market data client. An empty baseURL selects the
// hosted endpoint.
func NewClient(baseURL, keyID, secretKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		keyID:      keyID,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// GetDailyBars fetches daily bars for symbols covering [from, to]. The
// full range is retried with backoff; if the budget is spent the range is
// split into per-day chunks, each tried once, and whatever was collected
// comes back. A persistently failing source yields an empty map with a
// nil error, since "no new data" is not fatal. Only context cancellation
// surfaces as an error.
func (c *Client) GetDailyBars(ctx context.Context, symbols []string, from, to time.Time) (map[string][]Bar, error) {
	symbols = dedupe(symbols)
	if len(symbols) == 0 {
		return map[string][]Bar{}, nil
	}

	var out map[string][]Bar
	err := c.Policy.Do(ctx, func(ctx context.Context) error {
		m, err := c.fetchRange(ctx, symbols, from, to)
		if err != nil {
			return err
		}
		out = m
		return nil
	})
	if err == nil {
		return out, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	partial := make(map[string][]Bar)
	for day := from.UTC().Truncate(24 * time.Hour); !day.After(to); day = day.Add(24 * time.Hour) {
		m, err := c.fetchRange(ctx, symbols, day, day)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		for sym, bars := range m {
			partial[sym] = append(partial[sym], bars...)
		}
	}
	return partial, nil
}

func (c *Client) fetchRange(ctx context.Context, symbols []string, from, to time.Time) (map[string][]Bar, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	params.Set("timeframe", "1D")
	params.Set("start", dayStart(from))
	params.Set("end", dayStart(to.AddDate(0, 0, 1)))
	params.Set("limit", "1000")
	params.Set("adjustment", "raw")
	params.Set("feed", "iex")
	params.Set("sort", "asc")

	apiURL := fmt.Sprintf("%s/v2/stocks/bars?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("APCA-API-KEY-ID", c.keyID)
	req.Header.Set("APCA-API-SECRET-KEY", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bars API (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp barsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	out := make(map[string][]Bar, len(apiResp.Bars))
	for sym, bars := range apiResp.Bars {
		if len(bars) > 0 {
			out[sym] = bars
		}
	}
	return out, nil
}

// DailyCloses converts bars into per-symbol date→close maps. Bars with a
// malformed timestamp are dropped.
func DailyCloses(bars map[string][]Bar) map[string]map[string]float64 {
	out := make(map[string]map[string]float64, len(bars))
	for sym, list := range bars {
		byDate := make(map[string]float64)
		for _, b := range list {
			if len(b.Time) < 10 {
				continue
			}
			byDate[b.Time[:10]] = b.Close
		}
		if len(byDate) > 0 {
			out[sym] = byDate
		}
	}
	return out
}

func dayStart(t time.Time) string {
	return t.UTC().Format("2006-01-02") + "T00:00:00Z"
}

func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
