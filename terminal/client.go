// Package terminal connects the engine to a trading-terminal bridge.
// The bridge exposes the terminal's deal history over HTTP and enforces
// the terminal's single-session rule: a session is acquired with the
// account credentials, used for history reads, and must be released.
package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tsiemasilo-dev/algohive/deal"
)

// Client opens sessions against a terminal bridge. It implements
// deal.SessionFactory.
type Client struct {
	baseURL    string
	server     string
	login      int64
	password   string
	httpClient *http.Client
}

// NewClient creates a terminal bridge client.
func NewClient(baseURL, server string, login int64, password string) *Client {
	return &Client{
		baseURL:  baseURL,
		server:   server,
		login:    login,
		password: password,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type sessionRequest struct {
	Server   string `json:"server"`
	Login    int64  `json:"login"`
	Password string `json:"password"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

// Acquire opens an exclusive terminal session.
func (c *Client) Acquire(ctx context.Context) (deal.Session, error) {
	body, err := json.Marshal(sessionRequest{Server: c.server, Login: c.login, Password: c.password})
	if err != nil {
		return nil, fmt.Errorf("marshal session request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/session", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("open session: status %d: %s", resp.StatusCode, string(data))
	}

	var sr sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode session response: %w", err)
	}
	if sr.SessionID == "" {
		return nil, fmt.Errorf("open session: empty session id")
	}
	return &session{client: c, id: sr.SessionID}, nil
}

// session is one live bridge session.
type session struct {
	client *Client
	id     string
}

// wireDeal is one deal in the bridge's history response.
type wireDeal struct {
	Ticket     int64   `json:"ticket"`
	PositionID int64   `json:"position_id"`
	Time       string  `json:"time"`
	Symbol     string  `json:"symbol"`
	Entry      string  `json:"entry"`
	Type       string  `json:"type"`
	Price      float64 `json:"price"`
	Volume     float64 `json:"volume"`
	Profit     float64 `json:"profit"`
	Swap       float64 `json:"swap"`
	Commission float64 `json:"commission"`
}

type dealsResponse struct {
	Deals []wireDeal `json:"deals"`
}

// Fetch reads the session's deal history for [from, to). Deals with an
// unparseable timestamp come back with a zero time and are dropped later
// by the normalizer.
func (s *session) Fetch(ctx context.Context, from, to time.Time) ([]deal.Record, error) {
	q := url.Values{}
	q.Set("session_id", s.id)
	q.Set("from", from.UTC().Format(time.RFC3339))
	q.Set("to", to.UTC().Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.client.baseURL+"/v1/deals?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create deals request: %w", err)
	}

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch deals: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch deals: status %d: %s", resp.StatusCode, string(data))
	}

	var dr dealsResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode deals response: %w", err)
	}

	records := make([]deal.Record, 0, len(dr.Deals))
	for _, d := range dr.Deals {
		t, err := time.Parse(time.RFC3339, d.Time)
		if err != nil {
			t = time.Time{}
		}
		records = append(records, deal.Record{
			Ticket:     d.Ticket,
			PositionID: d.PositionID,
			Time:       t,
			Symbol:     d.Symbol,
			Entry:      d.Entry,
			Side:       d.Type,
			Price:      d.Price,
			Volume:     d.Volume,
			Profit:     d.Profit,
			Swap:       d.Swap,
			Commission: d.Commission,
		})
	}
	return records, nil
}

// Close releases the terminal session.
func (s *session) Close() error {
	req, err := http.NewRequest(http.MethodDelete, s.client.baseURL+"/v1/session/"+s.id, nil)
	if err != nil {
		return fmt.Errorf("create close request: %w", err)
	}

	resp, err := s.client.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("close session: status %d", resp.StatusCode)
	}
	return nil
}
