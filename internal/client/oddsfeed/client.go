// Package oddsfeed is the client for the third-party multi-bookmaker odds
// feed (The Odds API v4 wire format).
package oddsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

const DefaultHost = "https://api.the-odds-api.com/v4"

type Client struct {
	host       string
	apiKey     string
	httpClient *http.Client

	mu        sync.Mutex
	lastQuota Quota
}

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("odds feed error (%d): %s", e.Status, e.Body)
}

func NewClient(httpClient *http.Client, host, apiKey string) *Client {
	if host == "" {
		host = DefaultHost
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apiKey", c.apiKey)
	fullURL := c.host + path + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	c.recordQuota(resp.Header)
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Status: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// recordQuota captures the request budget headers the feed attaches to every
// response.
func (c *Client) recordQuota(h http.Header) {
	remaining := strings.TrimSpace(h.Get("X-Requests-Remaining"))
	used := strings.TrimSpace(h.Get("X-Requests-Used"))
	if remaining == "" && used == "" {
		return
	}
	c.mu.Lock()
	c.lastQuota = Quota{Remaining: remaining, Used: used}
	c.mu.Unlock()
}

// LastQuota returns the quota observed on the most recent response.
func (c *Client) LastQuota() Quota {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastQuota
}

// ListSports returns the feed's sport catalog.
func (c *Client) ListSports(ctx context.Context) ([]Sport, error) {
	body, err := c.doRequest(ctx, "/sports", nil)
	if err != nil {
		return nil, err
	}
	var sports []Sport
	if err := json.Unmarshal(body, &sports); err != nil {
		return nil, fmt.Errorf("failed to decode sports: %w", err)
	}
	return sports, nil
}

// OddsOptions narrows a GetOdds request. Zero values fall back to the feed's
// decimal-format defaults used by the import pipeline.
type OddsOptions struct {
	Regions    string
	Markets    string
	OddsFormat string
	DateFormat string
}

// GetOdds fetches upcoming matches with bookmaker odds for one sport key.
func (c *Client) GetOdds(ctx context.Context, sportKey string, opts OddsOptions) ([]Match, error) {
	if sportKey == "" {
		return nil, fmt.Errorf("sport key is required")
	}
	if opts.Regions == "" {
		opts.Regions = "us"
	}
	if opts.Markets == "" {
		opts.Markets = "h2h,spreads,totals"
	}
	if opts.OddsFormat == "" {
		opts.OddsFormat = "decimal"
	}
	if opts.DateFormat == "" {
		opts.DateFormat = "iso"
	}
	query := url.Values{}
	query.Set("regions", opts.Regions)
	query.Set("markets", opts.Markets)
	query.Set("oddsFormat", opts.OddsFormat)
	query.Set("dateFormat", opts.DateFormat)
	body, err := c.doRequest(ctx, "/sports/"+url.PathEscape(sportKey)+"/odds", query)
	if err != nil {
		return nil, err
	}
	var matches []Match
	if err := json.Unmarshal(body, &matches); err != nil {
		return nil, fmt.Errorf("failed to decode odds: %w", err)
	}
	return matches, nil
}

// GetScores fetches results for a sport, looking back daysFrom days.
func (c *Client) GetScores(ctx context.Context, sportKey string, daysFrom int) ([]Score, error) {
	if sportKey == "" {
		return nil, fmt.Errorf("sport key is required")
	}
	if daysFrom <= 0 {
		daysFrom = 1
	}
	query := url.Values{}
	query.Set("daysFrom", fmt.Sprintf("%d", daysFrom))
	query.Set("dateFormat", "iso")
	body, err := c.doRequest(ctx, "/sports/"+url.PathEscape(sportKey)+"/scores", query)
	if err != nil {
		return nil, err
	}
	var scores []Score
	if err := json.Unmarshal(body, &scores); err != nil {
		return nil, fmt.Errorf("failed to decode scores: %w", err)
	}
	return scores, nil
}
