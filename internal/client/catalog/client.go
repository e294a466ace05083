// Package catalog is the client for the platform catalog service, which owns
// matches, markets and the external-id uniqueness constraint.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type Client struct {
	host       string
	token      string
	httpClient *http.Client
}

// APIError is any non-conflict failure reported by the catalog.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog error (%d): %s", e.Status, e.Body)
}

// ConflictError is the catalog's 409 response to CreateMatch when the
// external id is already registered. It carries the existing match id so the
// caller can continue against that match instead of failing.
type ConflictError struct {
	MatchID string
	Message string
}

func (e *ConflictError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalog conflict: %s", e.Message)
	}
	return "catalog conflict: external id already registered"
}

func NewClient(httpClient *http.Client, host, token string) *Client {
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		token:      token,
		httpClient: httpClient,
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, reqBody any) (int, []byte, error) {
	var reader io.Reader
	if reqBody != nil {
		payload, err := json.Marshal(reqBody)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.host+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

type CreateMatchRequest struct {
	TeamA      string `json:"teamA"`
	TeamB      string `json:"teamB"`
	Sport      string `json:"sport"`
	StartTime  string `json:"startTime"`
	ExternalID string `json:"externalId,omitempty"`
}

type Match struct {
	ID         string `json:"id"`
	TeamA      string `json:"teamA"`
	TeamB      string `json:"teamB"`
	Sport      string `json:"sport"`
	StartTime  string `json:"startTime"`
	Status     string `json:"status"`
	ExternalID string `json:"externalId,omitempty"`
}

type conflictBody struct {
	Error   string `json:"error"`
	MatchID string `json:"matchId"`
}

// CreateMatch registers a match. A 409 with the existing match id is returned
// as *ConflictError; callers decide whether conflict is failure. A 409
// without a match id is indistinguishable from a hard failure and is reported
// as *APIError.
func (c *Client) CreateMatch(ctx context.Context, req CreateMatchRequest) (Match, error) {
	status, body, err := c.doRequest(ctx, http.MethodPost, "/admin/matches", req)
	if err != nil {
		return Match{}, err
	}
	if status == http.StatusConflict {
		var cb conflictBody
		if err := json.Unmarshal(body, &cb); err == nil && cb.MatchID != "" {
			return Match{}, &ConflictError{MatchID: cb.MatchID, Message: cb.Error}
		}
		return Match{}, &APIError{Status: status, Body: string(body)}
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return Match{}, &APIError{Status: status, Body: string(body)}
	}
	var match Match
	if err := json.Unmarshal(body, &match); err != nil {
		return Match{}, fmt.Errorf("failed to decode match: %w", err)
	}
	return match, nil
}

type Runner struct {
	Name     string      `json:"name"`
	BackOdds json.Number `json:"backOdds"`
	LayOdds  json.Number `json:"layOdds"`
}

type CreateMarketRequest struct {
	MatchID string   `json:"matchId"`
	Name    string   `json:"name"`
	Runners []Runner `json:"runners"`
}

type Market struct {
	ID      string `json:"id"`
	MatchID string `json:"matchId"`
	Name    string `json:"name"`
	Status  string `json:"status"`
}

// CreateMarket creates one market under a match. The catalog enforces market
// name uniqueness per match; violations come back as *APIError.
func (c *Client) CreateMarket(ctx context.Context, req CreateMarketRequest) (Market, error) {
	status, body, err := c.doRequest(ctx, http.MethodPost, "/admin/markets", req)
	if err != nil {
		return Market{}, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return Market{}, &APIError{Status: status, Body: string(body)}
	}
	var market Market
	if err := json.Unmarshal(body, &market); err != nil {
		return Market{}, fmt.Errorf("failed to decode market: %w", err)
	}
	return market, nil
}

type listMatchesResponse struct {
	Data struct {
		Data []Match `json:"data"`
	} `json:"data"`
}

// ListExternalIDs enumerates external ids of matches already in the catalog.
// The result is a display hint only; the 409 conflict on CreateMatch remains
// the authority on duplicates.
func (c *Client) ListExternalIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 500
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	status, body, err := c.doRequest(ctx, http.MethodGet, "/sports/matches?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, &APIError{Status: status, Body: string(body)}
	}
	var resp listMatchesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode matches: %w", err)
	}
	ids := make([]string, 0, len(resp.Data.Data))
	for _, m := range resp.Data.Data {
		if m.ExternalID != "" {
			ids = append(ids, m.ExternalID)
		}
	}
	return ids, nil
}
