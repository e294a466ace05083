package oddsfeed

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sport is one entry from the feed's sport catalog.
type Sport struct {
	Key          string `json:"key"`
	Group        string `json:"group"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Active       bool   `json:"active"`
	HasOutrights bool   `json:"has_outrights"`
}

// Outcome is a single priced selection inside a bookmaker market. Point is
// only present for line markets (spreads, totals).
type Outcome struct {
	Name  string           `json:"name"`
	Price decimal.Decimal  `json:"price"`
	Point *decimal.Decimal `json:"point,omitempty"`
}

// Market groups a bookmaker's outcomes under a market key (h2h, spreads,
// totals).
type Market struct {
	Key        string    `json:"key"`
	LastUpdate time.Time `json:"last_update"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Bookmaker is one book's full quote set for a match.
type Bookmaker struct {
	Key        string    `json:"key"`
	Title      string    `json:"title"`
	LastUpdate time.Time `json:"last_update"`
	Markets    []Market  `json:"markets"`
}

// Match is a single upcoming event with multi-bookmaker odds. ID is the
// feed's opaque identifier and doubles as the catalog idempotency key.
type Match struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Score is a (possibly live) result row from the scores endpoint.
type Score struct {
	ID           string     `json:"id"`
	SportKey     string     `json:"sport_key"`
	SportTitle   string     `json:"sport_title"`
	CommenceTime time.Time  `json:"commence_time"`
	Completed    bool       `json:"completed"`
	HomeTeam     string     `json:"home_team"`
	AwayTeam     string     `json:"away_team"`
	Scores       []TeamScore `json:"scores,omitempty"`
	LastUpdate   *time.Time `json:"last_update,omitempty"`
}

type TeamScore struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

// Quota reflects the feed's request budget headers from the last response.
type Quota struct {
	Remaining string `json:"remaining"`
	Used      string `json:"used"`
}

// FirstMarket returns the named market from the match's first bookmaker.
// The first book serves as the structural template for line values.
func (m Match) FirstMarket(key string) (Market, bool) {
	if len(m.Bookmakers) == 0 {
		return Market{}, false
	}
	for _, mkt := range m.Bookmakers[0].Markets {
		if mkt.Key == key {
			return mkt, true
		}
	}
	return Market{}, false
}

// Outcome returns the named outcome within the market.
func (mkt Market) Outcome(name string) (Outcome, bool) {
	for _, oc := range mkt.Outcomes {
		if oc.Name == name {
			return oc, true
		}
	}
	return Outcome{}, false
}
