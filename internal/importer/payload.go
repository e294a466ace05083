// Package importer assembles canonical markets from raw bookmaker odds and
// drives the idempotent import of a match and its markets into the platform
// catalog.
package importer

import (
	"time"

	"github.com/shopspring/decimal"

	"oddsimport/internal/client/oddsfeed"
)

// Runner is one selectable option within a canonical market, priced with a
// consensus back price and a derived lay price.
type Runner struct {
	Name     string           `json:"name"`
	BackOdds decimal.Decimal  `json:"backOdds"`
	LayOdds  decimal.Decimal  `json:"layOdds"`
	Point    *decimal.Decimal `json:"point,omitempty"`
}

// CanonicalMarket is the platform-internal form of one importable market.
// Runner order is significant: it follows the precedence exposed by the
// feed (home, away, draw for h2h).
type CanonicalMarket struct {
	Key     string   `json:"key"`
	Label   string   `json:"label"`
	Runners []Runner `json:"runners"`
}

// ImportPayload is everything needed to import one match: resolved team and
// sport naming, the canonical markets that passed their completeness rules
// (in fixed h2h, spreads, totals order), and the raw bookmaker quotes for
// preview and audit. Built fresh on every feed refresh, never persisted as-is.
type ImportPayload struct {
	ExternalID   string                `json:"externalId"`
	HomeTeam     string                `json:"home"`
	AwayTeam     string                `json:"away"`
	Sport        string                `json:"sport"`
	SportKey     string                `json:"sportKey"`
	CommenceTime time.Time             `json:"commenceTime"`
	Markets      []CanonicalMarket     `json:"markets"`
	Bookmakers   []oddsfeed.Bookmaker  `json:"bookmakers"`
}

// Market returns the built market with the given key, if present.
func (p ImportPayload) Market(key string) (CanonicalMarket, bool) {
	for _, m := range p.Markets {
		if m.Key == key {
			return m, true
		}
	}
	return CanonicalMarket{}, false
}

// MarketKeys lists the keys of the markets that were actually built.
func (p ImportPayload) MarketKeys() []string {
	keys := make([]string, 0, len(p.Markets))
	for _, m := range p.Markets {
		keys = append(keys, m.Key)
	}
	return keys
}
