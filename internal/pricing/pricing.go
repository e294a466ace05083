// Package pricing reduces raw bookmaker quotes to the platform's own prices.
// All price math runs on decimals; float rounding must never leak into odds
// shown to users.
package pricing

import (
	"github.com/shopspring/decimal"
)

// Market keys understood by the import pipeline. Anything else in a feed
// payload is carried through untouched but never priced.
const (
	MarketH2H     = "h2h"
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
)

var (
	// minLaySpread is the floor on the back/lay gap.
	minLaySpread = decimal.RequireFromString("0.02")

	// layMarginRate is the proportional margin added on top of the back price.
	layMarginRate = decimal.RequireFromString("0.01")
)

// Quote is a single bookmaker's price for one outcome, as delivered by the
// odds feed. Point is nil for markets without a line (h2h).
type Quote struct {
	Bookmaker   string
	MarketKey   string
	OutcomeName string
	Price       decimal.Decimal
	Point       *decimal.Decimal
}

// Consensus averages the positive prices quoted for (marketKey, outcomeName)
// across all bookmakers, rounded to 2 decimal places. It returns zero when no
// bookmaker prices the outcome; callers treat zero as "unavailable".
func Consensus(quotes []Quote, marketKey, outcomeName string) decimal.Decimal {
	sum := decimal.Zero
	n := 0
	for _, q := range quotes {
		if q.MarketKey != marketKey || q.OutcomeName != outcomeName {
			continue
		}
		if q.Price.Sign() <= 0 {
			continue
		}
		sum = sum.Add(q.Price)
		n++
	}
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n))).Round(2)
}

// DeriveLay builds a lay price from a consensus back price by adding a small
// margin: 1% of the back price, but never less than 0.02. A back price at or
// below 1.00 (including the unavailable sentinel) has no meaningful lay side
// and yields zero.
//
// For every back > 1 the result is strictly greater than back and the spread
// is at least 0.02, so the book never collapses to a zero spread.
func DeriveLay(back decimal.Decimal) decimal.Decimal {
	if back.LessThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero
	}
	margin := back.Mul(layMarginRate)
	if margin.LessThan(minLaySpread) {
		margin = minLaySpread
	}
	return back.Add(margin).Round(2)
}
