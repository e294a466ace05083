package importer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"oddsimport/internal/client/oddsfeed"
	"oddsimport/internal/pricing"
)

const drawOutcome = "Draw"

// marketOrder fixes the order markets are built, imported and displayed in.
var marketOrder = []string{pricing.MarketH2H, pricing.MarketSpreads, pricing.MarketTotals}

// BuildPayload assembles the importable markets for one feed match.
//
// Prices are averaged across every bookmaker quoting an outcome, while line
// values (spread and total points) are taken from the first bookmaker only.
// Books frequently disagree on lines, and averaging a price across different
// lines would be meaningless; the first book acts as the structural template.
//
// Each market type has its own completeness rule and is simply omitted when
// the rule fails. A payload with zero markets is still returned so callers
// can show the match and its raw quotes.
func BuildPayload(match oddsfeed.Match, sportKey string) ImportPayload {
	quotes := flattenQuotes(match.Bookmakers)

	markets := make([]CanonicalMarket, 0, len(marketOrder))
	if m, ok := buildH2H(match, quotes); ok {
		markets = append(markets, m)
	}
	if m, ok := buildSpreads(match, quotes); ok {
		markets = append(markets, m)
	}
	if m, ok := buildTotals(match, quotes); ok {
		markets = append(markets, m)
	}

	return ImportPayload{
		ExternalID:   match.ID,
		HomeTeam:     match.HomeTeam,
		AwayTeam:     match.AwayTeam,
		Sport:        SportLabel(sportKey),
		SportKey:     sportKey,
		CommenceTime: match.CommenceTime,
		Markets:      markets,
		Bookmakers:   match.Bookmakers,
	}
}

func flattenQuotes(bookmakers []oddsfeed.Bookmaker) []pricing.Quote {
	var quotes []pricing.Quote
	for _, bm := range bookmakers {
		for _, mkt := range bm.Markets {
			for _, oc := range mkt.Outcomes {
				quotes = append(quotes, pricing.Quote{
					Bookmaker:   bm.Key,
					MarketKey:   mkt.Key,
					OutcomeName: oc.Name,
					Price:       oc.Price,
					Point:       oc.Point,
				})
			}
		}
	}
	return quotes
}

// buildH2H prices the match-winner market. The market qualifies when at
// least two of home, away and Draw have a positive consensus back price;
// Draw is only a candidate for sports that quote it.
func buildH2H(match oddsfeed.Match, quotes []pricing.Quote) (CanonicalMarket, bool) {
	runners := make([]Runner, 0, 3)
	for _, name := range []string{match.HomeTeam, match.AwayTeam, drawOutcome} {
		back := pricing.Consensus(quotes, pricing.MarketH2H, name)
		if back.Sign() <= 0 {
			continue
		}
		runners = append(runners, Runner{
			Name:     name,
			BackOdds: back,
			LayOdds:  pricing.DeriveLay(back),
		})
	}
	if len(runners) < 2 {
		return CanonicalMarket{}, false
	}
	return CanonicalMarket{
		Key:     pricing.MarketH2H,
		Label:   "Match Winner",
		Runners: runners,
	}, true
}

// buildSpreads prices the handicap market. Both home and away outcomes on
// the first bookmaker must carry a point value; a one-sided spread is never
// imported.
func buildSpreads(match oddsfeed.Match, quotes []pricing.Quote) (CanonicalMarket, bool) {
	template, ok := match.FirstMarket(pricing.MarketSpreads)
	if !ok {
		return CanonicalMarket{}, false
	}
	homeOc, homeOk := template.Outcome(match.HomeTeam)
	awayOc, awayOk := template.Outcome(match.AwayTeam)
	if !homeOk || !awayOk || homeOc.Point == nil || awayOc.Point == nil {
		return CanonicalMarket{}, false
	}

	homeBack := pricing.Consensus(quotes, pricing.MarketSpreads, match.HomeTeam)
	awayBack := pricing.Consensus(quotes, pricing.MarketSpreads, match.AwayTeam)

	return CanonicalMarket{
		Key:   pricing.MarketSpreads,
		Label: fmt.Sprintf("Spread (%s)", signedPoint(*homeOc.Point)),
		Runners: []Runner{
			{
				Name:     fmt.Sprintf("%s %s", match.HomeTeam, signedPoint(*homeOc.Point)),
				BackOdds: homeBack,
				LayOdds:  pricing.DeriveLay(homeBack),
				Point:    homeOc.Point,
			},
			{
				Name:     fmt.Sprintf("%s %s", match.AwayTeam, signedPoint(*awayOc.Point)),
				BackOdds: awayBack,
				LayOdds:  pricing.DeriveLay(awayBack),
				Point:    awayOc.Point,
			},
		},
	}, true
}

// buildTotals prices the over/under market off the first bookmaker's total
// line. Over and Under must both be present and Over must carry the point.
func buildTotals(match oddsfeed.Match, quotes []pricing.Quote) (CanonicalMarket, bool) {
	template, ok := match.FirstMarket(pricing.MarketTotals)
	if !ok {
		return CanonicalMarket{}, false
	}
	overOc, overOk := template.Outcome("Over")
	_, underOk := template.Outcome("Under")
	if !overOk || !underOk || overOc.Point == nil {
		return CanonicalMarket{}, false
	}
	point := *overOc.Point

	overBack := pricing.Consensus(quotes, pricing.MarketTotals, "Over")
	underBack := pricing.Consensus(quotes, pricing.MarketTotals, "Under")

	return CanonicalMarket{
		Key:   pricing.MarketTotals,
		Label: fmt.Sprintf("Total O/U %s", point.String()),
		Runners: []Runner{
			{
				Name:     fmt.Sprintf("Over %s", point.String()),
				BackOdds: overBack,
				LayOdds:  pricing.DeriveLay(overBack),
			},
			{
				Name:     fmt.Sprintf("Under %s", point.String()),
				BackOdds: underBack,
				LayOdds:  pricing.DeriveLay(underBack),
			},
		},
	}, true
}

func signedPoint(point decimal.Decimal) string {
	if point.Sign() > 0 {
		return "+" + point.String()
	}
	return point.String()
}
