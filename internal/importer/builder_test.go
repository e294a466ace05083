package importer

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"oddsimport/internal/client/oddsfeed"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func nflMatch(bookmakers ...oddsfeed.Bookmaker) oddsfeed.Match {
	return oddsfeed.Match{
		ID:           "ext-1001",
		SportKey:     "americanfootball_nfl",
		CommenceTime: time.Date(2026, 9, 13, 17, 0, 0, 0, time.UTC),
		HomeTeam:     "Kansas City Chiefs",
		AwayTeam:     "Buffalo Bills",
		Bookmakers:   bookmakers,
	}
}

func h2hBook(key string, home, away string) oddsfeed.Bookmaker {
	outcomes := []oddsfeed.Outcome{}
	if home != "" {
		outcomes = append(outcomes, oddsfeed.Outcome{Name: "Kansas City Chiefs", Price: dec(home)})
	}
	if away != "" {
		outcomes = append(outcomes, oddsfeed.Outcome{Name: "Buffalo Bills", Price: dec(away)})
	}
	return oddsfeed.Bookmaker{
		Key:     key,
		Markets: []oddsfeed.Market{{Key: "h2h", Outcomes: outcomes}},
	}
}

func TestBuildPayload_H2HConsensusAndLay(t *testing.T) {
	match := nflMatch(
		h2hBook("draftkings", "1.90", "2.10"),
		h2hBook("fanduel", "1.95", "2.05"),
		h2hBook("betmgm", "2.00", "2.00"),
	)
	payload := BuildPayload(match, "americanfootball_nfl")

	if payload.ExternalID != "ext-1001" {
		t.Fatalf("externalId = %q", payload.ExternalID)
	}
	if payload.Sport != "American Football" {
		t.Fatalf("sport = %q, want American Football", payload.Sport)
	}
	market, ok := payload.Market("h2h")
	if !ok {
		t.Fatalf("h2h market missing")
	}
	if market.Label != "Match Winner" {
		t.Fatalf("label = %q", market.Label)
	}
	if len(market.Runners) != 2 {
		t.Fatalf("runners = %d, want 2 (no Draw priced)", len(market.Runners))
	}
	home := market.Runners[0]
	if home.Name != "Kansas City Chiefs" {
		t.Fatalf("runner order wrong, first = %q", home.Name)
	}
	if home.BackOdds.String() != "1.95" {
		t.Fatalf("home back = %s, want 1.95", home.BackOdds)
	}
	if home.LayOdds.String() != "1.97" {
		t.Fatalf("home lay = %s, want 1.97", home.LayOdds)
	}
}

func TestBuildPayload_H2HIncludesDraw(t *testing.T) {
	book := oddsfeed.Bookmaker{
		Key: "pinnacle",
		Markets: []oddsfeed.Market{{
			Key: "h2h",
			Outcomes: []oddsfeed.Outcome{
				{Name: "Kansas City Chiefs", Price: dec("2.40")},
				{Name: "Buffalo Bills", Price: dec("2.90")},
				{Name: "Draw", Price: dec("3.20")},
			},
		}},
	}
	payload := BuildPayload(nflMatch(book), "soccer_epl")
	market, ok := payload.Market("h2h")
	if !ok {
		t.Fatalf("h2h market missing")
	}
	if len(market.Runners) != 3 {
		t.Fatalf("runners = %d, want 3", len(market.Runners))
	}
	if market.Runners[2].Name != "Draw" {
		t.Fatalf("last runner = %q, want Draw", market.Runners[2].Name)
	}
}

func TestBuildPayload_H2HNeedsTwoPricedRunners(t *testing.T) {
	payload := BuildPayload(nflMatch(h2hBook("draftkings", "1.90", "")), "americanfootball_nfl")
	if _, ok := payload.Market("h2h"); ok {
		t.Fatalf("h2h market built from a single priced runner")
	}
	if len(payload.Markets) != 0 {
		t.Fatalf("markets = %d, want 0", len(payload.Markets))
	}
}

func spreadsBook(homePoint, awayPoint *decimal.Decimal) oddsfeed.Bookmaker {
	return oddsfeed.Bookmaker{
		Key: "draftkings",
		Markets: []oddsfeed.Market{{
			Key: "spreads",
			Outcomes: []oddsfeed.Outcome{
				{Name: "Kansas City Chiefs", Price: dec("1.91"), Point: homePoint},
				{Name: "Buffalo Bills", Price: dec("1.91"), Point: awayPoint},
			},
		}},
	}
}

func TestBuildPayload_Spreads(t *testing.T) {
	payload := BuildPayload(nflMatch(spreadsBook(decPtr("-3.5"), decPtr("3.5"))), "americanfootball_nfl")
	market, ok := payload.Market("spreads")
	if !ok {
		t.Fatalf("spreads market missing")
	}
	if market.Label != "Spread (-3.5)" {
		t.Fatalf("label = %q", market.Label)
	}
	if market.Runners[0].Name != "Kansas City Chiefs -3.5" {
		t.Fatalf("home runner = %q", market.Runners[0].Name)
	}
	if market.Runners[1].Name != "Buffalo Bills +3.5" {
		t.Fatalf("away runner = %q", market.Runners[1].Name)
	}
	if market.Runners[0].Point == nil || market.Runners[0].Point.String() != "-3.5" {
		t.Fatalf("home point = %v", market.Runners[0].Point)
	}
}

func TestBuildPayload_SpreadsNeedsBothPoints(t *testing.T) {
	payload := BuildPayload(nflMatch(spreadsBook(decPtr("-3.5"), nil)), "americanfootball_nfl")
	if _, ok := payload.Market("spreads"); ok {
		t.Fatalf("partial spread market built")
	}
}

func TestBuildPayload_SpreadsPointsFromFirstBookOnly(t *testing.T) {
	first := spreadsBook(decPtr("-3.5"), decPtr("3.5"))
	second := oddsfeed.Bookmaker{
		Key: "fanduel",
		Markets: []oddsfeed.Market{{
			Key: "spreads",
			Outcomes: []oddsfeed.Outcome{
				{Name: "Kansas City Chiefs", Price: dec("1.95"), Point: decPtr("-4.5")},
				{Name: "Buffalo Bills", Price: dec("1.87"), Point: decPtr("4.5")},
			},
		}},
	}
	payload := BuildPayload(nflMatch(first, second), "americanfootball_nfl")
	market, ok := payload.Market("spreads")
	if !ok {
		t.Fatalf("spreads market missing")
	}
	if market.Label != "Spread (-3.5)" {
		t.Fatalf("label = %q, second book's line leaked in", market.Label)
	}
	// Prices still average across both books: (1.91+1.95)/2 = 1.93.
	if market.Runners[0].BackOdds.String() != "1.93" {
		t.Fatalf("home back = %s, want 1.93", market.Runners[0].BackOdds)
	}
}

func totalsBook(overPoint *decimal.Decimal, withUnder bool) oddsfeed.Bookmaker {
	outcomes := []oddsfeed.Outcome{
		{Name: "Over", Price: dec("1.90"), Point: overPoint},
	}
	if withUnder {
		outcomes = append(outcomes, oddsfeed.Outcome{Name: "Under", Price: dec("1.92"), Point: overPoint})
	}
	return oddsfeed.Bookmaker{
		Key:     "draftkings",
		Markets: []oddsfeed.Market{{Key: "totals", Outcomes: outcomes}},
	}
}

func TestBuildPayload_Totals(t *testing.T) {
	payload := BuildPayload(nflMatch(totalsBook(decPtr("44.5"), true)), "americanfootball_nfl")
	market, ok := payload.Market("totals")
	if !ok {
		t.Fatalf("totals market missing")
	}
	if market.Label != "Total O/U 44.5" {
		t.Fatalf("label = %q", market.Label)
	}
	if market.Runners[0].Name != "Over 44.5" || market.Runners[1].Name != "Under 44.5" {
		t.Fatalf("runners = %q, %q", market.Runners[0].Name, market.Runners[1].Name)
	}
}

func TestBuildPayload_TotalsNeedsOverUnderAndPoint(t *testing.T) {
	if payload := BuildPayload(nflMatch(totalsBook(nil, true)), "americanfootball_nfl"); len(payload.Markets) != 0 {
		t.Fatalf("totals built without a point")
	}
	if payload := BuildPayload(nflMatch(totalsBook(decPtr("44.5"), false)), "americanfootball_nfl"); len(payload.Markets) != 0 {
		t.Fatalf("totals built without an Under outcome")
	}
}

func TestBuildPayload_MarketOrderFixed(t *testing.T) {
	bm := oddsfeed.Bookmaker{
		Key: "draftkings",
		Markets: []oddsfeed.Market{
			totalsBook(decPtr("44.5"), true).Markets[0],
			spreadsBook(decPtr("-3.5"), decPtr("3.5")).Markets[0],
			h2hBook("draftkings", "1.90", "2.10").Markets[0],
		},
	}
	payload := BuildPayload(nflMatch(bm), "americanfootball_nfl")
	got := payload.MarketKeys()
	want := []string{"h2h", "spreads", "totals"}
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}
}

func TestBuildPayload_NoBookmakers(t *testing.T) {
	payload := BuildPayload(nflMatch(), "americanfootball_nfl")
	if len(payload.Markets) != 0 {
		t.Fatalf("markets = %d, want 0", len(payload.Markets))
	}
	if payload.HomeTeam != "Kansas City Chiefs" {
		t.Fatalf("payload still carries match identity, got home = %q", payload.HomeTeam)
	}
}

func TestSportLabel_UnknownKeyFallsBack(t *testing.T) {
	if got := SportLabel("esports_lol"); got != "esports_lol" {
		t.Fatalf("SportLabel = %q", got)
	}
	if got := SportLabel("basketball_nba"); got != "Basketball" {
		t.Fatalf("SportLabel = %q", got)
	}
}
