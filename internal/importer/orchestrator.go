package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"oddsimport/internal/client/catalog"
)

// CatalogService is the slice of the platform catalog the orchestrator
// consumes. *catalog.Client satisfies it.
type CatalogService interface {
	CreateMatch(ctx context.Context, req catalog.CreateMatchRequest) (catalog.Match, error)
	CreateMarket(ctx context.Context, req catalog.CreateMarketRequest) (catalog.Market, error)
}

// Result is the outcome of one accepted import command.
type Result struct {
	ExternalID     string    `json:"externalId"`
	MatchID        string    `json:"matchId"`
	MatchReused    bool      `json:"matchReused"`
	Attempted      int       `json:"attempted"`
	MarketsCreated int       `json:"marketsCreated"`
	Warnings       []Warning `json:"warnings,omitempty"`
}

// Orchestrator runs the import state machine for one payload at a time per
// external id. It resolves the match against the catalog (reusing an
// existing match on an external-id conflict), then creates the selected
// markets one by one so that each failure stays attributable to its market
// and never races catalog-side uniqueness constraints.
type Orchestrator struct {
	Catalog CatalogService
	Tracker *Tracker
	Logger  *zap.Logger

	// Notify, when set, observes every tracker transition this orchestrator
	// makes (importing, then success or error). Called synchronously; keep
	// it cheap.
	Notify func(externalID string, state State)
}

// Import executes one import command. Rejections (bad selection, an import
// already in flight) happen before any network call and leave the tracker
// untouched. Every admitted command terminates in exactly one of success or
// error, both recorded on the tracker.
func (o *Orchestrator) Import(ctx context.Context, payload ImportPayload, selected []string) (Result, error) {
	if o.Catalog == nil {
		return Result{}, fmt.Errorf("catalog service is nil")
	}
	if o.Tracker == nil {
		return Result{}, fmt.Errorf("tracker is nil")
	}

	toCreate, err := selectMarkets(payload, selected)
	if err != nil {
		return Result{}, err
	}
	if !o.Tracker.Begin(payload.ExternalID) {
		return Result{}, ErrImportInFlight
	}
	o.notify(payload.ExternalID, State{Status: StatusImporting})

	result, err := o.run(ctx, payload, toCreate)
	if err != nil {
		state := State{Status: StatusError, Err: err.Error()}
		o.Tracker.Finish(payload.ExternalID, state)
		o.notify(payload.ExternalID, state)
		return Result{}, err
	}
	state := State{Status: StatusSuccess, MatchID: result.MatchID}
	o.Tracker.Finish(payload.ExternalID, state)
	o.notify(payload.ExternalID, state)
	return result, nil
}

func (o *Orchestrator) notify(externalID string, state State) {
	if o.Notify != nil {
		o.Notify(externalID, state)
	}
}

// selectMarkets validates the caller's selection against the built payload
// and returns the markets to create, preserving the payload's fixed order.
func selectMarkets(payload ImportPayload, selected []string) ([]CanonicalMarket, error) {
	if len(selected) == 0 {
		return nil, &Error{Code: FailInvalidSelection, Err: errors.New("no markets selected")}
	}
	want := make(map[string]bool, len(selected))
	for _, key := range selected {
		want[key] = true
	}
	var toCreate []CanonicalMarket
	for _, market := range payload.Markets {
		if want[market.Key] {
			toCreate = append(toCreate, market)
		}
	}
	if len(toCreate) == 0 {
		return nil, &Error{
			Code: FailInvalidSelection,
			Err:  fmt.Errorf("selected markets %v not available for this match", selected),
		}
	}
	return toCreate, nil
}

func (o *Orchestrator) run(ctx context.Context, payload ImportPayload, toCreate []CanonicalMarket) (Result, error) {
	matchID, reused, err := o.resolveMatch(ctx, payload)
	if err != nil {
		return Result{}, &Error{Code: FailMatchCreation, Err: err}
	}

	result := Result{
		ExternalID:  payload.ExternalID,
		MatchID:     matchID,
		MatchReused: reused,
		Attempted:   len(toCreate),
	}

	// Sequential on purpose. Parallel creation would interleave failures
	// across markets and can trip the catalog's per-match market name
	// uniqueness check mid-flight.
	for _, market := range toCreate {
		if err := o.createMarket(ctx, matchID, market); err != nil {
			if o.Logger != nil {
				o.Logger.Warn("market creation failed",
					zap.String("external_id", payload.ExternalID),
					zap.String("market", market.Label),
					zap.Error(err),
				)
			}
			result.Warnings = append(result.Warnings, Warning{
				MarketKey:   market.Key,
				MarketLabel: market.Label,
				Reason:      err.Error(),
			})
			continue
		}
		result.MarketsCreated++
	}

	if result.Attempted > 0 && result.MarketsCreated == 0 {
		return Result{}, &Error{
			Code: FailTotalImport,
			Err:  fmt.Errorf("all %d selected markets failed to create", result.Attempted),
		}
	}

	if o.Logger != nil {
		o.Logger.Info("match imported",
			zap.String("external_id", payload.ExternalID),
			zap.String("match_id", matchID),
			zap.Bool("match_reused", reused),
			zap.Int("markets_created", result.MarketsCreated),
			zap.Int("markets_failed", len(result.Warnings)),
		)
	}
	return result, nil
}

// resolveMatch creates the match or, on an external-id conflict, adopts the
// catalog's existing match id. The conflict response is the sole authority
// on duplicates; any pre-fetched id set is display sugar only.
func (o *Orchestrator) resolveMatch(ctx context.Context, payload ImportPayload) (matchID string, reused bool, err error) {
	match, err := o.Catalog.CreateMatch(ctx, catalog.CreateMatchRequest{
		TeamA:      payload.HomeTeam,
		TeamB:      payload.AwayTeam,
		Sport:      payload.Sport,
		StartTime:  payload.CommenceTime.UTC().Format(time.RFC3339),
		ExternalID: payload.ExternalID,
	})
	if err != nil {
		var conflict *catalog.ConflictError
		if errors.As(err, &conflict) {
			if o.Logger != nil {
				o.Logger.Info("match already exists, reusing",
					zap.String("external_id", payload.ExternalID),
					zap.String("match_id", conflict.MatchID),
				)
			}
			return conflict.MatchID, true, nil
		}
		return "", false, err
	}
	return match.ID, false, nil
}

func (o *Orchestrator) createMarket(ctx context.Context, matchID string, market CanonicalMarket) error {
	runners := make([]catalog.Runner, 0, len(market.Runners))
	for _, r := range market.Runners {
		runners = append(runners, catalog.Runner{
			Name:     r.Name,
			BackOdds: json.Number(r.BackOdds.StringFixed(2)),
			LayOdds:  json.Number(r.LayOdds.StringFixed(2)),
		})
	}
	_, err := o.Catalog.CreateMarket(ctx, catalog.CreateMarketRequest{
		MatchID: matchID,
		Name:    market.Label,
		Runners: runners,
	})
	return err
}
