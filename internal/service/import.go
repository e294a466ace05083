package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"oddsimport/internal/importer"
	"oddsimport/internal/models"
	"oddsimport/internal/repository"
	"oddsimport/internal/stream"
)

// ExternalIDLister enumerates external ids already registered in the
// catalog. *catalog.Client satisfies it.
type ExternalIDLister interface {
	ListExternalIDs(ctx context.Context, limit int) ([]string, error)
}

// ErrUnknownExternalID rejects commands for matches absent from every cached
// feed refresh.
var ErrUnknownExternalID = errors.New("no built payload for this external id")

// ImportService drives import commands end to end: it resolves the payload
// from the feed cache, runs the orchestrator, labels never-attempted matches
// with the duplicate hint, broadcasts transitions and writes the audit row.
type ImportService struct {
	Orchestrator *importer.Orchestrator
	Feeds        *FeedService
	Catalog      ExternalIDLister
	Repo         repository.ImportRepository
	Hub          *stream.Hub
	Logger       *zap.Logger

	KnownIDsLimit int

	mu       sync.Mutex
	knownIDs map[string]struct{}
}

// RefreshKnownIDs re-pulls the catalog's external-id set. The set only
// pre-labels matches as duplicate in status displays; the catalog's conflict
// response stays authoritative during an actual import.
func (s *ImportService) RefreshKnownIDs(ctx context.Context) (int, error) {
	if s.Catalog == nil {
		return 0, fmt.Errorf("catalog client is nil")
	}
	ids, err := s.Catalog.ListExternalIDs(ctx, s.KnownIDsLimit)
	if err != nil {
		return 0, err
	}
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}
	s.mu.Lock()
	s.knownIDs = known
	s.mu.Unlock()
	if s.Logger != nil {
		s.Logger.Info("known external ids refreshed", zap.Int("count", len(known)))
	}
	return len(known), nil
}

func (s *ImportService) isKnown(externalID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.knownIDs[externalID]
	return ok
}

// StateFor resolves the display state for one external id. A tracked attempt
// always wins; the duplicate hint applies only to ids never attempted here.
func (s *ImportService) StateFor(externalID string) importer.State {
	if s.Orchestrator != nil && s.Orchestrator.Tracker != nil {
		if state, ok := s.Orchestrator.Tracker.Get(externalID); ok {
			return state
		}
	}
	if s.isKnown(externalID) {
		return importer.State{Status: importer.StatusDuplicate}
	}
	return importer.State{Status: importer.StatusIdle}
}

// States returns the display state for each requested external id.
func (s *ImportService) States(externalIDs []string) map[string]importer.State {
	out := make(map[string]importer.State, len(externalIDs))
	for _, id := range externalIDs {
		out[id] = s.StateFor(id)
	}
	return out
}

// Preview returns the built payload for confirmation before import.
func (s *ImportService) Preview(externalID string) (importer.ImportPayload, error) {
	if s.Feeds == nil {
		return importer.ImportPayload{}, fmt.Errorf("feed service is nil")
	}
	payload, ok := s.Feeds.Payload(externalID)
	if !ok {
		return importer.ImportPayload{}, ErrUnknownExternalID
	}
	return payload, nil
}

// Import runs one import command for an external id present in the feed
// cache. The terminal outcome (success or error) is recorded in the audit
// table; local rejections are not.
func (s *ImportService) Import(ctx context.Context, externalID string, selected []string) (importer.Result, error) {
	payload, err := s.Preview(externalID)
	if err != nil {
		return importer.Result{}, err
	}

	result, err := s.Orchestrator.Import(ctx, payload, selected)
	switch {
	case err == nil:
		s.recordOutcome(ctx, payload, selected, result, nil)
		return result, nil
	case errors.Is(err, importer.ErrImportInFlight):
		return importer.Result{}, err
	case importer.CodeOf(err) == importer.FailInvalidSelection:
		return importer.Result{}, err
	default:
		s.recordOutcome(ctx, payload, selected, importer.Result{}, err)
		return importer.Result{}, err
	}
}

// AttachStream wires the orchestrator's transition hook to the broadcast
// hub. Call once during startup.
func (s *ImportService) AttachStream() {
	if s.Orchestrator == nil || s.Hub == nil {
		return
	}
	s.Orchestrator.Notify = func(externalID string, state importer.State) {
		s.Hub.Publish(stream.Event{
			ExternalID: externalID,
			Status:     string(state.Status),
			MatchID:    state.MatchID,
			Error:      state.Err,
		})
	}
}

// History lists persisted import attempts.
func (s *ImportService) History(ctx context.Context, params repository.ListImportRecordsParams) ([]models.ImportRecord, int64, error) {
	if s.Repo == nil {
		return nil, 0, fmt.Errorf("repository is nil")
	}
	items, err := s.Repo.ListImportRecords(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Repo.CountImportRecords(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *ImportService) recordOutcome(ctx context.Context, payload importer.ImportPayload, selected []string, result importer.Result, importErr error) {
	if s.Repo == nil {
		return
	}
	record := &models.ImportRecord{
		ID:               uuid.NewString(),
		ExternalID:       payload.ExternalID,
		SportKey:         payload.SportKey,
		HomeTeam:         payload.HomeTeam,
		AwayTeam:         payload.AwayTeam,
		MarketsRequested: len(selected),
	}
	if importErr != nil {
		record.Status = string(importer.StatusError)
		msg := importErr.Error()
		record.Error = &msg
		if code := importer.CodeOf(importErr); code != "" {
			cs := string(code)
			record.FailureCode = &cs
		}
	} else {
		record.Status = string(importer.StatusSuccess)
		record.MatchID = &result.MatchID
		record.MatchReused = result.MatchReused
		record.MarketsCreated = result.MarketsCreated
		if len(result.Warnings) > 0 {
			if raw, err := json.Marshal(result.Warnings); err == nil {
				record.Warnings = datatypes.JSON(raw)
			}
		}
	}
	if raw, err := json.Marshal(payload); err == nil {
		record.Payload = datatypes.JSON(raw)
	}
	if err := s.Repo.InsertImportRecord(ctx, record); err != nil && s.Logger != nil {
		s.Logger.Warn("persist import record failed",
			zap.String("external_id", payload.ExternalID),
			zap.Error(err),
		)
	}
}
