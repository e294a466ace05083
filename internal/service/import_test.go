package service

import (
	"context"
	"errors"
	"testing"

	"oddsimport/internal/client/catalog"
	"oddsimport/internal/client/oddsfeed"
	"oddsimport/internal/importer"
	"oddsimport/internal/repository"
	"oddsimport/internal/stream"
)

type stubCatalog struct {
	listIDs     []string
	listErr     error
	conflict    string
	matchErr    error
	marketErr   error
	marketCalls int
}

func (s *stubCatalog) CreateMatch(ctx context.Context, req catalog.CreateMatchRequest) (catalog.Match, error) {
	if s.matchErr != nil {
		return catalog.Match{}, s.matchErr
	}
	if s.conflict != "" {
		return catalog.Match{}, &catalog.ConflictError{MatchID: s.conflict}
	}
	return catalog.Match{ID: "match-1", ExternalID: req.ExternalID}, nil
}

func (s *stubCatalog) CreateMarket(ctx context.Context, req catalog.CreateMarketRequest) (catalog.Market, error) {
	s.marketCalls++
	if s.marketErr != nil {
		return catalog.Market{}, s.marketErr
	}
	return catalog.Market{ID: "market-1", MatchID: req.MatchID, Name: req.Name}, nil
}

func (s *stubCatalog) ListExternalIDs(ctx context.Context, limit int) ([]string, error) {
	return s.listIDs, s.listErr
}

func newImportService(t *testing.T, cat *stubCatalog, matches ...oddsfeed.Match) (*ImportService, *stubRepo) {
	t.Helper()
	repo := &stubRepo{}
	feeds := &FeedService{
		Feed: &stubFeed{matches: matches},
		Repo: repo,
	}
	if len(matches) > 0 {
		if _, err := feeds.Refresh(context.Background(), matches[0].SportKey); err != nil {
			t.Fatalf("seed refresh failed: %v", err)
		}
	}
	svc := &ImportService{
		Orchestrator:  &importer.Orchestrator{Catalog: cat, Tracker: importer.NewTracker()},
		Feeds:         feeds,
		Catalog:       cat,
		Repo:          repo,
		Hub:           stream.NewHub(nil),
		KnownIDsLimit: 500,
	}
	svc.AttachStream()
	return svc, repo
}

func TestImportService_SuccessRecordsAuditAndStream(t *testing.T) {
	svc, repo := newImportService(t, &stubCatalog{}, feedMatch("ext-1"))

	events, cancel := svc.Hub.Subscribe()
	defer cancel()

	result, err := svc.Import(context.Background(), "ext-1", []string{"h2h"})
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.MarketsCreated != 1 {
		t.Fatalf("created = %d", result.MarketsCreated)
	}

	if len(repo.records) != 1 {
		t.Fatalf("records = %d, want 1", len(repo.records))
	}
	rec := repo.records[0]
	if rec.Status != "success" || rec.MatchID == nil || *rec.MatchID != result.MatchID {
		t.Fatalf("record = %+v", rec)
	}
	if rec.ID == "" {
		t.Fatalf("record missing id")
	}

	// importing, then success.
	first := <-events
	second := <-events
	if first.Status != "importing" || second.Status != "success" {
		t.Fatalf("stream events = %q, %q", first.Status, second.Status)
	}
}

func TestImportService_UnknownExternalID(t *testing.T) {
	svc, repo := newImportService(t, &stubCatalog{}, feedMatch("ext-1"))
	_, err := svc.Import(context.Background(), "ext-404", []string{"h2h"})
	if !errors.Is(err, ErrUnknownExternalID) {
		t.Fatalf("err = %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("local rejection was audited")
	}
}

func TestImportService_LocalRejectionsNotAudited(t *testing.T) {
	svc, repo := newImportService(t, &stubCatalog{}, feedMatch("ext-1"))
	_, err := svc.Import(context.Background(), "ext-1", nil)
	if importer.CodeOf(err) != importer.FailInvalidSelection {
		t.Fatalf("err = %v", err)
	}
	if len(repo.records) != 0 {
		t.Fatalf("invalid selection was audited")
	}
}

func TestImportService_TerminalErrorAudited(t *testing.T) {
	cat := &stubCatalog{matchErr: errors.New("catalog down")}
	svc, repo := newImportService(t, cat, feedMatch("ext-1"))

	_, err := svc.Import(context.Background(), "ext-1", []string{"h2h"})
	if importer.CodeOf(err) != importer.FailMatchCreation {
		t.Fatalf("err = %v", err)
	}
	if len(repo.records) != 1 {
		t.Fatalf("records = %d", len(repo.records))
	}
	rec := repo.records[0]
	if rec.Status != "error" || rec.FailureCode == nil || *rec.FailureCode != "MatchCreationFailed" {
		t.Fatalf("record = %+v", rec)
	}
}

func TestImportService_DuplicateHintOnlyForUnattempted(t *testing.T) {
	cat := &stubCatalog{listIDs: []string{"ext-1", "ext-2"}}
	svc, _ := newImportService(t, cat, feedMatch("ext-1"))

	if _, err := svc.RefreshKnownIDs(context.Background()); err != nil {
		t.Fatalf("refresh known ids failed: %v", err)
	}

	// Never attempted, known to catalog: duplicate badge.
	if st := svc.StateFor("ext-2"); st.Status != importer.StatusDuplicate {
		t.Fatalf("state = %+v, want duplicate", st)
	}
	// Never attempted, unknown: idle.
	if st := svc.StateFor("ext-9"); st.Status != importer.StatusIdle {
		t.Fatalf("state = %+v, want idle", st)
	}

	// The duplicate hint never blocks the import command.
	cat.conflict = "match-55"
	result, err := svc.Import(context.Background(), "ext-1", []string{"h2h"})
	if err != nil {
		t.Fatalf("import of duplicate-labeled match failed: %v", err)
	}
	if result.MatchID != "match-55" || !result.MatchReused {
		t.Fatalf("result = %+v, want conflict reuse", result)
	}
	// After an attempt the tracked state wins over the hint.
	if st := svc.StateFor("ext-1"); st.Status != importer.StatusSuccess {
		t.Fatalf("state = %+v, want success", st)
	}
}

func TestImportService_History(t *testing.T) {
	svc, _ := newImportService(t, &stubCatalog{}, feedMatch("ext-1"))
	if _, err := svc.Import(context.Background(), "ext-1", []string{"h2h"}); err != nil {
		t.Fatalf("import failed: %v", err)
	}
	ext := "ext-1"
	items, total, err := svc.History(context.Background(), repository.ListImportRecordsParams{ExternalID: &ext})
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("history = %d/%d, want 1/1", len(items), total)
	}
}
