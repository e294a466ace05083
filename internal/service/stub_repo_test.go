package service

import (
	"context"
	"sync"
	"time"

	"oddsimport/internal/models"
	"oddsimport/internal/repository"
)

// stubRepo is a test-only in-memory implementation of
// repository.ImportRepository.
type stubRepo struct {
	mu        sync.Mutex
	records   []models.ImportRecord
	snapshots []models.FeedSnapshot
}

func (s *stubRepo) InsertImportRecord(ctx context.Context, item *models.ImportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, *item)
	return nil
}

func (s *stubRepo) ListImportRecords(ctx context.Context, params repository.ListImportRecordsParams) ([]models.ImportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ImportRecord
	for _, r := range s.records {
		if params.ExternalID != nil && r.ExternalID != *params.ExternalID {
			continue
		}
		if params.Status != nil && r.Status != *params.Status {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *stubRepo) CountImportRecords(ctx context.Context, params repository.ListImportRecordsParams) (int64, error) {
	items, _ := s.ListImportRecords(ctx, params)
	return int64(len(items)), nil
}

func (s *stubRepo) InsertFeedSnapshot(ctx context.Context, item *models.FeedSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, *item)
	return nil
}

func (s *stubRepo) DeleteFeedSnapshotsBefore(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.snapshots[:0]
	deleted := int64(0)
	for _, snap := range s.snapshots {
		if snap.FetchedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, snap)
	}
	s.snapshots = kept
	return deleted, nil
}
