package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"oddsimport/internal/client/oddsfeed"
	"oddsimport/internal/config"
	"oddsimport/internal/importer"
	"oddsimport/internal/models"
	"oddsimport/internal/repository"
)

// OddsFeed is the slice of the feed client the service consumes.
type OddsFeed interface {
	GetOdds(ctx context.Context, sportKey string, opts oddsfeed.OddsOptions) ([]oddsfeed.Match, error)
	GetScores(ctx context.Context, sportKey string, daysFrom int) ([]oddsfeed.Score, error)
	LastQuota() oddsfeed.Quota
}

// FeedRefresh is the cached result of one odds fetch for a sport.
type FeedRefresh struct {
	SportKey  string                   `json:"sportKey"`
	FetchedAt time.Time                `json:"fetchedAt"`
	Payloads  []importer.ImportPayload `json:"payloads"`
	Quota     oddsfeed.Quota           `json:"quota"`
}

// FeedService fetches raw bookmaker odds, builds import payloads and keeps
// the latest refresh per sport for preview and import commands.
type FeedService struct {
	Feed   OddsFeed
	Repo   repository.ImportRepository
	Logger *zap.Logger
	Config config.FeedConfig

	mu    sync.Mutex
	cache map[string]FeedRefresh
}

// Refresh fetches odds for one sport and rebuilds its import payloads. A
// feed failure leaves the previous cache entry untouched.
func (s *FeedService) Refresh(ctx context.Context, sportKey string) (FeedRefresh, error) {
	if !importer.KnownSportKey(sportKey) {
		return FeedRefresh{}, fmt.Errorf("unsupported sport key: %s", sportKey)
	}
	matches, err := s.Feed.GetOdds(ctx, sportKey, oddsfeed.OddsOptions{
		Regions:    s.Config.Regions,
		Markets:    s.Config.Markets,
		OddsFormat: s.Config.OddsFormat,
	})
	if err != nil {
		return FeedRefresh{}, &importer.Error{Code: importer.FailFeedUnavailable, Err: err}
	}

	now := time.Now().UTC()
	payloads := make([]importer.ImportPayload, 0, len(matches))
	for _, match := range matches {
		payloads = append(payloads, importer.BuildPayload(match, sportKey))
	}

	refresh := FeedRefresh{
		SportKey:  sportKey,
		FetchedAt: now,
		Payloads:  payloads,
		Quota:     s.Feed.LastQuota(),
	}

	s.mu.Lock()
	if s.cache == nil {
		s.cache = make(map[string]FeedRefresh)
	}
	s.cache[sportKey] = refresh
	s.mu.Unlock()

	s.persistSnapshot(ctx, sportKey, matches, refresh)

	if s.Logger != nil {
		s.Logger.Info("feed refreshed",
			zap.String("sport", sportKey),
			zap.Int("matches", len(payloads)),
			zap.String("quota_remaining", refresh.Quota.Remaining),
		)
	}
	return refresh, nil
}

// persistSnapshot stores the raw feed response for audit. Best effort: a
// failed write must not fail the refresh.
func (s *FeedService) persistSnapshot(ctx context.Context, sportKey string, matches []oddsfeed.Match, refresh FeedRefresh) {
	if s.Repo == nil {
		return
	}
	raw, err := json.Marshal(matches)
	if err != nil {
		return
	}
	snapshot := &models.FeedSnapshot{
		SportKey:  sportKey,
		Matches:   len(matches),
		Raw:       datatypes.JSON(raw),
		FetchedAt: refresh.FetchedAt,
	}
	if refresh.Quota.Remaining != "" {
		snapshot.QuotaRemaining = &refresh.Quota.Remaining
	}
	if refresh.Quota.Used != "" {
		snapshot.QuotaUsed = &refresh.Quota.Used
	}
	if err := s.Repo.InsertFeedSnapshot(ctx, snapshot); err != nil && s.Logger != nil {
		s.Logger.Warn("persist feed snapshot failed", zap.Error(err))
	}
}

// Cached returns the last refresh for a sport, if any.
func (s *FeedService) Cached(sportKey string) (FeedRefresh, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	refresh, ok := s.cache[sportKey]
	return refresh, ok
}

// Payload finds a built payload by external id across all cached sports.
func (s *FeedService) Payload(externalID string) (importer.ImportPayload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, refresh := range s.cache {
		for _, payload := range refresh.Payloads {
			if payload.ExternalID == externalID {
				return payload, true
			}
		}
	}
	return importer.ImportPayload{}, false
}

// Scores passes live/recent results through from the feed.
func (s *FeedService) Scores(ctx context.Context, sportKey string, daysFrom int) ([]oddsfeed.Score, error) {
	if !importer.KnownSportKey(sportKey) {
		return nil, fmt.Errorf("unsupported sport key: %s", sportKey)
	}
	scores, err := s.Feed.GetScores(ctx, sportKey, daysFrom)
	if err != nil {
		return nil, &importer.Error{Code: importer.FailFeedUnavailable, Err: err}
	}
	return scores, nil
}

// Quota reports the feed request budget seen on the latest response.
func (s *FeedService) Quota() oddsfeed.Quota {
	return s.Feed.LastQuota()
}

// CleanupSnapshots drops raw snapshots older than the retention window.
func (s *FeedService) CleanupSnapshots(ctx context.Context, retention time.Duration) (int64, error) {
	if s.Repo == nil || retention <= 0 {
		return 0, nil
	}
	return s.Repo.DeleteFeedSnapshotsBefore(ctx, time.Now().UTC().Add(-retention))
}
