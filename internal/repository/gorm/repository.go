package gormrepository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"oddsimport/internal/models"
	"oddsimport/internal/repository"
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertImportRecord(ctx context.Context, item *models.ImportRecord) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListImportRecords(ctx context.Context, params repository.ListImportRecordsParams) ([]models.ImportRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	query := s.importRecordQuery(ctx, params)
	query = applyOrder(query, params.OrderBy, params.Asc, "created_at")
	limit := normalizeLimit(params.Limit, 50)
	offset := normalizeOffset(params.Offset)
	var items []models.ImportRecord
	if err := query.Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CountImportRecords(ctx context.Context, params repository.ListImportRecordsParams) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	var total int64
	if err := s.importRecordQuery(ctx, params).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) importRecordQuery(ctx context.Context, params repository.ListImportRecordsParams) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&models.ImportRecord{})
	if params.ExternalID != nil && strings.TrimSpace(*params.ExternalID) != "" {
		query = query.Where("external_id = ?", strings.TrimSpace(*params.ExternalID))
	}
	if params.SportKey != nil && strings.TrimSpace(*params.SportKey) != "" {
		query = query.Where("sport_key = ?", strings.TrimSpace(*params.SportKey))
	}
	if params.Status != nil && strings.TrimSpace(*params.Status) != "" {
		query = query.Where("status = ?", strings.TrimSpace(*params.Status))
	}
	if params.Since != nil && !params.Since.IsZero() {
		query = query.Where("created_at >= ?", *params.Since)
	}
	return query
}

func (s *Store) InsertFeedSnapshot(ctx context.Context, item *models.FeedSnapshot) error {
	if s == nil || s.db == nil || item == nil {
		return nil
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) DeleteFeedSnapshotsBefore(ctx context.Context, before time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if before.IsZero() {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("fetched_at < ?", before).
		Delete(&models.FeedSnapshot{})
	return res.RowsAffected, res.Error
}

func applyOrder(query *gorm.DB, orderBy string, asc *bool, fallback string) *gorm.DB {
	column := strings.TrimSpace(orderBy)
	if column == "" {
		column = fallback
	}
	direction := "DESC"
	if asc != nil && *asc {
		direction = "ASC"
	}
	return query.Order(column + " " + direction)
}

func normalizeLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > 500 {
		return 500
	}
	return limit
}

func normalizeOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
