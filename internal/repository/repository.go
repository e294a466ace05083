package repository

import (
	"context"
	"time"

	"oddsimport/internal/models"
)

type ListImportRecordsParams struct {
	Limit      int
	Offset     int
	ExternalID *string
	SportKey   *string
	Status     *string
	Since      *time.Time
	OrderBy    string
	Asc        *bool
}

// ImportRepository persists import audit rows and raw feed snapshots.
type ImportRepository interface {
	InsertImportRecord(ctx context.Context, item *models.ImportRecord) error
	ListImportRecords(ctx context.Context, params ListImportRecordsParams) ([]models.ImportRecord, error)
	CountImportRecords(ctx context.Context, params ListImportRecordsParams) (int64, error)

	InsertFeedSnapshot(ctx context.Context, item *models.FeedSnapshot) error
	DeleteFeedSnapshotsBefore(ctx context.Context, before time.Time) (int64, error)
}
