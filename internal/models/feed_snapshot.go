package models

import (
	"time"

	"gorm.io/datatypes"
)

// FeedSnapshot keeps the raw odds feed response for one refresh so imports
// can be audited against exactly what the feed said at the time.
type FeedSnapshot struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	SportKey string `gorm:"type:text;index;not null"`
	Matches  int    `gorm:"not null"`

	QuotaRemaining *string `gorm:"type:text"`
	QuotaUsed      *string `gorm:"type:text"`

	Raw       datatypes.JSON `gorm:"type:jsonb;not null"`
	FetchedAt time.Time      `gorm:"type:timestamptz;not null;index"`
}

func (FeedSnapshot) TableName() string {
	return "feed_snapshots"
}
