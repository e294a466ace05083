package models

import (
	"time"

	"gorm.io/datatypes"
)

// ImportRecord is the audit row written for every terminal import attempt.
// The in-memory tracker answers "what is the state right now"; this table
// answers "what happened" after a restart.
type ImportRecord struct {
	ID         string `gorm:"primaryKey;type:uuid"`
	ExternalID string `gorm:"type:text;index;not null"`
	SportKey   string `gorm:"type:text;index"`
	HomeTeam   string `gorm:"type:text;not null"`
	AwayTeam   string `gorm:"type:text;not null"`

	Status  string  `gorm:"type:varchar(20);not null;index"`
	MatchID *string `gorm:"type:text;index"`
	// MatchReused is true when the catalog resolved the match via an
	// external-id conflict instead of creating a new record.
	MatchReused bool `gorm:"not null;default:false"`

	MarketsRequested int `gorm:"not null"`
	MarketsCreated   int `gorm:"not null"`

	FailureCode *string        `gorm:"type:varchar(40)"`
	Error       *string        `gorm:"type:text"`
	Warnings    datatypes.JSON `gorm:"type:jsonb"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"type:timestamptz;autoCreateTime;index"`
}

func (ImportRecord) TableName() string {
	return "import_records"
}
