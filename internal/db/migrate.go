package db

import (
	"oddsimport/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.ImportRecord{},
		&models.FeedSnapshot{},
	)
}
