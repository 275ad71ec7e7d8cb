package datastore

import (
	"github.com/rcanovic/restaurant-reviews/internal/errors"
	"gorm.io/gorm"
)

// performAutoMigration runs GORM auto-migration for every catalog table.
// connectionInfo is only used for log output.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	err := db.AutoMigrate(
		&Restaurant{},
		&Address{},
		&Reviewer{},
		&Review{},
		&ReviewLocation{},
	)
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migration").
			Context("db_type", dbType).
			Build()
	}

	if debug {
		GetLogger().Debug("Database schema migrated",
			"db_type", dbType,
			"connection", connectionInfo)
	}
	return nil
}
