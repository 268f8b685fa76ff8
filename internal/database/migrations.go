package database

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates the queries table and its indexes if absent. Safe to
// run repeatedly.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&QueryRecord{}); err != nil {
		return fmt.Errorf("failed to migrate queries table: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func createIndexes(db *gorm.DB) error {
	// Recency-ordered listing
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_queries_timestamp
		ON queries(query_timestamp)
	`).Error; err != nil {
		return err
	}

	// Repeat lookups of the same case
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_queries_case
		ON queries(case_type, case_number, filing_year)
	`).Error; err != nil {
		return err
	}

	return nil
}
