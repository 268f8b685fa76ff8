package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is the append-only log of lookup attempts. The caller owns its
// lifecycle: Open once at startup, Close on shutdown.
type Store struct {
	db *gorm.DB
}

// Open creates the sqlite database (and its parent directory) if needed,
// runs migrations, and returns a ready store.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Append inserts one record. The store assigns the identifier and, when
// unset, the query timestamp. Case fields must be non-empty.
func (s *Store) Append(ctx context.Context, rec *QueryRecord) error {
	if strings.TrimSpace(rec.CaseType) == "" ||
		strings.TrimSpace(rec.CaseNumber) == "" ||
		strings.TrimSpace(rec.FilingYear) == "" {
		return fmt.Errorf("query record requires case type, case number and filing year")
	}
	if rec.Status != StatusSuccess && rec.Status != StatusError {
		return fmt.Errorf("invalid query status %q", rec.Status)
	}

	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to append query record: %w", err)
	}
	return nil
}

// Recent returns up to limit summaries, newest first. Timestamp ties are
// broken by identifier, which is monotonically assigned. The listing never
// exceeds MaxHistory regardless of the requested limit.
func (s *Store) Recent(ctx context.Context, limit int) ([]QuerySummary, error) {
	if limit <= 0 || limit > MaxHistory {
		limit = MaxHistory
	}

	summaries := make([]QuerySummary, 0, limit)
	err := s.db.WithContext(ctx).
		Model(&QueryRecord{}).
		Select("case_type", "case_number", "filing_year", "query_timestamp", "status").
		Order("query_timestamp DESC, id DESC").
		Limit(limit).
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list query records: %w", err)
	}
	return summaries, nil
}
