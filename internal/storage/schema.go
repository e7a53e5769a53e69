package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func InitSchema(db *sql.DB) error {
	if err := createSchedulesTable(db); err != nil {
		return err
	}
	if err := createNewsTable(db); err != nil {
		return err
	}

	return createFAQOverridesTable(db)
}

func createSchedulesTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		date INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT,
		content TEXT NOT NULL,
		location TEXT,
		leader TEXT,
		participants TEXT,
		event_type TEXT,
		status TEXT CHECK(status IN ('pending', 'approved', 'rejected')) NOT NULL,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schedules_date ON schedules(date);
	CREATE INDEX IF NOT EXISTS idx_schedules_leader ON schedules(leader);
	CREATE INDEX IF NOT EXISTS idx_schedules_status ON schedules(status);
	CREATE INDEX IF NOT EXISTS idx_schedules_cached_at ON schedules(cached_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create schedules table: %w", err)
	}

	return nil
}

func createNewsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS news (
		id TEXT PRIMARY KEY,
		kind TEXT CHECK(kind IN ('news', 'announcement')) NOT NULL,
		title TEXT NOT NULL,
		url TEXT,
		published_at TEXT,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_news_kind ON news(kind);
	CREATE INDEX IF NOT EXISTS idx_news_cached_at ON news(cached_at);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create news table: %w", err)
	}

	return nil
}

// faq_overrides holds curated question/answer pairs maintained outside
// the code, layered over the built-in FAQ table. No TTL: overrides
// live until replaced.
func createFAQOverridesTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS faq_overrides (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		keywords TEXT,
		category TEXT,
		updated_at INTEGER NOT NULL
	);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create faq_overrides table: %w", err)
	}

	return nil
}
