package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tbu-portal/tbu-chatbot-go/internal/faq"
	"github.com/tbu-portal/tbu-chatbot-go/internal/schedule"
)

// ReplaceSchedules swaps the whole schedules table for a freshly
// scraped set in a single transaction. The portal publishes the full
// schedule each time, so a wholesale replace keeps deletions visible.
func (db *DB) ReplaceSchedules(ctx context.Context, entries []schedule.Schedule) error {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace schedules: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM schedules`); err != nil {
		return fmt.Errorf("clear schedules: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO schedules (id, date, start_time, end_time, content, location, leader, participants, event_type, status, cached_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert schedules: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	cachedAt := time.Now().Unix()
	for _, e := range entries {
		participants, err := json.Marshal(e.Participants)
		if err != nil {
			return fmt.Errorf("encode participants for %s: %w", e.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			e.ID, e.Date.Unix(), e.StartTime, e.EndTime, e.Content,
			e.Location, e.Leader, string(participants), e.EventType, e.Status, cachedAt,
		); err != nil {
			slog.ErrorContext(ctx, "failed to save schedule",
				"schedule_id", e.ID,
				"error", err)
			return fmt.Errorf("save schedule %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace schedules: %w", err)
	}

	duration := time.Since(start)
	slog.DebugContext(ctx, "schedules replaced",
		"count", len(entries),
		"duration_ms", duration.Milliseconds())
	if duration > 500*time.Millisecond {
		slog.WarnContext(ctx, "slow batch operation",
			"operation", "ReplaceSchedules",
			"count", len(entries),
			"duration_ms", duration.Milliseconds())
	}

	return nil
}

// GetSchedules returns all non-expired schedule entries, sorted by
// date then start time. Status filtering happens at query time so the
// stored data stays a faithful copy of the portal.
func (db *DB) GetSchedules(ctx context.Context) ([]schedule.Schedule, error) {
	query := `
		SELECT id, date, start_time, end_time, content, location, leader, participants, event_type, status
		FROM schedules
		WHERE cached_at > ?
		ORDER BY date ASC, start_time ASC
	`

	rows, err := db.conn.QueryContext(ctx, query, db.getTTLTimestamp())
	if err != nil {
		slog.ErrorContext(ctx, "failed to query schedules", "error", err)
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []schedule.Schedule
	for rows.Next() {
		var (
			e            schedule.Schedule
			dateUnix     int64
			participants sql.NullString
		)
		if err := rows.Scan(
			&e.ID, &dateUnix, &e.StartTime, &e.EndTime, &e.Content,
			&e.Location, &e.Leader, &participants, &e.EventType, &e.Status,
		); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		e.Date = time.Unix(dateUnix, 0).UTC()
		if participants.Valid && participants.String != "" && participants.String != "null" {
			if err := json.Unmarshal([]byte(participants.String), &e.Participants); err != nil {
				slog.WarnContext(ctx, "malformed participants field",
					"schedule_id", e.ID,
					"error", err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}

	return entries, nil
}

// CountSchedules returns the number of non-expired schedule entries.
func (db *DB) CountSchedules(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schedules WHERE cached_at > ?`, db.getTTLTimestamp(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count schedules: %w", err)
	}
	return count, nil
}

// SaveNewsBatch inserts or updates news items in a single transaction.
func (db *DB) SaveNewsBatch(ctx context.Context, items []News) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save news: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO news (id, kind, title, url, published_at, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			url = excluded.url,
			published_at = excluded.published_at,
			cached_at = excluded.cached_at
	`)
	if err != nil {
		return fmt.Errorf("prepare insert news: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	cachedAt := time.Now().Unix()
	for _, item := range items {
		if _, err := stmt.ExecContext(ctx,
			item.ID, item.Kind, item.Title, item.URL, item.PublishedAt, cachedAt,
		); err != nil {
			slog.ErrorContext(ctx, "failed to save news item",
				"news_id", item.ID,
				"error", err)
			return fmt.Errorf("save news %s: %w", item.ID, err)
		}
	}

	return tx.Commit()
}

// GetRecentNews returns the newest non-expired items of the given
// kind, most recently cached first.
func (db *DB) GetRecentNews(ctx context.Context, kind string, limit int) ([]News, error) {
	query := `
		SELECT id, kind, title, url, published_at, cached_at
		FROM news
		WHERE kind = ? AND cached_at > ?
		ORDER BY cached_at DESC, id DESC
		LIMIT ?
	`

	rows, err := db.conn.QueryContext(ctx, query, kind, db.getTTLTimestamp(), limit)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query news", "kind", kind, "error", err)
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []News
	for rows.Next() {
		var item News
		if err := rows.Scan(&item.ID, &item.Kind, &item.Title, &item.URL, &item.PublishedAt, &item.CachedAt); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news: %w", err)
	}

	return items, nil
}

// ReplaceFAQOverrides swaps the curated FAQ entries for a new set in
// one transaction, mirroring how the schedule table is refreshed.
func (db *DB) ReplaceFAQOverrides(ctx context.Context, items []faq.Item) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace faq overrides: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM faq_overrides`); err != nil {
		return fmt.Errorf("clear faq overrides: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO faq_overrides (question, answer, keywords, category, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert faq overrides: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	updatedAt := time.Now().Unix()
	for _, item := range items {
		keywords, err := json.Marshal(item.Keywords)
		if err != nil {
			return fmt.Errorf("encode keywords for %q: %w", item.Question, err)
		}
		if _, err := stmt.ExecContext(ctx,
			item.Question, item.Answer, string(keywords), item.Category, updatedAt,
		); err != nil {
			return fmt.Errorf("save faq override %q: %w", item.Question, err)
		}
	}

	return tx.Commit()
}

// GetFAQOverrides returns the curated FAQ entries in insertion order.
func (db *DB) GetFAQOverrides(ctx context.Context) ([]faq.Item, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT question, answer, keywords, category
		FROM faq_overrides
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query faq overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []faq.Item
	for rows.Next() {
		var (
			item     faq.Item
			keywords sql.NullString
		)
		if err := rows.Scan(&item.Question, &item.Answer, &keywords, &item.Category); err != nil {
			return nil, fmt.Errorf("scan faq override: %w", err)
		}
		if keywords.Valid && keywords.String != "" && keywords.String != "null" {
			if err := json.Unmarshal([]byte(keywords.String), &item.Keywords); err != nil {
				slog.WarnContext(ctx, "malformed keywords field",
					"question", item.Question,
					"error", err)
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate faq overrides: %w", err)
	}

	return items, nil
}

// CleanupExpired deletes cache entries past their TTL.
// Returns the total number of rows removed.
func (db *DB) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := db.getTTLTimestamp()
	var total int64

	for _, table := range []string{"schedules", "news"} {
		res, err := db.conn.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE cached_at <= ?", table), cutoff)
		if err != nil {
			return total, fmt.Errorf("cleanup %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
	}

	slog.DebugContext(ctx, "expired cache entries removed", "rows", total)
	return total, nil
}
