// Package snapshot backs up the SQLite cache to object storage and
// restores it on cold start, so a fresh instance can answer schedule
// questions before the first scrape completes.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tbu-portal/tbu-chatbot-go/internal/logger"
	"github.com/tbu-portal/tbu-chatbot-go/internal/metrics"
	"github.com/tbu-portal/tbu-chatbot-go/internal/s3client"
	"github.com/tbu-portal/tbu-chatbot-go/internal/storage"
)

// ErrNotFound indicates no snapshot exists in object storage.
var ErrNotFound = errors.New("snapshot: not found")

// Config holds snapshot manager configuration.
type Config struct {
	SnapshotKey string        // object key for the snapshot (e.g., "snapshots/portal.db.zst")
	LockKey     string        // object key for the upload lock
	LockTTL     time.Duration // TTL for the upload lock
	Interval    time.Duration // how often to upload a snapshot
	TempDir     string        // directory for temporary files
}

// Manager periodically uploads compressed database snapshots.
// Uploads are guarded by a distributed lock so only one replica at a
// time writes to the bucket.
type Manager struct {
	client  *s3client.Client
	db      *storage.DB
	config  Config
	metrics *metrics.Metrics
	logger  *logger.Logger

	mu          sync.RWMutex
	currentETag string
}

// New creates a snapshot manager.
func New(client *s3client.Client, db *storage.DB, cfg Config, m *metrics.Metrics, log *logger.Logger) *Manager {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 2 * time.Minute
	}
	return &Manager{
		client:  client,
		db:      db,
		config:  cfg,
		metrics: m,
		logger:  log,
	}
}

// Restore downloads the latest snapshot and decompresses it to dbPath.
// Call it before opening the database. Returns ErrNotFound when the
// bucket has no snapshot yet.
func Restore(ctx context.Context, client *s3client.Client, key, dbPath string) (string, error) {
	body, etag, err := client.Download(ctx, key)
	if err != nil {
		if errors.Is(err, s3client.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("snapshot: download: %w", err)
	}
	defer body.Close()

	if dir := filepath.Dir(dbPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("snapshot: create data dir: %w", err)
		}
	}

	if err := s3client.DecompressStream(body, dbPath); err != nil {
		os.Remove(dbPath)
		return "", fmt.Errorf("snapshot: decompress: %w", err)
	}
	return etag, nil
}

// UploadOnce creates, compresses and uploads one snapshot.
// Returns without uploading when another replica holds the lock.
func (m *Manager) UploadOnce(ctx context.Context) error {
	lock := s3client.NewDistributedLock(m.client, m.config.LockKey, m.config.LockTTL)
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		m.record("error")
		return fmt.Errorf("snapshot: acquire lock: %w", err)
	}
	if !acquired {
		m.record("skipped")
		if m.logger != nil {
			m.logger.Debug("snapshot upload skipped, lock held elsewhere")
		}
		return nil
	}
	defer func() {
		if err := lock.Release(ctx); err != nil && m.logger != nil {
			m.logger.WithError(err).Warn("snapshot lock release failed")
		}
	}()

	snapshotPath := filepath.Join(m.config.TempDir, fmt.Sprintf("portal_%d.db", time.Now().UnixNano()))
	if err := m.db.CreateSnapshot(ctx, snapshotPath); err != nil {
		m.record("error")
		return fmt.Errorf("snapshot: create: %w", err)
	}
	defer os.Remove(snapshotPath)

	compressedPath := snapshotPath + ".zst"
	if err := s3client.CompressFile(snapshotPath, compressedPath); err != nil {
		m.record("error")
		return fmt.Errorf("snapshot: compress: %w", err)
	}
	defer os.Remove(compressedPath)

	compressedFile, err := os.Open(compressedPath)
	if err != nil {
		m.record("error")
		return fmt.Errorf("snapshot: open compressed file: %w", err)
	}
	defer compressedFile.Close()

	etag, err := m.client.Upload(ctx, m.config.SnapshotKey, compressedFile, "application/zstd")
	if err != nil {
		m.record("error")
		return fmt.Errorf("snapshot: upload: %w", err)
	}

	m.mu.Lock()
	m.currentETag = etag
	m.mu.Unlock()
	m.record("success")

	if m.logger != nil {
		m.logger.WithField("etag", etag).Info("snapshot uploaded")
	}
	return nil
}

// Run uploads snapshots at the configured interval until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if m.logger != nil {
				m.logger.Info("snapshot loop stopped")
			}
			return
		case <-ticker.C:
			if err := m.UploadOnce(ctx); err != nil && m.logger != nil {
				m.logger.WithError(err).Error("snapshot upload failed")
			}
		}
	}
}

// CurrentETag returns the ETag of the most recently uploaded or
// restored snapshot.
func (m *Manager) CurrentETag() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentETag
}

// SetCurrentETag records the ETag of a snapshot restored at startup.
func (m *Manager) SetCurrentETag(etag string) {
	m.mu.Lock()
	m.currentETag = etag
	m.mu.Unlock()
}

func (m *Manager) record(status string) {
	if m.metrics != nil {
		m.metrics.RecordSnapshot(status)
	}
}
