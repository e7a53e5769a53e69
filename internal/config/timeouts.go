// Package config provides centralized timeout constants for the application.
//
// These values are tuned for:
//   - Portal website response times (scraping delays, rate limiting)
//   - SQLite performance characteristics (WAL mode, busy timeout)
//   - Chat API latency expectations (rule-based answers should be fast,
//     generative fallback may take several seconds)
package config

import "time"

// HTTP server timeouts
const (
	// ChatProcessing is the timeout for handling a single chat message.
	// Rule-based answers complete in milliseconds; the generative
	// fallback with retries needs headroom.
	ChatProcessing = 30 * time.Second

	// HTTPRead is the server read timeout. Chat payloads are small JSON.
	HTTPRead = 10 * time.Second

	// HTTPWrite is the server write timeout.
	// Should accommodate ChatProcessing + response serialization.
	HTTPWrite = 35 * time.Second

	// HTTPIdle is the server idle timeout for keep-alive connections.
	HTTPIdle = 120 * time.Second
)

// Scraper timeouts
const (
	// ScraperRequest is the timeout for a single HTTP request to the
	// portal website.
	ScraperRequest = 30 * time.Second

	// ScraperRetryInitial is the initial delay before retrying a failed
	// request. Uses exponential backoff: 2s -> 4s -> 8s -> 16s
	ScraperRetryInitial = 2 * time.Second

	// ScraperRateLimit is the minimum delay between consecutive
	// scraping requests. Prevents overwhelming the portal server.
	ScraperRateLimit = 2 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Handles concurrent write contention during refresh jobs.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Background job intervals
const (
	// DataRefreshInterval is how often schedules and news are
	// re-scraped from the portal.
	DataRefreshInterval = time.Hour

	// DataRefreshInitialDelay is the delay before the first refresh.
	// Allows the server to stabilize after warmup.
	DataRefreshInitialDelay = 5 * time.Minute

	// CacheCleanupInterval is how often expired cache entries are deleted.
	CacheCleanupInterval = 12 * time.Hour

	// MetricsUpdateInterval is how often gauge metrics are updated.
	MetricsUpdateInterval = 5 * time.Minute

	// RateLimiterCleanupInterval is how often inactive session rate
	// limiters are cleaned.
	RateLimiterCleanupInterval = 5 * time.Minute
)

// Health probes
const (
	// ReadinessCheckTimeout bounds the database ping inside the
	// readiness probe.
	ReadinessCheckTimeout = 5 * time.Second

	// DataRefreshGracePeriod is how long the readiness probe reports
	// not-ready while the first portal refresh runs. After this the
	// service accepts traffic even with an empty cache.
	DataRefreshGracePeriod = 10 * time.Minute
)

// LLM fallback timeouts
const (
	// LLMRequestTimeout bounds a single generative fallback call,
	// including provider-side retries.
	LLMRequestTimeout = 20 * time.Second
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
