package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Chat metrics
	ChatMessagesTotal   *prometheus.CounterVec
	ChatDurationSeconds *prometheus.HistogramVec
	ActiveSessions      prometheus.Gauge

	// FAQ metrics
	FAQLookupsTotal *prometheus.CounterVec

	// LLM fallback metrics
	LLMRequestsTotal   *prometheus.CounterVec
	LLMDurationSeconds *prometheus.HistogramVec

	// Scraper metrics
	ScraperRequestsTotal   *prometheus.CounterVec
	ScraperDurationSeconds *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CachedSchedules  prometheus.Gauge

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec

	// Rate limiter metrics
	RateLimiterDropped *prometheus.CounterVec

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec

	// Warmup metrics
	WarmupTasksTotal *prometheus.CounterVec
	WarmupDuration   prometheus.Histogram

	// Snapshot metrics
	SnapshotsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Chat metrics
		ChatMessagesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tbu_chat_messages_total",
				Help: "Total number of chat messages by intent and outcome",
			},
			[]string{"intent", "outcome"}, // outcome: answered, no_data, faq, llm_fallback, error
		),

		ChatDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tbu_chat_duration_seconds",
				Help:    "Chat message processing duration in seconds by intent",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 20},
			},
			[]string{"intent"},
		),

		ActiveSessions: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "tbu_active_sessions",
				Help: "Number of conversation sessions with live context",
			},
		),

		// FAQ metrics
		FAQLookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tbu_faq_lookups_total",
				Help: "Total number of FAQ lookups by result",
			},
			[]string{"result"}, // result: hit, miss
		),

		// LLM fallback metrics
		LLMRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tbu_llm_requests_total",
				Help: "Total number of generative fallback requests by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error, rate_limited
		),

		LLMDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tbu_llm_duration_seconds",
				Help:    "Generative fallback request duration in seconds by provider",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20},
			},
			[]string{"provider"},
		),

		// Scraper metrics
		ScraperRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tbu_scraper_requests_total",
				Help: "Total number of scraper requests by source and status",
			},
			[]string{"source", "status"}, // status: success, error, timeout, not_found
		),

		ScraperDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tbu_scraper_duration_seconds",
				Help:    "Scraper request duration in seconds by source",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"source"}, // source: schedules, news, announcements
		),

		// Cache metrics
		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tbu_cache_hits_total",
				Help: "Total number of cache hits by source",
			},
			[]string{"source"},
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tbu_cache_misses_total",
				Help: "Total number of cache misses by source",
			},
			[]string{"source"},
		),

		CachedSchedules: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "tbu_cached_schedules",
				Help: "Number of non-expired schedule entries in the cache",
			},
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tbu_http_errors_total",
				Help: "Total HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: timeout, rate_limit, bad_request, etc.
		),

		// Rate limiter metrics
		RateLimiterDropped: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tbu_rate_limiter_dropped_total",
				Help: "Total number of requests dropped by rate limiter",
			},
			[]string{"limiter_type"}, // limiter_type: session, llm
		),

		// Singleflight metrics
		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tbu_singleflight_dedup_total",
				Help: "Total number of deduplicated scrape requests (requests that waited instead of executing)",
			},
			[]string{"source"},
		),

		// Warmup metrics
		WarmupTasksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tbu_warmup_tasks_total",
				Help: "Total number of warmup tasks by task and status",
			},
			[]string{"task", "status"}, // status: success, error
		),

		WarmupDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tbu_warmup_duration_seconds",
				Help:    "Total duration of warmup process",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),

		// Snapshot metrics
		SnapshotsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "tbu_snapshots_total",
				Help: "Total number of database snapshot uploads by status",
			},
			[]string{"status"}, // status: success, error, skipped
		),
	}

	return m
}

// RecordChatMessage records a processed chat message
func (m *Metrics) RecordChatMessage(intent, outcome string, duration float64) {
	m.ChatMessagesTotal.WithLabelValues(intent, outcome).Inc()
	m.ChatDurationSeconds.WithLabelValues(intent).Observe(duration)
}

// SetActiveSessions updates the live session gauge
func (m *Metrics) SetActiveSessions(n int) {
	m.ActiveSessions.Set(float64(n))
}

// RecordFAQLookup records a FAQ lookup result
func (m *Metrics) RecordFAQLookup(result string) {
	m.FAQLookupsTotal.WithLabelValues(result).Inc()
}

// RecordLLMRequest records a generative fallback request
func (m *Metrics) RecordLLMRequest(provider, status string, duration float64) {
	m.LLMRequestsTotal.WithLabelValues(provider, status).Inc()
	m.LLMDurationSeconds.WithLabelValues(provider).Observe(duration)
}

// RecordScraperRequest records a scraper request with status
func (m *Metrics) RecordScraperRequest(source, status string, duration float64) {
	m.ScraperRequestsTotal.WithLabelValues(source, status).Inc()
	m.ScraperDurationSeconds.WithLabelValues(source).Observe(duration)
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(source string) {
	m.CacheHitsTotal.WithLabelValues(source).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(source string) {
	m.CacheMissesTotal.WithLabelValues(source).Inc()
}

// SetCachedSchedules updates the cached schedule count gauge
func (m *Metrics) SetCachedSchedules(n int) {
	m.CachedSchedules.Set(float64(n))
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiterType string) {
	m.RateLimiterDropped.WithLabelValues(limiterType).Inc()
}

// RecordSingleflightDedup records a deduplicated request
func (m *Metrics) RecordSingleflightDedup(source string) {
	m.SingleflightDedupTotal.WithLabelValues(source).Inc()
}

// RecordWarmupTask records a warmup task completion
func (m *Metrics) RecordWarmupTask(task, status string) {
	m.WarmupTasksTotal.WithLabelValues(task, status).Inc()
}

// RecordWarmupDuration records total warmup duration
func (m *Metrics) RecordWarmupDuration(duration float64) {
	m.WarmupDuration.Observe(duration)
}

// RecordSnapshot records a snapshot upload attempt
func (m *Metrics) RecordSnapshot(status string) {
	m.SnapshotsTotal.WithLabelValues(status).Inc()
}

var global atomic.Pointer[Metrics]

// InitGlobal installs the process-wide metrics instance.
func InitGlobal(m *Metrics) {
	global.Store(m)
}

// Global returns the process-wide metrics instance, or nil before InitGlobal.
// Callers must nil-check; packages that cannot take an injected instance
// (deep helpers) use this accessor.
func Global() *Metrics {
	return global.Load()
}
