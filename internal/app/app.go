// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tbu-portal/tbu-chatbot-go/internal/buildinfo"
	"github.com/tbu-portal/tbu-chatbot-go/internal/chatbot"
	"github.com/tbu-portal/tbu-chatbot-go/internal/config"
	"github.com/tbu-portal/tbu-chatbot-go/internal/convo"
	"github.com/tbu-portal/tbu-chatbot-go/internal/ctxutil"
	apperrors "github.com/tbu-portal/tbu-chatbot-go/internal/errors"
	"github.com/tbu-portal/tbu-chatbot-go/internal/faq"
	"github.com/tbu-portal/tbu-chatbot-go/internal/genai"
	"github.com/tbu-portal/tbu-chatbot-go/internal/logger"
	"github.com/tbu-portal/tbu-chatbot-go/internal/metrics"
	"github.com/tbu-portal/tbu-chatbot-go/internal/rag"
	"github.com/tbu-portal/tbu-chatbot-go/internal/ratelimit"
	"github.com/tbu-portal/tbu-chatbot-go/internal/s3client"
	"github.com/tbu-portal/tbu-chatbot-go/internal/scraper"
	"github.com/tbu-portal/tbu-chatbot-go/internal/sentry"
	"github.com/tbu-portal/tbu-chatbot-go/internal/snapshot"
	"github.com/tbu-portal/tbu-chatbot-go/internal/storage"
	"github.com/tbu-portal/tbu-chatbot-go/internal/warmup"
)

// Snapshot object keys within the configured bucket.
const (
	snapshotObjectKey = "snapshots/portal.db.zst"
	snapshotLockKey   = "snapshots/portal.db.lock"
)

// rateLimitedResponse is returned with HTTP 429 when a session sends
// messages faster than its token bucket refills.
const rateLimitedResponse = "Bạn đang gửi tin nhắn quá nhanh. Vui lòng chờ một chút rồi thử lại nhé!"

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg      *config.Config
	logger   *logger.Logger
	db       *storage.DB
	metrics  *metrics.Metrics
	registry *prometheus.Registry

	portal     *scraper.Portal
	ragIndex   *rag.Index
	responder  *genai.Responder
	convoStore *convo.Store
	engine     *chatbot.Engine
	faqItems   []faq.Item

	sessionLimiter *ratelimit.KeyedLimiter
	llmLimiter     *ratelimit.KeyedLimiter

	snapshots      *snapshot.Manager
	readinessState *warmup.ReadinessState

	server *http.Server
	wg     sync.WaitGroup
}

// Initialize wires up all dependencies and returns a ready-to-run
// application. Optional subsystems (LLM fallback, snapshots, error
// tracking) degrade to disabled instead of failing startup.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})

	log = log.WithField("service", "tbu-chatbot")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}
	slog.SetDefault(log.Logger)

	log.Info("Initializing application...")
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	if err := sentry.Initialize(sentry.Config{
		Token:   cfg.SentryToken,
		Host:    cfg.SentryHost,
		Release: buildinfo.Version,
	}); err != nil {
		log.WithError(err).Warn("Error tracking initialization failed")
	}

	var s3Client *s3client.Client
	restoredETag := ""
	if cfg.SnapshotEnabled() {
		var err error
		s3Client, err = s3client.New(ctx, s3client.Config{
			Endpoint:    cfg.S3Endpoint,
			AccessKeyID: cfg.S3AccessKeyID,
			SecretKey:   cfg.S3SecretAccessKey,
			BucketName:  cfg.S3Bucket,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 client: %w", err)
		}

		// Restore only on a cold start. An existing database file is
		// fresher than any uploaded snapshot.
		if _, statErr := os.Stat(cfg.SQLitePath()); os.IsNotExist(statErr) {
			etag, err := snapshot.Restore(ctx, s3Client, snapshotObjectKey, cfg.SQLitePath())
			switch {
			case errors.Is(err, snapshot.ErrNotFound):
				log.Info("No database snapshot found, starting with an empty cache")
			case err != nil:
				log.WithError(err).Warn("Snapshot restore failed, starting with an empty cache")
			default:
				restoredETag = etag
				log.WithField("etag", etag).Info("Database restored from snapshot")
			}
		}
	}

	db, err := storage.New(cfg.SQLitePath(), cfg.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	log.WithField("path", cfg.SQLitePath()).WithField("cache_ttl", cfg.CacheTTL).Info("Database connected")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)
	metrics.InitGlobal(m)

	scraperClient := scraper.NewClient(cfg.ScraperTimeout, cfg.ScraperMaxRetries, config.ScraperRateLimit)
	portal := scraper.NewPortal(scraperClient, cfg.ScraperBaseURLs[0], m)

	ragIndex := rag.NewIndex(log)

	var responder *genai.Responder
	if cfg.HasLLMProvider() {
		responder, err = genai.NewResponder(ctx, genai.Config{
			Providers:      providerChain(cfg),
			GeminiAPIKey:   cfg.GeminiAPIKey,
			GeminiModel:    cfg.GeminiChatModel,
			GroqAPIKey:     cfg.GroqAPIKey,
			GroqModel:      cfg.GroqChatModel,
			RequestTimeout: config.LLMRequestTimeout,
		}, m, log)
		if err != nil {
			log.WithError(err).Warn("Generative fallback initialization failed")
		} else if responder.IsEnabled() {
			log.WithField("primary", cfg.LLMPrimaryProvider).
				WithField("fallback", cfg.LLMFallbackProvider).
				Info("Generative fallback enabled")
		}
	}

	convoStore := convo.NewStore(cfg.Chat.ContextTTL, cfg.Chat.ContextCleanupPeriod, func(count int) {
		m.SetActiveSessions(count)
	})

	sessionLimiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "session",
		Burst:         cfg.Chat.SessionRateLimitBurst,
		RefillRate:    cfg.Chat.SessionRateLimitRefillPerSec,
		CleanupPeriod: config.RateLimiterCleanupInterval,
		Metrics:       m,
	})
	llmLimiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "llm",
		Burst:         cfg.Chat.LLMBurstTokens,
		RefillRate:    cfg.Chat.LLMRefillPerHour / 3600.0, // hourly budget as per-second refill
		CleanupPeriod: config.RateLimiterCleanupInterval,
		Metrics:       m,
	})

	faqItems := loadFAQItems(ctx, db, log)

	engine := chatbot.New(chatbot.Options{
		DB:               db,
		Store:            convoStore,
		Responder:        responder,
		RAGIndex:         ragIndex,
		LLMBudget:        llmLimiter,
		FAQItems:         faqItems,
		Metrics:          m,
		Logger:           log,
		MaxMessageLength: cfg.Chat.MaxMessageLength,
		TopicMatchAll:    cfg.Chat.TopicMatchAll,
	})

	app := &Application{
		cfg:            cfg,
		logger:         log,
		db:             db,
		metrics:        m,
		registry:       registry,
		portal:         portal,
		ragIndex:       ragIndex,
		responder:      responder,
		convoStore:     convoStore,
		engine:         engine,
		faqItems:       faqItems,
		sessionLimiter: sessionLimiter,
		llmLimiter:     llmLimiter,
		readinessState: warmup.NewReadinessState(config.DataRefreshGracePeriod),
	}

	if s3Client != nil {
		app.snapshots = snapshot.New(s3Client, db, snapshot.Config{
			SnapshotKey: snapshotObjectKey,
			LockKey:     snapshotLockKey,
			Interval:    cfg.SnapshotInterval,
		}, m, log)
		app.snapshots.SetCurrentETag(restoredETag)
	}

	app.server = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.buildRouter(),
		ReadTimeout:  config.HTTPRead,
		WriteTimeout: config.HTTPWrite,
		IdleTimeout:  config.HTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// providerChain maps the configured primary/fallback provider names to
// the ordered chain the responder tries.
func providerChain(cfg *config.Config) []genai.Provider {
	byName := func(name string) (genai.Provider, bool) {
		switch name {
		case "gemini":
			return genai.ProviderGemini, true
		case "groq":
			return genai.ProviderGroq, true
		default:
			return "", false
		}
	}

	var chain []genai.Provider
	if p, ok := byName(cfg.LLMPrimaryProvider); ok {
		chain = append(chain, p)
	}
	if p, ok := byName(cfg.LLMFallbackProvider); ok && (len(chain) == 0 || chain[0] != p) {
		chain = append(chain, p)
	}
	return chain
}

func (a *Application) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger, a.metrics))
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}

	router.GET("/", a.serviceInfo)
	router.GET("/healthz", a.livenessCheck)
	router.HEAD("/healthz", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.POST("/api/chat", a.readinessMiddleware(), a.handleChat)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsPassword != "", a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	return router
}

func (a *Application) serviceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "tbu-chatbot",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"endpoints": gin.H{
			"chat":    "POST /api/chat",
			"healthz": "GET /healthz",
			"readyz":  "GET /readyz",
			"metrics": "GET /metrics",
		},
	})
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) getFeatures() map[string]bool {
	return map[string]bool{
		"generative_fallback": a.responder != nil && a.responder.IsEnabled(),
		"retrieval":           a.ragIndex != nil && a.ragIndex.IsEnabled(),
		"snapshots":           a.snapshots != nil,
	}
}

func (a *Application) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ReadinessCheckTimeout)
	defer cancel()

	if !a.readinessState.IsReady() {
		status := a.readinessState.Status()
		a.logger.WithField("elapsed_seconds", status.ElapsedSeconds).
			WithField("timeout_seconds", status.TimeoutSeconds).
			Debug("Readiness check: data refresh in progress")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": status.Reason,
			"progress": gin.H{
				"elapsed_seconds": status.ElapsedSeconds,
				"timeout_seconds": status.TimeoutSeconds,
			},
		})
		return
	}

	if err := a.db.Conn().PingContext(ctx); err != nil {
		a.logger.WithError(err).Warn("Readiness check failed: database unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"database": "connected",
		"cache":    a.getCacheStats(ctx),
		"features": a.getFeatures(),
	})
}

func (a *Application) getCacheStats(ctx context.Context) map[string]int {
	stats := map[string]int{
		"sessions":     a.convoStore.Len(),
		"indexed_docs": a.ragIndex.Count(),
	}

	if count, err := a.db.CountSchedules(ctx); err == nil {
		stats["schedules"] = count
	} else {
		a.logger.WithError(err).Warn("Failed to count schedules in cache stats")
	}

	return stats
}

type chatRequest struct {
	SessionID string     `json:"session_id"`
	Message   string     `json:"message"`
	History   []chatTurn `json:"history"`
}

// chatTurn is one prior question/answer pair the client replays for
// the generative fallback prompt.
type chatTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type chatResponse struct {
	Answer     string   `json:"answer"`
	Intent     string   `json:"intent"`
	Outcome    string   `json:"outcome"`
	Confidence float64  `json:"confidence,omitempty"`
	Sources    []string `json:"sources"`
	SessionID  string   `json:"session_id"`
}

// handleChat answers one chat message. A missing session_id starts a
// fresh session; the generated ID is echoed back so the client can
// keep the conversation going.
func (a *Application) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		verr := apperrors.NewValidationError("body", "invalid request body")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": verr.Error(),
		})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if !a.sessionLimiter.Allow(sessionID) {
		c.Header("Retry-After", "5")
		c.JSON(http.StatusTooManyRequests, gin.H{
			"answer":     rateLimitedResponse,
			"session_id": sessionID,
		})
		return
	}

	ctx := ctxutil.WithSessionID(c.Request.Context(), sessionID)
	ctx, cancel := context.WithTimeout(ctx, config.ChatProcessing)
	defer cancel()

	var history []genai.Turn
	for _, turn := range req.History {
		history = append(history, genai.Turn{Question: turn.Question, Answer: turn.Answer})
	}

	res := a.engine.Process(ctx, sessionID, req.Message, history)

	sources := res.Sources
	if sources == nil {
		sources = []string{}
	}
	c.JSON(http.StatusOK, chatResponse{
		Answer:     res.Answer,
		Intent:     res.Intent,
		Outcome:    res.Outcome,
		Confidence: res.Confidence,
		Sources:    sources,
		SessionID:  sessionID,
	})
}

// Run starts the HTTP server and background jobs, then blocks until a
// shutdown signal arrives.
//
// Graceful shutdown sequence:
//  1. Receive SIGINT/SIGTERM
//  2. Cancel context so background jobs stop
//  3. Wait for background jobs to finish
//  4. Close resources (HTTP server, LLM clients, stores, database)
//
// Resources must outlive the background jobs or the refresh loop hits
// a closed database mid-transaction.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.startBackgroundJobs(ctx)
	a.startHTTPServer()

	sig := a.waitForShutdownSignal()
	a.logger.WithField("signal", sig.String()).Info("Received shutdown signal")

	cancel()

	a.logger.Info("Waiting for background jobs to finish...")
	start := time.Now()
	a.wg.Wait()
	a.logger.WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("All background jobs completed")

	return a.shutdown()
}

// startBackgroundJobs starts all background goroutines tracked by the
// WaitGroup.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.dataRefresh(ctx)
	})
	a.wg.Go(func() {
		a.cacheCleanup(ctx)
	})
	a.wg.Go(func() {
		a.updateSessionMetrics(ctx)
	})
	if a.snapshots != nil {
		a.wg.Go(func() {
			a.snapshots.Run(ctx)
		})
	}
}

// startHTTPServer starts the HTTP server in a goroutine.
func (a *Application) startHTTPServer() {
	go func() {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.WithError(err).Error("HTTP server error")
		}
	}()
}

// waitForShutdownSignal blocks until SIGINT/SIGTERM is received.
func (a *Application) waitForShutdownSignal() os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	return <-quit
}

// shutdown performs graceful shutdown of the HTTP server and resources.
// Call only after background jobs have stopped.
func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
	}

	// Final snapshot while the database is still open.
	if a.snapshots != nil {
		if err := a.snapshots.UploadOnce(shutdownCtx); err != nil {
			a.logger.WithError(err).Warn("Final snapshot upload failed")
		}
	}

	a.logger.Info("Closing resources...")

	if a.responder != nil {
		if err := a.responder.Close(); err != nil {
			a.logger.WithError(err).WithField("component", "responder").Error("Component close error")
		}
	}

	a.convoStore.Stop()
	a.sessionLimiter.Stop()
	a.llmLimiter.Stop()

	if err := a.db.Close(); err != nil {
		a.logger.WithError(err).WithField("component", "database").Error("Component close error")
	}

	sentry.Flush(2 * time.Second)

	a.logger.Info("Shutdown complete")
	return nil
}

// dataRefresh runs the initial portal refresh in the background (so
// the server can start listening immediately) and then re-scrapes on a
// fixed interval.
func (a *Application) dataRefresh(ctx context.Context) {
	a.logger.Debug("Data refresh job started")
	defer a.logger.Debug("Data refresh job stopped")

	warmup.RunInBackground(ctx, a.db, a.portal, a.logger, a.readinessState, a.warmupOptions())

	ticker := time.NewTicker(config.DataRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := warmup.Run(ctx, a.db, a.portal, a.logger, a.warmupOptions()); err != nil {
				a.logger.WithError(err).Warn("Periodic data refresh finished with errors")
			}
		}
	}
}

func (a *Application) warmupOptions() warmup.Options {
	return warmup.Options{
		Metrics:  a.metrics,
		Index:    a.ragIndex,
		FAQItems: a.faqItems,
	}
}

// loadFAQItems layers curated overrides from the database over the
// built-in FAQ table. Overrides come first so they win ties in search.
func loadFAQItems(ctx context.Context, db *storage.DB, log *logger.Logger) []faq.Item {
	overrides, err := db.GetFAQOverrides(ctx)
	if err != nil {
		log.WithError(err).Warn("FAQ overrides unavailable, using built-in entries only")
		return faq.Default
	}
	if len(overrides) == 0 {
		return faq.Default
	}
	log.WithField("count", len(overrides)).Info("FAQ overrides loaded")
	return append(overrides, faq.Default...)
}

// cacheCleanup deletes expired cache rows on a fixed interval.
func (a *Application) cacheCleanup(ctx context.Context) {
	a.logger.Debug("Cache cleanup job started")
	defer a.logger.Debug("Cache cleanup job stopped")

	ticker := time.NewTicker(config.CacheCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := a.db.CleanupExpired(ctx)
			if err != nil {
				a.logger.WithError(err).Error("Cache cleanup failed")
				continue
			}
			a.logger.WithField("deleted", deleted).Info("Cache cleanup completed")
		}
	}
}

// updateSessionMetrics keeps the active-session and cache-size gauges
// fresh even when the store's update callback is quiet.
func (a *Application) updateSessionMetrics(ctx context.Context) {
	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.metrics.SetActiveSessions(a.convoStore.Len())
			if count, err := a.db.CountSchedules(ctx); err == nil {
				a.metrics.SetCachedSchedules(count)
			}
		}
	}
}

// readinessMiddleware rejects chat requests with 503 until the initial
// data refresh completes or the grace period elapses.
func (a *Application) readinessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.readinessState.IsReady() {
			status := a.readinessState.Status()
			a.logger.WithField("elapsed_seconds", status.ElapsedSeconds).
				Debug("Chat request rejected: data refresh in progress")
			c.Header("Retry-After", "30")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":       "service warming up",
				"retry_after": 30,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// securityHeadersMiddleware adds security headers to responses.
func securityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'")
		c.Header("X-Permitted-Cross-Domain-Policies", "none")
		c.Next()
	}
}

// loggingMiddleware logs HTTP requests with status-based log levels:
// 5xx=Error, 4xx=Warn, 404=Debug, 3xx/2xx=Debug. It also assigns a
// request ID when the client did not send one.
func loggingMiddleware(log *logger.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = c.GetHeader("X-Correlation-Id")
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-Id", requestID)
		c.Request = c.Request.WithContext(ctxutil.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		entry := log.WithRequestID(requestID).
			WithField("http_method", method).
			WithField("http_path", path).
			WithField("http_status", status).
			WithField("duration_ms", duration.Milliseconds()).
			WithField("client_ip", c.ClientIP())

		if status >= 500 {
			if m != nil {
				m.RecordHTTPError("server_error", path)
			}
			entry.Error("HTTP request failed")
		} else if status >= 400 && status != 404 {
			if m != nil {
				m.RecordHTTPError("client_error", path)
			}
			entry.Warn("HTTP request rejected")
		} else if status == 404 {
			entry.Debug("HTTP request not found")
		} else {
			entry.Debug("HTTP request completed")
		}
	}
}
