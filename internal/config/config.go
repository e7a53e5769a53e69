// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults
// for the HTTP server, conversation context, scraper, and cache.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// LLM Configuration (optional generative fallback)
	GeminiAPIKey string // Gemini API key for the generative fallback
	GroqAPIKey   string // Groq API key (alternative LLM provider)

	// LLM Model Configuration (optional, defaults apply if empty)
	GeminiChatModel string // Gemini model for fallback answers
	GroqChatModel   string // Groq model for fallback answers

	// LLM Provider Configuration
	LLMPrimaryProvider  string // Primary LLM provider: "gemini" or "groq" (default: "gemini")
	LLMFallbackProvider string // Fallback LLM provider: "gemini" or "groq" (default: "groq")

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)

	// Observability
	BetterStackToken    string // Better Stack source token (empty = log to stdout only)
	BetterStackEndpoint string // Better Stack ingesting endpoint
	SentryToken         string // Better Stack error-tracking token (empty = disabled)
	SentryHost          string // Better Stack error-tracking host

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir  string        // Data directory for SQLite database
	CacheTTL time.Duration // TTL: absolute expiration for scraped cache entries (default: 6 hours)

	// Conversation Configuration
	Chat ChatConfig

	// Scraper Configuration
	ScraperTimeout    time.Duration
	ScraperMaxRetries int
	ScraperBaseURLs   []string

	// Snapshot Configuration (optional S3-compatible backup)
	S3Endpoint        string
	S3Bucket          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	SnapshotInterval  time.Duration
}

// ChatConfig holds conversation-specific configuration
type ChatConfig struct {
	// ContextTTL is how long a session's conversation context stays
	// usable for follow-up questions.
	ContextTTL time.Duration

	// ContextCleanupPeriod is how often expired sessions are evicted.
	ContextCleanupPeriod time.Duration

	// MaxMessageLength is the longest accepted chat message in runes.
	MaxMessageLength int

	// TopicMatchAll requires every topic keyword to match instead of any.
	TopicMatchAll bool

	// Rate Limits (Token Bucket Algorithm)
	SessionRateLimitBurst        float64 // Maximum burst tokens per session (default: 15)
	SessionRateLimitRefillPerSec float64 // Tokens refilled per second (default: 0.5)

	// LLM fallback budget per session per hour (0 = disabled)
	LLMBurstTokens   float64
	LLMRefillPerHour float64
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// LLM Configuration
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GroqAPIKey:   getEnv("GROQ_API_KEY", ""),

		// LLM Model Configuration (empty = use defaults from genai package)
		GeminiChatModel: getEnv("GEMINI_CHAT_MODEL", ""),
		GroqChatModel:   getEnv("GROQ_CHAT_MODEL", ""),

		// LLM Provider Configuration
		LLMPrimaryProvider:  getEnv("LLM_PRIMARY_PROVIDER", "gemini"),
		LLMFallbackProvider: getEnv("LLM_FALLBACK_PROVIDER", "groq"),

		// Metrics Authentication
		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),

		// Observability
		BetterStackToken:    getEnv("BETTER_STACK_TOKEN", ""),
		BetterStackEndpoint: getEnv("BETTER_STACK_ENDPOINT", ""),
		SentryToken:         getEnv("SENTRY_TOKEN", ""),
		SentryHost:          getEnv("SENTRY_HOST", ""),

		// Server Configuration
		Port:            getEnv("PORT", "10000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		// Data Configuration
		DataDir:  getEnv("DATA_DIR", getDefaultDataDir()),
		CacheTTL: getDurationEnv("CACHE_TTL", 6*time.Hour),

		// Conversation Configuration
		Chat: ChatConfig{
			ContextTTL:                   getDurationEnv("CONTEXT_TTL", 30*time.Minute),
			ContextCleanupPeriod:         getDurationEnv("CONTEXT_CLEANUP_PERIOD", 5*time.Minute),
			MaxMessageLength:             getIntEnv("MAX_MESSAGE_LENGTH", 500),
			TopicMatchAll:                getBoolEnv("TOPIC_MATCH_ALL", false),
			SessionRateLimitBurst:        getFloatEnv("SESSION_RATE_LIMIT_BURST", 15.0),
			SessionRateLimitRefillPerSec: getFloatEnv("SESSION_RATE_LIMIT_REFILL_PER_SEC", 0.5),
			LLMBurstTokens:               getFloatEnv("LLM_BURST_TOKENS", 10.0),
			LLMRefillPerHour:             getFloatEnv("LLM_REFILL_PER_HOUR", 20.0),
		},

		// Scraper Configuration
		ScraperTimeout:    getDurationEnv("SCRAPER_TIMEOUT", ScraperRequest),
		ScraperMaxRetries: getIntEnv("SCRAPER_MAX_RETRIES", 5),
		ScraperBaseURLs: []string{
			getEnv("PORTAL_BASE_URL", "https://tbu.edu.vn"),
		},

		// Snapshot Configuration
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		SnapshotInterval:  getDurationEnv("SNAPSHOT_INTERVAL", 6*time.Hour),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if err := c.Chat.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("chat config: %w", err))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %v", c.CacheTTL))
	}
	if c.ScraperTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SCRAPER_TIMEOUT must be positive, got %v", c.ScraperTimeout))
	}
	if c.ScraperMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("SCRAPER_MAX_RETRIES cannot be negative, got %d", c.ScraperMaxRetries))
	}
	if c.LLMPrimaryProvider != "gemini" && c.LLMPrimaryProvider != "groq" {
		errs = append(errs, fmt.Errorf("LLM_PRIMARY_PROVIDER must be gemini or groq, got %q", c.LLMPrimaryProvider))
	}
	if c.SnapshotEnabled() {
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required when S3_ENDPOINT is set"))
		}
		if c.S3AccessKeyID == "" || c.S3SecretAccessKey == "" {
			errs = append(errs, errors.New("S3 credentials are required when S3_ENDPOINT is set"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Validate checks chat configuration bounds
func (c *ChatConfig) Validate() error {
	var errs []error

	if c.ContextTTL <= 0 {
		errs = append(errs, fmt.Errorf("CONTEXT_TTL must be positive, got %v", c.ContextTTL))
	}
	if c.ContextCleanupPeriod <= 0 {
		errs = append(errs, fmt.Errorf("CONTEXT_CLEANUP_PERIOD must be positive, got %v", c.ContextCleanupPeriod))
	}
	if c.MaxMessageLength <= 0 {
		errs = append(errs, fmt.Errorf("MAX_MESSAGE_LENGTH must be positive, got %d", c.MaxMessageLength))
	}
	if c.SessionRateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_RATE_LIMIT_BURST must be positive, got %v", c.SessionRateLimitBurst))
	}
	if c.SessionRateLimitRefillPerSec <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_RATE_LIMIT_REFILL_PER_SEC must be positive, got %v", c.SessionRateLimitRefillPerSec))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "portal.db")
}

// HasLLMProvider returns true if at least one LLM provider is configured.
func (c *Config) HasLLMProvider() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != ""
}

// SnapshotEnabled reports whether S3 database snapshots are configured.
func (c *Config) SnapshotEnabled() bool {
	return c.S3Endpoint != ""
}
