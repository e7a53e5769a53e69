package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbu-portal/tbu-chatbot-go/internal/chatbot"
	"github.com/tbu-portal/tbu-chatbot-go/internal/config"
	"github.com/tbu-portal/tbu-chatbot-go/internal/convo"
	"github.com/tbu-portal/tbu-chatbot-go/internal/logger"
	"github.com/tbu-portal/tbu-chatbot-go/internal/metrics"
	"github.com/tbu-portal/tbu-chatbot-go/internal/rag"
	"github.com/tbu-portal/tbu-chatbot-go/internal/ratelimit"
	"github.com/tbu-portal/tbu-chatbot-go/internal/storage"
	"github.com/tbu-portal/tbu-chatbot-go/internal/warmup"
)

// testApp builds an Application around an in-memory database, skipping
// the network-dependent parts of Initialize.
func testApp(t *testing.T, sessionBurst float64) *Application {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.NewTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	log := logger.New("error")

	store := convo.NewStore(30*time.Minute, time.Hour, nil)
	t.Cleanup(store.Stop)

	sessionLimiter := ratelimit.NewKeyedLimiter(ratelimit.KeyedConfig{
		Name:          "session",
		Burst:         sessionBurst,
		RefillRate:    0.001,
		CleanupPeriod: time.Hour,
	})
	t.Cleanup(sessionLimiter.Stop)

	ragIndex := rag.NewIndex(log)

	engine := chatbot.New(chatbot.Options{
		DB:               db,
		Store:            store,
		Metrics:          m,
		Logger:           log,
		MaxMessageLength: 500,
	})

	return &Application{
		cfg: &config.Config{
			Port:            "0",
			MetricsUsername: "prometheus",
		},
		logger:         log,
		db:             db,
		metrics:        m,
		registry:       registry,
		ragIndex:       ragIndex,
		convoStore:     store,
		engine:         engine,
		sessionLimiter: sessionLimiter,
		readinessState: warmup.NewReadinessState(time.Hour),
	}
}

func performRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLivenessCheck(t *testing.T) {
	app := testApp(t, 15)
	w := performRequest(app.buildRouter(), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alive")
}

func TestReadinessCheckDuringRefresh(t *testing.T) {
	app := testApp(t, 15)
	w := performRequest(app.buildRouter(), http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "initial data refresh in progress")
}

func TestReadinessCheckReady(t *testing.T) {
	app := testApp(t, 15)
	app.readinessState.MarkReady()

	w := performRequest(app.buildRouter(), http.MethodGet, "/readyz", "")

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status   string         `json:"status"`
		Database string         `json:"database"`
		Cache    map[string]int `json:"cache"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, "connected", body.Database)
	assert.Contains(t, body.Cache, "schedules")
}

func TestChatRejectedDuringRefresh(t *testing.T) {
	app := testApp(t, 15)
	w := performRequest(app.buildRouter(), http.MethodPost, "/api/chat", `{"message":"xin chào"}`)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "30", w.Header().Get("Retry-After"))
}

func TestChatGreeting(t *testing.T) {
	app := testApp(t, 15)
	app.readinessState.MarkReady()

	w := performRequest(app.buildRouter(), http.MethodPost, "/api/chat", `{"message":"xin chào"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "canned", body.Outcome)
	assert.Equal(t, "greeting", body.Intent)
	assert.NotEmpty(t, body.Answer)
	assert.NotEmpty(t, body.SessionID, "server must assign a session ID when the client sends none")
	assert.Empty(t, body.Sources, "rule-based answers carry no retrieval sources")
}

func TestChatKeepsClientSessionID(t *testing.T) {
	app := testApp(t, 15)
	app.readinessState.MarkReady()

	w := performRequest(app.buildRouter(), http.MethodPost, "/api/chat", `{"session_id":"sess-42","message":"xin chào"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body chatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "sess-42", body.SessionID)
}

func TestChatInvalidBody(t *testing.T) {
	app := testApp(t, 15)
	app.readinessState.MarkReady()

	w := performRequest(app.buildRouter(), http.MethodPost, "/api/chat", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatRateLimited(t *testing.T) {
	app := testApp(t, 1)
	app.readinessState.MarkReady()
	router := app.buildRouter()

	first := performRequest(router, http.MethodPost, "/api/chat", `{"session_id":"s1","message":"xin chào"}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := performRequest(router, http.MethodPost, "/api/chat", `{"session_id":"s1","message":"xin chào"}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "quá nhanh")

	// Another session has its own bucket.
	other := performRequest(router, http.MethodPost, "/api/chat", `{"session_id":"s2","message":"xin chào"}`)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestSecurityAndRequestIDHeaders(t *testing.T) {
	app := testApp(t, 15)
	w := performRequest(app.buildRouter(), http.MethodGet, "/healthz", "")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestServiceInfo(t *testing.T) {
	app := testApp(t, 15)
	w := performRequest(app.buildRouter(), http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tbu-chatbot")
	assert.Contains(t, w.Body.String(), "POST /api/chat")
}

func TestProviderChain(t *testing.T) {
	cfg := &config.Config{LLMPrimaryProvider: "gemini", LLMFallbackProvider: "groq"}
	chain := providerChain(cfg)
	require.Len(t, chain, 2)

	// Same provider twice collapses to one entry.
	cfg = &config.Config{LLMPrimaryProvider: "groq", LLMFallbackProvider: "groq"}
	assert.Len(t, providerChain(cfg), 1)

	// Unknown names are dropped.
	cfg = &config.Config{LLMPrimaryProvider: "unknown", LLMFallbackProvider: "gemini"}
	chain = providerChain(cfg)
	require.Len(t, chain, 1)
}
