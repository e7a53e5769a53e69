package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}

	// Verify all metric fields are initialized
	if m.ChatMessagesTotal == nil {
		t.Error("ChatMessagesTotal is nil")
	}
	if m.ChatDurationSeconds == nil {
		t.Error("ChatDurationSeconds is nil")
	}
	if m.ActiveSessions == nil {
		t.Error("ActiveSessions is nil")
	}
	if m.FAQLookupsTotal == nil {
		t.Error("FAQLookupsTotal is nil")
	}
	if m.LLMRequestsTotal == nil {
		t.Error("LLMRequestsTotal is nil")
	}
	if m.ScraperRequestsTotal == nil {
		t.Error("ScraperRequestsTotal is nil")
	}
	if m.CacheHitsTotal == nil {
		t.Error("CacheHitsTotal is nil")
	}
	if m.HTTPErrorsTotal == nil {
		t.Error("HTTPErrorsTotal is nil")
	}
	if m.RateLimiterDropped == nil {
		t.Error("RateLimiterDropped is nil")
	}
	if m.WarmupTasksTotal == nil {
		t.Error("WarmupTasksTotal is nil")
	}
	if m.SnapshotsTotal == nil {
		t.Error("SnapshotsTotal is nil")
	}
}

func TestRecordChatMessage(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordChatMessage("schedule_by_date", "answered", 0.002)
	m.RecordChatMessage("unknown", "faq", 0.001)
	m.RecordChatMessage("unknown", "llm_fallback", 3.5)
}

func TestRecordFAQLookup(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordFAQLookup("hit")
	m.RecordFAQLookup("miss")
}

func TestRecordLLMRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordLLMRequest("gemini", "success", 1.2)
	m.RecordLLMRequest("groq", "error", 0.4)
}

func TestRecordScraperRequest(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordScraperRequest("schedules", "success", 1.5)
	m.RecordScraperRequest("news", "error", 2.0)
	m.RecordScraperRequest("announcements", "timeout", 30.0)
}

func TestRecordRateLimiterDrop(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordRateLimiterDrop("session")
	m.RecordRateLimiterDrop("llm")
}

func TestMetricsGather(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordChatMessage("greeting", "answered", 0.001)
	m.RecordScraperRequest("schedules", "success", 1.0)
	m.RecordCacheHit("schedules")
	m.SetActiveSessions(3)
	m.SetCachedSchedules(12)

	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("Failed to gather metrics: %v", err)
	}
	if len(metricFamilies) == 0 {
		t.Fatal("No metrics were gathered")
	}

	expectedMetrics := map[string]bool{
		"tbu_chat_messages_total":      false,
		"tbu_chat_duration_seconds":    false,
		"tbu_scraper_requests_total":   false,
		"tbu_scraper_duration_seconds": false,
		"tbu_cache_hits_total":         false,
		"tbu_active_sessions":          false,
		"tbu_cached_schedules":         false,
	}

	for _, mf := range metricFamilies {
		if _, ok := expectedMetrics[mf.GetName()]; ok {
			expectedMetrics[mf.GetName()] = true
		}
	}

	for name, found := range expectedMetrics {
		if !found {
			t.Errorf("Expected metric %q not found", name)
		}
	}
}

func TestGlobal(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	InitGlobal(m)
	if Global() != m {
		t.Error("Global() did not return installed instance")
	}
}
