package warmup

import (
	"context"
	"testing"
	"time"

	"github.com/tbu-portal/tbu-chatbot-go/internal/faq"
	"github.com/tbu-portal/tbu-chatbot-go/internal/rag"
	"github.com/tbu-portal/tbu-chatbot-go/internal/schedule"
	"github.com/tbu-portal/tbu-chatbot-go/internal/storage"
)

func TestReadinessStateMarkReady(t *testing.T) {
	t.Parallel()

	s := NewReadinessState(time.Hour)
	if s.IsReady() {
		t.Error("ready before MarkReady")
	}
	if s.RefreshCompleted() {
		t.Error("refresh reported complete before MarkReady")
	}

	status := s.Status()
	if status.Ready || status.Reason == "" {
		t.Errorf("status = %+v", status)
	}

	s.MarkReady()
	if !s.IsReady() || !s.RefreshCompleted() {
		t.Error("not ready after MarkReady")
	}
	if got := s.Status(); !got.Ready || got.Reason != "" {
		t.Errorf("status after MarkReady = %+v", got)
	}
}

func TestReadinessStateTimeout(t *testing.T) {
	t.Parallel()

	s := NewReadinessState(10 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if !s.IsReady() {
		t.Error("not ready after timeout")
	}
	if s.RefreshCompleted() {
		t.Error("timeout readiness counted as completed refresh")
	}
	if got := s.Status(); got.Reason == "" {
		t.Errorf("timeout status has no reason: %+v", got)
	}
}

func TestRebuildIndex(t *testing.T) {
	t.Parallel()

	db, err := storage.NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	entries := []schedule.Schedule{{
		ID:        "s1",
		Date:      time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC),
		StartTime: "08:00",
		EndTime:   "10:00",
		Content:   "Họp giao ban tháng 9",
		Location:  "Phòng họp A",
		Leader:    "Hiệu trưởng",
		Status:    schedule.StatusApproved,
		EventType: schedule.EventMeeting,
	}}
	if err := db.ReplaceSchedules(ctx, entries); err != nil {
		t.Fatalf("ReplaceSchedules: %v", err)
	}
	news := []storage.News{{
		ID:          "n1",
		Kind:        storage.KindNews,
		Title:       "Khai giảng năm học mới",
		URL:         "/tin-tuc/khai-giang",
		PublishedAt: "05/09/2026",
	}}
	if err := db.SaveNewsBatch(ctx, news); err != nil {
		t.Fatalf("SaveNewsBatch: %v", err)
	}

	idx := rag.NewIndex(nil)
	stats := &Stats{}
	faqItems := []faq.Item{{Question: "Học phí bao nhiêu?", Answer: "300.000đ/tín chỉ"}}
	if err := rebuildIndex(ctx, db, idx, faqItems, stats, nil); err != nil {
		t.Fatalf("rebuildIndex: %v", err)
	}

	if idx.Count() != 3 {
		t.Errorf("indexed %d docs, want 3", idx.Count())
	}
	if stats.IndexedDocs.Load() != 3 {
		t.Errorf("stats.IndexedDocs = %d", stats.IndexedDocs.Load())
	}

	results, err := idx.Search("họp giao ban", 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 || results[0].Kind != rag.KindSchedule {
		t.Errorf("schedule doc not retrievable: %+v", results)
	}
}
