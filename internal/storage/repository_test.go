package storage

import (
	"context"
	"testing"
	"time"

	"github.com/tbu-portal/tbu-chatbot-go/internal/faq"
	"github.com/tbu-portal/tbu-chatbot-go/internal/schedule"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleSchedules() []schedule.Schedule {
	date := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	return []schedule.Schedule{
		{
			ID: "s1", Date: date, StartTime: "08:00", EndTime: "10:00",
			Content: "Họp giao ban", Location: "Phòng họp A",
			Leader: "Hiệu trưởng", Participants: []string{"Trưởng các đơn vị"},
			Status: schedule.StatusApproved, EventType: schedule.EventMeeting,
		},
		{
			ID: "s2", Date: date.AddDate(0, 0, 1), StartTime: "14:00", EndTime: "16:00",
			Content: "Hội nghị khoa học", Location: "Hội trường lớn",
			Leader: "Phó Hiệu trưởng", Status: schedule.StatusPending,
		},
	}
}

func TestReplaceSchedulesRoundTrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceSchedules(ctx, sampleSchedules()); err != nil {
		t.Fatalf("ReplaceSchedules: %v", err)
	}

	got, err := db.GetSchedules(ctx)
	if err != nil {
		t.Fatalf("GetSchedules: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if got[0].ID != "s1" || got[1].ID != "s2" {
		t.Errorf("order = %s, %s", got[0].ID, got[1].ID)
	}
	if got[0].Leader != "Hiệu trưởng" {
		t.Errorf("leader = %q", got[0].Leader)
	}
	if len(got[0].Participants) != 1 || got[0].Participants[0] != "Trưởng các đơn vị" {
		t.Errorf("participants = %v", got[0].Participants)
	}
	if !got[0].Date.Equal(time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date = %v", got[0].Date)
	}
}

func TestReplaceSchedulesIsWholesale(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	if err := db.ReplaceSchedules(ctx, sampleSchedules()); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := db.ReplaceSchedules(ctx, sampleSchedules()[:1]); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	count, err := db.CountSchedules(ctx)
	if err != nil {
		t.Fatalf("CountSchedules: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d after wholesale replace, want 1", count)
	}
}

func TestNewsBatchAndRecent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	items := []News{
		{ID: "n1", Kind: KindNews, Title: "Khai giảng năm học mới", URL: "https://tbu.edu.vn/n1"},
		{ID: "n2", Kind: KindNews, Title: "Hội nghị khoa học trẻ"},
		{ID: "a1", Kind: KindAnnouncement, Title: "Thông báo nghỉ lễ"},
	}
	if err := db.SaveNewsBatch(ctx, items); err != nil {
		t.Fatalf("SaveNewsBatch: %v", err)
	}

	news, err := db.GetRecentNews(ctx, KindNews, 5)
	if err != nil {
		t.Fatalf("GetRecentNews: %v", err)
	}
	if len(news) != 2 {
		t.Errorf("news count = %d, want 2", len(news))
	}

	ann, err := db.GetRecentNews(ctx, KindAnnouncement, 5)
	if err != nil {
		t.Fatalf("GetRecentNews announcements: %v", err)
	}
	if len(ann) != 1 || ann[0].Title != "Thông báo nghỉ lễ" {
		t.Errorf("announcements = %+v", ann)
	}
}

func TestSaveNewsBatchUpserts(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SaveNewsBatch(ctx, []News{{ID: "n1", Kind: KindNews, Title: "old"}}); err != nil {
		t.Fatalf("first batch: %v", err)
	}
	if err := db.SaveNewsBatch(ctx, []News{{ID: "n1", Kind: KindNews, Title: "new"}}); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	news, err := db.GetRecentNews(ctx, KindNews, 5)
	if err != nil {
		t.Fatalf("GetRecentNews: %v", err)
	}
	if len(news) != 1 || news[0].Title != "new" {
		t.Errorf("upsert result = %+v", news)
	}
}

func TestFAQOverridesRoundTrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	items := []faq.Item{
		{
			Question: "Học phí năm nay là bao nhiêu?",
			Answer:   "Học phí được công bố trên cổng thông tin đào tạo.",
			Keywords: []string{"học phí", "chi phí"},
			Category: "tuition",
		},
		{
			Question: "Thư viện mở cửa lúc mấy giờ?",
			Answer:   "Thư viện mở cửa từ 7h30 đến 17h00 các ngày trong tuần.",
			Category: "library",
		},
	}
	if err := db.ReplaceFAQOverrides(ctx, items); err != nil {
		t.Fatalf("ReplaceFAQOverrides: %v", err)
	}

	got, err := db.GetFAQOverrides(ctx)
	if err != nil {
		t.Fatalf("GetFAQOverrides: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d overrides, want 2", len(got))
	}
	if got[0].Question != items[0].Question {
		t.Errorf("order: first question = %q", got[0].Question)
	}
	if len(got[0].Keywords) != 2 || got[0].Keywords[0] != "học phí" {
		t.Errorf("keywords = %v", got[0].Keywords)
	}
	if got[1].Keywords != nil {
		t.Errorf("empty keywords decoded as %v", got[1].Keywords)
	}
	if got[1].Category != "library" {
		t.Errorf("category = %q", got[1].Category)
	}
}

func TestFAQOverridesWholesaleReplace(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	first := []faq.Item{{Question: "Q1", Answer: "A1"}, {Question: "Q2", Answer: "A2"}}
	if err := db.ReplaceFAQOverrides(ctx, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := db.ReplaceFAQOverrides(ctx, first[:1]); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, err := db.GetFAQOverrides(ctx)
	if err != nil {
		t.Fatalf("GetFAQOverrides: %v", err)
	}
	if len(got) != 1 || got[0].Question != "Q1" {
		t.Errorf("overrides after replace = %+v", got)
	}
}

func TestCleanupExpired(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	if err := db.SaveNewsBatch(ctx, []News{{ID: "n1", Kind: KindNews, Title: "t"}}); err != nil {
		t.Fatalf("SaveNewsBatch: %v", err)
	}

	// Backdate past the TTL, then cleanup should remove it.
	expired := time.Now().Add(-db.GetCacheTTL() - time.Hour).Unix()
	if _, err := db.conn.ExecContext(ctx, `UPDATE news SET cached_at = ?`, expired); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	removed, err := db.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	news, err := db.GetRecentNews(ctx, KindNews, 5)
	if err != nil {
		t.Fatalf("GetRecentNews: %v", err)
	}
	if len(news) != 0 {
		t.Errorf("expired item still returned: %+v", news)
	}
}
