package schedule

import (
	"testing"
	"time"

	"github.com/tbu-portal/tbu-chatbot-go/internal/intent"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testEntries() []Schedule {
	return []Schedule{
		{
			ID: "1", Date: day(2024, 5, 10), StartTime: "08:00", EndTime: "10:00",
			Content: "Họp giao ban tháng 5", Location: "Phòng họp A",
			Leader: "Nguyễn Văn Long", Status: StatusApproved, EventType: EventMeeting,
		},
		{
			ID: "2", Date: day(2024, 5, 10), StartTime: "14:00", EndTime: "16:00",
			Content: "Hội nghị chuyển đổi số", Location: "Hội trường lớn",
			Leader: "Hiệu trưởng", Status: StatusApproved, EventType: EventConference,
		},
		{
			ID: "3", Date: day(2024, 5, 11), StartTime: "09:00", EndTime: "11:00",
			Content: "Tiếp đoàn kiểm định", Location: "Phòng khách",
			Leader: "Phó Hiệu trưởng", Status: StatusApproved,
		},
		{
			ID: "4", Date: day(2024, 5, 10), StartTime: "10:00", EndTime: "11:00",
			Content: "Họp chưa duyệt", Location: "Phòng B",
			Leader: "Hiệu trưởng", Status: StatusPending,
		},
	}
}

func TestQueryOnlyApproved(t *testing.T) {
	t.Parallel()

	res := Query(testEntries(), Filter{})
	for _, s := range res.Matched {
		if s.Status != StatusApproved {
			t.Errorf("unapproved entry %s returned", s.ID)
		}
	}
	if res.Total != 3 {
		t.Errorf("Total = %d, want 3", res.Total)
	}
}

func TestQueryByDate(t *testing.T) {
	t.Parallel()

	from := day(2024, 5, 10)
	res := Query(testEntries(), Filter{From: &from, To: &from})
	if len(res.Matched) != 2 {
		t.Fatalf("matched = %d, want 2", len(res.Matched))
	}
	for _, s := range res.Matched {
		if !s.Date.Equal(from) {
			t.Errorf("entry %s outside date filter", s.ID)
		}
	}
}

func TestQueryTimeWindow(t *testing.T) {
	t.Parallel()

	from := day(2024, 5, 10)
	afternoon := intent.TimeWindow{Start: 12 * 60, End: 18 * 60}
	res := Query(testEntries(), Filter{From: &from, To: &from, TimeWindow: &afternoon})
	if len(res.Matched) != 1 || res.Matched[0].ID != "2" {
		t.Fatalf("matched = %+v, want entry 2 only", res.Matched)
	}
}

func TestQueryLeaderFoldedSubstring(t *testing.T) {
	t.Parallel()

	res := Query(testEntries(), Filter{Leader: "hieu truong"})
	// Matches both "Hiệu trưởng" and "Phó Hiệu trưởng".
	if len(res.Matched) != 2 {
		t.Fatalf("matched = %d, want 2", len(res.Matched))
	}

	res = Query(testEntries(), Filter{Leader: "Long"})
	if len(res.Matched) != 1 || res.Matched[0].ID != "1" {
		t.Fatalf("matched = %+v, want entry 1", res.Matched)
	}
}

func TestQueryKeywords(t *testing.T) {
	t.Parallel()

	res := Query(testEntries(), Filter{Keywords: []string{"chuyen doi", "khong co"}})
	if len(res.Matched) != 1 || res.Matched[0].ID != "2" {
		t.Fatalf("any-match = %+v, want entry 2", res.Matched)
	}

	res = Query(testEntries(), Filter{Keywords: []string{"chuyen doi", "khong co"}, MatchAllKeywords: true})
	if len(res.Matched) != 0 {
		t.Fatalf("all-match = %+v, want none", res.Matched)
	}
}

func TestQuerySortOrder(t *testing.T) {
	t.Parallel()

	res := Query(testEntries(), Filter{})
	want := []string{"1", "2", "3"}
	for i, id := range want {
		if res.Matched[i].ID != id {
			t.Fatalf("order = %v, want %v", ids(res.Matched), want)
		}
	}
}

func TestQueryMonotonicity(t *testing.T) {
	t.Parallel()

	from := day(2024, 5, 10)
	broad := Query(testEntries(), Filter{From: &from, To: &from})
	narrow := Query(testEntries(), Filter{From: &from, To: &from, Leader: "hiệu trưởng"})
	if len(narrow.Matched) > len(broad.Matched) {
		t.Errorf("narrowing increased matches: %d > %d", len(narrow.Matched), len(broad.Matched))
	}
}

func TestQueryDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	entries := testEntries()
	Query(entries, Filter{Leader: "Long"})
	if entries[0].ID != "1" || entries[3].Status != StatusPending {
		t.Error("input slice mutated")
	}
}

func TestFilterFromIntentResolvesDates(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	ref := intent.DateReference{Kind: intent.DateTomorrow}
	f := FilterFromIntent(&ref, nil, "Long", nil, false, now)

	want := day(2024, 5, 2)
	if f.From == nil || !f.From.Equal(want) || !f.To.Equal(want) {
		t.Errorf("resolved range = (%v, %v), want %v", f.From, f.To, want)
	}
	if f.Leader != "Long" {
		t.Errorf("Leader = %q", f.Leader)
	}
}

func TestStartMinutes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want int
	}{
		{"08:00", 480},
		{"14:30", 870},
		{"", -1},
		{"25:00", -1},
		{"bad", -1},
	}
	for _, tt := range tests {
		if got := (Schedule{StartTime: tt.in}).StartMinutes(); got != tt.want {
			t.Errorf("StartMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func ids(list []Schedule) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ID
	}
	return out
}
