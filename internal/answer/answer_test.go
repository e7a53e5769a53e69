package answer

import (
	"strings"
	"testing"
	"time"

	"github.com/tbu-portal/tbu-chatbot-go/internal/intent"
	"github.com/tbu-portal/tbu-chatbot-go/internal/schedule"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	if got := FormatDate(day(2024, 5, 6)); got != "Thứ Hai, ngày 06/05/2024" {
		t.Errorf("FormatDate = %q", got)
	}
	if got := FormatDate(day(2024, 5, 5)); got != "Chủ Nhật, ngày 05/05/2024" {
		t.Errorf("FormatDate = %q", got)
	}
}

func TestHeadline(t *testing.T) {
	t.Parallel()

	from := day(2024, 5, 10)
	afternoon := intent.TimeWindow{Start: 12 * 60, End: 18 * 60}

	f := schedule.Filter{From: &from, To: &from, Leader: "hiệu trưởng", TimeWindow: &afternoon}
	got := Headline(f)

	for _, want := range []string{"Lịch công tác", "của Hiệu trưởng", "ngày 10/05/2024", "buổi chiều"} {
		if !strings.Contains(got, want) {
			t.Errorf("Headline = %q, missing %q", got, want)
		}
	}
}

func TestHeadlineRange(t *testing.T) {
	t.Parallel()

	from, to := day(2024, 5, 6), day(2024, 5, 12)
	got := Headline(schedule.Filter{From: &from, To: &to})
	if !strings.Contains(got, "từ 06/05/2024 đến 12/05/2024") {
		t.Errorf("Headline = %q", got)
	}
}

func TestFormatSchedulesEmpty(t *testing.T) {
	t.Parallel()

	got := FormatSchedules(schedule.QueryResult{})
	if got != NoScheduleResponse {
		t.Errorf("empty result = %q", got)
	}
}

func TestFormatSchedulesSingleDay(t *testing.T) {
	t.Parallel()

	from := day(2024, 5, 10)
	res := schedule.QueryResult{
		Matched: []schedule.Schedule{
			{
				Date: from, StartTime: "08:00", EndTime: "10:00",
				Content: "Họp giao ban", Location: "Phòng họp A",
				Leader: "Hiệu trưởng", Participants: []string{"Trưởng các đơn vị"},
			},
		},
		Applied: schedule.Filter{From: &from, To: &from},
	}

	got := FormatSchedules(res)
	for _, want := range []string{"1 sự kiện", "⏰ **08:00 - 10:00**", "📝 Họp giao ban", "📍 Địa điểm: Phòng họp A", "👤 Chủ trì: Hiệu trưởng", "👥 Thành phần: Trưởng các đơn vị"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestFormatSchedulesGroupsByDay(t *testing.T) {
	t.Parallel()

	from, to := day(2024, 5, 6), day(2024, 5, 12)
	res := schedule.QueryResult{
		Matched: []schedule.Schedule{
			{Date: day(2024, 5, 6), StartTime: "08:00", EndTime: "09:00", Content: "A", Location: "P1", Leader: "L1"},
			{Date: day(2024, 5, 7), StartTime: "14:00", EndTime: "15:00", Content: "B", Location: "P2", Leader: "L2"},
		},
		Applied: schedule.Filter{From: &from, To: &to},
	}

	got := FormatSchedules(res)
	if !strings.Contains(got, "📌 **Thứ Hai, ngày 06/05/2024**") {
		t.Errorf("missing monday header:\n%s", got)
	}
	if !strings.Contains(got, "📌 **Thứ Ba, ngày 07/05/2024**") {
		t.Errorf("missing tuesday header:\n%s", got)
	}
}

func TestFormatSchedulesNoInternalNames(t *testing.T) {
	t.Parallel()

	from := day(2024, 5, 10)
	res := schedule.QueryResult{
		Matched: []schedule.Schedule{{Date: from, StartTime: "08:00", EndTime: "09:00", Content: "A", Location: "P", Leader: "L"}},
		Applied: schedule.Filter{From: &from, To: &from},
	}
	got := FormatSchedules(res)
	for _, forbidden := range []string{"schedule_by", "DateRef", "QueryType", "unknown"} {
		if strings.Contains(got, forbidden) {
			t.Errorf("answer leaks internal name %q", forbidden)
		}
	}
}

func TestFormatNewsList(t *testing.T) {
	t.Parallel()

	got := FormatNewsList("tin tức", []string{"Khai giảng năm học mới", "Hội nghị khoa học trẻ"})
	if !strings.Contains(got, "1. Khai giảng năm học mới") || !strings.Contains(got, "2. Hội nghị khoa học trẻ") {
		t.Errorf("FormatNewsList = %q", got)
	}

	empty := FormatNewsList("thông báo", nil)
	if !strings.Contains(empty, "chưa có thông báo mới") {
		t.Errorf("empty list = %q", empty)
	}
}
