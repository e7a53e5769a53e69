// Package answer renders query results into administrative-register
// Vietnamese prose. It never exposes internal field names or enum
// values; every degraded path still yields a polite, complete message.
package answer

import (
	"fmt"
	"strings"
	"time"

	"github.com/tbu-portal/tbu-chatbot-go/internal/intent"
	"github.com/tbu-portal/tbu-chatbot-go/internal/schedule"
)

// Canned responses for the conversational intents.
const (
	GreetingResponse = `Xin chào! 👋

Tôi là **Trợ lý TBU** - hệ thống tra cứu lịch công tác của Trường Đại học Thái Bình.

Tôi có thể giúp bạn:
• Xem lịch công tác hôm nay / tuần này
• Tra cứu lịch theo ngày (VD: 15/12)
• Tra cứu lịch theo lãnh đạo
• Tra cứu lịch theo buổi sáng/chiều

Hãy đặt câu hỏi để bắt đầu!`

	HelpResponse = `📋 **Hướng dẫn sử dụng Trợ lý TBU**

Bạn có thể hỏi theo các cách sau:

**Theo thời gian:**
• "Lịch công tác hôm nay"
• "Lịch ngày mai"
• "Lịch tuần này"
• "Lịch ngày 15/12"
• "Thứ 5 có lịch gì?"

**Theo buổi:**
• "Sáng nay có lịch gì?"
• "Chiều thứ 4 có họp không?"

**Theo lãnh đạo:**
• "Hiệu trưởng hôm nay làm gì?"
• "Lịch của Phó Hiệu trưởng"

**Câu hỏi tiếp theo:**
Sau khi hỏi, bạn có thể hỏi thêm "Còn gì nữa?" hoặc "Buổi chiều thì sao?"`

	ThanksResponse = `Rất vui được hỗ trợ bạn! 😊

Nếu cần tra cứu thêm thông tin về lịch công tác, đừng ngại hỏi tôi nhé.`

	NoScheduleResponse = "Không có lịch công tác nào trong thời gian này."

	UnknownResponse = `Xin lỗi, tôi chưa hiểu câu hỏi của bạn.

Bạn có thể thử hỏi:
• "Lịch công tác hôm nay"
• "Lịch tuần này"
• "Hiệu trưởng hôm nay làm gì?"`

	ErrorResponse = `Xin lỗi, đã có lỗi xảy ra khi xử lý yêu cầu của bạn.

Vui lòng thử lại hoặc hỏi câu hỏi khác.`

	ServiceUnavailableResponse = `Xin lỗi, dịch vụ trả lời tự động hiện không khả dụng.

Vui lòng thử lại sau hoặc liên hệ Phòng Đào tạo để được hỗ trợ.`
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Thứ Hai",
	time.Tuesday:   "Thứ Ba",
	time.Wednesday: "Thứ Tư",
	time.Thursday:  "Thứ Năm",
	time.Friday:    "Thứ Sáu",
	time.Saturday:  "Thứ Bảy",
	time.Sunday:    "Chủ Nhật",
}

var dayPartNames = map[string]string{
	"sáng":  "buổi sáng",
	"chiều": "buổi chiều",
	"tối":   "buổi tối",
}

// FormatDate renders "Thứ Hai, ngày 06/05/2024".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s, ngày %02d/%02d/%04d", weekdayNames[t.Weekday()], t.Day(), t.Month(), t.Year())
}

// FormatDateShort renders "06/05/2024".
func FormatDateShort(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), t.Month(), t.Year())
}

// Headline describes what was asked, for the answer's first line.
// Built from the applied filter so follow-ups with inherited context
// still announce the full criteria.
func Headline(f schedule.Filter) string {
	parts := []string{"Lịch công tác"}

	if f.Leader != "" {
		parts = append(parts, "của "+capitalizeFirst(f.Leader))
	}
	if f.From != nil && f.To != nil {
		if f.From.Equal(*f.To) {
			parts = append(parts, "ngày "+FormatDateShort(*f.From))
		} else {
			parts = append(parts, fmt.Sprintf("từ %s đến %s", FormatDateShort(*f.From), FormatDateShort(*f.To)))
		}
	}
	if f.TimeWindow != nil {
		if name := intent.DayPartName(*f.TimeWindow); name != "" {
			parts = append(parts, dayPartNames[name])
		} else {
			parts = append(parts, "lúc "+f.TimeWindow.String())
		}
	}
	if len(f.Keywords) > 0 {
		parts = append(parts, `về "`+strings.Join(f.Keywords, " ")+`"`)
	}
	return strings.Join(parts, " ")
}

// FormatSchedules renders a query result. Zero matches yield the
// polite no-schedule message. Matches spanning several days are
// grouped under per-day headers.
func FormatSchedules(res schedule.QueryResult) string {
	if len(res.Matched) == 0 {
		return NoScheduleResponse
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 **%s** (%d sự kiện)\n\n", Headline(res.Applied), len(res.Matched))

	singleDay := res.Applied.From != nil && res.Applied.To != nil && res.Applied.From.Equal(*res.Applied.To)

	if singleDay {
		for i, s := range res.Matched {
			if i > 0 {
				b.WriteString("\n---\n\n")
			}
			writeEntry(&b, s)
		}
		return b.String()
	}

	var lastDay string
	for _, s := range res.Matched {
		dayKey := FormatDate(s.Date)
		if dayKey != lastDay {
			if lastDay != "" {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "📌 **%s**\n\n", dayKey)
			lastDay = dayKey
		}
		writeEntry(&b, s)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeEntry(b *strings.Builder, s schedule.Schedule) {
	fmt.Fprintf(b, "⏰ **%s - %s**\n", s.StartTime, s.EndTime)
	fmt.Fprintf(b, "📝 %s\n", s.Content)
	fmt.Fprintf(b, "📍 Địa điểm: %s\n", s.Location)
	fmt.Fprintf(b, "👤 Chủ trì: %s", s.Leader)
	if len(s.Participants) > 0 {
		fmt.Fprintf(b, "\n👥 Thành phần: %s", strings.Join(s.Participants, ", "))
	}
	b.WriteString("\n")
}

// FormatNewsList renders recent news or announcement titles.
func FormatNewsList(header string, titles []string) string {
	if len(titles) == 0 {
		return "Hiện chưa có " + header + " mới. Bạn có thể xem thêm tại website: www.tbu.edu.vn"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "📰 **%s mới nhất:**\n\n", capitalizeFirst(header))
	for i, title := range titles {
		fmt.Fprintf(&b, "%d. %s\n", i+1, title)
	}
	b.WriteString("\nXem chi tiết tại website: www.tbu.edu.vn")
	return b.String()
}

func capitalizeFirst(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
