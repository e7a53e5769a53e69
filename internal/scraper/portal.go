package scraper

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/tbu-portal/tbu-chatbot-go/internal/metrics"
	"github.com/tbu-portal/tbu-chatbot-go/internal/schedule"
	"github.com/tbu-portal/tbu-chatbot-go/internal/storage"
)

// Portal page paths.
const (
	SchedulePath      = "/lich-cong-tac"
	NewsPath          = "/tin-tuc"
	AnnouncementsPath = "/thong-bao"
)

// Portal scrapes the university website.
type Portal struct {
	client  *Client
	baseURL string
	flight  *FlightGroup
	metrics *metrics.Metrics
}

// NewPortal creates a portal scraper. metrics may be nil.
func NewPortal(client *Client, baseURL string, m *metrics.Metrics) *Portal {
	return &Portal{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		flight:  NewFlightGroup(),
		metrics: m,
	}
}

// FetchSchedules scrapes the work-schedule table.
// Concurrent calls collapse into a single portal request.
func (p *Portal) FetchSchedules(ctx context.Context) ([]schedule.Schedule, error) {
	v, shared, err := p.flight.Do(ctx, "schedules", func() (interface{}, error) {
		doc, err := p.fetch(ctx, "schedules", p.baseURL+SchedulePath)
		if err != nil {
			return nil, err
		}
		return ParseSchedules(doc), nil
	})
	p.recordDedup("schedules", shared)
	if err != nil {
		return nil, err
	}
	return v.([]schedule.Schedule), nil
}

// FetchNews scrapes the news listing.
func (p *Portal) FetchNews(ctx context.Context) ([]storage.News, error) {
	v, shared, err := p.flight.Do(ctx, "news", func() (interface{}, error) {
		doc, err := p.fetch(ctx, "news", p.baseURL+NewsPath)
		if err != nil {
			return nil, err
		}
		return ParseNewsList(doc, storage.KindNews), nil
	})
	p.recordDedup("news", shared)
	if err != nil {
		return nil, err
	}
	return v.([]storage.News), nil
}

// FetchAnnouncements scrapes the announcements listing.
func (p *Portal) FetchAnnouncements(ctx context.Context) ([]storage.News, error) {
	v, shared, err := p.flight.Do(ctx, "announcements", func() (interface{}, error) {
		doc, err := p.fetch(ctx, "announcements", p.baseURL+AnnouncementsPath)
		if err != nil {
			return nil, err
		}
		return ParseNewsList(doc, storage.KindAnnouncement), nil
	})
	p.recordDedup("announcements", shared)
	if err != nil {
		return nil, err
	}
	return v.([]storage.News), nil
}

func (p *Portal) recordDedup(source string, shared bool) {
	if shared && p.metrics != nil {
		p.metrics.RecordSingleflightDedup(source)
	}
}

func (p *Portal) fetch(ctx context.Context, source, url string) (*goquery.Document, error) {
	start := time.Now()
	doc, err := p.client.GetDocument(ctx, url)
	if p.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
			if ctx.Err() != nil {
				status = "timeout"
			}
		}
		p.metrics.RecordScraperRequest(source, status, time.Since(start).Seconds())
	}
	return doc, err
}

var (
	reRowDate  = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)
	reRowTimes = regexp.MustCompile(`(\d{1,2}:\d{2})\s*(?:-|–|đến)\s*(\d{1,2}:\d{2})`)
	reRowStart = regexp.MustCompile(`\d{1,2}:\d{2}`)
)

// ParseSchedules extracts schedule entries from the work-schedule page.
// Expected row layout: date | time | content | location | leader |
// participants | status. Rows missing a date or content are skipped.
func ParseSchedules(doc *goquery.Document) []schedule.Schedule {
	var entries []schedule.Schedule

	doc.Find("table.schedule-table tbody tr, table.lich-cong-tac tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}

		text := func(i int) string {
			return strings.TrimSpace(cells.Eq(i).Text())
		}

		date, ok := parseRowDate(text(0))
		if !ok {
			return
		}
		content := text(2)
		if content == "" {
			return
		}

		startTime, endTime := parseRowTimes(text(1))

		e := schedule.Schedule{
			Date:      date,
			StartTime: startTime,
			EndTime:   endTime,
			Content:   content,
			Location:  text(3),
			Leader:    text(4),
			Status:    schedule.StatusApproved,
			EventType: classifyEvent(content),
		}
		if cells.Length() > 5 {
			e.Participants = splitParticipants(text(5))
		}
		if cells.Length() > 6 {
			e.Status = parseStatus(text(6))
		}
		e.ID = entryID(e)

		entries = append(entries, e)
	})

	return entries
}

// ParseNewsList extracts news or announcement items from a listing page.
func ParseNewsList(doc *goquery.Document, kind string) []storage.News {
	var items []storage.News

	doc.Find("ul.news-list li, div.news-list article").Each(func(_ int, item *goquery.Selection) {
		link := item.Find("a").First()
		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}

		url, _ := link.Attr("href")
		published := strings.TrimSpace(item.Find(".date, time").First().Text())

		sum := sha256.Sum256([]byte(kind + "|" + title))
		items = append(items, storage.News{
			ID:          hex.EncodeToString(sum[:8]),
			Kind:        kind,
			Title:       title,
			URL:         url,
			PublishedAt: published,
		})
	})

	return items
}

func parseRowDate(v string) (time.Time, bool) {
	m := reRowDate.FindStringSubmatch(v)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// Round-trip check rejects impossible dates like 31/02
	if date.Day() != day || date.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return date, true
}

func parseRowTimes(v string) (start, end string) {
	if m := reRowTimes.FindStringSubmatch(v); m != nil {
		return padClock(m[1]), padClock(m[2])
	}
	if m := reRowStart.FindString(v); m != "" {
		return padClock(m), ""
	}
	return "", ""
}

func padClock(v string) string {
	if len(v) == 4 { // "8:00" -> "08:00"
		return "0" + v
	}
	return v
}

func classifyEvent(content string) string {
	lower := strings.ToLower(content)
	switch {
	case strings.Contains(lower, "tạm ngừng") || strings.Contains(lower, "tạm ngưng") || strings.Contains(lower, "tạm hoãn"):
		return schedule.EventSuspended
	case strings.Contains(lower, "hội nghị"):
		return schedule.EventConference
	default:
		return schedule.EventMeeting
	}
}

func parseStatus(v string) string {
	lower := strings.ToLower(v)
	switch {
	case strings.Contains(lower, "chờ"):
		return schedule.StatusPending
	case strings.Contains(lower, "từ chối") || strings.Contains(lower, "hủy"):
		return schedule.StatusRejected
	default:
		return schedule.StatusApproved
	}
}

func splitParticipants(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ";")
	if len(parts) == 1 {
		parts = strings.Split(v, ",")
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func entryID(e schedule.Schedule) string {
	sum := sha256.Sum256(fmt.Appendf(nil, "%s|%s|%s", e.Date.Format("2006-01-02"), e.StartTime, e.Content))
	return hex.EncodeToString(sum[:8])
}
