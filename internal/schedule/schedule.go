// Package schedule models institutional work-schedule entries and
// filters them by a resolved query. The engine never mutates the
// entries it is given; it only filters, sorts and returns them.
package schedule

import (
	"sort"
	"strings"
	"time"

	"github.com/tbu-portal/tbu-chatbot-go/internal/intent"
	"github.com/tbu-portal/tbu-chatbot-go/internal/textnorm"
)

// Approval states. Only approved entries are ever shown to users.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Event types.
const (
	EventMeeting    = "cuoc_hop"
	EventConference = "hoi_nghi"
	EventSuspended  = "tam_ngung"
)

// Schedule is one calendar entry. Times are "HH:MM" strings as stored
// by the portal.
type Schedule struct {
	ID           string    `json:"id"`
	Date         time.Time `json:"date"`
	StartTime    string    `json:"start_time"`
	EndTime      string    `json:"end_time"`
	Content      string    `json:"content"`
	Location     string    `json:"location"`
	Leader       string    `json:"leader"`
	Participants []string  `json:"participants,omitempty"`
	Status       string    `json:"status"`
	EventType    string    `json:"event_type,omitempty"`
}

// StartMinutes parses StartTime into minutes from midnight.
// Malformed times yield -1 so they fail every time-window filter.
func (s Schedule) StartMinutes() int {
	return parseClock(s.StartTime)
}

func parseClock(v string) int {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return -1
	}
	h, okH := atoi(parts[0])
	m, okM := atoi(parts[1])
	if !okH || !okM || h < 0 || h > 23 || m < 0 || m > 59 {
		return -1
	}
	return h*60 + m
}

func atoi(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// Filter is a fully resolved query: relative dates have already been
// turned into the [From, To] day range.
type Filter struct {
	From       *time.Time
	To         *time.Time
	TimeWindow *intent.TimeWindow
	Leader     string
	Keywords   []string
	// MatchAllKeywords requires every keyword to match instead of any.
	MatchAllKeywords bool
	EventType        string
}

// FilterFromIntent resolves a merged intent into a concrete filter
// using the supplied reference clock.
func FilterFromIntent(dateRef *intent.DateReference, window *intent.TimeWindow, leader string, keywords []string, matchAll bool, now time.Time) Filter {
	f := Filter{
		TimeWindow: window,
		Leader:     leader,
		Keywords:   keywords,

		MatchAllKeywords: matchAll,
	}
	if dateRef != nil {
		from, to := dateRef.Resolve(now)
		f.From = &from
		f.To = &to
	}
	return f
}

// QueryResult is the outcome of one query. Ephemeral, never persisted.
type QueryResult struct {
	Matched []Schedule
	Total   int
	Applied Filter
}

// Query filters and sorts entries. Only approved entries can match.
// Results are sorted ascending by date, then by start time, and are
// not capped; display truncation is the caller's concern.
func Query(entries []Schedule, f Filter) QueryResult {
	matched := make([]Schedule, 0, len(entries))
	for _, e := range entries {
		if matches(e, f) {
			matched = append(matched, e)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].StartTime < matched[j].StartTime
	})

	return QueryResult{Matched: matched, Total: len(matched), Applied: f}
}

func matches(e Schedule, f Filter) bool {
	if e.Status != StatusApproved {
		return false
	}
	if f.EventType != "" && e.EventType != f.EventType {
		return false
	}
	if f.From != nil && dayOf(e.Date).Before(dayOf(*f.From)) {
		return false
	}
	if f.To != nil && dayOf(e.Date).After(dayOf(*f.To)) {
		return false
	}
	if f.TimeWindow != nil {
		start := e.StartMinutes()
		if start < 0 || !f.TimeWindow.Contains(start) {
			return false
		}
	}
	if f.Leader != "" && !foldedContains(e.Leader, f.Leader) {
		return false
	}
	if len(f.Keywords) > 0 && !keywordsMatch(e, f.Keywords, f.MatchAllKeywords) {
		return false
	}
	return true
}

// keywordsMatch checks keywords against content, location and leader.
func keywordsMatch(e Schedule, keywords []string, matchAll bool) bool {
	haystack := textnorm.Fold(strings.ToLower(e.Content + " " + e.Location + " " + e.Leader))
	for _, kw := range keywords {
		found := strings.Contains(haystack, textnorm.Fold(strings.ToLower(kw)))
		if matchAll && !found {
			return false
		}
		if !matchAll && found {
			return true
		}
	}
	return matchAll
}

// foldedContains does case- and diacritic-insensitive substring match.
func foldedContains(haystack, needle string) bool {
	return strings.Contains(
		textnorm.Fold(strings.ToLower(haystack)),
		textnorm.Fold(strings.ToLower(needle)),
	)
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
