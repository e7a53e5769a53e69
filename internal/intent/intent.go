// Package intent turns a normalized Vietnamese question into a
// structured query description. Extraction is an ordered set of pure
// detector functions; every relative date stays relative until resolved
// against a caller-supplied clock, so the whole package is
// deterministic and testable.
package intent

import "fmt"

// QueryType classifies what the user is asking for.
type QueryType int

const (
	Unknown QueryType = iota
	ScheduleByDate
	ScheduleByLeader
	ScheduleByTopic
	GeneralFAQ

	// Conversational intents answered without touching schedule data.
	Greeting
	Help
	Thanks
	News
	Announcements
)

func (t QueryType) String() string {
	switch t {
	case ScheduleByDate:
		return "schedule_by_date"
	case ScheduleByLeader:
		return "schedule_by_leader"
	case ScheduleByTopic:
		return "schedule_by_topic"
	case GeneralFAQ:
		return "general_faq"
	case Greeting:
		return "greeting"
	case Help:
		return "help"
	case Thanks:
		return "thanks"
	case News:
		return "news"
	case Announcements:
		return "announcements"
	default:
		return "unknown"
	}
}

// IsSchedule reports whether the type queries schedule data.
func (t QueryType) IsSchedule() bool {
	switch t {
	case ScheduleByDate, ScheduleByLeader, ScheduleByTopic:
		return true
	}
	return false
}

// TimeWindow is a coarse intra-day filter in minutes from midnight,
// half-open [Start, End).
type TimeWindow struct {
	Start int
	End   int
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// Contains reports whether a clock time (minutes from midnight) falls
// inside the window.
func (w TimeWindow) Contains(minutes int) bool {
	return minutes >= w.Start && minutes < w.End
}

// Half-day windows for the canonical buổi terms.
var dayPartWindows = map[string]TimeWindow{
	"sáng":  {Start: 0, End: 12 * 60},
	"chiều": {Start: 12 * 60, End: 18 * 60},
	"tối":   {Start: 18 * 60, End: 24 * 60},
}

// DayPartWindow maps a canonical buổi term to its window.
func DayPartWindow(canonical string) (TimeWindow, bool) {
	w, ok := dayPartWindows[canonical]
	return w, ok
}

// DayPartName names the buổi a window corresponds to, or "" when the
// window is not one of the canonical half-day windows.
func DayPartName(w TimeWindow) string {
	for name, dw := range dayPartWindows {
		if dw == w {
			return name
		}
	}
	return ""
}

// ExtractedIntent is the structured reading of one message. Any field
// may be absent; absent means the user did not say it, never a guessed
// default.
type ExtractedIntent struct {
	Type          QueryType
	DateRef       *DateReference
	TimeFilter    *TimeWindow
	Leader        string
	TopicKeywords []string

	// ScheduleCue is set when the message contains a schedule or
	// follow-up keyword even though no concrete filter was extracted.
	// The orchestrator uses it to fall back onto remembered context.
	ScheduleCue bool

	Confidence float64
}

// Empty reports whether the intent carries no information at all.
func (it ExtractedIntent) Empty() bool {
	return it.Type == Unknown &&
		it.DateRef == nil &&
		it.TimeFilter == nil &&
		it.Leader == "" &&
		len(it.TopicKeywords) == 0
}
