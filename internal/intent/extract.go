package intent

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbu-portal/tbu-chatbot-go/internal/synonym"
	"github.com/tbu-portal/tbu-chatbot-go/internal/textnorm"
)

// Patterns run against the folded (diacritic-free) form, so "ngày" is
// matched as "ngay". Date patterns are ordered most to least specific.
var (
	reDateFull  = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	reDateNamed = regexp.MustCompile(`ngay\s*(\d{1,2})\s*thang\s*(\d{1,2})`)
	reDateShort = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})`)

	reClock = regexp.MustCompile(`(\d{1,2})(?:\s*gio|\s*h|:)\s*(\d{0,2})\b`)

	// Leader patterns run on the accented lowercase form so the
	// captured name keeps its diacritics.
	reLeaderChairs = regexp.MustCompile(`do\s+(.+?)\s+chủ trì`)
	reLeaderTitled = regexp.MustCompile(`(?:thầy|cô)\s+(\p{L}+)`)

	reLeaderChairsFolded = regexp.MustCompile(`do\s+(.+?)\s+chu tri`)

	titleCaser = cases.Title(language.Vietnamese)
)

// Extract reads one normalized message into a structured intent. All
// relative dates are kept relative; now is only used to decide the
// year-roll for explicit day/month dates, via validation at resolve
// time. Extract is pure: same input and now always yield the same
// result.
func Extract(n textnorm.NormalizedText, now time.Time) ExtractedIntent {
	it := ExtractedIntent{Type: Unknown}
	if n.Lower == "" {
		return it
	}

	runeLen := len([]rune(n.Lower))

	// Conversational fast paths, checked in fixed order. Greetings and
	// thanks only win on short messages so a real question that happens
	// to start with "chào" still reaches the schedule detectors.
	switch {
	case synonym.ContainsAny(n.Lower, synonym.GreetingKeywords) && runeLen < 30:
		it.Type = Greeting
		it.Confidence = 0.95
		return it
	case synonym.ContainsAny(n.Lower, synonym.HelpKeywords):
		it.Type = Help
		it.Confidence = 0.9
		return it
	case synonym.ContainsAny(n.Lower, synonym.ThanksKeywords) && runeLen < 30:
		it.Type = Thanks
		it.Confidence = 0.9
		return it
	case synonym.ContainsAny(n.Lower, synonym.NewsKeywords):
		it.Type = News
		it.Confidence = 0.9
		return it
	case synonym.ContainsAny(n.Lower, synonym.AnnouncementKeywords):
		it.Type = Announcements
		it.Confidence = 0.9
		return it
	}

	// work is the folded text with consumed spans blanked out; what
	// remains at the end becomes topic keywords.
	work := n.Folded

	it.DateRef, work = detectDate(n.Folded, work)
	it.Leader, work = detectLeader(n, work)
	it.TimeFilter, work = detectTimeFilter(n.Folded, work)

	it.ScheduleCue = synonym.ContainsAny(n.Lower, synonym.ScheduleKeywords) ||
		synonym.ContainsAny(n.Lower, synonym.FollowupKeywords)

	it.TopicKeywords = topicKeywords(work)

	deriveType(&it)
	return it
}

// detectDate finds a date mention. Explicit day/month patterns win over
// relative keywords; a named weekday wins over a bare week reference so
// "thứ 5 tuần sau" means that weekday, not the whole week.
func detectDate(folded, work string) (*DateReference, string) {
	if m := reDateFull.FindStringSubmatch(folded); m != nil {
		day, month, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if validDate(day, month, year) {
			return &DateReference{Kind: DateAbsolute, Day: day, Month: month, Year: year},
				strings.Replace(work, m[0], " ", 1)
		}
	}
	if m := reDateNamed.FindStringSubmatch(folded); m != nil {
		day, month := atoi(m[1]), atoi(m[2])
		if validDate(day, month, 0) {
			return &DateReference{Kind: DateAbsolute, Day: day, Month: month},
				strings.Replace(work, m[0], " ", 1)
		}
	}
	if m := reDateShort.FindStringSubmatch(folded); m != nil {
		day, month := atoi(m[1]), atoi(m[2])
		if validDate(day, month, 0) {
			return &DateReference{Kind: DateAbsolute, Day: day, Month: month},
				strings.Replace(work, m[0], " ", 1)
		}
	}

	rel, relVariant := synonym.Match(folded, synonym.RelativeDay)

	if wd, wdVariant := synonym.Match(folded, synonym.Weekday); wd != "" {
		ref := &DateReference{
			Kind:     DateWeekday,
			Weekday:  time.Weekday(synonym.WeekdayNumber[wd]),
			NextWeek: rel == "tuần sau",
		}
		work = removeWord(work, wdVariant)
		if rel == "tuần sau" {
			work = removeWord(work, relVariant)
		}
		return ref, work
	}

	switch rel {
	case "hôm nay":
		return &DateReference{Kind: DateToday}, removeWord(work, relVariant)
	case "ngày mai":
		return &DateReference{Kind: DateTomorrow}, removeWord(work, relVariant)
	case "tuần này":
		return &DateReference{Kind: DateThisWeek}, removeWord(work, relVariant)
	case "tuần sau":
		return &DateReference{Kind: DateNextWeek}, removeWord(work, relVariant)
	case "tháng này":
		return &DateReference{Kind: DateThisMonth}, removeWord(work, relVariant)
	}
	return nil, work
}

// detectLeader finds the responsible leader. The explicit "do X chủ
// trì" phrasing wins, then known titles, then a "thầy/cô <name>"
// mention. Captured names are title-cased per word.
func detectLeader(n textnorm.NormalizedText, work string) (string, string) {
	if m := reLeaderChairs.FindStringSubmatch(n.Lower); m != nil {
		if fm := reLeaderChairsFolded.FindString(work); fm != "" {
			work = strings.Replace(work, fm, " ", 1)
		}
		return titleCaser.String(strings.TrimSpace(m[1])), work
	}

	if canonical, variant := synonym.Match(n.Lower, synonym.Leader); canonical != "" {
		return canonical, removeWord(work, variant)
	}

	if m := reLeaderTitled.FindStringSubmatch(n.Lower); m != nil {
		name := titleCaser.String(m[1])
		return name, removeWord(work, textnorm.Fold(strings.ToLower(m[1])))
	}
	return "", work
}

// detectTimeFilter finds an intra-day filter: an explicit clock time
// ("8 giờ 30", "15h", "14:30") yields a two-hour window from that
// time, otherwise a buổi keyword yields its half-day window.
func detectTimeFilter(folded, work string) (*TimeWindow, string) {
	if m := reClock.FindStringSubmatch(folded); m != nil {
		hour := atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute = atoi(m[2])
		}
		if hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59 {
			start := hour*60 + minute
			end := start + 2*60
			if end > 24*60 {
				end = 24 * 60
			}
			return &TimeWindow{Start: start, End: end}, strings.Replace(work, m[0], " ", 1)
		}
	}

	if part, variant := synonym.Match(folded, synonym.DayPart); part != "" {
		if w, ok := DayPartWindow(part); ok {
			return &w, removeWord(work, variant)
		}
	}
	return nil, work
}

// topicKeywords collects the significant leftover tokens: longer than
// two characters, not numeric, not a stopword. Capped at five to keep
// the content filter focused.
func topicKeywords(work string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tok := range strings.Fields(work) {
		if len(tok) <= 2 || isNumeric(tok) {
			continue
		}
		if _, stop := synonym.Stopwords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if len(out) == 5 {
			break
		}
	}
	return out
}

// deriveType classifies from which fields were populated: a leader
// alone asks for that leader's schedule, any date or time reference is
// a date query, leftover topics alone are a content search, and an
// empty extraction stays unknown so the FAQ fallback can take over.
func deriveType(it *ExtractedIntent) {
	switch {
	case it.DateRef != nil || it.TimeFilter != nil:
		it.Type = ScheduleByDate
		it.Confidence = 0.9
		if it.DateRef != nil && it.DateRef.Kind == DateAbsolute {
			it.Confidence = 0.95
		}
	case it.Leader != "":
		it.Type = ScheduleByLeader
		it.Confidence = 0.9
	case len(it.TopicKeywords) > 0 && it.ScheduleCue:
		it.Type = ScheduleByTopic
		it.Confidence = 0.6
	default:
		it.Type = Unknown
	}
}

func validDate(day, month, year int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	if year == 0 {
		year = 2024 // leap year so 29/02 stays representable
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Day() == day && int(d.Month()) == month
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

// removeWord blanks the first whole-word occurrence of w in s.
func removeWord(s, w string) string {
	if w == "" {
		return s
	}
	fields := strings.Fields(s)
	// Multi-word variants are removed as a substring.
	if strings.Contains(w, " ") {
		return strings.Replace(s, w, " ", 1)
	}
	for i, tok := range fields {
		if tok == w {
			return strings.Join(append(fields[:i:i], fields[i+1:]...), " ")
		}
	}
	return strings.Replace(s, w, " ", 1)
}
