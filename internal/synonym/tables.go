// Package synonym holds the closed Vietnamese vocabulary the chatbot
// understands: lookup tables mapping colloquial surface forms to
// canonical terms, plus keyword lists for coarse intent routing.
// All tables are built once at init and never mutated afterwards.
package synonym

// Entry maps one canonical term to its surface variants.
// Entries are matched in declared order so resolution is deterministic.
type Entry struct {
	Canonical string
	Variants  []string
}

// Table is an ordered synonym table.
type Table []Entry

// RelativeDay maps colloquial relative-day phrases to canonical forms.
var RelativeDay = Table{
	{Canonical: "hôm nay", Variants: []string{"hôm nay", "ngày hôm nay", "bữa nay", "today", "nay"}},
	{Canonical: "ngày mai", Variants: []string{"ngày mai", "hôm sau", "ngày sau", "tomorrow", "mai"}},
	{Canonical: "tuần sau", Variants: []string{"tuần sau", "tuần tới", "tuần kế tiếp", "next week"}},
	{Canonical: "tuần này", Variants: []string{"tuần này", "tuần nay", "trong tuần", "cả tuần", "week", "tuần"}},
	{Canonical: "tháng này", Variants: []string{"tháng này", "trong tháng", "tháng"}},
}

// DayPart maps half-day phrases to the canonical buổi.
var DayPart = Table{
	{Canonical: "sáng", Variants: []string{"buổi sáng", "sáng", "sớm", "đầu ngày", "morning"}},
	{Canonical: "chiều", Variants: []string{"buổi chiều", "xế chiều", "chiều", "afternoon"}},
	{Canonical: "tối", Variants: []string{"buổi tối", "tối", "đêm", "evening"}},
}

// Leader maps leadership titles and their common abbreviations.
var Leader = Table{
	{Canonical: "phó hiệu trưởng", Variants: []string{"phó hiệu trưởng", "phó hiệutrưởng", "phó ht", "pht"}},
	{Canonical: "hiệu trưởng", Variants: []string{"thầy hiệu trưởng", "hiệu trưởng", "hiệutrưởng", "ht"}},
	{Canonical: "phó trưởng phòng", Variants: []string{"phó trưởng phòng", "phó tp", "ptp"}},
	{Canonical: "trưởng phòng", Variants: []string{"trưởng phòng", "tp"}},
}

// Weekday maps weekday phrasings to the canonical "thứ N" form.
// The abbreviated forms (t2, th2) are matched as whole words by the
// resolver to avoid firing inside unrelated tokens.
var Weekday = Table{
	{Canonical: "thứ 2", Variants: []string{"thứ hai", "thứ 2", "th2", "t2"}},
	{Canonical: "thứ 3", Variants: []string{"thứ ba", "thứ 3", "th3", "t3"}},
	{Canonical: "thứ 4", Variants: []string{"thứ tư", "thứ 4", "th4", "t4"}},
	{Canonical: "thứ 5", Variants: []string{"thứ năm", "thứ 5", "th5", "t5"}},
	{Canonical: "thứ 6", Variants: []string{"thứ sáu", "thứ 6", "th6", "t6"}},
	{Canonical: "thứ 7", Variants: []string{"thứ bảy", "thứ 7", "th7", "t7"}},
	{Canonical: "chủ nhật", Variants: []string{"chủ nhật", "chủnhật", "cn"}},
}

// WeekdayNumber maps canonical weekday terms to time.Weekday numbering
// (Sunday = 0).
var WeekdayNumber = map[string]int{
	"thứ 2":    1,
	"thứ 3":    2,
	"thứ 4":    3,
	"thứ 5":    4,
	"thứ 6":    5,
	"thứ 7":    6,
	"chủ nhật": 0,
}

// Keyword lists for coarse intent routing. Matched as substrings of the
// folded query, first list wins per the extractor's ordering.
var (
	GreetingKeywords      = []string{"xin chào", "chào bạn", "chào bot", "chào", "hello", "hi", "hey"}
	HelpKeywords          = []string{"giúp", "trợ giúp", "help", "hướng dẫn", "làm được gì", "hỗ trợ gì", "bạn có thể"}
	ThanksKeywords        = []string{"cảm ơn", "cám ơn", "thank", "thanks", "tks", "thankz"}
	NewsKeywords          = []string{"tin tức", "tin mới nhất", "tin mới", "bài viết mới", "có tin gì", "news"}
	AnnouncementKeywords  = []string{"thông báo mới", "thông báo", "có thông báo gì", "announce"}
	ScheduleKeywords      = []string{"lịch", "công tác", "làm việc", "họp", "sự kiện", "hoạt động"}
	FollowupKeywords      = []string{"còn gì nữa", "còn lịch nào", "nữa không", "thêm gì", "gì khác", "gì nữa", "còn", "vậy", "thế", "tiếp"}
	MeetingKeywords       = []string{"cuộc họp", "hội nghị", "hội thảo", "buổi họp", "meeting", "họp"}
	SuspensionKeywords    = []string{"tạm ngưng", "hoãn"}
)

// Stopwords excluded from topic keyword extraction. Folded forms.
var Stopwords = map[string]struct{}{
	"cho":   {},
	"biet":  {},
	"xem":   {},
	"tra":   {},
	"cuu":   {},
	"tim":   {},
	"kiem":  {},
	"lich":  {},
	"ngay":  {},
	"tuan":  {},
	"thang": {},
	"buoi":  {},
	"cua":   {},
	"thi":   {},
	"sao":   {},
	"khong": {},
	"nao":   {},
	"gi":    {},
	"co":    {},
	"la":    {},
	"va":    {},
	"voi":   {},
	"trong": {},
	"nhu":   {},
	"the":   {},
	"nua":   {},
	"con":   {},
	"hop":   {},
	"lam":   {},
	"viec":  {},
}
