// Package faq is the static keyword-matched question/answer fallback
// used when no actionable schedule intent is found. Matching is binary
// (no relevance ranking) and results keep table order.
package faq

import (
	"fmt"
	"strings"

	"github.com/tbu-portal/tbu-chatbot-go/internal/textnorm"
)

// Categories.
const (
	CategoryGeneral    = "general"
	CategoryAdmission  = "admission"
	CategoryAcademic   = "academic"
	CategoryFacilities = "facilities"
	CategoryOther      = "other"
)

// MaxResults caps how many items one search returns.
const MaxResults = 3

// Item is one question/answer pair.
type Item struct {
	Question string
	Answer   string
	Keywords []string
	Category string
}

// NotFoundAnswer is returned verbatim when nothing matches.
const NotFoundAnswer = `Không tìm thấy câu trả lời phù hợp. Bạn có thể:
• Hỏi lại với từ khóa khác
• Liên hệ Phòng Đào tạo
• Kiểm tra website: www.tbu.edu.vn`

// Search returns at most MaxResults items. An item matches when any of
// its keywords is a substring of the query, or any query token longer
// than two characters is a substring of the item's question. Both
// sides are folded first. Keyword hits rank ahead of question-token
// hits; within each group, table order is kept.
func Search(query string, items []Item) []Item {
	folded := textnorm.Fold(strings.ToLower(strings.TrimSpace(query)))
	if folded == "" {
		return nil
	}

	var tokens []string
	for _, tok := range strings.Fields(folded) {
		if len(tok) > 2 {
			tokens = append(tokens, tok)
		}
	}

	var byKeyword, byQuestion []Item
	for _, item := range items {
		switch {
		case keywordHit(folded, item):
			byKeyword = append(byKeyword, item)
		case questionHit(tokens, item):
			byQuestion = append(byQuestion, item)
		}
	}

	out := append(byKeyword, byQuestion...)
	if len(out) > MaxResults {
		out = out[:MaxResults]
	}
	return out
}

func keywordHit(foldedQuery string, item Item) bool {
	for _, kw := range item.Keywords {
		if strings.Contains(foldedQuery, textnorm.Fold(strings.ToLower(kw))) {
			return true
		}
	}
	return false
}

func questionHit(tokens []string, item Item) bool {
	question := textnorm.Fold(strings.ToLower(item.Question))
	for _, tok := range tokens {
		if strings.Contains(question, tok) {
			return true
		}
	}
	return false
}

// FormatAnswer renders search results. A single hit gets its full
// answer; several hits become a disambiguation list; no hits yield
// NotFoundAnswer.
func FormatAnswer(items []Item) string {
	switch len(items) {
	case 0:
		return NotFoundAnswer
	case 1:
		return fmt.Sprintf("📝 **%s**\n\n%s", items[0].Question, items[0].Answer)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Tôi tìm thấy %d câu trả lời liên quan:\n\n", len(items))
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Question)
	}
	b.WriteString("\nBạn muốn hỏi về câu nào?")
	return b.String()
}
