package genai

import (
	"strconv"
	"strings"
)

// buildUserPrompt renders the question plus its grounding sources into
// a single prompt block. History travels separately as chat turns.
func buildUserPrompt(req Request) string {
	var b strings.Builder

	if len(req.Sources) > 0 {
		b.WriteString("Thông tin tham khảo:\n")
		for i, src := range req.Sources {
			src = strings.TrimSpace(src)
			if src == "" {
				continue
			}
			b.WriteString("[" + strconv.Itoa(i+1) + "] ")
			b.WriteString(src)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Câu hỏi: ")
	b.WriteString(strings.TrimSpace(req.Question))
	return b.String()
}
