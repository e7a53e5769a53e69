package synonym

import (
	"strings"

	"github.com/tbu-portal/tbu-chatbot-go/internal/textnorm"
)

// FindCanonical returns the canonical term whose variant occurs in text,
// or "" when nothing matches. Matching is case- and diacritic-tolerant:
// both sides are folded before comparison. Short variants (<= 3 bytes
// after folding) only match as whole words so abbreviations like "t2"
// or "cn" cannot fire inside longer tokens.
func FindCanonical(text string, table Table) string {
	canonical, _ := Match(text, table)
	return canonical
}

// Match is FindCanonical plus the folded variant that matched, so
// callers can mark the surface form as consumed.
func Match(text string, table Table) (canonical, variant string) {
	folded := textnorm.Fold(strings.ToLower(text))
	for _, e := range table {
		for _, v := range e.Variants {
			fv := textnorm.Fold(strings.ToLower(v))
			if len(fv) <= 3 {
				if containsWord(folded, fv) {
					return e.Canonical, fv
				}
				continue
			}
			if strings.Contains(folded, fv) {
				return e.Canonical, fv
			}
		}
	}
	return "", ""
}

// ContainsAny reports whether any keyword occurs in text.
// Same folding rules as FindCanonical.
func ContainsAny(text string, keywords []string) bool {
	folded := textnorm.Fold(strings.ToLower(text))
	for _, kw := range keywords {
		fkw := textnorm.Fold(strings.ToLower(kw))
		if len(fkw) <= 3 {
			if containsWord(folded, fkw) {
				return true
			}
			continue
		}
		if strings.Contains(folded, fkw) {
			return true
		}
	}
	return false
}

// containsWord reports whether w occurs in s as a whole
// space-delimited word.
func containsWord(s, w string) bool {
	if w == "" {
		return false
	}
	for _, tok := range strings.Fields(s) {
		if tok == w {
			return true
		}
	}
	return false
}
