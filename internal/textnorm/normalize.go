// Package textnorm normalizes Vietnamese user input for keyword and
// pattern matching. It produces both an accented lowercase form and a
// fully accent-stripped form so detectors can match colloquial spelling
// with or without diacritics.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizedText holds the three views of one input message.
// Immutable once produced.
type NormalizedText struct {
	Raw    string // original input, trimmed only
	Lower  string // lowercased, punctuation stripped, whitespace collapsed
	Folded string // Lower with Vietnamese diacritics removed (ascii-safe)
}

// foldTransformer strips combining marks after NFD decomposition.
// đ/Đ do not decompose, so they are mapped separately.
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	runes.Map(func(r rune) rune {
		switch r {
		case 'đ':
			return 'd'
		case 'Đ':
			return 'D'
		}
		return r
	}),
	norm.NFC,
)

// Normalize produces the canonical forms of an input message.
// Total: never fails, empty input yields empty forms.
func Normalize(input string) NormalizedText {
	raw := strings.TrimSpace(input)
	lower := collapseSpaces(stripPunct(strings.ToLower(raw)))
	return NormalizedText{
		Raw:    raw,
		Lower:  lower,
		Folded: Fold(lower),
	}
}

// Fold removes Vietnamese diacritics from s. The input casing is kept.
func Fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		return s
	}
	return out
}

// stripPunct removes punctuation but keeps characters later pattern
// stages depend on: digits, ':', '/', '-'.
func stripPunct(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
			b.WriteRune(r)
		case r == ':' || r == '/' || r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// collapseSpaces trims and squeezes internal whitespace to single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
