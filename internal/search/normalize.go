package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize prepares a string for comparison: Unicode NFKC, case folding,
// "ё" folded to "е", every rune that is not a letter or digit turned into a
// space, and whitespace collapsed. "Витамин D (25-OH)" becomes
// "витамин d 25 oh".
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	// cases.Caser is stateful, so a fresh one per call keeps this goroutine-safe.
	s = cases.Fold().String(s)
	s = strings.ReplaceAll(s, "ё", "е")

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func tokens(s string) []string {
	return strings.Fields(s)
}
