package autocateg

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds a product title or category name into the canonical form
// all matching is done in: accents stripped (NFD decomposition, combining
// marks removed), lowercased, anything outside [a-z0-9] turned into a space
// and whitespace collapsed. Total and idempotent.
func Normalize(s string) string {
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize returns the words of the normalized form of s.
func Tokenize(s string) []string {
	return strings.Fields(Normalize(s))
}
