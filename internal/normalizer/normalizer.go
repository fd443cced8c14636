// file: internal/normalizer/normalizer.go
// version: 1.1.0
// guid: 3f8a1b2c-9d4e-4f5a-8b6c-7d8e9f0a1b2c

package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes accented characters and strips the combining
// marks, so "Élodie" folds to "Elodie".
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize canonicalizes raw question text into the comparable form stored
// with every record: lowercase, diacritics folded to base Latin letters,
// punctuation replaced by spaces, whitespace runs collapsed, ends trimmed.
// It is pure and idempotent; an empty result is valid and means the input
// carried no matchable content.
func Normalize(text string) string {
	lowered := strings.ToLower(text)
	folded, _, err := transform.String(foldDiacritics, lowered)
	if err != nil {
		folded = lowered
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			// Punctuation separates tokens rather than vanishing, so
			// "one,two" normalizes to "one two" and not "onetwo".
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeOCR is Normalize with an extra cleanup pass for OCR artifacts:
// runs of three or more identical letters are truncated to two before the
// standard pass. Double letters are left alone since real words have them.
func NormalizeOCR(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	var prev rune
	run := 0
	for _, r := range text {
		if r == prev && unicode.IsLetter(r) {
			run++
			if run >= 3 {
				continue
			}
		} else {
			prev = r
			run = 1
		}
		b.WriteRune(r)
	}

	return Normalize(b.String())
}
