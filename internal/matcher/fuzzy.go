// file: internal/matcher/fuzzy.go
// version: 1.2.0
// guid: 2e9a7c31-6f4d-4b08-9d5e-c1a3b7f0e842

package matcher

import (
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultMinLengthRatio is the default prefilter ratio: candidates whose
// length differs from the query by more than 2x are skipped without running
// the full edit-distance computation.
const DefaultMinLengthRatio = 0.5

// Fuzzy scores normalized edit-distance similarity. It exists to absorb OCR
// misreads and typos that defeat exact and token matching ("wat" vs "what").
type Fuzzy struct {
	// MinLengthRatio bounds cost on large corpora: when the shorter string
	// is less than this fraction of the longer one, the pair scores 0
	// without computing the distance. An approximate prefilter, not a
	// correctness requirement.
	MinLengthRatio float64
}

// NewFuzzy creates a fuzzy scorer. Pass 0 for the default length-ratio
// prefilter.
func NewFuzzy(minLengthRatio float64) Fuzzy {
	if minLengthRatio <= 0 {
		minLengthRatio = DefaultMinLengthRatio
	}
	return Fuzzy{MinLengthRatio: minLengthRatio}
}

// Name returns the strategy name.
func (Fuzzy) Name() string { return NameFuzzy }

// Score returns 1 - editDistance/maxLen, or 0 when either side is empty or
// the length prefilter rejects the pair.
func (f Fuzzy) Score(normQuery, normCandidate string) float64 {
	if normQuery == "" || normCandidate == "" {
		return 0
	}
	if normQuery == normCandidate {
		return 1
	}

	// Rune counts, not byte lengths: the edit distance counts runes, so
	// the ratio and the denominator must use the same unit.
	shorter, longer := utf8.RuneCountInString(normQuery), utf8.RuneCountInString(normCandidate)
	if shorter > longer {
		shorter, longer = longer, shorter
	}
	if float64(shorter)/float64(longer) < f.MinLengthRatio {
		return 0
	}

	dist := fuzzy.LevenshteinDistance(normQuery, normCandidate)
	similarity := 1 - float64(dist)/float64(longer)
	if similarity < 0 {
		return 0
	}
	return similarity
}
