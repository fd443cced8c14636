// file: internal/matcher/lexical.go
// version: 1.0.1
// guid: 8d4f2b6a-1c9e-4e73-b5a2-0f6d8c3e7a19

package matcher

import "strings"

// Lexical scores exact and token-overlap similarity. Exact equality of the
// normalized strings scores 1.0; anything else scores the Jaccard overlap of
// the whitespace-split token sets.
type Lexical struct{}

// Name returns the strategy name.
func (Lexical) Name() string { return NameLexical }

// Score returns a similarity in [0,1].
func (Lexical) Score(normQuery, normCandidate string) float64 {
	if normQuery == "" || normCandidate == "" {
		return 0
	}
	if normQuery == normCandidate {
		return 1
	}

	querySet := tokenSet(normQuery)
	candidateSet := tokenSet(normCandidate)
	if len(querySet) == 0 || len(candidateSet) == 0 {
		return 0
	}

	intersection := 0
	for tok := range querySet {
		if candidateSet[tok] {
			intersection++
		}
	}
	union := len(querySet) + len(candidateSet) - intersection

	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
