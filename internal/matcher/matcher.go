// file: internal/matcher/matcher.go
// version: 1.2.0
// guid: 1f2a3b4c-5d6e-7f8a-9b0c-1d2e3f4a5b6c

package matcher

// Strategy names used in configuration, per-candidate score maps, and the
// HTTP API.
const (
	NameLexical  = "lexical"
	NameFuzzy    = "fuzzy"
	NameSemantic = "semantic"
)

// Scorer scores a candidate question against a query. Both inputs are
// normalized text; implementations are pure functions so they can run
// against a corpus snapshot from any number of goroutines.
type Scorer interface {
	Name() string
	Score(normQuery, normCandidate string) float64
}

var (
	_ Scorer = Lexical{}
	_ Scorer = Fuzzy{}
)
