// file: internal/resolver/resolver.go
// version: 1.2.0
// guid: 7e8f9a0b-1c2d-3e4f-5a6b-7c8d9e0f1a2b

package resolver

import (
	"sort"

	"github.com/answerbox/answerbox/internal/database"
	"github.com/answerbox/answerbox/internal/matcher"
)

// Default fusion tunables. All of them are overridable through configuration;
// nothing in Resolve reads them directly.
const (
	DefaultThreshold         = 0.80
	DefaultSemanticThreshold = 0.75
	DefaultSemanticBoost     = 0.10
	DefaultSemanticTopK      = 10
)

// Policy carries the fusion tunables for one query.
type Policy struct {
	// Threshold is the minimum fused score (τ) required to report a match.
	Threshold float64
	// SemanticThreshold is the minimum semantic similarity for the
	// agreement boost to apply.
	SemanticThreshold float64
	// SemanticBoost is added to the fused score when the semantic strategy
	// independently picks the same top record.
	SemanticBoost float64
}

// Candidate pairs a corpus record with its per-strategy scores for one query.
type Candidate struct {
	Record database.Record
	// Scores maps strategy name to a score in [0,1]. An unavailable
	// strategy is absent from the map, never zero.
	Scores map[string]float64
}

// Decision is the outcome of one match query.
type Decision struct {
	Matched bool              `json:"matched"`
	Record  *database.Record  `json:"record,omitempty"`
	Score   float64           `json:"score"`
	// Scores holds the winning candidate's per-strategy breakdown.
	Scores map[string]float64 `json:"scores,omitempty"`
}

// NoMatch is the decision for an empty corpus or an unmatchable query.
func NoMatch() Decision {
	return Decision{Matched: false}
}

// Resolve fuses per-candidate strategy scores into a single ranked decision.
//
// Fusion policy: an exact lexical hit (score 1.0) wins outright. Otherwise a
// candidate's fused score is max(lexical, fuzzy); the candidate that also
// tops the semantic ranking gets Policy.SemanticBoost added (clamped to 1.0)
// when its semantic similarity clears Policy.SemanticThreshold. When neither
// lexical nor fuzzy scored a candidate, its semantic similarity is the fused
// score itself and no boost applies, so a semantic-only configuration still
// resolves matches. Ties break toward the newer record, then the larger ID,
// so results are deterministic.
//
// Resolve is a pure function of its inputs: no I/O, no shared state.
func Resolve(candidates []Candidate, policy Policy) Decision {
	if len(candidates) == 0 {
		return NoMatch()
	}

	type scored struct {
		candidate Candidate
		fused     float64
		semFused  bool
	}

	ranked := make([]scored, 0, len(candidates))
	semTopIdx := -1
	semTopScore := 0.0
	for i, c := range candidates {
		fused := 0.0
		lex, hasLex := c.Scores[matcher.NameLexical]
		if hasLex && lex > fused {
			fused = lex
		}
		fz, hasFz := c.Scores[matcher.NameFuzzy]
		if hasFz && fz > fused {
			fused = fz
		}
		sem, hasSem := c.Scores[matcher.NameSemantic]

		// With no lexical or fuzzy score the semantic similarity carries
		// the candidate on its own.
		semFused := false
		if !hasLex && !hasFz && hasSem {
			fused = sem
			semFused = true
		}
		ranked = append(ranked, scored{candidate: c, fused: fused, semFused: semFused})

		if hasSem && (semTopIdx < 0 || sem > semTopScore) {
			semTopIdx = i
			semTopScore = sem
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].fused != ranked[j].fused {
			return ranked[i].fused > ranked[j].fused
		}
		ri, rj := ranked[i].candidate.Record, ranked[j].candidate.Record
		if !ri.CreatedAt.Equal(rj.CreatedAt) {
			return ri.CreatedAt.After(rj.CreatedAt)
		}
		return ri.ID > rj.ID
	})

	top := ranked[0]

	// Semantic agreement boost: applies when the semantic strategy's own
	// top pick is the same record and clears its threshold. Boosting the
	// leader never reorders the ranking. No boost when the fused score is
	// already the semantic similarity itself.
	if !top.semFused && semTopIdx >= 0 && semTopScore >= policy.SemanticThreshold &&
		candidates[semTopIdx].Record.ID == top.candidate.Record.ID && top.fused < 1.0 {
		top.fused += policy.SemanticBoost
		if top.fused > 1.0 {
			top.fused = 1.0
		}
	}

	if top.fused < policy.Threshold {
		return NoMatch()
	}

	record := top.candidate.Record
	return Decision{
		Matched: true,
		Record:  &record,
		Score:   top.fused,
		Scores:  top.candidate.Scores,
	}
}
