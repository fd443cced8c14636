// file: internal/matcher/fuzzy_test.go
// version: 1.2.0
// guid: d4e5f6a7-b8c9-0123-def4-56789012345a

package matcher

import "testing"

func TestFuzzyScore(t *testing.T) {
	f := NewFuzzy(0)
	tests := []struct {
		query, candidate string
		min, max         float64
	}{
		{"what is the capital of france", "what is the capital of france", 1.0, 1.0},
		{"", "anything", 0, 0},
		{"anything", "", 0, 0},
		// one-character typo in a 29-character string
		{"wat is the capital of france", "what is the capital of france", 0.9, 0.99},
		// several typos still land well above unrelated text
		{"wat is teh capital of frnce", "what is the capital of france", 0.8, 0.99},
		{"completely unrelated words xx", "what is the capital of france", 0, 0.5},
	}
	for _, tt := range tests {
		got := f.Score(tt.query, tt.candidate)
		if got < tt.min || got > tt.max {
			t.Errorf("Score(%q, %q) = %f, want [%f, %f]", tt.query, tt.candidate, got, tt.min, tt.max)
		}
	}
}

func TestFuzzyScore_MultibyteRuneUnits(t *testing.T) {
	f := NewFuzzy(0)
	// 2 of 5 runes differ: the score must be computed over rune counts,
	// not the 15-byte UTF-8 encodings.
	got := f.Score("東京の首都", "大阪の首都")
	if got != 0.6 {
		t.Errorf("Score(east/west capital) = %f, want 0.6", got)
	}
	// One rune edit in an 8-rune word.
	got = f.Score("питонист", "пианист")
	if got < 0.7 || got > 0.8 {
		t.Errorf("Score(cyrillic near-match) = %f, want [0.7, 0.8]", got)
	}
}

func TestFuzzyScore_MultibytePrefilter(t *testing.T) {
	// 2 runes vs 7 runes is well under a 0.5 ratio, so the pair is
	// rejected; the ratio must be computed over rune counts.
	f := NewFuzzy(0.5)
	if got := f.Score("東京", "東京の首都です"); got != 0 {
		t.Errorf("expected prefilter to reject, got %f", got)
	}
}

func TestFuzzyScore_LengthPrefilter(t *testing.T) {
	f := NewFuzzy(0.5)
	// Shorter side is well under half the longer side: skipped, scores 0.
	if got := f.Score("hi", "what is the capital of france"); got != 0 {
		t.Errorf("expected prefilter to reject, got %f", got)
	}
	// A permissive ratio lets the same pair through.
	loose := NewFuzzy(0.01)
	if got := loose.Score("hi", "what is the capital of france"); got < 0 || got > 1 {
		t.Errorf("score out of range: %f", got)
	}
}

func TestNewFuzzy_Default(t *testing.T) {
	f := NewFuzzy(0)
	if f.MinLengthRatio != DefaultMinLengthRatio {
		t.Errorf("default ratio = %f, want %f", f.MinLengthRatio, DefaultMinLengthRatio)
	}
}
