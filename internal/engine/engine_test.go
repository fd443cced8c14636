// file: internal/engine/engine_test.go
// version: 1.2.0
// guid: 4d5e6f7a-8b9c-0d1e-2f3a-4b5c6d7e8f9a

package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/answerbox/answerbox/internal/database"
	"github.com/answerbox/answerbox/internal/matcher"
	"github.com/answerbox/answerbox/internal/semantic"
)

// stubEmbedder serves canned vectors keyed by normalized text.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s stubEmbedder) IsEnabled() bool { return true }

func (s stubEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	v, ok := s.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

func (s stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := s.EmbedText(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func newTestEngine(t *testing.T, strategies ...string) (*Engine, *database.MockStore) {
	t.Helper()
	store := database.NewMockStore()
	eng := New(store, nil, nil, Config{Strategies: strategies})
	return eng, store
}

func seed(t *testing.T, eng *Engine, pairs map[string]string) {
	t.Helper()
	for q, a := range pairs {
		_, err := eng.Ingest(context.Background(), q, a, database.SourceManual)
		require.NoError(t, err)
	}
}

func TestMatchExactLexical(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical)
	seed(t, eng, map[string]string{
		"What is the capital of France?": "Paris",
		"What is the capital of Spain?":  "Madrid",
	})

	d, err := eng.Match(context.Background(), "what is the capital of france", Options{})
	require.NoError(t, err)
	require.True(t, d.Matched)
	assert.Equal(t, "Paris", d.Record.Answer)
	assert.Equal(t, 1.0, d.Score)
	assert.Equal(t, 1.0, d.Scores[matcher.NameLexical])
}

func TestMatchExactIgnoresPunctuationAndCase(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical)
	seed(t, eng, map[string]string{"What is the capital of France?": "Paris"})

	d, err := eng.Match(context.Background(), "  WHAT is the Capital, of FRANCE??  ", Options{})
	require.NoError(t, err)
	require.True(t, d.Matched)
	assert.Equal(t, "Paris", d.Record.Answer)
	assert.Equal(t, 1.0, d.Score)
}

func TestMatchTypoLexicalOnlyMisses(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical)
	seed(t, eng, map[string]string{"What is the capital of France?": "Paris"})

	d, err := eng.Match(context.Background(), "wat is teh capital of frnce", Options{})
	require.NoError(t, err)
	assert.False(t, d.Matched)
}

func TestMatchTypoFuzzyRecovers(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical, matcher.NameFuzzy)
	seed(t, eng, map[string]string{"What is the capital of France?": "Paris"})

	d, err := eng.Match(context.Background(), "wat is teh capital of frnce", Options{})
	require.NoError(t, err)
	require.True(t, d.Matched)
	assert.Equal(t, "Paris", d.Record.Answer)
	assert.GreaterOrEqual(t, d.Scores[matcher.NameFuzzy], 0.8)
}

func TestMatchEmptyQueryNoMatch(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical, matcher.NameFuzzy)
	seed(t, eng, map[string]string{"What is the capital of France?": "Paris"})

	for _, q := range []string{"", "   ", "?!...,"} {
		d, err := eng.Match(context.Background(), q, Options{})
		require.NoError(t, err)
		assert.False(t, d.Matched, "query %q", q)
	}
}

func TestMatchEmptyCorpusNoMatch(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical, matcher.NameFuzzy)

	d, err := eng.Match(context.Background(), "anything at all", Options{})
	require.NoError(t, err)
	assert.False(t, d.Matched)
}

func TestMatchUnknownStrategy(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical)

	_, err := eng.Match(context.Background(), "hello", Options{Strategies: []string{"psychic"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestMatchSemanticOnlyUnavailable(t *testing.T) {
	// Semantic is the only enabled strategy and the backend is disabled:
	// that is a hard error, not a silent NoMatch.
	eng, _ := newTestEngine(t, matcher.NameSemantic)
	seed(t, eng, map[string]string{"What is the capital of France?": "Paris"})

	_, err := eng.Match(context.Background(), "capital of france", Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoStrategies)
}

func TestMatchSemanticOnlyWithBackend(t *testing.T) {
	// Semantic as the sole strategy with a working backend must resolve
	// matches on similarity alone.
	embedder := stubEmbedder{vectors: map[string][]float32{
		"what is the capital of france":  {1, 0, 0},
		"what is the tallest mountain":   {0, 1, 0},
		"which city is france s capital": {0.9, 0.1, 0},
		"how do magnets work":            {0, 0, 1},
	}}
	index, err := semantic.NewIndex("", embedder.EmbedText)
	require.NoError(t, err)

	store := database.NewMockStore()
	eng := New(store, embedder, index, Config{Strategies: []string{matcher.NameSemantic}})
	seed(t, eng, map[string]string{
		"What is the capital of France?": "Paris",
		"What is the tallest mountain?":  "Everest",
	})

	d, err := eng.Match(context.Background(), "Which city is France's capital?", Options{})
	require.NoError(t, err)
	require.True(t, d.Matched)
	assert.Equal(t, "Paris", d.Record.Answer)
	assert.Greater(t, d.Scores[matcher.NameSemantic], 0.9)

	d, err = eng.Match(context.Background(), "How do magnets work?", Options{})
	require.NoError(t, err)
	assert.False(t, d.Matched, "orthogonal query must stay below the threshold")
}

func TestMatchSemanticDegradesQuietly(t *testing.T) {
	// With lexical enabled alongside semantic, a disabled backend leaves
	// that strategy absent and the query still resolves.
	eng, _ := newTestEngine(t, matcher.NameLexical, matcher.NameSemantic)
	seed(t, eng, map[string]string{"What is the capital of France?": "Paris"})

	d, err := eng.Match(context.Background(), "what is the capital of france", Options{})
	require.NoError(t, err)
	require.True(t, d.Matched)
	_, hasSemantic := d.Scores[matcher.NameSemantic]
	assert.False(t, hasSemantic)
}

func TestMatchThresholdOverride(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical, matcher.NameFuzzy)
	seed(t, eng, map[string]string{"the quick brown fox": "jumps"})

	strict, err := eng.Match(context.Background(), "the quick brown cat", Options{Threshold: 0.99})
	require.NoError(t, err)
	assert.False(t, strict.Matched)

	loose, err := eng.Match(context.Background(), "the quick brown cat", Options{Threshold: 0.5})
	require.NoError(t, err)
	assert.True(t, loose.Matched)
}

func TestMatchOCRCleanup(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical)
	seed(t, eng, map[string]string{"What is the current year?": "2026"})

	d, err := eng.Match(context.Background(), "What is the currrrent year?", Options{OCRCleanup: true})
	require.NoError(t, err)
	require.True(t, d.Matched)
	assert.Equal(t, "2026", d.Record.Answer)
}

func TestMatchNewestWinsOnConflict(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical)

	_, err := eng.Ingest(context.Background(), "Who holds the record?", "Alice", database.SourceManual)
	require.NoError(t, err)
	_, err = eng.Ingest(context.Background(), "Who holds the record?", "Bob", database.SourceManual)
	require.NoError(t, err)

	d, err := eng.Match(context.Background(), "who holds the record", Options{})
	require.NoError(t, err)
	require.True(t, d.Matched)
	assert.Equal(t, "Bob", d.Record.Answer)
}

func TestMatchStoreError(t *testing.T) {
	eng, store := newTestEngine(t, matcher.NameLexical)
	store.FetchErr = errors.New("disk gone")

	_, err := eng.Match(context.Background(), "anything", Options{})
	require.Error(t, err)
}

func TestIngestAssignsIdentity(t *testing.T) {
	eng, store := newTestEngine(t, matcher.NameLexical)

	rec, err := eng.Ingest(context.Background(), "  What IS the tallest mountain? ", "Everest", database.SourceImport)
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "what is the tallest mountain", rec.QuestionNormalized)
	assert.Equal(t, "  What IS the tallest mountain? ", rec.Question)
	assert.Equal(t, database.SourceImport, rec.Source)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.Equal(t, rec.CreatedAt.UTC(), rec.CreatedAt)

	n, err := store.CountRecords()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIngestEmptyQuestion(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical)

	_, err := eng.Ingest(context.Background(), "?!?", "answer", database.SourceManual)
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestIngestInvalidSource(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical)

	_, err := eng.Ingest(context.Background(), "valid question", "answer", "carrier-pigeon")
	assert.ErrorIs(t, err, ErrInvalidSource)
}

func TestIngestStoreFailure(t *testing.T) {
	eng, store := newTestEngine(t, matcher.NameLexical)
	store.InsertErr = errors.New("disk full")

	_, err := eng.Ingest(context.Background(), "valid question", "answer", database.SourceManual)
	require.Error(t, err)
}

func TestReindexDisabled(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical)

	_, err := eng.Reindex(context.Background())
	require.Error(t, err)
}

func TestNormalizePassthrough(t *testing.T) {
	eng, _ := newTestEngine(t, matcher.NameLexical)
	assert.Equal(t, "cafe au lait", eng.Normalize("Café, au LAIT!"))
}
