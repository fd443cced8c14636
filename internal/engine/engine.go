// file: internal/engine/engine.go
// version: 1.3.0
// guid: 3c4d5e6f-7a8b-9c0d-1e2f-3a4b5c6d7e8f

package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/answerbox/answerbox/internal/ai"
	"github.com/answerbox/answerbox/internal/cache"
	"github.com/answerbox/answerbox/internal/database"
	"github.com/answerbox/answerbox/internal/matcher"
	"github.com/answerbox/answerbox/internal/metrics"
	"github.com/answerbox/answerbox/internal/normalizer"
	"github.com/answerbox/answerbox/internal/resolver"
	"github.com/answerbox/answerbox/internal/semantic"
)

// embedTimeout bounds each call to the embedding backend so a slow backend
// fails one query instead of stalling the pipeline.
const embedTimeout = 10 * time.Second

// queryEmbedCacheTTL keeps query embeddings around briefly; identical
// questions arrive in bursts when a quiz round is running.
const queryEmbedCacheTTL = 5 * time.Minute

// reindexBatchSize is the number of questions embedded per backend request
// during a rebuild.
const reindexBatchSize = 100

// Config carries the engine's default tunables, usually taken from
// config.AppConfig. Per-request Options can override the threshold and the
// strategy set.
type Config struct {
	Threshold           float64
	FuzzyMinLengthRatio float64
	SemanticThreshold   float64
	SemanticBoost       float64
	SemanticTopK        int
	Strategies          []string
}

// Options tunes a single Match call. Zero values fall back to the engine
// defaults.
type Options struct {
	// Strategies to run; empty means the configured default set.
	Strategies []string
	// Threshold overrides τ when > 0.
	Threshold float64
	// OCRCleanup applies the OCR artifact pass during normalization.
	OCRCleanup bool
}

// Embedder produces question embeddings for the semantic strategy.
// *ai.Embedder is the production implementation.
type Embedder interface {
	IsEnabled() bool
	EmbedText(ctx context.Context, text string) ([]float32, error)
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Engine is the matching core: it normalizes queries, scores them against a
// corpus snapshot under the enabled strategies, and fuses the scores into a
// Decision. The engine is stateless across queries apart from the embedding
// index it maintains at ingest time; Match may run from any number of
// goroutines.
type Engine struct {
	store    database.Store
	embedder Embedder
	index    *semantic.Index

	pairwise   map[string]matcher.Scorer
	embedCache *cache.Cache[[]float32]
	cfg        Config
}

// New creates an engine. The embedder and index may be nil or disabled; the
// semantic strategy then degrades to absent.
func New(store database.Store, embedder Embedder, index *semantic.Index, cfg Config) *Engine {
	if cfg.Threshold <= 0 {
		cfg.Threshold = resolver.DefaultThreshold
	}
	if cfg.SemanticThreshold <= 0 {
		cfg.SemanticThreshold = resolver.DefaultSemanticThreshold
	}
	if cfg.SemanticBoost <= 0 {
		cfg.SemanticBoost = resolver.DefaultSemanticBoost
	}
	if cfg.SemanticTopK <= 0 {
		cfg.SemanticTopK = resolver.DefaultSemanticTopK
	}
	if len(cfg.Strategies) == 0 {
		cfg.Strategies = []string{matcher.NameLexical, matcher.NameFuzzy, matcher.NameSemantic}
	}
	if embedder == nil {
		embedder = ai.NewEmbedder("", "", false)
	}

	return &Engine{
		store:    store,
		embedder: embedder,
		index:    index,
		pairwise: map[string]matcher.Scorer{
			matcher.NameLexical: matcher.Lexical{},
			matcher.NameFuzzy:   matcher.NewFuzzy(cfg.FuzzyMinLengthRatio),
		},
		embedCache: cache.New[[]float32](queryEmbedCacheTTL),
		cfg:        cfg,
	}
}

// Normalize exposes the canonical question form used by the engine.
func (e *Engine) Normalize(text string) string {
	return normalizer.Normalize(text)
}

// Match scores the query against a snapshot of the corpus and returns the
// best decision. An unmatchable (empty after normalization) query yields
// NoMatch without touching the store.
func (e *Engine) Match(ctx context.Context, query string, opts Options) (resolver.Decision, error) {
	start := time.Now()
	decision, err := e.match(ctx, query, opts)

	outcome := "no_match"
	switch {
	case err != nil:
		outcome = "error"
	case decision.Matched:
		outcome = "matched"
		metrics.IncMatch(winningStrategy(decision))
	}
	metrics.IncQuery(outcome)
	metrics.ObserveQueryDuration(outcome, time.Since(start))

	return decision, err
}

func (e *Engine) match(ctx context.Context, query string, opts Options) (resolver.Decision, error) {
	lexEnabled, fuzzyEnabled, semEnabled, err := strategyFlags(e.strategies(opts))
	if err != nil {
		return resolver.NoMatch(), err
	}
	if !lexEnabled && !fuzzyEnabled && !semEnabled {
		return resolver.NoMatch(), ErrNoStrategies
	}

	var norm string
	if opts.OCRCleanup {
		norm = normalizer.NormalizeOCR(query)
	} else {
		norm = normalizer.Normalize(query)
	}
	if norm == "" {
		return resolver.NoMatch(), nil
	}

	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = e.cfg.Threshold
	}

	// Exact fast path: an exact lexical hit wins outright, so skip scoring
	// the rest of the corpus.
	if lexEnabled {
		exact, err := e.store.FindByNormalizedQuestion(norm)
		if err != nil {
			return resolver.NoMatch(), fmt.Errorf("fetching exact matches: %w", err)
		}
		if len(exact) > 0 {
			rec := exact[0] // newest first
			return resolver.Decision{
				Matched: true,
				Record:  &rec,
				Score:   1.0,
				Scores:  map[string]float64{matcher.NameLexical: 1.0},
			}, nil
		}
	}

	// One snapshot fetch per query; records inserted after this point are
	// not visible to this query.
	records, err := e.store.GetAllRecords()
	if err != nil {
		return resolver.NoMatch(), fmt.Errorf("fetching corpus snapshot: %w", err)
	}
	if len(records) == 0 {
		return resolver.NoMatch(), nil
	}

	semScores, semAvailable := map[string]float64{}, false
	if semEnabled {
		semScores, semAvailable = e.semanticScores(ctx, norm)
	}

	// A degraded semantic backend must not fail the query while another
	// strategy can still answer; with nothing else enabled it is a hard
	// failure, not a silent NoMatch.
	if !lexEnabled && !fuzzyEnabled && !semAvailable {
		return resolver.NoMatch(), fmt.Errorf("%w: semantic backend unavailable", ErrNoStrategies)
	}

	var scorers []matcher.Scorer
	if lexEnabled {
		scorers = append(scorers, e.pairwise[matcher.NameLexical])
	}
	if fuzzyEnabled {
		scorers = append(scorers, e.pairwise[matcher.NameFuzzy])
	}

	candidates := make([]resolver.Candidate, 0, len(records))
	for _, rec := range records {
		scores := make(map[string]float64, 3)
		for _, scorer := range scorers {
			scores[scorer.Name()] = scorer.Score(norm, rec.QuestionNormalized)
		}
		if s, ok := semScores[rec.ID]; ok {
			scores[matcher.NameSemantic] = s
		}
		candidates = append(candidates, resolver.Candidate{Record: rec, Scores: scores})
	}

	policy := resolver.Policy{
		Threshold:         threshold,
		SemanticThreshold: e.cfg.SemanticThreshold,
		SemanticBoost:     e.cfg.SemanticBoost,
	}
	return resolver.Resolve(candidates, policy), nil
}

// Ingest normalizes a question, assigns identity and provenance, persists
// the record, and best-effort indexes its embedding. The returned record
// carries its assigned ID and timestamp.
func (e *Engine) Ingest(ctx context.Context, question, answer, source string) (*database.Record, error) {
	switch source {
	case database.SourceManual, database.SourceOCR, database.SourceImport:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}

	norm := normalizer.Normalize(question)
	if norm == "" {
		return nil, ErrEmptyQuestion
	}

	record := &database.Record{
		Question:           question,
		QuestionNormalized: norm,
		Answer:             answer,
		Source:             source,
		CreatedAt:          time.Now().UTC(),
	}
	if err := e.store.InsertRecord(record); err != nil {
		return nil, fmt.Errorf("persisting record: %w", err)
	}
	metrics.IncIngested(source)
	if n, err := e.store.CountRecords(); err == nil {
		metrics.SetCorpusSize(n)
	}

	// The embedding is a derived attribute: failure to compute or index it
	// degrades the semantic strategy for this record but never fails the
	// ingest.
	if e.embedder.IsEnabled() && e.index != nil {
		embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
		defer cancel()

		vec, err := e.embedder.EmbedText(embedCtx, norm)
		if err != nil {
			log.Printf("[WARN] engine: embedding skipped for record %s: %v", record.ID, err)
			metrics.IncEmbeddingFailure()
			return record, nil
		}
		if err := e.index.Add(ctx, record.ID, norm, vec); err != nil {
			log.Printf("[WARN] engine: indexing skipped for record %s: %v", record.ID, err)
			return record, nil
		}
		metrics.SetEmbeddedRecords(e.index.Count())
	}

	return record, nil
}

// Reindex rebuilds the embedding index from the record store. Returns the
// number of records indexed.
func (e *Engine) Reindex(ctx context.Context) (int, error) {
	if !e.embedder.IsEnabled() || e.index == nil {
		return 0, ai.ErrDisabled
	}

	records, err := e.store.GetAllRecords()
	if err != nil {
		return 0, fmt.Errorf("fetching corpus snapshot: %w", err)
	}
	if err := e.index.Clear(); err != nil {
		return 0, err
	}

	indexed := 0
	for start := 0; start < len(records); start += reindexBatchSize {
		end := start + reindexBatchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, r := range batch {
			texts[i] = r.QuestionNormalized
		}

		embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
		vectors, err := e.embedder.EmbedTexts(embedCtx, texts)
		cancel()
		if err != nil {
			return indexed, fmt.Errorf("embedding batch at offset %d: %w", start, err)
		}

		for i, r := range batch {
			if err := e.index.Add(ctx, r.ID, r.QuestionNormalized, vectors[i]); err != nil {
				return indexed, fmt.Errorf("indexing record %s: %w", r.ID, err)
			}
			indexed++
		}
	}

	metrics.SetEmbeddedRecords(e.index.Count())
	return indexed, nil
}

// semanticScores embeds the query and ranks the index. Any failure degrades
// the strategy to absent: the bool result reports availability.
func (e *Engine) semanticScores(ctx context.Context, norm string) (map[string]float64, bool) {
	if !e.embedder.IsEnabled() || e.index == nil {
		return nil, false
	}

	vec, ok := e.embedCache.Get(norm)
	if !ok {
		// A miss means a new unique query; drop expired vectors so the
		// cache stays bounded by the recent query set.
		e.embedCache.Purge()

		embedCtx, cancel := context.WithTimeout(ctx, embedTimeout)
		defer cancel()

		var err error
		vec, err = e.embedder.EmbedText(embedCtx, norm)
		if err != nil {
			log.Printf("[WARN] engine: semantic strategy degraded: %v", err)
			metrics.IncEmbeddingFailure()
			return nil, false
		}
		e.embedCache.Set(norm, vec)
	}

	hits, err := e.index.Query(ctx, vec, e.cfg.SemanticTopK)
	if err != nil {
		log.Printf("[WARN] engine: semantic strategy degraded: %v", err)
		return nil, false
	}

	scores := make(map[string]float64, len(hits))
	for _, h := range hits {
		if h.Similarity > 0 {
			scores[h.RecordID] = h.Similarity
		}
	}
	return scores, true
}

func (e *Engine) strategies(opts Options) []string {
	if len(opts.Strategies) > 0 {
		return opts.Strategies
	}
	return e.cfg.Strategies
}

func strategyFlags(names []string) (lexical, fuzzy, semantic bool, err error) {
	for _, name := range names {
		switch name {
		case matcher.NameLexical:
			lexical = true
		case matcher.NameFuzzy:
			fuzzy = true
		case matcher.NameSemantic:
			semantic = true
		default:
			return false, false, false, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
		}
	}
	return lexical, fuzzy, semantic, nil
}

// winningStrategy names the strategy that produced the fused score, for
// metrics labeling.
func winningStrategy(d resolver.Decision) string {
	best, bestScore := "", -1.0
	for name, score := range d.Scores {
		if score > bestScore || (score == bestScore && name < best) {
			best, bestScore = name, score
		}
	}
	if best == "" {
		return "unknown"
	}
	return best
}
