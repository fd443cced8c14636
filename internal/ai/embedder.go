// file: internal/ai/embedder.go
// version: 1.1.0
// guid: 9a0b1c2d-3e4f-5a6b-7c8d-9e0f1a2b3c4d

package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrDisabled is returned when the embedding backend is not configured.
// Callers treat it as "strategy absent", never as a query failure.
var ErrDisabled = errors.New("embedding backend is not enabled")

// DefaultEmbeddingModel balances quality and cost for short question text.
const DefaultEmbeddingModel = "text-embedding-3-small"

// Embedder computes question embeddings through the OpenAI embeddings API.
// A disabled embedder is a valid value: every method reports ErrDisabled and
// the semantic strategy degrades to absent.
type Embedder struct {
	client  *openai.Client
	model   string
	enabled bool
}

// NewEmbedder creates an embedder. With enabled=false or an empty API key it
// returns a disabled instance.
func NewEmbedder(apiKey, model string, enabled bool) *Embedder {
	if !enabled || apiKey == "" {
		return &Embedder{enabled: false}
	}
	if model == "" {
		model = DefaultEmbeddingModel
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &Embedder{
		client:  &client,
		model:   model,
		enabled: true,
	}
}

// IsEnabled returns whether the embedding backend is configured.
func (e *Embedder) IsEnabled() bool {
	return e.enabled
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if !e.enabled {
		return nil, ErrDisabled
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(text),
		},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding API call failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding API returned no data")
	}

	return toFloat32(resp.Data[0].Embedding), nil
}

// EmbedTexts generates embeddings for multiple texts in a single request.
// Used by reindexing; result order matches input order.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if !e.enabled {
		return nil, ErrDisabled
	}
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("embedding API call failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding API returned %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = toFloat32(d.Embedding)
	}
	return vectors, nil
}

// TestConnection verifies the backend is reachable.
func (e *Embedder) TestConnection(ctx context.Context) error {
	if !e.enabled {
		return ErrDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := e.EmbedText(ctx, "connection test")
	return err
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}
