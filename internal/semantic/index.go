// file: internal/semantic/index.go
// version: 1.0.0
// guid: 5c6d7e8f-9a0b-1c2d-3e4f-5a6b7c8d9e0f

package semantic

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "questions"

// Hit is one semantic ranking result.
type Hit struct {
	RecordID   string
	Similarity float64
}

// Index holds precomputed question embeddings keyed by record ID and ranks
// them by cosine similarity against a query embedding.
//
// The index is a derived cache: it is rebuilt from the record store by the
// reindex command, so losing it never loses corpus data.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
	embed      chromem.EmbeddingFunc
}

// NewIndex opens an index. With an empty path the index is purely in-memory;
// otherwise embeddings persist under the given directory. The embedding
// function is only invoked for documents added without an explicit vector.
func NewIndex(path string, embed chromem.EmbeddingFunc) (*Index, error) {
	var db *chromem.DB
	var err error
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("failed to open embedding index: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding collection: %w", err)
	}

	return &Index{db: db, collection: collection, embed: embed}, nil
}

// Add stores the embedding for one record.
func (ix *Index) Add(ctx context.Context, recordID, normalizedQuestion string, embedding []float32) error {
	return ix.collection.AddDocument(ctx, chromem.Document{
		ID:        recordID,
		Content:   normalizedQuestion,
		Embedding: embedding,
	})
}

// Query ranks up to topK indexed records by cosine similarity against the
// query embedding, best first.
func (ix *Index) Query(ctx context.Context, embedding []float32, topK int) ([]Hit, error) {
	count := ix.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := ix.collection.QueryEmbedding(ctx, embedding, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("embedding query failed: %w", err)
	}

	hits := make([]Hit, len(results))
	for i, r := range results {
		hits[i] = Hit{RecordID: r.ID, Similarity: float64(r.Similarity)}
	}
	return hits, nil
}

// Count returns the number of indexed records.
func (ix *Index) Count() int {
	return ix.collection.Count()
}

// Clear drops every indexed embedding. Used before a full rebuild.
func (ix *Index) Clear() error {
	if err := ix.db.DeleteCollection(collectionName); err != nil {
		return fmt.Errorf("failed to drop embedding collection: %w", err)
	}
	collection, err := ix.db.GetOrCreateCollection(collectionName, nil, ix.embed)
	if err != nil {
		return fmt.Errorf("failed to recreate embedding collection: %w", err)
	}
	ix.collection = collection
	return nil
}
