package core

import (
	"context"
	"fmt"
	"log"

	"github.com/heechang-soft/hcman-ai/internal/llm"
)

// Upper bound for the full-corpus fallback scroll. The schema guide is a few
// dozen chunks; this only guards against a runaway collection.
const fullCorpusLimit = 256

// SchemaIndex is the read side of the vector index as the retrieval pipeline
// sees it.
type SchemaIndex interface {
	Count(ctx context.Context) (uint64, error)
	Query(ctx context.Context, vector []float32, limit uint64) ([]string, error)
	FetchAll(ctx context.Context, limit uint32) ([]string, error)
}

// SchemaRetriever finds the schema-documentation chunks most relevant to a
// question. It is stateless: no caching, no re-ranking beyond the index order.
type SchemaRetriever struct {
	embedder llm.Embedder
	index    SchemaIndex
}

func NewSchemaRetriever(embedder llm.Embedder, index SchemaIndex) *SchemaRetriever {
	return &SchemaRetriever{embedder: embedder, index: index}
}

// Search returns schema hints for the question, most relevant first. Index
// failures never escape: a failed or empty similarity search falls back to
// the first topK chunks of the full corpus, and if that fails too the result
// is an empty slice. Only an embedding failure is returned as an error.
//
// The similarity search asks for min(2*topK, max(collectionSize, topK))
// neighbors and passes every hit through rather than truncating to topK,
// giving the model extra context margin.
func (r *SchemaRetriever) Search(ctx context.Context, question string, topK int) ([]string, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	hits, err := r.queryNeighbors(ctx, vector, topK)
	if err == nil && len(hits) > 0 {
		log.Printf("Retrieved %d schema hints for question", len(hits))
		return hits, nil
	}
	if err != nil {
		log.Printf("Schema similarity search failed, falling back to full corpus: %v", err)
	} else {
		log.Printf("Schema similarity search returned no hits, falling back to full corpus")
	}

	all, err := r.index.FetchAll(ctx, fullCorpusLimit)
	if err != nil {
		log.Printf("Full-corpus fallback failed, proceeding without schema hints: %v", err)
		return []string{}, nil
	}
	if len(all) > topK {
		all = all[:topK]
	}
	log.Printf("Using %d schema hints from full-corpus fallback", len(all))
	return all, nil
}

func (r *SchemaRetriever) queryNeighbors(ctx context.Context, vector []float32, topK int) ([]string, error) {
	collectionSize, err := r.index.Count(ctx)
	if err != nil {
		return nil, err
	}

	searchK := max(collectionSize, uint64(topK))
	if limit := uint64(2 * topK); limit < searchK {
		searchK = limit
	}

	return r.index.Query(ctx, vector, searchK)
}
