// Package ingest loads schema documentation into the vector index: it splits
// the schema guide into chunks, embeds each chunk, and upserts the result.
package ingest

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/heechang-soft/hcman-ai/internal/llm"
	"github.com/heechang-soft/hcman-ai/internal/vectorstore"
)

const (
	chunkSize    = 1000
	chunkOverlap = 200
)

// Index is the write side of the vector index used during ingestion.
type Index interface {
	RecreateCollection(ctx context.Context, vectorSize uint64) error
	EnsureCollection(ctx context.Context, vectorSize uint64) error
	Upsert(ctx context.Context, points []vectorstore.SchemaPoint) error
}

// Ingestor fills the schema collection from the schema-guide document and
// from curated question/SQL examples.
type Ingestor struct {
	embedder   llm.Embedder
	index      Index
	vectorSize uint64
}

func NewIngestor(embedder llm.Embedder, index Index, vectorSize uint64) *Ingestor {
	return &Ingestor{embedder: embedder, index: index, vectorSize: vectorSize}
}

// IngestFromFile reads the schema guide, recreates the collection, and
// upserts one point per chunk. Returns the number of chunks ingested.
// Chunks whose embedding fails are skipped, not fatal.
func (i *Ingestor) IngestFromFile(ctx context.Context, path string) (int, error) {
	contentBytes, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema guide %s: %w", path, err)
	}

	chunks := splitText(string(contentBytes), chunkSize, chunkOverlap)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("schema guide %s produced no chunks", path)
	}
	log.Printf("Split %s into %d chunks. Now embedding (this may take a while)...", path, len(chunks))

	if err := i.index.RecreateCollection(ctx, i.vectorSize); err != nil {
		return 0, fmt.Errorf("failed to recreate collection: %w", err)
	}

	var points []vectorstore.SchemaPoint
	for n, chunk := range chunks {
		vector, err := i.embedder.Embed(ctx, chunk)
		if err != nil {
			log.Printf("Failed to embed chunk %d/%d (%.50q...): %v. Skipping.", n+1, len(chunks), chunk, err)
			continue
		}
		points = append(points, vectorstore.SchemaPoint{
			ID:      uuid.NewString(),
			Vector:  vector,
			Content: chunk,
		})
	}

	if len(points) == 0 {
		return 0, fmt.Errorf("all %d chunks failed to embed", len(chunks))
	}

	if err := i.index.Upsert(ctx, points); err != nil {
		return 0, err
	}
	log.Printf("Successfully ingested %d/%d chunks.", len(points), len(chunks))
	return len(points), nil
}

// IngestExample embeds a curated question and upserts it together with its
// SQL so retrieval can surface the pair as a schema hint.
func (i *Ingestor) IngestExample(ctx context.Context, prompt, sqlText string) error {
	if err := i.index.EnsureCollection(ctx, i.vectorSize); err != nil {
		return err
	}

	vector, err := i.embedder.Embed(ctx, prompt)
	if err != nil {
		return fmt.Errorf("failed to embed example prompt: %w", err)
	}

	content := fmt.Sprintf("-- 질문: %s\n%s", prompt, sqlText)
	return i.index.Upsert(ctx, []vectorstore.SchemaPoint{{
		ID:      uuid.NewString(),
		Vector:  vector,
		Content: content,
	}})
}
