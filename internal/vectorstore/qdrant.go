// Package vectorstore provides the Qdrant-backed index of schema
// documentation chunks. The index is owned externally: chunks are written
// once at ingestion time and only read afterwards.
package vectorstore

import (
	"context"
	"fmt"
	"log"

	"github.com/qdrant/go-client/qdrant"
)

const payloadContentKey = "content"

// SchemaPoint is one documentation chunk with its embedding, ready to be
// written to the index.
type SchemaPoint struct {
	ID      string
	Vector  []float32
	Content string
}

// SchemaIndex wraps a Qdrant collection of schema-documentation chunks.
type SchemaIndex struct {
	client     *qdrant.Client
	collection string
}

func New(host string, port int, collection string) (*SchemaIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}
	return &SchemaIndex{client: client, collection: collection}, nil
}

func (s *SchemaIndex) Close() error {
	return s.client.Close()
}

// Count returns the number of chunks currently in the collection.
func (s *SchemaIndex) Count(ctx context.Context) (uint64, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points in %q: %w", s.collection, err)
	}
	return count, nil
}

// Query returns the text of the nearest chunks to the given vector, most
// similar first.
func (s *SchemaIndex) Query(ctx context.Context, vector []float32, limit uint64) ([]string, error) {
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		WithPayload:    qdrant.NewWithPayload(true),
		Limit:          &limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", s.collection, err)
	}

	var docs []string
	for _, point := range points {
		if content := point.GetPayload()[payloadContentKey].GetStringValue(); content != "" {
			docs = append(docs, content)
		}
	}
	return docs, nil
}

// FetchAll scrolls the collection and returns up to limit chunk texts in
// storage order.
func (s *SchemaIndex) FetchAll(ctx context.Context, limit uint32) ([]string, error) {
	points, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scroll %q: %w", s.collection, err)
	}

	var docs []string
	for _, point := range points {
		if content := point.GetPayload()[payloadContentKey].GetStringValue(); content != "" {
			docs = append(docs, content)
		}
	}
	return docs, nil
}

// EnsureCollection creates the collection if it does not exist yet.
func (s *SchemaIndex) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %q: %w", s.collection, err)
	}
	if exists {
		return nil
	}
	return s.createCollection(ctx, vectorSize)
}

// RecreateCollection drops and recreates the collection. Used by ingestion so
// a re-run replaces the corpus instead of appending to it.
func (s *SchemaIndex) RecreateCollection(ctx context.Context, vectorSize uint64) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %q: %w", s.collection, err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("failed to delete collection %q: %w", s.collection, err)
		}
		log.Printf("Deleted existing collection %q for re-ingestion", s.collection)
	}
	return s.createCollection(ctx, vectorSize)
}

func (s *SchemaIndex) createCollection(ctx context.Context, vectorSize uint64) error {
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %q: %w", s.collection, err)
	}
	log.Printf("Created collection %q (size=%d, distance=cosine)", s.collection, vectorSize)
	return nil
}

// Upsert writes the given chunks, waiting until they are persisted.
func (s *SchemaIndex) Upsert(ctx context.Context, points []SchemaPoint) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		qdrantPoints = append(qdrantPoints, &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: qdrant.NewValueMap(map[string]any{
				payloadContentKey: p.Content,
			}),
		})
	}

	wait := true
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         qdrantPoints,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points into %q: %w", len(points), s.collection, err)
	}
	return nil
}
