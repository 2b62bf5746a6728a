package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heechang-soft/hcman-ai/internal/vectorstore"
)

type fakeEmbedder struct {
	failOn string // substring that makes Embed fail
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, errors.New("embedding rejected")
	}
	return []float32{0.1, 0.2}, nil
}

type fakeWriteIndex struct {
	recreated bool
	ensured   bool
	upserted  []vectorstore.SchemaPoint
}

func (f *fakeWriteIndex) RecreateCollection(ctx context.Context, vectorSize uint64) error {
	f.recreated = true
	return nil
}

func (f *fakeWriteIndex) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	f.ensured = true
	return nil
}

func (f *fakeWriteIndex) Upsert(ctx context.Context, points []vectorstore.SchemaPoint) error {
	f.upserted = append(f.upserted, points...)
	return nil
}

func writeTempGuide(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema_guide.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp guide: %v", err)
	}
	return path
}

func TestIngestFromFile(t *testing.T) {
	guide := "Pkfl 테이블: 발주 정보\n\nsffl 테이블: 품목 정보"
	path := writeTempGuide(t, guide)

	index := &fakeWriteIndex{}
	ingestor := NewIngestor(&fakeEmbedder{}, index, 768)

	count, err := ingestor.IngestFromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFromFile returned error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 chunk for a short guide, got %d", count)
	}
	if !index.recreated {
		t.Error("expected the collection to be recreated before ingestion")
	}
	if len(index.upserted) != count {
		t.Errorf("expected %d upserted points, got %d", count, len(index.upserted))
	}
	for _, p := range index.upserted {
		if p.ID == "" || p.Content == "" || len(p.Vector) == 0 {
			t.Errorf("incomplete point: %+v", p)
		}
	}
}

func TestIngestFromFileSkipsFailedChunks(t *testing.T) {
	// force multiple chunks by exceeding the chunk size with two long paragraphs
	bad := "BAD" + strings.Repeat("가", 900)
	good := strings.Repeat("나", 900)
	path := writeTempGuide(t, bad+"\n\n"+good)

	index := &fakeWriteIndex{}
	ingestor := NewIngestor(&fakeEmbedder{failOn: "BAD"}, index, 768)

	count, err := ingestor.IngestFromFile(context.Background(), path)
	if err != nil {
		t.Fatalf("IngestFromFile returned error: %v", err)
	}
	if count == 0 {
		t.Fatal("expected surviving chunks")
	}
	for _, p := range index.upserted {
		if strings.Contains(p.Content, "BAD") {
			t.Errorf("failed chunk was upserted anyway: %.30q", p.Content)
		}
	}
}

func TestIngestFromFileMissingFile(t *testing.T) {
	ingestor := NewIngestor(&fakeEmbedder{}, &fakeWriteIndex{}, 768)
	if _, err := ingestor.IngestFromFile(context.Background(), "does-not-exist.txt"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestIngestExample(t *testing.T) {
	index := &fakeWriteIndex{}
	ingestor := NewIngestor(&fakeEmbedder{}, index, 768)

	err := ingestor.IngestExample(context.Background(), "8월 발주 건수는?", "SELECT COUNT(*) FROM heechang.heechang.Pkfl")
	if err != nil {
		t.Fatalf("IngestExample returned error: %v", err)
	}
	if !index.ensured {
		t.Error("expected the collection to be ensured, not recreated")
	}
	if index.recreated {
		t.Error("example ingestion must not drop the collection")
	}
	if len(index.upserted) != 1 {
		t.Fatalf("expected 1 point, got %d", len(index.upserted))
	}
	content := index.upserted[0].Content
	if !strings.Contains(content, "-- 질문: 8월 발주 건수는?") || !strings.Contains(content, "SELECT COUNT(*)") {
		t.Errorf("unexpected example content: %q", content)
	}
}
