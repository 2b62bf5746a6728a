package ingest

import (
	"strings"
	"testing"
)

func TestSplitTextShortDocumentIsOneChunk(t *testing.T) {
	chunks := splitText("짧은 스키마 설명입니다.", 1000, 200)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "짧은 스키마 설명입니다." {
		t.Errorf("unexpected chunk content: %q", chunks[0])
	}
}

func TestSplitTextEmptyDocument(t *testing.T) {
	if chunks := splitText("   \n\n  ", 1000, 200); chunks != nil {
		t.Errorf("expected nil for blank input, got %v", chunks)
	}
}

func TestSplitTextPrefersParagraphBoundaries(t *testing.T) {
	para1 := strings.Repeat("가", 60)
	para2 := strings.Repeat("나", 60)
	text := para1 + "\n\n" + para2

	chunks := splitText(text, 80, 10)
	if len(chunks) < 2 {
		t.Fatalf("expected the paragraphs split into separate chunks, got %d", len(chunks))
	}
	if !strings.Contains(chunks[0], para1) {
		t.Errorf("first chunk should contain the first paragraph")
	}
}

func TestSplitTextRespectsChunkSize(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 50; i++ {
		sb.WriteString("Pkfl 테이블은 발주 정보를 담고 있습니다. Pk_date는 발주일입니다.\n\n")
	}

	const size, overlap = 200, 50
	chunks := splitText(sb.String(), size, overlap)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > size {
			t.Errorf("chunk %d has %d runes, exceeds size %d", i, n, size)
		}
	}
}

func TestSplitTextCarriesOverlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString(strings.Repeat("다", 40))
		sb.WriteString("\n\n")
	}

	const size, overlap = 100, 30
	chunks := splitText(sb.String(), size, overlap)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	tail := tailRunes(chunks[0], overlap)
	if !strings.Contains(chunks[1], tail) {
		t.Errorf("second chunk does not carry the tail of the first:\nfirst tail: %q\nsecond: %q", tail, chunks[1])
	}
}

func TestSplitTextHardSplitsOversizedLine(t *testing.T) {
	line := strings.Repeat("라", 500)

	const size, overlap = 100, 20
	// needs a second paragraph so the document is over the chunk size path
	chunks := splitText(line+"\n\n끝", size, overlap)
	if len(chunks) < 5 {
		t.Fatalf("expected the long line cut into several chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > size {
			t.Errorf("chunk %d has %d runes, exceeds size %d", i, n, size)
		}
	}
}

func TestHardSplitCoversWholeInput(t *testing.T) {
	text := strings.Repeat("마", 250)
	parts := hardSplit(text, 100, 20)

	var total int
	for _, part := range parts {
		total += len([]rune(part))
	}
	// with overlap the sum exceeds the input, but the last part must end
	// exactly where the input ends
	last := parts[len(parts)-1]
	if !strings.HasSuffix(text, last) {
		t.Errorf("last part is not a suffix of the input")
	}
	if total < 250 {
		t.Errorf("parts cover only %d of 250 runes", total)
	}
}
