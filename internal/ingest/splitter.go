package ingest

import "strings"

// splitText breaks a document into chunks of roughly chunkSize runes with
// chunkOverlap runes carried over between adjacent chunks. Paragraph breaks
// are preferred split points, then line breaks; only an oversized single line
// is cut mid-text.
func splitText(text string, chunkSize, chunkOverlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len([]rune(text)) <= chunkSize {
		return []string{text}
	}

	var pieces []string
	for _, paragraph := range strings.Split(text, "\n\n") {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if len([]rune(paragraph)) <= chunkSize {
			pieces = append(pieces, paragraph)
			continue
		}
		for _, line := range strings.Split(paragraph, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if len([]rune(line)) <= chunkSize {
				pieces = append(pieces, line)
				continue
			}
			pieces = append(pieces, hardSplit(line, chunkSize, chunkOverlap)...)
		}
	}

	return packPieces(pieces, chunkSize, chunkOverlap)
}

// packPieces greedily merges pieces into chunks up to chunkSize, seeding each
// new chunk with the tail of the previous one for context continuity.
func packPieces(pieces []string, chunkSize, chunkOverlap int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk == "" {
			return
		}
		chunks = append(chunks, chunk)
		current.Reset()
		if chunkOverlap > 0 {
			current.WriteString(tailRunes(chunk, chunkOverlap))
			current.WriteString("\n")
		}
	}

	for _, piece := range pieces {
		pieceLen := len([]rune(piece))
		if current.Len() > 0 && len([]rune(current.String()))+pieceLen+1 > chunkSize {
			flush()
			// drop the overlap seed when it would push the next chunk over
			if len([]rune(current.String()))+pieceLen+1 > chunkSize {
				current.Reset()
			}
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(piece)
	}
	if chunk := strings.TrimSpace(current.String()); chunk != "" {
		// skip a trailing chunk that is nothing but carried-over overlap
		if len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], chunk) {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

func hardSplit(text string, chunkSize, chunkOverlap int) []string {
	runes := []rune(text)
	step := chunkSize - chunkOverlap
	if step <= 0 {
		step = chunkSize
	}

	var parts []string
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return parts
}

func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
