package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/heechang-soft/hcman-ai/internal/llm"
)

// Sentinel passed to the model when retrieval produced no schema hints.
const noSchemaHintsMessage = "스키마 정보를 찾을 수 없습니다."

// SqlGenerator turns a question plus retrieved schema hints into a single SQL
// statement. Correctness is delegated to the prompt rules and the downstream
// executor; no syntactic or semantic validation happens here, and there is no
// retry on a bad answer.
type SqlGenerator struct {
	llm llm.Completer
}

func NewSqlGenerator(completer llm.Completer) *SqlGenerator {
	return &SqlGenerator{llm: completer}
}

// Generate issues one completion round trip and strips markdown fencing from
// the raw output.
func (g *SqlGenerator) Generate(ctx context.Context, question string, schemaHints []string) (string, error) {
	hints := noSchemaHintsMessage
	if len(schemaHints) > 0 {
		hints = strings.Join(schemaHints, "\n\n")
	}

	raw, err := g.llm.Complete(ctx, sqlPrompt(question, hints))
	if err != nil {
		return "", fmt.Errorf("sql generation request failed: %w", err)
	}

	return stripCodeFence(raw), nil
}
