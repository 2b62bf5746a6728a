package core

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/heechang-soft/hcman-ai/internal/llm"
)

// ActionType is the three-way intent that routes a question to the correct
// downstream handler.
type ActionType string

const (
	ActionSQL         ActionType = "SQL"
	ActionReport      ActionType = "REPORT"
	ActionGeneralChat ActionType = "GENERAL_CHAT"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionSQL, ActionReport, ActionGeneralChat:
		return true
	}
	return false
}

// Classification is the parsed result of one classifier call. ChatAnswer is
// meaningful only for GENERAL_CHAT, Query only for SQL and REPORT.
type Classification struct {
	ActionType ActionType `json:"action_type"`
	ChatAnswer string     `json:"chat_answer,omitempty"`
	Query      string     `json:"query,omitempty"`
}

// Returned when the classifier output cannot be parsed as JSON.
const classifyFallbackAnswer = "죄송합니다. 질문을 이해하는데 문제가 발생했습니다. 다시 질문해주세요."

// Keyword vocabulary used when the YES/NO schema-relevance answer is
// ambiguous. Domain nouns plus the raw table/column names users paste in.
var schemaKeywords = []string{
	"발주", "입고", "품목", "거래처", "건수", "조회", "데이터",
	"pkfl", "pk_date", "pk_pdat", "pk_ldat",
}

// QueryClassifier decides what kind of answer a question needs.
type QueryClassifier struct {
	llm llm.Completer
}

func NewQueryClassifier(completer llm.Completer) *QueryClassifier {
	return &QueryClassifier{llm: completer}
}

// Classify asks the model to categorize the question. Malformed JSON from the
// model degrades to a fixed GENERAL_CHAT apology instead of an error; an
// unknown action_type in otherwise valid JSON is a validation error.
func (c *QueryClassifier) Classify(ctx context.Context, question string) (Classification, error) {
	raw, err := c.llm.Complete(ctx, classifyPrompt(question))
	if err != nil {
		return Classification{}, fmt.Errorf("classification request failed: %w", err)
	}

	content := stripCodeFence(raw)

	var result Classification
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		log.Printf("Classifier output was not valid JSON, falling back to chat: %v", err)
		return Classification{
			ActionType: ActionGeneralChat,
			ChatAnswer: classifyFallbackAnswer,
		}, nil
	}

	if !result.ActionType.Valid() {
		return Classification{}, fmt.Errorf("invalid action_type %q in classifier response", result.ActionType)
	}
	return result, nil
}

// IsSchemaRelated reports whether the question concerns the database schema.
// If the model answers with neither "YES" nor "NO", a keyword check against
// the fixed vocabulary decides instead.
func (c *QueryClassifier) IsSchemaRelated(ctx context.Context, question string) (bool, error) {
	raw, err := c.llm.Complete(ctx, schemaRelatedPrompt(question))
	if err != nil {
		return false, fmt.Errorf("schema-relevance request failed: %w", err)
	}

	answer := strings.ToUpper(raw)
	switch {
	case strings.Contains(answer, "YES"):
		return true, nil
	case strings.Contains(answer, "NO"):
		return false, nil
	}

	log.Printf("Schema-relevance answer was ambiguous (%q), using keyword heuristic", strings.TrimSpace(raw))
	lower := strings.ToLower(question)
	for _, keyword := range schemaKeywords {
		if strings.Contains(lower, keyword) {
			return true, nil
		}
	}
	return false, nil
}

// Chat answers a general question directly.
func (c *QueryClassifier) Chat(ctx context.Context, question string) (string, error) {
	answer, err := c.llm.Complete(ctx, chatPrompt(question))
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}
