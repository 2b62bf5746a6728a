package core

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ErrGeneralQuestion marks a question that is not about the database schema;
// the SQL endpoints reject it so callers can redirect to the chat endpoint.
var ErrGeneralQuestion = errors.New("question is not related to the database schema")

// Guidance returned when an SQL or REPORT request arrives without result
// data: the caller must execute the SQL first and resubmit with the rows.
const (
	sqlGuidance = "SQL을 생성했습니다. 먼저 아래 SQL을 실행하여 얻은 결과를 JSON 형태로 " +
		"'data' 필드에 담아 다시 요청해주시면 요약을 제공할 수 있습니다."
	reportGuidance = "보고서를 생성하려면 아래 SQL을 먼저 실행하여 결과를 JSON으로 만든 뒤 " +
		"'data' 필드에 담아 다시 요청해주세요."
)

// QueryLog records handled questions for the admin history view.
// Implementations must not fail the request path; errors are logged and
// dropped here.
type QueryLog interface {
	RecordQuery(question string, actionType string, generatedSQL string) error
}

// QueryOutcome is the result of the combined question endpoint.
type QueryOutcome struct {
	QuestionType string // "schema" or "general"
	SQL          string
	Answer       string
}

// ClassifyOutcome is the result of the classification endpoint: the intent
// plus whatever the intent-specific pipeline produced.
type ClassifyOutcome struct {
	ActionType ActionType
	ChatAnswer string
	Query      string
	SQL        string
	ReportHTML string
}

// Orchestrator sequences the pipeline components per endpoint. All state is
// request-scoped; the long-lived clients behind the components are read-only
// after construction and safe for concurrent use.
type Orchestrator struct {
	retriever  *SchemaRetriever
	classifier *QueryClassifier
	generator  *SqlGenerator
	reports    *ReportBuilder
	history    QueryLog // optional, may be nil
	topK       int
}

func NewOrchestrator(retriever *SchemaRetriever, classifier *QueryClassifier, generator *SqlGenerator, reports *ReportBuilder, history QueryLog, topK int) *Orchestrator {
	return &Orchestrator{
		retriever:  retriever,
		classifier: classifier,
		generator:  generator,
		reports:    reports,
		history:    history,
		topK:       topK,
	}
}

// GenerateSQL runs the schema-relevance gate and then the retrieval + SQL
// pipeline. General questions are rejected with ErrGeneralQuestion.
func (o *Orchestrator) GenerateSQL(ctx context.Context, question string) (string, error) {
	related, err := o.classifier.IsSchemaRelated(ctx, question)
	if err != nil {
		return "", err
	}
	if !related {
		return "", ErrGeneralQuestion
	}

	sql, err := o.generateWithHints(ctx, question)
	if err != nil {
		return "", err
	}
	o.record(question, ActionSQL, sql)
	return sql, nil
}

// Chat answers a general question.
func (o *Orchestrator) Chat(ctx context.Context, question string) (string, error) {
	answer, err := o.classifier.Chat(ctx, question)
	if err != nil {
		return "", err
	}
	o.record(question, ActionGeneralChat, "")
	return answer, nil
}

// Summarize turns query result data into a natural-language answer.
func (o *Orchestrator) Summarize(ctx context.Context, question, data string) (string, error) {
	return o.reports.Summarize(ctx, question, data)
}

// GenerateReport produces (summary, html) for the question and data.
func (o *Orchestrator) GenerateReport(ctx context.Context, question, data string) (string, string, error) {
	summary, html, err := o.reports.GenerateReport(ctx, question, data)
	if err != nil {
		return "", "", err
	}
	o.record(question, ActionReport, "")
	return summary, html, nil
}

// Query routes a question through the schema-relevance check: schema
// questions get SQL, everything else gets a chat answer.
func (o *Orchestrator) Query(ctx context.Context, question string) (QueryOutcome, error) {
	related, err := o.classifier.IsSchemaRelated(ctx, question)
	if err != nil {
		return QueryOutcome{}, err
	}

	if related {
		sql, err := o.generateWithHints(ctx, question)
		if err != nil {
			return QueryOutcome{}, err
		}
		o.record(question, ActionSQL, sql)
		return QueryOutcome{QuestionType: "schema", SQL: sql}, nil
	}

	answer, err := o.classifier.Chat(ctx, question)
	if err != nil {
		return QueryOutcome{}, err
	}
	o.record(question, ActionGeneralChat, "")
	return QueryOutcome{QuestionType: "general", Answer: answer}, nil
}

// ClassifyQuery classifies the question and runs the intent-specific
// pipeline. data is the caller-supplied SQL result set (JSON text), empty
// when the SQL has not been executed yet.
func (o *Orchestrator) ClassifyQuery(ctx context.Context, question, data string) (ClassifyOutcome, error) {
	classification, err := o.classifier.Classify(ctx, question)
	if err != nil {
		return ClassifyOutcome{}, err
	}
	log.Printf("Question classified as %s", classification.ActionType)

	switch classification.ActionType {
	case ActionGeneralChat:
		answer := classification.ChatAnswer
		if answer == "" {
			answer, err = o.classifier.Chat(ctx, question)
			if err != nil {
				return ClassifyOutcome{}, err
			}
		}
		o.record(question, ActionGeneralChat, "")
		return ClassifyOutcome{ActionType: ActionGeneralChat, ChatAnswer: answer}, nil

	case ActionSQL:
		queryText := classification.Query
		if queryText == "" {
			queryText = question
		}
		sql, err := o.generateWithHints(ctx, queryText)
		if err != nil {
			return ClassifyOutcome{}, err
		}
		o.record(question, ActionSQL, sql)

		answer := sqlGuidance
		if data != "" {
			answer, err = o.reports.Summarize(ctx, queryText, data)
			if err != nil {
				return ClassifyOutcome{}, err
			}
		}
		return ClassifyOutcome{
			ActionType: ActionSQL,
			ChatAnswer: answer,
			Query:      queryText,
			SQL:        sql,
		}, nil

	case ActionReport:
		queryText := classification.Query
		if queryText == "" {
			queryText = question
		}
		sql, err := o.generateWithHints(ctx, queryText)
		if err != nil {
			return ClassifyOutcome{}, err
		}
		o.record(question, ActionReport, sql)

		if data == "" {
			return ClassifyOutcome{
				ActionType: ActionReport,
				ChatAnswer: reportGuidance,
				Query:      queryText,
				SQL:        sql,
			}, nil
		}

		summary, html, err := o.reports.GenerateReport(ctx, queryText, data)
		if err != nil {
			return ClassifyOutcome{}, err
		}
		return ClassifyOutcome{
			ActionType: ActionReport,
			ChatAnswer: summary,
			Query:      queryText,
			SQL:        sql,
			ReportHTML: html,
		}, nil

	default:
		return ClassifyOutcome{}, fmt.Errorf("unknown action_type %q", classification.ActionType)
	}
}

func (o *Orchestrator) generateWithHints(ctx context.Context, question string) (string, error) {
	hints, err := o.retriever.Search(ctx, question, o.topK)
	if err != nil {
		return "", err
	}
	return o.generator.Generate(ctx, question, hints)
}

func (o *Orchestrator) record(question string, action ActionType, sql string) {
	if o.history == nil {
		return
	}
	if err := o.history.RecordQuery(question, string(action), sql); err != nil {
		log.Printf("Failed to record query history: %v", err)
	}
}
