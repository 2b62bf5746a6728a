package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/heechang-soft/hcman-ai/internal/auth"
	"github.com/heechang-soft/hcman-ai/internal/core"
	"github.com/heechang-soft/hcman-ai/internal/store"
)

// Service is the pipeline surface the HTTP layer delegates to.
type Service interface {
	GenerateSQL(ctx context.Context, question string) (string, error)
	Chat(ctx context.Context, question string) (string, error)
	Summarize(ctx context.Context, question, data string) (string, error)
	Query(ctx context.Context, question string) (core.QueryOutcome, error)
	ClassifyQuery(ctx context.Context, question, data string) (core.ClassifyOutcome, error)
	GenerateReport(ctx context.Context, question, data string) (string, string, error)
}

// AdminStore exposes the history and feedback tables to the admin routes.
type AdminStore interface {
	ListQueries(limit, offset int) ([]store.QueryRecord, error)
	AddExample(prompt, sqlText string) (*store.SQLExample, error)
}

// ExampleIngestor pushes feedback examples into the vector index.
type ExampleIngestor interface {
	IngestExample(ctx context.Context, prompt, sqlText string) error
}

type APIHandler struct {
	service   Service
	admin     AdminStore      // may be nil
	ingestor  ExampleIngestor // may be nil
	jwtSecret string
}

func NewAPIHandler(service Service, admin AdminStore, ingestor ExampleIngestor, jwtSecret string) *APIHandler {
	return &APIHandler{
		service:   service,
		admin:     admin,
		ingestor:  ingestor,
		jwtSecret: jwtSecret,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}

func (h *APIHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		subject, err := auth.ValidateServiceToken(h.jwtSecret, tokenString)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		log.Printf("Admin request authorized for %q", subject)
		next.ServeHTTP(w, r)
	})
}

func (h *APIHandler) RootHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "hcman-ai",
		"version": "1.0.0",
		"status":  "running",
	})
}

func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type GenerateSQLRequest struct {
	Query string `json:"query"`
}

type GenerateSQLResponse struct {
	SQL string `json:"sql"`
}

func (h *APIHandler) GenerateSQLHandler(w http.ResponseWriter, r *http.Request) {
	var req GenerateSQLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "query field is required")
		return
	}

	sql, err := h.service.GenerateSQL(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, core.ErrGeneralQuestion) {
			// Marker prefix lets the backend detect the redirect case.
			respondError(w, http.StatusBadRequest, "GENERAL_QUESTION: 이 질문은 일반 질문입니다. /chat 엔드포인트를 사용해주세요.")
			return
		}
		log.Printf("SQL generation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "SQL 생성 중 오류 발생: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, GenerateSQLResponse{SQL: sql})
}

type SummarizeRequest struct {
	Query string `json:"query"`
	Data  string `json:"data"`
}

type SummarizeResponse struct {
	Response string `json:"response"`
}

func (h *APIHandler) SummarizeHandler(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "query field is required")
		return
	}

	response, err := h.service.Summarize(r.Context(), req.Query, req.Data)
	if err != nil {
		log.Printf("Summary generation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "요약 생성 중 오류 발생: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, SummarizeResponse{Response: response})
}

type ChatRequest struct {
	Question string `json:"question"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

func (h *APIHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(w, http.StatusBadRequest, "question field is required")
		return
	}

	answer, err := h.service.Chat(r.Context(), req.Question)
	if err != nil {
		log.Printf("Chat answer failed: %v", err)
		respondError(w, http.StatusInternalServerError, "일반 질문 답변 생성 중 오류 발생: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, ChatResponse{Answer: answer})
}

type QueryRequest struct {
	Question string `json:"question"`
}

type QueryResponse struct {
	QuestionType string `json:"question_type"` // "schema" or "general"
	SQL          string `json:"sql,omitempty"`
	Answer       string `json:"answer,omitempty"`
}

func (h *APIHandler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(w, http.StatusBadRequest, "question field is required")
		return
	}

	outcome, err := h.service.Query(r.Context(), req.Question)
	if err != nil {
		log.Printf("Combined query failed: %v", err)
		respondError(w, http.StatusInternalServerError, "질문 처리 중 오류 발생: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, QueryResponse{
		QuestionType: outcome.QuestionType,
		SQL:          outcome.SQL,
		Answer:       outcome.Answer,
	})
}

// ClassifyQueryRequest accepts the question under several field names for
// backend compatibility; precedence is question > query > message.
type ClassifyQueryRequest struct {
	Question string `json:"question"`
	Query    string `json:"query"`
	Message  string `json:"message"`
	Data     string `json:"data"`
}

func (req *ClassifyQueryRequest) question() string {
	for _, candidate := range []string{req.Question, req.Query, req.Message} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

type ClassifyQueryResponse struct {
	ActionType string `json:"action_type"`
	ChatAnswer string `json:"chat_answer,omitempty"`
	Query      string `json:"query,omitempty"`
	SQL        string `json:"sql,omitempty"`
	ReportHTML string `json:"report_html,omitempty"`
}

func (h *APIHandler) ClassifyQueryHandler(w http.ResponseWriter, r *http.Request) {
	var req ClassifyQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	question := req.question()
	if question == "" {
		respondError(w, http.StatusBadRequest, "question, query 또는 message 필드 중 하나는 필수입니다.")
		return
	}

	outcome, err := h.service.ClassifyQuery(r.Context(), question, req.Data)
	if err != nil {
		log.Printf("Query classification failed: %v", err)
		respondError(w, http.StatusInternalServerError, "질문 분류 중 오류 발생: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, ClassifyQueryResponse{
		ActionType: string(outcome.ActionType),
		ChatAnswer: outcome.ChatAnswer,
		Query:      outcome.Query,
		SQL:        outcome.SQL,
		ReportHTML: outcome.ReportHTML,
	})
}

type GenerateReportRequest struct {
	Query string `json:"query"`
	Data  string `json:"data"`
}

type GenerateReportResponse struct {
	Report     string `json:"report"`
	ReportHTML string `json:"report_html"`
}

func (h *APIHandler) GenerateReportHandler(w http.ResponseWriter, r *http.Request) {
	var req GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		respondError(w, http.StatusBadRequest, "query field is required")
		return
	}

	report, html, err := h.service.GenerateReport(r.Context(), req.Query, req.Data)
	if err != nil {
		log.Printf("Report generation failed: %v", err)
		respondError(w, http.StatusInternalServerError, "보고서 생성 중 오류 발생: "+err.Error())
		return
	}
	respondJSON(w, http.StatusOK, GenerateReportResponse{Report: report, ReportHTML: html})
}

func (h *APIHandler) ListHistoryHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}

	records, err := h.admin.ListQueries(limit, offset)
	if err != nil {
		log.Printf("Failed to list query history: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to list query history")
		return
	}
	if records == nil {
		records = []store.QueryRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

type AddExampleRequest struct {
	Prompt string `json:"prompt"`
	SQL    string `json:"sql"`
}

// AddExampleHandler stores a curated question/SQL pair and pushes it into the
// vector index so future retrieval can use it as a hint.
func (h *APIHandler) AddExampleHandler(w http.ResponseWriter, r *http.Request) {
	var req AddExampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" || strings.TrimSpace(req.SQL) == "" {
		respondError(w, http.StatusBadRequest, "prompt and sql fields are required")
		return
	}

	example, err := h.admin.AddExample(req.Prompt, req.SQL)
	if err != nil {
		log.Printf("Failed to store sql example: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to store example")
		return
	}

	if h.ingestor != nil {
		if err := h.ingestor.IngestExample(r.Context(), req.Prompt, req.SQL); err != nil {
			// The relational copy exists; index push can be retried by re-adding.
			log.Printf("Failed to index sql example %d: %v", example.ID, err)
		}
	}

	respondJSON(w, http.StatusCreated, example)
}
