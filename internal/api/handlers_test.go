package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/heechang-soft/hcman-ai/internal/auth"
	"github.com/heechang-soft/hcman-ai/internal/core"
	"github.com/heechang-soft/hcman-ai/internal/store"
)

// fakeService scripts the pipeline layer and records the arguments it saw.
type fakeService struct {
	sql         string
	sqlErr      error
	chatAnswer  string
	summary     string
	outcome     core.QueryOutcome
	classified  core.ClassifyOutcome
	reportHTML  string
	gotQuestion string
	gotData     string
}

func (f *fakeService) GenerateSQL(ctx context.Context, question string) (string, error) {
	f.gotQuestion = question
	return f.sql, f.sqlErr
}

func (f *fakeService) Chat(ctx context.Context, question string) (string, error) {
	f.gotQuestion = question
	return f.chatAnswer, nil
}

func (f *fakeService) Summarize(ctx context.Context, question, data string) (string, error) {
	f.gotQuestion, f.gotData = question, data
	return f.summary, nil
}

func (f *fakeService) Query(ctx context.Context, question string) (core.QueryOutcome, error) {
	f.gotQuestion = question
	return f.outcome, nil
}

func (f *fakeService) ClassifyQuery(ctx context.Context, question, data string) (core.ClassifyOutcome, error) {
	f.gotQuestion, f.gotData = question, data
	return f.classified, nil
}

func (f *fakeService) GenerateReport(ctx context.Context, question, data string) (string, string, error) {
	f.gotQuestion, f.gotData = question, data
	return f.summary, f.reportHTML, nil
}

type fakeAdminStore struct {
	records  []store.QueryRecord
	examples []store.SQLExample
}

func (f *fakeAdminStore) ListQueries(limit, offset int) ([]store.QueryRecord, error) {
	return f.records, nil
}

func (f *fakeAdminStore) AddExample(prompt, sqlText string) (*store.SQLExample, error) {
	example := store.SQLExample{ID: int64(len(f.examples) + 1), Prompt: prompt, SQL: sqlText, CreatedAt: time.Now()}
	f.examples = append(f.examples, example)
	return &example, nil
}

type fakeExampleIngestor struct {
	prompts []string
}

func (f *fakeExampleIngestor) IngestExample(ctx context.Context, prompt, sqlText string) error {
	f.prompts = append(f.prompts, prompt)
	return nil
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := NewRouter(NewAPIHandler(&fakeService{}, nil, nil, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestGenerateSQLEndpoint(t *testing.T) {
	service := &fakeService{sql: "SELECT COUNT(*) FROM heechang.heechang.Pkfl"}
	router := NewRouter(NewAPIHandler(service, nil, nil, ""))

	rec := postJSON(t, router, "/api/generate-sql", map[string]string{"query": "8월 발주 건수는?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d, body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp GenerateSQLResponse
	decodeBody(t, rec, &resp)
	if resp.SQL != service.sql {
		t.Errorf("sql = %q, want %q", resp.SQL, service.sql)
	}
}

func TestGenerateSQLRejectsGeneralQuestionWithMarker(t *testing.T) {
	service := &fakeService{sqlErr: core.ErrGeneralQuestion}
	router := NewRouter(NewAPIHandler(service, nil, nil, ""))

	rec := postJSON(t, router, "/api/generate-sql", map[string]string{"query": "파이썬이 뭐야?"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp map[string]string
	decodeBody(t, rec, &resp)
	if !strings.HasPrefix(resp["detail"], "GENERAL_QUESTION:") {
		t.Errorf("expected GENERAL_QUESTION marker, got %q", resp["detail"])
	}
}

func TestGenerateSQLRequiresQuery(t *testing.T) {
	router := NewRouter(NewAPIHandler(&fakeService{}, nil, nil, ""))

	rec := postJSON(t, router, "/api/generate-sql", map[string]string{"query": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestClassifyQueryFieldPrecedence(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
		want string
	}{
		{"question wins", map[string]string{"question": "질문", "query": "쿼리", "message": "메시지"}, "질문"},
		{"query second", map[string]string{"query": "쿼리", "message": "메시지"}, "쿼리"},
		{"message last", map[string]string{"message": "메시지"}, "메시지"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeService{classified: core.ClassifyOutcome{ActionType: core.ActionGeneralChat, ChatAnswer: "답"}}
			router := NewRouter(NewAPIHandler(service, nil, nil, ""))

			rec := postJSON(t, router, "/api/classify-query", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if service.gotQuestion != tt.want {
				t.Errorf("service saw question %q, want %q", service.gotQuestion, tt.want)
			}
		})
	}
}

func TestClassifyQueryRequiresSomeQuestionField(t *testing.T) {
	router := NewRouter(NewAPIHandler(&fakeService{}, nil, nil, ""))

	rec := postJSON(t, router, "/api/classify-query", map[string]string{"data": "[]"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestClassifyQueryPassesData(t *testing.T) {
	service := &fakeService{classified: core.ClassifyOutcome{ActionType: core.ActionSQL, SQL: "SELECT 1", ChatAnswer: "요약"}}
	router := NewRouter(NewAPIHandler(service, nil, nil, ""))

	rec := postJSON(t, router, "/api/classify-query", map[string]string{"question": "발주 건수", "data": `[{"count": 15}]`})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if service.gotData != `[{"count": 15}]` {
		t.Errorf("service saw data %q", service.gotData)
	}

	var resp ClassifyQueryResponse
	decodeBody(t, rec, &resp)
	if resp.ActionType != string(core.ActionSQL) || resp.SQL != "SELECT 1" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestAdminRoutesAbsentWithoutSecret(t *testing.T) {
	router := NewRouter(NewAPIHandler(&fakeService{}, &fakeAdminStore{}, nil, ""))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestAdminHistoryRequiresToken(t *testing.T) {
	router := NewRouter(NewAPIHandler(&fakeService{}, &fakeAdminStore{}, nil, "test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAdminHistoryWithToken(t *testing.T) {
	admin := &fakeAdminStore{records: []store.QueryRecord{{ID: "1", Question: "발주 건수", ActionType: "SQL"}}}
	router := NewRouter(NewAPIHandler(&fakeService{}, admin, nil, "test-secret"))

	token, err := auth.GenerateServiceToken("test-secret", "backend")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/history", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var records []store.QueryRecord
	decodeBody(t, rec, &records)
	if len(records) != 1 || records[0].Question != "발주 건수" {
		t.Errorf("unexpected records: %+v", records)
	}
}

func TestAddExampleStoresAndIndexes(t *testing.T) {
	admin := &fakeAdminStore{}
	ingestor := &fakeExampleIngestor{}
	router := NewRouter(NewAPIHandler(&fakeService{}, admin, ingestor, "test-secret"))

	token, err := auth.GenerateServiceToken("test-secret", "backend")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	payload, _ := json.Marshal(AddExampleRequest{Prompt: "8월 발주 건수는?", SQL: "SELECT COUNT(*) FROM heechang.heechang.Pkfl"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/examples", bytes.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(admin.examples) != 1 {
		t.Errorf("expected 1 stored example, got %d", len(admin.examples))
	}
	if len(ingestor.prompts) != 1 || ingestor.prompts[0] != "8월 발주 건수는?" {
		t.Errorf("expected the example pushed to the index, got %v", ingestor.prompts)
	}
}
