package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/reviewdesk/reviewdesk/internal/chat"
	"github.com/reviewdesk/reviewdesk/internal/export"
	"github.com/reviewdesk/reviewdesk/internal/schema"
	"github.com/reviewdesk/reviewdesk/internal/storage"
	"github.com/reviewdesk/reviewdesk/internal/store"
)

type scriptedLLM struct {
	intentAnswer  string
	sqlAnswer     string
	insightAnswer string
}

func (s *scriptedLLM) Complete(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "Classify the user's question"):
		return s.intentAnswer, nil
	case strings.Contains(prompt, "Which table should be used"):
		return "processed_product_reviews3", nil
	case strings.Contains(prompt, "Postgres Expert"):
		return s.sqlAnswer, nil
	default:
		return s.insightAnswer, nil
	}
}

func (s *scriptedLLM) Close() error { return nil }

type fixedExecutor struct {
	queries []string
	result  store.Result
	err     error
}

func (f *fixedExecutor) Query(_ context.Context, sqlText string) (store.Result, error) {
	f.queries = append(f.queries, sqlText)
	return f.result, f.err
}

func (f *fixedExecutor) HealthCheck(context.Context) error { return nil }

func (f *fixedExecutor) Close() error { return nil }

type memoryObjectStore struct {
	objects map[string][]byte
}

func (m *memoryObjectStore) Put(_ context.Context, key string, body io.Reader, size int64, _ storage.PutOptions) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = data
	return storage.ObjectInfo{Key: key, Size: size}, nil
}

func (m *memoryObjectStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryObjectStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func happyLLM() *scriptedLLM {
	return &scriptedLLM{
		intentAnswer:  "data_query",
		sqlAnswer:     `SELECT "Category", COUNT(*) AS count FROM processed_product_reviews3 GROUP BY "Category"`,
		insightAnswer: "**Insight & Recommendation:** Shoes dominate.\n\n**Suggested Questions:**\n* What is the average Score by Category?",
	}
}

func okResult() store.Result {
	return store.Result{
		Columns: []string{"Category", "count"},
		Rows:    [][]any{{"shoes", int64(3)}},
	}
}

func newTestHandler(client *scriptedLLM, executor *fixedExecutor, exporter *export.Exporter, health HealthCheck) http.Handler {
	logger := quietLogger()
	registry := schema.NewRegistry()
	return NewHandler(Dependencies{
		Logger:     logger,
		Chat:       chat.NewService(registry, client, executor, logger),
		Dashboards: chat.NewDashboards(executor, client, logger),
		Exporter:   exporter,
		Health:     health,
	})
}

func postJSON(t *testing.T, handler http.Handler, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeChatResponse(t *testing.T, recorder *httptest.ResponseRecorder) chatResponse {
	t.Helper()
	var resp chatResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestChatEndpointSuccess(t *testing.T) {
	executor := &fixedExecutor{result: okResult()}
	handler := newTestHandler(happyLLM(), executor, nil, nil)

	recorder := postJSON(t, handler, "/api/chat", chatRequest{Prompt: "reviews per category"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	resp := decodeChatResponse(t, recorder)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %q", *resp.Error)
	}
	if resp.ResultsHTML == nil || !strings.Contains(*resp.ResultsHTML, "<table") {
		t.Fatal("expected rendered results table")
	}
	if resp.Insights == nil || !strings.Contains(*resp.Insights, "Shoes dominate.") {
		t.Fatal("expected insights text")
	}
}

func TestChatEndpointRejectsEmptyPrompt(t *testing.T) {
	handler := newTestHandler(happyLLM(), &fixedExecutor{result: okResult()}, nil, nil)

	recorder := postJSON(t, handler, "/api/chat", chatRequest{Prompt: "   "})
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestChatEndpointRejectsBadJSON(t *testing.T) {
	handler := newTestHandler(happyLLM(), &fixedExecutor{result: okResult()}, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", recorder.Code)
	}
}

func TestChatEndpointSelectedTablePinsRouting(t *testing.T) {
	client := happyLLM()
	client.sqlAnswer = "SELECT predicted_category, COUNT(*) AS count FROM complaints GROUP BY predicted_category"
	executor := &fixedExecutor{result: okResult()}
	handler := newTestHandler(client, executor, nil, nil)

	recorder := postJSON(t, handler, "/api/chat", chatRequest{
		Prompt:        "counts by category",
		SelectedTable: "complaints",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	if len(executor.queries) != 1 || !strings.Contains(executor.queries[0], "FROM complaints") {
		t.Fatalf("expected complaints query, got %v", executor.queries)
	}
}

func TestChatEndpointExecutionErrorStaysInPayload(t *testing.T) {
	executor := &fixedExecutor{err: errors.New("relation does not exist")}
	handler := newTestHandler(happyLLM(), executor, nil, nil)

	recorder := postJSON(t, handler, "/api/chat", chatRequest{Prompt: "reviews per category"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("pipeline failure must not become a transport error, status = %d", recorder.Code)
	}
	resp := decodeChatResponse(t, recorder)
	if resp.Insights == nil || *resp.Insights == "" {
		t.Fatal("expected non-empty insights describing the failure")
	}
	if resp.ResultsHTML != nil {
		t.Fatal("results_html must be null on execution failure")
	}
}

func TestTablesEndpoint(t *testing.T) {
	handler := newTestHandler(happyLLM(), &fixedExecutor{result: okResult()}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}

	var entries []tableEntry
	if err := json.NewDecoder(recorder.Body).Decode(&entries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 tables, got %d", len(entries))
	}
	if entries[0].ID != "processed_product_reviews3" || entries[0].DisplayName != "Processed Product Reviews" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
}

func TestHealthEndpointReportsDatabaseState(t *testing.T) {
	healthy := func(context.Context) error { return nil }
	handler := newTestHandler(happyLLM(), &fixedExecutor{}, nil, healthy)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"healthy"`) {
		t.Fatalf("unexpected body: %s", recorder.Body.String())
	}

	broken := func(context.Context) error { return errors.New("connection refused") }
	handler = newTestHandler(happyLLM(), &fixedExecutor{}, nil, broken)
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if !strings.Contains(recorder.Body.String(), `"unhealthy"`) {
		t.Fatalf("unexpected body: %s", recorder.Body.String())
	}
}

func TestReadyEndpointFailsWhenDatabaseDown(t *testing.T) {
	broken := func(context.Context) error { return errors.New("connection refused") }
	handler := newTestHandler(happyLLM(), &fixedExecutor{}, nil, broken)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/ready", nil))
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", recorder.Code)
	}
}

func TestExportEndpointUploadsResult(t *testing.T) {
	objects := &memoryObjectStore{}
	exporter := export.New(objects, quietLogger())
	executor := &fixedExecutor{result: okResult()}
	handler := newTestHandler(happyLLM(), executor, exporter, nil)

	recorder := postJSON(t, handler, "/api/export", exportRequest{Prompt: "reviews per category"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", recorder.Code, recorder.Body.String())
	}

	var resp exportResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RowCount != 1 || resp.Table != "processed_product_reviews3" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if _, ok := objects.objects[resp.ObjectKey]; !ok {
		t.Fatalf("object %q was not stored", resp.ObjectKey)
	}
}

func TestExportEndpointDisabled(t *testing.T) {
	handler := newTestHandler(happyLLM(), &fixedExecutor{result: okResult()}, nil, nil)

	recorder := postJSON(t, handler, "/api/export", exportRequest{Prompt: "reviews per category"})
	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", recorder.Code)
	}
}

func TestDashboardInsightsErrorRidesInPayload(t *testing.T) {
	executor := &fixedExecutor{err: errors.New("db down")}
	handler := newTestHandler(happyLLM(), executor, nil, nil)

	recorder := postJSON(t, handler, "/api/get-complaint-insights", insightRequest{PageKey: "complaints"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d", recorder.Code)
	}
	var resp insightResponse
	if err := json.NewDecoder(recorder.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error == nil || *resp.Error == "" {
		t.Fatal("expected error message in payload")
	}
	if resp.Insights != nil {
		t.Fatal("expected null insights on failure")
	}
}
