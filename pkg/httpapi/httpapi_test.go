package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/foliokit/sage/pkg/assistant"
	"github.com/foliokit/sage/pkg/knowledge"
	"github.com/foliokit/sage/pkg/llm"
)

type mockEmbedder struct {
	vector    []float32
	err       error
	callCount int
}

func (m *mockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++
	if m.err != nil {
		return nil, m.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = m.vector
	}
	return vectors, nil
}

type mockProvider struct {
	reply string
	err   error
}

func (m *mockProvider) Chat(ctx context.Context, messages []llm.Message, params llm.GenerationParams) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.reply, nil
}

func (m *mockProvider) Stream(ctx context.Context, messages []llm.Message, params llm.GenerationParams) (<-chan string, error) {
	ch := make(chan string)
	close(ch)
	return ch, nil
}

func newTestHandler(t *testing.T, embedder *mockEmbedder, provider *mockProvider) http.Handler {
	t.Helper()
	store, err := knowledge.NewStore([]knowledge.Record{
		{ID: "a", Topic: "Skills", Text: "Knows Python", Embedding: []float32{1, 0}},
		{ID: "b", Topic: "Projects", Text: "Built a chatbot", Embedding: []float32{0, 1}},
	})
	if err != nil {
		t.Fatalf("Failed to build store: %v", err)
	}

	a := assistant.New(embedder, store, provider, assistant.WithTopK(1))
	return New(a, store)
}

func postChat(handler http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestChat(t *testing.T) {
	embedder := &mockEmbedder{vector: []float32{1, 0}}
	handler := newTestHandler(t, embedder, &mockProvider{reply: "**Hello!**"})

	rec := postChat(handler, `{"message": "What skills?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp assistant.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Reply != "**Hello!**" {
		t.Errorf("Expected reply '**Hello!**', got %q", resp.Reply)
	}
	if len(resp.RelevantContext) != 1 || resp.RelevantContext[0].ID != "a" {
		t.Errorf("Unexpected relevant context: %+v", resp.RelevantContext)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	embedder := &mockEmbedder{vector: []float32{1, 0}}
	handler := newTestHandler(t, embedder, &mockProvider{reply: "x"})

	rec := postChat(handler, `{"message": ""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if embedder.callCount != 0 {
		t.Errorf("Embedder called %d times for empty message, want 0", embedder.callCount)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Error != "Message is required" {
		t.Errorf("Unexpected error message: %q", errResp.Error)
	}
}

func TestChat_InvalidBody(t *testing.T) {
	handler := newTestHandler(t, &mockEmbedder{vector: []float32{1, 0}}, &mockProvider{reply: "x"})

	rec := postChat(handler, `{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
}

func TestChat_CollaboratorFailure(t *testing.T) {
	handler := newTestHandler(t,
		&mockEmbedder{err: fmt.Errorf("embedding service down")},
		&mockProvider{reply: "x"},
	)

	rec := postChat(handler, `{"message": "hello"}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rec.Code)
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Error != "Failed to process chat message" {
		t.Errorf("Unexpected error category: %q", errResp.Error)
	}
	if !strings.Contains(errResp.Details, "embedding") {
		t.Errorf("Expected details to name the failed stage, got %q", errResp.Details)
	}
}

func TestChat_MethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, &mockEmbedder{vector: []float32{1, 0}}, &mockProvider{reply: "x"})

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	handler := newTestHandler(t, &mockEmbedder{vector: []float32{1, 0}}, &mockProvider{reply: "x"})

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Expected status ok, got %q", resp.Status)
	}
	if resp.Embeddings != 2 {
		t.Errorf("Expected 2 embeddings, got %d", resp.Embeddings)
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestHandler(t, &mockEmbedder{vector: []float32{1, 0}}, &mockProvider{reply: "x"})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent && rec.Code != http.StatusOK {
		t.Fatalf("Expected preflight success, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Expected Access-Control-Allow-Origin header")
	}
}
