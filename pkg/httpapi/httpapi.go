// Package httpapi exposes the assistant over HTTP. The handler is a plain
// http.Handler, so the same core serves a long-running server or a
// function-per-request host.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/foliokit/sage/pkg/assistant"
	"github.com/foliokit/sage/pkg/knowledge"
	"github.com/foliokit/sage/pkg/llm"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []llm.Message `json:"conversationHistory"`
}

// ErrorResponse is the structured error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status     string `json:"status"`
	Embeddings int    `json:"embeddings"`
	Timestamp  string `json:"timestamp"`
}

// API serves the chat and health endpoints.
type API struct {
	assistant *assistant.Assistant
	store     *knowledge.Store
}

// New creates the HTTP handler for the assistant, with CORS enabled for
// browser clients.
func New(a *assistant.Assistant, store *knowledge.Store) http.Handler {
	api := &API{assistant: a, store: store}

	router := mux.NewRouter()
	router.HandleFunc("/api/chat", api.handleChat).Methods(http.MethodPost)
	router.HandleFunc("/api/health", api.handleHealth).Methods(http.MethodGet)

	return cors.AllowAll().Handler(router)
}

func (api *API) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	resp, err := api.assistant.Answer(r.Context(), req.Message, req.ConversationHistory)
	if err != nil {
		api.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (api *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Embeddings: api.store.Len(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

func (api *API) writeError(w http.ResponseWriter, err error) {
	var stageErr *assistant.StageError

	switch {
	case errors.Is(err, assistant.ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error: "Message is required",
		})

	case errors.As(err, &stageErr):
		slog.Error("chat pipeline failed", "stage", stageErr.Stage, "error", stageErr.Err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "Failed to process chat message",
			Details: err.Error(),
		})

	default:
		slog.Error("chat request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to process chat message",
			Details: err.Error(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
