package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dpolonia/snshadb/internal/config"
	"github.com/dpolonia/snshadb/internal/domain"
	"github.com/dpolonia/snshadb/internal/orchestrator"
)

// Handler serves the controller's HTTP surface.
type Handler struct {
	orch   *orchestrator.Orchestrator
	logger *slog.Logger
}

// NewHandler creates the HTTP handler over the orchestrator.
func NewHandler(orch *orchestrator.Orchestrator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{orch: orch, logger: logger}
}

// HandleHealth reports liveness only; no dependency is checked.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "online",
		"system": config.SystemName,
	})
}

// HandleChat decodes a chat request, runs it through the orchestrator,
// and writes the response or the mapped error.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "must be valid JSON"})
		return
	}

	resp, err := h.orch.Chat(r.Context(), &req)
	if err != nil {
		AddLogField(r.Context(), "error", err.Error())
		writeError(w, err)
		return
	}

	AddLogField(r.Context(), "provider", resp.Provider)
	AddLogField(r.Context(), "session_id", resp.SessionID)
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to their status codes; anything without
// a mapping is a server error.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var sc domain.StatusCoder
	if errors.As(err, &sc) {
		status = sc.HTTPStatusCode()
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
