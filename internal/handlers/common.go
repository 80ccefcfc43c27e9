// Package handlers serves the recommendation catalog over HTTP.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/lehigh-university-libraries/bookrec/internal/catalog"
	"github.com/lehigh-university-libraries/bookrec/internal/query"
)

type Handler struct {
	catalog *catalog.Catalog
	engine  *query.Engine
}

func New(c *catalog.Catalog) *Handler {
	return &Handler{
		catalog: c,
		engine:  query.NewEngine(c),
	}
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	if code >= http.StatusInternalServerError {
		slog.Error(message)
	} else {
		slog.Debug("Request rejected", "status", code, "message", message)
	}
	h.writeJSONStatus(w, code, ErrorResponse{Error: message})
}

func (h *Handler) writeValidationError(w http.ResponseWriter, err *query.ValidationError) {
	slog.Debug("Invalid request", "fields", err.Fields)
	h.writeJSONStatus(w, http.StatusBadRequest, ErrorResponse{
		Error:  "invalid request",
		Fields: err.Fields,
	})
}
