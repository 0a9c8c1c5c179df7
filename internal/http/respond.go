package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"cantiere/internal/core"
	"cantiere/internal/middleware/trace"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// respondJSON writes v with the given status. Encoding failures only get
// logged; by then the status line is already out.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Response encoding failed",
			"error", err,
			"path", r.URL.Path)
	}
}

// respondList writes items as a JSON array, never null.
func respondList[T any](w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	respondJSON(w, r, http.StatusOK, items)
}

// respondError maps service errors onto API status codes: 404 for missing
// rows, 422 for rejected fields, 409 for conflicts, 502 when an upstream
// provider failed, 500 for everything else.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, core.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrConnectionBusy), errors.Is(err, core.ErrDuplicateLink):
		status = http.StatusConflict
	case errors.Is(err, core.ErrUpstream):
		status = http.StatusBadGateway
	case errors.Is(err, errUploadTooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path)
		msg = "internal error"
	}

	respondJSON(w, r, status, errorBody{
		Error:     msg,
		RequestID: trace.GetRequestID(r.Context()),
	})
}
