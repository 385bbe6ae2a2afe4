// Package handlers provides JSON response helpers shared by HTTP handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// Kinder is implemented by errors that carry a stable, machine-readable kind.
type Kinder interface {
	Kind() string
}

// ErrorResponse is the body written for every error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind"`
	Error   string `json:"error"`
}

// RespondJSON writes data as JSON with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondError logs err and writes an ErrorResponse.
// Server errors are logged at error level, client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	kind := KindOf(err, status)

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "kind", kind, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "kind", kind, "error", err)
	}

	RespondJSON(w, status, ErrorResponse{
		Success: false,
		Kind:    kind,
		Error:   err.Error(),
	})
}

// KindOf returns the kind carried by err, or a kind derived from status
// when err does not implement Kinder.
func KindOf(err error, status int) string {
	var k Kinder
	if errors.As(err, &k) {
		return k.Kind()
	}

	switch status {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusTooManyRequests:
		return "rate_limited"
	case http.StatusBadGateway:
		return "upstream_failure"
	}
	return "internal"
}
