// Package handler holds the shared HTTP plumbing: JSON responses, the domain
// error to status-code mapping, and request binding with validation.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rcabrera/tindahan/internal/domain"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Message string `json:"message"`

	// InsufficientStock carries the per-item shortage list on checkout
	// stock failures.
	InsufficientStock []domain.Shortage `json:"insufficientStock,omitempty"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Error writes err as a JSON error response, mapping the domain error code
// to an HTTP status. Internal errors are logged and their details hidden
// from the client.
func Error(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	if domain.IsStockError(err) {
		JSON(w, http.StatusBadRequest, ErrorResponse{
			Message:           "Insufficient stock for some items",
			InsufficientStock: domain.GetShortages(err),
		})
		return
	}

	code := domain.ErrorCode(err)
	status := statusForCode(code)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		JSON(w, status, ErrorResponse{Message: "Internal server error"})
		return
	}

	JSON(w, status, ErrorResponse{Message: domain.ErrorMessage(err)})
}

func statusForCode(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ECONFLICT:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
