package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stockpilot/stockpilot/internal/domain"
)

// ErrorBody is the flat failure envelope: {"success": false, "message": ...}.
// 401 responses additionally carry "authenticated": false so browser
// clients can branch on it without inspecting the status code.
type ErrorBody struct {
	Success       bool              `json:"success"`
	Authenticated *bool             `json:"authenticated,omitempty"`
	Message       string            `json:"message"`
	Code          string            `json:"code,omitempty"`
	Meta          map[string]string `json:"meta,omitempty"`
	RequestID     string            `json:"request_id,omitempty"`
}

// WriteError converts a domain error into a consistent JSON HTTP error response.
// Non-domain errors are treated as internal errors (500) without leaking details.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	message := "internal error"
	var meta map[string]string

	var de *domain.Error
	if errors.As(err, &de) {
		status = statusFromKind(de.Kind)
		code = de.Code
		message = de.Message
		meta = de.Meta
	}

	body := ErrorBody{
		Success:   false,
		Message:   message,
		Code:      code,
		Meta:      meta,
		RequestID: RequestIDFromContext(r),
	}
	if status == http.StatusUnauthorized {
		f := false
		body.Authenticated = &f
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFromKind maps domain error kinds to HTTP status codes.
func statusFromKind(kind domain.ErrKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	case domain.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
