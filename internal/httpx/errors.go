package httpx

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync/atomic"

	"bookreview/internal/platform/crypto"
	"bookreview/internal/rating"
	"bookreview/internal/store"
	"bookreview/internal/validation"
)

var development atomic.Bool

// SetDevelopment toggles stack traces in internal error responses.
func SetDevelopment(on bool) {
	development.Store(on)
}

// WriteError maps err onto the uniform error envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verrs    validation.Errors
		dup      *store.DuplicateKeyError
		notFound *store.NotFoundError
		conflict *store.ConflictError
		maxBytes *http.MaxBytesError
	)

	switch {
	case errors.As(err, &verrs):
		JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input data", verrs)
	case errors.As(err, &maxBytes):
		JSONError(w, r, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Request body too large", nil)
	case errors.Is(err, ErrBadRequest):
		JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body", nil)
	case errors.As(err, &dup):
		msg := fmt.Sprintf("Duplicate %s. This %s is already in use.", dup.Field, dup.Field)
		JSONError(w, r, http.StatusBadRequest, "DUPLICATE_ERROR", msg, nil)
	case errors.As(err, &notFound):
		JSONError(w, r, http.StatusNotFound, "NOT_FOUND", notFound.Message, nil)
	case errors.Is(err, store.ErrNotFound):
		JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	case errors.As(err, &conflict):
		JSONError(w, r, http.StatusConflict, conflict.Code, conflict.Message, nil)
	case errors.Is(err, crypto.ErrTokenExpired):
		JSONError(w, r, http.StatusUnauthorized, "AUTH_ERROR", "Token expired", nil)
	case errors.Is(err, crypto.ErrTokenRevoked):
		JSONError(w, r, http.StatusUnauthorized, "AUTH_ERROR", "Token revoked", nil)
	case errors.Is(err, crypto.ErrInvalidToken):
		JSONError(w, r, http.StatusUnauthorized, "AUTH_ERROR", "Invalid token", nil)
	case errors.Is(err, crypto.ErrInvalidCredentials):
		JSONError(w, r, http.StatusUnauthorized, "AUTH_ERROR", "Invalid email or password", nil)
	case errors.Is(err, rating.ErrRecomputeFailed):
		writeInternal(w, r, err, "AGGREGATE_STALE", "Review saved but the book rating could not be updated")
	default:
		writeInternal(w, r, err, "INTERNAL_SERVER_ERROR", "Internal Server Error")
	}
}

// writeInternal logs err and writes a 500 envelope. In development the
// envelope carries err.Error() and the goroutine stack at the point the error
// is written, which is the handler that surfaced it, not where err was created.
func writeInternal(w http.ResponseWriter, r *http.Request, err error, code, message string) {
	attrs := []any{
		"request_id", RequestIDFrom(r),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	}
	var stack string
	if development.Load() {
		stack = string(debug.Stack())
		attrs = append(attrs, "stack", stack)
	}
	slog.ErrorContext(r.Context(), "request failed", attrs...)

	body := ErrorResponse{
		Status:  statusError,
		Message: message,
		Code:    code,
		Stack:   stack,
		Meta:    buildMeta(r, nil),
	}
	if stack != "" {
		body.Message = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, body)
}
