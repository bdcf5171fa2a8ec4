package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"bookreview/internal/pagination"
	"bookreview/internal/validation"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	statusSuccess = "success"
	statusError   = "error"
)

// ErrBadRequest is returned when a request body cannot be decoded.
var ErrBadRequest = errors.New("bad request")

type SuccessResponse struct {
	Status     string           `json:"status"`
	Data       any              `json:"data"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
	Meta       map[string]any   `json:"meta,omitempty"`
}

type ErrorResponse struct {
	Status  string                  `json:"status"`
	Message string                  `json:"message"`
	Code    string                  `json:"code"`
	Errors  []validation.FieldError `json:"errors,omitempty"`
	Stack   string                  `json:"stack,omitempty"`
	Meta    map[string]any          `json:"meta,omitempty"`
}

func buildMeta(r *http.Request, custom map[string]any) map[string]any {
	requestID := RequestIDFrom(r)
	if requestID == "" && len(custom) == 0 {
		return nil
	}
	meta := make(map[string]any, len(custom)+1)
	for k, v := range custom {
		meta[k] = v
	}
	if requestID != "" {
		meta["requestId"] = requestID
	}
	return meta
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func JSONSuccess(w http.ResponseWriter, r *http.Request, data any, meta map[string]any) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Status: statusSuccess,
		Data:   data,
		Meta:   buildMeta(r, meta),
	})
}

func JSONCreated(w http.ResponseWriter, r *http.Request, data any) {
	writeJSON(w, http.StatusCreated, SuccessResponse{
		Status: statusSuccess,
		Data:   data,
		Meta:   buildMeta(r, nil),
	})
}

// JSONPage writes a page as {status, data, pagination}.
func JSONPage[T any](w http.ResponseWriter, r *http.Request, page pagination.Page[T]) {
	writeJSON(w, http.StatusOK, SuccessResponse{
		Status:     statusSuccess,
		Data:       page.Data,
		Pagination: &page.Pagination,
		Meta:       buildMeta(r, nil),
	})
}

func JSONNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

func JSONError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string, details []validation.FieldError) {
	writeJSON(w, statusCode, ErrorResponse{
		Status:  statusError,
		Message: message,
		Code:    code,
		Errors:  details,
		Meta:    buildMeta(r, nil),
	})
}

// DecodeJSON reads the request body into dst. Unknown fields are ignored.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return maxBytes
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", ErrBadRequest)
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}
