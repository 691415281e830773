// Package handler provides the HTTP handlers of the job board API.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hireline/hireline/internal/handler/dto"
	"github.com/hireline/hireline/internal/middleware"
	"github.com/hireline/hireline/internal/service"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeBadRequest           = "BAD_REQUEST"
	CodeInvalidJSON          = "INVALID_JSON"
	CodeUnauthenticated      = middleware.CodeUnauthenticated
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeIdentityVerification = "IDENTITY_VERIFICATION_FAILED"
	CodeForbidden            = middleware.CodeForbidden
	CodeNotFound             = "NOT_FOUND"
	CodeConflict             = "CONFLICT"
	CodeMethodNotAllowed     = "METHOD_NOT_ALLOWED"
	CodeTooLarge             = middleware.CodeTooLarge
	CodeInternal             = middleware.CodeInternal
)

// Handler holds what every resource handler shares.
type Handler struct {
	logger *slog.Logger
}

// New creates a new Handler.
func New(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

// Health answers GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.OKResponse{OK: true})
}

// NotFound handles unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, CodeNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}

// decodeJSON reads a JSON body into dst. It writes the error response and
// returns false when the body is unusable.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, CodeInvalidJSON, "invalid request body")
		return false
	}
	return true
}

// validate runs v.Validate and writes a 400 on failure.
func (h *Handler) validate(w http.ResponseWriter, r *http.Request, v interface{ Validate() error }) bool {
	if err := v.Validate(); err != nil {
		h.handleServiceError(w, r, service.FromValidation(err))
		return false
	}
	return true
}

// handleServiceError maps service errors to HTTP responses. Unexpected
// errors are logged and never echoed.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error:   verr.Message,
			Code:    CodeBadRequest,
			Details: verr.Fields,
		})
	case errors.Is(err, service.ErrBadRequest):
		writeError(w, http.StatusBadRequest, CodeBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, CodeInvalidCredentials, "invalid admin credentials")
	case errors.Is(err, service.ErrIdentityVerification):
		h.logger.Warn("google authentication failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusUnauthorized, CodeIdentityVerification, "google authentication failed")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, CodeForbidden, "forbidden")
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, CodeNotFound, notFoundMessage(err))
	case errors.Is(err, service.ErrConflict):
		writeError(w, http.StatusConflict, CodeConflict, conflictMessage(err))
	default:
		h.logger.Error("internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error")
	}
}

// notFoundMessage turns "not found: job not found" into "job not found".
func notFoundMessage(err error) string {
	return detail(err, service.ErrNotFound, "not found")
}

func conflictMessage(err error) string {
	return detail(err, service.ErrConflict, "conflict")
}

// detail strips the sentinel prefix added by fmt.Errorf("%w: ...").
func detail(err, sentinel error, fallback string) string {
	msg := err.Error()
	prefix := sentinel.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return fallback
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the standard error body.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message, Code: code})
}
