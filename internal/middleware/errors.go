package middleware

import (
	"encoding/json"
	"net/http"
)

// Error codes written by middleware. They match the handler error codes.
const (
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeRateLimited     = "RATE_LIMITED"
	CodeTooLarge        = "PAYLOAD_TOO_LARGE"
	CodeInternal        = "INTERNAL_ERROR"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message, Code: code})
}
