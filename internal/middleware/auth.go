package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/metrics"
	"github.com/hireline/hireline/internal/model"
)

// TokenVerifier decodes a session token into the caller identity.
type TokenVerifier interface {
	Verify(token string) (*model.Identity, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier TokenVerifier
	Metrics  metrics.Recorder
}

// Authenticate returns a middleware that requires a valid bearer token and
// attaches the decoded identity to the request context.
func Authenticate(cfg AuthConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	reject := func(w http.ResponseWriter, r *http.Request, reason, message string) {
		recorder.IncAuthRejected(reason)
		logger.Warn("authentication failed",
			slog.String("reason", reason),
			slog.String("ip", r.RemoteAddr),
			slog.String("endpoint", r.Method+" "+r.URL.Path),
			slog.String("request_id", GetRequestID(r.Context())),
		)
		writeError(w, http.StatusUnauthorized, CodeUnauthenticated, message)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				reject(w, r, "missing_token", "missing bearer token")
				return
			}

			id, err := cfg.Verifier.Verify(token)
			if err != nil {
				reject(w, r, "invalid_token", "invalid or expired token")
				return
			}

			logger.Debug("authentication successful",
				slog.String("user_id", id.UserID),
				slog.String("role", string(id.Role)),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := auth.ContextWithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme is matched case-insensitively.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
