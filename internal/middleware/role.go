package middleware

import (
	"net/http"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/model"
)

// RequireRole returns middleware that only lets callers with role through.
// Must be applied after Authenticate.
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := auth.IdentityFromContext(r.Context())
			if id == nil {
				writeError(w, http.StatusUnauthorized, CodeUnauthenticated, "authentication required")
				return
			}
			if id.Role != role {
				writeError(w, http.StatusForbidden, CodeForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is RequireRole(model.RoleAdmin).
func RequireAdmin() func(http.Handler) http.Handler {
	return RequireRole(model.RoleAdmin)
}
