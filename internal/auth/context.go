// Package auth provides session tokens, password hashing and request identity.
package auth

import (
	"context"

	"github.com/hireline/hireline/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// identityContextKey is the context key for storing the caller identity.
	identityContextKey contextKey = "identity"
)

// ContextWithIdentity adds the caller identity to the context.
func ContextWithIdentity(ctx context.Context, id *model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the caller identity from the context.
// Returns nil if not present.
func IdentityFromContext(ctx context.Context) *model.Identity {
	id, ok := ctx.Value(identityContextKey).(*model.Identity)
	if !ok {
		return nil
	}
	return id
}

// MustIdentityFromContext retrieves the caller identity from the context.
// Panics if not present (use only when auth middleware has run).
func MustIdentityFromContext(ctx context.Context) *model.Identity {
	id := IdentityFromContext(ctx)
	if id == nil {
		panic("identity not found - ensure auth middleware is applied")
	}
	return id
}

// UserIDFromContext is a convenience function to get user ID from context.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	id := IdentityFromContext(ctx)
	if id == nil {
		return ""
	}
	return id.UserID
}
