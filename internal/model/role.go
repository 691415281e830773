// Package model defines domain entities for the application.
package model

import (
	"errors"
	"strings"
)

// Role is the closed set of roles a session token can carry.
type Role string

// Role constants.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ErrUnknownRole indicates a role value outside the closed set.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole decodes a role string. Anything other than "user" or "admin"
// is rejected.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	default:
		return "", ErrUnknownRole
	}
}

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

// RoleFor returns the role a user record maps to.
func RoleFor(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// Identity is the authenticated caller attached to a request context
// by the access control middleware.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

// IsAdmin returns true if the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// CanAccess reports whether the identity may act on a resource owned by ownerID.
// Admins can access everything.
func (i *Identity) CanAccess(ownerID string) bool {
	if i == nil {
		return false
	}
	return i.IsAdmin() || i.UserID == ownerID
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
