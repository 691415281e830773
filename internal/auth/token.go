package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hireline/hireline/internal/model"
)

// DefaultTokenTTL is the fixed lifetime of a session token.
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidToken is returned for any token that fails verification:
	// bad signature, wrong algorithm, malformed, expired, or an unknown role.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret indicates the codec was built without a signing secret.
	ErrEmptySecret = errors.New("token secret is empty")
)

// Claims is the payload of a session token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 session tokens.
// It holds no mutable state and is safe for concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption configures a TokenCodec.
type CodecOption func(*TokenCodec)

// WithClock overrides the time source.
func WithClock(now func() time.Time) CodecOption {
	return func(c *TokenCodec) {
		if now != nil {
			c.now = now
		}
	}
}

// NewTokenCodec creates a codec signing with secret.
func NewTokenCodec(secret string, opts ...CodecOption) (*TokenCodec, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	c := &TokenCodec{
		secret: []byte(secret),
		ttl:    DefaultTokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the lifetime of issued tokens.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for the given subject.
func (c *TokenCodec) Issue(subject, email string, role model.Role) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("issue token: empty subject")
	}
	if !role.IsValid() {
		return "", fmt.Errorf("issue token: %w", model.ErrUnknownRole)
	}

	now := c.now()
	claims := Claims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the identity it carries.
func (c *TokenCodec) Verify(tokenString string) (*model.Identity, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	role, err := model.ParseRole(claims.Role)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &model.Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
		Role:   role,
	}, nil
}
