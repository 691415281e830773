// Package identity resolves Google sign-in assertions into verified profiles.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	defaultUserInfoURL  = "https://openidconnect.googleapis.com/v1/userinfo"
	defaultJWKSURL      = "https://www.googleapis.com/oauth2/v3/certs"
)

// Issuers accepted on Google ID tokens.
var validIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// ErrVerification is returned when Google rejects a token or the
// assertion does not verify.
var ErrVerification = errors.New("identity verification failed")

// Profile is the subset of the Google account the service needs.
type Profile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}

// Config holds Google client configuration.
type Config struct {
	ClientID string

	TokenInfoURL string
	UserInfoURL  string
	JWKSURL      string

	HTTPClient *http.Client
	Logger     *slog.Logger

	// KeyFunc overrides JWKS key lookup for ID tokens.
	KeyFunc jwt.Keyfunc
	// Now overrides the clock used for ID token expiry.
	Now func() time.Time
}

// Google verifies access tokens and ID tokens issued by Google.
type Google struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	mu   sync.Mutex
	jwks *keyfunc.JWKS
}

// NewGoogle creates a Google identity client.
func NewGoogle(cfg Config) *Google {
	if cfg.TokenInfoURL == "" {
		cfg.TokenInfoURL = defaultTokenInfoURL
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = defaultUserInfoURL
	}
	if cfg.JWKSURL == "" {
		cfg.JWKSURL = defaultJWKSURL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Google{
		cfg:        cfg,
		httpClient: client,
		logger:     logger,
	}
}

// Close stops the JWKS background refresh, if it was started.
func (g *Google) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.jwks != nil {
		g.jwks.EndBackground()
		g.jwks = nil
	}
}

type tokenInfoResponse struct {
	Audience  string `json:"aud"`
	AuthParty string `json:"azp"`
	Email     string `json:"email"`
	ExpiresIn string `json:"expires_in"`
}

type userInfoResponse struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// ProfileFromAccessToken resolves a profile from an OAuth access token.
// The tokeninfo lookup is advisory: a failed lookup is logged and the
// userinfo call decides, but a token issued to another client is rejected.
func (g *Google) ProfileFromAccessToken(ctx context.Context, accessToken string) (*Profile, error) {
	if accessToken == "" {
		return nil, ErrVerification
	}

	info, err := g.tokenInfo(ctx, accessToken)
	switch {
	case err != nil:
		g.logger.Warn("tokeninfo check failed, continuing with userinfo",
			slog.String("error", err.Error()),
		)
	case g.cfg.ClientID != "" && info.Audience != g.cfg.ClientID && info.AuthParty != g.cfg.ClientID:
		return nil, fmt.Errorf("%w: access token issued to another client", ErrVerification)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: userinfo status %d", ErrVerification, resp.StatusCode)
	}

	var ui userInfoResponse
	if err := json.Unmarshal(body, &ui); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %v", ErrVerification, err)
	}

	return &Profile{
		Subject:       ui.Sub,
		Email:         ui.Email,
		EmailVerified: truthy(ui.EmailVerified),
		Name:          ui.Name,
		Picture:       ui.Picture,
	}, nil
}

func (g *Google) tokenInfo(ctx context.Context, accessToken string) (*tokenInfoResponse, error) {
	u := g.cfg.TokenInfoURL + "?" + url.Values{"access_token": {accessToken}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tokeninfo status %d", resp.StatusCode)
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode tokeninfo: %w", err)
	}
	if info.Audience == "" {
		return nil, errors.New("tokeninfo missing aud")
	}
	return &info, nil
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	jwt.RegisteredClaims
}

// ProfileFromIDToken verifies a Google ID token's signature, audience,
// issuer and expiry and returns its profile claims.
func (g *Google) ProfileFromIDToken(ctx context.Context, idToken string) (*Profile, error) {
	if idToken == "" {
		return nil, ErrVerification
	}

	kf, err := g.keyFunc(ctx)
	if err != nil {
		return nil, fmt.Errorf("load google keys: %w", err)
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithAudience(g.cfg.ClientID),
		jwt.WithTimeFunc(g.cfg.Now),
		jwt.WithExpirationRequired(),
	)

	claims := &idTokenClaims{}
	token, err := parser.ParseWithClaims(idToken, claims, kf)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrVerification, err)
	}

	if !slices.Contains(validIssuers, claims.Issuer) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrVerification, claims.Issuer)
	}

	return &Profile{
		Subject:       claims.Subject,
		Email:         claims.Email,
		EmailVerified: truthy(claims.EmailVerified),
		Name:          claims.Name,
		Picture:       claims.Picture,
	}, nil
}

func (g *Google) keyFunc(ctx context.Context) (jwt.Keyfunc, error) {
	if g.cfg.KeyFunc != nil {
		return g.cfg.KeyFunc, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.jwks == nil {
		jwks, err := keyfunc.Get(g.cfg.JWKSURL, keyfunc.Options{
			Ctx:               context.WithoutCancel(ctx),
			Client:            g.httpClient,
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				g.logger.Warn("google jwks refresh failed", slog.String("error", err.Error()))
			},
		})
		if err != nil {
			return nil, err
		}
		g.jwks = jwks
	}
	return g.jwks.Keyfunc, nil
}

// Google encodes email_verified as a bool or the string "true".
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true")
	default:
		return false
	}
}
