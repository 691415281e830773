package identity

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testClientID = "client-123.apps.googleusercontent.com"

func newGoogleServer(t *testing.T, tokenInfo, userInfo http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/tokeninfo", tokenInfo)
	mux.HandleFunc("/userinfo", userInfo)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func okTokenInfo(aud string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"aud":"` + aud + `","azp":"` + aud + `","expires_in":"3599"}`))
	}
}

func okUserInfo(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-abc" {
			t.Errorf("unexpected Authorization header: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"g-1","email":"A@X.com","email_verified":true,"name":"Ann","picture":"https://pics/ann.png"}`))
	}
}

func newClient(srv *httptest.Server) *Google {
	return NewGoogle(Config{
		ClientID:     testClientID,
		TokenInfoURL: srv.URL + "/tokeninfo",
		UserInfoURL:  srv.URL + "/userinfo",
		HTTPClient:   srv.Client(),
	})
}

func TestProfileFromAccessToken(t *testing.T) {
	srv := newGoogleServer(t, okTokenInfo(testClientID), okUserInfo(t))

	p, err := newClient(srv).ProfileFromAccessToken(context.Background(), "access-abc")
	if err != nil {
		t.Fatalf("ProfileFromAccessToken failed: %v", err)
	}

	if p.Subject != "g-1" || p.Email != "A@X.com" || p.Name != "Ann" || p.Picture != "https://pics/ann.png" {
		t.Errorf("unexpected profile: %+v", p)
	}
	if !p.EmailVerified {
		t.Error("expected email to be verified")
	}
}

func TestProfileFromAccessToken_EmailVerifiedEncodings(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"bool true", `true`, true},
		{"string true", `"true"`, true},
		{"string false", `"false"`, false},
		{"bool false", `false`, false},
		{"absent", `null`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userInfo := func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"sub":"g-2","email":"b@x.com","email_verified":` + tt.raw + `,"name":"Bo"}`))
			}
			srv := newGoogleServer(t, okTokenInfo(testClientID), userInfo)

			p, err := newClient(srv).ProfileFromAccessToken(context.Background(), "access-abc")
			if err != nil {
				t.Fatalf("ProfileFromAccessToken failed: %v", err)
			}
			if p.EmailVerified != tt.want {
				t.Errorf("EmailVerified = %v, want %v", p.EmailVerified, tt.want)
			}
		})
	}
}

func TestProfileFromAccessToken_TokenInfoFailureIsAdvisory(t *testing.T) {
	failing := func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_token"}`, http.StatusBadRequest)
	}
	srv := newGoogleServer(t, failing, okUserInfo(t))

	p, err := newClient(srv).ProfileFromAccessToken(context.Background(), "access-abc")
	if err != nil {
		t.Fatalf("expected userinfo to decide, got %v", err)
	}
	if p.Subject != "g-1" {
		t.Errorf("unexpected subject %q", p.Subject)
	}
}

func TestProfileFromAccessToken_WrongAudience(t *testing.T) {
	srv := newGoogleServer(t, okTokenInfo("someone-else"), okUserInfo(t))

	_, err := newClient(srv).ProfileFromAccessToken(context.Background(), "access-abc")
	if !errors.Is(err, ErrVerification) {
		t.Errorf("expected ErrVerification, got %v", err)
	}
}

func TestProfileFromAccessToken_UserInfoRejected(t *testing.T) {
	rejecting := func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_token"}`, http.StatusUnauthorized)
	}
	srv := newGoogleServer(t, okTokenInfo(testClientID), rejecting)

	_, err := newClient(srv).ProfileFromAccessToken(context.Background(), "access-abc")
	if !errors.Is(err, ErrVerification) {
		t.Errorf("expected ErrVerification, got %v", err)
	}
}

func TestProfileFromAccessToken_Empty(t *testing.T) {
	g := NewGoogle(Config{ClientID: testClientID})
	if _, err := g.ProfileFromAccessToken(context.Background(), ""); !errors.Is(err, ErrVerification) {
		t.Errorf("expected ErrVerification, got %v", err)
	}
}

type idTokenFixture struct {
	key *rsa.PrivateKey
	now time.Time
}

func newIDTokenFixture(t *testing.T) *idTokenFixture {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return &idTokenFixture{key: key, now: time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)}
}

func (f *idTokenFixture) client() *Google {
	return NewGoogle(Config{
		ClientID: testClientID,
		KeyFunc: func(*jwt.Token) (any, error) {
			return &f.key.PublicKey, nil
		},
		Now: func() time.Time { return f.now },
	})
}

func (f *idTokenFixture) sign(t *testing.T, method jwt.SigningMethod, key any, mutate func(*idTokenClaims)) string {
	t.Helper()
	claims := &idTokenClaims{
		Email:         "b@x.com",
		EmailVerified: true,
		Name:          "Bea",
		Picture:       "https://pics/bea.png",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://accounts.google.com",
			Subject:   "g-2",
			Audience:  jwt.ClaimStrings{testClientID},
			IssuedAt:  jwt.NewNumericDate(f.now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(f.now.Add(time.Hour)),
		},
	}
	if mutate != nil {
		mutate(claims)
	}
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign id token: %v", err)
	}
	return s
}

func TestProfileFromIDToken(t *testing.T) {
	f := newIDTokenFixture(t)
	token := f.sign(t, jwt.SigningMethodRS256, f.key, nil)

	p, err := f.client().ProfileFromIDToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ProfileFromIDToken failed: %v", err)
	}
	if p.Subject != "g-2" || p.Email != "b@x.com" || p.Name != "Bea" || !p.EmailVerified {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestProfileFromIDToken_Rejects(t *testing.T) {
	f := newIDTokenFixture(t)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "a.b.c"},
		{"wrong audience", f.sign(t, jwt.SigningMethodRS256, f.key, func(c *idTokenClaims) {
			c.Audience = jwt.ClaimStrings{"another-client"}
		})},
		{"wrong issuer", f.sign(t, jwt.SigningMethodRS256, f.key, func(c *idTokenClaims) {
			c.Issuer = "https://evil.example"
		})},
		{"expired", f.sign(t, jwt.SigningMethodRS256, f.key, func(c *idTokenClaims) {
			c.ExpiresAt = jwt.NewNumericDate(f.now.Add(-time.Minute))
		})},
		{"other signer", f.sign(t, jwt.SigningMethodRS256, otherKey, nil)},
		{"hmac algorithm", f.sign(t, jwt.SigningMethodHS256, []byte("shared"), nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.client().ProfileFromIDToken(context.Background(), tt.token)
			if !errors.Is(err, ErrVerification) {
				t.Errorf("expected ErrVerification, got %v", err)
			}
		})
	}
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{true, true},
		{false, false},
		{"true", true},
		{"TRUE", true},
		{"false", false},
		{nil, false},
		{1.0, false},
	}
	for _, tt := range tests {
		if got := truthy(tt.in); got != tt.want {
			t.Errorf("truthy(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
