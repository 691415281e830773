package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/metrics"
	"github.com/hireline/hireline/internal/model"
)

const testSecret = "middleware-test-secret-0123456789"

func newCodec(t *testing.T) *auth.TokenCodec {
	t.Helper()
	codec, err := auth.NewTokenCodec(testSecret)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	return codec
}

func mustIssue(t *testing.T, codec *auth.TokenCodec, sub string, role model.Role) string {
	t.Helper()
	token, err := codec.Issue(sub, sub+"@example.com", role)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func identityEcho(w http.ResponseWriter, r *http.Request) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"sub": id.UserID, "role": string(id.Role)})
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestAuthenticate(t *testing.T) {
	codec := newCodec(t)
	other, err := auth.NewTokenCodec("another-secret-0123456789abcdef")
	if err != nil {
		t.Fatal(err)
	}
	valid := mustIssue(t, codec, "user-1", model.RoleUser)

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantReason string
	}{
		{"valid bearer", "Bearer " + valid, http.StatusOK, ""},
		{"lower-case scheme", "bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized, "missing_token"},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized, "missing_token"},
		{"empty token", "Bearer ", http.StatusUnauthorized, "missing_token"},
		{"garbage", "Bearer not-a-token", http.StatusUnauthorized, "invalid_token"},
		{"foreign signature", "Bearer " + mustIssue(t, other, "user-1", model.RoleAdmin), http.StatusUnauthorized, "invalid_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			rec := metrics.NewInMemory()
			mw := Authenticate(AuthConfig{
				Logger:   slog.New(slog.NewJSONHandler(&logs, nil)),
				Verifier: codec,
				Metrics:  rec,
			})

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			mw(http.HandlerFunc(identityEcho)).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if !strings.Contains(w.Body.String(), `"sub":"user-1"`) {
					t.Errorf("identity not attached: %s", w.Body.String())
				}
				return
			}

			body := decodeError(t, w)
			if body.Code != CodeUnauthenticated {
				t.Errorf("code = %q, want %s", body.Code, CodeUnauthenticated)
			}
			if got := rec.Snapshot().AuthRejections[tt.wantReason]; got != 1 {
				t.Errorf("rejections[%s] = %d, want 1", tt.wantReason, got)
			}
			if strings.Contains(logs.String(), valid) {
				t.Error("token written to log")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	codec := newCodec(t)
	userToken := mustIssue(t, codec, "user-1", model.RoleUser)
	adminToken := mustIssue(t, codec, "admin-1", model.RoleAdmin)

	tests := []struct {
		name       string
		chain      func(http.Handler) http.Handler
		token      string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "admin passes",
			chain:      chain(Authenticate(AuthConfig{Verifier: codec}), RequireAdmin()),
			token:      adminToken,
			wantStatus: http.StatusOK,
		},
		{
			name:       "user forbidden",
			chain:      chain(Authenticate(AuthConfig{Verifier: codec}), RequireAdmin()),
			token:      userToken,
			wantStatus: http.StatusForbidden,
			wantCode:   CodeForbidden,
		},
		{
			name:       "user role passes user check",
			chain:      chain(Authenticate(AuthConfig{Verifier: codec}), RequireRole(model.RoleUser)),
			token:      userToken,
			wantStatus: http.StatusOK,
		},
		{
			name:       "no authenticate in front",
			chain:      RequireAdmin(),
			token:      adminToken,
			wantStatus: http.StatusUnauthorized,
			wantCode:   CodeUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			tt.chain(http.HandlerFunc(identityEcho)).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantCode != "" {
				if body := decodeError(t, w); body.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
				}
			}
		})
	}
}

func chain(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}
