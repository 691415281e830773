package middleware

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// apiHeaders are expected on every response in every environment.
var apiHeaders = map[string]string{
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "DENY",
	"X-XSS-Protection":             "0",
	"Referrer-Policy":              "strict-origin-when-cross-origin",
	"Content-Security-Policy":      "default-src 'none'; frame-ancestors 'none'",
	"Cross-Origin-Opener-Policy":   "same-origin",
	"Cross-Origin-Resource-Policy": "same-origin",
	"Cache-Control":                "no-store",
}

func TestSecurity_Headers(t *testing.T) {
	tests := []struct {
		name     string
		dev      bool
		status   int
		wantHSTS bool
	}{
		{"production job listing", false, http.StatusOK, true},
		{"production auth failure", false, http.StatusUnauthorized, true},
		{"development", true, http.StatusOK, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := Security(SecurityConfig{IsDevelopment: tt.dev})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))

			for name, want := range apiHeaders {
				if got := rec.Header().Get(name); got != want {
					t.Errorf("%s = %q, want %q", name, got, want)
				}
			}
			if rec.Header().Get("Permissions-Policy") == "" {
				t.Error("Permissions-Policy missing")
			}

			hsts := rec.Header().Get("Strict-Transport-Security")
			if tt.wantHSTS && !strings.HasPrefix(hsts, "max-age=31536000") {
				t.Errorf("HSTS = %q", hsts)
			}
			if !tt.wantHSTS && hsts != "" {
				t.Errorf("HSTS sent in development: %q", hsts)
			}
		})
	}
}

// Session tokens travel in response bodies, so no response may be cached
// even when a handler sets its own caching headers first.
func TestSecurity_NoStoreOverridesEarlierValue(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"token":"t"}`))
	})
	h := Security(SecurityConfig{})(inner)

	rec := httptest.NewRecorder()
	rec.Header().Set("Cache-Control", "public, max-age=600")
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/google", nil))

	if got := rec.Header().Values("Cache-Control"); len(got) != 1 || got[0] != "no-store" {
		t.Errorf("Cache-Control = %v, want [no-store]", got)
	}
}

func TestMaxBodySize_DeclaredLength(t *testing.T) {
	tests := []struct {
		name       string
		limit      int64
		body       string
		wantStatus int
	}{
		{"profile update under limit", 64, `{"name":"Ada"}`, http.StatusOK},
		{"exactly at limit", 14, `{"name":"Ada"}`, http.StatusOK},
		{"one byte over", 13, `{"name":"Ada"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reached := false
			h := MaxBodySize(tt.limit)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				reached = true
				_, _ = io.Copy(io.Discard, r.Body)
			}))

			req := httptest.NewRequest(http.MethodPut, "/api/user/profile", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if !reached {
					t.Error("handler not called")
				}
				return
			}

			if reached {
				t.Error("handler called for oversized body")
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			var body struct {
				Error string `json:"error"`
				Code  string `json:"code"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != CodeTooLarge {
				t.Errorf("code = %q, want %q", body.Code, CodeTooLarge)
			}
			if body.Error != "request body exceeds 13 bytes" {
				t.Errorf("error = %q", body.Error)
			}
		})
	}
}

func TestMaxBodySize_ChunkedBodyCapped(t *testing.T) {
	var readErr error
	h := MaxBodySize(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/jobs", strings.NewReader(`{"title":"Backend"}`))
	req.ContentLength = -1
	h.ServeHTTP(httptest.NewRecorder(), req)

	var maxErr *http.MaxBytesError
	if !errors.As(readErr, &maxErr) {
		t.Fatalf("read err = %v, want *http.MaxBytesError", readErr)
	}
	if maxErr.Limit != 8 {
		t.Errorf("limit = %d, want 8", maxErr.Limit)
	}
}
