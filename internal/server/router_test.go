package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/cache"
	"github.com/hireline/hireline/internal/identity"
	"github.com/hireline/hireline/internal/model"
	"github.com/hireline/hireline/internal/service"
	"github.com/hireline/hireline/internal/testutil/fake"
)

const (
	testSecret        = "router-test-secret-0123456789"
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "admin@123"
)

type testEnv struct {
	router  http.Handler
	store   *fake.Store
	objects *fake.Objects
	idp     *fake.IdentityProvider
	codec   *auth.TokenCodec
}

func newTestEnv(t *testing.T, mutate ...func(*RouterConfig)) *testEnv {
	t.Helper()

	codec, err := auth.NewTokenCodec(testSecret)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}

	env := &testEnv{
		store:   fake.NewStore(),
		objects: fake.NewObjects(),
		idp: &fake.IdentityProvider{
			AccessTokens: map[string]identity.Profile{},
			IDTokens:     map[string]identity.Profile{},
		},
		codec: codec,
	}

	cfg := RouterConfig{
		Services: Services{
			Auth: service.NewAuthService(env.store, codec, env.idp, service.AuthConfig{
				AdminEmail:    testAdminEmail,
				AdminPassword: testAdminPassword,
			}),
			Jobs:         service.NewJobService(env.store, nil),
			Applications: service.NewApplicationService(env.store, env.store, env.objects, service.ApplicationConfig{PhoneRegion: "US"}),
			Profiles:     service.NewProfileService(env.store, env.store),
			Admin:        service.NewAdminService(env.store, nil, nil),
		},
		Verifier:           codec,
		CORSAllowedOrigins: []string{"*"},
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	env.router = NewRouter(cfg)
	return env
}

// userToken creates a user and returns a session token for it.
func (e *testEnv) userToken(t *testing.T, email string) (string, string) {
	t.Helper()
	id := uuid.NewString()
	now := time.Now()
	if err := e.store.CreateUser(t.Context(), &model.User{
		ID: id, Email: email, Name: "Test User", CreatedAt: now, UpdatedAt: now,
	}); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := e.codec.Issue(id, email, model.RoleUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return id, token
}

// adminToken logs in with the configured administrator credential.
func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/auth/login", "", jsonBody(map[string]string{
		"email": testAdminEmail, "password": testAdminPassword,
	}), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login: status %d body %s", rec.Code, rec.Body.String())
	}
	var session struct {
		Token string `json:"token"`
	}
	decode(t, rec, &session)
	return session.Token
}

func (e *testEnv) addJob(t *testing.T, active bool) string {
	t.Helper()
	id := uuid.NewString()
	now := time.Now()
	e.store.AddJob(&model.Job{
		ID: id, Title: "Backend Engineer", Description: "Build the API of the job board.",
		Requirements: "Go", Qualifications: "BSc", Location: "Remote",
		IsActive: active, CreatedAt: now, UpdatedAt: now,
	})
	return id
}

func (e *testEnv) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func jsonBody(v any) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	decode(t, rec, &body)
	return body.Code
}

// applicationForm builds a multipart body. A nil file omits the résumé part.
func applicationForm(t *testing.T, fields map[string]string, file []byte, fileType string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if file != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="resume"; filename="cv.pdf"`)
		h.Set("Content-Type", fileType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		_, _ = part.Write(file)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func validFields(jobID string) map[string]string {
	return map[string]string{
		"job_id": jobID,
		"name":   "Ada Lovelace",
		"email":  "ada@example.com",
		"phone":  "(650) 253-0000",
	}
}

var pdf = []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n%%EOF\n")

func TestOperationalEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health", "/api/health", "/healthz", "/readyz"} {
		rec := env.do(t, http.MethodGet, path, "", nil, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}

	rec := env.do(t, http.MethodGet, "/health", "", nil, "")
	if strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
		t.Errorf("/health body = %s", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/nope", "", nil, "")
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "NOT_FOUND" {
		t.Errorf("unknown route = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/health", "", nil, "")
	if rec.Code != http.StatusMethodNotAllowed || errorCode(t, rec) != "METHOD_NOT_ALLOWED" {
		t.Errorf("wrong method = %d %s", rec.Code, rec.Body.String())
	}
}

func TestGoogleSignInThenMe(t *testing.T) {
	env := newTestEnv(t)
	env.idp.AccessTokens["ya29.grace"] = identity.Profile{
		Subject: "g-1", Email: "grace@example.com", EmailVerified: true, Name: "Grace",
	}

	rec := env.do(t, http.MethodPost, "/api/auth/google", "", jsonBody(map[string]string{"accessToken": "ya29.grace"}), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("google sign-in = %d %s", rec.Code, rec.Body.String())
	}
	var session struct {
		Token string           `json:"token"`
		User  model.PublicUser `json:"user"`
	}
	decode(t, rec, &session)
	if session.Token == "" || session.User.Email != "grace@example.com" {
		t.Fatalf("session = %+v", session)
	}

	rec = env.do(t, http.MethodGet, "/api/auth/me", session.Token, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("me = %d %s", rec.Code, rec.Body.String())
	}
	var me struct {
		User map[string]any `json:"user"`
	}
	decode(t, rec, &me)
	if me.User["id"] != session.User.ID || me.User["is_admin"] != false {
		t.Errorf("me = %+v", me.User)
	}
	if _, ok := me.User["google_id"]; ok {
		t.Error("me exposes google_id")
	}
}

func TestAuthErrors(t *testing.T) {
	env := newTestEnv(t)
	env.idp.AccessTokens["ya29.unverified"] = identity.Profile{Subject: "g-2", Email: "x@example.com"}

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		body     io.Reader
		wantCode int
		wantErr  string
	}{
		{"me without token", http.MethodGet, "/api/auth/me", "", nil, 401, "UNAUTHENTICATED"},
		{"me with garbage token", http.MethodGet, "/api/auth/me", "not.a.jwt", nil, 401, "UNAUTHENTICATED"},
		{"google without credentials", http.MethodPost, "/api/auth/google", "", jsonBody(map[string]string{}), 400, "BAD_REQUEST"},
		{"google unverified email", http.MethodPost, "/api/auth/google", "", jsonBody(map[string]string{"accessToken": "ya29.unverified"}), 401, "IDENTITY_VERIFICATION_FAILED"},
		{"google malformed body", http.MethodPost, "/api/auth/google", "", strings.NewReader("{"), 400, "INVALID_JSON"},
		{"login wrong password", http.MethodPost, "/api/auth/login", "", jsonBody(map[string]string{"email": testAdminEmail, "password": "nope"}), 401, "INVALID_CREDENTIALS"},
		{"login missing fields", http.MethodPost, "/api/auth/login", "", jsonBody(map[string]string{"email": testAdminEmail}), 400, "BAD_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, tt.method, tt.path, tt.token, tt.body, "application/json")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if got := errorCode(t, rec); got != tt.wantErr {
				t.Errorf("code = %s, want %s", got, tt.wantErr)
			}
		})
	}
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.userToken(t, "user@example.com")

	paths := []string{"/api/admin/users", "/api/admin/applications", "/api/admin/stats", "/api/jobs/admin/all/list"}
	for _, path := range paths {
		rec := env.do(t, http.MethodGet, path, userToken, nil, "")
		if rec.Code != http.StatusForbidden || errorCode(t, rec) != "FORBIDDEN" {
			t.Errorf("GET %s as user = %d %s", path, rec.Code, rec.Body.String())
		}
		rec = env.do(t, http.MethodGet, path, "", nil, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s anonymous = %d", path, rec.Code)
		}
	}

	adminToken := env.adminToken(t)
	for _, path := range paths {
		rec := env.do(t, http.MethodGet, path, adminToken, nil, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s as admin = %d %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestJobLifecycle(t *testing.T) {
	env := newTestEnv(t)
	adminToken := env.adminToken(t)
	_, userToken := env.userToken(t, "user@example.com")

	rec := env.do(t, http.MethodPost, "/api/jobs", adminToken, jsonBody(map[string]any{
		"title":          "Platform Engineer",
		"description":    "Run the <b>platform</b><script>alert(1)</script>",
		"requirements":   "Go, Postgres",
		"qualifications": "BSc",
		"location":       "Berlin",
	}), "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Job model.Job `json:"job"`
	}
	decode(t, rec, &created)
	if !created.Job.IsActive {
		t.Error("new job should default to active")
	}
	if strings.Contains(created.Job.Description, "<script>") {
		t.Errorf("description not sanitized: %q", created.Job.Description)
	}
	jobPath := "/api/jobs/" + created.Job.ID

	rec = env.do(t, http.MethodPost, "/api/jobs", userToken, jsonBody(map[string]any{"title": "x"}), "application/json")
	if rec.Code != http.StatusForbidden {
		t.Errorf("create as user = %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/jobs", adminToken, jsonBody(map[string]any{"title": "x"}), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid create = %d", rec.Code)
	}
	var invalid struct {
		Details map[string]string `json:"details"`
	}
	decode(t, rec, &invalid)
	if invalid.Details["title"] == "" || invalid.Details["description"] == "" {
		t.Errorf("details = %v", invalid.Details)
	}

	rec = env.do(t, http.MethodPatch, jobPath+"/status", adminToken, jsonBody(map[string]any{"is_active": false}), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/jobs", "", nil, "")
	var list struct {
		Jobs []model.Job `json:"jobs"`
	}
	decode(t, rec, &list)
	if len(list.Jobs) != 0 {
		t.Errorf("public list shows inactive job: %+v", list.Jobs)
	}

	if rec := env.do(t, http.MethodGet, jobPath, userToken, nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("inactive job for user = %d, want 404", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, jobPath, adminToken, nil, ""); rec.Code != http.StatusOK {
		t.Errorf("inactive job for admin = %d, want 200", rec.Code)
	}

	rec = env.do(t, http.MethodPut, jobPath, adminToken, jsonBody(map[string]any{"location": "Remote", "is_active": true}), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("update = %d %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &created)
	if created.Job.Location != "Remote" || !created.Job.IsActive {
		t.Errorf("updated job = %+v", created.Job)
	}

	if rec := env.do(t, http.MethodPut, jobPath, adminToken, jsonBody(map[string]any{}), "application/json"); rec.Code != http.StatusBadRequest {
		t.Errorf("empty update = %d, want 400", rec.Code)
	}

	if rec := env.do(t, http.MethodDelete, jobPath, adminToken, nil, ""); rec.Code != http.StatusOK {
		t.Errorf("delete = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, jobPath, adminToken, nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete = %d, want 404", rec.Code)
	}
}

func TestApplicationFlow(t *testing.T) {
	env := newTestEnv(t)
	jobID := env.addJob(t, true)
	_, aliceToken := env.userToken(t, "alice@example.com")
	_, bobToken := env.userToken(t, "bob@example.com")

	body, ct := applicationForm(t, validFields(jobID), pdf, "application/pdf")
	rec := env.do(t, http.MethodPost, "/api/applications", aliceToken, body, ct)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit = %d %s", rec.Code, rec.Body.String())
	}
	var submitted struct {
		Application model.Application `json:"application"`
	}
	decode(t, rec, &submitted)
	app := submitted.Application
	if app.Status != model.StatusPending || app.Phone != "+16502530000" {
		t.Errorf("application = %+v", app)
	}
	if app.ResumePath == nil || !env.objects.Has(*app.ResumePath) {
		t.Fatalf("resume not stored: %v", app.ResumePath)
	}

	body, ct = applicationForm(t, validFields(jobID), pdf, "application/pdf")
	rec = env.do(t, http.MethodPost, "/api/applications", aliceToken, body, ct)
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "CONFLICT" {
		t.Errorf("duplicate = %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/applications/my-applications", aliceToken, nil, "")
	var mine struct {
		Jobs []model.Job `json:"jobs"`
	}
	decode(t, rec, &mine)
	if len(mine.Jobs) != 1 || mine.Jobs[0].ID != jobID {
		t.Errorf("my applications = %+v", mine.Jobs)
	}

	urlPath := "/api/applications/" + app.ID + "/resume-url"
	rec = env.do(t, http.MethodGet, urlPath, aliceToken, nil, "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "expires=600") {
		t.Errorf("owner resume url = %d %s", rec.Code, rec.Body.String())
	}
	if rec := env.do(t, http.MethodGet, urlPath, bobToken, nil, ""); rec.Code != http.StatusForbidden {
		t.Errorf("other user resume url = %d, want 403", rec.Code)
	}
	adminToken := env.adminToken(t)
	if rec := env.do(t, http.MethodGet, urlPath, adminToken, nil, ""); rec.Code != http.StatusOK {
		t.Errorf("admin resume url = %d", rec.Code)
	}

	statusPath := "/api/admin/applications/" + app.ID
	rec = env.do(t, http.MethodPatch, statusPath, adminToken, jsonBody(map[string]string{"status": "Approved"}), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &submitted)
	if submitted.Application.Status != model.StatusApproved {
		t.Errorf("status = %s", submitted.Application.Status)
	}
	rec = env.do(t, http.MethodPatch, statusPath, adminToken, jsonBody(map[string]string{"status": "hired"}), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad status = %d", rec.Code)
	}

	if rec := env.do(t, http.MethodGet, statusPath, adminToken, nil, ""); rec.Code != http.StatusOK {
		t.Errorf("admin application = %d", rec.Code)
	}

	if rec := env.do(t, http.MethodDelete, "/api/applications/"+app.ID+"/resume", bobToken, nil, ""); rec.Code != http.StatusForbidden {
		t.Errorf("other user delete resume = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/api/applications/"+app.ID+"/resume", aliceToken, nil, ""); rec.Code != http.StatusOK {
		t.Errorf("delete resume = %d", rec.Code)
	}
	if env.objects.Len() != 0 {
		t.Errorf("objects left after delete: %d", env.objects.Len())
	}
	if rec := env.do(t, http.MethodGet, urlPath, aliceToken, nil, ""); rec.Code != http.StatusNotFound {
		t.Errorf("resume url after delete = %d, want 404", rec.Code)
	}
}

func TestApplicationRejections(t *testing.T) {
	env := newTestEnv(t)
	jobID := env.addJob(t, true)
	_, token := env.userToken(t, "carol@example.com")

	missingName := validFields(jobID)
	delete(missingName, "name")

	tests := []struct {
		name     string
		fields   map[string]string
		file     []byte
		fileType string
		wantCode int
	}{
		{"non-pdf content type", validFields(jobID), []byte("hello"), "text/plain", http.StatusBadRequest},
		{"pdf type without magic", validFields(jobID), []byte("<html></html>"), "application/pdf", http.StatusBadRequest},
		{"missing file", validFields(jobID), nil, "", http.StatusBadRequest},
		{"missing name", missingName, pdf, "application/pdf", http.StatusBadRequest},
		{"unknown job", validFields(uuid.NewString()), pdf, "application/pdf", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := applicationForm(t, tt.fields, tt.file, tt.fileType)
			rec := env.do(t, http.MethodPost, "/api/applications", token, body, ct)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantCode, rec.Body.String())
			}
			if env.objects.Len() != 0 {
				t.Errorf("objects stored after rejection: %d", env.objects.Len())
			}
			if n := len(env.store.Applications()); n != 0 {
				t.Errorf("applications stored after rejection: %d", n)
			}
		})
	}

	rec := env.do(t, http.MethodPost, "/api/applications", token, strings.NewReader(`{"job_id":"x"}`), "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("json body = %d, want 400", rec.Code)
	}
}

func TestApplicationResumeOverLimit(t *testing.T) {
	env := newTestEnv(t)
	jobID := env.addJob(t, true)
	_, token := env.userToken(t, "erin@example.com")

	tests := []struct {
		name string
		over int
	}{
		{"one byte over", 1},
		{"within request slack", 200 << 10},
		{"past request slack", 2 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := append([]byte("%PDF-"), bytes.Repeat([]byte("x"), service.MaxResumeSize-5+tt.over)...)
			body, ct := applicationForm(t, validFields(jobID), file, "application/pdf")
			rec := env.do(t, http.MethodPost, "/api/applications", token, body, ct)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
			var resp struct {
				Code    string            `json:"code"`
				Details map[string]string `json:"details"`
			}
			decode(t, rec, &resp)
			if resp.Code != "BAD_REQUEST" {
				t.Errorf("code = %q, want BAD_REQUEST", resp.Code)
			}
			if resp.Details["resume"] != "file exceeds 5242880 bytes" {
				t.Errorf("resume detail = %q", resp.Details["resume"])
			}
			if env.objects.Len() != 0 {
				t.Errorf("objects stored: %d", env.objects.Len())
			}
		})
	}
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.userToken(t, "dave@example.com")

	rec := env.do(t, http.MethodGet, "/api/user/profile", token, nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("profile = %d %s", rec.Code, rec.Body.String())
	}
	var profile struct {
		Profile model.Profile `json:"profile"`
	}
	decode(t, rec, &profile)
	if profile.Profile.Email != "dave@example.com" {
		t.Errorf("profile = %+v", profile.Profile)
	}

	rec = env.do(t, http.MethodPut, "/api/user/profile", token, jsonBody(map[string]string{"name": "  David  "}), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("rename = %d %s", rec.Code, rec.Body.String())
	}
	var renamed struct {
		User model.PublicUser `json:"user"`
	}
	decode(t, rec, &renamed)
	if renamed.User.Name != "David" {
		t.Errorf("name = %q", renamed.User.Name)
	}

	for _, short := range []string{"D", "  D  ", "   "} {
		rec = env.do(t, http.MethodPut, "/api/user/profile", token, jsonBody(map[string]string{"name": short}), "application/json")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("name %q = %d, want 400", short, rec.Code)
			continue
		}
		var resp struct {
			Details map[string]string `json:"details"`
		}
		decode(t, rec, &resp)
		if resp.Details["name"] == "" {
			t.Errorf("name %q: expected details.name, got %s", short, rec.Body.String())
		}
	}
}

func TestRateLimit(t *testing.T) {
	limiter := cache.NewLocalLimiter(60, 1)
	t.Cleanup(limiter.Stop)

	env := newTestEnv(t, func(cfg *RouterConfig) {
		cfg.Limiter = limiter
		cfg.RateLimitEnabled = true
	})

	first := env.do(t, http.MethodGet, "/api/jobs", "", nil, "")
	if first.Code != http.StatusOK {
		t.Fatalf("first = %d", first.Code)
	}
	second := env.do(t, http.MethodGet, "/api/jobs", "", nil, "")
	if second.Code != http.StatusTooManyRequests || errorCode(t, second) != "RATE_LIMITED" {
		t.Errorf("second = %d %s", second.Code, second.Body.String())
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}

	// Health checks sit outside /api and are never limited.
	if rec := env.do(t, http.MethodGet, "/healthz", "", nil, ""); rec.Code != http.StatusOK {
		t.Errorf("healthz under limit = %d", rec.Code)
	}
}
