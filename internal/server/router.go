package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hireline/hireline/internal/cache"
	"github.com/hireline/hireline/internal/handler"
	"github.com/hireline/hireline/internal/metrics"
	"github.com/hireline/hireline/internal/middleware"
	"github.com/hireline/hireline/internal/service"
)

// defaultBodyLimit applies when RouterConfig.MaxBodySize is unset.
const defaultBodyLimit = 1 << 20

// Services groups the application services the routes dispatch to.
type Services struct {
	Auth         *service.AuthService
	Jobs         *service.JobService
	Applications *service.ApplicationService
	Profiles     *service.ProfileService
	Admin        *service.AdminService
}

// RouterConfig carries everything NewRouter wires together.
type RouterConfig struct {
	Logger   *slog.Logger
	Services Services
	Verifier middleware.TokenVerifier
	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer

	// Readiness dependencies; nil means not configured.
	Database handler.HealthChecker
	Cache    handler.HealthChecker

	Limiter          cache.Limiter
	RateLimitEnabled bool

	CORSAllowedOrigins []string
	IsDevelopment      bool
	MaxBodySize        int64
	MaxResumeSize      int64
}

// NewRouter builds the HTTP routing tree.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	bodyLimit := cfg.MaxBodySize
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}

	base := handler.New(logger)
	health := handler.NewHealthHandler(logger, cfg.Database, cfg.Cache)
	metricsHandler := handler.NewMetricsHandler(cfg.Gatherer)
	authHandler := handler.NewAuthHandler(base, cfg.Services.Auth)
	jobHandler := handler.NewJobHandler(base, cfg.Services.Jobs)
	appHandler := handler.NewApplicationHandler(base, cfg.Services.Applications, cfg.MaxResumeSize)
	profileHandler := handler.NewProfileHandler(base, cfg.Services.Profiles)
	adminHandler := handler.NewAdminHandler(base, cfg.Services.Admin)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	authenticate := middleware.Authenticate(middleware.AuthConfig{
		Logger:   logger,
		Verifier: cfg.Verifier,
		Metrics:  recorder,
	})
	requireAdmin := middleware.RequireAdmin()
	jsonBody := middleware.MaxBodySize(bodyLimit)

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(corsCfg))

	r.Get("/health", base.Health)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	r.Route("/api", func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(middleware.RateLimitIP(middleware.RateLimitConfig{
				Logger:  logger,
				Limiter: cfg.Limiter,
				Enabled: cfg.RateLimitEnabled,
			}))
		}

		r.Get("/health", base.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Use(jsonBody)
			r.Post("/google", authHandler.Google)
			r.Post("/login", authHandler.Login)
			r.With(authenticate).Get("/me", authHandler.Me)
		})

		r.Route("/jobs", func(r chi.Router) {
			r.Use(jsonBody)
			r.Get("/", jobHandler.ListPublic)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/{id}", jobHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(requireAdmin)
					r.Get("/admin/all/list", jobHandler.ListAll)
					r.Post("/", jobHandler.Create)
					r.Put("/{id}", jobHandler.Update)
					r.Delete("/{id}", jobHandler.Delete)
					r.Patch("/{id}/status", jobHandler.SetStatus)
				})
			})
		})

		r.Route("/applications", func(r chi.Router) {
			r.Use(authenticate)
			// The multipart handler enforces its own, larger, limit.
			r.Post("/", appHandler.Submit)
			r.With(jsonBody).Get("/my-applications", appHandler.AppliedJobs)
			r.With(jsonBody).Get("/{id}/resume-url", appHandler.ResumeURL)
			r.With(jsonBody).Delete("/{id}/resume", appHandler.DeleteResume)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(authenticate, jsonBody)
			r.Get("/profile", profileHandler.Get)
			r.Put("/profile", profileHandler.Update)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate, requireAdmin, jsonBody)
			r.Get("/users", adminHandler.Users)
			r.Get("/applications", adminHandler.Applications)
			r.Get("/applications/{id}", adminHandler.Application)
			r.Patch("/applications/{id}", adminHandler.SetStatus)
			r.Get("/stats", adminHandler.Stats)
		})
	})

	r.NotFound(base.NotFound)
	r.MethodNotAllowed(base.MethodNotAllowed)

	return r
}
