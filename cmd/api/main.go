// Package main is the entrypoint for the Hireline API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hireline/hireline/internal/auth"
	"github.com/hireline/hireline/internal/cache"
	"github.com/hireline/hireline/internal/config"
	"github.com/hireline/hireline/internal/handler"
	"github.com/hireline/hireline/internal/identity"
	"github.com/hireline/hireline/internal/metrics"
	"github.com/hireline/hireline/internal/repository"
	"github.com/hireline/hireline/internal/server"
	"github.com/hireline/hireline/internal/service"
	"github.com/hireline/hireline/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL, cfg.PublicDatabaseURL())
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL, cfg.DatabasePublicURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database", "separate_public_role", cfg.DatabasePublicURL != "")

	// Redis is optional; without it the rate limiter is per process.
	var (
		limiter     cache.Limiter
		cacheHealth handler.HealthChecker
		cacheClient *cache.Cache
	)
	if cfg.RedisURL != "" {
		cacheClient, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		limiter = cache.NewRedisLimiter(cacheClient, cfg.RateLimitPerMinute, cfg.RateLimitBurst)
		cacheHealth = cacheClient
		logger.Info("connected to Redis")
	} else {
		local := cache.NewLocalLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
		defer local.Stop()
		limiter = local
		logger.Warn("REDIS_URL not set, rate limiting is per process")
	}

	codec, err := auth.NewTokenCodec(cfg.JWTSecret)
	if err != nil {
		logger.Error("failed to create token codec", "error", err)
		os.Exit(1)
	}
	if !auth.IsPasswordHash(cfg.AdminPassword) {
		logger.Warn("ADMIN_PASSWORD is plaintext, consider an argon2id hash")
	}

	google := identity.NewGoogle(identity.Config{
		ClientID: cfg.GoogleClientID,
		Logger:   logger,
	})

	objects := storage.New(storage.Config{
		BaseURL:    cfg.SupabaseURL,
		ServiceKey: cfg.SupabaseServiceRoleKey,
		Bucket:     cfg.StorageBucket,
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(registry)

	services := server.Services{
		Auth: service.NewAuthService(repo, codec, google, service.AuthConfig{
			AdminEmail:    cfg.AdminEmail,
			AdminPassword: cfg.AdminPassword,
			Logger:        logger,
			Metrics:       recorder,
		}),
		Jobs: service.NewJobService(repo, recorder),
		Applications: service.NewApplicationService(repo, repo, objects, service.ApplicationConfig{
			PhoneRegion:   cfg.PhoneDefaultRegion,
			MaxResumeSize: cfg.MaxResumeSize,
			Logger:        logger,
			Metrics:       recorder,
		}),
		Profiles: service.NewProfileService(repo, repo),
		Admin:    service.NewAdminService(repo, logger, recorder),
	}

	router := server.NewRouter(server.RouterConfig{
		Logger:             logger,
		Services:           services,
		Verifier:           codec,
		Metrics:            recorder,
		Gatherer:           registry,
		Database:           repo,
		Cache:              cacheHealth,
		Limiter:            limiter,
		RateLimitEnabled:   cfg.RateLimitEnabled,
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		IsDevelopment:      cfg.IsDevelopment(),
		MaxBodySize:        cfg.MaxRequestBodySize,
		MaxResumeSize:      cfg.MaxResumeSize,
	})

	srv := server.New(router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: the database closes last.
	srv.OnShutdown("database", func(context.Context) error {
		repo.Close()
		return nil
	})
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}
	srv.OnShutdown("google-jwks", func(context.Context) error {
		google.Close()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"bucket", cfg.StorageBucket,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "hireline-api")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// redactURL drops the password of a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError removes connection secrets from an error message.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
