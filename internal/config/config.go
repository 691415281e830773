// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables and must not be
// mutated after Load returns.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL). DatabaseURL is the privileged service connection;
	// DatabasePublicURL is an optional read-limited role used for public listings.
	DatabaseURL       string `env:"DATABASE_URL,required"`
	DatabasePublicURL string `env:"DATABASE_PUBLIC_URL"`

	// Cache (Redis). Optional; when empty rate limiting runs in-process.
	RedisURL string `env:"REDIS_URL"`

	// Object storage (Supabase Storage)
	SupabaseURL            string `env:"SUPABASE_URL,required"`
	SupabaseServiceRoleKey string `env:"SUPABASE_SERVICE_ROLE_KEY,required"`
	StorageBucket          string `env:"STORAGE_BUCKET" envDefault:"resumes"`

	// Session tokens
	JWTSecret string `env:"JWT_SECRET,required"`

	// Google sign-in
	GoogleClientID string `env:"GOOGLE_CLIENT_ID,required"`

	// Administrator credential. AdminPassword may be plaintext or an
	// argon2id PHC string.
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin@123"`

	// Region used to parse applicant phone numbers without a country code.
	PhoneDefaultRegion string `env:"PHONE_DEFAULT_REGION" envDefault:"US"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting (per client IP)
	RateLimitEnabled   bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitPerMinute int  `env:"RATE_LIMIT_PER_MINUTE" envDefault:"120"`
	RateLimitBurst     int  `env:"RATE_LIMIT_BURST" envDefault:"30"`

	// CORS configuration
	// Comma-separated list of allowed origins, or "*" to allow any origin.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Request body size limit in bytes for JSON endpoints (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	// Résumé upload limit in bytes (default 5MB)
	MaxResumeSize int64 `env:"MAX_RESUME_SIZE" envDefault:"5242880"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// PublicDatabaseURL returns the DSN used for public reads, falling back
// to the service DSN.
func (c *Config) PublicDatabaseURL() string {
	if c.DatabasePublicURL != "" {
		return c.DatabasePublicURL
	}
	return c.DatabaseURL
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.AdminEmail = strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	cfg.SupabaseURL = strings.TrimSuffix(cfg.SupabaseURL, "/")

	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 16 bytes")
	}
	if cfg.RateLimitPerMinute <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_BURST must be positive")
	}

	return cfg, nil
}
