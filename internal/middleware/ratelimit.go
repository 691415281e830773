package middleware

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/hireline/hireline/internal/cache"
)

// RateLimitConfig holds configuration for the per-IP rate limit.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter cache.Limiter
	Enabled bool
}

// RateLimitIP returns middleware that limits requests per client IP.
// Limiter errors fail open.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		if !cfg.Enabled || cfg.Limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)

			result, err := cfg.Limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.Error("rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, result)

			if !result.Allowed {
				retry := int(result.RetryAfter.Seconds())
				if retry < 1 {
					retry = 1
				}
				logger.Warn("rate limit exceeded",
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int("retry_after_seconds", retry),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, http.StatusTooManyRequests, CodeRateLimited,
					fmt.Sprintf("rate limit exceeded, retry after %d seconds", retry))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, res *cache.RateLimitResult) {
	if res.Limit <= 0 {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))
}

// clientIP returns the host part of RemoteAddr. Forwarding headers are
// only honoured through chi's RealIP, mounted ahead of this middleware,
// which assumes a trusted proxy in front of the service.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
