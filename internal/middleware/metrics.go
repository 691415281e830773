package middleware

import (
	"net/http"
	"time"

	"github.com/hireline/hireline/internal/metrics"
)

// Metrics records request count and latency by method, route pattern and
// status. Unmatched requests are grouped under "unmatched".
func Metrics(recorder metrics.Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			route := routePattern(r)
			if route == "" {
				route = "unmatched"
			}
			recorder.ObserveRequest(r.Method, route, wrapped.status, time.Since(start))
		})
	}
}
