package handler

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hireline/hireline/internal/metrics"
)

// MetricsHandler exposes the Prometheus registry.
type MetricsHandler struct {
	exposition http.Handler
}

// NewMetricsHandler creates a new MetricsHandler. A nil gatherer makes
// the endpoint answer 503.
func NewMetricsHandler(g prometheus.Gatherer) *MetricsHandler {
	if g == nil {
		return &MetricsHandler{}
	}
	return &MetricsHandler{exposition: metrics.Handler(g)}
}

// Metrics serves GET /metrics in the Prometheus text format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.exposition == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	h.exposition.ServeHTTP(w, r)
}
