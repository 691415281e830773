package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hireline"

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	signIns          *prometheus.CounterVec
	usersProvisioned *prometheus.CounterVec
	authRejections   *prometheus.CounterVec
	jobMutations     *prometheus.CounterVec
	applications     prometheus.Counter
	statusChanges    *prometheus.CounterVec
}

// NewPrometheus creates a recorder and registers its collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	p := &PrometheusRecorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sign_ins_total",
			Help:      "Sign-in attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		usersProvisioned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_provisioned_total",
			Help:      "Users created on first sign-in.",
		}, []string{"method"}),
		authRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_rejections_total",
			Help:      "Requests rejected by access control, by reason.",
		}, []string{"reason"}),
		jobMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_mutations_total",
			Help:      "Job postings created, updated or deleted.",
		}, []string{"op"}),
		applications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_submitted_total",
			Help:      "Applications submitted.",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "application_status_changes_total",
			Help:      "Application review status changes, by new status.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		p.requests,
		p.requestDuration,
		p.signIns,
		p.usersProvisioned,
		p.authRejections,
		p.jobMutations,
		p.applications,
		p.statusChanges,
	)

	return p
}

// Handler returns the exposition handler for g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// ObserveRequest records a served request.
func (p *PrometheusRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	p.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncSignIn records a sign-in attempt.
func (p *PrometheusRecorder) IncSignIn(method, outcome string) {
	p.signIns.WithLabelValues(method, outcome).Inc()
}

// IncUserProvisioned records a newly created user.
func (p *PrometheusRecorder) IncUserProvisioned(method string) {
	p.usersProvisioned.WithLabelValues(method).Inc()
}

// IncAuthRejected records a request rejected by access control.
func (p *PrometheusRecorder) IncAuthRejected(reason string) {
	p.authRejections.WithLabelValues(reason).Inc()
}

// IncJobMutation records a job mutation.
func (p *PrometheusRecorder) IncJobMutation(op string) {
	p.jobMutations.WithLabelValues(op).Inc()
}

// IncApplicationSubmitted records a submitted application.
func (p *PrometheusRecorder) IncApplicationSubmitted() {
	p.applications.Inc()
}

// IncApplicationStatusChanged records a review status change.
func (p *PrometheusRecorder) IncApplicationStatusChanged(status string) {
	p.statusChanges.WithLabelValues(status).Inc()
}

var (
	_ Recorder = (*PrometheusRecorder)(nil)
	_ Recorder = (*InMemoryRecorder)(nil)
	_ Recorder = (*NoopRecorder)(nil)
)
