package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// ObserveRequest is a no-op.
func (n *NoopRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {}

// IncSignIn is a no-op.
func (n *NoopRecorder) IncSignIn(method, outcome string) {}

// IncUserProvisioned is a no-op.
func (n *NoopRecorder) IncUserProvisioned(method string) {}

// IncAuthRejected is a no-op.
func (n *NoopRecorder) IncAuthRejected(reason string) {}

// IncJobMutation is a no-op.
func (n *NoopRecorder) IncJobMutation(op string) {}

// IncApplicationSubmitted is a no-op.
func (n *NoopRecorder) IncApplicationSubmitted() {}

// IncApplicationStatusChanged is a no-op.
func (n *NoopRecorder) IncApplicationStatusChanged(status string) {}
