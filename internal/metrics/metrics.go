// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Sign-in outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// HTTP metrics
	ObserveRequest(method, route string, status int, duration time.Duration)

	// Authentication metrics
	IncSignIn(method, outcome string) // method: "google" or "password"
	IncUserProvisioned(method string)
	IncAuthRejected(reason string) // reason: "missing_token", "invalid_token", "forbidden"

	// Domain metrics
	IncJobMutation(op string) // op: "create", "update", "delete", "status"
	IncApplicationSubmitted()
	IncApplicationStatusChanged(status string)
}
