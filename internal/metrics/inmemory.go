package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Requests              uint64
	RequestDurationNs     int64
	SignIns               map[string]uint64 // keyed by "method/outcome"
	UsersProvisioned      map[string]uint64
	AuthRejections        map[string]uint64
	JobMutations          map[string]uint64
	ApplicationsSubmitted uint64
	StatusChanges         map[string]uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	requests              uint64
	requestDurationNs     int64
	applicationsSubmitted uint64

	mu               sync.Mutex
	signIns          map[string]uint64
	usersProvisioned map[string]uint64
	authRejections   map[string]uint64
	jobMutations     map[string]uint64
	statusChanges    map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		signIns:          make(map[string]uint64),
		usersProvisioned: make(map[string]uint64),
		authRejections:   make(map[string]uint64),
		jobMutations:     make(map[string]uint64),
		statusChanges:    make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		Requests:              atomic.LoadUint64(&m.requests),
		RequestDurationNs:     atomic.LoadInt64(&m.requestDurationNs),
		SignIns:               copyCounts(m.signIns),
		UsersProvisioned:      copyCounts(m.usersProvisioned),
		AuthRejections:        copyCounts(m.authRejections),
		JobMutations:          copyCounts(m.jobMutations),
		ApplicationsSubmitted: atomic.LoadUint64(&m.applicationsSubmitted),
		StatusChanges:         copyCounts(m.statusChanges),
	}
}

// ObserveRequest records a served request.
func (m *InMemoryRecorder) ObserveRequest(method, route string, status int, duration time.Duration) {
	atomic.AddUint64(&m.requests, 1)
	atomic.AddInt64(&m.requestDurationNs, duration.Nanoseconds())
}

// IncSignIn increments the sign-in counter for method and outcome.
func (m *InMemoryRecorder) IncSignIn(method, outcome string) {
	m.inc(m.signIns, method+"/"+outcome)
}

// IncUserProvisioned increments the provisioned-user counter.
func (m *InMemoryRecorder) IncUserProvisioned(method string) {
	m.inc(m.usersProvisioned, method)
}

// IncAuthRejected increments the rejected-request counter.
func (m *InMemoryRecorder) IncAuthRejected(reason string) {
	m.inc(m.authRejections, reason)
}

// IncJobMutation increments the job mutation counter.
func (m *InMemoryRecorder) IncJobMutation(op string) {
	m.inc(m.jobMutations, op)
}

// IncApplicationSubmitted increments the submitted application counter.
func (m *InMemoryRecorder) IncApplicationSubmitted() {
	atomic.AddUint64(&m.applicationsSubmitted, 1)
}

// IncApplicationStatusChanged increments the status change counter.
func (m *InMemoryRecorder) IncApplicationStatusChanged(status string) {
	m.inc(m.statusChanges, status)
}

func (m *InMemoryRecorder) inc(counts map[string]uint64, key string) {
	m.mu.Lock()
	counts[key]++
	m.mu.Unlock()
}

func copyCounts(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
