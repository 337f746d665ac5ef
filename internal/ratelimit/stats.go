package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Gateway outcomes.
const (
	OutcomeAllowed      = "allowed"
	OutcomeRateLimited  = "rate_limited"
	OutcomeTooLarge     = "too_large"
	OutcomeUnauthorized = "unauthorized"
)

// Event is a single gateway decision.
type Event struct {
	Key     string
	Outcome string
	Method  string
	Path    string
	At      time.Time
}

// Recorder persists gateway decisions. Callers treat errors as best-effort.
type Recorder interface {
	Record(ctx context.Context, ev Event) error
}

// MemoryRecorder counts outcomes in process.
type MemoryRecorder struct {
	mu      sync.Mutex
	totals  map[string]int64
	byRoute map[string]int64
}

// NewMemoryRecorder creates an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{
		totals:  make(map[string]int64),
		byRoute: make(map[string]int64),
	}
}

// Record implements Recorder.
func (m *MemoryRecorder) Record(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals[ev.Outcome]++
	m.byRoute[ev.Method+" "+ev.Path+":"+ev.Outcome]++
	return nil
}

// Totals returns a copy of the per-outcome counters.
func (m *MemoryRecorder) Totals() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.totals))
	for k, v := range m.totals {
		out[k] = v
	}
	return out
}

// ByRoute returns a copy of the counters keyed by "METHOD path:outcome".
func (m *MemoryRecorder) ByRoute() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.byRoute))
	for k, v := range m.byRoute {
		out[k] = v
	}
	return out
}
