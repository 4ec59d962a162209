package todo

import (
	"sync"
	"time"
)

// MutationTracker records the instant of the most recent locally
// initiated write. Reads that started before that instant are stale:
// applying them would clobber state that already reflects a later
// write, so the engine discards them silently.
//
// The tracker is owned by an engine instance rather than being package
// state, so independent engines (and tests) cannot contaminate each
// other. A single global instant per engine is sufficient; tracking per
// date key would only reduce the number of discarded refetches.
type MutationTracker struct {
	mu   sync.Mutex
	last time.Time

	// now is the clock, injectable so synctest-driven tests control it.
	now func() time.Time
}

// NewMutationTracker returns a tracker on the wall clock.
func NewMutationTracker() *MutationTracker {
	return &MutationTracker{now: time.Now}
}

// Record stores the current instant as the latest local mutation. Called
// synchronously before any write request is issued.
func (m *MutationTracker) Record() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.last = m.now()
}

// Now returns the tracker's view of the current instant. Fetch start
// times must come from the same clock that Record uses.
func (m *MutationTracker) Now() time.Time {
	return m.now()
}

// StaleFetch reports whether a read that started at fetchStartedAt
// predates the latest local mutation and must therefore be discarded.
func (m *MutationTracker) StaleFetch(fetchStartedAt time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return fetchStartedAt.Before(m.last)
}
