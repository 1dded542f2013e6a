package clock

import (
	"sync"
	"time"
)

// Clock is the time source a Loop runs against.
type Clock interface {
	Now() time.Time
}

// Real reads the system monotonic clock.
type Real struct{}

// Now returns the current system time.
func (Real) Now() time.Time { return time.Now() }

// Manual is a controllable clock for tests. It never moves on its own;
// Loop.Advance moves it forward while firing due tasks.
type Manual struct {
	mu  sync.RWMutex
	now time.Time
}

// NewManual creates a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

// Set moves the clock to t.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}
