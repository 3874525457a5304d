package testutil

import (
	"context"
	"sync"
	"time"
)

// MockClock is a controllable time source. Sleep advances the clock
// instantly instead of blocking, so time-ordered code runs without real
// delays.
type MockClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

// NewMockClock creates a new MockClock starting at the given time.
// If zero time is provided, uses current time.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &MockClock{now: start}
}

// Now returns the current mock time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Sleep records d and advances the clock by it. It returns ctx.Err() without
// advancing if the context is already done.
func (m *MockClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sleeps = append(m.sleeps, d)
	if d > 0 {
		m.now = m.now.Add(d)
	}
	return nil
}

// Advance moves the mock clock forward by the given duration.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

// Set sets the mock clock to a specific time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Sleeps returns the durations passed to Sleep, in call order.
func (m *MockClock) Sleeps() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.sleeps))
	copy(out, m.sleeps)
	return out
}
