package testutil

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

// TestTimeout is the default timeout for tests
const TestTimeout = 5 * time.Second

// WithTimeout creates a context with the default test timeout
func WithTimeout(t *testing.T) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), TestTimeout)
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// AssertEqual fails the test if got != want
func AssertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

// AssertSliceEqual fails the test unless got and want hold the same
// elements in the same order.
func AssertSliceEqual[T comparable](t *testing.T, got, want []T) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v (len %d), want %v (len %d)", got, len(got), want, len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v (first difference at %d)", got, want, i)
		}
	}
}

// Eventually polls condition every tick until it returns true or timeout
// elapses, in which case the test fails.
func Eventually(t *testing.T, condition func() bool, timeout, tick time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %v", timeout)
		}
		time.Sleep(tick)
	}
}

// WaitForInt32 waits until *addr equals want.
func WaitForInt32(t *testing.T, addr *int32, want int32, timeout time.Duration) {
	t.Helper()
	Eventually(t, func() bool {
		return atomic.LoadInt32(addr) == want
	}, timeout, time.Millisecond)
}
