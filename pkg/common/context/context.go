package context

import (
	"context"
	"time"
)

// SleepContext blocks for d or until ctx is canceled, whichever comes first.
// It returns ctx.Err() if the context ended the wait and nil otherwise.
// A non-positive d returns immediately unless ctx is already canceled.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsCanceled returns true if the context has been canceled
func IsCanceled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
