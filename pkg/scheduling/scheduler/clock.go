package scheduler

import (
	"context"
	"time"

	cctx "github.com/vnykmshr/chrono/pkg/common/context"
)

// Clock is the time source of a scheduler. Sleep must block for d or until
// ctx is done and return ctx.Err() in the latter case.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) Sleep(ctx context.Context, d time.Duration) error {
	return cctx.SleepContext(ctx, d)
}
