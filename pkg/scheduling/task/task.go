// Package task defines the unit of work held by the scheduler: a callable
// with its arguments, a unique identifier, and its timing state.
package task

import (
	"context"
	"time"

	cerrors "github.com/vnykmshr/chrono/pkg/common/errors"
	"github.com/vnykmshr/chrono/pkg/common/validation"
	"github.com/vnykmshr/chrono/pkg/scheduling/uid"
)

const module = "task"

// Func is the work a task performs. Returning true asks the scheduler to
// run the task again according to its timing.
type Func func(ctx context.Context, args any) bool

// Task is a scheduled unit of work. A Task is not safe for concurrent use;
// the scheduler that owns it serializes all access.
type Task struct {
	id     uid.UID
	fn     Func
	args   any
	timing Timing

	nextRun time.Time
	lastRun time.Time
	runs    int

	cancelled bool
	destroyed bool
}

// New creates a task whose first run time is derived from timing relative
// to now.
func New(fn Func, args any, timing Timing, now time.Time) (*Task, error) {
	if err := validation.ValidateNotNil(module, "fn", fn); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotNil(module, "timing", timing); err != nil {
		return nil, err
	}
	if err := timing.Validate(); err != nil {
		return nil, err
	}

	id := uid.New()
	if id.IsBad() {
		return nil, cerrors.NewOperationError(module, "New", cerrors.ErrCapacityExceeded).
			WithContext("identifier generation failed")
	}

	return &Task{
		id:      id,
		fn:      fn,
		args:    args,
		timing:  timing,
		nextRun: timing.First(now),
	}, nil
}

// Run executes the task's function. started is recorded as the start time
// of this run.
func (t *Task) Run(ctx context.Context, started time.Time) bool {
	t.mustBeLive()
	t.lastRun = started
	t.runs++
	return t.fn(ctx, t.args)
}

// UID returns the task identifier.
func (t *Task) UID() uid.UID {
	return t.id
}

// NextRunTime returns when the task is next due.
func (t *Task) NextRunTime() time.Time {
	return t.nextRun
}

// UpdateNextRunTime advances the next-run-time after a run.
func (t *Task) UpdateNextRunTime() {
	t.mustBeLive()
	t.nextRun = t.timing.Next(t.nextRun, t.lastRun)
}

// LastRun returns the start time of the most recent run, or the zero time.
func (t *Task) LastRun() time.Time {
	return t.lastRun
}

// RunCount returns how many times the task has run.
func (t *Task) RunCount() int {
	return t.runs
}

// Cancel marks the task so that it is not run or re-queued again.
func (t *Task) Cancel() {
	t.cancelled = true
}

// Cancelled reports whether Cancel was called.
func (t *Task) Cancelled() bool {
	return t.cancelled
}

// Destroyed reports whether Destroy was called.
func (t *Task) Destroyed() bool {
	return t.destroyed
}

// Destroy releases the task's function and arguments and returns its
// identifier. Destroying a task twice is a programming error and panics.
func (t *Task) Destroy() uid.UID {
	t.mustBeLive()
	t.destroyed = true
	t.fn = nil
	t.args = nil
	t.timing = nil
	return t.id
}

func (t *Task) mustBeLive() {
	if t.destroyed {
		panic("task: use of destroyed task " + t.id.String())
	}
}
