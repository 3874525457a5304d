package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	cerrors "github.com/vnykmshr/chrono/pkg/common/errors"
	"github.com/vnykmshr/chrono/pkg/scheduling/task"
)

// Run executes queued tasks on the calling goroutine until the queue is
// empty, Stop is called, a recurring task cannot be re-queued, or ctx is
// canceled.
//
// Each iteration takes the earliest task, sleeps until it is due, runs it,
// and re-queues it if it asked to continue and was not removed meanwhile.
// Due times are measured against a single clock reading taken when Run
// starts. Tasks added with an earlier due time than the one being waited on
// are picked up on the next iteration.
//
// If ctx is canceled during a wait, the waited-on task is put back
// unchanged and Run returns ExitCanceled with ctx.Err(). If a task cannot be
// re-queued, it is released and Run returns ExitEnqueueError. Calling Run
// while another Run is active returns ExitAlreadyRunning and
// ErrAlreadyRunning. Whenever err is non-nil it describes the failure more
// precisely than the status.
func (s *Scheduler) Run(ctx context.Context) (ExitStatus, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s.lock()
	if s.active {
		s.mu.Unlock()
		return ExitAlreadyRunning, ErrAlreadyRunning
	}
	s.active = true
	s.running = true
	start := s.clock.Now()
	queued := s.queue.Size()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.active = false
		s.current = nil
		s.wake = nil
		s.mu.Unlock()
	}()

	s.log.Info().Int("queued", queued).Msg("run loop started")

	status, err := s.loop(ctx, start)

	if r := s.metrics.Load(); r != nil {
		r.RunExits.WithLabelValues(s.name, status.String()).Inc()
	}
	ev := s.log.Info()
	if status == ExitEnqueueError {
		ev = s.log.Error().Err(err)
	}
	ev.Stringer("status", status).
		Dur("elapsed", s.clock.Now().Sub(start)).
		Msg("run loop exited")

	return status, err
}

func (s *Scheduler) loop(ctx context.Context, start time.Time) (ExitStatus, error) {
	for {
		status, done, err := s.step(ctx, start)
		if done {
			return status, err
		}
	}
}

// step runs one dequeue, wait and execute cycle.
func (s *Scheduler) step(ctx context.Context, start time.Time) (ExitStatus, bool, error) {
	wctx, wake := context.WithCancel(ctx)
	defer wake()

	t, status, ok := s.dequeue(wake)
	if !ok {
		return status, true, nil
	}

	// wctx also ends when Remove cancels t; only ctx ending stops the loop.
	if err := s.wait(wctx, start, t); err != nil && ctx.Err() != nil {
		s.putBack(t)
		return ExitCanceled, true, ctx.Err()
	}

	if err := s.execute(ctx, t); err != nil {
		return ExitEnqueueError, true, err
	}
	return 0, false, nil
}

// dequeue pops the earliest task and makes it the current task. wake is
// called if the task is removed while Run waits on it.
func (s *Scheduler) dequeue(wake context.CancelFunc) (*task.Task, ExitStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil, ExitStopped, false
	}
	if s.queue.IsEmpty() {
		return nil, ExitEmpty, false
	}

	t := s.queue.Dequeue()
	s.current = t
	s.wake = wake
	s.observeQueue(s.queue.Size())
	return t, 0, true
}

// wait blocks until t is due: max(0, (due - start) - elapsed since start).
func (s *Scheduler) wait(ctx context.Context, start time.Time, t *task.Task) error {
	delay := t.NextRunTime().Sub(start) - s.clock.Now().Sub(start)
	if delay < 0 {
		delay = 0
	}
	return s.clock.Sleep(ctx, delay)
}

// putBack returns a task that was dequeued but not run.
func (s *Scheduler) putBack(t *task.Task) {
	s.mu.Lock()
	s.current = nil
	s.wake = nil
	cancelled := t.Cancelled()
	var err error
	if !cancelled {
		err = s.queue.Enqueue(t)
	}
	queued := s.queue.Size()
	s.mu.Unlock()

	if cancelled || err != nil {
		if err != nil {
			s.log.Error().Err(err).Stringer("task", t.UID()).Msg("could not put back waiting task")
		}
		s.release(t)
		return
	}
	s.observeQueue(queued)
}

func (s *Scheduler) execute(ctx context.Context, t *task.Task) error {
	s.mu.Lock()
	s.wake = nil
	cancelled := t.Cancelled()
	if cancelled {
		s.current = nil
	}
	s.mu.Unlock()

	// Removed while being waited on: never started, so never run.
	if cancelled {
		s.release(t)
		return nil
	}

	due := t.NextRunTime()
	started := s.clock.Now()
	cont, recovered := s.invoke(ctx, t, started)
	took := s.clock.Now().Sub(started)

	s.mu.Lock()
	s.current = nil
	requeue := cont && !t.Cancelled()
	var err error
	if requeue {
		t.UpdateNextRunTime()
		err = s.queue.Enqueue(t)
	}
	queued := s.queue.Size()
	s.mu.Unlock()

	exec := Execution{
		ID:        t.UID(),
		DueAt:     due,
		StartedAt: started,
		Duration:  took,
		Continue:  cont,
		Requeued:  requeue && err == nil,
		Panic:     recovered,
	}
	s.recordExecution(exec)

	if err != nil {
		s.release(t)
		return cerrors.NewOperationError(module, "Run", err).
			WithContext("re-queue of task " + exec.ID.String())
	}
	if !requeue {
		s.release(t)
		return nil
	}

	s.observeQueue(queued)
	if r := s.metrics.Load(); r != nil {
		r.TasksRescheduled.WithLabelValues(s.name).Inc()
	}
	return nil
}

// invoke runs the task, converting a panic into a "do not continue" result.
func (s *Scheduler) invoke(ctx context.Context, t *task.Task, started time.Time) (cont bool, recovered any) {
	defer func() {
		if r := recover(); r != nil {
			recovered = r
			cont = false
			s.log.Error().
				Stringer("task", t.UID()).
				Str("panic", fmt.Sprint(r)).
				Str("stack", string(debug.Stack())).
				Msg("task panicked")
		}
	}()
	return t.Run(ctx, started), nil
}

func (s *Scheduler) recordExecution(exec Execution) {
	lateness := exec.StartedAt.Sub(exec.DueAt)
	if lateness < 0 {
		lateness = 0
	}

	if r := s.metrics.Load(); r != nil {
		r.TasksExecuted.WithLabelValues(s.name).Inc()
		r.TaskDuration.WithLabelValues(s.name).Observe(exec.Duration.Seconds())
		r.WakeLateness.WithLabelValues(s.name).Observe(lateness.Seconds())
		if exec.Panic != nil {
			r.TasksPanicked.WithLabelValues(s.name).Inc()
		}
	}

	s.log.Debug().
		Stringer("task", exec.ID).
		Dur("lateness", lateness).
		Dur("duration", exec.Duration).
		Bool("requeued", exec.Requeued).
		Msg("task executed")

	if s.onExec != nil {
		s.onExec(exec)
	}
}
