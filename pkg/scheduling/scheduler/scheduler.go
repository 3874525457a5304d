package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	cerrors "github.com/vnykmshr/chrono/pkg/common/errors"
	"github.com/vnykmshr/chrono/pkg/metrics"
	"github.com/vnykmshr/chrono/pkg/scheduling/pqueue"
	"github.com/vnykmshr/chrono/pkg/scheduling/task"
	"github.com/vnykmshr/chrono/pkg/scheduling/uid"
)

const module = "scheduler"

var (
	// ErrTaskNotFound is returned by Remove and NextRunTime for unknown identifiers.
	ErrTaskNotFound = fmt.Errorf("%s: task %w", module, cerrors.ErrNotFound)

	// ErrAlreadyRunning is returned by Run when another Run is active.
	ErrAlreadyRunning = fmt.Errorf("%s: %w", module, cerrors.ErrAlreadyRunning)
)

// ExitStatus tells why Run returned.
type ExitStatus int

const (
	// ExitEmpty means the queue ran out of tasks.
	ExitEmpty ExitStatus = iota
	// ExitStopped means Stop was called.
	ExitStopped
	// ExitEnqueueError means a recurring task could not be re-queued.
	ExitEnqueueError
	// ExitCanceled means the context passed to Run was canceled.
	ExitCanceled
	// ExitAlreadyRunning means another Run was active; nothing was done.
	ExitAlreadyRunning
)

func (e ExitStatus) String() string {
	switch e {
	case ExitEmpty:
		return "empty"
	case ExitStopped:
		return "stopped"
	case ExitEnqueueError:
		return "enqueue_error"
	case ExitCanceled:
		return "canceled"
	case ExitAlreadyRunning:
		return "already_running"
	default:
		return fmt.Sprintf("ExitStatus(%d)", int(e))
	}
}

// Info is a read-only view of a queued task.
type Info struct {
	ID       uid.UID
	NextRun  time.Time
	LastRun  time.Time
	RunCount int
}

// Scheduler runs tasks one at a time in next-run-time order on the
// goroutine that calls Run.
//
// Add, Remove, Stop, Size, IsEmpty and Clear may be called from task
// functions while Run is active, and from other goroutines.
type Scheduler struct {
	name   string
	clock  Clock
	log    zerolog.Logger
	onExec func(Execution)
	onFree func(uid.UID)

	metrics atomic.Pointer[metrics.Registry]

	mu      sync.Mutex
	queue   *pqueue.Queue[*task.Task] // nil once destroyed
	current *task.Task
	wake    context.CancelFunc // ends the wait on current early
	running bool               // cleared by Stop
	active  bool // a Run call is in progress
}

// New creates an empty scheduler with default configuration.
func New() *Scheduler {
	s, err := NewWithConfig(Config{})
	if err != nil {
		panic(err)
	}
	return s
}

// NewWithConfig creates an empty scheduler with custom configuration.
func NewWithConfig(cfg Config) (*Scheduler, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		name:   cfg.Name,
		clock:  cfg.Clock,
		log:    cfg.Logger.With().Str("scheduler", cfg.Name).Logger(),
		onExec: cfg.OnTaskExecuted,
		onFree: cfg.OnTaskDestroyed,
		queue:  pqueue.New(runsBefore, cfg.MaxTasks),
	}
	if cfg.Metrics.Enabled {
		s.metrics.Store(metrics.NewRegistry(cfg.Metrics))
	}
	return s, nil
}

func runsBefore(a, b *task.Task) bool {
	return a.NextRunTime().Before(b.NextRunTime())
}

// lock acquires s.mu and panics on a nil or destroyed scheduler.
func (s *Scheduler) lock() {
	if s == nil {
		panic("scheduler: nil scheduler")
	}
	s.mu.Lock()
	if s.queue == nil {
		s.mu.Unlock()
		panic("scheduler: use of destroyed scheduler")
	}
}

// Destroy releases every queued task and the scheduler itself. Destroying a
// scheduler while Run is active, or using it afterwards, panics.
func (s *Scheduler) Destroy() {
	s.lock()
	if s.active {
		s.mu.Unlock()
		panic("scheduler: destroy while running")
	}
	tasks := s.queue.Drain()
	s.queue = nil
	s.mu.Unlock()

	for _, t := range tasks {
		s.release(t)
	}
	s.observeQueue(0)
	s.log.Debug().Int("released", len(tasks)).Msg("scheduler destroyed")
}

// Add schedules fn(args) according to timing and returns the new task's
// identifier. On failure it returns uid.Bad and the reason.
func (s *Scheduler) Add(fn task.Func, args any, timing task.Timing) (uid.UID, error) {
	s.lock()
	t, err := task.New(fn, args, timing, s.clock.Now())
	if err != nil {
		s.mu.Unlock()
		return uid.Bad, err
	}
	id, next := t.UID(), t.NextRunTime()
	err = s.queue.Enqueue(t)
	queued := s.queue.Size()
	s.mu.Unlock()

	if err != nil {
		s.release(t)
		return uid.Bad, cerrors.NewOperationError(module, "Add", err)
	}

	if r := s.metrics.Load(); r != nil {
		r.TasksAdded.WithLabelValues(s.name).Inc()
	}
	s.observeQueue(queued)
	s.log.Debug().
		Stringer("task", id).
		Time("next_run", next).
		Msg("task added")
	return id, nil
}

// Remove cancels the task with the given identifier.
//
// A queued task is released immediately. The task Run is currently waiting
// on is released as soon as the wait is cut short, without running. The
// task Run is executing is only marked: it finishes its current execution
// and is then released instead of re-queued. Remove returns uid.Bad and
// ErrTaskNotFound if no task matches.
func (s *Scheduler) Remove(id uid.UID) (uid.UID, error) {
	s.lock()
	if c := s.current; c != nil && !c.Cancelled() && uid.IsSame(c.UID(), id) {
		c.Cancel()
		if s.wake != nil {
			s.wake()
		}
		s.mu.Unlock()
		s.countRemoved()
		s.log.Debug().Stringer("task", id).Msg("in-flight task cancelled")
		return id, nil
	}

	t, ok := s.queue.Erase(func(t *task.Task) bool {
		return uid.IsSame(t.UID(), id)
	})
	queued := s.queue.Size()
	s.mu.Unlock()

	if !ok {
		return uid.Bad, ErrTaskNotFound
	}

	s.countRemoved()
	s.observeQueue(queued)
	s.log.Debug().Stringer("task", id).Msg("task removed")
	return s.release(t), nil
}

// Stop asks a running Run to return. It takes effect once the task being
// waited on or executed has finished.
func (s *Scheduler) Stop() error {
	s.lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

// Size returns the number of queued tasks, plus one while Run is active to
// account for the task it is processing.
func (s *Scheduler) Size() int {
	s.lock()
	defer s.mu.Unlock()
	n := s.queue.Size()
	if s.active {
		n++
	}
	return n
}

// IsEmpty reports whether no tasks are queued and Run is not active.
func (s *Scheduler) IsEmpty() bool {
	s.lock()
	defer s.mu.Unlock()
	return s.queue.IsEmpty() && !s.active
}

// IsRunning reports whether a Run call is in progress.
func (s *Scheduler) IsRunning() bool {
	s.lock()
	defer s.mu.Unlock()
	return s.active
}

// Clear releases every queued task. The task Run is processing, if any, is
// left to the run loop.
func (s *Scheduler) Clear() {
	s.lock()
	tasks := s.queue.Drain()
	s.mu.Unlock()

	for _, t := range tasks {
		s.release(t)
	}
	s.observeQueue(0)
	if len(tasks) > 0 {
		s.log.Debug().Int("released", len(tasks)).Msg("scheduler cleared")
	}
}

// List returns the queued tasks in the order they will run.
func (s *Scheduler) List() []Info {
	s.lock()
	tasks := s.queue.Snapshot()
	infos := make([]Info, len(tasks))
	for i, t := range tasks {
		infos[i] = infoOf(t)
	}
	s.mu.Unlock()
	return infos
}

// NextRunTime returns when the task with the given identifier is due.
func (s *Scheduler) NextRunTime(id uid.UID) (time.Time, error) {
	s.lock()
	defer s.mu.Unlock()

	if c := s.current; c != nil && !c.Cancelled() && uid.IsSame(c.UID(), id) {
		return c.NextRunTime(), nil
	}
	for _, t := range s.queue.Snapshot() {
		if uid.IsSame(t.UID(), id) {
			return t.NextRunTime(), nil
		}
	}
	return time.Time{}, ErrTaskNotFound
}

// EnableMetrics enables metrics collection.
func (s *Scheduler) EnableMetrics(config metrics.Config) error {
	if !config.Enabled {
		s.DisableMetrics()
		return nil
	}
	r := metrics.NewRegistry(config)
	s.metrics.Store(r)

	s.lock()
	queued := s.queue.Size()
	s.mu.Unlock()
	r.QueuedTasks.WithLabelValues(s.name).Set(float64(queued))
	return nil
}

// DisableMetrics disables metrics collection.
func (s *Scheduler) DisableMetrics() {
	s.metrics.Store(nil)
}

// MetricsEnabled returns true if metrics are currently enabled.
func (s *Scheduler) MetricsEnabled() bool {
	return s.metrics.Load() != nil
}

// release destroys a task that has been detached from the queue and from
// s.current. It must be called without s.mu held.
func (s *Scheduler) release(t *task.Task) uid.UID {
	id := t.Destroy()
	if r := s.metrics.Load(); r != nil {
		r.TasksDestroyed.WithLabelValues(s.name).Inc()
	}
	if s.onFree != nil {
		s.onFree(id)
	}
	return id
}

func (s *Scheduler) countRemoved() {
	if r := s.metrics.Load(); r != nil {
		r.TasksRemoved.WithLabelValues(s.name).Inc()
	}
}

func (s *Scheduler) observeQueue(n int) {
	if r := s.metrics.Load(); r != nil {
		r.QueuedTasks.WithLabelValues(s.name).Set(float64(n))
	}
}

func infoOf(t *task.Task) Info {
	return Info{
		ID:       t.UID(),
		NextRun:  t.NextRunTime(),
		LastRun:  t.LastRun(),
		RunCount: t.RunCount(),
	}
}

var _ metrics.Instrumentable = (*Scheduler)(nil)
