package scheduler

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/vnykmshr/chrono/pkg/common/validation"
	"github.com/vnykmshr/chrono/pkg/metrics"
	"github.com/vnykmshr/chrono/pkg/scheduling/uid"
)

const (
	defaultName     = "default"
	defaultMaxTasks = 10000
)

// Execution describes one run of a task.
type Execution struct {
	ID        uid.UID
	DueAt     time.Time
	StartedAt time.Time
	Duration  time.Duration

	// Continue is the value returned by the task function.
	Continue bool

	// Requeued is true if the task went back into the queue.
	Requeued bool

	// Panic holds the recovered value if the task panicked.
	Panic any
}

// Config holds scheduler configuration.
type Config struct {
	// Name labels log lines and metrics (default: "default").
	Name string

	// MaxTasks bounds the number of queued tasks (default: 10000).
	MaxTasks int

	// Clock is the time source (default: the wall clock).
	Clock Clock

	// Logger receives structured scheduler events. Nil disables logging.
	Logger *zerolog.Logger

	// Metrics configures Prometheus instrumentation. Disabled by default.
	Metrics metrics.Config

	// OnTaskExecuted is called on the Run goroutine after every execution.
	OnTaskExecuted func(Execution)

	// OnTaskDestroyed is called once for every task the scheduler releases.
	OnTaskDestroyed func(id uid.UID)
}

func (c Config) withDefaults() (Config, error) {
	if err := validation.ValidateNonNegative(module, "MaxTasks", c.MaxTasks); err != nil {
		return c, err
	}
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.MaxTasks == 0 {
		c.MaxTasks = defaultMaxTasks
	}
	if c.Clock == nil {
		c.Clock = wallClock{}
	}
	if c.Logger == nil {
		nop := zerolog.Nop()
		c.Logger = &nop
	}
	return c, nil
}
