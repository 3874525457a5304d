// Package metrics provides Prometheus instrumentation for chrono components.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metric instances for the scheduler.
type Registry struct {
	TasksAdded       *prometheus.CounterVec
	TasksExecuted    *prometheus.CounterVec
	TasksRescheduled *prometheus.CounterVec
	TasksRemoved     *prometheus.CounterVec
	TasksDestroyed   *prometheus.CounterVec
	TasksPanicked    *prometheus.CounterVec
	RunExits         *prometheus.CounterVec

	TaskDuration *prometheus.HistogramVec
	WakeLateness *prometheus.HistogramVec

	QueuedTasks *prometheus.GaugeVec
}

// NewRegistry creates the scheduler metrics and registers them with
// cfg.Registry. Metrics already registered under the same names are reused,
// so several schedulers may share one Prometheus registry and be told apart
// by the scheduler_name label.
func NewRegistry(cfg Config) *Registry {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      name,
				Help:      help,
			},
			append([]string{"scheduler_name"}, labels...),
		))
	}

	return &Registry{
		TasksAdded:       counter("tasks_added_total", "Total number of tasks added"),
		TasksExecuted:    counter("tasks_executed_total", "Total number of task executions"),
		TasksRescheduled: counter("tasks_rescheduled_total", "Total number of executions followed by a re-queue"),
		TasksRemoved:     counter("tasks_removed_total", "Total number of tasks cancelled by identifier"),
		TasksDestroyed:   counter("tasks_destroyed_total", "Total number of tasks released by the scheduler"),
		TasksPanicked:    counter("tasks_panicked_total", "Total number of task executions that panicked"),
		RunExits:         counter("run_exits_total", "Total number of run loop exits by status", "status"),

		TaskDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing tasks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"scheduler_name"},
		)),

		WakeLateness: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      "wake_lateness_seconds",
				Help:      "Delay between a task's due time and the start of its execution",
				Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"scheduler_name"},
		)),

		QueuedTasks: register(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: ns,
				Subsystem: "scheduler",
				Name:      "queued_tasks",
				Help:      "Number of tasks waiting in the queue",
			},
			[]string{"scheduler_name"},
		)),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
