// Package metrics provides Prometheus instrumentation for chrono components.
//
// Metrics are opt-in. Enable them per scheduler through its configuration:
//
//	s, err := scheduler.NewWithConfig(scheduler.Config{
//		Name:    "jobs",
//		Metrics: metrics.Config{Enabled: true, Registry: reg},
//	})
//
// Then expose them via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Available Metrics
//
//   - chrono_scheduler_tasks_added_total: tasks accepted by Add
//   - chrono_scheduler_tasks_executed_total: task executions
//   - chrono_scheduler_tasks_rescheduled_total: executions followed by a re-queue
//   - chrono_scheduler_tasks_removed_total: tasks cancelled by identifier
//   - chrono_scheduler_tasks_destroyed_total: tasks released by the scheduler
//   - chrono_scheduler_tasks_panicked_total: executions that panicked
//   - chrono_scheduler_run_exits_total: run loop exits, labelled by status
//   - chrono_scheduler_task_duration_seconds: execution time
//   - chrono_scheduler_wake_lateness_seconds: start time minus due time
//   - chrono_scheduler_queued_tasks: tasks waiting in the queue
//
// Every metric carries a scheduler_name label.
package metrics
