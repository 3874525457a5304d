/*
Package chrono provides a time-ordered task scheduler for Go applications.

Task Scheduling (pkg/scheduling):
  - scheduler: Single-goroutine run loop over deferred and recurring tasks
  - task: Task records and timing policies (delay, interval, absolute, cron)
  - pqueue: Bounded priority queue with stable ordering
  - uid: Task identifiers

Supporting packages:
  - metrics: Prometheus instrumentation
  - common/errors, common/validation: Shared error types and input checks
  - common/context: Cancellable sleeping

Example usage:

	import (
		"github.com/vnykmshr/chrono/pkg/scheduling/scheduler"
		"github.com/vnykmshr/chrono/pkg/scheduling/task"
	)

	s := scheduler.New()
	defer s.Destroy()

	s.Add(report, nil, task.Every(time.Minute))
	s.Add(cleanup, nil, task.At(midnight))

	status, err := s.Run(ctx) // blocks until empty, stopped or canceled
*/
package chrono
