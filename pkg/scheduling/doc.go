/*
Package scheduling provides time-based task scheduling primitives.

  - scheduler: Runs tasks one at a time in next-run-time order
  - task: A callable with arguments and a timing policy
  - pqueue: Generic priority queue backing the scheduler
  - uid: Opaque task identifiers

Task Scheduler:

	s := scheduler.New()
	defer s.Destroy()

	// One-shot task
	s.Add(fn, args, task.After(time.Minute))

	// Recurring task; fn returns true to run again
	s.Add(fn, args, task.Every(time.Hour))

	// Cron-style scheduling
	timing, _ := task.Cron("0 0 9 * * MON-FRI") // weekdays at 9 AM
	s.Add(fn, args, timing)

	s.Run(ctx)

The scheduler never runs two tasks at once. Add, Remove and Stop are safe to
call from inside running tasks and from other goroutines.
*/
package scheduling
