/*
Package scheduler runs deferred and recurring tasks in time order on a single
goroutine.

A Scheduler keeps its tasks in a queue ordered by next run time. Run takes the
earliest task, sleeps until it is due, calls it, and puts it back if the task
function returned true. Tasks run one at a time on the goroutine that called
Run; nothing is executed concurrently.

Basic Usage:

	s := scheduler.New()
	defer s.Destroy()

	// Run once, one second from now
	s.Add(func(ctx context.Context, args any) bool {
		fmt.Println("hello,", args)
		return false
	}, "world", task.After(time.Second))

	// Run every 30 seconds until removed
	id, _ := s.Add(poll, nil, task.Every(30*time.Second))

	// Blocks until the queue is empty, Stop is called or ctx is done
	status, err := s.Run(ctx)

Timing:

The task package supplies the timing policies:

	task.After(5*time.Minute)            // now+5m, then every 5m if continued
	task.At(deadline)                    // absolute time
	task.AtEvery(midnight, 24*time.Hour) // absolute start, fixed interval
	task.Cron("0 0/15 * * * *")          // robfig/cron expression with seconds

A recurring task's next run is computed from its previous due time, so a slow
execution does not make the schedule drift. Two starts of the same task are
never closer than its interval.

Exit Statuses:

Run reports why it returned:

  - ExitEmpty: no tasks are left
  - ExitStopped: Stop was called
  - ExitEnqueueError: a recurring task could not be put back; it is released
  - ExitCanceled: ctx was done while waiting; the waiting task is put back
  - ExitAlreadyRunning: another Run is active; err is ErrAlreadyRunning

Removal:

Remove on a queued task releases it at once. Remove on the task Run is
waiting on ends the wait and releases the task without running it. Remove on
the task Run is executing only marks it; the execution finishes and the task
is released instead of re-queued. A task may remove itself.

While Run is active, Size counts the task being processed and IsEmpty is
false.

Configuration:

	s, err := scheduler.NewWithConfig(scheduler.Config{
		Name:     "reports",
		MaxTasks: 500,
		Logger:   &logger, // zerolog
		Metrics:  metrics.Config{Enabled: true},
		OnTaskDestroyed: func(id uid.UID) {
			log.Printf("task %s released", id)
		},
	})

Thread Safety:

Add, Remove, Stop, Size, IsEmpty, Clear and List may be called from task
functions and from other goroutines. Only one Run may be active at a time.
Destroy must not be called while Run is active.
*/
package scheduler
