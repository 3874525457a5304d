package task

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/vnykmshr/chrono/pkg/common/validation"
)

// Timing decides when a task first runs and when it runs again.
type Timing interface {
	// First returns the initial next-run-time for a task created at now.
	First(now time.Time) time.Time

	// Next returns the next-run-time after a run that was due at prev and
	// actually started at started.
	Next(prev, started time.Time) time.Time

	// Validate reports whether the timing can be used.
	Validate() error
}

// cronParser accepts an optional seconds field and descriptors such as @hourly.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type intervalTiming struct {
	at       time.Time
	interval time.Duration
	field    string
	positive bool
}

// After runs a task d after it is added and, while it keeps asking to
// continue, every d after that. A zero d runs the task immediately and
// re-runs it without pause.
func After(d time.Duration) Timing {
	return intervalTiming{interval: d, field: "delay"}
}

// Every is After with a strictly positive interval.
func Every(d time.Duration) Timing {
	return intervalTiming{interval: d, field: "interval", positive: true}
}

// At runs a task at t. A task that asks to continue is re-run immediately.
func At(t time.Time) Timing {
	return intervalTiming{at: t, field: "delay"}
}

// AtEvery runs a task at t and then every d.
func AtEvery(t time.Time, d time.Duration) Timing {
	return intervalTiming{at: t, interval: d, field: "interval", positive: true}
}

func (it intervalTiming) First(now time.Time) time.Time {
	if !it.at.IsZero() {
		return it.at
	}
	return now.Add(it.interval)
}

// Next advances from the previous due time so that late wake-ups do not
// accumulate drift, but never schedules closer than one interval after the
// actual start.
func (it intervalTiming) Next(prev, started time.Time) time.Time {
	next := prev.Add(it.interval)
	if floor := started.Add(it.interval); next.Before(floor) {
		next = floor
	}
	return next
}

func (it intervalTiming) Validate() error {
	if it.positive || it.interval < 0 {
		return validation.ValidatePositiveDuration(module, it.field, it.interval)
	}
	return nil
}

type cronTiming struct {
	schedule cron.Schedule
}

// Cron parses a cron expression. Both five-field and six-field (with
// seconds) forms are accepted, as are descriptors like "@every 5s".
func Cron(expr string) (Timing, error) {
	if err := validation.ValidateNotEmpty(module, "cron", expr); err != nil {
		return nil, err
	}
	schedule, err := cronParser.Parse(expr)
	if err != nil {
		return nil, err
	}
	return cronTiming{schedule: schedule}, nil
}

// CronSchedule wraps an already parsed cron schedule.
func CronSchedule(schedule cron.Schedule) Timing {
	return cronTiming{schedule: schedule}
}

func (ct cronTiming) First(now time.Time) time.Time {
	return ct.schedule.Next(now)
}

func (ct cronTiming) Next(prev, started time.Time) time.Time {
	if started.After(prev) {
		return ct.schedule.Next(started)
	}
	return ct.schedule.Next(prev)
}

func (ct cronTiming) Validate() error {
	return validation.ValidateNotNil(module, "schedule", ct.schedule)
}
