package timing

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// A ManualLoop is a Host whose clock only moves when told to. Timers fire in
// due order, on the caller's goroutine, while Advance or RunUntil moves the
// clock. It makes timer-driven code deterministic under test.
//
// A ManualLoop is not safe for concurrent use.
type ManualLoop struct {
	now    time.Time
	timers *timerSet
	log    zerolog.Logger
	fired  uint64
}

// NewManualLoop creates a ManualLoop whose clock starts at start.
func NewManualLoop(start time.Time) *ManualLoop {
	return &ManualLoop{
		now:    start,
		timers: newTimerSet("manual-"),
		log:    zerolog.Nop(),
	}
}

// WithLogger sets the logger that reports panicking callbacks.
func (l *ManualLoop) WithLogger(log zerolog.Logger) *ManualLoop {
	l.log = log
	return l
}

// Now returns the loop's current time.
func (l *ManualLoop) Now() time.Time {
	return l.now
}

// ScheduleOnce runs cb once after delay.
func (l *ManualLoop) ScheduleOnce(
	cb Callback,
	delay time.Duration,
	args ...any,
) TimerID {
	return l.timers.add(l.now, cb, delay, false, args)
}

// ScheduleRepeating runs cb every interval until canceled.
func (l *ManualLoop) ScheduleRepeating(
	cb Callback,
	interval time.Duration,
	args ...any,
) TimerID {
	return l.timers.add(l.now, cb, interval, true, args)
}

// CancelOnce cancels a pending timer.
func (l *ManualLoop) CancelOnce(id TimerID) {
	l.timers.cancel(id)
}

// CancelRepeating cancels a pending timer.
func (l *ManualLoop) CancelRepeating(id TimerID) {
	l.timers.cancel(id)
}

// Call runs fn immediately. The loop has no goroutine of its own.
func (l *ManualLoop) Call(ctx context.Context, fn func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fn()

	return nil
}

// Advance moves the clock forward by d, firing every timer that falls due on
// the way.
func (l *ManualLoop) Advance(d time.Duration) {
	l.RunUntil(l.now.Add(d))
}

// RunUntil moves the clock to deadline, firing every timer due at or before
// it. The clock stands at each timer's due time while its callback runs.
func (l *ManualLoop) RunUntil(deadline time.Time) {
	for {
		next, ok := l.timers.next()
		if !ok || next.After(deadline) {
			break
		}

		if next.After(l.now) {
			l.now = next
		}

		t := l.timers.popDue(l.now)
		l.fired++
		safeExecute(l.log, t)
	}

	if deadline.After(l.now) {
		l.now = deadline
	}
}

// Pending returns the number of timers that are scheduled and not canceled.
func (l *ManualLoop) Pending() int {
	return l.timers.len()
}

// NextDue returns when the earliest pending timer is due.
func (l *ManualLoop) NextDue() (time.Time, bool) {
	return l.timers.next()
}

// Fired returns the number of native callbacks the loop has run.
func (l *ManualLoop) Fired() uint64 {
	return l.fired
}
