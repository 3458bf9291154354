// Package timing defines the native timer primitives a host exposes and
// provides hosts that implement them.
package timing

import (
	"context"
	"errors"
	"time"
)

// A TimerID identifies a scheduled timer. Hosts and wrappers issue IDs from
// disjoint namespaces so that a cancel call can always be routed.
type TimerID string

// A Callback is the work a timer performs. Args are the trailing arguments
// given at scheduling time, passed through unchanged.
type Callback func(args ...any)

// MinInterval is the shortest interval a host accepts for a repeating timer.
// Hosts raise shorter intervals to it.
const MinInterval = time.Millisecond

// Scheduler is the set of one-shot and repeating timer primitives.
type Scheduler interface {
	// ScheduleOnce runs cb once after delay.
	ScheduleOnce(cb Callback, delay time.Duration, args ...any) TimerID

	// ScheduleRepeating runs cb every interval until canceled.
	ScheduleRepeating(cb Callback, interval time.Duration, args ...any) TimerID

	// CancelOnce cancels a one-shot timer. Unknown IDs are ignored.
	CancelOnce(id TimerID)

	// CancelRepeating cancels a repeating timer. Unknown IDs are ignored.
	CancelRepeating(id TimerID)
}

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	// Now returns the current time. Successive readings never go backwards.
	Now() time.Time
}

// A Host is an environment that runs timers against its own clock.
type Host interface {
	Scheduler
	TimeTeller
}

// An Executor runs functions on the goroutine that owns the host's timers.
type Executor interface {
	// Call runs fn on the host goroutine and waits until it returns or ctx is
	// done.
	Call(ctx context.Context, fn func()) error
}

var (
	// ErrLoopRunning is returned when Run is called on a loop that is already
	// running.
	ErrLoopRunning = errors.New("timing: loop is already running")

	// ErrLoopStopped is returned when work is submitted to a loop that has
	// been closed.
	ErrLoopStopped = errors.New("timing: loop is stopped")
)
