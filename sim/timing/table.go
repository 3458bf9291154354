package timing

import (
	"sync"
	"time"
)

// A Table is a swappable set of timer primitives. Code that schedules through
// a Table uses whichever Scheduler is installed at call time, so a wrapper
// can be installed in front of the host and removed again later.
type Table struct {
	lock    sync.RWMutex
	current Scheduler
}

// NewTable creates a Table with s installed.
func NewTable(s Scheduler) *Table {
	if s == nil {
		panic("timing: table needs a scheduler")
	}

	return &Table{current: s}
}

// Current returns the installed Scheduler.
func (t *Table) Current() Scheduler {
	t.lock.RLock()
	defer t.lock.RUnlock()

	return t.current
}

// Replace installs s and returns the Scheduler it replaced.
func (t *Table) Replace(s Scheduler) Scheduler {
	if s == nil {
		panic("timing: table needs a scheduler")
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	prev := t.current
	t.current = s

	return prev
}

// CompareAndReplace installs next only if old is installed. It reports
// whether the swap happened.
func (t *Table) CompareAndReplace(old, next Scheduler) bool {
	if next == nil {
		panic("timing: table needs a scheduler")
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.current != old {
		return false
	}

	t.current = next

	return true
}

// ScheduleOnce forwards to the installed Scheduler.
func (t *Table) ScheduleOnce(cb Callback, delay time.Duration, args ...any) TimerID {
	return t.Current().ScheduleOnce(cb, delay, args...)
}

// ScheduleRepeating forwards to the installed Scheduler.
func (t *Table) ScheduleRepeating(
	cb Callback,
	interval time.Duration,
	args ...any,
) TimerID {
	return t.Current().ScheduleRepeating(cb, interval, args...)
}

// CancelOnce forwards to the installed Scheduler.
func (t *Table) CancelOnce(id TimerID) {
	t.Current().CancelOnce(id)
}

// CancelRepeating forwards to the installed Scheduler.
func (t *Table) CancelRepeating(id TimerID) {
	t.Current().CancelRepeating(id)
}
