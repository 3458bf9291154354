package timing

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// A SerialLoop is a Host that runs every timer callback and every submitted
// task one after another on the goroutine that calls Run. Code running on
// the loop never races with other loop code, so it needs no locks.
//
// Scheduling and canceling are safe from any goroutine.
type SerialLoop struct {
	lock   sync.Mutex
	timers *timerSet
	tasks  []func()
	closed bool

	wake    chan struct{}
	running atomic.Bool

	log zerolog.Logger
}

// NewSerialLoop creates a SerialLoop. It does nothing until Run is called.
func NewSerialLoop() *SerialLoop {
	return &SerialLoop{
		timers: newTimerSet("native-"),
		wake:   make(chan struct{}, 1),
		log:    zerolog.Nop(),
	}
}

// WithLogger sets the logger that reports panicking callbacks.
func (l *SerialLoop) WithLogger(log zerolog.Logger) *SerialLoop {
	l.log = log
	return l
}

// Now returns the monotonic wall-clock time.
func (l *SerialLoop) Now() time.Time {
	return time.Now()
}

// ScheduleOnce runs cb once on the loop after delay.
func (l *SerialLoop) ScheduleOnce(
	cb Callback,
	delay time.Duration,
	args ...any,
) TimerID {
	return l.add(cb, delay, false, args)
}

// ScheduleRepeating runs cb on the loop every interval until canceled.
func (l *SerialLoop) ScheduleRepeating(
	cb Callback,
	interval time.Duration,
	args ...any,
) TimerID {
	return l.add(cb, interval, true, args)
}

func (l *SerialLoop) add(
	cb Callback,
	d time.Duration,
	repeating bool,
	args []any,
) TimerID {
	l.lock.Lock()
	id := l.timers.add(time.Now(), cb, d, repeating, args)
	l.lock.Unlock()

	l.notify()

	return id
}

// CancelOnce cancels a pending timer. Once it returns on the loop goroutine,
// the callback will not run.
func (l *SerialLoop) CancelOnce(id TimerID) {
	l.cancel(id)
}

// CancelRepeating cancels a pending timer.
func (l *SerialLoop) CancelRepeating(id TimerID) {
	l.cancel(id)
}

func (l *SerialLoop) cancel(id TimerID) {
	l.lock.Lock()
	l.timers.cancel(id)
	l.lock.Unlock()
}

// Submit queues fn to run on the loop.
func (l *SerialLoop) Submit(fn func()) error {
	l.lock.Lock()
	if l.closed {
		l.lock.Unlock()
		return ErrLoopStopped
	}

	l.tasks = append(l.tasks, fn)
	l.lock.Unlock()

	l.notify()

	return nil
}

// Call runs fn on the loop and waits for it to return. It must not be called
// from the loop goroutine, which would wait on itself.
func (l *SerialLoop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})

	err := l.Submit(func() {
		defer close(done)
		fn()
	})
	if err != nil {
		return err
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending returns the number of timers that are scheduled and not canceled.
func (l *SerialLoop) Pending() int {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.timers.len()
}

// Running reports whether a goroutine is inside Run.
func (l *SerialLoop) Running() bool {
	return l.running.Load()
}

// Run processes tasks and timers until ctx is done or Close is called. It
// returns ctx.Err() in the first case and nil in the second.
func (l *SerialLoop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if l.isClosed() {
			return nil
		}

		ranTasks := l.runTasks()
		ranTimer := l.runOneTimer()

		if ranTasks || ranTimer {
			continue
		}

		l.waitForWork(ctx)
	}
}

// Close stops the loop and drops every pending timer and task.
func (l *SerialLoop) Close() {
	l.lock.Lock()
	l.closed = true
	l.timers.clear()
	l.tasks = nil
	l.lock.Unlock()

	l.notify()
}

func (l *SerialLoop) isClosed() bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.closed
}

func (l *SerialLoop) runTasks() bool {
	l.lock.Lock()
	tasks := l.tasks
	l.tasks = nil
	l.lock.Unlock()

	for _, task := range tasks {
		safeRun(l.log, task)
	}

	return len(tasks) > 0
}

// runOneTimer pops timers one at a time so that a callback can still cancel
// a timer that is due in the same round.
func (l *SerialLoop) runOneTimer() bool {
	l.lock.Lock()
	t := l.timers.popDue(time.Now())
	l.lock.Unlock()

	if t == nil {
		return false
	}

	safeExecute(l.log, t)

	return true
}

func (l *SerialLoop) waitForWork(ctx context.Context) {
	l.lock.Lock()
	next, hasTimer := l.timers.next()
	l.lock.Unlock()

	var due <-chan time.Time

	if hasTimer {
		timer := time.NewTimer(time.Until(next))
		defer timer.Stop()

		due = timer.C
	}

	select {
	case <-ctx.Done():
	case <-l.wake:
	case <-due:
	}
}

func (l *SerialLoop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
