package warp

import (
	"time"

	"github.com/sarchlab/timewarp/sim/timing"
)

// ScheduleOnce runs cb once after delay, scaled by the speed factor. A nil
// callback is passed to the native primitive untouched.
func (e *Engine) ScheduleOnce(
	cb timing.Callback,
	delay time.Duration,
	args ...any,
) timing.TimerID {
	return e.schedule(KindOnce, cb, delay, args)
}

// ScheduleRepeating runs cb every interval, scaled by the speed factor, until
// canceled.
func (e *Engine) ScheduleRepeating(
	cb timing.Callback,
	interval time.Duration,
	args ...any,
) timing.TimerID {
	return e.schedule(KindRepeating, cb, interval, args)
}

// CancelOnce cancels a one-shot timer. IDs the engine does not track as
// one-shot timers are passed to the native primitive.
func (e *Engine) CancelOnce(id timing.TimerID) {
	e.cancel(KindOnce, id)
}

// CancelRepeating cancels a repeating timer. IDs the engine does not track as
// repeating timers are passed to the native primitive.
func (e *Engine) CancelRepeating(id timing.TimerID) {
	e.cancel(KindRepeating, id)
}

func (e *Engine) schedule(
	kind Kind,
	cb timing.Callback,
	d time.Duration,
	args []any,
) timing.TimerID {
	if e.restored || cb == nil {
		return e.forwardSchedule(kind, cb, d, args)
	}

	if d <= 0 {
		d = kind.floor()
	}

	t := &VirtualTimer{
		ID:        e.nextID(kind),
		Kind:      kind,
		Requested: d,
		CreatedAt: e.host.Now(),
		callback:  cb,
		args:      args,
	}
	e.registry.Insert(t)

	if !e.paused {
		e.arm(t, e.scaled(kind, d))
	}

	e.log.Trace().
		Str("timer", string(t.ID)).
		Dur("requested", d).
		Bool("paused", e.paused).
		Msg("timer scheduled")
	e.invokeTimerHook(HookPosTimerScheduled, t, nil)

	return t.ID
}

func (e *Engine) cancel(kind Kind, id timing.TimerID) {
	if e.restored {
		e.forwardCancel(kind, id)
		return
	}

	t, found := e.registry.Lookup(id, kind)
	if !found {
		e.forwardCancel(kind, id)
		return
	}

	e.disarm(t)
	e.registry.Remove(id)

	e.invokeTimerHook(HookPosTimerCanceled, t, nil)
}

func (e *Engine) forwardSchedule(
	kind Kind,
	cb timing.Callback,
	d time.Duration,
	args []any,
) timing.TimerID {
	if kind == KindRepeating {
		return e.natives.ScheduleRepeating(cb, d, args...)
	}

	return e.natives.ScheduleOnce(cb, d, args...)
}

func (e *Engine) forwardCancel(kind Kind, id timing.TimerID) {
	if kind == KindRepeating {
		e.natives.CancelRepeating(id)
		return
	}

	e.natives.CancelOnce(id)
}

// arm gives t a live native handle that fires after delay.
func (e *Engine) arm(t *VirtualTimer, delay time.Duration) {
	var handle timing.TimerID

	id := t.ID

	switch t.Kind {
	case KindOnce:
		handle = e.natives.ScheduleOnce(func(...any) {
			e.fireOnce(id, handle)
		}, delay)
	case KindRepeating:
		handle = e.natives.ScheduleRepeating(func(...any) {
			e.fireRepeating(id, handle)
		}, delay)
	}

	now := e.host.Now()
	t.native = handle
	t.armed = true
	t.armedAt = now
	t.armedDelay = delay
	t.armedSpeed = e.speed.Speed()
	t.expectedFireAt = now.Add(delay)
}

// disarm cancels t's live native handle, if any.
func (e *Engine) disarm(t *VirtualTimer) {
	if !t.armed {
		return
	}

	if t.Kind == KindRepeating {
		e.natives.CancelRepeating(t.native)
	} else {
		e.natives.CancelOnce(t.native)
	}

	t.native = ""
	t.armed = false
}

func (e *Engine) fireOnce(id, handle timing.TimerID) {
	t, found := e.registry.Lookup(id, KindOnce)
	if !found || !t.armed || t.native != handle {
		e.log.Debug().
			Str("timer", string(id)).
			Str("native", string(handle)).
			Msg("stale native timeout ignored")

		return
	}

	e.registry.Remove(id)
	t.native = ""
	t.armed = false

	e.invoke(t)
}

func (e *Engine) fireRepeating(id, handle timing.TimerID) {
	t, found := e.registry.Lookup(id, KindRepeating)
	if !found || !t.armed || t.native != handle {
		e.log.Debug().
			Str("timer", string(id)).
			Str("native", string(handle)).
			Msg("stray native interval canceled")
		e.natives.CancelRepeating(handle)

		return
	}

	e.invoke(t)
}

// invoke runs the callback of t. A panicking callback is reported and does
// not unwind into the host loop.
func (e *Engine) invoke(t *VirtualTimer) {
	t.fired++

	e.invokeTimerHook(HookPosBeforeFire, t, nil)

	if err := safeCall(t); err != nil {
		e.log.Error().
			Str("timer", string(t.ID)).
			Stringer("kind", t.Kind).
			Interface("panic", err.Value).
			Msg("timer callback panicked")
		e.invokeTimerHook(HookPosCallbackFailed, t, err)
	}

	e.invokeTimerHook(HookPosAfterFire, t, nil)
}

func safeCall(t *VirtualTimer) (err *CallbackError) {
	defer func() {
		if r := recover(); r != nil {
			err = &CallbackError{TimerID: t.ID, Kind: t.Kind, Value: r}
		}
	}()

	t.callback(t.args...)

	return nil
}
