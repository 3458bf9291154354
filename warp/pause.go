package warp

import "time"

// Pause freezes every timer. Live native handles are canceled and the time
// each timer had left is kept until Resume. Pausing a paused engine does
// nothing.
func (e *Engine) Pause() {
	if e.paused || e.restored {
		return
	}

	e.paused = true
	now := e.host.Now()

	e.registry.Each(func(t *VirtualTimer) {
		if !t.armed {
			return
		}

		remaining := t.armedDelay
		if t.Kind == KindOnce {
			remaining = max(0, t.expectedFireAt.Sub(now))
		}

		t.snapshot = &PauseSnapshot{
			Remaining:  remaining,
			ArmedSpeed: t.armedSpeed,
			TakenAt:    now,
		}

		e.disarm(t)
	})

	e.clock.Freeze()

	e.log.Debug().Int("timers", e.registry.Len()).Msg("paused")
	e.invokeStateHook(HookPosPause, e.Status())
}

// Resume re-arms every timer at the current speed. Resuming an engine that is
// not paused does nothing.
func (e *Engine) Resume() {
	if !e.paused || e.restored {
		return
	}

	e.paused = false
	e.clock.Thaw()

	e.registry.Each(func(t *VirtualTimer) {
		if t.armed {
			return
		}

		e.arm(t, e.resumeDelay(t))
		t.snapshot = nil
	})

	e.log.Debug().Int("timers", e.registry.Len()).Msg("resumed")
	e.invokeStateHook(HookPosResume, e.Status())
}

// TogglePause pauses a running engine or resumes a paused one, and returns
// whether the engine is now paused.
func (e *Engine) TogglePause() bool {
	if e.paused {
		e.Resume()
	} else {
		e.Pause()
	}

	return e.paused
}

// IsPaused reports whether the engine is paused.
func (e *Engine) IsPaused() bool {
	return e.paused
}

// resumeDelay is the native delay t is re-armed with. A one-shot timer waits
// out its snapshot remainder divided by the current speed. A repeating timer
// starts a full interval.
func (e *Engine) resumeDelay(t *VirtualTimer) time.Duration {
	s := t.snapshot
	if s == nil || t.Kind == KindRepeating {
		return e.scaled(t.Kind, t.Requested)
	}

	return e.scaled(KindOnce, s.Remaining)
}
