package warp

import "github.com/sarchlab/timewarp/sim/timing"

// Install puts the engine in front of the primitives currently in table. The
// replaced primitives become the engine's natives. The returned function
// restores them.
//
// An engine can be installed once, before it tracks any timer.
func (e *Engine) Install(table *timing.Table) (restore func()) {
	switch {
	case e.restored:
		panic("cannot install a restored engine")
	case e.installed:
		panic("engine is already installed")
	case e.registry.Len() > 0:
		panic("engine must be installed before it tracks timers")
	}

	e.natives = table.Replace(e)
	e.table = table
	e.installed = true

	e.log.Debug().Msg("installed")
	e.invokeStateHook(HookPosInstall, e.Status())

	return e.Restore
}

// Restore cancels every live native timer, forgets every tracked timer and
// puts the native primitives back. Speed and pause state return to their
// defaults. Afterwards the engine forwards every call to the natives without
// tracking it. Restoring twice does nothing.
func (e *Engine) Restore() {
	if e.restored {
		return
	}

	for _, t := range e.registry.Clear() {
		e.disarm(t)
		e.invokeTimerHook(HookPosTimerCanceled, t, "restore")
	}

	if e.table != nil && !e.table.CompareAndReplace(e, e.natives) {
		e.log.Warn().Msg("primitives were replaced after install; not restored")
	}

	e.paused = false
	e.speed.Reset()
	e.clock.Thaw()
	e.clock.SetRate(DefaultSpeed)
	e.restored = true

	e.log.Debug().Msg("restored")
	e.invokeStateHook(HookPosRestore, e.Status())
}

// IsInstalled reports whether the engine is installed and not yet restored.
func (e *Engine) IsInstalled() bool {
	return e.installed && !e.restored
}

// IsRestored reports whether Restore has run.
func (e *Engine) IsRestored() bool {
	return e.restored
}
