// Package warp virtualizes timers so that they can be sped up, slowed down,
// paused and resumed without losing or double-firing any of them.
//
// An Engine sits in front of a host's timer primitives. Install it into a
// timing.Table and every timer scheduled through the table becomes a virtual
// timer whose native delay is the requested delay divided by the speed
// factor. The engine has no locks. All of its methods, and the native
// callbacks it schedules, must run on the host loop goroutine.
package warp

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/sarchlab/timewarp/sim/hooking"
	"github.com/sarchlab/timewarp/sim/id"
	"github.com/sarchlab/timewarp/sim/timing"
)

var _ timing.Scheduler = (*Engine)(nil)

// An Engine owns the virtual timers, the paused flag and the speed factor.
type Engine struct {
	hooking.HookableBase

	name     string
	natives  timing.Scheduler
	host     timing.TimeTeller
	registry *TimerRegistry
	speed    *SpeedController
	clock    *DilatedClock
	paused   bool

	onceIDs   id.Generator
	repeatIDs id.Generator

	table     *timing.Table
	installed bool
	restored  bool

	log zerolog.Logger
}

// Name returns the name of the engine.
func (e *Engine) Name() string {
	return e.name
}

// Now returns the engine's virtual time. It runs at the speed factor and
// stands still while the engine is paused.
func (e *Engine) Now() time.Time {
	return e.clock.Now()
}

// Since returns the virtual time elapsed since t.
func (e *Engine) Since(t time.Time) time.Duration {
	return e.clock.Since(t)
}

// Natives returns the primitives the engine schedules native timers with.
func (e *Engine) Natives() timing.Scheduler {
	return e.natives
}

// NumTimers returns the number of tracked timers.
func (e *Engine) NumTimers() int {
	return e.registry.Len()
}

func (e *Engine) nextID(kind Kind) timing.TimerID {
	if kind == KindRepeating {
		return timing.TimerID(e.repeatIDs.Generate())
	}

	return timing.TimerID(e.onceIDs.Generate())
}

// scaled converts a requested duration into a native delay at the current
// speed.
func (e *Engine) scaled(kind Kind, requested time.Duration) time.Duration {
	return scale(kind, requested, e.speed.Speed())
}

func scale(kind Kind, d time.Duration, speed float64) time.Duration {
	native := time.Duration(float64(d) / speed)

	return max(kind.floor(), native)
}
