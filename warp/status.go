package warp

import (
	"time"

	"github.com/sarchlab/timewarp/sim/timing"
)

// Status summarizes an engine.
type Status struct {
	Speed     float64   `json:"speed"`
	Paused    bool      `json:"paused"`
	NumTimers int       `json:"num_timers"`
	NumArmed  int       `json:"num_armed"`
	Installed bool      `json:"installed"`
	Restored  bool      `json:"restored"`
	Now       time.Time `json:"now"`
}

// Status returns a summary of the engine's state.
func (e *Engine) Status() Status {
	armed := 0
	e.registry.Each(func(t *VirtualTimer) {
		if t.armed {
			armed++
		}
	})

	return Status{
		Speed:     e.speed.Speed(),
		Paused:    e.paused,
		NumTimers: e.registry.Len(),
		NumArmed:  armed,
		Installed: e.IsInstalled(),
		Restored:  e.restored,
		Now:       e.clock.Now(),
	}
}

// Timers returns a copy of every tracked timer in scheduling order.
func (e *Engine) Timers() []TimerInfo {
	infos := make([]TimerInfo, 0, e.registry.Len())
	e.registry.Each(func(t *VirtualTimer) {
		infos = append(infos, t.Info())
	})

	return infos
}

// Timer returns a copy of the tracked timer with the given ID.
func (e *Engine) Timer(id timing.TimerID) (TimerInfo, bool) {
	t, found := e.registry.Get(id)
	if !found {
		return TimerInfo{}, false
	}

	return t.Info(), true
}
