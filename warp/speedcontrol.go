package warp

// Speed returns the speed factor.
func (e *Engine) Speed() float64 {
	return e.speed.Speed()
}

// SetSpeed clamps f to [MinSpeed, MaxSpeed], rounds it to two decimal places
// and applies it. It returns the applied factor. Live native timers keep the
// delay they were armed with; the new factor applies to timers scheduled
// later and to timers re-armed by Resume. NaN leaves the factor unchanged.
func (e *Engine) SetSpeed(f float64) float64 {
	if e.restored {
		return e.speed.Speed()
	}

	old := e.speed.Speed()

	applied, changed := e.speed.Set(f)
	if !changed {
		return applied
	}

	e.clock.SetRate(applied)

	e.log.Debug().
		Float64("old", old).
		Float64("new", applied).
		Msg("speed changed")
	e.invokeStateHook(HookPosSpeedChange, SpeedChange{Old: old, New: applied})

	return applied
}

// FasterSpeed raises the speed factor by one step.
func (e *Engine) FasterSpeed() float64 {
	return e.SetSpeed(e.speed.Speed() + SpeedStep)
}

// SlowerSpeed lowers the speed factor by one step.
func (e *Engine) SlowerSpeed() float64 {
	return e.SetSpeed(e.speed.Speed() - SpeedStep)
}

// ResetSpeed sets the speed factor back to DefaultSpeed.
func (e *Engine) ResetSpeed() float64 {
	return e.SetSpeed(DefaultSpeed)
}
