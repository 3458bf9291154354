package warp

import "math"

// Speed limits and steps.
const (
	MinSpeed     = 0.1
	MaxSpeed     = 4.0
	DefaultSpeed = 1.0
	SpeedStep    = 0.1
)

// ClampSpeed limits f to [MinSpeed, MaxSpeed] and rounds it to two decimal
// places. NaN becomes DefaultSpeed.
func ClampSpeed(f float64) float64 {
	if math.IsNaN(f) {
		return DefaultSpeed
	}

	f = math.Max(MinSpeed, math.Min(MaxSpeed, f))

	return math.Round(f*100) / 100
}

// A SpeedController owns the speed factor.
type SpeedController struct {
	factor float64
}

// NewSpeedController creates a SpeedController set to the clamped initial
// factor.
func NewSpeedController(initial float64) *SpeedController {
	return &SpeedController{factor: ClampSpeed(initial)}
}

// Speed returns the current factor.
func (c *SpeedController) Speed() float64 {
	return c.factor
}

// Set clamps and applies f, returning the applied factor and whether it
// differs from the previous one. NaN is ignored.
func (c *SpeedController) Set(f float64) (applied float64, changed bool) {
	if math.IsNaN(f) {
		return c.factor, false
	}

	applied = ClampSpeed(f)
	changed = applied != c.factor
	c.factor = applied

	return applied, changed
}

// Reset returns the factor to DefaultSpeed.
func (c *SpeedController) Reset() {
	c.factor = DefaultSpeed
}
