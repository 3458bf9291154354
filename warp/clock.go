package warp

import (
	"time"

	"github.com/sarchlab/timewarp/sim/timing"
)

// A DilatedClock reports virtual time. It advances at rate times the host's
// clock and stands still while frozen. Every rate change rebases the clock so
// that virtual time never jumps.
type DilatedClock struct {
	host          timing.TimeTeller
	anchorReal    time.Time
	anchorVirtual time.Time
	rate          float64
	frozen        bool
}

// NewDilatedClock creates a clock that starts at the host's current time and
// runs at rate.
func NewDilatedClock(host timing.TimeTeller, rate float64) *DilatedClock {
	now := host.Now()

	return &DilatedClock{
		host:          host,
		anchorReal:    now,
		anchorVirtual: now,
		rate:          rate,
	}
}

// Now returns the virtual time.
func (c *DilatedClock) Now() time.Time {
	if c.frozen {
		return c.anchorVirtual
	}

	elapsed := c.host.Now().Sub(c.anchorReal)

	return c.anchorVirtual.Add(time.Duration(float64(elapsed) * c.rate))
}

// Since returns the virtual time elapsed since t.
func (c *DilatedClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// SetRate changes how fast virtual time runs from now on.
func (c *DilatedClock) SetRate(rate float64) {
	c.rebase()
	c.rate = rate
}

// Freeze stops virtual time.
func (c *DilatedClock) Freeze() {
	if c.frozen {
		return
	}

	c.rebase()
	c.frozen = true
}

// Thaw lets virtual time run again from where it stopped.
func (c *DilatedClock) Thaw() {
	if !c.frozen {
		return
	}

	c.anchorReal = c.host.Now()
	c.frozen = false
}

func (c *DilatedClock) rebase() {
	if c.frozen {
		return
	}

	c.anchorVirtual = c.Now()
	c.anchorReal = c.host.Now()
}
