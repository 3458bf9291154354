package warp

import (
	"time"

	"github.com/sarchlab/timewarp/sim/timing"
)

// Kind tells one-shot timers from repeating ones.
type Kind int

// The kinds of virtual timers.
const (
	KindOnce Kind = iota
	KindRepeating
)

func (k Kind) String() string {
	switch k {
	case KindOnce:
		return "once"
	case KindRepeating:
		return "repeating"
	default:
		return "unknown"
	}
}

// MarshalText lets a Kind appear by name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// floor is the shortest native delay the engine ever asks for.
func (k Kind) floor() time.Duration {
	if k == KindRepeating {
		return timing.MinInterval
	}

	return 0
}

// A PauseSnapshot records how much of a timer's wait was left when the
// engine paused.
type PauseSnapshot struct {
	// Remaining is the native wait that was left. For repeating timers it is
	// the last scaled interval.
	Remaining time.Duration `json:"remaining"`

	// ArmedSpeed is the speed factor the cancelled native delay was computed
	// with.
	ArmedSpeed float64 `json:"armed_speed"`

	TakenAt time.Time `json:"taken_at"`
}

// A VirtualTimer is a timer that the engine tracks on behalf of its caller.
type VirtualTimer struct {
	ID        timing.TimerID
	Kind      Kind
	Requested time.Duration
	CreatedAt time.Time

	callback timing.Callback
	args     []any

	native         timing.TimerID
	armed          bool
	armedAt        time.Time
	armedDelay     time.Duration
	armedSpeed     float64
	expectedFireAt time.Time

	snapshot *PauseSnapshot
	fired    uint64
}

// IsArmed reports whether the timer holds a live native handle.
func (t *VirtualTimer) IsArmed() bool {
	return t.armed
}

// TimerInfo is a read-only copy of a VirtualTimer's state.
type TimerInfo struct {
	ID             timing.TimerID `json:"id"`
	Kind           Kind           `json:"kind"`
	Requested      time.Duration  `json:"requested"`
	CreatedAt      time.Time      `json:"created_at"`
	Armed          bool           `json:"armed"`
	NativeHandle   timing.TimerID `json:"native_handle,omitempty"`
	NativeDelay    time.Duration  `json:"native_delay"`
	ArmedSpeed     float64        `json:"armed_speed,omitempty"`
	ExpectedFireAt time.Time      `json:"expected_fire_at,omitempty"`
	Snapshot       *PauseSnapshot `json:"snapshot,omitempty"`
	Fired          uint64         `json:"fired"`
	NumArgs        int            `json:"num_args"`
}

// Info copies the timer's state.
func (t *VirtualTimer) Info() TimerInfo {
	info := TimerInfo{
		ID:        t.ID,
		Kind:      t.Kind,
		Requested: t.Requested,
		CreatedAt: t.CreatedAt,
		Armed:     t.armed,
		Fired:     t.fired,
		NumArgs:   len(t.args),
	}

	if t.armed {
		info.NativeHandle = t.native
		info.NativeDelay = t.armedDelay
		info.ArmedSpeed = t.armedSpeed

		if t.Kind == KindOnce {
			info.ExpectedFireAt = t.expectedFireAt
		}
	}

	if t.snapshot != nil {
		s := *t.snapshot
		info.Snapshot = &s
	}

	return info
}
