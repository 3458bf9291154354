package warp

import (
	"os"

	"github.com/rs/zerolog"

	"github.com/sarchlab/timewarp/sim/id"
	"github.com/sarchlab/timewarp/sim/timing"
)

// Builder can build engines.
type Builder struct {
	name   string
	host   timing.Host
	speed  float64
	paused bool
	log    *zerolog.Logger
}

// MakeBuilder creates a new builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		name:  "warp",
		speed: DefaultSpeed,
	}
}

// WithName sets the name that traces and logs use for the engine.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithHost sets the host whose primitives and clock the engine uses until it
// is installed.
func (b Builder) WithHost(host timing.Host) Builder {
	b.host = host
	return b
}

// WithSpeed sets the initial speed factor. It is clamped like SetSpeed.
func (b Builder) WithSpeed(f float64) Builder {
	b.speed = f
	return b
}

// WithPaused makes the engine start paused.
func (b Builder) WithPaused() Builder {
	b.paused = true
	return b
}

// WithLogger sets the logger.
func (b Builder) WithLogger(log zerolog.Logger) Builder {
	b.log = &log
	return b
}

// Build creates an engine.
func (b Builder) Build() *Engine {
	if b.host == nil {
		panic("engine needs a host")
	}

	e := &Engine{
		name:      b.name,
		natives:   b.host,
		host:      b.host,
		registry:  NewTimerRegistry(),
		speed:     NewSpeedController(b.speed),
		onceIDs:   id.NewPrefixedGenerator("once-"),
		repeatIDs: id.NewPrefixedGenerator("repeat-"),
		paused:    b.paused,
	}

	e.clock = NewDilatedClock(b.host, e.speed.Speed())
	if e.paused {
		e.clock.Freeze()
	}

	if b.log != nil {
		e.log = *b.log
	} else {
		e.log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(zerolog.InfoLevel).
			With().Timestamp().Logger()
	}

	e.log = e.log.With().Str("engine", b.name).Logger()

	return e
}
