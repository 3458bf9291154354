package session

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/timewarp/datarecording"
	"github.com/sarchlab/timewarp/monitoring"
	"github.com/sarchlab/timewarp/settings"
	"github.com/sarchlab/timewarp/sim/timing"
	"github.com/sarchlab/timewarp/tracing"
	"github.com/sarchlab/timewarp/warp"
)

// Builder can be used to build a session.
type Builder struct {
	name         string
	speed        float64
	speedSet     bool
	paused       bool
	monitorOn    bool
	monitorPort  int
	recordOn     bool
	recordPath   string
	settingsPath string
	log          *zerolog.Logger
}

// MakeBuilder creates a new builder. By default the session runs a monitor
// and neither records traces nor persists settings.
func MakeBuilder() Builder {
	return Builder{
		name:      "warp",
		speed:     warp.DefaultSpeed,
		monitorOn: true,
	}
}

// WithName sets the engine name.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithSpeed sets the initial speed. It takes precedence over a stored speed.
func (b Builder) WithSpeed(f float64) Builder {
	b.speed = f
	b.speedSet = true

	return b
}

// WithPaused makes the session start paused.
func (b Builder) WithPaused() Builder {
	b.paused = true
	return b
}

// WithoutMonitoring sets the session to not serve the control surface.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithRecording makes the session record a timer trace into path +
// ".sqlite3". An empty path picks a name from the session ID.
func (b Builder) WithRecording(path string) Builder {
	b.recordOn = true
	b.recordPath = path

	return b
}

// WithSettings makes the session load its initial speed from the settings
// file at path and save every speed change back to it.
func (b Builder) WithSettings(path string) Builder {
	b.settingsPath = path
	return b
}

// WithLogger sets the logger shared by the loop, the engine and the monitor.
func (b Builder) WithLogger(log zerolog.Logger) Builder {
	b.log = &log
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the session. The engine is installed in front of the loop
// when Build returns; nothing runs until Run is called.
func (b Builder) Build() (*Session, error) {
	b.parametersMustBeValid()

	s := &Session{id: xid.New().String()}
	s.log = b.logger().With().Str("session", s.id).Logger()

	err := b.openSettings(s)
	if err != nil {
		return nil, err
	}

	s.loop = timing.NewSerialLoop().WithLogger(s.log)
	s.table = timing.NewTable(s.loop)

	engineBuilder := warp.MakeBuilder().
		WithName(b.name).
		WithHost(s.loop).
		WithSpeed(b.initialSpeed(s)).
		WithLogger(s.log)
	if b.paused {
		engineBuilder = engineBuilder.WithPaused()
	}

	s.engine = engineBuilder.Build()
	s.restore = s.engine.Install(s.table)

	s.stats = tracing.NewStatsTracer(nil)
	s.lifetimes = tracing.NewAverageTimeTracer(s.loop, nil)
	s.busy = tracing.NewBusyTimeTracer(s.loop, nil)
	tracing.CollectTrace(s.engine, s.stats)
	tracing.CollectTrace(s.engine, s.lifetimes)
	tracing.CollectTrace(s.engine, s.busy)

	if s.settings != nil {
		s.engine.AcceptHook(settings.NewSpeedSaver(s.settings, s.log))
	}

	if b.recordOn {
		b.startRecording(s)
	}

	if b.monitorOn {
		err = b.startMonitor(s)
		if err != nil {
			s.Terminate()
			return nil, err
		}
	}

	atexit.Register(func() { s.Terminate() })

	return s, nil
}

func (b Builder) logger() zerolog.Logger {
	if b.log != nil {
		return *b.log
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Logger()
}

func (b Builder) openSettings(s *Session) error {
	if b.settingsPath == "" {
		return nil
	}

	store, err := settings.Open(context.Background(), b.settingsPath)
	if err != nil {
		return fmt.Errorf("build session: %w", err)
	}

	s.settings = store

	return nil
}

// initialSpeed picks the explicit speed, then the stored one, then the
// default. A stored speed that cannot be read is logged and skipped.
func (b Builder) initialSpeed(s *Session) float64 {
	if b.speedSet || s.settings == nil {
		return b.speed
	}

	stored, ok, err := s.settings.Speed(context.Background())
	if err != nil {
		s.log.Warn().Err(err).Msg("cannot load stored speed")
		return b.speed
	}

	if !ok {
		return b.speed
	}

	s.log.Debug().Float64("speed", stored).Msg("loaded stored speed")

	return stored
}

func (b Builder) startRecording(s *Session) {
	outputPath := b.recordPath
	if outputPath == "" {
		outputPath = "timewarp_" + s.id
	}

	s.recordPath = outputPath + ".sqlite3"
	s.recorder = datarecording.New(outputPath)
	s.tracer = tracing.NewDBTracer(s.loop, s.recorder)
	tracing.CollectTrace(s.engine, s.tracer)
}

func (b Builder) startMonitor(s *Session) error {
	s.monitor = monitoring.NewMonitor(s.engine, s.loop).
		WithStats(s.stats).
		WithLogger(s.log)
	if b.monitorPort > 0 {
		s.monitor.WithPortNumber(b.monitorPort)
	}

	url, err := s.monitor.StartServer()
	if err != nil {
		return fmt.Errorf("build session: %w", err)
	}

	s.monitorURL = url

	return nil
}
