// Package session assembles a running timewarp setup: a serial host loop, a
// primitive table with a warp engine installed in front of it, and the
// optional monitor, trace recorder and settings store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sarchlab/timewarp/datarecording"
	"github.com/sarchlab/timewarp/monitoring"
	"github.com/sarchlab/timewarp/settings"
	"github.com/sarchlab/timewarp/sim/timing"
	"github.com/sarchlab/timewarp/tracing"
	"github.com/sarchlab/timewarp/warp"
)

// terminateTimeout bounds how long Terminate waits for the loop and the
// monitor.
const terminateTimeout = 2 * time.Second

// A Session owns a loop and everything wired around it.
type Session struct {
	id  string
	log zerolog.Logger

	loop    *timing.SerialLoop
	table   *timing.Table
	engine  *warp.Engine
	restore func()

	stats      *tracing.StatsTracer
	lifetimes  *tracing.TotalAvgTimeTracer
	busy       *tracing.BusyTimeTracer
	tracer     *tracing.DBTracer
	recorder   datarecording.DataRecorder
	recordPath string
	settings   *settings.Store
	monitor    *monitoring.Monitor
	monitorURL string

	terminateOnce sync.Once
	terminateErr  error
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// Engine returns the installed engine. Its methods must only be called on
// the loop, for example through Do.
func (s *Session) Engine() *warp.Engine {
	return s.engine
}

// Scheduler returns the primitive table that timer code should schedule
// through. It reaches the engine until the session terminates.
func (s *Session) Scheduler() timing.Scheduler {
	return s.table
}

// Loop returns the host loop.
func (s *Session) Loop() *timing.SerialLoop {
	return s.loop
}

// Stats returns the timer counters.
func (s *Session) Stats() tracing.Stats {
	return s.stats.Stats()
}

// AverageLifetime returns the average wall time from scheduling a timer to
// its firing or cancellation. Each fire of a repeating timer does not end it.
func (s *Session) AverageLifetime() time.Duration {
	return s.lifetimes.AverageTime()
}

// BusyTime returns the wall time during which at least one timer was
// pending.
func (s *Session) BusyTime() time.Duration {
	return s.busy.BusyTime()
}

// Monitor returns the monitor, or nil if monitoring is off.
func (s *Session) Monitor() *monitoring.Monitor {
	return s.monitor
}

// MonitorURL returns the URL of the control surface, or "" if monitoring is
// off.
func (s *Session) MonitorURL() string {
	return s.monitorURL
}

// RecordPath returns the trace file, or "" if recording is off.
func (s *Session) RecordPath() string {
	return s.recordPath
}

// Run runs the loop until ctx is done or the session terminates.
func (s *Session) Run(ctx context.Context) error {
	s.log.Info().
		Float64("speed", s.engine.Speed()).
		Bool("paused", s.engine.IsPaused()).
		Msg("session started")

	err := s.loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// Do runs fn on the loop and waits for it. It must not be called from the
// loop itself.
func (s *Session) Do(ctx context.Context, fn func()) error {
	return s.loop.Call(ctx, fn)
}

// Terminate restores the native primitives, stops the loop and the monitor,
// and closes the recorder and the settings store. It is safe to call more
// than once; later calls return the first result. Calling it from the loop
// blocks until the restore times out.
func (s *Session) Terminate() error {
	s.terminateOnce.Do(func() {
		s.terminateErr = s.terminate()
	})

	return s.terminateErr
}

func (s *Session) terminate() error {
	ctx, cancel := context.WithTimeout(context.Background(), terminateTimeout)
	defer cancel()

	var errs []error

	s.restoreEngine(ctx)
	s.loop.Close()

	if s.monitor != nil {
		err := s.monitor.Shutdown(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("stop monitor: %w", err))
		}
	}

	if s.tracer != nil {
		s.tracer.Terminate()
	}

	if s.recorder != nil {
		err := s.recorder.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("close recorder: %w", err))
		}
	}

	if s.settings != nil {
		err := s.settings.Close()
		if err != nil {
			errs = append(errs, fmt.Errorf("close settings: %w", err))
		}
	}

	s.busy.TerminateAllTasks()

	s.log.Info().
		Uint64("fires", s.stats.Stats().Fires).
		Dur("avg_lifetime", s.lifetimes.AverageTime()).
		Dur("busy", s.busy.BusyTime()).
		Msg("session terminated")

	return errors.Join(errs...)
}

// restoreEngine runs the engine's restore on the loop while the loop is
// running and inline otherwise.
func (s *Session) restoreEngine(ctx context.Context) {
	if !s.loop.Running() {
		s.restore()
		return
	}

	err := s.loop.Call(ctx, s.restore)
	if err != nil {
		s.log.Warn().Err(err).Msg("cannot restore on the loop")
	}
}
