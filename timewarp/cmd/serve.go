package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/timewarp/session"
	"github.com/sarchlab/timewarp/warp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a timer session with a control surface.",
	Long: "`serve` runs a session until interrupted. A heartbeat timer logs " +
		"every interval of session time, so speed and pause changes are " +
		"visible in the log. The session is controlled through the monitor " +
		"page or the `ctl` and `speed` commands.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := sessionBuilder(cmd)
		if err != nil {
			return err
		}

		s, err := b.Build()
		if err != nil {
			return err
		}
		defer s.Terminate()

		open, _ := cmd.Flags().GetBool("open")
		if open && s.MonitorURL() != "" {
			err = browser.OpenURL(s.MonitorURL())
			if err != nil {
				logger.Warn().Err(err).Msg("cannot open browser")
			}
		}

		heartbeat, _ := cmd.Flags().GetDuration("heartbeat")
		if heartbeat > 0 {
			scheduleHeartbeat(s, heartbeat)
		}

		ctx, stop := signal.NotifyContext(
			cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		err = s.Run(ctx)
		if err != nil {
			return err
		}

		return s.Terminate()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.Float64("speed", warp.DefaultSpeed,
		"Initial speed factor, env "+envSpeed)
	f.Bool("paused", false, "Start paused")
	f.Int("port", 0, "Monitor port, random if 0, env "+envMonitorPort)
	f.Bool("no-monitor", false, "Do not serve the control surface")
	f.Bool("open", false, "Open the control page in a browser")
	f.String("settings", "",
		"Settings file that keeps the speed, env "+envSettings)
	f.String("record", "",
		"Record a timer trace into this file (without .sqlite3), env "+
			envRecord)
	f.Duration("heartbeat", time.Second,
		"Interval of the heartbeat timer, 0 disables it")
	f.String("name", "warp", "Engine name used in logs and traces")
}

func sessionBuilder(cmd *cobra.Command) (session.Builder, error) {
	f := cmd.Flags()
	name, _ := f.GetString("name")

	b := session.MakeBuilder().
		WithName(name).
		WithLogger(logger)

	speed, hasSpeed, err := floatFlag(cmd, "speed", envSpeed)
	if err != nil {
		return b, err
	}

	if hasSpeed {
		b = b.WithSpeed(speed)
	}

	if paused, _ := f.GetBool("paused"); paused {
		b = b.WithPaused()
	}

	noMonitor, _ := f.GetBool("no-monitor")
	if noMonitor {
		b = b.WithoutMonitoring()
	} else {
		port, err := intFlag(cmd, "port", envMonitorPort)
		if err != nil {
			return b, err
		}

		b = b.WithMonitorPort(port)
	}

	if path := stringFlag(cmd, "settings", envSettings); path != "" {
		b = b.WithSettings(path)
	}

	if path := stringFlag(cmd, "record", envRecord); path != "" {
		b = b.WithRecording(path)
	}

	return b, nil
}

func scheduleHeartbeat(s *session.Session, interval time.Duration) {
	err := s.Loop().Submit(func() {
		beats := 0
		start := s.Engine().Now()

		s.Scheduler().ScheduleRepeating(func(...any) {
			beats++
			logger.Info().
				Int("beat", beats).
				Dur("session_time", s.Engine().Since(start)).
				Float64("speed", s.Engine().Speed()).
				Msg("heartbeat")
		}, interval)
	})
	if err != nil {
		logger.Warn().Err(err).Msg("cannot schedule heartbeat")
	}
}

// floatFlag returns the flag value, or the environment value if the flag
// was not given. The boolean reports whether either was given.
func floatFlag(cmd *cobra.Command, flag, env string) (float64, bool, error) {
	if v, ok := envOverride(cmd, flag, env); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false, fmt.Errorf("%s: %w", env, err)
		}

		return f, true, nil
	}

	f, _ := cmd.Flags().GetFloat64(flag)

	return f, cmd.Flags().Changed(flag), nil
}

func intFlag(cmd *cobra.Command, flag, env string) (int, error) {
	if v, ok := envOverride(cmd, flag, env); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", env, err)
		}

		return i, nil
	}

	i, _ := cmd.Flags().GetInt(flag)

	return i, nil
}

func stringFlag(cmd *cobra.Command, flag, env string) string {
	if v, ok := envOverride(cmd, flag, env); ok {
		return v
	}

	v, _ := cmd.Flags().GetString(flag)

	return v
}
