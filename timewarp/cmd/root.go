// Package cmd provides the command-line interface for timewarp.
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// Environment variables read by the commands. A flag given on the command
// line takes precedence over its variable.
const (
	envLogLevel    = "TIMEWARP_LOG_LEVEL"
	envSpeed       = "TIMEWARP_SPEED"
	envMonitorPort = "TIMEWARP_MONITOR_PORT"
	envSettings    = "TIMEWARP_SETTINGS"
	envRecord      = "TIMEWARP_RECORD"
	envURL         = "TIMEWARP_URL"
)

var logger = zerolog.Nop()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "timewarp",
	Short: "Run timers at an adjustable speed, and pause or resume them.",
	Long: `timewarp runs a timer session whose timers can be sped up, ` +
		`slowed down, paused and resumed while they are pending. It also ` +
		`controls a running session and reads its recorded traces.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		err := loadEnv(envFile)
		if err != nil {
			return err
		}

		level, _ := cmd.Flags().GetString("log-level")
		if !cmd.Flags().Changed("log-level") && os.Getenv(envLogLevel) != "" {
			level = os.Getenv(envLogLevel)
		}

		logger, err = newLogger(level)

		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("env-file", ".env",
		"File with environment variables to load, if it exists")
	rootCmd.PersistentFlags().String("log-level", "info",
		"Log level (trace, debug, info, warn, error)")
}

// Execute adds all child commands to the root command and sets flags
// appropriately. It exits through atexit, so that open sessions and
// recordings are closed.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

// loadEnv loads path into the environment. A missing file is not an error.
// Variables already set are kept.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

func newLogger(level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(lvl).
		With().Timestamp().Logger(), nil
}

// envOverride returns the value of env if flag was not given on the
// command line.
func envOverride(cmd *cobra.Command, flag, env string) (string, bool) {
	if cmd.Flags().Changed(flag) {
		return "", false
	}

	v, ok := os.LookupEnv(env)
	if !ok || v == "" {
		return "", false
	}

	return v, true
}
