package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trader",
	Short: "An event-driven equity backtesting engine",
	Long: `Trader replays historical price bars and text events through a
scoring pipeline under strict time-capsule rules: no information is acted on
before it would have been visible.

It provides tools for:
  - Backtesting the sentiment scoring pipeline over bar and event history
  - Kelly-style position sizing with per-name and portfolio caps
  - Stop, take-profit, timeout, and knee-jerk exits
  - Journaling runs, trades, and equity curves to SQLite`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging()
	},
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func setupLogging() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}
