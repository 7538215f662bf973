package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Config is the process configuration read from the environment.
type Config struct {
	LogLevel    string `env:"BLENDSIM_LOG_LEVEL" envDefault:"info"`
	MetricsAddr string `env:"BLENDSIM_METRICS_ADDR"`
	Workers     int    `env:"BLENDSIM_WORKERS"`
}

var verbose bool

// Execute runs the root command
func Execute(ctx context.Context, cfg Config, version, commit, buildDate string) error {
	rootCmd := newRootCommand(cfg, version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(cfg Config, version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blendsim",
		Short: "Offline driver for animation blend graphs",
		Long: `blendsim loads a character description (skeleton, clips and blend graph) from YAML
and evaluates it frame by frame without a renderer.

Environment:
  BLENDSIM_LOG_LEVEL     trace, debug, info, warn or error (default info)
  BLENDSIM_METRICS_ADDR  serve Prometheus metrics on this address during run
  BLENDSIM_WORKERS       goroutines updating animation instances`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newRunCommand(cfg))
	rootCmd.AddCommand(newValidateCommand())

	return rootCmd
}
