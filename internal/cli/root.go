// Package cli implements the procsim command line.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/procman"
)

var (
	configURL string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:           "procsim",
	Short:         "Process table and dispatch simulator",
	Long:          "procsim boots scheduling domains from a YAML, TOML or JSON config, creates processes and runs dispatch cycles.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configURL, "config", "c", "", "config file or afs URL (.yaml, .toml, .json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log table operations")
	rootCmd.AddCommand(runCmd, configCmd, inspectCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig(ctx context.Context) (*procman.Config, error) {
	if configURL == "" {
		return procman.DefaultConfig(), nil
	}
	return procman.LoadConfig(ctx, afs.New(), configURL)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
