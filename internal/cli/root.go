// Package cli implements bookingctl, the operator tool for the offline log:
// probe the authority, inspect pending records, force a reconciliation run
// and refresh the schedule snapshot.
package cli

import (
	"context"
	"fmt"

	"busbooking/internal/app"
	intconfig "busbooking/internal/config"
	"busbooking/internal/utils"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Open builds the application. Tests replace it.
	Open func(ctx context.Context) (*app.App, error)
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Open: openFromEnv}

	cmd := &cobra.Command{
		Use:   "bookingctl",
		Short: "Operate the offline booking log",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := "warn"
			if opts.Verbose {
				level = "debug"
			}
			utils.ConfigureLogger(level, true)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewProbeCommand(opts))
	cmd.AddCommand(NewPendingCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewCacheCommand(opts))

	return cmd
}

func openFromEnv(ctx context.Context) (*app.App, error) {
	env, err := intconfig.LoadEnv()
	if err != nil {
		return nil, err
	}
	return app.Build(ctx, env)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
