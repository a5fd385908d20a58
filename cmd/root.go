// Package cmd wires the teamcal command line: serve, migrate and seed.
package cmd

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"teamcal/config"
)

// NewRootCommand creates the root command. Every subcommand starts from
// the loaded configuration with logging and Sentry set up.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "teamcal",
		Short:         "Team calendar and project management API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			config.ConfigureLogging()
			return config.InitSentry()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			sentry.Flush(2 * time.Second)
		},
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewSeedCommand())

	return cmd
}
