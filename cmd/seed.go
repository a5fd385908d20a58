package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"teamcal/config"
	"teamcal/store"
)

func NewSeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin, manager and employee accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ConnectDB(); err != nil {
				return err
			}
			if err := config.MigrateDB(config.DB); err != nil {
				return err
			}

			created, err := store.SeedDefaultUsers(cmd.Context(), store.NewUserStore(config.DB))
			if err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			if created == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Admin user already exists, nothing to do")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d users\n", created)
			return nil
		},
	}
}
