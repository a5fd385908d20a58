package cmd

import (
	"github.com/spf13/cobra"
	"teamcal/config"
)

func NewMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ConnectDB(); err != nil {
				return err
			}
			return config.MigrateDB(config.DB)
		},
	}
}
