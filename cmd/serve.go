package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"teamcal/config"
	"teamcal/routes"
)

func NewServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "migrate the schema before serving")
	return cmd
}

func runServe(ctx context.Context, migrate bool) error {
	if err := config.ConnectDB(); err != nil {
		return err
	}
	if migrate {
		if err := config.MigrateDB(config.DB); err != nil {
			return err
		}
	}

	app := routes.NewApp(config.DB)

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("🚀 Server starting on port %s", config.AppConfig.ServerPort)
		errCh <- app.Listen(":" + config.AppConfig.ServerPort)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}
