package config

import (
	"fmt"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// ConfigureLogging sets the logrus level and switches to JSON output
// outside development.
func ConfigureLogging() {
	logrus.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(AppConfig.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if AppConfig.Environment != "development" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// InitSentry enables error reporting when SENTRY_DSN is set. Without a DSN
// the sentry calls in utils are no-ops.
func InitSentry() error {
	if AppConfig.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         AppConfig.SentryDSN,
		Environment: AppConfig.Environment,
	}); err != nil {
		return fmt.Errorf("sentry init failed: %w", err)
	}
	logrus.Info("Sentry error reporting enabled")
	return nil
}
