package utils

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// LogError logs an unexpected failure and reports it to Sentry tagged with
// errorType. fields are attached to both.
func LogError(errorType string, err error, fields map[string]interface{}) {
	logrus.WithFields(fields).
		WithField("error_type", errorType).
		WithError(err).
		Error("Unexpected failure")

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		scope.SetTag("error_type", errorType)
		scope.SetContext("request", fields)
		sentry.CaptureException(err)
	})
}

// LogEvent records a notable domain event as an info log line and a Sentry
// breadcrumb, so it shows up next to any later error.
func LogEvent(eventType string, data map[string]interface{}) {
	logrus.WithFields(data).WithField("event_type", eventType).Info(eventType)

	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Type:      "info",
		Category:  eventType,
		Data:      data,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	})
}
