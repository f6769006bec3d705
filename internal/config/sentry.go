package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-viewbuilder/internal/logging"
	"github.com/goliatone/go-viewbuilder/pkg/boundary"
)

// Sentry holds CLI flags for error reporting.
type Sentry struct {
	dsn         string
	environment string
}

// Flags returns CLI flags for Sentry.
func (s *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for render failure reports",
			Category:    "Sentry",
			Sources:     cli.EnvVars("VIEWBUILDER_SENTRY_DSN"),
			Destination: &s.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment",
			Category:    "Sentry",
			Sources:     cli.EnvVars("VIEWBUILDER_SENTRY_ENV"),
			Destination: &s.environment,
		},
	}
}

// Configure initialises Sentry when a DSN is set. It returns a nil reporter
// when reporting is disabled. The closer flushes buffered events.
func (s *Sentry) Configure(release string) (boundary.Reporter, func(), error) {
	if s.dsn == "" {
		return nil, func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         s.dsn,
		Environment: s.environment,
		Release:     release,
	})
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize sentry")
	}
	logging.Default().Info("Sentry reporting enabled", "environment", s.environment)
	return boundary.SentryReporter{}, func() { sentry.Flush(2 * time.Second) }, nil
}
