package config

import (
	"time"

	"github.com/urfave/cli/v3"
)

// Server holds CLI flags for the HTTP server.
type Server struct {
	addr            string
	shutdownTimeout time.Duration
	locale          string
}

// Flags returns CLI flags for the HTTP server.
func (s *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Sources:     cli.EnvVars("VIEWBUILDER_ADDR"),
			Destination: &s.addr,
		},
		&cli.DurationFlag{
			Name:        "shutdown-timeout",
			Usage:       "Graceful shutdown timeout",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("VIEWBUILDER_SHUTDOWN_TIMEOUT"),
			Destination: &s.shutdownTimeout,
		},
		&cli.StringFlag{
			Name:        "locale",
			Usage:       "Default locale for rendered forms",
			Sources:     cli.EnvVars("VIEWBUILDER_LOCALE"),
			Destination: &s.locale,
		},
	}
}

// Addr returns the listen address, falling back to the file and then :8080.
func (s *Server) Addr(file ServerFile) string {
	return pick(s.addr, file.Addr, ":8080")
}

// ShutdownTimeout returns the graceful shutdown timeout.
func (s *Server) ShutdownTimeout() time.Duration {
	if s.shutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return s.shutdownTimeout
}

// Locale returns the default locale, falling back to the file and then "en".
func (s *Server) Locale(file I18nFile) string {
	return pick(s.locale, file.Locale, "en")
}
