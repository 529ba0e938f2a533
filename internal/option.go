package internal

import (
	"io"
	"log/slog"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	version string
	out     io.Writer
	logger  *slog.Logger
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithOutput sets where command results are printed. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

// WithLogger overrides the JSON stdout logger built from the config.
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}
