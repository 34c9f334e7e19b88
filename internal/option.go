package internal

import "log/slog"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogLevel overrides the configured log level. Apply after WithConfig.
func WithLogLevel(level slog.Level) Option {
	return func(a *application) {
		if a.config != nil {
			a.config.App.LogLevel = level
		}
	}
}
