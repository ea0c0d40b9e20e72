package internal

import (
	"log/slog"
	"time"

	"github.com/starford/lustro/internal/fetch"
	"github.com/starford/lustro/internal/notify"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	sources *Sources
	logger  *slog.Logger
	fetcher fetch.Fetcher
	sender  notify.Sender
	now     func() time.Time
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithSources sets the configured sources.
func WithSources(s *Sources) Option {
	return func(a *application) {
		a.sources = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *application) {
		a.logger = logger
	}
}

// WithFetcher overrides the fetch collaborator (used by tests).
func WithFetcher(f fetch.Fetcher) Option {
	return func(a *application) {
		a.fetcher = f
	}
}

// WithSender overrides the notification collaborator (used by tests).
func WithSender(s notify.Sender) Option {
	return func(a *application) {
		a.sender = s
	}
}

// WithNow fixes the clock (used by tests).
func WithNow(now func() time.Time) Option {
	return func(a *application) {
		a.now = now
	}
}
