package router

import (
	"log/slog"

	"github.com/vango-dev/stacknav/pkg/routepath"
)

// Option configures a Registry.
type Option func(*options)

type options struct {
	basePath   string
	strict     bool
	duplicates DuplicatePolicy
	logger     *slog.Logger
}

func defaultOptions() options {
	return options{
		basePath:   routepath.Separator,
		duplicates: DuplicateLastWins,
		logger:     slog.Default(),
	}
}

// WithBasePath mounts the application under prefix.
func WithBasePath(prefix string) Option {
	return func(o *options) {
		o.basePath = routepath.NormalizeBase(prefix)
	}
}

// WithStrict makes malformed registration input fail New instead of being
// skipped with a warning.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}

// WithDuplicates sets the duplicate path policy.
func WithDuplicates(p DuplicatePolicy) Option {
	return func(o *options) {
		o.duplicates = p
	}
}

// WithLogger sets the logger used for skipped registrations.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
