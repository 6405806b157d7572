package stacknav

import (
	"log/slog"
	"time"

	"github.com/vango-dev/stacknav/pkg/history"
	"github.com/vango-dev/stacknav/pkg/navigation"
	"github.com/vango-dev/stacknav/pkg/router"
	"github.com/vango-dev/stacknav/pkg/transition"
)

// =============================================================================
// Configuration Types
// =============================================================================

// DefaultWidth is the viewport width used when none is configured.
const DefaultWidth = 1280

// Config is the App configuration.
type Config struct {
	// Routes, layouts and error views.
	Routes router.Config

	// RouterOptions configure the registry (base path, strictness,
	// duplicate policy).
	RouterOptions []router.Option

	// Store is the history store. If nil, an in-memory store positioned at
	// InitialURL is created.
	Store history.Store

	// InitialURL is the route path of the in-memory store's first entry.
	// Default: "/".
	InitialURL string

	// Width is the viewport width in pixels.
	// Default: 1280.
	Width float64

	// TransitionWindow is how long disappearing views stay in frames.
	// Default: 300ms. A negative value prunes them immediately.
	TransitionWindow time.Duration

	// Observers are notified after every navigation operation.
	Observers []navigation.Observer

	// IDGenerator overrides the view ID generator.
	IDGenerator func() string

	// AfterFunc replaces time.AfterFunc for transition windows.
	AfterFunc transition.AfterFunc

	// Logger is the structured logger.
	// If nil, slog.Default() is used.
	Logger *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.InitialURL == "" {
		c.InitialURL = "/"
	}
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	switch {
	case c.TransitionWindow == 0:
		c.TransitionWindow = transition.DefaultWindow
	case c.TransitionWindow < 0:
		c.TransitionWindow = 0
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
