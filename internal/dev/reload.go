package dev

import (
	"log/slog"

	"github.com/vango-dev/stacknav"
	"github.com/vango-dev/stacknav/internal/config"
)

// ReloaderConfig configures a Reloader.
type ReloaderConfig struct {
	// Dir is the project directory holding the configuration file.
	Dir string

	// Build creates a session from a freshly loaded configuration.
	Build func(*config.Config) (*stacknav.App, error)

	// Swap installs the new session and returns the previous one.
	Swap func(*stacknav.App) *stacknav.App

	// OnError is called when the configuration cannot be loaded or the
	// session cannot be built. The running session is kept.
	OnError func(error)

	Logger *slog.Logger
}

// Reloader rebuilds the session when the configuration file changes.
type Reloader struct {
	config ReloaderConfig
	logger *slog.Logger
}

// NewReloader creates a new reloader.
func NewReloader(config ReloaderConfig) *Reloader {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reloader{config: config, logger: logger}
}

// HandleChange reloads on configuration changes and ignores everything
// else. It reports whether a new session was installed.
func (r *Reloader) HandleChange(c Change) bool {
	if c.Type != ChangeConfig || c.Removed {
		return false
	}
	return r.Reload()
}

// Reload loads the configuration and swaps in a new session. The previous
// session is closed.
func (r *Reloader) Reload() bool {
	cfg, err := config.Load(r.config.Dir)
	if err != nil {
		r.fail(err)
		return false
	}

	app, err := r.config.Build(cfg)
	if err != nil {
		r.fail(err)
		return false
	}

	if prev := r.config.Swap(app); prev != nil {
		prev.Close()
	}
	r.logger.Info("dev: configuration reloaded", "path", cfg.Path(), "routes", len(cfg.Routes))
	return true
}

func (r *Reloader) fail(err error) {
	r.logger.Warn("dev: reload failed", "dir", r.config.Dir, "error", err)
	if r.config.OnError != nil {
		r.config.OnError(err)
	}
}
