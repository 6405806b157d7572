package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/stacknav/internal/config"
	"github.com/vango-dev/stacknav/internal/errors"
	"github.com/vango-dev/stacknav/pkg/router"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Global flags shared by every command.
var (
	configDir string
	verbose   bool
	noColor   bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stacknav",
		Short: "Inspect and drive stacked-view navigation",
		Long: `stacknav works with the route configuration of a stacked-view
application (stacknav.json or stacknav.yaml).

  • List routes with their layout chains
  • Resolve paths to components, layouts and params
  • Compute width allocations for a stack of views
  • Replay scripted navigation sessions
  • Serve a live session over HTTP and WebSocket`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				errors.DisableColors()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "Project directory holding stacknav.json or stacknav.yaml (default: search upwards)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		routesCmd(),
		matchCmd(),
		allocateCmd(),
		simulateCmd(),
		serveCmd(),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig loads the configuration from --config or the nearest project
// directory.
func loadConfig() (*config.Config, error) {
	if configDir != "" {
		return config.Load(configDir)
	}
	return config.LoadFromWorkingDir()
}

// loadRegistry loads the configuration and builds its route registry.
func loadRegistry(logger *slog.Logger) (*config.Config, *router.Registry, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	opts, err := cfg.RouterOptions()
	if err != nil {
		return nil, nil, err
	}
	reg, err := router.New(cfg.RouterConfig(), append(opts, router.WithLogger(logger))...)
	if err != nil {
		return nil, nil, err
	}
	return cfg, reg, nil
}

// newLogger returns a text logger on stderr at debug level with --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(format string, args ...any) {
	fmt.Printf("\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}
