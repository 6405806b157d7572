package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/stacknav"
	"github.com/vango-dev/stacknav/internal/config"
	"github.com/vango-dev/stacknav/internal/dev"
	"github.com/vango-dev/stacknav/internal/errors"
	"github.com/vango-dev/stacknav/pkg/history"
	"github.com/vango-dev/stacknav/pkg/inspect"
	"github.com/vango-dev/stacknav/pkg/middleware"
	"github.com/vango-dev/stacknav/pkg/navigation"
	"github.com/vango-dev/stacknav/pkg/routepath"
)

type serveOptions struct {
	addr  string
	watch bool
	trace bool
}

func serveCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live navigation session",
		Long: `Start the inspector: one navigation session driven over HTTP, with
frames streamed to WebSocket clients on /events and Prometheus metrics on
/metrics.

When inspect.snapshot.bucket is configured the session history is restored
from S3 on start and saved after every change. Credentials are read from
AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN.

Examples:
  stacknav serve
  stacknav serve --addr :9000 --watch
  stacknav serve --trace -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (default from config)")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload routes when the configuration file changes")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Log a trace span for every navigation operation")

	return cmd
}

func runServe(ctx context.Context, opts serveOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Inspect.Addr = opts.addr
	}

	store := history.NewMemoryStore(routepath.JoinBase(routepath.NormalizeBase(cfg.BasePath), cfg.Inspect.InitialURL))
	if snap := cfg.Inspect.Snapshot; snap.Enabled() {
		snapshotter := history.NewS3Snapshotter(newS3Client(snap), snap.Bucket, snap.Key)
		restored, err := history.RestoreFrom(ctx, store, snapshotter)
		switch {
		case err != nil:
			warn("Snapshot restore failed: %v", err)
		case restored:
			success("Restored %d history entries from s3://%s/%s", store.Len(), snap.Bucket, snap.Key)
		}
		cancel := history.Autosave(ctx, store, snapshotter, logger)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(middleware.WithRegistry(reg))
	observers := []navigation.Observer{metrics}

	if opts.trace {
		tp := middleware.NewLogTracerProvider(logger, slog.LevelInfo)
		defer tp.Shutdown(context.Background())
		observers = append(observers, middleware.NewTracing(
			middleware.WithTracerProvider(tp),
			middleware.WithIncludeURL(true),
		))
	}

	build := func(c *config.Config) (*stacknav.App, error) {
		routerOpts, err := c.RouterOptions()
		if err != nil {
			return nil, err
		}
		app, err := stacknav.New(stacknav.Config{
			Routes:           c.RouterConfig(),
			RouterOptions:    routerOpts,
			Store:            store,
			Width:            c.Viewport.Width,
			TransitionWindow: c.TransitionWindow(),
			Observers:        observers,
			Logger:           logger,
		})
		if err != nil {
			return nil, err
		}
		app.Subscribe(func(f stacknav.Frame) {
			if f.Transition != nil {
				metrics.ObserveTransition(f.Transition)
			}
		})
		return app, nil
	}

	app, err := build(cfg)
	if err != nil {
		return err
	}
	srv := inspect.New(app, inspect.WithLogger(logger), inspect.WithGatherer(reg))
	defer func() {
		srv.Close()
		srv.App().Close()
	}()

	if opts.watch && cfg.Path() != "" {
		watcher := dev.NewWatcher(dev.WatcherConfig{Paths: []string{cfg.Path()}})
		reloader := dev.NewReloader(dev.ReloaderConfig{
			Dir:     cfg.Dir(),
			Build:   build,
			Swap:    srv.Swap,
			OnError: func(err error) { srv.Hub().NotifyError(err.Error()) },
			Logger:  logger,
		})
		watcher.OnChange(func(c dev.Change) {
			if reloader.HandleChange(c) {
				success("Reloaded %s", c.Path)
			}
		})
		go watcher.Start(ctx)
		defer watcher.Stop()
	}

	httpServer := &http.Server{
		Addr:              cfg.Inspect.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	success("Inspector listening on %s", cfg.Inspect.Addr)
	info("Routes:  %d from %s", app.Registry().Len(), cfg.Path())
	info("Events:  ws://%s/events", displayAddr(cfg.Inspect.Addr))
	info("Metrics: http://%s/metrics", displayAddr(cfg.Inspect.Addr))

	select {
	case err := <-errCh:
		if !stderrors.Is(err, http.ErrServerClosed) {
			return errors.Newf(errors.CategoryCLI, "inspector server: %v", err).Wrap(err)
		}
		return nil
	case <-ctx.Done():
	}

	fmt.Println()
	info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// newS3Client builds an S3 client from the snapshot settings. Credentials
// come from the standard AWS environment variables.
func newS3Client(sc config.SnapshotConfig) *s3.Client {
	opts := s3.Options{
		Region:       sc.Region,
		UsePathStyle: sc.UsePathStyle,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			creds := aws.Credentials{
				AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
				Source:          "Environment",
			}
			if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
				return aws.Credentials{}, errors.New("S001").
					WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set")
			}
			return creds, nil
		})),
	}
	if sc.Endpoint != "" {
		opts.BaseEndpoint = aws.String(sc.Endpoint)
	}
	return s3.New(opts)
}

// displayAddr turns ":7070" into "localhost:7070".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
