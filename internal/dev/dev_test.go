package dev

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/vango-dev/stacknav"
	"github.com/vango-dev/stacknav/internal/config"
	apperrors "github.com/vango-dev/stacknav/internal/errors"
)

// touch writes data and moves the modification time forward so polling
// sees the change regardless of file system timestamp granularity.
func touch(t *testing.T, path string, data string, at time.Time) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, at, at); err != nil {
		t.Fatal(err)
	}
}

func TestWatcherDetectsChanges(t *testing.T) {
	tmpDir := t.TempDir()
	cfgFile := filepath.Join(tmpDir, "stacknav.yaml")
	base := time.Now().Add(-time.Hour)
	touch(t, cfgFile, "routes: []\n", base)

	watcher := NewWatcher(WatcherConfig{
		Paths:    []string{tmpDir},
		Interval: 20 * time.Millisecond,
	})

	changes := make(chan Change, 10)
	watcher.OnChange(func(c Change) {
		changes <- c
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Start(ctx)

	// Wait for initial scan
	time.Sleep(100 * time.Millisecond)
	if !watcher.IsRunning() {
		t.Fatal("IsRunning() = false")
	}

	touch(t, cfgFile, "routes: []\nstrict: true\n", base.Add(time.Minute))
	script := filepath.Join(tmpDir, "script.yml")
	touch(t, script, "steps: []\n", base)

	got := map[string]Change{}
	timeout := time.After(2 * time.Second)
	for len(got) < 2 {
		select {
		case c := <-changes:
			got[c.Path] = c
		case <-timeout:
			t.Fatalf("timeout, got %v", got)
		}
	}
	if got[cfgFile].Type != ChangeConfig {
		t.Errorf("config change type = %v, want config", got[cfgFile].Type)
	}
	if got[script].Type != ChangeScript {
		t.Errorf("script change type = %v, want script", got[script].Type)
	}

	if err := os.Remove(script); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-changes:
		if c.Path != script || !c.Removed {
			t.Errorf("change = %+v, want removal of %s", c, script)
		}
	case <-time.After(2 * time.Second):
		t.Error("timeout waiting for removal")
	}

	watcher.Stop()
	if watcher.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestClassifyChange(t *testing.T) {
	tests := []struct {
		path string
		want ChangeType
	}{
		{"/p/stacknav.json", ChangeConfig},
		{"/p/stacknav.YAML", ChangeConfig},
		{"/p/stacknav.yml", ChangeConfig},
		{"/p/checkout.yaml", ChangeScript},
		{"/p/readme.md", ChangeOther},
	}
	for _, tt := range tests {
		if got := classifyChange(tt.path); got != tt.want {
			t.Errorf("classifyChange(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestReloader(t *testing.T) {
	tmpDir := t.TempDir()
	cfgFile := filepath.Join(tmpDir, "stacknav.yaml")
	touch(t, cfgFile, "routes:\n  - {path: /, component: Home}\n", time.Now())

	build := func(cfg *config.Config) (*stacknav.App, error) {
		opts, err := cfg.RouterOptions()
		if err != nil {
			return nil, err
		}
		return stacknav.New(stacknav.Config{
			Routes:        cfg.RouterConfig(),
			RouterOptions: opts,
		})
	}

	var current *stacknav.App
	swaps := 0
	var lastErr error
	r := NewReloader(ReloaderConfig{
		Dir:   tmpDir,
		Build: build,
		Swap: func(app *stacknav.App) *stacknav.App {
			prev := current
			current = app
			swaps++
			return prev
		},
		OnError: func(err error) { lastErr = err },
	})
	t.Cleanup(func() {
		if current != nil {
			current.Close()
		}
	})

	if r.HandleChange(Change{Path: cfgFile, Type: ChangeScript}) {
		t.Error("HandleChange(script) = true, want false")
	}
	if !r.HandleChange(Change{Path: cfgFile, Type: ChangeConfig}) {
		t.Fatalf("HandleChange(config) = false: %v", lastErr)
	}
	if swaps != 1 || current.Registry().Len() != 1 {
		t.Errorf("swaps = %d, routes = %d", swaps, current.Registry().Len())
	}

	touch(t, cfgFile, "routes:\n  - {path: nope}\n", time.Now())
	if r.Reload() {
		t.Error("Reload() = true for an invalid file")
	}
	if !stderrors.Is(lastErr, apperrors.New("C003")) {
		t.Errorf("OnError got %v, want C003", lastErr)
	}
	if swaps != 1 {
		t.Errorf("swaps = %d, want the old session kept", swaps)
	}
}
