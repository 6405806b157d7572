package dev

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeConfig ChangeType = iota
	ChangeScript
	ChangeOther
)

func (t ChangeType) String() string {
	switch t {
	case ChangeConfig:
		return "config"
	case ChangeScript:
		return "script"
	default:
		return "other"
	}
}

// Change represents a detected file change.
type Change struct {
	Path    string
	Type    ChangeType
	Removed bool
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files or directories to watch. Directories are watched
	// one level deep.
	Paths []string

	// Interval is the polling period.
	Interval time.Duration
}

// Watcher polls files for modification.
type Watcher struct {
	config      WatcherConfig
	onChange    func(Change)
	mu          sync.Mutex
	running     bool
	initialized bool
	stopCh      chan struct{}
	timestamps  map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval == 0 {
		config.Interval = 250 * time.Millisecond
	}

	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start begins watching and blocks until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	stopCh := make(chan struct{})
	w.stopCh = stopCh
	w.mu.Unlock()

	w.scanInitial()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// scanInitial builds the initial timestamp map.
func (w *Watcher) scanInitial() {
	files := w.files()

	w.mu.Lock()
	defer w.mu.Unlock()
	for p, mod := range files {
		w.timestamps[p] = mod
	}
	w.initialized = true
}

// checkForChanges compares the current files against the last scan and
// reports each changed file once.
func (w *Watcher) checkForChanges() {
	files := w.files()

	w.mu.Lock()
	callback := w.onChange
	var changes []Change
	for p, mod := range files {
		last, exists := w.timestamps[p]
		if !exists || mod.After(last) {
			w.timestamps[p] = mod
			if exists || w.initialized {
				changes = append(changes, Change{Path: p, Type: classifyChange(p)})
			}
		}
	}
	for p := range w.timestamps {
		if _, ok := files[p]; !ok {
			delete(w.timestamps, p)
			changes = append(changes, Change{Path: p, Type: classifyChange(p), Removed: true})
		}
	}
	w.mu.Unlock()

	if callback == nil {
		return
	}
	for _, c := range changes {
		callback(c)
	}
}

// files returns the modification times of every watched file.
func (w *Watcher) files() map[string]time.Time {
	out := make(map[string]time.Time)
	for _, p := range w.config.Paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			out[p] = info.ModTime()
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.IsDir() || shouldIgnore(e.Name()) {
				continue
			}
			fi, err := e.Info()
			if err != nil {
				continue
			}
			out[filepath.Join(p, e.Name())] = fi.ModTime()
		}
	}
	return out
}

func shouldIgnore(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".tmp")
}

// classifyChange determines the type of change from the file name.
func classifyChange(path string) ChangeType {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case name == "stacknav.json" || name == "stacknav.yaml" || name == "stacknav.yml":
		return ChangeConfig
	case strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml"):
		return ChangeScript
	default:
		return ChangeOther
	}
}
