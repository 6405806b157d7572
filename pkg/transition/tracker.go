package transition

import (
	"log/slog"
	"sync"
	"time"

	"github.com/vango-dev/stacknav/pkg/view"
)

// DefaultWindow is the default transition window.
const DefaultWindow = 300 * time.Millisecond

// Stopper is a pending timer. *time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Stopper

func timeAfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithWindow sets how long disappearing views are kept for their exit
// transition. A zero window prunes them as soon as Update returns.
func WithWindow(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.window = d
	}
}

// WithAfterFunc replaces time.AfterFunc, mainly for tests.
func WithAfterFunc(f AfterFunc) TrackerOption {
	return func(t *Tracker) {
		t.afterFunc = f
	}
}

// WithOnSettle registers a callback invoked with the pruned item list when
// a transition window closes.
func WithOnSettle(f func([]Item)) TrackerOption {
	return func(t *Tracker) {
		t.onSettle = f
	}
}

// WithTrackerLogger sets the logger.
func WithTrackerLogger(l *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// Tracker follows the committed view list and the transition in flight.
//
// Update diffs the new list against the last committed one and schedules a
// settle that drops disappearing items once the window elapses. A new
// Update during the window cancels the pending settle and restarts it for
// the new transition; views still disappearing from the interrupted
// transition are dropped right away since the new diff is taken against
// committed views only. A settle timer that fires after being superseded is
// recognized by its generation and ignored.
type Tracker struct {
	window    time.Duration
	afterFunc AfterFunc
	onSettle  func([]Item)
	logger    *slog.Logger

	mu         sync.Mutex
	committed  []view.ViewDef
	items      []Item
	generation uint64
	pending    Stopper
}

// NewTracker creates a Tracker with no committed views.
func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		window:    DefaultWindow,
		afterFunc: timeAfterFunc,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Update records views as the committed list and returns the transition
// items. When views are structurally equal to the committed list nothing
// changes and the current items are returned.
func (t *Tracker) Update(views []view.ViewDef) []Item {
	t.mu.Lock()

	if t.items != nil && Equal(views, t.committed) {
		items := cloneItems(t.items)
		t.mu.Unlock()
		return items
	}

	items := Diff(views, t.committed)
	t.committed = cloneViews(views)
	t.items = items
	t.generation++
	gen := t.generation

	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}

	out := cloneItems(items)
	if !hasMode(items, view.ModeDisappear) {
		t.mu.Unlock()
		return out
	}

	if t.window <= 0 {
		settled := t.pruneLocked()
		t.mu.Unlock()
		t.notify(settled)
		return out
	}

	t.pending = t.afterFunc(t.window, func() { t.settle(gen) })
	t.mu.Unlock()
	return out
}

// Items returns the current transition items.
func (t *Tracker) Items() []Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneItems(t.items)
}

// Pending reports whether a settle is scheduled.
func (t *Tracker) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

// Settle closes the current transition window immediately.
func (t *Tracker) Settle() {
	t.mu.Lock()
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	settled := t.pruneLocked()
	t.mu.Unlock()
	t.notify(settled)
}

// Stop cancels a pending settle without pruning.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.generation++
}

func (t *Tracker) settle(gen uint64) {
	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()
		t.logger.Debug("transition: ignoring stale settle", "generation", gen)
		return
	}
	t.pending = nil
	settled := t.pruneLocked()
	t.mu.Unlock()
	t.notify(settled)
}

// pruneLocked drops disappearing items. Callers hold t.mu.
func (t *Tracker) pruneLocked() []Item {
	kept := make([]Item, 0, len(t.items))
	for _, it := range t.items {
		if it.Mode != view.ModeDisappear {
			kept = append(kept, it)
		}
	}
	t.items = kept
	return cloneItems(kept)
}

func (t *Tracker) notify(items []Item) {
	if t.onSettle != nil {
		t.onSettle(items)
	}
}

func hasMode(items []Item, mode view.Mode) bool {
	for _, it := range items {
		if it.Mode == mode {
			return true
		}
	}
	return false
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = Item{View: it.View.Clone(), Mode: it.Mode}
	}
	return out
}

func cloneViews(views []view.ViewDef) []view.ViewDef {
	out := make([]view.ViewDef, len(views))
	for i, v := range views {
		out[i] = v.Clone()
	}
	return out
}
