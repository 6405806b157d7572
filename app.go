package stacknav

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vango-dev/stacknav/pkg/allocation"
	"github.com/vango-dev/stacknav/pkg/history"
	"github.com/vango-dev/stacknav/pkg/navigation"
	"github.com/vango-dev/stacknav/pkg/router"
	"github.com/vango-dev/stacknav/pkg/stack"
	"github.com/vango-dev/stacknav/pkg/transition"
	"github.com/vango-dev/stacknav/pkg/view"
)

// =============================================================================
// App Type
// =============================================================================

// App is one navigation session. It wires the route registry, the history
// store, the navigation machine and the transition tracker together and
// turns every committed state into a Frame.
//
// Create an App with stacknav.New():
//
//	app, err := stacknav.New(stacknav.Config{
//	    Routes: router.Config{Routes: []router.Route{
//	        {Path: "/", Component: "Home"},
//	        {Path: "/users/[id]", Component: "User"},
//	    }},
//	    Width: 1440,
//	})
//
//	app.Subscribe(func(f stacknav.Frame) { render(f) })
//	app.Machine().Go("/users/1", false)
type App struct {
	registry *router.Registry
	store    history.Store
	machine  *navigation.Machine
	tracker  *transition.Tracker
	logger   *slog.Logger

	// applyMu serializes committed states through the tracker so a frame
	// pairs one state with the items computed from it.
	applyMu sync.Mutex

	mu        sync.Mutex
	state     view.State
	committed []view.ViewDef
	width     float64
	frame     Frame
	seq       uint64
	subs      map[int]func(Frame)
	nextSub   int
	unlisten  func()
}

// New creates an App and bootstraps its state from the store.
func New(cfg Config) (*App, error) {
	cfg = cfg.withDefaults()

	registry, err := router.New(cfg.Routes, append([]router.Option{router.WithLogger(cfg.Logger)}, cfg.RouterOptions...)...)
	if err != nil {
		return nil, err
	}

	store := cfg.Store
	if store == nil {
		store = history.NewMemoryStore(registry.FullPath(cfg.InitialURL))
	}

	a := &App{
		registry: registry,
		store:    store,
		logger:   cfg.Logger,
		width:    cfg.Width,
		subs:     make(map[int]func(Frame)),
	}

	machineOpts := []navigation.Option{navigation.WithLogger(cfg.Logger)}
	if cfg.IDGenerator != nil {
		machineOpts = append(machineOpts, navigation.WithIDGenerator(cfg.IDGenerator))
	}
	for _, o := range cfg.Observers {
		machineOpts = append(machineOpts, navigation.WithObserver(o))
	}
	a.machine = navigation.New(store, registry, machineOpts...)

	trackerOpts := []transition.TrackerOption{
		transition.WithWindow(cfg.TransitionWindow),
		transition.WithOnSettle(a.onSettle),
		transition.WithTrackerLogger(cfg.Logger),
	}
	if cfg.AfterFunc != nil {
		trackerOpts = append(trackerOpts, transition.WithAfterFunc(cfg.AfterFunc))
	}
	a.tracker = transition.NewTracker(trackerOpts...)

	// Subscribe before bootstrapping so a healing replacement is observed.
	a.unlisten = store.Subscribe(a.onStore)

	st, err := a.machine.State()
	if err != nil {
		a.unlisten()
		return nil, err
	}

	a.mu.Lock()
	initialized := a.seq > 0
	a.mu.Unlock()
	if !initialized {
		a.apply(string(history.TriggerInit), st)
	}
	return a, nil
}

// =============================================================================
// Accessors
// =============================================================================

// Registry returns the route registry.
func (a *App) Registry() *router.Registry { return a.registry }

// Machine returns the navigation machine.
func (a *App) Machine() *navigation.Machine { return a.machine }

// Store returns the history store.
func (a *App) Store() history.Store { return a.store }

// Frame returns the latest frame.
func (a *App) Frame() Frame {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.frame.clone()
}

// Width returns the viewport width used for allocation.
func (a *App) Width() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.width
}

// Subscribe registers f for every new frame and returns a function that
// removes it. Frames are delivered synchronously on the goroutine that
// produced them.
func (a *App) Subscribe(f func(Frame)) (cancel func()) {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = f
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			a.mu.Unlock()
		})
	}
}

// Resize recomputes allocations for a new viewport width.
func (a *App) Resize(width float64) Frame {
	a.mu.Lock()
	a.width = width
	a.mu.Unlock()
	return a.publish(CauseResize, a.tracker.Items(), nil)
}

// Settle ends the current transition window immediately.
func (a *App) Settle() {
	a.tracker.Settle()
}

// OpenViews returns the open views of a route meta type whose params
// include params.
func (a *App) OpenViews(typ string, params map[string]string) []stack.OpenView {
	a.mu.Lock()
	st := a.state.Clone()
	a.mu.Unlock()
	return stack.Open(a.registry, st, typ, params)
}

// Close detaches the App from its store and cancels a pending settle.
func (a *App) Close() {
	a.unlisten()
	a.tracker.Stop()
}

// =============================================================================
// Frame Production
// =============================================================================

// onStore runs inside the machine's commit. It reads only the event entry.
func (a *App) onStore(ev history.Event) {
	st, ok := view.Decode(ev.Entry.State)
	if !ok {
		a.logger.Debug("stacknav: ignoring entry without state", "trigger", ev.Trigger, "url", ev.Entry.URL)
		return
	}
	a.apply(string(ev.Trigger), st)
}

func (a *App) apply(cause string, st view.State) {
	a.applyMu.Lock()
	defer a.applyMu.Unlock()

	a.mu.Lock()
	a.state = st.Clone()
	changed := a.seq == 0 || !transition.Equal(st.Views, a.committed)
	a.committed = st.Clone().Views
	a.mu.Unlock()

	// The tracker may settle synchronously with a zero window, so it runs
	// without a.mu and the frame is built from its items afterwards.
	returned := a.tracker.Update(st.Views)

	var diff []transition.Item
	if changed {
		diff = returned
	}
	a.publish(cause, a.tracker.Items(), diff)
}

func (a *App) onSettle(items []transition.Item) {
	a.publish(CauseSettle, items, nil)
}

func (a *App) publish(cause string, items []transition.Item, diff []transition.Item) Frame {
	a.mu.Lock()
	a.seq++
	f := buildFrame(a.registry, a.state, items, a.width)
	f.Seq = a.seq
	f.Cause = cause
	f.Transition = diff
	a.frame = f

	ids := make([]int, 0, len(a.subs))
	for id := range a.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(Frame), len(ids))
	for i, id := range ids {
		subs[i] = a.subs[id]
	}
	a.mu.Unlock()

	a.logger.Debug("stacknav: frame",
		"seq", f.Seq,
		"cause", cause,
		"views", len(f.Views),
		"void", len(f.Void),
		"visible_from", f.VisibleFrom,
	)
	for _, s := range subs {
		s(f.clone())
	}
	return f.clone()
}

// buildFrame resolves items and sizes the visible stack at both ends of the
// transition.
func buildFrame(reg *router.Registry, st view.State, items []transition.Item, width float64) Frame {
	resolved := stack.Resolve(reg, items, st.ActiveID)
	stacked, void := stack.Split(resolved)
	inputs := stack.Inputs(stacked)
	allocs := allocation.Allocate(width, inputs, view.ModeDisappear)

	return Frame{
		At:               time.Now(),
		ActiveID:         st.ActiveID,
		Views:            stacked,
		Void:             void,
		Allocations:      allocs,
		StartAllocations: allocation.Allocate(width, inputs, view.ModeAppear),
		VisibleFrom:      allocation.VisibleFrom(allocs),
		Width:            width,
	}
}
