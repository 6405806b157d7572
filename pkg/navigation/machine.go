// Package navigation implements the navigation state machine: the owner of
// the persisted view stack and the only writer of the history store.
//
// Every operation reads the latest committed record from the store, derives
// a new stack and commits it with exactly one push or replace, or commits
// nothing. Structural changes (a new view, a takeover) push a history entry;
// focus changes, closes and parameter updates replace the current one.
//
// Store listeners run while the machine holds its lock. They may read the
// store but must not call back into the Machine synchronously.
package navigation

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vango-dev/stacknav/internal/errors"
	"github.com/vango-dev/stacknav/pkg/history"
	"github.com/vango-dev/stacknav/pkg/routepath"
	"github.com/vango-dev/stacknav/pkg/urlparam"
	"github.com/vango-dev/stacknav/pkg/view"
)

// PathBuilder turns a route path into the full path under the application
// base path. *router.Registry implements it.
type PathBuilder interface {
	FullPath(routePath string) string
}

// PathFunc adapts a function to PathBuilder.
type PathFunc func(string) string

// FullPath implements PathBuilder.
func (f PathFunc) FullPath(p string) string { return f(p) }

// RootPaths is a PathBuilder for applications mounted at "/".
var RootPaths = PathFunc(func(p string) string { return p })

// Outcome is the branch a Navigate call took.
type Outcome string

const (
	// OutcomeNoop: the destination is already the active view.
	OutcomeNoop Outcome = "noop"

	// OutcomeTakeover: the stack collapsed to the destination (push).
	OutcomeTakeover Outcome = "takeover"

	// OutcomeFocus: an open view with the destination URL was focused
	// (replace).
	OutcomeFocus Outcome = "focus"

	// OutcomeAppend: a new view was added at the end of the stack (push).
	OutcomeAppend Outcome = "append"

	// OutcomePush: views after the origin were discarded and the new view
	// added after it (push).
	OutcomePush Outcome = "push"

	// OutcomeExternal: a link left to the host, nothing committed.
	OutcomeExternal Outcome = "external"
)

// Machine is the navigation state machine. It is safe for concurrent use;
// operations are serialized.
type Machine struct {
	mu sync.Mutex

	store     history.Store
	paths     PathBuilder
	newID     func() string
	logger    *slog.Logger
	observers []Observer
}

// New creates a Machine writing through store. A nil paths builds paths
// for an application mounted at the root.
func New(store history.Store, paths PathBuilder, opts ...Option) *Machine {
	if paths == nil {
		paths = RootPaths
	}
	m := &Machine{
		store:  store,
		paths:  paths,
		newID:  defaultIDGenerator,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the committed state. When the store holds no structurally
// valid record a single-view state is synthesized from the current
// location and committed by replacement.
func (m *Machine) State() (view.State, error) {
	start := time.Now()
	m.mu.Lock()
	st, healed, err := m.load()
	m.mu.Unlock()

	if healed || err != nil {
		m.observe(Event{Op: OpBootstrap, ViewID: st.ActiveID, Changed: healed, State: st, Start: start, Err: err})
	}
	return st.Clone(), err
}

// Active returns the focused view.
func (m *Machine) Active() (view.ViewDef, bool, error) {
	st, err := m.State()
	if err != nil {
		return view.ViewDef{}, false, err
	}
	v, ok := st.Active()
	return v, ok, nil
}

// load reads and, if needed, heals the committed state. Callers hold m.mu.
func (m *Machine) load() (st view.State, healed bool, err error) {
	entry := m.store.Current()
	if st, ok := view.Decode(entry.State); ok {
		return st, false, nil
	}

	raw := entry.URL
	if raw == "" {
		raw = routepath.Separator
	}
	// Store the location in the form Navigate compares against.
	p, rawQuery := routepath.SplitPathAndQuery(raw)
	href := urlparam.Resolve(p, urlparam.ParseQuery(rawQuery))
	url := href.URL
	id := m.newID()
	st = view.State{
		ActiveID: id,
		Views: []view.ViewDef{{
			ID:          id,
			URL:         url,
			QueryParams: href.Query,
			Props:       urlparam.Params{},
		}},
	}

	m.logger.Debug("navigation: synthesizing state from location",
		"url", url,
		"view_id", id,
		"had_record", entry.State != nil,
	)
	if err := m.commit(false, url, st); err != nil {
		return st, false, err
	}
	return st, true, nil
}

// commit writes st with a push or a replacement.
func (m *Machine) commit(push bool, url string, st view.State) error {
	data, err := view.Encode(st)
	if err != nil {
		return errors.New("N011").Wrap(err)
	}

	if push {
		err = m.store.Push(url, data)
	} else {
		err = m.store.Replace(url, data)
	}
	if err != nil {
		m.logger.Error("navigation: store write failed", "url", url, "push", push, "error", err)
		return errors.New("N010").WithDetail(url).Wrap(err)
	}
	return nil
}

// Navigate opens path, with query attached, from the view from. Relative
// paths are cleaned first; a path escaping the root or carrying a
// backslash or NUL byte fails with N002.
//
// The destination URL is the full path with the merged query. Then, in
// order:
//
//   - if the URL is already the active view's and neither append nor the
//     top target is requested, nothing happens;
//   - with the top target the stack collapses to the destination, reusing
//     an open view with the same URL, and a history entry is pushed;
//   - without append, an open view with the same URL is focused in place
//     and the current entry replaced;
//   - with append or the void target a new view is added at the end of the
//     stack and an entry pushed;
//   - otherwise every view after from is discarded, the new view is added
//     after it and an entry pushed. An unknown from leaves only the new
//     view.
func (m *Machine) Navigate(from, path string, query urlparam.Params, opts ...NavigateOption) (Outcome, error) {
	var o navigateOptions
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	m.mu.Lock()
	outcome, st, viewID, err := m.navigate(from, path, query, o)
	m.mu.Unlock()

	m.observe(Event{
		Op:      OpNavigate,
		Outcome: outcome,
		ViewID:  viewID,
		Changed: err == nil && outcome != OutcomeNoop,
		State:   st,
		Start:   start,
		Err:     err,
	})
	return outcome, err
}

func (m *Machine) navigate(from, path string, query urlparam.Params, o navigateOptions) (Outcome, view.State, string, error) {
	st, _, err := m.load()
	if err != nil {
		return OutcomeNoop, st, "", err
	}

	if !urlparam.IsAbsolute(path) {
		if !strings.HasPrefix(path, routepath.Separator) {
			path = routepath.Separator + path
		}
		clean, err := routepath.Clean(path)
		if err != nil {
			return OutcomeNoop, st, "", errors.New("N002").WithDetail(path).Wrap(err)
		}
		path = clean
	}

	target := o.target.Normalize()
	href := urlparam.Resolve(m.paths.FullPath(path), query)
	existing, found := st.FindURL(href.URL)

	if target != view.TargetTop && !o.append && found && existing.ID == st.ActiveID {
		return OutcomeNoop, st, existing.ID, nil
	}

	newView := func() view.ViewDef {
		return view.ViewDef{
			ID:          m.newID(),
			URL:         href.URL,
			QueryParams: href.Query,
			Props:       o.props.Clone(),
			Layout:      o.layout,
			Target:      o.target,
		}
	}

	if !o.append {
		if target == view.TargetTop {
			v := existing
			if !found {
				v = newView()
			}
			next := view.State{ActiveID: v.ID, Views: []view.ViewDef{v}}
			return m.finish(OutcomeTakeover, true, href.URL, next, st)
		}
		if found {
			next := view.State{ActiveID: existing.ID, Views: st.Views}
			return m.finish(OutcomeFocus, false, href.URL, next, st)
		}
	}

	v := newView()
	if o.append || target == view.TargetVoid {
		views := append(append([]view.ViewDef(nil), st.Views...), v)
		return m.finish(OutcomeAppend, true, href.URL, view.State{ActiveID: v.ID, Views: views}, st)
	}

	idx := st.Index(from)
	views := append(append([]view.ViewDef(nil), st.Views[:idx+1]...), v)
	return m.finish(OutcomePush, true, href.URL, view.State{ActiveID: v.ID, Views: views}, st)
}

func (m *Machine) finish(outcome Outcome, push bool, url string, next, prev view.State) (Outcome, view.State, string, error) {
	if err := m.commit(push, url, next); err != nil {
		return outcome, prev, next.ActiveID, err
	}
	m.logger.Debug("navigation: navigate",
		"outcome", outcome,
		"url", url,
		"view_id", next.ActiveID,
		"views", len(next.Views),
	)
	return outcome, next, next.ActiveID, nil
}

// Close removes the view id. The new last view becomes active and the
// current entry is replaced with its URL; an emptied stack keeps the
// current location. Closing an unknown view does nothing and reports false.
func (m *Machine) Close(id string) (bool, error) {
	return m.run(OpClose, id, func(st view.State) (bool, string, view.State) {
		idx := st.Index(id)
		if idx < 0 {
			return false, "", st
		}

		views := make([]view.ViewDef, 0, len(st.Views)-1)
		views = append(views, st.Views[:idx]...)
		views = append(views, st.Views[idx+1:]...)

		next := view.State{Views: views}
		url := m.store.Current().URL
		if n := len(views); n > 0 {
			next.ActiveID = views[n-1].ID
			url = views[n-1].URL
		}
		return true, url, next
	})
}

// SetActive focuses the open view id without changing the stack. It reports
// false when id is unknown or already active.
func (m *Machine) SetActive(id string) (bool, error) {
	return m.run(OpSetActive, id, func(st view.State) (bool, string, view.State) {
		if st.ActiveID == id {
			return false, "", st
		}
		v, ok := st.Find(id)
		if !ok {
			return false, "", st
		}
		return true, v.URL, view.State{ActiveID: id, Views: st.Views}
	})
}

// UpdateQueryParams merges partial into the query params of view id, or
// replaces them with replaceAll. A nil value deletes a key. The view URL is
// rebuilt from its path and the new params. Nothing is committed when the
// params do not change by value.
func (m *Machine) UpdateQueryParams(id string, partial urlparam.Params, replaceAll bool) (bool, error) {
	return m.run(OpUpdateQuery, id, func(st view.State) (bool, string, view.State) {
		idx := st.Index(id)
		if idx < 0 {
			return false, "", st
		}
		cur := st.Views[idx]
		merged := urlparam.Merge(cur.QueryParams, partial, replaceAll)
		if urlparam.Equal(merged, cur.QueryParams) {
			return false, "", st
		}

		next := st.Clone()
		path, _ := routepath.SplitPathAndQuery(cur.URL)
		next.Views[idx].QueryParams = merged
		next.Views[idx].URL = urlparam.Resolve(path, merged).URL
		return true, m.activeURL(next), next
	})
}

// UpdateProps merges partial into the props of view id, or replaces them
// with replaceAll. Nothing is committed when the props do not change by
// value.
func (m *Machine) UpdateProps(id string, partial urlparam.Params, replaceAll bool) (bool, error) {
	return m.run(OpUpdateProps, id, func(st view.State) (bool, string, view.State) {
		idx := st.Index(id)
		if idx < 0 {
			return false, "", st
		}
		cur := st.Views[idx]
		merged := urlparam.Merge(cur.Props, partial, replaceAll)
		if urlparam.Equal(merged, cur.Props) {
			return false, "", st
		}

		next := st.Clone()
		next.Views[idx].Props = merged
		return true, m.activeURL(next), next
	})
}

// activeURL is the URL of the active view of st, or the current location.
func (m *Machine) activeURL(st view.State) string {
	if v, ok := st.Active(); ok {
		return v.URL
	}
	return m.store.Current().URL
}

// run executes a replacement operation: f derives the next state from the
// committed one and reports whether anything changed.
func (m *Machine) run(op Op, id string, f func(view.State) (bool, string, view.State)) (bool, error) {
	start := time.Now()
	m.mu.Lock()
	changed, st, err := func() (bool, view.State, error) {
		st, _, err := m.load()
		if err != nil {
			return false, st, err
		}
		changed, url, next := f(st)
		if !changed {
			return false, st, nil
		}
		if err := m.commit(false, url, next); err != nil {
			return false, st, err
		}
		m.logger.Debug("navigation: "+string(op), "view_id", id, "url", url)
		return true, next, nil
	}()
	m.mu.Unlock()

	m.observe(Event{Op: op, ViewID: id, Changed: changed, State: st, Start: start, Err: err})
	return changed, err
}

// Go navigates to href from the active view. With replace the stack is
// taken over by the destination.
func (m *Machine) Go(href string, replace bool) (Outcome, error) {
	st, err := m.State()
	if err != nil {
		return OutcomeNoop, err
	}
	target := view.TargetSelf
	if replace {
		target = view.TargetTop
	}
	return m.Navigate(st.ActiveID, href, nil, WithTarget(target))
}

func (m *Machine) observe(ev Event) {
	if len(m.observers) == 0 {
		return
	}
	ev.Duration = time.Since(ev.Start)
	ev.State = ev.State.Clone()
	for _, o := range m.observers {
		o.Observe(ev)
	}
}
