// Package stack resolves a navigation state into the renderable view stack.
//
// Each view is looked up in the route registry: a matched view carries its
// component, the layout chain selected by its layout key, captured params
// and route meta; an unmatched view carries the error view of its path.
// Views with the void target are split off the visible stack.
package stack

import (
	"sort"
	"strings"

	"github.com/vango-dev/stacknav/pkg/allocation"
	"github.com/vango-dev/stacknav/pkg/router"
	"github.com/vango-dev/stacknav/pkg/transition"
	"github.com/vango-dev/stacknav/pkg/view"
)

// DefaultLayout wraps views whose route declares no layouts.
const DefaultLayout router.Handle = "DefaultLayout"

// Matcher is the registry capability the resolver needs. *router.Registry
// implements it.
type Matcher interface {
	Match(path string) (*router.Match, bool)
	ErrorFor(path string) (router.Handle, bool)
}

// View is one resolved entry of the stack.
type View struct {
	Def    view.ViewDef `json:"view"`
	Mode   view.Mode    `json:"mode"`
	Active bool         `json:"active"`

	// Found is false when no route matched. Component then holds the error
	// view of the path, or is empty when none is registered.
	Found     bool          `json:"found"`
	Component router.Handle `json:"component"`

	// Layouts wrap Component, outermost first.
	Layouts []router.Layout   `json:"layouts"`
	Params  map[string]string `json:"params"`
	Meta    router.Meta       `json:"meta"`
	Pattern string            `json:"pattern,omitempty"`
}

// Resolve resolves transition items in order.
func Resolve(m Matcher, items []transition.Item, activeID string) []View {
	out := make([]View, len(items))
	for i, it := range items {
		out[i] = resolveOne(m, it.View, it.Mode, activeID)
	}
	return out
}

// ResolveState resolves the views of st as a settled stack.
func ResolveState(m Matcher, st view.State) []View {
	out := make([]View, len(st.Views))
	for i, v := range st.Views {
		out[i] = resolveOne(m, v, view.ModeBoth, st.ActiveID)
	}
	return out
}

func resolveOne(m Matcher, def view.ViewDef, mode view.Mode, activeID string) View {
	v := View{
		Def:    def,
		Mode:   mode,
		Active: def.ID == activeID,
	}

	path := def.Path()
	match, ok := m.Match(path)
	if !ok {
		v.Component, _ = m.ErrorFor(path)
		return v
	}

	v.Found = true
	v.Component = match.Component
	v.Params = match.Params
	v.Meta = match.Meta
	v.Pattern = match.Pattern
	if len(match.Layouts) == 0 {
		v.Layouts = []router.Layout{{Component: DefaultLayout}}
	} else {
		v.Layouts = match.LayoutsFor(def.Layout)
	}
	return v
}

// Split separates the visible stack from void views, keeping order.
func Split(views []View) (stacked, void []View) {
	for _, v := range views {
		if v.Def.IsVoid() {
			void = append(void, v)
		} else {
			stacked = append(stacked, v)
		}
	}
	return stacked, void
}

// Inputs returns the allocation inputs of views.
func Inputs(views []View) []allocation.Input {
	out := make([]allocation.Input, len(views))
	for i, v := range views {
		out[i] = allocation.Input{
			ID:          v.Def.ID,
			Breakpoints: v.Meta.Breakpoints,
			Mode:        v.Mode,
		}
	}
	return out
}

// Fold composes a layout chain around leaf, innermost layout first, so that
// the result is layouts[0](layouts[1](...(leaf))).
func Fold[T any](layouts []router.Layout, leaf T, wrap func(router.Layout, T) T) T {
	out := leaf
	for i := len(layouts) - 1; i >= 0; i-- {
		out = wrap(layouts[i], out)
	}
	return out
}

// Describe renders the composition of v as text, for example
// "Root(Users(User{id=7}))". Unmatched views render as "404:<handle>".
func Describe(v View) string {
	if !v.Found {
		if v.Component == "" {
			return "404"
		}
		return "404:" + string(v.Component)
	}

	leaf := string(v.Component)
	if len(v.Params) > 0 {
		keys := make([]string, 0, len(v.Params))
		for k := range v.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + v.Params[k]
		}
		leaf += "{" + strings.Join(pairs, ",") + "}"
	}

	return Fold(v.Layouts, leaf, func(l router.Layout, inner string) string {
		return string(l.Component) + "(" + inner + ")"
	})
}
