// Package transition classifies views across a navigation and schedules the
// removal of views that are animating out.
package transition

import (
	"github.com/vango-dev/stacknav/pkg/urlparam"
	"github.com/vango-dev/stacknav/pkg/view"
)

// Item is a view tagged with its lifecycle mode for one transition.
type Item struct {
	View view.ViewDef `json:"view"`
	Mode view.Mode    `json:"mode"`
}

// Diff classifies current against previous.
//
// With no previous views every current view is init. Otherwise the result
// is, in this order: views present in both (previous order, current
// content), views only in previous (previous order), views only in current
// (current order). Views are matched by ID.
func Diff(current, previous []view.ViewDef) []Item {
	if len(previous) == 0 {
		out := make([]Item, len(current))
		for i, v := range current {
			out[i] = Item{View: v, Mode: view.ModeInit}
		}
		return out
	}

	byID := make(map[string]int, len(current))
	for i, v := range current {
		if _, dup := byID[v.ID]; !dup {
			byID[v.ID] = i
		}
	}

	matched := make([]bool, len(current))
	var both, disappear []Item
	for _, prev := range previous {
		i, ok := byID[prev.ID]
		if !ok || matched[i] {
			disappear = append(disappear, Item{View: prev, Mode: view.ModeDisappear})
			continue
		}
		matched[i] = true
		both = append(both, Item{View: current[i], Mode: view.ModeBoth})
	}

	out := make([]Item, 0, len(current)+len(disappear))
	out = append(out, both...)
	out = append(out, disappear...)
	for i, v := range current {
		if !matched[i] {
			out = append(out, Item{View: v, Mode: view.ModeAppear})
		}
	}
	return out
}

// Equal reports whether two view lists are structurally identical: same
// length and, position by position, the same ID, URL, layout key, target
// and shallowly equal query params and props.
func Equal(a, b []view.ViewDef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !viewEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func viewEqual(a, b view.ViewDef) bool {
	return a.ID == b.ID &&
		a.URL == b.URL &&
		a.Layout == b.Layout &&
		a.Target.Normalize() == b.Target.Normalize() &&
		urlparam.Equal(a.QueryParams, b.QueryParams) &&
		urlparam.Equal(a.Props, b.Props)
}

// Views returns the views of items, in order.
func Views(items []Item) []view.ViewDef {
	out := make([]view.ViewDef, len(items))
	for i, it := range items {
		out[i] = it.View
	}
	return out
}
