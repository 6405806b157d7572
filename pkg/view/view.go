// Package view defines the navigation data model shared by the engine:
// view definitions, the persisted view-stack state, navigation targets and
// lifecycle modes.
//
// The persisted state record is JSON:
//
//	{"id": "<active view id>", "views": [{"id": "...", "url": "/users/1", ...}]}
package view

import (
	"net/url"

	"github.com/vango-dev/stacknav/pkg/urlparam"
)

// Target selects where a navigation lands.
type Target string

const (
	// TargetSelf opens into the stack next to the originating view.
	TargetSelf Target = "_self"

	// TargetTop collapses the whole stack to the destination view.
	TargetTop Target = "_top"

	// TargetBlank opens outside the engine (new window or tab).
	TargetBlank Target = "_blank"

	// TargetVoid renders off-stack and is filtered out of the visible stack.
	TargetVoid Target = "_void"
)

// Normalize maps the zero value to TargetSelf.
func (t Target) Normalize() Target {
	if t == "" {
		return TargetSelf
	}
	return t
}

// Mode is the lifecycle classification of a view across one transition.
type Mode string

const (
	ModeInit      Mode = "init"
	ModeBoth      Mode = "both"
	ModeAppear    Mode = "appear"
	ModeDisappear Mode = "disappear"
)

// ViewDef is one entry of the view stack.
type ViewDef struct {
	ID          string          `json:"id"`
	URL         string          `json:"url"`
	QueryParams urlparam.Params `json:"queryParams,omitempty"`
	Props       urlparam.Params `json:"props,omitempty"`
	Layout      string          `json:"layout,omitempty"`
	Target      Target          `json:"target,omitempty"`
}

// Clone returns a copy that shares no maps with v.
func (v ViewDef) Clone() ViewDef {
	v.QueryParams = v.QueryParams.Clone()
	v.Props = v.Props.Clone()
	return v
}

// Path returns the path component of the view URL, still escaped, so that
// route params come out as the segments appear in the URL.
func (v ViewDef) Path() string {
	u, err := url.Parse(v.URL)
	if err != nil {
		return "/"
	}
	if p := u.EscapedPath(); p != "" {
		return p
	}
	return "/"
}

// IsVoid reports whether the view renders outside the visible stack.
func (v ViewDef) IsVoid() bool {
	return v.Target == TargetVoid
}

// State is the persisted navigation record.
type State struct {
	// ActiveID references the focused view.
	ActiveID string `json:"id"`

	// Views is the stack in display order.
	Views []ViewDef `json:"views"`
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{ActiveID: s.ActiveID, Views: make([]ViewDef, len(s.Views))}
	for i, v := range s.Views {
		out.Views[i] = v.Clone()
	}
	return out
}

// Index returns the position of the view with the given id, or -1.
func (s State) Index(id string) int {
	for i, v := range s.Views {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the view with the given id.
func (s State) Find(id string) (ViewDef, bool) {
	if i := s.Index(id); i >= 0 {
		return s.Views[i], true
	}
	return ViewDef{}, false
}

// FindURL returns the first view whose URL equals u.
func (s State) FindURL(u string) (ViewDef, bool) {
	for _, v := range s.Views {
		if v.URL == u {
			return v, true
		}
	}
	return ViewDef{}, false
}

// Active returns the focused view.
func (s State) Active() (ViewDef, bool) {
	return s.Find(s.ActiveID)
}

// Consistent reports whether ActiveID references exactly one view when the
// stack is non-empty.
func (s State) Consistent() bool {
	if len(s.Views) == 0 {
		return true
	}
	n := 0
	for _, v := range s.Views {
		if v.ID == s.ActiveID {
			n++
		}
	}
	return n == 1
}

// Visible returns the views that are part of the visible stack, in order.
func (s State) Visible() []ViewDef {
	out := make([]ViewDef, 0, len(s.Views))
	for _, v := range s.Views {
		if !v.IsVoid() {
			out = append(out, v)
		}
	}
	return out
}
