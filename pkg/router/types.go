package router

import (
	"github.com/vango-dev/stacknav/pkg/allocation"
)

// Handle is an opaque reference to a component, layout or error view. The
// registry orders and returns handles but never interprets them. The empty
// handle means absent.
type Handle string

// Meta is per-route metadata.
type Meta struct {
	// Type is an application-defined view type, used to find open views of
	// a kind regardless of their URL.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Breakpoints are the route's minimum-width rules.
	Breakpoints []allocation.Breakpoint `json:"breakpoints,omitempty" yaml:"breakpoints,omitempty"`
}

// Route is one route definition.
type Route struct {
	Path      string   `json:"path" yaml:"path"`
	Component Handle   `json:"component" yaml:"component"`
	Layouts   []Handle `json:"layouts,omitempty" yaml:"layouts,omitempty"` // nil derives the chain
	Meta      Meta     `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Config is the registration input.
type Config struct {
	Routes []Route `json:"routes" yaml:"routes"`

	// Layouts maps "path" or "path#variant" to a layout.
	Layouts map[string]Handle `json:"layouts,omitempty" yaml:"layouts,omitempty"`

	// Errors maps a path to the error view rendered beneath it.
	Errors map[string]Handle `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// Layout is one element of a layout chain. Key is empty for the unnamed
// chain and holds the variant name otherwise.
type Layout struct {
	Key       string `json:"key,omitempty"`
	Component Handle `json:"component"`
}

// Match is the result of resolving a path.
type Match struct {
	// Pattern is the matched route pattern.
	Pattern string `json:"pattern"`

	Component Handle `json:"component"`

	// Layouts is the full chain, outermost first.
	Layouts []Layout `json:"layouts"`

	// Params holds the captured segments verbatim.
	Params map[string]string `json:"params"`

	Meta Meta `json:"meta"`
}

// LayoutsFor returns the layouts of the chain tagged with key, keeping
// their order. The empty key selects the unnamed chain.
func (m *Match) LayoutsFor(key string) []Layout {
	if m == nil {
		return nil
	}
	out := make([]Layout, 0, len(m.Layouts))
	for _, l := range m.Layouts {
		if l.Key == key {
			out = append(out, l)
		}
	}
	return out
}

// DuplicatePolicy decides what happens when a route path is registered
// more than once.
type DuplicatePolicy int

const (
	// DuplicateLastWins replaces the earlier definition in place. The route
	// keeps its original registration position.
	DuplicateLastWins DuplicatePolicy = iota

	// DuplicateFirstWins ignores later definitions.
	DuplicateFirstWins

	// DuplicateReject fails registration.
	DuplicateReject
)

var duplicatePolicyNames = map[DuplicatePolicy]string{
	DuplicateLastWins:  "last-wins",
	DuplicateFirstWins: "first-wins",
	DuplicateReject:    "reject",
}

func (p DuplicatePolicy) String() string {
	if name, ok := duplicatePolicyNames[p]; ok {
		return name
	}
	return "unknown"
}

// ParseDuplicatePolicy parses "last-wins", "first-wins" or "reject". The
// empty string selects DuplicateLastWins.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, bool) {
	if s == "" {
		return DuplicateLastWins, true
	}
	for p, name := range duplicatePolicyNames {
		if name == s {
			return p, true
		}
	}
	return DuplicateLastWins, false
}
