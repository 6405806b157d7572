package navigation

import (
	"github.com/vango-dev/stacknav/pkg/urlparam"
	"github.com/vango-dev/stacknav/pkg/view"
)

// Modifiers are the keys held during a link activation.
type Modifiers struct {
	Meta  bool
	Ctrl  bool
	Shift bool
}

// LinkIntent is the decision for one link activation.
type LinkIntent struct {
	// Handled reports whether the engine takes the navigation. When false
	// the host follows Href natively (new tab, external site).
	Handled bool

	// Href is the resolved destination including the query.
	Href string

	// Append is set for shift-activations.
	Append bool

	Target view.Target
}

// ResolveLink decides how an activation of a link to href is handled.
// Absolute URLs, the blank target and meta or ctrl activations are left to
// the host. Shift opens the destination at the end of the stack.
func ResolveLink(href string, query urlparam.Params, target view.Target, mods Modifiers) LinkIntent {
	resolved := urlparam.Resolve(href, query)
	intent := LinkIntent{Href: resolved.URL, Target: target.Normalize()}

	if urlparam.IsAbsolute(href) || intent.Target == view.TargetBlank || mods.Meta || mods.Ctrl {
		return intent
	}
	intent.Handled = true
	intent.Append = mods.Shift
	return intent
}

// Rel returns the rel attribute for a link to href rendered at origin.
func Rel(href, origin string) string {
	if urlparam.IsAbsolute(href) && urlparam.IsExternal(href, origin) {
		return "noopener noreferrer"
	}
	return ""
}

// Follow performs a link activation from the view from. Links the engine
// does not handle report OutcomeExternal and commit nothing.
func (m *Machine) Follow(from, href string, query urlparam.Params, target view.Target, mods Modifiers) (Outcome, error) {
	intent := ResolveLink(href, query, target, mods)
	if !intent.Handled {
		m.logger.Debug("navigation: link left to host", "href", intent.Href, "target", intent.Target)
		return OutcomeExternal, nil
	}

	opts := []NavigateOption{WithTarget(intent.Target)}
	if intent.Append {
		opts = append(opts, WithAppend())
	}
	return m.Navigate(from, intent.Href, nil, opts...)
}
