package navigation

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/vango-dev/stacknav/pkg/urlparam"
	"github.com/vango-dev/stacknav/pkg/view"
)

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithIDGenerator replaces the view ID generator. The default generates
// random UUIDs.
func WithIDGenerator(f func() string) Option {
	return func(m *Machine) {
		if f != nil {
			m.newID = f
		}
	}
}

// WithObserver registers an observer notified after every operation.
func WithObserver(o Observer) Option {
	return func(m *Machine) {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
}

func defaultIDGenerator() string {
	return uuid.NewString()
}

// NavigateOption configures a single Navigate call.
type NavigateOption func(*navigateOptions)

type navigateOptions struct {
	append bool
	target view.Target
	props  urlparam.Params
	layout string
}

// WithAppend opens the destination at the end of the stack regardless of
// where the navigation started.
func WithAppend() NavigateOption {
	return func(o *navigateOptions) {
		o.append = true
	}
}

// WithTarget sets the navigation target.
func WithTarget(t view.Target) NavigateOption {
	return func(o *navigateOptions) {
		o.target = t
	}
}

// WithProps attaches an opaque payload to the new view.
func WithProps(p urlparam.Params) NavigateOption {
	return func(o *navigateOptions) {
		o.props = p
	}
}

// WithLayout selects a layout variant for the new view.
func WithLayout(key string) NavigateOption {
	return func(o *navigateOptions) {
		o.layout = key
	}
}
