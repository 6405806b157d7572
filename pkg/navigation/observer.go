package navigation

import (
	"time"

	"github.com/vango-dev/stacknav/pkg/view"
)

// Op names a machine operation.
type Op string

const (
	OpBootstrap   Op = "bootstrap"
	OpNavigate    Op = "navigate"
	OpClose       Op = "close"
	OpSetActive   Op = "set_active"
	OpUpdateQuery Op = "update_query"
	OpUpdateProps Op = "update_props"
)

// Event describes one completed operation.
type Event struct {
	Op      Op
	Outcome Outcome // Navigate only

	// ViewID is the view the operation addressed: the new or focused view
	// for Navigate, the argument for the others.
	ViewID string

	// Changed reports whether a new state was committed.
	Changed bool

	// State is the state after the operation.
	State view.State

	Start    time.Time
	Duration time.Duration
	Err      error
}

// Observer is notified after every operation, outside the machine lock.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(ev Event) { f(ev) }
