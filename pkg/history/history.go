// Package history defines the history store that persists the navigation
// record, and an in-memory implementation with back/forward traversal.
//
// A store holds a sequence of entries, each a URL plus an opaque state
// record. Push adds a navigable step, Replace overwrites the current one.
// Every change is broadcast to subscribers with the trigger that caused it.
package history

// Trigger labels the cause of a store notification.
type Trigger string

const (
	TriggerInit         Trigger = "init"
	TriggerLoad         Trigger = "load"
	TriggerPopState     Trigger = "popstate"
	TriggerPushState    Trigger = "pushstate"
	TriggerReplaceState Trigger = "replacestate"
)

// Entry is one step of the history.
type Entry struct {
	URL   string
	State []byte
}

func (e Entry) clone() Entry {
	if e.State != nil {
		e.State = append([]byte(nil), e.State...)
	}
	return e
}

// Event is delivered to subscribers after every change.
type Event struct {
	Trigger Trigger
	Entry   Entry
}

// Listener receives store events.
type Listener func(Event)

// Store is the history capability the navigation machine writes through.
// Implementations must be safe for concurrent use.
type Store interface {
	// Current returns the entry at the current position.
	Current() Entry

	// Push adds an entry after the current one, discarding forward entries.
	Push(url string, state []byte) error

	// Replace overwrites the current entry.
	Replace(url string, state []byte) error

	// Subscribe registers l for change notifications and returns a function
	// that removes it.
	Subscribe(l Listener) (cancel func())
}
