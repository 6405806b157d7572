package history

import (
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store. It keeps the full entry list so that
// Back and Forward can traverse it the way a browser does.
//
// Listeners run synchronously on the goroutine that made the change, after
// the store lock is released, so a listener may call back into the store.
type MemoryStore struct {
	mu         sync.Mutex
	entries    []Entry
	index      int
	maxEntries int
	listeners  map[int]Listener
	nextID     int
}

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithMaxEntries caps the history length. When a push exceeds it the oldest
// entry is dropped. Zero means unlimited.
func WithMaxEntries(n int) MemoryStoreOption {
	return func(m *MemoryStore) {
		m.maxEntries = n
	}
}

// WithInitialState sets the state record of the first entry.
func WithInitialState(state []byte) MemoryStoreOption {
	return func(m *MemoryStore) {
		m.entries[0].State = append([]byte(nil), state...)
	}
}

// NewMemoryStore creates a store holding a single entry for url with no
// state record.
func NewMemoryStore(url string, opts ...MemoryStoreOption) *MemoryStore {
	m := &MemoryStore{
		entries:   []Entry{{URL: url}},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Current returns a copy of the current entry.
func (m *MemoryStore) Current() Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[m.index].clone()
}

// Push implements Store.
func (m *MemoryStore) Push(url string, state []byte) error {
	m.mu.Lock()
	entry := Entry{URL: url, State: state}.clone()
	m.entries = append(m.entries[:m.index+1], entry)
	if m.maxEntries > 0 && len(m.entries) > m.maxEntries {
		m.entries = append([]Entry(nil), m.entries[len(m.entries)-m.maxEntries:]...)
	}
	m.index = len(m.entries) - 1
	m.mu.Unlock()

	m.emit(TriggerPushState, entry)
	return nil
}

// Replace implements Store.
func (m *MemoryStore) Replace(url string, state []byte) error {
	m.mu.Lock()
	entry := Entry{URL: url, State: state}.clone()
	m.entries[m.index] = entry
	m.mu.Unlock()

	m.emit(TriggerReplaceState, entry)
	return nil
}

// Back moves one entry back. It reports false at the first entry.
func (m *MemoryStore) Back() bool {
	return m.Go(-1)
}

// Forward moves one entry forward. It reports false at the last entry.
func (m *MemoryStore) Forward() bool {
	return m.Go(1)
}

// Go moves delta entries and notifies with a popstate trigger. It reports
// false, without moving, when the target is out of range or delta is zero.
func (m *MemoryStore) Go(delta int) bool {
	m.mu.Lock()
	target := m.index + delta
	if delta == 0 || target < 0 || target >= len(m.entries) {
		m.mu.Unlock()
		return false
	}
	m.index = target
	entry := m.entries[target].clone()
	m.mu.Unlock()

	m.emit(TriggerPopState, entry)
	return true
}

// Len returns the number of entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Index returns the current position.
func (m *MemoryStore) Index() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index
}

// Snapshot returns a copy of every entry and the current position.
func (m *MemoryStore) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		entries[i] = e.clone()
	}
	return Snapshot{Entries: entries, Index: m.index}
}

// Restore replaces the store contents with snap and notifies with a load
// trigger. An empty snapshot is ignored.
func (m *MemoryStore) Restore(snap Snapshot) bool {
	if len(snap.Entries) == 0 {
		return false
	}

	m.mu.Lock()
	m.entries = make([]Entry, len(snap.Entries))
	for i, e := range snap.Entries {
		m.entries[i] = e.clone()
	}
	m.index = snap.Index
	if m.index < 0 || m.index >= len(m.entries) {
		m.index = len(m.entries) - 1
	}
	entry := m.entries[m.index].clone()
	m.mu.Unlock()

	m.emit(TriggerLoad, entry)
	return true
}

// Subscribe implements Store.
func (m *MemoryStore) Subscribe(l Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}

// emit notifies listeners in subscription order. It must be called without
// m.mu held.
func (m *MemoryStore) emit(trigger Trigger, entry Entry) {
	m.mu.Lock()
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	listeners := make([]Listener, 0, len(ids))
	sort.Ints(ids)
	for _, id := range ids {
		listeners = append(listeners, m.listeners[id])
	}
	m.mu.Unlock()

	for _, l := range listeners {
		l(Event{Trigger: trigger, Entry: entry.clone()})
	}
}
