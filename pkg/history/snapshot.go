package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Snapshot is the full content of a MemoryStore.
type Snapshot struct {
	Entries []Entry
	Index   int
}

type snapshotEntry struct {
	URL   string          `json:"url"`
	State json.RawMessage `json:"state,omitempty"`
}

type snapshotJSON struct {
	Entries []snapshotEntry `json:"entries"`
	Index   int             `json:"index"`
}

// MarshalJSON encodes state records inline. A record that is not valid JSON
// is dropped, which a reader treats like a missing record.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{Entries: make([]snapshotEntry, len(s.Entries)), Index: s.Index}
	for i, e := range s.Entries {
		out.Entries[i].URL = e.URL
		if len(e.State) > 0 && json.Valid(e.State) {
			out.Entries[i].State = json.RawMessage(e.State)
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.Index = in.Index
	s.Entries = make([]Entry, len(in.Entries))
	for i, e := range in.Entries {
		s.Entries[i] = Entry{URL: e.URL}
		if len(e.State) > 0 && string(e.State) != "null" {
			s.Entries[i].State = []byte(e.State)
		}
	}
	return nil
}

// Snapshotter persists store snapshots.
type Snapshotter interface {
	// Save stores snap, replacing any earlier snapshot.
	Save(ctx context.Context, snap Snapshot) error

	// Load returns the stored snapshot. It reports false, with a nil error,
	// when nothing has been saved yet.
	Load(ctx context.Context) (Snapshot, bool, error)
}

// MemorySnapshotter keeps the encoded snapshot in memory.
type MemorySnapshotter struct {
	mu   sync.Mutex
	data []byte
}

// Save implements Snapshotter.
func (m *MemorySnapshotter) Save(_ context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// Load implements Snapshotter.
func (m *MemorySnapshotter) Load(_ context.Context) (Snapshot, bool, error) {
	m.mu.Lock()
	data := m.data
	m.mu.Unlock()
	if data == nil {
		return Snapshot{}, false, nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// Autosave saves a snapshot of store after every change until the returned
// function is called. Save failures are logged and do not stop autosaving.
func Autosave(ctx context.Context, store *MemoryStore, snap Snapshotter, logger *slog.Logger) (cancel func()) {
	if logger == nil {
		logger = slog.Default()
	}
	return store.Subscribe(func(ev Event) {
		if err := snap.Save(ctx, store.Snapshot()); err != nil {
			logger.Error("history: snapshot save failed",
				"trigger", ev.Trigger,
				"url", ev.Entry.URL,
				"error", err,
			)
		}
	})
}

// RestoreFrom loads the stored snapshot into store. It reports whether a
// snapshot was found.
func RestoreFrom(ctx context.Context, store *MemoryStore, snap Snapshotter) (bool, error) {
	s, ok, err := snap.Load(ctx)
	if err != nil || !ok {
		return false, err
	}
	return store.Restore(s), nil
}
