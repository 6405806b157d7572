package history

import (
	"sync"
	"testing"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) listen(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) triggers() []Trigger {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Trigger, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Trigger
	}
	return out
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("/")
	rec := &recorder{}
	store.Subscribe(rec.listen)

	t.Run("Initial", func(t *testing.T) {
		cur := store.Current()
		if cur.URL != "/" || cur.State != nil {
			t.Errorf("Current() = %+v, want / with no state", cur)
		}
		if store.Len() != 1 || store.Index() != 0 {
			t.Errorf("Len/Index = %d/%d, want 1/0", store.Len(), store.Index())
		}
	})

	t.Run("Push", func(t *testing.T) {
		if err := store.Push("/a", []byte(`{"id":"a"}`)); err != nil {
			t.Fatalf("Push() error: %v", err)
		}
		if err := store.Push("/b", []byte(`{"id":"b"}`)); err != nil {
			t.Fatalf("Push() error: %v", err)
		}
		if store.Len() != 3 || store.Index() != 2 {
			t.Errorf("Len/Index = %d/%d, want 3/2", store.Len(), store.Index())
		}
		if store.Current().URL != "/b" {
			t.Errorf("Current().URL = %q, want /b", store.Current().URL)
		}
	})

	t.Run("Replace", func(t *testing.T) {
		if err := store.Replace("/b2", []byte(`{"id":"b2"}`)); err != nil {
			t.Fatalf("Replace() error: %v", err)
		}
		if store.Len() != 3 {
			t.Errorf("Replace should not add entries, Len() = %d", store.Len())
		}
		if string(store.Current().State) != `{"id":"b2"}` {
			t.Errorf("State = %s", store.Current().State)
		}
	})

	t.Run("BackForward", func(t *testing.T) {
		if !store.Back() || store.Current().URL != "/a" {
			t.Errorf("Back() -> %q, want /a", store.Current().URL)
		}
		if !store.Back() || store.Current().URL != "/" {
			t.Errorf("Back() -> %q, want /", store.Current().URL)
		}
		if store.Back() {
			t.Error("Back() at first entry should report false")
		}
		if !store.Forward() || store.Current().URL != "/a" {
			t.Errorf("Forward() -> %q, want /a", store.Current().URL)
		}
		if store.Go(5) || store.Go(0) {
			t.Error("Go() out of range should report false")
		}
	})

	t.Run("PushTruncatesForward", func(t *testing.T) {
		if err := store.Push("/c", nil); err != nil {
			t.Fatalf("Push() error: %v", err)
		}
		if store.Len() != 3 || store.Forward() {
			t.Errorf("forward entries should be discarded, Len() = %d", store.Len())
		}
	})

	want := []Trigger{
		TriggerPushState, TriggerPushState, TriggerReplaceState,
		TriggerPopState, TriggerPopState, TriggerPopState,
		TriggerPushState,
	}
	got := rec.triggers()
	if len(got) != len(want) {
		t.Fatalf("triggers = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("trigger[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMemoryStoreCopiesState(t *testing.T) {
	store := NewMemoryStore("/")
	state := []byte(`{"id":"x"}`)
	store.Push("/x", state)
	state[2] = 'X'

	if string(store.Current().State) != `{"id":"x"}` {
		t.Error("store should copy pushed state")
	}

	cur := store.Current()
	cur.State[2] = 'Y'
	if string(store.Current().State) != `{"id":"x"}` {
		t.Error("Current() should return a copy")
	}
}

func TestMemoryStoreUnsubscribe(t *testing.T) {
	store := NewMemoryStore("/")
	rec := &recorder{}
	cancel := store.Subscribe(rec.listen)

	store.Push("/a", nil)
	cancel()
	cancel()
	store.Push("/b", nil)

	if n := len(rec.triggers()); n != 1 {
		t.Errorf("received %d events, want 1", n)
	}
}

func TestMemoryStoreListenerReentry(t *testing.T) {
	store := NewMemoryStore("/")
	var seen string
	store.Subscribe(func(ev Event) {
		// Reading the store from a listener must not deadlock.
		seen = store.Current().URL
	})
	store.Push("/a", nil)
	if seen != "/a" {
		t.Errorf("listener saw %q, want /a", seen)
	}
}

func TestMemoryStoreMaxEntries(t *testing.T) {
	store := NewMemoryStore("/", WithMaxEntries(2))
	store.Push("/a", nil)
	store.Push("/b", nil)

	if store.Len() != 2 || store.Index() != 1 {
		t.Errorf("Len/Index = %d/%d, want 2/1", store.Len(), store.Index())
	}
	store.Back()
	if store.Current().URL != "/a" {
		t.Errorf("oldest entry should be dropped, Current() = %q", store.Current().URL)
	}
}

func TestMemoryStoreSnapshotRestore(t *testing.T) {
	store := NewMemoryStore("/", WithInitialState([]byte(`{"id":"0","views":[]}`)))
	store.Push("/a", []byte(`{"id":"a","views":[]}`))
	store.Back()
	snap := store.Snapshot()

	other := NewMemoryStore("/elsewhere")
	rec := &recorder{}
	other.Subscribe(rec.listen)

	if !other.Restore(snap) {
		t.Fatal("Restore() = false")
	}
	if other.Len() != 2 || other.Index() != 0 || other.Current().URL != "/" {
		t.Errorf("restored Len/Index/URL = %d/%d/%q", other.Len(), other.Index(), other.Current().URL)
	}
	if tr := rec.triggers(); len(tr) != 1 || tr[0] != TriggerLoad {
		t.Errorf("Restore triggers = %v, want [load]", tr)
	}
	if other.Restore(Snapshot{}) {
		t.Error("Restore(empty) should report false")
	}

	bad := Snapshot{Entries: []Entry{{URL: "/x"}}, Index: 9}
	other.Restore(bad)
	if other.Index() != 0 {
		t.Errorf("out-of-range index should clamp, Index() = %d", other.Index())
	}
}

func TestMemoryStoreConcurrency(t *testing.T) {
	store := NewMemoryStore("/")
	store.Subscribe(func(Event) {})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				store.Push("/p", nil)
			} else {
				store.Replace("/r", nil)
			}
			store.Current()
			store.Back()
		}(i)
	}
	wg.Wait()

	if store.Len() < 1 {
		t.Error("store lost all entries")
	}
}
