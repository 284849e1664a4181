package drafts

import (
	"context"
	"testing"
	"time"
)

func TestManagerSharesControllerPerDraft(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)

	draft, err := m.Create(context.Background(), 1, map[string]any{"title": "Elm St 12"})
	if err != nil {
		t.Fatal(err)
	}

	c1, err := m.Controller(context.Background(), 1, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := m.Controller(context.Background(), 1, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if c1 != c2 {
		t.Fatal("expected the same live controller for repeated lookups")
	}
}

func TestManagerLoadsFromStoreOnFirstTouch(t *testing.T) {
	store := newFakeStore()

	// persist through one manager, read through a fresh one
	first := NewManager(store)
	draft, err := first.Create(context.Background(), 1, map[string]any{"city": "Austin"})
	if err != nil {
		t.Fatal(err)
	}

	second := NewManager(store)
	c, err := second.Controller(context.Background(), 1, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if c == nil {
		t.Fatal("expected controller for stored draft")
	}
	if got := c.Draft().PropertyData["city"]; got != "Austin" {
		t.Fatalf("expected loaded data, got %v", got)
	}
}

func TestManagerMissingDraft(t *testing.T) {
	m := NewManager(newFakeStore())

	c, err := m.Controller(context.Background(), 1, "missing")
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Fatal("expected nil controller for missing draft")
	}
}

func TestManagerReleaseDropsPendingWrite(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)

	draft, err := m.Create(context.Background(), 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	c, err := m.Controller(context.Background(), 1, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	c.delay = 50 * time.Millisecond

	before := store.saveCount()
	c.UpdatePropertyData(map[string]any{"title": "dropped"})
	m.Release(1, draft.ID)

	time.Sleep(200 * time.Millisecond)
	if store.saveCount() != before {
		t.Fatal("pending write survived Release")
	}

	// a released draft loads fresh again
	c2, err := m.Controller(context.Background(), 1, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if c2 == c {
		t.Fatal("expected a fresh controller after Release")
	}
}

func TestManagerEvictsIdleControllers(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store)
	m.idleAfter = time.Millisecond

	draft, err := m.Create(context.Background(), 1, nil)
	if err != nil {
		t.Fatal(err)
	}

	c, err := m.Controller(context.Background(), 1, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	c.delay = time.Hour
	c.UpdatePropertyData(map[string]any{"title": "never flushed"})

	// back-date the entry so the next access treats it as idle
	m.mu.Lock()
	for _, e := range m.live {
		e.touched = time.Now().Add(-time.Minute)
	}
	m.mu.Unlock()

	// any manager access sweeps idle entries
	if _, err := m.Create(context.Background(), 1, nil); err != nil {
		t.Fatal(err)
	}

	c2, err := m.Controller(context.Background(), 1, draft.ID)
	if err != nil {
		t.Fatal(err)
	}
	if c2 == c {
		t.Fatal("expected the idle controller to be evicted")
	}
	if _, ok := c2.Draft().PropertyData["title"]; ok {
		t.Fatal("unflushed mutation survived eviction")
	}
}
