package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/models"
)

// fakeStore records every save as a deep copy, like a real store would
// serialize it
type fakeStore struct {
	mu     sync.Mutex
	saves  []models.PropertyDraft
	byID   map[string]models.PropertyDraft
	errOut error
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: map[string]models.PropertyDraft{}}
}

func (s *fakeStore) SaveDraft(_ context.Context, _ uint, draft *models.PropertyDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.errOut != nil {
		return s.errOut
	}
	stored := *copyDraft(draft)
	s.saves = append(s.saves, stored)
	s.byID[draft.ID] = stored
	return nil
}

func (s *fakeStore) LoadDraft(_ context.Context, _ uint, draftID string) (*models.PropertyDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[draftID]
	if !ok {
		return nil, nil
	}
	return copyDraft(&stored), nil
}

func (s *fakeStore) DeleteDraft(_ context.Context, _ uint, draftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, draftID)
	return nil
}

func (s *fakeStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func (s *fakeStore) lastSave() models.PropertyDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves[len(s.saves)-1]
}

func newTestController(store Store) *Controller {
	c := NewController(store, 1)
	c.delay = 50 * time.Millisecond
	return c
}

func TestCreateDraftPersistsImmediately(t *testing.T) {
	store := newFakeStore()
	c := newTestController(store)

	draft, err := c.CreateDraft(context.Background(), map[string]any{"title": "Elm St 12"})
	if err != nil {
		t.Fatal(err)
	}
	if draft.ID == "" {
		t.Fatal("expected a generated draft ID")
	}
	if draft.CurrentStep != 0 {
		t.Fatalf("expected step 0, got %d", draft.CurrentStep)
	}
	if store.saveCount() != 1 {
		t.Fatalf("expected exactly one immediate write, got %d", store.saveCount())
	}
}

func TestCreateThenLoadRoundTrip(t *testing.T) {
	store := newFakeStore()
	c := newTestController(store)

	initial := map[string]any{"title": "Elm St 12", "bedrooms": 2}
	created, err := c.CreateDraft(context.Background(), initial)
	if err != nil {
		t.Fatal(err)
	}

	other := newTestController(store)
	if err := other.Load(context.Background(), created.ID); err != nil {
		t.Fatal(err)
	}

	loaded := other.Draft()
	if loaded == nil {
		t.Fatal("expected draft after load")
	}
	if !reflect.DeepEqual(loaded.PropertyData, initial) {
		t.Fatalf("loaded propertyData %v != initial %v", loaded.PropertyData, initial)
	}
}

func TestLoadMissingDraftLeavesStateEmpty(t *testing.T) {
	store := newFakeStore()
	c := newTestController(store)

	if err := c.Load(context.Background(), "nope"); err != nil {
		t.Fatalf("missing draft must not be an error, got %v", err)
	}
	if c.Draft() != nil {
		t.Fatal("expected empty state for missing draft")
	}
}

// nilMapStore hands back drafts without a PropertyData map, as a store
// implementation that skips normalization would
type nilMapStore struct{}

func (nilMapStore) SaveDraft(context.Context, uint, *models.PropertyDraft) error { return nil }

func (nilMapStore) LoadDraft(_ context.Context, _ uint, draftID string) (*models.PropertyDraft, error) {
	return &models.PropertyDraft{ID: draftID}, nil
}

func (nilMapStore) DeleteDraft(context.Context, uint, string) error { return nil }

func TestLoadNormalizesNilPropertyData(t *testing.T) {
	c := newTestController(nilMapStore{})

	if err := c.Load(context.Background(), "bare"); err != nil {
		t.Fatal(err)
	}

	c.UpdatePropertyData(map[string]any{"title": "Elm St 12"})
	if got := c.Draft().PropertyData["title"]; got != "Elm St 12" {
		t.Fatalf("expected mutation on normalized map, got %v", got)
	}
}

func TestDebounceCollapsesBurst(t *testing.T) {
	store := newFakeStore()
	c := newTestController(store)

	if _, err := c.CreateDraft(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	before := store.saveCount()

	c.UpdatePropertyData(map[string]any{"title": "Elm St 12"})
	c.UpdatePropertyData(map[string]any{"bedrooms": 2})
	c.UpdatePropertyData(map[string]any{"title": "Elm Street 12"})

	// inside the quiet period nothing has been written yet
	if store.saveCount() != before {
		t.Fatalf("write happened before the quiet period elapsed")
	}

	time.Sleep(200 * time.Millisecond)

	if got := store.saveCount() - before; got != 1 {
		t.Fatalf("expected exactly one debounced write, got %d", got)
	}

	want := map[string]any{"title": "Elm Street 12", "bedrooms": 2}
	if !reflect.DeepEqual(store.lastSave().PropertyData, want) {
		t.Fatalf("debounced write %v != cumulative merge %v", store.lastSave().PropertyData, want)
	}
}

func TestManualSaveCancelsPendingDebounce(t *testing.T) {
	store := newFakeStore()
	c := newTestController(store)

	if _, err := c.CreateDraft(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	before := store.saveCount()

	c.UpdateCurrentStep(3)
	if err := c.SaveDraft(context.Background()); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)

	if got := store.saveCount() - before; got != 1 {
		t.Fatalf("expected one write after manual save, got %d", got)
	}
	if store.lastSave().CurrentStep != 3 {
		t.Fatalf("expected step 3 persisted, got %d", store.lastSave().CurrentStep)
	}
}

func TestSaveDraftIdempotent(t *testing.T) {
	store := newFakeStore()
	c := newTestController(store)

	if _, err := c.CreateDraft(context.Background(), map[string]any{"title": "Elm St 12"}); err != nil {
		t.Fatal(err)
	}

	if err := c.SaveDraft(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.SaveDraft(context.Background()); err != nil {
		t.Fatal(err)
	}

	n := store.saveCount()
	first, _ := json.Marshal(store.saves[n-2])
	second, _ := json.Marshal(store.saves[n-1])
	if string(first) != string(second) {
		t.Fatalf("two saves without mutation differ:\n%s\n%s", first, second)
	}
}

func TestCloseCancelsPendingWrite(t *testing.T) {
	store := newFakeStore()
	c := newTestController(store)

	if _, err := c.CreateDraft(context.Background(), nil); err != nil {
		t.Fatal(err)
	}
	before := store.saveCount()

	c.UpdatePropertyData(map[string]any{"title": "never stored"})
	c.Close()

	time.Sleep(200 * time.Millisecond)

	if store.saveCount() != before {
		t.Fatal("pending debounced write survived Close")
	}
}

func TestStoreErrorSurfacesAndNextMutationRetries(t *testing.T) {
	store := newFakeStore()
	c := newTestController(store)

	if _, err := c.CreateDraft(context.Background(), nil); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("redis down")
	store.mu.Lock()
	store.errOut = boom
	store.mu.Unlock()

	c.UpdatePropertyData(map[string]any{"title": "Elm St 12"})
	time.Sleep(200 * time.Millisecond)

	if !errors.Is(c.LastErr(), boom) {
		t.Fatalf("expected store error recorded, got %v", c.LastErr())
	}

	store.mu.Lock()
	store.errOut = nil
	store.mu.Unlock()
	before := store.saveCount()

	// no automatic retry happened; the next mutation re-arms a write
	c.UpdatePropertyData(map[string]any{"bedrooms": 1})
	time.Sleep(200 * time.Millisecond)

	if store.saveCount() != before+1 {
		t.Fatalf("expected next mutation to write, got %d new writes", store.saveCount()-before)
	}
	if c.LastErr() != nil {
		t.Fatalf("expected error cleared after successful write, got %v", c.LastErr())
	}
}

func TestMutationsWithoutDraftAreNoOps(t *testing.T) {
	store := newFakeStore()
	c := newTestController(store)

	c.UpdatePropertyData(map[string]any{"title": "x"})
	c.UpdateCurrentStep(2)
	if err := c.SaveDraft(context.Background()); err != nil {
		t.Fatal(err)
	}

	time.Sleep(200 * time.Millisecond)
	if store.saveCount() != 0 {
		t.Fatalf("expected no writes without a loaded draft, got %d", store.saveCount())
	}
}
