package drafts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/models"
)

// DefaultDebounce is the quiet period before a mutated draft is
// written through to the store
const DefaultDebounce = time.Second

// Controller owns the in-memory state of one user's property draft and
// debounces writes to the store: a burst of mutations collapses into a
// single write once the quiet period elapses, last value wins.
//
// A manual SaveDraft racing a debounced write is not serialized; the
// later-completing write wins, which is harmless because both carry
// the same or a newer snapshot.
type Controller struct {
	store  Store
	userID uint
	delay  time.Duration

	mu      sync.Mutex
	draft   *models.PropertyDraft
	timer   *time.Timer
	lastErr error
}

func NewController(store Store, userID uint) *Controller {
	return &Controller{
		store:  store,
		userID: userID,
		delay:  DefaultDebounce,
	}
}

// Load fetches the draft with the given ID into the controller. A
// missing draft leaves the state empty and returns nil; a decode or
// store failure is returned to the caller.
func (c *Controller) Load(ctx context.Context, draftID string) error {
	draft, err := c.store.LoadDraft(ctx, c.userID, draftID)
	if err != nil {
		return err
	}
	// stores are not required to hand back a non-nil map
	if draft != nil && draft.PropertyData == nil {
		draft.PropertyData = map[string]any{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = draft
	c.lastErr = nil
	return nil
}

// CreateDraft synthesizes a new draft at step 0 and persists it
// immediately, exactly once. Later mutations go through the debounce.
func (c *Controller) CreateDraft(ctx context.Context, initial map[string]any) (*models.PropertyDraft, error) {
	if initial == nil {
		initial = map[string]any{}
	}

	draft := &models.PropertyDraft{
		ID:           uuid.NewString(),
		PropertyData: initial,
		CurrentStep:  0,
		UpdatedAt:    time.Now().UTC(),
	}

	if err := c.store.SaveDraft(ctx, c.userID, draft); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = draft
	c.lastErr = nil
	return copyDraft(draft), nil
}

// UpdatePropertyData shallow-merges partial into the draft's property
// data and schedules a debounced write
func (c *Controller) UpdatePropertyData(partial map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return
	}
	for k, v := range partial {
		c.draft.PropertyData[k] = v
	}
	c.draft.UpdatedAt = time.Now().UTC()
	c.armLocked()
}

// UpdateCurrentStep records the onboarding step and schedules a
// debounced write
func (c *Controller) UpdateCurrentStep(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return
	}
	c.draft.CurrentStep = n
	c.draft.UpdatedAt = time.Now().UTC()
	c.armLocked()
}

// SaveDraft writes the current draft through immediately, cancelling
// any pending debounced write. Saving twice with no mutation in
// between stores the same value twice.
func (c *Controller) SaveDraft(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.draft == nil {
		c.mu.Unlock()
		return nil
	}
	snapshot := copyDraft(c.draft)
	c.mu.Unlock()

	err := c.store.SaveDraft(ctx, c.userID, snapshot)

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	return err
}

// Draft returns a copy of the in-memory draft, or nil when nothing is
// loaded
func (c *Controller) Draft() *models.PropertyDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return nil
	}
	return copyDraft(c.draft)
}

// LastErr reports the outcome of the most recent background write.
// There is no automatic retry; the next mutation re-arms a write.
func (c *Controller) LastErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Close cancels any pending debounced write without flushing it,
// mirroring the owning screen unmounting
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// armLocked restarts the debounce timer; the caller holds c.mu
func (c *Controller) armLocked() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, c.flush)
}

// flush is the timer callback. The request context that scheduled it
// is long gone, so the write runs on a background context.
func (c *Controller) flush() {
	c.mu.Lock()
	c.timer = nil
	if c.draft == nil {
		c.mu.Unlock()
		return
	}
	snapshot := copyDraft(c.draft)
	c.mu.Unlock()

	err := c.store.SaveDraft(context.Background(), c.userID, snapshot)

	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

func copyDraft(d *models.PropertyDraft) *models.PropertyDraft {
	data := make(map[string]any, len(d.PropertyData))
	for k, v := range d.PropertyData {
		data[k] = v
	}
	return &models.PropertyDraft{
		ID:           d.ID,
		PropertyData: data,
		CurrentStep:  d.CurrentStep,
		UpdatedAt:    d.UpdatedAt,
	}
}
