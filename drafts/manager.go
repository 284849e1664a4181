package drafts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dougsimpsoncodes/MyAILandlord-sub005/models"
)

// Controllers untouched for this long are swept on the next manager
// access; the stored draft itself survives until its TTL runs out
const defaultIdleEviction = time.Hour

type liveController struct {
	controller *Controller
	touched    time.Time
}

// Manager hands out one live Controller per (user, draft) so that a
// burst of onboarding-step requests shares a single debounce window
// instead of each request writing through on its own.
type Manager struct {
	store     Store
	idleAfter time.Duration

	mu   sync.Mutex
	live map[string]*liveController
}

func NewManager(store Store) *Manager {
	return &Manager{
		store:     store,
		idleAfter: defaultIdleEviction,
		live:      map[string]*liveController{},
	}
}

// Store exposes the backing store for direct delete/load paths that
// bypass a live controller
func (m *Manager) Store() Store {
	return m.store
}

func controllerKey(userID uint, draftID string) string {
	return fmt.Sprintf("%d:%s", userID, draftID)
}

// Create makes a new draft for the user and registers its controller
func (m *Manager) Create(ctx context.Context, userID uint, initial map[string]any) (*models.PropertyDraft, error) {
	c := NewController(m.store, userID)
	draft, err := c.CreateDraft(ctx, initial)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	m.mu.Lock()
	m.live[controllerKey(userID, draft.ID)] = &liveController{controller: c, touched: now}
	m.sweepLocked(now)
	m.mu.Unlock()
	return draft, nil
}

// Controller returns the live controller for (userID, draftID),
// loading the draft from the store on first touch. A missing draft
// yields (nil, nil).
func (m *Manager) Controller(ctx context.Context, userID uint, draftID string) (*Controller, error) {
	key := controllerKey(userID, draftID)
	now := time.Now()

	m.mu.Lock()
	if e, ok := m.live[key]; ok {
		e.touched = now
		m.sweepLocked(now)
		c := e.controller
		m.mu.Unlock()
		return c, nil
	}
	m.mu.Unlock()

	c := NewController(m.store, userID)
	if err := c.Load(ctx, draftID); err != nil {
		return nil, err
	}
	if c.Draft() == nil {
		return nil, nil
	}

	m.mu.Lock()
	// another request may have loaded it first; keep the winner
	if existing, ok := m.live[key]; ok {
		existing.touched = now
		c = existing.controller
	} else {
		m.live[key] = &liveController{controller: c, touched: now}
	}
	m.sweepLocked(now)
	m.mu.Unlock()
	return c, nil
}

// Release closes and forgets the controller, dropping any pending
// debounced write. Used on submit and delete.
func (m *Manager) Release(userID uint, draftID string) {
	key := controllerKey(userID, draftID)

	m.mu.Lock()
	e, ok := m.live[key]
	delete(m.live, key)
	m.mu.Unlock()

	if ok {
		e.controller.Close()
	}
}

// sweepLocked evicts controllers for abandoned onboarding flows; the
// caller holds m.mu
func (m *Manager) sweepLocked(now time.Time) {
	for key, e := range m.live {
		if now.Sub(e.touched) > m.idleAfter {
			e.controller.Close()
			delete(m.live, key)
		}
	}
}
