// Package memory provides process-local implementations of the storage ports.
// They back STORE_DRIVER=memory and the concurrency tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"communityevents/internal/domain"
)

// Catalog is an in-memory EventCatalog and UserDirectory.
type Catalog struct {
	mu     sync.RWMutex
	events map[string]*domain.Event
	users  map[string]*domain.User
}

// NewCatalog returns an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		events: make(map[string]*domain.Event),
		users:  make(map[string]*domain.User),
	}
}

// PutEvent adds or replaces an event.
func (c *Catalog) PutEvent(e *domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *e
	c.events[e.ID] = &cp
}

// PutUser adds or replaces a user.
func (c *Catalog) PutUser(u *domain.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *u
	c.users[u.ID] = &cp
}

func (c *Catalog) GetByID(_ context.Context, id string) (*domain.Event, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.events[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// Users exposes the catalog as a UserDirectory.
func (c *Catalog) Users() domain.UserDirectory { return userDirectory{c} }

type userDirectory struct{ c *Catalog }

func (d userDirectory) GetByID(_ context.Context, id string) (*domain.User, error) {
	d.c.mu.RLock()
	defer d.c.mu.RUnlock()
	u, ok := d.c.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type pairKey struct {
	userID  string
	eventID string
}

// RegistrationStore keeps registrations in a map keyed by (user, event).
// Create checks existence and inserts under one lock.
type RegistrationStore struct {
	mu     sync.Mutex
	byPair map[pairKey]*domain.Registration
	events domain.EventCatalog
	users  domain.UserDirectory
	now    func() time.Time
}

// NewRegistrationStore returns a store that validates references against events and users.
func NewRegistrationStore(events domain.EventCatalog, users domain.UserDirectory) *RegistrationStore {
	return &RegistrationStore{
		byPair: make(map[pairKey]*domain.Registration),
		events: events,
		users:  users,
		now:    time.Now,
	}
}

func (s *RegistrationStore) Exists(_ context.Context, userID, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byPair[pairKey{userID, eventID}]
	return ok, nil
}

func (s *RegistrationStore) Create(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{userID, eventID}
	if _, ok := s.byPair[key]; ok {
		return nil, domain.ErrConflict
	}
	reg := domain.NewRegistration(userID, eventID, s.now().UTC())
	reg.ID = uuid.NewString()
	s.byPair[key] = reg
	cp := *reg
	return &cp, nil
}

func (s *RegistrationStore) ListByUser(_ context.Context, userID string) ([]*domain.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs := []*domain.Registration{}
	for key, reg := range s.byPair {
		if key.userID == userID {
			cp := *reg
			regs = append(regs, &cp)
		}
	}
	return regs, nil
}
