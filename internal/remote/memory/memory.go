// Package memory is an in-process backend used by tests and the default
// dev configuration. It keeps all records behind one mutex and fans out
// mutations to subscribers synchronously, which makes ordering in tests
// deterministic.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Carlos-Bolano/Pocka/internal/core"
	"github.com/Carlos-Bolano/Pocka/internal/remote"
	"github.com/Carlos-Bolano/Pocka/internal/seed"
)

type subscription struct {
	id         int
	collection remote.Collection
	ownerID    string
	fn         func(remote.Event)
}

type Store struct {
	mu           sync.Mutex
	user         *core.User
	goals        map[string]core.Goal
	transactions map[string]core.Transaction
	categories   map[string]core.Category
	subs         map[int]subscription
	nextSub      int
	now          func() time.Time
}

// New returns an empty store seeded with the default category catalog.
// The user is nil until SetUser is called, mirroring a signed-out session.
func New() *Store {
	s := &Store{
		goals:        map[string]core.Goal{},
		transactions: map[string]core.Transaction{},
		categories:   map[string]core.Category{},
		subs:         map[int]subscription{},
		now:          time.Now,
	}
	for _, c := range seed.Categories() {
		c.ID = uuid.NewString()
		c.CreatedAt = s.now().UTC()
		c.UpdatedAt = c.CreatedAt
		s.categories[c.ID] = c
	}
	return s
}

// SetNow overrides the clock. Tests use it for stable timestamps.
func (s *Store) SetNow(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetUser installs (or clears, with nil) the authenticated user.
func (s *Store) SetUser(u *core.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u == nil {
		s.user = nil
		return
	}
	cp := *u
	s.user = &cp
}

func (s *Store) CurrentUser(_ context.Context) (*core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil, nil
	}
	cp := *s.user
	return &cp, nil
}

func (s *Store) ListGoals(_ context.Context, ownerID string) ([]core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Goal
	for _, g := range s.goals {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, id string) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, remote.ErrNotFound
	}
	return g, nil
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.CreatedAt = s.now().UTC()
	g.UpdatedAt = g.CreatedAt
	s.goals[g.ID] = g
	s.mu.Unlock()

	s.publish(remote.Event{
		Collection: remote.CollectionGoals,
		Op:         remote.OpAdd,
		RecordID:   g.ID,
		Goal:       &g,
	}, g.OwnerID)
	return g, nil
}

func (s *Store) UpdateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	prev, ok := s.goals[g.ID]
	if !ok {
		s.mu.Unlock()
		return core.Goal{}, remote.ErrNotFound
	}
	g.OwnerID = prev.OwnerID
	g.CreatedAt = prev.CreatedAt
	g.UpdatedAt = s.now().UTC()
	s.goals[g.ID] = g
	s.mu.Unlock()

	s.publish(remote.Event{
		Collection: remote.CollectionGoals,
		Op:         remote.OpUpdate,
		RecordID:   g.ID,
		Goal:       &g,
	}, g.OwnerID)
	return g, nil
}

func (s *Store) DeleteGoal(_ context.Context, id string) error {
	s.mu.Lock()
	g, ok := s.goals[id]
	if !ok {
		s.mu.Unlock()
		return remote.ErrNotFound
	}
	delete(s.goals, id)
	s.mu.Unlock()

	s.publish(remote.Event{
		Collection: remote.CollectionGoals,
		Op:         remote.OpRemove,
		RecordID:   id,
	}, g.OwnerID)
	return nil
}

func (s *Store) ListTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Transaction
	for _, t := range s.transactions {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, remote.ErrNotFound
	}
	return t, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.CreatedAt = s.now().UTC()
	t.UpdatedAt = t.CreatedAt
	s.transactions[t.ID] = t
	s.mu.Unlock()

	s.publish(remote.Event{
		Collection:  remote.CollectionTransactions,
		Op:          remote.OpAdd,
		RecordID:    t.ID,
		Transaction: &t,
	}, t.OwnerID)
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	prev, ok := s.transactions[t.ID]
	if !ok {
		s.mu.Unlock()
		return core.Transaction{}, remote.ErrNotFound
	}
	t.OwnerID = prev.OwnerID
	t.CreatedAt = prev.CreatedAt
	t.UpdatedAt = s.now().UTC()
	s.transactions[t.ID] = t
	s.mu.Unlock()

	s.publish(remote.Event{
		Collection:  remote.CollectionTransactions,
		Op:          remote.OpUpdate,
		RecordID:    t.ID,
		Transaction: &t,
	}, t.OwnerID)
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	t, ok := s.transactions[id]
	if !ok {
		s.mu.Unlock()
		return remote.ErrNotFound
	}
	delete(s.transactions, id)
	s.mu.Unlock()

	s.publish(remote.Event{
		Collection: remote.CollectionTransactions,
		Op:         remote.OpRemove,
		RecordID:   id,
	}, t.OwnerID)
	return nil
}

func (s *Store) ListCategories(_ context.Context, filter remote.CategoryFilter) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		if filter.Kind != nil && c.Kind != *filter.Kind {
			continue
		}
		if filter.UserDefined != nil && c.UserDefined != *filter.UserDefined {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return core.Category{}, remote.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = s.now().UTC()
	c.UpdatedAt = c.CreatedAt
	s.categories[c.ID] = c
	s.mu.Unlock()

	s.publish(remote.Event{
		Collection: remote.CollectionCategories,
		Op:         remote.OpAdd,
		RecordID:   c.ID,
		Category:   &c,
	}, "")
	return c, nil
}

func (s *Store) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	s.mu.Lock()
	prev, ok := s.categories[c.ID]
	if !ok {
		s.mu.Unlock()
		return core.Category{}, remote.ErrNotFound
	}
	if c.Kind != prev.Kind {
		s.mu.Unlock()
		return core.Category{}, remote.ErrImmutableKind
	}
	c.CreatedAt = prev.CreatedAt
	c.UpdatedAt = s.now().UTC()
	s.categories[c.ID] = c
	s.mu.Unlock()

	s.publish(remote.Event{
		Collection: remote.CollectionCategories,
		Op:         remote.OpUpdate,
		RecordID:   c.ID,
		Category:   &c,
	}, "")
	return c, nil
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.categories[id]; !ok {
		s.mu.Unlock()
		return remote.ErrNotFound
	}
	delete(s.categories, id)
	s.mu.Unlock()

	s.publish(remote.Event{
		Collection: remote.CollectionCategories,
		Op:         remote.OpRemove,
		RecordID:   id,
	}, "")
	return nil
}

// Subscribe registers fn for mutations on the collection. For owner-scoped
// collections only events for ownerID are delivered; categories are global
// and ignore the owner argument.
func (s *Store) Subscribe(collection remote.Collection, ownerID string, fn func(remote.Event)) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = subscription{id: id, collection: collection, ownerID: ownerID, fn: fn}
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}, nil
}

// SubscriberCount reports live subscriptions. Tests use it to verify that
// a reset released everything.
func (s *Store) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Store) publish(ev remote.Event, ownerID string) {
	s.mu.Lock()
	var fns []func(remote.Event)
	for _, sub := range s.subs {
		if sub.collection != ev.Collection {
			continue
		}
		if ev.Collection != remote.CollectionCategories && sub.ownerID != ownerID {
			continue
		}
		fns = append(fns, sub.fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
