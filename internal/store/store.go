// Package store implements the local financial state cache: the one
// in-process authority for the current user, their goals and
// transactions, the global categories, and the derived total balance.
// UI callers read from it; remote mutations reach it through optimistic
// patches and wholesale refetches.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Carlos-Bolano/Pocka/internal/core"
	"github.com/Carlos-Bolano/Pocka/internal/remote"
)

// Cache lifecycle states.
const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateReady   State = "ready"
)

var (
	// ErrLoadInProgress rejects a second full load while one is running.
	ErrLoadInProgress = errors.New("load already in progress")
	// ErrRefetchInProgress rejects overlapping refetches of one collection.
	ErrRefetchInProgress = errors.New("refetch already in progress for collection")
	// ErrNoUser is returned by Refetch when no user is loaded.
	ErrNoUser = errors.New("no current user")
	// ErrBadPatch is returned by ApplyLocal for malformed patches.
	ErrBadPatch = errors.New("invalid local patch")
)

type State string

// Store holds the cached financial state behind one RWMutex so that the
// transaction list and the derived balance always change together.
type Store struct {
	identity remote.Identity
	backend  remote.Store
	sub      remote.Subscriber
	logger   *slog.Logger

	mu           sync.RWMutex
	state        State
	gen          uint64
	user         *core.User
	goals        []core.Goal
	transactions []core.Transaction
	categories   []core.Category
	balance      decimal.Decimal
	lastErr      error
	fetching     map[remote.Collection]bool
	cancels      []func()
}

// Option configures a Store.
type Option func(*Store)

// WithSubscriber wires a realtime event source. After a successful
// Initialize the store subscribes to all three collections and applies
// incoming events as local patches; Reset cancels the subscriptions.
func WithSubscriber(sub remote.Subscriber) Option {
	return func(s *Store) { s.sub = sub }
}

// New builds an empty cache. Construct one instance at application start
// and inject it into consumers; tests construct a fresh one each.
func New(identity remote.Identity, backend remote.Store, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		identity: identity,
		backend:  backend,
		logger:   logger,
		state:    StateEmpty,
		balance:  decimal.Zero,
		fetching: map[remote.Collection]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize resolves the current user and, if one exists, loads all three
// collections concurrently. Either the whole load commits or the cache
// keeps its previous contents with the error recorded. No user is not an
// error; the cache lands in StateEmpty and the caller routes to login.
func (s *Store) Initialize(ctx context.Context) (State, error) {
	s.mu.Lock()
	if s.state == StateLoading {
		s.mu.Unlock()
		return StateLoading, ErrLoadInProgress
	}
	prev := s.state
	s.state = StateLoading
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	user, err := s.identity.CurrentUser(ctx)
	if err != nil {
		s.failLoad(gen, prev, fmt.Errorf("resolve current user: %w", err))
		return prev, err
	}
	if user == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen {
			return s.state, nil
		}
		s.clearLocked()
		s.logger.InfoContext(ctx, "no authenticated user, cache emptied")
		return StateEmpty, nil
	}

	var (
		goals []core.Goal
		txns  []core.Transaction
		cats  []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		goals, err = s.backend.ListGoals(gctx, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		txns, err = s.backend.ListTransactions(gctx, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		cats, err = s.backend.ListCategories(gctx, remote.CategoryFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		s.failLoad(gen, prev, fmt.Errorf("load collections: %w", err))
		s.logger.ErrorContext(ctx, "initial load failed", "error", err)
		return prev, err
	}

	sortTransactions(txns)
	balance, err := core.TotalBalance(txns)
	if err != nil {
		s.failLoad(gen, prev, err)
		return prev, err
	}

	s.mu.Lock()
	if s.gen != gen {
		st := s.state
		s.mu.Unlock()
		s.logger.InfoContext(ctx, "superseded load dropped")
		return st, nil
	}
	s.user = user
	s.goals = goals
	s.transactions = txns
	s.categories = cats
	s.balance = balance
	s.state = StateReady
	s.lastErr = nil
	s.mu.Unlock()

	if err := s.subscribe(user.ID); err != nil {
		s.logger.WarnContext(ctx, "realtime subscription failed", "error", err)
	}
	s.logger.InfoContext(ctx, "cache initialized",
		"user", user.ID,
		"goals", len(goals),
		"transactions", len(txns),
		"categories", len(cats),
	)
	return StateReady, nil
}

// ApplyLocal patches one collection in place using the event's record id
// as the match key. When the transactions collection changes the balance
// is recomputed before the patch commits, so readers never observe a list
// that disagrees with the stored total.
func (s *Store) ApplyLocal(ev remote.Event) error {
	if !ev.Collection.IsValid() || !ev.Op.IsValid() {
		return fmt.Errorf("%w: %s/%s", ErrBadPatch, ev.Collection, ev.Op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Collection {
	case remote.CollectionGoals:
		next, err := patchGoals(s.goals, ev)
		if err != nil {
			return err
		}
		s.goals = next
	case remote.CollectionCategories:
		next, err := patchCategories(s.categories, ev)
		if err != nil {
			return err
		}
		s.categories = next
	case remote.CollectionTransactions:
		next, err := patchTransactions(s.transactions, ev)
		if err != nil {
			return err
		}
		sortTransactions(next)
		balance, err := core.TotalBalance(next)
		if err != nil {
			return err
		}
		s.transactions = next
		s.balance = balance
	}
	return nil
}

// Refetch re-pulls one collection wholesale and replaces it, superseding
// any optimistic patches to it. Overlapping refetches of the same
// collection are rejected. On failure the cached collection and balance
// stay as they were, with the error recorded.
func (s *Store) Refetch(ctx context.Context, collection remote.Collection) error {
	if !collection.IsValid() {
		return fmt.Errorf("%w: %s", ErrBadPatch, collection)
	}

	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNoUser
	}
	if s.fetching[collection] {
		s.mu.Unlock()
		return ErrRefetchInProgress
	}
	s.fetching[collection] = true
	ownerID := s.user.ID
	gen := s.gen
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.fetching, collection)
		s.mu.Unlock()
	}()

	var commit func() error
	var fetchErr error
	switch collection {
	case remote.CollectionGoals:
		var goals []core.Goal
		goals, fetchErr = s.backend.ListGoals(ctx, ownerID)
		commit = func() error {
			s.goals = goals
			return nil
		}
	case remote.CollectionCategories:
		var cats []core.Category
		cats, fetchErr = s.backend.ListCategories(ctx, remote.CategoryFilter{})
		commit = func() error {
			s.categories = cats
			return nil
		}
	case remote.CollectionTransactions:
		var txns []core.Transaction
		txns, fetchErr = s.backend.ListTransactions(ctx, ownerID)
		commit = func() error {
			sortTransactions(txns)
			balance, err := core.TotalBalance(txns)
			if err != nil {
				return err
			}
			s.transactions = txns
			s.balance = balance
			return nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if fetchErr != nil {
		s.lastErr = fetchErr
		s.logger.ErrorContext(ctx, "refetch failed", "collection", collection, "error", fetchErr)
		return fetchErr
	}
	if s.gen != gen {
		s.logger.InfoContext(ctx, "superseded refetch dropped", "collection", collection)
		return nil
	}
	if err := commit(); err != nil {
		s.lastErr = err
		return err
	}
	s.lastErr = nil
	return nil
}

// Reset clears the user, all collections, and the balance, and cancels
// any realtime subscriptions. Call it on logout, and always before
// initializing for a different user.
func (s *Store) Reset() {
	s.mu.Lock()
	cancels := s.cancels
	s.cancels = nil
	s.gen++
	s.clearLocked()
	s.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// State reports the cache lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns a copy of the current user, or nil when signed out.
func (s *Store) User() *core.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

// Balance returns the derived total. It is never settable directly.
func (s *Store) Balance() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// Err returns the last remote error, cleared by a successful load.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Goals returns a copy of the cached goals.
func (s *Store) Goals() []core.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Goal(nil), s.goals...)
}

// Transactions returns a copy of the cached transactions, newest first.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.transactions...)
}

// Categories returns a copy of the cached categories.
func (s *Store) Categories() []core.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Category(nil), s.categories...)
}

// CategoryByID resolves a cached category, for display alongside a
// transaction's category reference.
func (s *Store) CategoryByID(id string) (core.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, true
		}
	}
	return core.Category{}, false
}

func (s *Store) subscribe(ownerID string) error {
	if s.sub == nil {
		return nil
	}
	collections := []remote.Collection{
		remote.CollectionGoals,
		remote.CollectionTransactions,
		remote.CollectionCategories,
	}
	var cancels []func()
	for _, col := range collections {
		cancel, err := s.sub.Subscribe(col, ownerID, func(ev remote.Event) {
			if err := s.ApplyLocal(ev); err != nil {
				s.logger.Warn("dropping realtime event", "collection", ev.Collection, "op", ev.Op, "error", err)
			}
		})
		if err != nil {
			for _, c := range cancels {
				c()
			}
			return err
		}
		cancels = append(cancels, cancel)
	}
	s.mu.Lock()
	s.cancels = append(s.cancels, cancels...)
	s.mu.Unlock()
	return nil
}

func (s *Store) failLoad(gen uint64, prev State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return
	}
	s.state = prev
	s.lastErr = err
}

func (s *Store) clearLocked() {
	s.user = nil
	s.goals = nil
	s.transactions = nil
	s.categories = nil
	s.balance = decimal.Zero
	s.state = StateEmpty
	s.lastErr = nil
}

func patchGoals(in []core.Goal, ev remote.Event) ([]core.Goal, error) {
	switch ev.Op {
	case remote.OpAdd, remote.OpUpdate:
		if ev.Goal == nil {
			return nil, fmt.Errorf("%w: missing goal payload", ErrBadPatch)
		}
	}
	out := append([]core.Goal(nil), in...)
	switch ev.Op {
	case remote.OpAdd:
		return append(out, *ev.Goal), nil
	case remote.OpUpdate:
		for i := range out {
			if out[i].ID == ev.Goal.ID {
				out[i] = *ev.Goal
				return out, nil
			}
		}
		return nil, remote.ErrNotFound
	default:
		return removeGoal(out, ev.RecordID)
	}
}

func removeGoal(in []core.Goal, id string) ([]core.Goal, error) {
	for i := range in {
		if in[i].ID == id {
			return append(in[:i], in[i+1:]...), nil
		}
	}
	return nil, remote.ErrNotFound
}

func patchCategories(in []core.Category, ev remote.Event) ([]core.Category, error) {
	switch ev.Op {
	case remote.OpAdd, remote.OpUpdate:
		if ev.Category == nil {
			return nil, fmt.Errorf("%w: missing category payload", ErrBadPatch)
		}
	}
	out := append([]core.Category(nil), in...)
	switch ev.Op {
	case remote.OpAdd:
		return append(out, *ev.Category), nil
	case remote.OpUpdate:
		for i := range out {
			if out[i].ID == ev.Category.ID {
				out[i] = *ev.Category
				return out, nil
			}
		}
		return nil, remote.ErrNotFound
	default:
		for i := range out {
			if out[i].ID == ev.RecordID {
				return append(out[:i], out[i+1:]...), nil
			}
		}
		return nil, remote.ErrNotFound
	}
}

func patchTransactions(in []core.Transaction, ev remote.Event) ([]core.Transaction, error) {
	switch ev.Op {
	case remote.OpAdd, remote.OpUpdate:
		if ev.Transaction == nil {
			return nil, fmt.Errorf("%w: missing transaction payload", ErrBadPatch)
		}
	}
	out := append([]core.Transaction(nil), in...)
	switch ev.Op {
	case remote.OpAdd:
		return append(out, *ev.Transaction), nil
	case remote.OpUpdate:
		for i := range out {
			if out[i].ID == ev.Transaction.ID {
				out[i] = *ev.Transaction
				return out, nil
			}
		}
		return nil, remote.ErrNotFound
	default:
		for i := range out {
			if out[i].ID == ev.RecordID {
				return append(out[:i], out[i+1:]...), nil
			}
		}
		return nil, remote.ErrNotFound
	}
}

func sortTransactions(txns []core.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.After(txns[j].Date)
		}
		return txns[i].CreatedAt.After(txns[j].CreatedAt)
	})
}
