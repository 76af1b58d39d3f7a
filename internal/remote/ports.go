// Package remote defines the outbound ports of the cache: the identity
// provider and the per-kind record stores of the hosted backend, plus the
// realtime subscription hook. Implementations live in the subpackages
// (memory, sqlite, sheets).
package remote

import (
	"context"
	"errors"

	"github.com/Carlos-Bolano/Pocka/internal/core"
)

// Record collections. Goals and transactions are owner-scoped;
// categories are global.
const (
	CollectionGoals        Collection = "goals"
	CollectionTransactions Collection = "transactions"
	CollectionCategories   Collection = "categories"
)

// Mutation operations carried by realtime events and local patches.
const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
)

var (
	// ErrNotFound is returned when a record id does not exist in a store.
	ErrNotFound = errors.New("record not found")
	// ErrImmutableKind is returned on attempts to change a category's kind.
	ErrImmutableKind = errors.New("category kind is immutable")
)

type (
	Collection string
	Op         string

	// CategoryFilter narrows a category listing. Nil fields match all.
	CategoryFilter struct {
		Kind        *core.CategoryKind
		UserDefined *bool
	}

	// Event is one remote mutation fanned out to subscribers. Exactly one
	// of Goal/Transaction/Category is set for add/update; remove events
	// carry only RecordID.
	Event struct {
		Collection  Collection
		Op          Op
		RecordID    string
		Goal        *core.Goal
		Transaction *core.Transaction
		Category    *core.Category
	}

	// Identity resolves the current authenticated user. A nil user with a
	// nil error means unauthenticated, which is a valid state and not a
	// failure.
	Identity interface {
		CurrentUser(ctx context.Context) (*core.User, error)
	}

	// GoalStore is the remote CRUD surface for goals.
	GoalStore interface {
		ListGoals(ctx context.Context, ownerID string) ([]core.Goal, error)
		GetGoal(ctx context.Context, id string) (core.Goal, error)
		CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		UpdateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		DeleteGoal(ctx context.Context, id string) error
	}

	// TransactionStore is the remote CRUD surface for transactions.
	TransactionStore interface {
		ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	// CategoryStore is the remote CRUD surface for categories.
	CategoryStore interface {
		ListCategories(ctx context.Context, filter CategoryFilter) ([]core.Category, error)
		GetCategory(ctx context.Context, id string) (core.Category, error)
		CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
		UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
		DeleteCategory(ctx context.Context, id string) error
	}

	// Store is the full CRUD surface a backend must provide.
	Store interface {
		GoalStore
		TransactionStore
		CategoryStore
	}

	// Subscriber delivers remote mutations as they happen. The returned
	// function cancels the subscription; callers must invoke it on reset
	// to avoid leaking handlers across user sessions.
	Subscriber interface {
		Subscribe(collection Collection, ownerID string, fn func(Event)) (func(), error)
	}
)

// IsValid reports whether the collection is one of the three known kinds.
func (c Collection) IsValid() bool {
	switch c {
	case CollectionGoals, CollectionTransactions, CollectionCategories:
		return true
	}
	return false
}

// IsValid reports whether the op is add, update, or remove.
func (o Op) IsValid() bool {
	switch o {
	case OpAdd, OpUpdate, OpRemove:
		return true
	}
	return false
}
