package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Carlos-Bolano/Pocka/internal/core"
	"github.com/Carlos-Bolano/Pocka/internal/remote"
)

func TestNewSeedsCategories(t *testing.T) {
	s := New()
	cats, err := s.ListCategories(context.Background(), remote.CategoryFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("expected seeded categories")
	}
	byName := map[string]core.Category{}
	for _, c := range cats {
		if c.ID == "" {
			t.Fatalf("seeded category %q has no id", c.Name)
		}
		if c.UserDefined {
			t.Fatalf("seeded category %q marked user-defined", c.Name)
		}
		byName[c.Name] = c
	}
	if c := byName["Food"]; c.Kind != core.CategoryExpense || c.Icon.Family != "MaterialCommunityIcons" {
		t.Fatalf("unexpected Food category: %+v", c)
	}
	if c := byName["Salary"]; c.Kind != core.CategoryIncome {
		t.Fatalf("unexpected Salary category: %+v", c)
	}
}

func TestCategoryFilter(t *testing.T) {
	s := New()
	income := core.CategoryIncome
	cats, err := s.ListCategories(context.Background(), remote.CategoryFilter{Kind: &income})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cats) == 0 {
		t.Fatal("expected income categories")
	}
	for _, c := range cats {
		if c.Kind != core.CategoryIncome {
			t.Fatalf("filter leaked %q with kind %s", c.Name, c.Kind)
		}
	}
}

func TestCurrentUser(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.CurrentUser(ctx)
	if err != nil || u != nil {
		t.Fatalf("signed-out session: got (%v, %v)", u, err)
	}

	s.SetUser(&core.User{ID: "user-1", Name: "Ana", Email: "ana@example.com"})
	u, err = s.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u == nil || u.ID != "user-1" {
		t.Fatalf("unexpected user: %+v", u)
	}
}

func TestTransactionCRUD(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateTransaction(ctx, core.Transaction{
		OwnerID:     "user-1",
		Amount:      decimal.RequireFromString("42.50"),
		Type:        core.TransactionExpense,
		CategoryID:  "cat-1",
		Description: "Lunch",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("create did not fill metadata: %+v", created)
	}

	created.Description = "Late lunch"
	updated, err := s.UpdateTransaction(ctx, created)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Description != "Late lunch" {
		t.Fatalf("unexpected record after update: %+v", updated)
	}

	got, err := s.GetTransaction(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "Late lunch" {
		t.Fatalf("get returned stale record: %+v", got)
	}

	if err := s.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTransaction(ctx, created.ID); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOwnerScoping(t *testing.T) {
	s := New()
	ctx := context.Background()

	mk := func(owner string) {
		t.Helper()
		_, err := s.CreateTransaction(ctx, core.Transaction{
			OwnerID:     owner,
			Amount:      decimal.RequireFromString("10"),
			Type:        core.TransactionIncome,
			CategoryID:  "cat-1",
			Description: "x",
		})
		if err != nil {
			t.Fatalf("create for %s: %v", owner, err)
		}
	}
	mk("user-1")
	mk("user-1")
	mk("user-2")

	txns, err := s.ListTransactions(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 records for user-1, got %d", len(txns))
	}
	for _, txn := range txns {
		if txn.OwnerID != "user-1" {
			t.Fatalf("listing leaked record owned by %s", txn.OwnerID)
		}
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.UpdateGoal(ctx, core.Goal{ID: "nope"}); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("goal: expected ErrNotFound, got %v", err)
	}
	if _, err := s.UpdateTransaction(ctx, core.Transaction{ID: "nope"}); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("transaction: expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteCategory(ctx, "nope"); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("category: expected ErrNotFound, got %v", err)
	}
}

func TestCategoryKindImmutable(t *testing.T) {
	s := New()
	ctx := context.Background()

	c, err := s.CreateCategory(ctx, core.Category{
		Name:        "Side project",
		Icon:        core.Icon{Family: "FontAwesome", Name: "code"},
		Kind:        core.CategoryIncome,
		UserDefined: true,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	c.Kind = core.CategoryExpense
	if _, err := s.UpdateCategory(ctx, c); !errors.Is(err, remote.ErrImmutableKind) {
		t.Fatalf("expected ErrImmutableKind, got %v", err)
	}
}

func TestSubscribeFanOut(t *testing.T) {
	s := New()
	ctx := context.Background()

	var mine, theirs []remote.Event
	cancel, err := s.Subscribe(remote.CollectionGoals, "user-1", func(ev remote.Event) {
		mine = append(mine, ev)
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	if _, err := s.Subscribe(remote.CollectionGoals, "user-2", func(ev remote.Event) {
		theirs = append(theirs, ev)
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	g, err := s.CreateGoal(ctx, core.Goal{
		OwnerID:      "user-1",
		Name:         "Trip",
		TargetAmount: decimal.RequireFromString("1000"),
		Status:       core.GoalInProgress,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.DeleteGoal(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(mine) != 2 {
		t.Fatalf("expected 2 events for user-1, got %d", len(mine))
	}
	if mine[0].Op != remote.OpAdd || mine[0].Goal == nil || mine[0].Goal.Name != "Trip" {
		t.Fatalf("unexpected add event: %+v", mine[0])
	}
	if mine[1].Op != remote.OpRemove || mine[1].RecordID != g.ID {
		t.Fatalf("unexpected remove event: %+v", mine[1])
	}
	if len(theirs) != 0 {
		t.Fatalf("events leaked across owners: %+v", theirs)
	}
}

func TestSubscribeCancel(t *testing.T) {
	s := New()
	ctx := context.Background()

	var got int
	cancel, err := s.Subscribe(remote.CollectionTransactions, "user-1", func(remote.Event) { got++ })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()
	if n := s.SubscriberCount(); n != 0 {
		t.Fatalf("expected 0 live subscriptions, got %d", n)
	}

	if _, err := s.CreateTransaction(ctx, core.Transaction{
		OwnerID:     "user-1",
		Amount:      decimal.RequireFromString("1"),
		Type:        core.TransactionIncome,
		CategoryID:  "cat-1",
		Description: "x",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got != 0 {
		t.Fatalf("cancelled subscription still received %d events", got)
	}
}
