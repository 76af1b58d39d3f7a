package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Carlos-Bolano/Pocka/internal/amqp"
	"github.com/Carlos-Bolano/Pocka/internal/core"
	"github.com/Carlos-Bolano/Pocka/internal/remote"
	"github.com/Carlos-Bolano/Pocka/internal/remote/memory"
)

func mustMessage(t *testing.T, ev remote.Event) *amqp.MutationMessage {
	t.Helper()
	msg, err := amqp.NewMutationMessage(ev)
	if err != nil {
		t.Fatalf("build message: %v", err)
	}
	return msg
}

func sampleTransaction(id string) core.Transaction {
	return core.Transaction{
		ID:         id,
		OwnerID:    "user-1",
		Amount:     decimal.RequireFromString("250.75"),
		Type:       core.TransactionExpense,
		CategoryID: "cat-1",
		Date:       time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandleMutationAddAndRemove(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(mirror, 10)
	ctx := context.Background()

	txn := sampleTransaction("txn-1")
	msg := mustMessage(t, remote.Event{
		Collection:  remote.CollectionTransactions,
		Op:          remote.OpAdd,
		RecordID:    txn.ID,
		Transaction: &txn,
	})
	if err := w.HandleMutation(ctx, msg); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := mirror.GetTransaction(ctx, "txn-1")
	if err != nil {
		t.Fatalf("get after add: %v", err)
	}
	if !got.Amount.Equal(txn.Amount) {
		t.Fatalf("amount drifted: %s", got.Amount)
	}

	msg = mustMessage(t, remote.Event{
		Collection: remote.CollectionTransactions,
		Op:         remote.OpRemove,
		RecordID:   "txn-1",
	})
	if err := w.HandleMutation(ctx, msg); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := mirror.GetTransaction(ctx, "txn-1"); !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestHandleMutationUpdateUpserts(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(mirror, 10)
	ctx := context.Background()

	// Update for a record the mirror never saw must create it.
	txn := sampleTransaction("txn-2")
	msg := mustMessage(t, remote.Event{
		Collection:  remote.CollectionTransactions,
		Op:          remote.OpUpdate,
		RecordID:    txn.ID,
		Transaction: &txn,
	})
	if err := w.HandleMutation(ctx, msg); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := mirror.GetTransaction(ctx, "txn-2"); err != nil {
		t.Fatalf("record missing after upsert: %v", err)
	}

	txn.Amount = decimal.RequireFromString("999")
	msg = mustMessage(t, remote.Event{
		Collection:  remote.CollectionTransactions,
		Op:          remote.OpUpdate,
		RecordID:    txn.ID,
		Transaction: &txn,
	})
	if err := w.HandleMutation(ctx, msg); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := mirror.GetTransaction(ctx, "txn-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.Amount.Equal(decimal.RequireFromString("999")) {
		t.Fatalf("update not applied: %s", got.Amount)
	}
}

func TestHandleMutationRemoveMissingIsIdempotent(t *testing.T) {
	w := NewMirrorWorker(memory.New(), 10)

	msg := mustMessage(t, remote.Event{
		Collection: remote.CollectionGoals,
		Op:         remote.OpRemove,
		RecordID:   "never-existed",
	})
	if err := w.HandleMutation(context.Background(), msg); err != nil {
		t.Fatalf("remove of missing record should be a no-op, got %v", err)
	}
}

func TestHandleMutationGoal(t *testing.T) {
	mirror := memory.New()
	w := NewMirrorWorker(mirror, 10)
	ctx := context.Background()

	goal := core.Goal{
		ID:            "goal-1",
		OwnerID:       "user-1",
		Name:          "Vacation",
		TargetAmount:  decimal.RequireFromString("2000000"),
		CurrentAmount: decimal.RequireFromString("0"),
		StartDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:        core.GoalInProgress,
	}
	msg := mustMessage(t, remote.Event{
		Collection: remote.CollectionGoals,
		Op:         remote.OpAdd,
		RecordID:   goal.ID,
		Goal:       &goal,
	})
	if err := w.HandleMutation(ctx, msg); err != nil {
		t.Fatalf("add: %v", err)
	}

	goal.Status = core.GoalAchieved
	msg = mustMessage(t, remote.Event{
		Collection: remote.CollectionGoals,
		Op:         remote.OpUpdate,
		RecordID:   goal.ID,
		Goal:       &goal,
	})
	if err := w.HandleMutation(ctx, msg); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := mirror.GetGoal(ctx, "goal-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != core.GoalAchieved {
		t.Fatalf("status not mirrored: %+v", got)
	}
}

func TestHandleMutationUnknownCollection(t *testing.T) {
	w := NewMirrorWorker(memory.New(), 10)
	msg := &amqp.MutationMessage{Collection: "budgets", Op: "add", RecordID: "x"}
	if err := w.HandleMutation(context.Background(), msg); err == nil {
		t.Fatal("expected error for unknown collection")
	}
}

func TestBackfillCopiesEverything(t *testing.T) {
	source := memory.New()
	mirror := memory.New()
	ctx := context.Background()

	source.SetUser(&core.User{ID: "user-1", Name: "Carlos", Email: "carlos@example.com"})
	for i := 0; i < 7; i++ {
		_, err := source.CreateTransaction(ctx, core.Transaction{
			OwnerID:    "user-1",
			Amount:     decimal.NewFromInt(int64(i + 1)),
			Type:       core.TransactionIncome,
			CategoryID: "cat-1",
			Date:       time.Date(2024, 6, i+1, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("seed source: %v", err)
		}
	}
	if _, err := source.CreateGoal(ctx, core.Goal{
		OwnerID:      "user-1",
		Name:         "Emergency fund",
		TargetAmount: decimal.RequireFromString("1000000"),
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:       core.GoalInProgress,
	}); err != nil {
		t.Fatalf("seed goal: %v", err)
	}

	// Batch size smaller than the record count exercises the batching path.
	w := NewMirrorWorker(mirror, 3)
	if err := w.Backfill(ctx, source, "user-1"); err != nil {
		t.Fatalf("backfill: %v", err)
	}

	txns, err := mirror.ListTransactions(ctx, "user-1")
	if err != nil {
		t.Fatalf("list mirrored transactions: %v", err)
	}
	if len(txns) != 7 {
		t.Fatalf("expected 7 mirrored transactions, got %d", len(txns))
	}
	goals, err := mirror.ListGoals(ctx, "user-1")
	if err != nil {
		t.Fatalf("list mirrored goals: %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("expected 1 mirrored goal, got %d", len(goals))
	}
}

func TestBackfillIsRerunnable(t *testing.T) {
	source := memory.New()
	mirror := memory.New()
	ctx := context.Background()

	source.SetUser(&core.User{ID: "user-1", Name: "Carlos", Email: "carlos@example.com"})
	if _, err := source.CreateTransaction(ctx, sampleTransaction("")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := NewMirrorWorker(mirror, 10)
	if err := w.Backfill(ctx, source, "user-1"); err != nil {
		t.Fatalf("first backfill: %v", err)
	}
	if err := w.Backfill(ctx, source, "user-1"); err != nil {
		t.Fatalf("second backfill: %v", err)
	}

	txns, err := mirror.ListTransactions(ctx, "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("backfill duplicated records: %d", len(txns))
	}
}
