// Package worker replays mutation messages onto a local mirror store so
// a durable copy of the remote data survives restarts and offline spells.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Carlos-Bolano/Pocka/internal/amqp"
	"github.com/Carlos-Bolano/Pocka/internal/remote"
)

// MirrorWorker applies mutation messages to a mirror store with upsert
// semantics: updates for unknown records become creates, deletes of
// unknown records are ignored.
type MirrorWorker struct {
	mirror    remote.Store
	batchSize int
}

func NewMirrorWorker(mirror remote.Store, batchSize int) *MirrorWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &MirrorWorker{
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleMutation processes a single mutation message from AMQP.
func (w *MirrorWorker) HandleMutation(ctx context.Context, msg *amqp.MutationMessage) error {
	slog.InfoContext(ctx, "Processing mutation",
		"collection", msg.Collection,
		"op", msg.Op,
		"record_id", msg.RecordID)

	ev, err := msg.Event()
	if err != nil {
		return fmt.Errorf("decode mutation: %w", err)
	}

	switch remote.Collection(msg.Collection) {
	case remote.CollectionGoals:
		return w.applyGoal(ctx, ev)
	case remote.CollectionTransactions:
		return w.applyTransaction(ctx, ev)
	case remote.CollectionCategories:
		return w.applyCategory(ctx, ev)
	default:
		return fmt.Errorf("unknown collection %q", msg.Collection)
	}
}

func (w *MirrorWorker) applyGoal(ctx context.Context, ev remote.Event) error {
	switch ev.Op {
	case remote.OpAdd:
		_, err := w.mirror.CreateGoal(ctx, *ev.Goal)
		return err
	case remote.OpUpdate:
		_, err := w.mirror.UpdateGoal(ctx, *ev.Goal)
		if errors.Is(err, remote.ErrNotFound) {
			_, err = w.mirror.CreateGoal(ctx, *ev.Goal)
		}
		return err
	case remote.OpRemove:
		err := w.mirror.DeleteGoal(ctx, ev.RecordID)
		if errors.Is(err, remote.ErrNotFound) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown op %q", ev.Op)
	}
}

func (w *MirrorWorker) applyTransaction(ctx context.Context, ev remote.Event) error {
	switch ev.Op {
	case remote.OpAdd:
		_, err := w.mirror.CreateTransaction(ctx, *ev.Transaction)
		return err
	case remote.OpUpdate:
		_, err := w.mirror.UpdateTransaction(ctx, *ev.Transaction)
		if errors.Is(err, remote.ErrNotFound) {
			_, err = w.mirror.CreateTransaction(ctx, *ev.Transaction)
		}
		return err
	case remote.OpRemove:
		err := w.mirror.DeleteTransaction(ctx, ev.RecordID)
		if errors.Is(err, remote.ErrNotFound) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown op %q", ev.Op)
	}
}

func (w *MirrorWorker) applyCategory(ctx context.Context, ev remote.Event) error {
	switch ev.Op {
	case remote.OpAdd:
		_, err := w.mirror.CreateCategory(ctx, *ev.Category)
		return err
	case remote.OpUpdate:
		_, err := w.mirror.UpdateCategory(ctx, *ev.Category)
		if errors.Is(err, remote.ErrNotFound) {
			_, err = w.mirror.CreateCategory(ctx, *ev.Category)
			return err
		}
		if errors.Is(err, remote.ErrImmutableKind) {
			// The source already accepted the change, so the mirror row is
			// stale. Recreate it to stay faithful.
			if delErr := w.mirror.DeleteCategory(ctx, ev.Category.ID); delErr != nil && !errors.Is(delErr, remote.ErrNotFound) {
				return delErr
			}
			_, err = w.mirror.CreateCategory(ctx, *ev.Category)
		}
		return err
	case remote.OpRemove:
		err := w.mirror.DeleteCategory(ctx, ev.RecordID)
		if errors.Is(err, remote.ErrNotFound) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown op %q", ev.Op)
	}
}

// Backfill copies everything the source holds for ownerID into the
// mirror. It runs at startup to recover from missed messages or mirror
// downtime. Records are upserted in batches so a large history does not
// hold a single transaction open for long.
func (w *MirrorWorker) Backfill(ctx context.Context, source remote.Store, ownerID string) error {
	goals, err := source.ListGoals(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}
	for i, g := range goals {
		if err := w.applyGoal(ctx, remote.Event{Op: remote.OpUpdate, RecordID: g.ID, Goal: &goals[i]}); err != nil {
			return fmt.Errorf("backfill goal %s: %w", g.ID, err)
		}
		if err := w.pause(ctx, i); err != nil {
			return err
		}
	}

	txns, err := source.ListTransactions(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	for i, txn := range txns {
		if err := w.applyTransaction(ctx, remote.Event{Op: remote.OpUpdate, RecordID: txn.ID, Transaction: &txns[i]}); err != nil {
			return fmt.Errorf("backfill transaction %s: %w", txn.ID, err)
		}
		if err := w.pause(ctx, i); err != nil {
			return err
		}
	}

	cats, err := source.ListCategories(ctx, remote.CategoryFilter{})
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	for i, c := range cats {
		if err := w.applyCategory(ctx, remote.Event{Op: remote.OpUpdate, RecordID: c.ID, Category: &cats[i]}); err != nil {
			return fmt.Errorf("backfill category %s: %w", c.ID, err)
		}
		if err := w.pause(ctx, i); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "Backfill completed",
		"goals", len(goals),
		"transactions", len(txns),
		"categories", len(cats))

	return nil
}

// pause yields between batches and honors cancellation.
func (w *MirrorWorker) pause(ctx context.Context, i int) error {
	if (i+1)%w.batchSize != 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}
