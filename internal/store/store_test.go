package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Carlos-Bolano/Pocka/internal/core"
	"github.com/Carlos-Bolano/Pocka/internal/remote"
	"github.com/Carlos-Bolano/Pocka/internal/remote/memory"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedUser(t *testing.T, mem *memory.Store, id string) {
	t.Helper()
	mem.SetUser(&core.User{ID: id, Name: "Ana", Email: "ana@example.com"})
}

func seedTransaction(t *testing.T, mem *memory.Store, owner, typ, amount string, date time.Time) core.Transaction {
	t.Helper()
	txn, err := mem.CreateTransaction(context.Background(), core.Transaction{
		OwnerID:     owner,
		Amount:      decimal.RequireFromString(amount),
		Type:        core.TransactionType(typ),
		CategoryID:  "cat-1",
		Date:        date,
		Description: "seed",
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	return txn
}

func readyStore(t *testing.T) (*Store, *memory.Store) {
	t.Helper()
	mem := memory.New()
	seedUser(t, mem, "user-a")
	s := New(mem, mem, discardLogger())
	if st, err := s.Initialize(context.Background()); err != nil || st != StateReady {
		t.Fatalf("Initialize: got (%v, %v)", st, err)
	}
	return s, mem
}

func TestInitializeUnauthenticated(t *testing.T) {
	mem := memory.New()
	s := New(mem, mem, discardLogger())

	st, err := s.Initialize(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != StateEmpty || s.State() != StateEmpty {
		t.Fatalf("expected empty state, got %v", st)
	}
	if s.User() != nil {
		t.Fatalf("expected nil user, got %+v", s.User())
	}
}

func TestInitializeLoadsEverything(t *testing.T) {
	mem := memory.New()
	seedUser(t, mem, "user-a")
	day := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	seedTransaction(t, mem, "user-a", "income", "1500000", day)
	seedTransaction(t, mem, "user-a", "expense", "350000.50", day.AddDate(0, 0, 3))
	if _, err := mem.CreateGoal(context.Background(), core.Goal{
		OwnerID:      "user-a",
		Name:         "Trip to Medellin",
		TargetAmount: decimal.RequireFromString("2000000"),
		Status:       core.GoalInProgress,
	}); err != nil {
		t.Fatalf("seed goal: %v", err)
	}

	s := New(mem, mem, discardLogger())
	st, err := s.Initialize(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != StateReady {
		t.Fatalf("expected ready, got %v", st)
	}
	if u := s.User(); u == nil || u.ID != "user-a" {
		t.Fatalf("unexpected user: %+v", u)
	}
	if got := len(s.Goals()); got != 1 {
		t.Fatalf("expected 1 goal, got %d", got)
	}
	if got := len(s.Categories()); got == 0 {
		t.Fatal("expected seeded categories")
	}

	txns := s.Transactions()
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
	if !txns[0].Date.After(txns[1].Date) {
		t.Fatalf("transactions not newest first: %v then %v", txns[0].Date, txns[1].Date)
	}
	if want := decimal.RequireFromString("1149999.50"); !s.Balance().Equal(want) {
		t.Fatalf("balance: got %s, want %s", s.Balance(), want)
	}
}

type failingBackend struct {
	remote.Store
	fail bool
}

func (f *failingBackend) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	if f.fail {
		return nil, errors.New("backend unavailable")
	}
	return f.Store.ListTransactions(ctx, ownerID)
}

func TestInitializeFailureKeepsLastKnownGood(t *testing.T) {
	mem := memory.New()
	seedUser(t, mem, "user-a")
	seedTransaction(t, mem, "user-a", "income", "100", time.Now().UTC())

	backend := &failingBackend{Store: mem}
	s := New(mem, backend, discardLogger())
	if st, err := s.Initialize(context.Background()); err != nil || st != StateReady {
		t.Fatalf("first load: got (%v, %v)", st, err)
	}
	wantBalance := s.Balance()

	backend.fail = true
	st, err := s.Initialize(context.Background())
	if err == nil {
		t.Fatal("expected error from failing backend")
	}
	if st != StateReady || s.State() != StateReady {
		t.Fatalf("expected state to fall back to ready, got %v", s.State())
	}
	if !s.Balance().Equal(wantBalance) {
		t.Fatalf("balance changed on failed load: %s", s.Balance())
	}
	if len(s.Transactions()) != 1 {
		t.Fatal("transactions lost on failed load")
	}
	if s.Err() == nil {
		t.Fatal("expected recorded error")
	}

	backend.fail = false
	if st, err := s.Initialize(context.Background()); err != nil || st != StateReady {
		t.Fatalf("recovery load: got (%v, %v)", st, err)
	}
	if s.Err() != nil {
		t.Fatalf("error not cleared by successful load: %v", s.Err())
	}
}

func TestApplyLocalAddKeepsBalanceConsistent(t *testing.T) {
	s, _ := readyStore(t)
	before := s.Balance()

	txn := core.Transaction{
		ID:          "t-local",
		OwnerID:     "user-a",
		Amount:      decimal.RequireFromString("250.75"),
		Type:        core.TransactionExpense,
		CategoryID:  "cat-1",
		Date:        time.Now().UTC(),
		Description: "optimistic",
	}
	if err := s.ApplyLocal(remote.Event{
		Collection:  remote.CollectionTransactions,
		Op:          remote.OpAdd,
		RecordID:    txn.ID,
		Transaction: &txn,
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	signed, err := txn.Signed()
	if err != nil {
		t.Fatalf("signed: %v", err)
	}
	if want := before.Add(signed); !s.Balance().Equal(want) {
		t.Fatalf("balance: got %s, want %s", s.Balance(), want)
	}
}

func TestApplyLocalUpdateAndRemove(t *testing.T) {
	s, mem := readyStore(t)
	txn := seedTransaction(t, mem, "user-a", "income", "100", time.Now().UTC())
	if err := s.Refetch(context.Background(), remote.CollectionTransactions); err != nil {
		t.Fatalf("refetch: %v", err)
	}

	txn.Amount = decimal.RequireFromString("40")
	if err := s.ApplyLocal(remote.Event{
		Collection:  remote.CollectionTransactions,
		Op:          remote.OpUpdate,
		RecordID:    txn.ID,
		Transaction: &txn,
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if want := decimal.RequireFromString("40"); !s.Balance().Equal(want) {
		t.Fatalf("balance after update: got %s, want %s", s.Balance(), want)
	}

	if err := s.ApplyLocal(remote.Event{
		Collection: remote.CollectionTransactions,
		Op:         remote.OpRemove,
		RecordID:   txn.ID,
	}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !s.Balance().IsZero() {
		t.Fatalf("balance after remove: got %s, want 0", s.Balance())
	}
	if len(s.Transactions()) != 0 {
		t.Fatalf("transaction not removed")
	}
}

func TestApplyLocalRejectsUnknownTransactionType(t *testing.T) {
	s, _ := readyStore(t)
	before := s.Balance()

	bad := core.Transaction{
		ID:      "t-bad",
		OwnerID: "user-a",
		Amount:  decimal.RequireFromString("10"),
		Type:    "transfer",
	}
	err := s.ApplyLocal(remote.Event{
		Collection:  remote.CollectionTransactions,
		Op:          remote.OpAdd,
		RecordID:    bad.ID,
		Transaction: &bad,
	})
	if !errors.Is(err, core.ErrUnknownTransactionType) {
		t.Fatalf("expected ErrUnknownTransactionType, got %v", err)
	}
	if !s.Balance().Equal(before) {
		t.Fatal("rejected patch changed the balance")
	}
	if len(s.Transactions()) != 0 {
		t.Fatal("rejected patch committed")
	}
}

func TestApplyLocalUpdateMissingRecord(t *testing.T) {
	s, _ := readyStore(t)
	g := core.Goal{ID: "g-missing", Name: "x"}
	err := s.ApplyLocal(remote.Event{
		Collection: remote.CollectionGoals,
		Op:         remote.OpUpdate,
		RecordID:   g.ID,
		Goal:       &g,
	})
	if !errors.Is(err, remote.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRefetchReplacesOptimisticState(t *testing.T) {
	s, mem := readyStore(t)

	phantom := core.Transaction{
		ID:      "t-phantom",
		OwnerID: "user-a",
		Amount:  decimal.RequireFromString("999"),
		Type:    core.TransactionIncome,
		Date:    time.Now().UTC(),
	}
	if err := s.ApplyLocal(remote.Event{
		Collection:  remote.CollectionTransactions,
		Op:          remote.OpAdd,
		RecordID:    phantom.ID,
		Transaction: &phantom,
	}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	confirmed := seedTransaction(t, mem, "user-a", "expense", "50", time.Now().UTC())

	if err := s.Refetch(context.Background(), remote.CollectionTransactions); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	txns := s.Transactions()
	if len(txns) != 1 || txns[0].ID != confirmed.ID {
		t.Fatalf("refetch did not replace wholesale: %+v", txns)
	}
	if want := decimal.RequireFromString("-50"); !s.Balance().Equal(want) {
		t.Fatalf("balance: got %s, want %s", s.Balance(), want)
	}
}

func TestRefetchWithoutUser(t *testing.T) {
	mem := memory.New()
	s := New(mem, mem, discardLogger())
	if err := s.Refetch(context.Background(), remote.CollectionGoals); !errors.Is(err, ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
}

type gatedBackend struct {
	remote.Store
	entered chan struct{}
	release chan struct{}
}

func (g *gatedBackend) ListTransactions(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	g.entered <- struct{}{}
	<-g.release
	return g.Store.ListTransactions(ctx, ownerID)
}

func (g *gatedBackend) pass() {
	<-g.entered
	g.release <- struct{}{}
}

func TestRefetchCoalescesConcurrentCalls(t *testing.T) {
	mem := memory.New()
	seedUser(t, mem, "user-a")
	gated := &gatedBackend{
		Store:   mem,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := New(mem, gated, discardLogger())

	initDone := make(chan error, 1)
	go func() {
		_, err := s.Initialize(context.Background())
		initDone <- err
	}()
	gated.pass()
	if err := <-initDone; err != nil {
		t.Fatalf("initialize: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.Refetch(context.Background(), remote.CollectionTransactions)
	}()
	<-gated.entered

	if err := s.Refetch(context.Background(), remote.CollectionTransactions); !errors.Is(err, ErrRefetchInProgress) {
		t.Fatalf("expected ErrRefetchInProgress, got %v", err)
	}

	gated.release <- struct{}{}
	if err := <-done; err != nil {
		t.Fatalf("first refetch: %v", err)
	}
}

func TestInitializeRejectedWhileLoading(t *testing.T) {
	mem := memory.New()
	seedUser(t, mem, "user-a")
	gated := &gatedBackend{
		Store:   mem,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := New(mem, gated, discardLogger())

	initDone := make(chan error, 1)
	go func() {
		_, err := s.Initialize(context.Background())
		initDone <- err
	}()
	<-gated.entered

	if _, err := s.Initialize(context.Background()); !errors.Is(err, ErrLoadInProgress) {
		t.Fatalf("expected ErrLoadInProgress, got %v", err)
	}

	gated.release <- struct{}{}
	if err := <-initDone; err != nil {
		t.Fatalf("first initialize: %v", err)
	}
	if s.State() != StateReady {
		t.Fatalf("expected ready after load, got %v", s.State())
	}
}

func TestResetClearsEverything(t *testing.T) {
	mem := memory.New()
	seedUser(t, mem, "user-a")
	seedTransaction(t, mem, "user-a", "income", "100", time.Now().UTC())

	s := New(mem, mem, discardLogger(), WithSubscriber(mem))
	if _, err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if mem.SubscriberCount() == 0 {
		t.Fatal("expected live subscriptions after initialize")
	}

	s.Reset()
	if s.State() != StateEmpty {
		t.Fatalf("state after reset: %v", s.State())
	}
	if s.User() != nil || len(s.Goals()) != 0 || len(s.Transactions()) != 0 || len(s.Categories()) != 0 {
		t.Fatal("reset left data behind")
	}
	if !s.Balance().IsZero() {
		t.Fatalf("balance after reset: %s", s.Balance())
	}
	if mem.SubscriberCount() != 0 {
		t.Fatalf("reset leaked %d subscriptions", mem.SubscriberCount())
	}
}

func TestCrossUserIsolation(t *testing.T) {
	mem := memory.New()
	seedUser(t, mem, "user-a")
	seedTransaction(t, mem, "user-a", "income", "100", time.Now().UTC())
	if _, err := mem.CreateGoal(context.Background(), core.Goal{
		OwnerID: "user-a", Name: "A's goal",
		TargetAmount: decimal.RequireFromString("10"),
		Status:       core.GoalInProgress,
	}); err != nil {
		t.Fatalf("seed goal: %v", err)
	}

	s := New(mem, mem, discardLogger())
	if _, err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize A: %v", err)
	}

	s.Reset()
	mem.SetUser(&core.User{ID: "user-b", Name: "Ben"})
	seedTransaction(t, mem, "user-b", "expense", "30", time.Now().UTC())
	if _, err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize B: %v", err)
	}

	for _, txn := range s.Transactions() {
		if txn.OwnerID == "user-a" {
			t.Fatalf("user A transaction leaked into user B session: %+v", txn)
		}
	}
	for _, g := range s.Goals() {
		if g.OwnerID == "user-a" {
			t.Fatalf("user A goal leaked into user B session: %+v", g)
		}
	}
	if want := decimal.RequireFromString("-30"); !s.Balance().Equal(want) {
		t.Fatalf("balance: got %s, want %s", s.Balance(), want)
	}
}

func TestRealtimeEventsPatchCache(t *testing.T) {
	mem := memory.New()
	seedUser(t, mem, "user-a")
	s := New(mem, mem, discardLogger(), WithSubscriber(mem))
	if _, err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	txn := seedTransaction(t, mem, "user-a", "income", "75", time.Now().UTC())
	if want := decimal.RequireFromString("75"); !s.Balance().Equal(want) {
		t.Fatalf("balance after realtime add: got %s, want %s", s.Balance(), want)
	}

	if err := mem.DeleteTransaction(context.Background(), txn.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !s.Balance().IsZero() {
		t.Fatalf("balance after realtime remove: %s", s.Balance())
	}
	if len(s.Transactions()) != 0 {
		t.Fatal("transaction not removed by realtime event")
	}
}

func TestCategoryByID(t *testing.T) {
	s, _ := readyStore(t)
	cats := s.Categories()
	if len(cats) == 0 {
		t.Fatal("expected categories")
	}
	got, ok := s.CategoryByID(cats[0].ID)
	if !ok || got.Name != cats[0].Name {
		t.Fatalf("lookup failed: (%+v, %v)", got, ok)
	}
	if _, ok := s.CategoryByID("nope"); ok {
		t.Fatal("expected miss for unknown id")
	}
}
