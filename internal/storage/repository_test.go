package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bolso/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "bolso.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestProfileRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.GetProfile(ctx); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound before onboarding, got %v", err)
	}

	p := core.UserProfile{
		Name:   "Ana",
		Salary: core.Money{Cents: 300000},
		FixedExpenses: []core.FixedExpense{
			{Name: "Aluguel", Amount: core.Money{Cents: 100000}},
			{Name: "Internet", Amount: core.Money{Cents: 9990}},
		},
	}
	if err := repo.SaveProfile(ctx, p); err != nil {
		t.Fatalf("save profile: %v", err)
	}

	got, err := repo.GetProfile(ctx)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.Name != p.Name || got.Salary != p.Salary {
		t.Fatalf("profile mismatch: %+v", got)
	}
	if len(got.FixedExpenses) != 2 || got.FixedExpenses[0].Name != "Aluguel" {
		t.Fatalf("fixed expenses mismatch: %+v", got.FixedExpenses)
	}

	// Replace-all semantics: saving again with one entry drops the other.
	p.FixedExpenses = p.FixedExpenses[:1]
	if err := repo.SaveProfile(ctx, p); err != nil {
		t.Fatalf("re-save profile: %v", err)
	}
	got, err = repo.GetProfile(ctx)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if len(got.FixedExpenses) != 1 {
		t.Fatalf("expected replace-all, got %+v", got.FixedExpenses)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tx := core.Transaction{
		ID:          "t1",
		Description: "Mercado",
		Amount:      core.Money{Cents: 23450},
		Category:    core.Alimentacao,
		Date:        time.Date(2026, 8, 10, 9, 30, 0, 0, time.Local),
	}
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "t1" || list[0].Amount.Cents != 23450 {
		t.Fatalf("unexpected list %+v", list)
	}
	if !list[0].Date.Equal(tx.Date) {
		t.Fatalf("date must survive the round trip, got %v", list[0].Date)
	}

	if err := repo.SoftDeleteTransaction(ctx, "t1"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	list, err = repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("deleted transaction must not be listed, got %+v", list)
	}

	// Tombstone stays readable for the mirror worker.
	got, deleted, err := repo.GetTransaction(ctx, "t1")
	if err != nil || !deleted || got.ID != "t1" {
		t.Fatalf("expected tombstone, got %+v deleted=%v err=%v", got, deleted, err)
	}

	if err := repo.SoftDeleteTransaction(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGoalLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	g := core.Goal{
		ID:       "g1",
		Name:     "Viagem",
		Target:   core.Money{Cents: 500000},
		Current:  core.Money{Cents: 0},
		Deadline: time.Date(2027, 1, 15, 0, 0, 0, 0, time.Local),
	}
	if err := repo.CreateGoal(ctx, g); err != nil {
		t.Fatalf("create goal: %v", err)
	}

	// Current may exceed the target.
	if err := repo.UpdateGoalAmount(ctx, "g1", core.Money{Cents: 600000}); err != nil {
		t.Fatalf("update goal: %v", err)
	}
	got, err := repo.GetGoal(ctx, "g1")
	if err != nil || got.Current.Cents != 600000 {
		t.Fatalf("expected 600000, got %+v err=%v", got, err)
	}

	if err := repo.DeleteGoal(ctx, "g1"); err != nil {
		t.Fatalf("delete goal: %v", err)
	}
	if _, err := repo.GetGoal(ctx, "g1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPendingSyncFlow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		tx := core.Transaction{
			ID:          id,
			Description: "gasto " + id,
			Amount:      core.Money{Cents: 100},
			Category:    core.Outro,
			Date:        time.Now(),
		}
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	pending, err := repo.PendingSync(ctx, 10)
	if err != nil || len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d err=%v", len(pending), err)
	}

	if err := repo.MarkSynced(ctx, "a"); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, "b"); err != nil {
		t.Fatalf("mark sync error: %v", err)
	}

	pending, err = repo.PendingSync(ctx, 10)
	if err != nil || len(pending) != 0 {
		t.Fatalf("expected no pending after marking, got %d err=%v", len(pending), err)
	}
}

func TestLoadSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SaveProfile(ctx, core.UserProfile{Name: "Ana", Salary: core.Money{Cents: 300000}}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	if err := repo.CreateTransaction(ctx, core.Transaction{
		ID: "t1", Description: "Café", Amount: core.Money{Cents: 800},
		Category: core.Alimentacao, Date: time.Now(),
	}); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	snap, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if snap.Profile.Name != "Ana" || len(snap.Transactions) != 1 || len(snap.Goals) != 0 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
