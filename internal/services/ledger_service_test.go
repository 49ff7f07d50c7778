package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"bolso/internal/amqp"
	"bolso/internal/core"
	"bolso/internal/storage"
)

type fakePublisher struct {
	published []amqp.SyncMessage
	err       error
	closed    bool
}

func (f *fakePublisher) PublishSync(_ context.Context, msg *amqp.SyncMessage) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, *msg)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func newTestService(t *testing.T) (*LedgerService, *storage.Repository, *fakePublisher) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "bolso.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	pub := &fakePublisher{}
	return NewLedgerService(repo, pub), repo, pub
}

func TestCreateTransactionAssignsIDAndPublishes(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "Mercado",
		Amount:      core.Money{Cents: 5000},
		Category:    core.Alimentacao,
		Date:        time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected an assigned id")
	}

	if _, _, err := repo.GetTransaction(ctx, id); err != nil {
		t.Fatalf("transaction not persisted: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected one sync message, got %d", len(pub.published))
	}
	msg := pub.published[0]
	if msg.Entity != amqp.EntityTransaction || msg.Op != amqp.OpUpsert || msg.ID != id {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	svc, _, pub := newTestService(t)

	_, err := svc.CreateTransaction(context.Background(), core.Transaction{
		Description: "",
		Amount:      core.Money{Cents: 100},
		Category:    core.Outro,
		Date:        time.Now(),
	})
	if !errors.Is(err, core.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
	if len(pub.published) != 0 {
		t.Fatal("nothing should be published for a rejected transaction")
	}
}

func TestDeleteTransactionPublishesDelete(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "Café",
		Amount:      core.Money{Cents: 800},
		Category:    core.Alimentacao,
		Date:        time.Now(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	last := pub.published[len(pub.published)-1]
	if last.Entity != amqp.EntityTransaction || last.Op != amqp.OpDelete || last.ID != id {
		t.Fatalf("unexpected delete message %+v", last)
	}

	if err := svc.DeleteTransaction(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	svc, repo, pub := newTestService(t)
	pub.err = errors.New("broker unavailable")
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, core.Transaction{
		Description: "Farmácia",
		Amount:      core.Money{Cents: 3200},
		Category:    core.Saude,
		Date:        time.Now(),
	})
	if err != nil {
		t.Fatalf("local save must succeed despite broker failure: %v", err)
	}

	// The row stays pending so the sweep can recover it.
	pending, err := repo.PendingSync(ctx, 10)
	if err != nil || len(pending) != 1 || pending[0].ID != id {
		t.Fatalf("expected one pending row, got %+v err=%v", pending, err)
	}
}

func TestGoalLifecyclePublishes(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateGoal(ctx, core.Goal{
		Name:     "Viagem",
		Target:   core.Money{Cents: 500000},
		Deadline: time.Now().AddDate(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}

	if err := svc.UpdateGoalAmount(ctx, id, core.Money{Cents: 120000}); err != nil {
		t.Fatalf("update goal: %v", err)
	}
	if err := svc.UpdateGoalAmount(ctx, id, core.Money{Cents: -1}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if err := svc.DeleteGoal(ctx, id); err != nil {
		t.Fatalf("delete goal: %v", err)
	}

	var ops []string
	for _, m := range pub.published {
		ops = append(ops, m.Entity+":"+m.Op)
	}
	want := []string{"goal:upsert", "goal:upsert", "goal:delete"}
	if len(ops) != len(want) {
		t.Fatalf("expected %v, got %v", want, ops)
	}
	for i := range want {
		if ops[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ops)
		}
	}
}

func TestSaveProfileWithoutBroker(t *testing.T) {
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "bolso.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	// Nil publisher: local-only mode must still work.
	svc := NewLedgerService(repo, nil)
	err = svc.SaveProfile(context.Background(), core.UserProfile{
		Name:   "Ana",
		Salary: core.Money{Cents: 300000},
	})
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
}
