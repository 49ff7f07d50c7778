// Package worker replays local ledger changes against the remote mirror.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"bolso/internal/amqp"
	"bolso/internal/mirror"
	"bolso/internal/storage"
)

// TableMirror is the remote side of the sync pipeline. *mirror.Client
// satisfies it; tests substitute a fake.
type TableMirror interface {
	UserID() string
	UpsertProfile(ctx context.Context, row mirror.ProfileRow) error
	ReplaceFixedExpenses(ctx context.Context, userID string, rows []mirror.FixedExpenseRow) error
	UpsertTransaction(ctx context.Context, row mirror.TransactionRow) error
	DeleteTransaction(ctx context.Context, id string) error
	UpsertGoal(ctx context.Context, row mirror.GoalRow) error
	DeleteGoal(ctx context.Context, id string) error
}

// MirrorWorker consumes sync messages and sweeps pending rows. It always
// re-reads the current local row before writing, so replayed or reordered
// messages cannot push stale data to the mirror.
type MirrorWorker struct {
	storage   *storage.Repository
	mirror    TableMirror
	batchSize int
}

func NewMirrorWorker(storage *storage.Repository, mirror TableMirror, batchSize int) *MirrorWorker {
	return &MirrorWorker{
		storage:   storage,
		mirror:    mirror,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single sync message from AMQP.
func (w *MirrorWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"entity", msg.Entity,
		"op", msg.Op,
		"id", msg.ID)

	switch msg.Entity {
	case amqp.EntityTransaction:
		return w.syncTransaction(ctx, msg.ID)
	case amqp.EntityGoal:
		return w.syncGoal(ctx, msg.ID, msg.Op)
	case amqp.EntityProfile:
		return w.syncProfile(ctx)
	default:
		return fmt.Errorf("unknown entity %q", msg.Entity)
	}
}

// syncTransaction mirrors the current local state of one transaction. The
// op in the message is advisory: a tombstoned row is deleted remotely even
// when the upsert message arrives after the delete.
func (w *MirrorWorker) syncTransaction(ctx context.Context, id string) error {
	t, deleted, err := w.storage.GetTransaction(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Transaction vanished before sync, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if deleted {
		err = w.mirror.DeleteTransaction(ctx, id)
	} else {
		err = w.mirror.UpsertTransaction(ctx, mirror.TransactionToRow(t, w.mirror.UserID()))
	}
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, id); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", markErr)
		}
		return fmt.Errorf("mirror transaction %s: %w", id, err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", id, "error", err)
		// The mirror write succeeded, don't requeue.
	}

	slog.InfoContext(ctx, "Mirrored transaction", "id", id, "deleted", deleted)
	return nil
}

func (w *MirrorWorker) syncGoal(ctx context.Context, id, op string) error {
	if op == amqp.OpDelete {
		if err := w.mirror.DeleteGoal(ctx, id); err != nil {
			return fmt.Errorf("mirror goal delete %s: %w", id, err)
		}
		slog.InfoContext(ctx, "Mirrored goal delete", "id", id)
		return nil
	}

	g, err := w.storage.GetGoal(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted locally before this upsert was consumed. The delete
		// message behind it cleans up the mirror.
		slog.WarnContext(ctx, "Goal vanished before sync, skipping", "id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get goal from storage: %w", err)
	}

	if err := w.mirror.UpsertGoal(ctx, mirror.GoalToRow(g, w.mirror.UserID())); err != nil {
		return fmt.Errorf("mirror goal %s: %w", id, err)
	}

	slog.InfoContext(ctx, "Mirrored goal", "id", id)
	return nil
}

func (w *MirrorWorker) syncProfile(ctx context.Context) error {
	p, err := w.storage.GetProfile(ctx)
	if errors.Is(err, storage.ErrProfileNotFound) {
		slog.WarnContext(ctx, "No local profile to mirror, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("get profile from storage: %w", err)
	}

	userID := w.mirror.UserID()
	row := mirror.ProfileRow{
		UserID: userID,
		Name:   p.Name,
		Salary: p.Salary.Reais(),
	}
	if err := w.mirror.UpsertProfile(ctx, row); err != nil {
		return fmt.Errorf("mirror profile: %w", err)
	}

	fixed := make([]mirror.FixedExpenseRow, 0, len(p.FixedExpenses))
	for _, fe := range p.FixedExpenses {
		fixed = append(fixed, mirror.FixedExpenseRow{
			UserID: userID,
			Name:   fe.Name,
			Amount: fe.Amount.Reais(),
		})
	}
	if err := w.mirror.ReplaceFixedExpenses(ctx, userID, fixed); err != nil {
		return fmt.Errorf("mirror fixed expenses: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored profile", "fixed_expenses", len(fixed))
	return nil
}

// ProcessPendingTransactions sweeps rows still flagged pending. This is a
// backup mechanism in case AMQP messages are lost.
func (w *MirrorWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.PendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		if err := w.syncTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync pending transaction",
				"id", p.ID, "error", err)
		}
	}

	return nil
}

// StartupSyncCheck drains a larger pending backlog once at worker startup.
// This recovers from missed AMQP messages or worker downtime.
func (w *MirrorWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.PendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.syncTransaction(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}
