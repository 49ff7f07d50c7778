// Package storage is the write-through local store: every mutation lands
// in SQLite immediately, and the engine reads full snapshots from it.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bolso/internal/core"

	_ "modernc.org/sqlite"
)

// ErrProfileNotFound is returned before onboarding has stored a profile.
var ErrProfileNotFound = errors.New("storage: profile not found")

// ErrNotFound is returned when a transaction or goal id does not exist.
var ErrNotFound = errors.New("storage: not found")

// Sync states for the remote mirror worker.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// PendingTransaction is the minimal row the mirror worker needs to replay
// a missed create or delete.
type PendingTransaction struct {
	ID      string
	Deleted bool
}

type Repository struct {
	db *sql.DB
}

// NewRepository opens (creating if needed) the SQLite database at dbPath
// and runs migrations.
func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable. Used by readiness checks.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// SaveProfile upserts the single profile row and replaces the fixed
// expense list wholesale, in one transaction.
func (r *Repository) SaveProfile(ctx context.Context, p core.UserProfile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_profile (id, name, salary_cents, profile_image, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			salary_cents = excluded.salary_cents,
			profile_image = excluded.profile_image,
			updated_at = excluded.updated_at`,
		p.Name, p.Salary.Cents, p.ProfileImage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM fixed_expenses`); err != nil {
		return fmt.Errorf("clear fixed expenses: %w", err)
	}
	for i, f := range p.FixedExpenses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO fixed_expenses (position, name, amount_cents) VALUES (?, ?, ?)`,
			i+1, f.Name, f.Amount.Cents)
		if err != nil {
			return fmt.Errorf("insert fixed expense: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile: %w", err)
	}

	slog.InfoContext(ctx, "Profile saved",
		"name", p.Name,
		"salary_cents", p.Salary.Cents,
		"fixed_expenses", len(p.FixedExpenses))
	return nil
}

// GetProfile loads the profile and its fixed expense list.
func (r *Repository) GetProfile(ctx context.Context) (core.UserProfile, error) {
	var p core.UserProfile
	err := r.db.QueryRowContext(ctx,
		`SELECT name, salary_cents, profile_image FROM user_profile WHERE id = 1`).
		Scan(&p.Name, &p.Salary.Cents, &p.ProfileImage)
	if errors.Is(err, sql.ErrNoRows) {
		return core.UserProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("select profile: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT name, amount_cents FROM fixed_expenses ORDER BY position`)
	if err != nil {
		return core.UserProfile{}, fmt.Errorf("select fixed expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f core.FixedExpense
		if err := rows.Scan(&f.Name, &f.Amount.Cents); err != nil {
			return core.UserProfile{}, fmt.Errorf("scan fixed expense: %w", err)
		}
		p.FixedExpenses = append(p.FixedExpenses, f)
	}
	if err := rows.Err(); err != nil {
		return core.UserProfile{}, fmt.Errorf("iterate fixed expenses: %w", err)
	}
	return p, nil
}

// CreateTransaction stores a new transaction in pending sync state.
func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, description, amount_cents, category, occurred_at)
		VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Description, t.Amount.Cents, string(t.Category), t.Date.UTC())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"amount_cents", t.Amount.Cents,
		"category", string(t.Category))
	return nil
}

// SoftDeleteTransaction tombstones a transaction so the delete can still
// be mirrored, and flags it for sync again.
func (r *Repository) SoftDeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET deleted = 1, sync_status = ? WHERE id = ?`,
		SyncPending, id)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetTransaction loads one transaction by id, tombstoned ones included:
// the mirror worker needs those to replay deletes.
func (r *Repository) GetTransaction(ctx context.Context, id string) (core.Transaction, bool, error) {
	var (
		t        core.Transaction
		category string
		deleted  int
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, description, amount_cents, category, occurred_at, deleted
		FROM transactions WHERE id = ?`, id).
		Scan(&t.ID, &t.Description, &t.Amount.Cents, &category, &t.Date, &deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, false, ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, false, fmt.Errorf("select transaction: %w", err)
	}
	t.Category = core.Category(category)
	t.Date = t.Date.Local()
	return t, deleted == 1, nil
}

// ListTransactions returns all live transactions, newest first.
func (r *Repository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, description, amount_cents, category, occurred_at
		FROM transactions WHERE deleted = 0 ORDER BY occurred_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t        core.Transaction
			category string
		)
		if err := rows.Scan(&t.ID, &t.Description, &t.Amount.Cents, &category, &t.Date); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Category = core.Category(category)
		t.Date = t.Date.Local()
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// CreateGoal stores a new savings goal.
func (r *Repository) CreateGoal(ctx context.Context, g core.Goal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (id, name, target_cents, current_cents, deadline)
		VALUES (?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Target.Cents, g.Current.Cents, g.Deadline.UTC())
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

// UpdateGoalAmount sets the accumulated amount of a goal. The value is not
// capped at the target.
func (r *Repository) UpdateGoalAmount(ctx context.Context, id string, current core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE goals SET current_cents = ? WHERE id = ?`, current.Cents, id)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetGoal loads one goal by id.
func (r *Repository) GetGoal(ctx context.Context, id string) (core.Goal, error) {
	var g core.Goal
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, target_cents, current_cents, deadline
		FROM goals WHERE id = ?`, id).
		Scan(&g.ID, &g.Name, &g.Target.Cents, &g.Current.Cents, &g.Deadline)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Goal{}, ErrNotFound
	}
	if err != nil {
		return core.Goal{}, fmt.Errorf("select goal: %w", err)
	}
	g.Deadline = g.Deadline.Local()
	return g, nil
}

// DeleteGoal removes a goal.
func (r *Repository) DeleteGoal(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListGoals returns all goals, oldest first.
func (r *Repository) ListGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, target_cents, current_cents, deadline
		FROM goals ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("select goals: %w", err)
	}
	defer rows.Close()

	var out []core.Goal
	for rows.Next() {
		var g core.Goal
		if err := rows.Scan(&g.ID, &g.Name, &g.Target.Cents, &g.Current.Cents, &g.Deadline); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.Deadline = g.Deadline.Local()
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goals: %w", err)
	}
	return out, nil
}

// LoadSnapshot assembles the full ledger snapshot the engine reads.
func (r *Repository) LoadSnapshot(ctx context.Context) (core.Snapshot, error) {
	profile, err := r.GetProfile(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	txs, err := r.ListTransactions(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	goals, err := r.ListGoals(ctx)
	if err != nil {
		return core.Snapshot{}, err
	}
	return core.Snapshot{Profile: profile, Transactions: txs, Goals: goals}, nil
}

// PendingSync lists transactions that still need mirroring, oldest first.
func (r *Repository) PendingSync(ctx context.Context, limit int) ([]PendingTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, deleted FROM transactions
		WHERE sync_status = ? ORDER BY created_at LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("select pending sync: %w", err)
	}
	defer rows.Close()

	var out []PendingTransaction
	for rows.Next() {
		var (
			p       PendingTransaction
			deleted int
		)
		if err := rows.Scan(&p.ID, &deleted); err != nil {
			return nil, fmt.Errorf("scan pending sync: %w", err)
		}
		p.Deleted = deleted == 1
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending sync: %w", err)
	}
	return out, nil
}

// MarkSynced records a successful mirror push.
func (r *Repository) MarkSynced(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncDone, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

// MarkSyncError records a failed mirror push; the periodic sweep will not
// retry errored rows automatically.
func (r *Repository) MarkSyncError(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET sync_status = ? WHERE id = ?`, SyncError, id); err != nil {
		return fmt.Errorf("mark sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}
