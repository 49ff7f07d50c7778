// Package services orchestrates ledger mutations across the local store
// and the async mirror pipeline.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"bolso/internal/amqp"
	"bolso/internal/core"
	"bolso/internal/storage"
)

// SyncPublisher enqueues mirror sync messages. *amqp.Client satisfies it;
// tests substitute a fake.
type SyncPublisher interface {
	PublishSync(ctx context.Context, msg *amqp.SyncMessage) error
	Close() error
}

// LedgerService writes to SQLite first and then publishes a sync message.
// Publish failures never fail the request: the local write already
// succeeded and the pending sweep will pick the row up later.
type LedgerService struct {
	storage   *storage.Repository
	publisher SyncPublisher
}

func NewLedgerService(storage *storage.Repository, publisher SyncPublisher) *LedgerService {
	return &LedgerService{
		storage:   storage,
		publisher: publisher,
	}
}

// SaveProfile persists the profile and its fixed expenses locally, then
// asks the worker to mirror them.
func (s *LedgerService) SaveProfile(ctx context.Context, p core.UserProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.storage.SaveProfile(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}

	s.publish(ctx, amqp.NewSyncMessage(amqp.EntityProfile, amqp.OpUpsert, ""))
	return nil
}

// CreateTransaction assigns an id, saves the transaction locally and
// publishes a sync message. The assigned id comes back to the caller.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return "", err
	}
	if err := s.storage.CreateTransaction(ctx, t); err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, amqp.NewSyncMessage(amqp.EntityTransaction, amqp.OpUpsert, t.ID))
	return t.ID, nil
}

// DeleteTransaction tombstones the transaction locally and publishes a
// delete message so the worker can replay it against the mirror.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.storage.SoftDeleteTransaction(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewSyncMessage(amqp.EntityTransaction, amqp.OpDelete, id))
	return nil
}

// CreateGoal assigns an id, saves the goal locally and publishes a sync
// message.
func (s *LedgerService) CreateGoal(ctx context.Context, g core.Goal) (string, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if err := g.Validate(); err != nil {
		return "", err
	}
	if err := s.storage.CreateGoal(ctx, g); err != nil {
		return "", fmt.Errorf("save goal: %w", err)
	}

	s.publish(ctx, amqp.NewSyncMessage(amqp.EntityGoal, amqp.OpUpsert, g.ID))
	return g.ID, nil
}

// UpdateGoalAmount rewrites the saved amount of a goal.
func (s *LedgerService) UpdateGoalAmount(ctx context.Context, id string, current core.Money) error {
	if current.Cents < 0 {
		return core.ErrInvalidAmount
	}
	if err := s.storage.UpdateGoalAmount(ctx, id, current); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewSyncMessage(amqp.EntityGoal, amqp.OpUpsert, id))
	return nil
}

// DeleteGoal removes the goal locally and publishes a delete message.
func (s *LedgerService) DeleteGoal(ctx context.Context, id string) error {
	if err := s.storage.DeleteGoal(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewSyncMessage(amqp.EntityGoal, amqp.OpDelete, id))
	return nil
}

func (s *LedgerService) publish(ctx context.Context, msg *amqp.SyncMessage) {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message",
			"entity", msg.Entity, "op", msg.Op)
		return
	}
	if err := s.publisher.PublishSync(ctx, msg); err != nil {
		// The row is already flagged pending locally, the sweep recovers it.
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"entity", msg.Entity, "op", msg.Op, "id", msg.ID, "error", err)
	}
}

// Close closes both storage and AMQP connections.
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
