package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"presupuesto/internal/amqp"
	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
	"presupuesto/internal/log"
)

// ErrDeleteNotConfirmed rejects a delete the caller did not confirm.
var ErrDeleteNotConfirmed = errors.New("delete not confirmed")

// EventPublisher announces ledger writes to other processes.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

type transactionGetter interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
}

// LedgerService validates and applies writes to the ledger. Publishing is
// best effort: a write that reached the store is never rolled back because
// the broker is unavailable.
type LedgerService struct {
	store     ledger.Store
	publisher EventPublisher
	logs      *log.StructuredLogger
}

// NewLedgerService wires a store with an optional publisher.
func NewLedgerService(store ledger.Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
		logs:      log.NewStructuredLogger(log.Default().WithComponent(log.ComponentLedger)),
	}
}

// Create validates in and stores it. Validation failures never reach the
// store.
func (s *LedgerService) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	t, err := core.NewTransaction(in)
	if err != nil {
		return core.Transaction{}, err
	}

	id, err := s.store.InsertTransaction(ctx, t)
	if err != nil {
		s.logs.LogError(ctx, "Failed to store transaction", err, log.OpCreate, log.NewFields().WithTransaction(t))
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	t.ID = id
	s.logs.LogTransactionCreated(ctx, t)

	s.publish(ctx, amqp.EventCreated, t)
	return t, nil
}

// Delete removes a transaction. confirm must be true.
func (s *LedgerService) Delete(ctx context.Context, id int64, confirm bool) error {
	if !confirm {
		return ErrDeleteNotConfirmed
	}
	if id <= 0 {
		return ledger.ErrNotFound
	}

	snapshot := core.Transaction{ID: id}
	if g, ok := s.store.(transactionGetter); ok {
		if t, err := g.GetTransaction(ctx, id); err == nil {
			snapshot = t
		}
	}

	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		if !errors.Is(err, ledger.ErrNotFound) {
			s.logs.LogError(ctx, "Failed to delete transaction", err, log.OpDelete, log.NewFields().With(log.FieldID, id))
		}
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.logs.LogTransactionDeleted(ctx, id)

	s.publish(ctx, amqp.EventDeleted, snapshot)
	return nil
}

func (s *LedgerService) publish(ctx context.Context, kind amqp.EventKind, t core.Transaction) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(kind, t)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"kind", kind, "transaction_id", t.ID, "error", err)
	}
}

// Close releases the store and the publisher when they hold resources.
func (s *LedgerService) Close() error {
	var errs []error
	if c, ok := s.store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	return errors.Join(errs...)
}
