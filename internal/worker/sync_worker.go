// Package worker mirrors the SQLite ledger into Google Sheets in response to
// ledger events.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"presupuesto/internal/amqp"
	"presupuesto/internal/storage"
)

// startupBatches bounds the catch-up done before consuming events.
const startupBatches = 5

// Queue is the sync queue driver, implemented by services.SyncProcessor.
type Queue interface {
	Trigger()
	ProcessBatch(ctx context.Context) int
	Stats(ctx context.Context) (storage.GetSyncQueueStatsRow, error)
}

// SyncWorker reacts to ledger events. The event only says that something
// changed; the queue written alongside the row in SQLite is what gets
// mirrored, so a lost or duplicated event never loses or duplicates a row.
type SyncWorker struct {
	queue Queue
}

func NewSyncWorker(queue Queue) *SyncWorker {
	return &SyncWorker{queue: queue}
}

// HandleEvent wakes the queue for one ledger event.
func (w *SyncWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("invalid ledger event: %w", err)
	}

	slog.InfoContext(ctx, "Processing ledger event",
		"message_id", ev.MessageID,
		"kind", ev.Kind,
		"transaction_id", ev.TransactionID,
		"year", ev.Year)

	w.queue.Trigger()
	return nil
}

// StartupSyncCheck drains what accumulated while the worker was down.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	stats, err := w.queue.Stats(ctx)
	if err != nil {
		return fmt.Errorf("read sync queue stats: %w", err)
	}
	if stats.Pending == 0 {
		slog.InfoContext(ctx, "No pending sync items found on startup", "failed", stats.Failed)
		return nil
	}

	slog.InfoContext(ctx, "Found pending sync items on startup, processing...",
		"pending", stats.Pending)

	processed := 0
	for i := 0; i < startupBatches; i++ {
		n := w.queue.ProcessBatch(ctx)
		if n == 0 {
			break
		}
		processed += n
	}

	after, err := w.queue.Stats(ctx)
	if err != nil {
		return fmt.Errorf("read sync queue stats: %w", err)
	}
	slog.InfoContext(ctx, "Startup sync completed",
		"processed", processed,
		"pending", after.Pending,
		"failed", after.Failed)
	return nil
}
