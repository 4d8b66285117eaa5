package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
	"presupuesto/internal/storage"
)

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often to check for pending items (default: 10s)
	PollInterval time.Duration

	// BatchSize is the max number of items to process per poll cycle (default: 10)
	BatchSize int

	// MaxRetries is the maximum attempts before an item is marked failed (default: 3)
	MaxRetries int

	// RetryBase is the delay before the first retry; it doubles per attempt (default: 30s)
	RetryBase time.Duration

	// CleanupInterval is how often to clean up completed items (default: 1h)
	CleanupInterval time.Duration

	// CleanupAge is how old completed items must be before cleanup (default: 24h)
	CleanupAge time.Duration
}

func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval:    10 * time.Second,
		BatchSize:       10,
		MaxRetries:      3,
		RetryBase:       30 * time.Second,
		CleanupInterval: time.Hour,
		CleanupAge:      24 * time.Hour,
	}
}

// SyncQueueStore is the part of the SQLite repository the processor drives.
type SyncQueueStore interface {
	DequeueSyncBatch(ctx context.Context, limit int64) ([]storage.SyncQueue, error)
	MarkSyncProcessing(ctx context.Context, id int64) error
	MarkSyncComplete(ctx context.Context, id int64) error
	IncrementSyncAttempt(ctx context.Context, id int64, msg string, delay time.Duration) error
	MarkSyncFailed(ctx context.Context, id int64, msg string) error
	ResetStaleProcessing(ctx context.Context) error
	RetryFailedSyncs(ctx context.Context) error
	CleanupCompletedSyncs(ctx context.Context, age time.Duration) error
	GetSyncQueueStats(ctx context.Context) (storage.GetSyncQueueStatsRow, error)
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

// Mirror receives copies of ledger writes, typically the Google Sheet.
type Mirror interface {
	ledger.TransactionWriter
	ledger.TransactionDeleter
}

// SyncProcessor drains the SQLite sync queue into the mirror.
type SyncProcessor struct {
	storage SyncQueueStore
	mirror  Mirror
	config  SyncProcessorConfig

	// batchMu serialises batches so a trigger never races the poll loop.
	batchMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	wakeCh  chan struct{}
}

func NewSyncProcessor(store SyncQueueStore, mirror Mirror, config SyncProcessorConfig) *SyncProcessor {
	if config.BatchSize <= 0 {
		config.BatchSize = 10
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	return &SyncProcessor{
		storage: store,
		mirror:  mirror,
		config:  config,
		wakeCh:  make(chan struct{}, 1),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	p.stopCh, p.doneCh = stopCh, doneCh
	p.mu.Unlock()

	// Items left in processing by a crash go back to pending.
	if err := p.storage.ResetStaleProcessing(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to reset stale processing items", "error", err)
	}

	go p.runLoop(ctx, stopCh, doneCh)

	slog.InfoContext(ctx, "Sync processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)

	return nil
}

// Stop signals the loop and waits for the current batch to finish.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.stopCh, p.doneCh = nil, nil
	p.mu.Unlock()
	return nil
}

func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Trigger asks the loop to process a batch now instead of waiting for the
// next poll. It never blocks.
func (p *SyncProcessor) Trigger() {
	select {
	case p.wakeCh <- struct{}{}:
	default:
	}
}

func (p *SyncProcessor) runLoop(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	pollTicker := time.NewTicker(p.config.PollInterval)
	defer pollTicker.Stop()

	cleanupTicker := time.NewTicker(p.config.CleanupInterval)
	defer cleanupTicker.Stop()

	p.ProcessBatch(ctx)

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case <-pollTicker.C:
			p.ProcessBatch(ctx)
		case <-p.wakeCh:
			p.ProcessBatch(ctx)
		case <-cleanupTicker.C:
			p.cleanupCompleted(ctx)
		}
	}
}

// ProcessBatch handles one batch of due items and returns how many were
// attempted.
func (p *SyncProcessor) ProcessBatch(ctx context.Context) int {
	p.batchMu.Lock()
	defer p.batchMu.Unlock()

	items, err := p.storage.DequeueSyncBatch(ctx, int64(p.config.BatchSize))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to dequeue sync batch", "error", err)
		return 0
	}
	if len(items) == 0 {
		return 0
	}

	slog.DebugContext(ctx, "Processing sync batch", "count", len(items))

	attempted := 0
	for _, item := range items {
		if p.stopping(ctx) {
			break
		}

		if err := p.storage.MarkSyncProcessing(ctx, item.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark item as processing",
				"id", item.ID, "error", err)
			continue
		}
		attempted++

		var processErr error
		switch item.Operation {
		case storage.OperationSync:
			processErr = p.processSyncItem(ctx, item)
		case storage.OperationDelete:
			processErr = p.processDeleteItem(ctx, item)
		default:
			processErr = fmt.Errorf("unknown operation: %s", item.Operation)
		}

		if processErr != nil {
			p.handleFailure(ctx, item, processErr)
		} else {
			p.handleSuccess(ctx, item)
		}
	}
	return attempted
}

func (p *SyncProcessor) stopping(ctx context.Context) bool {
	p.mu.Lock()
	stopCh := p.stopCh
	p.mu.Unlock()

	select {
	case <-ctx.Done():
		return true
	default:
	}
	if stopCh == nil {
		return false
	}
	select {
	case <-stopCh:
		return true
	default:
		return false
	}
}

// processSyncItem copies the stored row to the mirror under the same id.
func (p *SyncProcessor) processSyncItem(ctx context.Context, item storage.SyncQueue) error {
	t, err := p.storage.GetTransaction(ctx, item.TransactionID)
	if errors.Is(err, ledger.ErrNotFound) {
		// Deleted before it was mirrored; the delete item that follows is a no-op.
		slog.InfoContext(ctx, "Transaction gone before sync, skipping",
			"transaction_id", item.TransactionID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction %d: %w", item.TransactionID, err)
	}

	if _, err := p.mirror.InsertTransaction(ctx, t); err != nil {
		return fmt.Errorf("append to mirror: %w", err)
	}

	if err := p.storage.MarkSynced(ctx, item.TransactionID); err != nil {
		slog.WarnContext(ctx, "Failed to mark transaction as synced",
			"transaction_id", item.TransactionID, "error", err)
	}

	slog.InfoContext(ctx, "Synced transaction to mirror",
		"transaction_id", item.TransactionID,
		"year", t.Year,
		"category", t.Category)
	return nil
}

func (p *SyncProcessor) processDeleteItem(ctx context.Context, item storage.SyncQueue) error {
	err := p.mirror.DeleteTransaction(ctx, item.TransactionID)
	if errors.Is(err, ledger.ErrNotFound) {
		slog.InfoContext(ctx, "Transaction not present in mirror, nothing to delete",
			"transaction_id", item.TransactionID, "year", item.Anio)
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete from mirror: %w", err)
	}

	slog.InfoContext(ctx, "Deleted transaction from mirror",
		"transaction_id", item.TransactionID, "year", item.Anio)
	return nil
}

func (p *SyncProcessor) handleSuccess(ctx context.Context, item storage.SyncQueue) {
	if err := p.storage.MarkSyncComplete(ctx, item.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync complete",
			"id", item.ID, "error", err)
	}
}

// handleFailure reschedules the item with a doubling delay, or marks it
// failed once MaxRetries attempts have been spent.
func (p *SyncProcessor) handleFailure(ctx context.Context, item storage.SyncQueue, processErr error) {
	attempt := item.Attempts + 1
	slog.WarnContext(ctx, "Sync processing failed",
		"id", item.ID,
		"operation", item.Operation,
		"attempt", attempt,
		"error", processErr)

	if attempt < int64(p.config.MaxRetries) {
		if err := p.storage.IncrementSyncAttempt(ctx, item.ID, processErr.Error(), p.retryDelay(item.Attempts)); err != nil {
			slog.ErrorContext(ctx, "Failed to increment sync attempt",
				"id", item.ID, "error", err)
		}
		return
	}

	if err := p.storage.MarkSyncFailed(ctx, item.ID, processErr.Error()); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync as failed",
			"id", item.ID, "error", err)
	}
	if item.Operation == storage.OperationSync {
		if err := p.storage.MarkSyncError(ctx, item.TransactionID); err != nil {
			slog.ErrorContext(ctx, "Failed to mark transaction sync error",
				"transaction_id", item.TransactionID, "error", err)
		}
	}
	slog.ErrorContext(ctx, "Sync item failed permanently after max retries",
		"id", item.ID,
		"transaction_id", item.TransactionID,
		"attempts", attempt)
}

func (p *SyncProcessor) retryDelay(attempts int64) time.Duration {
	base := p.config.RetryBase
	if base <= 0 {
		base = 30 * time.Second
	}
	if attempts > 8 {
		attempts = 8
	}
	return base << attempts
}

func (p *SyncProcessor) cleanupCompleted(ctx context.Context) {
	if err := p.storage.CleanupCompletedSyncs(ctx, p.config.CleanupAge); err != nil {
		slog.ErrorContext(ctx, "Failed to cleanup completed syncs", "error", err)
	}
}

// Stats returns current queue statistics
func (p *SyncProcessor) Stats(ctx context.Context) (storage.GetSyncQueueStatsRow, error) {
	return p.storage.GetSyncQueueStats(ctx)
}

// RetryFailed resets all failed items for retry
func (p *SyncProcessor) RetryFailed(ctx context.Context) error {
	if err := p.storage.RetryFailedSyncs(ctx); err != nil {
		return err
	}
	p.Trigger()
	return nil
}
