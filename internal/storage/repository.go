package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"presupuesto/internal/core"
	"presupuesto/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

var _ ledger.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) inTx(ctx context.Context, fn func(*Queries) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(r.queries.WithTx(tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListTransactions implements ledger.TransactionReader
func (r *SQLiteRepository) ListTransactions(ctx context.Context, q ledger.Query) ([]core.Transaction, error) {
	limit := int64(q.Limit)
	if limit <= 0 {
		limit = -1
	}
	offset := int64(q.Offset)
	if offset < 0 {
		offset = 0
	}
	rows, err := r.queries.ListTransactions(ctx, ListTransactionsParams{
		Anio:    int64(q.Year),
		Mes:     int64(q.Month),
		Persona: string(q.Person),
		Tipo:    string(q.Direction),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := toCore(row)
		if err != nil {
			slog.WarnContext(ctx, "Skipping unreadable transaction", "id", row.ID, "error", err)
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// InsertTransaction stores t and queues it for the sheet mirror in the same
// database transaction.
func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	var id int64
	err := r.inTx(ctx, func(q *Queries) error {
		created, err := q.CreateTransaction(ctx, CreateTransactionParams{
			Fecha:        t.Date.String(),
			Persona:      string(t.Person),
			Categoria:    t.Category,
			FormaPago:    string(t.PaymentMethod),
			ImporteCents: t.Amount.Cents,
			Tipo:         string(t.Direction),
			Mes:          int64(t.Month),
			Anio:         int64(t.Year),
			Observacion:  sql.NullString{String: t.Note, Valid: t.Note != ""},
		})
		if err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		id = created.ID
		if err := q.EnqueueSync(ctx, EnqueueSyncParams{TransactionID: id, Operation: OperationSync, Anio: created.Anio}); err != nil {
			return fmt.Errorf("enqueue sync: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"category", t.Category,
		"amount_cents", t.Amount.Cents,
		"year", t.Year,
		"month", t.Month)
	return id, nil
}

// DeleteTransaction removes the row and queues the deletion for the mirror.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	err := r.inTx(ctx, func(q *Queries) error {
		existing, err := q.GetTransaction(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get transaction: %w", err)
		}
		if _, err := q.DeleteTransaction(ctx, id); err != nil {
			return fmt.Errorf("delete transaction: %w", err)
		}
		if err := q.EnqueueSync(ctx, EnqueueSyncParams{TransactionID: id, Operation: OperationDelete, Anio: existing.Anio}); err != nil {
			return fmt.Errorf("enqueue delete: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "Transaction deleted from SQLite", "id", id)
	return nil
}

// GetTransaction retrieves a single transaction by ID.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}
	return toCore(row)
}

// ListCards implements ledger.CardReader
func (r *SQLiteRepository) ListCards(ctx context.Context) ([]core.Card, error) {
	rows, err := r.queries.ListCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	out := make([]core.Card, len(rows))
	for i, c := range rows {
		out[i] = core.Card{ID: c.ID, Name: c.Nombre, Holder: core.Person(c.Titular)}
	}
	return out, nil
}

// SeedCards inserts cards when the table is still empty. Cards with an
// unknown holder are skipped.
func (r *SQLiteRepository) SeedCards(ctx context.Context, cards []core.Card) error {
	count, err := r.queries.CountCards(ctx)
	if err != nil {
		return fmt.Errorf("count cards: %w", err)
	}
	if count > 0 || len(cards) == 0 {
		return nil
	}
	seeded := 0
	for _, c := range cards {
		if !c.Holder.Valid() || strings.TrimSpace(c.Name) == "" {
			slog.WarnContext(ctx, "Skipping seed card", "name", c.Name, "holder", c.Holder)
			continue
		}
		if err := r.queries.CreateCard(ctx, CreateCardParams{Nombre: c.Name, Titular: string(c.Holder)}); err != nil {
			return fmt.Errorf("create card %s: %w", c.Name, err)
		}
		seeded++
	}
	slog.InfoContext(ctx, "Seeded credit cards", "count", seeded)
	return nil
}

func toCore(row Transaction) (core.Transaction, error) {
	d, err := core.ParseDate(row.Fecha)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse fecha %q: %w", row.Fecha, err)
	}
	return core.Transaction{
		ID:            row.ID,
		Date:          d,
		Person:        core.Person(row.Persona),
		Category:      row.Categoria,
		PaymentMethod: core.PaymentMethod(row.FormaPago),
		Amount:        core.Money{Cents: row.ImporteCents},
		Direction:     core.Direction(row.Tipo),
		Month:         int(row.Mes),
		Year:          int(row.Anio),
		Note:          row.Observacion.String,
	}, nil
}

// DequeueSyncBatch returns up to limit queue items that are due.
func (r *SQLiteRepository) DequeueSyncBatch(ctx context.Context, limit int64) ([]SyncQueue, error) {
	items, err := r.queries.DequeueSyncBatch(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("dequeue sync batch: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) MarkSyncProcessing(ctx context.Context, id int64) error {
	return r.queries.MarkSyncProcessing(ctx, id)
}

func (r *SQLiteRepository) MarkSyncComplete(ctx context.Context, id int64) error {
	return r.queries.MarkSyncComplete(ctx, id)
}

// IncrementSyncAttempt puts an item back in the queue, due after delay.
func (r *SQLiteRepository) IncrementSyncAttempt(ctx context.Context, id int64, msg string, delay time.Duration) error {
	return r.queries.IncrementSyncAttempt(ctx, IncrementSyncAttemptParams{
		LastError:    sql.NullString{String: msg, Valid: msg != ""},
		DelaySeconds: int64(delay / time.Second),
		ID:           id,
	})
}

func (r *SQLiteRepository) MarkSyncFailed(ctx context.Context, id int64, msg string) error {
	return r.queries.MarkSyncFailed(ctx, MarkSyncFailedParams{
		LastError: sql.NullString{String: msg, Valid: msg != ""},
		ID:        id,
	})
}

// ResetStaleProcessing requeues items left in processing by a crash.
func (r *SQLiteRepository) ResetStaleProcessing(ctx context.Context) error {
	return r.queries.ResetStaleProcessing(ctx)
}

func (r *SQLiteRepository) RetryFailedSyncs(ctx context.Context) error {
	return r.queries.RetryFailedSyncs(ctx)
}

// CleanupCompletedSyncs drops completed items older than age.
func (r *SQLiteRepository) CleanupCompletedSyncs(ctx context.Context, age time.Duration) error {
	n, err := r.queries.CleanupCompletedSyncs(ctx, int64(age/time.Second))
	if err != nil {
		return fmt.Errorf("cleanup completed syncs: %w", err)
	}
	if n > 0 {
		slog.InfoContext(ctx, "Cleaned up completed sync items", "count", n)
	}
	return nil
}

func (r *SQLiteRepository) GetSyncQueueStats(ctx context.Context) (GetSyncQueueStatsRow, error) {
	return r.queries.GetSyncQueueStats(ctx)
}

// MarkSynced marks a transaction as mirrored.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if err := r.queries.MarkTransactionSynced(ctx, id); err != nil {
		return fmt.Errorf("mark transaction synced: %w", err)
	}
	return nil
}

// MarkSyncError marks a transaction whose mirror attempts gave up.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if err := r.queries.MarkTransactionSyncError(ctx, id); err != nil {
		return fmt.Errorf("mark transaction sync error: %w", err)
	}
	slog.WarnContext(ctx, "Transaction marked with sync error", "id", id)
	return nil
}
