package storage

import (
	"context"
	"database/sql"
)

const transactionColumns = `id, fecha, persona, categoria, forma_pago, importe_cents, tipo, mes, anio, observacion, sync_status, created_at`

func scanTransaction(row interface{ Scan(...interface{}) error }) (Transaction, error) {
	var i Transaction
	err := row.Scan(
		&i.ID,
		&i.Fecha,
		&i.Persona,
		&i.Categoria,
		&i.FormaPago,
		&i.ImporteCents,
		&i.Tipo,
		&i.Mes,
		&i.Anio,
		&i.Observacion,
		&i.SyncStatus,
		&i.CreatedAt,
	)
	return i, err
}

const createTransaction = `
INSERT INTO transactions (fecha, persona, categoria, forma_pago, importe_cents, tipo, mes, anio, observacion)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

type CreateTransactionParams struct {
	Fecha        string
	Persona      string
	Categoria    string
	FormaPago    string
	ImporteCents int64
	Tipo         string
	Mes          int64
	Anio         int64
	Observacion  sql.NullString
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.Fecha,
		arg.Persona,
		arg.Categoria,
		arg.FormaPago,
		arg.ImporteCents,
		arg.Tipo,
		arg.Mes,
		arg.Anio,
		arg.Observacion,
	)
	return scanTransaction(row)
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`

func (q *Queries) GetTransaction(ctx context.Context, id int64) (Transaction, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id))
}

// Zero/empty filter arguments match every row; a negative limit is unbounded.
const listTransactions = `
SELECT ` + transactionColumns + `
FROM transactions
WHERE anio = ?1
  AND (?2 = 0 OR mes = ?2)
  AND (?3 = '' OR persona = ?3)
  AND (?4 = '' OR tipo = ?4)
ORDER BY fecha DESC, id DESC
LIMIT ?5 OFFSET ?6`

type ListTransactionsParams struct {
	Anio    int64
	Mes     int64
	Persona string
	Tipo    string
	Limit   int64
	Offset  int64
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]Transaction, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions,
		arg.Anio,
		arg.Mes,
		arg.Persona,
		arg.Tipo,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		i, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const markTransactionSynced = `UPDATE transactions SET sync_status = 'synced' WHERE id = ?`

func (q *Queries) MarkTransactionSynced(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markTransactionSynced, id)
	return err
}

const markTransactionSyncError = `UPDATE transactions SET sync_status = 'error' WHERE id = ?`

func (q *Queries) MarkTransactionSyncError(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markTransactionSyncError, id)
	return err
}

const listCards = `SELECT id, nombre, titular FROM credit_cards ORDER BY id`

func (q *Queries) ListCards(ctx context.Context) ([]CreditCard, error) {
	rows, err := q.db.QueryContext(ctx, listCards)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CreditCard
	for rows.Next() {
		var i CreditCard
		if err := rows.Scan(&i.ID, &i.Nombre, &i.Titular); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createCard = `INSERT OR IGNORE INTO credit_cards (nombre, titular) VALUES (?, ?)`

type CreateCardParams struct {
	Nombre  string
	Titular string
}

func (q *Queries) CreateCard(ctx context.Context, arg CreateCardParams) error {
	_, err := q.db.ExecContext(ctx, createCard, arg.Nombre, arg.Titular)
	return err
}

const countCards = `SELECT COUNT(*) FROM credit_cards`

func (q *Queries) CountCards(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countCards).Scan(&count)
	return count, err
}

const enqueueSync = `INSERT INTO sync_queue (transaction_id, operation, anio) VALUES (?, ?, ?)`

type EnqueueSyncParams struct {
	TransactionID int64
	Operation     string
	Anio          int64
}

func (q *Queries) EnqueueSync(ctx context.Context, arg EnqueueSyncParams) error {
	_, err := q.db.ExecContext(ctx, enqueueSync, arg.TransactionID, arg.Operation, arg.Anio)
	return err
}

const syncQueueColumns = `id, transaction_id, operation, anio, status, attempts, last_error, next_attempt_at, created_at, updated_at`

const dequeueSyncBatch = `
SELECT ` + syncQueueColumns + `
FROM sync_queue
WHERE status = 'pending' AND next_attempt_at <= CURRENT_TIMESTAMP
ORDER BY id
LIMIT ?`

func (q *Queries) DequeueSyncBatch(ctx context.Context, limit int64) ([]SyncQueue, error) {
	rows, err := q.db.QueryContext(ctx, dequeueSyncBatch, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []SyncQueue
	for rows.Next() {
		var i SyncQueue
		if err := rows.Scan(
			&i.ID,
			&i.TransactionID,
			&i.Operation,
			&i.Anio,
			&i.Status,
			&i.Attempts,
			&i.LastError,
			&i.NextAttemptAt,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markSyncProcessing = `UPDATE sync_queue SET status = 'processing', updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) MarkSyncProcessing(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markSyncProcessing, id)
	return err
}

const markSyncComplete = `UPDATE sync_queue SET status = 'completed', last_error = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = ?`

func (q *Queries) MarkSyncComplete(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, markSyncComplete, id)
	return err
}

const incrementSyncAttempt = `
UPDATE sync_queue
SET status = 'pending',
    attempts = attempts + 1,
    last_error = ?,
    next_attempt_at = datetime('now', '+' || ? || ' seconds'),
    updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

type IncrementSyncAttemptParams struct {
	LastError    sql.NullString
	DelaySeconds int64
	ID           int64
}

func (q *Queries) IncrementSyncAttempt(ctx context.Context, arg IncrementSyncAttemptParams) error {
	_, err := q.db.ExecContext(ctx, incrementSyncAttempt, arg.LastError, arg.DelaySeconds, arg.ID)
	return err
}

const markSyncFailed = `
UPDATE sync_queue
SET status = 'failed', attempts = attempts + 1, last_error = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?`

type MarkSyncFailedParams struct {
	LastError sql.NullString
	ID        int64
}

func (q *Queries) MarkSyncFailed(ctx context.Context, arg MarkSyncFailedParams) error {
	_, err := q.db.ExecContext(ctx, markSyncFailed, arg.LastError, arg.ID)
	return err
}

const resetStaleProcessing = `UPDATE sync_queue SET status = 'pending', updated_at = CURRENT_TIMESTAMP WHERE status = 'processing'`

func (q *Queries) ResetStaleProcessing(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, resetStaleProcessing)
	return err
}

const retryFailedSyncs = `
UPDATE sync_queue
SET status = 'pending', attempts = 0, next_attempt_at = CURRENT_TIMESTAMP, updated_at = CURRENT_TIMESTAMP
WHERE status = 'failed'`

func (q *Queries) RetryFailedSyncs(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, retryFailedSyncs)
	return err
}

const cleanupCompletedSyncs = `
DELETE FROM sync_queue
WHERE status = 'completed' AND updated_at < datetime('now', '-' || ? || ' seconds')`

func (q *Queries) CleanupCompletedSyncs(ctx context.Context, olderThanSeconds int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, cleanupCompletedSyncs, olderThanSeconds)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getSyncQueueStats = `
SELECT
    COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN status = 'processing' THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
FROM sync_queue`

func (q *Queries) GetSyncQueueStats(ctx context.Context) (GetSyncQueueStatsRow, error) {
	var i GetSyncQueueStatsRow
	err := q.db.QueryRowContext(ctx, getSyncQueueStats).Scan(
		&i.Pending,
		&i.Processing,
		&i.Completed,
		&i.Failed,
	)
	return i, err
}
