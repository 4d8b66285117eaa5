package storage

import (
	"database/sql"
	"time"
)

const (
	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusError   = "error"

	OperationSync   = "sync"
	OperationDelete = "delete"
)

type Transaction struct {
	ID           int64
	Fecha        string
	Persona      string
	Categoria    string
	FormaPago    string
	ImporteCents int64
	Tipo         string
	Mes          int64
	Anio         int64
	Observacion  sql.NullString
	SyncStatus   string
	CreatedAt    time.Time
}

type CreditCard struct {
	ID      int64
	Nombre  string
	Titular string
}

type SyncQueue struct {
	ID            int64
	TransactionID int64
	Operation     string
	Anio          int64
	Status        string
	Attempts      int64
	LastError     sql.NullString
	NextAttemptAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type GetSyncQueueStatsRow struct {
	Pending    int64
	Processing int64
	Completed  int64
	Failed     int64
}
