// Package backend builds the ledger store selected by DATA_BACKEND.
package backend

import (
	"context"

	"presupuesto/internal/ledger"
	"presupuesto/internal/services"
)

type Type string

const (
	Memory   Type = "memory"
	SQLite   Type = "sqlite"
	Sheets   Type = "sheets"
	Supabase Type = "supabase"
)

func (t Type) String() string { return string(t) }

func (t Type) IsValid() bool {
	switch t {
	case Memory, SQLite, Sheets, Supabase:
		return true
	}
	return false
}

// Types lists the supported backends.
func Types() []Type {
	return []Type{Memory, SQLite, Sheets, Supabase}
}

// CleanupFunc releases what a backend holds open.
type CleanupFunc func() error

// Result is a ready backend. Publisher is nil unless the backend announces
// writes over AMQP; Ready is nil when there is nothing to probe.
type Result struct {
	Type      Type
	Store     ledger.Store
	Publisher services.EventPublisher
	Ready     func(ctx context.Context) error
	Cleanup   CleanupFunc
}

// Close runs Cleanup when set.
func (r *Result) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

type Config struct {
	Type Type

	// memory
	SeedDir string

	// sqlite
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// sheets
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleCardsSheetName     string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// supabase
	SupabaseURL string
	SupabaseKey string
}
