// Package ledger defines the store contract for transactions and credit
// cards, plus the query and paging helpers shared by every backend.
package ledger

import (
	"context"
	"errors"

	"presupuesto/internal/core"
)

// DefaultPageSize is the number of rows per ledger page.
const DefaultPageSize = 20

// ErrNotFound is returned when deleting an id the store does not hold.
var ErrNotFound = errors.New("transaction not found")

// Ports for outbound adapters.
type (
	TransactionReader interface {
		// ListTransactions returns the rows matching q ordered by date desc,
		// then id desc.
		ListTransactions(ctx context.Context, q Query) ([]core.Transaction, error)
	}

	TransactionWriter interface {
		// InsertTransaction persists t and returns the id the store assigned.
		InsertTransaction(ctx context.Context, t core.Transaction) (int64, error)
	}

	TransactionDeleter interface {
		DeleteTransaction(ctx context.Context, id int64) error
	}

	CardReader interface {
		ListCards(ctx context.Context) ([]core.Card, error)
	}

	// Store is the full read/write contract a backend provides.
	Store interface {
		TransactionReader
		TransactionWriter
		TransactionDeleter
		CardReader
	}
)
