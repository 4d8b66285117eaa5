package ledger

import (
	"context"
	"math"

	"presupuesto/internal/core"
)

// MaxPage is the highest page number callers may ask for.
const MaxPage = 1_000_000

// Filter holds the ledger view filters. Empty fields mean "all".
type Filter struct {
	Person    core.Person
	Direction core.Direction
	Month     int
}

// Page is one page of the ledger view.
type Page struct {
	Number  int
	Size    int
	Rows    []core.Transaction
	HasPrev bool
	// HasNext is true when a full page came back. It can be a false positive
	// when the total is an exact multiple of the page size.
	HasNext bool
}

// PageQuery builds the store query for page number n (zero based).
func PageQuery(year int, f Filter, n, size int) Query {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n < 0 {
		n = 0
	}
	// Saturate so neither the offset nor offset+size wraps around.
	if last := (math.MaxInt - size) / size; n > last {
		n = last
	}
	return Query{
		Year:      year,
		Month:     f.Month,
		Person:    f.Person,
		Direction: f.Direction,
		Offset:    n * size,
		Limit:     size,
	}
}

// FetchPage reads page n of the filtered ledger.
func FetchPage(ctx context.Context, r TransactionReader, year int, f Filter, n, size int) (Page, error) {
	q := PageQuery(year, f, n, size)
	rows, err := r.ListTransactions(ctx, q)
	if err != nil {
		return Page{Number: q.Offset / q.Limit, Size: q.Limit}, err
	}
	return Page{
		Number:  q.Offset / q.Limit,
		Size:    q.Limit,
		Rows:    rows,
		HasPrev: q.Offset > 0,
		HasNext: len(rows) == q.Limit,
	}, nil
}
