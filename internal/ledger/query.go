package ledger

import (
	"cmp"
	"slices"

	"presupuesto/internal/core"
)

// Query selects ledger rows. Year is required; the zero value of every other
// filter means "all". Limit 0 means unbounded.
type Query struct {
	Year      int
	Month     int
	Person    core.Person
	Direction core.Direction
	Offset    int
	Limit     int
}

// Matches reports whether t passes every filter of q. Paging is ignored.
func (q Query) Matches(t core.Transaction) bool {
	if t.Year != q.Year {
		return false
	}
	if q.Month != 0 && t.Month != q.Month {
		return false
	}
	if q.Person != "" && t.Person != q.Person {
		return false
	}
	if q.Direction != "" && t.Direction != q.Direction {
		return false
	}
	return true
}

// Unpaged returns q without offset and limit.
func (q Query) Unpaged() Query {
	q.Offset, q.Limit = 0, 0
	return q
}

// Newest orders transactions by date desc, then id desc.
func Newest(a, b core.Transaction) int {
	if c := b.Date.Compare(a.Date.Time); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

// Apply filters, orders and pages rows in memory. It is used by backends
// whose remote side cannot do it for them. rows is not modified.
func Apply(rows []core.Transaction, q Query) []core.Transaction {
	out := make([]core.Transaction, 0, len(rows))
	for _, t := range rows {
		if q.Matches(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, Newest)
	return Window(out, q.Offset, q.Limit)
}

// Window slices rows to [offset, offset+limit). A zero limit keeps the tail.
func Window(rows []core.Transaction, offset, limit int) []core.Transaction {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(rows) {
		return []core.Transaction{}
	}
	rows = rows[offset:]
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
