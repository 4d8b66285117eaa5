// Package report turns a year of ledger rows into the shapes the views
// render: monthly buckets, category rankings, running balances, card
// utilization and annual summaries.
//
// Every function here is pure. Inputs are never modified and an empty row
// set always produces zero-valued aggregates.
package report

import "presupuesto/internal/core"

type (
	// PersonTotals accumulates income and expense for one household member.
	PersonTotals struct {
		Income  core.Money
		Expense core.Money
	}

	// MonthBucket holds the totals for one calendar month. A is William and
	// B is Shely.
	MonthBucket struct {
		Month   int
		Label   string
		Income  core.Money
		Expense core.Money
		A       PersonTotals
		B       PersonTotals
	}

	// Buckets is the January..December split of a year.
	Buckets [12]MonthBucket
)

func (p PersonTotals) Net() core.Money { return p.Income.Sub(p.Expense) }

func (b MonthBucket) Net() core.Money { return b.Income.Sub(b.Expense) }

// For returns the totals of the given person. Rows with a person outside the
// known pair are booked on B.
func (b MonthBucket) For(p core.Person) PersonTotals {
	if p == core.William {
		return b.A
	}
	return b.B
}

// validMonth reports whether a row falls in a 1..12 bucket. Rows that do not
// are malformed and are left out of the month-based aggregates.
func validMonth(t core.Transaction) bool {
	return t.Month >= 1 && t.Month <= 12
}

// MonthlySplit buckets rows by their stored month in a single pass. Rows
// whose month lies outside 1..12 are dropped.
func MonthlySplit(rows []core.Transaction) Buckets {
	var out Buckets
	for i := range out {
		out[i].Month = i + 1
		out[i].Label = core.MonthLabels[i]
	}
	for _, r := range rows {
		if !validMonth(r) {
			continue
		}
		b := &out[r.Month-1]
		who := &b.B
		if r.Person == core.William {
			who = &b.A
		}
		if r.Direction == core.Income {
			b.Income = b.Income.Add(r.Amount)
			who.Income = who.Income.Add(r.Amount)
		} else {
			b.Expense = b.Expense.Add(r.Amount)
			who.Expense = who.Expense.Add(r.Amount)
		}
	}
	return out
}

// Totals sums income and expense across all twelve months.
func (bs Buckets) Totals() (income, expense core.Money) {
	for _, b := range bs {
		income = income.Add(b.Income)
		expense = expense.Add(b.Expense)
	}
	return income, expense
}

// BalancePoint is one month of the cumulative balance series, in whole
// currency units.
type BalancePoint struct {
	Month int
	Label string
	Total int64
	A     int64
	B     int64
}

// CumulativeBalance computes the running net for the household and for each
// person. Sums are carried in cents and rounded only when a point is built.
func CumulativeBalance(bs Buckets) [12]BalancePoint {
	var out [12]BalancePoint
	var total, a, b core.Money
	for i, m := range bs {
		total = total.Add(m.Net())
		a = a.Add(m.A.Net())
		b = b.Add(m.B.Net())
		out[i] = BalancePoint{
			Month: m.Month,
			Label: m.Label,
			Total: total.Units(),
			A:     a.Units(),
			B:     b.Units(),
		}
	}
	return out
}

// PersonBalances is the net balance of each household member.
type PersonBalances struct {
	A core.Money
	B core.Money
}

// BalanceToDate sums each person's net from January through month inclusive.
// Month is clamped into 1..12.
func BalanceToDate(bs Buckets, month int) PersonBalances {
	month = ClampMonth(month)
	var out PersonBalances
	for _, m := range bs[:month] {
		out.A = out.A.Add(m.A.Net())
		out.B = out.B.Add(m.B.Net())
	}
	return out
}

// ClampMonth forces month into 1..12.
func ClampMonth(month int) int {
	switch {
	case month < 1:
		return 1
	case month > 12:
		return 12
	}
	return month
}
