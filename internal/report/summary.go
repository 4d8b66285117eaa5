package report

import (
	"github.com/shopspring/decimal"

	"presupuesto/internal/core"
)

type (
	// SummaryRow is one month of the annual table.
	SummaryRow struct {
		Month      int
		Label      string
		Income     core.Money
		Expense    core.Money
		Net        core.Money
		Cumulative core.Money
	}

	// Summary is the annual report headline plus its month-by-month table.
	Summary struct {
		Income  core.Money
		Expense core.Money
		Net     core.Money
		// SavingsRate is Net/Income*100 rounded to one decimal. It is only
		// meaningful when SavingsRateDefined is true.
		SavingsRate        decimal.Decimal
		SavingsRateDefined bool
		Months             [12]SummaryRow
	}
)

// SavingsRateLabel renders the savings rate as "12.5%", or "-" when there is
// no income to compare against.
func (s Summary) SavingsRateLabel() string {
	if !s.SavingsRateDefined {
		return "-"
	}
	return s.SavingsRate.StringFixed(1) + "%"
}

// AnnualSummary computes yearly totals, the savings rate and a running
// cumulative net per month.
func AnnualSummary(bs Buckets) Summary {
	var s Summary
	var running core.Money
	for i, b := range bs {
		net := b.Net()
		running = running.Add(net)
		s.Months[i] = SummaryRow{
			Month:      b.Month,
			Label:      b.Label,
			Income:     b.Income,
			Expense:    b.Expense,
			Net:        net,
			Cumulative: running,
		}
	}
	s.Income, s.Expense = bs.Totals()
	s.Net = s.Income.Sub(s.Expense)
	s.SavingsRate, s.SavingsRateDefined = core.Percent(s.Net, s.Income)
	return s
}

type (
	// PersonYear holds one person's yearly totals.
	PersonYear struct {
		Person  core.Person
		Income  core.Money
		Expense core.Money
		Net     core.Money
	}

	// ComparisonRow is one month of the side-by-side table. ChartA and
	// ChartB are the monthly nets in whole units for the bar chart.
	ComparisonRow struct {
		Month  int
		Label  string
		A      PersonTotals
		B      PersonTotals
		ChartA int64
		ChartB int64
	}

	Comparison struct {
		A      PersonYear
		B      PersonYear
		Months [12]ComparisonRow
	}
)

// Compare puts the two household members side by side for a year.
func Compare(bs Buckets) Comparison {
	c := Comparison{
		A: PersonYear{Person: core.William},
		B: PersonYear{Person: core.Shely},
	}
	for i, b := range bs {
		c.Months[i] = ComparisonRow{
			Month:  b.Month,
			Label:  b.Label,
			A:      b.A,
			B:      b.B,
			ChartA: b.A.Net().Units(),
			ChartB: b.B.Net().Units(),
		}
		c.A.Income = c.A.Income.Add(b.A.Income)
		c.A.Expense = c.A.Expense.Add(b.A.Expense)
		c.B.Income = c.B.Income.Add(b.B.Income)
		c.B.Expense = c.B.Expense.Add(b.B.Expense)
	}
	c.A.Net = c.A.Income.Sub(c.A.Expense)
	c.B.Net = c.B.Income.Sub(c.B.Expense)
	return c
}
