package report

import "presupuesto/internal/core"

type (
	// Dashboard is everything the dashboard view shows for a year and a
	// selected reporting month.
	Dashboard struct {
		Year          int
		Month         int
		Monthly       Buckets
		Current       MonthBucket
		TopCategories []RankedCategory
		Balance       [12]BalancePoint
		ToDate        PersonBalances
	}

	// Annual is the annual report view.
	Annual struct {
		Year          int
		Summary       Summary
		TopCategories []RankedCategory
	}
)

// BuildDashboard derives the dashboard from a year of rows.
func BuildDashboard(year, month int, rows []core.Transaction) Dashboard {
	month = ClampMonth(month)
	bs := MonthlySplit(rows)
	return Dashboard{
		Year:          year,
		Month:         month,
		Monthly:       bs,
		Current:       bs[month-1],
		TopCategories: RankCategories(rows, DashboardTopN),
		Balance:       CumulativeBalance(bs),
		ToDate:        BalanceToDate(bs, month),
	}
}

// BuildAnnual derives the annual report from a year of rows.
func BuildAnnual(year int, rows []core.Transaction) Annual {
	return Annual{
		Year:          year,
		Summary:       AnnualSummary(MonthlySplit(rows)),
		TopCategories: RankCategories(rows, AnnualTopN),
	}
}

// BuildComparison derives the comparison view from a year of rows.
func BuildComparison(rows []core.Transaction) Comparison {
	return Compare(MonthlySplit(rows))
}
