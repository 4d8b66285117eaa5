package report

import (
	"testing"

	"presupuesto/internal/core"
)

func TestAnnualSummary(t *testing.T) {
	rows := []core.Transaction{
		row(1, core.Income, core.William, 400000, "Remuneraciones"),
		row(1, core.Expense, core.William, 150000, "Supermercado"),
		row(2, core.Expense, core.Shely, 50000, "Agua"),
		row(6, core.Income, core.Shely, 100000, "CTS"),
	}
	s := AnnualSummary(MonthlySplit(rows))

	if s.Income.Cents != 500000 || s.Expense.Cents != 200000 || s.Net.Cents != 300000 {
		t.Fatalf("totals = %+v", s)
	}
	if !s.SavingsRateDefined || s.SavingsRateLabel() != "60.0%" {
		t.Fatalf("savings rate = %s (defined=%v)", s.SavingsRateLabel(), s.SavingsRateDefined)
	}

	wantCumulative := []int64{250000, 200000, 200000, 200000, 200000, 300000}
	for i, want := range wantCumulative {
		if s.Months[i].Cumulative.Cents != want {
			t.Errorf("%s cumulative = %d, want %d", s.Months[i].Label, s.Months[i].Cumulative.Cents, want)
		}
	}
	if s.Months[11].Cumulative != s.Net {
		t.Fatalf("December cumulative %d != net %d", s.Months[11].Cumulative.Cents, s.Net.Cents)
	}
	if s.Months[1].Net.Cents != -50000 {
		t.Fatalf("February net = %d", s.Months[1].Net.Cents)
	}
}

func TestAnnualSummaryWithoutIncome(t *testing.T) {
	s := AnnualSummary(MonthlySplit([]core.Transaction{row(4, core.Expense, core.William, 1000, "Agua")}))
	if s.SavingsRateDefined {
		t.Fatal("savings rate should be undefined without income")
	}
	if s.SavingsRateLabel() != "-" {
		t.Fatalf("label = %q", s.SavingsRateLabel())
	}
	if s.Net.Cents != -1000 {
		t.Fatalf("net = %d", s.Net.Cents)
	}
}

func TestEmptyYearIsAllZero(t *testing.T) {
	dash := BuildDashboard(2024, 12, nil)
	if dash.Current.Income.Cents != 0 || len(dash.TopCategories) != 0 {
		t.Fatalf("dashboard not empty: %+v", dash)
	}
	for _, p := range dash.Balance {
		if p.Total != 0 || p.A != 0 || p.B != 0 {
			t.Fatalf("balance point not zero: %+v", p)
		}
	}
	if dash.ToDate.A.Cents != 0 || dash.ToDate.B.Cents != 0 {
		t.Fatalf("balance to date not zero: %+v", dash.ToDate)
	}

	annual := BuildAnnual(2024, nil)
	if annual.Summary.Income.Cents != 0 || annual.Summary.SavingsRateLabel() != "-" {
		t.Fatalf("annual not empty: %+v", annual.Summary)
	}

	cmp := BuildComparison(nil)
	if cmp.A.Net.Cents != 0 || cmp.B.Net.Cents != 0 {
		t.Fatalf("comparison not empty: %+v", cmp)
	}

	cards := CardUtilization(nil, nil)
	if len(cards.Cards) != 0 || cards.Outstanding.Cents != 0 {
		t.Fatalf("cards not empty: %+v", cards)
	}
}

func TestCompare(t *testing.T) {
	rows := []core.Transaction{
		row(1, core.Income, core.William, 200050, "Remuneraciones"),
		row(1, core.Expense, core.Shely, 30000, "Agua"),
		row(2, core.Income, core.Shely, 80000, "CTS"),
		row(2, core.Expense, core.William, 10000, "Cine"),
	}
	c := BuildComparison(rows)
	if c.A.Person != core.William || c.B.Person != core.Shely {
		t.Fatalf("people = %s/%s", c.A.Person, c.B.Person)
	}
	if c.A.Income.Cents != 200050 || c.A.Expense.Cents != 10000 || c.A.Net.Cents != 190050 {
		t.Fatalf("A = %+v", c.A)
	}
	if c.B.Net.Cents != 50000 {
		t.Fatalf("B net = %d", c.B.Net.Cents)
	}
	if c.Months[0].ChartA != 2001 || c.Months[0].ChartB != -300 {
		t.Fatalf("January chart = %d/%d", c.Months[0].ChartA, c.Months[0].ChartB)
	}
}

func TestBuildDashboardSelectsMonth(t *testing.T) {
	rows := []core.Transaction{
		row(3, core.Income, core.William, 10000, "CTS"),
		row(3, core.Expense, core.Shely, 2500, "Agua"),
	}
	d := BuildDashboard(2024, 3, rows)
	if d.Current.Month != 3 || d.Current.Net().Cents != 7500 {
		t.Fatalf("current = %+v", d.Current)
	}
	if d.ToDate.A.Cents != 10000 || d.ToDate.B.Cents != -2500 {
		t.Fatalf("to date = %+v", d.ToDate)
	}
	if len(d.TopCategories) != 1 || d.TopCategories[0].Name != "Agua" {
		t.Fatalf("top = %+v", d.TopCategories)
	}
}
