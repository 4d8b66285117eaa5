package report

import (
	"testing"

	"github.com/shopspring/decimal"

	"presupuesto/internal/core"
)

func TestCardUtilizationScenario(t *testing.T) {
	cards := []core.Card{
		{ID: 1, Name: "Diners", Holder: core.William},
		{ID: 2, Name: "Scotia MC", Holder: core.Shely},
	}
	rows := []core.Transaction{
		row(3, core.Expense, core.William, 120000, "Diners"),
		row(4, core.Income, core.William, 45000, "Diners"),
		row(4, core.Expense, core.William, 7000, "Supermercado"),
		row(5, core.Expense, core.Shely, 5000, "diners"),
	}
	rep := CardUtilization(rows, cards)
	if len(rep.Cards) != 2 {
		t.Fatalf("cards = %d", len(rep.Cards))
	}

	d := rep.Cards[0]
	if d.Charged.Cents != 120000 || d.Paid.Cents != 45000 || d.Outstanding.Cents != 75000 {
		t.Fatalf("Diners = %+v", d)
	}
	if !d.Payoff.Equal(decimal.RequireFromString("37.5")) {
		t.Fatalf("Diners payoff = %s", d.Payoff)
	}
	if d.Color != ColorPurple {
		t.Fatalf("Diners colour = %s", d.Color)
	}

	s := rep.Cards[1]
	if s.Charged.Cents != 0 || s.Paid.Cents != 0 || !s.Payoff.IsZero() {
		t.Fatalf("Scotia MC should be empty: %+v", s)
	}

	if rep.Charged.Cents != 120000 || rep.Paid.Cents != 45000 || rep.Outstanding.Cents != 75000 {
		t.Fatalf("totals = %+v", rep)
	}
}

func TestPayoffBounds(t *testing.T) {
	cases := []struct {
		charged, paid int64
		want          string
	}{
		{0, 0, "0"},
		{0, 5000, "0"},
		{10000, 0, "0"},
		{10000, 2500, "25"},
		{10000, 10000, "100"},
		{10000, 50000, "100"},
		{30000, 10000, "33.3"},
	}
	for _, tc := range cases {
		got := Payoff(core.Money{Cents: tc.charged}, core.Money{Cents: tc.paid})
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Payoff(%d,%d) = %s, want %s", tc.charged, tc.paid, got, tc.want)
		}
		if got.IsNegative() || got.GreaterThan(decimal.NewFromInt(100)) {
			t.Errorf("Payoff(%d,%d) = %s out of range", tc.charged, tc.paid, got)
		}
	}
}

func TestCardUtilizationUnknownCardFallsBackToAccent(t *testing.T) {
	rep := CardUtilization(nil, []core.Card{{ID: 9, Name: "BBVA Oro", Holder: core.Shely}})
	if rep.Cards[0].Color != ColorAccent {
		t.Fatalf("colour = %s", rep.Cards[0].Color)
	}
	if rep.Charged.Cents != 0 || rep.Outstanding.Cents != 0 {
		t.Fatalf("empty input should give zero totals: %+v", rep)
	}
}

func TestCardUtilizationKeepsMalformedMonths(t *testing.T) {
	cards := []core.Card{{ID: 1, Name: "Diners", Holder: core.William}}
	rows := []core.Transaction{
		row(13, core.Expense, core.William, 10000, "Diners"),
		row(0, core.Income, core.William, 2500, "Diners"),
	}
	rep := CardUtilization(rows, cards)
	if d := rep.Cards[0]; d.Charged.Cents != 10000 || d.Paid.Cents != 2500 || d.Outstanding.Cents != 7500 {
		t.Fatalf("Diners = %+v", d)
	}
}
