package report

import (
	"github.com/shopspring/decimal"

	"presupuesto/internal/core"
)

// CardColors maps the known card names to their chart colour.
var CardColors = map[string]string{
	"Oechsle MC":       ColorAccent,
	"American Express": ColorRed,
	"Scotia MC":        ColorGreen,
	"Conti VISA":       ColorYellow,
	"Diners":           ColorPurple,
}

// CardColor returns the colour for a card, falling back to the accent.
func CardColor(name string) string {
	if c, ok := CardColors[name]; ok {
		return c
	}
	return ColorAccent
}

var hundred = decimal.NewFromInt(100)

type (
	// CardUsage is the utilization of one card over a year. Charged comes
	// from expense rows whose category equals the card name, Paid from income
	// rows under the same category.
	CardUsage struct {
		Card        core.Card
		Color       string
		Charged     core.Money
		Paid        core.Money
		Outstanding core.Money
		// Payoff is paid/charged as a percentage capped at 100, zero when
		// nothing was charged.
		Payoff decimal.Decimal
	}

	CardReport struct {
		Cards       []CardUsage
		Charged     core.Money
		Paid        core.Money
		Outstanding core.Money
	}
)

// Payoff returns min(paid/charged*100, 100) rounded to one decimal, or zero
// when charged is zero.
func Payoff(charged, paid core.Money) decimal.Decimal {
	if charged.Cents <= 0 {
		return decimal.Zero
	}
	pct, _ := core.Percent(paid, charged)
	if pct.GreaterThan(hundred) {
		return hundred
	}
	if pct.IsNegative() {
		return decimal.Zero
	}
	return pct
}

// CardUtilization matches rows to cards by exact category/name equality and
// reports per-card and overall charged, paid and outstanding amounts. Cards
// keep the order they were given in.
func CardUtilization(rows []core.Transaction, cards []core.Card) CardReport {
	type acc struct{ charged, paid core.Money }
	byName := make(map[string]*acc, len(cards))
	for _, c := range cards {
		byName[c.Name] = &acc{}
	}
	// Every row of the year counts here, whatever its stored month.
	for _, r := range rows {
		a, ok := byName[r.Category]
		if !ok {
			continue
		}
		if r.Direction == core.Income {
			a.paid = a.paid.Add(r.Amount)
		} else {
			a.charged = a.charged.Add(r.Amount)
		}
	}

	out := CardReport{Cards: make([]CardUsage, 0, len(cards))}
	for _, c := range cards {
		a := byName[c.Name]
		u := CardUsage{
			Card:        c,
			Color:       CardColor(c.Name),
			Charged:     a.charged,
			Paid:        a.paid,
			Outstanding: a.charged.Sub(a.paid),
			Payoff:      Payoff(a.charged, a.paid),
		}
		out.Cards = append(out.Cards, u)
		out.Charged = out.Charged.Add(u.Charged)
		out.Paid = out.Paid.Add(u.Paid)
	}
	out.Outstanding = out.Charged.Sub(out.Paid)
	return out
}
