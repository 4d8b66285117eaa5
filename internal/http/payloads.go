package http

import (
	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
	"presupuesto/internal/report"
)

// JSON shapes of the API. Amounts carry exact cents plus the display string.

type moneyJSON struct {
	Cents   int64  `json:"cents"`
	Display string `json:"display"`
}

func money(m core.Money) moneyJSON {
	return moneyJSON{Cents: m.Cents, Display: core.FormatSoles(m)}
}

type transactionJSON struct {
	ID            int64     `json:"id"`
	Date          string    `json:"date"`
	Person        string    `json:"person"`
	Category      string    `json:"category"`
	PaymentMethod string    `json:"payment_method"`
	Amount        moneyJSON `json:"amount"`
	Direction     string    `json:"direction"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	Note          string    `json:"note,omitempty"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:            t.ID,
		Date:          t.Date.String(),
		Person:        string(t.Person),
		Category:      t.Category,
		PaymentMethod: string(t.PaymentMethod),
		Amount:        money(t.Amount),
		Direction:     string(t.Direction),
		Month:         t.Month,
		Year:          t.Year,
		Note:          t.Note,
	}
}

type personTotalsJSON struct {
	Income  moneyJSON `json:"income"`
	Expense moneyJSON `json:"expense"`
	Net     moneyJSON `json:"net"`
}

func toPersonTotals(p report.PersonTotals) personTotalsJSON {
	return personTotalsJSON{Income: money(p.Income), Expense: money(p.Expense), Net: money(p.Net())}
}

type monthJSON struct {
	Month   int              `json:"month"`
	Label   string           `json:"label"`
	Income  moneyJSON        `json:"income"`
	Expense moneyJSON        `json:"expense"`
	Net     moneyJSON        `json:"net"`
	William personTotalsJSON `json:"william"`
	Shely   personTotalsJSON `json:"shely"`
}

func toMonthJSON(b report.MonthBucket) monthJSON {
	return monthJSON{
		Month:   b.Month,
		Label:   b.Label,
		Income:  money(b.Income),
		Expense: money(b.Expense),
		Net:     money(b.Net()),
		William: toPersonTotals(b.A),
		Shely:   toPersonTotals(b.B),
	}
}

type categoryJSON struct {
	Rank  int       `json:"rank"`
	Name  string    `json:"name"`
	Total moneyJSON `json:"total"`
	Color string    `json:"color"`
}

func toCategories(rs []report.RankedCategory) []categoryJSON {
	out := make([]categoryJSON, 0, len(rs))
	for _, r := range rs {
		out = append(out, categoryJSON{Rank: r.Rank, Name: r.Name, Total: money(r.Total), Color: r.Color})
	}
	return out
}

// balanceJSON values are whole soles.
type balanceJSON struct {
	Month   int    `json:"month"`
	Label   string `json:"label"`
	Total   int64  `json:"total"`
	William int64  `json:"william"`
	Shely   int64  `json:"shely"`
}

type dashboardJSON struct {
	Year          int            `json:"year"`
	Month         int            `json:"month"`
	Current       monthJSON      `json:"current"`
	Monthly       []monthJSON    `json:"monthly"`
	TopCategories []categoryJSON `json:"top_categories"`
	Balance       []balanceJSON  `json:"balance"`
	ToDate        struct {
		William moneyJSON `json:"william"`
		Shely   moneyJSON `json:"shely"`
	} `json:"balance_to_date"`
}

func toDashboardJSON(d report.Dashboard) dashboardJSON {
	out := dashboardJSON{
		Year:          d.Year,
		Month:         d.Month,
		Current:       toMonthJSON(d.Current),
		TopCategories: toCategories(d.TopCategories),
	}
	for _, b := range d.Monthly {
		out.Monthly = append(out.Monthly, toMonthJSON(b))
	}
	for _, p := range d.Balance {
		out.Balance = append(out.Balance, balanceJSON{Month: p.Month, Label: p.Label, Total: p.Total, William: p.A, Shely: p.B})
	}
	out.ToDate.William = money(d.ToDate.A)
	out.ToDate.Shely = money(d.ToDate.B)
	return out
}

type filterJSON struct {
	Person    string `json:"person,omitempty"`
	Direction string `json:"direction,omitempty"`
	Month     int    `json:"month,omitempty"`
}

type pageJSON struct {
	Year    int               `json:"year"`
	Filter  filterJSON        `json:"filter"`
	Page    int               `json:"page"`
	Size    int               `json:"size"`
	HasPrev bool              `json:"has_prev"`
	HasNext bool              `json:"has_next"`
	Rows    []transactionJSON `json:"rows"`
}

func toPageJSON(year int, f ledger.Filter, p ledger.Page) pageJSON {
	out := pageJSON{
		Year:    year,
		Filter:  filterJSON{Person: string(f.Person), Direction: string(f.Direction), Month: f.Month},
		Page:    p.Number,
		Size:    p.Size,
		HasPrev: p.HasPrev,
		HasNext: p.HasNext,
		Rows:    make([]transactionJSON, 0, len(p.Rows)),
	}
	for _, t := range p.Rows {
		out.Rows = append(out.Rows, toTransactionJSON(t))
	}
	return out
}

type cardJSON struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Holder      string    `json:"holder"`
	Color       string    `json:"color"`
	Charged     moneyJSON `json:"charged"`
	Paid        moneyJSON `json:"paid"`
	Outstanding moneyJSON `json:"outstanding"`
	Payoff      string    `json:"payoff_pct"`
}

type cardReportJSON struct {
	Year        int        `json:"year"`
	Cards       []cardJSON `json:"cards"`
	Charged     moneyJSON  `json:"charged"`
	Paid        moneyJSON  `json:"paid"`
	Outstanding moneyJSON  `json:"outstanding"`
}

func toCardReportJSON(year int, r report.CardReport) cardReportJSON {
	out := cardReportJSON{
		Year:        year,
		Cards:       make([]cardJSON, 0, len(r.Cards)),
		Charged:     money(r.Charged),
		Paid:        money(r.Paid),
		Outstanding: money(r.Outstanding),
	}
	for _, u := range r.Cards {
		out.Cards = append(out.Cards, cardJSON{
			ID:          u.Card.ID,
			Name:        u.Card.Name,
			Holder:      string(u.Card.Holder),
			Color:       u.Color,
			Charged:     money(u.Charged),
			Paid:        money(u.Paid),
			Outstanding: money(u.Outstanding),
			Payoff:      u.Payoff.StringFixed(1),
		})
	}
	return out
}

type personYearJSON struct {
	Person  string    `json:"person"`
	Income  moneyJSON `json:"income"`
	Expense moneyJSON `json:"expense"`
	Net     moneyJSON `json:"net"`
}

func toPersonYear(p report.PersonYear) personYearJSON {
	return personYearJSON{Person: string(p.Person), Income: money(p.Income), Expense: money(p.Expense), Net: money(p.Net)}
}

type comparisonRowJSON struct {
	Month   int              `json:"month"`
	Label   string           `json:"label"`
	William personTotalsJSON `json:"william"`
	Shely   personTotalsJSON `json:"shely"`
	ChartA  int64            `json:"chart_william"`
	ChartB  int64            `json:"chart_shely"`
}

type comparisonJSON struct {
	Year    int                 `json:"year"`
	William personYearJSON      `json:"william"`
	Shely   personYearJSON      `json:"shely"`
	Months  []comparisonRowJSON `json:"months"`
}

func toComparisonJSON(year int, c report.Comparison) comparisonJSON {
	out := comparisonJSON{Year: year, William: toPersonYear(c.A), Shely: toPersonYear(c.B)}
	for _, m := range c.Months {
		out.Months = append(out.Months, comparisonRowJSON{
			Month:   m.Month,
			Label:   m.Label,
			William: toPersonTotals(m.A),
			Shely:   toPersonTotals(m.B),
			ChartA:  m.ChartA,
			ChartB:  m.ChartB,
		})
	}
	return out
}

type summaryRowJSON struct {
	Month      int       `json:"month"`
	Label      string    `json:"label"`
	Income     moneyJSON `json:"income"`
	Expense    moneyJSON `json:"expense"`
	Net        moneyJSON `json:"net"`
	Cumulative moneyJSON `json:"cumulative"`
}

type annualJSON struct {
	Year    int       `json:"year"`
	Income  moneyJSON `json:"income"`
	Expense moneyJSON `json:"expense"`
	Net     moneyJSON `json:"net"`
	// SavingsRate is null when there was no income.
	SavingsRate   *string          `json:"savings_rate_pct"`
	Months        []summaryRowJSON `json:"months"`
	TopCategories []categoryJSON   `json:"top_categories"`
}

func toAnnualJSON(a report.Annual) annualJSON {
	s := a.Summary
	out := annualJSON{
		Year:          a.Year,
		Income:        money(s.Income),
		Expense:       money(s.Expense),
		Net:           money(s.Net),
		TopCategories: toCategories(a.TopCategories),
	}
	if s.SavingsRateDefined {
		rate := s.SavingsRate.StringFixed(1)
		out.SavingsRate = &rate
	}
	for _, m := range s.Months {
		out.Months = append(out.Months, summaryRowJSON{
			Month:      m.Month,
			Label:      m.Label,
			Income:     money(m.Income),
			Expense:    money(m.Expense),
			Net:        money(m.Net),
			Cumulative: money(m.Cumulative),
		})
	}
	return out
}

type vocabularyJSON struct {
	Income         []string `json:"income_categories"`
	Expense        []string `json:"expense_categories"`
	Months         []string `json:"months"`
	Persons        []string `json:"persons"`
	Directions     []string `json:"directions"`
	PaymentMethods []string `json:"payment_methods"`
	Years          []int    `json:"years"`
}

func newVocabulary(years []int) vocabularyJSON {
	v := vocabularyJSON{
		Income:         core.IncomeCategories,
		Expense:        core.ExpenseCategories,
		Months:         core.MonthLabels[:],
		Directions:     []string{string(core.Income), string(core.Expense)},
		PaymentMethods: []string{string(core.Debit), string(core.Credit), string(core.Cash)},
		Years:          years,
	}
	for _, p := range core.Persons {
		v.Persons = append(v.Persons, string(p))
	}
	return v
}
