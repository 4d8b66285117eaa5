package console

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
	"presupuesto/internal/report"
	"presupuesto/internal/view"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func soles(m core.Money) string { return core.FormatSoles(m) }

func heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("=", len([]rune(title))))
}

func renderDashboard(w io.Writer, d report.Dashboard) {
	heading(w, fmt.Sprintf("Dashboard %d · %s", d.Year, core.MonthLabel(d.Month)))
	fmt.Fprintf(w, "Income %s   Expense %s   Net %s\n",
		soles(d.Current.Income), soles(d.Current.Expense), soles(d.Current.Net()))
	fmt.Fprintf(w, "Balance to date: William %s   Shely %s\n\n", soles(d.ToDate.A), soles(d.ToDate.B))

	tw := newTable(w)
	fmt.Fprintln(tw, "Month\tIncome\tExpense\tNet\tCumulative\t")
	for i, b := range d.Monthly {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", b.Label, soles(b.Income), soles(b.Expense), soles(b.Net()),
			soles(core.Money{Cents: d.Balance[i].Total * 100}))
	}
	_ = tw.Flush()

	renderRanking(w, "Top expenses", d.TopCategories)
}

func renderRanking(w io.Writer, title string, rs []report.RankedCategory) {
	fmt.Fprintf(w, "\n%s\n", title)
	if len(rs) == 0 {
		fmt.Fprintln(w, "  no expenses")
		return
	}
	tw := newTable(w)
	for _, r := range rs {
		fmt.Fprintf(tw, "%d.\t%s\t%s\t\n", r.Rank, r.Name, soles(r.Total))
	}
	_ = tw.Flush()
}

func renderLedger(w io.Writer, st view.State, p ledger.Page) {
	heading(w, fmt.Sprintf("Transactions %d", st.Year))
	fmt.Fprintf(w, "Filter: person=%s direction=%s month=%s\n\n",
		orAll(string(st.Filter.Person)), orAll(string(st.Filter.Direction)), monthOrAll(st.Filter.Month))
	if len(p.Rows) == 0 {
		fmt.Fprintln(w, "no transactions")
	} else {
		tw := newTable(w)
		fmt.Fprintln(tw, "ID\tDate\tPerson\tCategory\tMethod\tAmount\tNote\t")
		for _, t := range p.Rows {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				t.ID, t.Date, t.Person.Label(), t.Category, t.PaymentMethod, soles(t.Signed()), t.Note)
		}
		_ = tw.Flush()
	}

	var nav []string
	if p.HasPrev {
		nav = append(nav, "prev")
	}
	if p.HasNext {
		nav = append(nav, "next")
	}
	fmt.Fprintf(w, "page %d", p.Number+1)
	if len(nav) > 0 {
		fmt.Fprintf(w, " (%s)", strings.Join(nav, ", "))
	}
	fmt.Fprintln(w)
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}

func monthOrAll(m int) string {
	if m == 0 {
		return "all"
	}
	return core.MonthLabel(m)
}

func renderCards(w io.Writer, year int, r report.CardReport) {
	heading(w, fmt.Sprintf("Credit cards %d", year))
	if len(r.Cards) == 0 {
		fmt.Fprintln(w, "no cards")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "Card\tHolder\tCharged\tPaid\tOutstanding\tPaid %\t")
	for _, u := range r.Cards {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			u.Card.Name, u.Card.Holder.Label(), soles(u.Charged), soles(u.Paid), soles(u.Outstanding), u.Payoff.StringFixed(1))
	}
	fmt.Fprintf(tw, "Total\t\t%s\t%s\t%s\t\t\n", soles(r.Charged), soles(r.Paid), soles(r.Outstanding))
	_ = tw.Flush()
}

func renderComparison(w io.Writer, year int, c report.Comparison) {
	heading(w, fmt.Sprintf("William vs Shely %d", year))
	tw := newTable(w)
	fmt.Fprintln(tw, "\tIncome\tExpense\tNet\t")
	for _, py := range []report.PersonYear{c.A, c.B} {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", py.Person.Label(), soles(py.Income), soles(py.Expense), soles(py.Net))
	}
	_ = tw.Flush()

	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintf(tw, "Month\t%s net\t%s net\t\n", c.A.Person.Label(), c.B.Person.Label())
	for _, m := range c.Months {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", m.Label, soles(m.A.Net()), soles(m.B.Net()))
	}
	_ = tw.Flush()
}

func renderAnnual(w io.Writer, a report.Annual) {
	s := a.Summary
	heading(w, fmt.Sprintf("Annual report %d", a.Year))
	fmt.Fprintf(w, "Income %s   Expense %s   Net %s   Savings rate %s\n\n",
		soles(s.Income), soles(s.Expense), soles(s.Net), s.SavingsRateLabel())

	tw := newTable(w)
	fmt.Fprintln(tw, "Month\tIncome\tExpense\tNet\tCumulative\t")
	for _, m := range s.Months {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", m.Label, soles(m.Income), soles(m.Expense), soles(m.Net), soles(m.Cumulative))
	}
	_ = tw.Flush()

	renderRanking(w, "Top 10 expense categories", a.TopCategories)
}
