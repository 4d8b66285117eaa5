package http

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
	"presupuesto/internal/report"
	"presupuesto/internal/services"
	"presupuesto/internal/view"
)

// sanitizeInput trims and drops control characters other than tab and
// newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// wantsHTML is true for browser form posts, which expect a redirect or a
// page rather than JSON.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// validationErrors are rejected with 422 before the store is touched.
var validationErrors = []error{
	core.ErrMissingDate,
	core.ErrMissingCategory,
	core.ErrMissingAmount,
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrInvalidPerson,
	core.ErrInvalidDirection,
	core.ErrInvalidPaymentMethod,
	core.ErrNoteTooLong,
}

func isValidationError(err error) bool {
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// errorStatus maps a service error to its HTTP status.
func errorStatus(err error) int {
	switch {
	case isValidationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrDeleteNotConfirmed):
		return http.StatusPreconditionRequired
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidParam):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// userMessage hides store internals behind a generic message.
func userMessage(err error) string {
	if errorStatus(err) == http.StatusInternalServerError {
		return "could not save the change, try again later"
	}
	return err.Error()
}

var tabLabels = map[view.Tab]string{
	view.TabDashboard:    "Dashboard",
	view.TabTransactions: "Movimientos",
	view.TabCards:        "Tarjetas",
	view.TabComparison:   "Comparativa",
	view.TabReport:       "Reporte anual",
}

var tabPaths = map[view.Tab]string{
	view.TabDashboard:    "/",
	view.TabTransactions: "/transactions",
	view.TabCards:        "/cards",
	view.TabComparison:   "/comparison",
	view.TabReport:       "/report",
}

// stateURL renders s as the page URL of its tab, with page overriding the
// page number.
func stateURL(s view.State, page int) string {
	q := url.Values{}
	q.Set("year", strconv.Itoa(s.Year))
	if s.Tab == view.TabTransactions {
		if s.Filter.Person != "" {
			q.Set("person", string(s.Filter.Person))
		}
		if s.Filter.Direction != "" {
			q.Set("direction", string(s.Filter.Direction))
		}
		if s.Filter.Month != 0 {
			q.Set("month", strconv.Itoa(s.Filter.Month))
		}
		if page > 0 {
			q.Set("page", strconv.Itoa(page))
		}
	} else if s.Tab == view.TabDashboard {
		q.Set("month", strconv.Itoa(s.Month))
	}
	return tabPaths[s.Tab] + "?" + q.Encode()
}

// width scales v against max into 0..100, keeping tiny non-zero values
// visible.
func width(v, max core.Money) int {
	if max.Cents <= 0 || v.Cents <= 0 {
		return 0
	}
	w := int((v.Cents*100 + max.Cents/2) / max.Cents)
	switch {
	case w < 2:
		return 2
	case w > 100:
		return 100
	}
	return w
}

func abs(m core.Money) core.Money {
	if m.Cents < 0 {
		return core.Money{Cents: -m.Cents}
	}
	return m
}

// maxMonthly is the largest monthly income or expense of the year.
func maxMonthly(bs report.Buckets) core.Money {
	var max core.Money
	for _, b := range bs {
		for _, v := range []core.Money{b.Income, b.Expense} {
			if v.Cents > max.Cents {
				max = v
			}
		}
	}
	return max
}

func maxRanked(rs []report.RankedCategory) core.Money {
	if len(rs) == 0 {
		return core.Money{}
	}
	return rs[0].Total
}

// maxComparison is the largest absolute monthly net of either person.
func maxComparison(c report.Comparison) int64 {
	var max int64
	for _, m := range c.Months {
		for _, v := range []int64{m.ChartA, m.ChartB} {
			if v < 0 {
				v = -v
			}
			if v > max {
				max = v
			}
		}
	}
	return max
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"soles":   core.FormatSoles,
		"compact": core.FormatSolesCompact,
		"month":   core.MonthLabel,
		"person":  func(p core.Person) string { return p.Label() },
		"tabLabel": func(t view.Tab) string {
			return tabLabels[t]
		},
		"stateURL": stateURL,
		"tabURL": func(s view.State, t view.Tab) string {
			return stateURL(s.WithTab(t), 0)
		},
		"units": func(v int64) string {
			return core.FormatSoles(core.Money{Cents: v * 100})
		},
		"pct": func(d decimal.Decimal) string {
			return d.StringFixed(1)
		},
		"width":         width,
		"abs":           abs,
		"negative":      func(m core.Money) bool { return m.Cents < 0 },
		"maxMonthly":    maxMonthly,
		"maxRanked":     maxRanked,
		"maxComparison": maxComparison,
		"unitWidth": func(v, max int64) int {
			if v < 0 {
				v = -v
			}
			return width(core.Money{Cents: v}, core.Money{Cents: max})
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	}
}
