package http

import (
	"bytes"
	"net/http"

	"presupuesto/internal/core"
	"presupuesto/internal/log"
	"presupuesto/internal/view"
)

// pageData is what every page template receives. Data holds the view's
// aggregate.
type pageData struct {
	State  view.State
	Tabs   []view.Tab
	Years  []int
	Months [12]string
	Data   any

	// Transactions page only.
	Error      string
	Form       core.TransactionInput
	Vocabulary vocabularyJSON
}

func (s *Server) newPageData(st view.State, data any) pageData {
	return pageData{
		State:  st,
		Tabs:   view.Tabs,
		Years:  view.Years(s.now()),
		Months: core.MonthLabels,
		Data:   data,
	}
}

// render executes name into a buffer first so a template error never leaves
// a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data pageData) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.logs.LogError(r.Context(), "Template execution failed", err, log.OpRender,
			log.NewFields().With("template", name, log.FieldView, string(data.State.Tab)))
		http.Error(w, "could not render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// pageState parses the query; a bad parameter renders a 400 page.
func (s *Server) pageState(w http.ResponseWriter, r *http.Request, tab view.Tab) (view.State, bool) {
	st, err := ParseViewState(r.URL.Query(), tab, s.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return st, false
	}
	return st, true
}

func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	st, ok := s.pageState(w, r, view.TabDashboard)
	if !ok {
		return
	}
	d := s.reports.Dashboard(r.Context(), st.Year, st.Month)
	s.render(w, r, http.StatusOK, "dashboard_page", s.newPageData(st, d))
}

func (s *Server) handleTransactionsPage(w http.ResponseWriter, r *http.Request) {
	st, ok := s.pageState(w, r, view.TabTransactions)
	if !ok {
		return
	}
	s.renderTransactions(w, r, st, http.StatusOK, "", core.TransactionInput{})
}

// renderTransactions shows the ledger page, optionally with a rejected form
// and its error.
func (s *Server) renderTransactions(w http.ResponseWriter, r *http.Request, st view.State, status int, errMsg string, form core.TransactionInput) {
	p := s.reports.Ledger(r.Context(), st.Year, st.Filter, st.Page)
	data := s.newPageData(st, p)
	data.Error = errMsg
	data.Form = form
	if data.Form.Date == "" {
		data.Form.Date = s.now().Format(core.DateLayout)
	}
	data.Vocabulary = newVocabulary(data.Years)
	s.render(w, r, status, "transactions_page", data)
}

func (s *Server) handleCardsPage(w http.ResponseWriter, r *http.Request) {
	st, ok := s.pageState(w, r, view.TabCards)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "cards_page", s.newPageData(st, s.reports.Cards(r.Context(), st.Year)))
}

func (s *Server) handleComparisonPage(w http.ResponseWriter, r *http.Request) {
	st, ok := s.pageState(w, r, view.TabComparison)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "comparison_page", s.newPageData(st, s.reports.Comparison(r.Context(), st.Year)))
}

func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request) {
	st, ok := s.pageState(w, r, view.TabReport)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "report_page", s.newPageData(st, s.reports.Annual(r.Context(), st.Year)))
}
