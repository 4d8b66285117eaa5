package http

import (
	"net/http"
	"net/url"
	"strconv"

	"presupuesto/internal/view"
)

// viewState parses the query for tab and writes a 400 on failure.
func (s *Server) viewState(w http.ResponseWriter, r *http.Request, tab view.Tab) (view.State, bool) {
	st, err := ParseViewState(r.URL.Query(), tab, s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return st, false
	}
	return st, true
}

func (s *Server) handleAPIDashboard(w http.ResponseWriter, r *http.Request) {
	st, ok := s.viewState(w, r, view.TabDashboard)
	if !ok {
		return
	}
	d := s.reports.Dashboard(r.Context(), st.Year, st.Month)
	NewResponse().JSON(toDashboardJSON(d)).Write(w)
}

func (s *Server) handleAPITransactions(w http.ResponseWriter, r *http.Request) {
	st, ok := s.viewState(w, r, view.TabTransactions)
	if !ok {
		return
	}
	p := s.reports.Ledger(r.Context(), st.Year, st.Filter, st.Page)
	NewResponse().JSON(toPageJSON(st.Year, st.Filter, p)).Write(w)
}

func (s *Server) handleAPICards(w http.ResponseWriter, r *http.Request) {
	st, ok := s.viewState(w, r, view.TabCards)
	if !ok {
		return
	}
	NewResponse().JSON(toCardReportJSON(st.Year, s.reports.Cards(r.Context(), st.Year))).Write(w)
}

func (s *Server) handleAPIComparison(w http.ResponseWriter, r *http.Request) {
	st, ok := s.viewState(w, r, view.TabComparison)
	if !ok {
		return
	}
	NewResponse().JSON(toComparisonJSON(st.Year, s.reports.Comparison(r.Context(), st.Year))).Write(w)
}

func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	st, ok := s.viewState(w, r, view.TabReport)
	if !ok {
		return
	}
	NewResponse().JSON(toAnnualJSON(s.reports.Annual(r.Context(), st.Year))).Write(w)
}

func (s *Server) handleAPIVocabulary(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(newVocabulary(view.Years(s.now()))).Write(w)
}

// handleCreateTransaction accepts a form or a JSON object. Browser form
// posts are redirected to the ledger page of the new row's year.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError("invalid request body").Write(w)
		return
	}
	in := p.TransactionInput()

	t, err := s.ledger.Create(r.Context(), in)
	if err != nil {
		status := errorStatus(err)
		if wantsHTML(r) && !p.IsJSON() {
			st := view.NewState(s.now()).WithTab(view.TabTransactions)
			s.renderTransactions(w, r, st, status, userMessage(err), in)
			return
		}
		ErrorResponse(status, userMessage(err)).Write(w)
		return
	}

	if wantsHTML(r) && !p.IsJSON() {
		st := view.NewState(s.now()).WithTab(view.TabTransactions).WithYear(t.Year)
		http.Redirect(w, r, stateURL(st, 0), http.StatusSeeOther)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Location("/api/transactions/" + strconv.FormatInt(t.ID, 10)).
		JSON(toTransactionJSON(t)).
		Write(w)
}

// handleDeleteTransaction requires confirm=true in the query or form.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r.PathValue("id"))
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	confirm := ParseConfirm(r.URL.Query().Get("confirm"))
	if !confirm && r.Method == http.MethodPost {
		confirm = ParseConfirm(r.PostFormValue("confirm"))
	}

	if err := s.ledger.Delete(r.Context(), id, confirm); err != nil {
		ErrorResponse(errorStatus(err), userMessage(err)).Write(w)
		return
	}

	if wantsHTML(r) {
		st, err := ParseViewState(url.Values{"year": {r.PostFormValue("year")}}, view.TabTransactions, s.now())
		if err != nil {
			st = view.NewState(s.now()).WithTab(view.TabTransactions)
		}
		http.Redirect(w, r, stateURL(st, 0), http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
