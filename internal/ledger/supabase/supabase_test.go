package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
)

func TestNewRequiresConfig(t *testing.T) {
	if _, err := New("", "k", nil); err == nil {
		t.Fatal("expected error for missing url")
	}
	if _, err := New("https://x.supabase.co", " ", nil); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestListTransactionsBuildsQuery(t *testing.T) {
	var gotQuery, gotRange, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/transactions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		gotRange = r.Header.Get("Range")
		gotKey = r.Header.Get("apikey")
		_, _ = io.WriteString(w, `[
			{"id":9,"fecha":"2024-03-02","persona":"shely","categoria":"Agua","forma_pago":"DEBITO","importe":45.255,"tipo":"egreso","mes":3,"anio":2024,"observacion":null},
			{"id":8,"fecha":"bad","persona":"shely","categoria":"Agua","forma_pago":"DEBITO","importe":1,"tipo":"egreso","mes":3,"anio":2024}
		]`)
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/", "secret", srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	rows, err := c.ListTransactions(context.Background(), ledger.Query{
		Year: 2024, Month: 3, Person: core.Shely, Direction: core.Expense, Offset: 20, Limit: 20,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != 9 || rows[0].Amount.Cents != 4526 || rows[0].Note != "" {
		t.Fatalf("rows = %+v", rows)
	}
	for _, want := range []string{"anio=eq.2024", "mes=eq.3", "persona=eq.shely", "tipo=eq.egreso", "order=fecha.desc%2Cid.desc"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
	if gotRange != "20-39" {
		t.Errorf("range = %q", gotRange)
	}
	if gotKey != "secret" {
		t.Errorf("apikey = %q", gotKey)
	}
}

func TestListReadsAmountsAsMagnitudes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id":3,"fecha":"2023-06-01","persona":"william","categoria":"Diners","forma_pago":"CREDITO","importe":-120.5,"tipo":"egreso","mes":6,"anio":2023}
		]`)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "k", srv.Client())
	rows, err := c.ListTransactions(context.Background(), ledger.Query{Year: 2023})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Amount.Cents != 12050 || rows[0].Signed().Cents != -12050 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestListPastLastPageIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
		_, _ = io.WriteString(w, `{"message":"Requested range not satisfiable"}`)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "k", srv.Client())
	rows, err := c.ListTransactions(context.Background(), ledger.Query{Year: 2024, Offset: 400, Limit: 20})
	if err != nil || len(rows) != 0 {
		t.Fatalf("rows=%v err=%v", rows, err)
	}
}

func TestInsertTransaction(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Prefer") != "return=representation" {
			t.Errorf("method=%s prefer=%q", r.Method, r.Header.Get("Prefer"))
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `[{"id":51,"fecha":"2024-12-31","persona":"william","categoria":"Diners","forma_pago":"CREDITO","importe":99.9,"tipo":"egreso","mes":12,"anio":2024}]`)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "k", srv.Client())
	in, err := core.NewTransaction(core.TransactionInput{
		Date: "2024-12-31", Category: "Diners", PaymentMethod: "credito", Amount: "99.90",
	})
	if err != nil {
		t.Fatal(err)
	}
	id, err := c.InsertTransaction(context.Background(), in)
	if err != nil || id != 51 {
		t.Fatalf("id=%d err=%v", id, err)
	}
	if body["mes"] != float64(12) || body["anio"] != float64(2024) || body["importe"] != "99.9" {
		t.Fatalf("body = %v", body)
	}
	if _, ok := body["id"]; ok {
		t.Fatal("id must be assigned by the store")
	}
}

func TestDeleteTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Query().Get("id") == "eq.1" {
			_, _ = io.WriteString(w, `[{"id":1,"fecha":"2024-01-01","importe":1}]`)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "k", srv.Client())
	if err := c.DeleteTransaction(context.Background(), 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.DeleteTransaction(context.Background(), 2); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("delete missing = %v", err)
	}
}

func TestErrorsAreReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"JWT expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "k", srv.Client())
	_, err := c.ListCards(context.Background())
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Fatalf("err = %v", err)
	}
}

func TestListCards(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"nombre":"Diners","titular":"william"},{"id":2,"nombre":"Scotia MC","titular":"shely"}]`)
	}))
	defer srv.Close()

	c, _ := New(srv.URL, "k", srv.Client())
	cards, err := c.ListCards(context.Background())
	if err != nil || len(cards) != 2 || cards[1].Name != "Scotia MC" || cards[1].Holder != core.Shely {
		t.Fatalf("cards=%+v err=%v", cards, err)
	}
}
