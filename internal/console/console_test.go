package console

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"presupuesto/internal/core"
	"presupuesto/internal/ledger/memory"
	"presupuesto/internal/services"
	"presupuesto/internal/view"
)

var testNow = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

// syncBuffer lets the test read what background refreshes wrote.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestConsole(t *testing.T, input string, seed ...core.TransactionInput) (*Console, *syncBuffer) {
	t.Helper()
	store := memory.New([]core.Card{{Name: "Scotia MC", Holder: core.Shely}})
	for _, in := range seed {
		tx, err := core.NewTransaction(in)
		if err != nil {
			t.Fatalf("seed %+v: %v", in, err)
		}
		if _, err := store.InsertTransaction(context.Background(), tx); err != nil {
			t.Fatal(err)
		}
	}
	out := &syncBuffer{}
	c := New(
		services.NewLedgerService(store, nil),
		services.NewReportService(store, services.ReportConfig{}),
		strings.NewReader(input), out,
		Options{Now: func() time.Time { return testNow }, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))},
	)
	return c, out
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{line: "", want: nil},
		{line: "  view   cards ", want: []string{"view", "cards"}},
		{line: `add note="cena con amigos" amount=30`, want: []string{"add", "note=cena con amigos", "amount=30"}},
		{line: "filter\tperson\tshely", want: []string{"filter", "person", "shely"}},
		{line: `add note="open`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := splitArgs(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) || len(got) != len(tt.want) {
				t.Errorf("splitArgs(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}

func TestExecuteChangesState(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestConsole(t, "")

	if st := c.State(); st.Tab != view.TabDashboard || st.Year != 2024 || st.Month != 3 {
		t.Fatalf("initial state = %+v", st)
	}

	steps := []struct {
		line    string
		wantErr bool
		check   func(view.State) bool
	}{
		{"view cards", false, func(s view.State) bool { return s.Tab == view.TabCards }},
		{"year 2022", false, func(s view.State) bool { return s.Year == 2022 }},
		{"month 7", false, func(s view.State) bool { return s.Month == 7 }},
		{"filter person shely", false, func(s view.State) bool {
			return s.Tab == view.TabTransactions && s.Filter.Person == core.Shely
		}},
		{"filter month all", false, func(s view.State) bool { return s.Filter.Month == 0 }},
		{"view nowhere", true, nil},
		{"year 2019", true, nil},
		{"year 2025", true, nil},
		{"month 13", true, nil},
		{"filter person pedro", true, nil},
		{"prev", true, nil},
		{"frobnicate", true, nil},
	}
	for _, s := range steps {
		err := c.Execute(ctx, s.line)
		c.Wait()
		if s.wantErr {
			if err == nil {
				t.Errorf("%q: expected error", s.line)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: %v", s.line, err)
			continue
		}
		if !s.check(c.State()) {
			t.Errorf("%q: state = %+v", s.line, c.State())
		}
	}

	if err := c.Execute(ctx, "quit"); !errors.Is(err, ErrQuit) {
		t.Errorf("quit err = %v", err)
	}
}

func TestAddAndDelete(t *testing.T) {
	ctx := context.Background()
	c, out := newTestConsole(t, "y\nn\n")

	if err := c.Execute(ctx, `add date=2024-03-02 category=Cine amount=30,50 note="con amigos"`); err != nil {
		t.Fatalf("add: %v", err)
	}
	c.Wait()
	if !strings.Contains(out.String(), "created #1") {
		t.Fatalf("output = %s", out.String())
	}

	if err := c.Execute(ctx, "add date=2024-03-02 category=Cine"); !errors.Is(err, core.ErrMissingAmount) {
		t.Errorf("missing amount err = %v", err)
	}
	if err := c.Execute(ctx, "add date=2024-03-02 colour=red"); err == nil {
		t.Error("unknown field accepted")
	}

	// First answer is y.
	if err := c.Execute(ctx, "delete 1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c.Wait()
	if !strings.Contains(out.String(), "deleted #1") {
		t.Errorf("output = %s", out.String())
	}

	// Second answer is n.
	if err := c.Execute(ctx, "delete 1"); err != nil {
		t.Fatalf("cancelled delete: %v", err)
	}
	if !strings.Contains(out.String(), "cancelled") {
		t.Errorf("output = %s", out.String())
	}

	if err := c.Execute(ctx, "delete x"); err == nil {
		t.Error("bad id accepted")
	}
}

func TestDeleteMissingRow(t *testing.T) {
	c, _ := newTestConsole(t, "y\n")
	err := c.Execute(context.Background(), "delete 99")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v", err)
	}
}

func TestLedgerPaging(t *testing.T) {
	ctx := context.Background()
	var seed []core.TransactionInput
	for i := 1; i <= 25; i++ {
		seed = append(seed, core.TransactionInput{
			Date: fmt.Sprintf("2024-02-%02d", i), Category: "Supermercado", Amount: "10",
		})
	}
	c, out := newTestConsole(t, "", seed...)

	if err := c.Execute(ctx, "next"); err == nil {
		t.Error("next accepted outside the ledger")
	}
	if err := c.Execute(ctx, "view transactions"); err != nil {
		t.Fatal(err)
	}
	c.Wait()
	if !strings.Contains(out.String(), "page 1 (next)") {
		t.Fatalf("output = %s", out.String())
	}

	if err := c.Execute(ctx, "next"); err != nil {
		t.Fatal(err)
	}
	c.Wait()
	if c.State().Page != 1 || !strings.Contains(out.String(), "page 2 (prev)") {
		t.Fatalf("page = %d, output = %s", c.State().Page, out.String())
	}
	if err := c.Execute(ctx, "next"); err == nil {
		t.Error("next past the last page")
	}

	if err := c.Execute(ctx, "prev"); err != nil || c.State().Page != 0 {
		t.Errorf("prev: page = %d err = %v", c.State().Page, err)
	}
	c.Wait()

	// A filter change goes back to the first page.
	_ = c.Execute(ctx, "next")
	c.Wait()
	if err := c.Execute(ctx, "filter direction egreso"); err != nil || c.State().Page != 0 {
		t.Errorf("filter: page = %d err = %v", c.State().Page, err)
	}
	c.Wait()
}

func TestOnlyLatestRefreshIsKept(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestConsole(t, "")

	for _, line := range []string{"year 2021", "year 2022", "year 2023"} {
		if err := c.Execute(ctx, line); err != nil {
			t.Fatal(err)
		}
	}
	c.Wait()

	sc, loading := c.slot.Current()
	if loading {
		t.Error("slot still loading after Wait")
	}
	if sc.State.Year != 2023 {
		t.Errorf("shown year = %d, want 2023", sc.State.Year)
	}
}

func TestRun(t *testing.T) {
	seed := []core.TransactionInput{
		{Date: "2024-01-10", Person: "shely", Category: "Scotia MC", Amount: "200", Direction: "egreso"},
		{Date: "2024-01-25", Person: "shely", Category: "Scotia MC", Amount: "100", Direction: "ingreso"},
	}
	c, out := newTestConsole(t, "help\nview cards\nview report\nbogus\nquit\n", seed...)

	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Dashboard 2024 · Mar",
		"Commands:",
		"Credit cards 2024",
		"Scotia MC",
		"50.0",
		"Annual report 2024",
		"Savings rate -100.0%",
		`error: unknown command "bogus"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunStopsAtEndOfInput(t *testing.T) {
	c, out := newTestConsole(t, "view comparison\n")
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "William vs Shely 2024") {
		t.Errorf("output = %s", out.String())
	}
}
