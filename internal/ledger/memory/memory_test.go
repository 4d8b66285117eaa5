package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
)

func mustTx(t *testing.T, date, who, cat, amount, dir string) core.Transaction {
	t.Helper()
	tx, err := core.NewTransaction(core.TransactionInput{
		Date: date, Person: who, Category: cat, Amount: amount, Direction: dir,
	})
	if err != nil {
		t.Fatalf("NewTransaction: %v", err)
	}
	return tx
}

func TestInsertListDelete(t *testing.T) {
	ctx := context.Background()
	s := New(nil)

	ids := make([]int64, 0, 3)
	for _, tx := range []core.Transaction{
		mustTx(t, "2024-03-01", "william", "Agua", "10", "egreso"),
		mustTx(t, "2024-03-05", "shely", "CTS", "200", "ingreso"),
		mustTx(t, "2024-03-05", "william", "Cine", "35.5", "egreso"),
	} {
		id, err := s.InsertTransaction(ctx, tx)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, id)
	}

	rows, err := s.ListTransactions(ctx, ledger.Query{Year: 2024})
	if err != nil || len(rows) != 3 {
		t.Fatalf("list: rows=%d err=%v", len(rows), err)
	}
	// Same date: higher id first.
	if rows[0].ID != ids[2] || rows[1].ID != ids[1] || rows[2].ID != ids[0] {
		t.Fatalf("unexpected order: %d %d %d", rows[0].ID, rows[1].ID, rows[2].ID)
	}

	if got, err := s.GetTransaction(ctx, ids[1]); err != nil || got.Category != "CTS" {
		t.Fatalf("get: %+v err=%v", got, err)
	}

	if err := s.DeleteTransaction(ctx, ids[1]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetTransaction(ctx, ids[1]); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("get after delete err = %v", err)
	}
	if err := s.DeleteTransaction(ctx, ids[1]); !errors.Is(err, ledger.ErrNotFound) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
	rows, _ = s.ListTransactions(ctx, ledger.Query{Year: 2024, Person: core.Shely})
	if len(rows) != 0 {
		t.Fatalf("deleted row still listed: %+v", rows)
	}
}

func TestInsertRejectsInvalid(t *testing.T) {
	s := New(nil)
	if _, err := s.InsertTransaction(context.Background(), core.Transaction{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	mustWrite := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	// No files -> empty store
	s := NewFromFiles(dir)
	cards, _ := s.ListCards(context.Background())
	if len(cards) != 0 {
		t.Fatalf("expected no cards, got %v", cards)
	}

	mustWrite("seed_cards.txt", "# name,holder\nDiners,william\nScotia MC,shely\nDiners,shely\n\nConti VISA\n")
	mustWrite("seed_transactions.csv", "fecha,persona,categoria,forma_pago,importe,tipo,observacion\n"+
		"2024-01-10,william,Diners,CREDITO,120.50,egreso,\n"+
		"2024-01-15,shely,Remuneraciones,DEBITO,3000,ingreso,enero\n"+
		"not-a-date,shely,Agua,DEBITO,10,egreso,\n")

	s = NewFromFiles(dir)
	cards, _ = s.ListCards(context.Background())
	if len(cards) != 3 || cards[0].Name != "Diners" || cards[1].Holder != core.Shely || cards[2].Holder != core.William {
		t.Fatalf("unexpected cards: %+v", cards)
	}
	rows, _ := s.ListTransactions(context.Background(), ledger.Query{Year: 2024})
	if len(rows) != 2 {
		t.Fatalf("expected 2 seeded rows, got %d", len(rows))
	}
	if rows[1].Amount.Cents != 12050 || rows[0].Note != "enero" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}
