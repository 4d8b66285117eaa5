// Package memory is an in-process ledger store, used for local runs and
// tests. It can be seeded from files in a directory.
package memory

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	rows   []core.Transaction
	cards  []core.Card
}

func New(cards []core.Card) *Store {
	s := &Store{nextID: 1}
	for i, c := range cards {
		if c.ID == 0 {
			c.ID = int64(i + 1)
		}
		s.cards = append(s.cards, c)
	}
	return s
}

// NewFromFiles seeds the store from seed_cards.txt and
// seed_transactions.csv under base. Missing files leave the store empty;
// malformed lines are skipped with a warning.
func NewFromFiles(base string) *Store {
	s := New(readCards(filepath.Join(base, "seed_cards.txt")))
	for _, in := range readTransactions(filepath.Join(base, "seed_transactions.csv")) {
		t, err := core.NewTransaction(in)
		if err != nil {
			slog.Warn("Skipping seed transaction", "date", in.Date, "category", in.Category, "error", err)
			continue
		}
		_, _ = s.InsertTransaction(context.Background(), t)
	}
	return s
}

func (s *Store) ListTransactions(_ context.Context, q ledger.Query) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ledger.Apply(s.rows, q), nil
}

// InsertTransaction stores t under a fresh id.
func (s *Store) InsertTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	s.rows = append(s.rows, t)
	return t.ID, nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.rows {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, ledger.ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.rows {
		if t.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return ledger.ErrNotFound
}

func (s *Store) ListCards(_ context.Context) ([]core.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Card(nil), s.cards...), nil
}

// readCards parses "name,holder" lines. Blank lines and # comments are
// ignored and the holder defaults to william.
func readCards(path string) []core.Card {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []core.Card
	seen := map[string]struct{}{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		name, holder, _ := strings.Cut(line, ",")
		name = strings.TrimSpace(name)
		if _, dup := seen[name]; dup || name == "" {
			continue
		}
		seen[name] = struct{}{}
		p := core.Person(strings.ToLower(strings.TrimSpace(holder)))
		if !p.Valid() {
			p = core.William
		}
		out = append(out, core.Card{ID: int64(len(out) + 1), Name: name, Holder: p})
	}
	return out
}

// readTransactions reads a CSV with the header
// fecha,persona,categoria,forma_pago,importe,tipo,observacion. Columns are matched by
// header name so their order is free.
func readTransactions(path string) []core.TransactionInput {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comment = '#'
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var out []core.TransactionInput
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn("Stopping seed read", "path", path, "error", err)
			break
		}
		out = append(out, core.TransactionInput{
			Date:          get(rec, "fecha"),
			Person:        get(rec, "persona"),
			Category:      get(rec, "categoria"),
			PaymentMethod: get(rec, "forma_pago"),
			Amount:        get(rec, "importe"),
			Direction:     get(rec, "tipo"),
			Note:          get(rec, "observacion"),
		})
	}
	return out
}
