package sheets

import (
	"fmt"
	"strconv"
	"strings"

	"presupuesto/internal/core"
)

// Column order of the transaction tab. Row 1 is a header.
var transactionHeader = []any{"id", "fecha", "persona", "categoria", "forma_pago", "importe", "tipo", "mes", "anio", "observacion"}

const (
	colID = iota
	colDate
	colPerson
	colCategory
	colMethod
	colAmount
	colDirection
	colMonth
	colYear
	colNote
)

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseTransactionRow converts one sheet row into a Transaction. Month and
// year come from their own columns when present so that a row stored with a
// malformed month keeps it; otherwise they are derived from the date.
func parseTransactionRow(row []any) (core.Transaction, bool) {
	cols := toStrings(row)
	id, err := strconv.ParseInt(safeGet(cols, colID), 10, 64)
	if err != nil || id <= 0 {
		return core.Transaction{}, false
	}
	date, err := core.ParseDate(safeGet(cols, colDate))
	if err != nil {
		return core.Transaction{}, false
	}
	cents, err := core.ParseDecimalToCents(safeGet(cols, colAmount))
	if err != nil {
		return core.Transaction{}, false
	}

	t := core.Transaction{
		ID:            id,
		Date:          date,
		Person:        core.Person(strings.ToLower(safeGet(cols, colPerson))),
		Category:      safeGet(cols, colCategory),
		PaymentMethod: core.PaymentMethod(strings.ToUpper(safeGet(cols, colMethod))),
		Amount:        core.Money{Cents: cents},
		Direction:     core.Direction(strings.ToLower(safeGet(cols, colDirection))),
		Month:         date.Month(),
		Year:          date.Year(),
		Note:          safeGet(cols, colNote),
	}
	if m, err := strconv.Atoi(safeGet(cols, colMonth)); err == nil {
		t.Month = m
	}
	if y, err := strconv.Atoi(safeGet(cols, colYear)); err == nil {
		t.Year = y
	}
	return t, true
}

// transactionRow is the inverse of parseTransactionRow.
func transactionRow(t core.Transaction) []any {
	return []any{
		strconv.FormatInt(t.ID, 10),
		t.Date.String(),
		string(t.Person),
		t.Category,
		string(t.PaymentMethod),
		t.Amount.String(),
		string(t.Direction),
		strconv.Itoa(t.Month),
		strconv.Itoa(t.Year),
		t.Note,
	}
}

// parseCardRow reads "name, holder[, id]". Rows without an id get the
// position-based one passed in.
func parseCardRow(row []any, fallbackID int64) (core.Card, bool) {
	cols := toStrings(row)
	name := safeGet(cols, 0)
	if name == "" || strings.HasPrefix(name, "#") {
		return core.Card{}, false
	}
	c := core.Card{ID: fallbackID, Name: name, Holder: core.Person(strings.ToLower(safeGet(cols, 1)))}
	if id, err := strconv.ParseInt(safeGet(cols, 2), 10, 64); err == nil && id > 0 {
		c.ID = id
	}
	return c, true
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
