package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  Direction = "ingreso"
	Expense Direction = "egreso"
)

const (
	William Person = "william"
	Shely   Person = "shely"
)

const (
	Debit  PaymentMethod = "DEBITO"
	Credit PaymentMethod = "CREDITO"
	Cash   PaymentMethod = "EFECTIVO"
)

// DateLayout is the wire format for transaction dates.
const DateLayout = "2006-01-02"

type (
	// Direction tells whether a transaction adds to or subtracts from a balance.
	Direction string

	// Person is one of the two household members a transaction is attributed to.
	Person string

	PaymentMethod string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is one financial movement in the ledger. Amount is always a
	// magnitude; Direction carries the sign. Month and Year are derived from
	// Date when the record is created and stored alongside it.
	Transaction struct {
		ID            int64
		Date          Date
		Person        Person
		Category      string
		PaymentMethod PaymentMethod
		Amount        Money
		Direction     Direction
		Month         int
		Year          int
		Note          string
	}

	// Card is a credit card. Transactions are linked to it when their
	// category equals Name.
	Card struct {
		ID     int64
		Name   string
		Holder Person
	}

	// TransactionInput is the raw, unvalidated content of a create request.
	TransactionInput struct {
		Date          string
		Person        string
		Category      string
		PaymentMethod string
		Amount        string
		Direction     string
		Note          string
	}
)

var (
	ErrMissingDate          = errors.New("date is required")
	ErrMissingCategory      = errors.New("category is required")
	ErrMissingAmount        = errors.New("amount is required")
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidPerson        = errors.New("invalid person")
	ErrInvalidDirection     = errors.New("invalid direction")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrNoteTooLong          = errors.New("note too long (max 200 characters)")
)

// Persons lists the household members in display order.
var Persons = []Person{William, Shely}

func (d Direction) Valid() bool { return d == Income || d == Expense }

func (p Person) Valid() bool { return p == William || p == Shely }

// Label returns the display name of the person.
func (p Person) Label() string {
	switch p {
	case William:
		return "William"
	case Shely:
		return "Shely"
	}
	return string(p)
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case Debit, Credit, Cash:
		return true
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Validate rejects negative amounts. The direction carries the sign.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Signed returns the amount with the sign implied by the direction.
func (t Transaction) Signed() Money {
	if t.Direction == Income {
		return t.Amount
	}
	return Money{Cents: -t.Amount.Cents}
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return ErrMissingDate
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrMissingCategory
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Person.Valid() {
		return ErrInvalidPerson
	}
	if !t.Direction.Valid() {
		return ErrInvalidDirection
	}
	if !t.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	if len(t.Note) > 200 {
		return ErrNoteTooLong
	}
	return nil
}

// NewTransaction builds a Transaction from raw input. Date, category and
// amount must be present; person, direction and payment method fall back to
// william, egreso and DEBITO when blank. The category is free text and is
// not checked against the recommended vocabulary.
func NewTransaction(in TransactionInput) (Transaction, error) {
	if strings.TrimSpace(in.Date) == "" {
		return Transaction{}, ErrMissingDate
	}
	if strings.TrimSpace(in.Category) == "" {
		return Transaction{}, ErrMissingCategory
	}
	if strings.TrimSpace(in.Amount) == "" {
		return Transaction{}, ErrMissingAmount
	}

	date, err := ParseDate(in.Date)
	if err != nil {
		return Transaction{}, err
	}
	cents, err := ParseDecimalToCents(in.Amount)
	if err != nil {
		return Transaction{}, err
	}

	t := Transaction{
		Date:          date,
		Person:        Person(orDefault(in.Person, string(William))),
		Category:      strings.TrimSpace(in.Category),
		PaymentMethod: PaymentMethod(strings.ToUpper(orDefault(in.PaymentMethod, string(Debit)))),
		Amount:        Money{Cents: cents},
		Direction:     Direction(orDefault(in.Direction, string(Expense))),
		Month:         date.Month(),
		Year:          date.Year(),
		Note:          strings.TrimSpace(in.Note),
	}
	if err := t.Validate(); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func orDefault(v, def string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return def
	}
	return v
}
