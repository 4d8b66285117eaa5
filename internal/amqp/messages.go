package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"presupuesto/internal/core"
)

type EventKind string

const (
	EventCreated EventKind = "created"
	EventDeleted EventKind = "deleted"
)

// LedgerEvent announces a write to the ledger. The worker re-reads the
// store for the authoritative row; the snapshot is informational.
type LedgerEvent struct {
	MessageID     string    `json:"message_id"`
	Kind          EventKind `json:"kind"`
	TransactionID int64     `json:"transaction_id"`
	Year          int       `json:"year"`
	Month         int       `json:"month"`
	Category      string    `json:"category,omitempty"`
	AmountCents   int64     `json:"amount_cents,omitempty"`
	Direction     string    `json:"direction,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent builds an event for t with a fresh message id.
func NewLedgerEvent(kind EventKind, t core.Transaction) *LedgerEvent {
	return &LedgerEvent{
		MessageID:     uuid.NewString(),
		Kind:          kind,
		TransactionID: t.ID,
		Year:          t.Year,
		Month:         t.Month,
		Category:      t.Category,
		AmountCents:   t.Amount.Cents,
		Direction:     string(t.Direction),
		Timestamp:     time.Now(),
	}
}

func (m *LedgerEvent) Validate() error {
	if m.Kind != EventCreated && m.Kind != EventDeleted {
		return fmt.Errorf("unknown event kind %q", m.Kind)
	}
	if m.TransactionID <= 0 {
		return errors.New("missing transaction id")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and validates a message body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
