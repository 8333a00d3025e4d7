package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventKind names a ledger mutation.
type EventKind string

const (
	RecordAdded   EventKind = "record.added"
	RecordRemoved EventKind = "record.removed"
	LedgerCleared EventKind = "ledger.cleared"
)

func (k EventKind) IsValid() bool {
	switch k {
	case RecordAdded, RecordRemoved, LedgerCleared:
		return true
	}
	return false
}

// LedgerEvent announces that the ledger changed. It carries identifiers
// only; consumers re-read the ledger for the data.
type LedgerEvent struct {
	Kind      EventKind `json:"kind"`
	RecordID  string    `json:"record_id,omitempty"`
	Date      string    `json:"date,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerEvent creates an event stamped with the current time.
func NewLedgerEvent(kind EventKind, recordID, date string) *LedgerEvent {
	return &LedgerEvent{
		Kind:      kind,
		RecordID:  recordID,
		Date:      date,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and rejects unknown kinds.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Kind.IsValid() {
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return &e, nil
}
