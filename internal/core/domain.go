package core

import (
	"errors"
	"strings"
)

const (
	Expense RecordType = "expense"
	Income  RecordType = "income"
)

type (
	RecordType string

	// Record is a single income or expense transaction. Records are never
	// mutated once created; an edit is a remove followed by an add.
	Record struct {
		ID        string     `json:"id"`
		Type      RecordType `json:"type"`
		Amount    float64    `json:"amount"`
		Category  string     `json:"category"`
		Note      string     `json:"note,omitempty"`
		Date      string     `json:"date"` // YYYY-MM-DD
		CreatedAt int64      `json:"createdAt"`
	}

	// Draft is a record as submitted by the caller, before the repository
	// assigns an id and a creation timestamp.
	Draft struct {
		Type     RecordType
		Amount   float64
		Category string
		Note     string
		Date     string
	}
)

var (
	ErrInvalidType   = errors.New("invalid record type")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrEmptyCategory = errors.New("empty category")
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrNoteTooLong   = errors.New("note too long (max 200 characters)")
)

// MaxNoteLength bounds the free-text note accepted at the boundary.
const MaxNoteLength = 200

func (t RecordType) IsValid() bool {
	return t == Expense || t == Income
}

func (t RecordType) String() string {
	return string(t)
}

// ParseRecordType normalizes user input into a RecordType.
func ParseRecordType(s string) (RecordType, error) {
	t := RecordType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// Validate checks a draft the way the input form does before it reaches the
// repository. The repository itself never validates.
func (d Draft) Validate() error {
	if !d.Type.IsValid() {
		return ErrInvalidType
	}
	if d.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(d.Category) == "" {
		return ErrEmptyCategory
	}
	if len([]rune(d.Note)) > MaxNoteLength {
		return ErrNoteTooLong
	}
	if _, err := ParseDate(d.Date); err != nil {
		return err
	}
	return nil
}

// Normalize trims free-text fields and rounds the amount to cents.
func (d Draft) Normalize() Draft {
	d.Category = strings.TrimSpace(d.Category)
	d.Note = strings.TrimSpace(d.Note)
	d.Amount = RoundAmount(d.Amount)
	return d
}

// Signed returns the amount with the sign used for display: negative for
// expenses, positive for income.
func (r Record) Signed() float64 {
	if r.Type == Expense {
		return -r.Amount
	}
	return r.Amount
}

// Month returns the YYYY-MM prefix of the record date.
func (r Record) Month() string {
	if len(r.Date) < 7 {
		return r.Date
	}
	return r.Date[:7]
}
