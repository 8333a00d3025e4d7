package ledger

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// NewID returns a random 128-bit identifier as 32 lowercase hex characters.
func NewID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}
