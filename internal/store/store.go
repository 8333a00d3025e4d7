// Package store persists the ledger as a single serialized blob under one
// well-known key.
//
// A Store never reports read failures: a missing key, an unreadable backend
// and an empty value all look the same to the caller. Making sense of the
// bytes is the repository's job.
package store

import "context"

// DefaultKey is the key the ledger blob lives under.
const DefaultKey = "bookkeeping_records_v1"

// Store is the raw persistence primitive behind the ledger repository.
type Store interface {
	// Read returns the stored bytes, or ok=false when nothing usable is stored.
	Read(ctx context.Context) (raw []byte, ok bool)
	// Write replaces the whole stored value.
	Write(ctx context.Context, raw []byte) error
	// Clear removes the key. A later Read reports ok=false.
	Clear(ctx context.Context) error
}
