package sheets

import "context"

// Ports for outbound adapters.
type (
	// SnapshotWriter replaces the exported copy of the ledger with rows.
	// The first row is the header.
	SnapshotWriter interface {
		WriteSnapshot(ctx context.Context, rows [][]string) error
	}
)
