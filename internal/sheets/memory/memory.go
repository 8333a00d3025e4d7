// Package memory is an in-process snapshot target used when no spreadsheet
// is configured and in tests.
package memory

import (
	"context"
	"sync"

	ports "bookkeeping/internal/sheets"
)

type Store struct {
	mu     sync.Mutex
	rows   [][]string
	writes int
	err    error
}

var _ ports.SnapshotWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// WriteSnapshot keeps a deep copy of rows, replacing the previous snapshot.
func (s *Store) WriteSnapshot(_ context.Context, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	cp := make([][]string, len(rows))
	for i, row := range rows {
		cp[i] = append([]string(nil), row...)
	}
	s.rows = cp
	s.writes++
	return nil
}

// Rows returns the last snapshot.
func (s *Store) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// FailWith makes subsequent writes return err. A nil err restores success.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
