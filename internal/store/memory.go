package store

import (
	"context"
	"sync"
)

// Memory is an in-process Store. It backs the memory data backend and
// doubles as the test fake for the repository.
type Memory struct {
	mu     sync.Mutex
	raw    []byte
	exists bool
	writes int
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

// NewMemoryWith returns a Memory already holding raw, as if it had been
// written earlier. Handy for seeding corrupt payloads.
func NewMemoryWith(raw string) *Memory {
	return &Memory{raw: []byte(raw), exists: true}
}

func (m *Memory) Read(_ context.Context) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.exists {
		return nil, false
	}
	return append([]byte(nil), m.raw...), true
}

func (m *Memory) Write(_ context.Context, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = append([]byte(nil), raw...)
	m.exists = true
	m.writes++
	return nil
}

func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = nil
	m.exists = false
	return nil
}

// Writes reports how many times Write has been called.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
