package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// NewMem creates an in-memory ledger, the default backend and the one
// used by tests
func NewMem() *Mem {
	return &Mem{records: make(map[string]*Record)}
}

// Mem is a process-local ledger backed by a map
type Mem struct {
	mu      sync.Mutex
	records map[string]*Record
}

// CreateOrFetch returns a copy of the stored record, creating it first
// when the name is unknown
func (m *Mem) CreateOrFetch(_ context.Context, name string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[name]
	if !ok {
		rec = &Record{ID: uuid.New(), Name: name}
		m.records[name] = rec
	}
	cp := *rec
	return &cp, nil
}

// Commit stores the record when its version still matches
func (m *Mem) Commit(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.records[rec.Name]
	if !ok || stored.Version != rec.Version {
		return ErrConsistency
	}
	cp := *rec
	cp.Version++
	m.records[rec.Name] = &cp
	rec.Version = cp.Version
	return nil
}

// Close is a no-op for the in-memory ledger
func (m *Mem) Close() error { return nil }
