// Package ledger records experiment runs in a persisted transaction log.
//
// The engine only depends on the Ledger interface, backends exist for
// in-process use (Mem) and Postgres.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrConsistency is returned by Commit when the record was modified
// concurrently and the in-memory copy is stale
var ErrConsistency = errors.New("ledger: stale record")

// ErrDuplicate is returned when a record with the same name was created
// concurrently, callers retry the create-or-fetch once
var ErrDuplicate = errors.New("ledger: duplicate record")

// A Record is the persisted state of one experiment. Begin and End are
// merged with min/max semantics by the engine so a record surviving from
// a prior run never loses its earliest begin or latest end time.
type Record struct {
	ID      uuid.UUID
	Name    string
	Begin   *time.Time
	End     *time.Time
	Version int64
}

// MergeBegin records the earlier of the existing begin time and t
func (r *Record) MergeBegin(t time.Time) {
	if r.Begin == nil || t.Before(*r.Begin) {
		r.Begin = &t
	}
}

// MergeEnd records the later of the existing end time and t
func (r *Record) MergeEnd(t time.Time) {
	if r.End == nil || t.After(*r.End) {
		r.End = &t
	}
}

// A Ledger persists experiment records
type Ledger interface {
	// CreateOrFetch returns the record for the given experiment name,
	// creating it when this is the first run
	CreateOrFetch(ctx context.Context, name string) (*Record, error)
	// Commit writes the record back, failing with ErrConsistency when the
	// stored version moved underneath us
	Commit(ctx context.Context, rec *Record) error
	Close() error
}
