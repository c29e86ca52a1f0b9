// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/promptgraveyard/graveyard/schema"
)

// RecordSource defines the backing log that evaluation records are read from
// and appended to. This allows the record store to be tested without real files.
type RecordSource interface {
	// --- Reads ---

	// Load reads every record from the backing log in order.
	// A missing log is valid and yields an empty slice, not an error.
	Load(ctx context.Context) ([]schema.EvaluationRecord, error)

	// --- Writes ---

	// Append adds records to the end of the backing log.
	Append(ctx context.Context, records ...schema.EvaluationRecord) error
}

// RecordStore maintains a time-bounded-fresh snapshot of evaluation records.
// This allows the query and revival services to be mocked for testing.
type RecordStore interface {
	// GetAll returns a defensive copy of the current snapshot, refreshing it
	// first when the snapshot is older than the staleness window.
	GetAll(ctx context.Context) ([]schema.EvaluationRecord, error)

	// GetByID returns the record with the given id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (schema.EvaluationRecord, error)

	// Append writes records through to the backing log and invalidates
	// the snapshot so the next read observes them.
	Append(ctx context.Context, records ...schema.EvaluationRecord) error
}

// LedgerStore defines the interface for revival ledger event storage.
// This allows mocking the store for testing.
type LedgerStore interface {
	// AppendEvent adds one event to the end of the ledger.
	AppendEvent(ctx context.Context, event schema.LedgerEvent) error

	// LoadEvents returns every event in append order.
	LoadEvents(ctx context.Context) ([]schema.LedgerEvent, error)

	// GetStatus returns status information about the ledger store.
	GetStatus() (schema.LedgerStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// LedgerManager defines the interface for accessing the configured ledger store.
// This allows the storage layer to be mocked for testing.
type LedgerManager interface {
	GetLedgerStore() LedgerStore
}

// Clock abstracts the current time so staleness decisions can be controlled
// in tests without real delays.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock backed by the wall clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }
