package recordstore

import (
	"context"
	"sync"
	"time"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// Store serves evaluation records from an in-memory snapshot that is reloaded
// from the source once it is older than the staleness window. The mutex is
// held across a reload, so concurrent readers trigger at most one source load.
type Store struct {
	source     contract.RecordSource
	clock      contract.Clock
	staleAfter time.Duration

	mu          sync.Mutex
	records     []schema.EvaluationRecord
	lastRefresh time.Time
	loaded      bool
}

var _ contract.RecordStore = &Store{} // Compile-time check

// NewStore returns a store over the given source. A nil clock means the wall
// clock, and a non-positive staleAfter means the default staleness window.
func NewStore(source contract.RecordSource, clock contract.Clock, staleAfter time.Duration) *Store {
	if clock == nil {
		clock = contract.SystemClock{}
	}
	if staleAfter <= 0 {
		staleAfter = schema.DefaultStaleAfter
	}
	return &Store{source: source, clock: clock, staleAfter: staleAfter}
}

// GetAll implements the RecordStore interface.
func (s *Store) GetAll(ctx context.Context) ([]schema.EvaluationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFreshLocked(ctx); err != nil {
		return nil, err
	}
	return schema.CloneRecords(s.records), nil
}

// GetByID implements the RecordStore interface.
func (s *Store) GetByID(ctx context.Context, id string) (schema.EvaluationRecord, error) {
	if id == "" {
		return schema.EvaluationRecord{}, contract.ValidationError("record id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureFreshLocked(ctx); err != nil {
		return schema.EvaluationRecord{}, err
	}
	for i := range s.records {
		if s.records[i].ID == id {
			return s.records[i].Clone(), nil
		}
	}
	return schema.EvaluationRecord{}, contract.NotFoundError("record %s", id)
}

// Append implements the RecordStore interface.
func (s *Store) Append(ctx context.Context, records ...schema.EvaluationRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.source.Append(ctx, records...); err != nil {
		return err
	}

	// Drop the snapshot so the next read observes the new records.
	s.loaded = false
	return nil
}

// ensureFreshLocked reloads the snapshot when it is missing or stale.
// A failed reload keeps the previous snapshot and its timestamp untouched.
func (s *Store) ensureFreshLocked(ctx context.Context) error {
	now := s.clock.Now()
	if s.loaded && now.Sub(s.lastRefresh) < s.staleAfter {
		return nil
	}

	records, err := s.source.Load(ctx)
	if err != nil {
		return err
	}

	s.records = records
	s.lastRefresh = now
	s.loaded = true
	return nil
}
