package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// MemoryStore keeps ledger events in process memory. It backs the none
// backend and tests: revival outcomes are still adjudicated and reported,
// but history does not survive the process.
type MemoryStore struct {
	mu     sync.Mutex
	events []schema.LedgerEvent
}

var _ contract.LedgerStore = &MemoryStore{} // Compile-time check

// NewMemoryStore returns an empty in-memory event store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AppendEvent stores a deep copy of the event at the end of the log.
func (m *MemoryStore) AppendEvent(ctx context.Context, event schema.LedgerEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, cloneEvent(event))
	return nil
}

// LoadEvents returns a deep copy of every stored event in append order.
func (m *MemoryStore) LoadEvents(ctx context.Context) ([]schema.LedgerEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]schema.LedgerEvent, len(m.events))
	for i, ev := range m.events {
		events[i] = cloneEvent(ev)
	}
	return events, nil
}

// GetStatus reports event counts. Connected stays false because nothing
// is durably connected.
func (m *MemoryStore) GetStatus() (schema.LedgerStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	status := schema.LedgerStatus{Backend: string(schema.NoneBackend)}
	status.TotalEvents = len(m.events)

	attempts := make(map[string]struct{}, len(m.events))
	var oldest, last time.Time
	for i, ev := range m.events {
		attempts[ev.AttemptID] = struct{}{}
		if i == 0 || ev.Time.Before(oldest) {
			oldest = ev.Time
		}
		if i == 0 || ev.Time.After(last) {
			last = ev.Time
		}
	}
	status.TotalAttempts = len(attempts)
	status.OldestEventTime = oldest
	status.LastEventTime = last
	return status, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}

// cloneEvent deep-copies an event so callers cannot reach shared state.
func cloneEvent(event schema.LedgerEvent) schema.LedgerEvent {
	if event.Attempt != nil {
		attempt := event.Attempt.Clone()
		event.Attempt = &attempt
	}
	return event
}
