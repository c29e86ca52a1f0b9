package recordstore

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// MockRecordSource is a mock implementation of RecordSource for testing.
type MockRecordSource struct {
	mock.Mock
}

var _ contract.RecordSource = &MockRecordSource{} // Compile-time check

// Load implements the RecordSource interface.
func (m *MockRecordSource) Load(ctx context.Context) ([]schema.EvaluationRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.EvaluationRecord)
	return records, args.Error(1)
}

// Append implements the RecordSource interface.
func (m *MockRecordSource) Append(ctx context.Context, records ...schema.EvaluationRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// MockRecordStore is a mock implementation of RecordStore for testing.
type MockRecordStore struct {
	mock.Mock
}

var _ contract.RecordStore = &MockRecordStore{} // Compile-time check

// GetAll implements the RecordStore interface.
func (m *MockRecordStore) GetAll(ctx context.Context) ([]schema.EvaluationRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.EvaluationRecord)
	return records, args.Error(1)
}

// GetByID implements the RecordStore interface.
func (m *MockRecordStore) GetByID(ctx context.Context, id string) (schema.EvaluationRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(schema.EvaluationRecord)
	return record, args.Error(1)
}

// Append implements the RecordStore interface.
func (m *MockRecordStore) Append(ctx context.Context, records ...schema.EvaluationRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// FakeClock is a Clock whose reading only moves when a test advances it.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

var _ contract.Clock = &FakeClock{} // Compile-time check

// NewFakeClock returns a clock frozen at start.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now implements the Clock interface.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
