package ledger

import (
	"context"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
	"github.com/stretchr/testify/mock"
)

// MockLedgerManager is a mock implementation of LedgerManager for testing.
type MockLedgerManager struct {
	mock.Mock
}

var _ contract.LedgerManager = &MockLedgerManager{} // Compile-time check

// GetLedgerStore implements the LedgerManager interface.
func (m *MockLedgerManager) GetLedgerStore() contract.LedgerStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.LedgerStore)
	return store
}

// MockLedgerStore is a mock implementation of LedgerStore for testing.
type MockLedgerStore struct {
	mock.Mock
}

var _ contract.LedgerStore = &MockLedgerStore{} // Compile-time check

// AppendEvent implements the LedgerStore interface.
func (m *MockLedgerStore) AppendEvent(ctx context.Context, event schema.LedgerEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// LoadEvents implements the LedgerStore interface.
func (m *MockLedgerStore) LoadEvents(ctx context.Context) ([]schema.LedgerEvent, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]schema.LedgerEvent)
	return events, args.Error(1)
}

// GetStatus implements the LedgerStore interface.
func (m *MockLedgerStore) GetStatus() (schema.LedgerStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.LedgerStatus), args.Error(1)
}

// Close implements the LedgerStore interface.
func (m *MockLedgerStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
