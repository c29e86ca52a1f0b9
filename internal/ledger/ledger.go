// Package ledger is for persisting revival attempt events.
package ledger

import (
	"sync"

	"github.com/promptgraveyard/graveyard/internal/contract"
)

// LedgerStoreManager manages the process-wide LedgerStore instance.
type LedgerStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	ledger       contract.LedgerStore
}

var _ contract.LedgerManager = &LedgerStoreManager{} // Compile-time check

// GetLedgerStore returns the configured LedgerStore.
func (mgr *LedgerStoreManager) GetLedgerStore() contract.LedgerStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.ledger
}
