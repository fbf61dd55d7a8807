// Package runstore tracks bulk evaluation runs and their per-record results
// in SQLite, MySQL or PostgreSQL.
package runstore

import (
	"sync"

	"github.com/huangsam/scorecard/internal/contract"
)

// StoreManager holds the process-wide RunStore.
type StoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	runs         contract.RunStore
}

var _ contract.RunManager = &StoreManager{} // Compile-time check

// GetRunStore returns the RunStore, or nil when tracking was never initialized.
func (mgr *StoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
