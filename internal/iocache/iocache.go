// Package iocache is for caching I/O calls and keeping report history.
package iocache

import (
	"sync"

	"github.com/hotspotlabs/hotreport/internal/contract"
)

// CacheStoreManager manages the activity cache and the run history stores.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	activity     contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager returns a manager over the given stores; either may be nil.
func NewCacheStoreManager(activity contract.CacheStore, runs contract.RunStore) *CacheStoreManager {
	return &CacheStoreManager{activity: activity, runs: runs}
}

// GetActivityStore returns the activity CacheStore.
func (mgr *CacheStoreManager) GetActivityStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.activity
}

// GetRunStore returns the run history store.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
