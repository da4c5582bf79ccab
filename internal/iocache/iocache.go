// Package iocache is for persisting named caches and activation history.
package iocache

import (
	"sync"

	"github.com/huangsam/swcache/internal/contract"
)

// CacheStoreManager holds the process-wide store instances.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	store        contract.CacheStore
	recorder     contract.ActivationRecorder
}

var _ contract.StoreManager = &CacheStoreManager{} // Compile-time check

// GetCacheStore returns the CacheStore.
func (mgr *CacheStoreManager) GetCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.store
}

// GetActivationRecorder returns the ActivationRecorder.
func (mgr *CacheStoreManager) GetActivationRecorder() contract.ActivationRecorder {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.recorder
}
