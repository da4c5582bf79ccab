package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/internal/outwriter"
)

// errNoStore is returned when a cache command runs without a configured store.
var errNoStore = errors.New("no cache store is configured")

// ExecuteCacheStatus prints the store statistics.
func ExecuteCacheStatus(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	store := mgr.GetCacheStore()
	if store == nil {
		return errNoStore
	}
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get cache status: %w", err)
	}
	return outwriter.WriteCacheStatus(status, cfg)
}

// ExecuteCacheList prints the stored entries of one cache, or of every cache
// when cfg.CacheName is empty.
func ExecuteCacheList(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	store := mgr.GetCacheStore()
	if store == nil {
		return errNoStore
	}
	entries, err := store.Entries(ctx, cfg.CacheName)
	if err != nil {
		return fmt.Errorf("failed to list cache entries: %w", err)
	}
	return outwriter.WriteEntries(entries, cfg)
}

// ExecuteCacheHistory prints the most recent activation runs.
func ExecuteCacheHistory(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	recorder := mgr.GetActivationRecorder()
	if recorder == nil {
		return errors.New("activation history is not available for this backend")
	}
	records, err := recorder.ListActivations(cfg.Limit)
	if err != nil {
		return fmt.Errorf("failed to list activation history: %w", err)
	}
	return outwriter.WriteHistory(records, cfg)
}
