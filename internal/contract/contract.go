// Package contract provides interfaces and shared utilities for swcache's internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/swcache/schema"
)

// StoreManager defines the interface for reaching the configured stores.
// This allows the store layer to be mocked for testing.
type StoreManager interface {
	GetCacheStore() CacheStore
	GetActivationRecorder() ActivationRecorder
}

// CacheStore is the cache storage primitive: a set of named caches holding
// request key -> response pairs.
type CacheStore interface {
	// Keys returns the names of all existing caches.
	Keys(ctx context.Context) ([]string, error)

	// Has reports whether a cache with the given name exists.
	Has(ctx context.Context, name string) (bool, error)

	// Delete removes a cache and all of its entries. It reports whether the cache existed.
	Delete(ctx context.Context, name string) (bool, error)

	// Open returns the named cache, creating it empty if needed.
	Open(ctx context.Context, name string) (Cache, error)

	// Match looks a key up across all caches.
	Match(ctx context.Context, key string) (*schema.Response, bool, error)

	// Entries lists the entries of a cache without their bodies.
	Entries(ctx context.Context, name string) ([]schema.EntryInfo, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.CacheStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// Cache is a single named cache.
type Cache interface {
	Name() string

	// Match returns the stored response for key.
	Match(ctx context.Context, key string) (*schema.Response, bool, error)

	// Put inserts or replaces one entry.
	Put(ctx context.Context, entry schema.CacheEntry) error

	// PutAll inserts all entries or none of them.
	PutAll(ctx context.Context, entries []schema.CacheEntry) error

	// Keys returns the stored keys in sorted order.
	Keys(ctx context.Context) ([]string, error)
}

// ActivationRecorder persists the history of activation runs.
type ActivationRecorder interface {
	// BeginActivation records the start of a run and returns its ID.
	BeginActivation(cacheName string, startTime time.Time, manifestEntries int) (int64, error)

	// EndActivation records the end of a run. activationErr is nil on success.
	EndActivation(runID int64, endTime time.Time, result schema.ActivationResult, activationErr error) error

	// ListActivations returns the most recent runs first, at most limit of them.
	ListActivations(limit int) ([]schema.ActivationRecord, error)
}

// Fetcher is the network fetch primitive. Transport failures are returned as
// errors; HTTP-level failures are ordinary responses with a non-2xx status.
type Fetcher interface {
	Fetch(ctx context.Context, req schema.Request) (*schema.Response, error)
}
