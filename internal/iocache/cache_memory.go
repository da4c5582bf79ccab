package iocache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
)

// MemoryStore keeps named caches in process memory. It backs the none backend.
type MemoryStore struct {
	mu     sync.RWMutex
	caches map[string]*memoryCache
	runs   []schema.ActivationRecord
	nextID int64
	now    func() time.Time
}

var (
	_ contract.CacheStore         = &MemoryStore{} // Compile-time check
	_ contract.ActivationRecorder = &MemoryStore{} // Compile-time check
	_ contract.Cache              = &memoryCache{} // Compile-time check
)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		caches: make(map[string]*memoryCache),
		now:    time.Now,
	}
}

// Keys returns the cache names in sorted order.
func (s *MemoryStore) Keys(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedNames(), nil
}

func (s *MemoryStore) sortedNames() []string {
	names := make([]string, 0, len(s.caches))
	for name := range s.caches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a cache with the given name exists.
func (s *MemoryStore) Has(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.caches[name]
	return ok, nil
}

// Delete removes the cache and its entries.
func (s *MemoryStore) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.caches[name]
	if !ok {
		return false, nil
	}
	c.entries = make(map[string]memoryEntry)
	delete(s.caches, name)
	return true, nil
}

// Open returns the named cache, creating it when it does not exist.
func (s *MemoryStore) Open(_ context.Context, name string) (contract.Cache, error) {
	if name == "" {
		return nil, errors.New("cache name cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.caches[name]; ok {
		return c, nil
	}
	c := &memoryCache{store: s, name: name, entries: make(map[string]memoryEntry)}
	s.caches[name] = c
	return c, nil
}

// Match looks the key up across every cache, in cache name order.
func (s *MemoryStore) Match(_ context.Context, key string) (*schema.Response, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, name := range s.sortedNames() {
		if e, ok := s.caches[name].entries[key]; ok {
			return e.response.Clone(), true, nil
		}
	}
	return nil, false, nil
}

// Entries lists stored entries. An empty name lists every cache.
func (s *MemoryStore) Entries(_ context.Context, name string) ([]schema.EntryInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []schema.EntryInfo{}
	for _, cacheName := range s.sortedNames() {
		if name != "" && cacheName != name {
			continue
		}
		c := s.caches[cacheName]
		for _, key := range c.sortedKeys() {
			e := c.entries[key]
			out = append(out, schema.EntryInfo{
				CacheName:   cacheName,
				Key:         key,
				Hash:        e.hash,
				Status:      e.response.Status,
				ContentType: e.response.ContentType(),
				SizeBytes:   int64(len(e.response.Body)),
				StoredAt:    e.response.StoredAt,
			})
		}
	}
	return out, nil
}

// GetStatus summarizes the store contents.
func (s *MemoryStore) GetStatus() (schema.CacheStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status := schema.CacheStatus{
		Backend:    string(schema.NoneBackend),
		Connected:  true,
		CacheNames: s.sortedNames(),
	}
	for _, c := range s.caches {
		for _, e := range c.entries {
			status.TotalEntries++
			status.TotalBytes += int64(len(e.response.Body))
			stored := e.response.StoredAt
			if status.LastEntryTime.IsZero() || stored.After(status.LastEntryTime) {
				status.LastEntryTime = stored
			}
			if status.OldestEntryTime.IsZero() || stored.Before(status.OldestEntryTime) {
				status.OldestEntryTime = stored
			}
		}
	}
	status.TableSizeBytes = status.TotalBytes
	return status, nil
}

// Close drops everything held in memory.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caches = make(map[string]*memoryCache)
	return nil
}

// BeginActivation records the start of an activation.
func (s *MemoryStore) BeginActivation(cacheName string, startTime time.Time, manifestEntries int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.runs = append(s.runs, schema.ActivationRecord{
		RunID:           s.nextID,
		CacheName:       cacheName,
		StartTime:       startTime,
		ManifestEntries: manifestEntries,
		Outcome:         schema.OutcomeRunning,
	})
	return s.nextID, nil
}

// EndActivation records how an activation finished.
func (s *MemoryStore) EndActivation(runID int64, endTime time.Time, result schema.ActivationResult, activationErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].RunID != runID {
			continue
		}
		run := &s.runs[i]
		run.EndTime = &endTime
		run.CachedEntries = result.CachedEntries
		run.CachedBytes = result.CachedBytes
		run.Outcome = schema.OutcomeSucceeded
		if activationErr != nil {
			run.Outcome = schema.OutcomeFailed
			run.ErrorMessage = activationErr.Error()
		}
		return nil
	}
	return fmt.Errorf("activation run %d not found", runID)
}

// ListActivations returns the most recent runs first. A limit of 0 or less returns every run.
func (s *MemoryStore) ListActivations(limit int) ([]schema.ActivationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]schema.ActivationRecord, 0, len(s.runs))
	for i := len(s.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.runs[i])
	}
	return out, nil
}

type memoryEntry struct {
	hash     string
	response *schema.Response
}

// memoryCache is one named cache inside a MemoryStore.
type memoryCache struct {
	store   *MemoryStore
	name    string
	entries map[string]memoryEntry
}

// Name returns the cache name.
func (c *memoryCache) Name() string {
	return c.name
}

// Match looks the key up in this cache only.
func (c *memoryCache) Match(_ context.Context, key string) (*schema.Response, bool, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return e.response.Clone(), true, nil
}

// Put stores a single entry.
func (c *memoryCache) Put(ctx context.Context, entry schema.CacheEntry) error {
	return c.PutAll(ctx, []schema.CacheEntry{entry})
}

// PutAll stores every entry, or none of them when one is invalid.
func (c *memoryCache) PutAll(_ context.Context, entries []schema.CacheEntry) error {
	for _, e := range entries {
		if e.Response == nil {
			return fmt.Errorf("entry %q has no response", e.Key)
		}
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	now := c.store.now()
	for _, e := range entries {
		resp := e.Response.Clone()
		resp.Source = ""
		if resp.StoredAt.IsZero() {
			resp.StoredAt = now
		}
		c.entries[e.Key] = memoryEntry{hash: e.Hash, response: resp}
	}
	// The cache may have been deleted since Open
	if _, ok := c.store.caches[c.name]; !ok {
		c.store.caches[c.name] = c
	}
	return nil
}

// Keys returns the keys stored in this cache.
func (c *memoryCache) Keys(_ context.Context) ([]string, error) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return c.sortedKeys(), nil
}

func (c *memoryCache) sortedKeys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
