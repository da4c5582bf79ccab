package core

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/huangsam/swcache/schema"
)

// md5Token matches hash tokens that are MD5 hex digests.
var md5Token = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// Activate deletes every cache in the store and repopulates the reserved
// cache from the manifest. Intercepts wait until it returns. On failure the
// cache is left empty and the manager is uninitialized.
func (m *Manager) Activate(ctx context.Context) (schema.ActivationResult, error) {
	m.enterActivating()
	return m.activate(ctx)
}

// ActivateInBackground closes the gate before returning and runs the
// activation in its own goroutine. The returned channel yields the error
// (nil on success) and is then closed.
func (m *Manager) ActivateInBackground(ctx context.Context) <-chan error {
	m.enterActivating()
	done := make(chan error, 1)
	go func() {
		defer close(done)
		_, err := m.activate(ctx)
		done <- err
	}()
	return done
}

// activate runs one activation for a caller that already entered the gate.
func (m *Manager) activate(ctx context.Context) (result schema.ActivationResult, err error) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	defer func() { m.exitActivating(result, err) }()

	start := time.Now()
	log := Logger().With(
		zap.String("cache", m.opts.CacheName),
		zap.String("trigger", triggerFrom(ctx)),
		zap.Int("manifest_entries", len(m.manifest)),
	)
	log.Info("activation started")

	runID := m.beginRun(start)
	result, err = m.rebuild(ctx)
	result.CacheName = m.opts.CacheName
	result.ManifestEntries = len(m.manifest)
	result.Duration = time.Since(start)
	m.endRun(runID, result, err)

	if err != nil {
		log.Error("activation failed", zap.Error(err), zap.Duration("duration", result.Duration))
		return result, err
	}
	log.Info("activation finished",
		zap.Int("cached_entries", result.CachedEntries),
		zap.Int64("cached_bytes", result.CachedBytes),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// rebuild performs the delete-all, create, fetch and put chain.
func (m *Manager) rebuild(ctx context.Context) (schema.ActivationResult, error) {
	var result schema.ActivationResult

	// --- 1. Enumerate and delete every existing cache ---
	names, err := m.store.Keys(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: enumerate caches: %w", ErrCacheStore, err)
	}
	for _, name := range names {
		if _, err := m.store.Delete(ctx, name); err != nil {
			return result, fmt.Errorf("%w: delete cache %q: %w", ErrCacheStore, name, err)
		}
		Logger().Debug("deleted cache", zap.String("cache", name))
	}
	result.DeletedCaches = names

	// --- 2. Create the fresh cache ---
	cache, err := m.store.Open(ctx, m.opts.CacheName)
	if err != nil {
		return result, fmt.Errorf("%w: open cache %q: %w", ErrCacheStore, m.opts.CacheName, err)
	}

	// --- 3. Fetch every manifest resource ---
	entries, err := m.fetchAll(ctx)
	if err != nil {
		return result, err
	}

	// --- 4. Insert all pairs at once ---
	if err := cache.PutAll(ctx, entries); err != nil {
		return result, fmt.Errorf("%w: put %d entries into %q: %w", ErrCacheStore, len(entries), m.opts.CacheName, err)
	}

	result.CachedEntries = len(entries)
	for _, entry := range entries {
		result.CachedBytes += int64(len(entry.Response.Body))
	}
	return result, nil
}

// fetchAll fetches every manifest path with at most Workers requests in
// flight. The first failure cancels the rest.
func (m *Manager) fetchAll(ctx context.Context) ([]schema.CacheEntry, error) {
	paths := m.manifest.Paths()
	entries := make([]schema.CacheEntry, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)

	var mu sync.Mutex
	fetched := 0
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrManifestFetch, path, err)
			}
			entry, err := m.fetchOne(gctx, path)
			if err != nil {
				Logger().Warn("manifest fetch failed", zap.String("path", path), zap.Error(err))
				return err
			}
			entries[i] = entry

			mu.Lock()
			fetched++
			Logger().Debug("fetched resource",
				zap.String("path", path),
				zap.Int("status", entry.Response.Status),
				zap.Int("done", fetched),
				zap.Int("total", len(paths)),
			)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

// fetchOne fetches a single manifest path and checks it is cacheable.
func (m *Manager) fetchOne(ctx context.Context, path string) (schema.CacheEntry, error) {
	key := schema.NormalizeKey(path)
	hash := m.manifest[path]

	resp, err := m.fetcher.Fetch(ctx, schema.GetRequest(key))
	if err != nil {
		return schema.CacheEntry{}, fmt.Errorf("%w: %s: %w", ErrManifestFetch, path, err)
	}
	if resp == nil {
		return schema.CacheEntry{}, fmt.Errorf("%w: %s: origin returned no response", ErrManifestFetch, path)
	}
	if !resp.OK() {
		return schema.CacheEntry{}, fmt.Errorf("%w: %s: status %d", ErrManifestFetch, path, resp.Status)
	}
	if m.opts.VerifyHashes {
		if err := verifyHash(hash, resp.Body); err != nil {
			return schema.CacheEntry{}, fmt.Errorf("%w: %s: %w", ErrManifestFetch, path, err)
		}
	}
	return schema.CacheEntry{Key: key, Hash: hash, Response: resp}, nil
}

// verifyHash compares an MD5 hash token with the body digest. Tokens that
// are not MD5 hex digests are opaque version strings and always pass.
func verifyHash(token string, body []byte) error {
	if !md5Token.MatchString(token) {
		return nil
	}
	sum := md5.Sum(body)
	got := hex.EncodeToString(sum[:])
	if !strings.EqualFold(got, token) {
		return fmt.Errorf("%w: want %s, got %s", ErrHashMismatch, strings.ToLower(token), got)
	}
	return nil
}

// beginRun records the start of an activation; 0 means no record.
func (m *Manager) beginRun(start time.Time) int64 {
	if m.opts.Recorder == nil {
		return 0
	}
	runID, err := m.opts.Recorder.BeginActivation(m.opts.CacheName, start, len(m.manifest))
	if err != nil {
		Logger().Warn("activation tracking initialization failed", zap.String("cache", m.opts.CacheName), zap.Error(err))
		return 0
	}
	return runID
}

// endRun records the outcome of an activation started by beginRun.
func (m *Manager) endRun(runID int64, result schema.ActivationResult, activationErr error) {
	if m.opts.Recorder == nil || runID == 0 {
		return
	}
	if err := m.opts.Recorder.EndActivation(runID, time.Now(), result, activationErr); err != nil {
		Logger().Warn("activation tracking finalization failed", zap.Int64("run_id", runID), zap.Error(err))
	}
}
