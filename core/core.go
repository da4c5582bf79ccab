// Package core has the offline cache manager: activation rebuilds the named
// cache from the manifest and intercept answers requests cache-first.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
)

// Options configure a Manager.
type Options struct {
	CacheName    string                      // Reserved cache name; defaults to schema.DefaultCacheName
	Workers      int                         // Concurrent fetches during activation; defaults to 1
	VerifyHashes bool                        // Check MD5 hash tokens against fetched bodies
	Recorder     contract.ActivationRecorder // Optional activation history
}

// Manager owns one named cache of request/response pairs.
// Activate rebuilds it and Intercept serves from it.
type Manager struct {
	store    contract.CacheStore
	fetcher  contract.Fetcher
	manifest schema.Manifest
	opts     Options

	runMu sync.Mutex // Serializes activations

	mu         sync.RWMutex
	state      schema.ManagerState
	gate       chan struct{} // Closed while no activation is pending
	pending    int
	lastResult *schema.ActivationResult
	lastErr    error
	lastAt     time.Time
}

// New validates its inputs and returns an uninitialized Manager.
func New(store contract.CacheStore, fetcher contract.Fetcher, manifest schema.Manifest, opts Options) (*Manager, error) {
	if store == nil {
		return nil, errors.New("a cache store is required")
	}
	if fetcher == nil {
		return nil, errors.New("an origin fetcher is required")
	}
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	if opts.CacheName == "" {
		opts.CacheName = schema.DefaultCacheName
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}

	gate := make(chan struct{})
	close(gate)
	return &Manager{
		store:    store,
		fetcher:  fetcher,
		manifest: manifest,
		opts:     opts,
		state:    schema.StateUninitialized,
		gate:     gate,
	}, nil
}

// CacheName returns the reserved cache name.
func (m *Manager) CacheName() string {
	return m.opts.CacheName
}

// Manifest returns the manifest the manager activates from.
func (m *Manager) Manifest() schema.Manifest {
	return m.manifest
}

// State returns the current lifecycle state.
func (m *Manager) State() schema.ManagerState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Status returns the state together with the outcome of the last activation.
func (m *Manager) Status() schema.ManagerStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status := schema.ManagerStatus{
		State:        m.state,
		CacheName:    m.opts.CacheName,
		ManifestSize: len(m.manifest),
	}
	if m.lastResult != nil {
		result := *m.lastResult
		status.LastResult = &result
	}
	if m.lastErr != nil {
		status.LastError = m.lastErr.Error()
	}
	if !m.lastAt.IsZero() {
		at := m.lastAt
		status.LastFinishedAt = &at
	}
	return status
}

// WaitReady blocks until no activation is pending. It returns nil when the
// manager is ready and ErrNotReady otherwise.
func (m *Manager) WaitReady(ctx context.Context) error {
	if err := m.waitGate(ctx); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == schema.StateReady {
		return nil
	}
	if m.lastErr != nil {
		return fmt.Errorf("%w: last activation failed: %w", ErrNotReady, m.lastErr)
	}
	return fmt.Errorf("%w: no activation has completed", ErrNotReady)
}

// waitGate blocks while an activation is pending.
func (m *Manager) waitGate(ctx context.Context) error {
	m.mu.RLock()
	gate := m.gate
	m.mu.RUnlock()

	select {
	case <-gate:
		return nil
	default:
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNotReady, ctx.Err())
	}
}

// enterActivating closes the gate for one more pending activation.
func (m *Manager) enterActivating() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pending == 0 {
		m.gate = make(chan struct{})
	}
	m.pending++
	m.state = schema.StateActivating
}

// exitActivating records the outcome and reopens the gate once nothing is pending.
func (m *Manager) exitActivating(result schema.ActivationResult, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastAt = time.Now()
	m.lastErr = err
	if err == nil {
		m.lastResult = &result
	}

	m.pending--
	if m.pending > 0 {
		return
	}
	if err == nil {
		m.state = schema.StateReady
	} else {
		m.state = schema.StateUninitialized
	}
	close(m.gate)
}
