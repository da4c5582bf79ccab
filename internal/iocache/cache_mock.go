package iocache

import (
	"context"
	"time"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetCacheStore implements the StoreManager interface.
func (m *MockStoreManager) GetCacheStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetActivationRecorder implements the StoreManager interface.
func (m *MockStoreManager) GetActivationRecorder() contract.ActivationRecorder {
	ret := m.Called()
	recorder, _ := ret.Get(0).(contract.ActivationRecorder)
	return recorder
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Keys implements the CacheStore interface.
func (m *MockCacheStore) Keys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

// Has implements the CacheStore interface.
func (m *MockCacheStore) Has(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// Delete implements the CacheStore interface.
func (m *MockCacheStore) Delete(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// Open implements the CacheStore interface.
func (m *MockCacheStore) Open(ctx context.Context, name string) (contract.Cache, error) {
	args := m.Called(ctx, name)
	cache, _ := args.Get(0).(contract.Cache)
	return cache, args.Error(1)
}

// Match implements the CacheStore interface.
func (m *MockCacheStore) Match(ctx context.Context, key string) (*schema.Response, bool, error) {
	args := m.Called(ctx, key)
	resp, _ := args.Get(0).(*schema.Response)
	return resp, args.Bool(1), args.Error(2)
}

// Entries implements the CacheStore interface.
func (m *MockCacheStore) Entries(ctx context.Context, name string) ([]schema.EntryInfo, error) {
	args := m.Called(ctx, name)
	entries, _ := args.Get(0).([]schema.EntryInfo)
	return entries, args.Error(1)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockCache is a mock implementation of Cache for testing.
type MockCache struct {
	mock.Mock
}

var _ contract.Cache = &MockCache{} // Compile-time check

// Name implements the Cache interface.
func (m *MockCache) Name() string {
	args := m.Called()
	return args.String(0)
}

// Match implements the Cache interface.
func (m *MockCache) Match(ctx context.Context, key string) (*schema.Response, bool, error) {
	args := m.Called(ctx, key)
	resp, _ := args.Get(0).(*schema.Response)
	return resp, args.Bool(1), args.Error(2)
}

// Put implements the Cache interface.
func (m *MockCache) Put(ctx context.Context, entry schema.CacheEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// PutAll implements the Cache interface.
func (m *MockCache) PutAll(ctx context.Context, entries []schema.CacheEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

// Keys implements the Cache interface.
func (m *MockCache) Keys(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

// MockActivationRecorder is a mock implementation of ActivationRecorder for testing.
type MockActivationRecorder struct {
	mock.Mock
}

var _ contract.ActivationRecorder = &MockActivationRecorder{} // Compile-time check

// BeginActivation implements the ActivationRecorder interface.
func (m *MockActivationRecorder) BeginActivation(cacheName string, startTime time.Time, manifestEntries int) (int64, error) {
	args := m.Called(cacheName, startTime, manifestEntries)
	return args.Get(0).(int64), args.Error(1)
}

// EndActivation implements the ActivationRecorder interface.
func (m *MockActivationRecorder) EndActivation(runID int64, endTime time.Time, result schema.ActivationResult, activationErr error) error {
	args := m.Called(runID, endTime, result, activationErr)
	return args.Error(0)
}

// ListActivations implements the ActivationRecorder interface.
func (m *MockActivationRecorder) ListActivations(limit int) ([]schema.ActivationRecord, error) {
	args := m.Called(limit)
	records, _ := args.Get(0).([]schema.ActivationRecord)
	return records, args.Error(1)
}
