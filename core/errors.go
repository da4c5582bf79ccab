package core

import "errors"

// Sentinel errors. Returned errors wrap these with the offending path.
var (
	// ErrManifestFetch means a manifest resource could not be fetched during activation.
	ErrManifestFetch = errors.New("manifest fetch failed")

	// ErrHashMismatch means a fetched body did not match its manifest hash.
	// It is always reported together with ErrManifestFetch.
	ErrHashMismatch = errors.New("content hash mismatch")

	// ErrCacheStore means the cache store rejected an enumerate, delete, create or put.
	ErrCacheStore = errors.New("cache store failed")

	// ErrInterceptFetch means the network fallback of an intercept failed.
	ErrInterceptFetch = errors.New("intercept fetch failed")

	// ErrNotReady means the caller stopped waiting for an activation to finish.
	ErrNotReady = errors.New("cache manager is not ready")
)
