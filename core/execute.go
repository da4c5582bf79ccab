package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/internal/manifest"
	"github.com/huangsam/swcache/internal/origin"
	"github.com/huangsam/swcache/internal/outwriter"
	"github.com/huangsam/swcache/schema"
)

// ExecutorFunc defines the function signature for executing commands against a manager.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// NewFromConfig loads the manifest, builds the origin fetcher and returns a
// Manager over the configured cache store.
func NewFromConfig(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*Manager, error) {
	if err := cfg.RequireRuntime(); err != nil {
		return nil, err
	}
	store := mgr.GetCacheStore()
	if store == nil {
		return nil, errors.New("no cache store is configured")
	}

	loaded, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return nil, err
	}
	fetcher, err := origin.New(ctx, cfg.Origin, origin.Options{
		Timeout:    cfg.OriginTimeout,
		AWSRegion:  cfg.AWSRegion,
		AWSProfile: cfg.AWSProfile,
	})
	if err != nil {
		return nil, err
	}

	return New(store, fetcher, loaded.Manifest, Options{
		CacheName:    cfg.ResolveCacheName(loaded.CacheName),
		Workers:      cfg.Workers,
		VerifyHashes: cfg.VerifyHashes,
		Recorder:     mgr.GetActivationRecorder(),
	})
}

// ExecuteActivate rebuilds the cache once and prints the activation summary.
// It serves as the main entry point for the 'activate' command.
func ExecuteActivate(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	m, err := NewFromConfig(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	result, err := m.Activate(WithTrigger(ctx, TriggerCLI))
	if err != nil {
		return fmt.Errorf("activation of %q failed: %w", m.CacheName(), err)
	}
	return outwriter.WriteActivation(result, cfg)
}

// ExecuteGet intercepts one request for path against the stored cache. The
// cache is not rebuilt, so a fresh store answers every path from the origin.
// With writeBody the raw body goes to stdout (or the output file) instead of
// the lookup summary.
func ExecuteGet(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager, path string, writeBody bool) error {
	m, err := NewFromConfig(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	start := time.Now()
	resp, err := m.Intercept(ctx, schema.GetRequest(path))
	if err != nil {
		return err
	}
	if writeBody {
		return writeResponseBody(cfg.OutputFile, resp.Body)
	}
	return outwriter.WriteLookup(schema.NormalizeKey(path), resp, cfg, time.Since(start))
}

// writeResponseBody copies a response body to stdout or the output file.
func writeResponseBody(outputFile string, body []byte) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}
	_, err = file.Write(body)
	return err
}
