package iocache

import (
	"context"
	"errors"
	"fmt"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/internal/parquet"
)

// ExecuteExport writes stored entries and activation runs to Parquet files
// named after outputFile.
func ExecuteExport(ctx context.Context, mgr contract.StoreManager, outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	store := mgr.GetCacheStore()
	if store == nil {
		return errors.New("no cache store is configured")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get cache status: %w", err)
	}

	var runs []parquet.ActivationRun
	if recorder := mgr.GetActivationRecorder(); recorder != nil {
		records, err := recorder.ListActivations(0)
		if err != nil {
			return fmt.Errorf("failed to retrieve activation runs: %w", err)
		}
		runs = parquet.ConvertActivationRecords(records)
	}

	if status.TotalEntries == 0 && len(runs) == 0 {
		return errors.New("no cache data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)

	entries, err := store.Entries(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to retrieve cache entries: %w", err)
	}
	parquetEntries := parquet.ConvertEntryInfos(entries)

	entriesFile := outputFile + ".cache_entries.parquet"
	if err := parquet.WriteCacheEntriesParquet(parquetEntries, entriesFile); err != nil {
		return fmt.Errorf("failed to write cache entries: %w", err)
	}
	fmt.Printf("Exported %d cache entries to: %s\n", len(parquetEntries), entriesFile)

	runsFile := outputFile + ".activation_runs.parquet"
	if err := parquet.WriteActivationRunsParquet(runs, runsFile); err != nil {
		return fmt.Errorf("failed to write activation runs: %w", err)
	}
	fmt.Printf("Exported %d activation runs to: %s\n", len(runs), runsFile)

	return nil
}
