// Package parquet provides data structures and functions for exporting swcache
// store data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/swcache/schema"
	"github.com/parquet-go/parquet-go"
)

// ActivationRun represents a single activation run.
// This struct maps to the swcache_activation_runs database table.
type ActivationRun struct {
	// RunID is the unique identifier for this activation
	RunID int64 `parquet:"run_id,snappy"`

	// CacheName is the named cache that was rebuilt
	CacheName string `parquet:"cache_name,snappy"`

	// StartTime is when the activation began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the activation finished (nullable while running)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// DurationMs is the run duration in milliseconds (nullable while running)
	DurationMs *int64 `parquet:"duration_ms,optional,snappy"`

	ManifestEntries int32  `parquet:"manifest_entries,snappy"`
	CachedEntries   int32  `parquet:"cached_entries,snappy"`
	CachedBytes     int64  `parquet:"cached_bytes,snappy"`
	Outcome         string `parquet:"outcome,snappy"`

	// ErrorMessage is set for failed runs
	ErrorMessage *string `parquet:"error_message,optional,snappy"`
}

// CacheEntry represents one stored response without its body.
// This struct maps to the swcache_cache_entries database table.
type CacheEntry struct {
	CacheName   string    `parquet:"cache_name,snappy"`
	CacheKey    string    `parquet:"cache_key,snappy"`
	ContentHash string    `parquet:"content_hash,snappy"`
	Status      int32     `parquet:"status,snappy"`
	ContentType string    `parquet:"content_type,snappy"`
	SizeBytes   int64     `parquet:"size_bytes,snappy"`
	StoredAt    time.Time `parquet:"stored_at,snappy"`
}

// WriteActivationRunsParquet writes a slice of ActivationRun structs to a Parquet file.
func WriteActivationRunsParquet(data []ActivationRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteCacheEntriesParquet writes a slice of CacheEntry structs to a Parquet file.
func WriteCacheEntriesParquet(data []CacheEntry, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet writes rows using a schema inferred from T's struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertActivationRecords converts schema.ActivationRecord to ActivationRun for Parquet export.
func ConvertActivationRecords(records []schema.ActivationRecord) []ActivationRun {
	result := make([]ActivationRun, len(records))
	for i, record := range records {
		run := ActivationRun{
			RunID:           record.RunID,
			CacheName:       record.CacheName,
			StartTime:       record.StartTime,
			EndTime:         record.EndTime,
			ManifestEntries: int32(record.ManifestEntries),
			CachedEntries:   int32(record.CachedEntries),
			CachedBytes:     record.CachedBytes,
			Outcome:         string(record.Outcome),
		}
		if record.EndTime != nil {
			ms := record.Duration().Milliseconds()
			run.DurationMs = &ms
		}
		if record.ErrorMessage != "" {
			msg := record.ErrorMessage
			run.ErrorMessage = &msg
		}
		result[i] = run
	}
	return result
}

// ConvertEntryInfos converts schema.EntryInfo to CacheEntry for Parquet export.
func ConvertEntryInfos(entries []schema.EntryInfo) []CacheEntry {
	result := make([]CacheEntry, len(entries))
	for i, entry := range entries {
		result[i] = CacheEntry{
			CacheName:   entry.CacheName,
			CacheKey:    entry.Key,
			ContentHash: entry.Hash,
			Status:      int32(entry.Status),
			ContentType: entry.ContentType,
			SizeBytes:   entry.SizeBytes,
			StoredAt:    entry.StoredAt,
		}
	}
	return result
}
