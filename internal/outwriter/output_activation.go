package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteActivation prints an activation summary, dispatching based on the output format configured.
func WriteActivation(result schema.ActivationResult, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeActivationJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeActivationCSV(w, result)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported("activation summaries")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeActivationTable(w, result, cfg)
		}, "Wrote table")
	}
}

// writeActivationJSON writes the result with its duration in milliseconds.
func writeActivationJSON(w io.Writer, result schema.ActivationResult) error {
	type jsonActivation struct {
		schema.ActivationResult
		DurationMS int64 `json:"duration_ms"`
	}
	return writeJSON(w, jsonActivation{ActivationResult: result, DurationMS: result.Duration.Milliseconds()})
}

// writeActivationCSV writes the result as a single CSV record.
func writeActivationCSV(w io.Writer, result schema.ActivationResult) error {
	header := []string{"cache_name", "deleted_caches", "manifest_entries", "cached_entries", "cached_bytes", "duration_ms"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		return csvWriter.Write([]string{
			result.CacheName,
			strings.Join(result.DeletedCaches, "|"),
			strconv.Itoa(result.ManifestEntries),
			strconv.Itoa(result.CachedEntries),
			strconv.FormatInt(result.CachedBytes, 10),
			strconv.FormatInt(result.Duration.Milliseconds(), 10),
		})
	})
}

// writeActivationTable generates and writes the human-readable summary.
func writeActivationTable(w io.Writer, result schema.ActivationResult, cfg *contract.Config) error {
	deleted := "-"
	if len(result.DeletedCaches) > 0 {
		deleted = strings.Join(result.DeletedCaches, ", ")
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Field", "Value"})
	data := [][]string{
		{"Cache", result.CacheName},
		{"Deleted caches", deleted},
		{"Manifest entries", strconv.Itoa(result.ManifestEntries)},
		{"Cached entries", strconv.Itoa(result.CachedEntries)},
		{"Cached size", formatBytes(result.CachedBytes)},
		{"Duration", result.Duration.Round(time.Millisecond).String()},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	state := contract.GetStateLabel(schema.StateReady, cfg.UseColors)
	_, err := fmt.Fprintf(w, "Cache %q is %s with %d workers. Cache backend: %s\n", result.CacheName, state, cfg.Workers, cfg.CacheBackend)
	return err
}
