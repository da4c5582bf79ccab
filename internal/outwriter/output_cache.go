package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/internal/parquet"
	"github.com/huangsam/swcache/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteCacheStatus prints store statistics, dispatching based on the output format configured.
func WriteCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCacheStatusCSV(w, status)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported("cache status")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCacheStatusText(w, status, cfg)
		}, "Wrote status")
	}
}

func writeCacheStatusCSV(w io.Writer, status schema.CacheStatus) error {
	header := []string{"backend", "connected", "cache_names", "total_entries", "total_bytes", "last_entry", "oldest_entry", "table_size_bytes"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		return csvWriter.Write([]string{
			status.Backend,
			strconv.FormatBool(status.Connected),
			strings.Join(status.CacheNames, "|"),
			strconv.Itoa(status.TotalEntries),
			strconv.FormatInt(status.TotalBytes, 10),
			formatTimestamp(status.LastEntryTime),
			formatTimestamp(status.OldestEntryTime),
			strconv.FormatInt(status.TableSizeBytes, 10),
		})
	})
}

// writeCacheStatusText prints status lines the way a health check reads them.
func writeCacheStatusText(w io.Writer, status schema.CacheStatus, cfg *contract.Config) error {
	connected := "no"
	if status.Connected {
		connected = "yes"
	}
	if cfg.UseColors {
		if status.Connected {
			connected = contract.ReadyColor.Sprint(connected)
		} else {
			connected = contract.FailedColor.Sprint(connected)
		}
	}

	lines := []string{
		fmt.Sprintf("Cache Backend: %s", status.Backend),
		fmt.Sprintf("Connected: %s", connected),
	}
	if status.Connected {
		names := "-"
		if len(status.CacheNames) > 0 {
			names = strings.Join(status.CacheNames, ", ")
		}
		lines = append(lines,
			fmt.Sprintf("Caches: %s", names),
			fmt.Sprintf("Total Entries: %d", status.TotalEntries),
			fmt.Sprintf("Total Size: %s", formatBytes(status.TotalBytes)),
		)
		if status.TotalEntries > 0 {
			lines = append(lines,
				fmt.Sprintf("Last Entry: %s", formatTime(status.LastEntryTime)),
				fmt.Sprintf("Oldest Entry: %s", formatTime(status.OldestEntryTime)),
			)
		}
		lines = append(lines, fmt.Sprintf("Table Size: %s", formatBytes(status.TableSizeBytes)))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteEntries prints stored entries, dispatching based on the output format configured.
func WriteEntries(entries []schema.EntryInfo, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, entries)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEntriesCSV(w, entries)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("--output-file is required for parquet output")
		}
		if err := parquet.WriteCacheEntriesParquet(parquet.ConvertEntryInfos(entries), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote %d entries to %s\n", len(entries), cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEntriesTable(w, entries, cfg)
		}, "Wrote table")
	}
}

func writeEntriesCSV(w io.Writer, entries []schema.EntryInfo) error {
	header := []string{"cache_name", "key", "hash", "status", "content_type", "size_bytes", "stored_at"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, e := range entries {
			rec := []string{
				e.CacheName,
				e.Key,
				e.Hash,
				strconv.Itoa(e.Status),
				e.ContentType,
				strconv.FormatInt(e.SizeBytes, 10),
				formatTimestamp(e.StoredAt),
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeEntriesTable(w io.Writer, entries []schema.EntryInfo, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Cache", "Key", "Hash", "Status", "Type", "Size"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	keyWidth := getMaxTableKeyWidth(cfg, 75)
	var totalBytes int64
	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		data = append(data, []string{
			e.CacheName,
			contract.TruncatePath(e.Key, keyWidth),
			shortHash(e.Hash),
			strconv.Itoa(e.Status),
			e.ContentType,
			formatBytes(e.SizeBytes),
		})
		totalBytes += e.SizeBytes
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d entries (%s). Cache backend: %s\n", len(entries), formatBytes(totalBytes), cfg.CacheBackend)
	return err
}

// shortHash keeps long digests readable in tables.
func shortHash(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
