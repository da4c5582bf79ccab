package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/internal/parquet"
	"github.com/huangsam/swcache/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteHistory prints activation runs, dispatching based on the output format configured.
func WriteHistory(records []schema.ActivationRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryCSV(w, records)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return errors.New("--output-file is required for parquet output")
		}
		if err := parquet.WriteActivationRunsParquet(parquet.ConvertActivationRecords(records), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote %d activation runs to %s\n", len(records), cfg.OutputFile)
		return nil
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeHistoryTable(w, records, cfg)
		}, "Wrote table")
	}
}

func writeHistoryCSV(w io.Writer, records []schema.ActivationRecord) error {
	header := []string{"run_id", "cache_name", "start_time", "end_time", "duration_ms", "manifest_entries", "cached_entries", "cached_bytes", "outcome", "error_message"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		for _, r := range records {
			endTime := ""
			if r.EndTime != nil {
				endTime = formatTimestamp(*r.EndTime)
			}
			rec := []string{
				strconv.FormatInt(r.RunID, 10),
				r.CacheName,
				formatTimestamp(r.StartTime),
				endTime,
				strconv.FormatInt(r.Duration().Milliseconds(), 10),
				strconv.Itoa(r.ManifestEntries),
				strconv.Itoa(r.CachedEntries),
				strconv.FormatInt(r.CachedBytes, 10),
				string(r.Outcome),
				r.ErrorMessage,
			}
			if err := csvWriter.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeHistoryTable(w io.Writer, records []schema.ActivationRecord, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Run", "Cache", "Started", "Duration", "Entries", "Size", "Outcome", "Error"})

	errWidth := getMaxTableKeyWidth(cfg, 110)
	data := make([][]string, 0, len(records))
	for _, r := range records {
		duration := "-"
		if r.EndTime != nil {
			duration = r.Duration().Round(time.Millisecond).String()
		}
		data = append(data, []string{
			strconv.FormatInt(r.RunID, 10),
			r.CacheName,
			r.StartTime.Format(contract.DateTimeFormat),
			duration,
			fmt.Sprintf("%d/%d", r.CachedEntries, r.ManifestEntries),
			formatBytes(r.CachedBytes),
			contract.GetOutcomeLabel(r.Outcome, cfg.UseColors),
			truncateText(r.ErrorMessage, errWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d most recent activations. Cache backend: %s\n", len(records), cfg.CacheBackend)
	return err
}

// truncateText shortens free text from the end, keeping its beginning.
func truncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}
