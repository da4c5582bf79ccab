package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
	"github.com/olekukonko/tablewriter"
)

// lookupResult is the printable form of one intercepted request.
type lookupResult struct {
	Key         string                `json:"key"`
	Source      schema.ResponseSource `json:"source"`
	Label       string                `json:"label"`
	Status      int                   `json:"status"`
	ContentType string                `json:"content_type"`
	SizeBytes   int                   `json:"size_bytes"`
	StoredAt    *time.Time            `json:"stored_at,omitempty"`
	DurationMS  int64                 `json:"duration_ms"`
}

func newLookupResult(key string, resp *schema.Response, duration time.Duration) lookupResult {
	result := lookupResult{
		Key:         key,
		Source:      resp.Source,
		Label:       contract.GetSourceLabel(resp.Source),
		Status:      resp.Status,
		ContentType: resp.ContentType(),
		SizeBytes:   len(resp.Body),
		DurationMS:  duration.Milliseconds(),
	}
	if !resp.StoredAt.IsZero() {
		storedAt := resp.StoredAt
		result.StoredAt = &storedAt
	}
	return result
}

// WriteLookup prints where a request was answered from, dispatching based on the output format configured.
func WriteLookup(key string, resp *schema.Response, cfg *contract.Config, duration time.Duration) error {
	result := newLookupResult(key, resp, duration)
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLookupCSV(w, result)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return errParquetUnsupported("lookups")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeLookupTable(w, result, cfg)
		}, "Wrote table")
	}
}

func writeLookupCSV(w io.Writer, r lookupResult) error {
	header := []string{"key", "source", "status", "content_type", "size_bytes", "stored_at", "duration_ms"}
	return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
		storedAt := ""
		if r.StoredAt != nil {
			storedAt = formatTimestamp(*r.StoredAt)
		}
		return csvWriter.Write([]string{
			r.Key,
			string(r.Source),
			strconv.Itoa(r.Status),
			r.ContentType,
			strconv.Itoa(r.SizeBytes),
			storedAt,
			strconv.FormatInt(r.DurationMS, 10),
		})
	})
}

func writeLookupTable(w io.Writer, r lookupResult, cfg *contract.Config) error {
	label := r.Label
	if cfg.UseColors {
		if r.Source == schema.SourceCache {
			label = contract.ReadyColor.Sprint(label)
		} else {
			label = contract.PendingColor.Sprint(label)
		}
	}
	storedAt := "-"
	if r.StoredAt != nil {
		storedAt = formatTime(*r.StoredAt)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Key", "Cache", "Status", "Type", "Size", "Stored"})
	row := []string{
		contract.TruncatePath(r.Key, getMaxTableKeyWidth(cfg, 60)),
		label,
		strconv.Itoa(r.Status),
		r.ContentType,
		formatBytes(int64(r.SizeBytes)),
		storedAt,
	}
	if err := table.Bulk([][]string{row}); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Answered from %s in %dms\n", r.Source, r.DurationMS)
	return err
}
