package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/huangsam/swcache/schema"
)

// BeginActivation records the start of an activation and returns its run ID.
func (s *SQLStore) BeginActivation(cacheName string, startTime time.Time, manifestEntries int) (int64, error) {
	table := s.table(activationRunsTable)

	var runID int64
	var err error
	switch s.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (cache_name, start_time, manifest_entries, outcome) VALUES ($1, $2, $3, $4) RETURNING run_id`, table)
		err = s.db.QueryRow(query, cacheName, startTime.UnixMilli(), manifestEntries, string(schema.OutcomeRunning)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (cache_name, start_time, manifest_entries, outcome) VALUES (?, ?, ?, ?)`, table)
		var result sql.Result
		result, err = s.db.Exec(query, cacheName, startTime.UnixMilli(), manifestEntries, string(schema.OutcomeRunning))
		if err != nil {
			return 0, fmt.Errorf("failed to insert activation run: %w", err)
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert activation run: %w", err)
	}
	return runID, nil
}

// EndActivation records how an activation finished.
func (s *SQLStore) EndActivation(runID int64, endTime time.Time, result schema.ActivationResult, activationErr error) error {
	outcome := schema.OutcomeSucceeded
	var message sql.NullString
	if activationErr != nil {
		outcome = schema.OutcomeFailed
		message = sql.NullString{String: activationErr.Error(), Valid: true}
	}

	query := s.q(fmt.Sprintf(
		`UPDATE %s SET end_time = ?, cached_entries = ?, cached_bytes = ?, outcome = ?, error_message = ? WHERE run_id = ?`,
		s.table(activationRunsTable)))
	if _, err := s.db.Exec(query, endTime.UnixMilli(), result.CachedEntries, result.CachedBytes, string(outcome), message, runID); err != nil {
		return fmt.Errorf("failed to update activation run %d: %w", runID, err)
	}
	return nil
}

// ListActivations returns the most recent runs first. A limit of 0 or less returns every run.
func (s *SQLStore) ListActivations(limit int) ([]schema.ActivationRecord, error) {
	query := fmt.Sprintf(
		"SELECT run_id, cache_name, start_time, end_time, manifest_entries, cached_entries, cached_bytes, outcome, error_message FROM %s ORDER BY run_id DESC",
		s.table(activationRunsTable))
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query activation runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []schema.ActivationRecord{}
	for rows.Next() {
		var record schema.ActivationRecord
		var startTime int64
		var endTime sql.NullInt64
		var outcome string
		var message sql.NullString
		if err := rows.Scan(&record.RunID, &record.CacheName, &startTime, &endTime,
			&record.ManifestEntries, &record.CachedEntries, &record.CachedBytes, &outcome, &message); err != nil {
			return nil, fmt.Errorf("failed to scan activation run: %w", err)
		}
		record.StartTime = time.UnixMilli(startTime)
		if endTime.Valid {
			t := time.UnixMilli(endTime.Int64)
			record.EndTime = &t
		}
		record.Outcome = schema.ActivationOutcome(outcome)
		record.ErrorMessage = message.String
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activation runs: %w", err)
	}
	return records, nil
}
