package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
)

// SQLStore keeps named caches and activation runs in a SQL database.
type SQLStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
	now     func() time.Time
}

var (
	_ contract.CacheStore         = &SQLStore{} // Compile-time check
	_ contract.ActivationRecorder = &SQLStore{} // Compile-time check
	_ contract.Cache              = &sqlCache{} // Compile-time check
)

// NewCacheStore initializes and returns a new CacheStore based on the backend type.
// The returned store also implements contract.ActivationRecorder.
func NewCacheStore(backend schema.DatabaseBackend, connStr string) (contract.CacheStore, error) {
	switch backend {
	case schema.NoneBackend:
		return NewMemoryStore(), nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewSQLStore(backend, connStr)
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// NewSQLStore opens the database and migrates it to the latest schema.
func NewSQLStore(backend schema.DatabaseBackend, connStr string) (*SQLStore, error) {
	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := applyMigrations(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLStore{
		db:      db,
		backend: backend,
		connStr: connStr,
		now:     time.Now,
	}, nil
}

// table returns the quoted table name for the store's dialect.
func (s *SQLStore) table(name string) string {
	return quoteTableName(name, s.backend)
}

// q adapts placeholders for the store's dialect.
func (s *SQLStore) q(query string) string {
	return rebind(s.backend, query)
}

// Keys returns the names of every cache in the store.
func (s *SQLStore) Keys(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT cache_name FROM %s ORDER BY cache_name", s.table(namedCachesTable))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list caches: %w", err)
	}
	return scanStrings(rows)
}

// Has reports whether a cache with the given name exists.
func (s *SQLStore) Has(ctx context.Context, name string) (bool, error) {
	query := s.q(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE cache_name = ?", s.table(namedCachesTable)))
	var n int
	if err := s.db.QueryRowContext(ctx, query, name).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up cache %q: %w", name, err)
	}
	return n > 0, nil
}

// Delete removes a cache and all of its entries in one transaction.
func (s *SQLStore) Delete(ctx context.Context, name string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	entriesQuery := s.q(fmt.Sprintf("DELETE FROM %s WHERE cache_name = ?", s.table(cacheEntriesTable)))
	if _, err := tx.ExecContext(ctx, entriesQuery, name); err != nil {
		return false, fmt.Errorf("failed to delete entries of cache %q: %w", name, err)
	}

	cacheQuery := s.q(fmt.Sprintf("DELETE FROM %s WHERE cache_name = ?", s.table(namedCachesTable)))
	res, err := tx.ExecContext(ctx, cacheQuery, name)
	if err != nil {
		return false, fmt.Errorf("failed to delete cache %q: %w", name, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read deleted rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete of cache %q: %w", name, err)
	}
	return affected > 0, nil
}

// Open returns the named cache, creating it when it does not exist.
func (s *SQLStore) Open(ctx context.Context, name string) (contract.Cache, error) {
	if name == "" {
		return nil, errors.New("cache name cannot be empty")
	}
	if _, err := s.db.ExecContext(ctx, s.insertCacheQuery(), name, s.now().UnixMilli()); err != nil {
		return nil, fmt.Errorf("failed to create cache %q: %w", name, err)
	}
	return &sqlCache{store: s, name: name}, nil
}

// insertCacheQuery returns an insert that leaves an existing cache row alone.
func (s *SQLStore) insertCacheQuery() string {
	table := s.table(namedCachesTable)
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("INSERT IGNORE INTO %s (cache_name, created_at) VALUES (?, ?)", table)
	case schema.PostgreSQLBackend:
		return fmt.Sprintf("INSERT INTO %s (cache_name, created_at) VALUES ($1, $2) ON CONFLICT (cache_name) DO NOTHING", table)
	default: // SQLite
		return fmt.Sprintf("INSERT OR IGNORE INTO %s (cache_name, created_at) VALUES (?, ?)", table)
	}
}

// upsertEntryQuery returns the UPSERT query for cache entries.
func (s *SQLStore) upsertEntryQuery() string {
	table := s.table(cacheEntriesTable)
	switch s.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_name, cache_key, content_hash, status, header, body, stored_at) VALUES (?, ?, ?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE content_hash = new.content_hash, status = new.status, header = new.header, body = new.body, stored_at = new.stored_at`, table)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (cache_name, cache_key, content_hash, status, header, body, stored_at) VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (cache_name, cache_key) DO UPDATE SET content_hash = EXCLUDED.content_hash, status = EXCLUDED.status, header = EXCLUDED.header, body = EXCLUDED.body, stored_at = EXCLUDED.stored_at`, table)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (cache_name, cache_key, content_hash, status, header, body, stored_at) VALUES (?, ?, ?, ?, ?, ?, ?)`, table)
	}
}

// Match looks the key up across every cache, in cache name order.
func (s *SQLStore) Match(ctx context.Context, key string) (*schema.Response, bool, error) {
	query := s.q(fmt.Sprintf(
		"SELECT status, header, body, stored_at FROM %s WHERE cache_key = ? ORDER BY cache_name LIMIT 1",
		s.table(cacheEntriesTable)))
	return scanResponse(s.db.QueryRowContext(ctx, query, key))
}

// Entries lists stored entries without their bodies. An empty name lists every cache.
func (s *SQLStore) Entries(ctx context.Context, name string) ([]schema.EntryInfo, error) {
	query := fmt.Sprintf(
		"SELECT cache_name, cache_key, content_hash, status, header, LENGTH(body), stored_at FROM %s",
		s.table(cacheEntriesTable))
	var args []any
	if name != "" {
		query += " WHERE cache_name = ?"
		args = append(args, name)
	}
	query += " ORDER BY cache_name, cache_key"

	rows, err := s.db.QueryContext(ctx, s.q(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []schema.EntryInfo{}
	for rows.Next() {
		var info schema.EntryInfo
		var header string
		var storedAt int64
		if err := rows.Scan(&info.CacheName, &info.Key, &info.Hash, &info.Status, &header, &info.SizeBytes, &storedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if h, err := decodeHeader(header); err == nil {
			info.ContentType = h.Get("Content-Type")
		}
		info.StoredAt = time.UnixMilli(storedAt)
		entries = append(entries, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate entries: %w", err)
	}
	return entries, nil
}

// Close closes the underlying DB connection.
func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStatus returns status information about the cache store.
func (s *SQLStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:    string(s.backend),
		Connected:  s.db != nil,
		CacheNames: []string{},
	}
	if s.db == nil {
		return status, nil
	}

	names, err := s.Keys(context.Background())
	if err != nil {
		return status, err
	}
	status.CacheNames = names

	table := s.table(cacheEntriesTable)

	// Get total entries and bytes
	countQuery := fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(LENGTH(body)), 0) FROM %s", table)
	if err := s.db.QueryRow(countQuery).Scan(&status.TotalEntries, &status.TotalBytes); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}

	if status.TotalEntries == 0 {
		return status, nil
	}

	// Get newest and oldest entry times
	rangeQuery := fmt.Sprintf("SELECT MAX(stored_at), MIN(stored_at) FROM %s", table)
	var lastTs, oldestTs int64
	if err := s.db.QueryRow(rangeQuery).Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry time range: %w", err)
	}
	status.LastEntryTime = time.UnixMilli(lastTs)
	status.OldestEntryTime = time.UnixMilli(oldestTs)

	status.TableSizeBytes = s.tableSize(status.TotalBytes)
	return status, nil
}

// tableSize asks the database how much space the entries table uses.
// The fallback is the raw body size.
func (s *SQLStore) tableSize(fallback int64) int64 {
	var size int64
	switch s.backend {
	case schema.SQLiteBackend:
		// For SQLite, use page_count * page_size
		row := s.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return fallback
		}
	case schema.MySQLBackend:
		// Use information_schema for MySQL
		cfg, err := mysql.ParseDSN(s.connStr)
		if err != nil || cfg.DBName == "" {
			return fallback
		}
		row := s.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
			cfg.DBName, cacheEntriesTable)
		if err := row.Scan(&size); err != nil {
			return fallback
		}
	case schema.PostgreSQLBackend:
		row := s.db.QueryRow("SELECT pg_total_relation_size($1)", cacheEntriesTable)
		if err := row.Scan(&size); err != nil {
			return fallback
		}
	default:
		return fallback
	}
	return size
}

// sqlCache is a handle on one named cache in a SQLStore.
type sqlCache struct {
	store *SQLStore
	name  string
}

// Name returns the cache name.
func (c *sqlCache) Name() string {
	return c.name
}

// Match looks the key up in this cache only.
func (c *sqlCache) Match(ctx context.Context, key string) (*schema.Response, bool, error) {
	s := c.store
	query := s.q(fmt.Sprintf(
		"SELECT status, header, body, stored_at FROM %s WHERE cache_name = ? AND cache_key = ?",
		s.table(cacheEntriesTable)))
	return scanResponse(s.db.QueryRowContext(ctx, query, c.name, key))
}

// Put stores a single entry.
func (c *sqlCache) Put(ctx context.Context, entry schema.CacheEntry) error {
	return c.PutAll(ctx, []schema.CacheEntry{entry})
}

// PutAll stores every entry in one transaction. Either all of them land or none do.
func (c *sqlCache) PutAll(ctx context.Context, entries []schema.CacheEntry) error {
	s := c.store
	now := s.now()

	type row struct {
		key, hash, header string
		status            int
		body              []byte
		storedAt          int64
	}
	rows := make([]row, 0, len(entries))
	for _, e := range entries {
		if e.Response == nil {
			return fmt.Errorf("entry %q has no response", e.Key)
		}
		header, err := encodeHeader(e.Response.Header)
		if err != nil {
			return fmt.Errorf("failed to encode header for %q: %w", e.Key, err)
		}
		storedAt := e.Response.StoredAt
		if storedAt.IsZero() {
			storedAt = now
		}
		body := e.Response.Body
		if body == nil {
			body = []byte{}
		}
		rows = append(rows, row{
			key:      e.Key,
			hash:     e.Hash,
			header:   header,
			status:   e.Response.Status,
			body:     body,
			storedAt: storedAt.UnixMilli(),
		})
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// The cache row may have been deleted since Open
	if _, err := tx.ExecContext(ctx, s.insertCacheQuery(), c.name, now.UnixMilli()); err != nil {
		return fmt.Errorf("failed to create cache %q: %w", c.name, err)
	}

	stmt, err := tx.PrepareContext(ctx, s.upsertEntryQuery())
	if err != nil {
		return fmt.Errorf("failed to prepare entry insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx, c.name, r.key, r.hash, r.status, r.header, r.body, r.storedAt); err != nil {
			return fmt.Errorf("failed to store %q: %w", r.key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %d entries: %w", len(rows), err)
	}
	return nil
}

// Keys returns the keys stored in this cache.
func (c *sqlCache) Keys(ctx context.Context) ([]string, error) {
	s := c.store
	query := s.q(fmt.Sprintf("SELECT cache_key FROM %s WHERE cache_name = ? ORDER BY cache_key", s.table(cacheEntriesTable)))
	rows, err := s.db.QueryContext(ctx, query, c.name)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys of cache %q: %w", c.name, err)
	}
	return scanStrings(rows)
}

// scanResponse reads a single stored response. A missing row is a miss, not an error.
func scanResponse(row *sql.Row) (*schema.Response, bool, error) {
	var status int
	var header string
	var body []byte
	var storedAt int64
	if err := row.Scan(&status, &header, &body, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached response: %w", err)
	}
	h, err := decodeHeader(header)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode cached header: %w", err)
	}
	return &schema.Response{
		Status:   status,
		Header:   h,
		Body:     body,
		StoredAt: time.UnixMilli(storedAt),
	}, true, nil
}

// scanStrings collects a single string column and closes rows.
func scanStrings(rows *sql.Rows) ([]string, error) {
	defer func() { _ = rows.Close() }()
	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func encodeHeader(h http.Header) (string, error) {
	if h == nil {
		h = http.Header{}
	}
	data, err := json.Marshal(h)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeHeader(s string) (http.Header, error) {
	h := http.Header{}
	if s == "" {
		return h, nil
	}
	if err := json.Unmarshal([]byte(s), &h); err != nil {
		return nil, err
	}
	return h, nil
}
