package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	CacheNames      []string  `json:"cache_names"`
	TotalEntries    int       `json:"total_entries"`
	TotalBytes      int64     `json:"total_bytes"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// EntryInfo describes one stored entry without its body.
type EntryInfo struct {
	CacheName   string    `json:"cache_name"`
	Key         string    `json:"key"`
	Hash        string    `json:"hash"`
	Status      int       `json:"status"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	StoredAt    time.Time `json:"stored_at"`
}
