package schema

import "time"

// ActivationResult summarizes a completed activation.
type ActivationResult struct {
	CacheName       string        `json:"cache_name"`
	DeletedCaches   []string      `json:"deleted_caches"`
	ManifestEntries int           `json:"manifest_entries"`
	CachedEntries   int           `json:"cached_entries"`
	CachedBytes     int64         `json:"cached_bytes"`
	Duration        time.Duration `json:"duration"`
}

// ActivationRecord is a persisted activation run.
type ActivationRecord struct {
	RunID           int64             `json:"run_id"`
	CacheName       string            `json:"cache_name"`
	StartTime       time.Time         `json:"start_time"`
	EndTime         *time.Time        `json:"end_time,omitempty"`
	ManifestEntries int               `json:"manifest_entries"`
	CachedEntries   int               `json:"cached_entries"`
	CachedBytes     int64             `json:"cached_bytes"`
	Outcome         ActivationOutcome `json:"outcome"`
	ErrorMessage    string            `json:"error_message,omitempty"`
}

// Duration returns the run duration, or zero if the run has not finished.
func (r ActivationRecord) Duration() time.Duration {
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// ManagerStatus is a point-in-time view of a cache manager.
type ManagerStatus struct {
	State          ManagerState      `json:"state"`
	CacheName      string            `json:"cache_name"`
	ManifestSize   int               `json:"manifest_entries"`
	LastResult     *ActivationResult `json:"last_result,omitempty"`
	LastError      string            `json:"last_error,omitempty"`
	LastFinishedAt *time.Time        `json:"last_finished_at,omitempty"`
}
