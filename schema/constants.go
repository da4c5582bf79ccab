package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the cache store.
	DatabaseBackend string

	// OriginKind represents where network fetches are served from.
	OriginKind string

	// ManagerState represents the lifecycle state of the cache manager.
	ManagerState string

	// ResponseSource tells whether a response came from the cache or the network.
	ResponseSource string

	// ActivationOutcome represents the final state of an activation run.
	ActivationOutcome string
)

// DefaultCacheName is the reserved cache name when none is configured.
const DefaultCacheName = "offline-app-cache"

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // in-memory
)

// All origin kinds supported.
const (
	HTTPOrigin OriginKind = "http"
	DirOrigin  OriginKind = "dir"
	S3Origin   OriginKind = "s3"
)

// Manager lifecycle states.
const (
	StateUninitialized ManagerState = "uninitialized"
	StateActivating    ManagerState = "activating"
	StateReady         ManagerState = "ready"
)

// Response sources.
const (
	SourceCache   ResponseSource = "cache"
	SourceNetwork ResponseSource = "network"
)

// Activation outcomes.
const (
	OutcomeRunning   ActivationOutcome = "running"
	OutcomeSucceeded ActivationOutcome = "succeeded"
	OutcomeFailed    ActivationOutcome = "failed"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid cache backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}
