package cmd

import (
	"fmt"

	"github.com/huangsam/swcache/core"
	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/internal/iocache"
	"github.com/huangsam/swcache/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads the configuration needed for cache operations.
// The manifest and origin are ignored, so a stale or missing origin does not
// block store maintenance.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	input.Manifest = ""
	input.Origin = ""
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}
	if err := setupLogger(cfg.LogLevel); err != nil {
		return err
	}

	// Initialize the store with the loaded config
	if err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheMigrateSetup loads the configuration needed for migrate operations.
// It does NOT initialize stores, since opening a store migrates it to the
// latest version.
func cacheMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	if backend == "" {
		backend = schema.SQLiteBackend
	}
	connStr := viper.GetString("cache-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetCacheDBFilePath()
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheMigrateSetupWrapper wraps cacheMigrateSetup to provide PreRunE for the migrate command.
func cacheMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheMigrateSetup()
}

// cacheCmd focused on cache store management.
//
// Note: Cache subcommands use minimal initialization (cacheSetup) instead of
// the full sharedSetup. They never read the manifest or contact the origin.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and maintain the offline cache store",
	Long: `Inspect and maintain the store that holds named caches and activation history.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status  - Show store statistics and connection info
  list    - List stored entries
  history - Show recent activation runs
  export  - Export entries and activation runs to Parquet
  clear   - Remove the store entirely
  migrate - Run database schema migrations

Examples:
  # Check what is cached
  swcache cache status
  swcache cache list --cache-name flutter-app-cache

  # Review failed activations
  swcache cache history --limit 5`,
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store statistics and connection details",
	Long: `Show the backend, the caches it holds, entry counts, total size and the
age of the newest and oldest entries.

Examples:
  swcache cache status
  swcache cache status --output json`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCacheStatus(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
	},
}

// cacheListCmd lists stored entries.
var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored cache entries",
	Long: `List the entries of every cache, or of one cache with --cache-name.
Bodies are not printed; use 'swcache get --body' for that.

Examples:
  swcache cache list
  swcache cache list --output csv --output-file entries.csv
  swcache cache list --output parquet --output-file entries.parquet`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCacheList(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to list cache entries", err)
		}
	},
}

// cacheHistoryCmd shows recent activation runs.
var cacheHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent activation runs",
	Long: `Show the most recent activation runs with their outcome, size and error.

Examples:
  swcache cache history
  swcache cache history --limit 100 --output json`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCacheHistory(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Failed to show activation history", err)
		}
	},
}

// cacheExportCmd exports store data to Parquet files.
var cacheExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export entries and activation runs to Parquet",
	Long: `Export stored entry metadata and activation history to Parquet files for
analytics tools such as DuckDB or pandas.

Requires: --output-file parameter. Two files are written next to it:
  <output-file>.cache_entries.parquet
  <output-file>.activation_runs.parquet

Examples:
  swcache cache export --output-file swcache
  duckdb -c "SELECT outcome, count(*) FROM read_parquet('swcache.activation_runs.parquet') GROUP BY 1"`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteExport(rootCtx, storeManager, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export cache data", err)
		}
	},
}

// cacheClearCmd clears the cache store.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cache and the activation history",
	Long: `Delete the whole store from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the swcache tables

WARNING: This action cannot be undone. The next activation recreates the store.

Examples:
  swcache cache clear

  # Clear a MySQL store (set connection string via env variable)
  SWCACHE_CACHE_BACKEND=mysql SWCACHE_CACHE_DB_CONNECT="..." swcache cache clear`,
	PreRunE: cacheMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearStore(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheMigrateCmd runs database migrations for the cache store.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the cache store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  swcache cache migrate

  # Migrate to specific version
  swcache cache migrate --target-version 2

  # Rollback to initial state
  swcache cache migrate --target-version 0`,
	PreRunE: cacheMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateStore(cfg.CacheBackend, cfg.CacheDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
