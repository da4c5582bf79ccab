// Package cmd defines the command-line interface for swcache.
package cmd

import (
	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(activateCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheHistoryCmd)
	cacheCmd.AddCommand(cacheExportCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().StringP("manifest", "m", "", "Resource manifest: .json, .yaml or a generated service worker .js")
	rootCmd.PersistentFlags().String("origin", "", "Where resources are fetched from: http(s)://host/base, s3://bucket/prefix or a directory")
	rootCmd.PersistentFlags().String("origin-timeout", contract.DefaultOriginTimeout.String(), "Timeout for each HTTP origin request (0 = none)")
	rootCmd.PersistentFlags().String("cache-name", "", "Cache name (default: the manifest's CACHE_NAME or "+schema.DefaultCacheName+")")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent fetches during activation")
	rootCmd.PersistentFlags().Bool("verify-hashes", false, "Check MD5 hash tokens against fetched bodies during activation")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("aws-region", "", "AWS region for s3:// origins")
	rootCmd.PersistentFlags().String("aws-profile", "", "AWS shared config profile for s3:// origins")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Runtime log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of getCmd to Viper
	getCmd.Flags().Bool("body", false, "Write the response body instead of the lookup summary")
	if err := viper.BindPFlags(getCmd.Flags()); err != nil {
		contract.LogFatal("Error binding get flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListen, "Address the gateway listens on")
	serveCmd.Flags().String("activate-timeout", "", "Give up on the startup activation after this long (empty = no limit)")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of cacheHistoryCmd to Viper
	cacheHistoryCmd.Flags().IntP("limit", "l", contract.DefaultHistoryLimit, "Number of activation runs to display")
	if err := viper.BindPFlags(cacheHistoryCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache history flags", err)
	}

	// Bind all flags of cacheMigrateCmd to Viper
	cacheMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(cacheMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache migrate flags", err)
	}
}
