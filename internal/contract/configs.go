package contract

import (
	"fmt"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/swcache/schema"
)

// Default values for configuration.
const (
	DefaultListen        = ":8080"
	DefaultOriginTimeout = 30 * time.Second
	DefaultLogLevel      = "warn"
	DefaultHistoryLimit  = 20
	MaxHistoryLimit      = 1000
)

// DefaultWorkers is the default number of concurrent activation fetches.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ValidLogLevels lists the accepted values for --log-level.
var ValidLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration.
// This struct is the "final, validated" config.
type Config struct {
	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheName      string // Empty means the manifest's name or schema.DefaultCacheName

	ManifestPath string
	Origin       string
	OriginKind   schema.OriginKind

	OriginTimeout   time.Duration
	ActivateTimeout time.Duration // 0 means no limit
	Workers         int
	VerifyHashes    bool

	Listen   string
	LogLevel string

	AWSRegion  string
	AWSProfile string

	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	Limit      int

	UseColors bool // Enable colored labels in table output
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
	CacheName      string `mapstructure:"cache-name"`
	Manifest       string `mapstructure:"manifest"`
	Origin         string `mapstructure:"origin"`
	OriginTimeout  string `mapstructure:"origin-timeout"`
	Workers        int    `mapstructure:"workers"`
	VerifyHashes   bool   `mapstructure:"verify-hashes"`
	LogLevel       string `mapstructure:"log-level"`
	AWSRegion      string `mapstructure:"aws-region"`
	AWSProfile     string `mapstructure:"aws-profile"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	Color          string `mapstructure:"color"`

	// --- Fields from serveCmd.Flags() ---
	Listen          string `mapstructure:"listen"`
	ActivateTimeout string `mapstructure:"activate-timeout"`

	// --- Fields from cacheHistoryCmd.Flags() ---
	Limit int `mapstructure:"limit"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// RequireRuntime checks the settings needed to activate or intercept:
// a manifest to read and an origin to fetch from.
func (c *Config) RequireRuntime() error {
	if c.ManifestPath == "" {
		return fmt.Errorf("--manifest is required: point it at a JSON, YAML or service worker file")
	}
	if c.Origin == "" {
		return fmt.Errorf("--origin is required: use an http(s) URL, s3://bucket/prefix or a directory")
	}
	return nil
}

// ResolveCacheName picks the cache name: the configured one, then the name
// declared by the manifest, then schema.DefaultCacheName.
func (c *Config) ResolveCacheName(manifestHint string) string {
	if c.CacheName != "" {
		return c.CacheName
	}
	if hint := strings.TrimSpace(manifestHint); hint != "" {
		return hint
	}
	return schema.DefaultCacheName
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processDurations(cfg, input); err != nil {
		return err
	}
	if err := processOrigin(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("cache-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// OriginKindOf infers the origin kind from its spelling.
func OriginKindOf(origin string) schema.OriginKind {
	lower := strings.ToLower(origin)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return schema.HTTPOrigin
	case strings.HasPrefix(lower, "s3://"):
		return schema.S3Origin
	default:
		return schema.DirOrigin
	}
}

// validateSimpleInputs processes and validates the scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.ManifestPath = strings.TrimSpace(input.Manifest)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.VerifyHashes = input.VerifyHashes
	cfg.AWSRegion = input.AWSRegion
	cfg.AWSProfile = input.AWSProfile

	cfg.UseColors = true
	if input.Color != "" {
		colors, err := ParseBoolString(input.Color)
		if err != nil {
			return fmt.Errorf("invalid --color value: %w", err)
		}
		cfg.UseColors = colors
	}

	cfg.CacheName = strings.TrimSpace(input.CacheName)

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(input.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if _, ok := ValidLogLevels[cfg.LogLevel]; !ok {
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}

	cfg.Listen = strings.TrimSpace(input.Listen)
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}

	switch {
	case input.Limit == 0:
		cfg.Limit = DefaultHistoryLimit
	case input.Limit < 0 || input.Limit > MaxHistoryLimit:
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxHistoryLimit, input.Limit)
	default:
		cfg.Limit = input.Limit
	}

	return nil
}

// validateBackendConfigs validates the cache backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	return ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect)
}

// processDurations parses the timeout settings. Empty or "0" disables a timeout.
func processDurations(cfg *Config, input *ConfigRawInput) error {
	originTimeout, err := parseOptionalDuration(input.OriginTimeout)
	if err != nil {
		return fmt.Errorf("invalid --origin-timeout: %w", err)
	}
	if input.OriginTimeout == "" {
		originTimeout = DefaultOriginTimeout
	}
	cfg.OriginTimeout = originTimeout

	activateTimeout, err := parseOptionalDuration(input.ActivateTimeout)
	if err != nil {
		return fmt.Errorf("invalid --activate-timeout: %w", err)
	}
	cfg.ActivateTimeout = activateTimeout
	return nil
}

// processOrigin classifies the origin and checks it is well-formed.
func processOrigin(cfg *Config, input *ConfigRawInput) error {
	cfg.Origin = strings.TrimSpace(input.Origin)
	if cfg.Origin == "" {
		cfg.OriginKind = ""
		return nil
	}
	cfg.OriginKind = OriginKindOf(cfg.Origin)

	switch cfg.OriginKind {
	case schema.HTTPOrigin:
		u, err := url.Parse(cfg.Origin)
		if err != nil {
			return fmt.Errorf("invalid origin URL %q: %w", cfg.Origin, err)
		}
		if u.Host == "" {
			return fmt.Errorf("origin URL %q has no host", cfg.Origin)
		}
	case schema.S3Origin:
		bucket, _ := SplitS3Origin(cfg.Origin)
		if bucket == "" {
			return fmt.Errorf("S3 origin %q must look like s3://bucket/prefix", cfg.Origin)
		}
	case schema.DirOrigin:
		info, err := os.Stat(cfg.Origin)
		if err != nil {
			return fmt.Errorf("origin directory %q is not readable: %w", cfg.Origin, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("origin %q is not a directory", cfg.Origin)
		}
	}
	return nil
}

// SplitS3Origin splits s3://bucket/some/prefix into its bucket and key prefix.
func SplitS3Origin(origin string) (bucket, prefix string) {
	rest := origin
	if len(rest) >= len("s3://") && strings.EqualFold(rest[:len("s3://")], "s3://") {
		rest = rest[len("s3://"):]
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	return bucket, strings.Trim(prefix, "/")
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

func parseOptionalDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative (received %s)", s)
	}
	return d, nil
}
