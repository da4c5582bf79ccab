package contract

import (
	"testing"
	"time"

	"github.com/huangsam/swcache/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validInput returns a raw input that passes validation.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		CacheBackend: string(schema.SQLiteBackend),
		Workers:      4,
		Output:       "text",
		Color:        "yes",
		LogLevel:     "warn",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid minimal config", mutate: func(*ConfigRawInput) {}},
		{
			name:        "zero workers",
			mutate:      func(in *ConfigRawInput) { in.Workers = 0 },
			expectError: "workers must be greater than 0",
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: "invalid output format",
		},
		{
			name:        "invalid color",
			mutate:      func(in *ConfigRawInput) { in.Color = "sometimes" },
			expectError: "invalid --color value",
		},
		{
			name:        "invalid log level",
			mutate:      func(in *ConfigRawInput) { in.LogLevel = "trace" },
			expectError: "invalid log level",
		},
		{
			name:        "invalid backend",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = "redis" },
			expectError: "invalid cache backend",
		},
		{
			name:        "mysql without connect string",
			mutate:      func(in *ConfigRawInput) { in.CacheBackend = "mysql" },
			expectError: "cache-db-connect is required",
		},
		{
			name:        "negative limit",
			mutate:      func(in *ConfigRawInput) { in.Limit = -1 },
			expectError: "limit must be greater than 0",
		},
		{
			name:        "bad origin timeout",
			mutate:      func(in *ConfigRawInput) { in.OriginTimeout = "soon" },
			expectError: "invalid --origin-timeout",
		},
		{
			name:        "negative activate timeout",
			mutate:      func(in *ConfigRawInput) { in.ActivateTimeout = "-5s" },
			expectError: "invalid --activate-timeout",
		},
		{
			name:        "origin URL without host",
			mutate:      func(in *ConfigRawInput) { in.Origin = "https://" },
			expectError: "has no host",
		},
		{
			name:        "s3 origin without bucket",
			mutate:      func(in *ConfigRawInput) { in.Origin = "s3://" },
			expectError: "must look like s3://bucket/prefix",
		},
		{
			name:        "missing origin directory",
			mutate:      func(in *ConfigRawInput) { in.Origin = "/definitely/not/here" },
			expectError: "is not readable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.expectError)
		})
	}
}

func TestProcessAndValidateDefaults(t *testing.T) {
	cfg := &Config{}
	input := validInput()
	input.Output = ""
	input.Color = ""
	input.LogLevel = ""
	input.CacheBackend = ""
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Empty(t, cfg.CacheName)
	assert.Equal(t, schema.DefaultCacheName, cfg.ResolveCacheName(""))
	assert.Equal(t, "flutter-app-cache", cfg.ResolveCacheName("flutter-app-cache"))
	assert.Equal(t, schema.SQLiteBackend, cfg.CacheBackend)
	assert.Equal(t, schema.TextOut, cfg.Output)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultListen, cfg.Listen)
	assert.Equal(t, DefaultOriginTimeout, cfg.OriginTimeout)
	assert.Equal(t, time.Duration(0), cfg.ActivateTimeout)
	assert.Equal(t, DefaultHistoryLimit, cfg.Limit)
	assert.True(t, cfg.UseColors)
	assert.Empty(t, cfg.OriginKind)
}

func TestProcessAndValidateOrigins(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		origin string
		want   schema.OriginKind
	}{
		{"https://example.com/app", schema.HTTPOrigin},
		{"HTTP://localhost:9000", schema.HTTPOrigin},
		{"s3://my-bucket/web/v2", schema.S3Origin},
		{dir, schema.DirOrigin},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			cfg := &Config{}
			input := validInput()
			input.Origin = tt.origin
			input.OriginTimeout = "5s"
			input.ActivateTimeout = "1m"
			require.NoError(t, ProcessAndValidate(cfg, input))
			assert.Equal(t, tt.want, cfg.OriginKind)
			assert.Equal(t, 5*time.Second, cfg.OriginTimeout)
			assert.Equal(t, time.Minute, cfg.ActivateTimeout)
		})
	}
}

func TestRequireRuntime(t *testing.T) {
	cfg := &Config{}
	assert.ErrorContains(t, cfg.RequireRuntime(), "--manifest is required")

	cfg.ManifestPath = "manifest.json"
	assert.ErrorContains(t, cfg.RequireRuntime(), "--origin is required")

	cfg.Origin = "https://example.com"
	assert.NoError(t, cfg.RequireRuntime())
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite needs nothing", schema.SQLiteBackend, "", false},
		{"none needs nothing", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "root:pw@tcp(localhost:3306)/swcache", false},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw@localhost/swcache", true},
		{"mysql missing db", schema.MySQLBackend, "root:pw@tcp(localhost:3306)", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost port=5432 dbname=swcache", false},
		{"postgres missing host", schema.PostgreSQLBackend, "dbname=swcache", true},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
		{"postgres empty", schema.PostgreSQLBackend, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSplitS3Origin(t *testing.T) {
	tests := []struct {
		origin, bucket, prefix string
	}{
		{"s3://bucket", "bucket", ""},
		{"s3://bucket/", "bucket", ""},
		{"s3://bucket/web/v2/", "bucket", "web/v2"},
		{"S3://Bucket/a", "Bucket", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			bucket, prefix := SplitS3Origin(tt.origin)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.prefix, prefix)
		})
	}
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, "swcache"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "swcache", profile.Prefix)
}

func TestResolveCacheNamePrefersConfig(t *testing.T) {
	cfg := &Config{CacheName: "pinned"}
	assert.Equal(t, "pinned", cfg.ResolveCacheName("from-manifest"))
}
