package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/swcache/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStateLabel(t *testing.T) {
	states := []schema.ManagerState{schema.StateUninitialized, schema.StateActivating, schema.StateReady}
	for _, state := range states {
		t.Run(string(state), func(t *testing.T) {
			assert.Equal(t, string(state), GetStateLabel(state, false))
			assert.Contains(t, GetStateLabel(state, true), string(state))
		})
	}
}

func TestGetOutcomeLabel(t *testing.T) {
	outcomes := []schema.ActivationOutcome{schema.OutcomeRunning, schema.OutcomeSucceeded, schema.OutcomeFailed}
	for _, outcome := range outcomes {
		t.Run(string(outcome), func(t *testing.T) {
			assert.Equal(t, string(outcome), GetOutcomeLabel(outcome, false))
			assert.Contains(t, GetOutcomeLabel(outcome, true), string(outcome))
		})
	}
}

func TestGetSourceLabel(t *testing.T) {
	assert.Equal(t, "HIT", GetSourceLabel(schema.SourceCache))
	assert.Equal(t, "MISS", GetSourceLabel(schema.SourceNetwork))
	assert.Equal(t, "MISS", GetSourceLabel(""))
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestGetCacheDBFilePath(t *testing.T) {
	path := GetCacheDBFilePath()
	assert.Equal(t, ".swcache.db", filepath.Base(path))
}

func TestTruncatePath(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		maxWidth int
		expected string
	}{
		{"short path unchanged", "/index.html", 20, "/index.html"},
		{"long path truncated", "/assets/fonts/MaterialIcons-Regular.ttf", 15, "...-Regular.ttf"},
		{"tiny width unchanged", "/assets/fonts/x.ttf", 3, "/assets/fonts/x.ttf"},
		{"unicode safe", "/ассеты/файл.png", 8, "...л.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncatePath(tt.path, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "YES", "true", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v, s)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v, s)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
