//go:build basic || database

package integration

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	// sharedSwcachePath holds the path to a shared swcache binary built once for all tests.
	sharedSwcachePath string

	// buildOnce ensures we only build the binary once.
	buildOnce sync.Once

	// buildMutex protects the shared binary path.
	buildMutex sync.Mutex

	// tempDir holds the temp directory for cleanup.
	tempDir string
)

// TestMain handles setup and cleanup for all integration tests.
func TestMain(m *testing.M) {
	code := m.Run()

	// Cleanup the shared binary after all tests
	if tempDir != "" {
		_ = os.RemoveAll(tempDir)
	}

	os.Exit(code)
}

// getSwcacheBinary returns the path to the swcache binary, building it once if needed.
func getSwcacheBinary() string {
	buildMutex.Lock()
	defer buildMutex.Unlock()

	buildOnce.Do(func() {
		var err error
		tempDir, err = os.MkdirTemp("", "swcache-integration-*")
		if err != nil {
			panic(fmt.Sprintf("failed to create temp dir: %v", err))
		}

		swcachePath := filepath.Join(tempDir, "swcache")
		buildCmd := exec.Command("go", "build", "-o", swcachePath, "./cmd/swcache")
		buildCmd.Dir = ".." // Build from parent directory (project root)
		if err := buildCmd.Run(); err != nil {
			panic(fmt.Sprintf("failed to build swcache: %v", err))
		}

		sharedSwcachePath = swcachePath
	})

	return sharedSwcachePath
}

// writeSite creates a small origin directory and a JSON manifest describing it.
// It returns the origin directory and the manifest path.
func writeSite(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	origin := filepath.Join(dir, "site")
	require.NoError(t, os.MkdirAll(filepath.Join(origin, "assets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(origin, "index.html"), []byte("<html>offline</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(origin, "main.dart.js"), []byte("void main(){}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(origin, "assets", "logo.png"), []byte("png"), 0o644))

	manifest := filepath.Join(dir, "manifest.json")
	body := `{
  "/": "a1b2c3",
  "index.html": "a1b2c3",
  "main.dart.js": "d4e5f6",
  "assets/logo.png": "0a0b0c"
}`
	require.NoError(t, os.WriteFile(manifest, []byte(body), 0o644))
	return origin, manifest
}

// runSwcacheCommand runs the binary with the given environment and returns its stdout.
func runSwcacheCommand(t *testing.T, env []string, args ...string) (string, error) {
	t.Helper()
	swcachePath := getSwcacheBinary()
	cmd := exec.Command(swcachePath, args...)
	cmd.Env = append(os.Environ(), env...)
	output, err := cmd.Output()
	if err != nil {
		var stderr []byte
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr = exitErr.Stderr
		}
		t.Logf("Command failed: %s\nStdout: %s\nStderr: %s", cmd.String(), string(output), string(stderr))
		return string(output), err
	}
	return string(output), nil
}

// writeManifest writes a JSON manifest into a fresh temp dir.
func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
