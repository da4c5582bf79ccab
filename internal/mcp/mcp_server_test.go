package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/internal/iocache"
	mcp_internal "github.com/huangsam/swcache/internal/mcp"
	"github.com/huangsam/swcache/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *server.MCPServer {
	t.Helper()
	originDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(originDir, "index.html"), []byte("<html>home</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(originDir, "live.txt"), []byte("live"), 0o644))
	manifestPath := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(manifestPath, []byte("index.html: h0\n"), 0o644))

	store := iocache.NewMemoryStore()
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetCacheStore").Return(store)
	mgr.On("GetActivationRecorder").Return(store)

	baseCfg := &contract.Config{
		ManifestPath: manifestPath,
		Origin:       originDir,
		Workers:      1,
	}
	return mcp_internal.NewMCPServer(baseCfg, mgr)
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)
	res, err := tool.Handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	})
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	return res
}

func resultText(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerActivateAndLookup(t *testing.T) {
	s := newTestServer(t)

	res := callTool(t, s, "lookup_resource", map[string]any{"path": "index.html"})
	require.False(t, res.IsError)
	var before map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &before))
	assert.Equal(t, "network", before["source"])

	res = callTool(t, s, "activate_cache", map[string]any{})
	require.False(t, res.IsError, resultText(res))
	var activation schema.ActivationResult
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &activation))
	assert.Equal(t, 1, activation.CachedEntries)
	assert.Equal(t, schema.DefaultCacheName, activation.CacheName)

	res = callTool(t, s, "lookup_resource", map[string]any{"path": "index.html", "include_body": true})
	require.False(t, res.IsError)
	var after map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &after))
	assert.Equal(t, "cache", after["source"])
	assert.Equal(t, "/index.html", after["key"])
	assert.Equal(t, "<html>home</html>", after["body"])

	res = callTool(t, s, "lookup_resource", map[string]any{"path": "index.html", "method": "POST"})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(res), `"source": "network"`)

	res = callTool(t, s, "get_cache_status", map[string]any{})
	require.False(t, res.IsError)
	var status map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(res)), &status))
	manager := status["manager"].(map[string]any)
	assert.Equal(t, "ready", manager["state"])
	store := status["store"].(map[string]any)
	assert.Equal(t, float64(1), store["total_entries"])
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	t.Run("lookup_resource missing path", func(t *testing.T) {
		res := callTool(t, s, "lookup_resource", map[string]any{"path": ""})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, resultText(res), "path is required")
	})

	t.Run("bad manifest", func(t *testing.T) {
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetCacheStore").Return(iocache.NewMemoryStore())
		broken := mcp_internal.NewMCPServer(&contract.Config{ManifestPath: "missing.json", Origin: t.TempDir()}, mgr)

		res := callTool(t, broken, "activate_cache", map[string]any{})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(res), "cache manager unavailable")

		res = callTool(t, broken, "get_cache_status", map[string]any{})
		assert.False(t, res.IsError, "status still reports the store")
		assert.Contains(t, resultText(res), "manager_error")
	})
}
