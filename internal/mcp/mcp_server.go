// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the swcache MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"swcache Offline Cache Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg.Clone(),
		mgr:     mgr,
	}

	// --- 1. Tool: get_cache_status ---
	s.AddTool(mcp.NewTool("get_cache_status",
		mcp.WithDescription("Report the cache manager state, the last activation and cache store statistics."),
	), h.handleGetCacheStatus)

	// --- 2. Tool: lookup_resource ---
	s.AddTool(mcp.NewTool("lookup_resource",
		mcp.WithDescription("Request a path through the offline cache and report whether it was served from the cache or the origin."),
		mcp.WithString("path", mcp.Description("Request path such as '/' or 'main.dart.js'."), mcp.Required()),
		mcp.WithString("method", mcp.Description("HTTP method. Only GET requests can be answered from the cache."), mcp.Enum("GET", "HEAD", "POST", "PUT", "DELETE")),
		mcp.WithBoolean("include_body", mcp.Description("Include the response body as text.")),
	), h.handleLookupResource)

	// --- 3. Tool: activate_cache ---
	s.AddTool(mcp.NewTool("activate_cache",
		mcp.WithDescription("Delete every cache and repopulate the named cache from the resource manifest."),
	), h.handleActivateCache)

	return s
}

// StartMCPServer starts the swcache MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
