package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/huangsam/swcache/core"
	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager

	mu      sync.Mutex
	manager *core.Manager // Built on first use so a bad manifest does not stop the server
}

// cacheManager returns the shared cache manager, building it on first use.
func (h *toolHandler) cacheManager(ctx context.Context) (*core.Manager, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.manager != nil {
		return h.manager, nil
	}
	m, err := core.NewFromConfig(ctx, h.baseCfg, h.mgr)
	if err != nil {
		return nil, err
	}
	h.manager = m
	return m, nil
}

type statusResult struct {
	Manager      *schema.ManagerStatus `json:"manager,omitempty"`
	ManagerError string                `json:"manager_error,omitempty"`
	Store        *schema.CacheStatus   `json:"store,omitempty"`
	StoreError   string                `json:"store_error,omitempty"`
}

func (h *toolHandler) handleGetCacheStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var result statusResult
	if m, err := h.cacheManager(ctx); err != nil {
		result.ManagerError = err.Error()
	} else {
		status := m.Status()
		result.Manager = &status
	}

	if store := h.mgr.GetCacheStore(); store == nil {
		result.StoreError = "no cache store is configured"
	} else if status, err := store.GetStatus(); err != nil {
		result.StoreError = err.Error()
	} else {
		result.Store = &status
	}

	return jsonResult(result)
}

type lookupResult struct {
	Key         string                `json:"key"`
	Source      schema.ResponseSource `json:"source"`
	Status      int                   `json:"status"`
	ContentType string                `json:"content_type,omitempty"`
	SizeBytes   int                   `json:"size_bytes"`
	Body        string                `json:"body,omitempty"`
}

func (h *toolHandler) handleLookupResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := strings.TrimSpace(request.GetString("path", ""))
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}
	method := strings.ToUpper(request.GetString("method", "GET"))

	m, err := h.cacheManager(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cache manager unavailable: %v", err)), nil
	}
	resp, err := m.Intercept(ctx, schema.Request{Method: method, Path: path})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}

	result := lookupResult{
		Key:         schema.NormalizeKey(path),
		Source:      resp.Source,
		Status:      resp.Status,
		ContentType: resp.ContentType(),
		SizeBytes:   len(resp.Body),
	}
	if request.GetBool("include_body", false) {
		if !utf8.Valid(resp.Body) {
			return mcp.NewToolResultError("response body is not valid UTF-8 text"), nil
		}
		result.Body = string(resp.Body)
	}
	return jsonResult(result)
}

func (h *toolHandler) handleActivateCache(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := h.cacheManager(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cache manager unavailable: %v", err)), nil
	}
	result, err := m.Activate(core.WithTrigger(ctx, core.TriggerMCP))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("activation failed: %v", err)), nil
	}
	return jsonResult(result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
