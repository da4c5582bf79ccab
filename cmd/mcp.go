package cmd

import (
	"github.com/huangsam/swcache/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the swcache MCP server",
	Long: `Launch an MCP server over stdio that lets AI agents inspect and drive the offline cache.

Tools:
  get_cache_status - Manager state, last activation and store statistics
  lookup_resource  - Request a path cache-first and report HIT or MISS
  activate_cache   - Rebuild the cache from the manifest

Runtime logs go to stderr so they never mix with the protocol on stdout.`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}
