package cmd

import (
	"github.com/huangsam/swcache/core"
	"github.com/huangsam/swcache/internal/contract"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// getCmd intercepts one request against the stored cache.
var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Request a path cache-first and report where it was answered from.",
	Long: `Run a single GET request through the offline cache.

Cached paths are answered from the store (HIT) without touching the origin.
Anything else is fetched live from the origin (MISS) and is not stored.
The cache is not rebuilt; run 'swcache activate' first.

Examples:
  # Show whether the app shell is served offline
  swcache get / -m manifest.json --origin https://cdn.example.com/app

  # Print a cached asset to stdout
  swcache get main.dart.js -m manifest.json --origin build/web --body > main.dart.js`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteGet(rootCtx, cfg, storeManager, args[0], viper.GetBool("body")); err != nil {
			contract.LogFatal("Cannot get resource", err)
		}
	},
}
