package cmd

import (
	"github.com/huangsam/swcache/core"
	"github.com/huangsam/swcache/internal/contract"
	"github.com/spf13/cobra"
)

// activateCmd rebuilds the offline cache once.
var activateCmd = &cobra.Command{
	Use:   "activate",
	Short: "Rebuild the offline cache from the resource manifest.",
	Long: `Delete every existing cache and repopulate the named cache with every resource
listed in the manifest.

Activation is all-or-nothing: if any resource cannot be fetched (transport error,
non-2xx status, or a hash mismatch with --verify-hashes) nothing is stored and the
command exits with an error. Run it again once the origin is healthy.

Examples:
  # Activate from a generated service worker and a local build directory
  swcache activate --manifest build/web/flutter_service_worker.js --origin build/web

  # Activate from a YAML manifest against a CDN, checking MD5 tokens
  swcache activate -m manifest.yaml --origin https://cdn.example.com/app --verify-hashes

  # Activate from S3 and record the summary as JSON
  swcache activate -m manifest.json --origin s3://assets/app/v42 --output json`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteActivate(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot activate cache", err)
		}
	},
}
