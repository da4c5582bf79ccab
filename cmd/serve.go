package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/swcache/internal/contract"
	"github.com/huangsam/swcache/internal/gateway"
	"github.com/spf13/cobra"
)

// serveCmd runs the caching gateway.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run an HTTP gateway that answers requests cache-first.",
	Long: `Start an HTTP server in front of the origin.

On startup the cache is rebuilt in the background. Requests that arrive while
activation is running wait for it to finish. Every response carries an
X-Swcache header set to HIT or MISS.

Admin endpoints:
  GET  /_swcache/status    - Manager state, last activation and store statistics
  POST /_swcache/activate  - Rebuild the cache now

Examples:
  # Serve a Flutter web build offline-first on port 8080
  swcache serve -m build/web/flutter_service_worker.js --origin build/web

  # Front a CDN, giving up on the startup activation after 30s
  swcache serve -m manifest.json --origin https://cdn.example.com/app --listen :9000 --activate-timeout 30s`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := gateway.ExecuteServe(ctx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot serve", err)
		}
	},
}
