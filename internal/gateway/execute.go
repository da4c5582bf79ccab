package gateway

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/huangsam/swcache/core"
	"github.com/huangsam/swcache/internal/contract"
)

// ExecuteServe starts activation in the background and serves requests
// until ctx ends. Requests arriving during activation wait for it.
// It serves as the main entry point for the 'serve' command.
func ExecuteServe(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	m, err := core.NewFromConfig(ctx, cfg, mgr)
	if err != nil {
		return err
	}

	activateCtx := core.WithTrigger(ctx, core.TriggerStartup)
	var cancel context.CancelFunc
	if cfg.ActivateTimeout > 0 {
		activateCtx, cancel = context.WithTimeout(activateCtx, cfg.ActivateTimeout)
	} else {
		activateCtx, cancel = context.WithCancel(activateCtx)
	}
	done := m.ActivateInBackground(activateCtx)

	var wg sync.WaitGroup
	wg.Go(func() {
		if err := <-done; err != nil {
			contract.LogWarn("Startup activation failed; requests fall through to the origin", err)
			return
		}
		core.Logger().Info("startup activation finished", zap.String("cache", m.CacheName()))
	})
	defer func() {
		cancel()
		wg.Wait()
	}()

	fmt.Fprintf(os.Stderr, "Serving %d manifest entries as %q on %s (origin: %s)\n",
		len(m.Manifest()), m.CacheName(), cfg.Listen, cfg.Origin)
	return Serve(ctx, cfg.Listen, Handler(m, mgr.GetCacheStore()))
}
