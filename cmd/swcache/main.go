// main is the entry point for the swcache CLI.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/swcache/cmd"
	"github.com/huangsam/swcache/internal/iocache"
)

func main() {
	defer iocache.CloseStores()
	defer cmd.SyncLogger()

	if err := cmd.Execute(); err != nil {
		_ = cmd.StopProfiling()
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
	if err := cmd.StopProfiling(); err != nil {
		fmt.Fprintln(os.Stderr, "⚠️  Warning:", err)
	}
}
