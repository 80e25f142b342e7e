// main is the entry point for the cashtrend CLI.
package main

import (
	"github.com/huangsam/cashtrend/cmd"
	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	defer iocache.CloseCaching()
	defer cmd.SyncLogger()

	err := cmd.Execute()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		iocache.CloseCaching()
		contract.LogFatal("Command failed", err)
	}
}
