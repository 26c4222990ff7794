// Package main is the entry point of the hotreport CLI.
package main

import (
	"github.com/hotspotlabs/hotreport/cmd"
	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/internal/iocache"
)

func main() {
	cmd.SetCacheManager(iocache.Manager)
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		contract.LogFatal("Error running hotreport", err)
	}
}
