package cmd

import (
	"fmt"

	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/internal/iocache"
	"github.com/hotspotlabs/hotreport/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads the minimal configuration needed for cache operations.
func cacheSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// cacheCmd focused on cache management.
//
// Cache subcommands skip the full sharedSetup so they work outside a Git repository.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the Git activity cache",
	Long: `Manage the Git activity cache that speeds up repeated reports.

Hotreport caches the repository-wide git log aggregation, keyed by HEAD and
the time window, so reports on different patterns share one pass over history.

Examples:
  hotreport cache status
  hotreport cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached Git activity data",
	Long: `Delete all cached Git activity data from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  hotreport cache clear
  HOTREPORT_CACHE_BACKEND=mysql HOTREPORT_CACHE_DB_CONNECT="..." hotreport cache clear`,
	PreRunE: cacheSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		cmd.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the cache backend, its connection state, entry count, entry
timestamps and table size.

Examples:
  hotreport cache status`,
	PreRunE: cacheSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		store, err := iocache.NewCacheStore(iocache.ActivityTable, cfg.CacheBackend, cfg.CacheDBConnect)
		if err != nil {
			contract.LogFatal("Failed to open cache", err)
		}
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", fmt.Errorf("%s backend: %w", cfg.CacheBackend, err))
		}
		iocache.PrintCacheStatus(cmd.OutOrStdout(), status)
	},
}
