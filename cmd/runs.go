package cmd

import (
	"github.com/hotspotlabs/hotreport/internal/contract"
	"github.com/hotspotlabs/hotreport/internal/iocache"
	"github.com/hotspotlabs/hotreport/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runsSetup loads the minimal configuration needed for run history operations.
// It does not open the store, so migrate can run against a fresh database.
func runsSetup(_ *cobra.Command, _ []string) error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("runs-backend"))
	if backend == "" {
		backend = schema.NoneBackend
	}
	connStr := viper.GetString("runs-db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.RunsBackend = backend
	cfg.RunsDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// openRunStore opens the configured run store or exits.
func openRunStore() *iocache.RunStoreImpl {
	store, err := iocache.NewRunStore(cfg.RunsBackend, cfg.RunsDBConnect)
	if err != nil {
		contract.LogFatal("Failed to open run history", err)
	}
	return store
}

// runsCmd focused on report run history.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the history of report runs",
	Long: `Manage the history of report runs.

When --runs-backend is set, every report records its ranked files and their
scores so they can be compared over time or exported for analytics.

Examples:
  hotreport runs status --runs-backend sqlite
  hotreport runs export --runs-backend sqlite --output-file history`,
}

// runsClearCmd deletes the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded report runs",
	Long: `Delete every recorded report run and file score.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the run history tables`,
	PreRunE: runsSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := iocache.ClearRuns(cfg.RunsBackend, cfg.RunsDBConnect); err != nil {
			contract.LogFatal("Failed to clear run history", err)
		}
		cmd.Println("Run history cleared successfully.")
	},
}

// runsStatusCmd shows run history status.
var runsStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display run history statistics and connection details",
	Long: `Show the run history backend, its schema version, run and file score
counts and the time of the first and last run.`,
	PreRunE: runsSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		store := openRunStore()
		defer func() { _ = store.Close() }()

		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run history status", err)
		}
		iocache.PrintRunStatus(cmd.OutOrStdout(), status)
	},
}

// runsExportCmd exports the run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export run history to Parquet for BI tools and analytics",
	Long: `Export all recorded runs to two Parquet files:

  <output-file>.runs.parquet         one row per report run
  <output-file>.file_scores.parquet  one row per ranked file per run

Requires: --output-file parameter

Examples:
  hotreport runs export --output-file history
  duckdb -c "SELECT * FROM read_parquet('history.file_scores.parquet') LIMIT 10"`,
	PreRunE: runsSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		store := openRunStore()
		defer func() { _ = store.Close() }()

		if err := iocache.ExportRuns(store, cfg.OutputFile, cmd.OutOrStdout()); err != nil {
			contract.LogFatal("Failed to export run history", err)
		}
	},
}

// runsMigrateCmd runs schema migrations for the run history store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage schema versions of the run history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  hotreport runs migrate --runs-backend sqlite

  # Roll back every migration
  hotreport runs migrate --runs-backend sqlite --target-version 0`,
	PreRunE: runsSetup,
	Run: func(cmd *cobra.Command, _ []string) {
		res, err := iocache.MigrateRuns(cfg.RunsBackend, cfg.RunsDBConnect, viper.GetInt("target-version"))
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		iocache.PrintMigrateResult(cmd.OutOrStdout(), res)
	},
}
