package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/runstore"
	"github.com/huangsam/scorecard/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// resolveBackend reads the backend flags without the full config pipeline.
func resolveBackend() (schema.DatabaseBackend, string, error) {
	if err := readConfigFile(); err != nil {
		return "", "", err
	}
	backend := schema.DatabaseBackend(strings.ToLower(viper.GetString("backend")))
	if backend == "" {
		backend = schema.NoneBackend
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return "", "", fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", backend)
	}
	connStr := viper.GetString("db-connect")
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// runsSetup loads the minimal configuration the runs subcommands need and
// opens the store. No scorecard or records are involved.
func runsSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := resolveBackend()
	if err != nil {
		return err
	}
	if err := runstore.InitStore(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize run store: %w", err)
	}
	cfg.Backend = backend
	cfg.DBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// runsMigrateSetup does NOT open the store, so migrations can run against a
// fresh database before any table exists. For SQLite the connection string
// becomes the database file path.
func runsMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := resolveBackend()
	if err != nil {
		return err
	}
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = runstore.GetRunDBFilePath()
	}
	cfg.Backend = backend
	cfg.DBConnect = connStr
	return nil
}

// runsCmd groups the run history commands.
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage the history of tracked bulk runs",
	Long: `Manage the run history written by bulk and check.

Every tracked run stores:
- Run metadata (batch ID, scorecard name and version, timing, configuration)
- The distribution summary (evaluated, errors, approval rate, average score)
- One row per evaluated record (score, bucket, decision, reason codes)

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show tracking statistics
  export  - Export runs and results to Parquet
  clear   - Remove all tracked runs
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  scorecard runs status

  # Export for analysis in pandas/DuckDB
  scorecard runs export --output-file runs`,
}

// runsStatusCmd shows run store status.
var runsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display run tracking statistics and connection details",
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		store := runstore.Manager.GetRunStore()
		if store == nil {
			contract.LogFatal("Failed to get run status", fmt.Errorf("run tracking is not enabled"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get run status", err)
		}
		runstore.PrintRunStatus(os.Stdout, status)
	},
}

// runsClearCmd clears the run history.
var runsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all tracked runs and results",
	Long: `Delete every stored run and per-record result.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  scorecard runs export --output-file backup
  scorecard runs clear`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ClearRuns(cfg.Backend, cfg.DBConnect, cfg.DBConnect); err != nil {
			contract.LogFatal("Failed to clear run data", err)
		}
		fmt.Println("Run data cleared successfully.")
	},
}

// runsExportCmd exports the run history to Parquet files.
var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export tracked runs and results to Parquet",
	Long: `Export the run history to two Parquet files for analytics tools:
<output-file>.runs.parquet and <output-file>.results.parquet.

Requires: --output-file parameter

Examples:
  scorecard runs export --output-file scorecard-data
  duckdb -c "SELECT bucket, count(*) FROM read_parquet('scorecard-data.results.parquet') GROUP BY 1"`,
	PreRunE: runsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := runstore.ExportRuns(runstore.Manager.GetRunStore(), cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export run data", err)
		}
	},
}

// runsMigrateCmd runs database migrations for the run store.
var runsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the run store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  scorecard runs migrate

  # Roll back to the initial state
  scorecard runs migrate --target-version 0`,
	PreRunE: runsMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		msg, err := runstore.MigrateRuns(cfg.Backend, cfg.DBConnect, targetVersion)
		if err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
		fmt.Println(msg)
	},
}
