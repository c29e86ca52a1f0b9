package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/promptgraveyard/graveyard/core"
	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/internal/ledger"
	"github.com/promptgraveyard/graveyard/schema"
)

// ledgerSetup loads minimal configuration needed for ledger maintenance.
// It deliberately skips store initialization so clear and migrate can run
// against a fresh or broken database without creating tables first.
func ledgerSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get ledger-related config values
	backend := schema.DatabaseBackend(viper.GetString("ledger-backend"))
	connStr := viper.GetString("ledger-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.LedgerBackend = backend
	cfg.LedgerDBConnect = connStr

	return nil
}

// ledgerSetupWrapper wraps ledgerSetup to provide PreRunE for ledger commands.
func ledgerSetupWrapper(_ *cobra.Command, _ []string) error {
	return ledgerSetup()
}

// ledgerCmd focused on revival ledger management.
//
// Note: The clear and migrate subcommands use minimal initialization
// (ledgerSetup) instead of the full sharedSetup used by query commands.
// This avoids record log processing and lets migrations run on a database
// that does not exist yet.
var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Manage the revival attempt ledger",
	Long: `Manage the database that stores revival attempt history.

Every revive run appends events to the ledger, which powers the
'revivals history' and 'revivals stats' commands.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status  - Show ledger statistics and connection info
  clear   - Remove all recorded attempts
  migrate - Run database schema migrations

Examples:
  # Check ledger status
  graveyard ledger status

  # Clear history after a test run
  graveyard ledger clear`,
}

// ledgerStatusCmd shows ledger status.
var ledgerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display ledger statistics and connection details",
	Long: `Show detailed information about the revival ledger.

Displays:
- Backend type and connection status
- Total number of stored events and attempts
- First and last event timestamps
- Ledger storage size

Use this to:
- Verify the ledger is connected and recording
- Monitor attempt history growth over time
- Debug backend connection issues

Examples:
  # Check ledger status
  graveyard ledger status

  # Status as JSON for monitoring
  graveyard ledger status --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteLedgerStatus(rootCtx, cfg, ledgerManager); err != nil {
			contract.LogFatal("Cannot get ledger status", err)
		}
	},
}

// ledgerClearCmd clears the ledger.
var ledgerClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all revival attempt history",
	Long: `Delete all recorded revival attempts from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the ledger table

WARNING: This action cannot be undone. Consider exporting attempts first
with 'graveyard export'.

Examples:
  # Clear SQLite ledger (default)
  graveyard ledger clear

  # Clear MySQL ledger (set connection string via env variable)
  GRAVEYARD_LEDGER_BACKEND=mysql GRAVEYARD_LEDGER_DB_CONNECT="..." graveyard ledger clear`,
	Args:    cobra.NoArgs,
	PreRunE: ledgerSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		// For SQLite the connect string overrides the default file path,
		// matching how the store and migrations resolve it.
		dbFilePath := cfg.LedgerDBConnect
		if dbFilePath == "" {
			dbFilePath = ledger.GetDBFilePath()
		}
		if err := ledger.ClearLedger(cfg.LedgerBackend, dbFilePath, cfg.LedgerDBConnect); err != nil {
			contract.LogFatal("Failed to clear ledger", err)
		}
		fmt.Println("Revival ledger cleared successfully.")
	},
}

// ledgerMigrateCmd runs database migrations for the ledger store.
var ledgerMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the revival ledger.

Migrations allow:
- Upgrading to new schema versions when graveyard is updated
- Safely modifying database structure without data loss
- Rolling back schema changes if needed

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  graveyard ledger migrate

  # Migrate to specific version
  graveyard ledger migrate --target-version 1

  # Rollback to previous version
  graveyard ledger migrate --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: ledgerSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := ledger.MigrateLedger(cfg.LedgerBackend, cfg.LedgerDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
