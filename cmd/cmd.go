// Package cmd defines the command-line interface for graveyard.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(zombiesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reviveCmd)
	rootCmd.AddCommand(revivalsCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(ledgerCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the revivals subcommands to the parent revivals command
	revivalsCmd.AddCommand(revivalsHistoryCmd)
	revivalsCmd.AddCommand(revivalsStatsCmd)

	// Add the ledger subcommands to the parent ledger command
	ledgerCmd.AddCommand(ledgerStatusCmd)
	ledgerCmd.AddCommand(ledgerClearCmd)
	ledgerCmd.AddCommand(ledgerMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("results", contract.DefaultResultsPath, "Path to the evaluation record log (JSON Lines)")
	rootCmd.PersistentFlags().String("stale-after", "", "How long the in-memory record snapshot stays fresh (e.g. '45s' or '5 minutes')")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("ledger-backend", string(schema.SQLiteBackend), "Ledger backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("ledger-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("emoji", "yes", "Enable emojis in output headers (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().IntP("page", "p", schema.DefaultPage, "Page number to display")
	rootCmd.PersistentFlags().IntP("limit", "l", schema.DefaultLimit, "Number of records per page")
	rootCmd.PersistentFlags().String("sort-by", string(schema.SortByTimestamp), "Sort field: timestamp or score or cost or latency")
	rootCmd.PersistentFlags().String("sort-order", string(schema.SortDesc), "Sort order: asc or desc")
	rootCmd.PersistentFlags().String("zombie", "", "Filter by zombie status (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("severity", "", "Filter by severity: alive or shambling or rotting or skeletal")
	rootCmd.PersistentFlags().String("min-score", "", "Minimum overall score (0.0-1.0)")
	rootCmd.PersistentFlags().String("max-score", "", "Maximum overall score (0.0-1.0)")
	rootCmd.PersistentFlags().String("date-from", "", "Earliest evaluation time in ISO8601, YYYY-MM-DD, or time ago")
	rootCmd.PersistentFlags().String("date-to", "", "Latest evaluation time in ISO8601, YYYY-MM-DD, or time ago")
	rootCmd.PersistentFlags().String("provider", "", "Filter by provider name")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of reviveCmd to Viper
	reviveCmd.Flags().IntP("suggestion", "s", 0, "Index of the revival suggestion to apply")
	reviveCmd.Flags().StringP("feedback", "f", "", "Optional user feedback recorded on the attempt")
	if err := viper.BindPFlags(reviveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding revive flags", err)
	}

	// Bind all flags of evaluateCmd to Viper
	evaluateCmd.Flags().IntP("workers", "w", contract.DefaultWorkers, "Number of concurrent evaluation workers")
	evaluateCmd.Flags().Int64("seed", 0, "Random seed for the simulated providers")
	evaluateCmd.Flags().Int("rate-limit", contract.DefaultRateLimit, "Provider calls allowed per minute")
	if err := viper.BindPFlags(evaluateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding evaluate flags", err)
	}

	// Bind all flags of exportCmd to Viper
	exportCmd.Flags().String("records-file", "graveyard_records.parquet", "Output path for the records dataset (empty to skip)")
	exportCmd.Flags().String("responses-file", "graveyard_responses.parquet", "Output path for the provider responses dataset (empty to skip)")
	exportCmd.Flags().String("attempts-file", "graveyard_attempts.parquet", "Output path for the revival attempts dataset (empty to skip)")
	if err := viper.BindPFlags(exportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding export flags", err)
	}

	// Bind all flags of ledgerMigrateCmd to Viper
	ledgerMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(ledgerMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding ledger migrate flags", err)
	}
}
