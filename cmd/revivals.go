package cmd

import (
	"github.com/spf13/cobra"

	"github.com/promptgraveyard/graveyard/core"
	"github.com/promptgraveyard/graveyard/internal/contract"
)

// revivalsCmd groups the revival ledger read commands.
var revivalsCmd = &cobra.Command{
	Use:   "revivals",
	Short: "Inspect past revival attempts",
	Long: `Read the revival ledger built up by the revive command.

Every revival attempt is recorded with the suggestion it applied, the
confidence score, the outcome, and any feedback you attached. These
commands read that history back.

Subcommands:
  history - List attempts, optionally for a single record
  stats   - Summarize attempts and the most successful strategy

Examples:
  # Everything ever attempted
  graveyard revivals history

  # Attempts against one record
  graveyard revivals history 7f3a9c1e2b84

  # Which strategy actually works
  graveyard revivals stats`,
}

// revivalsHistoryCmd lists revival attempts in append order.
var revivalsHistoryCmd = &cobra.Command{
	Use:   "history [record-id]",
	Short: "List revival attempts, optionally scoped to one record",
	Long: `List revival attempts from the ledger in the order they were made.

Without an argument, every attempt is shown. With a record ID, only the
attempts against that record are shown. Each row carries the strategy,
confidence score, outcome, and timestamps.

Examples:
  # Full history
  graveyard revivals history

  # One record's history as JSON
  graveyard revivals history 7f3a9c1e2b84 --output json`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 1 {
			input.RecordIDStr = args[0]
		}
		return sharedSetup(rootCtx, cmd, args)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRevivalHistory(rootCtx, cfg, recordStore, ledgerManager); err != nil {
			contract.LogFatal("Cannot load revival history", err)
		}
	},
}

// revivalsStatsCmd summarizes the attempt ledger.
var revivalsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize revival attempts and success rates",
	Long: `Aggregate the revival ledger into summary numbers.

Shows:
- Total attempts and how many succeeded
- Overall success rate
- The strategy with the most successful revivals
- The ten most recent attempts

Examples:
  # Summary table
  graveyard revivals stats

  # Feed the numbers into a report
  graveyard revivals stats --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRevivalStats(rootCtx, cfg, recordStore, ledgerManager); err != nil {
			contract.LogFatal("Cannot compute revival stats", err)
		}
	},
}
