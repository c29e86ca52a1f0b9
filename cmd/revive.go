package cmd

import (
	"github.com/spf13/cobra"

	"github.com/promptgraveyard/graveyard/core"
	"github.com/promptgraveyard/graveyard/internal/contract"
)

// reviveCmd applies one revival suggestion to a zombie record.
var reviveCmd = &cobra.Command{
	Use:   "revive <record-id>",
	Short: "Attempt to revive a zombie prompt with one of its suggestions.",
	Long: `Apply a revival suggestion to a dead prompt and record the outcome.

The attempt validates the record, copies the chosen suggestion into the
ledger as a pending attempt, then resolves it immediately: the attempt
succeeds when the suggestion's confidence score exceeds the revival
threshold. Reviving an already-alive record is a no-op, not an error.

Every attempt lands in the revival ledger, so 'revivals history' and
'revivals stats' can track what worked over time.

Examples:
  # Apply the first (highest confidence) suggestion
  graveyard revive 7f3a9c1e2b84

  # Try the second suggestion instead
  graveyard revive 7f3a9c1e2b84 --suggestion 1

  # Record what you observed alongside the attempt
  graveyard revive 7f3a9c1e2b84 --feedback "clearer, accepted by reviewers"`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		input.RecordIDStr = args[0]
		return sharedSetup(rootCtx, cmd, args)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRevive(rootCtx, cfg, recordStore, ledgerManager); err != nil {
			contract.LogFatal("Cannot revive record", err)
		}
	},
}
