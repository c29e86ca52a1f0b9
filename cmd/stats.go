package cmd

import (
	"github.com/spf13/cobra"

	"github.com/promptgraveyard/graveyard/core"
	"github.com/promptgraveyard/graveyard/internal/contract"
)

// statsCmd aggregates the whole record log into summary numbers.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display aggregate statistics for the whole graveyard.",
	Long: `Summarize the record log in a single view.

Shows:
- Total prompts evaluated and how many are zombies
- Zombie counts broken down by severity tier
- Average overall score across all records
- Total provider cost and mean response latency
- How many records carry revival suggestions

Aggregates always cover the entire record log; query filters and
pagination do not apply here.

Examples:
  # Text summary
  graveyard stats

  # Machine-readable summary for dashboards
  graveyard stats --output json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGraveyardStats(rootCtx, cfg, recordStore); err != nil {
			contract.LogFatal("Cannot compute stats", err)
		}
	},
}
