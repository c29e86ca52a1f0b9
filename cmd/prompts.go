package cmd

import (
	"github.com/spf13/cobra"

	"github.com/promptgraveyard/graveyard/core"
	"github.com/promptgraveyard/graveyard/internal/contract"
)

// promptsCmd lists evaluation records with filters and pagination.
var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List evaluated prompts with filters, sorting, and pagination.",
	Long: `Browse the full graveyard of evaluated prompts.

Reads the record log and renders one row per evaluation, helping you:
- See every prompt that has been through the evaluation pipeline
- Filter by zombie status, severity tier, score range, date, or provider
- Sort by evaluation time, overall score, total cost, or mean latency
- Page through large record logs without flooding the terminal

Each row shows the record ID, prompt text, severity label, overall score,
cost, and latency, ranked according to your sort settings.

Examples:
  # Show the most recent evaluations
  graveyard prompts --limit 20

  # Worst scores first
  graveyard prompts --sort-by score --sort-order asc

  # Only rotting prompts evaluated this year
  graveyard prompts --severity rotting --date-from 2026-01-01

  # Expensive prompts from one provider
  graveyard prompts --provider openai_gpt4 --sort-by cost --sort-order desc

  # Export a filtered page to CSV
  graveyard prompts --zombie yes --output csv --output-file zombies.csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGraveyardPrompts(rootCtx, cfg, recordStore); err != nil {
			contract.LogFatal("Cannot list prompts", err)
		}
	},
}
