package cmd

import (
	"github.com/spf13/cobra"

	"github.com/promptgraveyard/graveyard/core"
	"github.com/promptgraveyard/graveyard/internal/contract"
)

// zombiesCmd lists only the records classified as zombies.
var zombiesCmd = &cobra.Command{
	Use:   "zombies",
	Short: "List only the prompts that failed evaluation.",
	Long: `Show the undead: prompts whose overall score fell below the alive threshold.

This is the prompts listing with the zombie filter forced on, which makes it
the quickest way to:
- Review everything that needs attention right now
- Triage by severity (shambling, rotting, skeletal)
- Pick candidates for the revive command

All other filters still apply, so you can narrow by severity, score band,
date range, or provider.

Examples:
  # All zombies, most recent first
  graveyard zombies

  # The most decayed prompts only
  graveyard zombies --severity skeletal

  # Borderline cases worth reviving first
  graveyard zombies --min-score 0.4 --sort-by score --sort-order desc`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteGraveyardZombies(rootCtx, cfg, recordStore); err != nil {
			contract.LogFatal("Cannot list zombies", err)
		}
	},
}
