package cmd

import (
	"github.com/spf13/cobra"

	"github.com/promptgraveyard/graveyard/core"
	"github.com/promptgraveyard/graveyard/internal/contract"
)

// evaluateCmd runs the evaluation pipeline over a prompt file or directory.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <prompts-path>",
	Short: "Evaluate prompts against the simulated providers.",
	Long: `Run prompts through the evaluation pipeline and append the results.

Accepts either a single .txt file (one prompt) or a directory of .txt
files (one prompt per file, in name order). Each prompt is sent to every
simulated provider, scored across the five metrics, classified, and given
revival suggestions when it turns out dead. New records append to the
record log configured with --results.

The providers are deterministic for a fixed --seed, which makes runs
reproducible in tests and CI.

Examples:
  # Evaluate a directory of prompts
  graveyard evaluate ./prompts

  # Evaluate one prompt file with a fixed seed
  graveyard evaluate ./prompts/checkout_flow.txt --seed 42

  # Faster runs on a big prompt set
  graveyard evaluate ./prompts --workers 8 --rate-limit 600`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		input.PromptsPathStr = args[0]
		return sharedSetup(rootCtx, cmd, args)
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEvaluate(rootCtx, cfg, recordStore); err != nil {
			contract.LogFatal("Cannot evaluate prompts", err)
		}
	},
}
