// main is the entry point for the graveyard CLI.
package main

import (
	"fmt"
	"os"

	"github.com/promptgraveyard/graveyard/cmd"
	"github.com/promptgraveyard/graveyard/internal/ledger"
)

func main() {
	// Hand the global ledger manager to the command layer before any
	// command runs, so revive and ledger commands share one instance.
	cmd.SetLedgerManager(ledger.Manager)

	err := cmd.Execute()

	// Flush profiles and close the ledger even when the command failed.
	if profErr := cmd.StopProfiling(); profErr != nil && err == nil {
		err = profErr
	}
	ledger.CloseLedger()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
