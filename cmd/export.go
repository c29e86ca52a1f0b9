package cmd

import (
	"github.com/spf13/cobra"

	"github.com/promptgraveyard/graveyard/core"
	"github.com/promptgraveyard/graveyard/internal/contract"
)

// exportCmd writes the graveyard data to Parquet files.
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export graveyard data to Parquet for BI tools and analytics",
	Long: `Export the record log and revival ledger to Parquet format.

Exports three datasets:
- Records - one row per evaluated prompt with its zombie classification
- Responses - one row per provider response, flattened from each record
- Attempts - one row per revival attempt from the ledger

Parquet format enables:
- Fast querying with DuckDB, Apache Spark, pandas
- Efficient storage with columnar compression
- Direct import into BI tools (Tableau, Metabase, etc.)

Pass an empty path for a dataset to skip it.

Examples:
  # Export everything with the default file names
  graveyard export

  # Only the records dataset, to a custom path
  graveyard export --records-file data/records.parquet --responses-file "" --attempts-file ""

  # Query the export with DuckDB
  graveyard export
  duckdb -c "SELECT severity, count(*) FROM read_parquet('graveyard_records.parquet') GROUP BY 1"`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteExport(rootCtx, cfg, recordStore, ledgerManager); err != nil {
			contract.LogFatal("Cannot export graveyard data", err)
		}
	},
}
