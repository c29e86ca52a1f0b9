package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// WriteEvaluationOutcome outputs the records produced by one evaluation run,
// dispatching based on the output format configured.
func WriteEvaluationOutcome(records []schema.EvaluationRecord, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSONResultsForEvaluation(w, records)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForRecords(csvWriter, records, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeEvaluationTable(records, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeEvaluationTable generates and writes the human-readable table.
func writeEvaluationTable(records []schema.EvaluationRecord, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	table := newAlignedTable(writer)
	table.Header([]string{"Rank", "ID", "Prompt", "Score", "Severity", "Suggestions"})

	var data [][]string
	for i, r := range records {
		row := []string{
			strconv.Itoa(i + 1),
			r.ID,
			contract.TruncateText(r.PromptText, GetMaxPromptWidth(cfg)),
			fmtFloat(r.ZombieStatus.OverallScore),
			severityCell(cfg, r.ZombieStatus.Severity),
			strconv.Itoa(len(r.RevivalSuggestions)),
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Evaluated %d prompts (%d zombies) in %v with %d workers\n", len(records), countZombies(records), duration, cfg.Workers); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Results appended to %s\n", cfg.ResultsPath); err != nil {
		return err
	}
	return nil
}

// writeJSONResultsForEvaluation writes the evaluation run in JSON format.
func writeJSONResultsForEvaluation(w io.Writer, records []schema.EvaluationRecord) error {
	// 1. Prepare the data structure for JSON with rank and label added
	type JSONRecordResult struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.EvaluationRecord
	}
	type JSONEvaluationOutcome struct {
		Evaluated   int                `json:"evaluated"`
		ZombieCount int                `json:"zombie_count"`
		Records     []JSONRecordResult `json:"records"`
	}

	items := make([]JSONRecordResult, len(records))
	for i, r := range records {
		items[i] = JSONRecordResult{
			Rank:             i + 1,
			Label:            contract.GetPlainLabel(r.ZombieStatus.Severity),
			EvaluationRecord: r,
		}
	}

	// 2. Use the generic JSON writer
	return writeJSON(w, JSONEvaluationOutcome{
		Evaluated:   len(records),
		ZombieCount: countZombies(records),
		Records:     items,
	})
}
