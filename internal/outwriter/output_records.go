package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// WriteRecordPage outputs one page of query results, dispatching based on the
// output format configured.
func WriteRecordPage(page schema.RecordPage, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeRecordJSONResults(page, cfg); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeRecordCSVResults(page.Items, cfg, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRecordTable(page, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeRecordJSONResults handles opening the file and calling the JSON writer.
func writeRecordJSONResults(page schema.RecordPage, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSONResultsForRecords(w, page)
	}, "Wrote JSON")
}

// writeRecordCSVResults handles opening the file and calling the CSV writer.
func writeRecordCSVResults(records []schema.EvaluationRecord, cfg *contract.Config, fmtFloat func(float64) string) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		csvWriter := csv.NewWriter(w)
		defer csvWriter.Flush()
		return writeCSVResultsForRecords(csvWriter, records, fmtFloat)
	}, "Wrote CSV")
}

// writeRecordTable generates and writes the human-readable table.
func writeRecordTable(page schema.RecordPage, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	if len(page.Items) == 0 {
		if _, err := fmt.Fprintln(writer, "No records matched the query."); err != nil {
			return err
		}
		_, err := fmt.Fprintf(writer, "Query completed in %v\n", duration)
		return err
	}

	table := newAlignedTable(writer)

	// 1. Define Headers
	headers := []string{"Rank", "ID", "Prompt", "Score", "Severity", "Cost", "Timestamp"}
	table.Header(headers)

	// 2. Populate Rows
	var data [][]string
	for i, r := range page.Items {
		row := []string{
			strconv.Itoa(i + 1), // Rank
			r.ID,                // Record ID
			contract.TruncateText(r.PromptText, GetMaxPromptWidth(cfg)), // Prompt
			fmtFloat(r.ZombieStatus.OverallScore),                       // Score
			severityCell(cfg, r.ZombieStatus.Severity),                  // Severity
			"$" + fmtFloat(r.TotalCost()),                               // Cost
			r.Timestamp.Format(tableTimeFormat),                         // Timestamp
		}
		data = append(data, row)
	}

	// 3. Render the table
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	// Compute summary stats
	zombies := countZombies(page.Items)
	if _, err := fmt.Fprintf(writer, "Showing %d of %d records (page %d of %d, %d zombies on page)\n", len(page.Items), page.Total, page.Page, page.TotalPages, zombies); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Query completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForRecords writes the query results in CSV format.
func writeCSVResultsForRecords(w *csv.Writer, records []schema.EvaluationRecord, fmtFloat func(float64) string) error {
	// CSV header
	header := []string{
		"rank",
		"prompt_id",
		"prompt_text",
		"timestamp",
		"overall_score",
		"severity",
		"is_zombie",
		"failed_metrics",
		"total_cost_usd",
		"mean_latency_ms",
		"suggestions",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, r := range records {
		rec := []string{
			strconv.Itoa(i + 1), // Rank
			r.ID,                // Record ID
			r.PromptText,        // Prompt Text
			r.Timestamp.Format(contract.DateTimeFormat),          // Timestamp
			fmtFloat(r.ZombieStatus.OverallScore),                // Overall Score
			contract.GetPlainLabel(r.ZombieStatus.Severity),      // Severity
			strconv.FormatBool(r.ZombieStatus.IsZombie),          // Zombie flag
			strings.Join(r.ZombieStatus.FailedMetrics, "|"),      // Failed critical metrics
			fmtFloat(r.TotalCost()),                              // Total Cost
			fmtFloat(r.MeanLatency()),                            // Mean Latency
			strconv.Itoa(len(r.RevivalSuggestions)),              // Suggestion count
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeJSONResultsForRecords writes the query results in JSON format.
func writeJSONResultsForRecords(w io.Writer, page schema.RecordPage) error {
	// 1. Prepare the data structure for JSON with rank and label added
	type JSONRecordResult struct {
		Rank  int    `json:"rank"`
		Label string `json:"label"`
		schema.EvaluationRecord
	}
	type JSONRecordPage struct {
		Items      []JSONRecordResult `json:"items"`
		Total      int                `json:"total"`
		Page       int                `json:"page"`
		TotalPages int                `json:"total_pages"`
	}

	items := make([]JSONRecordResult, len(page.Items))
	for i, r := range page.Items {
		items[i] = JSONRecordResult{
			Rank:             i + 1,
			Label:            contract.GetPlainLabel(r.ZombieStatus.Severity),
			EvaluationRecord: r,
		}
	}

	// 2. Use the generic JSON writer
	return writeJSON(w, JSONRecordPage{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		TotalPages: page.TotalPages,
	})
}

// countZombies counts the zombie records in a slice.
func countZombies(records []schema.EvaluationRecord) int {
	count := 0
	for _, r := range records {
		if r.ZombieStatus.IsZombie {
			count++
		}
	}
	return count
}
