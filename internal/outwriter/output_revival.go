package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// PrintRevivalResult displays the outcome of one revival attempt, dispatching
// based on the output format configured.
func PrintRevivalResult(result schema.RevivalResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		return printRevivalResultCSV(result, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return printRevivalResultText(w, result, cfg, duration)
		}, "Wrote text")
	}
}

// printRevivalResultText displays the revival outcome in human-readable text format.
func printRevivalResultText(w io.Writer, result schema.RevivalResult, cfg *contract.Config, duration time.Duration) error {
	if err := headerLine(w, cfg, "⚡", "Revival Attempt"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%-13s%s\n", "Record:", result.RecordID); err != nil {
		return err
	}
	if result.AlreadyAlive {
		if _, err := fmt.Fprintf(w, "%-13s%s\n", "Message:", result.Message); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\nRevival completed in %v\n", duration)
		return err
	}

	fmtFloat, _ := createFormatters(cfg.Precision)
	if _, err := fmt.Fprintf(w, "%-13s%s\n", "Attempt:", result.AttemptID); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-13s%s\n", "Status:", statusCell(cfg, result.Status)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-13s%s\n", "Strategy:", result.Strategy); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-13s%s\n", "Technique:", result.Technique); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-13s%s\n", "Confidence:", fmtFloat(result.ConfidenceScore)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-13s%s\n", "Message:", result.Message); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nImproved prompt:\n%s\n", result.ImprovedPrompt); err != nil {
		return err
	}

	if len(result.ExpectedImprovements) > 0 {
		if _, err := fmt.Fprintf(w, "\nExpected improvements:\n"); err != nil {
			return err
		}
		for _, metric := range slices.Sorted(maps.Keys(result.ExpectedImprovements)) {
			if _, err := fmt.Fprintf(w, "  %s: +%s\n", metric, fmtFloat(result.ExpectedImprovements[metric])); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintf(w, "\nRevival completed in %v\n", duration)
	return err
}

// printRevivalResultCSV displays the revival outcome as a single CSV row.
func printRevivalResultCSV(result schema.RevivalResult, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		header := []string{
			"attempt_id",
			"record_id",
			"already_alive",
			"success",
			"status",
			"strategy",
			"technique",
			"confidence_score",
			"message",
		}
		return writeCSVWithHeader(w, header, func(csvWriter *csv.Writer) error {
			return csvWriter.Write([]string{
				result.AttemptID,
				result.RecordID,
				strconv.FormatBool(result.AlreadyAlive),
				strconv.FormatBool(result.Success),
				string(result.Status),
				result.Strategy,
				result.Technique,
				fmtFloat(result.ConfidenceScore),
				result.Message,
			})
		})
	}, "Wrote CSV")
}

// PrintRevivalHistory displays recorded revival attempts, dispatching based on
// the output format configured.
func PrintRevivalHistory(attempts []schema.RevivalAttempt, cfg *contract.Config, duration time.Duration) error {
	// Create formatters using helper
	fmtFloat, _ := createFormatters(cfg.Precision)

	// Dispatcher: Handle different output formats
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, attempts)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			csvWriter := csv.NewWriter(w)
			defer csvWriter.Flush()
			return writeCSVResultsForAttempts(csvWriter, attempts, fmtFloat)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeAttemptTable(attempts, cfg, fmtFloat, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeAttemptTable generates and writes the human-readable attempt table.
func writeAttemptTable(attempts []schema.RevivalAttempt, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration, writer io.Writer) error {
	if len(attempts) == 0 {
		if _, err := fmt.Fprintln(writer, "No revival attempts recorded."); err != nil {
			return err
		}
		_, err := fmt.Fprintf(writer, "Ledger query completed in %v\n", duration)
		return err
	}

	table := newAlignedTable(writer)
	table.Header([]string{"Rank", "Attempt", "Record", "Strategy", "Confidence", "Status", "Created", "Resolved"})

	var data [][]string
	for i, attempt := range attempts {
		resolved := "-"
		if attempt.ResolvedAt != nil {
			resolved = attempt.ResolvedAt.Format(tableTimeFormat)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			attempt.AttemptID,
			attempt.RecordID,
			attempt.Strategy,
			fmtFloat(attempt.ConfidenceScore),
			statusCell(cfg, attempt.Status),
			attempt.CreatedAt.Format(tableTimeFormat),
			resolved,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Showing %d revival attempts (%d pending)\n", len(attempts), countPending(attempts)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Ledger query completed in %v\n", duration); err != nil {
		return err
	}
	return nil
}

// writeCSVResultsForAttempts writes the attempt history in CSV format.
func writeCSVResultsForAttempts(w *csv.Writer, attempts []schema.RevivalAttempt, fmtFloat func(float64) string) error {
	header := []string{
		"rank",
		"attempt_id",
		"record_id",
		"suggestion_index",
		"strategy",
		"confidence_score",
		"status",
		"created_at",
		"resolved_at",
		"user_feedback",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, attempt := range attempts {
		resolved := ""
		if attempt.ResolvedAt != nil {
			resolved = attempt.ResolvedAt.Format(contract.DateTimeFormat)
		}
		rec := []string{
			strconv.Itoa(i + 1),
			attempt.AttemptID,
			attempt.RecordID,
			strconv.Itoa(attempt.SuggestionIndex),
			attempt.Strategy,
			fmtFloat(attempt.ConfidenceScore),
			string(attempt.Status),
			attempt.CreatedAt.Format(contract.DateTimeFormat),
			resolved,
			attempt.UserFeedback,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// PrintRevivalStats displays the attempt ledger summary, dispatching based on
// the output format configured.
func PrintRevivalStats(stats schema.RevivalStats, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, stats)
		}, "Wrote JSON")
	case schema.CSVOut:
		return printRevivalStatsCSV(stats, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return printRevivalStatsText(w, stats, cfg, duration)
		}, "Wrote text")
	}
}

// printRevivalStatsText displays the ledger summary in human-readable text format.
func printRevivalStatsText(w io.Writer, stats schema.RevivalStats, cfg *contract.Config, duration time.Duration) error {
	if err := headerLine(w, cfg, "🧟", "Revival Statistics"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}

	if stats.TotalAttempts == 0 {
		_, err := fmt.Fprintln(w, "No revival attempts recorded.")
		return err
	}

	if _, err := fmt.Fprintf(w, "%-16s%d\n", "Total attempts:", stats.TotalAttempts); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-16s%d\n", "Successes:", stats.SuccessCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-16s%.1f%%\n", "Success rate:", stats.SuccessRate*100); err != nil {
		return err
	}
	if stats.MostSuccessfulStrategy != "" {
		if _, err := fmt.Fprintf(w, "%-16s%s\n", "Best strategy:", stats.MostSuccessfulStrategy); err != nil {
			return err
		}
	}

	if len(stats.RecentAttempts) > 0 {
		if _, err := fmt.Fprintf(w, "\n"); err != nil {
			return err
		}
		if err := sectionLine(w, cfg, "🕰️", "Recent attempts"); err != nil {
			return err
		}

		table := newAlignedTable(w)
		table.Header([]string{"Attempt", "Record", "Strategy", "Status", "Created"})

		var data [][]string
		for _, attempt := range stats.RecentAttempts {
			data = append(data, []string{
				attempt.AttemptID,
				attempt.RecordID,
				attempt.Strategy,
				statusCell(cfg, attempt.Status),
				attempt.CreatedAt.Format(tableTimeFormat),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nLedger query completed in %v\n", duration)
	return err
}

// printRevivalStatsCSV displays the ledger summary in CSV format as
// metric/value rows.
func printRevivalStatsCSV(stats schema.RevivalStats, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, []string{"metric", "value"}, func(csvWriter *csv.Writer) error {
			rows := [][]string{
				{"total_attempts", strconv.Itoa(stats.TotalAttempts)},
				{"success_count", strconv.Itoa(stats.SuccessCount)},
				{"success_rate", fmtFloat(stats.SuccessRate)},
				{"most_successful_strategy", stats.MostSuccessfulStrategy},
			}
			for _, row := range rows {
				if err := csvWriter.Write(row); err != nil {
					return err
				}
			}
			return nil
		})
	}, "Wrote CSV")
}

// countPending counts the attempts still awaiting resolution.
func countPending(attempts []schema.RevivalAttempt) int {
	count := 0
	for _, attempt := range attempts {
		if attempt.Status == schema.AttemptPending {
			count++
		}
	}
	return count
}
