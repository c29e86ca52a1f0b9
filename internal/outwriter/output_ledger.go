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

// PrintLedgerStatus displays the revival ledger health summary, dispatching
// based on the output format configured.
func PrintLedgerStatus(status schema.LedgerStatus, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote JSON")
	case schema.CSVOut:
		return printLedgerStatusCSV(status, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return printLedgerStatusText(w, status, cfg, duration)
		}, "Wrote text")
	}
}

// printLedgerStatusText displays the ledger status in human-readable text format.
func printLedgerStatusText(w io.Writer, status schema.LedgerStatus, cfg *contract.Config, duration time.Duration) error {
	if err := headerLine(w, cfg, "📒", "Ledger Status"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}

	fmtFloat, _ := createFormatters(cfg.Precision)

	if _, err := fmt.Fprintf(w, "%-16s%s\n", "Backend:", status.Backend); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-16s%t\n", "Connected:", status.Connected); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-16s%d\n", "Total events:", status.TotalEvents); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-16s%d\n", "Total attempts:", status.TotalAttempts); err != nil {
		return err
	}
	if !status.OldestEventTime.IsZero() {
		if _, err := fmt.Fprintf(w, "%-16s%s\n", "Oldest event:", status.OldestEventTime.Format(contract.DateTimeFormat)); err != nil {
			return err
		}
	}
	if !status.LastEventTime.IsZero() {
		if _, err := fmt.Fprintf(w, "%-16s%s\n", "Last event:", status.LastEventTime.Format(contract.DateTimeFormat)); err != nil {
			return err
		}
	}
	if status.TableSizeBytes > 0 {
		if _, err := fmt.Fprintf(w, "%-16s%s KB\n", "Table size:", fmtFloat(float64(status.TableSizeBytes)/1024.0)); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nStatus checked in %v\n", duration)
	return err
}

// printLedgerStatusCSV displays the ledger status in CSV format as
// metric/value rows.
func printLedgerStatusCSV(status schema.LedgerStatus, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, []string{"metric", "value"}, func(csvWriter *csv.Writer) error {
			lastEvent := ""
			if !status.LastEventTime.IsZero() {
				lastEvent = status.LastEventTime.Format(contract.DateTimeFormat)
			}
			oldestEvent := ""
			if !status.OldestEventTime.IsZero() {
				oldestEvent = status.OldestEventTime.Format(contract.DateTimeFormat)
			}
			rows := [][]string{
				{"backend", status.Backend},
				{"connected", strconv.FormatBool(status.Connected)},
				{"total_events", strconv.Itoa(status.TotalEvents)},
				{"total_attempts", strconv.Itoa(status.TotalAttempts)},
				{"oldest_event_time", oldestEvent},
				{"last_event_time", lastEvent},
				{"table_size_bytes", strconv.FormatInt(status.TableSizeBytes, 10)},
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
