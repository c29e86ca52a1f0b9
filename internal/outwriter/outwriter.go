// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// tableTimeFormat is the compact timestamp format used in table cells.
// CSV and JSON output keep the full contract.DateTimeFormat.
const tableTimeFormat = "2006-01-02 15:04"

// writeWithFile handles the common pattern of selecting an output destination,
// writing content, and printing a success message for file outputs.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	output, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	if output != os.Stdout {
		defer output.Close()
	}

	if err := writer(output); err != nil {
		return err
	}

	if output != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON writes data as indented JSON to the writer.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader writes CSV data with the given header and row writer function.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return err
	}

	return writeRows(csvWriter)
}

// createFormatters creates formatting functions based on precision.
func createFormatters(precision int) (func(float64) string, string) {
	fmtFloat := func(f float64) string {
		return fmt.Sprintf("%.*f", precision, f)
	}
	intFmt := "%d"
	return fmtFloat, intFmt
}

// newAlignedTable creates a table writer with right-aligned rows, the layout
// shared by every table in this package.
func newAlignedTable(w io.Writer) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

// headerLine writes a top-level title with an underline. The emoji prefix is
// dropped when emojis are disabled.
func headerLine(w io.Writer, cfg *contract.Config, emoji, title string) error {
	if cfg.UseEmojis {
		title = emoji + " " + title
	}
	if _, err := fmt.Fprintf(w, "%s\n", title); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s\n", strings.Repeat("=", utf8.RuneCountInString(title))); err != nil {
		return err
	}
	return nil
}

// sectionLine writes a subsection title. The emoji prefix is dropped when
// emojis are disabled.
func sectionLine(w io.Writer, cfg *contract.Config, emoji, title string) error {
	if cfg.UseEmojis {
		title = emoji + " " + title
	}
	_, err := fmt.Fprintf(w, "%s:\n", title)
	return err
}

// severityCell renders a severity for table cells, colored when enabled.
func severityCell(cfg *contract.Config, severity schema.Severity) string {
	if cfg.UseColors {
		return contract.GetColorLabel(severity)
	}
	return contract.GetPlainLabel(severity)
}

// statusCell renders a revival attempt status for table cells, colored when enabled.
func statusCell(cfg *contract.Config, status schema.AttemptStatus) string {
	if cfg.UseColors {
		return contract.GetColorStatusLabel(status)
	}
	return contract.GetPlainStatusLabel(status)
}
