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

// PrintGraveyardStats displays aggregate statistics for the whole graveyard,
// dispatching based on the output format configured.
func PrintGraveyardStats(stats schema.GraveyardStats, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		return printStatsJSON(stats, cfg)
	case schema.CSVOut:
		return printStatsCSV(stats, cfg)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return printStatsText(w, stats, cfg, duration)
		}, "Wrote text")
	}
}

// printStatsText displays stats in human-readable text format.
func printStatsText(w io.Writer, stats schema.GraveyardStats, cfg *contract.Config, duration time.Duration) error {
	if err := headerLine(w, cfg, "🪦", "Graveyard Statistics"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}

	if stats.TotalPrompts == 0 {
		_, err := fmt.Fprintln(w, "The graveyard is empty. Run an evaluation to fill it.")
		return err
	}

	fmtFloat, _ := createFormatters(cfg.Precision)

	if _, err := fmt.Fprintf(w, "%-18s%d\n", "Total prompts:", stats.TotalPrompts); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-18s%d (%.1f%%)\n", "Zombies:", stats.ZombieCount, stats.ZombieRate*100); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-18s%s\n", "Average score:", fmtFloat(stats.AvgScore)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-18s$%s\n", "Total cost:", fmtFloat(stats.TotalCostUSD)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-18s%s ms\n", "Average latency:", fmtFloat(stats.AvgLatencyMs)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-18s%d\n", "Last 24 hours:", stats.PromptsLast24h); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-18s%d\n", "Last 7 days:", stats.PromptsLast7d); err != nil {
		return err
	}
	if stats.OldestTimestamp != nil {
		if _, err := fmt.Fprintf(w, "%-18s%s\n", "Oldest record:", stats.OldestTimestamp.Format(contract.DateTimeFormat)); err != nil {
			return err
		}
	}
	if stats.NewestTimestamp != nil {
		if _, err := fmt.Fprintf(w, "%-18s%s\n", "Newest record:", stats.NewestTimestamp.Format(contract.DateTimeFormat)); err != nil {
			return err
		}
	}

	if err := printSeverityBreakdown(w, stats, cfg); err != nil {
		return err
	}
	if err := printProviderStats(w, stats, cfg, fmtFloat); err != nil {
		return err
	}
	if err := printRecentRecords(w, stats, cfg, fmtFloat); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nStats computed over %d records in %v\n", stats.TotalPrompts, duration); err != nil {
		return err
	}
	return nil
}

// printSeverityBreakdown writes the zombie severity counts as a table.
func printSeverityBreakdown(w io.Writer, stats schema.GraveyardStats, cfg *contract.Config) error {
	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}
	if err := sectionLine(w, cfg, "💀", "Severity breakdown"); err != nil {
		return err
	}

	table := newAlignedTable(w)
	table.Header([]string{"Severity", "Count"})

	var data [][]string
	for _, severity := range schema.ZombieSeverities {
		data = append(data, []string{
			severityCell(cfg, severity),
			strconv.Itoa(stats.SeverityBreakdown[severity]),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// printProviderStats writes the per-provider call summary as a table.
func printProviderStats(w io.Writer, stats schema.GraveyardStats, cfg *contract.Config, fmtFloat func(float64) string) error {
	if len(stats.ProviderStats) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}
	if err := sectionLine(w, cfg, "🤖", "Provider performance"); err != nil {
		return err
	}

	table := newAlignedTable(w)
	table.Header([]string{"Provider", "Calls", "Success", "Errors", "Rate", "Avg Cost", "Avg Latency"})

	var data [][]string
	for _, name := range slices.Sorted(maps.Keys(stats.ProviderStats)) {
		ps := stats.ProviderStats[name]
		data = append(data, []string{
			name,
			strconv.Itoa(ps.Calls),
			strconv.Itoa(ps.SuccessCount),
			strconv.Itoa(ps.ErrorCount),
			fmt.Sprintf("%.1f%%", ps.SuccessRate*100),
			"$" + fmtFloat(ps.AvgCostUSD),
			fmtFloat(ps.AvgLatencyMs),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// printRecentRecords writes the newest record summaries as a table.
func printRecentRecords(w io.Writer, stats schema.GraveyardStats, cfg *contract.Config, fmtFloat func(float64) string) error {
	if len(stats.RecentRecords) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "\n"); err != nil {
		return err
	}
	if err := sectionLine(w, cfg, "🕰️", "Recent records"); err != nil {
		return err
	}

	table := newAlignedTable(w)
	table.Header([]string{"ID", "Prompt", "Score", "Severity", "Timestamp"})

	var data [][]string
	for _, summary := range stats.RecentRecords {
		data = append(data, []string{
			summary.ID,
			contract.TruncateText(summary.PromptText, GetMaxPromptWidth(cfg)),
			fmtFloat(summary.OverallScore),
			severityCell(cfg, summary.Severity),
			summary.Timestamp.Format(tableTimeFormat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// printStatsJSON displays stats in JSON format.
func printStatsJSON(stats schema.GraveyardStats, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeJSON(w, stats)
	}, "Wrote JSON")
}

// printStatsCSV displays stats in CSV format as metric/value rows, with the
// severity and provider breakdowns flattened into prefixed metric names.
func printStatsCSV(stats schema.GraveyardStats, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return writeCSVWithHeader(w, []string{"metric", "value"}, func(csvWriter *csv.Writer) error {
			rows := [][]string{
				{"total_prompts", strconv.Itoa(stats.TotalPrompts)},
				{"zombie_count", strconv.Itoa(stats.ZombieCount)},
				{"zombie_rate", fmtFloat(stats.ZombieRate)},
				{"avg_score", fmtFloat(stats.AvgScore)},
				{"total_cost_usd", fmtFloat(stats.TotalCostUSD)},
				{"avg_latency_ms", fmtFloat(stats.AvgLatencyMs)},
				{"prompts_last_24h", strconv.Itoa(stats.PromptsLast24h)},
				{"prompts_last_7d", strconv.Itoa(stats.PromptsLast7d)},
			}
			for _, severity := range schema.ZombieSeverities {
				rows = append(rows, []string{
					"severity_" + string(severity),
					strconv.Itoa(stats.SeverityBreakdown[severity]),
				})
			}
			for _, name := range slices.Sorted(maps.Keys(stats.ProviderStats)) {
				ps := stats.ProviderStats[name]
				rows = append(rows,
					[]string{"provider_" + name + "_calls", strconv.Itoa(ps.Calls)},
					[]string{"provider_" + name + "_success_rate", fmtFloat(ps.SuccessRate)},
					[]string{"provider_" + name + "_avg_cost_usd", fmtFloat(ps.AvgCostUSD)},
					[]string{"provider_" + name + "_avg_latency_ms", fmtFloat(ps.AvgLatencyMs)},
				)
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
