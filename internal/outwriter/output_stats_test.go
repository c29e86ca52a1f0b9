package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// makeStats builds a populated stats fixture for output tests.
func makeStats() schema.GraveyardStats {
	oldest := outputEpoch.Add(-48 * time.Hour)
	newest := outputEpoch
	return schema.GraveyardStats{
		TotalPrompts: 4,
		ZombieCount:  2,
		ZombieRate:   0.5,
		AvgScore:     0.55,
		TotalCostUSD: 1.25,
		AvgLatencyMs: 1500.0,
		SeverityBreakdown: map[schema.Severity]int{
			schema.SeverityShambling: 1,
			schema.SeverityRotting:   0,
			schema.SeveritySkeletal:  1,
		},
		RecentRecords: []schema.RecordSummary{
			{
				ID:           "abc123def456",
				PromptText:   "fix the bug in my parser",
				Severity:     schema.SeverityShambling,
				OverallScore: 0.54,
				Timestamp:    outputEpoch,
			},
		},
		ProviderStats: map[string]schema.ProviderStats{
			"openai": {
				Calls:        4,
				SuccessCount: 3,
				ErrorCount:   1,
				SuccessRate:  0.75,
				AvgCostUSD:   0.25,
				AvgLatencyMs: 1200.0,
			},
		},
		PromptsLast24h:  1,
		PromptsLast7d:   2,
		OldestTimestamp: &oldest,
		NewestTimestamp: &newest,
	}
}

func TestPrintStatsText(t *testing.T) {
	cfg := &contract.Config{
		Output:    schema.TextOut,
		Precision: 2,
		Width:     140,
		UseColors: false,
		UseEmojis: false,
	}

	var buf bytes.Buffer
	err := printStatsText(&buf, makeStats(), cfg, 100*time.Millisecond)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "Graveyard Statistics")
	assert.Contains(t, output, "2 (50.0%)")
	assert.Contains(t, output, "0.55")
	assert.Contains(t, output, "$1.25")
	assert.Contains(t, output, "1500.00 ms")
	assert.Contains(t, output, "Severity breakdown:")
	assert.Contains(t, output, "Shambling")
	assert.Contains(t, output, "Provider performance:")
	assert.Contains(t, output, "openai")
	assert.Contains(t, output, "75.0%")
	assert.Contains(t, output, "Recent records:")
	assert.Contains(t, output, "fix the bug in my parser")
	assert.Contains(t, output, "Stats computed over 4 records in 100ms")
}

func TestPrintStatsTextWithEmojis(t *testing.T) {
	cfg := &contract.Config{
		Output:    schema.TextOut,
		Precision: 2,
		Width:     140,
		UseEmojis: true,
	}

	var buf bytes.Buffer
	err := printStatsText(&buf, makeStats(), cfg, time.Millisecond)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "🪦 Graveyard Statistics")
	assert.Contains(t, output, "💀 Severity breakdown:")
	assert.Contains(t, output, "🤖 Provider performance:")
}

func TestPrintStatsTextEmpty(t *testing.T) {
	cfg := &contract.Config{Output: schema.TextOut, Precision: 2}

	var buf bytes.Buffer
	err := printStatsText(&buf, schema.GraveyardStats{}, cfg, time.Millisecond)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "The graveyard is empty.")
	assert.NotContains(t, output, "Severity breakdown:")
}

func TestPrintGraveyardStatsCSV(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "stats.csv")
	cfg := &contract.Config{
		Output:     schema.CSVOut,
		OutputFile: outputFile,
		Precision:  2,
	}

	err := PrintGraveyardStats(makeStats(), cfg, time.Millisecond)
	require.NoError(t, err)

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	assert.Equal(t, "metric,value", lines[0])
	assert.Contains(t, lines, "total_prompts,4")
	assert.Contains(t, lines, "zombie_rate,0.50")
	assert.Contains(t, lines, "severity_skeletal,1")
	assert.Contains(t, lines, "provider_openai_calls,4")
	assert.Contains(t, lines, "provider_openai_success_rate,0.75")
}

func TestPrintGraveyardStatsJSON(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "stats.json")
	cfg := &contract.Config{
		Output:     schema.JSONOut,
		OutputFile: outputFile,
		Precision:  2,
	}

	err := PrintGraveyardStats(makeStats(), cfg, time.Millisecond)
	require.NoError(t, err)

	content, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, json.Unmarshal(content, &result))
	assert.Equal(t, float64(4), result["total_prompts"])
	assert.Equal(t, float64(2), result["zombie_count"])
	assert.Equal(t, 0.5, result["zombie_rate"])

	providers, ok := result["provider_stats"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, providers, "openai")
}
