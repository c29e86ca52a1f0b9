package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func sampleRecord() EvaluationRecord {
	return EvaluationRecord{
		ID:         "rec-001",
		SourcePath: "prompts/haiku.txt",
		PromptText: "Write a haiku about autumn leaves",
		Timestamp:  time.Date(2025, 10, 31, 12, 0, 0, 0, time.UTC),
		ProviderResponses: map[string]ProviderResponse{
			"openai_gpt35": {
				Text:      "Crimson leaves drifting",
				LatencyMs: floatPtr(1800),
				CostUSD:   floatPtr(0.004),
				Model:     "gpt-3.5-turbo",
			},
			"groq_llama3": {
				Error: "rate limited",
			},
		},
		Metrics: map[string]MetricScore{
			MetricSemanticAccuracy: {Value: 0.55, NormalizedScore: 0.6, Category: CategoryAcceptable, Weight: 0.35},
		},
		ZombieStatus: StatusForScore(0.57),
		RevivalSuggestions: []RevivalSuggestion{
			{
				ImprovedPrompt:       "Context: ...",
				Strategy:             "clarity_enhancement",
				Technique:            "add_context",
				ConfidenceScore:      0.75,
				ExpectedImprovements: map[string]float64{MetricSemanticAccuracy: 0.15},
			},
		},
	}
}

func TestProviderResponseSuccess(t *testing.T) {
	ok := ProviderResponse{Text: "hello"}
	assert.True(t, ok.Success())

	failed := ProviderResponse{Error: "timeout"}
	assert.False(t, failed.Success())

	// Text alongside an error still counts as a failure.
	partial := ProviderResponse{Text: "partial", Error: "truncated"}
	assert.False(t, partial.Success())

	empty := ProviderResponse{}
	assert.False(t, empty.Success())
}

func TestRecordTotalCost(t *testing.T) {
	rec := sampleRecord()
	assert.InDelta(t, 0.004, rec.TotalCost(), 1e-9)

	rec.ProviderResponses["extra"] = ProviderResponse{CostUSD: floatPtr(0.006)}
	assert.InDelta(t, 0.010, rec.TotalCost(), 1e-9)

	none := EvaluationRecord{}
	assert.Zero(t, none.TotalCost())
}

func TestRecordMeanLatency(t *testing.T) {
	rec := EvaluationRecord{
		ProviderResponses: map[string]ProviderResponse{
			"a": {LatencyMs: floatPtr(100)},
			"b": {LatencyMs: floatPtr(200)},
			"c": {}, // no latency reported, excluded from the mean
		},
	}
	assert.InDelta(t, 150, rec.MeanLatency(), 1e-9)

	none := EvaluationRecord{ProviderResponses: map[string]ProviderResponse{"a": {}}}
	assert.Zero(t, none.MeanLatency())
}

func TestRecordCloneIsDeep(t *testing.T) {
	original := sampleRecord()
	clone := original.Clone()

	// Mutate every mutable reach of the clone.
	clone.PromptText = "changed"
	resp := clone.ProviderResponses["openai_gpt35"]
	*resp.LatencyMs = 9999
	*resp.CostUSD = 9.99
	clone.ProviderResponses["new"] = ProviderResponse{}
	clone.Metrics[MetricCoherence] = MetricScore{}
	clone.ZombieStatus.FailedMetrics = append(clone.ZombieStatus.FailedMetrics, "x")
	clone.RevivalSuggestions[0].ExpectedImprovements[MetricSemanticAccuracy] = 0.99

	// The original must be untouched.
	assert.Equal(t, "Write a haiku about autumn leaves", original.PromptText)
	require.NotNil(t, original.ProviderResponses["openai_gpt35"].LatencyMs)
	assert.InDelta(t, 1800, *original.ProviderResponses["openai_gpt35"].LatencyMs, 1e-9)
	assert.InDelta(t, 0.004, *original.ProviderResponses["openai_gpt35"].CostUSD, 1e-9)
	assert.Len(t, original.ProviderResponses, 2)
	assert.Len(t, original.Metrics, 1)
	assert.Empty(t, original.ZombieStatus.FailedMetrics)
	assert.InDelta(t, 0.15, original.RevivalSuggestions[0].ExpectedImprovements[MetricSemanticAccuracy], 1e-9)
}

func TestCloneRecords(t *testing.T) {
	records := []EvaluationRecord{sampleRecord(), sampleRecord()}
	cloned := CloneRecords(records)
	require.Len(t, cloned, 2)

	cloned[0].ID = "mutated"
	assert.Equal(t, "rec-001", records[0].ID)

	assert.Nil(t, CloneRecords(nil))
}
