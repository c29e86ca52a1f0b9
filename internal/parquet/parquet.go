// Package parquet provides data structures and functions for exporting prompt
// graveyard data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/promptgraveyard/graveyard/schema"
)

// RecordRow represents a single evaluation record with its zombie
// classification flattened alongside response aggregates. One row per
// record in the records export file.
type RecordRow struct {
	// RecordID is the unique identifier of the evaluation record
	RecordID string `parquet:"record_id,snappy"`

	// SourcePath is the provenance of the original prompt
	SourcePath string `parquet:"source_path,snappy"`

	// PromptText is the full prompt text that was evaluated
	PromptText string `parquet:"prompt_text,snappy"`

	// EvaluatedAt is when the record was created (stored as TIMESTAMP with nanosecond precision)
	EvaluatedAt time.Time `parquet:"evaluated_at,snappy"`

	// IsZombie reports whether the record was classified as a zombie
	IsZombie bool `parquet:"is_zombie,snappy"`

	// OverallScore is the weighted score in [0,1] that drove the classification
	OverallScore float64 `parquet:"overall_score,snappy"`

	// Severity is the decay band derived from the overall score
	Severity string `parquet:"severity,snappy"`

	// RevivalPriority indicates how urgently the record needs revival
	RevivalPriority string `parquet:"revival_priority,snappy"`

	// FailedMetrics is a pipe-joined list of failed critical metrics (nullable)
	FailedMetrics *string `parquet:"failed_metrics,optional,snappy"`

	// Reason is the human-readable classification explanation (nullable)
	Reason *string `parquet:"reason,optional,snappy"`

	// ProviderCount is the number of provider responses attached to the record
	ProviderCount int32 `parquet:"provider_count,snappy"`

	// SuggestionCount is the number of revival suggestions attached to the record
	SuggestionCount int32 `parquet:"suggestion_count,snappy"`

	// TotalCostUSD is the summed cost of every provider response
	TotalCostUSD float64 `parquet:"total_cost_usd,snappy"`

	// MeanLatencyMs is the average latency of the responses that reported one
	MeanLatencyMs float64 `parquet:"mean_latency_ms,snappy"`
}

// ResponseRow represents one provider response flattened out of its parent
// record. One row per (record, provider) pair in the responses export file.
type ResponseRow struct {
	// RecordID references the parent evaluation record
	RecordID string `parquet:"record_id,snappy"`

	// Provider is the provider key the response is stored under
	Provider string `parquet:"provider,snappy"`

	// Model is the model name reported by the provider
	Model string `parquet:"model,snappy"`

	// ResponseText is the text the provider returned, empty on failure
	ResponseText string `parquet:"response_text,snappy"`

	// Success reports whether the call produced usable text
	Success bool `parquet:"success,snappy"`

	// LatencyMs is the call latency in milliseconds (nullable, failed calls report none)
	LatencyMs *float64 `parquet:"latency_ms,optional,snappy"`

	// CostUSD is the call cost in US dollars (nullable, failed calls report none)
	CostUSD *float64 `parquet:"cost_usd,optional,snappy"`

	// ErrorText is the provider error message (nullable)
	ErrorText *string `parquet:"error_text,optional,snappy"`

	// RespondedAt is when the provider call completed (stored as TIMESTAMP with nanosecond precision)
	RespondedAt time.Time `parquet:"responded_at,snappy"`
}

// AttemptRow represents a single revival attempt replayed from the ledger.
// One row per attempt in the attempts export file.
type AttemptRow struct {
	// AttemptID is the unique identifier of the revival attempt
	AttemptID string `parquet:"attempt_id,snappy"`

	// RecordID references the record the attempt tried to revive
	RecordID string `parquet:"record_id,snappy"`

	// SuggestionIndex is the index of the suggestion the attempt applied
	SuggestionIndex int32 `parquet:"suggestion_index,snappy"`

	// Strategy is the revival strategy of the applied suggestion
	Strategy string `parquet:"strategy,snappy"`

	// ConfidenceScore is the suggestion confidence in [0,1]
	ConfidenceScore float64 `parquet:"confidence_score,snappy"`

	// Status is the attempt lifecycle state: pending, success or failed
	Status string `parquet:"status,snappy"`

	// UserFeedback is the feedback recorded at resolution (nullable)
	UserFeedback *string `parquet:"user_feedback,optional,snappy"`

	// CreatedAt is when the attempt was recorded (stored as TIMESTAMP with nanosecond precision)
	CreatedAt time.Time `parquet:"created_at,snappy"`

	// ResolvedAt is when the attempt was resolved (nullable, pending attempts report none)
	ResolvedAt *time.Time `parquet:"resolved_at,optional,snappy"`
}

// writeParquet writes a slice of rows to a Parquet file. The schema is
// automatically derived from the row struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Create a Parquet writer using struct schema inference
	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	// Write all rows to the file
	// The Write method accepts a variadic slice
	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// WriteRecordsParquet writes a slice of RecordRow structs to a Parquet file.
func WriteRecordsParquet(data []RecordRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteResponsesParquet writes a slice of ResponseRow structs to a Parquet file.
func WriteResponsesParquet(data []ResponseRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteAttemptsParquet writes a slice of AttemptRow structs to a Parquet file.
func WriteAttemptsParquet(data []AttemptRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// MockFetchRecordRows generates sample RecordRow data for demonstration.
func MockFetchRecordRows() []RecordRow {
	now := time.Now()
	failedMetrics := "semantic_accuracy|coherence"
	reason := "Scored 0.34, below the rotting threshold"

	return []RecordRow{
		{
			RecordID:        "7f3a9c1e2b84",
			SourcePath:      "prompts/summarize_meeting.txt",
			PromptText:      "Summarize the attached meeting notes in three bullet points.",
			EvaluatedAt:     now.Add(-2 * time.Hour),
			IsZombie:        false,
			OverallScore:    0.87,
			Severity:        string(schema.SeverityAlive),
			RevivalPriority: string(schema.PriorityNone),
			FailedMetrics:   nil, // Healthy record - nullable fields empty
			Reason:          nil,
			ProviderCount:   2,
			SuggestionCount: 0,
			TotalCostUSD:    0.41,
			MeanLatencyMs:   1350.0,
		},
		{
			RecordID:        "4d8e2f6a9c01",
			SourcePath:      "prompts/extract_entities.txt",
			PromptText:      "List the entities.",
			EvaluatedAt:     now.Add(-26 * time.Hour),
			IsZombie:        true,
			OverallScore:    0.34,
			Severity:        string(schema.SeverityRotting),
			RevivalPriority: string(schema.PriorityMedium),
			FailedMetrics:   &failedMetrics,
			Reason:          &reason,
			ProviderCount:   2,
			SuggestionCount: 3,
			TotalCostUSD:    0.18,
			MeanLatencyMs:   2210.5,
		},
		{
			RecordID:        "b2c7d1e8f3a5",
			SourcePath:      "prompts/do_something.txt",
			PromptText:      "Do the thing.",
			EvaluatedAt:     now.Add(-8 * 24 * time.Hour),
			IsZombie:        true,
			OverallScore:    0.09,
			Severity:        string(schema.SeveritySkeletal),
			RevivalPriority: string(schema.PriorityHigh),
			FailedMetrics:   nil,
			Reason:          nil,
			ProviderCount:   1,
			SuggestionCount: 3,
			TotalCostUSD:    0.02,
			MeanLatencyMs:   640.0,
		},
	}
}

// MockFetchResponseRows generates sample ResponseRow data for demonstration.
func MockFetchResponseRows() []ResponseRow {
	now := time.Now()
	latency1 := 1200.0
	cost1 := 0.25
	latency2 := 1501.0
	cost2 := 0.16
	callError := "rate limit exceeded"

	return []ResponseRow{
		{
			RecordID:     "7f3a9c1e2b84",
			Provider:     "openai_gpt35",
			Model:        "gpt-3.5-turbo",
			ResponseText: "Here are the three key points from the meeting.",
			Success:      true,
			LatencyMs:    &latency1,
			CostUSD:      &cost1,
			ErrorText:    nil,
			RespondedAt:  now.Add(-2 * time.Hour),
		},
		{
			RecordID:     "7f3a9c1e2b84",
			Provider:     "groq_llama3",
			Model:        "llama3-8b-8192",
			ResponseText: "The meeting covered three topics.",
			Success:      true,
			LatencyMs:    &latency2,
			CostUSD:      &cost2,
			ErrorText:    nil,
			RespondedAt:  now.Add(-2 * time.Hour),
		},
		{
			RecordID:     "4d8e2f6a9c01",
			Provider:     "openai_gpt35",
			Model:        "gpt-3.5-turbo",
			ResponseText: "",
			Success:      false,
			LatencyMs:    nil, // Failed call - nullable fields empty
			CostUSD:      nil,
			ErrorText:    &callError,
			RespondedAt:  now.Add(-26 * time.Hour),
		},
	}
}

// MockFetchAttemptRows generates sample AttemptRow data for demonstration.
func MockFetchAttemptRows() []AttemptRow {
	now := time.Now()
	resolved1 := now.Add(-1 * time.Hour)
	feedback1 := "much clearer, accepted"
	resolved2 := now.Add(-20 * time.Hour)
	feedback2 := "still too vague"

	return []AttemptRow{
		{
			AttemptID:       "a1f4b9e2c7d3",
			RecordID:        "4d8e2f6a9c01",
			SuggestionIndex: 0,
			Strategy:        "clarity_enhancement",
			ConfidenceScore: 0.82,
			Status:          string(schema.AttemptSuccess),
			UserFeedback:    &feedback1,
			CreatedAt:       now.Add(-3 * time.Hour),
			ResolvedAt:      &resolved1,
		},
		{
			AttemptID:       "e5c2d8a1f6b4",
			RecordID:        "b2c7d1e8f3a5",
			SuggestionIndex: 1,
			Strategy:        "context_enrichment",
			ConfidenceScore: 0.64,
			Status:          string(schema.AttemptFailed),
			UserFeedback:    &feedback2,
			CreatedAt:       now.Add(-22 * time.Hour),
			ResolvedAt:      &resolved2,
		},
		{
			AttemptID:       "c9b6e3a8d2f1",
			RecordID:        "b2c7d1e8f3a5",
			SuggestionIndex: 2,
			Strategy:        "instruction_optimization",
			ConfidenceScore: 0.71,
			Status:          string(schema.AttemptPending),
			UserFeedback:    nil, // Not yet resolved - nullable fields empty
			CreatedAt:       now.Add(-10 * time.Minute),
			ResolvedAt:      nil,
		},
	}
}

// ConvertEvaluationRecords converts schema.EvaluationRecord to RecordRow for Parquet export.
func ConvertEvaluationRecords(records []schema.EvaluationRecord) []RecordRow {
	result := make([]RecordRow, len(records))
	for i, record := range records {
		var failedMetrics *string
		if len(record.ZombieStatus.FailedMetrics) > 0 {
			joined := strings.Join(record.ZombieStatus.FailedMetrics, "|")
			failedMetrics = &joined
		}
		var reason *string
		if record.ZombieStatus.Reason != "" {
			r := record.ZombieStatus.Reason
			reason = &r
		}
		result[i] = RecordRow{
			RecordID:        record.ID,
			SourcePath:      record.SourcePath,
			PromptText:      record.PromptText,
			EvaluatedAt:     record.Timestamp,
			IsZombie:        record.ZombieStatus.IsZombie,
			OverallScore:    record.ZombieStatus.OverallScore,
			Severity:        string(record.ZombieStatus.Severity),
			RevivalPriority: string(record.ZombieStatus.RevivalPriority),
			FailedMetrics:   failedMetrics,
			Reason:          reason,
			ProviderCount:   int32(len(record.ProviderResponses)),
			SuggestionCount: int32(len(record.RevivalSuggestions)),
			TotalCostUSD:    record.TotalCost(),
			MeanLatencyMs:   record.MeanLatency(),
		}
	}
	return result
}

// FlattenProviderResponses converts the provider responses of every record to
// ResponseRow for Parquet export. Providers are emitted in sorted key order so
// repeated exports of the same data produce identical files.
func FlattenProviderResponses(records []schema.EvaluationRecord) []ResponseRow {
	var result []ResponseRow
	for _, record := range records {
		for _, provider := range slices.Sorted(maps.Keys(record.ProviderResponses)) {
			resp := record.ProviderResponses[provider]
			var errorText *string
			if resp.Error != "" {
				e := resp.Error
				errorText = &e
			}
			result = append(result, ResponseRow{
				RecordID:     record.ID,
				Provider:     provider,
				Model:        resp.Model,
				ResponseText: resp.Text,
				Success:      resp.Success(),
				LatencyMs:    resp.LatencyMs,
				CostUSD:      resp.CostUSD,
				ErrorText:    errorText,
				RespondedAt:  resp.Timestamp,
			})
		}
	}
	return result
}

// ConvertRevivalAttempts converts schema.RevivalAttempt to AttemptRow for Parquet export.
func ConvertRevivalAttempts(attempts []schema.RevivalAttempt) []AttemptRow {
	result := make([]AttemptRow, len(attempts))
	for i, attempt := range attempts {
		var feedback *string
		if attempt.UserFeedback != "" {
			f := attempt.UserFeedback
			feedback = &f
		}
		result[i] = AttemptRow{
			AttemptID:       attempt.AttemptID,
			RecordID:        attempt.RecordID,
			SuggestionIndex: int32(attempt.SuggestionIndex),
			Strategy:        attempt.Strategy,
			ConfidenceScore: attempt.ConfidenceScore,
			Status:          string(attempt.Status),
			UserFeedback:    feedback,
			CreatedAt:       attempt.CreatedAt,
			ResolvedAt:      attempt.ResolvedAt,
		}
	}
	return result
}
