package schema

import "time"

// RecordSummary is a lightweight projection of a record for listings.
type RecordSummary struct {
	ID           string    `json:"prompt_id"`
	PromptText   string    `json:"prompt_text"`
	Severity     Severity  `json:"severity"`
	OverallScore float64   `json:"overall_score"`
	Timestamp    time.Time `json:"timestamp"`
}

// ProviderStats summarizes every call made to one provider across the
// record set. Cost and latency averages cover successful calls only.
type ProviderStats struct {
	Calls        int     `json:"calls"`
	SuccessCount int     `json:"success_count"`
	ErrorCount   int     `json:"error_count"`
	SuccessRate  float64 `json:"success_rate"`
	AvgCostUSD   float64 `json:"avg_cost_usd"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// GraveyardStats summarizes the full record set. AvgLatencyMs is a two-level
// average: the mean across records of each record's own mean latency.
// An empty record set produces the zero value with nil timestamps.
type GraveyardStats struct {
	TotalPrompts      int                      `json:"total_prompts"`
	ZombieCount       int                      `json:"zombie_count"`
	ZombieRate        float64                  `json:"zombie_rate"`
	AvgScore          float64                  `json:"avg_score"`
	TotalCostUSD      float64                  `json:"total_cost_usd"`
	AvgLatencyMs      float64                  `json:"avg_latency_ms"`
	SeverityBreakdown map[Severity]int         `json:"severity_breakdown"`
	RecentRecords     []RecordSummary          `json:"recent_records"`
	ProviderStats     map[string]ProviderStats `json:"provider_stats"`
	PromptsLast24h    int                      `json:"prompts_last_24h"`
	PromptsLast7d     int                      `json:"prompts_last_7d"`
	OldestTimestamp   *time.Time               `json:"oldest_timestamp,omitempty"`
	NewestTimestamp   *time.Time               `json:"newest_timestamp,omitempty"`
}
