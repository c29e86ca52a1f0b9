// Package schema has configs, models and shared constants for all parts of graveyard.
package schema

import (
	"maps"
	"slices"
	"time"
)

// EvaluationRecord represents one evaluation of one prompt against a set of
// language-model providers. Records are produced by the evaluation pipeline,
// appended to the results log, and are read-only once ingested. JSON field
// names match the on-disk log format so existing result files load unchanged.
type EvaluationRecord struct {
	ID                 string                      `json:"prompt_id"`           // Opaque unique identifier assigned at creation
	SourcePath         string                      `json:"file_path"`           // Provenance of the original prompt
	PromptText         string                      `json:"prompt_text"`         // The text that was evaluated
	Timestamp          time.Time                   `json:"timestamp"`           // Creation time
	ProviderResponses  map[string]ProviderResponse `json:"llm_responses"`       // Keyed by provider key, may be empty
	Metrics            map[string]MetricScore      `json:"metrics"`             // Keyed by metric name
	ZombieStatus       ZombieStatus                `json:"zombie_status"`       // Derived classification
	RevivalSuggestions []RevivalSuggestion         `json:"revival_suggestions"` // Empty for non-zombies
}

// ProviderResponse is the outcome of one provider call. Latency and cost are
// pointers because a failed call reports neither.
type ProviderResponse struct {
	Text      string    `json:"response,omitempty"`
	LatencyMs *float64  `json:"latency_ms,omitempty"`
	CostUSD   *float64  `json:"cost_usd,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// MetricScore is one heuristic measurement of a response set.
type MetricScore struct {
	Value           float64        `json:"value"`            // Raw measured value (ms, USD, or a [0,1] score)
	NormalizedScore float64        `json:"normalized_score"` // Banded score in [0,1]
	Category        MetricCategory `json:"category"`
	Weight          float64        `json:"weight"`
}

// ZombieStatus is the derived classification of a record. Severity is strictly
// determined by OverallScore via SeverityForScore; IsZombie holds iff the
// severity is not alive.
type ZombieStatus struct {
	IsZombie        bool            `json:"is_zombie"`
	OverallScore    float64         `json:"overall_score"`
	Severity        Severity        `json:"severity"`
	VisualTheme     string          `json:"visual_theme,omitempty"`
	RevivalPriority RevivalPriority `json:"revival_priority,omitempty"`
	FailedMetrics   []string        `json:"failed_critical_metrics,omitempty"`
	Reason          string          `json:"reason,omitempty"`
}

// RevivalSuggestion is a candidate improved prompt for a zombie record.
type RevivalSuggestion struct {
	ImprovedPrompt       string             `json:"improved_prompt"`
	Strategy             string             `json:"strategy"`
	Technique            string             `json:"technique"`
	Reasoning            string             `json:"reasoning"`
	ConfidenceScore      float64            `json:"confidence_score"`
	ExpectedImprovements map[string]float64 `json:"expected_improvements,omitempty"`
}

// Success reports whether the provider call produced usable text.
func (p ProviderResponse) Success() bool {
	return p.Text != "" && p.Error == ""
}

// TotalCost sums the reported cost of every provider response.
func (r EvaluationRecord) TotalCost() float64 {
	var total float64
	for _, resp := range r.ProviderResponses {
		if resp.CostUSD != nil {
			total += *resp.CostUSD
		}
	}
	return total
}

// MeanLatency averages the provider latencies that reported a value.
// A record with no latency data yields 0.
func (r EvaluationRecord) MeanLatency() float64 {
	var sum float64
	var n int
	for _, resp := range r.ProviderResponses {
		if resp.LatencyMs != nil {
			sum += *resp.LatencyMs
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Clone returns a deep copy of the response, including pointer fields.
func (p ProviderResponse) Clone() ProviderResponse {
	clone := p
	if p.LatencyMs != nil {
		v := *p.LatencyMs
		clone.LatencyMs = &v
	}
	if p.CostUSD != nil {
		v := *p.CostUSD
		clone.CostUSD = &v
	}
	return clone
}

// Clone returns a deep copy of the status.
func (z ZombieStatus) Clone() ZombieStatus {
	clone := z
	clone.FailedMetrics = slices.Clone(z.FailedMetrics)
	return clone
}

// Clone returns a deep copy of the suggestion.
func (s RevivalSuggestion) Clone() RevivalSuggestion {
	clone := s
	if s.ExpectedImprovements != nil {
		clone.ExpectedImprovements = make(map[string]float64, len(s.ExpectedImprovements))
		maps.Copy(clone.ExpectedImprovements, s.ExpectedImprovements)
	}
	return clone
}

// Clone returns a deep copy of the record so callers can mutate the result
// without reaching back into any shared snapshot.
func (r EvaluationRecord) Clone() EvaluationRecord {
	clone := r
	if r.ProviderResponses != nil {
		clone.ProviderResponses = make(map[string]ProviderResponse, len(r.ProviderResponses))
		for key, resp := range r.ProviderResponses {
			clone.ProviderResponses[key] = resp.Clone()
		}
	}
	if r.Metrics != nil {
		clone.Metrics = make(map[string]MetricScore, len(r.Metrics))
		maps.Copy(clone.Metrics, r.Metrics)
	}
	clone.ZombieStatus = r.ZombieStatus.Clone()
	if r.RevivalSuggestions != nil {
		clone.RevivalSuggestions = make([]RevivalSuggestion, len(r.RevivalSuggestions))
		for i, s := range r.RevivalSuggestions {
			clone.RevivalSuggestions[i] = s.Clone()
		}
	}
	return clone
}

// CloneRecords deep-copies a whole snapshot.
func CloneRecords(records []EvaluationRecord) []EvaluationRecord {
	if records == nil {
		return nil
	}
	cloned := make([]EvaluationRecord, len(records))
	for i, r := range records {
		cloned[i] = r.Clone()
	}
	return cloned
}
