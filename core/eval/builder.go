package eval

import (
	"math/rand"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// RecordBuilder builds one evaluation record from a prompt.
type RecordBuilder struct {
	providers []*Provider
	limiter   *RateLimiter
	scorer    *Scorer
	clock     contract.Clock
	rng       *rand.Rand
	record    *schema.EvaluationRecord

	// Internal data collected during the build process
	overall float64
}

// NewRecordBuilder is the starting point for building an evaluation record.
// The record's identity and timestamp are fixed here so the later phases
// only fill in results.
func NewRecordBuilder(prompt Prompt, providers []*Provider, limiter *RateLimiter, weights map[string]float64, clock contract.Clock, rng *rand.Rand) *RecordBuilder {
	at := clock.Now()
	return &RecordBuilder{
		providers: providers,
		limiter:   limiter,
		scorer:    NewScorer(weights, rng),
		clock:     clock,
		rng:       rng,
		record: &schema.EvaluationRecord{
			ID:                recordID(prompt.Name, at),
			SourcePath:        prompt.SourcePath,
			PromptText:        prompt.Text,
			Timestamp:         at,
			ProviderResponses: make(map[string]schema.ProviderResponse, len(providers)),
		},
	}
}

// CollectResponses calls every provider for the prompt, honoring the
// shared rate limit.
func (b *RecordBuilder) CollectResponses() *RecordBuilder {
	for _, provider := range b.providers {
		b.limiter.Wait()
		b.record.ProviderResponses[provider.Key] = provider.Generate(b.record.PromptText, b.clock.Now())
	}
	return b
}

// ScoreMetrics measures the collected responses and computes the weighted
// overall score.
func (b *RecordBuilder) ScoreMetrics() *RecordBuilder {
	b.record.Metrics, b.overall = b.scorer.ScoreAll(b.record.PromptText, b.record.ProviderResponses)
	return b
}

// ClassifyStatus derives the zombie status from the scored metrics.
func (b *RecordBuilder) ClassifyStatus() *RecordBuilder {
	b.record.ZombieStatus = classify(b.record.Metrics, b.overall)
	return b
}

// GenerateSuggestions proposes revival rewrites for zombie records.
func (b *RecordBuilder) GenerateSuggestions() *RecordBuilder {
	b.record.RevivalSuggestions = suggest(b.record.PromptText, b.record.Metrics, b.record.ZombieStatus, b.rng)
	return b
}

// Build finalizes the construction and returns the completed record.
func (b *RecordBuilder) Build() schema.EvaluationRecord {
	return *b.record
}
