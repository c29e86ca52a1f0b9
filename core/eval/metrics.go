package eval

import (
	"maps"
	"math"
	"math/rand"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/promptgraveyard/graveyard/schema"
)

// minScorableLen is the shortest response the text heuristics accept.
// Anything shorter scores 0.1 across the board.
const minScorableLen = 10

// zombieBandScore is the fallback for values beyond the worst band.
const zombieBandScore = 0.2

// band maps one quality tier to its bound and normalized score. Lower-better
// metrics read the bound as an upper limit, higher-better as a lower limit.
type band struct {
	category schema.MetricCategory
	bound    float64
	score    float64
}

// latencyBands score the mean response latency in milliseconds.
var latencyBands = []band{
	{schema.CategoryExcellent, 1000, 1.0},
	{schema.CategoryGood, 3000, 0.8},
	{schema.CategoryAcceptable, 5000, 0.6},
	{schema.CategoryPoor, 8000, 0.4},
}

// costBands score the total response cost in USD.
var costBands = []band{
	{schema.CategoryExcellent, 0.005, 1.0},
	{schema.CategoryGood, 0.01, 0.8},
	{schema.CategoryAcceptable, 0.05, 0.6},
	{schema.CategoryPoor, 0.1, 0.4},
}

// qualityBands score the [0,1] text heuristics.
var qualityBands = []band{
	{schema.CategoryExcellent, 0.9, 1.0},
	{schema.CategoryGood, 0.75, 0.8},
	{schema.CategoryAcceptable, 0.6, 0.6},
	{schema.CategoryPoor, 0.4, 0.4},
}

// Markers scanned for by the creativity heuristic.
var (
	creativeWords   = []string{"imagine", "creative", "unique", "innovative", "original", "artistic", "inventive", "novel", "fresh", "unusual"}
	metaphorMarkers = []string{"like", "as if", "similar to", "reminds me of"}
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Scorer computes heuristic metric scores for one prompt's response set.
type Scorer struct {
	weights map[string]float64
	rng     *rand.Rand
}

// NewScorer builds a scorer with the given metric weights. A nil weights
// map falls back to the defaults.
func NewScorer(weights map[string]float64, rng *rand.Rand) *Scorer {
	if weights == nil {
		weights = schema.GetDefaultMetricWeights()
	}
	return &Scorer{weights: weights, rng: rng}
}

// ScoreAll measures every metric over the successful responses and combines
// them into the weighted overall score. A record whose calls all failed
// carries no metrics and scores zero.
func (s *Scorer) ScoreAll(prompt string, responses map[string]schema.ProviderResponse) (map[string]schema.MetricScore, float64) {
	// Sorted keys keep the noise stream stable across runs
	valid := make([]schema.ProviderResponse, 0, len(responses))
	for _, key := range slices.Sorted(maps.Keys(responses)) {
		if resp := responses[key]; resp.Success() {
			valid = append(valid, resp)
		}
	}
	if len(valid) == 0 {
		return map[string]schema.MetricScore{}, 0
	}

	// 1. Call figures and text heuristics in one pass
	var latencySum float64
	var latencyCount int
	var costTotal float64
	var semanticSum, coherenceSum, creativitySum float64
	for _, resp := range valid {
		if resp.LatencyMs != nil {
			latencySum += *resp.LatencyMs
			latencyCount++
		}
		if resp.CostUSD != nil {
			costTotal += *resp.CostUSD
		}
		semanticSum += semanticScore(prompt, resp.Text, s.rng)
		coherenceSum += coherenceScore(resp.Text)
		creativitySum += creativityScore(resp.Text)
	}

	var latencyMean float64
	if latencyCount > 0 {
		latencyMean = latencySum / float64(latencyCount)
	}
	n := float64(len(valid))

	// 2. Band every value into a normalized, categorized score
	metrics := map[string]schema.MetricScore{
		schema.MetricLatency:          s.banded(schema.MetricLatency, latencyMean, latencyBands, scoreLowerBetter),
		schema.MetricCost:             s.banded(schema.MetricCost, costTotal, costBands, scoreLowerBetter),
		schema.MetricSemanticAccuracy: s.banded(schema.MetricSemanticAccuracy, semanticSum/n, qualityBands, scoreHigherBetter),
		schema.MetricCoherence:        s.banded(schema.MetricCoherence, coherenceSum/n, qualityBands, scoreHigherBetter),
		schema.MetricCreativity:       s.banded(schema.MetricCreativity, creativitySum/n, qualityBands, scoreHigherBetter),
	}

	return metrics, overallScore(metrics)
}

// banded wraps a measured value with its normalized score and category.
func (s *Scorer) banded(name string, value float64, bands []band, score func(float64, []band) (float64, schema.MetricCategory)) schema.MetricScore {
	normalized, category := score(value, bands)
	return schema.MetricScore{
		Value:           value,
		NormalizedScore: normalized,
		Category:        category,
		Weight:          s.weights[name],
	}
}

// overallScore folds the normalized metric scores into one weighted value.
func overallScore(metrics map[string]schema.MetricScore) float64 {
	var weightedSum, totalWeight float64
	for _, metric := range metrics {
		weightedSum += metric.NormalizedScore * metric.Weight
		totalWeight += metric.Weight
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}

// scoreLowerBetter walks the bands best-first and admits the first whose
// bound the value does not exceed.
func scoreLowerBetter(value float64, bands []band) (float64, schema.MetricCategory) {
	for _, b := range bands {
		if value <= b.bound {
			return b.score, b.category
		}
	}
	return zombieBandScore, schema.CategoryZombie
}

// scoreHigherBetter walks the bands best-first and admits the first whose
// bound the value reaches.
func scoreHigherBetter(value float64, bands []band) (float64, schema.MetricCategory) {
	for _, b := range bands {
		if value >= b.bound {
			return b.score, b.category
		}
	}
	return zombieBandScore, schema.CategoryZombie
}

// semanticScore approximates relevance with word overlap against the prompt
// plus a length factor. Noise mimics the variability of a model judge.
func semanticScore(prompt, response string, rng *rand.Rand) float64 {
	if utf8.RuneCountInString(strings.TrimSpace(response)) < minScorableLen {
		return 0.1
	}

	promptWords := wordSet(prompt)
	responseWords := wordSet(response)

	var overlap int
	for word := range promptWords {
		if _, ok := responseWords[word]; ok {
			overlap++
		}
	}
	var overlapRatio float64
	if len(promptWords) > 0 {
		overlapRatio = float64(overlap) / float64(len(promptWords))
	}

	lengthScore := math.Min(float64(utf8.RuneCountInString(response))/100, 1.0)

	base := overlapRatio*0.6 + lengthScore*0.4
	return clamp01(base + noise(rng))
}

// coherenceScore checks sentence repetition and length variation.
func coherenceScore(response string) float64 {
	if utf8.RuneCountInString(strings.TrimSpace(response)) < minScorableLen {
		return 0.1
	}

	var sentences []string
	for _, part := range sentenceSplit.Split(response, -1) {
		if part = strings.TrimSpace(part); part != "" {
			sentences = append(sentences, part)
		}
	}
	if len(sentences) < 2 {
		return 0.6 // Single sentence reads as moderately coherent
	}

	unique := make(map[string]struct{}, len(sentences))
	for _, sentence := range sentences {
		unique[sentence] = struct{}{}
	}
	repetition := float64(len(unique)) / float64(len(sentences))

	lengths := make([]float64, len(sentences))
	for i, sentence := range sentences {
		lengths[i] = float64(len(strings.Fields(sentence)))
	}
	variation := math.Min(stdev(lengths)/mean(lengths), 1.0)

	return clamp01(repetition*0.6 + variation*0.4)
}

// creativityScore checks creative vocabulary, word diversity and
// metaphorical language.
func creativityScore(response string) float64 {
	if utf8.RuneCountInString(strings.TrimSpace(response)) < minScorableLen {
		return 0.1
	}

	lower := strings.ToLower(response)

	var creative int
	for _, word := range creativeWords {
		if strings.Contains(lower, word) {
			creative++
		}
	}

	words := strings.Fields(lower)
	var diversity float64
	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		for _, word := range words {
			unique[word] = struct{}{}
		}
		diversity = float64(len(unique)) / float64(len(words))
	}

	var metaphors int
	for _, marker := range metaphorMarkers {
		if strings.Contains(lower, marker) {
			metaphors++
		}
	}

	score := float64(creative)/10*0.4 + diversity*0.4 + math.Min(float64(metaphors)/3, 1.0)*0.2
	return clamp01(score)
}

// wordSet lowercases and splits s into a set of words.
func wordSet(s string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(words))
	for _, word := range words {
		set[word] = struct{}{}
	}
	return set
}

// noise returns a uniform value in [-0.1, 0.1).
func noise(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * 0.2
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdev is the sample standard deviation (n-1 divisor).
func stdev(values []float64) float64 {
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
