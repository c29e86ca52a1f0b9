package eval

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"

	"github.com/promptgraveyard/graveyard/schema"
)

// SuggestionLimit caps how many revival suggestions one record carries.
const SuggestionLimit = 3

// Prompt rewrite techniques the strategies can apply.
const (
	techniqueAddContext       = "add_context"
	techniqueSpecifyFormat    = "specify_format"
	techniqueClarifyIntent    = "clarify_intent"
	techniqueStepByStep       = "step_by_step_breakdown"
	techniqueExamples         = "example_provision"
	techniqueConstraints      = "constraint_specification"
	techniqueDomainContext    = "domain_context"
	techniqueAudience         = "audience_specification"
	techniqueUseCases         = "use_case_examples"
	techniqueOutputTemplate   = "output_template"
	techniqueStructure        = "structure_specification"
	techniqueLengthGuidelines = "length_guidelines"
)

// Named problems a weak metric maps to.
const (
	problemLowAccuracy   = "low_semantic_accuracy"
	problemPoorCoherence = "poor_coherence"
	problemHighLatency   = "high_latency"
	problemHighCost      = "high_cost"
	problemLowCreativity = "low_creativity"
)

// strategy is one revival approach with its base confidence and the
// techniques it can apply.
type strategy struct {
	name       string
	weight     float64
	techniques []string
}

// revivalStrategies are tried in order until the suggestion limit fills.
var revivalStrategies = []strategy{
	{name: "clarity_enhancement", weight: 0.75, techniques: []string{techniqueAddContext, techniqueClarifyIntent, techniqueAudience}},
	{name: "instruction_optimization", weight: 0.8, techniques: []string{techniqueSpecifyFormat, techniqueStepByStep, techniqueConstraints, techniqueLengthGuidelines}},
	{name: "context_enrichment", weight: 0.7, techniques: []string{techniqueExamples, techniqueDomainContext, techniqueUseCases}},
	{name: "structure_improvement", weight: 0.65, techniques: []string{techniqueOutputTemplate, techniqueStructure}},
}

var metricProblems = map[string]string{
	schema.MetricSemanticAccuracy: problemLowAccuracy,
	schema.MetricCoherence:        problemPoorCoherence,
	schema.MetricLatency:          problemHighLatency,
	schema.MetricCost:             problemHighCost,
	schema.MetricCreativity:       problemLowCreativity,
}

// problemOrder fixes the reporting order for detected problems.
var problemOrder = []string{
	problemLowAccuracy,
	problemPoorCoherence,
	problemHighLatency,
	problemHighCost,
	problemLowCreativity,
}

// problemTechniques lists which techniques target each problem.
var problemTechniques = map[string][]string{
	problemLowAccuracy:   {techniqueClarifyIntent, techniqueAddContext, techniqueExamples},
	problemPoorCoherence: {techniqueStepByStep, techniqueStructure},
	problemHighLatency:   {techniqueConstraints, techniqueLengthGuidelines},
	problemHighCost:      {techniqueConstraints, techniqueSpecifyFormat},
	problemLowCreativity: {techniqueUseCases, techniqueDomainContext},
}

var problemDescriptions = map[string]string{
	problemLowAccuracy:   "poor relevance to the prompt",
	problemPoorCoherence: "lack of logical flow",
	problemHighLatency:   "slow response times",
	problemHighCost:      "expensive token usage",
	problemLowCreativity: "insufficient creative elements",
}

// techniqueAdditions are the canned prompt fragments each technique can
// splice in, one picked at random per suggestion.
var techniqueAdditions = map[string][]string{
	techniqueAddContext: {
		"Context: You are an expert assistant helping with this task.",
		"Background: This request is part of a larger project to improve AI responses.",
		"Setting: Please approach this as a professional consultant would.",
	},
	techniqueSpecifyFormat: {
		"Please format your response as a clear, structured answer.",
		"Provide your response in a well-organized format with clear sections.",
		"Structure your answer with numbered points or bullet points for clarity.",
	},
	techniqueClarifyIntent: {
		"The goal is to provide a comprehensive and accurate response.",
		"Please focus on being helpful, accurate, and thorough in your answer.",
		"I'm looking for a detailed explanation that addresses all aspects of this question.",
	},
	techniqueStepByStep: {
		"Please think through this step by step:",
		"Break down your response into clear steps:",
		"Approach this systematically, step by step:",
	},
	techniqueExamples: {
		"For example, include specific details and explanations in your response.",
		"Provide concrete examples where applicable to illustrate your points.",
		"Use examples to make your explanation clearer and more practical.",
	},
	techniqueConstraints: {
		"Keep your response concise but comprehensive.",
		"Focus on the most important aspects in your response.",
		"Provide a focused answer that directly addresses the question.",
	},
	techniqueDomainContext: {
		"Consider this from a professional/technical perspective.",
		"Approach this with expertise in the relevant field.",
		"Provide insights based on best practices in this domain.",
	},
	techniqueAudience: {
		"Explain this for someone with intermediate knowledge of the topic.",
		"Tailor your response for a professional audience.",
		"Make this accessible to someone learning about this topic.",
	},
	techniqueUseCases: {
		"Include practical applications and use cases in your response.",
		"Provide real-world examples of how this applies.",
		"Show how this would be used in practice.",
	},
	techniqueOutputTemplate: {
		"Format your response as:\n1. Overview\n2. Key Points\n3. Conclusion",
		"Structure your answer with clear headings and subpoints.",
		"Organize your response with an introduction, main content, and summary.",
	},
	techniqueStructure: {
		"Ensure your response has a logical flow from start to finish.",
		"Organize your thoughts clearly with smooth transitions between ideas.",
		"Present information in a well-structured, easy-to-follow manner.",
	},
	techniqueLengthGuidelines: {
		"Provide a response of moderate length - thorough but not excessive.",
		"Keep your answer comprehensive yet concise.",
		"Aim for a complete but efficiently worded response.",
	},
}

// techniqueImprovements are the base score gains each technique predicts,
// keyed by metric. Gains for a metric behind a detected problem get a
// 1.5x boost, capped at 0.5.
var techniqueImprovements = map[string]map[string]float64{
	techniqueAddContext:       {schema.MetricSemanticAccuracy: 0.15, schema.MetricCoherence: 0.10},
	techniqueSpecifyFormat:    {schema.MetricCoherence: 0.20, schema.MetricSemanticAccuracy: 0.10},
	techniqueClarifyIntent:    {schema.MetricSemanticAccuracy: 0.25, schema.MetricCoherence: 0.15},
	techniqueStepByStep:       {schema.MetricCoherence: 0.30, schema.MetricSemanticAccuracy: 0.10},
	techniqueExamples:         {schema.MetricSemanticAccuracy: 0.20, schema.MetricCreativity: 0.15},
	techniqueConstraints:      {schema.MetricCost: 0.25, schema.MetricLatency: 0.15},
	techniqueDomainContext:    {schema.MetricSemanticAccuracy: 0.15, schema.MetricCreativity: 0.20},
	techniqueAudience:         {schema.MetricSemanticAccuracy: 0.10, schema.MetricCoherence: 0.15},
	techniqueUseCases:         {schema.MetricCreativity: 0.25, schema.MetricSemanticAccuracy: 0.15},
	techniqueOutputTemplate:   {schema.MetricCoherence: 0.25, schema.MetricSemanticAccuracy: 0.10},
	techniqueStructure:        {schema.MetricCoherence: 0.30, schema.MetricSemanticAccuracy: 0.05},
	techniqueLengthGuidelines: {schema.MetricCost: 0.20, schema.MetricLatency: 0.10},
}

// suggest proposes up to SuggestionLimit prompt rewrites for a zombie
// record, strongest confidence first. Alive records get none.
func suggest(prompt string, metrics map[string]schema.MetricScore, status schema.ZombieStatus, rng *rand.Rand) []schema.RevivalSuggestion {
	if !status.IsZombie {
		return nil
	}
	problems := detectProblems(metrics)

	var suggestions []schema.RevivalSuggestion
	for _, strat := range revivalStrategies {
		if len(suggestions) >= SuggestionLimit {
			break
		}
		technique := selectTechnique(strat, problems, rng)
		if technique == "" {
			continue
		}
		improved := applyTechnique(prompt, technique, rng)
		confidence := clampConfidence(strat.weight + math.Min(float64(len(problems))*0.1, 0.3) + noise(rng))
		suggestions = append(suggestions, schema.RevivalSuggestion{
			ImprovedPrompt:       improved,
			Strategy:             strat.name,
			Technique:            technique,
			Reasoning:            reasoning(technique, strat.name, problems),
			ConfidenceScore:      confidence,
			ExpectedImprovements: predictImprovements(technique, problems),
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].ConfidenceScore > suggestions[j].ConfidenceScore
	})
	if len(suggestions) > SuggestionLimit {
		suggestions = suggestions[:SuggestionLimit]
	}
	return suggestions
}

// detectProblems maps weak metrics to named revival problems.
func detectProblems(metrics map[string]schema.MetricScore) map[string]struct{} {
	problems := make(map[string]struct{})
	for name, metric := range metrics {
		if metric.Category != schema.CategoryPoor && metric.Category != schema.CategoryZombie {
			continue
		}
		if problem, ok := metricProblems[name]; ok {
			problems[problem] = struct{}{}
		}
	}
	return problems
}

// selectTechnique picks one of the strategy's techniques, preferring those
// that target a detected problem.
func selectTechnique(strat strategy, problems map[string]struct{}, rng *rand.Rand) string {
	relevant := make(map[string]struct{})
	for _, problem := range problemOrder {
		if _, ok := problems[problem]; !ok {
			continue
		}
		for _, technique := range problemTechniques[problem] {
			relevant[technique] = struct{}{}
		}
	}

	var applicable []string
	for _, technique := range strat.techniques {
		if _, ok := relevant[technique]; ok {
			applicable = append(applicable, technique)
		}
	}
	if len(applicable) > 0 {
		return applicable[rng.Intn(len(applicable))]
	}
	if len(strat.techniques) > 0 {
		return strat.techniques[rng.Intn(len(strat.techniques))]
	}
	return ""
}

// applyTechnique splices a canned addition into the prompt. Context goes
// in front, everything else is appended.
func applyTechnique(prompt, technique string, rng *rand.Rand) string {
	additions := techniqueAdditions[technique]
	if len(additions) == 0 {
		return prompt
	}
	addition := additions[rng.Intn(len(additions))]
	if technique == techniqueAddContext {
		return addition + "\n\n" + prompt
	}
	return prompt + "\n\n" + addition
}

// reasoning explains which problems the chosen technique targets.
func reasoning(technique, strategyName string, problems map[string]struct{}) string {
	if len(problems) == 0 {
		return fmt.Sprintf("Applied %s technique from %s strategy for general improvement", technique, strategyName)
	}
	descriptions := make([]string, 0, len(problems))
	for _, problem := range problemOrder {
		if _, ok := problems[problem]; ok {
			descriptions = append(descriptions, problemDescriptions[problem])
		}
	}
	return fmt.Sprintf("Applied %s technique from %s strategy to address: %s", technique, strategyName, strings.Join(descriptions, ", "))
}

// predictImprovements estimates per-metric score gains for a technique.
func predictImprovements(technique string, problems map[string]struct{}) map[string]float64 {
	improvements := make(map[string]float64)
	for metric, gain := range techniqueImprovements[technique] {
		if _, ok := problems[metricProblems[metric]]; ok {
			gain *= 1.5
		}
		improvements[metric] = math.Min(gain, 0.5)
	}
	return improvements
}

// clampConfidence bounds a confidence score to [0.1, 1.0].
func clampConfidence(v float64) float64 {
	return math.Max(0.1, math.Min(1.0, v))
}
