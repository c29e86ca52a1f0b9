package eval

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// Word-count bands that decide the simulated response quality.
const (
	terseBand    = 5
	mediocreBand = 20
)

// tokenFactor is the rough tokens-per-word estimate used for cost.
const tokenFactor = 1.3

// promptPreview is how many leading characters of the prompt the simulated
// responses echo back.
const promptPreview = 50

// rateWindow is the sliding window the rate limiter enforces.
const rateWindow = time.Minute

// Provider simulates one language-model backend. Latency and cost scale
// from fixed base figures so the pipeline exercises every quality band
// without network access.
type Provider struct {
	Key           string  // Lowercased, underscored identifier used in llm_responses
	Name          string  // Human-readable provider name
	Model         string  // Model identifier reported on responses
	BaseLatencyMs float64 // Latency for a mid-quality response
	CostPerToken  float64 // USD per estimated response token
}

// BuiltinProviders returns the simulated provider set.
func BuiltinProviders() []*Provider {
	return []*Provider{
		{Key: "openai_gpt35", Name: "OpenAI GPT-3.5", Model: "gpt-3.5-turbo", BaseLatencyMs: 2000, CostPerToken: 0.002},
		{Key: "groq_llama3", Name: "Groq LLaMA3", Model: "llama3-8b-8192", BaseLatencyMs: 1200, CostPerToken: 0.001},
	}
}

// Generate produces the simulated response for a prompt. Short prompts get
// a terse low-quality answer at half the base latency; long prompts get a
// thorough answer that costs more and takes longer.
func (p *Provider) Generate(prompt string, now time.Time) schema.ProviderResponse {
	words := len(strings.Fields(prompt))

	var text string
	var latency float64
	switch {
	case words < terseBand:
		text = "Here is some code."
		latency = p.BaseLatencyMs * 0.5
	case words < mediocreBand:
		text = fmt.Sprintf("Here's an explanation: %s... This covers the basics of what you asked.", prefix(prompt, promptPreview))
		latency = p.BaseLatencyMs * 0.8
	default:
		text = fmt.Sprintf("Comprehensive answer to '%s...': This is a detailed, well-structured response with examples, explanations, and best practices. The content is organized logically and addresses all aspects of your question.", prefix(prompt, promptPreview))
		latency = p.BaseLatencyMs * 1.2
	}

	cost := p.CostPerToken * float64(len(strings.Fields(text))) * tokenFactor

	return schema.ProviderResponse{
		Text:      text,
		LatencyMs: &latency,
		CostUSD:   &cost,
		Timestamp: now,
		Model:     p.Model,
	}
}

// prefix returns the first n characters of s.
func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// RateLimiter enforces a sliding one-minute call window. The clock and the
// sleep function are injected so tests can drive time directly.
type RateLimiter struct {
	limit int
	clock contract.Clock
	sleep func(time.Duration)

	mu    sync.Mutex
	calls []time.Time
}

// NewRateLimiter returns a limiter allowing limit calls per minute.
func NewRateLimiter(limit int, clock contract.Clock) *RateLimiter {
	if clock == nil {
		clock = contract.SystemClock{}
	}
	return &RateLimiter{
		limit: limit,
		clock: clock,
		sleep: time.Sleep,
	}
}

// Wait blocks until the next call fits in the window, then records it.
// Waiting callers hold the lock, so calls drain in arrival order.
func (l *RateLimiter) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()

	// Drop calls that have left the window
	kept := l.calls[:0]
	for _, at := range l.calls {
		if now.Sub(at) < rateWindow {
			kept = append(kept, at)
		}
	}
	l.calls = kept

	if len(l.calls) >= l.limit {
		if wait := rateWindow - now.Sub(l.calls[0]); wait > 0 {
			l.sleep(wait)
			now = l.clock.Now()
		}
	}

	l.calls = append(l.calls, now)
}
