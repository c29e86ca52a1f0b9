// Package eval has the simulated evaluation pipeline for prompt records.
package eval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// Prompt is one prompt queued for evaluation.
type Prompt struct {
	Name       string // Stem of the source file, used to derive the record ID
	Text       string
	SourcePath string
}

// LoadPrompts reads prompts from a .txt file, or from every .txt file in a
// directory in name order. Files holding only whitespace are skipped.
func LoadPrompts(path string) ([]Prompt, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, contract.StorageError(err, "cannot read prompts at %s", path)
	}

	var files []string
	if info.IsDir() {
		matches, err := filepath.Glob(filepath.Join(path, "*.txt"))
		if err != nil {
			return nil, contract.StorageError(err, "cannot scan prompts dir %s", path)
		}
		sort.Strings(matches)
		files = matches
	} else {
		files = []string{path}
	}

	var prompts []Prompt
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, contract.StorageError(err, "cannot read prompt file %s", file)
		}
		text := strings.TrimSpace(string(content))
		if text == "" {
			continue
		}
		name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		prompts = append(prompts, Prompt{Name: name, Text: text, SourcePath: file})
	}
	if len(prompts) == 0 {
		return nil, contract.ValidationError("no prompts found at %s", path)
	}
	return prompts, nil
}

// recordID derives a short stable identifier from the prompt name and its
// evaluation time.
func recordID(name string, at time.Time) string {
	sum := sha256.Sum256([]byte(name + "_" + at.Format(time.RFC3339Nano)))
	return hex.EncodeToString(sum[:])[:12]
}

// Pipeline evaluates prompts against the builtin providers and appends the
// resulting records to the store.
type Pipeline struct {
	store     contract.RecordStore
	providers []*Provider
	limiter   *RateLimiter
	weights   map[string]float64
	clock     contract.Clock
	seed      int64
	workers   int
}

// NewPipeline builds a pipeline from the validated config. A nil clock
// falls back to the system clock.
func NewPipeline(cfg *contract.Config, store contract.RecordStore, clock contract.Clock) *Pipeline {
	if clock == nil {
		clock = contract.SystemClock{}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}
	limit := cfg.RateLimit
	if limit <= 0 {
		limit = contract.DefaultRateLimit
	}
	return &Pipeline{
		store:     store,
		providers: BuiltinProviders(),
		limiter:   NewRateLimiter(limit, clock),
		weights:   cfg.MetricWeights,
		clock:     clock,
		seed:      cfg.Seed,
		workers:   workers,
	}
}

// Run evaluates every prompt concurrently, then appends the records to the
// store in prompt order. Each prompt gets its own random stream seeded from
// its index, so the output does not depend on worker scheduling.
func (p *Pipeline) Run(ctx context.Context, prompts []Prompt) ([]schema.EvaluationRecord, error) {
	if len(prompts) == 0 {
		return nil, contract.ValidationError("no prompts to evaluate")
	}

	type job struct {
		index  int
		prompt Prompt
	}
	jobCh := make(chan job, len(prompts))
	records := make([]schema.EvaluationRecord, len(prompts))

	var wg sync.WaitGroup
	for range p.workers {
		wg.Go(func() {
			for j := range jobCh {
				// Each job writes to a unique index, so no mutex is needed
				records[j.index] = p.evaluatePrompt(j.prompt, j.index)
			}
		})
	}

	for i, prompt := range prompts {
		jobCh <- job{index: i, prompt: prompt}
	}
	close(jobCh)
	wg.Wait()

	if err := p.store.Append(ctx, records...); err != nil {
		return nil, err
	}
	return records, nil
}

// evaluatePrompt runs the full builder chain for one prompt.
func (p *Pipeline) evaluatePrompt(prompt Prompt, index int) schema.EvaluationRecord {
	rng := rand.New(rand.NewSource(p.seed + int64(index)))
	return NewRecordBuilder(prompt, p.providers, p.limiter, p.weights, p.clock, rng).
		CollectResponses().
		ScoreMetrics().
		ClassifyStatus().
		GenerateSuggestions().
		Build()
}
