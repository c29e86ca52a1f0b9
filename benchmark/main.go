// Package main provides a performance benchmarking tool for the graveyard CLI.
// It measures execution times across different prompt batch sizes and command
// types, running each test multiple times, treating the first successful run as
// cold and averaging the rest as warm, generating CSV output for performance
// analysis and documentation.
//
// Prerequisites:
// - graveyard binary installed and available in PATH
// - A writable work directory; prompt fixtures are generated into it
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory to hold generated prompt batches and record logs
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average
// of warm runs) for one batch size and command.
type BenchmarkResult struct {
	Batch    string
	Command  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir      string
	Timeout      time.Duration
	Runs         int
	BatchSizes   []int
	WorkerCounts []int
	RateLimit    int
}

// promptShapes cycle through the generated batches so every response band
// gets exercised: terse, mid-length and long prompts.
var promptShapes = []string{
	"Fix this code",
	"Explain how binary search works on a sorted slice of integers",
	"Write a detailed walkthrough of how a relational database executes a join query, covering the planner, the available join algorithms, index usage, and the trade-offs between memory and disk for large intermediate results",
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:      workDir,
		Timeout:      5 * time.Minute,
		Runs:         4,
		BatchSizes:   []int{25, 100, 400},
		WorkerCounts: []int{1, 4, 8},
		// High enough that the sliding-window limiter never sleeps,
		// so the numbers measure compute rather than throttling.
		RateLimit: 1000000,
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies the graveyard binary and the work directory.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("graveyard"); err != nil {
		return fmt.Errorf("graveyard binary not found in PATH")
	}
	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work directory %s: %v", config.WorkDir, err)
	}
	return nil
}

// generatePrompts writes a batch of n prompt files, cycling through the
// prompt shapes, and returns the batch directory.
func generatePrompts(workDir string, n int) (string, error) {
	dir := filepath.Join(workDir, fmt.Sprintf("prompts_%d", n))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	for i := 0; i < n; i++ {
		text := fmt.Sprintf("%s (variant %d)", promptShapes[i%len(promptShapes)], i)
		name := filepath.Join(dir, fmt.Sprintf("%05d_prompt.txt", i))
		if err := os.WriteFile(name, []byte(text+"\n"), 0o644); err != nil {
			return "", err
		}
	}
	return dir, nil
}

// runBenchmarks executes all benchmark tests across configured batch sizes.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: batches %v, %v timeout, %d runs each\n",
		config.BatchSizes, config.Timeout, config.Runs)

	for _, size := range config.BatchSizes {
		fmt.Printf("Benchmarking batch of %d prompts\n", size)

		promptsDir, err := generatePrompts(config.WorkDir, size)
		if err != nil {
			fmt.Printf("Failed to generate prompts: %v\n", err)
			os.Exit(1)
		}
		batch := fmt.Sprintf("%d", size)

		// Evaluation scaling across worker counts. Every run gets a fresh
		// record log so each one does the same amount of work.
		for _, workers := range config.WorkerCounts {
			command := fmt.Sprintf("evaluate-w%d", workers)
			fmt.Printf("Running %s on batch %s\n", command, batch)
			cold, warm := runTimedCommand(config, config.Runs, func(run int) *exec.Cmd {
				resultsPath := filepath.Join(config.WorkDir, fmt.Sprintf("results_%d_w%d_r%d.json", size, workers, run))
				return graveyardCommand(resultsPath,
					"evaluate", promptsDir,
					"--workers", fmt.Sprintf("%d", workers),
					"--rate-limit", fmt.Sprintf("%d", config.RateLimit),
					"--seed", "42")
			}, "Evaluated")
			results = append(results, BenchmarkResult{Batch: batch, Command: command, ColdTime: cold, WarmTime: warm})
		}

		// One canonical record log for the read-side commands.
		logPath := filepath.Join(config.WorkDir, fmt.Sprintf("results_%d.json", size))
		seedCmd := graveyardCommand(logPath,
			"evaluate", promptsDir,
			"--rate-limit", fmt.Sprintf("%d", config.RateLimit),
			"--seed", "42")
		if output, err := seedCmd.CombinedOutput(); err != nil {
			fmt.Printf("Failed to build record log for batch %s: %v\nOutput: %s\n", batch, err, output)
			os.Exit(1)
		}

		readCommands := []struct {
			name    string
			args    []string
			success string
		}{
			{"prompts", []string{"prompts", "--limit", "100"}, "Query completed in"},
			{"stats", []string{"stats"}, "Stats computed over"},
			{"export", []string{"export", "--attempts-file", ""}, "Exported"},
		}
		for _, rc := range readCommands {
			fmt.Printf("Running %s on batch %s\n", rc.name, batch)
			args := rc.args
			if rc.name == "export" {
				args = append(args,
					"--records-file", filepath.Join(config.WorkDir, fmt.Sprintf("records_%d.parquet", size)),
					"--responses-file", filepath.Join(config.WorkDir, fmt.Sprintf("responses_%d.parquet", size)))
			}
			cold, warm := runTimedCommand(config, config.Runs, func(int) *exec.Cmd {
				return graveyardCommand(logPath, args...)
			}, rc.success)
			results = append(results, BenchmarkResult{Batch: batch, Command: rc.name, ColdTime: cold, WarmTime: warm})
		}
	}

	return results
}

// graveyardCommand builds a graveyard invocation bound to one record log,
// with the ledger disabled so timings cover only the command under test.
func graveyardCommand(resultsPath string, args ...string) *exec.Cmd {
	full := append([]string{}, args...)
	full = append(full, "--results", resultsPath, "--ledger-backend", "none", "--emoji", "no", "--color", "no")
	return exec.Command("graveyard", full...)
}

// runTimedCommand executes a command numRuns times and returns the cold time
// (first successful run) and the average of the remaining warm runs.
func runTimedCommand(config BenchmarkConfig, numRuns int, build func(run int) *exec.Cmd, successPhrase string) (string, string) {
	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()
		cmd := build(run)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && strings.Contains(string(output), successPhrase) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) == 0 {
		return "TIMEOUT", "TIMEOUT"
	}
	cold := fmt.Sprintf("%.3fs", times[0])
	warm := "TIMEOUT"
	if len(times) > 1 {
		var sum float64
		for _, t := range times[1:] {
			sum += t
		}
		warm = fmt.Sprintf("%.3fs", sum/float64(len(times)-1))
	}
	return cold, warm
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/graveyard_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"batch", "cmd", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Batch, result.Command, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "evaluate", "Evaluation:")
	printCommandSummary(results, "prompts", "Query:")
	printCommandSummary(results, "stats", "Stats:")
	printCommandSummary(results, "export", "Export:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type.
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if strings.HasPrefix(result.Command, command) {
			fmt.Printf("  batch %-6s %-12s: Cold: %s, Warm: %s\n", result.Batch, result.Command, result.ColdTime, result.WarmTime)
		}
	}
}
