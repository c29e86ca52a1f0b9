//go:build basic

package integration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// baseFlags points every command in one test at the same temp record log and
// sqlite ledger, with decorations off so assertions see plain labels.
func baseFlags(resultsPath, ledgerPath string) []string {
	return []string{
		"--results", resultsPath,
		"--ledger-backend", "sqlite",
		"--ledger-db-connect", ledgerPath,
		"--emoji", "no",
		"--color", "no",
	}
}

// TestGraveyardLifecycle walks the whole surface in order: evaluate a batch
// of doomed prompts, query them, revive one, inspect the ledger, and export
// everything to Parquet. Each step is a separate process, so state has to
// survive through the record log and the sqlite ledger file.
func TestGraveyardLifecycle(t *testing.T) {
	workDir := t.TempDir()
	promptsDir := filepath.Join(workDir, "prompts")
	writeShortPrompts(t, promptsDir, "Fix this code", "Sort my list", "Write a regex")

	resultsPath := filepath.Join(workDir, "results.json")
	ledgerPath := filepath.Join(workDir, "ledger.db")
	base := baseFlags(resultsPath, ledgerPath)

	// 1. Evaluate the fixtures. All three prompts are terse enough to land
	// in the shambling band.
	out := mustRunGraveyard(t, workDir, append([]string{"evaluate", promptsDir, "--seed", "7", "--workers", "2"}, base...)...)
	if !strings.Contains(out, "Evaluated 3 prompts (3 zombies)") {
		t.Errorf("Expected evaluation summary for 3 zombies, got:\n%s", out)
	}
	if _, err := os.Stat(resultsPath); err != nil {
		t.Fatalf("Expected results file after evaluate: %v", err)
	}

	// 2. The zombie page shows all three records with suggestions attached.
	out = mustRunGraveyard(t, workDir, append([]string{"zombies", "--output", "json"}, base...)...)
	var zombies recordPage
	if err := json.Unmarshal([]byte(out), &zombies); err != nil {
		t.Fatalf("Failed to parse zombies JSON: %v\nOutput: %s", err, out)
	}
	if zombies.Total != 3 || len(zombies.Items) != 3 {
		t.Fatalf("Expected 3 zombies, got total=%d items=%d", zombies.Total, len(zombies.Items))
	}
	for _, item := range zombies.Items {
		if !item.ZombieStatus.IsZombie {
			t.Errorf("Record %s on the zombie page is not flagged as a zombie", item.PromptID)
		}
		if item.ZombieStatus.Severity != "shambling" {
			t.Errorf("Record %s severity = %q, want shambling", item.PromptID, item.ZombieStatus.Severity)
		}
		if len(item.RevivalSuggestions) == 0 {
			t.Errorf("Record %s carries no revival suggestions", item.PromptID)
		}
	}

	// 3. Aggregate stats agree with the query.
	out = mustRunGraveyard(t, workDir, append([]string{"stats", "--output", "json"}, base...)...)
	var stats graveyardStats
	if err := json.Unmarshal([]byte(out), &stats); err != nil {
		t.Fatalf("Failed to parse stats JSON: %v\nOutput: %s", err, out)
	}
	if stats.TotalPrompts != 3 || stats.ZombieCount != 3 {
		t.Errorf("Expected 3 prompts / 3 zombies in stats, got %d / %d", stats.TotalPrompts, stats.ZombieCount)
	}

	// 4. Revive the first zombie. The top suggestion for a multi-problem
	// record always clears the confidence bar, so the attempt resolves as
	// a success.
	target := zombies.Items[0].PromptID
	out = mustRunGraveyard(t, workDir, append([]string{"revive", target, "--suggestion", "0", "--feedback", "tightened the ask"}, base...)...)
	if !strings.Contains(out, target) {
		t.Errorf("Expected revival output to name record %s, got:\n%s", target, out)
	}
	if !strings.Contains(out, "Success") {
		t.Errorf("Expected a successful revival, got:\n%s", out)
	}

	// 5. A fresh process sees the attempt through the sqlite ledger.
	out = mustRunGraveyard(t, workDir, append([]string{"revivals", "history", target}, base...)...)
	if !strings.Contains(out, "Showing 1 revival attempts (0 pending)") {
		t.Errorf("Expected one resolved attempt in history, got:\n%s", out)
	}

	// 6. Revival stats aggregate that one attempt.
	out = mustRunGraveyard(t, workDir, append([]string{"revivals", "stats", "--output", "json"}, base...)...)
	var rstats revivalStats
	if err := json.Unmarshal([]byte(out), &rstats); err != nil {
		t.Fatalf("Failed to parse revival stats JSON: %v\nOutput: %s", err, out)
	}
	if rstats.TotalAttempts != 1 || rstats.SuccessCount != 1 {
		t.Errorf("Expected 1 successful attempt, got attempts=%d successes=%d", rstats.TotalAttempts, rstats.SuccessCount)
	}

	// 7. Ledger status reports the backend and both events of the attempt.
	out = mustRunGraveyard(t, workDir, append([]string{"ledger", "status", "--output", "json"}, base...)...)
	var status ledgerStatus
	if err := json.Unmarshal([]byte(out), &status); err != nil {
		t.Fatalf("Failed to parse ledger status JSON: %v\nOutput: %s", err, out)
	}
	if status.Backend != "sqlite" || !status.Connected {
		t.Errorf("Expected a connected sqlite ledger, got backend=%q connected=%t", status.Backend, status.Connected)
	}
	if status.TotalEvents != 2 || status.TotalAttempts != 1 {
		t.Errorf("Expected 2 events / 1 attempt in the ledger, got %d / %d", status.TotalEvents, status.TotalAttempts)
	}

	// 8. Export all three datasets to Parquet.
	recordsPq := filepath.Join(workDir, "records.parquet")
	responsesPq := filepath.Join(workDir, "responses.parquet")
	attemptsPq := filepath.Join(workDir, "attempts.parquet")
	out = mustRunGraveyard(t, workDir, append([]string{
		"export",
		"--records-file", recordsPq,
		"--responses-file", responsesPq,
		"--attempts-file", attemptsPq,
	}, base...)...)
	if !strings.Contains(out, "Exporting 3 records and 1 revival attempts") {
		t.Errorf("Expected export summary, got:\n%s", out)
	}
	for _, path := range []string{recordsPq, responsesPq, attemptsPq} {
		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("Expected parquet file %s: %v", path, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("Parquet file %s is empty", path)
		}
	}
}

// TestQueryFiltersAndFormats checks paging, filters and output formats
// against a known record log. Terse prompts score the same every run, so
// the score-window assertions hold on any seed.
func TestQueryFiltersAndFormats(t *testing.T) {
	workDir := t.TempDir()
	promptsDir := filepath.Join(workDir, "prompts")
	writeShortPrompts(t, promptsDir, "Fix this code", "Sort my list", "Write a regex")

	resultsPath := filepath.Join(workDir, "results.json")
	ledgerPath := filepath.Join(workDir, "ledger.db")
	base := baseFlags(resultsPath, ledgerPath)

	mustRunGraveyard(t, workDir, append([]string{"evaluate", promptsDir, "--seed", "3"}, base...)...)

	parsePage := func(args ...string) recordPage {
		t.Helper()
		out := mustRunGraveyard(t, workDir, append(args, base...)...)
		var page recordPage
		if err := json.Unmarshal([]byte(out), &page); err != nil {
			t.Fatalf("Failed to parse page JSON: %v\nOutput: %s", err, out)
		}
		return page
	}

	// Paging splits 3 records into 2+1.
	page := parsePage("prompts", "--output", "json", "--limit", "2", "--page", "2")
	if page.Total != 3 || page.TotalPages != 2 || page.Page != 2 || len(page.Items) != 1 {
		t.Errorf("Expected page 2 of 2 with 1 item, got total=%d pages=%d page=%d items=%d",
			page.Total, page.TotalPages, page.Page, len(page.Items))
	}

	// Severity and zombie-flag filters.
	if page = parsePage("prompts", "--output", "json", "--severity", "shambling"); page.Total != 3 {
		t.Errorf("Expected 3 shambling records, got %d", page.Total)
	}
	if page = parsePage("prompts", "--output", "json", "--severity", "skeletal"); page.Total != 0 {
		t.Errorf("Expected no skeletal records, got %d", page.Total)
	}
	if page = parsePage("prompts", "--output", "json", "--zombie", "false"); page.Total != 0 {
		t.Errorf("Expected no alive records, got %d", page.Total)
	}

	// Score windows around the fixed terse-prompt score.
	if page = parsePage("prompts", "--output", "json", "--min-score", "0.6"); page.Total != 0 {
		t.Errorf("Expected no records at or above 0.6, got %d", page.Total)
	}
	if page = parsePage("prompts", "--output", "json", "--min-score", "0.5", "--max-score", "0.6"); page.Total != 3 {
		t.Errorf("Expected all 3 records inside [0.5, 0.6], got %d", page.Total)
	}

	// Provider filter matches the simulated backends only.
	if page = parsePage("prompts", "--output", "json", "--provider", "groq_llama3"); page.Total != 3 {
		t.Errorf("Expected 3 records with groq_llama3 responses, got %d", page.Total)
	}
	if page = parsePage("prompts", "--output", "json", "--provider", "no_such_provider"); page.Total != 0 {
		t.Errorf("Expected no records for an unknown provider, got %d", page.Total)
	}

	// CSV output leads with the fixed header row.
	out := mustRunGraveyard(t, workDir, append([]string{"prompts", "--output", "csv"}, base...)...)
	if !strings.HasPrefix(out, "rank,prompt_id,prompt_text,") {
		t.Errorf("Expected CSV header row, got:\n%s", out)
	}

	// A filtered-out table prints the empty notice instead of headers.
	out = mustRunGraveyard(t, workDir, append([]string{"prompts", "--severity", "skeletal"}, base...)...)
	if !strings.Contains(out, "No records matched the query.") {
		t.Errorf("Expected the empty-page notice, got:\n%s", out)
	}
}

// TestFailuresSurfaceOnStderr checks that broken inputs exit non-zero with a
// readable message rather than a stack trace or silence.
func TestFailuresSurfaceOnStderr(t *testing.T) {
	workDir := t.TempDir()
	resultsPath := filepath.Join(workDir, "results.json")

	// Missing prompts path fails inside the command.
	out, err := runGraveyardCommand(t, workDir,
		"evaluate", filepath.Join(workDir, "missing"),
		"--results", resultsPath, "--ledger-backend", "none")
	if err == nil {
		t.Fatalf("Expected evaluate on a missing path to fail, got:\n%s", out)
	}
	if !strings.Contains(out, "Fatal Cannot evaluate prompts") {
		t.Errorf("Expected a fatal evaluate message, got:\n%s", out)
	}

	// Bad flag values fail during validation, before the command runs.
	out, err = runGraveyardCommand(t, workDir,
		"prompts", "--limit", "0",
		"--results", resultsPath, "--ledger-backend", "none")
	if err == nil {
		t.Fatalf("Expected a zero limit to be rejected, got:\n%s", out)
	}
	if !strings.Contains(out, "limit must be greater than 0") {
		t.Errorf("Expected the limit validation message, got:\n%s", out)
	}

	// Reviving an unknown record fails with a not-found message.
	out, err = runGraveyardCommand(t, workDir,
		"revive", "no-such-record",
		"--results", resultsPath, "--ledger-backend", "none")
	if err == nil {
		t.Fatalf("Expected reviving an unknown record to fail, got:\n%s", out)
	}
	if !strings.Contains(out, "Fatal Cannot revive record") || !strings.Contains(out, "not found") {
		t.Errorf("Expected a not-found revive message, got:\n%s", out)
	}
}

// TestVersionAndHelp smoke-tests the commands that need no stores at all.
func TestVersionAndHelp(t *testing.T) {
	workDir := t.TempDir()

	out := mustRunGraveyard(t, workDir, "version")
	if !strings.Contains(out, "graveyard CLI") {
		t.Errorf("Expected the version banner, got:\n%s", out)
	}

	out = mustRunGraveyard(t, workDir, "--help")
	for _, command := range []string{"evaluate", "prompts", "zombies", "stats", "revive", "revivals", "export", "ledger", "mcp"} {
		if !strings.Contains(out, command) {
			t.Errorf("Expected help to list the %s command, got:\n%s", command, out)
		}
	}
}
