// Package core has core logic for querying, scoring and reviving prompt records.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/promptgraveyard/graveyard/core/eval"
	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/internal/outwriter"
	"github.com/promptgraveyard/graveyard/internal/parquet"
)

// ExecuteGraveyardPrompts runs a filtered query over the record log and prints
// the matching page to stdout. It serves as the main entry point for the
// 'prompts' command.
func ExecuteGraveyardPrompts(ctx context.Context, cfg *contract.Config, store contract.RecordStore) error {
	start := time.Now()
	records, err := store.GetAll(ctx)
	if err != nil {
		return err
	}
	page := QueryRecords(records, cfg.QueryFilter(), cfg.QueryOptions())
	duration := time.Since(start)
	return outwriter.WriteRecordPage(page, cfg, duration)
}

// ExecuteGraveyardZombies runs the same query as the 'prompts' command with the
// zombie filter forced on. It serves as the main entry point for the 'zombies'
// command.
func ExecuteGraveyardZombies(ctx context.Context, cfg *contract.Config, store contract.RecordStore) error {
	start := time.Now()
	records, err := store.GetAll(ctx)
	if err != nil {
		return err
	}
	filter := cfg.QueryFilter()
	zombie := true
	filter.IsZombie = &zombie
	page := QueryRecords(records, filter, cfg.QueryOptions())
	duration := time.Since(start)
	return outwriter.WriteRecordPage(page, cfg, duration)
}

// ExecuteGraveyardStats aggregates the whole record log and prints the summary.
// It serves as the main entry point for the 'stats' command.
func ExecuteGraveyardStats(ctx context.Context, cfg *contract.Config, store contract.RecordStore) error {
	start := time.Now()
	records, err := store.GetAll(ctx)
	if err != nil {
		return err
	}
	stats := BuildGraveyardStats(records, start)
	duration := time.Since(start)
	return outwriter.PrintGraveyardStats(stats, cfg, duration)
}

// ExecuteRevive applies one revival suggestion to one record and logs the
// attempt to the ledger. It serves as the main entry point for the 'revive'
// command.
func ExecuteRevive(ctx context.Context, cfg *contract.Config, store contract.RecordStore, manager contract.LedgerManager) error {
	start := time.Now()
	service := NewRevivalService(store, manager.GetLedgerStore(), contract.SystemClock{})
	result, err := service.AttemptRevival(ctx, cfg.RecordID, cfg.SuggestionIndex, cfg.Feedback)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintRevivalResult(result, cfg, duration)
}

// ExecuteRevivalHistory replays the ledger into attempt states and prints
// them, optionally scoped to one record. It serves as the main entry point for
// the 'revivals history' command.
func ExecuteRevivalHistory(ctx context.Context, cfg *contract.Config, store contract.RecordStore, manager contract.LedgerManager) error {
	start := time.Now()
	service := NewRevivalService(store, manager.GetLedgerStore(), contract.SystemClock{})
	attempts, err := service.GetRevivalHistory(ctx, cfg.RecordID)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintRevivalHistory(attempts, cfg, duration)
}

// ExecuteRevivalStats aggregates the ledger into revival totals and prints
// them. It serves as the main entry point for the 'revivals stats' command.
func ExecuteRevivalStats(ctx context.Context, cfg *contract.Config, store contract.RecordStore, manager contract.LedgerManager) error {
	start := time.Now()
	service := NewRevivalService(store, manager.GetLedgerStore(), contract.SystemClock{})
	stats, err := service.GetRevivalStats(ctx)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintRevivalStats(stats, cfg, duration)
}

// ExecuteEvaluate loads a prompts file, runs the evaluation pipeline against
// it and prints the outcome. The pipeline appends the new records to the
// store before this returns. It serves as the main entry point for the
// 'evaluate' command.
func ExecuteEvaluate(ctx context.Context, cfg *contract.Config, store contract.RecordStore) error {
	start := time.Now()
	prompts, err := eval.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		return err
	}
	pipeline := eval.NewPipeline(cfg, store, contract.SystemClock{})
	records, err := pipeline.Run(ctx, prompts)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.WriteEvaluationOutcome(records, cfg, duration)
}

// ExecuteLedgerStatus reports backend health and event totals for the
// configured ledger. It serves as the main entry point for the 'ledger
// status' command.
func ExecuteLedgerStatus(_ context.Context, cfg *contract.Config, manager contract.LedgerManager) error {
	start := time.Now()
	status, err := manager.GetLedgerStore().GetStatus()
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintLedgerStatus(status, cfg, duration)
}

// ExecuteExport writes the record log and the replayed revival attempts to
// Parquet files. It serves as the main entry point for the 'export' command.
func ExecuteExport(ctx context.Context, cfg *contract.Config, store contract.RecordStore, manager contract.LedgerManager) error {
	if cfg.RecordsParquet == "" && cfg.ResponsesParquet == "" && cfg.AttemptsParquet == "" {
		return errors.New("no parquet output paths configured for export")
	}

	records, err := store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	service := NewRevivalService(store, manager.GetLedgerStore(), contract.SystemClock{})
	attempts, err := service.GetRevivalHistory(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to load revival attempts: %w", err)
	}

	if len(records) == 0 && len(attempts) == 0 {
		return errors.New("no graveyard data found to export")
	}

	fmt.Printf("Exporting %d records and %d revival attempts...\n", len(records), len(attempts))

	if cfg.RecordsParquet != "" {
		rows := parquet.ConvertEvaluationRecords(records)
		if err := parquet.WriteRecordsParquet(rows, cfg.RecordsParquet); err != nil {
			return fmt.Errorf("failed to write records: %w", err)
		}
		fmt.Printf("Exported %d records to: %s\n", len(rows), cfg.RecordsParquet)
	}

	if cfg.ResponsesParquet != "" {
		rows := parquet.FlattenProviderResponses(records)
		if err := parquet.WriteResponsesParquet(rows, cfg.ResponsesParquet); err != nil {
			return fmt.Errorf("failed to write responses: %w", err)
		}
		fmt.Printf("Exported %d provider responses to: %s\n", len(rows), cfg.ResponsesParquet)
	}

	if cfg.AttemptsParquet != "" {
		rows := parquet.ConvertRevivalAttempts(attempts)
		if err := parquet.WriteAttemptsParquet(rows, cfg.AttemptsParquet); err != nil {
			return fmt.Errorf("failed to write attempts: %w", err)
		}
		fmt.Printf("Exported %d revival attempts to: %s\n", len(rows), cfg.AttemptsParquet)
	}

	return nil
}
