package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/internal/ledger"
	"github.com/promptgraveyard/graveyard/internal/recordstore"
	"github.com/promptgraveyard/graveyard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var revivalNow = time.Date(2026, time.February, 9, 12, 0, 0, 0, time.UTC)

// revivalRecords returns the store fixture: two zombies with suggestions
// across the success threshold, plus one alive record.
func revivalRecords() (zombie, zombie2, alive schema.EvaluationRecord) {
	zombie = schema.EvaluationRecord{
		ID:           "rec-zombie",
		PromptText:   "write a haiku",
		Timestamp:    revivalNow.Add(-time.Hour),
		ZombieStatus: schema.StatusForScore(0.42),
		RevivalSuggestions: []schema.RevivalSuggestion{
			{
				ImprovedPrompt:  "Context: You are an expert assistant helping with this task.\n\nwrite a haiku",
				Strategy:        "clarity_enhancement",
				Technique:       "add_context",
				Reasoning:       "Applied add_context technique from clarity_enhancement strategy",
				ConfidenceScore: 0.75,
				ExpectedImprovements: map[string]float64{
					schema.MetricSemanticAccuracy: 0.15,
					schema.MetricCoherence:        0.10,
				},
			},
			{
				ImprovedPrompt:  "write a haiku\n\nPlease structure your response clearly.",
				Strategy:        "structure_improvement",
				Technique:       "output_template",
				ConfidenceScore: 0.4,
			},
			{
				ImprovedPrompt:  "write a haiku with specific formatting",
				Strategy:        "instruction_optimization",
				Technique:       "specify_format",
				ConfidenceScore: 0.6, // exactly at the threshold
			},
		},
	}
	zombie2 = schema.EvaluationRecord{
		ID:           "rec-zombie2",
		PromptText:   "summarize this article",
		Timestamp:    revivalNow.Add(-2 * time.Hour),
		ZombieStatus: schema.StatusForScore(0.25),
		RevivalSuggestions: []schema.RevivalSuggestion{
			{
				ImprovedPrompt:  "summarize this article step by step",
				Strategy:        "instruction_optimization",
				Technique:       "step_by_step_breakdown",
				ConfidenceScore: 0.8,
			},
		},
	}
	alive = schema.EvaluationRecord{
		ID:           "rec-alive",
		PromptText:   "translate to French",
		Timestamp:    revivalNow.Add(-time.Hour),
		ZombieStatus: schema.StatusForScore(0.84),
	}
	return zombie, zombie2, alive
}

// newRevivalService wires the service with mocked records, an in-memory
// ledger and sequential IDs so assertions stay deterministic.
func newRevivalService() (*RevivalService, *ledger.MemoryStore) {
	zombie, zombie2, alive := revivalRecords()

	store := &recordstore.MockRecordStore{}
	store.On("GetByID", mock.Anything, "rec-zombie").Return(zombie, nil)
	store.On("GetByID", mock.Anything, "rec-zombie2").Return(zombie2, nil)
	store.On("GetByID", mock.Anything, "rec-alive").Return(alive, nil)
	store.On("GetByID", mock.Anything, "rec-missing").
		Return(schema.EvaluationRecord{}, contract.NotFoundError("record %s", "rec-missing"))

	ledgerStore := ledger.NewMemoryStore()
	svc := NewRevivalService(store, ledgerStore, recordstore.NewFakeClock(revivalNow))

	var seq int
	var mu sync.Mutex
	svc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("id-%04d", seq)
	}
	return svc, ledgerStore
}

func TestAttemptRevivalSuccess(t *testing.T) {
	svc, ledgerStore := newRevivalService()
	ctx := context.Background()

	result, err := svc.AttemptRevival(ctx, "rec-zombie", 0, "please fix this one")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, schema.AttemptSuccess, result.Status)
	assert.False(t, result.AlreadyAlive)
	assert.Equal(t, "rec-zombie", result.RecordID)
	assert.NotEmpty(t, result.AttemptID)
	assert.Equal(t, "clarity_enhancement", result.Strategy)
	assert.Equal(t, "add_context", result.Technique)
	assert.InDelta(t, 0.75, result.ConfidenceScore, 1e-9)
	assert.InDelta(t, 0.15, result.ExpectedImprovements[schema.MetricSemanticAccuracy], 1e-9)
	assert.Contains(t, result.Message, "succeeded")

	// One attempt means exactly two events: created then resolved.
	events, err := ledgerStore.LoadEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, schema.EventAttemptCreated, events[0].Kind)
	assert.Equal(t, schema.EventAttemptResolved, events[1].Kind)
	assert.Equal(t, result.AttemptID, events[0].AttemptID)
	require.NotNil(t, events[0].Attempt)
	assert.Equal(t, schema.AttemptPending, events[0].Attempt.Status)
	assert.Equal(t, "please fix this one", events[0].Attempt.UserFeedback)
	assert.Equal(t, "write a haiku", events[0].Attempt.OriginalPrompt)

	// The folded history shows the resolved attempt.
	history, err := svc.GetRevivalHistory(ctx, "rec-zombie")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, schema.AttemptSuccess, history[0].Status)
	require.NotNil(t, history[0].ResolvedAt)
	assert.True(t, history[0].CreatedAt.Equal(revivalNow))
}

func TestAttemptRevivalFailed(t *testing.T) {
	svc, _ := newRevivalService()

	result, err := svc.AttemptRevival(context.Background(), "rec-zombie", 1, "")
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, schema.AttemptFailed, result.Status)
	assert.Equal(t, "structure_improvement", result.Strategy)
	assert.Contains(t, result.Message, "did not exceed")
}

func TestAttemptRevivalThresholdIsStrict(t *testing.T) {
	svc, _ := newRevivalService()

	// Confidence of exactly 0.6 must fail; the bar is strictly above.
	result, err := svc.AttemptRevival(context.Background(), "rec-zombie", 2, "")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, schema.AttemptFailed, result.Status)
}

func TestAttemptRevivalAlreadyAlive(t *testing.T) {
	svc, ledgerStore := newRevivalService()
	ctx := context.Background()

	result, err := svc.AttemptRevival(ctx, "rec-alive", 0, "")
	require.NoError(t, err)

	assert.True(t, result.AlreadyAlive)
	assert.False(t, result.Success)
	assert.Empty(t, result.AttemptID)
	assert.Contains(t, result.Message, "already alive")

	// No-op results leave no trace in the ledger.
	events, err := ledgerStore.LoadEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAttemptRevivalBadIndex(t *testing.T) {
	svc, ledgerStore := newRevivalService()
	ctx := context.Background()

	for _, index := range []int{-1, 3, 99} {
		_, err := svc.AttemptRevival(ctx, "rec-zombie", index, "")
		require.ErrorIs(t, err, contract.ErrValidation, "index %d", index)
	}

	events, err := ledgerStore.LoadEvents(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestAttemptRevivalNotFound(t *testing.T) {
	svc, _ := newRevivalService()

	_, err := svc.AttemptRevival(context.Background(), "rec-missing", 0, "")
	require.ErrorIs(t, err, contract.ErrNotFound)
}

func TestAttemptRevivalLedgerFailure(t *testing.T) {
	zombie, _, _ := revivalRecords()
	store := &recordstore.MockRecordStore{}
	store.On("GetByID", mock.Anything, "rec-zombie").Return(zombie, nil)

	ledgerStore := &ledger.MockLedgerStore{}
	ledgerStore.On("AppendEvent", mock.Anything, mock.Anything).
		Return(errors.New("disk full"))

	svc := NewRevivalService(store, ledgerStore, recordstore.NewFakeClock(revivalNow))
	_, err := svc.AttemptRevival(context.Background(), "rec-zombie", 0, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestGetRevivalHistoryFiltersByRecord(t *testing.T) {
	svc, _ := newRevivalService()
	ctx := context.Background()

	_, err := svc.AttemptRevival(ctx, "rec-zombie", 0, "")
	require.NoError(t, err)
	_, err = svc.AttemptRevival(ctx, "rec-zombie2", 0, "")
	require.NoError(t, err)
	_, err = svc.AttemptRevival(ctx, "rec-zombie", 1, "")
	require.NoError(t, err)

	all, err := svc.GetRevivalHistory(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "rec-zombie", all[0].RecordID) // append order
	assert.Equal(t, "rec-zombie2", all[1].RecordID)
	assert.Equal(t, "rec-zombie", all[2].RecordID)

	filtered, err := svc.GetRevivalHistory(ctx, "rec-zombie2")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "instruction_optimization", filtered[0].Strategy)
	assert.Equal(t, "summarize this article", filtered[0].OriginalPrompt)

	none, err := svc.GetRevivalHistory(ctx, "rec-unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetRevivalStats(t *testing.T) {
	svc, _ := newRevivalService()
	ctx := context.Background()

	// Two successes for clarity_enhancement, one for instruction_optimization,
	// one structure_improvement failure.
	for _, attempt := range []struct {
		recordID string
		index    int
	}{
		{"rec-zombie", 0},
		{"rec-zombie", 0},
		{"rec-zombie2", 0},
		{"rec-zombie", 1},
	} {
		_, err := svc.AttemptRevival(ctx, attempt.recordID, attempt.index, "")
		require.NoError(t, err)
	}

	stats, err := svc.GetRevivalStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalAttempts)
	assert.Equal(t, 3, stats.SuccessCount)
	assert.InDelta(t, 0.75, stats.SuccessRate, 1e-9)
	assert.Equal(t, "clarity_enhancement", stats.MostSuccessfulStrategy)
	assert.Len(t, stats.RecentAttempts, 4)
}

func TestGetRevivalStatsTieBreaksOnFirstSeen(t *testing.T) {
	svc, _ := newRevivalService()
	ctx := context.Background()

	// One success each; clarity_enhancement succeeded first and wins the tie.
	_, err := svc.AttemptRevival(ctx, "rec-zombie", 0, "")
	require.NoError(t, err)
	_, err = svc.AttemptRevival(ctx, "rec-zombie2", 0, "")
	require.NoError(t, err)

	stats, err := svc.GetRevivalStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.SuccessCount)
	assert.Equal(t, "clarity_enhancement", stats.MostSuccessfulStrategy)
}

func TestGetRevivalStatsEmpty(t *testing.T) {
	svc, _ := newRevivalService()

	stats, err := svc.GetRevivalStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalAttempts)
	assert.Equal(t, 0, stats.SuccessCount)
	assert.Zero(t, stats.SuccessRate)
	assert.Empty(t, stats.MostSuccessfulStrategy)
	assert.Empty(t, stats.RecentAttempts)
}

func TestAttemptRevivalSerializesWrites(t *testing.T) {
	svc, ledgerStore := newRevivalService()
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AttemptRevival(ctx, "rec-zombie", 0, "")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Every attempt lands as an adjacent created/resolved pair; nothing
	// is lost or interleaved.
	events, err := ledgerStore.LoadEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, workers*2)
	for i := 0; i < len(events); i += 2 {
		assert.Equal(t, schema.EventAttemptCreated, events[i].Kind)
		assert.Equal(t, schema.EventAttemptResolved, events[i+1].Kind)
		assert.Equal(t, events[i].AttemptID, events[i+1].AttemptID)
	}

	attempts, err := svc.GetRevivalHistory(ctx, "rec-zombie")
	require.NoError(t, err)
	assert.Len(t, attempts, workers)
	for _, a := range attempts {
		assert.Equal(t, schema.AttemptSuccess, a.Status)
	}
}
