package core

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// RevivalConfidenceThreshold is the confidence a suggestion must exceed
// for its attempt to resolve as a success. The comparison is strict: a
// confidence of exactly 0.6 fails. This stands in for re-evaluating the
// improved prompt, which the service does not do.
const RevivalConfidenceThreshold = 0.6

// RevivalService adjudicates revival attempts and records them in the
// ledger. Mutations are serialized through a mutex so two concurrent
// attempts can never interleave their event pairs or lose an append.
type RevivalService struct {
	store  contract.RecordStore
	ledger contract.LedgerStore
	clock  contract.Clock
	newID  func() string

	mu sync.Mutex
}

// NewRevivalService returns a service writing to the given ledger store.
// A nil clock falls back to the system clock.
func NewRevivalService(store contract.RecordStore, ledgerStore contract.LedgerStore, clock contract.Clock) *RevivalService {
	if clock == nil {
		clock = contract.SystemClock{}
	}
	return &RevivalService{
		store:  store,
		ledger: ledgerStore,
		clock:  clock,
		newID:  uuid.NewString,
	}
}

// AttemptRevival applies one suggestion to a zombie record. Validation
// runs in order: an unknown record returns a not-found error, an alive
// record returns an already-alive result, and an out-of-range index
// returns a validation error. Only a valid attempt reaches the ledger,
// recorded as pending and immediately resolved against the confidence
// threshold, so history never gains entries for rejected requests.
func (s *RevivalService) AttemptRevival(ctx context.Context, recordID string, suggestionIndex int, feedback string) (schema.RevivalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.store.GetByID(ctx, recordID)
	if err != nil {
		return schema.RevivalResult{}, err
	}

	if !record.ZombieStatus.IsZombie {
		return schema.RevivalResult{
			RecordID:     record.ID,
			AlreadyAlive: true,
			Message:      fmt.Sprintf("record %s is already alive, nothing to revive", record.ID),
		}, nil
	}

	if suggestionIndex < 0 || suggestionIndex >= len(record.RevivalSuggestions) {
		return schema.RevivalResult{}, contract.ValidationError(
			"suggestion index %d out of range for record %s with %d suggestions",
			suggestionIndex, record.ID, len(record.RevivalSuggestions))
	}

	// Copy the suggestion now so later changes to the record snapshot
	// cannot rewrite this attempt's history.
	suggestion := record.RevivalSuggestions[suggestionIndex].Clone()
	now := s.clock.Now()
	attempt := schema.RevivalAttempt{
		AttemptID:            s.newID(),
		RecordID:             record.ID,
		SuggestionIndex:      suggestionIndex,
		OriginalPrompt:       record.PromptText,
		ImprovedPrompt:       suggestion.ImprovedPrompt,
		Strategy:             suggestion.Strategy,
		ConfidenceScore:      suggestion.ConfidenceScore,
		ExpectedImprovements: suggestion.ExpectedImprovements,
		UserFeedback:         feedback,
		Status:               schema.AttemptPending,
		CreatedAt:            now,
	}
	if err := s.ledger.AppendEvent(ctx, schema.LedgerEvent{
		EventID:   s.newID(),
		Kind:      schema.EventAttemptCreated,
		AttemptID: attempt.AttemptID,
		Attempt:   &attempt,
		Time:      now,
	}); err != nil {
		return schema.RevivalResult{}, err
	}

	status := schema.AttemptFailed
	message := fmt.Sprintf("revival failed, confidence %.2f did not exceed %.2f",
		suggestion.ConfidenceScore, RevivalConfidenceThreshold)
	if suggestion.ConfidenceScore > RevivalConfidenceThreshold {
		status = schema.AttemptSuccess
		message = fmt.Sprintf("revival succeeded using %s", suggestion.Strategy)
	}
	if err := s.ledger.AppendEvent(ctx, schema.LedgerEvent{
		EventID:   s.newID(),
		Kind:      schema.EventAttemptResolved,
		AttemptID: attempt.AttemptID,
		Status:    status,
		Time:      now,
	}); err != nil {
		return schema.RevivalResult{}, err
	}

	return schema.RevivalResult{
		AttemptID:            attempt.AttemptID,
		RecordID:             record.ID,
		Success:              status == schema.AttemptSuccess,
		Status:               status,
		Strategy:             suggestion.Strategy,
		Technique:            suggestion.Technique,
		ImprovedPrompt:       suggestion.ImprovedPrompt,
		ConfidenceScore:      suggestion.ConfidenceScore,
		ExpectedImprovements: suggestion.ExpectedImprovements,
		Message:              message,
	}, nil
}

// GetRevivalHistory returns attempts in append order. An empty recordID
// returns the full history.
func (s *RevivalService) GetRevivalHistory(ctx context.Context, recordID string) ([]schema.RevivalAttempt, error) {
	attempts, err := s.loadAttempts(ctx)
	if err != nil {
		return nil, err
	}
	if recordID == "" {
		return attempts, nil
	}

	filtered := make([]schema.RevivalAttempt, 0, len(attempts))
	for _, a := range attempts {
		if a.RecordID == recordID {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// GetRevivalStats summarizes the whole ledger. The most successful
// strategy is the one with the most success-status attempts; on a tie the
// strategy whose first success came earliest wins.
func (s *RevivalService) GetRevivalStats(ctx context.Context) (schema.RevivalStats, error) {
	attempts, err := s.loadAttempts(ctx)
	if err != nil {
		return schema.RevivalStats{}, err
	}

	stats := schema.RevivalStats{
		TotalAttempts:  len(attempts),
		RecentAttempts: []schema.RevivalAttempt{},
	}

	successesByStrategy := make(map[string]int)
	var strategyOrder []string
	for _, a := range attempts {
		if a.Status != schema.AttemptSuccess {
			continue
		}
		stats.SuccessCount++
		if _, seen := successesByStrategy[a.Strategy]; !seen {
			strategyOrder = append(strategyOrder, a.Strategy)
		}
		successesByStrategy[a.Strategy]++
	}
	if stats.TotalAttempts > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.TotalAttempts)
	}

	best := 0
	for _, strategy := range strategyOrder {
		if successesByStrategy[strategy] > best {
			best = successesByStrategy[strategy]
			stats.MostSuccessfulStrategy = strategy
		}
	}

	stats.RecentAttempts = recentAttempts(attempts, recentRecordLimit)
	return stats, nil
}

// loadAttempts folds the event log into current attempt state.
func (s *RevivalService) loadAttempts(ctx context.Context) ([]schema.RevivalAttempt, error) {
	events, err := s.ledger.LoadEvents(ctx)
	if err != nil {
		return nil, err
	}
	return schema.FoldLedgerEvents(events), nil
}

// recentAttempts returns the most recent attempts by creation time,
// newest first. The input slice is left untouched.
func recentAttempts(attempts []schema.RevivalAttempt, limit int) []schema.RevivalAttempt {
	sorted := make([]schema.RevivalAttempt, len(attempts))
	copy(sorted, attempts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[j].CreatedAt.Before(sorted[i].CreatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
