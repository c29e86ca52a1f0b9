package schema

import (
	"maps"
	"time"
)

// RevivalAttempt is one recorded application of a suggestion to a record.
// The suggestion fields are copied at attempt time so later changes to the
// source record cannot rewrite history.
type RevivalAttempt struct {
	AttemptID            string             `json:"attempt_id"`
	RecordID             string             `json:"record_id"`
	SuggestionIndex      int                `json:"suggestion_index"`
	OriginalPrompt       string             `json:"original_prompt"`
	ImprovedPrompt       string             `json:"improved_prompt"`
	Strategy             string             `json:"strategy"`
	ConfidenceScore      float64            `json:"confidence_score"`
	ExpectedImprovements map[string]float64 `json:"expected_improvements,omitempty"`
	UserFeedback         string             `json:"user_feedback,omitempty"`
	Status               AttemptStatus      `json:"status"`
	CreatedAt            time.Time          `json:"created_at"`
	ResolvedAt           *time.Time         `json:"resolved_at,omitempty"`
}

// Clone returns a deep copy of the attempt.
func (a RevivalAttempt) Clone() RevivalAttempt {
	clone := a
	if a.ExpectedImprovements != nil {
		clone.ExpectedImprovements = make(map[string]float64, len(a.ExpectedImprovements))
		maps.Copy(clone.ExpectedImprovements, a.ExpectedImprovements)
	}
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		clone.ResolvedAt = &t
	}
	return clone
}

// RevivalResult is the outcome of one AttemptRevival call. AlreadyAlive
// results carry no attempt because none was recorded.
type RevivalResult struct {
	AttemptID            string             `json:"attempt_id,omitempty"`
	RecordID             string             `json:"record_id"`
	AlreadyAlive         bool               `json:"already_alive,omitempty"`
	Success              bool               `json:"success"`
	Status               AttemptStatus      `json:"status,omitempty"`
	Strategy             string             `json:"strategy,omitempty"`
	Technique            string             `json:"technique,omitempty"`
	ImprovedPrompt       string             `json:"improved_prompt,omitempty"`
	ConfidenceScore      float64            `json:"confidence_score,omitempty"`
	ExpectedImprovements map[string]float64 `json:"expected_improvements,omitempty"`
	Message              string             `json:"message"`
}

// RevivalStats summarizes the whole attempt ledger.
type RevivalStats struct {
	TotalAttempts          int              `json:"total_attempts"`
	SuccessCount           int              `json:"success_count"`
	SuccessRate            float64          `json:"success_rate"`
	MostSuccessfulStrategy string           `json:"most_successful_strategy,omitempty"`
	RecentAttempts         []RevivalAttempt `json:"recent_attempts"`
}

// LedgerEvent is one append-only row in the revival ledger. A created event
// carries the full attempt payload; a resolved event carries only the
// terminal status. Current attempt state is reconstructed by folding events
// in append order.
type LedgerEvent struct {
	EventID   string          `json:"event_id"`
	Kind      LedgerEventKind `json:"kind"`
	AttemptID string          `json:"attempt_id"`
	Attempt   *RevivalAttempt `json:"attempt,omitempty"` // Set for created events
	Status    AttemptStatus   `json:"status,omitempty"`  // Set for resolved events
	Time      time.Time       `json:"time"`
}

// FoldLedgerEvents replays events in append order into the attempt history.
// A resolved event for an unknown attempt is skipped; a second resolution of
// the same attempt is ignored because the status is terminal once set.
func FoldLedgerEvents(events []LedgerEvent) []RevivalAttempt {
	attempts := make([]RevivalAttempt, 0, len(events))
	index := make(map[string]int, len(events))
	for _, ev := range events {
		switch ev.Kind {
		case EventAttemptCreated:
			if ev.Attempt == nil {
				continue
			}
			if _, exists := index[ev.AttemptID]; exists {
				continue
			}
			attempt := ev.Attempt.Clone()
			index[ev.AttemptID] = len(attempts)
			attempts = append(attempts, attempt)
		case EventAttemptResolved:
			i, exists := index[ev.AttemptID]
			if !exists || attempts[i].Status != AttemptPending {
				continue
			}
			attempts[i].Status = ev.Status
			t := ev.Time
			attempts[i].ResolvedAt = &t
		}
	}
	return attempts
}

// LedgerStatus represents the status of the revival ledger store.
type LedgerStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEvents     int       `json:"total_events"`
	TotalAttempts   int       `json:"total_attempts"`
	LastEventTime   time.Time `json:"last_event_time"`
	OldestEventTime time.Time `json:"oldest_event_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}
