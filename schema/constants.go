package schema

import "time"

// Custom string types for type safety.
type (
	// Severity represents how decayed a prompt record is.
	Severity string

	// MetricCategory represents the quality band of a metric score.
	MetricCategory string

	// RevivalPriority represents how urgently a record needs revival.
	RevivalPriority string

	// AttemptStatus represents the lifecycle state of a revival attempt.
	AttemptStatus string

	// SortField represents the record field used to order query results.
	SortField string

	// SortOrder represents the direction used to order query results.
	SortOrder string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the revival ledger.
	DatabaseBackend string

	// LedgerEventKind represents the kind of an append-only ledger event.
	LedgerEventKind string
)

// All severities supported, healthiest first.
const (
	SeverityAlive     Severity = "alive"
	SeverityShambling Severity = "shambling"
	SeverityRotting   Severity = "rotting"
	SeveritySkeletal  Severity = "skeletal"
)

// Severity score thresholds. A record is alive at or above AliveThreshold;
// the remaining bands are half-open below it.
const (
	AliveThreshold     = 0.6
	ShamblingThreshold = 0.5
	RottingThreshold   = 0.3
)

// All metric categories supported, best first.
const (
	CategoryExcellent  MetricCategory = "excellent"
	CategoryGood       MetricCategory = "good"
	CategoryAcceptable MetricCategory = "acceptable"
	CategoryPoor       MetricCategory = "poor"
	CategoryZombie     MetricCategory = "zombie"
)

// All revival priorities supported.
const (
	PriorityNone   RevivalPriority = "none"
	PriorityLow    RevivalPriority = "low"
	PriorityMedium RevivalPriority = "medium"
	PriorityHigh   RevivalPriority = "high"
)

// All revival attempt statuses supported.
const (
	AttemptPending AttemptStatus = "pending"
	AttemptSuccess AttemptStatus = "success"
	AttemptFailed  AttemptStatus = "failed"
)

// All sort fields supported.
const (
	SortByTimestamp SortField = "timestamp" // default
	SortByScore     SortField = "score"
	SortByCost      SortField = "cost"
	SortByLatency   SortField = "latency"
)

// All sort orders supported.
const (
	SortDesc SortOrder = "desc" // default
	SortAsc  SortOrder = "asc"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All ledger backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All ledger event kinds supported.
const (
	EventAttemptCreated  LedgerEventKind = "attempt_created"
	EventAttemptResolved LedgerEventKind = "attempt_resolved"
)

// Metric names produced by the evaluation pipeline.
const (
	MetricSemanticAccuracy = "semantic_accuracy"
	MetricCoherence        = "coherence"
	MetricCreativity       = "creativity"
	MetricLatency          = "latency_ms"
	MetricCost             = "cost_usd"
)

// Query paging defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// DefaultStaleAfter is the default staleness window for the record store.
const DefaultStaleAfter = 30 * time.Second

// ValidSeverities lists all valid severities.
var ValidSeverities = map[Severity]struct{}{
	SeverityAlive:     {},
	SeverityShambling: {},
	SeverityRotting:   {},
	SeveritySkeletal:  {},
}

// ValidSortFields lists all valid sort fields.
var ValidSortFields = map[SortField]struct{}{
	SortByTimestamp: {},
	SortByScore:     {},
	SortByCost:      {},
	SortByLatency:   {},
}

// ValidSortOrders lists all valid sort orders.
var ValidSortOrders = map[SortOrder]struct{}{
	SortDesc: {},
	SortAsc:  {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidLedgerBackends lists all valid ledger backends.
var ValidLedgerBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllSeverities returns severities in display order, healthiest first.
var AllSeverities = []Severity{SeverityAlive, SeverityShambling, SeverityRotting, SeveritySkeletal}

// ZombieSeverities returns the non-alive severities in display order.
var ZombieSeverities = []Severity{SeverityShambling, SeverityRotting, SeveritySkeletal}

// GetDefaultMetricWeights returns the default weight for each metric used to
// combine normalized scores into the overall score.
func GetDefaultMetricWeights() map[string]float64 {
	return map[string]float64{
		MetricSemanticAccuracy: 0.35,
		MetricLatency:          0.25,
		MetricCoherence:        0.15,
		MetricCost:             0.15,
		MetricCreativity:       0.10,
	}
}
