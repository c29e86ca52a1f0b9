package schema

import "time"

// QueryFilter is a conjunction of optional record predicates. Nil or
// zero-valued fields are no-ops; a record must satisfy every supplied
// predicate to match.
type QueryFilter struct {
	IsZombie *bool      // Zombie-only (true) or alive-only (false)
	Severity Severity   // Exact severity match
	MinScore *float64   // Inclusive lower score bound
	MaxScore *float64   // Inclusive upper score bound
	DateFrom *time.Time // Inclusive lower timestamp bound
	DateTo   *time.Time // Inclusive upper timestamp bound
	Provider string     // Record has a response from this provider key
}

// QueryOptions controls sorting and pagination of query results.
type QueryOptions struct {
	Page      int       // 1-based page number
	Limit     int       // Page size, clamped to [1, MaxLimit]
	SortBy    SortField // Field to order by
	SortOrder SortOrder // asc or desc
}

// RecordPage is one page of query results with the pre-pagination total.
type RecordPage struct {
	Items      []EvaluationRecord `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
}
