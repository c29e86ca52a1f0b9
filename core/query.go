package core

import (
	"sort"

	"github.com/promptgraveyard/graveyard/schema"
)

// QueryRecords filters, sorts and paginates one snapshot of records.
// The filter is a conjunction: a record must satisfy every supplied
// predicate to appear in the result. Sorting is stable, so records that
// compare equal keep their snapshot order. Pages are 1-based; a page past
// the end yields an empty item list with the filtered total intact.
func QueryRecords(records []schema.EvaluationRecord, filter schema.QueryFilter, opts schema.QueryOptions) schema.RecordPage {
	// 1. Filter
	filtered := make([]schema.EvaluationRecord, 0, len(records))
	for _, r := range records {
		if matchesFilter(r, filter) {
			filtered = append(filtered, r)
		}
	}

	// 2. Sort
	sortRecords(filtered, opts.SortBy, opts.SortOrder)

	// 3. Paginate
	page, limit := normalizePaging(opts)
	total := len(filtered)
	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	items := []schema.EvaluationRecord{}
	if start := (page - 1) * limit; start < total {
		items = filtered[start:min(start+limit, total)]
	}

	return schema.RecordPage{
		Items:      items,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}
}

// matchesFilter reports whether a record satisfies every supplied predicate.
// Score and timestamp bounds are inclusive on both ends.
func matchesFilter(r schema.EvaluationRecord, f schema.QueryFilter) bool {
	if f.IsZombie != nil && r.ZombieStatus.IsZombie != *f.IsZombie {
		return false
	}
	if f.Severity != "" && r.ZombieStatus.Severity != f.Severity {
		return false
	}
	if f.MinScore != nil && r.ZombieStatus.OverallScore < *f.MinScore {
		return false
	}
	if f.MaxScore != nil && r.ZombieStatus.OverallScore > *f.MaxScore {
		return false
	}
	if f.DateFrom != nil && r.Timestamp.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && r.Timestamp.After(*f.DateTo) {
		return false
	}
	if f.Provider != "" {
		if _, ok := r.ProviderResponses[f.Provider]; !ok {
			return false
		}
	}
	return true
}

// sortRecords orders records in place by the requested field. Descending
// order swaps the comparator arguments, which keeps the sort stable in
// both directions.
func sortRecords(records []schema.EvaluationRecord, field schema.SortField, order schema.SortOrder) {
	var less func(a, b schema.EvaluationRecord) bool
	switch field {
	case schema.SortByScore:
		less = func(a, b schema.EvaluationRecord) bool {
			return a.ZombieStatus.OverallScore < b.ZombieStatus.OverallScore
		}
	case schema.SortByCost:
		less = func(a, b schema.EvaluationRecord) bool {
			return a.TotalCost() < b.TotalCost()
		}
	case schema.SortByLatency:
		less = func(a, b schema.EvaluationRecord) bool {
			return a.MeanLatency() < b.MeanLatency()
		}
	default: // SortByTimestamp
		less = func(a, b schema.EvaluationRecord) bool {
			return a.Timestamp.Before(b.Timestamp)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if order == schema.SortAsc {
			return less(records[i], records[j])
		}
		return less(records[j], records[i])
	})
}

// normalizePaging applies paging defaults and clamps the limit.
func normalizePaging(opts schema.QueryOptions) (page, limit int) {
	page = opts.Page
	if page < 1 {
		page = schema.DefaultPage
	}
	limit = opts.Limit
	if limit < 1 {
		limit = schema.DefaultLimit
	}
	if limit > schema.MaxLimit {
		limit = schema.MaxLimit
	}
	return page, limit
}
