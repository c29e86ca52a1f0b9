package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/promptgraveyard/graveyard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var queryEpoch = time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool            { return &b }
func floatPtr(f float64) *float64     { return &f }
func timePtr(ts time.Time) *time.Time { return &ts }

// okResponse builds a successful provider response with the given cost
// and latency.
func okResponse(latencyMs, costUSD float64) schema.ProviderResponse {
	return schema.ProviderResponse{
		Text:      "Crimson leaves drift down",
		LatencyMs: &latencyMs,
		CostUSD:   &costUSD,
		Timestamp: queryEpoch,
	}
}

// makeQueryRecord builds a record with just the fields the query engine
// reads. Severity and zombie flags derive from the score.
func makeQueryRecord(id string, score float64, age time.Duration, responses map[string]schema.ProviderResponse) schema.EvaluationRecord {
	return schema.EvaluationRecord{
		ID:                id,
		PromptText:        "prompt " + id,
		Timestamp:         queryEpoch.Add(age),
		ProviderResponses: responses,
		ZombieStatus:      schema.StatusForScore(score),
	}
}

// querySnapshot is the shared fixture: four records spanning every
// severity band, two providers and a spread of costs and latencies.
func querySnapshot() []schema.EvaluationRecord {
	return []schema.EvaluationRecord{
		makeQueryRecord("rec-a", 0.84, 0, map[string]schema.ProviderResponse{
			"openai_gpt35": okResponse(1800, 0.004),
		}),
		makeQueryRecord("rec-b", 0.57, time.Hour, map[string]schema.ProviderResponse{
			"openai_gpt35": okResponse(2200, 0.006),
			"groq_llama3":  okResponse(900, 0.001),
		}),
		makeQueryRecord("rec-c", 0.42, 2*time.Hour, map[string]schema.ProviderResponse{
			"groq_llama3": okResponse(1100, 0.002),
		}),
		makeQueryRecord("rec-d", 0.21, 3*time.Hour, nil),
	}
}

// pageIDs projects a result page to record IDs for compact assertions.
func pageIDs(page schema.RecordPage) []string {
	ids := make([]string, 0, len(page.Items))
	for _, r := range page.Items {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestQueryRecordsFilters(t *testing.T) {
	records := querySnapshot()
	opts := schema.QueryOptions{SortBy: schema.SortByTimestamp, SortOrder: schema.SortAsc}

	tests := []struct {
		name    string
		filter  schema.QueryFilter
		wantIDs []string
	}{
		{"no filter", schema.QueryFilter{}, []string{"rec-a", "rec-b", "rec-c", "rec-d"}},
		{"zombies only", schema.QueryFilter{IsZombie: boolPtr(true)}, []string{"rec-b", "rec-c", "rec-d"}},
		{"alive only", schema.QueryFilter{IsZombie: boolPtr(false)}, []string{"rec-a"}},
		{"severity", schema.QueryFilter{Severity: schema.SeverityRotting}, []string{"rec-c"}},
		{"min score is inclusive", schema.QueryFilter{MinScore: floatPtr(0.57)}, []string{"rec-a", "rec-b"}},
		{"max score is inclusive", schema.QueryFilter{MaxScore: floatPtr(0.42)}, []string{"rec-c", "rec-d"}},
		{"score band", schema.QueryFilter{MinScore: floatPtr(0.3), MaxScore: floatPtr(0.6)}, []string{"rec-b", "rec-c"}},
		{"date from is inclusive", schema.QueryFilter{DateFrom: timePtr(queryEpoch.Add(2 * time.Hour))}, []string{"rec-c", "rec-d"}},
		{"date to is inclusive", schema.QueryFilter{DateTo: timePtr(queryEpoch.Add(time.Hour))}, []string{"rec-a", "rec-b"}},
		{"provider presence", schema.QueryFilter{Provider: "groq_llama3"}, []string{"rec-b", "rec-c"}},
		{"unknown provider", schema.QueryFilter{Provider: "sonnet"}, []string{}},
		{"combined predicates", schema.QueryFilter{
			IsZombie: boolPtr(true),
			MinScore: floatPtr(0.4),
			Provider: "openai_gpt35",
		}, []string{"rec-b"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page := QueryRecords(records, tc.filter, opts)
			assert.Equal(t, tc.wantIDs, pageIDs(page))
			assert.Equal(t, len(tc.wantIDs), page.Total)
		})
	}
}

func TestQueryRecordsSorting(t *testing.T) {
	records := querySnapshot()

	t.Run("score ascending", func(t *testing.T) {
		page := QueryRecords(records, schema.QueryFilter{}, schema.QueryOptions{SortBy: schema.SortByScore, SortOrder: schema.SortAsc})
		assert.Equal(t, []string{"rec-d", "rec-c", "rec-b", "rec-a"}, pageIDs(page))
	})

	t.Run("score descending", func(t *testing.T) {
		page := QueryRecords(records, schema.QueryFilter{}, schema.QueryOptions{SortBy: schema.SortByScore, SortOrder: schema.SortDesc})
		assert.Equal(t, []string{"rec-a", "rec-b", "rec-c", "rec-d"}, pageIDs(page))
	})

	t.Run("timestamp descending", func(t *testing.T) {
		page := QueryRecords(records, schema.QueryFilter{}, schema.QueryOptions{SortBy: schema.SortByTimestamp, SortOrder: schema.SortDesc})
		assert.Equal(t, []string{"rec-d", "rec-c", "rec-b", "rec-a"}, pageIDs(page))
	})

	t.Run("cost sums every response", func(t *testing.T) {
		// rec-b carries two responses totalling 0.007, the most of any record.
		page := QueryRecords(records, schema.QueryFilter{}, schema.QueryOptions{SortBy: schema.SortByCost, SortOrder: schema.SortDesc})
		assert.Equal(t, "rec-b", pageIDs(page)[0])
		assert.Equal(t, "rec-d", pageIDs(page)[3])
	})

	t.Run("latency averages per record", func(t *testing.T) {
		// rec-b averages (2200+900)/2 = 1550, below rec-a's 1800.
		// rec-d reported nothing and counts as zero.
		page := QueryRecords(records, schema.QueryFilter{}, schema.QueryOptions{SortBy: schema.SortByLatency, SortOrder: schema.SortAsc})
		assert.Equal(t, []string{"rec-d", "rec-c", "rec-b", "rec-a"}, pageIDs(page))
	})

	t.Run("ties keep snapshot order", func(t *testing.T) {
		tied := []schema.EvaluationRecord{
			makeQueryRecord("first", 0.5, 0, nil),
			makeQueryRecord("second", 0.5, time.Hour, nil),
			makeQueryRecord("third", 0.5, 2*time.Hour, nil),
		}
		asc := QueryRecords(tied, schema.QueryFilter{}, schema.QueryOptions{SortBy: schema.SortByScore, SortOrder: schema.SortAsc})
		assert.Equal(t, []string{"first", "second", "third"}, pageIDs(asc))

		desc := QueryRecords(tied, schema.QueryFilter{}, schema.QueryOptions{SortBy: schema.SortByScore, SortOrder: schema.SortDesc})
		assert.Equal(t, []string{"first", "second", "third"}, pageIDs(desc))
	})
}

func TestQueryRecordsPagination(t *testing.T) {
	records := make([]schema.EvaluationRecord, 0, 5)
	for i := range 5 {
		records = append(records, makeQueryRecord(fmt.Sprintf("rec-%d", i), 0.5, time.Duration(i)*time.Hour, nil))
	}
	opts := func(page, limit int) schema.QueryOptions {
		return schema.QueryOptions{Page: page, Limit: limit, SortBy: schema.SortByTimestamp, SortOrder: schema.SortAsc}
	}

	t.Run("pages partition the result", func(t *testing.T) {
		var seen []string
		for page := 1; page <= 3; page++ {
			result := QueryRecords(records, schema.QueryFilter{}, opts(page, 2))
			assert.Equal(t, 5, result.Total)
			assert.Equal(t, 3, result.TotalPages)
			assert.Equal(t, page, result.Page)
			seen = append(seen, pageIDs(result)...)
		}
		assert.Equal(t, []string{"rec-0", "rec-1", "rec-2", "rec-3", "rec-4"}, seen)
	})

	t.Run("page past the end is empty with total intact", func(t *testing.T) {
		result := QueryRecords(records, schema.QueryFilter{}, opts(4, 2))
		assert.Empty(t, result.Items)
		assert.Equal(t, 5, result.Total)
		assert.Equal(t, 3, result.TotalPages)
		assert.Equal(t, 4, result.Page)
	})

	t.Run("limit defaults and clamps", func(t *testing.T) {
		result := QueryRecords(records, schema.QueryFilter{}, opts(1, 0))
		assert.Len(t, result.Items, 5) // default limit of 20 covers everything
		assert.Equal(t, 1, result.TotalPages)

		result = QueryRecords(records, schema.QueryFilter{}, opts(1, 1000))
		assert.Len(t, result.Items, 5) // clamped to 100, still covers everything
		assert.Equal(t, 1, result.TotalPages)
	})

	t.Run("page zero becomes page one", func(t *testing.T) {
		result := QueryRecords(records, schema.QueryFilter{}, opts(0, 2))
		assert.Equal(t, 1, result.Page)
		assert.Equal(t, []string{"rec-0", "rec-1"}, pageIDs(result))
	})

	t.Run("last partial page", func(t *testing.T) {
		result := QueryRecords(records, schema.QueryFilter{}, opts(3, 2))
		assert.Equal(t, []string{"rec-4"}, pageIDs(result))
	})
}

func TestQueryRecordsTotalMatchesFilterCount(t *testing.T) {
	records := querySnapshot()
	filter := schema.QueryFilter{IsZombie: boolPtr(true)}

	// Pagination must not change the reported total.
	for page := 1; page <= 4; page++ {
		result := QueryRecords(records, filter, schema.QueryOptions{Page: page, Limit: 1})
		require.Equal(t, 3, result.Total, "page %d", page)
		require.Equal(t, 3, result.TotalPages, "page %d", page)
	}
}

func TestQueryRecordsEmptySnapshot(t *testing.T) {
	result := QueryRecords(nil, schema.QueryFilter{}, schema.QueryOptions{})
	assert.NotNil(t, result.Items)
	assert.Empty(t, result.Items)
	assert.Equal(t, 0, result.Total)
	assert.Equal(t, 0, result.TotalPages)
	assert.Equal(t, 1, result.Page)
}
