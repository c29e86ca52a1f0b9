package core

import (
	"sort"
	"time"

	"github.com/promptgraveyard/graveyard/schema"
)

// recentRecordLimit caps the recent-record and recent-attempt listings.
const recentRecordLimit = 10

// BuildGraveyardStats summarizes the whole snapshot in a single pass.
// The aggregate latency is a two-level average: each record's own mean
// latency is averaged across the records that reported any latency at all.
// Time-windowed counts are measured against the supplied now. An empty
// snapshot yields the zero structure rather than dividing by zero.
func BuildGraveyardStats(records []schema.EvaluationRecord, now time.Time) schema.GraveyardStats {
	stats := schema.GraveyardStats{
		SeverityBreakdown: make(map[schema.Severity]int, len(schema.ZombieSeverities)),
		RecentRecords:     []schema.RecordSummary{},
		ProviderStats:     make(map[string]schema.ProviderStats),
	}
	for _, severity := range schema.ZombieSeverities {
		stats.SeverityBreakdown[severity] = 0
	}

	stats.TotalPrompts = len(records)
	if len(records) == 0 {
		return stats
	}

	type providerAccum struct {
		calls        int
		successes    int
		costSum      float64
		costCount    int
		latencySum   float64
		latencyCount int
	}
	providers := make(map[string]*providerAccum)

	var scoreSum float64
	var latencyMeanSum float64
	var latencyMeanCount int
	var oldest, newest time.Time
	dayAgo := now.Add(-24 * time.Hour)
	weekAgo := now.Add(-7 * 24 * time.Hour)

	for i, r := range records {
		// 1. Zombie and severity tallies
		if r.ZombieStatus.IsZombie {
			stats.ZombieCount++
			stats.SeverityBreakdown[r.ZombieStatus.Severity]++
		}
		scoreSum += r.ZombieStatus.OverallScore
		stats.TotalCostUSD += r.TotalCost()

		// 2. Per-provider tallies, plus this record's own latency mean
		var recordLatencySum float64
		var recordLatencyCount int
		for name, resp := range r.ProviderResponses {
			acc := providers[name]
			if acc == nil {
				acc = &providerAccum{}
				providers[name] = acc
			}
			acc.calls++
			if resp.Success() {
				acc.successes++
				if resp.CostUSD != nil {
					acc.costSum += *resp.CostUSD
					acc.costCount++
				}
				if resp.LatencyMs != nil {
					acc.latencySum += *resp.LatencyMs
					acc.latencyCount++
				}
			}
			if resp.LatencyMs != nil {
				recordLatencySum += *resp.LatencyMs
				recordLatencyCount++
			}
		}
		if recordLatencyCount > 0 {
			latencyMeanSum += recordLatencySum / float64(recordLatencyCount)
			latencyMeanCount++
		}

		// 3. Timestamp extremes and windowed counts
		ts := r.Timestamp
		if i == 0 || ts.Before(oldest) {
			oldest = ts
		}
		if i == 0 || ts.After(newest) {
			newest = ts
		}
		if !ts.Before(dayAgo) {
			stats.PromptsLast24h++
		}
		if !ts.Before(weekAgo) {
			stats.PromptsLast7d++
		}
	}

	// 4. Finalize rates and averages
	total := float64(len(records))
	stats.ZombieRate = float64(stats.ZombieCount) / total
	stats.AvgScore = scoreSum / total
	if latencyMeanCount > 0 {
		stats.AvgLatencyMs = latencyMeanSum / float64(latencyMeanCount)
	}
	stats.OldestTimestamp = &oldest
	stats.NewestTimestamp = &newest

	for name, acc := range providers {
		ps := schema.ProviderStats{
			Calls:        acc.calls,
			SuccessCount: acc.successes,
			ErrorCount:   acc.calls - acc.successes,
			SuccessRate:  float64(acc.successes) / float64(acc.calls),
		}
		if acc.costCount > 0 {
			ps.AvgCostUSD = acc.costSum / float64(acc.costCount)
		}
		if acc.latencyCount > 0 {
			ps.AvgLatencyMs = acc.latencySum / float64(acc.latencyCount)
		}
		stats.ProviderStats[name] = ps
	}

	stats.RecentRecords = recentSummaries(records, recentRecordLimit)
	return stats
}

// recentSummaries projects the most recent records by timestamp, newest
// first. The input snapshot is left untouched.
func recentSummaries(records []schema.EvaluationRecord, limit int) []schema.RecordSummary {
	sorted := make([]schema.EvaluationRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[j].Timestamp.Before(sorted[i].Timestamp)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}

	summaries := make([]schema.RecordSummary, 0, len(sorted))
	for _, r := range sorted {
		summaries = append(summaries, schema.RecordSummary{
			ID:           r.ID,
			PromptText:   r.PromptText,
			Severity:     r.ZombieStatus.Severity,
			OverallScore: r.ZombieStatus.OverallScore,
			Timestamp:    r.Timestamp,
		})
	}
	return summaries
}
