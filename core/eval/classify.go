package eval

import (
	"fmt"
	"strings"

	"github.com/promptgraveyard/graveyard/schema"
)

// criticalFloors are per-metric minimum values. A metric under its floor is
// reported as failed, ordered as listed.
var criticalFloors = []struct {
	metric string
	floor  float64
}{
	{schema.MetricSemanticAccuracy, 0.4},
	{schema.MetricCoherence, 0.3},
}

// classify derives the zombie status from the overall score and flags any
// critical metrics below their floors. Severity follows the score alone;
// floor failures only enrich the report.
func classify(metrics map[string]schema.MetricScore, overall float64) schema.ZombieStatus {
	status := schema.StatusForScore(overall)

	for _, critical := range criticalFloors {
		if metric, ok := metrics[critical.metric]; ok && metric.Value < critical.floor {
			status.FailedMetrics = append(status.FailedMetrics, critical.metric)
		}
	}

	var reasons []string
	if status.IsZombie {
		reasons = append(reasons, fmt.Sprintf("Overall performance score (%.2f) below threshold (%g)", overall, schema.AliveThreshold))
	}
	if len(status.FailedMetrics) > 0 {
		reasons = append(reasons, "Critical metrics failed: "+strings.Join(status.FailedMetrics, ", "))
	}
	if len(reasons) == 0 {
		status.Reason = "Performance within acceptable range"
	} else {
		status.Reason = strings.Join(reasons, "; ")
	}

	return status
}
