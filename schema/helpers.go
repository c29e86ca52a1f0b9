package schema

// SeverityForScore maps an overall score to its severity tier.
// The thresholds are fixed: alive at or above 0.6, then shambling,
// rotting and skeletal in descending half-open bands.
func SeverityForScore(score float64) Severity {
	switch {
	case score >= AliveThreshold:
		return SeverityAlive
	case score >= ShamblingThreshold:
		return SeverityShambling
	case score >= RottingThreshold:
		return SeverityRotting
	default:
		return SeveritySkeletal
	}
}

// IsZombieScore reports whether a score falls below the alive threshold.
func IsZombieScore(score float64) bool {
	return SeverityForScore(score) != SeverityAlive
}

// ThemeForSeverity returns the visual theme name shown for a severity.
func ThemeForSeverity(s Severity) string {
	switch s {
	case SeverityAlive:
		return "pristine"
	case SeverityShambling:
		return "freshly_risen"
	case SeverityRotting:
		return "decaying"
	default:
		return "heavily_decayed"
	}
}

// PriorityForSeverity returns how urgently a record of this severity
// needs revival.
func PriorityForSeverity(s Severity) RevivalPriority {
	switch s {
	case SeverityAlive:
		return PriorityNone
	case SeverityShambling:
		return PriorityLow
	case SeverityRotting:
		return PriorityMedium
	default:
		return PriorityHigh
	}
}

// SeverityRank orders severities for display, healthiest first.
func SeverityRank(s Severity) int {
	switch s {
	case SeverityAlive:
		return 0
	case SeverityShambling:
		return 1
	case SeverityRotting:
		return 2
	default:
		return 3
	}
}

// StatusForScore builds a complete ZombieStatus for a score, with the
// theme and priority derived from the severity tier. Reason and failed
// metrics are left for the classifier to fill in.
func StatusForScore(score float64) ZombieStatus {
	severity := SeverityForScore(score)
	return ZombieStatus{
		IsZombie:        severity != SeverityAlive,
		OverallScore:    score,
		Severity:        severity,
		VisualTheme:     ThemeForSeverity(severity),
		RevivalPriority: PriorityForSeverity(severity),
	}
}
