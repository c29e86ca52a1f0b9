package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, time.February, 9, 15, 30, 0, 0, time.UTC)

// TestParseRelativeTime covers various valid and invalid cases.
func TestParseRelativeTime(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    time.Time
		expectError bool
	}{
		// Valid tests: Ensure units and casing are parsed correctly relative to fixedNow
		{
			name:     "valid plural days",
			input:    "7 days ago",
			expected: fixedNow.Add(time.Duration(-7) * 24 * time.Hour),
		},
		{
			name:     "valid singular hour (capitalized)",
			input:    "1 Hour Ago",
			expected: fixedNow.Add(-time.Hour),
		},
		{
			name:     "valid plural months (mixed case)",
			input:    "2 MoNtHs AgO",
			expected: fixedNow.AddDate(0, -2, 0),
		},
		{
			name:     "valid week with padding",
			input:    "  1 week ago  ",
			expected: fixedNow.Add(time.Duration(-1) * 7 * 24 * time.Hour),
		},
		{
			name:     "valid year",
			input:    "1 year ago",
			expected: fixedNow.AddDate(-1, 0, 0),
		},
		// Invalid tests: Ensure only supported formats/units are accepted
		{
			name:        "invalid missing ago",
			input:       "7 days",
			expectError: true,
		},
		{
			name:        "invalid bad unit (decades)",
			input:       "4 decades ago",
			expectError: true,
		},
		{
			name:        "invalid non-numeric value",
			input:       "one year ago",
			expectError: true,
		},
		{
			name:        "invalid empty string",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseRelativeTime(tt.input, fixedNow)

			if tt.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestParseLookbackDuration covers both standard duration syntax and the
// human-readable fallback, including the month/year approximations.
func TestParseLookbackDuration(t *testing.T) {
	const day = 24 * time.Hour

	tests := []struct {
		name      string
		input     string
		want      time.Duration
		expectErr bool
	}{
		// --- Standard Duration Syntax ---
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"hours", "2h", 2 * time.Hour, false},
		{"compound", "1h30m", 90 * time.Minute, false},

		// --- Human-Readable Fallback ---
		{"1 minute", "1 minute", time.Minute, false},
		{"3 hours", "3 hours", 3 * time.Hour, false},
		{"1 day", "1 day", day, false},
		{"2 weeks", "2 weeks", 2 * 7 * day, false},
		{"1 month approx", "1 month", 30 * day, false},
		{"2 years approx", "2 years", 2 * 365 * day, false},

		// --- Case/Spacing Tolerance ---
		{"mixed case", "3 MoNtHs", 3 * 30 * day, false},
		{"extra space", " 1  day ", day, false},

		// --- Error/Invalid ---
		{"missing value", "days", 0, true},
		{"missing unit", "3", 0, true},
		{"invalid unit", "3 decades", 0, true},
		{"zero quantity", "0 days", 0, true},
		{"zero duration", "0s", 0, true},
		{"non-integer quantity", "1.5 days", 0, true},
		{"empty string", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLookbackDuration(tt.input)

			if tt.expectErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
