package outwriter

import (
	"os"

	"golang.org/x/term"

	"github.com/promptgraveyard/graveyard/internal/contract"
)

// GetMaxPromptWidth calculates the maximum width for prompt text in table
// output based on terminal width and the fixed columns around it.
func GetMaxPromptWidth(cfg *contract.Config) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for fixed columns: rank, record ID, score, severity,
	// cost and timestamp, plus table borders, separators and padding
	baseWidth := 75

	// Calculate available space for prompt text
	available := termWidth - baseWidth
	if available < 15 {
		// Minimum reasonable prompt width
		return 15
	}
	if available > 60 {
		// Maximum prompt width to keep rows on one line
		return 60
	}
	return available
}
