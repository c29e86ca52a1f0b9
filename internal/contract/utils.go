package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/promptgraveyard/graveyard/schema"
)

// Severity label constants.
const (
	SkeletalValue  = "Skeletal"  // Skeletal severity
	RottingValue   = "Rotting"   // Rotting severity
	ShamblingValue = "Shambling" // Shambling severity
	AliveValue     = "Alive"     // Alive severity
)

// Attempt status label constants.
const (
	SuccessValue = "Success" // Resolved attempt that met the confidence bar
	FailedValue  = "Failed"  // Resolved attempt that fell short
	PendingValue = "Pending" // Attempt awaiting resolution
)

// Color variables for console output.
var (
	SkeletalColor  = color.New(color.FgRed, color.Bold)     // skeletalColor represents standard danger.
	RottingColor   = color.New(color.FgMagenta, color.Bold) // rottingColor represents strong, distinct warning.
	ShamblingColor = color.New(color.FgYellow)              // shamblingColor represents standard caution, not bold.
	AliveColor     = color.New(color.FgGreen)               // aliveColor represents healthy / no-action signal.
)

// GetPlainLabel returns a plain text label for the record's severity.
// This is the core logic used for CSV, JSON, and table printing.
func GetPlainLabel(severity schema.Severity) string {
	switch severity {
	case schema.SeveritySkeletal:
		return SkeletalValue
	case schema.SeverityRotting:
		return RottingValue
	case schema.SeverityShambling:
		return ShamblingValue
	default:
		return AliveValue
	}
}

// GetColorLabel returns a colored text label for console output (table).
// It uses GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(severity schema.Severity) string {
	text := GetPlainLabel(severity)

	switch text {
	case SkeletalValue:
		return SkeletalColor.Sprint(text)
	case RottingValue:
		return RottingColor.Sprint(text)
	case ShamblingValue:
		return ShamblingColor.Sprint(text)
	default: // "Alive"
		return AliveColor.Sprint(text)
	}
}

// GetPlainStatusLabel returns a plain text label for a revival attempt status.
func GetPlainStatusLabel(status schema.AttemptStatus) string {
	switch status {
	case schema.AttemptSuccess:
		return SuccessValue
	case schema.AttemptFailed:
		return FailedValue
	default:
		return PendingValue
	}
}

// GetColorStatusLabel returns a colored text label for a revival attempt status.
func GetColorStatusLabel(status schema.AttemptStatus) string {
	text := GetPlainStatusLabel(status)

	switch text {
	case SuccessValue:
		return AliveColor.Sprint(text)
	case FailedValue:
		return SkeletalColor.Sprint(text)
	default: // "Pending"
		return ShamblingColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path and format type. It falls back to os.Stdout on error.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetLedgerDBFilePath returns the path to the SQLite DB file for ledger storage.
func GetLedgerDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".graveyard_ledger.db"
	}
	return filepath.Join(homeDir, ".graveyard_ledger.db")
}

// TruncateText truncates prompt text to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 to ensure there's space for both the "..." suffix and at
// least one character of content. Without this check, small maxWidth values could
// cause slice bounds errors in the truncation calculation.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
