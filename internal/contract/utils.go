package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/swcache/schema"
)

// Color variables for console output.
var (
	ReadyColor   = color.New(color.FgGreen, color.Bold) // ReadyColor marks a usable cache.
	PendingColor = color.New(color.FgYellow)            // PendingColor marks in-flight work.
	FailedColor  = color.New(color.FgRed, color.Bold)   // FailedColor marks a failed or empty state.
	InfoColor    = color.New(color.FgCyan)              // InfoColor marks neutral details.
)

// GetStateLabel returns the display label for a manager state, colored when asked.
func GetStateLabel(state schema.ManagerState, useColors bool) string {
	text := string(state)
	if !useColors {
		return text
	}
	switch state {
	case schema.StateReady:
		return ReadyColor.Sprint(text)
	case schema.StateActivating:
		return PendingColor.Sprint(text)
	default:
		return FailedColor.Sprint(text)
	}
}

// GetOutcomeLabel returns the display label for an activation outcome, colored when asked.
func GetOutcomeLabel(outcome schema.ActivationOutcome, useColors bool) string {
	text := string(outcome)
	if !useColors {
		return text
	}
	switch outcome {
	case schema.OutcomeSucceeded:
		return ReadyColor.Sprint(text)
	case schema.OutcomeRunning:
		return PendingColor.Sprint(text)
	default:
		return FailedColor.Sprint(text)
	}
}

// GetSourceLabel returns HIT for cached responses and MISS otherwise.
func GetSourceLabel(source schema.ResponseSource) string {
	if source == schema.SourceCache {
		return "HIT"
	}
	return "MISS"
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
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

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".swcache.db"
	}
	return filepath.Join(homeDir, ".swcache.db")
}

// TruncatePath truncates a path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 so there is room for the "..." prefix and at least one character.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
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
