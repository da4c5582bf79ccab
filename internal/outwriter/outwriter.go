// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/huangsam/swcache/internal/contract"
	"golang.org/x/term"
)

// Bounds for the key column in table output.
const (
	minKeyWidth = 15
	maxKeyWidth = 70
)

// getMaxTableKeyWidth calculates the maximum width for cache keys in table output
// based on terminal width and the space taken by the other columns.
func getMaxTableKeyWidth(cfg *contract.Config, fixedWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for table borders, separators, and padding
	available := termWidth - fixedWidth - 20
	if available < minKeyWidth {
		return minKeyWidth
	}
	if available > maxKeyWidth {
		return maxKeyWidth
	}
	return available
}
