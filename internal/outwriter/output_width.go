package outwriter

import (
	"os"

	"github.com/huangsam/scorecard/internal/contract"
	"golang.org/x/term"
)

// Bounds for the free-text reason column.
const (
	minReasonWidth = 20
	maxReasonWidth = 80
)

// getTerminalWidth returns the width override or the detected terminal width.
func getTerminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetMaxReasonWidth calculates the maximum width for the reason-code column
// in table output based on terminal width.
func GetMaxReasonWidth(cfg *contract.Config) int {
	// Index + Score + Grade + Label with borders/padding
	baseWidth := 45

	available := getTerminalWidth(cfg) - baseWidth
	return max(minReasonWidth, min(available, maxReasonWidth))
}
