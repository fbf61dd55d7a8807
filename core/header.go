package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/schema"
)

// showHeader reports whether a stdout header fits the current output: text
// mode only, and never when the caller suppressed it.
func showHeader(ctx context.Context, cfg *contract.Config) bool {
	return cfg.Output == schema.TextOut && !shouldSuppressHeader(ctx)
}

// logBatchHeader prints a concise, 2-line header for a bulk run.
func logBatchHeader(card *schema.ScorecardConfig, cfg *contract.Config, batchID string, total int) {
	fmt.Printf("🔎 Scorecard: %s %s (strict: %t)\n", card.Name, card.Version, cfg.Strict)
	fmt.Printf("📂 Records: %s (%d rows, batch %s)\n", displayPath(cfg.RecordsPath), total, batchID)
}

// logEvaluateHeader prints a single header line for one evaluation.
func logEvaluateHeader(card *schema.ScorecardConfig, source string) {
	fmt.Printf("🔎 Scorecard: %s %s, record from %s\n", card.Name, card.Version, source)
}

func displayPath(path string) string {
	switch path {
	case "":
		return "inline"
	case "-":
		return "stdin"
	default:
		return filepath.Base(path)
	}
}
