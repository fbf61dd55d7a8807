// Package outwriter has output and writer logic.
package outwriter

import (
	"errors"
	"time"

	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/schema"
)

// ErrUnsupportedOutput is returned when a result kind cannot be rendered in
// the requested output format.
var ErrUnsupportedOutput = errors.New("output format is not supported for this command")

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteResult prints a single evaluation using the configured output format.
func (ow *OutWriter) WriteResult(result *schema.ScoreResult, card *schema.ScorecardConfig, cfg *contract.Config, duration time.Duration) error {
	return WriteScoreResult(result, card, cfg, duration)
}

// WriteBatch prints a bulk evaluation using the configured output format.
func (ow *OutWriter) WriteBatch(output *schema.BatchOutput, cfg *contract.Config, duration time.Duration) error {
	return WriteBatchOutput(output, cfg, duration)
}

// WriteValidation prints validator findings using the configured output format.
func (ow *OutWriter) WriteValidation(path string, result schema.ValidationResult, cfg *contract.Config) error {
	return WriteValidationResult(path, result, cfg)
}

// WriteListing prints discovered scorecards using the configured output format.
func (ow *OutWriter) WriteListing(listings []schema.ScorecardListing, cfg *contract.Config) error {
	return WriteScorecardListings(listings, cfg)
}

// WriteCheck prints an approval gate outcome using the configured output format.
func (ow *OutWriter) WriteCheck(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	return WriteCheckResult(result, cfg, duration)
}

// labelFor returns a colored or plain decision label depending on cfg.
func labelFor(cfg *contract.Config, decision, hard schema.Decision) string {
	if cfg.UseColors {
		return contract.GetColorLabel(decision, hard)
	}
	return schema.GetPlainLabel(decision, hard)
}

// heading returns text prefixed with an emoji when enabled.
func heading(cfg *contract.Config, emoji, text string) string {
	if cfg.UseEmojis {
		return emoji + " " + text
	}
	return text
}
