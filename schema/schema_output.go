package schema

import "strings"

// EnrichedResult adds presentation data to a ScoreResult.
type EnrichedResult struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	*ScoreResult
}

// ScorecardListing is one row of the list command.
type ScorecardListing struct {
	Path       string  `json:"path"`
	Name       string  `json:"name"`
	Version    string  `json:"version"`
	Categories int     `json:"categories"`
	Variables  int     `json:"variables"`
	Rules      int     `json:"rules"`
	ScoreScale float64 `json:"scoreScale"`
	Valid      bool    `json:"valid"`
	Problem    string  `json:"problem,omitempty"`
}

// GetPlainLabel returns a plain text label for a decision, preferring the
// hard decision when a rule forced one.
func GetPlainLabel(decision, hard Decision) string {
	switch {
	case hard == Decline:
		return "Auto-Decline"
	case hard == Approve:
		return "Auto-Approve"
	case decision == NoDecision:
		return "Unknown"
	default:
		return strings.ToUpper(string(decision[:1])) + string(decision[1:])
	}
}

// EnrichResults pairs results with their input index and label. Nil results
// (record errors) are skipped.
func EnrichResults(results []*ScoreResult) []EnrichedResult {
	output := make([]EnrichedResult, 0, len(results))
	for i, r := range results {
		if r == nil {
			continue
		}
		output = append(output, EnrichedResult{
			Index:       i,
			Label:       GetPlainLabel(r.Decision, r.HardDecision),
			ScoreResult: r,
		})
	}
	return output
}
