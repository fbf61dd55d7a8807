package core

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/huangsam/scorecard/schema"
	"github.com/shopspring/decimal"
)

// buildReasonCodes orders explanations: the top contributors by points (ties
// keep category then variable order), then triggered rules in evaluation
// order, then one note per data-quality issue.
func buildReasonCodes(contributors []schema.Contributor, triggered []schema.TriggeredRule, limit int) []string {
	reasons := make([]string, 0, limit+len(triggered))

	top := make([]schema.Contributor, 0, len(contributors))
	for _, c := range contributors {
		if c.Points > 0 {
			top = append(top, c)
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Points > top[j].Points
	})
	if len(top) > limit {
		top = top[:limit]
	}
	for _, c := range top {
		reasons = append(reasons, fmt.Sprintf("%s %s: %s of %s points (%s)",
			c.Variable, c.Value, formatNumber(roundScore(c.Points)), formatNumber(c.MaxPoints), c.Category))
	}

	for _, r := range triggered {
		reasons = append(reasons, describeRule(r))
	}

	for _, c := range contributors {
		switch c.Issue {
		case schema.MissingIssue:
			reasons = append(reasons, "missing "+c.Variable)
		case schema.InvalidIssue:
			reasons = append(reasons, fmt.Sprintf("invalid %s: %q", c.Variable, c.Value.String()))
		case schema.OutOfRangeIssue:
			reasons = append(reasons, fmt.Sprintf("out of range %s: %s", c.Variable, c.Value))
		}
	}
	return reasons
}

func describeRule(r schema.TriggeredRule) string {
	text := r.Description
	if text == "" {
		text = "rule " + r.ID
	}
	switch {
	case r.Decision == schema.Decline:
		text += " (auto-decline)"
	case r.Decision == schema.Approve:
		text += " (auto-approve)"
	case r.Points != 0:
		text += fmt.Sprintf(" (%+d)", r.Points)
	}
	if !r.Applied {
		text += " [not applied]"
	}
	return text
}

// roundScore rounds half away from zero at the score precision.
func roundScore(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(schema.ScorePrecision).Float64()
	return f
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
