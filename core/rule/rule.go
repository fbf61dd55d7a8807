package rule

import (
	"fmt"
	"sort"
	"strings"

	"github.com/huangsam/scorecard/schema"
)

// Compiled is an active rule with its condition parsed once.
type Compiled struct {
	schema.Rule
	Expr     Expr            // nil when the condition failed to parse
	Err      error           // parse error, if any
	Decision schema.Decision // effective hard decision, if any
}

// Set is the ordered, pre-parsed rule list of one scorecard.
type Set struct {
	rules    []Compiled
	warnings []string
}

// Bounds are the score limits hard decisions clamp to.
type Bounds struct {
	DeclineCeiling float64 // a hard decline never leaves the score above this
	ApproveFloor   float64 // a hard approve never leaves the score below this
}

// Compile drops inactive rules, orders the rest by ascending priority (ties
// keep definition order) and parses every condition once. Conditions that do
// not parse are kept so they can be reported, but they never match.
func Compile(rules []schema.Rule) *Set {
	set := &Set{}
	for _, r := range rules {
		if !r.Active() {
			continue
		}
		c := Compiled{Rule: r, Decision: EffectiveDecision(r)}
		c.Expr, c.Err = Parse(r.Condition)
		if c.Err != nil {
			set.warnings = append(set.warnings, fmt.Sprintf("rule %s never matches: %v", r.ID, c.Err))
		}
		set.rules = append(set.rules, c)
	}
	sort.SliceStable(set.rules, func(i, j int) bool {
		return set.rules[i].Priority < set.rules[j].Priority
	})
	return set
}

// Rules returns the compiled rules in evaluation order.
func (s *Set) Rules() []Compiled { return s.rules }

// Warnings returns one message per condition that failed to parse.
func (s *Set) Warnings() []string { return s.warnings }

// EffectiveDecision returns the rule's explicit decision or the one implied
// by its description.
func EffectiveDecision(r schema.Rule) schema.Decision {
	if r.Decision == schema.Approve || r.Decision == schema.Decline {
		return r.Decision
	}
	desc := strings.ToLower(r.Description)
	switch {
	case strings.Contains(desc, "auto-decline"), strings.Contains(desc, "auto decline"):
		return schema.Decline
	case strings.Contains(desc, "auto-approve"), strings.Contains(desc, "auto approve"):
		return schema.Approve
	}
	return schema.NoDecision
}

// Apply runs the rules against one record. Once a decline fires, later point
// adjustments are recorded but not applied, and no later rule can lift the
// decision.
func (s *Set) Apply(lookup Lookup, score float64, bounds Bounds) schema.RuleOutcome {
	out := schema.RuleOutcome{AdjustedScore: score}
	for _, r := range s.rules {
		if r.Expr == nil || !r.Expr.Eval(lookup) {
			continue
		}
		frozen := out.HardDecision == schema.Decline
		tr := schema.TriggeredRule{
			ID:          r.ID,
			Description: r.Description,
			Points:      r.Points,
			Decision:    r.Decision,
			Applied:     !frozen,
		}
		out.Triggered = append(out.Triggered, tr)
		if frozen {
			continue
		}
		out.AdjustedScore += float64(r.Points)
		switch r.Decision {
		case schema.Decline:
			out.HardDecision = schema.Decline
		case schema.Approve:
			if out.HardDecision == schema.NoDecision {
				out.HardDecision = schema.Approve
			}
		}
	}

	switch out.HardDecision {
	case schema.Decline:
		out.AdjustedScore = min(out.AdjustedScore, bounds.DeclineCeiling)
	case schema.Approve:
		out.AdjustedScore = max(out.AdjustedScore, bounds.ApproveFloor)
	}
	return out
}
