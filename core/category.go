package core

import (
	"strings"

	"github.com/huangsam/scorecard/schema"
)

// strategy awards points for one resolved, present value.
type strategy interface {
	award(v schema.Value) (points float64, band string, issue schema.IssueKind)
}

// bandStrategy is a lookup table. The first matching band in definition
// order wins.
type bandStrategy struct {
	bands       []schema.VariableBand
	categorical bool
}

func (s bandStrategy) award(v schema.Value) (float64, string, schema.IssueKind) {
	if !s.categorical && v.Kind != schema.KindNumber {
		return 0, "", schema.InvalidIssue
	}
	for _, b := range s.bands {
		if bandMatches(b, v, s.categorical) {
			return b.Score, bandLabel(b), schema.NoIssue
		}
	}
	return 0, "", schema.OutOfRangeIssue
}

func bandMatches(b schema.VariableBand, v schema.Value, categorical bool) bool {
	if b.CatchAll() {
		return true
	}
	if categorical {
		for _, want := range b.Values {
			if strings.EqualFold(strings.TrimSpace(want), v.Str) {
				return true
			}
		}
		return false
	}
	if len(b.Values) > 0 && b.Min == nil && b.Max == nil {
		return false
	}
	if b.Min != nil && v.Num < *b.Min {
		return false
	}
	if b.Max != nil && v.Num >= *b.Max {
		return false
	}
	return true
}

func bandLabel(b schema.VariableBand) string {
	if b.Label != "" {
		return b.Label
	}
	switch {
	case len(b.Values) > 0:
		return strings.Join(b.Values, "|")
	case b.Min != nil && b.Max != nil:
		return formatNumber(*b.Min) + "-" + formatNumber(*b.Max)
	case b.Min != nil:
		return formatNumber(*b.Min) + "+"
	case b.Max != nil:
		return "<" + formatNumber(*b.Max)
	default:
		return "other"
	}
}

// linearStrategy scales a value between min and max into [0, weight].
type linearStrategy struct {
	weight, min, max float64
	invert           bool
}

func (s linearStrategy) award(v schema.Value) (float64, string, schema.IssueKind) {
	if v.Kind != schema.KindNumber {
		return 0, "", schema.InvalidIssue
	}
	n := clamp01((v.Num - s.min) / (s.max - s.min))
	if s.invert {
		n = 1 - n
	}
	return n * s.weight, "", schema.NoIssue
}

// noStrategy is used for variables the validator would reject. It keeps
// ScoreCategory total even when called on an unvalidated config.
type noStrategy struct{}

func (noStrategy) award(schema.Value) (float64, string, schema.IssueKind) {
	return 0, "", schema.InvalidIssue
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// strategyFor picks the scoring strategy of a variable: bands when present,
// otherwise linear normalization over min and max.
func strategyFor(v schema.VariableConfig) strategy {
	categorical := v.EffectiveType() == schema.Categorical
	if len(v.Bands) > 0 {
		return bandStrategy{bands: v.Bands, categorical: categorical}
	}
	if categorical || v.Min == nil || v.Max == nil || *v.Max <= *v.Min {
		return noStrategy{}
	}
	return linearStrategy{weight: v.Weight, min: *v.Min, max: *v.Max, invert: v.Invert}
}

// compiledVariable is a variable with its strategy chosen once.
type compiledVariable struct {
	cfg      schema.VariableConfig
	strategy strategy
}

// compiledCategory is an active category ready for scoring.
type compiledCategory struct {
	cfg       schema.CategoryConfig
	variables []compiledVariable
}

func compileCategory(cat schema.CategoryConfig) compiledCategory {
	cc := compiledCategory{cfg: cat, variables: make([]compiledVariable, len(cat.Variables))}
	for i, v := range cat.Variables {
		cc.variables[i] = compiledVariable{cfg: v, strategy: strategyFor(v)}
	}
	return cc
}

func (cc compiledCategory) score(record schema.InputRecord) schema.CategoryScore {
	out := schema.CategoryScore{
		Category:     cc.cfg.Name,
		Weight:       cc.cfg.Weight,
		Contributors: make([]schema.Contributor, 0, len(cc.variables)),
	}
	for _, v := range cc.variables {
		c := schema.Contributor{
			Category:  cc.cfg.Name,
			Variable:  v.cfg.Name,
			MaxPoints: v.cfg.MaxPoints(),
		}
		c.Value = ResolveVariable(record, v.cfg.Name, v.cfg.EffectiveType(), v.cfg.Aliases...)
		if c.Value.Missing() {
			c.Issue = schema.MissingIssue
		} else {
			c.Points, c.Band, c.Issue = v.strategy.award(c.Value)
		}
		out.SubScore += c.Points
		out.Contributors = append(out.Contributors, c)
	}
	return out
}

// ScoreCategory computes a category's sub-score from its variables. Missing
// or unusable values contribute zero points and are flagged on their
// contributor rather than failing the call.
func ScoreCategory(cat schema.CategoryConfig, record schema.InputRecord) schema.CategoryScore {
	return compileCategory(cat).score(record)
}
