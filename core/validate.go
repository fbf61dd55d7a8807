package core

import (
	"fmt"
	"math"

	"github.com/huangsam/scorecard/core/rule"
	"github.com/huangsam/scorecard/schema"
)

// ValidationOptions tunes how strict the validator is.
type ValidationOptions struct {
	// Strict turns variable-weight mismatches and unparseable rule
	// conditions into errors. By default they are warnings.
	Strict bool
}

// validation collects findings while walking a config.
type validation struct {
	opts     ValidationOptions
	errors   []string
	warnings []string
}

func (v *validation) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validation) warnf(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

// softf is a warning in soft mode and an error in strict mode.
func (v *validation) softf(format string, args ...any) {
	if v.opts.Strict {
		v.errorf(format, args...)
		return
	}
	v.warnf(format, args...)
}

// ValidateConfiguration checks a scorecard's internal consistency. It never
// fails; callers decide whether to block on the returned errors.
func ValidateConfiguration(cfg *schema.ScorecardConfig, opts ValidationOptions) schema.ValidationResult {
	v := &validation{opts: opts}
	if cfg == nil {
		v.errorf("scorecard is nil")
	} else {
		v.checkScale(cfg)
		v.checkCategories(cfg)
		v.checkBuckets(cfg)
		v.checkRules(cfg)
		v.checkMetadata(cfg)
	}
	return schema.ValidationResult{
		IsValid:  len(v.errors) == 0,
		Errors:   append([]string{}, v.errors...),
		Warnings: v.warnings,
	}
}

func (v *validation) checkScale(cfg *schema.ScorecardConfig) {
	if _, ok := schema.ValidScoreScales[cfg.Scale()]; !ok {
		v.errorf("score scale must be 100 or 1000, got %s", formatNumber(cfg.Scale()))
	}
	if cfg.Increment() < 0 {
		v.errorf("band increment must not be negative, got %s", formatNumber(cfg.Increment()))
	}
}

func (v *validation) checkCategories(cfg *schema.ScorecardConfig) {
	if len(cfg.ActiveCategories()) == 0 {
		v.errorf("scorecard has no active categories")
		return
	}

	seen := make(map[string]struct{}, len(cfg.Categories))
	total := 0.0
	for _, cat := range cfg.Categories {
		if cat.Name == "" {
			v.errorf("category with weight %s has no name", formatNumber(cat.Weight))
		}
		if _, dup := seen[cat.Name]; dup {
			v.errorf("duplicate category %q", cat.Name)
		}
		seen[cat.Name] = struct{}{}

		if cat.Weight < 0 || cat.Weight > schema.WeightTotal {
			v.errorf("category %q weight must be between 0 and 100, got %s", cat.Name, formatNumber(cat.Weight))
		}
		if !cat.Active() {
			continue
		}
		total += cat.Weight
		v.checkVariables(cat)
	}

	if delta := total - schema.WeightTotal; math.Abs(delta) > schema.WeightTolerance {
		v.errorf("active category weights must sum to 100, got %.2f (delta %+.2f)", total, delta)
	}
}

func (v *validation) checkVariables(cat schema.CategoryConfig) {
	if len(cat.Variables) == 0 {
		v.errorf("category %q has no variables", cat.Name)
		return
	}

	seen := make(map[string]struct{}, len(cat.Variables))
	points := 0.0
	for _, variable := range cat.Variables {
		where := fmt.Sprintf("category %q variable %q", cat.Name, variable.Name)
		if variable.Name == "" {
			v.errorf("category %q has a variable with no name", cat.Name)
		}
		if _, dup := seen[variable.Name]; dup {
			v.errorf("%s is declared twice", where)
		}
		seen[variable.Name] = struct{}{}

		if _, ok := schema.ValidVariableTypes[variable.EffectiveType()]; !ok {
			v.errorf("%s has unknown type %q", where, variable.Type)
		}
		if variable.Weight < 0 {
			v.errorf("%s weight must not be negative", where)
		}

		if len(variable.Bands) > 0 {
			v.checkBands(where, variable)
		} else {
			v.checkLinear(where, variable)
		}
		points += variable.MaxPoints()
	}

	if math.Abs(points-cat.Weight) > schema.WeightTolerance {
		v.softf("category %q variable points sum to %.2f, expected %.2f", cat.Name, points, cat.Weight)
	}
}

func (v *validation) checkBands(where string, variable schema.VariableConfig) {
	categorical := variable.EffectiveType() == schema.Categorical
	catchAll := false
	for i, b := range variable.Bands {
		if b.Score < 0 {
			v.errorf("%s band %d has a negative score", where, i+1)
		}
		if b.Min != nil && b.Max != nil && *b.Min >= *b.Max {
			v.errorf("%s band %d has min %s not below max %s", where, i+1, formatNumber(*b.Min), formatNumber(*b.Max))
		}
		if categorical && (b.Min != nil || b.Max != nil) {
			v.errorf("%s band %d uses min/max on a categorical variable", where, i+1)
		}
		if !categorical && len(b.Values) > 0 {
			v.errorf("%s band %d uses values on a continuous variable", where, i+1)
		}
		if b.CatchAll() {
			catchAll = true
		}
	}
	if !categorical && !catchAll && !bandsCoverLine(variable.Bands) {
		v.warnf("%s bands leave part of the number line uncovered", where)
	}
	if variable.Weight != 0 && math.Abs(variable.Weight-variable.MaxPoints()) > schema.WeightTolerance {
		v.warnf("%s weight %s differs from its best band score %s", where, formatNumber(variable.Weight), formatNumber(variable.MaxPoints()))
	}
}

func (v *validation) checkLinear(where string, variable schema.VariableConfig) {
	if variable.EffectiveType() == schema.Categorical {
		v.errorf("%s is categorical and needs bands", where)
		return
	}
	if variable.Min == nil || variable.Max == nil {
		v.errorf("%s has no bands and needs both min and max", where)
		return
	}
	if *variable.Min >= *variable.Max {
		v.errorf("%s min %s must be below max %s", where, formatNumber(*variable.Min), formatNumber(*variable.Max))
	}
}

// bandsCoverLine reports whether continuous bands leave no hole between
// -inf and +inf, treating them as a set of half-open intervals.
func bandsCoverLine(bands []schema.VariableBand) bool {
	type interval struct{ lo, hi float64 }
	ivs := make([]interval, 0, len(bands))
	for _, b := range bands {
		iv := interval{math.Inf(-1), math.Inf(1)}
		if b.Min != nil {
			iv.lo = *b.Min
		}
		if b.Max != nil {
			iv.hi = *b.Max
		}
		if iv.lo < iv.hi {
			ivs = append(ivs, iv)
		}
	}
	reach := math.Inf(-1)
	for {
		extended := false
		for _, iv := range ivs {
			if iv.lo <= reach && iv.hi > reach {
				reach = iv.hi
				extended = true
			}
		}
		if math.IsInf(reach, 1) {
			return true
		}
		if !extended {
			return false
		}
	}
}

func (v *validation) checkBuckets(cfg *schema.ScorecardConfig) {
	if len(cfg.BucketMapping) == 0 {
		v.errorf("bucket mapping is empty")
		return
	}

	grades := cfg.Grades()
	for _, g := range grades {
		if g.Label == "" {
			v.errorf("bucket with min %s has no label", formatNumber(g.Min))
		}
		if g.Min > g.Max {
			v.errorf("bucket %q has min %s above max %s", g.Label, formatNumber(g.Min), formatNumber(g.Max))
		}
		if g.Decision != schema.NoDecision {
			if _, ok := schema.ValidDecisions[g.Decision]; !ok {
				v.errorf("bucket %q has unknown decision %q", g.Label, g.Decision)
			}
		}
		if g.ApprovalRate != nil && (*g.ApprovalRate < 0 || *g.ApprovalRate > 100) {
			v.warnf("bucket %q approval rate %s is outside 0-100", g.Label, formatNumber(*g.ApprovalRate))
		}
		if g.DefaultRate != nil && (*g.DefaultRate < 0 || *g.DefaultRate > 100) {
			v.warnf("bucket %q default rate %s is outside 0-100", g.Label, formatNumber(*g.DefaultRate))
		}
	}

	// Adjacent bands, highest first: lower.max + increment == higher.min.
	inc := cfg.Increment()
	for i := 0; i+1 < len(grades); i++ {
		higher, lower := grades[i], grades[i+1]
		want := lower.Max + inc
		switch {
		case lower.Max >= higher.Min:
			v.errorf("buckets %q and %q overlap: %q ends at %s but %q starts at %s",
				lower.Label, higher.Label, lower.Label, formatNumber(lower.Max), higher.Label, formatNumber(higher.Min))
		case math.Abs(want-higher.Min) > 1e-9:
			v.errorf("buckets %q and %q leave a gap: expected %q to start at %s, got %s",
				lower.Label, higher.Label, higher.Label, formatNumber(want), formatNumber(higher.Min))
		}
	}

	if low := grades[len(grades)-1]; low.Min > 0 {
		v.errorf("lowest bucket %q starts at %s; bands must cover 0", low.Label, formatNumber(low.Min))
	}
	if high := grades[0]; high.Max < cfg.Scale() {
		v.errorf("highest bucket %q ends at %s; bands must cover %s", high.Label, formatNumber(high.Max), formatNumber(cfg.Scale()))
	}
}

func (v *validation) checkRules(cfg *schema.ScorecardConfig) {
	known := declaredFields(cfg)
	seen := make(map[string]struct{}, len(cfg.Rules))
	for i, r := range cfg.Rules {
		if r.ID == "" {
			v.errorf("rule %d has no id", i+1)
		} else if _, dup := seen[r.ID]; dup {
			v.errorf("duplicate rule id %q", r.ID)
		}
		seen[r.ID] = struct{}{}

		if r.Decision != schema.NoDecision {
			if _, ok := schema.ValidDecisions[r.Decision]; !ok {
				v.errorf("rule %q has unknown decision %q", r.ID, r.Decision)
			}
		}

		expr, err := rule.Parse(r.Condition)
		if err != nil {
			v.softf("rule %q condition %q does not parse and will never match: %v", r.ID, r.Condition, err)
			continue
		}
		for _, field := range rule.Fields(expr) {
			if _, ok := known[foldKey(field)]; !ok {
				v.warnf("rule %q references %q, which no variable declares", r.ID, field)
			}
		}
	}
}

// declaredFields returns the folded names and aliases of every variable,
// plus the synonyms they resolve through.
func declaredFields(cfg *schema.ScorecardConfig) map[string]struct{} {
	known := make(map[string]struct{})
	add := func(name string) {
		f := foldKey(name)
		known[f] = struct{}{}
		for _, syn := range synonyms[f] {
			known[syn] = struct{}{}
		}
	}
	for _, cat := range cfg.Categories {
		for _, variable := range cat.Variables {
			add(variable.Name)
			for _, alias := range variable.Aliases {
				add(alias)
			}
		}
	}
	return known
}

func (v *validation) checkMetadata(cfg *schema.ScorecardConfig) {
	if r := cfg.Metadata.TargetApprovalRate; r != nil && (*r < 0 || *r > 100) {
		v.warnf("target approval rate %s is outside 0-100", formatNumber(*r))
	}
}
