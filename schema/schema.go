// Package schema has configs, models and constants for all parts of scorecard.
package schema

import "sort"

// ScorecardConfig is a complete scoring configuration. It is built once by a
// loader and treated as read-only by every evaluation.
type ScorecardConfig struct {
	Name          string                `json:"name" yaml:"name"`
	Version       string                `json:"version,omitempty" yaml:"version,omitempty"`
	ScoreScale    float64               `json:"scoreScale,omitempty" yaml:"scoreScale,omitempty"`       // 100 (default) or 1000
	BandIncrement float64               `json:"bandIncrement,omitempty" yaml:"bandIncrement,omitempty"` // gap between adjacent bands
	Categories    Categories            `json:"categories" yaml:"categories"`
	BucketMapping map[string]BandConfig `json:"bucketMapping" yaml:"bucketMapping"`
	Rules         []Rule                `json:"rules,omitempty" yaml:"rules,omitempty"`
	Metadata      Metadata              `json:"metadata" yaml:"metadata,omitempty"`
}

// Categories is an ordered list of categories. Document order is the
// evaluation order.
type Categories []CategoryConfig

// CategoryConfig is a weighted group of variables.
type CategoryConfig struct {
	Name      string           `json:"name" yaml:"name,omitempty"`
	Weight    float64          `json:"weight" yaml:"weight"`
	Variables []VariableConfig `json:"variables" yaml:"variables"`
	IsActive  *bool            `json:"isActive,omitempty" yaml:"isActive,omitempty"` // nil means active
}

// Active reports whether the category takes part in scoring.
func (c CategoryConfig) Active() bool {
	return c.IsActive == nil || *c.IsActive
}

// VariableConfig is one scoreable input field.
type VariableConfig struct {
	Name    string         `json:"name" yaml:"name"`
	Weight  float64        `json:"weight" yaml:"weight"` // share of the category weight
	Type    VariableType   `json:"type,omitempty" yaml:"type,omitempty"`
	Bands   []VariableBand `json:"bands,omitempty" yaml:"bands,omitempty"`
	Min     *float64       `json:"min,omitempty" yaml:"min,omitempty"` // linear strategy lower bound
	Max     *float64       `json:"max,omitempty" yaml:"max,omitempty"` // linear strategy upper bound
	Invert  bool           `json:"invert,omitempty" yaml:"invert,omitempty"`
	Aliases []string       `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// EffectiveType returns the variable type, defaulting to continuous.
func (v VariableConfig) EffectiveType() VariableType {
	if v.Type == "" {
		return Continuous
	}
	return v.Type
}

// MaxPoints returns the most points the variable can award.
func (v VariableConfig) MaxPoints() float64 {
	if len(v.Bands) == 0 {
		return v.Weight
	}
	best := 0.0
	for _, b := range v.Bands {
		if b.Score > best {
			best = b.Score
		}
	}
	return best
}

// VariableBand is one row of a lookup table. Min is inclusive and Max is
// exclusive; either may be open. Values matches categorical input. A band
// with none of the three set is a catch-all.
type VariableBand struct {
	Label  string   `json:"label,omitempty" yaml:"label,omitempty"`
	Min    *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max    *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
	Score  float64  `json:"score" yaml:"score"`
}

// CatchAll reports whether the band matches any value.
func (b VariableBand) CatchAll() bool {
	return b.Min == nil && b.Max == nil && len(b.Values) == 0
}

// BandConfig maps a score range to a grade.
type BandConfig struct {
	Min          float64  `json:"min" yaml:"min"`
	Max          float64  `json:"max" yaml:"max"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Decision     Decision `json:"decision,omitempty" yaml:"decision,omitempty"`
	ApprovalRate *float64 `json:"approvalRate,omitempty" yaml:"approvalRate,omitempty"`
	DefaultRate  *float64 `json:"defaultRate,omitempty" yaml:"defaultRate,omitempty"`
}

// Grade is a BandConfig paired with its label.
type Grade struct {
	Label string `json:"label"`
	BandConfig
}

// Rule is a conditional point adjustment or hard decision.
type Rule struct {
	ID          string   `json:"id" yaml:"id"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Condition   string   `json:"condition" yaml:"condition"`
	Points      int      `json:"points" yaml:"points"`
	IsActive    *bool    `json:"isActive,omitempty" yaml:"isActive,omitempty"` // nil means active
	Priority    int      `json:"priority" yaml:"priority"`
	Decision    Decision `json:"decision,omitempty" yaml:"decision,omitempty"`
}

// Active reports whether the rule takes part in evaluation.
func (r Rule) Active() bool {
	return r.IsActive == nil || *r.IsActive
}

// Metadata is descriptive context. It is not used in arithmetic.
type Metadata struct {
	RiskAppetite       string            `json:"riskAppetite,omitempty" yaml:"riskAppetite,omitempty"`
	TargetApprovalRate *float64          `json:"targetApprovalRate,omitempty" yaml:"targetApprovalRate,omitempty"`
	Description        string            `json:"description,omitempty" yaml:"description,omitempty"`
	Extra              map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// Scale returns the configured score scale, defaulting to 100.
func (c *ScorecardConfig) Scale() float64 {
	if c.ScoreScale == 0 {
		return DefaultScoreScale
	}
	return c.ScoreScale
}

// Increment returns the configured band increment, defaulting to 1.
func (c *ScorecardConfig) Increment() float64 {
	if c.BandIncrement == 0 {
		return DefaultBandIncrement
	}
	return c.BandIncrement
}

// ActiveCategories returns the active categories in document order.
func (c *ScorecardConfig) ActiveCategories() []CategoryConfig {
	active := make([]CategoryConfig, 0, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Active() {
			active = append(active, cat)
		}
	}
	return active
}

// Grades returns the bucket mapping ordered by descending Min. Ties are
// broken by label so the order is deterministic.
func (c *ScorecardConfig) Grades() []Grade {
	grades := make([]Grade, 0, len(c.BucketMapping))
	for label, band := range c.BucketMapping {
		grades = append(grades, Grade{Label: label, BandConfig: band})
	}
	sort.Slice(grades, func(i, j int) bool {
		if grades[i].Min != grades[j].Min {
			return grades[i].Min > grades[j].Min
		}
		return grades[i].Label < grades[j].Label
	})
	return grades
}
