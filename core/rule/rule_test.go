package rule

import (
	"testing"

	"github.com/huangsam/scorecard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]schema.Value) Lookup {
	return func(field string) schema.Value {
		if v, ok := m[field]; ok {
			return v
		}
		return schema.NotFound
	}
}

func TestParseAndEval(t *testing.T) {
	record := mapLookup(map[string]schema.Value{
		"credit_score":    schema.NumberValue(480),
		"debt_to_income":  schema.NumberValue(0.7),
		"employment":      schema.TextValue("Salaried"),
		"has_bankruptcy":  schema.TextValue("true"),
		"monthly_income":  schema.TextValue("45000"),
		"collateral_flag": schema.NumberValue(0),
	})

	tests := []struct {
		name      string
		condition string
		expected  bool
	}{
		{"Less Than", "credit_score < 500", true},
		{"Greater Than False", "credit_score > 500", false},
		{"Less Equal Boundary", "credit_score <= 480", true},
		{"Greater Equal Boundary", "credit_score >= 480", true},
		{"Equal", "credit_score == 480", true},
		{"Single Equals", "credit_score = 480", true},
		{"Not Equal", "credit_score != 480", false},
		{"And", "credit_score < 500 AND debt_to_income > 0.6", true},
		{"And Lowercase", "credit_score < 500 and debt_to_income > 0.9", false},
		{"Or", "credit_score > 700 OR debt_to_income > 0.6", true},
		{"Symbolic", "credit_score > 700 || debt_to_income > 0.6 && credit_score < 500", true},
		{"Precedence", "credit_score > 700 OR debt_to_income > 0.9 AND credit_score < 500", false},
		{"Parens", "(credit_score > 700 OR debt_to_income > 0.6) AND credit_score < 500", true},
		{"Not", "NOT credit_score > 700", true},
		{"Bang", "!(credit_score < 500)", false},
		{"String Case Insensitive", "employment == 'salaried'", true},
		{"String Double Quote", `employment != "self_employed"`, true},
		{"Numeric Text", "monthly_income >= 45000", true},
		{"Bool Literal", "has_bankruptcy == true", true},
		{"Bare Field Truthy", "has_bankruptcy", true},
		{"Bare Field Falsy", "collateral_flag", false},
		{"Missing Field Never Matches", "unknown_field < 10", false},
		{"Missing Field Not Equal", "unknown_field != 10", false},
		{"Negative Literal", "credit_score > -1", true},
		{"Mixed Kinds", "employment > 5", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.condition)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, expr.Eval(record))
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name      string
		condition string
	}{
		{"Empty", "   "},
		{"Dangling Operator", "credit_score <"},
		{"Missing Operand", "< 500"},
		{"Unclosed Paren", "(credit_score < 500"},
		{"Extra Paren", "credit_score < 500)"},
		{"Single Ampersand", "a < 1 & b > 2"},
		{"Unterminated String", "name == 'abc"},
		{"Bad Character", "credit_score < 500 ; drop"},
		{"Double Comparison", "a < b < c"},
		{"Bad Number", "a < 1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.condition)
			var pe *ParseError
			assert.ErrorAs(t, err, &pe)
		})
	}
}

func TestFields(t *testing.T) {
	expr, err := Parse("b > 1 AND (a < 2 OR NOT b == 3) AND 4 > 3")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, Fields(expr))
}

func TestEffectiveDecision(t *testing.T) {
	tests := []struct {
		name     string
		rule     schema.Rule
		expected schema.Decision
	}{
		{"Explicit Decline", schema.Rule{Decision: schema.Decline}, schema.Decline},
		{"Explicit Approve", schema.Rule{Decision: schema.Approve, Description: "auto-decline"}, schema.Approve},
		{"Implied Decline", schema.Rule{Description: "Auto-Decline on bankruptcy"}, schema.Decline},
		{"Implied Approve", schema.Rule{Description: "auto approve for staff"}, schema.Approve},
		{"Points Only", schema.Rule{Description: "bonus for tenure"}, schema.NoDecision},
		{"Review Is Not Hard", schema.Rule{Decision: schema.Review}, schema.NoDecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EffectiveDecision(tt.rule))
		})
	}
}

func TestCompileOrderAndFilter(t *testing.T) {
	off := false
	set := Compile([]schema.Rule{
		{ID: "late", Condition: "x > 0", Priority: 10},
		{ID: "inactive", Condition: "x > 0", Priority: 1, IsActive: &off},
		{ID: "first", Condition: "x > 0", Priority: 1},
		{ID: "tie", Condition: "x > 0", Priority: 1},
		{ID: "broken", Condition: "x >", Priority: 5},
	})

	ids := make([]string, 0, len(set.Rules()))
	for _, r := range set.Rules() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"first", "tie", "broken", "late"}, ids)
	require.Len(t, set.Warnings(), 1)
	assert.Contains(t, set.Warnings()[0], "rule broken never matches")
}

func TestApply(t *testing.T) {
	bounds := Bounds{DeclineCeiling: 54, ApproveFloor: 85}
	lookup := mapLookup(map[string]schema.Value{
		"credit_score": schema.NumberValue(480),
		"tenure":       schema.NumberValue(12),
	})

	t.Run("Point Adjustments", func(t *testing.T) {
		set := Compile([]schema.Rule{
			{ID: "bonus", Condition: "tenure > 10", Points: 5, Priority: 1},
			{ID: "penalty", Condition: "credit_score < 500", Points: -8, Priority: 2},
			{ID: "miss", Condition: "credit_score > 900", Points: 50, Priority: 3},
		})
		out := set.Apply(lookup, 70, bounds)
		assert.Equal(t, 67.0, out.AdjustedScore)
		assert.Equal(t, schema.NoDecision, out.HardDecision)
		require.Len(t, out.Triggered, 2)
		assert.Equal(t, "bonus", out.Triggered[0].ID)
		assert.True(t, out.Triggered[1].Applied)
	})

	t.Run("Decline Is Not Overridden", func(t *testing.T) {
		set := Compile([]schema.Rule{
			{ID: "hard", Description: "auto-decline low score", Condition: "credit_score < 500", Priority: 1},
			{ID: "bonus", Condition: "tenure > 10", Points: 40, Priority: 2},
			{ID: "vip", Condition: "tenure > 1", Decision: schema.Approve, Priority: 3},
		})
		out := set.Apply(lookup, 90, bounds)
		assert.Equal(t, schema.Decline, out.HardDecision)
		assert.Equal(t, 54.0, out.AdjustedScore)
		require.Len(t, out.Triggered, 3)
		assert.True(t, out.Triggered[0].Applied)
		assert.False(t, out.Triggered[1].Applied)
		assert.False(t, out.Triggered[2].Applied)
	})

	t.Run("Decline Dominates Earlier Approve", func(t *testing.T) {
		set := Compile([]schema.Rule{
			{ID: "vip", Condition: "tenure > 1", Decision: schema.Approve, Priority: 1},
			{ID: "hard", Condition: "credit_score < 500", Decision: schema.Decline, Priority: 2},
		})
		out := set.Apply(lookup, 90, bounds)
		assert.Equal(t, schema.Decline, out.HardDecision)
		assert.Equal(t, 54.0, out.AdjustedScore)
	})

	t.Run("Approve Lifts Score", func(t *testing.T) {
		set := Compile([]schema.Rule{
			{ID: "vip", Condition: "tenure > 1", Decision: schema.Approve, Priority: 1},
		})
		out := set.Apply(lookup, 30, bounds)
		assert.Equal(t, schema.Approve, out.HardDecision)
		assert.Equal(t, 85.0, out.AdjustedScore)
	})

	t.Run("Malformed Never Matches", func(t *testing.T) {
		set := Compile([]schema.Rule{
			{ID: "broken", Condition: "credit_score <<< 500", Points: -100},
		})
		out := set.Apply(lookup, 50, bounds)
		assert.Equal(t, 50.0, out.AdjustedScore)
		assert.Empty(t, out.Triggered)
	})
}
