package core

import (
	"testing"

	"github.com/huangsam/scorecard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreCategoryBands(t *testing.T) {
	credit := scenarioConfig().Categories[0]

	tests := []struct {
		name     string
		value    any
		points   float64
		band     string
		expected schema.IssueKind
	}{
		{"Below Lowest", 300, 0, "<550", schema.NoIssue},
		{"Lower Edge Inclusive", 550, 20, "550-650", schema.NoIssue},
		{"Upper Edge Exclusive", 649.99, 20, "550-650", schema.NoIssue},
		{"Next Band", 650, 40, "650-750", schema.NoIssue},
		{"Open Top", 900, 60, "750+", schema.NoIssue},
		{"Invalid Text", "n/a", 0, "", schema.InvalidIssue},
		{"Missing", nil, 0, "", schema.MissingIssue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := ScoreCategory(credit, schema.InputRecord{"credit_score": tt.value})
			require.Len(t, cs.Contributors, 1)
			c := cs.Contributors[0]
			assert.Equal(t, tt.points, cs.SubScore)
			assert.Equal(t, tt.points, c.Points)
			assert.Equal(t, tt.band, c.Band)
			assert.Equal(t, tt.expected, c.Issue)
			assert.Equal(t, 60.0, c.MaxPoints)
		})
	}
}

func TestScoreCategoryFirstBandWins(t *testing.T) {
	cat := schema.CategoryConfig{
		Name:   "Overlap",
		Weight: 10,
		Variables: []schema.VariableConfig{{
			Name: "x",
			Bands: []schema.VariableBand{
				{Label: "first", Min: ptr(0), Max: ptr(10), Score: 3},
				{Label: "second", Min: ptr(5), Max: ptr(20), Score: 10},
			},
		}},
	}
	cs := ScoreCategory(cat, schema.InputRecord{"x": 7})
	assert.Equal(t, 3.0, cs.SubScore)
	assert.Equal(t, "first", cs.Contributors[0].Band)

	cs = ScoreCategory(cat, schema.InputRecord{"x": 25})
	assert.Equal(t, schema.OutOfRangeIssue, cs.Contributors[0].Issue)
}

func TestScoreCategoryCategorical(t *testing.T) {
	cat := schema.CategoryConfig{
		Name:   "Stability",
		Weight: 20,
		Variables: []schema.VariableConfig{{
			Name: "housing",
			Type: schema.Categorical,
			Bands: []schema.VariableBand{
				{Values: []string{"own", "mortgage"}, Score: 20},
				{Values: []string{"rent"}, Score: 10},
				{Label: "other", Score: 0},
			},
		}},
	}

	tests := []struct {
		value  any
		points float64
		band   string
	}{
		{"Own", 20, "own|mortgage"},
		{"rent", 10, "rent"},
		{"boat", 0, "other"},
	}
	for _, tt := range tests {
		cs := ScoreCategory(cat, schema.InputRecord{"housing": tt.value})
		assert.Equal(t, tt.points, cs.SubScore, "value %v", tt.value)
		assert.Equal(t, tt.band, cs.Contributors[0].Band, "value %v", tt.value)
	}
}

func TestScoreCategoryLinear(t *testing.T) {
	cat := schema.CategoryConfig{
		Name:   "Capacity",
		Weight: 30,
		Variables: []schema.VariableConfig{
			{Name: "savings", Weight: 20, Min: ptr(0), Max: ptr(10000)},
			{Name: "dti", Weight: 10, Min: ptr(0), Max: ptr(1), Invert: true},
		},
	}

	cs := ScoreCategory(cat, schema.InputRecord{"savings": 2500, "dti": 0.25})
	assert.InDelta(t, 5.0, cs.Contributors[0].Points, 1e-9)
	assert.InDelta(t, 7.5, cs.Contributors[1].Points, 1e-9)
	assert.InDelta(t, 12.5, cs.SubScore, 1e-9)

	// Values outside the range clamp.
	cs = ScoreCategory(cat, schema.InputRecord{"savings": 50000, "dti": 3})
	assert.Equal(t, 20.0, cs.Contributors[0].Points)
	assert.Equal(t, 0.0, cs.Contributors[1].Points)
}

func TestScoreCategoryMonotonic(t *testing.T) {
	credit := scenarioConfig().Categories[0]
	prev := -1.0
	for v := 300.0; v <= 900; v += 0.5 {
		cs := ScoreCategory(credit, schema.InputRecord{"credit_score": v})
		assert.GreaterOrEqual(t, cs.SubScore, prev, "value %v", v)
		prev = cs.SubScore
	}

	linear := schema.CategoryConfig{Name: "L", Weight: 10, Variables: []schema.VariableConfig{
		{Name: "x", Weight: 10, Min: ptr(-5), Max: ptr(5)},
	}}
	prev = -1.0
	for v := -10.0; v <= 10; v += 0.25 {
		cs := ScoreCategory(linear, schema.InputRecord{"x": v})
		assert.GreaterOrEqual(t, cs.SubScore, prev, "value %v", v)
		prev = cs.SubScore
	}
}

func TestClassify(t *testing.T) {
	mapping := scenarioConfig().BucketMapping

	tests := []struct {
		score    float64
		grade    string
		decision schema.Decision
	}{
		{100, "A", schema.Approve},
		{85, "A", schema.Approve},
		{84.99, "B", schema.Approve},
		{70, "B", schema.Approve},
		{69.5, "C", schema.Review},
		{55, "C", schema.Review},
		{54.5, "D", schema.Decline},
		{0, "D", schema.Decline},
	}
	for _, tt := range tests {
		c := Classify(tt.score, mapping)
		assert.Equal(t, tt.grade, c.Grade, "score %v", tt.score)
		assert.Equal(t, tt.decision, c.Decision, "score %v", tt.score)
		assert.False(t, c.Fallback)
	}

	below := Classify(-3, mapping)
	assert.Equal(t, "D", below.Grade)
	assert.True(t, below.Fallback)

	assert.Equal(t, schema.Classification{}, Classify(50, nil))
}
