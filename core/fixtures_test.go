package core

import "github.com/huangsam/scorecard/schema"

func ptr(f float64) *float64 { return &f }

func band(lo, hi *float64, score float64) schema.VariableBand {
	return schema.VariableBand{Min: lo, Max: hi, Score: score}
}

// scenarioConfig is the two-category reference scorecard: Credit (60) and
// Income (40) with A/B/C/D buckets.
func scenarioConfig() *schema.ScorecardConfig {
	return &schema.ScorecardConfig{
		Name:    "retail-loans",
		Version: "1",
		Categories: schema.Categories{
			{
				Name:   "Credit",
				Weight: 60,
				Variables: []schema.VariableConfig{{
					Name:   "credit_score",
					Weight: 60,
					Bands: []schema.VariableBand{
						band(nil, ptr(550), 0),
						band(ptr(550), ptr(650), 20),
						band(ptr(650), ptr(750), 40),
						band(ptr(750), nil, 60),
					},
				}},
			},
			{
				Name:   "Income",
				Weight: 40,
				Variables: []schema.VariableConfig{{
					Name:   "monthly_income",
					Weight: 40,
					Bands: []schema.VariableBand{
						band(nil, ptr(25000), 0),
						band(ptr(25000), ptr(50000), 15),
						band(ptr(50000), ptr(100000), 30),
						band(ptr(100000), nil, 40),
					},
				}},
			},
		},
		BucketMapping: map[string]schema.BandConfig{
			"A": {Min: 85, Max: 100, Description: "Prime"},
			"B": {Min: 70, Max: 84, Description: "Near prime"},
			"C": {Min: 55, Max: 69, Description: "Subprime", Decision: schema.Review},
			"D": {Min: 0, Max: 54, Description: "Decline"},
		},
	}
}
