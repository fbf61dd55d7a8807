package core

import (
	"github.com/huangsam/scorecard/schema"
	"github.com/shopspring/decimal"
)

// NormalizeWeights returns a copy of cfg whose active category weights are
// scaled proportionally to sum to 100. Weights are rounded to two decimals
// and the rounding remainder goes to the largest category (the first one on
// a tie). Inactive categories are left alone.
func NormalizeWeights(cfg *schema.ScorecardConfig) *schema.ScorecardConfig {
	out := cloneConfig(cfg)

	var idx []int
	var weights []float64
	for i, cat := range out.Categories {
		if cat.Active() {
			idx = append(idx, i)
			weights = append(weights, cat.Weight)
		}
	}
	for k, w := range distribute(weights, schema.WeightTotal) {
		out.Categories[idx[k]].Weight = w
	}
	return out
}

// NormalizeVariableWeights returns a copy of cfg where, inside every active
// category, the variables' maximum points are rescaled to sum to the
// category weight with the same policy as NormalizeWeights. Band scores are
// scaled along with their variable.
func NormalizeVariableWeights(cfg *schema.ScorecardConfig) *schema.ScorecardConfig {
	out := cloneConfig(cfg)
	for ci := range out.Categories {
		cat := &out.Categories[ci]
		if !cat.Active() || len(cat.Variables) == 0 {
			continue
		}

		current := make([]float64, len(cat.Variables))
		for i, v := range cat.Variables {
			current[i] = v.MaxPoints()
		}
		target := distribute(current, cat.Weight)

		for i := range cat.Variables {
			rescaleVariable(&cat.Variables[i], current[i], target[i])
		}
	}
	return out
}

func rescaleVariable(v *schema.VariableConfig, from, to float64) {
	v.Weight = to
	if from == 0 || len(v.Bands) == 0 {
		return
	}
	factor := decimal.NewFromFloat(to).Div(decimal.NewFromFloat(from))
	for i := range v.Bands {
		if v.Bands[i].Score == from {
			v.Bands[i].Score = to
			continue
		}
		v.Bands[i].Score, _ = decimal.NewFromFloat(v.Bands[i].Score).Mul(factor).Round(schema.ScorePrecision).Float64()
	}
}

// distribute scales weights proportionally to total at two decimals. The
// remainder left by rounding is added to the largest weight. All-zero input
// is split evenly.
func distribute(weights []float64, total float64) []float64 {
	out := make([]float64, len(weights))
	if len(weights) == 0 {
		return out
	}

	target := decimal.NewFromFloat(total)
	sum := decimal.Zero
	for _, w := range weights {
		if w > 0 {
			sum = sum.Add(decimal.NewFromFloat(w))
		}
	}

	scaled := make([]decimal.Decimal, len(weights))
	assigned := decimal.Zero
	largest := 0
	for i, w := range weights {
		var d decimal.Decimal
		switch {
		case sum.IsZero():
			d = target.Div(decimal.NewFromInt(int64(len(weights))))
		case w > 0:
			d = decimal.NewFromFloat(w).Mul(target).Div(sum)
		default:
			d = decimal.Zero
		}
		scaled[i] = d.Round(schema.ScorePrecision)
		assigned = assigned.Add(scaled[i])
		if weights[i] > weights[largest] {
			largest = i
		}
	}
	scaled[largest] = scaled[largest].Add(target.Sub(assigned))

	for i, d := range scaled {
		out[i], _ = d.Float64()
	}
	return out
}

// cloneConfig deep-copies the parts of a config that normalization rewrites.
func cloneConfig(cfg *schema.ScorecardConfig) *schema.ScorecardConfig {
	out := *cfg
	out.Categories = make(schema.Categories, len(cfg.Categories))
	for i, cat := range cfg.Categories {
		c := cat
		c.Variables = make([]schema.VariableConfig, len(cat.Variables))
		for j, v := range cat.Variables {
			vc := v
			vc.Bands = append([]schema.VariableBand(nil), v.Bands...)
			vc.Aliases = append([]string(nil), v.Aliases...)
			c.Variables[j] = vc
		}
		out.Categories[i] = c
	}
	out.BucketMapping = make(map[string]schema.BandConfig, len(cfg.BucketMapping))
	for k, b := range cfg.BucketMapping {
		out.BucketMapping[k] = b
	}
	out.Rules = append([]schema.Rule(nil), cfg.Rules...)
	return &out
}
