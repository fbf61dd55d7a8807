package core

import (
	"context"

	"github.com/huangsam/scorecard/core/agg"
	"github.com/huangsam/scorecard/schema"
)

var _ agg.Evaluator = &Engine{}

// Aggregate compiles cfg and summarizes the evaluation of records. A
// configuration error is returned before any record is scored.
func Aggregate(ctx context.Context, cfg *schema.ScorecardConfig, records []schema.InputRecord, opts agg.Options) (*schema.DistributionSummary, error) {
	e, err := Compile(cfg, EngineOptions{})
	if err != nil {
		return nil, err
	}
	if opts.Scorecard == "" {
		opts.Scorecard = cfg.Name
	}
	return agg.Aggregate(ctx, e, records, opts)
}
