package core

import (
	"errors"
	"slices"

	"github.com/huangsam/scorecard/schema"
)

// ErrNoApprovalTarget is returned when neither --min-approval-rate nor the
// scorecard's metadata.targetApprovalRate gives the check a threshold.
var ErrNoApprovalTarget = errors.New("check needs --min-approval-rate or metadata.targetApprovalRate in the scorecard")

// CheckResultBuilder builds the check result using a builder pattern.
type CheckResultBuilder struct {
	output        *schema.BatchOutput
	card          *schema.ScorecardConfig
	minRate       *float64
	threshold     float64
	failedRecords []schema.CheckFailedRecord
	result        *schema.CheckResult
}

// NewCheckResultBuilder creates a new builder for check results. minRate
// overrides the scorecard's target approval rate when non-nil.
func NewCheckResultBuilder(output *schema.BatchOutput, card *schema.ScorecardConfig, minRate *float64) *CheckResultBuilder {
	return &CheckResultBuilder{
		output:  output,
		card:    card,
		minRate: minRate,
	}
}

// ResolveThreshold picks the flag value first and the scorecard target second.
func (b *CheckResultBuilder) ResolveThreshold() (*CheckResultBuilder, error) {
	switch {
	case b.minRate != nil:
		b.threshold = *b.minRate
	case b.card != nil && b.card.Metadata.TargetApprovalRate != nil:
		b.threshold = *b.card.Metadata.TargetApprovalRate
	default:
		return nil, ErrNoApprovalTarget
	}
	return b, nil
}

// ComputeFailures collects every evaluated record that was not approved,
// in input order.
func (b *CheckResultBuilder) ComputeFailures() *CheckResultBuilder {
	b.failedRecords = []schema.CheckFailedRecord{}
	if b.output == nil || b.output.Summary == nil {
		return b
	}
	approved := b.output.Summary.ApprovedBuckets
	for i, r := range b.output.Results {
		if r == nil {
			continue
		}
		if slices.Contains(approved, r.Bucket) && r.HardDecision != schema.Decline {
			continue
		}
		b.failedRecords = append(b.failedRecords, schema.CheckFailedRecord{
			Index:        i,
			Score:        r.FinalScore,
			Bucket:       r.Bucket,
			HardDecision: r.HardDecision,
			ReasonCodes:  r.ReasonCodes,
		})
	}
	return b
}

// BuildResult constructs the final CheckResult. An empty batch passes only
// when the threshold is zero.
func (b *CheckResultBuilder) BuildResult() *CheckResultBuilder {
	s := &schema.DistributionSummary{}
	if b.output != nil && b.output.Summary != nil {
		s = b.output.Summary
	}
	name := s.Scorecard
	if name == "" && b.card != nil {
		name = b.card.Name
	}
	b.result = &schema.CheckResult{
		Passed:          s.ApprovalRate >= b.threshold,
		Scorecard:       name,
		TotalRecords:    s.Total,
		Evaluated:       s.Evaluated,
		RecordErrors:    s.RecordErrors,
		ApprovalRate:    s.ApprovalRate,
		MinApprovalRate: b.threshold,
		ApprovedBuckets: s.ApprovedBuckets,
		AverageScore:    s.AverageScore,
		BucketCounts:    s.BucketCounts,
		FailedRecords:   b.failedRecords,
	}
	return b
}

// GetResult returns the built CheckResult.
func (b *CheckResultBuilder) GetResult() *schema.CheckResult {
	return b.result
}
