package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/outwriter"
	"github.com/huangsam/scorecard/schema"
)

// ErrCheckFailed is returned when a batch approves fewer records than required.
var ErrCheckFailed = errors.New("approval check failed")

// ExecuteCheck runs the check command for CI/CD gating.
// It evaluates a record file, compares the approval rate against the minimum,
// and returns ErrCheckFailed so the process exits non-zero when it falls short.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.RunManager) error {
	start := time.Now()

	result, err := GetCheckResult(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteCheck(*result, cfg, time.Since(start)); err != nil {
		return err
	}

	if !result.Passed {
		return fmt.Errorf("%w: %d of %d evaluated records not approved, approval rate %.2f%% below %.2f%%",
			ErrCheckFailed, len(result.FailedRecords), result.Evaluated, result.ApprovalRate, result.MinApprovalRate)
	}
	return nil
}

// GetCheckResult evaluates the batch and builds the check result. An
// interrupted batch is an error because a partial approval rate cannot gate.
func GetCheckResult(ctx context.Context, cfg *contract.Config, mgr contract.RunManager) (*schema.CheckResult, error) {
	b, err := runBatch(ctx, cfg, mgr)
	if err != nil {
		return nil, err
	}

	builder, err := NewCheckResultBuilder(b.Output(), b.Scorecard(), cfg.MinApprovalRate).ResolveThreshold()
	if err != nil {
		return nil, err
	}
	return builder.ComputeFailures().BuildResult().GetResult(), nil
}
