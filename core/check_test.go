package core

import (
	"context"
	"testing"

	"github.com/huangsam/scorecard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteCheck(t *testing.T) {
	tests := []struct {
		name    string
		minRate *float64
		passed  bool
	}{
		{name: "Metadata Target Passes", passed: true},
		{name: "Flag Equal To Rate Passes", minRate: ptr(50), passed: true},
		{name: "Flag Above Rate Fails", minRate: ptr(60)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := cliConfig(t, schema.JSONOut)
			cfg.RecordsPath = testdata(t, "applicants.jsonl")
			cfg.MinApprovalRate = tt.minRate

			err := ExecuteCheck(context.Background(), cfg, nil)
			var result schema.CheckResult
			readJSONFile(t, cfg.OutputFile, &result)
			assert.Equal(t, tt.passed, result.Passed)
			assert.Equal(t, 50.0, result.ApprovalRate)
			require.Len(t, result.FailedRecords, 2)
			assert.Equal(t, []int{2, 3}, []int{result.FailedRecords[0].Index, result.FailedRecords[1].Index})

			if tt.passed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrCheckFailed)
				assert.ErrorContains(t, err, "2 of 4 evaluated records not approved")
			}
		})
	}
}

func TestGetCheckResultCancelled(t *testing.T) {
	cfg := cliConfig(t, schema.TextOut)
	cfg.RecordsPath = testdata(t, "applicants.jsonl")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := GetCheckResult(ctx, cfg, nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}
