package agg

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/scorecard/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	mean := computeMean(values)
	assert.Equal(t, 5.0, mean)
	assert.InDelta(t, 2.138, computeStddev(values, mean), 0.001)
	assert.Equal(t, 0.0, computeStddev([]float64{3}, 3))
	assert.Equal(t, 0.0, computeMean(nil))

	tests := []struct {
		name     string
		p        float64
		expected float64
	}{
		{"Min", 0, 2},
		{"P25", 0.25, 4},
		{"Median", 0.5, 4.5},
		{"P75", 0.75, 5.5},
		{"Max", 1, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, computePercentile(values, tt.p), 1e-9)
		})
	}
	assert.Equal(t, 0.0, computePercentile(nil, 0.5))
	assert.Equal(t, 7.0, computePercentile([]float64{7}, 0.9))
}

// stubEvaluator scores a record by its "v" field and panics on "boom".
type stubEvaluator struct{}

func (stubEvaluator) Evaluate(record schema.InputRecord) (*schema.ScoreResult, error) {
	if record == nil {
		return nil, errors.New("nil record")
	}
	if _, ok := record["boom"]; ok {
		panic("boom")
	}
	v, _ := record["v"].(float64)
	bucket := "low"
	if v >= 50 {
		bucket = "high"
	}
	return &schema.ScoreResult{FinalScore: v, Bucket: bucket, Decision: schema.Approve}, nil
}

func (stubEvaluator) Grades() []schema.Grade {
	return []schema.Grade{
		{Label: "high", BandConfig: schema.BandConfig{Min: 50, Max: 100}},
		{Label: "low", BandConfig: schema.BandConfig{Min: 0, Max: 49}},
	}
}

func TestRunRecoversPanics(t *testing.T) {
	records := []schema.InputRecord{{"v": 80.0}, {"boom": true}, {"v": 10.0}, nil}
	out, err := Run(context.Background(), stubEvaluator{}, records, Options{Workers: 2})
	require.NoError(t, err)

	s := out.Summary
	assert.Equal(t, 2, s.Evaluated)
	assert.Equal(t, 2, s.RecordErrors)
	assert.Contains(t, s.Errors[0].Message, "panicked")
	assert.Equal(t, map[string]int{"high": 1, "low": 1}, s.BucketCounts)
	assert.Equal(t, 45.0, s.AverageScore)
	assert.Equal(t, []string{"high"}, s.ApprovedBuckets)
}
