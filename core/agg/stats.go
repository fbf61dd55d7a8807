package agg

import (
	"math"
	"slices"

	"github.com/huangsam/scorecard/schema"
)

// fillStats computes the descriptive statistics over evaluated scores.
func fillStats(s *schema.DistributionSummary, results []*schema.ScoreResult) {
	scores := make([]float64, 0, len(results))
	for _, r := range results {
		if r != nil {
			scores = append(scores, r.FinalScore)
		}
	}
	if len(scores) == 0 {
		return
	}
	slices.Sort(scores)

	s.MinScore = scores[0]
	s.MaxScore = scores[len(scores)-1]
	s.StdDev = roundTo(computeStddev(scores, computeMean(scores)), 2)
	s.MedianScore = roundTo(computePercentile(scores, 0.50), 2)
	s.P25 = roundTo(computePercentile(scores, 0.25), 2)
	s.P75 = roundTo(computePercentile(scores, 0.75), 2)
}

// computeMean calculates the arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates the sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computePercentile uses linear interpolation over a sorted slice.
// p is a fraction (0.25 = 25th percentile).
func computePercentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
