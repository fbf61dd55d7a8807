// Package agg has the bulk aggregation logic that evaluates many records and
// summarizes their score distribution.
package agg

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sort"
	"sync"

	"github.com/huangsam/scorecard/schema"
)

// Evaluator scores single records. *core.Engine implements it.
type Evaluator interface {
	Evaluate(record schema.InputRecord) (*schema.ScoreResult, error)
	Grades() []schema.Grade
}

// Options controls a bulk run.
type Options struct {
	Workers         int      // defaults to GOMAXPROCS
	ApprovedBuckets []string // empty means every grade except the worst
	Preview         int      // number of results, by input index, kept in the summary
	BatchID         string
	Scorecard       string
}

// partial is one worker's running totals. Workers never share a partial, so
// no locking is needed until the merge.
type partial struct {
	evaluated    int
	bucketCounts map[string]int
	decisions    map[schema.Decision]int
	hard         map[schema.Decision]int
	missing      map[string]int
	approved     int
	sum          float64
	errors       []schema.RecordError
}

func newPartial() *partial {
	return &partial{
		bucketCounts: make(map[string]int),
		decisions:    make(map[schema.Decision]int),
		hard:         make(map[schema.Decision]int),
		missing:      make(map[string]int),
	}
}

// Run evaluates every record and returns the summary plus index-aligned
// results. When ctx is cancelled, workers stop between records and Run
// returns the partial output together with ctx.Err().
func Run(ctx context.Context, ev Evaluator, records []schema.InputRecord, opts Options) (*schema.BatchOutput, error) {
	approved := approvedSet(ev.Grades(), opts.ApprovedBuckets)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = max(min(workers, len(records)), 1)

	results := make([]*schema.ScoreResult, len(records))
	partials := make([]*partial, workers)
	chunk := (len(records) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := range workers {
		p := newPartial()
		partials[w] = p
		lo := min(w*chunk, len(records))
		hi := min(lo+chunk, len(records))
		wg.Go(func() {
			for i := lo; i < hi; i++ {
				if ctx.Err() != nil {
					return
				}
				evaluateOne(ev, i, records[i], approved, p, results)
			}
		})
	}
	wg.Wait()

	summary := merge(partials, len(records))
	summary.BatchID = opts.BatchID
	summary.Scorecard = opts.Scorecard
	summary.ApprovedBuckets = sortedKeys(approved)
	fillStats(summary, results)
	summary.Preview = preview(results, opts.Preview)

	out := &schema.BatchOutput{Summary: summary, Results: results}
	if summary.NotEvaluated > 0 {
		summary.Partial = true
		return out, ctx.Err()
	}
	return out, nil
}

// Aggregate is Run without the per-record results.
func Aggregate(ctx context.Context, ev Evaluator, records []schema.InputRecord, opts Options) (*schema.DistributionSummary, error) {
	out, err := Run(ctx, ev, records, opts)
	if out == nil {
		return nil, err
	}
	return out.Summary, err
}

func evaluateOne(ev Evaluator, i int, record schema.InputRecord, approved map[string]struct{}, p *partial, results []*schema.ScoreResult) {
	res, err := safeEvaluate(ev, record)
	if err != nil {
		p.errors = append(p.errors, schema.RecordError{Index: i, Message: err.Error()})
		return
	}
	results[i] = res
	p.evaluated++
	p.bucketCounts[res.Bucket]++
	p.decisions[res.Decision]++
	if res.HardDecision != schema.NoDecision {
		p.hard[res.HardDecision]++
	}
	for _, c := range res.Contributors {
		if c.Issue == schema.MissingIssue {
			p.missing[c.Variable]++
		}
	}
	if _, ok := approved[res.Bucket]; ok && res.HardDecision != schema.Decline {
		p.approved++
	}
	p.sum += res.FinalScore
}

// safeEvaluate turns a panic inside one evaluation into a record error so a
// single bad record cannot take down the batch.
func safeEvaluate(ev Evaluator, record schema.InputRecord) (res *schema.ScoreResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("evaluation panicked: %v", r)
		}
	}()
	return ev.Evaluate(record)
}

func merge(partials []*partial, total int) *schema.DistributionSummary {
	s := &schema.DistributionSummary{
		Total:              total,
		BucketCounts:       make(map[string]int),
		DecisionCounts:     make(map[schema.Decision]int),
		HardDecisionCounts: make(map[schema.Decision]int),
		MissingFieldCounts: make(map[string]int),
	}
	approved := 0
	sum := 0.0
	for _, p := range partials {
		s.Evaluated += p.evaluated
		s.RecordErrors += len(p.errors)
		s.Errors = append(s.Errors, p.errors...)
		approved += p.approved
		sum += p.sum
		for k, v := range p.bucketCounts {
			s.BucketCounts[k] += v
		}
		for k, v := range p.decisions {
			s.DecisionCounts[k] += v
		}
		for k, v := range p.hard {
			s.HardDecisionCounts[k] += v
		}
		for k, v := range p.missing {
			s.MissingFieldCounts[k] += v
		}
	}
	sort.Slice(s.Errors, func(i, j int) bool { return s.Errors[i].Index < s.Errors[j].Index })
	s.NotEvaluated = total - s.Evaluated - s.RecordErrors
	if s.Evaluated > 0 {
		s.ApprovalRate = roundTo(float64(approved)/float64(s.Evaluated)*100, 2)
		s.AverageScore = roundTo(sum/float64(s.Evaluated), 2)
	}
	return s
}

// approvedSet returns the configured approved buckets, or every grade but
// the worst when none are configured.
func approvedSet(grades []schema.Grade, configured []string) map[string]struct{} {
	set := make(map[string]struct{})
	if len(configured) > 0 {
		for _, b := range configured {
			set[b] = struct{}{}
		}
		return set
	}
	for i, g := range grades {
		if i < len(grades)-1 {
			set[g.Label] = struct{}{}
		}
	}
	return set
}

func preview(results []*schema.ScoreResult, n int) []schema.IndexedResult {
	if n <= 0 {
		return nil
	}
	out := make([]schema.IndexedResult, 0, n)
	for i, r := range results {
		if len(out) == n {
			break
		}
		if r != nil {
			out = append(out, schema.IndexedResult{Index: i, ScoreResult: r})
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
