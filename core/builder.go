package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/scorecard/core/agg"
	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/loader"
	"github.com/huangsam/scorecard/internal/observability"
	"github.com/huangsam/scorecard/internal/parquet"
	"github.com/huangsam/scorecard/internal/records"
	"github.com/huangsam/scorecard/schema"
)

// BatchBuilder runs a bulk evaluation one step at a time: load the scorecard,
// load the records, evaluate, then persist and publish the outcome.
type BatchBuilder struct {
	ctx     context.Context
	cfg     *contract.Config
	mgr     contract.RunManager
	card    *schema.ScorecardConfig
	engine  *Engine
	records []schema.InputRecord
	batchID string
	runID   int64
	start   time.Time
	elapsed time.Duration
	output  *schema.BatchOutput
}

// NewBatchBuilder is the starting point for a bulk evaluation.
func NewBatchBuilder(ctx context.Context, cfg *contract.Config, mgr contract.RunManager) *BatchBuilder {
	batchID := batchIDFromContext(ctx)
	if batchID == "" {
		batchID = uuid.NewString()
	}
	return &BatchBuilder{
		ctx:     ctx,
		cfg:     cfg,
		mgr:     mgr,
		batchID: batchID,
		start:   time.Now(),
	}
}

// LoadScorecard reads and compiles the scorecard at cfg.ScorecardPath.
func (b *BatchBuilder) LoadScorecard() (*BatchBuilder, error) {
	card, err := loader.Load(b.cfg.ScorecardPath)
	if err != nil {
		return nil, err
	}
	return b.WithScorecard(card)
}

// WithScorecard compiles an already decoded scorecard.
func (b *BatchBuilder) WithScorecard(card *schema.ScorecardConfig) (*BatchBuilder, error) {
	engine, err := Compile(card, EngineOptions{Strict: b.cfg.Strict, ReasonLimit: b.cfg.ReasonLimit})
	if err != nil {
		return nil, err
	}
	b.card = card
	b.engine = engine
	return b, nil
}

// LoadRecords reads the records at cfg.RecordsPath.
func (b *BatchBuilder) LoadRecords() (*BatchBuilder, error) {
	if b.cfg.RecordsPath == "" {
		return nil, errors.New("a records file is required. Example: scorecard bulk card.yaml applicants.csv")
	}
	recs, err := records.ReadFile(b.cfg.RecordsPath)
	if err != nil {
		return nil, err
	}
	return b.WithRecords(recs), nil
}

// WithRecords uses records that were decoded elsewhere.
func (b *BatchBuilder) WithRecords(recs []schema.InputRecord) *BatchBuilder {
	b.records = recs
	return b
}

// BeginTracking opens a run in the run store when one is configured.
// Tracking failures are logged and never stop the batch.
func (b *BatchBuilder) BeginTracking() *BatchBuilder {
	store := b.store()
	if store == nil {
		return b
	}
	configParams := map[string]any{
		"records_path":     b.cfg.RecordsPath,
		"total_records":    len(b.records),
		"workers":          b.cfg.Workers,
		"strict":           b.cfg.Strict,
		"reason_limit":     b.cfg.ReasonLimit,
		"approved_buckets": strings.Join(b.cfg.ApprovedBuckets, ","),
	}
	runID, err := store.BeginRun(b.start, b.batchID, b.card.Name, b.card.Version, configParams)
	if err != nil {
		contract.LogWarn("Run tracking initialization failed", err)
		return b
	}
	b.runID = runID
	return b
}

// Evaluate scores every record. A cancelled context still leaves the partial
// output in place; the cancellation is returned so callers can report it.
func (b *BatchBuilder) Evaluate() (*BatchBuilder, error) {
	if b.engine == nil {
		return nil, errors.New("no scorecard loaded")
	}
	output, err := agg.Run(b.ctx, b.engine, b.records, agg.Options{
		Workers:         b.cfg.Workers,
		ApprovedBuckets: b.cfg.ApprovedBuckets,
		Preview:         b.cfg.Preview,
		BatchID:         b.batchID,
		Scorecard:       b.card.Name,
	})
	b.elapsed = time.Since(b.start)
	if output == nil {
		return nil, err
	}
	b.output = output
	return b, err
}

// RecordResults stores per-record outcomes and closes the run.
func (b *BatchBuilder) RecordResults() *BatchBuilder {
	store := b.store()
	if store == nil || b.runID == 0 || b.output == nil {
		return b
	}
	if err := store.RecordResults(b.runID, toResultRecords(b.runID, b.output.Results)); err != nil {
		contract.LogWarn(fmt.Sprintf("Run tracking failed to record results for run %d", b.runID), err)
	}
	if err := store.EndRun(b.runID, time.Now(), b.output.Summary); err != nil {
		contract.LogWarn(fmt.Sprintf("Run tracking failed to finalize run %d", b.runID), err)
	}
	return b
}

// PublishMetrics writes the batch metrics textfile when cfg.MetricsFile is set.
func (b *BatchBuilder) PublishMetrics() *BatchBuilder {
	if b.cfg.MetricsFile == "" || b.output == nil {
		return b
	}
	metrics := observability.NewMetrics(observability.DefaultNamespace, b.card.Name, b.card.Scale())
	metrics.ObserveBatch(b.output, b.elapsed)
	if err := metrics.WriteTextfile(b.cfg.MetricsFile); err != nil {
		contract.LogWarn("Metrics export failed", err)
	}
	return b
}

// Output returns the batch output, nil until Evaluate ran.
func (b *BatchBuilder) Output() *schema.BatchOutput { return b.output }

// Scorecard returns the loaded scorecard.
func (b *BatchBuilder) Scorecard() *schema.ScorecardConfig { return b.card }

// RunID returns the tracked run ID, or 0 when tracking is off.
func (b *BatchBuilder) RunID() int64 { return b.runID }

// BatchID returns the ID shared by the summary and the run store.
func (b *BatchBuilder) BatchID() string { return b.batchID }

func (b *BatchBuilder) store() contract.RunStore {
	if b.mgr == nil {
		return nil
	}
	return b.mgr.GetRunStore()
}

// toResultRecords flattens evaluated results into run-store rows. Record
// errors have no result and are skipped.
func toResultRecords(runID int64, results []*schema.ScoreResult) []schema.ResultRecord {
	rows := make([]schema.ResultRecord, 0, len(results))
	for i, r := range results {
		if r == nil {
			continue
		}
		var hard *string
		if r.HardDecision != schema.NoDecision {
			h := string(r.HardDecision)
			hard = &h
		}
		rows = append(rows, schema.ResultRecord{
			RunID:        runID,
			RecordIndex:  int32(i),
			FinalScore:   r.FinalScore,
			Bucket:       r.Bucket,
			Decision:     string(r.Decision),
			HardDecision: hard,
			ReasonCodes:  strings.Join(r.ReasonCodes, parquet.ReasonSeparator),
		})
	}
	return rows
}
