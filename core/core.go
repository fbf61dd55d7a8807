// Package core has core logic for validating scorecards, scoring records and
// aggregating batches, plus the executors the CLI and MCP server call.
package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/loader"
	"github.com/huangsam/scorecard/internal/outwriter"
	"github.com/huangsam/scorecard/internal/records"
	"github.com/huangsam/scorecard/schema"
)

// ExecutorFunc defines the function signature for executing the CLI commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.RunManager) error

// ErrInvalidScorecard is returned by ExecuteValidate after printing the
// findings of a scorecard that fails the hard checks.
var ErrInvalidScorecard = errors.New("scorecard is invalid")

// ExecuteValidate checks the scorecard at cfg.ScorecardPath and prints the findings.
func ExecuteValidate(_ context.Context, cfg *contract.Config, _ contract.RunManager) error {
	result, err := ValidateFile(cfg.ScorecardPath, cfg.Strict)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteValidation(cfg.ScorecardPath, result, cfg); err != nil {
		return err
	}
	if !result.IsValid {
		return ErrInvalidScorecard
	}
	return nil
}

// ValidateFile loads and validates a scorecard. Document shape problems are
// reported as validation errors; only I/O failures return an error.
func ValidateFile(path string, strict bool) (schema.ValidationResult, error) {
	card, err := loader.Load(path)
	if err != nil {
		var docErr *loader.DocumentError
		if errors.As(err, &docErr) {
			return schema.ValidationResult{IsValid: false, Errors: docErr.Problems}, nil
		}
		return schema.ValidationResult{}, err
	}
	return ValidateConfiguration(card, ValidationOptions{Strict: strict}), nil
}

// ExecuteEvaluate scores a single record and prints the explanation.
func ExecuteEvaluate(ctx context.Context, cfg *contract.Config, _ contract.RunManager) error {
	start := time.Now()
	card, err := loader.Load(cfg.ScorecardPath)
	if err != nil {
		return err
	}
	engine, err := Compile(card, EngineOptions{Strict: cfg.Strict, ReasonLimit: cfg.ReasonLimit})
	if err != nil {
		return err
	}
	record, err := loadRecord(cfg)
	if err != nil {
		return err
	}
	if showHeader(ctx, cfg) {
		logEvaluateHeader(card, displayPath(cfg.RecordsPath))
	}

	result, err := engine.Evaluate(record)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteResult(result, card, cfg, time.Since(start))
}

// loadRecord reads the inline --record JSON or the single-object file given
// as the second positional argument.
func loadRecord(cfg *contract.Config) (schema.InputRecord, error) {
	if cfg.RecordJSON != "" {
		return records.ParseRecord([]byte(cfg.RecordJSON))
	}
	if cfg.RecordsPath == "" {
		return nil, errors.New("a record is required. Pass a JSON file or --record '{\"credit_score\": 720}'")
	}

	var data []byte
	var err error
	if cfg.RecordsPath == records.Stdin {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(cfg.RecordsPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return records.ParseRecord(bytes.TrimSpace(data))
}

// ExecuteBulk evaluates a record file, prints the distribution summary, and
// persists the run when a backend is configured.
func ExecuteBulk(ctx context.Context, cfg *contract.Config, mgr contract.RunManager) error {
	start := time.Now()
	b, err := runBatch(ctx, cfg, mgr)
	if b == nil {
		return err
	}
	if werr := outwriter.NewOutWriter().WriteBatch(b.Output(), cfg, time.Since(start)); werr != nil {
		return werr
	}
	return err
}

// GetBatchResults runs a bulk evaluation without printing it.
func GetBatchResults(ctx context.Context, cfg *contract.Config, mgr contract.RunManager) (*schema.BatchOutput, *schema.ScorecardConfig, error) {
	b, err := runBatch(ctx, cfg, mgr)
	if b == nil {
		return nil, nil, err
	}
	return b.Output(), b.Scorecard(), err
}

// runBatch drives the BatchBuilder. On cancellation it still returns the
// builder holding the partial output, together with the context error.
func runBatch(ctx context.Context, cfg *contract.Config, mgr contract.RunManager) (*BatchBuilder, error) {
	b, err := NewBatchBuilder(ctx, cfg, mgr).LoadScorecard()
	if err != nil {
		return nil, err
	}
	if _, err := b.LoadRecords(); err != nil {
		return nil, err
	}
	if showHeader(ctx, cfg) {
		logBatchHeader(b.Scorecard(), cfg, b.BatchID(), len(b.records))
	}

	b.BeginTracking()
	_, evalErr := b.Evaluate()
	if b.Output() == nil {
		return nil, evalErr
	}
	b.RecordResults().PublishMetrics()
	if evalErr != nil {
		return b, fmt.Errorf("batch interrupted after %d of %d records: %w",
			b.Output().Summary.Evaluated+b.Output().Summary.RecordErrors, b.Output().Summary.Total, evalErr)
	}
	return b, nil
}

// ExecuteNormalize rescales category and variable weights and prints the
// rewritten scorecard in its source format, or JSON with --output json.
func ExecuteNormalize(_ context.Context, cfg *contract.Config, _ contract.RunManager) error {
	card, err := loader.Load(cfg.ScorecardPath)
	if err != nil {
		return err
	}

	var format loader.Format
	switch cfg.Output {
	case schema.JSONOut:
		format = loader.JSON
	case schema.TextOut:
		format = loader.DetectFormat(cfg.ScorecardPath, nil)
	default:
		return fmt.Errorf("%w: normalize", outwriter.ErrUnsupportedOutput)
	}

	data, err := loader.Marshal(NormalizeVariableWeights(NormalizeWeights(card)), format)
	if err != nil {
		return err
	}

	file, err := contract.SelectOutputFile(cfg.OutputFile)
	if err != nil {
		return err
	}
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}
	_, err = file.Write(data)
	return err
}

// ExecuteList discovers scorecards under cfg.ScorecardPath (default ".") and
// prints a one-line summary for each.
func ExecuteList(_ context.Context, cfg *contract.Config, _ contract.RunManager) error {
	root := cfg.ScorecardPath
	if root == "" {
		root = "."
	}
	listings, err := ListScorecards(root, cfg.Excludes, cfg.Strict)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteListing(listings, cfg)
}

// ListScorecards loads every scorecard document under root. A document that
// fails to load or validate is listed with its first problem.
func ListScorecards(root string, excludes []string, strict bool) ([]schema.ScorecardListing, error) {
	paths, err := loader.Discover(root, excludes)
	if err != nil {
		return nil, err
	}
	absRoot, _ := filepath.Abs(root)

	listings := make([]schema.ScorecardListing, 0, len(paths))
	for _, path := range paths {
		display := path
		if rel, err := filepath.Rel(absRoot, path); err == nil && rel != "." {
			display = rel
		}
		listings = append(listings, describeScorecard(path, display, strict))
	}
	return listings, nil
}

func describeScorecard(path, display string, strict bool) schema.ScorecardListing {
	listing := schema.ScorecardListing{Path: display}
	card, err := loader.Load(path)
	if err != nil {
		var docErr *loader.DocumentError
		if errors.As(err, &docErr) && len(docErr.Problems) > 0 {
			listing.Problem = docErr.Problems[0]
		} else {
			listing.Problem = err.Error()
		}
		return listing
	}

	listing.Name = card.Name
	listing.Version = card.Version
	listing.Categories = len(card.Categories)
	listing.Rules = len(card.Rules)
	listing.ScoreScale = card.Scale()
	for _, cat := range card.Categories {
		listing.Variables += len(cat.Variables)
	}

	result := ValidateConfiguration(card, ValidationOptions{Strict: strict})
	listing.Valid = result.IsValid
	if !result.IsValid && len(result.Errors) > 0 {
		listing.Problem = result.Errors[0]
	}
	return listing
}
