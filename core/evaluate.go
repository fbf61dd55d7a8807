package core

import (
	"fmt"
	"slices"

	"github.com/huangsam/scorecard/core/rule"
	"github.com/huangsam/scorecard/schema"
)

// EngineOptions tunes compilation and evaluation.
type EngineOptions struct {
	Strict      bool // see ValidationOptions.Strict
	ReasonLimit int  // contributors listed in reason codes; 0 means the default
}

// Engine is a validated scorecard with its rules parsed and its strategies
// chosen. It is immutable after Compile and safe for concurrent use.
type Engine struct {
	cfg        *schema.ScorecardConfig
	categories []compiledCategory
	rules      *rule.Set
	classifier classifier
	bounds     rule.Bounds
	scale      float64
	limit      int
	validation schema.ValidationResult
}

// Compile validates cfg and prepares it for evaluation. A scorecard that
// fails the hard checks yields a *ConfigurationError and no engine.
func Compile(cfg *schema.ScorecardConfig, opts EngineOptions) (*Engine, error) {
	result := ValidateConfiguration(cfg, ValidationOptions{Strict: opts.Strict})
	if !result.IsValid {
		return nil, &ConfigurationError{Errors: result.Errors}
	}

	limit := opts.ReasonLimit
	if limit <= 0 {
		limit = schema.DefaultReasonLimit
	}

	e := &Engine{
		cfg:        cfg,
		rules:      rule.Compile(cfg.Rules),
		classifier: newClassifier(cfg.BucketMapping),
		scale:      cfg.Scale(),
		limit:      limit,
		validation: result,
	}
	for _, cat := range cfg.ActiveCategories() {
		e.categories = append(e.categories, compileCategory(cat))
	}
	e.bounds = rule.Bounds{
		DeclineCeiling: e.classifier.worst().Max,
		ApproveFloor:   e.classifier.best().Min,
	}
	return e, nil
}

// Config returns the scorecard the engine was compiled from.
func (e *Engine) Config() *schema.ScorecardConfig { return e.cfg }

// Validation returns the validator output from Compile, including warnings.
func (e *Engine) Validation() schema.ValidationResult { return e.validation }

// Grades returns the bucket table ordered by descending min.
func (e *Engine) Grades() []schema.Grade { return e.classifier.grades }

// Evaluate scores one record. Missing or unusable fields degrade to zero
// points and are explained in the result; the only error is
// ErrMalformedRecord for a record that is nil or holds non-scalar values.
func (e *Engine) Evaluate(record schema.InputRecord) (*schema.ScoreResult, error) {
	if err := checkRecord(record); err != nil {
		return nil, err
	}

	result := &schema.ScoreResult{
		CategoryBreakdown: make(map[string]float64, len(e.categories)),
	}

	weighted := 0.0
	for _, cc := range e.categories {
		cs := cc.score(record)
		weighted += cs.SubScore
		result.CategoryBreakdown[cs.Category] = roundScore(cs.SubScore)
		result.Contributors = append(result.Contributors, cs.Contributors...)
	}
	scaled := weighted * e.scale / schema.WeightTotal
	result.WeightedScore = roundScore(scaled)

	lookup := func(field string) schema.Value { return resolveField(record, field) }
	outcome := e.rules.Apply(lookup, scaled, e.bounds)
	result.TriggeredRules = outcome.Triggered
	result.HardDecision = outcome.HardDecision
	result.FinalScore = roundScore(min(max(outcome.AdjustedScore, 0), e.scale))

	var class schema.Classification
	switch outcome.HardDecision {
	case schema.Decline:
		class = e.classifier.toClassification(e.classifier.worst(), false)
		class.Decision = schema.Decline
	case schema.Approve:
		class = e.classifier.toClassification(e.classifier.best(), false)
		class.Decision = schema.Approve
	default:
		class = e.classifier.classify(result.FinalScore)
	}
	result.Bucket = class.Grade
	result.Description = class.Description
	result.Decision = class.Decision

	result.Warnings = append(result.Warnings, e.rules.Warnings()...)
	if class.Fallback {
		result.Warnings = append(result.Warnings, fallbackWarning(result.FinalScore, class))
	}

	result.ReasonCodes = buildReasonCodes(result.Contributors, result.TriggeredRules, e.limit)
	return result, nil
}

// Evaluate compiles cfg with default options and scores one record. Callers
// scoring many records should Compile once and reuse the Engine.
func Evaluate(cfg *schema.ScorecardConfig, record schema.InputRecord) (*schema.ScoreResult, error) {
	e, err := Compile(cfg, EngineOptions{})
	if err != nil {
		return nil, err
	}
	return e.Evaluate(record)
}

func checkRecord(record schema.InputRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrMalformedRecord)
	}
	var bad []string
	for k, v := range record {
		if !isScalar(v) {
			bad = append(bad, k)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	slices.Sort(bad)
	return fmt.Errorf("%w: field %q holds a %T", ErrMalformedRecord, bad[0], record[bad[0]])
}
