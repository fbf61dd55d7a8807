package schema

// Contributor describes what one variable added to a category sub-score.
type Contributor struct {
	Category  string    `json:"category"`
	Variable  string    `json:"variable"`
	Value     Value     `json:"value"`
	Points    float64   `json:"points"`
	MaxPoints float64   `json:"maxPoints"`
	Band      string    `json:"band,omitempty"`
	Issue     IssueKind `json:"issue,omitempty"`
}

// CategoryScore is the output of scoring one category.
type CategoryScore struct {
	Category     string        `json:"category"`
	Weight       float64       `json:"weight"`
	SubScore     float64       `json:"subScore"`
	Contributors []Contributor `json:"contributors"`
}

// TriggeredRule is a rule whose condition matched a record.
type TriggeredRule struct {
	ID          string   `json:"id"`
	Description string   `json:"description,omitempty"`
	Points      int      `json:"points"`
	Decision    Decision `json:"decision,omitempty"`
	Applied     bool     `json:"applied"` // false when a prior hard decline froze the score
}

// RuleOutcome is what the rule engine returns for one record.
type RuleOutcome struct {
	AdjustedScore float64         `json:"adjustedScore"`
	Triggered     []TriggeredRule `json:"triggered"`
	HardDecision  Decision        `json:"hardDecision,omitempty"`
}

// Classification is the grade a score maps to.
type Classification struct {
	Grade       string   `json:"grade"`
	Description string   `json:"description,omitempty"`
	Decision    Decision `json:"decision"`
	Fallback    bool     `json:"fallback,omitempty"` // score fell below every band
}

// ScoreResult is the output of evaluating one record.
type ScoreResult struct {
	FinalScore        float64            `json:"finalScore"`
	WeightedScore     float64            `json:"weightedScore"`
	Bucket            string             `json:"bucket"`
	Description       string             `json:"description,omitempty"`
	Decision          Decision           `json:"decision"`
	HardDecision      Decision           `json:"hardDecision,omitempty"`
	ReasonCodes       []string           `json:"reasonCodes"`
	CategoryBreakdown map[string]float64 `json:"categoryBreakdown"`
	Contributors      []Contributor      `json:"contributors"`
	TriggeredRules    []TriggeredRule    `json:"triggeredRules,omitempty"`
	Warnings          []string           `json:"warnings,omitempty"`
}

// Approved reports whether the result's decision is approve.
func (r *ScoreResult) Approved() bool {
	return r.Decision == Approve
}

// ValidationResult is the structured output of the configuration validator.
type ValidationResult struct {
	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings,omitempty"`
}

// RecordError describes a record that could not be evaluated at all.
type RecordError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// DistributionSummary summarizes the evaluation of a batch.
type DistributionSummary struct {
	BatchID            string              `json:"batchId,omitempty"`
	Scorecard          string              `json:"scorecard,omitempty"`
	Total              int                 `json:"total"`
	Evaluated          int                 `json:"evaluated"`
	RecordErrors       int                 `json:"recordErrors"`
	NotEvaluated       int                 `json:"notEvaluated"`
	Partial            bool                `json:"partial"`
	BucketCounts       map[string]int      `json:"bucketCounts"`
	DecisionCounts     map[Decision]int    `json:"decisionCounts"`
	HardDecisionCounts map[Decision]int    `json:"hardDecisionCounts,omitempty"`
	MissingFieldCounts map[string]int      `json:"missingFieldCounts,omitempty"`
	ApprovedBuckets    []string            `json:"approvedBuckets"`
	ApprovalRate       float64             `json:"approvalRate"`
	AverageScore       float64             `json:"averageScore"`
	MinScore           float64             `json:"minScore"`
	MaxScore           float64             `json:"maxScore"`
	StdDev             float64             `json:"stdDev"`
	MedianScore        float64             `json:"medianScore"`
	P25                float64             `json:"p25"`
	P75                float64             `json:"p75"`
	Preview            []IndexedResult     `json:"preview,omitempty"`
	Errors             []RecordError       `json:"errors,omitempty"`
}

// IndexedResult pairs a result with the index of its input record.
type IndexedResult struct {
	Index int `json:"index"`
	*ScoreResult
}

// BatchOutput is a summary plus the index-aligned results of a batch.
// Results[i] is nil when record i errored or was not evaluated.
type BatchOutput struct {
	Summary *DistributionSummary
	Results []*ScoreResult
}
