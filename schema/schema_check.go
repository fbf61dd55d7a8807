package schema

// CheckResult holds the results of an approval-rate gate.
type CheckResult struct {
	Passed          bool                `json:"passed"`
	Scorecard       string              `json:"scorecard"`
	TotalRecords    int                 `json:"totalRecords"`
	Evaluated       int                 `json:"evaluated"`
	RecordErrors    int                 `json:"recordErrors"`
	ApprovalRate    float64             `json:"approvalRate"`
	MinApprovalRate float64             `json:"minApprovalRate"`
	ApprovedBuckets []string            `json:"approvedBuckets"`
	AverageScore    float64             `json:"averageScore"`
	BucketCounts    map[string]int      `json:"bucketCounts"`
	FailedRecords   []CheckFailedRecord `json:"failedRecords"` // records that landed outside the approved buckets
}

// CheckFailedRecord represents a record that was not approved.
type CheckFailedRecord struct {
	Index        int      `json:"index"`
	Score        float64  `json:"score"`
	Bucket       string   `json:"bucket"`
	HardDecision Decision `json:"hardDecision,omitempty"`
	ReasonCodes  []string `json:"reasonCodes"`
}
