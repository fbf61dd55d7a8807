package schema

import "time"

// RunRecord represents a row from the scorecard_runs table.
type RunRecord struct {
	RunID         int64
	BatchID       string
	Scorecard     string
	Version       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalRecords  int32
	Evaluated     int32
	RecordErrors  int32
	ApprovalRate  *float64
	AverageScore  *float64
	ConfigParams  *string
}

// ResultRecord represents a row from the scorecard_results table.
type ResultRecord struct {
	RunID        int64
	RecordIndex  int32
	FinalScore   float64
	Bucket       string
	Decision     string
	HardDecision *string
	ReasonCodes  string // joined with "; "
}
