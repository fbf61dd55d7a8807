// Package parquet provides the row types and writers for exporting scorecard
// runs and evaluation results to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/huangsam/scorecard/schema"
	"github.com/parquet-go/parquet-go"
)

// Run represents one batch evaluation run.
// This struct maps to the scorecard_runs database table.
type Run struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// BatchID is the caller-visible batch identifier
	BatchID string `parquet:"batch_id,snappy,dict"`

	// Scorecard is the name of the scorecard that was applied
	Scorecard string `parquet:"scorecard,snappy,dict"`

	// Version is the scorecard version
	Version string `parquet:"version,snappy,dict"`

	// StartTime is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	TotalRecords int32 `parquet:"total_records,snappy"`
	Evaluated    int32 `parquet:"evaluated,snappy"`
	RecordErrors int32 `parquet:"record_errors,snappy"`

	// ApprovalRate is a percentage of evaluated records (nullable)
	ApprovalRate *float64 `parquet:"approval_rate,optional,snappy"`

	AverageScore *float64 `parquet:"average_score,optional,snappy"`

	// ConfigParams contains the JSON-encoded run configuration (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Result represents one stored record result.
// This struct maps to the scorecard_results database table.
type Result struct {
	RunID        int64   `parquet:"run_id,snappy"`
	RecordIndex  int32   `parquet:"record_index,snappy"`
	FinalScore   float64 `parquet:"final_score,snappy"`
	Bucket       string  `parquet:"bucket,snappy,dict"`
	Decision     string  `parquet:"decision,snappy,dict"`
	HardDecision *string `parquet:"hard_decision,optional,snappy"`
	ReasonCodes  string  `parquet:"reason_codes,snappy"`
}

// Score is one evaluated record as written by the parquet output format.
type Score struct {
	Index         int32   `parquet:"index,snappy"`
	FinalScore    float64 `parquet:"final_score,snappy"`
	WeightedScore float64 `parquet:"weighted_score,snappy"`
	Bucket        string  `parquet:"bucket,snappy,dict"`
	Decision      string  `parquet:"decision,snappy,dict"`
	HardDecision  *string `parquet:"hard_decision,optional,snappy"`
	Label         string  `parquet:"label,snappy,dict"`
	ReasonCodes   string  `parquet:"reason_codes,snappy"`
}

// ReasonSeparator joins reason codes into a single column.
const ReasonSeparator = "; "

// Write writes rows of any row type to w.
func Write[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteFile creates outputPath and writes rows to it.
func WriteFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteRunsParquet writes runs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return WriteFile(data, outputPath)
}

// WriteResultsParquet writes stored results to a Parquet file.
func WriteResultsParquet(data []Result, outputPath string) error {
	return WriteFile(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, record := range records {
		result[i] = Run{
			RunID:         record.RunID,
			BatchID:       record.BatchID,
			Scorecard:     record.Scorecard,
			Version:       record.Version,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalRecords:  record.TotalRecords,
			Evaluated:     record.Evaluated,
			RecordErrors:  record.RecordErrors,
			ApprovalRate:  record.ApprovalRate,
			AverageScore:  record.AverageScore,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertResultRecords converts schema.ResultRecord to Result for Parquet export.
func ConvertResultRecords(records []schema.ResultRecord) []Result {
	result := make([]Result, len(records))
	for i, record := range records {
		result[i] = Result(record)
	}
	return result
}

// ConvertScoreResults flattens evaluation results. Nil results are skipped.
func ConvertScoreResults(results []*schema.ScoreResult) []Score {
	out := make([]Score, 0, len(results))
	for _, r := range schema.EnrichResults(results) {
		out = append(out, Score{
			Index:         int32(r.Index),
			FinalScore:    r.FinalScore,
			WeightedScore: r.WeightedScore,
			Bucket:        r.Bucket,
			Decision:      string(r.Decision),
			HardDecision:  optionalDecision(r.HardDecision),
			Label:         r.Label,
			ReasonCodes:   strings.Join(r.ReasonCodes, ReasonSeparator),
		})
	}
	return out
}

func optionalDecision(d schema.Decision) *string {
	if d == schema.NoDecision {
		return nil
	}
	s := string(d)
	return &s
}
