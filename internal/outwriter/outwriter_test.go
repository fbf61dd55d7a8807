package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/parquet"
	"github.com/huangsam/scorecard/schema"
	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(output schema.OutputMode, outputFile string) *contract.Config {
	return &contract.Config{
		Output:     output,
		OutputFile: outputFile,
		Precision:  2,
		Workers:    2,
		Preview:    5,
		Width:      120,
		Backend:    schema.NoneBackend,
	}
}

func sampleCard() *schema.ScorecardConfig {
	return &schema.ScorecardConfig{
		Name:    "retail",
		Version: "2024.1",
		Categories: schema.Categories{
			{Name: "Credit", Weight: 60},
			{Name: "Income", Weight: 40},
		},
	}
}

func sampleResult() *schema.ScoreResult {
	return &schema.ScoreResult{
		FinalScore:        72.5,
		WeightedScore:     77.5,
		Bucket:            "B",
		Description:       "Good",
		Decision:          schema.Approve,
		ReasonCodes:       []string{"Income: monthly_income = 2500 scored 10 of 40"},
		CategoryBreakdown: map[string]float64{"Credit": 90, "Income": 50},
		Contributors: []schema.Contributor{
			{Category: "Credit", Variable: "credit_score", Value: schema.NumberValue(760), Points: 54, MaxPoints: 60, Band: "760+"},
			{Category: "Income", Variable: "monthly_income", Value: schema.NotFound, Points: 0, MaxPoints: 40, Issue: schema.MissingIssue},
		},
		TriggeredRules: []schema.TriggeredRule{{ID: "thin-file", Points: -5, Applied: true}},
		Warnings:       []string{"rule \"x\" skipped"},
	}
}

func sampleBatch() *schema.BatchOutput {
	declined := &schema.ScoreResult{FinalScore: 20, WeightedScore: 20, Bucket: "D", Decision: schema.Decline, HardDecision: schema.Decline, ReasonCodes: []string{"Credit"}}
	return &schema.BatchOutput{
		Summary: &schema.DistributionSummary{
			BatchID:            "batch-1",
			Scorecard:          "retail",
			Total:              4,
			Evaluated:          2,
			RecordErrors:       1,
			NotEvaluated:       1,
			Partial:            true,
			BucketCounts:       map[string]int{"B": 1, "D": 1},
			DecisionCounts:     map[schema.Decision]int{schema.Approve: 1, schema.Decline: 1},
			HardDecisionCounts: map[schema.Decision]int{schema.Decline: 1},
			MissingFieldCounts: map[string]int{"monthly_income": 1, "age": 2},
			ApprovedBuckets:    []string{"A", "B"},
			ApprovalRate:       50,
			AverageScore:       46.25,
			Preview:            []schema.IndexedResult{{Index: 0, ScoreResult: sampleResult()}},
			Errors:             []schema.RecordError{{Index: 1, Message: "malformed record"}},
		},
		Results: []*schema.ScoreResult{sampleResult(), nil, declined, nil},
	}
}

func TestWriteResultText(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(schema.TextOut, "")
	fmtFloat, _ := createFormatters(cfg.Precision)
	require.NoError(t, writeResultText(&buf, sampleResult(), sampleCard(), cfg, fmtFloat, time.Second))

	out := buf.String()
	assert.Contains(t, out, "Scorecard: retail (2024.1)")
	assert.Contains(t, out, "Score: 72.50 (weighted 77.50)  Grade: B  Decision: Approve")
	assert.Contains(t, out, "credit_score")
	assert.Contains(t, out, "<missing>")
	assert.Contains(t, out, "thin-file")
	assert.Contains(t, out, "1. Income: monthly_income = 2500 scored 10 of 40")
	assert.Contains(t, out, "Warning: rule \"x\" skipped")
	assert.Less(t, strings.Index(out, "Credit"), strings.Index(out, "Income"))
}

func TestWriteScoreResultFormats(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "result.json")
		require.NoError(t, WriteScoreResult(sampleResult(), sampleCard(), testConfig(schema.JSONOut, path), time.Second))
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "Approve", decoded["label"])
		assert.Equal(t, 72.5, decoded["finalScore"])
		assert.Equal(t, "B", decoded["bucket"])
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "result.csv")
		require.NoError(t, WriteScoreResult(sampleResult(), sampleCard(), testConfig(schema.CSVOut, path), time.Second))
		rows := readCSV(t, path)
		require.Len(t, rows, 2)
		assert.Equal(t, scoreHeader, rows[0])
		assert.Equal(t, []string{"0", "72.50", "77.50", "B", "approve", "", "Approve", "Income: monthly_income = 2500 scored 10 of 40"}, rows[1])
	})

	t.Run("parquet", func(t *testing.T) {
		path := filepath.Join(dir, "result.parquet")
		require.NoError(t, WriteScoreResult(sampleResult(), sampleCard(), testConfig(schema.ParquetOut, path), time.Second))
		rows, err := pq.ReadFile[parquet.Score](path)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "B", rows[0].Bucket)
	})
}

func TestWriteBatchText(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(schema.TextOut, "")
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	batch := sampleBatch()
	require.NoError(t, writeBatchText(&buf, batch.Summary, cfg, fmtFloat, intFmt, time.Second))

	out := buf.String()
	assert.Contains(t, out, "Batch for retail [batch-1]")
	assert.Contains(t, out, "Partial result: 1 records were not evaluated")
	assert.Contains(t, out, "50.00%")
	assert.Contains(t, out, "Decisions: approve=1, decline=1")
	assert.Contains(t, out, "Rule-forced: decline=1")
	assert.Contains(t, out, "Missing fields: age=2, monthly_income=1")
	assert.Contains(t, out, "#1: malformed record")
	assert.Contains(t, out, "Evaluated 2 of 4 records")
}

func TestWriteBatchCSV(t *testing.T) {
	var buf bytes.Buffer
	fmtFloat, _ := createFormatters(2)
	require.NoError(t, writeBatchCSV(&buf, sampleBatch(), fmtFloat))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4, "header, two results and one error; the unevaluated record is skipped")
	assert.Equal(t, "error", rows[0][len(rows[0])-1])
	assert.Equal(t, "0", rows[1][0])
	assert.Equal(t, []string{"1", "", "", "", "", "", "", "", "malformed record"}, rows[2])
	assert.Equal(t, "Auto-Decline", rows[3][6])
}

func TestWriteBatchJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")
	require.NoError(t, WriteBatchOutput(sampleBatch(), testConfig(schema.JSONOut, path), time.Second))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded struct {
		Summary schema.DistributionSummary `json:"summary"`
		Results []map[string]any           `json:"results"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "batch-1", decoded.Summary.BatchID)
	require.Len(t, decoded.Results, 2)
	assert.Equal(t, float64(2), decoded.Results[1]["index"])
}

func TestWriteValidation(t *testing.T) {
	result := schema.ValidationResult{IsValid: false, Errors: []string{"category weights sum to 90"}, Warnings: []string{"rule r1 references unknown field"}}

	var buf bytes.Buffer
	require.NoError(t, writeValidationText(&buf, "card.yaml", result, testConfig(schema.TextOut, "")))
	assert.Contains(t, buf.String(), "card.yaml: invalid")
	assert.Contains(t, buf.String(), "error: category weights sum to 90")
	assert.Contains(t, buf.String(), "1 errors, 1 warnings")

	path := filepath.Join(t.TempDir(), "v.csv")
	require.NoError(t, WriteValidationResult("card.yaml", result, testConfig(schema.CSVOut, path)))
	rows := readCSV(t, path)
	assert.Equal(t, [][]string{
		{"path", "severity", "message"},
		{"card.yaml", "error", "category weights sum to 90"},
		{"card.yaml", "warning", "rule r1 references unknown field"},
	}, rows)

	err := WriteValidationResult("card.yaml", result, testConfig(schema.ParquetOut, "x.parquet"))
	assert.ErrorIs(t, err, ErrUnsupportedOutput)
}

func TestWriteListing(t *testing.T) {
	listings := []schema.ScorecardListing{
		{Path: "cards/retail.yaml", Name: "retail", Version: "1", Categories: 2, Variables: 5, Rules: 1, ScoreScale: 100, Valid: true},
		{Path: "cards/broken.yaml", Valid: false, Problem: "unknown key bogus"},
	}
	var buf bytes.Buffer
	require.NoError(t, writeListingTable(&buf, listings, testConfig(schema.TextOut, "")))
	assert.Contains(t, buf.String(), "cards/retail.yaml")
	assert.Contains(t, buf.String(), "unknown key bogus")
	assert.Contains(t, buf.String(), "Found 2 scorecards (1 valid)")

	path := filepath.Join(t.TempDir(), "list.csv")
	require.NoError(t, WriteScorecardListings(listings, testConfig(schema.CSVOut, path)))
	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "false", rows[2][7])
}

func TestWriteCheck(t *testing.T) {
	result := schema.CheckResult{
		Passed:          false,
		Scorecard:       "retail",
		TotalRecords:    10,
		Evaluated:       9,
		RecordErrors:    1,
		ApprovalRate:    33.33,
		MinApprovalRate: 40,
		ApprovedBuckets: []string{"A"},
		BucketCounts:    map[string]int{"A": 3, "C": 6},
		FailedRecords: []schema.CheckFailedRecord{
			{Index: 2, Score: 20, Bucket: "C", HardDecision: schema.Decline, ReasonCodes: []string{"Credit"}},
		},
	}
	var buf bytes.Buffer
	cfg := testConfig(schema.TextOut, "")
	fmtFloat, intFmt := createFormatters(2)
	require.NoError(t, writeCheckText(&buf, result, cfg, fmtFloat, intFmt, time.Second))
	out := buf.String()
	assert.Contains(t, out, "FAIL: approval rate 33.33% (minimum 40.00%) for retail")
	assert.Contains(t, out, "A*=3")
	assert.Contains(t, out, "C (Auto-Decline)")

	path := filepath.Join(t.TempDir(), "check.json")
	require.NoError(t, WriteCheckResult(result, testConfig(schema.JSONOut, path), time.Second))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"passed": false`)
	assert.Contains(t, string(data), `"minApprovalRate": 40`)
}

func TestGetMaxReasonWidth(t *testing.T) {
	tests := []struct {
		width    int
		expected int
	}{
		{width: 50, expected: minReasonWidth},
		{width: 100, expected: 55},
		{width: 400, expected: maxReasonWidth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetMaxReasonWidth(&contract.Config{Width: tt.width}))
	}
}

func TestLabelFor(t *testing.T) {
	cfg := &contract.Config{}
	assert.Equal(t, "Review", labelFor(cfg, schema.Review, schema.NoDecision))
	assert.Equal(t, "Auto-Approve", labelFor(cfg, schema.Decline, schema.Approve))
}

func TestHeading(t *testing.T) {
	assert.Equal(t, "Title", heading(&contract.Config{}, "📋", "Title"))
	assert.Equal(t, "📋 Title", heading(&contract.Config{UseEmojis: true}, "📋", "Title"))
}

func TestOutWriterDelegates(t *testing.T) {
	ow := NewOutWriter()
	dir := t.TempDir()
	require.NoError(t, ow.WriteResult(sampleResult(), sampleCard(), testConfig(schema.TextOut, filepath.Join(dir, "r.txt")), time.Second))
	require.NoError(t, ow.WriteBatch(sampleBatch(), testConfig(schema.TextOut, filepath.Join(dir, "b.txt")), time.Second))
	require.NoError(t, ow.WriteValidation("x", schema.ValidationResult{IsValid: true}, testConfig(schema.JSONOut, filepath.Join(dir, "v.json"))))
	require.NoError(t, ow.WriteListing(nil, testConfig(schema.JSONOut, filepath.Join(dir, "l.json"))))
	require.NoError(t, ow.WriteCheck(schema.CheckResult{Passed: true}, testConfig(schema.TextOut, filepath.Join(dir, "c.txt")), time.Second))

	data, err := os.ReadFile(filepath.Join(dir, "c.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "PASS"))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}
