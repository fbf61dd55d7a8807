package outwriter

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/parquet"
	"github.com/huangsam/scorecard/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// batchJSON is the JSON document for a bulk evaluation.
type batchJSON struct {
	Summary *schema.DistributionSummary `json:"summary"`
	Results []schema.EnrichedResult     `json:"results"`
}

// WriteBatchOutput outputs a bulk evaluation, dispatching based on the output format configured.
func WriteBatchOutput(output *schema.BatchOutput, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, batchJSON{Summary: output.Summary, Results: schema.EnrichResults(output.Results)})
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchCSV(w, output, fmtFloat)
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeParquetScores(w, parquet.ConvertScoreResults(output.Results))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeBatchText(w, output.Summary, cfg, fmtFloat, intFmt, duration)
		}, "Wrote table")
	}
}

// writeBatchCSV writes one row per evaluated record and one per record error.
func writeBatchCSV(w io.Writer, output *schema.BatchOutput, fmtFloat func(float64) string) error {
	header := append(slices.Clone(scoreHeader), "error")
	errorsByIndex := make(map[int]string)
	if output.Summary != nil {
		for _, e := range output.Summary.Errors {
			errorsByIndex[e.Index] = e.Message
		}
	}

	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range output.Results {
			var rec []string
			switch {
			case r != nil:
				rec = []string{
					strconv.Itoa(i),
					fmtFloat(r.FinalScore),
					fmtFloat(r.WeightedScore),
					r.Bucket,
					string(r.Decision),
					string(r.HardDecision),
					schema.GetPlainLabel(r.Decision, r.HardDecision),
					joinReasons(r.ReasonCodes),
					"",
				}
			default:
				msg, ok := errorsByIndex[i]
				if !ok {
					continue // not evaluated
				}
				rec = []string{strconv.Itoa(i), "", "", "", "", "", "", "", msg}
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// writeBatchText renders the distribution summary as tables.
func writeBatchText(w io.Writer, s *schema.DistributionSummary, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	title := "Batch"
	if s.Scorecard != "" {
		title += " for " + s.Scorecard
	}
	if s.BatchID != "" {
		title += " [" + s.BatchID + "]"
	}
	fmt.Fprintln(w, heading(cfg, "📊", title))
	if s.Partial {
		fmt.Fprintln(w, heading(cfg, "⚠️ ", fmt.Sprintf("Partial result: %d records were not evaluated", s.NotEvaluated)))
	}

	if err := writeSummaryTable(w, s, fmtFloat, intFmt); err != nil {
		return err
	}

	if len(s.BucketCounts) > 0 {
		fmt.Fprintln(w)
		if err := writeBucketTable(w, s, fmtFloat, intFmt); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "Decisions: %s\n", formatDecisionCounts(s.DecisionCounts, intFmt))
	if len(s.HardDecisionCounts) > 0 {
		fmt.Fprintf(w, "Rule-forced: %s\n", formatDecisionCounts(s.HardDecisionCounts, intFmt))
	}
	if len(s.MissingFieldCounts) > 0 {
		fmt.Fprintf(w, "Missing fields: %s\n", formatMissingFields(s.MissingFieldCounts, intFmt))
	}

	if len(s.Preview) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading(cfg, "🔎", fmt.Sprintf("First %d results:", len(s.Preview))))
		if err := writePreviewTable(w, s.Preview, cfg, fmtFloat); err != nil {
			return err
		}
	}

	if len(s.Errors) > 0 {
		fmt.Fprintln(w)
		shown := s.Errors
		if cfg.Preview > 0 && len(shown) > cfg.Preview {
			shown = shown[:cfg.Preview]
		}
		fmt.Fprintln(w, heading(cfg, "❌", fmt.Sprintf("Record errors (%d):", s.RecordErrors)))
		for _, e := range shown {
			fmt.Fprintf(w, "  #%d: %s\n", e.Index, e.Message)
		}
	}

	_, err := fmt.Fprintf(w, "Evaluated %d of %d records in %v with %d workers. Run store: %s\n",
		s.Evaluated, s.Total, duration, cfg.Workers, cfg.Backend)
	return err
}

func writeSummaryTable(w io.Writer, s *schema.DistributionSummary, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Metric", "Value"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	data := [][]string{
		{"Total", fmt.Sprintf(intFmt, s.Total)},
		{"Evaluated", fmt.Sprintf(intFmt, s.Evaluated)},
		{"Record Errors", fmt.Sprintf(intFmt, s.RecordErrors)},
	}
	if s.NotEvaluated > 0 {
		data = append(data, []string{"Not Evaluated", fmt.Sprintf(intFmt, s.NotEvaluated)})
	}
	data = append(data,
		[]string{"Approval Rate", fmtFloat(s.ApprovalRate) + "%"},
		[]string{"Approved Buckets", strings.Join(s.ApprovedBuckets, ",")},
		[]string{"Average Score", fmtFloat(s.AverageScore)},
		[]string{"Min / Max", fmtFloat(s.MinScore) + " / " + fmtFloat(s.MaxScore)},
		[]string{"P25 / Median / P75", fmtFloat(s.P25) + " / " + fmtFloat(s.MedianScore) + " / " + fmtFloat(s.P75)},
		[]string{"Std Dev", fmtFloat(s.StdDev)},
	)
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeBucketTable(w io.Writer, s *schema.DistributionSummary, fmtFloat func(float64) string, intFmt string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Grade", "Count", "Share"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, grade := range slices.Sorted(maps.Keys(s.BucketCounts)) {
		count := s.BucketCounts[grade]
		share := 0.0
		if s.Evaluated > 0 {
			share = float64(count) / float64(s.Evaluated) * 100
		}
		data = append(data, []string{grade, fmt.Sprintf(intFmt, count), fmtFloat(share) + "%"})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writePreviewTable(w io.Writer, preview []schema.IndexedResult, cfg *contract.Config, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Index", "Score", "Grade", "Decision", "Reasons"})

	reasonWidth := GetMaxReasonWidth(cfg)
	var data [][]string
	for _, p := range preview {
		data = append(data, []string{
			strconv.Itoa(p.Index),
			fmtFloat(p.FinalScore),
			p.Bucket,
			labelFor(cfg, p.Decision, p.HardDecision),
			contract.TruncateText(joinReasons(p.ReasonCodes), reasonWidth),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// formatDecisionCounts renders counts in approve, review, decline order.
func formatDecisionCounts(counts map[schema.Decision]int, intFmt string) string {
	var parts []string
	for _, d := range []schema.Decision{schema.Approve, schema.Review, schema.Decline} {
		if n, ok := counts[d]; ok {
			parts = append(parts, fmt.Sprintf("%s="+intFmt, d, n))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// formatMissingFields lists the most frequently missing fields first.
func formatMissingFields(counts map[string]int, intFmt string) string {
	names := slices.Collect(maps.Keys(counts))
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(counts[b], counts[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s="+intFmt, name, counts[name])
	}
	return strings.Join(parts, ", ")
}
