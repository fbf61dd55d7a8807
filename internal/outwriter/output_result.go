package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/parquet"
	"github.com/huangsam/scorecard/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// scoreHeader is the flat column layout shared by CSV result rows.
var scoreHeader = []string{"index", "final_score", "weighted_score", "bucket", "decision", "hard_decision", "label", "reason_codes"}

// WriteScoreResult outputs one evaluation, dispatching based on the output format configured.
func WriteScoreResult(result *schema.ScoreResult, card *schema.ScorecardConfig, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	results := []*schema.ScoreResult{result}

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, schema.EnrichResults(results)[0])
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, scoreHeader, func(cw *csv.Writer) error {
				return writeScoreRows(cw, results, fmtFloat)
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeParquetScores(w, parquet.ConvertScoreResults(results))
		}, "Wrote Parquet")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultText(w, result, card, cfg, fmtFloat, duration)
		}, "Wrote table")
	}
}

// writeScoreRows writes one flat row per non-nil result.
func writeScoreRows(w *csv.Writer, results []*schema.ScoreResult, fmtFloat func(float64) string) error {
	for _, r := range schema.EnrichResults(results) {
		rec := []string{
			strconv.Itoa(r.Index),
			fmtFloat(r.FinalScore),
			fmtFloat(r.WeightedScore),
			r.Bucket,
			string(r.Decision),
			string(r.HardDecision),
			r.Label,
			joinReasons(r.ReasonCodes),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	return nil
}

// writeResultText renders the score line followed by contributor, category,
// rule and reason sections.
func writeResultText(w io.Writer, r *schema.ScoreResult, card *schema.ScorecardConfig, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if card != nil {
		title := card.Name
		if card.Version != "" {
			title += " (" + card.Version + ")"
		}
		fmt.Fprintln(w, heading(cfg, "📋", "Scorecard: "+title))
	}
	fmt.Fprintf(w, "Score: %s (weighted %s)  Grade: %s  Decision: %s\n",
		fmtFloat(r.FinalScore), fmtFloat(r.WeightedScore), r.Bucket, labelFor(cfg, r.Decision, r.HardDecision))
	if r.Description != "" {
		fmt.Fprintf(w, "Grade Description: %s\n", r.Description)
	}

	if len(r.Contributors) > 0 {
		fmt.Fprintln(w)
		if err := writeContributorTable(w, r.Contributors, fmtFloat); err != nil {
			return err
		}
	}

	if len(r.CategoryBreakdown) > 0 {
		fmt.Fprintln(w)
		if err := writeBreakdownTable(w, r.CategoryBreakdown, card, fmtFloat); err != nil {
			return err
		}
	}

	if len(r.TriggeredRules) > 0 {
		fmt.Fprintln(w)
		if err := writeRuleTable(w, r.TriggeredRules); err != nil {
			return err
		}
	}

	if len(r.ReasonCodes) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, heading(cfg, "🔎", "Reason Codes:"))
		for i, reason := range r.ReasonCodes {
			fmt.Fprintf(w, "  %d. %s\n", i+1, reason)
		}
	}

	for _, warning := range r.Warnings {
		fmt.Fprintln(w, heading(cfg, "⚠️ ", "Warning: "+warning))
	}

	_, err := fmt.Fprintf(w, "Evaluated in %v\n", duration)
	return err
}

func writeContributorTable(w io.Writer, contributors []schema.Contributor, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Category", "Variable", "Value", "Points", "Max", "Band", "Issue"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	var data [][]string
	for _, c := range contributors {
		data = append(data, []string{
			c.Category,
			c.Variable,
			c.Value.String(),
			fmtFloat(c.Points),
			fmtFloat(c.MaxPoints),
			c.Band,
			string(c.Issue),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeBreakdownTable lists categories in document order when the scorecard
// is known and alphabetically otherwise.
func writeBreakdownTable(w io.Writer, breakdown map[string]float64, card *schema.ScorecardConfig, fmtFloat func(float64) string) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Category", "Weight", "Sub-Score"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var names []string
	weights := make(map[string]float64)
	if card != nil {
		for _, c := range card.ActiveCategories() {
			if _, ok := breakdown[c.Name]; ok {
				names = append(names, c.Name)
				weights[c.Name] = c.Weight
			}
		}
	}
	if len(names) != len(breakdown) {
		names = names[:0]
		for name := range breakdown {
			names = append(names, name)
		}
		slices.Sort(names)
	}

	var data [][]string
	for _, name := range names {
		weight := "-"
		if wt, ok := weights[name]; ok {
			weight = fmtFloat(wt)
		}
		data = append(data, []string{name, weight, fmtFloat(breakdown[name])})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeRuleTable(w io.Writer, rules []schema.TriggeredRule) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rule", "Description", "Points", "Decision", "Applied"})

	var data [][]string
	for _, r := range rules {
		data = append(data, []string{
			r.ID,
			r.Description,
			strconv.Itoa(r.Points),
			string(r.Decision),
			strconv.FormatBool(r.Applied),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
