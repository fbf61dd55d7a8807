package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/schema"
	"github.com/olekukonko/tablewriter"
)

// WriteCheckResult outputs an approval gate outcome, dispatching based on the output format configured.
func WriteCheckResult(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON")
	case schema.CSVOut:
		header := []string{"index", "final_score", "bucket", "hard_decision", "reason_codes"}
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
				for _, f := range result.FailedRecords {
					rec := []string{strconv.Itoa(f.Index), fmtFloat(f.Score), f.Bucket, string(f.HardDecision), joinReasons(f.ReasonCodes)}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
				return nil
			})
		}, "Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("%w: check", ErrUnsupportedOutput)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCheckText(w, result, cfg, fmtFloat, intFmt, duration)
		}, "Wrote report")
	}
}

func writeCheckText(w io.Writer, r schema.CheckResult, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	verdict := heading(cfg, "✅", "PASS")
	if !r.Passed {
		verdict = heading(cfg, "❌", "FAIL")
	}
	if cfg.UseColors {
		if r.Passed {
			verdict = contract.ApproveColor.Sprint(verdict)
		} else {
			verdict = contract.DeclineColor.Sprint(verdict)
		}
	}

	fmt.Fprintf(w, "%s: approval rate %s%% (minimum %s%%) for %s\n",
		verdict, fmtFloat(r.ApprovalRate), fmtFloat(r.MinApprovalRate), r.Scorecard)
	fmt.Fprintf(w, "Records: "+intFmt+" total, "+intFmt+" evaluated, "+intFmt+" errors. Average score %s\n",
		r.TotalRecords, r.Evaluated, r.RecordErrors, fmtFloat(r.AverageScore))

	if len(r.BucketCounts) > 0 {
		var parts []string
		for _, grade := range slices.Sorted(maps.Keys(r.BucketCounts)) {
			marker := ""
			if slices.Contains(r.ApprovedBuckets, grade) {
				marker = "*"
			}
			parts = append(parts, fmt.Sprintf("%s%s="+intFmt, grade, marker, r.BucketCounts[grade]))
		}
		fmt.Fprintf(w, "Buckets (* approved): %v\n", parts)
	}

	if len(r.FailedRecords) > 0 {
		shown := r.FailedRecords
		if cfg.Preview > 0 && len(shown) > cfg.Preview {
			shown = shown[:cfg.Preview]
		}
		fmt.Fprintf(w, "\nNot approved (%d of %d shown):\n", len(shown), len(r.FailedRecords))
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Index", "Score", "Grade", "Reasons"})
		reasonWidth := GetMaxReasonWidth(cfg)
		var data [][]string
		for _, f := range shown {
			grade := f.Bucket
			if f.HardDecision != schema.NoDecision {
				grade += " (" + schema.GetPlainLabel(schema.NoDecision, f.HardDecision) + ")"
			}
			data = append(data, []string{
				strconv.Itoa(f.Index),
				fmtFloat(f.Score),
				grade,
				contract.TruncateText(joinReasons(f.ReasonCodes), reasonWidth),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Check completed in %v with %d workers\n", duration, cfg.Workers)
	return err
}
