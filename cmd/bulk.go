package cmd

import (
	"github.com/huangsam/scorecard/core"
	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/runstore"
	"github.com/spf13/cobra"
)

// bulkCmd evaluates a file of applications.
var bulkCmd = &cobra.Command{
	Use:   "bulk <scorecard> <records>",
	Short: "Score a batch of applications and summarize the distribution.",
	Long: `Evaluate every record in a CSV, JSON array, JSON Lines or Parquet file.

Prints the bucket distribution, approval rate, score statistics, the most
frequent missing fields and the records that could not be evaluated. A
malformed record is reported by index and never stops the batch.

Each run is tracked in the run store (see 'scorecard runs') unless
--backend none is given.

Examples:
  scorecard bulk retail.yaml applicants.csv
  scorecard bulk retail.yaml applicants.jsonl --approved-buckets A,B --workers 8
  scorecard bulk retail.yaml applicants.csv --output parquet --output-file scores.parquet
  scorecard bulk retail.yaml applicants.csv --metrics-file /var/lib/node_exporter/scorecard.prom`,
	Args:    cobra.ExactArgs(2),
	PreRunE: trackedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteBulk(rootCtx, cfg, runstore.Manager); err != nil {
			contract.LogFatal("Cannot run bulk evaluation", err)
		}
	},
}
