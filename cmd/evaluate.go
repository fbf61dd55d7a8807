package cmd

import (
	"github.com/huangsam/scorecard/core"
	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/runstore"
	"github.com/spf13/cobra"
)

// evaluateCmd scores a single application.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate <scorecard> [record.json]",
	Short: "Score one application and explain the decision.",
	Long: `Evaluate a single applicant record against a scorecard.

Shows the final score, the grade bucket and decision, any hard rule that
forced the outcome, and the reason codes ranked by how much each variable
held the score back.

The record is a JSON object given as a file, "-" for stdin, or --record.

Examples:
  scorecard evaluate retail.yaml applicant.json
  scorecard evaluate retail.yaml --record '{"credit_score": 720, "income": 85000}'
  cat applicant.json | scorecard evaluate retail.yaml - --output json`,
	Args:    cobra.RangeArgs(1, 2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteEvaluate(rootCtx, cfg, runstore.Manager); err != nil {
			contract.LogFatal("Cannot evaluate record", err)
		}
	},
}
