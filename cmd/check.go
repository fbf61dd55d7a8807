package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/scorecard/core"
	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/runstore"
	"github.com/spf13/cobra"
)

// checkCmd is the CI/CD gate on approval rate.
var checkCmd = &cobra.Command{
	Use:   "check <scorecard> <records>",
	Short: "Fail when a batch approves fewer applications than required.",
	Long: `Evaluate a batch and exit non-zero when the approval rate falls below
--min-approval-rate, or the scorecard's metadata.targetApprovalRate when the
flag is not given.

Use this in CI to catch a scorecard change that would quietly decline more
applicants than the business expects. Records that were not approved are
listed with their reason codes.

Examples:
  scorecard check retail.yaml regression.csv --min-approval-rate 60
  scorecard check retail.yaml regression.csv --approved-buckets A,B --output json`,
	Args:    cobra.ExactArgs(2),
	PreRunE: trackedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCheck(rootCtx, cfg, runstore.Manager); err != nil {
			if errors.Is(err, core.ErrCheckFailed) {
				_, _ = fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			contract.LogFatal("Cannot run check", err)
		}
	},
}
