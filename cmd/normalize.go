package cmd

import (
	"github.com/huangsam/scorecard/core"
	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/runstore"
	"github.com/spf13/cobra"
)

// normalizeCmd rescales weights.
var normalizeCmd = &cobra.Command{
	Use:   "normalize <scorecard>",
	Short: "Rescale category and variable weights so they sum correctly.",
	Long: `Print a copy of the scorecard with active category weights scaled to 100
and each category's variable weights scaled to the category weight.

The output keeps the source format (YAML or JSON) unless --output json is given.

Examples:
  scorecard normalize draft.yaml
  scorecard normalize draft.yaml --output-file retail.yaml`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteNormalize(rootCtx, cfg, runstore.Manager); err != nil {
			contract.LogFatal("Cannot normalize scorecard", err)
		}
	},
}
