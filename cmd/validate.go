package cmd

import (
	"errors"
	"os"

	"github.com/huangsam/scorecard/core"
	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/runstore"
	"github.com/spf13/cobra"
)

// validateCmd checks a scorecard document.
var validateCmd = &cobra.Command{
	Use:   "validate <scorecard>",
	Short: "Check a scorecard for structural and weighting errors.",
	Long: `Validate a YAML or JSON scorecard before it is used for decisions.

Errors make the scorecard unusable:
- Category weights that do not sum to 100
- Bands that overlap or leave gaps in the score range
- Missing or empty bucket mapping, unknown variable types

Warnings are reported but do not fail validation:
- Variable weights that do not match their category weight
- Rules whose condition cannot be parsed or references unknown fields

Use --strict to promote the warnings to errors.

Examples:
  scorecard validate retail.yaml
  scorecard validate retail.yaml --strict --output json`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteValidate(rootCtx, cfg, runstore.Manager); err != nil {
			if errors.Is(err, core.ErrInvalidScorecard) {
				os.Exit(1)
			}
			contract.LogFatal("Cannot validate scorecard", err)
		}
	},
}
