package cmd

import (
	"github.com/huangsam/scorecard/core"
	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/runstore"
	"github.com/spf13/cobra"
)

// listCmd discovers scorecards in a directory tree.
var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List the scorecards found under a directory.",
	Long: `Find every YAML and JSON scorecard under a directory (default ".") and
print its name, version, size and whether it validates.

Files that are not scorecards are skipped. Use --exclude with glob patterns
such as 'archive/**' to leave folders out.

Examples:
  scorecard list
  scorecard list ./policies --exclude 'drafts/**' --output csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteList(rootCtx, cfg, runstore.Manager); err != nil {
			contract.LogFatal("Cannot list scorecards", err)
		}
	},
}
