package cmd

import (
	"github.com/huangsam/scorecard/internal/mcp"
	"github.com/huangsam/scorecard/internal/runstore"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Scorecard MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents validate scorecards and evaluate applications via standard tools.`,
	// Tool handlers suppress the text headers so stdout stays clean for the protocol.
	PreRunE: trackedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, runstore.Manager, version)
	},
}
