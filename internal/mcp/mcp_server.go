// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/scorecard/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the Scorecard MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.RunManager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Scorecard Evaluation Server",
		version,
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: validate_scorecard ---
	s.AddTool(mcp.NewTool("validate_scorecard",
		mcp.WithDescription("Validate a scorecard document and report errors and warnings."),
		mcp.WithString("scorecard_path", mcp.Description("Path to a YAML or JSON scorecard file.")),
		mcp.WithString("scorecard", mcp.Description("Inline scorecard document (YAML or JSON). Used when scorecard_path is empty.")),
		mcp.WithBoolean("strict", mcp.Description("Treat weight mismatches and rule syntax problems as errors.")),
	), h.handleValidateScorecard)

	// --- 2. Tool: evaluate_record ---
	s.AddTool(mcp.NewTool("evaluate_record",
		mcp.WithDescription("Score one loan application against a scorecard and explain the result."),
		mcp.WithString("scorecard_path", mcp.Description("Path to a YAML or JSON scorecard file."), mcp.Required()),
		mcp.WithString("record", mcp.Description("The application as a JSON object, e.g. {\"credit_score\": 720}."), mcp.Required()),
		mcp.WithNumber("reason_limit", mcp.Description("Number of contributors listed in the reason codes.")),
	), h.handleEvaluateRecord)

	// --- 3. Tool: aggregate_records ---
	s.AddTool(mcp.NewTool("aggregate_records",
		mcp.WithDescription("Score a file of applications (CSV, JSON, JSON lines or Parquet) and summarize the distribution."),
		mcp.WithString("scorecard_path", mcp.Description("Path to a YAML or JSON scorecard file."), mcp.Required()),
		mcp.WithString("records_path", mcp.Description("Path to the records file."), mcp.Required()),
		mcp.WithString("approved_buckets", mcp.Description("Comma-separated grades counted as approved. Defaults to every grade but the worst.")),
		mcp.WithNumber("preview", mcp.Description("Number of results to include in the summary preview.")),
	), h.handleAggregateRecords)

	// --- 4. Tool: list_scorecards ---
	s.AddTool(mcp.NewTool("list_scorecards",
		mcp.WithDescription("Find scorecard documents under a directory and report whether each is valid."),
		mcp.WithString("root", mcp.Description("Directory to search (defaults to the current directory).")),
	), h.handleListScorecards)

	return s
}

// StartMCPServer starts the Scorecard MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.RunManager, version string) error {
	s := NewMCPServer(baseCfg, mgr, version)
	return server.ServeStdio(s)
}
