package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/scorecard/internal/contract"
	mcp_internal "github.com/huangsam/scorecard/internal/mcp"
	"github.com/huangsam/scorecard/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const retailCard = `
name: retail
categories:
  Credit:
    weight: 100
    variables:
      - name: credit_score
        weight: 100
        bands:
          - { max: 600, score: 0 }
          - { min: 600, score: 100 }
bucketMapping:
  A: { min: 50, max: 100 }
  D: { min: 0, max: 49 }
`

func newServer(t *testing.T) (*server.MCPServer, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "retail.yaml"), []byte(retailCard), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "applicants.csv"),
		[]byte("credit_score\n720\n550\n650\n"), 0o644))

	baseCfg := &contract.Config{
		Workers:     2,
		Output:      schema.TextOut,
		Precision:   2,
		ReasonLimit: 3,
		Preview:     1,
		Backend:     schema.NoneBackend,
	}
	// No run manager: tracking is skipped for tool calls in these tests.
	return mcp_internal.NewMCPServer(baseCfg, nil, "test"), dir
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s, dir := newServer(t)

	t.Run("validate_scorecard without input", func(t *testing.T) {
		res := callTool(t, s, "validate_scorecard", map[string]any{})
		assert.True(t, res.IsError, "The response should indicate an error state")
		assert.Contains(t, text(res), "scorecard_path or scorecard is required")
	})

	t.Run("evaluate_record missing scorecard", func(t *testing.T) {
		res := callTool(t, s, "evaluate_record", map[string]any{"record": `{"credit_score": 700}`})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "scorecard_path is required")
	})

	t.Run("evaluate_record bad record", func(t *testing.T) {
		res := callTool(t, s, "evaluate_record", map[string]any{
			"scorecard_path": filepath.Join(dir, "retail.yaml"),
			"record":         "not json",
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "invalid record")
	})

	t.Run("evaluate_record bad reason limit", func(t *testing.T) {
		res := callTool(t, s, "evaluate_record", map[string]any{
			"scorecard_path": filepath.Join(dir, "retail.yaml"),
			"record":         `{"credit_score": 700}`,
			"reason_limit":   0.0,
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "reason_limit must be at least 1")
	})

	t.Run("aggregate_records missing paths", func(t *testing.T) {
		res := callTool(t, s, "aggregate_records", map[string]any{"scorecard_path": "x.yaml"})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "scorecard_path and records_path are required")
	})

	t.Run("aggregate_records unreadable records", func(t *testing.T) {
		res := callTool(t, s, "aggregate_records", map[string]any{
			"scorecard_path": filepath.Join(dir, "retail.yaml"),
			"records_path":   filepath.Join(dir, "missing.csv"),
		})
		assert.True(t, res.IsError)
		assert.Contains(t, text(res), "aggregation failed")
	})
}

func TestMCPServerHandlers_Results(t *testing.T) {
	s, dir := newServer(t)

	t.Run("validate_scorecard inline", func(t *testing.T) {
		res := callTool(t, s, "validate_scorecard", map[string]any{"scorecard": retailCard})
		require.False(t, res.IsError, text(res))
		var result schema.ValidationResult
		require.NoError(t, json.Unmarshal([]byte(text(res)), &result))
		assert.True(t, result.IsValid)
	})

	t.Run("validate_scorecard unknown key", func(t *testing.T) {
		res := callTool(t, s, "validate_scorecard", map[string]any{"scorecard": retailCard + "bogus: 1\n"})
		require.False(t, res.IsError, text(res))
		var result schema.ValidationResult
		require.NoError(t, json.Unmarshal([]byte(text(res)), &result))
		assert.False(t, result.IsValid)
		assert.NotEmpty(t, result.Errors)
	})

	t.Run("evaluate_record", func(t *testing.T) {
		res := callTool(t, s, "evaluate_record", map[string]any{
			"scorecard_path": filepath.Join(dir, "retail.yaml"),
			"record":         `{"credit_score": 720}`,
		})
		require.False(t, res.IsError, text(res))
		var result map[string]any
		require.NoError(t, json.Unmarshal([]byte(text(res)), &result))
		assert.Equal(t, 100.0, result["finalScore"])
		assert.Equal(t, "A", result["bucket"])
	})

	t.Run("aggregate_records", func(t *testing.T) {
		res := callTool(t, s, "aggregate_records", map[string]any{
			"scorecard_path": filepath.Join(dir, "retail.yaml"),
			"records_path":   filepath.Join(dir, "applicants.csv"),
			"preview":        2.0,
		})
		require.False(t, res.IsError, text(res))
		var summary schema.DistributionSummary
		require.NoError(t, json.Unmarshal([]byte(text(res)), &summary))
		assert.Equal(t, 3, summary.Total)
		assert.Equal(t, 3, summary.Evaluated)
		assert.Equal(t, map[string]int{"A": 2, "D": 1}, summary.BucketCounts)
		assert.Len(t, summary.Preview, 2)
	})

	t.Run("list_scorecards", func(t *testing.T) {
		res := callTool(t, s, "list_scorecards", map[string]any{"root": dir})
		require.False(t, res.IsError, text(res))
		var listings []schema.ScorecardListing
		require.NoError(t, json.Unmarshal([]byte(text(res)), &listings))
		require.Len(t, listings, 1)
		assert.Equal(t, "retail", listings[0].Name)
		assert.True(t, listings[0].Valid)
	})
}
