package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huangsam/scorecard/core"
	"github.com/huangsam/scorecard/internal/contract"
	"github.com/huangsam/scorecard/internal/loader"
	"github.com/huangsam/scorecard/internal/records"
	"github.com/huangsam/scorecard/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.RunManager
}

// jsonResult renders v as indented JSON text content.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func (h *toolHandler) handleValidateScorecard(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	strict := request.GetBool("strict", h.baseCfg.Strict)

	if p := request.GetString("scorecard_path", ""); p != "" {
		result, err := core.ValidateFile(absPath(p), strict)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("validation failed: %v", err)), nil
		}
		return jsonResult(result)
	}

	doc := request.GetString("scorecard", "")
	if strings.TrimSpace(doc) == "" {
		return mcp.NewToolResultError("scorecard_path or scorecard is required"), nil
	}
	data := []byte(doc)
	card, err := loader.Parse(data, loader.DetectFormat("", data))
	if err != nil {
		var docErr *loader.DocumentError
		if errors.As(err, &docErr) {
			return jsonResult(schema.ValidationResult{IsValid: false, Errors: docErr.Problems})
		}
		return mcp.NewToolResultError(fmt.Sprintf("could not parse scorecard: %v", err)), nil
	}
	return jsonResult(core.ValidateConfiguration(card, core.ValidationOptions{Strict: strict}))
}

func (h *toolHandler) handleEvaluateRecord(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("scorecard_path", "")
	if path == "" {
		return mcp.NewToolResultError("scorecard_path is required"), nil
	}
	record, err := records.ParseRecord([]byte(request.GetString("record", "")))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid record: %v", err)), nil
	}
	limit := request.GetInt("reason_limit", h.baseCfg.ReasonLimit)
	if limit < 1 {
		return mcp.NewToolResultError("reason_limit must be at least 1"), nil
	}

	card, err := loader.Load(absPath(path))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not load scorecard: %v", err)), nil
	}
	engine, err := core.Compile(card, core.EngineOptions{Strict: h.baseCfg.Strict, ReasonLimit: limit})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := engine.Evaluate(record)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("evaluation failed: %v", err)), nil
	}
	return jsonResult(schema.EnrichResults([]*schema.ScoreResult{result})[0])
}

func (h *toolHandler) handleAggregateRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	cfg.ScorecardPath = request.GetString("scorecard_path", "")
	cfg.RecordsPath = request.GetString("records_path", "")
	if cfg.ScorecardPath == "" || cfg.RecordsPath == "" {
		return mcp.NewToolResultError("scorecard_path and records_path are required"), nil
	}
	cfg.ScorecardPath = absPath(cfg.ScorecardPath)
	cfg.RecordsPath = absPath(cfg.RecordsPath)
	if b := request.GetString("approved_buckets", ""); b != "" {
		cfg.ApprovedBuckets = strings.FieldsFunc(b, func(r rune) bool { return r == ',' || r == ' ' })
	}
	if p := request.GetInt("preview", -1); p >= 0 {
		cfg.Preview = p
	}

	output, _, err := core.GetBatchResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil && output == nil {
		return mcp.NewToolResultError(fmt.Sprintf("aggregation failed: %v", err)), nil
	}
	return jsonResult(output.Summary)
}

func (h *toolHandler) handleListScorecards(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root := request.GetString("root", ".")
	listings, err := core.ListScorecards(root, h.baseCfg.Excludes, h.baseCfg.Strict)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing failed: %v", err)), nil
	}
	return jsonResult(listings)
}
