package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/promptgraveyard/graveyard/core"
	"github.com/promptgraveyard/graveyard/internal/contract"
	"github.com/promptgraveyard/graveyard/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	store   contract.RecordStore
	manager contract.LedgerManager
}

// revivalService wires the service the revival tools share.
func (h *toolHandler) revivalService() *core.RevivalService {
	return core.NewRevivalService(h.store, h.manager.GetLedgerStore(), contract.SystemClock{})
}

func (h *toolHandler) handleQueryGraveyard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if s := request.GetString("severity", ""); s != "" {
		cfg.Severity = schema.Severity(strings.ToLower(s))
	}
	if z := request.GetString("is_zombie", ""); z != "" {
		zombie, err := contract.ParseBoolString(z)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid is_zombie value: %v", err)), nil
		}
		cfg.IsZombie = &zombie
	}
	if p := request.GetString("provider", ""); p != "" {
		cfg.Provider = p
	}
	if v := request.GetFloat("min_score", -1); v >= 0 {
		cfg.MinScore = &v
	}
	if v := request.GetFloat("max_score", -1); v >= 0 {
		cfg.MaxScore = &v
	}
	if s := request.GetString("sort_by", ""); s != "" {
		cfg.SortBy = schema.SortField(strings.ToLower(s))
	}
	if o := request.GetString("sort_order", ""); o != "" {
		cfg.SortOrder = schema.SortOrder(strings.ToLower(o))
	}
	if p := request.GetInt("page", 0); p > 0 {
		cfg.Page = p
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.Limit = l
	}

	if err := contract.RevalidateQuery(cfg); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid query parameters: %v", err)), nil
	}

	records, err := h.store.GetAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	page := core.QueryRecords(records, cfg.QueryFilter(), cfg.QueryOptions())

	jsonData, _ := json.MarshalIndent(page, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetPromptRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recordID := request.GetString("record_id", "")
	if recordID == "" {
		return mcp.NewToolResultError("record_id is required"), nil
	}

	record, err := h.store.GetByID(ctx, recordID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("record lookup failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(record, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGraveyardStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	records, err := h.store.GetAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
	}
	stats := core.BuildGraveyardStats(records, time.Now())

	jsonData, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleAttemptRevival(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recordID := request.GetString("record_id", "")
	if recordID == "" {
		return mcp.NewToolResultError("record_id is required"), nil
	}
	index := request.GetInt("suggestion_index", 0)
	if index < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("suggestion_index cannot be negative (received %d)", index)), nil
	}
	feedback := request.GetString("feedback", "")

	result, err := h.revivalService().AttemptRevival(ctx, recordID, index, feedback)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("revival failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRevivalHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recordID := request.GetString("record_id", "")

	attempts, err := h.revivalService().GetRevivalHistory(ctx, recordID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("history lookup failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(attempts, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleRevivalStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.revivalService().GetRevivalStats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stats lookup failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
