// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/promptgraveyard/graveyard/internal/contract"
)

// NewMCPServer initializes and configures the graveyard MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, store contract.RecordStore, manager contract.LedgerManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Prompt Graveyard Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		store:   store,
		manager: manager,
	}

	// --- 1. Tool: query_graveyard ---
	s.AddTool(mcp.NewTool("query_graveyard",
		mcp.WithDescription("Query the prompt graveyard for evaluation records with filters, sorting and pagination."),
		mcp.WithString("severity", mcp.Description("Filter by decay severity."), mcp.Enum("alive", "shambling", "rotting", "skeletal")),
		mcp.WithString("is_zombie", mcp.Description("Filter by zombie status ('true' or 'false')."), mcp.Enum("true", "false")),
		mcp.WithString("provider", mcp.Description("Keep only records holding a response from this provider key.")),
		mcp.WithNumber("min_score", mcp.Description("Keep only records scoring at least this value (0.0-1.0).")),
		mcp.WithNumber("max_score", mcp.Description("Keep only records scoring at most this value (0.0-1.0).")),
		mcp.WithString("sort_by", mcp.Description("Sort field. Defaults to 'timestamp'."), mcp.Enum("timestamp", "score", "cost", "latency")),
		mcp.WithString("sort_order", mcp.Description("Sort direction. Defaults to 'desc'."), mcp.Enum("asc", "desc")),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1.")),
		mcp.WithNumber("limit", mcp.Description("Page size, up to 100.")),
	), h.handleQueryGraveyard)

	// --- 2. Tool: get_prompt_record ---
	s.AddTool(mcp.NewTool("get_prompt_record",
		mcp.WithDescription("Fetch one evaluation record by ID, including provider responses, metrics and revival suggestions."),
		mcp.WithString("record_id", mcp.Description("The record identifier."), mcp.Required()),
	), h.handleGetPromptRecord)

	// --- 3. Tool: graveyard_stats ---
	s.AddTool(mcp.NewTool("graveyard_stats",
		mcp.WithDescription("Summarize the whole graveyard: totals, zombie rate, severity breakdown and provider performance."),
	), h.handleGraveyardStats)

	// --- 4. Tool: attempt_revival ---
	s.AddTool(mcp.NewTool("attempt_revival",
		mcp.WithDescription("Apply one revival suggestion to a zombie record and log the attempt to the ledger."),
		mcp.WithString("record_id", mcp.Description("The record to revive."), mcp.Required()),
		mcp.WithNumber("suggestion_index", mcp.Description("Index of the suggestion to apply. Defaults to 0.")),
		mcp.WithString("feedback", mcp.Description("Optional user feedback recorded on the attempt.")),
	), h.handleAttemptRevival)

	// --- 5. Tool: revival_history ---
	s.AddTool(mcp.NewTool("revival_history",
		mcp.WithDescription("Replay the revival ledger into attempt states, optionally scoped to one record."),
		mcp.WithString("record_id", mcp.Description("Limit history to this record.")),
	), h.handleRevivalHistory)

	// --- 6. Tool: revival_stats ---
	s.AddTool(mcp.NewTool("revival_stats",
		mcp.WithDescription("Aggregate the revival ledger: attempt totals, success rate and the most successful strategy."),
	), h.handleRevivalStats)

	return s
}

// StartMCPServer starts the graveyard MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, store contract.RecordStore, manager contract.LedgerManager) error {
	s := NewMCPServer(baseCfg, store, manager)
	return server.ServeStdio(s)
}
