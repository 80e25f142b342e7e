// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the cashtrend MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Cashtrend Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: analyze_trend ---
	s.AddTool(mcp.NewTool("analyze_trend",
		mcp.WithDescription("Fit a linear trend to a time series and report slope, fit quality, volatility, seasonality and breakpoints."),
		mcp.WithString("series", mcp.Description(`JSON array of {"period","amount"} points in chronological order.`), mcp.Required()),
	), h.handleAnalyzeTrend)

	// --- 2. Tool: predict_future ---
	s.AddTool(mcp.NewTool("predict_future",
		mcp.WithDescription("Project a time series forward with confidence intervals. Requires at least 3 points."),
		mcp.WithString("series", mcp.Description(`JSON array of {"period","amount"} points in chronological order.`), mcp.Required()),
		mcp.WithNumber("periods_ahead", mcp.Description("Number of periods to project. Defaults to the configured --periods.")),
		mcp.WithNumber("confidence_level", mcp.Description("Confidence level of the interval (0.90, 0.95 or 0.99).")),
	), h.handlePredictFuture)

	// --- 3. Tool: detect_anomalies ---
	s.AddTool(mcp.NewTool("detect_anomalies",
		mcp.WithDescription("Flag transactions whose amount is far from the mean of the list."),
		mcp.WithString("transactions", mcp.Description(`JSON array of {"id","date","amount","type"} transactions.`), mcp.Required()),
		mcp.WithNumber("threshold", mcp.Description("Z-score above which a transaction is flagged. Defaults to 2.5.")),
	), h.handleDetectAnomalies)

	// --- 4. Tool: analyze_seasonality ---
	s.AddTool(mcp.NewTool("analyze_seasonality",
		mcp.WithDescription("Sum transactions per calendar month and report peak months, low months and seasonal strength."),
		mcp.WithString("transactions", mcp.Description(`JSON array of {"id","date","amount","type"} transactions.`), mcp.Required()),
	), h.handleAnalyzeSeasonality)

	// --- 5. Tool: analyze_overall_trends ---
	s.AddTool(mcp.NewTool("analyze_overall_trends",
		mcp.WithDescription("Combine expense and income series into a financial health score, risk level and recommendations."),
		mcp.WithString("expense_series", mcp.Description(`JSON array of {"period","amount"} expense points.`), mcp.Required()),
		mcp.WithString("income_series", mcp.Description(`JSON array of {"period","amount"} income points, aligned with expense_series.`), mcp.Required()),
	), h.handleAnalyzeOverallTrends)

	return s
}

// StartMCPServer starts the cashtrend MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
