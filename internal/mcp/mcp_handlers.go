package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/huangsam/cashtrend/core"
	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/internal/ledger"
	"github.com/huangsam/cashtrend/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// analyzer returns the engine for one tool call, cached when the manager has a store.
func (h *toolHandler) analyzer(threshold float64) core.Analyzer {
	engine := core.NewEngine(core.WithAnomalyThreshold(threshold))
	if h.mgr == nil {
		return engine
	}
	store := h.mgr.GetCacheStore()
	if store == nil {
		return engine
	}
	scope := core.CacheScope{
		UserID:      h.baseCfg.UserID,
		Granularity: h.baseCfg.Granularity,
	}
	return core.NewCachedEngine(engine, store, scope, h.baseCfg.CacheTTL, nil)
}

func (h *toolHandler) handleAnalyzeTrend(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	series, err := parseSeries(request.GetString("series", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid series: %v", err)), nil
	}

	result := h.analyzer(h.baseCfg.AnomalyThreshold).AnalyzeTrend(series)
	return jsonResult(result)
}

func (h *toolHandler) handlePredictFuture(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	series, err := parseSeries(request.GetString("series", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid series: %v", err)), nil
	}

	periods := request.GetInt("periods_ahead", h.baseCfg.Periods)
	if periods < 1 || periods > contract.MaxPeriods {
		return mcp.NewToolResultError(fmt.Sprintf("periods_ahead must be between 1 and %d", contract.MaxPeriods)), nil
	}
	confidence := request.GetFloat("confidence_level", h.baseCfg.ConfidenceLevel)
	if confidence <= 0 || confidence >= 1 {
		return mcp.NewToolResultError("confidence_level must be between 0 and 1"), nil
	}

	predictions, err := h.analyzer(h.baseCfg.AnomalyThreshold).PredictFuture(series, periods, confidence)
	if errors.Is(err, core.ErrForecastUnavailable) {
		// An unavailable forecast is a valid answer, not a failure
		return jsonResult(nil)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("forecast failed: %v", err)), nil
	}
	return jsonResult(predictions)
}

func (h *toolHandler) handleDetectAnomalies(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	txns, err := parseTransactions(request.GetString("transactions", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid transactions: %v", err)), nil
	}

	threshold := request.GetFloat("threshold", h.baseCfg.AnomalyThreshold)
	if threshold < 0 {
		return mcp.NewToolResultError("threshold must not be negative"), nil
	}

	result := h.analyzer(threshold).DetectAnomalies(txns)
	return jsonResult(schema.EnrichAnomalies(result))
}

func (h *toolHandler) handleAnalyzeSeasonality(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	txns, err := parseTransactions(request.GetString("transactions", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid transactions: %v", err)), nil
	}

	result := h.analyzer(h.baseCfg.AnomalyThreshold).AnalyzeSeasonality(txns)
	return jsonResult(result)
}

func (h *toolHandler) handleAnalyzeOverallTrends(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	expense, err := parseSeries(request.GetString("expense_series", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid expense_series: %v", err)), nil
	}
	income, err := parseSeries(request.GetString("income_series", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid income_series: %v", err)), nil
	}

	result := h.analyzer(h.baseCfg.AnomalyThreshold).AnalyzeOverallTrends(expense, income)
	return jsonResult(result)
}

// parseSeries decodes a JSON array of series points. An empty array is valid.
func parseSeries(raw string) ([]schema.SeriesPoint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("a JSON array is required")
	}
	var series []schema.SeriesPoint
	if err := json.Unmarshal([]byte(raw), &series); err != nil {
		return nil, err
	}
	if series == nil {
		series = []schema.SeriesPoint{}
	}
	return series, nil
}

// parseTransactions decodes and validates a JSON array of transactions. An empty array is valid.
func parseTransactions(raw string) ([]schema.Transaction, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("a JSON array is required")
	}
	txns, err := ledger.ReadJSON(strings.NewReader(raw))
	if errors.Is(err, ledger.ErrEmptyLedger) {
		return []schema.Transaction{}, nil
	}
	return txns, err
}

// jsonResult renders a value as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
