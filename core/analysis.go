package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/cashtrend/core/agg"
	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/internal/ledger"
	"github.com/huangsam/cashtrend/schema"
	"go.uber.org/zap"
)

// ledgerData is the loaded ledger split and aggregated for one analysis window.
type ledgerData struct {
	expenseTxns []schema.Transaction
	incomeTxns  []schema.Transaction
	expense     []schema.SeriesPoint
	income      []schema.SeriesPoint
}

// points returns the number of aggregated periods.
func (d *ledgerData) points() int {
	return agg.CountPoints(d.expense, d.income)
}

// loadLedgerData reads the ledger and prepares the transactions and series
// for the configured window and granularity.
func loadLedgerData(ctx context.Context, cfg *contract.Config) (*ledgerData, error) {
	logger := loggerFromContext(ctx)
	if cfg.LedgerPath == "" {
		return nil, errors.New("a ledger file is required")
	}

	txns, err := ledger.Load(cfg.LedgerPath)
	if err != nil {
		return nil, err
	}

	inRange := agg.FilterByRange(txns, cfg.StartTime, cfg.EndTime)
	if len(inRange) == 0 {
		logger.Warn("no transactions in the analysis window",
			zap.Time("start", cfg.StartTime),
			zap.Time("end", cfg.EndTime),
			zap.Int("ledger_transactions", len(txns)),
		)
	}

	data := &ledgerData{}
	data.expenseTxns, data.incomeTxns = agg.SplitByType(inRange)
	data.expense, data.income = agg.AggregateByPeriod(inRange, cfg.Granularity, cfg.StartTime, cfg.EndTime)

	logger.Debug("ledger loaded",
		zap.String("ledger", filepath.Base(cfg.LedgerPath)),
		zap.Int("transactions", len(inRange)),
		zap.Int("expenses", len(data.expenseTxns)),
		zap.Int("incomes", len(data.incomeTxns)),
		zap.Int("periods", data.points()),
		zap.String("granularity", string(cfg.Granularity)),
	)
	return data, nil
}

// newAnalyzer builds the engine for a run, wrapped with the result cache when
// the manager provides one.
func newAnalyzer(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) Analyzer {
	logger := loggerFromContext(ctx)
	engine := NewEngine(WithLogger(logger), WithAnomalyThreshold(cfg.AnomalyThreshold))

	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetCacheStore()
	}
	if store == nil {
		return engine
	}

	scope := CacheScope{
		UserID:      cfg.UserID,
		Start:       cfg.GetAnalysisStartTime(),
		End:         cfg.GetAnalysisEndTime(),
		Granularity: cfg.Granularity,
	}
	return NewCachedEngine(engine, store, scope, cfg.CacheTTL, logger)
}

// beginAnalysis starts run tracking when an analysis store is configured and
// returns a context carrying the run ID. Tracking failures are logged, not returned.
func beginAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager, command string) context.Context {
	store := analysisStore(mgr)
	if store == nil {
		return ctx
	}

	configParams := map[string]any{
		"command":           command,
		"granularity":       string(cfg.Granularity),
		"start":             cfg.StartTime.Format(contract.DateTimeFormat),
		"end":               cfg.EndTime.Format(contract.DateTimeFormat),
		"periods":           cfg.Periods,
		"confidence_level":  cfg.ConfidenceLevel,
		"anomaly_threshold": cfg.AnomalyThreshold,
		"ledger":            filepath.Base(cfg.LedgerPath),
	}
	analysisID, err := store.BeginAnalysis(uuid.NewString(), cfg.UserID, time.Now(), configParams)
	if err != nil {
		loggerFromContext(ctx).Warn("analysis tracking initialization failed", zap.Error(err))
		return ctx
	}
	if analysisID <= 0 {
		return ctx
	}
	return withAnalysisID(ctx, analysisID)
}

// recordTrend stores a trend result for the tracked run, if any.
func recordTrend(ctx context.Context, mgr contract.CacheManager, record schema.TrendResultRecord) {
	analysisID, ok := getAnalysisID(ctx)
	store := analysisStore(mgr)
	if !ok || store == nil {
		return
	}
	if err := store.RecordTrendResult(analysisID, record); err != nil {
		loggerFromContext(ctx).Warn("failed to record trend result",
			zap.Int64("analysis_id", analysisID),
			zap.String("series", string(record.SeriesKind)),
			zap.Error(err),
		)
	}
}

// endAnalysis finalizes the tracked run, if any.
func endAnalysis(ctx context.Context, mgr contract.CacheManager, totalSeriesPoints int) {
	analysisID, ok := getAnalysisID(ctx)
	store := analysisStore(mgr)
	if !ok || store == nil {
		return
	}
	if err := store.EndAnalysis(analysisID, time.Now(), totalSeriesPoints); err != nil {
		loggerFromContext(ctx).Warn("failed to finalize analysis tracking", zap.Int64("analysis_id", analysisID), zap.Error(err))
	}
}

// analysisStore returns the manager's analysis store or nil.
func analysisStore(mgr contract.CacheManager) contract.AnalysisStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetAnalysisStore()
}

// netTrendRecord flattens the overall report into the net series record.
func netTrendRecord(at time.Time, report schema.OverallTrends) schema.TrendResultRecord {
	score := report.FinancialHealth.Score
	risk := report.RiskLevel
	return schema.TrendResultRecord{
		SeriesKind:      schema.NetSeries,
		AnalysisTime:    at,
		Trend:           report.NetCashFlow.Trend,
		Slope:           report.NetCashFlow.Slope,
		RSquared:        report.NetCashFlow.RSquared,
		SeasonalPattern: schema.InsufficientData,
		HealthScore:     &score,
		RiskLevel:       &risk,
	}
}

// forecastSeries runs one series forecast and marks it unavailable instead of failing.
func forecastSeries(ctx context.Context, analyzer Analyzer, kind schema.SeriesKind, series []schema.SeriesPoint, cfg *contract.Config) (schema.SeriesForecast, error) {
	result := schema.SeriesForecast{Series: kind, Predictions: []schema.PredictionPoint{}}
	predictions, err := analyzer.PredictFuture(series, cfg.Periods, cfg.ConfidenceLevel)
	switch {
	case errors.Is(err, ErrForecastUnavailable):
		loggerFromContext(ctx).Info("forecast unavailable", zap.String("series", string(kind)), zap.Int("points", len(series)))
		return result, nil
	case err != nil:
		return result, fmt.Errorf("%s forecast failed: %w", kind, err)
	}
	result.Available = true
	result.Predictions = predictions
	return result, nil
}
