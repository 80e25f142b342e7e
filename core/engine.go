package core

import (
	"errors"

	"github.com/huangsam/cashtrend/core/algo"
	"github.com/huangsam/cashtrend/schema"
	"go.uber.org/zap"
)

// ErrForecastUnavailable is returned when a series is too short to project.
var ErrForecastUnavailable = errors.New("forecast unavailable: at least 3 periods of history are required")

// Analyzer is the analysis surface shared by Engine and CachedEngine.
type Analyzer interface {
	AnalyzeTrend(series []schema.SeriesPoint) schema.TrendResult
	AnalyzeSeasonality(txns []schema.Transaction) schema.SeasonalityResult
	DetectAnomalies(txns []schema.Transaction) []schema.AnomalyRecord
	PredictFuture(series []schema.SeriesPoint, periodsAhead int, confidenceLevel float64) ([]schema.PredictionPoint, error)
	PredictNetCashFlow(expense, income []schema.SeriesPoint, periodsAhead int, confidenceLevel float64) (*schema.NetCashFlowPrediction, error)
	GenerateScenarios(expense, income []schema.SeriesPoint, periodsAhead int, confidenceLevel float64) ([]schema.Scenario, error)
	AnalyzeOverallTrends(expense, income []schema.SeriesPoint) schema.OverallTrends
}

// Engine runs the numeric analyses and reports what it did to a logger.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	logger           *zap.Logger
	anomalyThreshold float64
}

var _ Analyzer = &Engine{} // Compile-time check

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithAnomalyThreshold sets the z-score above which a transaction is flagged.
// Non-positive values are ignored.
func WithAnomalyThreshold(threshold float64) EngineOption {
	return func(e *Engine) {
		if threshold > 0 {
			e.anomalyThreshold = threshold
		}
	}
}

// NewEngine returns an Engine with a no-op logger and the default anomaly threshold.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger:           zap.NewNop(),
		anomalyThreshold: algo.DefaultAnomalyThreshold,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AnomalyThreshold returns the configured anomaly threshold.
func (e *Engine) AnomalyThreshold() float64 {
	return e.anomalyThreshold
}

// AnalyzeTrend fits and classifies a series.
func (e *Engine) AnalyzeTrend(series []schema.SeriesPoint) schema.TrendResult {
	result := algo.AnalyzeTrend(series)
	e.logger.Debug("trend analyzed",
		zap.Int("points", len(series)),
		zap.String("trend", string(result.Trend)),
		zap.Float64("slope", result.Slope),
		zap.Float64("r_squared", result.RSquared),
		zap.Int("breakpoints", len(result.Breakpoints)),
	)
	return result
}

// AnalyzeSeasonality buckets transactions by calendar month.
func (e *Engine) AnalyzeSeasonality(txns []schema.Transaction) schema.SeasonalityResult {
	result := algo.AnalyzeSeasonality(txns)
	e.logger.Debug("seasonality analyzed",
		zap.Int("transactions", len(txns)),
		zap.String("pattern", string(result.Pattern)),
		zap.Float64("strength", result.SeasonalStrength),
	)
	return result
}

// DetectAnomalies flags outlying transaction amounts.
func (e *Engine) DetectAnomalies(txns []schema.Transaction) []schema.AnomalyRecord {
	result := algo.DetectAnomalies(txns, e.anomalyThreshold)
	e.logger.Debug("anomalies detected",
		zap.Int("transactions", len(txns)),
		zap.Float64("threshold", e.anomalyThreshold),
		zap.Int("anomalies", len(result)),
	)
	return result
}

// PredictFuture projects a series forward. It returns ErrForecastUnavailable
// when the history is too short.
func (e *Engine) PredictFuture(series []schema.SeriesPoint, periodsAhead int, confidenceLevel float64) ([]schema.PredictionPoint, error) {
	result := algo.PredictFuture(series, periodsAhead, confidenceLevel)
	if result == nil {
		e.logger.Debug("forecast unavailable", zap.Int("points", len(series)))
		return nil, ErrForecastUnavailable
	}
	e.logger.Debug("forecast computed",
		zap.Int("points", len(series)),
		zap.Int("periods_ahead", periodsAhead),
		zap.Float64("confidence_level", confidenceLevel),
	)
	return result, nil
}

// PredictNetCashFlow projects income minus expense.
func (e *Engine) PredictNetCashFlow(expense, income []schema.SeriesPoint, periodsAhead int, confidenceLevel float64) (*schema.NetCashFlowPrediction, error) {
	result := algo.PredictNetCashFlow(expense, income, periodsAhead, confidenceLevel)
	if result == nil {
		e.logger.Debug("net cash flow forecast unavailable",
			zap.Int("expense_points", len(expense)),
			zap.Int("income_points", len(income)),
		)
		return nil, ErrForecastUnavailable
	}
	e.logger.Debug("net cash flow forecast computed", zap.Float64("average_net", result.AverageNet))
	return result, nil
}

// GenerateScenarios builds the optimistic, realistic and pessimistic projections.
func (e *Engine) GenerateScenarios(expense, income []schema.SeriesPoint, periodsAhead int, confidenceLevel float64) ([]schema.Scenario, error) {
	result := algo.GenerateScenarios(expense, income, periodsAhead, confidenceLevel)
	if result == nil {
		e.logger.Debug("scenarios unavailable")
		return nil, ErrForecastUnavailable
	}
	e.logger.Debug("scenarios generated", zap.Int("scenarios", len(result)), zap.Int("periods_ahead", periodsAhead))
	return result, nil
}

// AnalyzeOverallTrends builds the combined health report.
func (e *Engine) AnalyzeOverallTrends(expense, income []schema.SeriesPoint) schema.OverallTrends {
	result := algo.AnalyzeOverallTrends(expense, income)
	e.logger.Debug("overall trends analyzed",
		zap.Float64("health_score", result.FinancialHealth.Score),
		zap.String("risk_level", string(result.RiskLevel)),
		zap.String("sustainability", string(result.Sustainability)),
		zap.Int("recommendations", len(result.Recommendations)),
	)
	return result
}
