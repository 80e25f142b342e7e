package core

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/schema"
	"go.uber.org/zap"
)

// currentCacheVersion defines the version of the cached result encoding
const currentCacheVersion = 1

// CacheScope identifies whose data and which window a cached result belongs to.
type CacheScope struct {
	UserID      string
	Start       time.Time
	End         time.Time
	Granularity schema.Granularity
}

// CachedEngine memoizes Engine results in a CacheStore. A nil store disables
// caching, and store failures fall back to direct computation.
type CachedEngine struct {
	engine *Engine
	store  contract.CacheStore
	scope  CacheScope
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

var _ Analyzer = &CachedEngine{} // Compile-time check

// NewCachedEngine wraps engine with a result cache. Entries older than ttl are
// recomputed; a non-positive ttl keeps entries until the cache version changes.
func NewCachedEngine(engine *Engine, store contract.CacheStore, scope CacheScope, ttl time.Duration, logger *zap.Logger) *CachedEngine {
	if engine == nil {
		engine = NewEngine(WithLogger(logger))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEngine{
		engine: engine,
		store:  store,
		scope:  scope,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// seriesPair is the cache input of two-series operations.
type seriesPair struct {
	Expense []schema.SeriesPoint `json:"expense"`
	Income  []schema.SeriesPoint `json:"income"`
}

// AnalyzeTrend implements Analyzer.
func (c *CachedEngine) AnalyzeTrend(series []schema.SeriesPoint) schema.TrendResult {
	result, _ := cached(c, "trend", "", series, func() (schema.TrendResult, error) {
		return c.engine.AnalyzeTrend(series), nil
	})
	return result
}

// AnalyzeSeasonality implements Analyzer.
func (c *CachedEngine) AnalyzeSeasonality(txns []schema.Transaction) schema.SeasonalityResult {
	result, _ := cached(c, "seasonality", "", txns, func() (schema.SeasonalityResult, error) {
		return c.engine.AnalyzeSeasonality(txns), nil
	})
	return result
}

// DetectAnomalies implements Analyzer.
func (c *CachedEngine) DetectAnomalies(txns []schema.Transaction) []schema.AnomalyRecord {
	params := fmt.Sprintf("threshold=%g", c.engine.AnomalyThreshold())
	result, _ := cached(c, "anomalies", params, txns, func() ([]schema.AnomalyRecord, error) {
		return c.engine.DetectAnomalies(txns), nil
	})
	return result
}

// PredictFuture implements Analyzer.
func (c *CachedEngine) PredictFuture(series []schema.SeriesPoint, periodsAhead int, confidenceLevel float64) ([]schema.PredictionPoint, error) {
	return cached(c, "forecast", forecastParams(periodsAhead, confidenceLevel), series, func() ([]schema.PredictionPoint, error) {
		return c.engine.PredictFuture(series, periodsAhead, confidenceLevel)
	})
}

// PredictNetCashFlow implements Analyzer.
func (c *CachedEngine) PredictNetCashFlow(expense, income []schema.SeriesPoint, periodsAhead int, confidenceLevel float64) (*schema.NetCashFlowPrediction, error) {
	input := seriesPair{Expense: expense, Income: income}
	return cached(c, "net_forecast", forecastParams(periodsAhead, confidenceLevel), input, func() (*schema.NetCashFlowPrediction, error) {
		return c.engine.PredictNetCashFlow(expense, income, periodsAhead, confidenceLevel)
	})
}

// GenerateScenarios implements Analyzer.
func (c *CachedEngine) GenerateScenarios(expense, income []schema.SeriesPoint, periodsAhead int, confidenceLevel float64) ([]schema.Scenario, error) {
	input := seriesPair{Expense: expense, Income: income}
	return cached(c, "scenarios", forecastParams(periodsAhead, confidenceLevel), input, func() ([]schema.Scenario, error) {
		return c.engine.GenerateScenarios(expense, income, periodsAhead, confidenceLevel)
	})
}

// AnalyzeOverallTrends implements Analyzer.
func (c *CachedEngine) AnalyzeOverallTrends(expense, income []schema.SeriesPoint) schema.OverallTrends {
	input := seriesPair{Expense: expense, Income: income}
	result, _ := cached(c, "overall", "", input, func() (schema.OverallTrends, error) {
		return c.engine.AnalyzeOverallTrends(expense, income), nil
	})
	return result
}

// forecastParams encodes the forecast knobs into the cache key.
func forecastParams(periodsAhead int, confidenceLevel float64) string {
	return fmt.Sprintf("periods=%d,confidence=%g", periodsAhead, confidenceLevel)
}

// cached returns the stored result for an operation when a fresh entry exists,
// otherwise it computes the result and stores it. Errors from compute are
// returned as-is and never cached.
func cached[T any](c *CachedEngine, op, params string, input any, compute func() (T, error)) (T, error) {
	if c.store == nil {
		return compute()
	}

	key, err := c.cacheKey(op, params, input)
	if err != nil {
		c.logger.Warn("cache key generation failed", zap.String("op", op), zap.Error(err))
		return compute()
	}

	// Check for cache hit
	if result, ok := checkCacheHit[T](c, op, key); ok {
		return result, nil
	}

	// Cache miss: compute and store
	return computeAndStore(c, op, key, compute)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit[T any](c *CachedEngine, op, key string) (T, bool) {
	var result T
	data, version, ts, err := c.store.Get(key)
	if err != nil {
		return result, false // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion {
		c.logger.Debug("cache version mismatch", zap.String("op", op), zap.Int("version", version))
		return result, false
	}
	if c.ttl > 0 && c.now().Sub(time.Unix(ts, 0)) > c.ttl {
		c.logger.Debug("cache entry expired", zap.String("op", op))
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Warn("cache entry unreadable", zap.String("op", op), zap.Error(err))
		return result, false
	}

	c.logger.Debug("cache hit", zap.String("op", op))
	return result, true
}

// computeAndStore computes the result and stores it in cache
func computeAndStore[T any](c *CachedEngine, op, key string, compute func() (T, error)) (T, error) {
	result, err := compute()
	if err != nil {
		return result, err
	}

	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Warn("cache encode failed", zap.String("op", op), zap.Error(err))
		return result, nil
	}
	if err := c.store.Set(key, data, currentCacheVersion, c.now().Unix()); err != nil {
		c.logger.Warn("cache write failed", zap.String("op", op), zap.Error(err))
	}
	return result, nil
}

// cacheKey creates a unique key from the scope, the operation and its input.
func (c *CachedEngine) cacheKey(op, params string, input any) (string, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return "", err
	}

	// Truncate the window so keys are stable within the hour
	startHour := c.scope.Start.Truncate(contract.CacheGranularity)
	endHour := c.scope.End.Truncate(contract.CacheGranularity)

	key := fmt.Sprintf("%s:%s:%d:%d:%s:%s:%x",
		c.scope.UserID,
		op,
		startHour.Unix(),
		endHour.Unix(),
		c.scope.Granularity,
		params,
		sha256.Sum256(data),
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key))), nil
}
