// Package core runs trend, seasonality, anomaly and forecast analyses over a
// ledger and hands the reports to the output writers.
package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/internal/outwriter"
	"github.com/huangsam/cashtrend/schema"
)

// ExecutorFunc defines the function signature for executing different analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteTrend analyzes the expense and income series and prints their trends.
func ExecuteTrend(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := runTrendAnalysis(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteTrendResults(report, cfg, time.Since(start))
}

// ExecuteSeasonality analyzes month-of-year patterns of expense and income transactions.
func ExecuteSeasonality(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := runSeasonalityAnalysis(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteSeasonalityResults(report, cfg, time.Since(start))
}

// ExecuteAnomalies flags unusual expense and income transactions.
func ExecuteAnomalies(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := runAnomalyAnalysis(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteAnomalyResults(report, cfg, time.Since(start))
}

// ExecuteForecast projects the expense, income and net cash flow series.
func ExecuteForecast(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := runForecastAnalysis(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteForecastResults(report, cfg, time.Since(start))
}

// ExecuteScenarios prints the optimistic, realistic and pessimistic projections.
func ExecuteScenarios(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := runScenarioAnalysis(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteScenarioResults(report, cfg, time.Since(start))
}

// ExecuteOverall prints the combined health report with recommendations.
func ExecuteOverall(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	report, err := runOverallAnalysis(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.WriteOverallResults(report, cfg, time.Since(start))
}

// runTrendAnalysis performs the common load, analyze and track steps for trends.
func runTrendAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.TrendReport, error) {
	// --- 1. Load and aggregate ---
	data, err := loadLedgerData(ctx, cfg)
	if err != nil {
		return schema.TrendReport{}, err
	}

	// --- 2. Begin Analysis Tracking (if configured) ---
	ctx = beginAnalysis(ctx, cfg, mgr, "trend")
	analyzer := newAnalyzer(ctx, cfg, mgr)
	now := time.Now()

	// --- 3. Core Analysis ---
	report := schema.TrendReport{Granularity: cfg.Granularity}
	for _, s := range []struct {
		kind   schema.SeriesKind
		points []schema.SeriesPoint
	}{
		{schema.ExpenseSeries, data.expense},
		{schema.IncomeSeries, data.income},
	} {
		result := analyzer.AnalyzeTrend(s.points)
		recordTrend(ctx, mgr, schema.NewTrendResultRecord(s.kind, now, result))
		report.Trends = append(report.Trends, schema.SeriesTrend{Series: s.kind, Points: s.points, TrendResult: result})
	}

	// --- 4. End Analysis Tracking ---
	endAnalysis(ctx, mgr, data.points())
	return report, nil
}

// runSeasonalityAnalysis computes the seasonality of both transaction types.
func runSeasonalityAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.SeasonalityReport, error) {
	data, err := loadLedgerData(ctx, cfg)
	if err != nil {
		return schema.SeasonalityReport{}, err
	}
	ctx = beginAnalysis(ctx, cfg, mgr, "seasonality")
	analyzer := newAnalyzer(ctx, cfg, mgr)

	report := schema.SeasonalityReport{
		Results: []schema.SeriesSeasonality{
			{Series: schema.ExpenseSeries, SeasonalityResult: analyzer.AnalyzeSeasonality(data.expenseTxns)},
			{Series: schema.IncomeSeries, SeasonalityResult: analyzer.AnalyzeSeasonality(data.incomeTxns)},
		},
	}

	endAnalysis(ctx, mgr, data.points())
	return report, nil
}

// runAnomalyAnalysis ranks anomalies across both transaction types by z-score.
func runAnomalyAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.AnomalyReport, error) {
	data, err := loadLedgerData(ctx, cfg)
	if err != nil {
		return schema.AnomalyReport{}, err
	}
	ctx = beginAnalysis(ctx, cfg, mgr, "anomalies")
	analyzer := newAnalyzer(ctx, cfg, mgr)

	expense := analyzer.DetectAnomalies(data.expenseTxns)
	income := analyzer.DetectAnomalies(data.incomeTxns)
	report := schema.AnomalyReport{
		Threshold: cfg.AnomalyThreshold,
		Anomalies: mergeAnomalies(expense, income),
	}

	endAnalysis(ctx, mgr, data.points())
	return report, nil
}

// mergeAnomalies interleaves two z-score sorted lists into one ranked list.
func mergeAnomalies(expense, income []schema.AnomalyRecord) []schema.EnrichedAnomaly {
	merged := make([]schema.EnrichedAnomaly, 0, len(expense)+len(income))
	i, j := 0, 0
	for i < len(expense) || j < len(income) {
		if j >= len(income) || (i < len(expense) && expense[i].ZScore >= income[j].ZScore) {
			merged = append(merged, schema.EnrichedAnomaly{Series: schema.ExpenseSeries, AnomalyRecord: expense[i]})
			i++
		} else {
			merged = append(merged, schema.EnrichedAnomaly{Series: schema.IncomeSeries, AnomalyRecord: income[j]})
			j++
		}
	}
	for k := range merged {
		merged[k].Rank = k + 1
	}
	return merged
}

// runForecastAnalysis projects both series and the net cash flow.
// A series too short to project is reported as unavailable.
func runForecastAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ForecastReport, error) {
	data, err := loadLedgerData(ctx, cfg)
	if err != nil {
		return schema.ForecastReport{}, err
	}
	ctx = beginAnalysis(ctx, cfg, mgr, "forecast")
	analyzer := newAnalyzer(ctx, cfg, mgr)

	report := schema.ForecastReport{
		Granularity:     cfg.Granularity,
		PeriodsAhead:    cfg.Periods,
		ConfidenceLevel: cfg.ConfidenceLevel,
	}
	for _, s := range []struct {
		kind   schema.SeriesKind
		points []schema.SeriesPoint
	}{
		{schema.ExpenseSeries, data.expense},
		{schema.IncomeSeries, data.income},
	} {
		forecast, err := forecastSeries(ctx, analyzer, s.kind, s.points, cfg)
		if err != nil {
			return report, err
		}
		report.Forecasts = append(report.Forecasts, forecast)
	}

	net, err := analyzer.PredictNetCashFlow(data.expense, data.income, cfg.Periods, cfg.ConfidenceLevel)
	if err != nil && !errors.Is(err, ErrForecastUnavailable) {
		return report, fmt.Errorf("net cash flow forecast failed: %w", err)
	}
	report.NetCashFlow = net

	endAnalysis(ctx, mgr, data.points())
	return report, nil
}

// runScenarioAnalysis builds the what-if projections. Unlike the forecast it
// fails when the history is too short, since there is nothing else to show.
func runScenarioAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.ScenarioReport, error) {
	data, err := loadLedgerData(ctx, cfg)
	if err != nil {
		return schema.ScenarioReport{}, err
	}
	ctx = beginAnalysis(ctx, cfg, mgr, "scenarios")
	analyzer := newAnalyzer(ctx, cfg, mgr)

	scenarios, err := analyzer.GenerateScenarios(data.expense, data.income, cfg.Periods, cfg.ConfidenceLevel)
	endAnalysis(ctx, mgr, data.points())
	if err != nil {
		return schema.ScenarioReport{}, fmt.Errorf("cannot generate scenarios: %w", err)
	}
	return schema.ScenarioReport{
		Granularity:  cfg.Granularity,
		PeriodsAhead: cfg.Periods,
		Scenarios:    scenarios,
	}, nil
}

// runOverallAnalysis builds the combined report and records all three series.
func runOverallAnalysis(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) (schema.OverallTrends, error) {
	data, err := loadLedgerData(ctx, cfg)
	if err != nil {
		return schema.OverallTrends{}, err
	}
	ctx = beginAnalysis(ctx, cfg, mgr, "overall")
	analyzer := newAnalyzer(ctx, cfg, mgr)
	now := time.Now()

	report := analyzer.AnalyzeOverallTrends(data.expense, data.income)
	recordTrend(ctx, mgr, schema.NewTrendResultRecord(schema.ExpenseSeries, now, report.ExpenseTrends))
	recordTrend(ctx, mgr, schema.NewTrendResultRecord(schema.IncomeSeries, now, report.IncomeTrends))
	recordTrend(ctx, mgr, netTrendRecord(now, report))

	endAnalysis(ctx, mgr, data.points())
	return report, nil
}
