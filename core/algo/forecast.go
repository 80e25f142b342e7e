package algo

import (
	"math"

	"github.com/huangsam/cashtrend/schema"
)

const (
	// MinForecastPoints is the shortest history a forecast is made from.
	MinForecastPoints = 3

	// DefaultConfidenceLevel is used when no confidence level is configured.
	DefaultConfidenceLevel = 0.95

	// minPointConfidence floors the per-period confidence of far projections.
	minPointConfidence = 0.1

	// confidenceDecay is subtracted from R-squared for every period ahead.
	confidenceDecay = 0.05
)

// scenarioFactors are the fixed what-if multipliers applied to central forecasts.
var scenarioFactors = []struct {
	name    string
	expense float64
	income  float64
}{
	{name: "optimistic", expense: 0.9, income: 1.1},
	{name: "realistic", expense: 1.0, income: 1.0},
	{name: "pessimistic", expense: 1.1, income: 0.9},
}

// TValue returns the fixed two-sided t-value for a confidence level.
// Only 0.90 and 0.99 are special-cased; every other level uses 1.96.
func TValue(confidenceLevel float64) float64 {
	switch {
	case math.Abs(confidenceLevel-0.90) < 1e-9:
		return 1.645
	case math.Abs(confidenceLevel-0.99) < 1e-9:
		return 2.576
	default:
		return 1.96
	}
}

// PredictFuture projects a series periodsAhead steps forward from its linear fit.
// Step i is predicted at slope*(n+i)+intercept and clamped at zero. It returns nil
// when the history is shorter than three points.
//
// The interval is an approximation: a fixed t-value times the residual standard
// error sqrt(SSres/(n-2)), with no leverage term for distance from the data.
func PredictFuture(series []schema.SeriesPoint, periodsAhead int, confidenceLevel float64) []schema.PredictionPoint {
	n := len(series)
	if n < MinForecastPoints {
		return nil
	}
	if periodsAhead <= 0 {
		return []schema.PredictionPoint{}
	}

	values := amounts(series)
	reg := RegressValues(values)
	margin := TValue(confidenceLevel) * residualStdError(values, reg)
	labels := NextPeriodLabels(series, periodsAhead)

	points := make([]schema.PredictionPoint, periodsAhead)
	for i := 1; i <= periodsAhead; i++ {
		predicted := math.Max(0, reg.Slope*float64(n+i)+reg.Intercept)
		points[i-1] = schema.PredictionPoint{
			PeriodLabel:    labels[i-1],
			PredictedValue: predicted,
			ConfidenceInterval: schema.ConfidenceInterval{
				Lower: math.Max(0, predicted-margin),
				Upper: predicted + margin,
			},
			Confidence: clamp(reg.RSquared-confidenceDecay*float64(i), minPointConfidence, 1),
		}
	}
	return points
}

// PredictNetCashFlow pairs the income and expense forecasts period by period.
// It returns nil when either forecast is unavailable.
func PredictNetCashFlow(expense, income []schema.SeriesPoint, periodsAhead int, confidenceLevel float64) *schema.NetCashFlowPrediction {
	expenseForecast := PredictFuture(expense, periodsAhead, confidenceLevel)
	incomeForecast := PredictFuture(income, periodsAhead, confidenceLevel)
	if expenseForecast == nil || incomeForecast == nil {
		return nil
	}

	n := min(len(expenseForecast), len(incomeForecast))
	result := &schema.NetCashFlowPrediction{Predictions: make([]schema.NetCashFlowPoint, n)}
	var total float64
	for i := range n {
		in := incomeForecast[i].PredictedValue
		out := expenseForecast[i].PredictedValue
		result.Predictions[i] = schema.NetCashFlowPoint{
			PeriodLabel:      expenseForecast[i].PeriodLabel,
			PredictedNet:     in - out,
			PredictedIncome:  in,
			PredictedExpense: out,
		}
		total += in - out
	}
	if n > 0 {
		result.AverageNet = total / float64(n)
	}
	return result
}

// GenerateScenarios scales the central forecasts by the optimistic, realistic
// and pessimistic multipliers. It returns nil when a forecast is unavailable.
func GenerateScenarios(expense, income []schema.SeriesPoint, periodsAhead int, confidenceLevel float64) []schema.Scenario {
	base := PredictNetCashFlow(expense, income, periodsAhead, confidenceLevel)
	if base == nil {
		return nil
	}

	scenarios := make([]schema.Scenario, 0, len(scenarioFactors))
	for _, f := range scenarioFactors {
		s := schema.Scenario{
			Name:              f.name,
			ExpenseMultiplier: f.expense,
			IncomeMultiplier:  f.income,
			Points:            make([]schema.ScenarioPoint, len(base.Predictions)),
		}
		for i, p := range base.Predictions {
			in := p.PredictedIncome * f.income
			out := p.PredictedExpense * f.expense
			s.Points[i] = schema.ScenarioPoint{
				PeriodLabel: p.PeriodLabel,
				Income:      in,
				Expense:     out,
				Net:         in - out,
			}
			s.TotalNet += in - out
		}
		scenarios = append(scenarios, s)
	}
	return scenarios
}
