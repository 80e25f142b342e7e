// Package schema has models and shared constants for all parts of cashtrend.
package schema

import "time"

// SeriesPoint is one (period, amount) observation in a chronologically ordered series.
// Period is a sortable key such as "2024-03", "2024-W09" or "2024-03-01".
type SeriesPoint struct {
	Period string  `json:"period"`
	Amount float64 `json:"amount"`
}

// Transaction is a single raw ledger record.
type Transaction struct {
	ID          string          `json:"id" validate:"required"`
	Date        time.Time       `json:"date" validate:"required"`
	Amount      float64         `json:"amount" validate:"gte=0"`
	Type        TransactionType `json:"type" validate:"required,oneof=income expense"`
	Category    string          `json:"category,omitempty"`
	Description string          `json:"description,omitempty"`
}

// Regression is the ordinary least-squares fit of a series against its index.
type Regression struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
}

// Breakpoint marks an index where the local mean of a series shifts.
type Breakpoint struct {
	Index        int     `json:"index"`
	Change       float64 `json:"change"` // relative magnitude of the shift
	BeforeMean   float64 `json:"before_mean"`
	AfterMean    float64 `json:"after_mean"`
	Significance float64 `json:"significance"`
}

// TrendResult is the full trend analysis of one series.
type TrendResult struct {
	Trend           Trend           `json:"trend"`
	Slope           float64         `json:"slope"`
	Intercept       float64         `json:"intercept"`
	RSquared        float64         `json:"r_squared"`
	Volatility      float64         `json:"volatility"`
	Confidence      float64         `json:"confidence"`
	TrendStrength   float64         `json:"trend_strength"`
	SeasonalPattern SeasonalPattern `json:"seasonal_pattern"`
	Breakpoints     []Breakpoint    `json:"breakpoints"`
}

// AnomalyRecord flags a transaction whose amount is far from the mean.
type AnomalyRecord struct {
	TransactionRef string      `json:"transaction_ref"`
	Date           time.Time   `json:"date"`
	Amount         float64     `json:"amount"`
	ZScore         float64     `json:"z_score"`
	Severity       Severity    `json:"severity"`
	Type           AnomalyType `json:"type"`
	Explanation    string      `json:"explanation"`
}

// SeasonalityResult summarizes month-bucket totals of a transaction list.
type SeasonalityResult struct {
	SeasonalIndexByMonth map[string]float64  `json:"seasonal_index_by_month"`
	SeasonalStrength     float64             `json:"seasonal_strength"`
	PeakMonths           []string            `json:"peak_months"`
	LowMonths            []string            `json:"low_months"`
	Pattern              SeasonalityStrength `json:"pattern"`
}

// ConfidenceInterval bounds a projected value.
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// PredictionPoint is a single projected period.
type PredictionPoint struct {
	PeriodLabel        string             `json:"period_label"`
	PredictedValue     float64            `json:"predicted_value"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	Confidence         float64            `json:"confidence"`
}

// NetCashFlowPoint pairs projected income and expense for one period.
type NetCashFlowPoint struct {
	PeriodLabel      string  `json:"period_label"`
	PredictedNet     float64 `json:"predicted_net"`
	PredictedIncome  float64 `json:"predicted_income"`
	PredictedExpense float64 `json:"predicted_expense"`
}

// NetCashFlowPrediction is the projected net cash flow over the forecast horizon.
type NetCashFlowPrediction struct {
	Predictions []NetCashFlowPoint `json:"predictions"`
	AverageNet  float64            `json:"average_net"`
}

// ScenarioPoint is one period of a what-if scenario.
type ScenarioPoint struct {
	PeriodLabel string  `json:"period_label"`
	Income      float64 `json:"income"`
	Expense     float64 `json:"expense"`
	Net         float64 `json:"net"`
}

// Scenario is a deterministic what-if projection built from fixed multipliers.
type Scenario struct {
	Name              string          `json:"name"`
	ExpenseMultiplier float64         `json:"expense_multiplier"`
	IncomeMultiplier  float64         `json:"income_multiplier"`
	Points            []ScenarioPoint `json:"points"`
	TotalNet          float64         `json:"total_net"`
}

// Insight is a human-facing observation or recommendation.
type Insight struct {
	Type     InsightType `json:"type"`
	Title    string      `json:"title"`
	Message  string      `json:"message"`
	Priority Priority    `json:"priority"`
}

// NetCashFlowTrend describes the historical net series (income minus expense).
type NetCashFlowTrend struct {
	Trend      Trend         `json:"trend"`
	Slope      float64       `json:"slope"`
	RSquared   float64       `json:"r_squared"`
	AverageNet float64       `json:"average_net"`
	Series     []SeriesPoint `json:"series"`
}

// FinancialHealth is the 0-100 score derived from trends and volatility.
type FinancialHealth struct {
	Score  float64 `json:"score"`
	Rating string  `json:"rating"`
}

// OverallTrends is the combined report over the expense and income series.
type OverallTrends struct {
	ExpenseTrends   TrendResult      `json:"expense_trends"`
	IncomeTrends    TrendResult      `json:"income_trends"`
	NetCashFlow     NetCashFlowTrend `json:"net_cash_flow"`
	FinancialHealth FinancialHealth  `json:"financial_health"`
	RiskLevel       RiskLevel        `json:"risk_level"`
	RiskFactors     []string         `json:"risk_factors"`
	Sustainability  Sustainability   `json:"sustainability"`
	Recommendations []Insight        `json:"recommendations"`
}
