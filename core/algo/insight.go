package algo

import (
	"fmt"

	"github.com/huangsam/cashtrend/schema"
)

const (
	baseHealthScore = 50
	trendWeight     = 15
	stabilityWeight = 10

	highVolatility = 0.5
	lowVolatility  = 0.2

	// riskVolatility is the volatility above which a series adds risk.
	riskVolatility = 0.7

	// lowConfidence is the trend confidence under which a projection adds risk.
	lowConfidence = 0.5
)

// NetSeries subtracts expense from income index by index. Periods come from the
// expense series and the result is as long as the shorter input.
func NetSeries(expense, income []schema.SeriesPoint) []schema.SeriesPoint {
	n := min(len(expense), len(income))
	out := make([]schema.SeriesPoint, n)
	for i := range n {
		out[i] = schema.SeriesPoint{
			Period: expense[i].Period,
			Amount: income[i].Amount - expense[i].Amount,
		}
	}
	return out
}

// HealthScore starts at 50 and moves 15 points per income or expense trend
// direction and 10 points per volatility or net trend signal, clamped to [0, 100].
func HealthScore(expense, income schema.TrendResult, net schema.Trend) float64 {
	score := float64(baseHealthScore)

	switch income.Trend {
	case schema.TrendIncreasing:
		score += trendWeight
	case schema.TrendDecreasing:
		score -= trendWeight
	}

	switch expense.Trend {
	case schema.TrendDecreasing:
		score += trendWeight
	case schema.TrendIncreasing:
		score -= trendWeight
	}

	switch {
	case expense.Volatility > highVolatility:
		score -= stabilityWeight
	case expense.Volatility < lowVolatility:
		score += stabilityWeight
	}

	switch net {
	case schema.TrendIncreasing:
		score += stabilityWeight
	case schema.TrendDecreasing:
		score -= stabilityWeight
	}

	return clamp(score, 0, 100)
}

// AssessRisk raises the risk level one step for every condition present and
// returns the level with a description of each condition.
func AssessRisk(expense, income schema.TrendResult) (schema.RiskLevel, []string) {
	factors := []string{}
	if expense.Volatility > riskVolatility || income.Volatility > riskVolatility {
		factors = append(factors, "High volatility in cash flow")
	}
	if income.Trend == schema.TrendDecreasing {
		factors = append(factors, "Declining income trend")
	}
	if expense.Trend == schema.TrendIncreasing {
		factors = append(factors, "Rising expense trend")
	}
	if expense.Confidence < lowConfidence {
		factors = append(factors, "Low confidence in expense projections")
	}

	levels := []schema.RiskLevel{schema.RiskLow, schema.RiskMedium, schema.RiskHigh}
	return levels[min(len(factors), len(levels)-1)], factors
}

// ClassifySustainability decides whether the historical net cash flow can be kept up.
func ClassifySustainability(averageNet float64, net schema.Trend) schema.Sustainability {
	switch {
	case averageNet <= 0:
		return schema.Unsustainable
	case net == schema.TrendDecreasing:
		return schema.AtRisk
	default:
		return schema.Sustainable
	}
}

// BuildInsights turns an overall report into recommendations, most urgent first.
func BuildInsights(report schema.OverallTrends) []schema.Insight {
	var insights []schema.Insight
	add := func(kind schema.InsightType, priority schema.Priority, title, msg string) {
		insights = append(insights, schema.Insight{Type: kind, Title: title, Message: msg, Priority: priority})
	}

	expense, income, net := report.ExpenseTrends, report.IncomeTrends, report.NetCashFlow

	if net.AverageNet <= 0 && len(net.Series) > 0 {
		add(schema.InsightDanger, schema.PriorityCritical, "Spending exceeds income",
			fmt.Sprintf("Expenses outpace income by %.2f per period on average. Cut discretionary spending first.", -net.AverageNet))
	}

	switch income.Trend {
	case schema.TrendDecreasing:
		add(schema.InsightDanger, schema.PriorityHigh, "Income is declining",
			fmt.Sprintf("Income falls by about %.2f per period. Review income sources and build a buffer.", -income.Slope))
	case schema.TrendIncreasing:
		add(schema.InsightSuccess, schema.PriorityLow, "Income is growing",
			fmt.Sprintf("Income rises by about %.2f per period.", income.Slope))
	}

	switch expense.Trend {
	case schema.TrendIncreasing:
		add(schema.InsightWarning, schema.PriorityHigh, "Expenses are rising",
			fmt.Sprintf("Expenses grow by about %.2f per period. Check which categories are driving the increase.", expense.Slope))
	case schema.TrendDecreasing:
		add(schema.InsightSuccess, schema.PriorityLow, "Expenses are falling",
			fmt.Sprintf("Expenses drop by about %.2f per period.", -expense.Slope))
	}

	if net.Trend == schema.TrendDecreasing && net.AverageNet > 0 {
		add(schema.InsightWarning, schema.PriorityMedium, "Savings are shrinking",
			"Net cash flow is still positive but trending down.")
	}

	if expense.Volatility > highVolatility {
		add(schema.InsightWarning, schema.PriorityMedium, "Irregular spending",
			fmt.Sprintf("Expense volatility is %.0f%% of the average. A monthly budget would smooth it out.", expense.Volatility*100))
	}

	if n := len(expense.Breakpoints); n > 0 {
		add(schema.InsightInfo, schema.PriorityMedium, "Spending pattern shifted",
			fmt.Sprintf("Detected %d point(s) where average spending changed by more than 30%%.", n))
	}

	switch expense.SeasonalPattern {
	case schema.StrongSeasonal, schema.ModerateSeasonal:
		add(schema.InsightInfo, schema.PriorityLow, "Seasonal spending",
			"Spending repeats on a seasonal cycle. Plan ahead for peak periods.")
	}

	if expense.Confidence < lowConfidence {
		add(schema.InsightInfo, schema.PriorityLow, "Limited trend reliability",
			"The expense history is too short or too noisy for confident projections.")
	}

	if len(insights) == 0 {
		add(schema.InsightSuccess, schema.PriorityLow, "Finances look steady",
			"No notable changes in income or spending.")
	}

	schema.SortInsights(insights)
	return insights
}

// AnalyzeOverallTrends combines the expense and income trends with the net
// cash flow into a health score, risk level and recommendations.
func AnalyzeOverallTrends(expense, income []schema.SeriesPoint) schema.OverallTrends {
	expenseTrend := AnalyzeTrend(expense)
	incomeTrend := AnalyzeTrend(income)

	netSeries := NetSeries(expense, income)
	netValues := amounts(netSeries)
	netReg := RegressValues(netValues)
	net := schema.NetCashFlowTrend{
		Trend:      ClassifyTrend(netReg.Slope, netReg.RSquared),
		Slope:      netReg.Slope,
		RSquared:   netReg.RSquared,
		AverageNet: mean(netValues),
		Series:     netSeries,
	}

	score := HealthScore(expenseTrend, incomeTrend, net.Trend)
	risk, factors := AssessRisk(expenseTrend, incomeTrend)

	report := schema.OverallTrends{
		ExpenseTrends:   expenseTrend,
		IncomeTrends:    incomeTrend,
		NetCashFlow:     net,
		FinancialHealth: schema.FinancialHealth{Score: score, Rating: schema.HealthRating(score)},
		RiskLevel:       risk,
		RiskFactors:     factors,
		Sustainability:  ClassifySustainability(net.AverageNet, net.Trend),
	}
	report.Recommendations = BuildInsights(report)
	return report
}
