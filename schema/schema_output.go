package schema

import (
	"fmt"
	"sort"
)

// EnrichedAnomaly adds presentation data to an AnomalyRecord.
type EnrichedAnomaly struct {
	Rank   int        `json:"rank"`
	Series SeriesKind `json:"series,omitempty"`
	AnomalyRecord
}

// EnrichAnomalies adds a rank to anomalies that are already sorted by z-score.
func EnrichAnomalies(anomalies []AnomalyRecord) []EnrichedAnomaly {
	output := make([]EnrichedAnomaly, len(anomalies))
	for i, a := range anomalies {
		output[i] = EnrichedAnomaly{
			Rank:          i + 1,
			AnomalyRecord: a,
		}
	}
	return output
}

// SeriesTrend is the trend of one named series.
type SeriesTrend struct {
	Series SeriesKind    `json:"series"`
	Points []SeriesPoint `json:"points"`
	TrendResult
}

// TrendReport holds the trends of the expense and income series.
type TrendReport struct {
	Granularity Granularity   `json:"granularity"`
	Trends      []SeriesTrend `json:"trends"`
}

// SeriesSeasonality is the seasonality of one transaction type.
type SeriesSeasonality struct {
	Series SeriesKind `json:"series"`
	SeasonalityResult
}

// SeasonalityReport holds the seasonality of expense and income transactions.
type SeasonalityReport struct {
	Results []SeriesSeasonality `json:"results"`
}

// AnomalyReport holds ranked anomalies across expense and income transactions.
type AnomalyReport struct {
	Threshold float64           `json:"threshold"`
	Anomalies []EnrichedAnomaly `json:"anomalies"`
}

// SeriesForecast is the projection of one series, empty when unavailable.
type SeriesForecast struct {
	Series      SeriesKind        `json:"series"`
	Available   bool              `json:"available"`
	Predictions []PredictionPoint `json:"predictions"`
}

// ForecastReport holds the expense, income and net cash flow projections.
type ForecastReport struct {
	Granularity     Granularity            `json:"granularity"`
	PeriodsAhead    int                    `json:"periods_ahead"`
	ConfidenceLevel float64                `json:"confidence_level"`
	Forecasts       []SeriesForecast       `json:"forecasts"`
	NetCashFlow     *NetCashFlowPrediction `json:"net_cash_flow"`
}

// ScenarioReport holds the what-if projections.
type ScenarioReport struct {
	Granularity  Granularity `json:"granularity"`
	PeriodsAhead int         `json:"periods_ahead"`
	Scenarios    []Scenario  `json:"scenarios"`
}

// HealthRating maps a financial health score to a plain label.
func HealthRating(score float64) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Poor"
	}
}

// SortInsights orders insights from most to least urgent, keeping input order for ties.
func SortInsights(insights []Insight) {
	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Priority.Rank() < insights[j].Priority.Rank()
	})
}

// FormatMonths joins month keys for display.
func FormatMonths(months []string) string {
	if len(months) == 0 {
		return "-"
	}
	out := months[0]
	for _, m := range months[1:] {
		out = fmt.Sprintf("%s, %s", out, m)
	}
	return out
}
