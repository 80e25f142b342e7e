package algo

import (
	"math"

	"github.com/huangsam/cashtrend/schema"
)

const (
	// MinFitRSquared is the fit quality at or below which a direction is not trusted.
	MinFitRSquared = 0.1

	// SlopeThreshold is the absolute slope under which a series counts as flat.
	SlopeThreshold = 0.05

	// strengthSlopeScale is the slope magnitude that saturates the slope half of TrendStrength.
	strengthSlopeScale = 0.1
)

// ClassifyTrend maps a fitted slope and its R-squared to a trend label.
// A weak fit short-circuits to stable before the slope is looked at.
func ClassifyTrend(slope, rSquared float64) schema.Trend {
	if rSquared <= MinFitRSquared {
		return schema.TrendStable
	}
	if math.Abs(slope) < SlopeThreshold {
		return schema.TrendStable
	}
	if slope > 0 {
		return schema.TrendIncreasing
	}
	return schema.TrendDecreasing
}

// Volatility is the coefficient of variation: population standard deviation over the mean.
// It returns 0 for fewer than two values or a zero mean. The mean is taken by magnitude
// so a series that is mostly negative still reports a non-negative spread.
func Volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	if m == 0 {
		return 0
	}
	return populationStdDev(values) / math.Abs(m)
}

// Confidence is the adjusted R-squared for n points, clamped to [0, 1].
// Fewer than three points have no degrees of freedom left and score 0.
func Confidence(rSquared float64, n int) float64 {
	if n < 3 {
		return 0
	}
	adj := 1 - (1-rSquared)*float64(n-1)/float64(n-2)
	return clamp(adj, 0, 1)
}

// TrendStrength averages the saturated slope magnitude with the fit quality.
func TrendStrength(slope, rSquared float64) float64 {
	return (math.Min(1, math.Abs(slope)/strengthSlopeScale) + rSquared) / 2
}

// AnalyzeTrend runs regression, classification, volatility, seasonality and
// breakpoint detection over one ordered series.
func AnalyzeTrend(series []schema.SeriesPoint) schema.TrendResult {
	values := amounts(series)
	reg := RegressValues(values)
	return schema.TrendResult{
		Trend:           ClassifyTrend(reg.Slope, reg.RSquared),
		Slope:           reg.Slope,
		Intercept:       reg.Intercept,
		RSquared:        reg.RSquared,
		Volatility:      Volatility(values),
		Confidence:      Confidence(reg.RSquared, len(values)),
		TrendStrength:   TrendStrength(reg.Slope, reg.RSquared),
		SeasonalPattern: DetectSeasonalPattern(values),
		Breakpoints:     DetectBreakpoints(values),
	}
}
