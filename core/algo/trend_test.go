package algo

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/huangsam/cashtrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesOf(values ...float64) []schema.SeriesPoint {
	out := make([]schema.SeriesPoint, len(values))
	for i, v := range values {
		out[i] = schema.SeriesPoint{Period: monthKey(i), Amount: v}
	}
	return out
}

// monthKey returns consecutive month keys starting at 2024-01.
func monthKey(i int) string {
	return fmt.Sprintf("%04d-%02d", 2024+i/12, i%12+1)
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name     string
		slope    float64
		r2       float64
		expected schema.Trend
	}{
		{"weak fit short-circuits", 10, 0.05, schema.TrendStable},
		{"boundary fit is stable", 10, 0.1, schema.TrendStable},
		{"boundary fit negative slope is stable", -10, 0.1, schema.TrendStable},
		{"small slope", 0.01, 0.9, schema.TrendStable},
		{"small negative slope", -0.049, 0.9, schema.TrendStable},
		{"increasing", 2, 0.9, schema.TrendIncreasing},
		{"decreasing", -2, 0.9, schema.TrendDecreasing},
		{"threshold slope", 0.05, 0.5, schema.TrendIncreasing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyTrend(tt.slope, tt.r2))
			// Same input, same label.
			assert.Equal(t, ClassifyTrend(tt.slope, tt.r2), ClassifyTrend(tt.slope, tt.r2))
		})
	}
}

func TestVolatility(t *testing.T) {
	assert.Zero(t, Volatility(nil))
	assert.Zero(t, Volatility([]float64{100}))
	assert.Zero(t, Volatility([]float64{-5, 5}), "zero mean is guarded")
	assert.Zero(t, Volatility([]float64{7, 7, 7}))
	assert.InDelta(t, 0.4472136, Volatility([]float64{100, 200, 300, 400}), 1e-6)
	assert.InDelta(t, 0.4472136, Volatility([]float64{-100, -200, -300, -400}), 1e-6)
}

func TestVolatilityScaleInvariant(t *testing.T) {
	base := []float64{120, 80, 310, 95, 140, 60}
	want := Volatility(base)
	for _, k := range []float64{0.01, 0.5, 3, 1000} {
		scaled := make([]float64, len(base))
		for i, v := range base {
			scaled[i] = v * k
		}
		assert.InDelta(t, want, Volatility(scaled), 1e-12, "k=%v", k)
	}
}

func TestConfidence(t *testing.T) {
	assert.Zero(t, Confidence(1, 2))
	assert.InDelta(t, 1.0, Confidence(1, 5), 1e-12)
	// 1 - 0.8*4/3
	assert.Zero(t, Confidence(0.2, 5), "negative adjusted value clamps to 0")
	// 1 - 0.1*9/8
	assert.InDelta(t, 0.8875, Confidence(0.9, 10), 1e-12)
}

func TestTrendStrength(t *testing.T) {
	assert.InDelta(t, 1.0, TrendStrength(5, 1), 1e-12)
	assert.InDelta(t, 0.25, TrendStrength(0.05, 0), 1e-12)
	assert.InDelta(t, 0.45, TrendStrength(-0.02, 0.7), 1e-12)
}

func TestAnalyzeTrend(t *testing.T) {
	t.Run("identical values are stable", func(t *testing.T) {
		got := AnalyzeTrend(seriesOf(250, 250, 250, 250, 250))
		assert.Equal(t, schema.TrendStable, got.Trend)
		assert.Zero(t, got.Slope)
		assert.Zero(t, got.RSquared)
		assert.Zero(t, got.Volatility)
		assert.Equal(t, schema.InsufficientData, got.SeasonalPattern)
		assert.Empty(t, got.Breakpoints)
	})

	t.Run("linear growth", func(t *testing.T) {
		got := AnalyzeTrend(seriesOf(3, 5, 7, 9, 11))
		assert.Equal(t, schema.TrendIncreasing, got.Trend)
		assert.InDelta(t, 2.0, got.Slope, 1e-9)
		assert.InDelta(t, 3.0, got.Intercept, 1e-9)
		assert.InDelta(t, 1.0, got.RSquared, 1e-9)
		assert.InDelta(t, 1.0, got.Confidence, 1e-9)
		assert.InDelta(t, 1.0, got.TrendStrength, 1e-9)
	})

	t.Run("empty series", func(t *testing.T) {
		got := AnalyzeTrend(nil)
		assert.Equal(t, schema.TrendStable, got.Trend)
		assert.NotNil(t, got.Breakpoints)
	})
}

func TestTrendResultJSONRoundTrip(t *testing.T) {
	original := AnalyzeTrend(seriesOf(101.37, 99.12, 140.01, 133.33, 180.7, 171.9, 220.05, 219.99, 260.4, 301.1, 90.2, 333.3))
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded schema.TrendResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}
