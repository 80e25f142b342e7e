package algo

import (
	"math"
	"testing"
	"time"

	"github.com/huangsam/cashtrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func txn(id string, date string, amount float64) schema.Transaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return schema.Transaction{ID: id, Date: d, Amount: amount, Type: schema.ExpenseType}
}

func TestAnalyzeSeasonality(t *testing.T) {
	txns := []schema.Transaction{
		txn("a", "2024-01-10", 100),
		txn("b", "2024-02-03", 200),
		txn("c", "2024-03-15", 300),
		txn("d", "2024-04-01", 150),
		txn("e", "2024-04-28", 250),
	}

	got := AnalyzeSeasonality(txns)
	assert.Equal(t, map[string]float64{
		"2024-01": 100,
		"2024-02": 200,
		"2024-03": 300,
		"2024-04": 400,
	}, got.SeasonalIndexByMonth)
	assert.InDelta(t, 0.4472136, got.SeasonalStrength, 1e-6)
	assert.Equal(t, []string{"2024-04", "2024-03", "2024-02"}, got.PeakMonths)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, got.LowMonths)
	assert.Equal(t, schema.ModerateSeasonality, got.Pattern)
}

func TestAnalyzeSeasonalityEdgeCases(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		got := AnalyzeSeasonality(nil)
		assert.Empty(t, got.SeasonalIndexByMonth)
		assert.Empty(t, got.PeakMonths)
		assert.Empty(t, got.LowMonths)
		assert.Equal(t, schema.WeakSeasonality, got.Pattern)
	})

	t.Run("ties keep month order", func(t *testing.T) {
		got := AnalyzeSeasonality([]schema.Transaction{
			txn("a", "2024-03-01", 50),
			txn("b", "2024-01-01", 50),
			txn("c", "2024-02-01", 50),
			txn("d", "2024-04-01", 50),
		})
		assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, got.PeakMonths)
		assert.Equal(t, []string{"2024-01", "2024-02", "2024-03"}, got.LowMonths)
		assert.Zero(t, got.SeasonalStrength)
	})

	t.Run("fewer than three months", func(t *testing.T) {
		got := AnalyzeSeasonality([]schema.Transaction{
			txn("a", "2024-01-01", 10),
			txn("b", "2024-02-01", 90),
		})
		assert.Equal(t, []string{"2024-02", "2024-01"}, got.PeakMonths)
		assert.Len(t, got.LowMonths, 2)
		assert.Equal(t, schema.StrongSeasonality, got.Pattern)
	})
}

func TestDetectSeasonalPattern(t *testing.T) {
	t.Run("too short", func(t *testing.T) {
		assert.Equal(t, schema.InsufficientData, DetectSeasonalPattern(make([]float64, 11)))
	})

	t.Run("flat", func(t *testing.T) {
		values := make([]float64, 24)
		for i := range values {
			values[i] = 300
		}
		assert.Equal(t, schema.NoSeasonal, DetectSeasonalPattern(values))
	})

	t.Run("yearly cycle", func(t *testing.T) {
		values := make([]float64, 36)
		for i := range values {
			values[i] = 500 + 100*math.Sin(2*math.Pi*float64(i)/12)
		}
		assert.Equal(t, schema.StrongSeasonal, DetectSeasonalPattern(values))
	})

	t.Run("alternating", func(t *testing.T) {
		values := make([]float64, 12)
		for i := range values {
			values[i] = 100
			if i%2 == 1 {
				values[i] = 300
			}
		}
		assert.Equal(t, schema.StrongSeasonal, DetectSeasonalPattern(values))
	})

	t.Run("positive level alone is not seasonal", func(t *testing.T) {
		flat := make([]float64, 12)
		noisy := []float64{306, 309, 302, 305, 291, 294, 295, 290, 304, 292, 293, 300}
		for i := range flat {
			flat[i] = 300
		}
		assert.Equal(t, schema.NoSeasonal, DetectSeasonalPattern(flat))
		assert.Equal(t, schema.NoSeasonal, DetectSeasonalPattern(noisy))
	})

	t.Run("shifting the level keeps the pattern", func(t *testing.T) {
		base := make([]float64, 24)
		shifted := make([]float64, 24)
		for i := range base {
			base[i] = 100 * math.Sin(2*math.Pi*float64(i)/12)
			shifted[i] = base[i] + 5000
		}
		assert.Equal(t, DetectSeasonalPattern(base), DetectSeasonalPattern(shifted))
	})
}

func TestAutocorrelation(t *testing.T) {
	assert.Nil(t, Autocorrelation(nil, 12))

	acf := Autocorrelation([]float64{1, 3, 1, 3}, 12)
	require.Len(t, acf, 4, "lags stop before running out of pairs")
	assert.InDelta(t, 1.0, acf[0], 1e-12)
	assert.InDelta(t, -1.0, acf[1], 1e-12)
	assert.InDelta(t, 1.0, acf[2], 1e-12)
	assert.InDelta(t, -1.0, acf[3], 1e-12)

	// Centered on the mean, a constant offset has no effect.
	shifted := Autocorrelation([]float64{1001, 1003, 1001, 1003}, 12)
	assert.InDeltaSlice(t, acf, shifted, 1e-9)
}
