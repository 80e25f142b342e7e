package algo

import (
	"fmt"
	"testing"
	"time"

	"github.com/huangsam/cashtrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatWithOutlier(base, outlier float64, n int) []schema.Transaction {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	txns := make([]schema.Transaction, 0, n)
	for i := range n - 1 {
		txns = append(txns, schema.Transaction{ID: fmt.Sprintf("t%d", i), Date: start.AddDate(0, 0, i), Amount: base})
	}
	return append(txns, schema.Transaction{
		ID:       "outlier",
		Date:     start.AddDate(0, 0, n-1),
		Amount:   outlier,
		Category: "travel",
	})
}

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		z        float64
		expected schema.Severity
	}{
		{4.01, schema.SeverityCritical},
		{4.0, schema.SeverityHigh},
		{3.5, schema.SeverityHigh},
		{3.0, schema.SeverityMedium},
		{2.6, schema.SeverityMedium},
		{2.5, schema.SeverityLow},
		{2.1, schema.SeverityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ClassifySeverity(tt.z), "z=%v", tt.z)
	}
}

func TestDetectAnomalies(t *testing.T) {
	t.Run("spike", func(t *testing.T) {
		got := DetectAnomalies(flatWithOutlier(100, 1000, 20), DefaultAnomalyThreshold)
		require.Len(t, got, 1)
		assert.Equal(t, "outlier", got[0].TransactionRef)
		assert.Equal(t, schema.AnomalySpike, got[0].Type)
		assert.Equal(t, schema.SeverityCritical, got[0].Severity)
		assert.InDelta(t, 4.3589, got[0].ZScore, 1e-4)
		assert.Contains(t, got[0].Explanation, "travel transaction")
		assert.Contains(t, got[0].Explanation, "above")
	})

	t.Run("drop", func(t *testing.T) {
		got := DetectAnomalies(flatWithOutlier(100, 0, 20), DefaultAnomalyThreshold)
		require.Len(t, got, 1)
		assert.Equal(t, schema.AnomalyDrop, got[0].Type)
		assert.Contains(t, got[0].Explanation, "below")
	})

	t.Run("zero spread", func(t *testing.T) {
		got := DetectAnomalies(flatWithOutlier(100, 100, 20), DefaultAnomalyThreshold)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("too few", func(t *testing.T) {
		assert.Empty(t, DetectAnomalies(flatWithOutlier(100, 1000, 1), DefaultAnomalyThreshold))
	})

	t.Run("sorted by z-score", func(t *testing.T) {
		txns := flatWithOutlier(100, 1000, 40)
		txns[0].Amount = 700
		txns[0].ID = "second"
		got := DetectAnomalies(txns, DefaultAnomalyThreshold)
		require.Len(t, got, 2)
		assert.Equal(t, "outlier", got[0].TransactionRef)
		assert.Equal(t, "second", got[1].TransactionRef)
		assert.Greater(t, got[0].ZScore, got[1].ZScore)
	})

	t.Run("lower threshold exposes low tier", func(t *testing.T) {
		// Eight points: seven at 0 and one at 10 puts the outlier at z = sqrt(7) ~ 2.65.
		txns := flatWithOutlier(0, 10, 8)
		got := DetectAnomalies(txns, 2.0)
		require.Len(t, got, 1)
		assert.Equal(t, schema.SeverityMedium, got[0].Severity)

		// Six points: z = sqrt(5) ~ 2.24, below the default threshold.
		small := flatWithOutlier(0, 10, 6)
		assert.Empty(t, DetectAnomalies(small, DefaultAnomalyThreshold))
		low := DetectAnomalies(small, 2.0)
		require.Len(t, low, 1)
		assert.Equal(t, schema.SeverityLow, low[0].Severity)
	})
}

func TestDetectAnomaliesScaleMonotonic(t *testing.T) {
	txns := flatWithOutlier(100, 900, 30)
	txns[3].Amount = 400
	base := DetectAnomalies(txns, DefaultAnomalyThreshold)
	require.NotEmpty(t, base)

	// Stretch every distance from the mean by k.
	var sum float64
	for _, tx := range txns {
		sum += tx.Amount
	}
	m := sum / float64(len(txns))
	for _, k := range []float64{1.5, 4, 25} {
		scaled := make([]schema.Transaction, len(txns))
		for i, tx := range txns {
			scaled[i] = tx
			scaled[i].Amount = m + k*(tx.Amount-m)
		}
		got := DetectAnomalies(scaled, DefaultAnomalyThreshold)
		require.Len(t, got, len(base), "k=%v", k)
		for i := range base {
			assert.Equal(t, base[i].TransactionRef, got[i].TransactionRef)
			assert.GreaterOrEqual(t, severityRank(got[i].Severity), severityRank(base[i].Severity))
		}
	}
}

func severityRank(s schema.Severity) int {
	return map[schema.Severity]int{
		schema.SeverityLow:      0,
		schema.SeverityMedium:   1,
		schema.SeverityHigh:     2,
		schema.SeverityCritical: 3,
	}[s]
}
