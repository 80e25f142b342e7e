package algo

import (
	"fmt"
	"math"
	"sort"

	"github.com/huangsam/cashtrend/schema"
)

// DefaultAnomalyThreshold is the z-score above which an amount is flagged.
const DefaultAnomalyThreshold = 2.5

// ClassifySeverity maps a z-score to a severity tier. Scores at or below 2.5
// are low, which only surfaces when the flagging threshold is lowered under 2.5.
func ClassifySeverity(z float64) schema.Severity {
	switch {
	case z > 4:
		return schema.SeverityCritical
	case z > 3:
		return schema.SeverityHigh
	case z > 2.5:
		return schema.SeverityMedium
	default:
		return schema.SeverityLow
	}
}

// DetectAnomalies flags transactions whose amount lies more than threshold
// population standard deviations from the mean. Amounts keep their sign, so a
// value above the mean is a spike and anything else a drop. The result is
// sorted by z-score, highest first. A zero spread yields no anomalies.
func DetectAnomalies(txns []schema.Transaction, threshold float64) []schema.AnomalyRecord {
	anomalies := []schema.AnomalyRecord{}
	if len(txns) < 2 {
		return anomalies
	}

	values := make([]float64, len(txns))
	for i, t := range txns {
		values[i] = t.Amount
	}
	m := mean(values)
	std := populationStdDev(values)
	if std == 0 || isFlat(std*std, m) {
		return anomalies
	}

	for _, t := range txns {
		z := math.Abs(t.Amount-m) / std
		if z <= threshold {
			continue
		}
		kind := schema.AnomalyDrop
		if t.Amount > m {
			kind = schema.AnomalySpike
		}
		anomalies = append(anomalies, schema.AnomalyRecord{
			TransactionRef: t.ID,
			Date:           t.Date,
			Amount:         t.Amount,
			ZScore:         z,
			Severity:       ClassifySeverity(z),
			Type:           kind,
			Explanation:    explainAnomaly(t, kind, z, m),
		})
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].ZScore > anomalies[j].ZScore
	})
	return anomalies
}

func explainAnomaly(t schema.Transaction, kind schema.AnomalyType, z, m float64) string {
	direction := "above"
	if kind == schema.AnomalyDrop {
		direction = "below"
	}
	subject := "Transaction"
	if t.Category != "" {
		subject = fmt.Sprintf("%s transaction", t.Category)
	}
	return fmt.Sprintf("%s of %.2f is %.1f standard deviations %s the average of %.2f",
		subject, t.Amount, z, direction, m)
}
