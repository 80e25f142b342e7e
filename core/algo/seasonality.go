package algo

import (
	"sort"

	"github.com/huangsam/cashtrend/schema"
)

const (
	// MinSeasonalPoints is the shortest series checked for a seasonal pattern.
	MinSeasonalPoints = 12

	// maxSeasonalLag is the longest lag considered, one year of monthly periods.
	maxSeasonalLag = 12

	strongAutocorrelation   = 0.7
	moderateAutocorrelation = 0.4

	strongSeasonalStrength   = 0.5
	moderateSeasonalStrength = 0.2

	// extremeMonthCount is how many peak and low months are reported.
	extremeMonthCount = 3

	flatTolerance = 1e-20
)

// monthKeyLayout buckets transactions by calendar month.
const monthKeyLayout = "2006-01"

type monthTotal struct {
	key   string
	total float64
}

// AnalyzeSeasonality sums transactions per calendar month and reports how
// uneven those monthly totals are, along with the three highest and lowest months.
func AnalyzeSeasonality(txns []schema.Transaction) schema.SeasonalityResult {
	index := make(map[string]float64)
	for _, t := range txns {
		index[t.Date.Format(monthKeyLayout)] += t.Amount
	}

	buckets := make([]monthTotal, 0, len(index))
	for k, v := range index {
		buckets = append(buckets, monthTotal{key: k, total: v})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].key < buckets[j].key })

	totals := make([]float64, len(buckets))
	for i, b := range buckets {
		totals[i] = b.total
	}
	strength := Volatility(totals)

	return schema.SeasonalityResult{
		SeasonalIndexByMonth: index,
		SeasonalStrength:     strength,
		PeakMonths:           extremeMonths(buckets, true),
		LowMonths:            extremeMonths(buckets, false),
		Pattern:              classifySeasonalStrength(strength),
	}
}

// extremeMonths returns up to three month keys ordered by total, highest first
// when peak is set and lowest first otherwise. Ties keep key order.
func extremeMonths(buckets []monthTotal, peak bool) []string {
	sorted := make([]monthTotal, len(buckets))
	copy(sorted, buckets)
	sort.SliceStable(sorted, func(i, j int) bool {
		if peak {
			return sorted[i].total > sorted[j].total
		}
		return sorted[i].total < sorted[j].total
	})

	limit := min(extremeMonthCount, len(sorted))
	out := make([]string, limit)
	for i := range limit {
		out[i] = sorted[i].key
	}
	return out
}

func classifySeasonalStrength(strength float64) schema.SeasonalityStrength {
	switch {
	case strength > strongSeasonalStrength:
		return schema.StrongSeasonality
	case strength > moderateSeasonalStrength:
		return schema.ModerateSeasonality
	default:
		return schema.WeakSeasonality
	}
}

// DetectSeasonalPattern classifies a per-period series by its strongest
// autocorrelation over lags 1 to 12. Values are centered on their mean and each
// lag is normalized by lag 0, so the thresholds read as correlations. This differs
// from the raw sum(v[i]*v[i+l])/(n-l): on positive amounts the raw products are
// on the order of mean squared and every spending series would clear 0.7.
func DetectSeasonalPattern(values []float64) schema.SeasonalPattern {
	n := len(values)
	if n < MinSeasonalPoints {
		return schema.InsufficientData
	}

	acf := Autocorrelation(values, maxSeasonalLag)
	if isFlat(acf[0], mean(values)) {
		return schema.NoSeasonal
	}

	best := 0.0
	for lag := 1; lag < len(acf); lag++ {
		if r := acf[lag] / acf[0]; r > best {
			best = r
		}
	}

	switch {
	case best > strongAutocorrelation:
		return schema.StrongSeasonal
	case best > moderateAutocorrelation:
		return schema.ModerateSeasonal
	default:
		return schema.NoSeasonal
	}
}

// Autocorrelation returns sum(c[i]*c[i+l])/(n-l) for l in 0..maxLag over the
// mean-centered values. Lags that leave no overlapping pairs are omitted.
func Autocorrelation(values []float64, maxLag int) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}
	m := mean(values)
	centered := make([]float64, n)
	for i, v := range values {
		centered[i] = v - m
	}

	maxLag = min(maxLag, n-1)
	acf := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < n; i++ {
			sum += centered[i] * centered[i+lag]
		}
		acf[lag] = sum / float64(n-lag)
	}
	return acf
}

// isFlat reports whether a variance is rounding noise relative to the mean.
func isFlat(variance, m float64) bool {
	return variance <= flatTolerance*max(1, m*m)
}
