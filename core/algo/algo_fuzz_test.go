package algo

import (
	"math"
	"testing"
)

// finiteValues keeps amounts that look like money: finite, bounded and rounded to cents.
func finiteValues(raw []float64) []float64 {
	out := make([]float64, 0, len(raw))
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > 1e9 {
			continue
		}
		out = append(out, math.Round(v*100)/100)
	}
	return out
}

// FuzzAnalyzeTrend checks that no NaN or Inf escapes the trend analysis.
func FuzzAnalyzeTrend(f *testing.F) {
	f.Add(100.0, 200.0, 300.0, 400.0, 5.0)
	f.Add(0.0, 0.0, 0.0, 0.0, 0.0)
	f.Add(-50.0, 50.0, -50.0, 50.0, 0.0)
	f.Add(1e9, 1.0, 1e9, 1.0, 1e9)
	f.Fuzz(func(t *testing.T, a, b, c, d, e float64) {
		values := finiteValues([]float64{a, b, c, d, e, a, b, c, d, e, a, b})
		got := AnalyzeTrend(seriesOf(values...))
		for name, v := range map[string]float64{
			"slope":      got.Slope,
			"intercept":  got.Intercept,
			"r2":         got.RSquared,
			"volatility": got.Volatility,
			"confidence": got.Confidence,
			"strength":   got.TrendStrength,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("%s is not finite: %v for %v", name, v, values)
			}
		}
		if got.RSquared < 0 || got.RSquared > 1 {
			t.Fatalf("r2 out of range: %v", got.RSquared)
		}
		if got.Confidence < 0 || got.Confidence > 1 {
			t.Fatalf("confidence out of range: %v", got.Confidence)
		}
	})
}

// FuzzPredictFuture checks that projections are never negative.
func FuzzPredictFuture(f *testing.F) {
	f.Add(10.0, 20.0, 30.0, 3)
	f.Add(30.0, 20.0, 10.0, 6)
	f.Add(-5.0, 0.0, 5.0, 1)
	f.Fuzz(func(t *testing.T, a, b, c float64, periods int) {
		values := finiteValues([]float64{a, b, c})
		if len(values) < 3 || periods < 0 || periods > 120 {
			return
		}
		got := PredictFuture(seriesOf(values...), periods, 0.95)
		if len(got) != periods {
			t.Fatalf("expected %d points, got %d", periods, len(got))
		}
		for _, p := range got {
			if p.PredictedValue < 0 || p.ConfidenceInterval.Lower < 0 || p.ConfidenceInterval.Upper < 0 {
				t.Fatalf("negative projection: %+v", p)
			}
			if math.IsNaN(p.PredictedValue) || math.IsNaN(p.ConfidenceInterval.Upper) {
				t.Fatalf("NaN projection: %+v", p)
			}
		}
	})
}

// FuzzDetectBreakpoints checks that breakpoints stay inside the scanned range.
func FuzzDetectBreakpoints(f *testing.F) {
	f.Add(100.0, 200.0, 0.0)
	f.Add(1.0, 1.0, 1.0)
	f.Fuzz(func(t *testing.T, a, b, c float64) {
		values := finiteValues([]float64{a, a, a, b, b, b, c, c, c, a, b, c})
		got := DetectBreakpoints(values)
		w := len(values) / 4
		for _, bp := range got {
			if bp.Index < w || bp.Index >= len(values)-w {
				t.Fatalf("breakpoint %d outside [%d, %d)", bp.Index, w, len(values)-w)
			}
			if math.IsNaN(bp.Change) || math.IsInf(bp.Significance, 0) {
				t.Fatalf("non-finite breakpoint: %+v", bp)
			}
		}
	})
}
