// Package algo is the numeric core of cashtrend. Every function is pure:
// inputs are never mutated, nothing is logged and no clock or randomness is read.
package algo

import (
	"fmt"

	"github.com/huangsam/cashtrend/schema"
)

// LinearRegression fits y = slope*x + intercept with ordinary least squares.
// Fewer than two points or mismatched lengths yield a zeroed result.
// A flat y yields slope 0 and R-squared 0.
func LinearRegression(x, y []float64) schema.Regression {
	n := len(x)
	if n < 2 || n != len(y) {
		return schema.Regression{}
	}

	var sumX, sumY, sumXY, sumX2 float64
	for i := range n {
		sumX += x[i]
		sumY += y[i]
		sumXY += x[i] * y[i]
		sumX2 += x[i] * x[i]
	}

	fn := float64(n)
	denom := fn*sumX2 - sumX*sumX
	if denom == 0 {
		// All x are equal, so no line can be fitted through them.
		return schema.Regression{Intercept: sumY / fn}
	}

	meanY := sumY / fn
	if constant(y) {
		return schema.Regression{Intercept: meanY}
	}
	var ssTot float64
	for i := range n {
		ssTot += (y[i] - meanY) * (y[i] - meanY)
	}
	if ssTot == 0 {
		return schema.Regression{Intercept: meanY}
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	var ssRes float64
	for i := range n {
		fit := slope*x[i] + intercept
		ssRes += (y[i] - fit) * (y[i] - fit)
	}

	r2 := clamp(1-ssRes/ssTot, 0, 1)
	return schema.Regression{Slope: slope, Intercept: intercept, RSquared: r2}
}

// MustLinearRegression is LinearRegression for callers that treat mismatched
// input lengths as a bug. It panics instead of returning a zeroed result.
func MustLinearRegression(x, y []float64) schema.Regression {
	if len(x) != len(y) {
		panic(fmt.Sprintf("algo: regression input length mismatch: x=%d y=%d", len(x), len(y)))
	}
	return LinearRegression(x, y)
}

// RegressValues fits values against their 0-based index.
func RegressValues(values []float64) schema.Regression {
	return LinearRegression(indexes(len(values)), values)
}

// residualStdError returns sqrt(SSres/(n-2)) for the given fit, or 0 when n < 3.
func residualStdError(values []float64, reg schema.Regression) float64 {
	n := len(values)
	if n < 3 {
		return 0
	}
	var ssRes float64
	for i, v := range values {
		d := v - (reg.Slope*float64(i) + reg.Intercept)
		ssRes += d * d
	}
	return sqrt(ssRes / float64(n-2))
}

// indexes returns 0, 1, ..., n-1 as floats.
func indexes(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}
