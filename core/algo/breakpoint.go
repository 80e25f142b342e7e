package algo

import (
	"math"

	"github.com/huangsam/cashtrend/schema"
)

const (
	// MinBreakpointPoints is the shortest series scanned for breakpoints.
	MinBreakpointPoints = 10

	// breakpointChange is the relative mean shift that marks a breakpoint.
	breakpointChange = 0.3
)

// DetectBreakpoints slides a window of floor(n/4) points across the series and
// records every index where the mean of the following window differs from the
// mean of the preceding one by more than 30%. Significance is the change divided
// by the average spread of both windows, or the change itself when both are flat.
// Windows with a zero preceding mean are skipped.
func DetectBreakpoints(values []float64) []schema.Breakpoint {
	breakpoints := []schema.Breakpoint{}
	n := len(values)
	if n < MinBreakpointPoints {
		return breakpoints
	}

	w := n / 4
	for i := w; i < n-w; i++ {
		before := values[i-w : i]
		after := values[i : i+w]
		beforeMean := mean(before)
		if beforeMean == 0 {
			continue
		}
		afterMean := mean(after)

		change := math.Abs(afterMean-beforeMean) / math.Abs(beforeMean)
		if change <= breakpointChange {
			continue
		}

		significance := change
		if avgStd := (populationStdDev(before) + populationStdDev(after)) / 2; !isFlat(avgStd*avgStd, beforeMean) {
			significance = change / avgStd
		}
		breakpoints = append(breakpoints, schema.Breakpoint{
			Index:        i,
			Change:       change,
			BeforeMean:   beforeMean,
			AfterMean:    afterMean,
			Significance: significance,
		})
	}
	return breakpoints
}
