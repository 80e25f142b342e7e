package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/schema"
)

// WriteTrendResults outputs the trend report, dispatching based on the output format configured.
func WriteTrendResults(report schema.TrendReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	return writeReport(cfg, reportWriters{
		table: func(w io.Writer) error { return writeTrendTable(w, report, cfg, fmtFloat, duration) },
		csv:   func(w io.Writer) error { return writeTrendCSV(w, report, fmtFloat) },
		json:  report,
	})
}

// writeTrendTable generates and writes the human-readable table.
func writeTrendTable(w io.Writer, report schema.TrendReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	headers := []string{"Series", "Trend", "Slope", "R²", "Volatility", "Confidence", "Strength", "Seasonal", "Breaks"}
	var rows [][]string
	periods := 0
	for _, t := range report.Trends {
		periods = max(periods, len(t.Points))
		rows = append(rows, []string{
			string(t.Series),
			contract.GetTrendColorLabel(t.Series, t.Trend),
			fmtFloat(t.Slope),
			fmtFloat(t.RSquared),
			fmtFloat(t.Volatility),
			fmtFloat(t.Confidence),
			fmtFloat(t.TrendStrength),
			string(t.SeasonalPattern),
			strconv.Itoa(len(t.Breakpoints)),
		})
	}
	if err := writeTable(w, headers, rows); err != nil {
		return err
	}

	for _, t := range report.Trends {
		for _, b := range t.Breakpoints {
			if _, err := fmt.Fprintf(w, "%s breakpoint at %s: mean %s -> %s (%+.0f%%)\n",
				t.Series, periodAt(t.Points, b.Index), fmtFloat(b.BeforeMean), fmtFloat(b.AfterMean), signedChange(b)*100); err != nil {
				return err
			}
		}
	}

	if _, err := fmt.Fprintf(w, "Analyzed %d %s periods in %v. Cache backend: %s\n", periods, report.Granularity, duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeTrendCSV writes one row per series.
func writeTrendCSV(w io.Writer, report schema.TrendReport, fmtFloat func(float64) string) error {
	header := []string{
		"series", "trend", "slope", "intercept", "r_squared", "volatility",
		"confidence", "trend_strength", "seasonal_pattern", "breakpoints", "periods",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, t := range report.Trends {
			row := []string{
				string(t.Series),
				string(t.Trend),
				fmtFloat(t.Slope),
				fmtFloat(t.Intercept),
				fmtFloat(t.RSquared),
				fmtFloat(t.Volatility),
				fmtFloat(t.Confidence),
				fmtFloat(t.TrendStrength),
				string(t.SeasonalPattern),
				strconv.Itoa(len(t.Breakpoints)),
				strconv.Itoa(len(t.Points)),
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// periodAt returns the period key at index i, or the index itself when out of range.
func periodAt(points []schema.SeriesPoint, i int) string {
	if i >= 0 && i < len(points) {
		return points[i].Period
	}
	return strconv.Itoa(i)
}

// signedChange returns the breakpoint change with the direction of the shift.
func signedChange(b schema.Breakpoint) float64 {
	if b.AfterMean < b.BeforeMean {
		return -b.Change
	}
	return b.Change
}
