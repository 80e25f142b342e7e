package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/schema"
)

// WriteSeasonalityResults outputs the seasonality report.
func WriteSeasonalityResults(report schema.SeasonalityReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	return writeReport(cfg, reportWriters{
		table: func(w io.Writer) error { return writeSeasonalityTable(w, report, fmtFloat, duration) },
		csv:   func(w io.Writer) error { return writeSeasonalityCSV(w, report, fmtFloat) },
		json:  report,
	})
}

// writeSeasonalityTable prints a summary per series and the monthly totals side by side.
func writeSeasonalityTable(w io.Writer, report schema.SeasonalityReport, fmtFloat func(float64) string, duration time.Duration) error {
	var summary [][]string
	for _, r := range report.Results {
		summary = append(summary, []string{
			string(r.Series),
			string(r.Pattern),
			fmtFloat(r.SeasonalStrength),
			schema.FormatMonths(r.PeakMonths),
			schema.FormatMonths(r.LowMonths),
		})
	}
	if err := writeTable(w, []string{"Series", "Pattern", "Strength", "Peak Months", "Low Months"}, summary); err != nil {
		return err
	}

	months := seasonalityMonths(report)
	if len(months) > 0 {
		headers := []string{"Month"}
		for _, r := range report.Results {
			headers = append(headers, string(r.Series))
		}
		var rows [][]string
		for _, m := range months {
			row := []string{m}
			for _, r := range report.Results {
				row = append(row, fmtFloat(r.SeasonalIndexByMonth[m]))
			}
			rows = append(rows, row)
		}
		if err := writeTable(w, headers, rows); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Analyzed %d months in %v\n", len(months), duration); err != nil {
		return err
	}
	return nil
}

// writeSeasonalityCSV writes one row per series and month.
func writeSeasonalityCSV(w io.Writer, report schema.SeasonalityReport, fmtFloat func(float64) string) error {
	header := []string{"series", "month", "total", "pattern", "seasonal_strength"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range report.Results {
			for _, m := range slices.Sorted(maps.Keys(r.SeasonalIndexByMonth)) {
				row := []string{
					string(r.Series),
					m,
					fmtFloat(r.SeasonalIndexByMonth[m]),
					string(r.Pattern),
					fmtFloat(r.SeasonalStrength),
				}
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
		}
		return nil
	})
}

// seasonalityMonths returns the sorted union of month keys across all series.
func seasonalityMonths(report schema.SeasonalityReport) []string {
	seen := make(map[string]struct{})
	for _, r := range report.Results {
		for m := range r.SeasonalIndexByMonth {
			seen[m] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}
