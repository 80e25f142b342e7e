package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/internal/parquet"
	"github.com/huangsam/cashtrend/schema"
)

// WriteForecastResults outputs the forecast report. It is the only report with a Parquet form.
func WriteForecastResults(report schema.ForecastReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	return writeReport(cfg, reportWriters{
		table:   func(w io.Writer) error { return writeForecastTable(w, report, fmtFloat, duration) },
		csv:     func(w io.Writer) error { return writeForecastCSV(w, report, fmtFloat) },
		json:    report,
		parquet: func(w io.Writer) error { return writeForecastParquet(w, report) },
	})
}

// writeForecastTable prints the per-series projections followed by the net cash flow.
func writeForecastTable(w io.Writer, report schema.ForecastReport, fmtFloat func(float64) string, duration time.Duration) error {
	var rows [][]string
	for _, f := range report.Forecasts {
		if !f.Available {
			if _, err := fmt.Fprintf(w, "%s forecast unavailable: at least 3 periods of history are required\n", f.Series); err != nil {
				return err
			}
			continue
		}
		for _, p := range f.Predictions {
			rows = append(rows, []string{
				string(f.Series),
				p.PeriodLabel,
				fmtFloat(p.PredictedValue),
				fmtFloat(p.ConfidenceInterval.Lower),
				fmtFloat(p.ConfidenceInterval.Upper),
				fmtFloat(p.Confidence),
			})
		}
	}
	if len(rows) > 0 {
		if err := writeTable(w, []string{"Series", "Period", "Predicted", "Lower", "Upper", "Confidence"}, rows); err != nil {
			return err
		}
	}

	if report.NetCashFlow != nil && len(report.NetCashFlow.Predictions) > 0 {
		var netRows [][]string
		for _, p := range report.NetCashFlow.Predictions {
			netRows = append(netRows, []string{
				p.PeriodLabel,
				fmtFloat(p.PredictedIncome),
				fmtFloat(p.PredictedExpense),
				fmtFloat(p.PredictedNet),
			})
		}
		if err := writeTable(w, []string{"Period", "Income", "Expense", "Net"}, netRows); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Average projected net cash flow: %s\n", fmtFloat(report.NetCashFlow.AverageNet)); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Projected %d %s periods at %.0f%% confidence in %v\n",
		report.PeriodsAhead, report.Granularity, report.ConfidenceLevel*100, duration); err != nil {
		return err
	}
	return nil
}

// writeForecastCSV writes one row per projected period of each series.
func writeForecastCSV(w io.Writer, report schema.ForecastReport, fmtFloat func(float64) string) error {
	header := []string{"series", "period_label", "predicted_value", "lower", "upper", "confidence"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range report.Forecasts {
			for _, p := range f.Predictions {
				row := []string{
					string(f.Series),
					p.PeriodLabel,
					fmtFloat(p.PredictedValue),
					fmtFloat(p.ConfidenceInterval.Lower),
					fmtFloat(p.ConfidenceInterval.Upper),
					fmtFloat(p.Confidence),
				}
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
		}
		if report.NetCashFlow == nil {
			return nil
		}
		for _, p := range report.NetCashFlow.Predictions {
			row := []string{string(schema.NetSeries), p.PeriodLabel, fmtFloat(p.PredictedNet), "", "", ""}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}

// writeForecastParquet writes the per-series projections as Parquet rows.
func writeForecastParquet(w io.Writer, report schema.ForecastReport) error {
	var rows []parquet.Forecast
	for _, f := range report.Forecasts {
		rows = append(rows, parquet.ConvertPredictions(f.Series, f.Predictions)...)
	}
	return parquet.WriteForecasts(w, rows)
}
