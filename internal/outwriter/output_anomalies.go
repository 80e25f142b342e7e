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

// anomalyDateLayout is used for transaction dates in anomaly output.
const anomalyDateLayout = "2006-01-02"

// WriteAnomalyResults outputs the anomaly report.
func WriteAnomalyResults(report schema.AnomalyReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	return writeReport(cfg, reportWriters{
		table: func(w io.Writer) error { return writeAnomalyTable(w, report, cfg, fmtFloat, duration) },
		csv:   func(w io.Writer) error { return writeAnomalyCSV(w, report, fmtFloat) },
		json:  report,
	})
}

// writeAnomalyTable prints the ranked anomalies.
func writeAnomalyTable(w io.Writer, report schema.AnomalyReport, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	if len(report.Anomalies) == 0 {
		_, err := fmt.Fprintf(w, "No anomalies above z-score %s found in %v\n", fmtFloat(report.Threshold), duration)
		return err
	}

	// Rank + Series + Date + Ref + Amount + Z + Severity + Type
	explainWidth := GetMaxTableTextWidth(cfg, 90)
	headers := []string{"Rank", "Series", "Date", "Transaction", "Amount", "Z-Score", "Severity", "Type", "Explanation"}
	var rows [][]string
	for _, a := range report.Anomalies {
		rows = append(rows, []string{
			strconv.Itoa(a.Rank),
			string(a.Series),
			a.Date.Format(anomalyDateLayout),
			contract.TruncateText(a.TransactionRef, 16),
			fmtFloat(a.Amount),
			fmtFloat(a.ZScore),
			contract.GetColorLabel(string(a.Severity)),
			string(a.Type),
			contract.TruncateText(a.Explanation, explainWidth),
		})
	}
	if err := writeTable(w, headers, rows); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Found %d anomalies above z-score %s in %v\n", len(report.Anomalies), fmtFloat(report.Threshold), duration); err != nil {
		return err
	}
	return nil
}

// writeAnomalyCSV writes one row per anomaly.
func writeAnomalyCSV(w io.Writer, report schema.AnomalyReport, fmtFloat func(float64) string) error {
	header := []string{"rank", "series", "date", "transaction_ref", "amount", "z_score", "severity", "type", "explanation"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, a := range report.Anomalies {
			row := []string{
				strconv.Itoa(a.Rank),
				string(a.Series),
				a.Date.Format(anomalyDateLayout),
				a.TransactionRef,
				fmtFloat(a.Amount),
				fmtFloat(a.ZScore),
				string(a.Severity),
				string(a.Type),
				a.Explanation,
			}
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
