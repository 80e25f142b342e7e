package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/schema"
)

// WriteOverallResults outputs the combined health report.
func WriteOverallResults(report schema.OverallTrends, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	return writeReport(cfg, reportWriters{
		table: func(w io.Writer) error { return writeOverallTable(w, report, cfg, fmtFloat, duration) },
		csv:   func(w io.Writer) error { return writeOverallCSV(w, report, fmtFloat) },
		json:  report,
	})
}

// writeOverallTable prints the summary, the risk factors and the recommendations.
func writeOverallTable(w io.Writer, report schema.OverallTrends, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	health := report.FinancialHealth
	summary := [][]string{
		{"Financial Health", fmt.Sprintf("%s (%s)", fmtFloat(health.Score), contract.GetHealthColorLabel(health.Score))},
		{"Risk Level", contract.GetColorLabel(string(report.RiskLevel))},
		{"Sustainability", string(report.Sustainability)},
		{"Expense Trend", contract.GetTrendColorLabel(schema.ExpenseSeries, report.ExpenseTrends.Trend)},
		{"Income Trend", contract.GetTrendColorLabel(schema.IncomeSeries, report.IncomeTrends.Trend)},
		{"Net Cash Flow Trend", contract.GetTrendColorLabel(schema.NetSeries, report.NetCashFlow.Trend)},
		{"Average Net", fmtFloat(report.NetCashFlow.AverageNet)},
	}
	if err := writeTable(w, []string{"Metric", "Value"}, summary); err != nil {
		return err
	}

	for _, factor := range report.RiskFactors {
		if _, err := fmt.Fprintf(w, "- %s\n", factor); err != nil {
			return err
		}
	}

	// Priority + Type + Title
	msgWidth := GetMaxTableTextWidth(cfg, 50)
	var rows [][]string
	for _, in := range report.Recommendations {
		rows = append(rows, []string{
			contract.GetColorLabel(string(in.Priority)),
			string(in.Type),
			in.Title,
			contract.TruncateText(in.Message, msgWidth),
		})
	}
	if len(rows) > 0 {
		if err := writeTable(w, []string{"Priority", "Type", "Title", "Message"}, rows); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Analyzed %d periods in %v. Cache backend: %s\n", len(report.NetCashFlow.Series), duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeOverallCSV writes the summary and recommendations as section/key/value rows.
func writeOverallCSV(w io.Writer, report schema.OverallTrends, fmtFloat func(float64) string) error {
	header := []string{"section", "key", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		rows := [][]string{
			{"summary", "health_score", fmtFloat(report.FinancialHealth.Score)},
			{"summary", "health_rating", report.FinancialHealth.Rating},
			{"summary", "risk_level", string(report.RiskLevel)},
			{"summary", "sustainability", string(report.Sustainability)},
			{"summary", "expense_trend", string(report.ExpenseTrends.Trend)},
			{"summary", "income_trend", string(report.IncomeTrends.Trend)},
			{"summary", "net_trend", string(report.NetCashFlow.Trend)},
			{"summary", "average_net", fmtFloat(report.NetCashFlow.AverageNet)},
		}
		for _, factor := range report.RiskFactors {
			rows = append(rows, []string{"risk_factor", "", factor})
		}
		for _, in := range report.Recommendations {
			rows = append(rows, []string{"recommendation", string(in.Priority), in.Title + ": " + in.Message})
		}
		for _, row := range rows {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
		return nil
	})
}
