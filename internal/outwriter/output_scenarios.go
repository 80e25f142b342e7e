package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/schema"
)

// WriteScenarioResults outputs the what-if scenarios.
func WriteScenarioResults(report schema.ScenarioReport, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	return writeReport(cfg, reportWriters{
		table: func(w io.Writer) error { return writeScenarioTable(w, report, fmtFloat, duration) },
		csv:   func(w io.Writer) error { return writeScenarioCSV(w, report, fmtFloat) },
		json:  report,
	})
}

// writeScenarioTable prints every scenario period and a total per scenario.
func writeScenarioTable(w io.Writer, report schema.ScenarioReport, fmtFloat func(float64) string, duration time.Duration) error {
	var rows [][]string
	for _, s := range report.Scenarios {
		for _, p := range s.Points {
			rows = append(rows, []string{s.Name, p.PeriodLabel, fmtFloat(p.Income), fmtFloat(p.Expense), fmtFloat(p.Net)})
		}
	}
	if err := writeTable(w, []string{"Scenario", "Period", "Income", "Expense", "Net"}, rows); err != nil {
		return err
	}

	var totals [][]string
	for _, s := range report.Scenarios {
		totals = append(totals, []string{
			s.Name,
			fmt.Sprintf("x%s", fmtFloat(s.IncomeMultiplier)),
			fmt.Sprintf("x%s", fmtFloat(s.ExpenseMultiplier)),
			fmtFloat(s.TotalNet),
		})
	}
	if err := writeTable(w, []string{"Scenario", "Income", "Expense", "Total Net"}, totals); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Projected %d %s periods in %v\n", report.PeriodsAhead, report.Granularity, duration); err != nil {
		return err
	}
	return nil
}

// writeScenarioCSV writes one row per scenario period.
func writeScenarioCSV(w io.Writer, report schema.ScenarioReport, fmtFloat func(float64) string) error {
	header := []string{"scenario", "period_label", "income", "expense", "net", "income_multiplier", "expense_multiplier"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range report.Scenarios {
			for _, p := range s.Points {
				row := []string{
					s.Name,
					p.PeriodLabel,
					fmtFloat(p.Income),
					fmtFloat(p.Expense),
					fmtFloat(p.Net),
					fmtFloat(s.IncomeMultiplier),
					fmtFloat(s.ExpenseMultiplier),
				}
				if err := cw.Write(row); err != nil {
					return fmt.Errorf("failed to write CSV row: %w", err)
				}
			}
		}
		return nil
	})
}
