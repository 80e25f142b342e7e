package cmd

import (
	"fmt"

	"github.com/huangsam/cashtrend/core"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// projectionSetupWrapper binds the running command's projection flags before shared setup.
// Both forecast and scenarios define --periods and --confidence, so they are bound per invocation.
func projectionSetupWrapper(cmd *cobra.Command, args []string) error {
	for _, name := range []string{"periods", "confidence"} {
		if err := viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return ledgerSetupWrapper(cmd, args)
}

// trendCmd fits and classifies the expense and income series.
var trendCmd = &cobra.Command{
	Use:   "trend [ledger-file]",
	Short: "Show the direction and strength of spending and income.",
	Long: `Aggregate the ledger into periods and fit a linear trend to the expense and income series.

For each series, reports:
- Trend direction (increasing, decreasing or stable)
- Slope per period and R² of the fit
- Volatility (coefficient of variation)
- Confidence and overall trend strength
- Autocorrelation-based seasonal pattern
- Breakpoints where the local average shifts by more than 30%

Examples:
  # Monthly trends over the last year
  cashtrend trend ledger.csv

  # Weekly trends for a quarter
  cashtrend trend ledger.csv --granularity week --start "3 months ago"

  # Export for a spreadsheet
  cashtrend trend ledger.csv --output csv --output-file trends.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: ledgerSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("trend", core.ExecuteTrend)
	},
}

// seasonalityCmd compares calendar-month totals.
var seasonalityCmd = &cobra.Command{
	Use:   "seasonality [ledger-file]",
	Short: "Show peak and low months for spending and income.",
	Long: `Sum transactions per calendar month and measure how uneven those totals are.

Reports the three highest and lowest months and classifies the spread as
weak, moderate or strong.

Examples:
  cashtrend seasonality ledger.csv
  cashtrend seasonality ledger.json --start 2023-01-01 --end 2023-12-31`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: ledgerSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("seasonality", core.ExecuteSeasonality)
	},
}

// anomaliesCmd flags outlying transactions.
var anomaliesCmd = &cobra.Command{
	Use:   "anomalies [ledger-file]",
	Short: "List transactions with unusual amounts.",
	Long: `Flag expense and income transactions whose amount is far from the average.

A transaction is an anomaly when its z-score exceeds --anomaly-threshold.
Anomalies are ranked by z-score and labeled by severity.

Examples:
  cashtrend anomalies ledger.csv
  cashtrend anomalies ledger.csv --anomaly-threshold 2 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: ledgerSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("anomaly", core.ExecuteAnomalies)
	},
}

// forecastCmd projects the series forward.
var forecastCmd = &cobra.Command{
	Use:   "forecast [ledger-file]",
	Short: "Project spending, income and net cash flow.",
	Long: `Project the expense and income series forward from their linear trend.

Each projected period has a confidence interval and a confidence score that
decays the further out it is. At least 3 periods of history are required.

Examples:
  cashtrend forecast ledger.csv --periods 6
  cashtrend forecast ledger.csv --confidence 0.99
  cashtrend forecast ledger.csv --output parquet --output-file forecast.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: projectionSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("forecast", core.ExecuteForecast)
	},
}

// scenariosCmd prints the what-if projections.
var scenariosCmd = &cobra.Command{
	Use:   "scenarios [ledger-file]",
	Short: "Compare optimistic, realistic and pessimistic projections.",
	Long: `Scale the central forecast into three what-if scenarios:

- optimistic:  income +10%, expenses -10%
- realistic:   unchanged
- pessimistic: income -10%, expenses +10%

Examples:
  cashtrend scenarios ledger.csv --periods 12`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: projectionSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("scenario", core.ExecuteScenarios)
	},
}

// overallCmd prints the combined health report.
var overallCmd = &cobra.Command{
	Use:   "overall [ledger-file]",
	Short: "Show a financial health score with recommendations.",
	Long: `Combine the expense and income trends with the net cash flow into:

- A 0-100 financial health score
- A risk level with the factors behind it
- A sustainability classification
- Prioritized recommendations

Examples:
  cashtrend overall ledger.csv
  cashtrend overall ledger.csv --analysis-backend sqlite`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: ledgerSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		runExecutor("overall", core.ExecuteOverall)
	},
}
