// Package cmd defines the command-line interface for cashtrend.
package cmd

import (
	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(seasonalityCmd)
	rootCmd.AddCommand(anomaliesCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(overallCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("ledger", "", "Path to the ledger file (.csv or .json) when not given as an argument")
	rootCmd.PersistentFlags().String("user", contract.DefaultUserID, "User ID that scopes cached results and tracked runs")
	rootCmd.PersistentFlags().String("start", "", "Start date in ISO8601, YYYY-MM-DD or time ago")
	rootCmd.PersistentFlags().String("end", "", "End date in ISO8601, YYYY-MM-DD or time ago")
	rootCmd.PersistentFlags().StringP("granularity", "g", string(schema.MonthlyGranularity), "Aggregation period: day or week or month")
	rootCmd.PersistentFlags().Float64("anomaly-threshold", contract.DefaultAnomalyThreshold, "Z-score above which a transaction is flagged")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL, "How long cached results stay fresh (e.g., '7 days', '12h')")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// forecast and scenarios share the projection flags, bound to Viper in projectionSetupWrapper
	for _, c := range []*cobra.Command{forecastCmd, scenariosCmd} {
		c.Flags().IntP("periods", "p", contract.DefaultPeriods, "Number of periods to project")
		c.Flags().Float64("confidence", contract.DefaultConfidenceLevel, "Confidence level of the projection interval: 0.90, 0.95 or 0.99")
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
