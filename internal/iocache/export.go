package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/internal/parquet"
)

// ExecuteAnalysisExport exports the analysis history of the global store to Parquet files.
func ExecuteAnalysisExport(w io.Writer, outputFile string) error {
	return ExportAnalysis(w, Manager.GetAnalysisStore(), outputFile)
}

// ExportAnalysis writes <outputFile>.analysis_runs.parquet and
// <outputFile>.trend_results.parquet from the given store.
func ExportAnalysis(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not enabled. Set --analysis-backend to export")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total trend results: %d\n", status.TotalTrendResults)

	analysisRuns, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	trendResults, err := store.GetAllTrendResults()
	if err != nil {
		return fmt.Errorf("failed to retrieve trend results: %w", err)
	}

	runsFile := outputFile + ".analysis_runs.parquet"
	if err := parquet.WriteAnalysisRunsParquet(parquet.ConvertAnalysisRunRecords(analysisRuns), runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(analysisRuns), runsFile)

	resultsFile := outputFile + ".trend_results.parquet"
	if err := parquet.WriteTrendResultsParquet(parquet.ConvertTrendResultRecords(trendResults), resultsFile); err != nil {
		return fmt.Errorf("failed to write trend results: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d trend results to: %s\n", len(trendResults), resultsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read with DuckDB, Pandas (via pyarrow) or Apache Spark.")
	return nil
}
