// Package parquet provides data structures and functions for exporting cashtrend
// analysis data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/cashtrend/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single analysis run with metadata.
// This struct maps to the cashtrend_analysis_runs database table.
type AnalysisRun struct {
	// AnalysisID is the unique identifier for this analysis run
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// RunUUID is the globally unique run identifier
	RunUUID string `parquet:"run_uuid,snappy"`

	// UserID identifies whose ledger was analyzed
	UserID string `parquet:"user_id,snappy"`

	// StartTime is when the analysis began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the analysis run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalSeriesPoints is the number of aggregated periods across the analyzed series
	TotalSeriesPoints int32 `parquet:"total_series_points,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// TrendResult represents the trend analysis of one series in a run.
// This struct maps to the cashtrend_trend_results database table.
type TrendResult struct {
	AnalysisID      int64     `parquet:"analysis_id,snappy"`
	SeriesKind      string    `parquet:"series_kind,dict,snappy"`
	AnalysisTime    time.Time `parquet:"analysis_time,snappy"`
	Trend           string    `parquet:"trend,dict,snappy"`
	Slope           float64   `parquet:"slope,snappy"`
	Intercept       float64   `parquet:"intercept,snappy"`
	RSquared        float64   `parquet:"r_squared,snappy"`
	Volatility      float64   `parquet:"volatility,snappy"`
	Confidence      float64   `parquet:"confidence,snappy"`
	TrendStrength   float64   `parquet:"trend_strength,snappy"`
	SeasonalPattern string    `parquet:"seasonal_pattern,dict,snappy"`
	BreakpointCount int32     `parquet:"breakpoint_count,snappy"`
	HealthScore     *float64  `parquet:"health_score,optional,snappy"`
	RiskLevel       *string   `parquet:"risk_level,optional,snappy"`
}

// Forecast represents one projected period of a series.
type Forecast struct {
	Series         string  `parquet:"series,dict,snappy"`
	PeriodLabel    string  `parquet:"period_label,snappy"`
	PredictedValue float64 `parquet:"predicted_value,snappy"`
	Lower          float64 `parquet:"lower,snappy"`
	Upper          float64 `parquet:"upper,snappy"`
	Confidence     float64 `parquet:"confidence,snappy"`
}

// writeRows writes rows to w using the schema inferred from the row struct tags.
func writeRows[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeFile creates outputPath and writes rows into it.
func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writeRows(file, data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteTrendResultsParquet writes a slice of TrendResult structs to a Parquet file.
func WriteTrendResultsParquet(data []TrendResult, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteForecasts writes forecast rows to w.
func WriteForecasts(w io.Writer, data []Forecast) error {
	return writeRows(w, data)
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:        record.AnalysisID,
			RunUUID:           record.RunUUID,
			UserID:            record.UserID,
			StartTime:         record.StartTime,
			EndTime:           record.EndTime,
			RunDurationMs:     record.RunDurationMs,
			TotalSeriesPoints: record.TotalSeriesPoints,
			ConfigParams:      record.ConfigParams,
		}
	}
	return result
}

// ConvertTrendResultRecords converts schema.TrendResultRecord to TrendResult for Parquet export.
func ConvertTrendResultRecords(records []schema.TrendResultRecord) []TrendResult {
	result := make([]TrendResult, len(records))
	for i, record := range records {
		var risk *string
		if record.RiskLevel != nil {
			s := string(*record.RiskLevel)
			risk = &s
		}
		result[i] = TrendResult{
			AnalysisID:      record.AnalysisID,
			SeriesKind:      string(record.SeriesKind),
			AnalysisTime:    record.AnalysisTime,
			Trend:           string(record.Trend),
			Slope:           record.Slope,
			Intercept:       record.Intercept,
			RSquared:        record.RSquared,
			Volatility:      record.Volatility,
			Confidence:      record.Confidence,
			TrendStrength:   record.TrendStrength,
			SeasonalPattern: string(record.SeasonalPattern),
			BreakpointCount: record.BreakpointCount,
			HealthScore:     record.HealthScore,
			RiskLevel:       risk,
		}
	}
	return result
}

// ConvertPredictions flattens a series forecast into Forecast rows.
func ConvertPredictions(kind schema.SeriesKind, points []schema.PredictionPoint) []Forecast {
	result := make([]Forecast, len(points))
	for i, p := range points {
		result[i] = Forecast{
			Series:         string(kind),
			PeriodLabel:    p.PeriodLabel,
			PredictedValue: p.PredictedValue,
			Lower:          p.ConfidenceInterval.Lower,
			Upper:          p.ConfidenceInterval.Upper,
			Confidence:     p.Confidence,
		}
	}
	return result
}
