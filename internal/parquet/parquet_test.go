package parquet

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/cashtrend/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleAnalysisRuns returns runs with and without the nullable fields set.
func sampleAnalysisRuns() []AnalysisRun {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	duration := int32(1500)
	config := `{"granularity":"month","periods":3}`

	return []AnalysisRun{
		{
			AnalysisID:        1,
			RunUUID:           "0b9d2c61-3f2e-4a8c-9c57-8f0e5f1a2b3c",
			UserID:            "alice",
			StartTime:         start,
			EndTime:           &end,
			RunDurationMs:     &duration,
			TotalSeriesPoints: 24,
			ConfigParams:      &config,
		},
		{
			AnalysisID: 2,
			RunUUID:    "6f1c7a0e-52d4-4e0b-b1a9-0d3e9c4b7a21",
			UserID:     "bob",
			StartTime:  start.Add(time.Hour),
		},
	}
}

// readAll reads every row of a Parquet file written with type T.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestSchemaColumns(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{"analysis runs", new(AnalysisRun), []string{
			"analysis_id", "run_uuid", "user_id", "start_time", "end_time",
			"run_duration_ms", "total_series_points", "config_params",
		}},
		{"trend results", new(TrendResult), []string{
			"analysis_id", "series_kind", "analysis_time", "trend", "slope", "intercept", "r_squared",
			"volatility", "confidence", "trend_strength", "seasonal_pattern", "breakpoint_count",
			"health_score", "risk_level",
		}},
		{"forecasts", new(Forecast), []string{
			"series", "period_label", "predicted_value", "lower", "upper", "confidence",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteAnalysisRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "analysis_runs.parquet")
	data := sampleAnalysisRuns()

	require.NoError(t, WriteAnalysisRunsParquet(data, outputPath))

	rows := readAll[AnalysisRun](t, outputPath)
	require.Len(t, rows, len(data))

	assert.Equal(t, data[0].RunUUID, rows[0].RunUUID)
	assert.Equal(t, data[0].UserID, rows[0].UserID)
	assert.Equal(t, data[0].TotalSeriesPoints, rows[0].TotalSeriesPoints)
	require.NotNil(t, rows[0].EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *rows[0].EndTime, time.Nanosecond)
	require.NotNil(t, rows[0].ConfigParams)
	assert.Equal(t, *data[0].ConfigParams, *rows[0].ConfigParams)

	assert.Nil(t, rows[1].EndTime)
	assert.Nil(t, rows[1].RunDurationMs)
	assert.Nil(t, rows[1].ConfigParams)
}

func TestWriteTrendResultsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "trend_results.parquet")
	score := 65.0
	risk := schema.RiskMedium
	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	records := []schema.TrendResultRecord{
		{
			AnalysisID: 1, SeriesKind: schema.ExpenseSeries, AnalysisTime: at, Trend: schema.TrendIncreasing,
			Slope: 12.5, Intercept: 900, RSquared: 0.8, Volatility: 0.1, Confidence: 0.8, TrendStrength: 1,
			SeasonalPattern: schema.InsufficientData, BreakpointCount: 2,
		},
		{
			AnalysisID: 1, SeriesKind: schema.NetSeries, AnalysisTime: at, Trend: schema.TrendStable,
			SeasonalPattern: schema.InsufficientData, HealthScore: &score, RiskLevel: &risk,
		},
	}

	require.NoError(t, WriteTrendResultsParquet(ConvertTrendResultRecords(records), outputPath))

	rows := readAll[TrendResult](t, outputPath)
	require.Len(t, rows, 2)
	assert.Equal(t, "expense", rows[0].SeriesKind)
	assert.Equal(t, "increasing", rows[0].Trend)
	assert.InDelta(t, 12.5, rows[0].Slope, 1e-9)
	assert.Equal(t, int32(2), rows[0].BreakpointCount)
	assert.Nil(t, rows[0].HealthScore)
	assert.Nil(t, rows[0].RiskLevel)

	require.NotNil(t, rows[1].HealthScore)
	assert.InDelta(t, 65.0, *rows[1].HealthScore, 1e-9)
	require.NotNil(t, rows[1].RiskLevel)
	assert.Equal(t, "medium", *rows[1].RiskLevel)
}

func TestWriteForecasts(t *testing.T) {
	points := []schema.PredictionPoint{
		{PeriodLabel: "2025-04", PredictedValue: 1000, ConfidenceInterval: schema.ConfidenceInterval{Lower: 900, Upper: 1100}, Confidence: 0.85},
		{PeriodLabel: "2025-05", PredictedValue: 1010, ConfidenceInterval: schema.ConfidenceInterval{Lower: 910, Upper: 1110}, Confidence: 0.8},
	}
	rows := ConvertPredictions(schema.ExpenseSeries, points)
	require.Len(t, rows, 2)
	assert.Equal(t, "expense", rows[0].Series)
	assert.InDelta(t, 900.0, rows[0].Lower, 1e-9)

	var buf bytes.Buffer
	require.NoError(t, WriteForecasts(&buf, rows))

	reader := parquet.NewGenericReader[Forecast](bytes.NewReader(buf.Bytes()))
	defer func() { _ = reader.Close() }()
	assert.Equal(t, int64(2), reader.NumRows())
}

func TestConvertAnalysisRunRecords(t *testing.T) {
	end := time.Date(2025, 3, 1, 9, 0, 1, 0, time.UTC)
	records := []schema.AnalysisRunRecord{
		{AnalysisID: 7, RunUUID: "run-7", UserID: "alice", StartTime: end.Add(-time.Second), EndTime: &end, TotalSeriesPoints: 12},
	}
	rows := ConvertAnalysisRunRecords(records)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(7), rows[0].AnalysisID)
	assert.Equal(t, "run-7", rows[0].RunUUID)
	assert.Equal(t, int32(12), rows[0].TotalSeriesPoints)
	assert.Same(t, &end, rows[0].EndTime)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteAnalysisRunsParquet([]AnalysisRun{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size(), "Output file should contain schema even if empty")
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteAnalysisRunsParquet(sampleAnalysisRuns(), "/nonexistent/directory/output.parquet")
	require.Error(t, err)

	err = WriteTrendResultsParquet(nil, "/nonexistent/directory/output.parquet")
	require.Error(t, err)
}
