package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatterPrecision(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{"whole amount at one decimal", 1, 1200, "1200.0"},
		{"whole amount at two decimals", 2, 1200, "1200.00"},
		{"cents at two decimals", 2, 85.5, "85.50"},
		{"cents rounded to one decimal", 1, 1234.56, "1234.6"},
		{"rounding carries over", 2, 1999.999, "2000.00"},
		{"negative net", 1, -87.26, "-87.3"},
		{"negative net at two decimals", 2, -87.26, "-87.26"},
		{"ratio", 2, 0.8, "0.80"},
		{"zero", 1, 0, "0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, createFormatter(tt.precision)(tt.value))
		})
	}
}

func TestWriteJSONIndented(t *testing.T) {
	var buf bytes.Buffer
	point := schema.SeriesPoint{Period: "2024-01", Amount: 1200}
	require.NoError(t, writeJSON(&buf, []schema.SeriesPoint{point}))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[\n  {\n    \""), out)
	assert.True(t, strings.HasSuffix(out, "]\n"), out)

	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	t.Run("empty report keeps the header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeTrendCSV(&buf, schema.TrendReport{}, createFormatter(2)))
		records := csvRecords(t, buf.String())
		require.Len(t, records, 1)
		assert.Equal(t, "series", records[0][0])
	})

	t.Run("descriptions with commas are quoted", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeCSVWithHeader(&buf, []string{"id", "description"}, func(w *csv.Writer) error {
			return w.Write([]string{"t-003", "dinner, drinks"})
		})
		require.NoError(t, err)
		assert.Equal(t, "id,description\nt-003,\"dinner, drinks\"\n", buf.String())
	})

	t.Run("row errors are returned", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeCSVWithHeader(&buf, []string{"id"}, func(*csv.Writer) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	rows := [][]string{{"2024-01", "1200.00"}, {"2024-02", "1350.50"}}
	require.NoError(t, writeTable(&buf, []string{"Period", "Amount"}, rows))

	out := buf.String()
	assert.Contains(t, out, "2024-02")
	assert.Contains(t, out, "1350.50")
	assert.Equal(t, 1, strings.Count(out, "1200.00"))
}

func TestWriteWithFile(t *testing.T) {
	t.Run("stdout when no file is set", func(t *testing.T) {
		called := false
		err := writeWithFile("", func(io.Writer) error {
			called = true
			return nil
		}, "Wrote trend report")
		require.NoError(t, err)
		assert.True(t, called)
	})

	t.Run("writer errors are returned", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trend.csv")
		err := writeWithFile(path, func(io.Writer) error { return assert.AnError }, "Wrote trend report")
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "trend.csv")
		err := writeWithFile(path, func(io.Writer) error { return nil }, "Wrote trend report")
		assert.Error(t, err)
	})
}

// Reports written with --output-file honor the configured precision.
func TestReportFileOutputPrecision(t *testing.T) {
	for _, tt := range []struct {
		precision int
		slope     string
	}{
		{1, "50.0"},
		{2, "50.00"},
	} {
		path := filepath.Join(t.TempDir(), "trend.csv")
		cfg := &contract.Config{Output: schema.CSVOut, OutputFile: path, Precision: tt.precision}
		require.NoError(t, WriteTrendResults(sampleTrendReport(), cfg, time.Second))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		records := csvRecords(t, string(data))
		require.Len(t, records, 3)
		assert.Equal(t, tt.slope, records[1][2], "precision %d", tt.precision)
	}
}
