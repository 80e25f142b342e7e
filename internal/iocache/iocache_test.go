package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/huangsam/cashtrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetGlobals clears the package-level manager between tests.
func resetGlobals(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &CacheStoreManager{}
	t.Cleanup(func() {
		CloseCaching()
		initOnce = sync.Once{}
		closeOnce = sync.Once{}
		Manager = &CacheStoreManager{}
	})
}

func TestCaching(t *testing.T) {
	t.Run("single setup", func(t *testing.T) {
		resetGlobals(t)
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		analysisPath := filepath.Join(dir, "analysis.db")

		err := InitCaching(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, analysisPath)
		require.NoError(t, err)

		assert.NotNil(t, Manager.GetCacheStore())
		assert.NotNil(t, Manager.GetAnalysisStore())

		CloseCaching()

		_, err = os.Stat(cachePath)
		assert.NoError(t, err, "cache database file should be created")
		_, err = os.Stat(analysisPath)
		assert.NoError(t, err, "analysis database file should be created")
	})

	t.Run("idempotent setup", func(t *testing.T) {
		resetGlobals(t)
		cachePath := filepath.Join(t.TempDir(), "cache.db")

		// Multiple initializations should be safe (sync.Once)
		assert.NoError(t, InitCaching(schema.SQLiteBackend, cachePath, "", ""))
		first := Manager.GetCacheStore()
		assert.NoError(t, InitCaching(schema.SQLiteBackend, cachePath, "", ""))
		assert.Same(t, first, Manager.GetCacheStore())

		// Multiple closes should be safe (sync.Once)
		CloseCaching()
		CloseCaching()
	})

	t.Run("analysis disabled", func(t *testing.T) {
		resetGlobals(t)

		require.NoError(t, InitCaching(schema.NoneBackend, "", "", ""))
		assert.NotNil(t, Manager.GetCacheStore())
		assert.Nil(t, Manager.GetAnalysisStore())
	})

	t.Run("invalid backend", func(t *testing.T) {
		resetGlobals(t)

		err := InitCaching("oracle", "", "", "")
		assert.Error(t, err)
		assert.Nil(t, Manager.GetCacheStore())
	})
}

func TestCacheStoreManagerConcurrency(t *testing.T) {
	resetGlobals(t)
	require.NoError(t, InitCaching(schema.NoneBackend, "", schema.NoneBackend, ""))

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, Manager.GetCacheStore())
			assert.NotNil(t, Manager.GetAnalysisStore())
		}()
	}
	wg.Wait()
}

func TestClearCache(t *testing.T) {
	t.Run("sqlite removes file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "cache.db")
		store, err := NewCacheStore(cacheTable, schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sqlite missing file", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.SQLiteBackend, filepath.Join(t.TempDir(), "nope.db"), ""))
	})

	t.Run("sqlite empty path", func(t *testing.T) {
		assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	})

	t.Run("unsupported backend", func(t *testing.T) {
		assert.Error(t, ClearCache("oracle", "", ""))
	})
}

func TestClearAnalysis(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "analysis.db")
	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearAnalysis(schema.SQLiteBackend, dbPath, ""))
	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintCacheStatus(&buf, schema.CacheStatus{
		Backend:         "sqlite",
		Connected:       true,
		TotalEntries:    3,
		LastEntryTime:   time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
		OldestEntryTime: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		TableSizeBytes:  4096,
	})
	out := buf.String()
	assert.Contains(t, out, "Total Entries: 3")
	assert.Contains(t, out, "Last Entry: 2024-05-02 08:00:00")
	assert.Contains(t, out, "Oldest Entry: 2024-05-01 08:00:00")
	assert.Contains(t, out, "Table Size: 4096 bytes")
}

func TestPrintAnalysisStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintAnalysisStatus(&buf, schema.AnalysisStatus{
		Backend:           "sqlite",
		Connected:         true,
		TotalRuns:         2,
		LastRunID:         7,
		LastRunTime:       time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
		OldestRunTime:     time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		TotalTrendResults: 6,
		TableSizes: map[string]int64{
			trendResultsTable: 6,
			analysisRunsTable: 2,
		},
	})
	out := buf.String()
	assert.Contains(t, out, "Last Run ID: 7")
	assert.Contains(t, out, "Total Trend Results: 6")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(analysisRunsTable)), bytes.Index(buf.Bytes(), []byte(trendResultsTable)))
}

func TestExportAnalysis(t *testing.T) {
	t.Run("writes both files", func(t *testing.T) {
		store := newTestAnalysisStore(t)
		at := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		id, err := store.BeginAnalysis("run-1", "alice", at, map[string]any{"granularity": "month"})
		require.NoError(t, err)
		require.NoError(t, store.RecordTrendResult(id, schema.TrendResultRecord{
			SeriesKind:      schema.ExpenseSeries,
			AnalysisTime:    at,
			Trend:           schema.TrendStable,
			SeasonalPattern: schema.NoSeasonal,
		}))
		require.NoError(t, store.EndAnalysis(id, at.Add(time.Second), 12))

		base := filepath.Join(t.TempDir(), "export")
		var buf bytes.Buffer
		require.NoError(t, ExportAnalysis(&buf, store, base))

		for _, suffix := range []string{".analysis_runs.parquet", ".trend_results.parquet"} {
			info, err := os.Stat(base + suffix)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		}
		assert.Contains(t, buf.String(), "Exported 1 analysis runs")
		assert.Contains(t, buf.String(), "Exported 1 trend results")
	})

	t.Run("no runs", func(t *testing.T) {
		store := newTestAnalysisStore(t)
		err := ExportAnalysis(&bytes.Buffer{}, store, filepath.Join(t.TempDir(), "export"))
		assert.ErrorContains(t, err, "no analysis data")
	})

	t.Run("missing output file", func(t *testing.T) {
		assert.Error(t, ExportAnalysis(&bytes.Buffer{}, &MockAnalysisStore{}, ""))
	})

	t.Run("tracking disabled", func(t *testing.T) {
		assert.Error(t, ExportAnalysis(&bytes.Buffer{}, nil, "out"))
	})

	t.Run("status error", func(t *testing.T) {
		store := &MockAnalysisStore{}
		store.On("GetStatus").Return(schema.AnalysisStatus{}, errors.New("boom"))
		err := ExportAnalysis(&bytes.Buffer{}, store, "out")
		assert.ErrorContains(t, err, "boom")
		store.AssertExpectations(t)
	})
}
