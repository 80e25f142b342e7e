package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/schema"
)

// trendResultColumns lists the trend result columns in insert and select order.
var trendResultColumns = []string{
	"analysis_id", "series_kind", "analysis_time", "trend", "slope", "intercept",
	"r_squared", "volatility", "confidence", "trend_strength", "seasonal_pattern",
	"breakpoint_count", "health_score", "risk_level",
}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, GetAnalysisDBFilePath())
	if err != nil {
		return nil, err
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{analysisRunsTable, getCreateAnalysisRunsQuery(backend)},
		{trendResultsTable, getCreateTrendResultsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for cashtrend_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL,
				user_id VARCHAR(255) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_series_points INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL,
				user_id TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_series_points INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL,
				user_id TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_series_points INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateTrendResultsQuery returns the CREATE TABLE query for cashtrend_trend_results.
func getCreateTrendResultsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(trendResultsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				series_kind VARCHAR(16) NOT NULL,
				analysis_time DATETIME(6) NOT NULL,
				trend VARCHAR(16) NOT NULL,
				slope DOUBLE NOT NULL,
				intercept DOUBLE NOT NULL,
				r_squared DOUBLE NOT NULL,
				volatility DOUBLE NOT NULL,
				confidence DOUBLE NOT NULL,
				trend_strength DOUBLE NOT NULL,
				seasonal_pattern VARCHAR(32) NOT NULL,
				breakpoint_count INT NOT NULL,
				health_score DOUBLE,
				risk_level VARCHAR(16),
				PRIMARY KEY (analysis_id, series_kind)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				series_kind TEXT NOT NULL,
				analysis_time TIMESTAMPTZ NOT NULL,
				trend TEXT NOT NULL,
				slope DOUBLE PRECISION NOT NULL,
				intercept DOUBLE PRECISION NOT NULL,
				r_squared DOUBLE PRECISION NOT NULL,
				volatility DOUBLE PRECISION NOT NULL,
				confidence DOUBLE PRECISION NOT NULL,
				trend_strength DOUBLE PRECISION NOT NULL,
				seasonal_pattern TEXT NOT NULL,
				breakpoint_count INT NOT NULL,
				health_score DOUBLE PRECISION,
				risk_level TEXT,
				PRIMARY KEY (analysis_id, series_kind)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				series_kind TEXT NOT NULL,
				analysis_time TEXT NOT NULL,
				trend TEXT NOT NULL,
				slope REAL NOT NULL,
				intercept REAL NOT NULL,
				r_squared REAL NOT NULL,
				volatility REAL NOT NULL,
				confidence REAL NOT NULL,
				trend_strength REAL NOT NULL,
				seasonal_pattern TEXT NOT NULL,
				breakpoint_count INTEGER NOT NULL,
				health_score REAL,
				risk_level TEXT,
				PRIMARY KEY (analysis_id, series_kind)
			);
		`, quotedTableName)
	}
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(runUUID, userID string, startTime time.Time, configParams map[string]any) (int64, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	args := []any{runUUID, userID, formatTime(startTime, as.backend), string(configJSON)}
	query := fmt.Sprintf(`INSERT INTO %s (run_uuid, user_id, start_time, config_params) VALUES (%s)`,
		quotedTableName, strings.Join(placeholders(as.backend, len(args)), ", "))

	var analysisID int64
	if as.backend == schema.PostgreSQLBackend {
		err = as.db.QueryRow(query+" RETURNING analysis_id", args...).Scan(&analysisID)
	} else {
		var result sql.Result
		if result, err = as.db.Exec(query, args...); err == nil {
			analysisID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, totalSeriesPoints int) error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, placeholders(as.backend, 1)[0])

	startTime, err := as.scanTime(as.db.QueryRow(query, analysisID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	durationMs := endTime.Sub(startTime).Milliseconds()

	p := placeholders(as.backend, 4)
	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_series_points = %s WHERE analysis_id = %s`,
		quotedTableName, p[0], p[1], p[2], p[3])
	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, totalSeriesPoints, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordTrendResult stores one series' trend analysis for a run.
func (as *AnalysisStoreImpl) RecordTrendResult(analysisID int64, record schema.TrendResultRecord) error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	var riskLevel *string
	if record.RiskLevel != nil {
		s := string(*record.RiskLevel)
		riskLevel = &s
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(trendResultsTable, as.backend),
		strings.Join(trendResultColumns, ", "),
		strings.Join(placeholders(as.backend, len(trendResultColumns)), ", "))
	args := []any{
		analysisID, string(record.SeriesKind), formatTime(record.AnalysisTime, as.backend), string(record.Trend),
		record.Slope, record.Intercept, record.RSquared, record.Volatility, record.Confidence, record.TrendStrength,
		string(record.SeasonalPattern), record.BreakpointCount, record.HealthScore, riskLevel,
	}

	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert trend result: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	quotedRuns := quoteTableName(analysisRunsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRunQuery := fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", quotedRuns)
		var lastStart any
		if err := as.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, &lastStart); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastRunTime, err := parseStoredTime(lastStart)
		if err != nil {
			return status, fmt.Errorf("failed to parse last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", quotedRuns)
		oldestRunTime, err := as.scanTime(as.db.QueryRow(oldestRunQuery))
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime
	}

	for _, table := range []string{analysisRunsTable, trendResultsTable} {
		var count int64
		if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalTrendResults = int(status.TableSizes[trendResultsTable])

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, run_uuid, user_id, start_time, end_time, run_duration_ms, total_series_points, config_params
		FROM %s ORDER BY analysis_id`, quoteTableName(analysisRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		var startRaw, endRaw any
		if err := rows.Scan(&record.AnalysisID, &record.RunUUID, &record.UserID, &startRaw, &endRaw,
			&record.RunDurationMs, &record.TotalSeriesPoints, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		if record.StartTime, err = parseStoredTime(startRaw); err != nil {
			return nil, fmt.Errorf("failed to parse start_time: %w", err)
		}
		if endRaw != nil {
			endTime, err := parseStoredTime(endRaw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse end_time: %w", err)
			}
			record.EndTime = &endTime
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllTrendResults retrieves all trend results from the store.
func (as *AnalysisStoreImpl) GetAllTrendResults() ([]schema.TrendResultRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY analysis_id, series_kind`,
		strings.Join(trendResultColumns, ", "), quoteTableName(trendResultsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query trend results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.TrendResultRecord
	for rows.Next() {
		var record schema.TrendResultRecord
		var kind, trend, pattern string
		var analysisRaw any
		var healthScore sql.NullFloat64
		var riskLevel sql.NullString
		if err := rows.Scan(&record.AnalysisID, &kind, &analysisRaw, &trend, &record.Slope, &record.Intercept,
			&record.RSquared, &record.Volatility, &record.Confidence, &record.TrendStrength, &pattern,
			&record.BreakpointCount, &healthScore, &riskLevel); err != nil {
			return nil, fmt.Errorf("failed to scan trend result: %w", err)
		}
		if record.AnalysisTime, err = parseStoredTime(analysisRaw); err != nil {
			return nil, fmt.Errorf("failed to parse analysis_time: %w", err)
		}
		record.SeriesKind = schema.SeriesKind(kind)
		record.Trend = schema.Trend(trend)
		record.SeasonalPattern = schema.SeasonalPattern(pattern)
		if healthScore.Valid {
			record.HealthScore = &healthScore.Float64
		}
		if riskLevel.Valid {
			level := schema.RiskLevel(riskLevel.String)
			record.RiskLevel = &level
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trend results: %w", err)
	}
	return results, nil
}

// scanTime reads a single time column from a row.
func (as *AnalysisStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	var raw any
	if err := row.Scan(&raw); err != nil {
		return time.Time{}, err
	}
	return parseStoredTime(raw)
}

// formatTime converts a time.Time to the appropriate format for the backend.
// SQLite stores RFC3339 text while the other backends use native timestamps.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

// parseStoredTime converts a scanned time column back into a time.Time.
func parseStoredTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		return time.Parse(time.RFC3339Nano, v)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(v))
	default:
		return time.Time{}, fmt.Errorf("unexpected time value of type %T", raw)
	}
}
