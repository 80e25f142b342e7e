package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// AnalysisStatus represents the status of the analysis store.
type AnalysisStatus struct {
	Backend           string           `json:"backend"`
	Connected         bool             `json:"connected"`
	TotalRuns         int              `json:"total_runs"`
	LastRunID         int64            `json:"last_run_id"`
	LastRunTime       time.Time        `json:"last_run_time"`
	OldestRunTime     time.Time        `json:"oldest_run_time"`
	TotalTrendResults int              `json:"total_trend_results"`
	TableSizes        map[string]int64 `json:"table_sizes"`
}

// AnalysisRunRecord represents a row from the cashtrend_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID        int64
	RunUUID           string
	UserID            string
	StartTime         time.Time
	EndTime           *time.Time
	RunDurationMs     *int32
	TotalSeriesPoints int32
	ConfigParams      *string
}

// TrendResultRecord represents a row from the cashtrend_trend_results table.
type TrendResultRecord struct {
	AnalysisID      int64
	SeriesKind      SeriesKind
	AnalysisTime    time.Time
	Trend           Trend
	Slope           float64
	Intercept       float64
	RSquared        float64
	Volatility      float64
	Confidence      float64
	TrendStrength   float64
	SeasonalPattern SeasonalPattern
	BreakpointCount int32
	HealthScore     *float64
	RiskLevel       *RiskLevel
}

// NewTrendResultRecord flattens a TrendResult into a storable record.
func NewTrendResultRecord(kind SeriesKind, at time.Time, tr TrendResult) TrendResultRecord {
	return TrendResultRecord{
		SeriesKind:      kind,
		AnalysisTime:    at,
		Trend:           tr.Trend,
		Slope:           tr.Slope,
		Intercept:       tr.Intercept,
		RSquared:        tr.RSquared,
		Volatility:      tr.Volatility,
		Confidence:      tr.Confidence,
		TrendStrength:   tr.TrendStrength,
		SeasonalPattern: tr.SeasonalPattern,
		BreakpointCount: int32(len(tr.Breakpoints)),
	}
}
