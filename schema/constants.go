package schema

// Custom string types for type safety.
type (
	// Trend represents the direction of a fitted series.
	Trend string

	// SeasonalPattern represents the autocorrelation-based seasonality class of a series.
	SeasonalPattern string

	// SeasonalityStrength represents the month-bucket seasonality class of a transaction list.
	SeasonalityStrength string

	// Severity represents how far an anomaly sits from the mean.
	Severity string

	// AnomalyType represents the direction of an anomaly.
	AnomalyType string

	// InsightType represents the tone of an insight.
	InsightType string

	// Priority represents how urgent an insight is.
	Priority string

	// RiskLevel represents the accumulated risk of a financial profile.
	RiskLevel string

	// Sustainability represents whether the net cash flow can be sustained.
	Sustainability string

	// TransactionType separates income from expense records.
	TransactionType string

	// Granularity represents the period size used by the aggregator.
	Granularity string

	// SeriesKind identifies which series a result was computed for.
	SeriesKind string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string
)

// All trend labels.
const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// All seasonal patterns.
const (
	InsufficientData SeasonalPattern = "insufficient_data"
	NoSeasonal       SeasonalPattern = "no_seasonal"
	ModerateSeasonal SeasonalPattern = "moderate_seasonal"
	StrongSeasonal   SeasonalPattern = "strong_seasonal"
)

// All seasonality strengths.
const (
	WeakSeasonality     SeasonalityStrength = "weak"
	ModerateSeasonality SeasonalityStrength = "moderate"
	StrongSeasonality   SeasonalityStrength = "strong"
)

// All anomaly severities.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// All anomaly types.
const (
	AnomalySpike AnomalyType = "spike"
	AnomalyDrop  AnomalyType = "drop"
)

// All insight types.
const (
	InsightSuccess InsightType = "success"
	InsightWarning InsightType = "warning"
	InsightDanger  InsightType = "danger"
	InsightInfo    InsightType = "info"
)

// All insight priorities.
const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// All risk levels.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// All sustainability classes.
const (
	Sustainable   Sustainability = "sustainable"
	AtRisk        Sustainability = "at_risk"
	Unsustainable Sustainability = "unsustainable"
)

// All transaction types.
const (
	IncomeType  TransactionType = "income"
	ExpenseType TransactionType = "expense"
)

// All aggregation granularities.
const (
	DailyGranularity   Granularity = "day"
	WeeklyGranularity  Granularity = "week"
	MonthlyGranularity Granularity = "month" // default
)

// All series kinds.
const (
	ExpenseSeries SeriesKind = "expense"
	IncomeSeries  SeriesKind = "income"
	NetSeries     SeriesKind = "net"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidGranularities lists all valid aggregation granularities.
var ValidGranularities = map[Granularity]struct{}{
	DailyGranularity:   {},
	WeeklyGranularity:  {},
	MonthlyGranularity: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// priorityRank orders priorities from most to least urgent.
var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// Rank returns the sort rank of a priority. Lower is more urgent.
// Unknown priorities sort last.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}
