package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/cashtrend/schema"
	"go.uber.org/zap/zapcore"
)

// Default values for configuration.
const (
	DefaultLookbackDays     = 365
	DefaultPeriods          = 3
	MaxPeriods              = 60
	DefaultConfidenceLevel  = 0.95
	DefaultAnomalyThreshold = 2.5
	DefaultPrecision        = 2
	DefaultCacheTTL         = "7 days"
	DefaultUserID           = "default"
)

// CacheGranularity defines the time granularity for caching analysis results.
// Date ranges are truncated to it before they become part of a cache key.
const CacheGranularity = time.Hour

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// dateOnlyFormat is accepted for --start and --end besides DateTimeFormat.
const dateOnlyFormat = "2006-01-02"

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the analysis.
// This struct remains the "final, validated" config.
type Config struct {
	LedgerPath string
	UserID     string
	StartTime  time.Time
	EndTime    time.Time

	Granularity      schema.Granularity
	Periods          int
	ConfidenceLevel  float64
	AnomalyThreshold float64

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	LogLevel   zapcore.Level

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
	CacheTTL       time.Duration

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper will unmarshal into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	LedgerPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	User              string  `mapstructure:"user"`
	Start             string  `mapstructure:"start"`
	End               string  `mapstructure:"end"`
	Granularity       string  `mapstructure:"granularity"`
	Precision         int     `mapstructure:"precision"`
	Output            string  `mapstructure:"output"`
	OutputFile        string  `mapstructure:"output-file"`
	Width             int     `mapstructure:"width"`
	Color             string  `mapstructure:"color"`
	LogLevel          string  `mapstructure:"log-level"`
	CacheBackend      string  `mapstructure:"cache-backend"`
	CacheDBConnect    string  `mapstructure:"cache-db-connect"`
	CacheTTL          string  `mapstructure:"cache-ttl"`
	AnalysisBackend   string  `mapstructure:"analysis-backend"`
	AnalysisDBConnect string  `mapstructure:"analysis-db-connect"`
	AnomalyThreshold  float64 `mapstructure:"anomaly-threshold"`

	// --- Fields from forecastCmd.Flags() and scenariosCmd.Flags() ---
	Periods    int     `mapstructure:"periods"`
	Confidence float64 `mapstructure:"confidence"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// CloneWithTimeWindow creates a copy of the Config and sets the new StartTime and EndTime.
func (c *Config) CloneWithTimeWindow(start time.Time, end time.Time) *Config {
	clone := c.Clone()
	clone.StartTime = start
	clone.EndTime = end
	return clone
}

// GetAnalysisStartTime returns the configured start time, truncated to the caching granularity.
func (c *Config) GetAnalysisStartTime() time.Time {
	return c.StartTime.Truncate(CacheGranularity)
}

// GetAnalysisEndTime returns the configured end time, truncated to the caching granularity.
func (c *Config) GetAnalysisEndTime() time.Time {
	return c.EndTime.Truncate(CacheGranularity)
}

// ProcessAndValidate performs all complex parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateModelInputs(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	if err := processTimeRange(cfg, input, time.Now()); err != nil {
		return err
	}
	return resolveLedgerPath(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs handles output and presentation settings.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width

	cfg.UserID = strings.TrimSpace(input.User)
	if cfg.UserID == "" {
		cfg.UserID = DefaultUserID
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	if cfg.Width < 0 {
		return fmt.Errorf("width cannot be negative (received %d)", cfg.Width)
	}

	level, err := zapcore.ParseLevel(input.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level '%s'. must be debug, info, warn, error", input.LogLevel)
	}
	cfg.LogLevel = level

	return nil
}

// validateModelInputs handles the settings that reach the analysis engine.
func validateModelInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Granularity = schema.Granularity(strings.ToLower(input.Granularity))
	if _, ok := schema.ValidGranularities[cfg.Granularity]; !ok {
		return fmt.Errorf("invalid granularity '%s'. must be day, week, month", input.Granularity)
	}

	if input.Periods < 1 || input.Periods > MaxPeriods {
		return fmt.Errorf("periods must be between 1 and %d (received %d)", MaxPeriods, input.Periods)
	}
	cfg.Periods = input.Periods

	if input.Confidence <= 0 || input.Confidence >= 1 {
		return fmt.Errorf("confidence must be between 0 and 1 exclusive (received %g)", input.Confidence)
	}
	cfg.ConfidenceLevel = input.Confidence

	if input.AnomalyThreshold <= 0 {
		return fmt.Errorf("anomaly threshold must be greater than 0 (received %g)", input.AnomalyThreshold)
	}
	cfg.AnomalyThreshold = input.AnomalyThreshold

	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	ttl := input.CacheTTL
	if ttl == "" {
		ttl = DefaultCacheTTL
	}
	duration, err := ParseLookbackDuration(ttl)
	if err != nil {
		return fmt.Errorf("invalid cache ttl: %w", err)
	}
	cfg.CacheTTL = duration

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return err
	}

	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = GetCacheDBFilePath()
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = GetAnalysisDBFilePath()
		}
		if filepath.Clean(cacheDBPath) == filepath.Clean(analysisDBPath) {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}

	return nil
}

// processTimeRange handles the date parsing and time range validation.
func processTimeRange(cfg *Config, input *ConfigRawInput, now time.Time) error {
	cfg.EndTime = now
	cfg.StartTime = now.AddDate(0, 0, -DefaultLookbackDays)

	if input.Start != "" {
		t, err := parseTimeBound(input.Start, now)
		if err != nil {
			return fmt.Errorf("invalid start date format for '%s'. Expected RFC3339, YYYY-MM-DD or 'N [units] ago'", input.Start)
		}
		cfg.StartTime = t
	}

	if input.End != "" {
		t, err := parseTimeBound(input.End, now)
		if err != nil {
			return fmt.Errorf("invalid end date format for '%s'. Expected RFC3339, YYYY-MM-DD or 'N [units] ago'", input.End)
		}
		cfg.EndTime = t
	}

	if cfg.StartTime.After(cfg.EndTime) {
		return fmt.Errorf("start time (%s) cannot be after end time (%s)", cfg.StartTime.Format(DateTimeFormat), cfg.EndTime.Format(DateTimeFormat))
	}
	return nil
}

// parseTimeBound accepts an absolute timestamp, a plain date or a relative time.
func parseTimeBound(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(DateTimeFormat, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(dateOnlyFormat, s); err == nil {
		return t, nil
	}
	return ParseRelativeTime(s, now)
}

// resolveLedgerPath makes the positional ledger argument absolute when one is given.
func resolveLedgerPath(cfg *Config, input *ConfigRawInput) error {
	if input.LedgerPathStr == "" {
		cfg.LedgerPath = ""
		return nil
	}
	abs, err := filepath.Abs(input.LedgerPathStr)
	if err != nil {
		return err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("ledger file not found: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("ledger path %s is a directory", abs)
	}
	cfg.LedgerPath = abs
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
