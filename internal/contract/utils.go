package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/huangsam/cashtrend/schema"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // CriticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // HighColor represents strong, distinct warning.
	ModerateColor = color.New(color.FgYellow)              // ModerateColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // LowColor represents informational / low-priority signal.
	GoodColor     = color.New(color.FgGreen)               // GoodColor represents a healthy signal.
)

// GetLevelColor returns the color for a low/medium/high/critical level string
// such as a priority, severity or risk level. Unknown levels are not colored.
func GetLevelColor(level string) *color.Color {
	switch strings.ToLower(level) {
	case string(schema.PriorityCritical):
		return CriticalColor
	case string(schema.PriorityHigh):
		return HighColor
	case string(schema.PriorityMedium):
		return ModerateColor
	case string(schema.PriorityLow):
		return LowColor
	default:
		return nil
	}
}

// GetColorLabel returns a colored level label for console output (table).
func GetColorLabel(level string) string {
	if c := GetLevelColor(level); c != nil {
		return c.Sprint(level)
	}
	return level
}

// GetHealthColorLabel returns the colored rating for a financial health score.
func GetHealthColorLabel(score float64) string {
	rating := schema.HealthRating(score)
	switch {
	case score >= 80:
		return GoodColor.Sprint(rating)
	case score >= 60:
		return LowColor.Sprint(rating)
	case score >= 40:
		return ModerateColor.Sprint(rating)
	default:
		return CriticalColor.Sprint(rating)
	}
}

// GetTrendColorLabel colors a trend by whether it is good news for the series.
// Rising expenses or falling income and net cash flow are flagged.
func GetTrendColorLabel(kind schema.SeriesKind, trend schema.Trend) string {
	if trend != schema.TrendIncreasing && trend != schema.TrendDecreasing {
		return string(trend)
	}
	good := trend == schema.TrendIncreasing
	if kind == schema.ExpenseSeries {
		good = !good
	}
	if good {
		return GoodColor.Sprint(trend)
	}
	return HighColor.Sprint(trend)
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. It returns os.Stdout when no path is given.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".cashtrend_cache.db"
	}
	return filepath.Join(homeDir, ".cashtrend_cache.db")
}

// GetAnalysisDBFilePath returns the path to the SQLite DB file for analysis storage.
func GetAnalysisDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".cashtrend_analysis.db"
	}
	return filepath.Join(homeDir, ".cashtrend_analysis.db")
}

// TruncateText shortens text to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so the ellipsis leaves room for at least one rune.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
