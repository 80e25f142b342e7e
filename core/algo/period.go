package algo

import (
	"fmt"
	"time"

	"github.com/huangsam/cashtrend/schema"
)

const (
	monthLabelLayout = "2006-01"
	dayLabelLayout   = "2006-01-02"
)

// NextPeriodLabels continues the period keys of a series for count steps.
// Month keys advance by month, ISO week keys by week and day keys by the
// spacing of the last two points. Anything else becomes "<last>+i".
func NextPeriodLabels(series []schema.SeriesPoint, count int) []string {
	if count <= 0 || len(series) == 0 {
		return []string{}
	}
	last := series[len(series)-1].Period
	labels := make([]string, count)

	if t, err := time.Parse(monthLabelLayout, last); err == nil {
		for i := range count {
			labels[i] = t.AddDate(0, i+1, 0).Format(monthLabelLayout)
		}
		return labels
	}

	if monday, ok := parseISOWeek(last); ok {
		for i := range count {
			labels[i] = FormatISOWeek(monday.AddDate(0, 0, 7*(i+1)))
		}
		return labels
	}

	if t, err := time.Parse(dayLabelLayout, last); err == nil {
		step := 1
		if len(series) > 1 {
			if prev, err := time.Parse(dayLabelLayout, series[len(series)-2].Period); err == nil {
				if days := int(t.Sub(prev).Hours() / 24); days > 0 {
					step = days
				}
			}
		}
		for i := range count {
			labels[i] = t.AddDate(0, 0, step*(i+1)).Format(dayLabelLayout)
		}
		return labels
	}

	for i := range count {
		labels[i] = fmt.Sprintf("%s+%d", last, i+1)
	}
	return labels
}

// FormatISOWeek renders t as an ISO week key such as "2024-W09".
func FormatISOWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// parseISOWeek returns the Monday that starts an ISO week key.
func parseISOWeek(key string) (time.Time, bool) {
	if len(key) != 8 || key[4:6] != "-W" {
		return time.Time{}, false
	}
	var year, week int
	if _, err := fmt.Sscanf(key, "%4d-W%2d", &year, &week); err != nil || week < 1 || week > 53 {
		return time.Time{}, false
	}
	// January 4th always falls in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	week1 := jan4.AddDate(0, 0, -offset)
	return week1.AddDate(0, 0, 7*(week-1)), true
}
