// Package agg turns raw ledger transactions into ordered per-period series.
package agg

import (
	"time"

	"github.com/huangsam/cashtrend/core/algo"
	"github.com/huangsam/cashtrend/schema"
)

const (
	dayKeyLayout   = "2006-01-02"
	monthKeyLayout = "2006-01"
)

// PeriodKey returns the sortable key of the period containing t.
func PeriodKey(t time.Time, g schema.Granularity) string {
	switch g {
	case schema.DailyGranularity:
		return t.Format(dayKeyLayout)
	case schema.WeeklyGranularity:
		return algo.FormatISOWeek(t)
	default:
		return t.Format(monthKeyLayout)
	}
}

// periodStart truncates t to the first instant of its period.
func periodStart(t time.Time, g schema.Granularity) time.Time {
	y, m, d := t.Date()
	switch g {
	case schema.DailyGranularity:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	case schema.WeeklyGranularity:
		day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	}
}

// nextPeriod returns the start of the period after the one starting at t.
func nextPeriod(t time.Time, g schema.Granularity) time.Time {
	switch g {
	case schema.DailyGranularity:
		return t.AddDate(0, 0, 1)
	case schema.WeeklyGranularity:
		return t.AddDate(0, 0, 7)
	default:
		return t.AddDate(0, 1, 0)
	}
}

// FilterByRange keeps transactions dated within [start, end]. A zero bound is open.
func FilterByRange(txns []schema.Transaction, start, end time.Time) []schema.Transaction {
	out := make([]schema.Transaction, 0, len(txns))
	for _, t := range txns {
		if !start.IsZero() && t.Date.Before(start) {
			continue
		}
		if !end.IsZero() && t.Date.After(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SplitByType separates expense and income transactions, preserving input order.
func SplitByType(txns []schema.Transaction) (expense, income []schema.Transaction) {
	expense = []schema.Transaction{}
	income = []schema.Transaction{}
	for _, t := range txns {
		switch t.Type {
		case schema.ExpenseType:
			expense = append(expense, t)
		case schema.IncomeType:
			income = append(income, t)
		}
	}
	return expense, income
}

// AggregateByPeriod sums expense and income amounts per period within [start, end].
// Both series cover every period from the earliest to the latest transaction, so
// they are index-aligned and a period with no activity of one type holds 0.
func AggregateByPeriod(txns []schema.Transaction, g schema.Granularity, start, end time.Time) (expense, income []schema.SeriesPoint) {
	expense = []schema.SeriesPoint{}
	income = []schema.SeriesPoint{}

	// 1. Drop out-of-range transactions
	inRange := FilterByRange(txns, start, end)
	if len(inRange) == 0 {
		return expense, income
	}

	// 2. Sum per period key and track the covered span
	expenseTotals := make(map[string]float64)
	incomeTotals := make(map[string]float64)
	first, last := inRange[0].Date, inRange[0].Date
	for _, t := range inRange {
		key := PeriodKey(t.Date, g)
		switch t.Type {
		case schema.ExpenseType:
			expenseTotals[key] += t.Amount
		case schema.IncomeType:
			incomeTotals[key] += t.Amount
		default:
			continue
		}
		if t.Date.Before(first) {
			first = t.Date
		}
		if t.Date.After(last) {
			last = t.Date
		}
	}

	// 3. Walk every period in the span so gaps become zero-valued points
	lastKey := PeriodKey(last, g)
	for p := periodStart(first, g); ; p = nextPeriod(p, g) {
		key := PeriodKey(p, g)
		expense = append(expense, schema.SeriesPoint{Period: key, Amount: expenseTotals[key]})
		income = append(income, schema.SeriesPoint{Period: key, Amount: incomeTotals[key]})
		if key >= lastKey {
			break
		}
	}
	return expense, income
}

// CountPoints returns the number of periods covered by an aligned pair of series.
func CountPoints(expense, income []schema.SeriesPoint) int {
	return max(len(expense), len(income))
}
