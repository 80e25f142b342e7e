package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.November, 3, 10, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func TestParseRelativeTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{name: "ledger year in days", input: "365 days ago", expected: fixedNow.AddDate(0, 0, -DefaultLookbackDays)},
		{name: "half year", input: "6 months ago", expected: fixedNow.AddDate(0, -6, 0)},
		{name: "singular month", input: "1 month ago", expected: fixedNow.AddDate(0, -1, 0)},
		{name: "two years", input: "2 years ago", expected: fixedNow.AddDate(-2, 0, 0)},
		{name: "weeks", input: "4 weeks ago", expected: fixedNow.Add(-28 * day)},
		{name: "hours", input: "12 hours ago", expected: fixedNow.Add(-12 * time.Hour)},
		{name: "case and spacing", input: "  3 Months   AGO ", expected: fixedNow.AddDate(0, -3, 0)},
		{name: "zero is now", input: "0 days ago", expected: fixedNow},
		{name: "missing ago", input: "3 months", wantErr: true},
		{name: "future", input: "in 3 months", wantErr: true},
		{name: "negative", input: "-3 months ago", wantErr: true},
		{name: "word number", input: "three months ago", wantErr: true},
		{name: "unknown unit", input: "2 quarters ago", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, fixedNow)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s, want %s", got, tt.expected)
		})
	}
}

// Relative start and end bounds land inside the default ledger window.
func TestRelativeBoundsFeedLedgerWindow(t *testing.T) {
	cfg := &Config{}
	input := &ConfigRawInput{Start: "6 months ago", End: "1 month ago"}
	require.NoError(t, processTimeRange(cfg, input, fixedNow))

	assert.True(t, cfg.StartTime.Equal(fixedNow.AddDate(0, -6, 0)))
	assert.True(t, cfg.EndTime.Equal(fixedNow.AddDate(0, -1, 0)))
	assert.True(t, cfg.StartTime.After(fixedNow.AddDate(0, 0, -DefaultLookbackDays)))

	reversed := &ConfigRawInput{Start: "1 month ago", End: "6 months ago"}
	assert.Error(t, processTimeRange(&Config{}, reversed, fixedNow))
}

func TestParseLookbackDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "default cache ttl", input: DefaultCacheTTL, want: 7 * day},
		{name: "one day", input: "1 day", want: day},
		{name: "two weeks", input: "2 weeks", want: 14 * day},
		{name: "month is thirty days", input: "1 month", want: 30 * day},
		{name: "year is 365 days", input: "1 year", want: 365 * day},
		{name: "go syntax hours", input: "12h", want: 12 * time.Hour},
		{name: "go syntax mixed", input: "1h30m", want: 90 * time.Minute},
		{name: "case and spacing", input: " 3  DAYS ", want: 3 * day},
		{name: "zero days", input: "0 days", wantErr: true},
		{name: "zero go syntax", input: "0s", wantErr: true},
		{name: "negative go syntax", input: "-1h", wantErr: true},
		{name: "negative days", input: "-3 days", wantErr: true},
		{name: "fractional days", input: "1.5 days", wantErr: true},
		{name: "no unit", input: "7", wantErr: true},
		{name: "not a duration", input: "forever", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLookbackDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The cache-ttl key goes through ParseLookbackDuration during validation.
func TestCacheTTLValidation(t *testing.T) {
	for _, ttl := range []string{"0 days", "-2h", "soon"} {
		input := validInput()
		input.CacheTTL = ttl
		assert.Error(t, ProcessAndValidate(&Config{}, input), ttl)
	}

	input := validInput()
	input.CacheTTL = "36h"
	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))
	assert.Equal(t, 36*time.Hour, cfg.CacheTTL)
}

func FuzzParseRelativeTime(f *testing.F) {
	for _, seed := range []string{"365 days ago", "6 months ago", "1 week ago", "0 years ago", "99999999999999999999 days ago"} {
		f.Add(seed)
	}

	f.Fuzz(func(_ *testing.T, input string) {
		_, _ = ParseRelativeTime(input, fixedNow)
	})
}

func FuzzParseLookbackDuration(f *testing.F) {
	for _, seed := range []string{DefaultCacheTTL, "12h", "3 months", "0 years", "-1h"} {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, input string) {
		d, err := ParseLookbackDuration(input)
		if err == nil && d <= 0 {
			t.Errorf("ParseLookbackDuration(%q) = %v, want a positive duration", input, d)
		}
	})
}
