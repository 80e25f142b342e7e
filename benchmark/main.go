// Package main provides a performance benchmarking tool for the cashtrend CLI.
// It generates synthetic ledgers of increasing size, runs each report command
// several times without a cache and with the SQLite cache, treating the first
// cached run as cold and averaging the rest as warm, and writes a CSV summary.
//
// Prerequisites:
// - cashtrend binary installed and available in PATH
//
// Usage: go run ./benchmark [work-dir]
//
//	work-dir: Directory where the generated ledgers are written
package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Ledger      string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	// LedgerSizes maps a ledger name to the number of transactions generated per month.
	LedgerSizes map[string]int
	LedgerOrder []string
	Months      int
	Commands    [][]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir:     os.Args[1],
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		LedgerSizes: map[string]int{
			"small":  20,
			"medium": 500,
			"large":  5000,
		},
		LedgerOrder: []string{"small", "medium", "large"},
		Months:      36,
		Commands: [][]string{
			{"trend"},
			{"anomalies"},
			{"forecast", "--periods", "6"},
			{"overall"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("cashtrend", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results, err := runBenchmarks(config)
	if err != nil {
		fmt.Printf("Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the cashtrend binary exists and the work dir is writable.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("cashtrend"); err != nil {
		return fmt.Errorf("cashtrend binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// runBenchmarks generates every ledger and executes all commands against it.
func runBenchmarks(config BenchmarkConfig) ([]BenchmarkResult, error) {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d ledgers, %d months, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.LedgerOrder), config.Months, config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, name := range config.LedgerOrder {
		ledgerPath := filepath.Join(config.WorkDir, name+".csv")
		count, err := generateLedger(ledgerPath, config.Months, config.LedgerSizes[name])
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s ledger: %w", name, err)
		}
		fmt.Printf("Benchmarking %s ledger (%d transactions)\n", name, count)

		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, name, ledgerPath, command))
		}
	}

	return results, nil
}

// generateLedger writes monthly income and noisy, seasonal expenses ending last month.
func generateLedger(path string, months, perMonth int) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"id", "date", "amount", "type", "category", "description"}); err != nil {
		return 0, err
	}

	rng := rand.New(rand.NewPCG(42, 7))
	categories := []string{"rent", "groceries", "dining", "transport", "utilities", "travel"}
	first := time.Now().UTC().AddDate(0, -months, 0)
	first = time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)

	count := 0
	for m := range months {
		month := first.AddDate(0, m, 0)
		season := 1 + 0.2*math.Sin(2*math.Pi*float64(month.Month())/12)
		row := []string{
			fmt.Sprintf("inc-%d", m), month.Format("2006-01-02"), fmt.Sprintf("%.2f", 4000+15*float64(m)),
			"income", "salary", "Paycheck",
		}
		if err := writer.Write(row); err != nil {
			return count, err
		}
		count++

		for i := range perMonth {
			day := 1 + rng.IntN(28)
			amount := (3000 / float64(perMonth)) * season * (0.5 + rng.Float64())
			row := []string{
				fmt.Sprintf("exp-%d-%d", m, i),
				month.AddDate(0, 0, day-1).Format("2006-01-02"),
				fmt.Sprintf("%.2f", amount),
				"expense",
				categories[rng.IntN(len(categories))],
				"Generated expense",
			}
			if err := writer.Write(row); err != nil {
				return count, err
			}
			count++
		}
	}

	writer.Flush()
	return count, writer.Error()
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command.
func runBenchmarkSuite(config BenchmarkConfig, ledger, ledgerPath string, command []string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", strings.Join(command, " "), ledger)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, ledgerPath, command, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Ledger:      ledger,
		Command:     command[0],
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a cashtrend command multiple times with the given cache backend
// and returns the cold time and warm times.
func runBenchmark(config BenchmarkConfig, ledgerPath string, command []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, command...)
	args = append(args, "--ledger", ledgerPath, "--start", fmt.Sprintf("%d days ago", config.Months*31+31), "--cache-backend", cacheBackend)

	var times []float64
	for range numRuns {
		start := time.Now()

		cmd := exec.Command("cashtrend", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if the table output ends with the analysis footer.
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "periods in") && strings.Contains(outputStr, "Cache backend")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("cashtrend_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"ledger", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Ledger, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by command.
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command[0])
		for _, result := range results {
			if result.Command == command[0] {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Ledger, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
