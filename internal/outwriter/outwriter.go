// Package outwriter renders analysis reports as tables, JSON, CSV or Parquet.
package outwriter

import (
	"fmt"
	"io"
	"os"

	"github.com/huangsam/cashtrend/internal/contract"
	"github.com/huangsam/cashtrend/schema"
	"golang.org/x/term"
)

// reportWriters holds the per-format renderers of one report.
type reportWriters struct {
	table   func(io.Writer) error
	csv     func(io.Writer) error
	json    any
	parquet func(io.Writer) error // nil when the report has no Parquet form
}

// writeReport dispatches on the output format configured.
func writeReport(cfg *contract.Config, rw reportWriters) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rw.json)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, rw.csv, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if rw.parquet == nil {
			return fmt.Errorf("parquet output is only supported by the forecast command")
		}
		if err := writeWithFile(cfg.OutputFile, rw.parquet, "Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, rw.table, "Wrote table")
	}
	return nil
}

// GetMaxTableTextWidth calculates the maximum width for free-text columns
// (explanations, messages) based on terminal width and fixed columns.
func GetMaxTableTextWidth(cfg *contract.Config, fixedWidth int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for table borders, separators, and padding
	available := termWidth - fixedWidth - 20
	if available < 20 {
		return 20
	}
	if available > 100 {
		return 100
	}
	return available
}
