// Package ledger loads raw transactions from CSV or JSON files.
package ledger

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/huangsam/cashtrend/schema"
)

var (
	// ErrEmptyLedger is returned when a ledger holds no transactions.
	ErrEmptyLedger = errors.New("ledger has no transactions")

	// ErrUnsupportedFormat is returned for file extensions other than .csv and .json.
	ErrUnsupportedFormat = errors.New("unsupported ledger format")
)

// csvHeader is the expected column order of a CSV ledger.
var csvHeader = []string{"id", "date", "amount", "type", "category", "description"}

// dateLayouts are tried in order when parsing a transaction date.
var dateLayouts = []string{"2006-01-02", time.RFC3339}

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// Load reads a ledger file, choosing the decoder by extension, and returns the
// transactions sorted by date.
func Load(path string) ([]schema.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer func() { _ = f.Close() }()

	var txns []schema.Transaction
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		txns, err = ReadCSV(f)
	case ".json":
		txns, err = ReadJSON(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return txns, nil
}

// ReadCSV decodes a CSV ledger with a header row.
func ReadCSV(r io.Reader) ([]schema.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyLedger
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	var txns []schema.Transaction
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		t, err := parseRecord(record, columns)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txns = append(txns, t)
	}
	return finalize(txns)
}

// jsonTransaction accepts dates as plain days or RFC3339 timestamps.
type jsonTransaction struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// ReadJSON decodes a JSON array of transactions.
func ReadJSON(r io.Reader) ([]schema.Transaction, error) {
	var raw []jsonTransaction
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyLedger
		}
		return nil, fmt.Errorf("decode json: %w", err)
	}

	txns := make([]schema.Transaction, 0, len(raw))
	for i, jt := range raw {
		date, err := parseDate(jt.Date)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		t := schema.Transaction{
			ID:          strings.TrimSpace(jt.ID),
			Date:        date,
			Amount:      jt.Amount,
			Type:        schema.TransactionType(strings.ToLower(strings.TrimSpace(jt.Type))),
			Category:    jt.Category,
			Description: jt.Description,
		}
		if err := Validate(t); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		txns = append(txns, t)
	}
	return finalize(txns)
}

// Validate checks a single transaction against its struct tags.
func Validate(t schema.Transaction) error {
	if err := validate.Struct(t); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: failed %q check", strings.ToLower(fe.Field()), fe.Tag())
		}
		return err
	}
	return nil
}

func indexColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range csvHeader[:4] {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	return columns, nil
}

func parseRecord(record []string, columns map[string]int) (schema.Transaction, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := parseDate(field("date"))
	if err != nil {
		return schema.Transaction{}, err
	}
	amount, err := strconv.ParseFloat(field("amount"), 64)
	if err != nil {
		return schema.Transaction{}, fmt.Errorf("invalid amount %q: %w", field("amount"), err)
	}

	t := schema.Transaction{
		ID:          field("id"),
		Date:        date,
		Amount:      amount,
		Type:        schema.TransactionType(strings.ToLower(field("type"))),
		Category:    field("category"),
		Description: field("description"),
	}
	if err := Validate(t); err != nil {
		return schema.Transaction{}, err
	}
	return t, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// finalize sorts transactions chronologically and rejects an empty ledger.
func finalize(txns []schema.Transaction) ([]schema.Transaction, error) {
	if len(txns) == 0 {
		return nil, ErrEmptyLedger
	}
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })
	return txns, nil
}
