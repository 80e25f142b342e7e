package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/cashtrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCSV(t *testing.T) {
	txns, err := Load(filepath.Join("testdata", "ledger.csv"))
	require.NoError(t, err)
	require.Len(t, txns, 4)

	// Sorted by date regardless of file order.
	assert.Equal(t, "t-001", txns[0].ID)
	assert.Equal(t, "t-002", txns[1].ID)
	assert.Equal(t, "t-004", txns[2].ID)
	assert.Equal(t, "t-003", txns[3].ID)

	assert.Equal(t, schema.IncomeType, txns[2].Type, "type is case-insensitive")
	assert.Equal(t, time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC), txns[2].Date)
	assert.Equal(t, 85.5, txns[3].Amount)
	assert.Equal(t, "dining", txns[3].Category)
	assert.Equal(t, "Valentine dinner", txns[3].Description)
}

func TestLoadJSON(t *testing.T) {
	txns, err := Load(filepath.Join("testdata", "ledger.json"))
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "j-1", txns[0].ID)
	assert.Equal(t, schema.ExpenseType, txns[0].Type)
	assert.Equal(t, "March paycheck", txns[1].Description)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"empty file", "", "no transactions"},
		{"header only", "id,date,amount,type\n", "no transactions"},
		{"missing column", "id,date,amount\n1,2024-01-01,5\n", `missing column "type"`},
		{"bad date", "id,date,amount,type\n1,01/02/2024,5,expense\n", "line 2: invalid date"},
		{"bad amount", "id,date,amount,type\n1,2024-01-01,five,expense\n", "invalid amount"},
		{"bad type", "id,date,amount,type\n1,2024-01-01,5,transfer\n", `invalid type: failed "oneof" check`},
		{"negative amount", "id,date,amount,type\n1,2024-01-01,-5,expense\n", `invalid amount: failed "gte" check`},
		{"missing id", "id,date,amount,type\n,2024-01-01,5,expense\n", `invalid id: failed "required" check`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReadJSONErrors(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyLedger)

	_, err = ReadJSON(strings.NewReader("[]"))
	assert.ErrorIs(t, err, ErrEmptyLedger)

	_, err = ReadJSON(strings.NewReader(`{"id": "x"}`))
	assert.ErrorContains(t, err, "decode json")

	_, err = ReadJSON(strings.NewReader(`[{"id": "x", "date": "2024-01-01", "amount": 1, "type": "gift"}]`))
	assert.ErrorContains(t, err, "record 0")
}

func TestValidate(t *testing.T) {
	ok := schema.Transaction{ID: "a", Date: time.Now(), Amount: 1, Type: schema.ExpenseType}
	assert.NoError(t, Validate(ok))

	zeroDate := ok
	zeroDate.Date = time.Time{}
	assert.Error(t, Validate(zeroDate))
}
