package iocache

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/cashtrend/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCacheStore(t *testing.T) *CacheStoreImpl {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	store, err := NewCacheStore(cacheTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store.(*CacheStoreImpl)
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "cashtrend_cache", false},
		{"leading underscore", "_cache", false},
		{"digits", "cache2", false},
		{"empty", "", true},
		{"leading digit", "2cache", true},
		{"space", "cache table", true},
		{"injection", "cache; DROP TABLE users", true},
		{"quote", `cache"`, true},
		{"too long", "a1234567890123456789012345678901234567890123456789012345678901234", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteBackend))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"$1", "$2", "$3"}, placeholders(schema.PostgreSQLBackend, 3))
	assert.Equal(t, []string{"?", "?"}, placeholders(schema.MySQLBackend, 2))
	assert.Equal(t, []string{"?"}, placeholders(schema.SQLiteBackend, 1))
	assert.Empty(t, placeholders(schema.SQLiteBackend, 0))
}

func TestDriverFor(t *testing.T) {
	for backend, want := range map[schema.DatabaseBackend]string{
		schema.SQLiteBackend:     "sqlite",
		schema.MySQLBackend:      "mysql",
		schema.PostgreSQLBackend: "pgx",
	} {
		got, err := driverFor(backend)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := driverFor(schema.NoneBackend)
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	dsn, err := mysqlDSN("user:pass@tcp(localhost:3306)/cashtrend")
	require.NoError(t, err)
	assert.Contains(t, dsn, "parseTime=true")

	_, err = mysqlDSN("not a dsn")
	assert.Error(t, err)
}

func TestGetCreateTableQuery(t *testing.T) {
	mysqlQuery := getCreateTableQuery("c", schema.MySQLBackend)
	assert.Contains(t, mysqlQuery, "LONGBLOB")
	assert.Contains(t, mysqlQuery, "`c`")

	pgQuery := getCreateTableQuery("c", schema.PostgreSQLBackend)
	assert.Contains(t, pgQuery, "BYTEA")

	sqliteQuery := getCreateTableQuery("c", schema.SQLiteBackend)
	assert.Contains(t, sqliteQuery, "BLOB NOT NULL")
	assert.Contains(t, sqliteQuery, `"c"`)
}

func TestGetUpsertQuery(t *testing.T) {
	store := &CacheStoreImpl{tableName: "c", backend: schema.MySQLBackend}
	assert.Contains(t, store.getUpsertQuery(), "ON DUPLICATE KEY UPDATE")

	store.backend = schema.PostgreSQLBackend
	assert.Contains(t, store.getUpsertQuery(), "ON CONFLICT (cache_key)")

	store.backend = schema.SQLiteBackend
	assert.Contains(t, store.getUpsertQuery(), "INSERT OR REPLACE")
}

func TestNewCacheStoreErrors(t *testing.T) {
	_, err := NewCacheStore("bad name", schema.SQLiteBackend, "")
	assert.Error(t, err)

	_, err = NewCacheStore(cacheTable, "oracle", "")
	assert.Error(t, err)
}

func TestSQLiteBackendOperations(t *testing.T) {
	store := newTestCacheStore(t)

	_, _, _, err := store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	ts := time.Now().Unix()
	require.NoError(t, store.Set("k1", []byte(`{"trend":"stable"}`), 1, ts))

	value, version, gotTs, err := store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"trend":"stable"}`), value)
	assert.Equal(t, 1, version)
	assert.Equal(t, ts, gotTs)

	// Overwrite keeps a single row
	require.NoError(t, store.Set("k1", []byte("v2"), 2, ts+10))
	value, version, gotTs, err = store.Get("k1")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, ts+10, gotTs)
}

func TestCacheStoreGetStatus(t *testing.T) {
	store := newTestCacheStore(t)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 0, status.TotalEntries)

	require.NoError(t, store.Set("a", []byte("1"), 1, 1000))
	require.NoError(t, store.Set("b", []byte("2"), 1, 2000))

	status, err = store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, time.Unix(1000, 0), status.OldestEntryTime)
	assert.Equal(t, time.Unix(2000, 0), status.LastEntryTime)
	assert.Positive(t, status.TableSizeBytes)
}

func TestCacheStoreNoneBackend(t *testing.T) {
	store, err := NewCacheStore(cacheTable, schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "none", status.Backend)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}
