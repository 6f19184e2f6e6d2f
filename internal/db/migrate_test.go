package db

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestApplyMigrationsIsIdempotent(t *testing.T) {
	sqdb, err := OpenSQLite(filepath.Join(t.TempDir(), "ping.db"), 1, 1, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqdb.Close() })

	require.NoError(t, ApplyMigrations(sqdb, "sqlite"))
	require.NoError(t, ApplyMigrations(sqdb, "sqlite"))

	for _, col := range []string{"storage_key", "storage_value", "updated_at"} {
		require.True(t, hasColumn(t, sqdb, "kv_entries", col), "kv_entries.%s", col)
	}
	require.True(t, hasColumn(t, sqdb, "audit_log", "metadata_json"))
}

func TestApplyMigrationsUnknownDialect(t *testing.T) {
	sqdb, err := OpenSQLite(filepath.Join(t.TempDir(), "ping.db"), 1, 1, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqdb.Close() })
	require.Error(t, ApplyMigrations(sqdb, "oracle"))
}

func TestSplitStatements(t *testing.T) {
	got := splitStatements("CREATE TABLE a (x INT);\n\n CREATE INDEX i ON a(x);\n")
	require.Equal(t, []string{"CREATE TABLE a (x INT)", "CREATE INDEX i ON a(x)"}, got)
}

func hasColumn(t *testing.T, sqdb *sql.DB, tableName, colName string) bool {
	t.Helper()
	rows, err := sqdb.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	require.NoError(t, err)
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notNull int
		var dflt sql.NullString
		var pk int
		require.NoError(t, rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk))
		if name == colName {
			return true
		}
	}
	require.NoError(t, rows.Err())
	return false
}
