package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pingplatform/internal/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	sqdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "ping.db"), 1, 1, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqdb.Close() })
	require.NoError(t, db.ApplyMigrations(sqdb, "sqlite"))
	return New(sqdb, "sqlite")
}

func TestKeyValueRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.Get(ctx, "dev:ping_user")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, st.Put(ctx, "dev:ping_user", `{"id":"usr-001"}`))
	require.NoError(t, st.Put(ctx, "dev:ping_user", `{"id":"usr-002"}`))
	v, err := st.Get(ctx, "dev:ping_user")
	require.NoError(t, err)
	require.Equal(t, `{"id":"usr-002"}`, v)

	require.NoError(t, st.Put(ctx, "dev:ping_token", "tok"))
	require.NoError(t, st.Delete(ctx, "dev:ping_user", "dev:ping_token"))
	_, err = st.Get(ctx, "dev:ping_token")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, st.Delete(ctx))
}

func TestAuditNewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, st.InsertAudit(ctx, "adm-001", "fraud_case.status", "fc-001", `{"to":"investigating"}`))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, st.InsertAudit(ctx, "adm-001", "campaign.status", "cmp-002", ""))

	items, err := st.ListAudit(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "campaign.status", items[0].Action)
	require.Equal(t, "{}", items[0].MetadataJSON)

	page, err := st.ListAudit(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	require.Equal(t, "fraud_case.status", page[0].Action)
}

func TestPlaceholders(t *testing.T) {
	require.Equal(t, "$2", New(nil, "postgres").ph(2))
	require.Equal(t, "?", New(nil, "mysql").ph(2))
	require.Equal(t, "?", New(nil, "sqlite").ph(1))
}
