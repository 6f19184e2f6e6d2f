package session

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pingplatform/internal/auth"
	"pingplatform/internal/catalog"
	"pingplatform/internal/db"
	"pingplatform/internal/fixtures"
	"pingplatform/internal/models"
	"pingplatform/internal/store"
)

type harness struct {
	kv       *store.Store
	sessions *KVService
	auth     *AuthContext
	cat      *catalog.Catalog
}

func newHarness(t *testing.T) harness {
	t.Helper()
	sqdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "ping.db"), 1, 1, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqdb.Close() })
	require.NoError(t, db.ApplyMigrations(sqdb, "sqlite"))

	set, err := fixtures.Default()
	require.NoError(t, err)
	creds, err := auth.NewCredentials(set.Credentials)
	require.NoError(t, err)

	kv := store.New(sqdb, "sqlite")
	svc := NewKVService(kv, "ping")
	tokens := auth.NewTokens("this_is_a_valid_long_signing_key_123456", nil)
	cat := catalog.New(set)
	return harness{kv: kv, sessions: svc, auth: NewAuthContext(svc, creds, tokens, cat), cat: cat}
}

func TestKeysFollowPersistedLayout(t *testing.T) {
	s := NewKVService(nil, "ping")
	u, tk := s.Keys("dev-1", models.KindUser)
	require.Equal(t, "dev-1:ping_user", u)
	require.Equal(t, "dev-1:ping_token", tk)
	u, tk = s.Keys("dev-1", models.KindAdmin)
	require.Equal(t, "dev-1:ping_admin_user", u)
	require.Equal(t, "dev-1:ping_admin_token", tk)
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	ok, err := h.auth.Login(ctx, "dev-1", models.KindUser, "alice@ping.example", "alice123")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, h.auth.IsAuthenticated(ctx, "dev-1", models.KindUser))

	first, err := h.auth.Current(ctx, "dev-1", models.KindUser)
	require.NoError(t, err)
	require.Equal(t, "usr-001", first.User.ID)
	require.NotEmpty(t, first.Token)

	require.NoError(t, h.auth.Logout(ctx, "dev-1", models.KindUser))
	require.False(t, h.auth.IsAuthenticated(ctx, "dev-1", models.KindUser))
	uk, tk := h.sessions.Keys("dev-1", models.KindUser)
	_, err = h.kv.Get(ctx, uk)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = h.kv.Get(ctx, tk)
	require.ErrorIs(t, err, store.ErrNotFound)

	ok, err = h.auth.Login(ctx, "dev-1", models.KindUser, "alice@ping.example", "alice123")
	require.NoError(t, err)
	require.True(t, ok)
	again, err := h.auth.Current(ctx, "dev-1", models.KindUser)
	require.NoError(t, err)
	require.Equal(t, first.User, again.User)
}

func TestLoginMismatchIsFalseWithoutSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ok, err := h.auth.Login(ctx, "dev-1", models.KindUser, "alice@ping.example", "wrong")
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, h.auth.IsAuthenticated(ctx, "dev-1", models.KindUser))
}

func TestUserAndAdminSessionsAreSeparate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ok, err := h.auth.Login(ctx, "dev-1", models.KindAdmin, "admin", "admin123")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, h.auth.IsAuthenticated(ctx, "dev-1", models.KindAdmin))
	require.False(t, h.auth.IsAuthenticated(ctx, "dev-1", models.KindUser))
	require.False(t, h.auth.IsAuthenticated(ctx, "dev-2", models.KindAdmin))
}

func TestUpdateUserMergesNonEmptyFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.auth.UpdateUser(ctx, "dev-1", models.KindUser, Partial{Name: "x"})
	require.ErrorIs(t, err, ErrNoSession)

	ok, err := h.auth.Login(ctx, "dev-1", models.KindUser, "alice@ping.example", "alice123")
	require.NoError(t, err)
	require.True(t, ok)
	before, err := h.auth.Current(ctx, "dev-1", models.KindUser)
	require.NoError(t, err)

	updated, err := h.auth.UpdateUser(ctx, "dev-1", models.KindUser, Partial{Location: "Chiang Mai"})
	require.NoError(t, err)
	require.Equal(t, "Chiang Mai", updated.Location)
	require.Equal(t, before.User.Name, updated.Name)

	after, err := h.auth.Current(ctx, "dev-1", models.KindUser)
	require.NoError(t, err)
	require.Equal(t, "Chiang Mai", after.User.Location)
	require.Equal(t, before.Token, after.Token)
}

func TestValidateTokenRevokedByLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ok, err := h.auth.Login(ctx, "dev-1", models.KindUser, "bob@ping.example", "bob123")
	require.NoError(t, err)
	require.True(t, ok)
	sess, err := h.auth.Current(ctx, "dev-1", models.KindUser)
	require.NoError(t, err)

	claims, err := h.auth.ValidateToken(ctx, sess.Token)
	require.NoError(t, err)
	require.Equal(t, "usr-002", claims.AccountID)

	require.NoError(t, h.auth.Logout(ctx, "dev-1", models.KindUser))
	_, err = h.auth.ValidateToken(ctx, sess.Token)
	require.ErrorIs(t, err, auth.ErrInvalidToken)

	ok, err = h.auth.Login(ctx, "dev-1", models.KindUser, "bob@ping.example", "bob123")
	require.NoError(t, err)
	require.True(t, ok)
	_, err = h.auth.ValidateToken(ctx, sess.Token)
	require.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestLoginRefusesInactiveAccounts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, status := range []models.AccountStatus{models.AccountSuspended, models.AccountRejected, models.AccountPending} {
		_, err := h.cat.UpdateAccount("usr-002", func(a *models.Account) { a.Status = status })
		require.NoError(t, err)
		ok, err := h.auth.Login(ctx, "dev-1", models.KindUser, "bob@ping.example", "bob123")
		require.NoError(t, err)
		require.False(t, ok, "status %s", status)
		require.False(t, h.auth.IsAuthenticated(ctx, "dev-1", models.KindUser))
	}

	_, err := h.cat.UpdateAccount("usr-002", func(a *models.Account) { a.Status = models.AccountActive })
	require.NoError(t, err)
	ok, err := h.auth.Login(ctx, "dev-1", models.KindUser, "bob@ping.example", "bob123")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestUpdateUserReportsMissingAccount(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ok, err := h.auth.Login(ctx, "dev-1", models.KindUser, "alice@ping.example", "alice123")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, h.cat.Update(func(d *catalog.Data) error {
		i := d.AccountIndex("usr-001")
		d.Accounts = append(d.Accounts[:i], d.Accounts[i+1:]...)
		return nil
	}))

	_, err = h.auth.UpdateUser(ctx, "dev-1", models.KindUser, Partial{Location: "Chiang Mai"})
	require.ErrorIs(t, err, catalog.ErrNotFound)

	sess, err := h.auth.Current(ctx, "dev-1", models.KindUser)
	require.NoError(t, err)
	require.NotEqual(t, "Chiang Mai", sess.User.Location)
}
