package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"pingplatform/internal/auth"
	"pingplatform/internal/authz"
	"pingplatform/internal/catalog"
	"pingplatform/internal/config"
	"pingplatform/internal/dashboard"
	"pingplatform/internal/db"
	"pingplatform/internal/fixtures"
	"pingplatform/internal/models"
	"pingplatform/internal/notify"
	"pingplatform/internal/session"
	"pingplatform/internal/simulate"
	"pingplatform/internal/store"
	"pingplatform/internal/util"
	"pingplatform/internal/workflow"
)

const testSigningKey = "this_is_a_valid_long_signing_key_123456"

type testServer struct {
	handler http.Handler
	catalog *catalog.Catalog
	store   *store.Store
	engine  *simulate.Engine
}

func newTestServer(t *testing.T, outcomes simulate.OutcomeProvider) testServer {
	t.Helper()
	sqdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "ping.db"), 1, 1, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqdb.Close() })
	require.NoError(t, db.ApplyMigrations(sqdb, "sqlite"))

	set, err := fixtures.Default()
	require.NoError(t, err)
	creds, err := auth.NewCredentials(set.Credentials)
	require.NoError(t, err)
	enf, err := authz.New()
	require.NoError(t, err)

	if outcomes == nil {
		outcomes = &simulate.SequenceOutcomes{Results: []models.ScanResult{models.ScanAuthentic}, Points: []int{10}}
	}
	clk := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC))
	cat := catalog.New(set)
	st := store.New(sqdb, "sqlite")
	feed := notify.NewFeed(clk)
	tokens := auth.NewTokens(testSigningKey, clk.Now)
	authCtx := session.NewAuthContext(session.NewKVService(st, "ping"), creds, tokens, cat)
	engine := simulate.NewEngine(clk, cat, outcomes, feed, notify.LogSender{}, simulate.Options{
		Profile:         simulate.AuthenticationProfile,
		TokensPerBottle: 2,
	})
	t.Cleanup(engine.Wait)

	cfg := config.Config{
		DBDriver:         "sqlite",
		DeviceCookieName: "ping_device",
		NearbyRadiusKm:   2,
		GeoTimeout:       10 * time.Second,
		GeoMaxAge:        5 * time.Minute,
	}
	h := NewRouter(Deps{
		Config:    cfg,
		Clock:     clk,
		Catalog:   cat,
		Store:     st,
		Auth:      authCtx,
		Authz:     enf,
		Engine:    engine,
		Workflow:  workflow.New(workflow.ModeStrict, cat, st),
		Dashboard: dashboard.New(cat),
		Feed:      feed,
	})
	return testServer{handler: h, catalog: cat, store: st, engine: engine}
}

// do sends a request as device dev, with an optional bearer token.
func (s testServer) do(t *testing.T, method, path, dev, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if dev != "" {
		req.Header.Set("X-Device-ID", dev)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s testServer) login(t *testing.T, path, dev, username, password string) string {
	t.Helper()
	rec := s.do(t, "POST", path, dev, "", loginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) util.APIError {
	t.Helper()
	var e util.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

func TestUnmatchedPathRedirectsHome(t *testing.T) {
	s := newTestServer(t, nil)
	for _, path := range []string{"/nope", "/admin/nothing/here", "/dashboard"} {
		rec := s.do(t, "GET", path, "dev-1", "", nil)
		require.Equal(t, http.StatusFound, rec.Code, path)
		require.Equal(t, "/", rec.Header().Get("Location"))
	}
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t, nil)
	require.Equal(t, http.StatusOK, s.do(t, "GET", "/api/v1/health/live", "", "", nil).Code)

	rec := s.do(t, "GET", "/api/v1/health/ready", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"ready"`)

	rec = s.do(t, "GET", "/api/v1/version", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"service":"ping"`)
}

func TestGuestGetsDeviceCookie(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(t, "GET", "/", "", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, "ping_device", cookies[0].Name)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
