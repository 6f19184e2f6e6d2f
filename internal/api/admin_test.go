package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"pingplatform/internal/models"
	"pingplatform/internal/view"
)

func TestAdminFraudCaseWorkflow(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "/api/v1/admin/login", "dev-a", "admin", "admin123")

	// fc-003 is dismissed; resolving it is not a strict transition
	rec := s.do(t, "POST", "/api/v1/admin/fraud-cases/fc-003/status", "dev-a", token, statusRequest{Status: "resolved"})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "illegal_transition", decodeError(t, rec).Code)

	rec = s.do(t, "POST", "/api/v1/admin/fraud-cases/fc-001/status", "dev-a", token, statusRequest{Status: "investigating"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var fc models.FraudCase
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fc))
	require.Equal(t, models.CaseInvestigating, fc.Status)

	rec = s.do(t, "POST", "/api/v1/admin/fraud-cases/fc-001/status", "dev-a", token, statusRequest{Status: "closed"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_status", decodeError(t, rec).Code)

	rec = s.do(t, "POST", "/api/v1/admin/fraud-cases/fc-404/status", "dev-a", token, statusRequest{Status: "resolved"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	entries, err := s.store.ListAudit(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "fraud_case.status", entries[0].Action)
	require.Equal(t, "adm-001", entries[0].ActorID)

	rec = s.do(t, "GET", "/api/v1/admin/audit-log", "dev-a", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "fc-001")
}

func TestAdminModerationAndUserList(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "/api/v1/admin/login", "dev-a", "admin", "admin123")

	rec := s.do(t, "POST", "/api/v1/admin/users/usr-005/approve", "dev-a", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	acct, err := s.catalog.Account("usr-005")
	require.NoError(t, err)
	require.Equal(t, models.AccountActive, acct.Status)

	rec = s.do(t, "POST", "/api/v1/admin/users/usr-005/explode", "dev-a", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, "GET", "/api/v1/admin/users?status=suspended", "dev-a", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var table view.TableView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &table))
	require.Equal(t, 1, table.Matched)
	require.Equal(t, "usr-007", table.Rows[0].Cells["id"])
}

func TestRegulatorReadsAuditLogOnly(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.login(t, "/api/v1/login", "dev-r", "regulator@env.example", "regulator123")

	require.Equal(t, http.StatusOK, s.do(t, "GET", "/api/v1/admin/audit-log", "dev-r", token, nil).Code)
	require.Equal(t, http.StatusForbidden, s.do(t, "POST", "/api/v1/admin/campaigns/cmp-002/status", "dev-r", token, statusRequest{Status: "active"}).Code)
	require.Equal(t, http.StatusOK, s.do(t, "GET", "/dashboard/regulator", "dev-r", token, nil).Code)
}
