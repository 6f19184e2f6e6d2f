package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"pingplatform/internal/catalog"
	"pingplatform/internal/fixtures"
	"pingplatform/internal/models"
)

type memAudit struct {
	actions []string
	meta    []string
}

func (m *memAudit) InsertAudit(ctx context.Context, actorID, action, target, metadata string) error {
	m.actions = append(m.actions, action+" "+target)
	m.meta = append(m.meta, metadata)
	return nil
}

type failingAudit struct{}

func (failingAudit) InsertAudit(ctx context.Context, actorID, action, target, metadata string) error {
	return errors.New("database is locked")
}

func newService(t *testing.T, mode Mode) (*Service, *catalog.Catalog, *memAudit) {
	t.Helper()
	set, err := fixtures.Default()
	require.NoError(t, err)
	cat := catalog.New(set)
	audit := &memAudit{}
	return New(mode, cat, audit), cat, audit
}

func TestCaseTransitions(t *testing.T) {
	cases := []struct {
		from, to models.CaseStatus
		strict   bool
	}{
		{models.CaseOpen, models.CaseInvestigating, true},
		{models.CaseOpen, models.CaseDismissed, true},
		{models.CaseInvestigating, models.CaseResolved, true},
		{models.CaseDismissed, models.CaseResolved, false},
		{models.CaseResolved, models.CaseResolved, false},
		{models.CaseResolved, models.CaseOpen, false},
		{models.CaseInvestigating, models.CaseOpen, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.strict, CanTransitionCase(ModeStrict, tc.from, tc.to), "%s -> %s", tc.from, tc.to)
		require.True(t, CanTransitionCase(ModePermissive, tc.from, tc.to))
	}
	require.False(t, CanTransitionCase(ModePermissive, models.CaseOpen, "archived"))
}

func TestCampaignTransitions(t *testing.T) {
	require.True(t, CanTransitionCampaign(ModeStrict, models.CampaignDraft, models.CampaignActive))
	require.True(t, CanTransitionCampaign(ModeStrict, models.CampaignPaused, models.CampaignActive))
	require.True(t, CanTransitionCampaign(ModeStrict, models.CampaignPaused, models.CampaignCompleted))
	require.False(t, CanTransitionCampaign(ModeStrict, models.CampaignCompleted, models.CampaignActive))
	require.False(t, CanTransitionCampaign(ModeStrict, models.CampaignDraft, models.CampaignPaused))
	require.True(t, CanTransitionCampaign(ModePermissive, models.CampaignCompleted, models.CampaignDraft))
}

func TestStrictRejectsResolvingDismissedCase(t *testing.T) {
	svc, cat, audit := newService(t, ModeStrict)
	_, err := svc.SetFraudCaseStatus(context.Background(), "adm-001", "fc-003", models.CaseResolved)
	require.ErrorIs(t, err, ErrIllegalTransition)
	require.Equal(t, models.CaseDismissed, cat.Snapshot().FraudCases[2].Status)
	require.Empty(t, audit.actions)
}

func TestPermissiveAcceptsResolvingDismissedCase(t *testing.T) {
	svc, _, audit := newService(t, ModePermissive)
	fc, err := svc.SetFraudCaseStatus(context.Background(), "adm-001", "fc-003", models.CaseResolved)
	require.NoError(t, err)
	require.Equal(t, models.CaseResolved, fc.Status)
	require.Equal(t, []string{"fraud_case.status fc-003"}, audit.actions)
	require.JSONEq(t, `{"from":"dismissed","to":"resolved","mode":"permissive"}`, audit.meta[0])
}

func TestAlertAndCampaignUpdates(t *testing.T) {
	svc, _, audit := newService(t, ModeStrict)
	ctx := context.Background()

	a, err := svc.SetAlertStatus(ctx, "adm-001", "ca-001", models.CaseInvestigating)
	require.NoError(t, err)
	require.Equal(t, models.CaseInvestigating, a.Status)

	c, err := svc.SetCampaignStatus(ctx, "adm-001", "cmp-002", models.CampaignActive)
	require.NoError(t, err)
	require.Equal(t, models.CampaignActive, c.Status)

	_, err = svc.SetCampaignStatus(ctx, "adm-001", "cmp-003", models.CampaignActive)
	require.ErrorIs(t, err, ErrIllegalTransition)
	_, err = svc.SetCampaignStatus(ctx, "adm-001", "cmp-404", models.CampaignActive)
	require.ErrorIs(t, err, catalog.ErrNotFound)
	_, err = svc.SetCampaignStatus(ctx, "adm-001", "cmp-002", "launched")
	require.ErrorIs(t, err, ErrInvalidStatus)

	require.Len(t, audit.actions, 2)
}

func TestModerateAccount(t *testing.T) {
	svc, _, audit := newService(t, ModeStrict)
	ctx := context.Background()

	a, err := svc.ModerateAccount(ctx, "adm-001", "usr-005", "approve")
	require.NoError(t, err)
	require.Equal(t, models.AccountActive, a.Status)

	_, err = svc.ModerateAccount(ctx, "adm-001", "usr-005", "reject")
	require.ErrorIs(t, err, ErrIllegalTransition)

	a, err = svc.ModerateAccount(ctx, "adm-001", "usr-007", "unsuspend")
	require.NoError(t, err)
	require.Equal(t, models.AccountActive, a.Status)

	_, err = svc.ModerateAccount(ctx, "adm-001", "usr-001", "promote")
	require.ErrorIs(t, err, ErrUnknownAction)

	require.Equal(t, []string{"account.approve usr-005", "account.unsuspend usr-007"}, audit.actions)
}

func TestFailedAuditLeavesStatusUnchanged(t *testing.T) {
	set, err := fixtures.Default()
	require.NoError(t, err)
	cat := catalog.New(set)
	svc := New(ModeStrict, cat, failingAudit{})
	ctx := context.Background()

	_, err = svc.SetFraudCaseStatus(ctx, "adm-001", "fc-001", models.CaseInvestigating)
	require.ErrorIs(t, err, ErrAuditFailed)
	_, err = svc.ModerateAccount(ctx, "adm-001", "usr-005", "approve")
	require.ErrorIs(t, err, ErrAuditFailed)
	_, err = svc.SetCampaignStatus(ctx, "adm-001", "cmp-002", models.CampaignActive)
	require.ErrorIs(t, err, ErrAuditFailed)

	snap := cat.Snapshot()
	require.Equal(t, models.CaseOpen, snap.FraudCases[snap.FraudCaseIndex("fc-001")].Status)
	require.Equal(t, models.AccountPending, snap.Accounts[snap.AccountIndex("usr-005")].Status)
	require.Equal(t, models.CampaignDraft, snap.Campaigns[snap.CampaignIndex("cmp-002")].Status)
}
