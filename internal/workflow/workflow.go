// Package workflow guards status changes on fraud cases, counterfeit
// alerts, campaigns and accounts, and records each applied change in the
// audit log.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"pingplatform/internal/catalog"
	"pingplatform/internal/models"
)

var (
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrUnknownAction     = errors.New("unknown moderation action")
	ErrAuditFailed       = errors.New("audit log unavailable")
)

type Mode string

const (
	ModeStrict     Mode = "strict"
	ModePermissive Mode = "permissive"
)

type Auditor interface {
	InsertAudit(ctx context.Context, actorID, action, target, metadata string) error
}

var caseEdges = map[models.CaseStatus][]models.CaseStatus{
	models.CaseOpen:          {models.CaseInvestigating, models.CaseResolved, models.CaseDismissed},
	models.CaseInvestigating: {models.CaseResolved, models.CaseDismissed},
}

var campaignEdges = map[models.CampaignStatus][]models.CampaignStatus{
	models.CampaignDraft:  {models.CampaignActive},
	models.CampaignActive: {models.CampaignPaused, models.CampaignCompleted},
	models.CampaignPaused: {models.CampaignActive, models.CampaignCompleted},
}

var accountEdges = map[models.AccountStatus][]models.AccountStatus{
	models.AccountPending:   {models.AccountActive, models.AccountRejected},
	models.AccountActive:    {models.AccountSuspended},
	models.AccountSuspended: {models.AccountActive},
}

var moderation = map[string]models.AccountStatus{
	"approve":   models.AccountActive,
	"reject":    models.AccountRejected,
	"suspend":   models.AccountSuspended,
	"unsuspend": models.AccountActive,
}

func validCase(s models.CaseStatus) bool {
	switch s {
	case models.CaseOpen, models.CaseInvestigating, models.CaseResolved, models.CaseDismissed:
		return true
	}
	return false
}

func validCampaign(s models.CampaignStatus) bool {
	switch s {
	case models.CampaignDraft, models.CampaignActive, models.CampaignPaused, models.CampaignCompleted:
		return true
	}
	return false
}

func allowed[S comparable](edges map[S][]S, mode Mode, from, to S) bool {
	if mode == ModePermissive {
		return true
	}
	for _, next := range edges[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CanTransitionCase(mode Mode, from, to models.CaseStatus) bool {
	return validCase(to) && allowed(caseEdges, mode, from, to)
}

func CanTransitionCampaign(mode Mode, from, to models.CampaignStatus) bool {
	return validCampaign(to) && allowed(campaignEdges, mode, from, to)
}

func CanTransitionAccount(mode Mode, from, to models.AccountStatus) bool {
	return allowed(accountEdges, mode, from, to)
}

type Service struct {
	mode    Mode
	catalog *catalog.Catalog
	audit   Auditor
}

func New(mode Mode, cat *catalog.Catalog, audit Auditor) *Service {
	if mode != ModePermissive {
		mode = ModeStrict
	}
	return &Service{mode: mode, catalog: cat, audit: audit}
}

func (s *Service) Mode() Mode { return s.mode }

func (s *Service) SetFraudCaseStatus(ctx context.Context, actorID, id string, to models.CaseStatus) (models.FraudCase, error) {
	if !validCase(to) {
		return models.FraudCase{}, ErrInvalidStatus
	}
	var out models.FraudCase
	var from models.CaseStatus
	err := s.catalog.Update(func(d *catalog.Data) error {
		i := d.FraudCaseIndex(id)
		if i < 0 {
			return catalog.ErrNotFound
		}
		from = d.FraudCases[i].Status
		if !CanTransitionCase(s.mode, from, to) {
			return fmt.Errorf("%w: fraud case %s -> %s", ErrIllegalTransition, from, to)
		}
		if err := s.record(ctx, actorID, "fraud_case.status", id, string(from), string(to)); err != nil {
			return err
		}
		d.FraudCases[i].Status = to
		out = d.FraudCases[i]
		return nil
	})
	if err != nil {
		return models.FraudCase{}, err
	}
	return out, nil
}

func (s *Service) SetAlertStatus(ctx context.Context, actorID, id string, to models.CaseStatus) (models.CounterfeitAlert, error) {
	if !validCase(to) {
		return models.CounterfeitAlert{}, ErrInvalidStatus
	}
	var out models.CounterfeitAlert
	var from models.CaseStatus
	err := s.catalog.Update(func(d *catalog.Data) error {
		i := d.AlertIndex(id)
		if i < 0 {
			return catalog.ErrNotFound
		}
		from = d.Alerts[i].Status
		if !CanTransitionCase(s.mode, from, to) {
			return fmt.Errorf("%w: alert %s -> %s", ErrIllegalTransition, from, to)
		}
		if err := s.record(ctx, actorID, "alert.status", id, string(from), string(to)); err != nil {
			return err
		}
		d.Alerts[i].Status = to
		out = d.Alerts[i]
		return nil
	})
	if err != nil {
		return models.CounterfeitAlert{}, err
	}
	return out, nil
}

func (s *Service) SetCampaignStatus(ctx context.Context, actorID, id string, to models.CampaignStatus) (models.Campaign, error) {
	if !validCampaign(to) {
		return models.Campaign{}, ErrInvalidStatus
	}
	var out models.Campaign
	var from models.CampaignStatus
	err := s.catalog.Update(func(d *catalog.Data) error {
		i := d.CampaignIndex(id)
		if i < 0 {
			return catalog.ErrNotFound
		}
		from = d.Campaigns[i].Status
		if !CanTransitionCampaign(s.mode, from, to) {
			return fmt.Errorf("%w: campaign %s -> %s", ErrIllegalTransition, from, to)
		}
		if err := s.record(ctx, actorID, "campaign.status", id, string(from), string(to)); err != nil {
			return err
		}
		d.Campaigns[i].Status = to
		out = d.Campaigns[i]
		return nil
	})
	if err != nil {
		return models.Campaign{}, err
	}
	return out, nil
}

// ModerateAccount applies approve, reject, suspend or unsuspend.
func (s *Service) ModerateAccount(ctx context.Context, actorID, id, action string) (models.Account, error) {
	to, ok := moderation[action]
	if !ok {
		return models.Account{}, ErrUnknownAction
	}
	var out models.Account
	var from models.AccountStatus
	err := s.catalog.Update(func(d *catalog.Data) error {
		i := d.AccountIndex(id)
		if i < 0 {
			return catalog.ErrNotFound
		}
		from = d.Accounts[i].Status
		if !CanTransitionAccount(s.mode, from, to) {
			return fmt.Errorf("%w: account %s -> %s", ErrIllegalTransition, from, to)
		}
		if err := s.record(ctx, actorID, "account."+action, id, string(from), string(to)); err != nil {
			return err
		}
		d.Accounts[i].Status = to
		out = d.Accounts[i]
		return nil
	})
	if err != nil {
		return models.Account{}, err
	}
	return out, nil
}

// record writes the audit row for a transition. It runs inside the
// catalog update, so a failed write leaves the status unchanged.
func (s *Service) record(ctx context.Context, actorID, action, target, from, to string) error {
	if s.audit == nil {
		return nil
	}
	meta, _ := json.Marshal(map[string]string{"from": from, "to": to, "mode": string(s.mode)})
	if err := s.audit.InsertAudit(ctx, actorID, action, target, string(meta)); err != nil {
		log.Printf("audit write failed actor=%s action=%s target=%s err=%v", actorID, action, target, err)
		return fmt.Errorf("%w: %v", ErrAuditFailed, err)
	}
	return nil
}
