package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"pingplatform/internal/middleware"
	"pingplatform/internal/models"
	"pingplatform/internal/util"
)

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handlers) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, h.Dashboard.Users(parseParams(r)))
}

func (h *Handlers) AdminModerateUser(w http.ResponseWriter, r *http.Request) {
	c, _ := middleware.Claims(r.Context())
	acct, err := h.Workflow.ModerateAccount(r.Context(), c.AccountID, chi.URLParam(r, "id"), chi.URLParam(r, "action"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.Feed.Push(c.DeviceID, models.LevelSuccess, "Account updated", acct.Name+" is now "+string(acct.Status))
	util.WriteJSON(w, http.StatusOK, acct)
}

func (h *Handlers) AdminFraudCaseStatus(w http.ResponseWriter, r *http.Request) {
	to, ok := h.readStatus(w, r)
	if !ok {
		return
	}
	c, _ := middleware.Claims(r.Context())
	fc, err := h.Workflow.SetFraudCaseStatus(r.Context(), c.AccountID, chi.URLParam(r, "id"), models.CaseStatus(to))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, fc)
}

func (h *Handlers) AdminAlertStatus(w http.ResponseWriter, r *http.Request) {
	to, ok := h.readStatus(w, r)
	if !ok {
		return
	}
	c, _ := middleware.Claims(r.Context())
	a, err := h.Workflow.SetAlertStatus(r.Context(), c.AccountID, chi.URLParam(r, "id"), models.CaseStatus(to))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, a)
}

func (h *Handlers) AdminCampaignStatus(w http.ResponseWriter, r *http.Request) {
	to, ok := h.readStatus(w, r)
	if !ok {
		return
	}
	c, _ := middleware.Claims(r.Context())
	cp, err := h.Workflow.SetCampaignStatus(r.Context(), c.AccountID, chi.URLParam(r, "id"), models.CampaignStatus(to))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, cp)
}

func (h *Handlers) readStatus(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req statusRequest
	if err := util.ReadJSON(w, r, &req); err != nil {
		badJSON(w, r)
		return "", false
	}
	to := strings.ToLower(strings.TrimSpace(req.Status))
	if to == "" {
		util.WriteError(w, http.StatusBadRequest, "bad_request", "status is required", middleware.RequestID(r.Context()))
		return "", false
	}
	return to, true
}

func (h *Handlers) AdminAuditLog(w http.ResponseWriter, r *http.Request) {
	page, size := parsePagination(r)
	items, err := h.Store.ListAudit(r.Context(), size, (page-1)*size)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]any{
		"items":     items,
		"page":      page,
		"page_size": size,
	})
}
