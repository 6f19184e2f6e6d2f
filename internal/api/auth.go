package api

import (
	"net/http"
	"strings"

	"pingplatform/internal/middleware"
	"pingplatform/internal/models"
	"pingplatform/internal/session"
	"pingplatform/internal/util"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string             `json:"token"`
	Kind  models.SessionKind `json:"kind"`
	User  models.Account     `json:"user"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.KindUser)
}

func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, models.KindAdmin)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request, kind models.SessionKind) {
	var req loginRequest
	if err := util.ReadJSON(w, r, &req); err != nil {
		badJSON(w, r)
		return
	}
	device := middleware.Device(r.Context())
	ok, err := h.Auth.Login(r.Context(), device, kind, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if !ok {
		h.Feed.Push(device, models.LevelError, "Login failed", "Invalid username or password")
		util.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid username or password", middleware.RequestID(r.Context()))
		return
	}
	sess, err := h.Auth.Current(r.Context(), device, kind)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.Feed.Push(device, models.LevelSuccess, "Welcome back", "Signed in as "+sess.User.Name)
	util.WriteJSON(w, http.StatusOK, loginResponse{Token: sess.Token, Kind: kind, User: sess.User})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	c, _ := middleware.Claims(r.Context())
	if err := h.Auth.Logout(r.Context(), c.DeviceID, c.Kind); err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// AdminLogout clears the admin session of the caller's device only.
func (h *Handlers) AdminLogout(w http.ResponseWriter, r *http.Request) {
	c, _ := middleware.Claims(r.Context())
	if err := h.Auth.Logout(r.Context(), c.DeviceID, models.KindAdmin); err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	c, _ := middleware.Claims(r.Context())
	if _, err := h.Auth.Current(r.Context(), c.DeviceID, c.Kind); err != nil {
		h.writeErr(w, r, err)
		return
	}
	acct, err := h.Catalog.Account(c.AccountID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]any{
		"kind":  c.Kind,
		"user":  acct,
		"pages": h.pagesFor(c.Role),
	})
}

func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var p session.Partial
	if err := util.ReadJSON(w, r, &p); err != nil {
		badJSON(w, r)
		return
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Location = strings.TrimSpace(p.Location)
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		util.WriteError(w, http.StatusBadRequest, "bad_request", "invalid email", middleware.RequestID(r.Context()))
		return
	}
	c, _ := middleware.Claims(r.Context())
	acct, err := h.Auth.UpdateUser(r.Context(), c.DeviceID, c.Kind, p)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	h.Feed.Push(c.DeviceID, models.LevelSuccess, "Profile updated", "Your settings were saved")
	util.WriteJSON(w, http.StatusOK, acct)
}

func (h *Handlers) pagesFor(role models.Role) []string {
	pages, err := h.Authz.Pages(role)
	if err != nil {
		return nil
	}
	return pages
}
