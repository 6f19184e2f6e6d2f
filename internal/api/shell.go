package api

import (
	"net/http"

	"pingplatform/internal/dashboard"
	"pingplatform/internal/middleware"
	"pingplatform/internal/models"
	"pingplatform/internal/util"
)

// shellResponse is what every routing shell page returns: the page view
// model plus the navigation the caller's role may follow.
type shellResponse struct {
	Page          dashboard.Page  `json:"page"`
	Navigation    []string        `json:"navigation"`
	Authenticated bool            `json:"authenticated"`
	User          *models.Account `json:"user,omitempty"`
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, acct *models.Account, p dashboard.Page) {
	util.WriteJSON(w, http.StatusOK, shellResponse{
		Page:          p,
		Navigation:    h.pagesFor(middleware.Role(r.Context())),
		Authenticated: acct != nil,
		User:          acct,
	})
}

func (h *Handlers) HomePage(w http.ResponseWriter, r *http.Request) {
	acct := h.currentAccount(r)
	h.render(w, r, acct, h.Dashboard.Home(acct))
}

func (h *Handlers) ScanPage(w http.ResponseWriter, r *http.Request) {
	acct := h.currentAccount(r)
	h.render(w, r, acct, h.Dashboard.Scan(acct, h.Engine.CurrentScan(middleware.Device(r.Context()))))
}

func (h *Handlers) DropPointsPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.currentAccount(r), h.dropPointsPage(r))
}

// WalletPage asks guests to sign in instead of showing an empty wallet.
func (h *Handlers) WalletPage(w http.ResponseWriter, r *http.Request) {
	acct := h.currentAccount(r)
	if acct == nil {
		h.render(w, r, nil, dashboard.Page{
			Path:  "/wallet",
			Title: "Wallet",
			Data:  map[string]any{"login_required": true},
		})
		return
	}
	h.render(w, r, acct, h.Dashboard.Wallet(*acct))
}

func (h *Handlers) RewardsPage(w http.ResponseWriter, r *http.Request) {
	acct := h.currentAccount(r)
	h.render(w, r, acct, h.Dashboard.Rewards(acct, parseParams(r)))
}

func (h *Handlers) SettingsPage(w http.ResponseWriter, r *http.Request) {
	acct := h.currentAccount(r)
	h.render(w, r, acct, h.Dashboard.Settings(acct))
}

func (h *Handlers) AdminLoginPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.currentAccount(r), h.Dashboard.AdminLogin())
}

func (h *Handlers) AdminPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.currentAccount(r), h.Dashboard.Admin(parseParams(r)))
}

func (h *Handlers) AnalyticsPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.currentAccount(r), h.Dashboard.Analytics())
}

func (h *Handlers) MonitorPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.currentAccount(r), h.Dashboard.Monitor(parseParams(r)))
}

// CompanyPage scopes brand accounts to their own campaigns; admins see
// every brand.
func (h *Handlers) CompanyPage(w http.ResponseWriter, r *http.Request) {
	acct := h.currentAccount(r)
	brand := ""
	if acct != nil && acct.Role == models.RoleBrand {
		brand = acct.Name
	}
	h.render(w, r, acct, h.Dashboard.Company(brand, parseParams(r)))
}

func (h *Handlers) ManufacturerPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.currentAccount(r), h.Dashboard.Manufacturer(parseParams(r)))
}

func (h *Handlers) RecyclerPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.currentAccount(r), h.Dashboard.Recycler(parseParams(r)))
}

func (h *Handlers) RegulatorPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.currentAccount(r), h.Dashboard.Regulator(parseParams(r)))
}

func (h *Handlers) PublicPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, h.currentAccount(r), h.Dashboard.Public())
}
