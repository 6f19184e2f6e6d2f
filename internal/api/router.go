package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"

	"pingplatform/internal/authz"
	"pingplatform/internal/catalog"
	"pingplatform/internal/config"
	"pingplatform/internal/dashboard"
	"pingplatform/internal/geo"
	"pingplatform/internal/middleware"
	"pingplatform/internal/models"
	"pingplatform/internal/notify"
	"pingplatform/internal/rate"
	"pingplatform/internal/session"
	"pingplatform/internal/simulate"
	"pingplatform/internal/store"
	"pingplatform/internal/util"
	"pingplatform/internal/version"
	"pingplatform/internal/workflow"
)

// Deps are the collaborators the HTTP surface is wired to.
type Deps struct {
	Config    config.Config
	Clock     clockwork.Clock
	Catalog   *catalog.Catalog
	Store     *store.Store
	Auth      *session.AuthContext
	Authz     *authz.Enforcer
	Engine    *simulate.Engine
	Workflow  *workflow.Service
	Dashboard *dashboard.Builder
	Feed      *notify.Feed
	GeoCache  *geo.Cache
}

type Handlers struct {
	Deps
	limiter *rate.Limiter
}

func NewRouter(d Deps) http.Handler {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.GeoCache == nil {
		d.GeoCache = geo.NewCache(d.Clock)
	}
	h := &Handlers{Deps: d, limiter: rate.NewLimiter(d.Clock)}
	cfg := d.Config

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.RequestLogger(cfg.TrustProxy))
	r.Use(middleware.SecurityHeaders)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization", middleware.DeviceHeader},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
		}))
	}
	r.Use(middleware.DeviceCookie(cfg.DeviceCookieName, cfg.ResolveCookieSecure))
	r.Use(middleware.Authn(d.Auth))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authorize(d.Authz))

		r.Get("/", h.HomePage)
		r.Get("/scan", h.ScanPage)
		r.Get("/drop-points", h.DropPointsPage)
		r.Get("/wallet", h.WalletPage)
		r.Get("/rewards", h.RewardsPage)
		r.Get("/settings", h.SettingsPage)
		r.Get("/admin", h.AdminPage)
		r.Get("/admin/analytics", h.AnalyticsPage)
		r.Get("/admin/monitor", h.MonitorPage)
		r.Get("/admin/login", h.AdminLoginPage)
		r.Get("/dashboard/company", h.CompanyPage)
		r.Get("/dashboard/manufacturer", h.ManufacturerPage)
		r.Get("/dashboard/recycler", h.RecyclerPage)
		r.Get("/dashboard/regulator", h.RegulatorPage)
		r.Get("/dashboard/public", h.PublicPage)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/health/live", h.Live)
			r.Get("/health/ready", h.Ready)
			r.Get("/version", h.Version)

			r.With(middleware.RateLimit(h.limiter, "login", 20, time.Minute, cfg.TrustProxy)).Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
			r.Patch("/me", h.UpdateMe)

			r.Post("/scan", h.Scan)
			r.Get("/scan/state", h.ScanState)
			r.Post("/scan/reset", h.ResetScan)
			r.Post("/rewards/{id}/claim", h.ClaimReward)
			r.Get("/rewards/claimed", h.ClaimedRewards)
			r.Post("/recycle", h.Recycle)
			r.Post("/feedback", h.Feedback)
			r.Get("/notifications", h.Notifications)
			r.Get("/drop-points", h.DropPoints)

			r.Route("/admin", func(r chi.Router) {
				r.With(middleware.RateLimit(h.limiter, "admin_login", 10, time.Minute, cfg.TrustProxy)).Post("/login", h.AdminLogin)
				r.Post("/logout", h.AdminLogout)
				r.Get("/users", h.AdminListUsers)
				r.Post("/users/{id}/{action}", h.AdminModerateUser)
				r.Post("/fraud-cases/{id}/status", h.AdminFraudCaseStatus)
				r.Post("/alerts/{id}/status", h.AdminAlertStatus)
				r.Post("/campaigns/{id}/status", h.AdminCampaignStatus)
				r.Get("/audit-log", h.AdminAuditLog)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/", http.StatusFound)
	})

	return r
}

func (h *Handlers) Live(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, 200, map[string]string{"status": "ok"})
}

func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	ready := map[string]any{
		"checked_at": h.Clock.Now().UTC().Format(time.RFC3339),
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		ready["status"] = "degraded"
		ready["components"] = map[string]any{"store": map[string]any{"ok": false, "error": err.Error()}}
		util.WriteJSON(w, 503, ready)
		return
	}
	ready["status"] = "ready"
	ready["components"] = map[string]any{"store": map[string]any{"ok": true, "driver": h.Config.DBDriver}}
	util.WriteJSON(w, 200, ready)
}

func (h *Handlers) Version(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, 200, version.Current())
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{simulate.ErrInsufficientBalance, http.StatusConflict, "insufficient_balance"},
	{simulate.ErrOutOfStock, http.StatusConflict, "out_of_stock"},
	{simulate.ErrScanInProgress, http.StatusConflict, "scan_in_progress"},
	{simulate.ErrDropPointFull, http.StatusConflict, "drop_point_full"},
	{simulate.ErrInvalidBottles, http.StatusBadRequest, "invalid_bottles"},
	{simulate.ErrEmptyFeedback, http.StatusBadRequest, "empty_feedback"},
	{simulate.ErrInvalidRating, http.StatusBadRequest, "invalid_rating"},
	{workflow.ErrIllegalTransition, http.StatusConflict, "illegal_transition"},
	{workflow.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{workflow.ErrUnknownAction, http.StatusBadRequest, "unknown_action"},
	{workflow.ErrAuditFailed, http.StatusServiceUnavailable, "audit_unavailable"},
	{catalog.ErrNotFound, http.StatusNotFound, "not_found"},
	{session.ErrNoSession, http.StatusUnauthorized, "unauthorized"},
	{context.Canceled, 499, "client_closed_request"},
	{context.DeadlineExceeded, http.StatusGatewayTimeout, "timeout"},
}

// writeErr maps a domain error onto the API error envelope.
func (h *Handlers) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	rid := middleware.RequestID(r.Context())
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			util.WriteError(w, m.status, m.code, err.Error(), rid)
			return
		}
	}
	log.Printf("request failed method=%s path=%s request_id=%s err=%v", r.Method, r.URL.Path, rid, err)
	util.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", rid)
}

func badJSON(w http.ResponseWriter, r *http.Request) {
	util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
}

// currentAccount returns the live account behind the caller's token.
func (h *Handlers) currentAccount(r *http.Request) *models.Account {
	c, ok := middleware.Claims(r.Context())
	if !ok {
		return nil
	}
	a, err := h.Catalog.Account(c.AccountID)
	if err != nil {
		return nil
	}
	return &a
}

func parsePagination(r *http.Request) (int, int) {
	page := 1
	pageSize := 25
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("page_size"); v != "" {
		if ps, err := strconv.Atoi(v); err == nil {
			pageSize = min(max(ps, 1), 100)
		}
	}
	return page, pageSize
}

func parseParams(r *http.Request) dashboard.Params {
	q := r.URL.Query()
	page, size := parsePagination(r)
	return dashboard.Params{
		Text:     strings.TrimSpace(q.Get("q")),
		Status:   strings.TrimSpace(q.Get("status")),
		Role:     strings.TrimSpace(q.Get("role")),
		Category: strings.TrimSpace(q.Get("category")),
		Page:     page,
		PageSize: size,
	}
}
