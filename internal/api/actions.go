package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pingplatform/internal/dashboard"
	"pingplatform/internal/geo"
	"pingplatform/internal/middleware"
	"pingplatform/internal/models"
	"pingplatform/internal/simulate"
	"pingplatform/internal/util"
	"pingplatform/internal/view"
)

type scanRequest struct {
	ProductCode string `json:"product_code"`
	Location    string `json:"location"`
}

func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := util.ReadJSON(w, r, &req); err != nil {
		badJSON(w, r)
		return
	}
	c, _ := middleware.Claims(r.Context())
	entry, err := h.Engine.Scan(r.Context(), simulate.ScanRequest{
		AccountID:   c.AccountID,
		DeviceID:    c.DeviceID,
		ProductCode: strings.TrimSpace(req.ProductCode),
		IP:          middleware.ClientIP(r, h.Config.TrustProxy),
		Location:    strings.TrimSpace(req.Location),
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]any{
		"scan":  entry,
		"state": h.Engine.CurrentScan(c.DeviceID).State,
	})
}

func (h *Handlers) ScanState(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, h.Engine.CurrentScan(middleware.Device(r.Context())))
}

func (h *Handlers) ResetScan(w http.ResponseWriter, r *http.Request) {
	device := middleware.Device(r.Context())
	if err := h.Engine.ResetScan(device); err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, h.Engine.CurrentScan(device))
}

func (h *Handlers) ClaimReward(w http.ResponseWriter, r *http.Request) {
	c, _ := middleware.Claims(r.Context())
	claim, err := h.Engine.Claim(r.Context(), c.AccountID, c.DeviceID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	acct, err := h.Catalog.Account(c.AccountID)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, map[string]any{"claim": claim, "balance": acct.Tokens})
}

func (h *Handlers) ClaimedRewards(w http.ResponseWriter, r *http.Request) {
	c, _ := middleware.Claims(r.Context())
	page, size := parsePagination(r)
	claims := h.Catalog.ClaimsFor(c.AccountID)
	util.WriteJSON(w, http.StatusOK, dashboard.ClaimTable.Render(claims, view.TableRequest[models.ClaimedReward]{
		Status:   r.URL.Query().Get("status"),
		Page:     page,
		PageSize: size,
	}))
}

type recycleRequest struct {
	DropPointID string `json:"drop_point_id"`
	Bottles     int    `json:"bottles"`
}

func (h *Handlers) Recycle(w http.ResponseWriter, r *http.Request) {
	var req recycleRequest
	if err := util.ReadJSON(w, r, &req); err != nil {
		badJSON(w, r)
		return
	}
	c, _ := middleware.Claims(r.Context())
	entry, err := h.Engine.Recycle(r.Context(), simulate.RecycleRequest{
		AccountID:   c.AccountID,
		DeviceID:    c.DeviceID,
		DropPointID: strings.TrimSpace(req.DropPointID),
		Bottles:     req.Bottles,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusOK, entry)
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Message string `json:"message"`
}

func (h *Handlers) Feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := util.ReadJSON(w, r, &req); err != nil {
		badJSON(w, r)
		return
	}
	c, _ := middleware.Claims(r.Context())
	fb, err := h.Engine.SubmitFeedback(r.Context(), simulate.FeedbackRequest{
		AccountID: c.AccountID,
		DeviceID:  c.DeviceID,
		Rating:    req.Rating,
		Message:   req.Message,
	})
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, http.StatusCreated, fb)
}

// Notifications drains the toast feed of the calling device.
func (h *Handlers) Notifications(w http.ResponseWriter, r *http.Request) {
	items := h.Feed.Drain(middleware.Device(r.Context()))
	util.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handlers) DropPoints(w http.ResponseWriter, r *http.Request) {
	util.WriteJSON(w, http.StatusOK, h.dropPointsPage(r))
}

func (h *Handlers) dropPointsPage(r *http.Request) dashboard.Page {
	pos, err := h.locate(r.Context(), r)
	var p *geo.Position
	if err == nil {
		p = &pos
	}
	return h.Dashboard.DropPoints(parseParams(r), p, err, h.Config.NearbyRadiusKm)
}

// locate resolves the caller's position from the coordinates or failure
// reported by the client, falling back to the device's cached fix.
func (h *Handlers) locate(ctx context.Context, r *http.Request) (geo.Position, error) {
	opts := geo.DefaultOptions()
	if h.Config.GeoTimeout > 0 {
		opts.Timeout = h.Config.GeoTimeout
	}
	if h.Config.GeoMaxAge > 0 {
		opts.MaximumAge = h.Config.GeoMaxAge
	}
	fresh := clientLocator(r, h.Clock.Now())
	svc := geo.NewService(h.Clock, h.GeoCache.Locator(middleware.Device(ctx), fresh), opts)
	return svc.GetCurrentPosition(ctx)
}

func clientLocator(r *http.Request, now time.Time) geo.Locator {
	q := r.URL.Query()
	return geo.LocatorFunc(func(ctx context.Context, opts geo.Options) (geo.Position, error) {
		switch strings.ToLower(strings.TrimSpace(q.Get("geo_error"))) {
		case "denied":
			return geo.Position{}, geo.ErrPermissionDenied
		case "timeout":
			return geo.Position{}, geo.ErrTimeout
		case "unavailable":
			return geo.Position{}, geo.ErrPositionUnavailable
		}
		return geo.ParseCoordinates(q.Get("lat"), q.Get("lng"), q.Get("accuracy"), now)
	})
}
