package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/campushub/venue-booking/internal/model"
	"github.com/campushub/venue-booking/internal/schedule"
)

// AdminHandler groups the decision endpoints: the pending queue,
// approve/reject/revoke, per-venue listings and the maintenance
// toggle. Every route here sits behind the admin role middleware.
type AdminHandler struct {
	Store  *schedule.Store
	Venues VenueDirectory
}

func NewAdminHandler(store *schedule.Store, venues VenueDirectory) *AdminHandler {
	if store == nil || venues == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Store: store, Venues: venues}
}

// ListPending handles GET /v1/admin/bookings/pending. Requests come
// back oldest first so the queue reads in submission order.
func (h *AdminHandler) ListPending(c echo.Context) error {
	pending := h.Store.ListPending()
	out := make([]bookingResp, 0, len(pending))
	for _, r := range pending {
		out = append(out, toBookingResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// ListByVenue handles GET /v1/admin/venues/:id/bookings.
func (h *AdminHandler) ListByVenue(c echo.Context) error {
	venueID := c.Param("id")
	if _, err := h.Venues.GetVenue(c.Request().Context(), venueID); err != nil {
		return scheduleError(c, err)
	}
	list := h.Store.ListByVenue(venueID)
	out := make([]bookingResp, 0, len(list))
	for _, r := range list {
		out = append(out, toBookingResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"venue_id": venueID, "bookings": out})
}

type decisionReq struct {
	Reason string `json:"reason"`
}

// decide runs one lifecycle action against a booking id from the
// path, binding an optional reason from the body.
func (h *AdminHandler) decide(c echo.Context, action schedule.Action) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req decisionReq
	// The body is optional for approve and revoke.
	_ = c.Bind(&req)

	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	r, err := h.Store.Transition(c.Request().Context(), id, action, actor, strings.TrimSpace(req.Reason))
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": toBookingResp(r)})
}

// Approve handles POST /v1/admin/bookings/:id/approve.
func (h *AdminHandler) Approve(c echo.Context) error {
	return h.decide(c, schedule.ActionApprove)
}

// Reject handles POST /v1/admin/bookings/:id/reject. A reason is
// required; the store enforces that.
func (h *AdminHandler) Reject(c echo.Context) error {
	return h.decide(c, schedule.ActionReject)
}

// Revoke handles POST /v1/admin/bookings/:id/revoke.
func (h *AdminHandler) Revoke(c echo.Context) error {
	return h.decide(c, schedule.ActionRevoke)
}

type maintenanceReq struct {
	Maintenance bool `json:"maintenance"`
}

// SetMaintenance handles POST /v1/admin/venues/:id/maintenance. A
// venue under maintenance stops accepting new requests; existing
// approved bookings are untouched and must be revoked individually.
func (h *AdminHandler) SetMaintenance(c echo.Context) error {
	var req maintenanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status := model.VenueAvailable
	if req.Maintenance {
		status = model.VenueMaintenance
	}
	venueID := c.Param("id")
	if err := h.Venues.SetStatus(c.Request().Context(), venueID, status); err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"venue_id": venueID, "status": string(status)})
}
