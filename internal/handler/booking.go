package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campushub/venue-booking/internal/model"
	"github.com/campushub/venue-booking/internal/schedule"
)

// BookingHandler exposes the submission side of the scheduling
// engine to authenticated campus users. All state changes go through
// the engine; the handler only parses, delegates and renders.
type BookingHandler struct {
	Store *schedule.Store
}

func NewBookingHandler(store *schedule.Store) *BookingHandler {
	if store == nil {
		panic("nil store passed to NewBookingHandler")
	}
	return &BookingHandler{Store: store}
}

// submitReq mirrors the booking form: a date plus start and end times
// at minute granularity.
type submitReq struct {
	VenueID       string `json:"venue_id"`
	EventName     string `json:"event_name"`
	Description   string `json:"description"`
	AttendeeCount uint32 `json:"attendee_count"`
	Date          string `json:"date"`       // "2026-09-14"
	StartTime     string `json:"start_time"` // "10:00"
	EndTime       string `json:"end_time"`   // "12:00"
}

// bookingResp is the wire form of a booking request.
type bookingResp struct {
	ID             uint64           `json:"id"`
	VenueID        string           `json:"venue_id"`
	RequesterID    uint64           `json:"requester_id"`
	Window         model.TimeWindow `json:"window"`
	EventName      string           `json:"event_name"`
	Description    string           `json:"description,omitempty"`
	AttendeeCount  uint32           `json:"attendee_count"`
	Status         string           `json:"status"`
	CreatedAt      time.Time        `json:"created_at"`
	DecidedAt      *time.Time       `json:"decided_at,omitempty"`
	DecisionReason *string          `json:"decision_reason,omitempty"`
}

func toBookingResp(r *model.BookingRequest) bookingResp {
	return bookingResp{
		ID:             r.ID,
		VenueID:        r.VenueID,
		RequesterID:    r.RequesterID,
		Window:         r.Window,
		EventName:      r.EventName,
		Description:    r.Description,
		AttendeeCount:  r.AttendeeCount,
		Status:         string(r.Status),
		CreatedAt:      r.CreatedAt,
		DecidedAt:      r.DecidedAt,
		DecisionReason: r.DecisionReason,
	}
}

// parseWindow combines the date and time fields into a UTC window.
func parseWindow(date, startTime, endTime string) (model.TimeWindow, bool) {
	start, err1 := time.Parse("2006-01-02 15:04", date+" "+startTime)
	end, err2 := time.Parse("2006-01-02 15:04", date+" "+endTime)
	if err1 != nil || err2 != nil {
		return model.TimeWindow{}, false
	}
	return model.TimeWindow{Start: start.UTC(), End: end.UTC()}, true
}

// Submit handles POST /v1/bookings. On success it returns 201 with
// the pending request and any advisory conflicts: overlapping
// approved or pending requests the submitter should know about, none
// of which block the submission.
func (h *BookingHandler) Submit(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	window, ok := parseWindow(req.Date, req.StartTime, req.EndTime)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD and times HH:MM"})
	}

	booking, advisory, err := h.Store.Submit(c.Request().Context(), schedule.Candidate{
		VenueID:       req.VenueID,
		RequesterID:   uid,
		Window:        window,
		EventName:     req.EventName,
		Description:   req.Description,
		AttendeeCount: req.AttendeeCount,
	})
	if err != nil {
		return scheduleError(c, err)
	}
	resp := echo.Map{"booking": toBookingResp(booking)}
	if len(advisory) > 0 {
		resp["advisory_conflicts"] = advisory
	}
	return c.JSON(http.StatusCreated, resp)
}

// ListMine handles GET /v1/bookings: the caller's own requests,
// newest first.
func (h *BookingHandler) ListMine(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	list := h.Store.ListByRequester(uid)
	out := make([]bookingResp, 0, len(list))
	for _, r := range list {
		out = append(out, toBookingResp(r))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Get handles GET /v1/bookings/:id. Requests are visible to their
// requester and to admins.
func (h *BookingHandler) Get(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.Store.Get(id)
	if err != nil {
		return scheduleError(c, err)
	}
	if booking.RequesterID != uid && getRole(c) != model.RoleAdmin {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, toBookingResp(booking))
}

// Cancel handles DELETE /v1/bookings/:id. The engine enforces that
// only the requester (or an admin) may cancel and that the request is
// still pending.
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	booking, err := h.Store.Transition(c.Request().Context(), id, schedule.ActionCancel, actor, "")
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(booking))
}
