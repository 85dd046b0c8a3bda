package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/campushub/venue-booking/internal/model"
	"github.com/campushub/venue-booking/internal/schedule"
)

// VenueDirectory is the slice of venue persistence the handlers need.
// *repository.VenueRepo implements it; tests substitute stubs.
type VenueDirectory interface {
	GetVenue(ctx context.Context, id string) (*model.Venue, error)
	List(ctx context.Context) ([]model.Venue, error)
	SetStatus(ctx context.Context, id string, status model.VenueStatus) error
}

// VenueHandler serves the public venue catalog and per-venue
// availability. These endpoints require no authentication so anyone
// can browse venues before registering; they sit behind the Redis
// response cache.
type VenueHandler struct {
	Venues VenueDirectory
	Store  *schedule.Store
}

func NewVenueHandler(venues VenueDirectory, store *schedule.Store) *VenueHandler {
	if venues == nil || store == nil {
		panic("nil dependency passed to NewVenueHandler")
	}
	return &VenueHandler{Venues: venues, Store: store}
}

type venueResp struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Capacity  uint32   `json:"capacity"`
	Amenities []string `json:"amenities"`
	Status    string   `json:"status"`
}

func toVenueResp(v model.Venue) venueResp {
	amenities := v.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return venueResp{
		ID:        v.ID,
		Name:      v.Name,
		Type:      v.Type,
		Capacity:  v.Capacity,
		Amenities: amenities,
		Status:    string(v.Status),
	}
}

// List handles GET /v1/venues.
func (h *VenueHandler) List(c echo.Context) error {
	venues, err := h.Venues.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]venueResp, 0, len(venues))
	for _, v := range venues {
		out = append(out, toVenueResp(v))
	}
	return c.JSON(http.StatusOK, echo.Map{"venues": out})
}

// Get handles GET /v1/venues/:id.
func (h *VenueHandler) Get(c echo.Context) error {
	v, err := h.Venues.GetVenue(c.Request().Context(), c.Param("id"))
	if err != nil {
		return scheduleError(c, err)
	}
	return c.JSON(http.StatusOK, toVenueResp(*v))
}

// bookableDayStart/End bound the availability view to the hours in
// which venues can be booked.
const (
	bookableDayStartHour = 9
	bookableDayEndHour   = 18
)

// Availability handles GET /v1/venues/:id/availability?date=YYYY-MM-DD.
// It returns the approved windows occupying the date along with the
// free gaps between them within bookable hours, the data behind the
// booking form's slot picker.
func (h *VenueHandler) Availability(c echo.Context) error {
	venueID := c.Param("id")
	if _, err := h.Venues.GetVenue(c.Request().Context(), venueID); err != nil {
		return scheduleError(c, err)
	}
	date, err := time.Parse("2006-01-02", c.QueryParam("date"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), bookableDayStartHour, 0, 0, 0, time.UTC)
	dayEnd := time.Date(date.Year(), date.Month(), date.Day(), bookableDayEndHour, 0, 0, 0, time.UTC)

	occupied := h.Store.ApprovedSlots(venueID, model.TimeWindow{Start: dayStart, End: dayEnd})

	// Walk the sorted occupied slots to derive the free gaps.
	free := make([]model.TimeWindow, 0)
	cursor := dayStart
	for _, s := range occupied {
		if cursor.Before(s.Window.Start) {
			free = append(free, model.TimeWindow{Start: cursor, End: s.Window.Start})
		}
		if s.Window.End.After(cursor) {
			cursor = s.Window.End
		}
	}
	if cursor.Before(dayEnd) {
		free = append(free, model.TimeWindow{Start: cursor, End: dayEnd})
	}

	if occupied == nil {
		occupied = []schedule.Slot{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"venue_id": venueID,
		"date":     date.Format("2006-01-02"),
		"occupied": occupied,
		"free":     free,
	})
}
