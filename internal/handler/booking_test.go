package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/campushub/venue-booking/internal/handler"
	"github.com/campushub/venue-booking/internal/model"
	"github.com/campushub/venue-booking/internal/repository"
	"github.com/campushub/venue-booking/internal/schedule"
)

// catalogStub satisfies schedule.VenueCatalog and handler.VenueDirectory
// without a database.
type catalogStub struct{ venues map[string]*model.Venue }

func (c *catalogStub) GetVenue(_ context.Context, id string) (*model.Venue, error) {
	v, ok := c.venues[id]
	if !ok {
		return nil, schedule.ErrVenueNotFound
	}
	return v, nil
}

func (c *catalogStub) List(_ context.Context) ([]model.Venue, error) {
	out := make([]model.Venue, 0, len(c.venues))
	for _, v := range c.venues {
		out = append(out, *v)
	}
	return out, nil
}

func (c *catalogStub) SetStatus(_ context.Context, id string, status model.VenueStatus) error {
	v, ok := c.venues[id]
	if !ok {
		return repository.ErrNotFound
	}
	v.Status = status
	return nil
}

func newCatalogStub() *catalogStub {
	return &catalogStub{venues: map[string]*model.Venue{
		"seminar-hall-a": {ID: "seminar-hall-a", Name: "Seminar Hall A", Type: "seminar_hall", Capacity: 100, Status: model.VenueAvailable},
	}}
}

// ctx builds an echo context carrying the claims the JWT middleware
// would have set. JWT numeric claims arrive as float64, so the stub
// stores the id the same way.
func ctx(e *echo.Echo, method, target, body string, userID uint64, role string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(userID))
	c.Set("role", role)
	return c, rec
}

func submitBody(startTime, endTime string) string {
	return fmt.Sprintf(`{"venue_id":"seminar-hall-a","event_name":"Guest Lecture","attendee_count":40,"date":"2030-05-20","start_time":%q,"end_time":%q}`, startTime, endTime)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return m
}

func TestSubmitEndpoint(t *testing.T) {
	e := echo.New()
	store := schedule.New(newCatalogStub())
	h := handler.NewBookingHandler(store)

	c, rec := ctx(e, http.MethodPost, "/v1/bookings", submitBody("10:00", "12:00"), 7, model.RoleStudent)
	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	booking, ok := body["booking"].(map[string]any)
	if !ok {
		t.Fatalf("response missing booking object: %v", body)
	}
	if booking["status"] != string(model.StatusPending) {
		t.Errorf("status = %v, want pending", booking["status"])
	}
	if booking["requester_id"] != float64(7) {
		t.Errorf("requester_id = %v, want 7", booking["requester_id"])
	}
}

func TestSubmitEndpointRejectsBadWindow(t *testing.T) {
	e := echo.New()
	h := handler.NewBookingHandler(schedule.New(newCatalogStub()))

	cases := []struct{ start, end string }{
		{"12:00", "10:00"}, // inverted
		{"10:xx", "12:00"}, // malformed
	}
	for _, tc := range cases {
		c, rec := ctx(e, http.MethodPost, "/v1/bookings", submitBody(tc.start, tc.end), 7, model.RoleStudent)
		if err := h.Submit(c); err != nil {
			t.Fatalf("Submit returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("window %s-%s: status = %d, want 400", tc.start, tc.end, rec.Code)
		}
	}
}

func TestSubmitEndpointUnknownVenue(t *testing.T) {
	e := echo.New()
	h := handler.NewBookingHandler(schedule.New(newCatalogStub()))

	body := strings.Replace(submitBody("10:00", "12:00"), "seminar-hall-a", "no-such-venue", 1)
	c, rec := ctx(e, http.MethodPost, "/v1/bookings", body, 7, model.RoleStudent)
	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404; body %s", rec.Code, rec.Body.String())
	}
}

func TestApproveEndpointConflict(t *testing.T) {
	e := echo.New()
	store := schedule.New(newCatalogStub())
	booking := handler.NewBookingHandler(store)

	c, rec := ctx(e, http.MethodPost, "/v1/bookings", submitBody("10:00", "12:00"), 7, model.RoleStudent)
	if err := booking.Submit(c); err != nil {
		t.Fatalf("Submit #1: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Submit #1 status = %d", rec.Code)
	}
	c, rec = ctx(e, http.MethodPost, "/v1/bookings", submitBody("11:00", "13:00"), 8, model.RoleStudent)
	if err := booking.Submit(c); err != nil {
		t.Fatalf("Submit #2: %v", err)
	}
	second := decode(t, rec)["booking"].(map[string]any)
	secondID := uint64(second["id"].(float64))

	actor := schedule.Actor{ID: 1, Role: model.RoleAdmin}
	if _, err := store.Transition(context.Background(), 1, schedule.ActionApprove, actor, ""); err != nil {
		t.Fatalf("approving first request: %v", err)
	}
	if _, err := store.Transition(context.Background(), secondID, schedule.ActionApprove, actor, ""); err == nil {
		t.Fatal("approving overlapping request succeeded, want conflict")
	}
}

func TestCancelEndpoint(t *testing.T) {
	e := echo.New()
	store := schedule.New(newCatalogStub())
	h := handler.NewBookingHandler(store)

	c, rec := ctx(e, http.MethodPost, "/v1/bookings", submitBody("14:00", "15:00"), 7, model.RoleStudent)
	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	id := decode(t, rec)["booking"].(map[string]any)["id"].(float64)

	c, rec = ctx(e, http.MethodDelete, "/v1/bookings/1", "", 7, model.RoleStudent)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%.0f", id))
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Cancel status = %d; body %s", rec.Code, rec.Body.String())
	}
	if got := decode(t, rec)["booking"].(map[string]any)["status"]; got != string(model.StatusCancelled) {
		t.Errorf("status after cancel = %v, want cancelled", got)
	}
}

// Cancelling a foreign booking is an authorization failure and must
// come back as 403, not as a state conflict.
func TestCancelForeignBookingForbidden(t *testing.T) {
	e := echo.New()
	store := schedule.New(newCatalogStub())
	h := handler.NewBookingHandler(store)

	c, rec := ctx(e, http.MethodPost, "/v1/bookings", submitBody("14:00", "15:00"), 7, model.RoleStudent)
	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	id := decode(t, rec)["booking"].(map[string]any)["id"].(float64)

	c, rec = ctx(e, http.MethodDelete, "/v1/bookings/1", "", 99, model.RoleStudent)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprintf("%.0f", id))
	if err := h.Cancel(c); err != nil {
		t.Fatalf("Cancel by stranger: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403; body %s", rec.Code, rec.Body.String())
	}
	got, err := store.Get(uint64(id))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != model.StatusPending {
		t.Fatalf("status = %s, want pending after denied cancel", got.Status)
	}
}
