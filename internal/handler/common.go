// Package handler implements the HTTP endpoints of the venue booking
// service. Handlers translate between the wire and the scheduling
// engine; all booking state mutation goes through the engine's
// Transition and Submit operations.
package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/campushub/venue-booking/internal/repository"
	"github.com/campushub/venue-booking/internal/schedule"
)

// getUserID extracts the authenticated user id stored in the context
// by the JWT middleware. JWT numeric claims decode as float64.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// getRole extracts the role claim stored by the JWT middleware.
func getRole(c echo.Context) string {
	if r, ok := c.Get("role").(string); ok {
		return r
	}
	return ""
}

// actorFrom builds the engine actor for the authenticated caller.
func actorFrom(c echo.Context) (schedule.Actor, error) {
	uid, err := getUserID(c)
	if err != nil {
		return schedule.Actor{}, err
	}
	return schedule.Actor{ID: uid, Role: getRole(c)}, nil
}

// scheduleError maps the engine's error taxonomy onto HTTP responses
// so API clients can render precise messages. InvariantViolation is
// the one unexpected case: it is logged and reported as a server
// error.
func scheduleError(c echo.Context, err error) error {
	var ve *schedule.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Reason})
	}
	var conflict *schedule.SchedulingConflict
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":        "scheduling conflict",
			"venue_id":     conflict.VenueID,
			"blocking_ids": conflict.BlockingIDs,
		})
	}
	var illegal *schedule.IllegalTransition
	if errors.As(err, &illegal) {
		return c.JSON(http.StatusConflict, echo.Map{"error": illegal.Reason})
	}
	var denied *schedule.PermissionDenied
	if errors.As(err, &denied) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": denied.Reason})
	}
	if errors.Is(err, schedule.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking request not found"})
	}
	if errors.Is(err, schedule.ErrVenueNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "venue not found"})
	}
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}
	log.Printf("handler: unexpected engine error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
