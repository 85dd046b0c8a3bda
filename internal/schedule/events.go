package schedule

import (
	"context"
	"time"

	"github.com/campushub/venue-booking/internal/model"
)

// Event describes one committed lifecycle transition of a booking
// request. Submission is reported with From == "" and To == pending.
// Events are emitted strictly after the transition has committed;
// emitter failures are logged and never roll the transition back.
type Event struct {
	RequestID   uint64              `json:"request_id"`
	VenueID     string              `json:"venue_id"`
	RequesterID uint64              `json:"requester_id"`
	From        model.BookingStatus `json:"from_status"`
	To          model.BookingStatus `json:"to_status"`
	ActorID     uint64              `json:"actor_id"`
	Reason      string              `json:"reason,omitempty"`
	OccurredAt  time.Time           `json:"occurred_at"`
}

// Emitter receives lifecycle events after each committed transition.
// Implementations must not block indefinitely; the store treats
// emission as fire-and-forget and only logs returned errors.
type Emitter interface {
	Emit(ctx context.Context, ev Event) error
}

// VenueCatalog supplies immutable venue metadata for submission
// validation. Implementations return an error wrapping
// ErrVenueNotFound when the id is unknown.
type VenueCatalog interface {
	GetVenue(ctx context.Context, id string) (*model.Venue, error)
}
