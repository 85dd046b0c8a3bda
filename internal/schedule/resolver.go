package schedule

import "github.com/campushub/venue-booking/internal/model"

// Resolver classifies a candidate window against the current booking
// state. Conflicts with the approved set are authoritative (they block
// approval); conflicts with other pending requests are advisory only
// and surfaced as warnings, never enforced: several pending requests
// may compete for the same window and the first one approved wins.
//
// Detection is deterministic: a pure function of the store and index
// state with no randomness or time-of-day dependence.
type Resolver struct {
	index   *CalendarIndex
	pending pendingSource
}

// pendingSource is the slice of store behavior the resolver needs: the
// pending requests for a venue, in submission order.
type pendingSource interface {
	pendingForVenue(venueID string) []*model.BookingRequest
}

// NewResolver builds a resolver over the given index and pending set.
func NewResolver(index *CalendarIndex, pending pendingSource) *Resolver {
	return &Resolver{index: index, pending: pending}
}

// CheckAgainstApproved returns the ids of approved bookings on venueID
// whose windows overlap w. A non-empty result blocks approval.
func (r *Resolver) CheckAgainstApproved(venueID string, w model.TimeWindow) []uint64 {
	return r.index.QueryOverlap(venueID, w)
}

// CheckAgainstPending returns the ids of pending requests on venueID
// (excluding excludingID) whose windows overlap w. The result is
// advisory; it never blocks submission or approval.
func (r *Resolver) CheckAgainstPending(venueID string, w model.TimeWindow, excludingID uint64) []uint64 {
	var ids []uint64
	for _, req := range r.pending.pendingForVenue(venueID) {
		if req.ID == excludingID {
			continue
		}
		if req.Window.Overlaps(w) {
			ids = append(ids, req.ID)
		}
	}
	return ids
}
