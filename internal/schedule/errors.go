// Package schedule implements the venue booking scheduling and approval
// engine: an authoritative in-memory store of booking requests, a
// per-venue calendar index of approved windows, conflict detection and
// the approval state machine. The engine guarantees that for any venue
// the set of approved booking windows is pairwise non-overlapping, even
// under concurrent submissions and admin decisions.
package schedule

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a booking request id is unknown.
var ErrNotFound = errors.New("booking request not found")

// ErrVenueNotFound is returned by VenueCatalog implementations (and
// propagated by the store) when a venue id is unknown.
var ErrVenueNotFound = errors.New("venue not found")

// ValidationError reports a malformed or out-of-policy submission
// (attendees over capacity, window in the past, maintenance venue).
// No state is mutated when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "validation failed: " + e.Reason }

// SchedulingConflict is returned when an approval is attempted against
// a window that overlaps one or more already approved bookings. It
// carries the ids of the blocking requests so the caller can surface
// them; the target request stays pending.
type SchedulingConflict struct {
	VenueID     string
	BlockingIDs []uint64
}

func (e *SchedulingConflict) Error() string {
	ids := make([]string, len(e.BlockingIDs))
	for i, id := range e.BlockingIDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("scheduling conflict on venue %s with approved request(s) %s",
		e.VenueID, strings.Join(ids, ", "))
}

// IllegalTransition reports an attempt to move a request out of a
// terminal state, or an action the state machine does not know. It is
// a client error and is never silently ignored.
type IllegalTransition struct {
	Reason string
}

func (e *IllegalTransition) Error() string { return "illegal transition: " + e.Reason }

// PermissionDenied reports an actor whose role or identity does not
// permit the requested action, regardless of the request's state.
// Handlers map it to 403 where IllegalTransition maps to 409.
type PermissionDenied struct {
	Reason string
}

func (e *PermissionDenied) Error() string { return "permission denied: " + e.Reason }

// InvariantViolation signals an internal consistency failure, such as
// a calendar insert that would overlap despite a passed conflict
// check. It indicates a concurrency-control bug rather than a user
// error: callers must log it and abort without partial mutation.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string { return "invariant violation: " + e.Msg }
