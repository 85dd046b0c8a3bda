package model

import "time"

// BookingStatus enumerates the states of a booking request. Only
// StatusPending admits further transitions; the other three states are
// terminal. Records are never deleted: rejected and cancelled requests
// are retained for audit.
type BookingStatus string

const (
    StatusPending   BookingStatus = "pending"
    StatusApproved  BookingStatus = "approved"
    StatusRejected  BookingStatus = "rejected"
    StatusCancelled BookingStatus = "cancelled"
)

// Terminal reports whether no further transitions are legal from s.
func (s BookingStatus) Terminal() bool { return s != StatusPending }

// BookingRequest is a user's request to reserve a venue for a time
// window. ID, VenueID, RequesterID and CreatedAt are immutable after
// creation; Status, DecidedAt and DecisionReason are mutated only
// through the approval state machine.
//
// Fields:
//  ID             – unique request identifier.
//  VenueID        – venue being requested.
//  RequesterID    – user who submitted the request.
//  Window         – requested [start, end) interval, minute granularity.
//  EventName      – short title of the event.
//  Description    – free-form event description.
//  AttendeeCount  – expected attendees; never exceeds venue capacity.
//  Status         – pending, approved, rejected or cancelled.
//  CreatedAt      – submission timestamp.
//  DecidedAt      – when the request left pending (nil while pending).
//  DecisionReason – reason supplied on rejection (nil otherwise).
type BookingRequest struct {
    ID             uint64
    VenueID        string
    RequesterID    uint64
    Window         TimeWindow
    EventName      string
    Description    string
    AttendeeCount  uint32
    Status         BookingStatus
    CreatedAt      time.Time
    DecidedAt      *time.Time
    DecisionReason *string
}

// TimeWindow is a half-open interval [Start, End) at minute
// granularity. A window ending exactly when another begins does not
// overlap it.
type TimeWindow struct {
    Start time.Time `json:"start"`
    End   time.Time `json:"end"`
}

// Overlaps reports whether w and o intersect under half-open
// semantics: startA < endB && startB < endA.
func (w TimeWindow) Overlaps(o TimeWindow) bool {
    return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Valid reports whether the window is well formed: both instants set,
// Start strictly before End, and both aligned to whole minutes.
func (w TimeWindow) Valid() bool {
    if w.Start.IsZero() || w.End.IsZero() || !w.Start.Before(w.End) {
        return false
    }
    return w.Start.Second() == 0 && w.Start.Nanosecond() == 0 &&
        w.End.Second() == 0 && w.End.Nanosecond() == 0
}
