// Package queue defines message payloads exchanged over the message broker.
package queue

// LifecycleQueueName is the durable queue carrying booking lifecycle
// events from the scheduling engine to notification consumers.
const LifecycleQueueName = "booking.lifecycle"

// BookingLifecycleEvent is published on every committed transition of
// a booking request (including submission, where from_status is
// empty). It carries enough information for downstream consumers to
// notify requesters or feed analytics without querying the engine.
type BookingLifecycleEvent struct {
	RequestID   uint64 `json:"request_id"`
	VenueID     string `json:"venue_id"`
	RequesterID uint64 `json:"requester_id"`
	FromStatus  string `json:"from_status"`
	ToStatus    string `json:"to_status"`
	ActorID     uint64 `json:"actor_id"`
	Reason      string `json:"reason,omitempty"`
	OccurredAt  string `json:"occurred_at"`
}
