package repository

import (
	"context"
	"database/sql"

	"github.com/campushub/venue-booking/internal/schedule"
)

// BookingEventRepo appends committed lifecycle transitions to the
// `booking_events` table. It implements schedule.Emitter and is
// attached to the store alongside the notification publisher: the
// engine calls it strictly after a transition commits, and a write
// failure is logged by the store without rolling anything back. The
// table is an append-only audit trail, never read back by the engine.
type BookingEventRepo struct{ DB *sql.DB }

// NewBookingEventRepo returns a BookingEventRepo bound to the given database.
func NewBookingEventRepo(db *sql.DB) *BookingEventRepo { return &BookingEventRepo{DB: db} }

// Emit inserts one audit row for the event.
func (r *BookingEventRepo) Emit(ctx context.Context, ev schedule.Event) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO booking_events
		 (request_id, venue_id, requester_id, from_status, to_status, actor_id, reason, occurred_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		ev.RequestID, ev.VenueID, ev.RequesterID, string(ev.From), string(ev.To),
		ev.ActorID, ev.Reason, ev.OccurredAt)
	return err
}
