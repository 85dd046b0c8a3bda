package model

import "time"

// VenueStatus enumerates the lifecycle states of a venue in the catalog.
// Venues under maintenance reject new booking requests but keep any
// bookings that were approved before the status changed.
type VenueStatus string

const (
    VenueAvailable   VenueStatus = "available"   // venue accepts new requests
    VenueMaintenance VenueStatus = "maintenance" // venue rejects new requests
)

// Venue describes a bookable campus space as stored in the `venues`
// table. Identity fields (ID, Name, Capacity) are immutable once the
// venue is created; only Status and Amenities may change over time.
//
// Fields:
//  ID        – slug identifier, e.g. "main-auditorium".
//  Name      – display name, e.g. "Main Auditorium".
//  Type      – venue category (Auditorium, Seminar Hall, Lab, ...).
//  Capacity  – maximum number of attendees.
//  Amenities – equipment available at the venue.
//  Status    – available or maintenance.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Venue struct {
    ID        string      // venues.id
    Name      string      // venues.name
    Type      string      // venues.venue_type
    Capacity  uint32      // venues.capacity
    Amenities []string    // venues.amenities (JSON column)
    Status    VenueStatus // venues.status
    CreatedAt time.Time   // venues.created_at
    UpdatedAt time.Time   // venues.updated_at
}
