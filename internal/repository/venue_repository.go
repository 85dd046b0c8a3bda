package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/campushub/venue-booking/internal/model"
	"github.com/campushub/venue-booking/internal/schedule"
)

// VenueRepo reads and maintains the venue catalog stored in the
// `venues` table. It doubles as the scheduling engine's VenueCatalog:
// GetVenue satisfies the schedule package's collaborator interface,
// mapping a missing row to schedule.ErrVenueNotFound.
type VenueRepo struct{ DB *sql.DB }

// NewVenueRepo returns a VenueRepo bound to the given database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{DB: db} }

const venueColumns = "id, name, venue_type, capacity, amenities, status, created_at, updated_at"

// GetVenue fetches one venue by its slug id.
func (r *VenueRepo) GetVenue(ctx context.Context, id string) (*model.Venue, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+venueColumns+" FROM venues WHERE id=? LIMIT 1", id)
	v, err := scanVenue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, schedule.ErrVenueNotFound
	}
	return v, err
}

// List returns the whole catalog ordered by name.
func (r *VenueRepo) List(ctx context.Context) ([]model.Venue, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+venueColumns+" FROM venues ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	venues := make([]model.Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, *v)
	}
	return venues, rows.Err()
}

// SetStatus flips a venue between available and maintenance. Already
// approved bookings are unaffected; only new submissions are gated.
func (r *VenueRepo) SetStatus(ctx context.Context, id string, status model.VenueStatus) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE venues SET status=? WHERE id=?", string(status), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface{ Scan(dest ...any) error }

func scanVenue(row rowScanner) (*model.Venue, error) {
	var v model.Venue
	var amenities sql.NullString
	var status string
	if err := row.Scan(&v.ID, &v.Name, &v.Type, &v.Capacity, &amenities, &status, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.Status = model.VenueStatus(status)
	if amenities.Valid && amenities.String != "" {
		// Amenities are stored as a JSON array of strings.
		if err := json.Unmarshal([]byte(amenities.String), &v.Amenities); err != nil {
			return nil, err
		}
	}
	return &v, nil
}
