package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter narrows a booking listing. Nil fields do not filter.
type Filter struct {
	UserID       *uuid.UUID
	CampgroundID *uuid.UUID
}

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByUserCampgroundDate retrieves the booking a user holds for a
	// campground on a given day. Returns a NotFound error when absent.
	FindByUserCampgroundDate(ctx context.Context, userID, campgroundID uuid.UUID, day time.Time) (*Booking, error)

	// List retrieves bookings matching the filter, newest first, with pagination.
	List(ctx context.Context, filter Filter, page, limit int) ([]*Booking, int64, error)

	// CountByUser counts a user's bookings; when from is set only bookings
	// dated on or after it are counted.
	CountByUser(ctx context.Context, userID uuid.UUID, from *time.Time) (int64, error)

	// ExistsForCampground reports whether the user holds any booking for the campground.
	ExistsForCampground(ctx context.Context, userID, campgroundID uuid.UUID) (bool, error)

	// CountByPaymentStatus returns booking counts grouped by payment status (admin).
	CountByPaymentStatus(ctx context.Context) (map[string]int64, error)

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error

	// Delete removes a booking.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteByCampground removes every booking for a campground.
	DeleteByCampground(ctx context.Context, campgroundID uuid.UUID) error
}
