package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/campground-booking/service-campground/internal/common/domain"
)

// Booking is the aggregate root for a one-night campground reservation.
type Booking struct {
	id            uuid.UUID
	userID        uuid.UUID
	campgroundID  uuid.UUID
	bookingDate   time.Time
	paymentStatus PaymentStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking for a normalised booking day.
func NewBooking(userID, campgroundID uuid.UUID, bookingDate time.Time, status PaymentStatus) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if campgroundID == uuid.Nil {
		return nil, domain.NewValidationError("campground ID is required")
	}
	if bookingDate.IsZero() {
		return nil, domain.NewInvalidDateError("booking date is required")
	}
	if !status.IsValid() {
		return nil, domain.NewValidationError("invalid payment status: " + string(status))
	}

	now := time.Now().UTC()
	return &Booking{
		id:            uuid.New(),
		userID:        userID,
		campgroundID:  campgroundID,
		bookingDate:   NormalizeDay(bookingDate),
		paymentStatus: status,
		version:       1,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, userID, campgroundID uuid.UUID,
	bookingDate time.Time,
	paymentStatus PaymentStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:            id,
		userID:        userID,
		campgroundID:  campgroundID,
		bookingDate:   bookingDate.UTC(),
		paymentStatus: paymentStatus,
		version:       version,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// UserID returns the ID of the user who holds the booking.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// CampgroundID returns the booked campground's ID.
func (b *Booking) CampgroundID() uuid.UUID { return b.campgroundID }

// BookingDate returns the booked day at UTC midnight.
func (b *Booking) BookingDate() time.Time { return b.bookingDate }

// PaymentStatus returns the current payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// IsPaid reports whether payment has been reconciled onto the booking.
func (b *Booking) IsPaid() bool { return b.paymentStatus == PaymentPaid }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the booking belongs to the given user.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.userID == userID
}

// CanBeManagedBy reports whether the requester may read, change or delete the booking.
func (b *Booking) CanBeManagedBy(userID uuid.UUID, isAdmin bool) bool {
	return isAdmin || b.IsOwnedBy(userID)
}

// Reschedule moves the booking to another day.
func (b *Booking) Reschedule(bookingDate time.Time) error {
	if bookingDate.IsZero() {
		return domain.NewInvalidDateError("booking date is required")
	}
	b.bookingDate = NormalizeDay(bookingDate)
	b.updatedAt = time.Now().UTC()
	return nil
}

// MarkPaid records payment completion. It returns false when the booking
// was already paid, in which case nothing changes.
func (b *Booking) MarkPaid() bool {
	if !b.paymentStatus.CanTransitionTo(PaymentPaid) {
		return false
	}
	b.paymentStatus = PaymentPaid
	b.updatedAt = time.Now().UTC()
	return true
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
