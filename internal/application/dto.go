package application

import (
	"time"

	"github.com/google/uuid"

	"github.com/campground-booking/service-campground/internal/common/auth"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
	reviewDomain "github.com/campground-booking/service-campground/internal/domain/review"
)

// Requester identifies the authenticated caller of a use case.
type Requester struct {
	UserID uuid.UUID
	Role   auth.Role
	Email  string
}

// IsAdmin reports whether the caller has the admin role.
func (r Requester) IsAdmin() bool { return r.Role == auth.RoleAdmin }

// CampgroundDTO is the response representation of a campground.
type CampgroundDTO struct {
	ID uuid.UUID `json:"id"`
	campgroundDomain.Details
	AverageRating float64   `json:"averageRating"`
	ReviewsCount  int64     `json:"reviewsCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CampgroundSummary is the campground block embedded in booking responses.
type CampgroundSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Address  string    `json:"address"`
	District string    `json:"district"`
	Province string    `json:"province"`
	Tel      string    `json:"tel,omitempty"`
	Image    string    `json:"image,omitempty"`
	Price    *float64  `json:"price,omitempty"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user"`
	CampgroundID  uuid.UUID          `json:"campgroundId"`
	Campground    *CampgroundSummary `json:"campground,omitempty"`
	BookingDate   string             `json:"bookingDate"`
	PaymentStatus string             `json:"paymentStatus"`
	Version       int64              `json:"version"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// ReviewDTO is the response representation of a review.
type ReviewDTO struct {
	ID           uuid.UUID `json:"id"`
	CampgroundID uuid.UUID `json:"campground"`
	UserID       uuid.UUID `json:"user"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toCampgroundDTO(c *campgroundDomain.Campground) CampgroundDTO {
	return CampgroundDTO{
		ID:            c.ID(),
		Details:       c.Details(),
		AverageRating: c.AverageRating(),
		ReviewsCount:  c.ReviewsCount(),
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	}
}

func toCampgroundSummary(c *campgroundDomain.Campground) *CampgroundSummary {
	if c == nil {
		return nil
	}
	d := c.Details()
	return &CampgroundSummary{
		ID:       c.ID(),
		Name:     d.Name,
		Address:  d.Address,
		District: d.District,
		Province: d.Province,
		Tel:      d.Tel,
		Image:    d.Image,
		Price:    d.Price,
	}
}

func toBookingDTO(bk *bookingDomain.Booking, camp *campgroundDomain.Campground) BookingDTO {
	return BookingDTO{
		ID:            bk.ID(),
		UserID:        bk.UserID(),
		CampgroundID:  bk.CampgroundID(),
		Campground:    toCampgroundSummary(camp),
		BookingDate:   bookingDomain.FormatDay(bk.BookingDate()),
		PaymentStatus: bk.PaymentStatus().String(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func toReviewDTO(r *reviewDomain.Review) ReviewDTO {
	return ReviewDTO{
		ID:           r.ID(),
		CampgroundID: r.CampgroundID(),
		UserID:       r.UserID(),
		Rating:       r.Rating(),
		Comment:      r.Comment(),
		CreatedAt:    r.CreatedAt(),
		UpdatedAt:    r.UpdatedAt(),
	}
}
