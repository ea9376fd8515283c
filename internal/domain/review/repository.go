package review

import (
	"context"

	"github.com/google/uuid"
)

// Stats is the raw rating summary of a campground's reviews.
type Stats struct {
	Mean  float64
	Count int64
}

// ReviewRepository defines persistence operations for reviews.
//
// Save must enforce uniqueness of (campground, user) and report a
// violation as a DuplicateReview domain error.
type ReviewRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Review, error)
	// List returns reviews newest first; a nil campgroundID lists all.
	List(ctx context.Context, campgroundID *uuid.UUID) ([]*Review, error)
	Save(ctx context.Context, r *Review) error
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCampground(ctx context.Context, campgroundID uuid.UUID) error
	// StatsForCampground computes mean rating and count over a campground's reviews.
	StatsForCampground(ctx context.Context, campgroundID uuid.UUID) (Stats, error)
}
