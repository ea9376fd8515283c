package campground

import (
	"context"

	"github.com/google/uuid"
)

// CampgroundRepository defines persistence operations for campgrounds.
type CampgroundRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Campground, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Campground, error)
	List(ctx context.Context, page, limit int) ([]*Campground, int64, error)
	Save(ctx context.Context, c *Campground) error
	Update(ctx context.Context, c *Campground) error
	// UpdateRating writes only the rating aggregate fields.
	UpdateRating(ctx context.Context, id uuid.UUID, rating Rating) error
	Delete(ctx context.Context, id uuid.UUID) error
}
