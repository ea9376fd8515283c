package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
	reviewDomain "github.com/campground-booking/service-campground/internal/domain/review"
)

// RatingAggregator keeps a campground's averageRating and reviewsCount in
// step with its reviews. Review mutations call it explicitly after they
// commit.
type RatingAggregator struct {
	reviews     reviewDomain.ReviewRepository
	campgrounds campgroundDomain.CampgroundRepository
	logger      *zap.Logger
}

// NewRatingAggregator creates a new RatingAggregator.
func NewRatingAggregator(
	reviews reviewDomain.ReviewRepository,
	campgrounds campgroundDomain.CampgroundRepository,
	logger *zap.Logger,
) *RatingAggregator {
	return &RatingAggregator{reviews: reviews, campgrounds: campgrounds, logger: logger}
}

// RecomputeAggregate recalculates and stores the campground's rating:
// the mean rounded to two decimals plus the count, or (0, 0) with no reviews.
func (a *RatingAggregator) RecomputeAggregate(ctx context.Context, campgroundID uuid.UUID) (campgroundDomain.Rating, error) {
	stats, err := a.reviews.StatsForCampground(ctx, campgroundID)
	if err != nil {
		return campgroundDomain.Rating{}, fmt.Errorf("failed to compute review stats: %w", err)
	}

	rating := campgroundDomain.NewRating(stats.Mean, stats.Count)
	if err := a.campgrounds.UpdateRating(ctx, campgroundID, rating); err != nil {
		return campgroundDomain.Rating{}, fmt.Errorf("failed to store rating: %w", err)
	}
	return rating, nil
}

// Recompute runs RecomputeAggregate and only logs a failure. The review
// mutation that triggered it has already committed.
func (a *RatingAggregator) Recompute(ctx context.Context, campgroundID uuid.UUID) {
	rating, err := a.RecomputeAggregate(ctx, campgroundID)
	if err != nil {
		a.logger.Error("failed to recompute campground rating",
			zap.String("campground_id", campgroundID.String()),
			zap.Error(err),
		)
		return
	}
	a.logger.Debug("campground rating recomputed",
		zap.String("campground_id", campgroundID.String()),
		zap.Float64("average_rating", rating.AverageRating),
		zap.Int64("reviews_count", rating.ReviewsCount),
	)
}
