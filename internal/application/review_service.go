package application

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campground-booking/service-campground/internal/common/domain"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
	reviewDomain "github.com/campground-booking/service-campground/internal/domain/review"
)

// CreateReviewRequest is the request DTO for reviewing a campground.
type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment" binding:"required"`
}

// UpdateReviewRequest is a partial review update; absent fields are kept.
type UpdateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// ReviewMeta is the rating summary attached to a campground's review list.
type ReviewMeta struct {
	CampgroundID  uuid.UUID `json:"campgroundId"`
	AverageRating float64   `json:"averageRating"`
	ReviewsCount  int64     `json:"reviewsCount"`
}

// ReviewListDTO is a review listing, with meta when scoped to a campground.
type ReviewListDTO struct {
	Reviews []ReviewDTO `json:"reviews"`
	Meta    *ReviewMeta `json:"meta,omitempty"`
}

// ReviewService implements review use cases.
type ReviewService struct {
	reviews         reviewDomain.ReviewRepository
	campgrounds     campgroundDomain.CampgroundRepository
	bookings        bookingDomain.BookingRepository
	aggregator      *RatingAggregator
	requiresBooking bool
	logger          *zap.Logger
}

// NewReviewService creates a new ReviewService. When requiresBooking is
// set, non-admins may only review campgrounds they have booked.
func NewReviewService(
	reviews reviewDomain.ReviewRepository,
	campgrounds campgroundDomain.CampgroundRepository,
	bookings bookingDomain.BookingRepository,
	aggregator *RatingAggregator,
	requiresBooking bool,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:         reviews,
		campgrounds:     campgrounds,
		bookings:        bookings,
		aggregator:      aggregator,
		requiresBooking: requiresBooking,
		logger:          logger,
	}
}

// ListReviews lists reviews newest first, optionally for one campground.
func (s *ReviewService) ListReviews(ctx context.Context, campgroundID *uuid.UUID) (*ReviewListDTO, error) {
	var meta *ReviewMeta
	if campgroundID != nil {
		camp, err := s.campgrounds.FindByID(ctx, *campgroundID)
		if err != nil {
			return nil, err
		}
		rating := campgroundDomain.NewRating(camp.AverageRating(), camp.ReviewsCount())
		meta = &ReviewMeta{
			CampgroundID:  camp.ID(),
			AverageRating: rating.AverageRating,
			ReviewsCount:  rating.ReviewsCount,
		}
	}

	reviews, err := s.reviews.List(ctx, campgroundID)
	if err != nil {
		return nil, err
	}

	dtos := make([]ReviewDTO, len(reviews))
	for i, r := range reviews {
		dtos[i] = toReviewDTO(r)
	}
	return &ReviewListDTO{Reviews: dtos, Meta: meta}, nil
}

// GetReview retrieves a single review.
func (s *ReviewService) GetReview(ctx context.Context, reviewID uuid.UUID) (*ReviewDTO, error) {
	r, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	result := toReviewDTO(r)
	return &result, nil
}

// CreateReview adds the requester's review of a campground. A second
// review of the same campground by the same user fails with DuplicateReview.
func (s *ReviewService) CreateReview(ctx context.Context, req Requester, campgroundID uuid.UUID, input CreateReviewRequest) (*ReviewDTO, error) {
	if _, err := s.campgrounds.FindByID(ctx, campgroundID); err != nil {
		return nil, err
	}

	if s.requiresBooking && !req.IsAdmin() {
		booked, err := s.bookings.ExistsForCampground(ctx, req.UserID, campgroundID)
		if err != nil {
			return nil, err
		}
		if !booked {
			return nil, domain.NewForbiddenError("You can only review campgrounds you have booked")
		}
	}

	r, err := reviewDomain.NewReview(campgroundID, req.UserID, input.Rating, input.Comment)
	if err != nil {
		return nil, err
	}
	if err := s.reviews.Save(ctx, r); err != nil {
		return nil, err
	}

	s.aggregator.Recompute(ctx, campgroundID)

	result := toReviewDTO(r)
	return &result, nil
}

// UpdateReview edits a review. Only its author or an admin may do so.
func (s *ReviewService) UpdateReview(ctx context.Context, req Requester, reviewID uuid.UUID, input UpdateReviewRequest) (*ReviewDTO, error) {
	r, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if !r.CanBeManagedBy(req.UserID, req.IsAdmin()) {
		return nil, domain.NewForbiddenError("Not authorized to update this review")
	}

	if err := r.Edit(input.Rating, input.Comment); err != nil {
		return nil, err
	}
	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, err
	}

	s.aggregator.Recompute(ctx, r.CampgroundID())

	result := toReviewDTO(r)
	return &result, nil
}

// DeleteReview removes a review. Only its author or an admin may do so.
func (s *ReviewService) DeleteReview(ctx context.Context, req Requester, reviewID uuid.UUID) error {
	r, err := s.reviews.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !r.CanBeManagedBy(req.UserID, req.IsAdmin()) {
		return domain.NewForbiddenError("Not authorized to delete this review")
	}

	if err := s.reviews.Delete(ctx, r.ID()); err != nil {
		return err
	}

	s.aggregator.Recompute(ctx, r.CampgroundID())
	return nil
}
