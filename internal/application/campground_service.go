package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campground-booking/service-campground/internal/common/domain"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
	reviewDomain "github.com/campground-booking/service-campground/internal/domain/review"
)

// CampgroundService implements campground catalogue use cases.
type CampgroundService struct {
	repo     campgroundDomain.CampgroundRepository
	bookings bookingDomain.BookingRepository
	reviews  reviewDomain.ReviewRepository
	logger   *zap.Logger
}

// NewCampgroundService creates a new CampgroundService.
func NewCampgroundService(
	repo campgroundDomain.CampgroundRepository,
	bookings bookingDomain.BookingRepository,
	reviews reviewDomain.ReviewRepository,
	logger *zap.Logger,
) *CampgroundService {
	return &CampgroundService{repo: repo, bookings: bookings, reviews: reviews, logger: logger}
}

// ListCampgrounds returns a page of campgrounds, newest first.
func (s *CampgroundService) ListCampgrounds(ctx context.Context, page, limit int) (*domain.PaginatedResult[CampgroundDTO], error) {
	camps, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list campgrounds: %w", err)
	}

	dtos := make([]CampgroundDTO, len(camps))
	for i, c := range camps {
		dtos[i] = toCampgroundDTO(c)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetCampground retrieves a single campground.
func (s *CampgroundService) GetCampground(ctx context.Context, id uuid.UUID) (*CampgroundDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toCampgroundDTO(c)
	return &result, nil
}

// CreateCampground adds a campground (admin).
func (s *CampgroundService) CreateCampground(ctx context.Context, details campgroundDomain.Details) (*CampgroundDTO, error) {
	c, err := campgroundDomain.NewCampground(details)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save campground: %w", err)
	}

	s.logger.Info("campground created",
		zap.String("campground_id", c.ID().String()),
		zap.String("name", c.Name()),
	)
	result := toCampgroundDTO(c)
	return &result, nil
}

// UpdateCampground replaces a campground's details (admin). The rating
// aggregate is left untouched.
func (s *CampgroundService) UpdateCampground(ctx context.Context, id uuid.UUID, details campgroundDomain.Details) (*CampgroundDTO, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.Update(details); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	result := toCampgroundDTO(c)
	return &result, nil
}

// DeleteCampground removes a campground together with its bookings and reviews (admin).
func (s *CampgroundService) DeleteCampground(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.bookings.DeleteByCampground(ctx, c.ID()); err != nil {
		return fmt.Errorf("failed to delete campground bookings: %w", err)
	}
	if err := s.reviews.DeleteByCampground(ctx, c.ID()); err != nil {
		return fmt.Errorf("failed to delete campground reviews: %w", err)
	}
	if err := s.repo.Delete(ctx, c.ID()); err != nil {
		return err
	}

	s.logger.Info("campground deleted", zap.String("campground_id", c.ID().String()))
	return nil
}
