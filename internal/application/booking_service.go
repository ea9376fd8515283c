package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campground-booking/service-campground/internal/common/domain"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	CampgroundID string `json:"campgroundId"`
	BookingDate  string `json:"bookingDate" binding:"required"`
}

// UpdateBookingRequest holds the new day for an existing booking.
type UpdateBookingRequest struct {
	BookingDate string `json:"bookingDate" binding:"required"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings   int64            `json:"totalBookings"`
	ByPaymentStatus map[string]int64 `json:"byPaymentStatus"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo        bookingDomain.BookingRepository
	campgrounds campgroundDomain.CampgroundRepository
	policy      bookingDomain.LimitPolicy
	locks       *UserLocks
	publisher   EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	campgrounds campgroundDomain.CampgroundRepository,
	policy bookingDomain.LimitPolicy,
	locks *UserLocks,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	if publisher == nil {
		publisher = NoopPublisher()
	}
	return &BookingService{
		repo:        repo,
		campgrounds: campgrounds,
		policy:      policy,
		locks:       locks,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateBooking books a campground for one day as a pending booking.
// Non-admins are capped by the limit policy; the count and the insert run
// under the requester's lock so concurrent requests cannot overshoot it.
// The event is published after the lock is released.
func (s *BookingService) CreateBooking(ctx context.Context, req Requester, campgroundID uuid.UUID, rawDate string) (*BookingDTO, error) {
	day, err := s.parseFutureDay(rawDate)
	if err != nil {
		return nil, err
	}

	camp, err := s.campgrounds.FindByID(ctx, campgroundID)
	if err != nil {
		return nil, err
	}

	bk, err := s.reserve(ctx, req, camp.ID(), day)
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("user_id", req.UserID.String()),
		zap.String("campground_id", camp.ID().String()),
	)
	publishBookingEvent(ctx, s.publisher, s.logger, BookingCreated, bk)

	result := toBookingDTO(bk, camp)
	return &result, nil
}

// reserve checks the cap and saves a pending booking, holding the user
// lock for non-admins.
func (s *BookingService) reserve(ctx context.Context, req Requester, campgroundID uuid.UUID, day time.Time) (*bookingDomain.Booking, error) {
	if !req.IsAdmin() {
		unlock := s.locks.Lock(req.UserID)
		defer unlock()

		count, err := s.repo.CountByUser(ctx, req.UserID, s.policy.CountFrom(s.now()))
		if err != nil {
			return nil, fmt.Errorf("failed to count bookings: %w", err)
		}
		if s.policy.Exceeded(count) {
			return nil, domain.NewLimitExceededError(
				fmt.Sprintf("The user with ID %s has already made %d bookings", req.UserID, s.policy.Max))
		}
	}

	bk, err := bookingDomain.NewBooking(req.UserID, campgroundID, day, bookingDomain.PaymentPending)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, bk); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}
	return bk, nil
}

// GetBooking retrieves a single booking the requester may see.
func (s *BookingService) GetBooking(ctx context.Context, req Requester, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.CanBeManagedBy(req.UserID, req.IsAdmin()) {
		return nil, domain.NewForbiddenError(
			fmt.Sprintf("User %s is not authorized to view this booking", req.UserID))
	}

	result := toBookingDTO(bk, s.lookupCampground(ctx, bk.CampgroundID()))
	return &result, nil
}

// ListBookings lists the requester's bookings; admins see everyone's.
// A non-nil campgroundID narrows the listing to that campground.
func (s *BookingService) ListBookings(ctx context.Context, req Requester, campgroundID *uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	filter := bookingDomain.Filter{CampgroundID: campgroundID}
	if !req.IsAdmin() {
		userID := req.UserID
		filter.UserID = &userID
	}

	bookings, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos, err := s.populate(ctx, bookings)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// UpdateBooking moves a booking to another day. Only the owner or an admin may do so.
func (s *BookingService) UpdateBooking(ctx context.Context, req Requester, bookingID uuid.UUID, input UpdateBookingRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.CanBeManagedBy(req.UserID, req.IsAdmin()) {
		return nil, domain.NewForbiddenError(
			fmt.Sprintf("User %s is not authorized to update this booking", req.UserID))
	}

	day, err := s.parseFutureDay(input.BookingDate)
	if err != nil {
		return nil, err
	}
	if err := bk.Reschedule(day); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}
	publishBookingEvent(ctx, s.publisher, s.logger, BookingUpdated, bk)

	result := toBookingDTO(bk, s.lookupCampground(ctx, bk.CampgroundID()))
	return &result, nil
}

// DeleteBooking removes a booking. Only the owner or an admin may do so.
func (s *BookingService) DeleteBooking(ctx context.Context, req Requester, bookingID uuid.UUID) error {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if !bk.CanBeManagedBy(req.UserID, req.IsAdmin()) {
		return domain.NewForbiddenError("Not authorized to delete this booking")
	}

	if err := s.repo.Delete(ctx, bk.ID()); err != nil {
		return err
	}
	s.logger.Info("booking deleted",
		zap.String("booking_id", bk.ID().String()),
		zap.String("deleted_by", req.UserID.String()),
	)
	publishBookingEvent(ctx, s.publisher, s.logger, BookingDeleted, bk)
	return nil
}

// --- Admin methods ---

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.repo.List(ctx, bookingDomain.Filter{}, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	dtos, err := s.populate(ctx, bookings)
	if err != nil {
		return nil, 0, err
	}
	return dtos, total, nil
}

// GetBookingStats returns booking counts by payment status (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.repo.CountByPaymentStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}
	return &BookingStatsDTO{
		TotalBookings:   total,
		ByPaymentStatus: counts,
	}, nil
}

// --- Helpers ---

// parseFutureDay parses a booking day and rejects days before today.
func (s *BookingService) parseFutureDay(raw string) (time.Time, error) {
	return parseBookableDay(raw, s.now())
}

func parseBookableDay(raw string, now time.Time) (time.Time, error) {
	day, err := bookingDomain.ParseBookingDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	if day.Before(bookingDomain.NormalizeDay(now.UTC())) {
		return time.Time{}, domain.NewInvalidDateError("Booking date can not be in the past")
	}
	return day, nil
}

// lookupCampground fetches the campground for display; a missing one
// leaves the booking unpopulated rather than failing the read.
func (s *BookingService) lookupCampground(ctx context.Context, id uuid.UUID) *campgroundDomain.Campground {
	camp, err := s.campgrounds.FindByID(ctx, id)
	if err != nil {
		if !domain.IsKind(err, domain.KindNotFound) {
			s.logger.Warn("failed to load campground for booking",
				zap.String("campground_id", id.String()),
				zap.Error(err),
			)
		}
		return nil
	}
	return camp
}

func (s *BookingService) populate(ctx context.Context, bookings []*bookingDomain.Booking) ([]BookingDTO, error) {
	ids := make([]uuid.UUID, 0, len(bookings))
	seen := make(map[uuid.UUID]struct{}, len(bookings))
	for _, bk := range bookings {
		if _, ok := seen[bk.CampgroundID()]; ok {
			continue
		}
		seen[bk.CampgroundID()] = struct{}{}
		ids = append(ids, bk.CampgroundID())
	}

	camps, err := s.campgrounds.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load campgrounds: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk, camps[bk.CampgroundID()])
	}
	return dtos, nil
}
