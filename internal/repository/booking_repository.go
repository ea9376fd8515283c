package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campground-booking/service-campground/internal/common/domain"
	bookingDomain "github.com/campground-booking/service-campground/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_user_campground_date,priority:1"`
	CampgroundID  uuid.UUID `gorm:"type:uuid;not null;index;index:idx_bookings_user_campground_date,priority:2"`
	BookingDate   time.Time `gorm:"type:date;not null;index:idx_bookings_user_campground_date,priority:3"`
	PaymentStatus string    `gorm:"type:varchar(20);not null;default:'pending';index"`
	Version       int64     `gorm:"not null;default:1"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt     time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByUserCampgroundDate retrieves the oldest booking a user holds for a campground on a day.
func (r *GormBookingRepository) FindByUserCampgroundDate(ctx context.Context, userID, campgroundID uuid.UUID, day time.Time) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND campground_id = ? AND booking_date = ?", userID, campgroundID, bookingDomain.FormatDay(day)).
		Order("created_at ASC, id ASC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("booking", bookingDomain.FormatDay(day))
		}
		return nil, fmt.Errorf("failed to find booking by user, campground and date: %w", err)
	}
	return toDomainBooking(&model)
}

// List retrieves bookings matching the filter with pagination, newest first.
func (r *GormBookingRepository) List(ctx context.Context, filter bookingDomain.Filter, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.CampgroundID != nil {
		query = query.Where("campground_id = ?", *filter.CampgroundID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	if err := query.
		Order("created_at DESC").
		Offset(offset(page, limit)).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}

// CountByUser counts a user's bookings, optionally only those dated on or after from.
func (r *GormBookingRepository) CountByUser(ctx context.Context, userID uuid.UUID, from *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{}).Where("user_id = ?", userID)
	if from != nil {
		query = query.Where("booking_date >= ?", bookingDomain.FormatDay(*from))
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count user bookings: %w", err)
	}
	return count, nil
}

// ExistsForCampground reports whether the user holds any booking for the campground.
func (r *GormBookingRepository) ExistsForCampground(ctx context.Context, userID, campgroundID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("user_id = ? AND campground_id = ?", userID, campgroundID).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check campground booking: %w", err)
	}
	return count > 0, nil
}

// CountByPaymentStatus returns booking counts grouped by payment status (admin).
func (r *GormBookingRepository) CountByPaymentStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		PaymentStatus string
		Count         int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("payment_status, count(*) as count").
		Group("payment_status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by payment status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.PaymentStatus] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion has already run, so the stored row is one behind.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"booking_date":   model.BookingDate,
			"payment_status": model.PaymentStatus,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// Delete removes a booking.
func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BookingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("booking", id.String())
	}
	return nil
}

// DeleteByCampground removes every booking for a campground.
func (r *GormBookingRepository) DeleteByCampground(ctx context.Context, campgroundID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("campground_id = ?", campgroundID).Delete(&BookingModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete campground bookings: %w", err)
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:            bk.ID(),
		UserID:        bk.UserID(),
		CampgroundID:  bk.CampgroundID(),
		BookingDate:   bk.BookingDate(),
		PaymentStatus: bk.PaymentStatus().String(),
		Version:       bk.Version(),
		CreatedAt:     bk.CreatedAt(),
		UpdatedAt:     bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.UserID,
		m.CampgroundID,
		bookingDomain.NormalizeDay(m.BookingDate),
		status,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
