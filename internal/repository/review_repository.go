package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campground-booking/service-campground/internal/common/domain"
	reviewDomain "github.com/campground-booking/service-campground/internal/domain/review"
)

// ReviewModel is the GORM model for the reviews table. The composite
// unique index allows one review per user per campground.
type ReviewModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CampgroundID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_campground_user,priority:1"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_campground_user,priority:2"`
	Rating       int       `gorm:"type:smallint;not null"`
	Comment      string    `gorm:"type:varchar(1000);not null"`
	CreatedAt    time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt    time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (ReviewModel) TableName() string { return "reviews" }

// GormReviewRepository implements ReviewRepository using GORM.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository.
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// FindByID returns a single review by ID.
func (r *GormReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*reviewDomain.Review, error) {
	var model ReviewModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("review", id.String())
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return toReviewDomain(&model), nil
}

// List returns reviews newest first, optionally for one campground.
func (r *GormReviewRepository) List(ctx context.Context, campgroundID *uuid.UUID) ([]*reviewDomain.Review, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if campgroundID != nil {
		query = query.Where("campground_id = ?", *campgroundID)
	}

	var models []ReviewModel
	if err := query.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	reviews := make([]*reviewDomain.Review, len(models))
	for i := range models {
		reviews[i] = toReviewDomain(&models[i])
	}
	return reviews, nil
}

// Save persists a new review; a second review by the same user for the
// same campground is reported as DuplicateReview.
func (r *GormReviewRepository) Save(ctx context.Context, rv *reviewDomain.Review) error {
	model := toReviewModel(rv)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.NewDuplicateReviewError("You have already submitted a review for this campground")
		}
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

// Update writes the editable fields of a review.
func (r *GormReviewRepository) Update(ctx context.Context, rv *reviewDomain.Review) error {
	result := r.db.WithContext(ctx).
		Model(&ReviewModel{}).
		Where("id = ?", rv.ID()).
		Updates(map[string]interface{}{
			"rating":     rv.Rating(),
			"comment":    rv.Comment(),
			"updated_at": rv.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("review", rv.ID().String())
	}
	return nil
}

// Delete removes a review.
func (r *GormReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ReviewModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete review: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("review", id.String())
	}
	return nil
}

// DeleteByCampground removes every review of a campground.
func (r *GormReviewRepository) DeleteByCampground(ctx context.Context, campgroundID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("campground_id = ?", campgroundID).Delete(&ReviewModel{}).Error; err != nil {
		return fmt.Errorf("failed to delete campground reviews: %w", err)
	}
	return nil
}

// StatsForCampground computes the mean rating and count in the database.
func (r *GormReviewRepository) StatsForCampground(ctx context.Context, campgroundID uuid.UUID) (reviewDomain.Stats, error) {
	var row struct {
		Mean  *float64
		Count int64
	}
	if err := r.db.WithContext(ctx).Model(&ReviewModel{}).
		Select("AVG(rating)::double precision AS mean, COUNT(*) AS count").
		Where("campground_id = ?", campgroundID).
		Scan(&row).Error; err != nil {
		return reviewDomain.Stats{}, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	if row.Count == 0 || row.Mean == nil {
		return reviewDomain.Stats{}, nil
	}
	return reviewDomain.Stats{Mean: *row.Mean, Count: row.Count}, nil
}

func toReviewModel(rv *reviewDomain.Review) ReviewModel {
	return ReviewModel{
		ID:           rv.ID(),
		CampgroundID: rv.CampgroundID(),
		UserID:       rv.UserID(),
		Rating:       rv.Rating(),
		Comment:      rv.Comment(),
		CreatedAt:    rv.CreatedAt(),
		UpdatedAt:    rv.UpdatedAt(),
	}
}

func toReviewDomain(m *ReviewModel) *reviewDomain.Review {
	return reviewDomain.Reconstruct(
		m.ID,
		m.CampgroundID,
		m.UserID,
		m.Rating,
		m.Comment,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
