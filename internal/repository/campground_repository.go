package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/campground-booking/service-campground/internal/common/domain"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
)

// CampgroundModel is the GORM model for the campgrounds table.
type CampgroundModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name          string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	Address       string    `gorm:"type:text;not null"`
	District      string    `gorm:"type:varchar(100);not null"`
	Province      string    `gorm:"type:varchar(100);not null"`
	PostalCode    string    `gorm:"type:varchar(5);not null"`
	Region        string    `gorm:"type:varchar(100);not null"`
	Tel           string    `gorm:"type:varchar(30)"`
	Image         string    `gorm:"type:text"`
	Description   string    `gorm:"type:text"`
	Price         *float64  `gorm:"type:double precision"`
	AverageRating float64   `gorm:"type:double precision;not null;default:0"`
	ReviewsCount  int64     `gorm:"not null;default:0"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt     time.Time `gorm:"type:timestamptz;not null;default:now()"`
}

func (CampgroundModel) TableName() string { return "campgrounds" }

// GormCampgroundRepository implements CampgroundRepository using GORM.
type GormCampgroundRepository struct {
	db *gorm.DB
}

func NewGormCampgroundRepository(db *gorm.DB) *GormCampgroundRepository {
	return &GormCampgroundRepository{db: db}
}

func (r *GormCampgroundRepository) FindByID(ctx context.Context, id uuid.UUID) (*campgroundDomain.Campground, error) {
	var model CampgroundModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("campground", id.String())
		}
		return nil, fmt.Errorf("failed to find campground: %w", err)
	}
	return toCampgroundDomain(&model), nil
}

func (r *GormCampgroundRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*campgroundDomain.Campground, error) {
	out := make(map[uuid.UUID]*campgroundDomain.Campground, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var models []CampgroundModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find campgrounds: %w", err)
	}
	for i := range models {
		out[models[i].ID] = toCampgroundDomain(&models[i])
	}
	return out, nil
}

func (r *GormCampgroundRepository) List(ctx context.Context, page, limit int) ([]*campgroundDomain.Campground, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&CampgroundModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count campgrounds: %w", err)
	}

	var models []CampgroundModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset(page, limit)).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list campgrounds: %w", err)
	}

	camps := make([]*campgroundDomain.Campground, len(models))
	for i := range models {
		camps[i] = toCampgroundDomain(&models[i])
	}
	return camps, total, nil
}

func (r *GormCampgroundRepository) Save(ctx context.Context, c *campgroundDomain.Campground) error {
	if err := r.db.WithContext(ctx).Create(toCampgroundModel(c)).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.NewConflictError("a campground with this name already exists")
		}
		return fmt.Errorf("failed to save campground: %w", err)
	}
	return nil
}

// Update writes the descriptive fields only; the rating aggregate is
// owned by UpdateRating.
func (r *GormCampgroundRepository) Update(ctx context.Context, c *campgroundDomain.Campground) error {
	model := toCampgroundModel(c)
	result := r.db.WithContext(ctx).
		Model(&CampgroundModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"address":     model.Address,
			"district":    model.District,
			"province":    model.Province,
			"postal_code": model.PostalCode,
			"region":      model.Region,
			"tel":         model.Tel,
			"image":       model.Image,
			"description": model.Description,
			"price":       model.Price,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return domain.NewConflictError("a campground with this name already exists")
		}
		return fmt.Errorf("failed to update campground: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("campground", c.ID().String())
	}
	return nil
}

func (r *GormCampgroundRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating campgroundDomain.Rating) error {
	result := r.db.WithContext(ctx).
		Model(&CampgroundModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"average_rating": rating.AverageRating,
			"reviews_count":  rating.ReviewsCount,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update campground rating: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("campground", id.String())
	}
	return nil
}

func (r *GormCampgroundRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CampgroundModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete campground: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("campground", id.String())
	}
	return nil
}

// --- Conversions ---

func toCampgroundModel(c *campgroundDomain.Campground) *CampgroundModel {
	d := c.Details()
	return &CampgroundModel{
		ID:            c.ID(),
		Name:          d.Name,
		Address:       d.Address,
		District:      d.District,
		Province:      d.Province,
		PostalCode:    d.PostalCode,
		Region:        d.Region,
		Tel:           d.Tel,
		Image:         d.Image,
		Description:   d.Description,
		Price:         d.Price,
		AverageRating: c.AverageRating(),
		ReviewsCount:  c.ReviewsCount(),
		CreatedAt:     c.CreatedAt(),
		UpdatedAt:     c.UpdatedAt(),
	}
}

func toCampgroundDomain(m *CampgroundModel) *campgroundDomain.Campground {
	return campgroundDomain.Reconstruct(
		m.ID,
		campgroundDomain.Details{
			Name:        m.Name,
			Address:     m.Address,
			District:    m.District,
			Province:    m.Province,
			PostalCode:  m.PostalCode,
			Region:      m.Region,
			Tel:         m.Tel,
			Image:       m.Image,
			Description: m.Description,
			Price:       m.Price,
		},
		m.AverageRating,
		m.ReviewsCount,
		m.CreatedAt, m.UpdatedAt,
	)
}
