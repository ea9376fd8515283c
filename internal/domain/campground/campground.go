package campground

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/campground-booking/service-campground/internal/common/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Details holds the admin-maintained descriptive fields of a campground.
type Details struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Address     string   `json:"address" validate:"required"`
	District    string   `json:"district" validate:"required"`
	Province    string   `json:"province" validate:"required"`
	PostalCode  string   `json:"postalcode" validate:"required,max=5"`
	Region      string   `json:"region" validate:"required"`
	Tel         string   `json:"tel,omitempty"`
	Image       string   `json:"image,omitempty" validate:"omitempty,url"`
	Description string   `json:"description,omitempty" validate:"max=2000"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
}

func (d *Details) trim() {
	d.Name = strings.TrimSpace(d.Name)
	d.Address = strings.TrimSpace(d.Address)
	d.District = strings.TrimSpace(d.District)
	d.Province = strings.TrimSpace(d.Province)
	d.PostalCode = strings.TrimSpace(d.PostalCode)
	d.Region = strings.TrimSpace(d.Region)
	d.Tel = strings.TrimSpace(d.Tel)
	d.Image = strings.TrimSpace(d.Image)
}

// Validate checks the details and reports the first violation as a validation error.
func (d Details) Validate() error {
	if d.Price != nil && (math.IsNaN(*d.Price) || math.IsInf(*d.Price, 0)) {
		return domain.NewValidationError("price must be a finite number")
	}
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return domain.NewValidationError(fmt.Sprintf("invalid %s: failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return domain.NewValidationError(err.Error())
	}
	return nil
}

// Campground is the aggregate root for a bookable campsite.
type Campground struct {
	id            uuid.UUID
	details       Details
	averageRating float64
	reviewsCount  int64
	createdAt     time.Time
	updatedAt     time.Time
}

// NewCampground creates a Campground with validated details and an empty rating.
func NewCampground(details Details) (*Campground, error) {
	details.trim()
	if err := details.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Campground{
		id:        uuid.New(),
		details:   details,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds a Campground from persistence data (no validation).
func Reconstruct(id uuid.UUID, details Details, averageRating float64, reviewsCount int64, createdAt, updatedAt time.Time) *Campground {
	return &Campground{
		id:            id,
		details:       details,
		averageRating: averageRating,
		reviewsCount:  reviewsCount,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
	}
}

func (c *Campground) ID() uuid.UUID          { return c.id }
func (c *Campground) Details() Details       { return c.details }
func (c *Campground) Name() string           { return c.details.Name }
func (c *Campground) Price() *float64        { return c.details.Price }
func (c *Campground) AverageRating() float64 { return c.averageRating }
func (c *Campground) ReviewsCount() int64    { return c.reviewsCount }
func (c *Campground) CreatedAt() time.Time   { return c.createdAt }
func (c *Campground) UpdatedAt() time.Time   { return c.updatedAt }

// Update replaces the descriptive details. Rating fields are untouched.
func (c *Campground) Update(details Details) error {
	details.trim()
	if err := details.Validate(); err != nil {
		return err
	}
	c.details = details
	c.updatedAt = time.Now().UTC()
	return nil
}

// Rating is the denormalised review summary stored on a campground.
type Rating struct {
	AverageRating float64 `json:"averageRating"`
	ReviewsCount  int64   `json:"reviewsCount"`
}

// NewRating rounds the mean to two decimals; zero reviews yield (0, 0).
func NewRating(mean float64, count int64) Rating {
	if count <= 0 {
		return Rating{}
	}
	return Rating{
		AverageRating: math.Round(mean*100) / 100,
		ReviewsCount:  count,
	}
}
