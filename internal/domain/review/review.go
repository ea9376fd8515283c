package review

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/campground-booking/service-campground/internal/common/domain"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 1000
)

// Review is a user's rating of a campground. At most one exists per
// (campground, user) pair.
type Review struct {
	id           uuid.UUID
	campgroundID uuid.UUID
	userID       uuid.UUID
	rating       int
	comment      string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewReview creates a Review with validated rating and comment.
func NewReview(campgroundID, userID uuid.UUID, rating int, comment string) (*Review, error) {
	if campgroundID == uuid.Nil {
		return nil, domain.NewValidationError("campground ID is required")
	}
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	comment, err := normalizeComment(comment)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Review{
		id:           uuid.New(),
		campgroundID: campgroundID,
		userID:       userID,
		rating:       rating,
		comment:      comment,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a Review from persistence data (no validation).
func Reconstruct(id, campgroundID, userID uuid.UUID, rating int, comment string, createdAt, updatedAt time.Time) *Review {
	return &Review{
		id:           id,
		campgroundID: campgroundID,
		userID:       userID,
		rating:       rating,
		comment:      comment,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (r *Review) ID() uuid.UUID           { return r.id }
func (r *Review) CampgroundID() uuid.UUID { return r.campgroundID }
func (r *Review) UserID() uuid.UUID       { return r.userID }
func (r *Review) Rating() int             { return r.rating }
func (r *Review) Comment() string         { return r.comment }
func (r *Review) CreatedAt() time.Time    { return r.createdAt }
func (r *Review) UpdatedAt() time.Time    { return r.updatedAt }

// CanBeManagedBy reports whether the requester may edit or delete the review.
func (r *Review) CanBeManagedBy(userID uuid.UUID, isAdmin bool) bool {
	return isAdmin || r.userID == userID
}

// Edit applies a partial update; nil fields are left unchanged.
func (r *Review) Edit(rating *int, comment *string) error {
	newRating := r.rating
	if rating != nil {
		if err := validateRating(*rating); err != nil {
			return err
		}
		newRating = *rating
	}
	newComment := r.comment
	if comment != nil {
		c, err := normalizeComment(*comment)
		if err != nil {
			return err
		}
		newComment = c
	}
	r.rating = newRating
	r.comment = newComment
	r.updatedAt = time.Now().UTC()
	return nil
}

func validateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return domain.NewValidationError(fmt.Sprintf("Rating must be a whole number between %d and %d", MinRating, MaxRating))
	}
	return nil
}

func normalizeComment(comment string) (string, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return "", domain.NewValidationError("Please add a review comment")
	}
	if utf8.RuneCountInString(comment) > MaxCommentLength {
		return "", domain.NewValidationError(fmt.Sprintf("Comment can not be more than %d characters", MaxCommentLength))
	}
	return comment, nil
}
