package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campground-booking/service-campground/internal/common/domain"
	reviewDomain "github.com/campground-booking/service-campground/internal/domain/review"
)

type reviewDoc struct {
	ID           string    `bson:"_id"`
	CampgroundID string    `bson:"campground"`
	UserID       string    `bson:"user"`
	Rating       int       `bson:"rating"`
	Comment      string    `bson:"comment"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

// ReviewRepository implements review.ReviewRepository on MongoDB. The
// unique (campground, user) index turns a second review into a
// duplicate-key error.
type ReviewRepository struct {
	coll *mongo.Collection
}

// FindByID retrieves a review by its ID.
func (r *ReviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*reviewDomain.Review, error) {
	var doc reviewDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewNotFoundError("review", id.String())
		}
		return nil, fmt.Errorf("failed to find review: %w", err)
	}
	return doc.toDomain()
}

// List retrieves reviews, optionally for one campground, newest first.
func (r *ReviewRepository) List(ctx context.Context, campgroundID *uuid.UUID) ([]*reviewDomain.Review, error) {
	filter := bson.M{}
	if campgroundID != nil {
		filter["campground"] = campgroundID.String()
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	var docs []reviewDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}

	reviews := make([]*reviewDomain.Review, len(docs))
	for i := range docs {
		rv, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		reviews[i] = rv
	}
	return reviews, nil
}

// Save inserts a new review.
func (r *ReviewRepository) Save(ctx context.Context, rv *reviewDomain.Review) error {
	if _, err := r.coll.InsertOne(ctx, toReviewDoc(rv)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewDuplicateReviewError("You have already submitted a review for this campground")
		}
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

// Update stores the review's rating and comment.
func (r *ReviewRepository) Update(ctx context.Context, rv *reviewDomain.Review) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": rv.ID().String()}, bson.M{"$set": bson.M{
		"rating":    rv.Rating(),
		"comment":   rv.Comment(),
		"updatedAt": rv.UpdatedAt(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewNotFoundError("review", rv.ID().String())
	}
	return nil
}

// Delete removes a review by its ID.
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NewNotFoundError("review", id.String())
	}
	return nil
}

// DeleteByCampground removes every review of a campground.
func (r *ReviewRepository) DeleteByCampground(ctx context.Context, campgroundID uuid.UUID) error {
	if _, err := r.coll.DeleteMany(ctx, bson.M{"campground": campgroundID.String()}); err != nil {
		return fmt.Errorf("failed to delete campground reviews: %w", err)
	}
	return nil
}

// StatsForCampground averages ratings server-side with $match and $group.
func (r *ReviewRepository) StatsForCampground(ctx context.Context, campgroundID uuid.UUID) (reviewDomain.Stats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "campground", Value: campgroundID.String()}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$campground"},
			{Key: "mean", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return reviewDomain.Stats{}, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	var rows []struct {
		Mean  float64 `bson:"mean"`
		Count int64   `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return reviewDomain.Stats{}, fmt.Errorf("failed to decode review stats: %w", err)
	}
	if len(rows) == 0 {
		return reviewDomain.Stats{}, nil
	}
	return reviewDomain.Stats{Mean: rows[0].Mean, Count: rows[0].Count}, nil
}

func toReviewDoc(rv *reviewDomain.Review) reviewDoc {
	return reviewDoc{
		ID:           rv.ID().String(),
		CampgroundID: rv.CampgroundID().String(),
		UserID:       rv.UserID().String(),
		Rating:       rv.Rating(),
		Comment:      rv.Comment(),
		CreatedAt:    rv.CreatedAt(),
		UpdatedAt:    rv.UpdatedAt(),
	}
}

func (d reviewDoc) toDomain() (*reviewDomain.Review, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid review id %q: %w", d.ID, err)
	}
	campgroundID, err := uuid.Parse(d.CampgroundID)
	if err != nil {
		return nil, fmt.Errorf("invalid review campground %q: %w", d.CampgroundID, err)
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid review user %q: %w", d.UserID, err)
	}
	return reviewDomain.Reconstruct(id, campgroundID, userID, d.Rating, d.Comment, d.CreatedAt.UTC(), d.UpdatedAt.UTC()), nil
}
