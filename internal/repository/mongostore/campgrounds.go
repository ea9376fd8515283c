package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campground-booking/service-campground/internal/common/domain"
	campgroundDomain "github.com/campground-booking/service-campground/internal/domain/campground"
)

type campgroundDoc struct {
	ID            string    `bson:"_id"`
	Name          string    `bson:"name"`
	Address       string    `bson:"address"`
	District      string    `bson:"district"`
	Province      string    `bson:"province"`
	PostalCode    string    `bson:"postalcode"`
	Region        string    `bson:"region"`
	Tel           string    `bson:"tel,omitempty"`
	Image         string    `bson:"image,omitempty"`
	Description   string    `bson:"description,omitempty"`
	Price         *float64  `bson:"price,omitempty"`
	AverageRating float64   `bson:"averageRating"`
	ReviewsCount  int64     `bson:"reviewsCount"`
	CreatedAt     time.Time `bson:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt"`
}

// CampgroundRepository implements campground.CampgroundRepository on MongoDB.
type CampgroundRepository struct {
	coll *mongo.Collection
}

// FindByID retrieves a campground by its ID.
func (r *CampgroundRepository) FindByID(ctx context.Context, id uuid.UUID) (*campgroundDomain.Campground, error) {
	var doc campgroundDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NewNotFoundError("campground", id.String())
		}
		return nil, fmt.Errorf("failed to find campground: %w", err)
	}
	return doc.toDomain()
}

// FindByIDs retrieves the campgrounds with the given IDs, keyed by ID.
func (r *CampgroundRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*campgroundDomain.Campground, error) {
	out := make(map[uuid.UUID]*campgroundDomain.Campground, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = id.String()
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": keys}})
	if err != nil {
		return nil, fmt.Errorf("failed to find campgrounds: %w", err)
	}
	var docs []campgroundDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode campgrounds: %w", err)
	}
	for i := range docs {
		c, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		out[c.ID()] = c
	}
	return out, nil
}

// List retrieves a page of campgrounds, newest first.
func (r *CampgroundRepository) List(ctx context.Context, page, limit int) ([]*campgroundDomain.Campground, int64, error) {
	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count campgrounds: %w", err)
	}

	cur, err := r.coll.Find(ctx, bson.M{}, pageOptions(page, limit))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list campgrounds: %w", err)
	}
	var docs []campgroundDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode campgrounds: %w", err)
	}

	camps := make([]*campgroundDomain.Campground, len(docs))
	for i := range docs {
		c, err := docs[i].toDomain()
		if err != nil {
			return nil, 0, err
		}
		camps[i] = c
	}
	return camps, total, nil
}

// Save inserts a new campground.
func (r *CampgroundRepository) Save(ctx context.Context, c *campgroundDomain.Campground) error {
	if _, err := r.coll.InsertOne(ctx, toCampgroundDoc(c)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewConflictError("a campground with this name already exists")
		}
		return fmt.Errorf("failed to save campground: %w", err)
	}
	return nil
}

// Update replaces the campground's details.
func (r *CampgroundRepository) Update(ctx context.Context, c *campgroundDomain.Campground) error {
	doc := toCampgroundDoc(c)
	set := bson.M{
		"name":        doc.Name,
		"address":     doc.Address,
		"district":    doc.District,
		"province":    doc.Province,
		"postalcode":  doc.PostalCode,
		"region":      doc.Region,
		"tel":         doc.Tel,
		"image":       doc.Image,
		"description": doc.Description,
		"updatedAt":   doc.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if doc.Price != nil {
		set["price"] = *doc.Price
	} else {
		update["$unset"] = bson.M{"price": ""}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.NewConflictError("a campground with this name already exists")
		}
		return fmt.Errorf("failed to update campground: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewNotFoundError("campground", doc.ID)
	}
	return nil
}

// UpdateRating stores the campground's review aggregate.
func (r *CampgroundRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating campgroundDomain.Rating) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": bson.M{
		"averageRating": rating.AverageRating,
		"reviewsCount":  rating.ReviewsCount,
	}})
	if err != nil {
		return fmt.Errorf("failed to update campground rating: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.NewNotFoundError("campground", id.String())
	}
	return nil
}

// Delete removes a campground by its ID.
func (r *CampgroundRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete campground: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.NewNotFoundError("campground", id.String())
	}
	return nil
}

func toCampgroundDoc(c *campgroundDomain.Campground) campgroundDoc {
	d := c.Details()
	return campgroundDoc{
		ID:            c.ID().String(),
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

func (d campgroundDoc) toDomain() (*campgroundDomain.Campground, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid campground id %q: %w", d.ID, err)
	}
	return campgroundDomain.Reconstruct(id, campgroundDomain.Details{
		Name:        d.Name,
		Address:     d.Address,
		District:    d.District,
		Province:    d.Province,
		PostalCode:  d.PostalCode,
		Region:      d.Region,
		Tel:         d.Tel,
		Image:       d.Image,
		Description: d.Description,
		Price:       d.Price,
	}, d.AverageRating, d.ReviewsCount, d.CreatedAt.UTC(), d.UpdatedAt.UTC()), nil
}
