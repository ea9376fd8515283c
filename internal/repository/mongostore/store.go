// Package mongostore persists campgrounds, bookings and reviews in MongoDB.
// IDs are stored as UUID strings in _id.
package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	campgroundsCollection = "campgrounds"
	bookingsCollection    = "bookings"
	reviewsCollection     = "reviews"
)

// Store groups the collections of one database.
type Store struct {
	db     *mongo.Database
	logger *zap.Logger
}

// New creates a Store over db.
func New(db *mongo.Database, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// EnsureIndexes creates the indexes the repositories rely on, including
// the unique (campground, user) index on reviews.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		campgroundsCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		bookingsCollection: {
			{Keys: bson.D{{Key: "user", Value: 1}, {Key: "campground", Value: 1}, {Key: "bookingDate", Value: 1}}},
			{Keys: bson.D{{Key: "campground", Value: 1}}},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "campground", Value: 1}, {Key: "user", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}
	for coll, models := range indexes {
		names, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", coll, err)
		}
		s.logger.Debug("mongo indexes ensured", zap.String("collection", coll), zap.Strings("indexes", names))
	}
	return nil
}

// Ping checks the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

// Campgrounds returns the campground repository.
func (s *Store) Campgrounds() *CampgroundRepository {
	return &CampgroundRepository{coll: s.db.Collection(campgroundsCollection)}
}

// Bookings returns the booking repository.
func (s *Store) Bookings() *BookingRepository {
	return &BookingRepository{coll: s.db.Collection(bookingsCollection)}
}

// Reviews returns the review repository.
func (s *Store) Reviews() *ReviewRepository {
	return &ReviewRepository{coll: s.db.Collection(reviewsCollection)}
}

func pageOptions(page, limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
	}
	return opts
}
